package cmd

import (
	"fmt"

	"github.com/KaramelBytes/casescan/internal/ranges"
	"github.com/spf13/cobra"
)

var rangesYAML bool

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "Print the effective reference range table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRanges()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if rangesYAML {
			return ranges.Encode(out, rt)
		}
		src := "built-in"
		if cfg.RangesFile != "" {
			src = cfg.RangesFile
		}
		fmt.Fprintf(out, "Range table (%s, %d fields):\n", src, rt.Len())
		for _, s := range rt.Specs() {
			fmt.Fprintf(out, "  %-16s %s\n", s.Field, s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rangesCmd)
	rangesCmd.Flags().BoolVar(&rangesYAML, "yaml", false, "print as a YAML document usable with --ranges")
}
