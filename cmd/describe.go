package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/casescan/internal/analysis"
	"github.com/KaramelBytes/casescan/internal/utils"
	"github.com/spf13/cobra"
)

var (
	descOutput   string
	descGroupBy  []string
	descOutliers bool
	descOutlierT float64
	descTopN     int
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Summarise every column of a case dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		opt := analysis.DefaultDescribeOptions()
		opt.GroupBy = descGroupBy
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = descOutliers
		}
		if descOutlierT > 0 {
			opt.OutlierThreshold = descOutlierT
		}
		if descTopN > 0 {
			opt.TopN = descTopN
		}
		md := analysis.Describe(t, opt).Markdown()
		if descOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		path := outputPath(descOutput)
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(path, []byte(md)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote summary to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutput, "output", "o", "", "optional path to write the summary (Markdown)")
	describeCmd.Flags().StringSliceVar(&descGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	describeCmd.Flags().Float64Var(&descOutlierT, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	describeCmd.Flags().IntVar(&descTopN, "top", 5, "top values listed per categorical column")
}
