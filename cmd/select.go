package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/casescan/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	asaOutput     string
	histOutput    string
	histCondition string
)

var asaCmd = &cobra.Command{
	Use:   "asa <file> <score>",
	Short: "Select the cases with a given ASA physical status (0 = not recorded)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid ASA score %q: %w", args[1], err)
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		recs := analysis.FilterByClassification(t.Records, score, log)
		if err := writeResult(cmd, asaOutput, t.Derive(recs)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d of %d cases with ASA %d\n", len(recs), len(t.Records), score)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <file>",
	Short: "Select the cases with pre-operative hypertension or diabetes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cond, err := analysis.ParseHistoryCondition(histCondition)
		if err != nil {
			return err
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		recs, err := analysis.FilterByMedicalHistory(t.Records, cond)
		if err != nil {
			return err
		}
		if err := writeResult(cmd, histOutput, t.Derive(recs)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d of %d cases with %s\n", len(recs), len(t.Records), cond.Column())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(asaCmd)
	rootCmd.AddCommand(historyCmd)
	asaCmd.Flags().StringVarP(&asaOutput, "output", "o", "", "write selected cases to a .csv/.tsv/.xlsx file (default: CSV to stdout)")
	historyCmd.Flags().StringVarP(&histOutput, "output", "o", "", "write selected cases to a .csv/.tsv/.xlsx file (default: CSV to stdout)")
	historyCmd.Flags().StringVar(&histCondition, "condition", "", "htn (preop_htn) or dm (preop_dm)")
}
