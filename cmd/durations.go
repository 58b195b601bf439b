package cmd

import (
	"fmt"

	"github.com/KaramelBytes/casescan/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	durOutput    string
	durAverages  string
	durProcedure string
)

var durationsCmd = &cobra.Command{
	Use:   "durations <file>",
	Short: "Add anesthesia and surgery durations, optionally averaged per procedure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		withDur, err := analysis.ComputeDurations(t, cfg.DurationDivisor)
		if err != nil {
			return err
		}
		// averages always cover every procedure, not only the selected one
		var avg analysis.ProcedureAverages
		if durAverages != "" {
			avg = analysis.ProcedureAverages(analysis.AverageDurationsByProcedure(withDur.Records))
		}
		if durProcedure != "" {
			withDur = withDur.Derive(analysis.FilterByProcedure(withDur.Records, durProcedure))
			if len(withDur.Records) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ No cases with opname %q\n", durProcedure)
			}
		}
		if err := writeResult(cmd, durOutput, withDur); err != nil {
			return err
		}
		if durAverages != "" {
			if err := writeResult(cmd, durAverages, avg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Averaged %d procedures\n", len(avg))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(durationsCmd)
	durationsCmd.Flags().StringVarP(&durOutput, "output", "o", "", "write cases with durations to a .csv/.tsv/.xlsx file (default: CSV to stdout)")
	durationsCmd.Flags().StringVar(&durAverages, "averages", "", "also write per-procedure averages to this file")
	durationsCmd.Flags().StringVar(&durProcedure, "procedure", "", "keep only cases with this opname")
}
