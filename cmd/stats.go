package cmd

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/KaramelBytes/casescan/internal/charts"
	"github.com/KaramelBytes/casescan/internal/sink"
	"github.com/KaramelBytes/casescan/internal/stats"
	"github.com/KaramelBytes/casescan/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chiDependent   string
	chiIndependent []string
	chiOutput      string
	chiTables      bool

	regDependent   string
	regIndependent string
	regOutput      string
	regChart       string
)

var chi2Cmd = &cobra.Command{
	Use:   "chi2 <file>",
	Short: "Chi-square test of independence between an outcome and risk factors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if chiDependent == "" {
			return fmt.Errorf("--dependent is required")
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		res, err := stats.ChiSquare(t, chiDependent, chiIndependent)
		if err != nil {
			return err
		}
		if err := writeResult(cmd, chiOutput, res); err != nil {
			return err
		}
		if chiTables {
			for _, r := range res {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := (sink.CSV{W: cmd.OutOrStdout()}).Write(r.Table); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

var regressCmd = &cobra.Command{
	Use:   "regress <file>",
	Short: "Simple linear regression of one numeric column on another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if regDependent == "" || regIndependent == "" {
			return fmt.Errorf("--dependent and --independent are required")
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		reg, err := stats.LinearRegression(t, regDependent, regIndependent)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %.4f + %.4f * %s\nR² = %.4f, n = %d\n",
			reg.Dependent, reg.Intercept, reg.Slope, reg.Independent, reg.RSquared, reg.N())
		if regOutput != "" {
			if err := writeResult(cmd, regOutput, reg); err != nil {
				return err
			}
		}
		if regChart != "" {
			return writeChart(cmd, regChart, func(w io.Writer) error {
				return charts.RegressionScatter(w, reg)
			})
		}
		return nil
	},
}

// writeChart renders into path under output_dir.
func writeChart(cmd *cobra.Command, out string, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	path := outputPath(out)
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote chart to %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(chi2Cmd)
	rootCmd.AddCommand(regressCmd)
	chi2Cmd.Flags().StringVar(&chiDependent, "dependent", "", "outcome column (e.g. death_inhosp)")
	chi2Cmd.Flags().StringSliceVar(&chiIndependent, "independent", nil, "comma-separated risk factor columns")
	chi2Cmd.Flags().StringVarP(&chiOutput, "output", "o", "", "write the test summary to a .csv/.tsv/.xlsx file (default: CSV to stdout)")
	chi2Cmd.Flags().BoolVar(&chiTables, "tables", false, "also print each contingency table")
	regressCmd.Flags().StringVar(&regDependent, "dependent", "", "response column")
	regressCmd.Flags().StringVar(&regIndependent, "independent", "", "predictor column")
	regressCmd.Flags().StringVarP(&regOutput, "output", "o", "", "write observed and fitted values to a .csv/.tsv/.xlsx file")
	regressCmd.Flags().StringVar(&regChart, "chart", "", "write a scatter plot with the fitted line to this HTML file")
}
