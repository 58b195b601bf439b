package cmd

import (
	"io"

	"github.com/KaramelBytes/casescan/internal/charts"
	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/spf13/cobra"
)

var (
	chartOutput      string
	chartKind        string
	chartFilter      bool
	chartFilterCol   string
	chartFilterValue string
	chartColumn      string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render descriptive charts of a dataset as HTML",
}

var chartAgeGenderCmd = &cobra.Command{
	Use:   "age-gender <file>",
	Short: "Cases per age group, split by gender",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		return writeChart(cmd, chartOutput, func(w io.Writer) error {
			return charts.AgeGenderBar(w, t.Records)
		})
	},
}

var chartGenderCmd = &cobra.Command{
	Use:   "gender <file>",
	Short: "Gender distribution, optionally restricted to column == value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := charts.ParseKind(chartKind)
		if err != nil {
			return err
		}
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		f := charts.GenderFilter{
			Enabled: chartFilter || cmd.Flags().Changed("filter-value"),
			Column:  chartFilterCol,
			Value:   chartFilterValue,
		}
		return writeChart(cmd, chartOutput, func(w io.Writer) error {
			return charts.GenderDistribution(w, t.Records, kind, f)
		})
	},
}

var chartWordCloudCmd = &cobra.Command{
	Use:   "wordcloud <file>",
	Short: "Word cloud of a text column (diagnosis by default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		return writeChart(cmd, chartOutput, func(w io.Writer) error {
			return charts.WordCloud(w, t.Records, chartColumn)
		})
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartAgeGenderCmd)
	chartCmd.AddCommand(chartGenderCmd)
	chartCmd.AddCommand(chartWordCloudCmd)
	chartCmd.PersistentFlags().StringVarP(&chartOutput, "output", "o", "chart.html", "HTML file to write")
	chartGenderCmd.Flags().StringVar(&chartKind, "kind", "bar", "bar or pie")
	chartGenderCmd.Flags().BoolVar(&chartFilter, "filter", false, "restrict to cases where --filter-column equals --filter-value")
	chartGenderCmd.Flags().StringVar(&chartFilterCol, "filter-column", clinical.ColOpName, "column to filter on")
	chartGenderCmd.Flags().StringVar(&chartFilterValue, "filter-value", "", "value the filter column must equal")
	chartWordCloudCmd.Flags().StringVar(&chartColumn, "column", clinical.ColDiagnosis, "text column to count words from")
}
