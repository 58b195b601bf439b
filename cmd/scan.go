package cmd

import (
	"fmt"

	"github.com/KaramelBytes/casescan/internal/analysis"
	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/KaramelBytes/casescan/internal/utils"
	"github.com/spf13/cobra"
)

var (
	scanOutput  string
	groupOutput string
	selField    string
	selJSON     bool
)

// scanFile loads path and scans every case against the effective range table.
func scanFile(path string) (*analysis.Findings, *clinical.Table, error) {
	t, err := loadTable(path)
	if err != nil {
		return nil, nil, err
	}
	rt, err := loadRanges()
	if err != nil {
		return nil, nil, err
	}
	fs := analysis.NewScanner(rt, cfg.IDColumn).ScanAll(t.Records)
	log.WithField("abnormal_cases", fs.Len()).Debug("scan finished")
	return fs, t, nil
}

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "List the cases with at least one value outside its reference range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, t, err := scanFile(args[0])
		if err != nil {
			return err
		}
		if err := writeResult(cmd, scanOutput, fs); err != nil {
			return err
		}
		errw := cmd.ErrOrStderr()
		fmt.Fprintf(errw, "✓ %d of %d cases have abnormal findings\n", fs.Len(), len(t.Records))
		for _, c := range fs.CountByField() {
			fmt.Fprintf(errw, "  %-16s %d\n", c.Field, c.Count)
		}
		return nil
	},
}

var groupCmd = &cobra.Command{
	Use:   "group <file> <field>",
	Short: "Show the abnormal cases of one monitored field, grouped by value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, _, err := scanFile(args[0])
		if err != nil {
			return err
		}
		view, err := analysis.GroupByField(fs, args[1])
		if err != nil {
			return err
		}
		if view.Size() == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ No abnormal %s values\n", args[1])
			return nil
		}
		if err := writeResult(cmd, groupOutput, view); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d cases in %d groups of %s\n", view.Size(), len(view.Groups), args[1])
		return nil
	},
}

var selectCaseCmd = &cobra.Command{
	Use:   "select-case <file> <patient_id>",
	Short: "Show the abnormal findings of one patient",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, _, err := scanFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if selField != "" {
			v, err := analysis.LookupCaseField(fs, args[1], selField)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, v.String())
			return nil
		}
		f, err := analysis.LookupCase(fs, args[1])
		if err != nil {
			return err
		}
		fields := f.Fields(fs.Ranges())
		if selJSON {
			abnormal := make(map[string]string, len(fields))
			for _, name := range fields {
				abnormal[name] = f.Abnormal[name].String()
			}
			b, err := utils.PrettyJSON(map[string]any{
				"patient_id": f.PatientID,
				"caseid":     f.CaseID,
				"age":        f.Age.String(),
				"gender":     f.Sex.String(),
				"opname":     f.OpName.String(),
				"ASA":        f.ASA.String(),
				"abnormal":   abnormal,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "Patient %s (case %s)\n", f.PatientID, f.CaseID)
		fmt.Fprintf(out, "  age %s, gender %s, ASA %s\n", f.Age, f.Sex, f.ASA)
		if op := f.OpName.String(); op != "" {
			fmt.Fprintf(out, "  operation: %s\n", op)
		}
		fmt.Fprintln(out, "Abnormal findings:")
		for _, name := range fields {
			spec, _ := fs.Ranges().Lookup(name)
			fmt.Fprintf(out, "  %-16s %-24s expected %s\n", name, f.Abnormal[name], spec)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(selectCaseCmd)
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write findings to a .csv/.tsv/.xlsx file (default: CSV to stdout)")
	groupCmd.Flags().StringVarP(&groupOutput, "output", "o", "", "write the grouped view to a .csv/.tsv/.xlsx file (default: CSV to stdout)")
	selectCaseCmd.Flags().StringVar(&selField, "field", "", "print only this abnormal field")
	selectCaseCmd.Flags().BoolVar(&selJSON, "json", false, "print the finding as JSON")
}
