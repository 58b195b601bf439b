package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/sirupsen/logrus"
)

// Group holds the findings sharing one value of the grouped field.
type Group struct {
	Key      clinical.Value
	Findings []Finding
}

// GroupedView is the result of GroupByField.
type GroupedView struct {
	Field  string
	Groups []Group
	// Columns are the flat findings columns populated on every selected
	// finding; the rest are dropped from the view.
	Columns []string

	source *Findings
}

// Size is the number of findings across all groups.
func (v *GroupedView) Size() int {
	n := 0
	for _, g := range v.Groups {
		n += len(g.Findings)
	}
	return n
}

// GroupByField groups the findings that flag field by the flagged value.
// A field that no case violates yields an empty view.
func GroupByField(fs *Findings, field string) (*GroupedView, error) {
	rt := fs.Ranges()
	if !rt.Has(field) {
		return nil, &InvalidFieldError{Field: field, Valid: rt.Fields()}
	}
	byKey := map[string]*Group{}
	var order []string
	for _, f := range fs.Items {
		v, ok := f.Abnormal[field]
		if !ok {
			continue
		}
		k := groupKey(v)
		g := byKey[k]
		if g == nil {
			g = &Group{Key: v}
			byKey[k] = g
			order = append(order, k)
		}
		g.Findings = append(g.Findings, f)
	}
	groups := make([]Group, 0, len(order))
	for _, k := range order {
		groups = append(groups, *byKey[k])
	}
	sort.SliceStable(groups, func(i, j int) bool { return lessValue(groups[i].Key, groups[j].Key) })

	view := &GroupedView{Field: field, Groups: groups, source: fs}
	view.Columns = populatedColumns(fs, groups)
	return view, nil
}

func groupKey(v clinical.Value) string {
	if x, ok := v.Float(); ok {
		return fmt.Sprintf("n:%v", x)
	}
	return "t:" + v.Raw
}

// lessValue orders numbers before text, numbers numerically, text lexically.
func lessValue(a, b clinical.Value) bool {
	ax, aNum := a.Float()
	bx, bNum := b.Float()
	switch {
	case aNum && bNum:
		return ax < bx
	case aNum != bNum:
		return aNum
	default:
		return a.Raw < b.Raw
	}
}

func populatedColumns(fs *Findings, groups []Group) []string {
	header := fs.Header()
	if len(groups) == 0 {
		return header
	}
	filled := make([]bool, len(header))
	for i := range filled {
		filled[i] = true
	}
	for _, g := range groups {
		sub := NewFindings(fs.Ranges(), g.Findings)
		for _, row := range sub.Rows() {
			for i, cell := range row {
				if cell == "" {
					filled[i] = false
				}
			}
		}
	}
	var cols []string
	for i, h := range header {
		if filled[i] {
			cols = append(cols, h)
		}
	}
	return cols
}

// Header implements the sink row source.
func (v *GroupedView) Header() []string { return v.Columns }

// Rows renders the grouped findings restricted to the populated columns.
func (v *GroupedView) Rows() [][]string {
	header := v.source.Header()
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	var out [][]string
	for _, g := range v.Groups {
		for _, full := range NewFindings(v.source.Ranges(), g.Findings).Rows() {
			row := make([]string, len(v.Columns))
			for i, c := range v.Columns {
				row[i] = full[idx[c]]
			}
			out = append(out, row)
		}
	}
	return out
}

// LookupCase returns the first finding whose patient id equals caseID.
func LookupCase(fs *Findings, caseID string) (Finding, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return Finding{}, &MissingRequiredArgumentError{Argument: "case id"}
	}
	for _, f := range fs.Items {
		if f.PatientID == caseID {
			return f, nil
		}
	}
	return Finding{}, &CaseNotFoundError{CaseID: caseID}
}

// LookupCaseField returns the abnormal value of field for one case. Only the
// fields flagged on that case are valid.
func LookupCaseField(fs *Findings, caseID, field string) (clinical.Value, error) {
	f, err := LookupCase(fs, caseID)
	if err != nil {
		return clinical.Value{}, err
	}
	if field == "" {
		return clinical.Value{}, &MissingRequiredArgumentError{Argument: "field"}
	}
	v, ok := f.Abnormal[field]
	if !ok {
		return clinical.Value{}, &InvalidFieldError{Field: field, Valid: f.Fields(fs.Ranges())}
	}
	return v, nil
}

// UnknownASAWarning is logged when score 0, the missing-ASA sentinel, is
// requested.
const UnknownASAWarning = "ASA 0 selects cases with no recorded ASA level, please check the ASA level of your patients"

// FilterByClassification returns the records whose ASA level equals score.
// A missing ASA level counts as 0.
func FilterByClassification(recs []clinical.Record, score int, log logrus.FieldLogger) []clinical.Record {
	if score == 0 {
		if log == nil {
			log = logrus.StandardLogger()
		}
		log.WithField("asa", score).Warn(UnknownASAWarning)
	}
	var out []clinical.Record
	for _, r := range recs {
		v := r.Get(clinical.ColASA)
		if v.IsMissing() {
			if score == 0 {
				out = append(out, r.With(clinical.ColASA, clinical.NumberValue(0)))
			}
			continue
		}
		if x, ok := v.Float(); ok && x == float64(score) {
			out = append(out, r)
		}
	}
	return out
}

// HistoryCondition selects a pre-operative comorbidity flag.
type HistoryCondition int

const (
	HistoryHypertension HistoryCondition = iota + 1
	HistoryDiabetes
)

// Column is the binary dataset field carrying the condition.
func (c HistoryCondition) Column() string {
	switch c {
	case HistoryHypertension:
		return clinical.ColHTN
	case HistoryDiabetes:
		return clinical.ColDM
	default:
		return ""
	}
}

func (c HistoryCondition) String() string {
	switch c {
	case HistoryHypertension:
		return "htn"
	case HistoryDiabetes:
		return "dm"
	default:
		return fmt.Sprintf("condition(%d)", int(c))
	}
}

// ParseHistoryCondition accepts htn/hypertension and dm/diabetes.
func ParseHistoryCondition(s string) (HistoryCondition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "htn", "hypertension":
		return HistoryHypertension, nil
	case "dm", "diabetes":
		return HistoryDiabetes, nil
	case "":
		return 0, &MissingRequiredArgumentError{Argument: "condition"}
	default:
		return 0, &InvalidFieldError{Field: s, Valid: []string{"htn", "dm"}}
	}
}

// FilterByMedicalHistory returns the records flagged positive (1) for cond.
func FilterByMedicalHistory(recs []clinical.Record, cond HistoryCondition) ([]clinical.Record, error) {
	col := cond.Column()
	if col == "" {
		return nil, &InvalidFieldError{Field: cond.String(), Valid: []string{"htn", "dm"}}
	}
	var out []clinical.Record
	for _, r := range recs {
		if x, ok := r.Get(col).Float(); ok && x == 1 {
			out = append(out, r)
		}
	}
	return out, nil
}
