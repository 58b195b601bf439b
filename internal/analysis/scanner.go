// Package analysis scans clinical case records against a reference-range
// table and provides the selectors and derived-time calculations built on
// the resulting findings.
package analysis

import (
	"sort"

	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/KaramelBytes/casescan/internal/ranges"
)

// Finding is one case with at least one abnormal monitored value.
type Finding struct {
	PatientID string
	CaseID    string
	Age       clinical.Value
	Sex       clinical.Value
	Height    clinical.Value
	Weight    clinical.Value
	Diagnosis clinical.Value
	OpName    clinical.Value
	Approach  clinical.Value
	AneType   clinical.Value
	ASA       clinical.Value
	// Abnormal maps each violating field to the recorded value.
	Abnormal map[string]clinical.Value
}

// Fields lists the abnormal fields of f in range-table order.
func (f Finding) Fields(rt *ranges.Table) []string {
	out := make([]string, 0, len(f.Abnormal))
	for _, name := range rt.Fields() {
		if _, ok := f.Abnormal[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Scanner evaluates records against an injected range table.
type Scanner struct {
	ranges *ranges.Table
	// idColumn names the column used as the finding's lookup key.
	idColumn string
}

// NewScanner returns a scanner keyed by idColumn (subjectid when empty).
func NewScanner(rt *ranges.Table, idColumn string) *Scanner {
	if idColumn == "" {
		idColumn = clinical.ColSubjectID
	}
	return &Scanner{ranges: rt, idColumn: idColumn}
}

// Scan returns the finding for rec, or false when no monitored value
// violates its range.
func (s *Scanner) Scan(rec clinical.Record) (Finding, bool) {
	var abnormal map[string]clinical.Value
	for _, spec := range s.ranges.Specs() {
		v, ok := rec[spec.Field]
		if !ok || v.IsMissing() {
			continue
		}
		if !spec.Violates(v) {
			continue
		}
		if abnormal == nil {
			abnormal = make(map[string]clinical.Value)
		}
		abnormal[spec.Field] = v
	}
	if abnormal == nil {
		return Finding{}, false
	}
	return Finding{
		PatientID: rec.Get(s.idColumn).String(),
		CaseID:    rec.Get(clinical.ColCaseID).String(),
		Age:       rec.Get(clinical.ColAge),
		Sex:       rec.Get(clinical.ColSex),
		Height:    rec.Get(clinical.ColHeight),
		Weight:    rec.Get(clinical.ColWeight),
		Diagnosis: rec.Get(clinical.ColDiagnosis),
		OpName:    rec.Get(clinical.ColOpName),
		Approach:  rec.Get(clinical.ColApproach),
		AneType:   rec.Get(clinical.ColAneType),
		ASA:       rec.Get(clinical.ColASA),
		Abnormal:  abnormal,
	}, true
}

// ScanAll scans every record in order and keeps the ones with findings.
func (s *Scanner) ScanAll(recs []clinical.Record) *Findings {
	out := &Findings{ranges: s.ranges}
	for _, r := range recs {
		if f, ok := s.Scan(r); ok {
			out.Items = append(out.Items, f)
		}
	}
	return out
}

// Findings is the ordered abnormal-findings collection of one scan.
type Findings struct {
	Items  []Finding
	ranges *ranges.Table
}

// NewFindings wraps items scanned against rt.
func NewFindings(rt *ranges.Table, items []Finding) *Findings {
	return &Findings{Items: items, ranges: rt}
}

func (fs *Findings) Len() int { return len(fs.Items) }

// Ranges is the table the collection was scanned against.
func (fs *Findings) Ranges() *ranges.Table { return fs.ranges }

// FieldCount is the number of findings that flag one field.
type FieldCount struct {
	Field string
	Count int
}

// CountByField tallies abnormal fields, most frequent first.
func (fs *Findings) CountByField() []FieldCount {
	counts := map[string]int{}
	for _, f := range fs.Items {
		for k := range f.Abnormal {
			counts[k]++
		}
	}
	out := make([]FieldCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, FieldCount{Field: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Field < out[j].Field
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// identity columns of the flat findings layout, in output order.
var identityHeader = []string{
	"patient_id", "caseid", "age", "gender", "height", "weight",
	"diagnosis", "opname", "procedure", "anes", "ASA",
}

func (f Finding) identityRow() []string {
	return []string{
		f.PatientID, f.CaseID, f.Age.String(), f.Sex.String(), f.Height.String(), f.Weight.String(),
		f.Diagnosis.String(), f.OpName.String(), f.Approach.String(), f.AneType.String(), f.ASA.String(),
	}
}

// Header is the flat layout: identity columns then every monitored field.
func (fs *Findings) Header() []string {
	h := make([]string, 0, len(identityHeader)+fs.ranges.Len())
	h = append(h, identityHeader...)
	return append(h, fs.ranges.Fields()...)
}

// Rows renders one row per finding; monitored fields that are within range
// are left empty.
func (fs *Findings) Rows() [][]string {
	fields := fs.ranges.Fields()
	out := make([][]string, 0, len(fs.Items))
	for _, f := range fs.Items {
		row := f.identityRow()
		for _, name := range fields {
			row = append(row, f.Abnormal[name].String())
		}
		out = append(out, row)
	}
	return out
}
