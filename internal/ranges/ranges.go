// Package ranges holds the reference-range table that decides whether a
// pre-operative measurement is abnormal.
package ranges

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/casescan/internal/clinical"
)

// Spec is the accepted value of one monitored field: either a category
// (IsCategory) or a closed numeric interval [Low, High].
type Spec struct {
	Field      string
	IsCategory bool
	Category   string
	Low, High  float64
}

func (s Spec) String() string {
	if s.IsCategory {
		return fmt.Sprintf("%q", s.Category)
	}
	return fmt.Sprintf("[%g, %g]", s.Low, s.High)
}

// Category builds a categorical spec.
func Category(field, value string) Spec {
	return Spec{Field: field, IsCategory: true, Category: value}
}

// Interval builds a numeric spec.
func Interval(field string, low, high float64) Spec {
	return Spec{Field: field, Low: low, High: high}
}

// exempt strings never count against a numeric interval.
var exempt = map[string]struct{}{
	"Normal Sinus Rhythm": {},
	"Normal":              {},
}

// Violates reports whether v falls outside s. Missing values, and text in a
// numeric field, are not evaluated and never violate.
func (s Spec) Violates(v clinical.Value) bool {
	if v.IsMissing() {
		return false
	}
	if s.IsCategory {
		return v.Raw != s.Category
	}
	if _, ok := exempt[v.Raw]; ok {
		return false
	}
	x, ok := v.Float()
	if !ok {
		return false
	}
	return x < s.Low || x > s.High
}

// Table is an immutable, ordered set of specs keyed by field name.
type Table struct {
	specs []Spec
	index map[string]int
}

// New validates specs and builds a table. Order is preserved.
func New(specs []Spec) (*Table, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("range table is empty")
	}
	t := &Table{specs: make([]Spec, len(specs)), index: make(map[string]int, len(specs))}
	for i, s := range specs {
		s.Field = strings.TrimSpace(s.Field)
		if s.Field == "" {
			return nil, fmt.Errorf("range %d: field name is empty", i+1)
		}
		if _, dup := t.index[s.Field]; dup {
			return nil, fmt.Errorf("range %q defined twice", s.Field)
		}
		if !s.IsCategory && (math.IsNaN(s.Low) || math.IsNaN(s.High)) {
			return nil, fmt.Errorf("range %q: bounds must be numbers", s.Field)
		}
		if !s.IsCategory && s.Low > s.High {
			return nil, fmt.Errorf("range %q: low %g exceeds high %g", s.Field, s.Low, s.High)
		}
		t.specs[i] = s
		t.index[s.Field] = i
	}
	return t, nil
}

// Lookup returns the spec for field.
func (t *Table) Lookup(field string) (Spec, bool) {
	i, ok := t.index[field]
	if !ok {
		return Spec{}, false
	}
	return t.specs[i], true
}

// Has reports whether field is monitored.
func (t *Table) Has(field string) bool {
	_, ok := t.index[field]
	return ok
}

// Fields lists monitored field names in table order.
func (t *Table) Fields() []string {
	out := make([]string, len(t.specs))
	for i, s := range t.specs {
		out[i] = s.Field
	}
	return out
}

// Specs returns a copy of the specs in table order.
func (t *Table) Specs() []Spec {
	out := make([]Spec, len(t.specs))
	copy(out, t.specs)
	return out
}

// Len is the number of monitored fields.
func (t *Table) Len() int { return len(t.specs) }

// Default is the built-in pre-operative reference table. Units: hb g/dL,
// plt x1000/mcL, pt %, aptt sec, na/k/hco3/be mmol/L, gluc/bun/cr mg/dL,
// alb g/dL, ast/alt IU/L, pao2/paco2 mmHg, sao2 %.
func Default() *Table {
	t, err := New([]Spec{
		Category("preop_ecg", "Normal Sinus Rhythm"),
		Category("preop_pft", "Normal"),
		Interval("preop_hb", 13, 17),
		Interval("preop_plt", 130, 400),
		Interval("preop_pt", 80, 120),
		Interval("preop_aptt", 26.7, 36.6),
		Interval("preop_na", 135, 145),
		Interval("preop_k", 3.5, 5.5),
		Interval("preop_gluc", 70, 110),
		Interval("preop_alb", 3.3, 5.2),
		Interval("preop_ast", 1, 40),
		Interval("preop_alt", 1, 40),
		Interval("preop_bun", 10, 26),
		Interval("preop_cr", 0.70, 1.40),
		Interval("preop_ph", 7.35, 7.45),
		Interval("preop_hco3", 18, 23),
		Interval("preop_be", -2.0, 3.0),
		Interval("preop_pao2", 83, 108),
		Interval("preop_paco2", 35, 48),
		Interval("preop_sao2", 95, 98),
	})
	if err != nil {
		panic(err)
	}
	return t
}
