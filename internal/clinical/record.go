package clinical

import (
	"fmt"
	"strings"
)

// Record is one case: column name to cell. Absent keys read as Missing.
// Records are treated as immutable; use With to derive a changed copy.
type Record map[string]Value

// Get returns the cell for col, Missing when absent.
func (r Record) Get(col string) Value {
	return r[col]
}

// With returns a copy of r with col set to v.
func (r Record) With(col string, v Value) Record {
	out := make(Record, len(r)+1)
	for k, x := range r {
		out[k] = x
	}
	out[col] = v
	return out
}

// Table is an ordered set of records sharing a column list.
type Table struct {
	Name    string
	Columns []string
	Records []Record
}

// HasColumn reports whether the table carries col.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Derive returns a table with the same name and columns (plus extra, if not
// already present) holding recs.
func (t *Table) Derive(recs []Record, extra ...string) *Table {
	cols := make([]string, len(t.Columns), len(t.Columns)+len(extra))
	copy(cols, t.Columns)
	for _, e := range extra {
		if !t.HasColumn(e) {
			cols = append(cols, e)
		}
	}
	return &Table{Name: t.Name, Columns: cols, Records: recs}
}

// Header implements the sink row source.
func (t *Table) Header() []string { return t.Columns }

// Rows renders every record in column order.
func (t *Table) Rows() [][]string {
	out := make([][]string, 0, len(t.Records))
	for _, r := range t.Records {
		row := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = r.Get(c).String()
		}
		out = append(out, row)
	}
	return out
}

// UnknownColumnError reports header cells outside the record schema.
type UnknownColumnError struct {
	Columns []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown columns %s; not part of the clinical case schema", strings.Join(e.Columns, ", "))
}

// HeaderOptions controls header validation.
type HeaderOptions struct {
	// Strict rejects columns outside KnownColumns instead of dropping them.
	Strict bool
}

// ValidateHeader normalises header cells and checks them against the schema.
// keep[i] is false for columns that must be dropped; dropped lists their names.
func ValidateHeader(header []string, opt HeaderOptions) (cols []string, keep []bool, dropped []string, err error) {
	seen := make(map[string]struct{}, len(header))
	keep = make([]bool, len(header))
	var unknown []string
	for i, h := range header {
		name := cleanHeader(h)
		if _, dup := seen[name]; dup {
			return nil, nil, nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = struct{}{}
		if !IsKnownColumn(name) {
			unknown = append(unknown, name)
			continue
		}
		keep[i] = true
		cols = append(cols, name)
	}
	if len(unknown) > 0 && opt.Strict {
		return nil, nil, nil, &UnknownColumnError{Columns: unknown}
	}
	return cols, keep, unknown, nil
}

// BuildRecord maps a raw row onto the validated header. Short rows are padded
// with Missing; extra cells are ignored.
func BuildRecord(header []string, keep []bool, row []string) Record {
	rec := make(Record, len(header))
	for i, h := range header {
		if !keep[i] {
			continue
		}
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		v := ParseValue(cell)
		if v.IsMissing() {
			continue
		}
		rec[cleanHeader(h)] = v
	}
	return rec
}

func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
