package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/casescan/internal/clinical"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DescribeOptions controls the dataset summary.
type DescribeOptions struct {
	// GroupBy computes per-group numeric summaries for the given columns.
	GroupBy []string
	// Outlier detection via robust Z-score (MAD); counts |z| > OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
	// TopN categorical values listed per column.
	TopN int
}

// DefaultDescribeOptions returns reasonable defaults for a case table.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{Outliers: true, OutlierThreshold: 3.5, TopN: 5}
}

// Report summarises every column of a case table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Groups   []GroupResult
	Warnings []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical|text|empty
	NonNull int
	Missing int
	Unique  int

	// Text cells in a numeric column, e.g. de-identified ages like ">89".
	NonNumeric int

	// Numeric stats
	Min, Max  float64
	Mean, Std float64
	Median    float64

	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64

	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Column  string
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// categoricalMax is the largest distinct-value count still summarised as
// categorical rather than free text.
const categoricalMax = 20

// Describe summarises t. Unknown GroupBy columns are reported as warnings.
func Describe(t *clinical.Table, opt DescribeOptions) *Report {
	rep := &Report{Name: t.Name, Rows: len(t.Records)}
	numeric := map[string]bool{}
	for _, col := range t.Columns {
		cs := describeColumn(t.Records, col, opt)
		if cs.Kind == "numeric" {
			numeric[col] = true
		}
		if cs.NonNumeric > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %d non-numeric values skipped", col, cs.NonNumeric))
		}
		rep.Cols = append(rep.Cols, cs)
	}
	for _, g := range opt.GroupBy {
		if !t.HasColumn(g) {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("group-by column %q not found", g))
			continue
		}
		rep.Groups = append(rep.Groups, groupSummaries(t, g, numeric)...)
	}
	return rep
}

func describeColumn(recs []clinical.Record, col string, opt DescribeOptions) ColumnSummary {
	cs := ColumnSummary{Name: col}
	counts := map[string]int{}
	var nums []float64
	for _, r := range recs {
		v := r.Get(col)
		if v.IsMissing() {
			cs.Missing++
			continue
		}
		cs.NonNull++
		counts[v.Raw]++
		if x, ok := v.Float(); ok {
			nums = append(nums, x)
		}
	}
	cs.Unique = len(counts)

	switch {
	case cs.NonNull == 0:
		cs.Kind = "empty"
		return cs
	case len(nums)*2 > cs.NonNull:
		// mostly numeric
		cs.Kind = "numeric"
		cs.NonNumeric = cs.NonNull - len(nums)
	case cs.Unique <= categoricalMax:
		cs.Kind = "categorical"
	default:
		cs.Kind = "text"
	}

	if cs.Kind == "numeric" {
		cs.Min, cs.Max = floats.Min(nums), floats.Max(nums)
		if len(nums) > 1 {
			cs.Mean, cs.Std = stat.MeanStdDev(nums, nil)
		} else {
			cs.Mean = nums[0]
		}
		var mad float64
		cs.Median, mad = medianMAD(nums)
		if opt.Outliers && mad > 0 {
			cs.OutlierThreshold = opt.OutlierThreshold
			for _, x := range nums {
				z := 0.6745 * (x - cs.Median) / mad
				if math.Abs(z) > opt.OutlierThreshold {
					cs.OutliersCount++
					cs.OutliersMaxAbsZ = math.Max(cs.OutliersMaxAbsZ, math.Abs(z))
				}
			}
		}
		return cs
	}

	top := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		top = append(top, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	n := opt.TopN
	if n <= 0 || n > len(top) {
		n = len(top)
	}
	if cs.Kind == "categorical" {
		cs.TopValues = top[:n]
	} else {
		for _, c := range top[:min(n, 3)] {
			cs.ExampleTexts = append(cs.ExampleTexts, c.Value)
		}
	}
	return cs
}

func groupSummaries(t *clinical.Table, col string, numeric map[string]bool) []GroupResult {
	byKey := map[string]*GroupResult{}
	var keys []string
	for _, r := range t.Records {
		key := r.Get(col).String()
		if key == "" {
			key = "(missing)"
		}
		g := byKey[key]
		if g == nil {
			g = &GroupResult{Column: col, Key: key, Metrics: map[string]NumSummary{}}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.Size++
		for name := range numeric {
			if name == col {
				continue
			}
			x, ok := r.Get(name).Float()
			if !ok {
				continue
			}
			m := g.Metrics[name]
			if m.Count == 0 {
				m.Min, m.Max = x, x
			}
			m.Min, m.Max = math.Min(m.Min, x), math.Max(m.Max, x)
			// running mean
			m.Count++
			m.Mean += (x - m.Mean) / float64(m.Count)
			g.Metrics[name] = m
		}
	}
	sort.Strings(keys)
	out := make([]GroupResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Cases: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		missPct := 0.0
		if total := c.NonNull + c.Missing; total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", c.Name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %.4g, median %.4g", c.Min, c.Max, c.Mean, c.Std, c.Median))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(": top ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString(": e.g. ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUP-BY SUMMARY]\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s=%s (n=%d)\n", g.Column, safeVal(g.Key), g.Size))
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			// print up to 6 metrics
			for _, k := range keys[:min(len(keys), 6)] {
				m := g.Metrics[k]
				b.WriteString(fmt.Sprintf("  • %s: mean %.4g (min %.4g, max %.4g, n=%d)\n", k, m.Mean, m.Min, m.Max, m.Count))
			}
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
