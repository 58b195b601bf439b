// Package stats runs the categorical and linear tests used to relate case
// outcomes to risk factors.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/casescan/internal/clinical"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Contingency is a cross-tabulation of two categorical columns.
type Contingency struct {
	RowVar, ColVar string
	RowLabels      []string
	ColLabels      []string
	// Counts[i][j] is the number of cases with row label i and column label j.
	Counts [][]float64
}

// Total is the number of tabulated cases.
func (c *Contingency) Total() float64 {
	var n float64
	for _, row := range c.Counts {
		n += floats.Sum(row)
	}
	return n
}

// Header implements the sink row source: the dependent variable's labels
// run down the first column.
func (c *Contingency) Header() []string {
	return append([]string{c.RowVar + " \\ " + c.ColVar}, c.ColLabels...)
}

func (c *Contingency) Rows() [][]string {
	out := make([][]string, len(c.RowLabels))
	for i, lbl := range c.RowLabels {
		row := []string{lbl}
		for _, n := range c.Counts[i] {
			row = append(row, fmt.Sprintf("%g", n))
		}
		out[i] = row
	}
	return out
}

// ChiSquareResult is the independence test of one variable against the
// dependent variable.
type ChiSquareResult struct {
	Variable  string
	Table     *Contingency
	Statistic float64
	PValue    float64
	DoF       int
	Expected  [][]float64
	// Corrected is set when Yates' continuity correction was applied (dof 1).
	Corrected bool
}

// ChiSquareResults renders one summary row per tested variable.
type ChiSquareResults []ChiSquareResult

func (rs ChiSquareResults) Header() []string {
	return []string{"variable", "chi2", "dof", "p_value", "n", "yates"}
}

func (rs ChiSquareResults) Rows() [][]string {
	out := make([][]string, len(rs))
	for i, r := range rs {
		out[i] = []string{
			r.Variable,
			strconv.FormatFloat(r.Statistic, 'f', 4, 64),
			strconv.Itoa(r.DoF),
			strconv.FormatFloat(r.PValue, 'g', 4, 64),
			fmt.Sprintf("%g", r.Table.Total()),
			strconv.FormatBool(r.Corrected),
		}
	}
	return out
}

// ChiSquare tests dependent against each independent variable. Cases with a
// missing value in either column are left out of that variable's table.
func ChiSquare(t *clinical.Table, dependent string, independents []string) (ChiSquareResults, error) {
	if !t.HasColumn(dependent) {
		return nil, fmt.Errorf("dependent variable '%s' not found in dataset", dependent)
	}
	if len(independents) == 0 {
		return nil, fmt.Errorf("at least one independent variable is required")
	}
	for _, v := range independents {
		if !t.HasColumn(v) {
			return nil, fmt.Errorf("independent variable '%s' not found in dataset", v)
		}
	}
	out := make(ChiSquareResults, 0, len(independents))
	for _, v := range independents {
		ct := Crosstab(t.Records, dependent, v)
		out = append(out, chiSquareTest(v, ct))
	}
	return out, nil
}

// Crosstab tabulates rowVar against colVar; labels are ordered numerically
// for numbers, then lexically for text.
func Crosstab(recs []clinical.Record, rowVar, colVar string) *Contingency {
	type pair struct{ r, c string }
	counts := map[pair]float64{}
	rowSeen := map[string]clinical.Value{}
	colSeen := map[string]clinical.Value{}
	for _, rec := range recs {
		rv, cv := rec.Get(rowVar), rec.Get(colVar)
		if rv.IsMissing() || cv.IsMissing() {
			continue
		}
		rl, cl := label(rv), label(cv)
		rowSeen[rl] = rv
		colSeen[cl] = cv
		counts[pair{rl, cl}]++
	}
	ct := &Contingency{RowVar: rowVar, ColVar: colVar, RowLabels: sortedLabels(rowSeen), ColLabels: sortedLabels(colSeen)}
	ct.Counts = make([][]float64, len(ct.RowLabels))
	for i, rl := range ct.RowLabels {
		ct.Counts[i] = make([]float64, len(ct.ColLabels))
		for j, cl := range ct.ColLabels {
			ct.Counts[i][j] = counts[pair{rl, cl}]
		}
	}
	return ct
}

func label(v clinical.Value) string {
	if x, ok := v.Float(); ok {
		return clinical.NumberValue(x).Raw
	}
	return strings.TrimSpace(v.Raw)
}

func sortedLabels(seen map[string]clinical.Value) []string {
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := seen[out[i]], seen[out[j]]
		ax, aNum := a.Float()
		bx, bNum := b.Float()
		switch {
		case aNum && bNum:
			return ax < bx
		case aNum != bNum:
			return aNum
		default:
			return out[i] < out[j]
		}
	})
	return out
}

func chiSquareTest(variable string, ct *Contingency) ChiSquareResult {
	res := ChiSquareResult{Variable: variable, Table: ct, PValue: 1}
	nr, nc := len(ct.RowLabels), len(ct.ColLabels)
	if nr == 0 || nc == 0 {
		return res
	}
	rowSum := make([]float64, nr)
	colSum := make([]float64, nc)
	for i := range ct.Counts {
		for j, n := range ct.Counts[i] {
			rowSum[i] += n
			colSum[j] += n
		}
	}
	total := floats.Sum(rowSum)
	res.Expected = make([][]float64, nr)
	obs := make([]float64, 0, nr*nc)
	exp := make([]float64, 0, nr*nc)
	for i := range ct.Counts {
		res.Expected[i] = make([]float64, nc)
		for j, n := range ct.Counts[i] {
			e := rowSum[i] * colSum[j] / total
			res.Expected[i][j] = e
			obs = append(obs, n)
			exp = append(exp, e)
		}
	}
	res.DoF = (nr - 1) * (nc - 1)
	if res.DoF == 0 {
		return res
	}
	if res.DoF == 1 {
		// Yates: move each observed count up to 0.5 toward its expectation.
		for k := range obs {
			d := exp[k] - obs[k]
			obs[k] += math.Copysign(math.Min(0.5, math.Abs(d)), d)
		}
		res.Corrected = true
	}
	res.Statistic = stat.ChiSquare(obs, exp)
	res.PValue = distuv.ChiSquared{K: float64(res.DoF)}.Survival(res.Statistic)
	return res
}
