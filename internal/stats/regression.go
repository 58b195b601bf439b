package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/casescan/internal/clinical"
	"gonum.org/v1/gonum/stat"
)

// Regression is an ordinary least squares fit y = Intercept + Slope*x.
type Regression struct {
	Dependent   string
	Independent string
	Intercept   float64
	Slope       float64
	RSquared    float64
	X, Y        []float64
}

// N is the number of pairs the fit used.
func (r *Regression) N() int { return len(r.X) }

// Predict evaluates the fitted line at x.
func (r *Regression) Predict(x float64) float64 { return r.Intercept + r.Slope*x }

// LinearRegression fits dependent on independent over the cases where both
// are numeric.
func LinearRegression(t *clinical.Table, dependent, independent string) (*Regression, error) {
	for _, c := range []string{dependent, independent} {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("variable '%s' not found in dataset", c)
		}
	}
	reg := &Regression{Dependent: dependent, Independent: independent}
	for _, rec := range t.Records {
		x, okx := rec.Get(independent).Float()
		y, oky := rec.Get(dependent).Float()
		if !okx || !oky {
			continue
		}
		reg.X = append(reg.X, x)
		reg.Y = append(reg.Y, y)
	}
	if reg.N() < 2 {
		return nil, fmt.Errorf("regression of %s on %s needs at least 2 complete cases, found %d", dependent, independent, reg.N())
	}
	if stat.Variance(reg.X, nil) == 0 {
		return nil, fmt.Errorf("regression of %s on %s: %s is constant", dependent, independent, independent)
	}
	reg.Intercept, reg.Slope = stat.LinearRegression(reg.X, reg.Y, nil, false)
	reg.RSquared = stat.RSquared(reg.X, reg.Y, nil, reg.Intercept, reg.Slope)
	if math.IsNaN(reg.RSquared) {
		// constant y: the line is exact
		reg.RSquared = 1
	}
	return reg, nil
}

func (r *Regression) Header() []string {
	return []string{r.Independent, r.Dependent, "fitted"}
}

// Rows lists the observed pairs with their fitted values.
func (r *Regression) Rows() [][]string {
	out := make([][]string, r.N())
	for i := range r.X {
		out[i] = []string{fmtFloat(r.X[i]), fmtFloat(r.Y[i]), fmtFloat(r.Predict(r.X[i]))}
	}
	return out
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
