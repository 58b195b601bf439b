// Package charts renders descriptive plots of a case table as standalone
// HTML pages.
package charts

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/casescan/internal/analysis"
	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/KaramelBytes/casescan/internal/stats"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// AgeGroup is a half-open age band [Low, High).
type AgeGroup struct {
	Label     string
	Low, High float64
}

var AgeGroups = []AgeGroup{
	{"Toddler (0-3)", 0, 3},
	{"Child (3-12)", 3, 12},
	{"Teen (12-19)", 12, 19},
	{"Adult (19-64)", 19, 64},
	{"Older people (64-110)", 64, 110},
}

// AgeGroupOf returns the band label for a raw age cell. De-identified ages
// such as ">89" are read without the leading '>'.
func AgeGroupOf(v clinical.Value) (string, bool) {
	if v.IsMissing() {
		return "", false
	}
	age, ok := v.Float()
	if !ok {
		f, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(v.Raw), ">"), 64)
		if err != nil {
			return "", false
		}
		age = f
	}
	for _, g := range AgeGroups {
		if age >= g.Low && age < g.High {
			return g.Label, true
		}
	}
	return "", false
}

// Kind selects the rendering of a distribution.
type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// ParseKind accepts "bar" or "pie".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBar, KindPie:
		return k, nil
	}
	return "", fmt.Errorf("unknown chart kind %q (use bar or pie)", s)
}

func initOpts(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "100%",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func sexes(recs []clinical.Record) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range recs {
		s := r.Get(clinical.ColSex)
		if s.IsMissing() || seen[s.Raw] {
			continue
		}
		seen[s.Raw] = true
		out = append(out, s.Raw)
	}
	sort.Strings(out)
	return out
}

// AgeGenderBar plots case counts per age group, one series per sex.
func AgeGenderBar(w io.Writer, recs []clinical.Record) error {
	counts := map[string]map[string]int{}
	for _, r := range recs {
		g, ok := AgeGroupOf(r.Get(clinical.ColAge))
		sex := r.Get(clinical.ColSex)
		if !ok || sex.IsMissing() {
			continue
		}
		if counts[sex.Raw] == nil {
			counts[sex.Raw] = map[string]int{}
		}
		counts[sex.Raw][g]++
	}
	labels := make([]string, len(AgeGroups))
	for i, g := range AgeGroups {
		labels[i] = g.Label
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(initOpts("Gender Distribution by Age Group"),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Age Group"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)...)
	bar.SetXAxis(labels)
	for _, sex := range sexes(recs) {
		data := make([]opts.BarData, len(labels))
		for i, l := range labels {
			data[i] = opts.BarData{Value: counts[sex][l]}
		}
		bar.AddSeries(sex, data)
	}
	return bar.Render(w)
}

// GenderFilter restricts GenderDistribution to cases where Column equals
// Value. The zero value disables filtering.
type GenderFilter struct {
	Enabled bool
	Column  string
	Value   string
}

// GenderDistribution plots counts by sex.
func GenderDistribution(w io.Writer, recs []clinical.Record, kind Kind, f GenderFilter) error {
	title := "Gender Distribution"
	if f.Enabled {
		if strings.TrimSpace(f.Value) == "" {
			return &analysis.MissingRequiredArgumentError{Argument: "filter value"}
		}
		if f.Column == "" {
			return &analysis.MissingRequiredArgumentError{Argument: "filter column"}
		}
		want := clinical.ParseValue(f.Value)
		var kept []clinical.Record
		for _, r := range recs {
			if r.Get(f.Column).Equal(want) {
				kept = append(kept, r)
			}
		}
		recs = kept
		title = fmt.Sprintf("Gender distribution of %s in %s", f.Column, f.Value)
	}

	counts := map[string]int{}
	for _, r := range recs {
		if s := r.Get(clinical.ColSex); !s.IsMissing() {
			counts[s.Raw]++
		}
	}
	labels := sexes(recs)

	switch kind {
	case KindPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(initOpts(title)...)
		data := make([]opts.PieData, len(labels))
		for i, l := range labels {
			data[i] = opts.PieData{Name: l, Value: counts[l]}
		}
		pie.AddSeries("gender", data).SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c} ({d}%)"}),
		)
		return pie.Render(w)
	case KindBar, "":
		bar := charts.NewBar()
		bar.SetGlobalOptions(append(initOpts(title),
			charts.WithXAxisOpts(opts.XAxis{Name: "Gender"}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
		)...)
		data := make([]opts.BarData, len(labels))
		for i, l := range labels {
			data[i] = opts.BarData{Value: counts[l]}
		}
		bar.SetXAxis(labels).AddSeries("gender", data)
		return bar.Render(w)
	default:
		return fmt.Errorf("unknown chart kind %q", kind)
	}
}

// MaxWords caps the number of words in a word cloud.
const MaxWords = 200

// stopwords are left out of word clouds.
var stopwords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be because
been before being below between both but by can could did do does doing down during each few for
from further had has have having he her here hers herself him himself his how i if in into is it
its itself just me more most my myself no nor not of off on once only or other our ours ourselves
out over own same she should so some such than that the their theirs them themselves then there
these they this those through to too under until up very was we were what when where which while
who whom why will with would you your yours yourself yourselves`) {
		stopwords[w] = true
	}
}

// keepWord drops stopwords, single characters and bare numbers.
func keepWord(w string) bool {
	if len([]rune(w)) < 2 || stopwords[w] {
		return false
	}
	return strings.Trim(w, "0123456789-'") != ""
}

// WordFrequencies counts the words of a text column, most frequent first.
func WordFrequencies(recs []clinical.Record, column string) []opts.WordCloudData {
	counts := map[string]int{}
	for _, r := range recs {
		v := r.Get(column)
		if v.IsMissing() {
			continue
		}
		for _, word := range strings.FieldsFunc(v.Raw, func(c rune) bool {
			return !(c == '-' || c == '\'' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c > 127)
		}) {
			if word = strings.ToLower(word); keepWord(word) {
				counts[word]++
			}
		}
	}
	out := make([]opts.WordCloudData, 0, len(counts))
	for word, n := range counts {
		out = append(out, opts.WordCloudData{Name: word, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Value.(int), out[j].Value.(int)
		if a != b {
			return a > b
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > MaxWords {
		out = out[:MaxWords]
	}
	return out
}

// WordCloud renders the word frequencies of column.
func WordCloud(w io.Writer, recs []clinical.Record, column string) error {
	words := WordFrequencies(recs, column)
	if len(words) == 0 {
		return fmt.Errorf("column %s has no text to plot", column)
	}
	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(initOpts("Word Cloud of " + column)...)
	wc.AddSeries(column, words)
	return wc.Render(w)
}

// RegressionScatter plots the observed pairs and the fitted line.
func RegressionScatter(w io.Writer, reg *stats.Regression) error {
	title := fmt.Sprintf("Linear Regression: %s vs %s", reg.Dependent, reg.Independent)
	sc := charts.NewScatter()
	sc.SetGlobalOptions(append(initOpts(title),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: reg.Independent, Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: reg.Dependent, Type: "value", Scale: opts.Bool(true)}),
	)...)

	points := make([]opts.ScatterData, reg.N())
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range reg.X {
		points[i] = opts.ScatterData{Value: []float64{reg.X[i], reg.Y[i]}}
		lo, hi = math.Min(lo, reg.X[i]), math.Max(hi, reg.X[i])
	}
	sc.AddSeries("observed", points)

	fit := charts.NewLine()
	fit.AddSeries(fmt.Sprintf("y = %.3f + %.3fx (R² %.3f)", reg.Intercept, reg.Slope, reg.RSquared), []opts.LineData{
		{Value: []float64{lo, reg.Predict(lo)}},
		{Value: []float64{hi, reg.Predict(hi)}},
	})
	sc.Overlap(fit)
	return sc.Render(w)
}
