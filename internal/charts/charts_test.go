package charts

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/casescan/internal/analysis"
	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/KaramelBytes/casescan/internal/stats"
)

func rec(kv ...string) clinical.Record {
	r := clinical.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		if v := clinical.ParseValue(kv[i+1]); !v.IsMissing() {
			r[kv[i]] = v
		}
	}
	return r
}

func TestAgeGroupOf(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"0", "Toddler (0-3)", true},
		{"3", "Child (3-12)", true},
		{"18.5", "Teen (12-19)", true},
		{"40", "Adult (19-64)", true},
		{">89", "Older people (64-110)", true},
		{"110", "", false},
		{"", "", false},
		{"unknown", "", false},
	}
	for _, c := range cases {
		got, ok := AgeGroupOf(clinical.ParseValue(c.raw))
		if got != c.want || ok != c.ok {
			t.Errorf("AgeGroupOf(%q) = %q, %v; want %q, %v", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestAgeGenderBar(t *testing.T) {
	recs := []clinical.Record{
		rec("age", "2", "sex", "F"),
		rec("age", ">89", "sex", "M"),
		rec("age", "45", "sex", "M"),
	}
	var buf bytes.Buffer
	if err := AgeGenderBar(&buf, recs); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Gender Distribution by Age Group", "Older people (64-110)", "Toddler (0-3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenderDistributionFilter(t *testing.T) {
	recs := []clinical.Record{
		rec("sex", "F", "department", "General surgery"),
		rec("sex", "M", "department", "Thoracic surgery"),
	}
	var buf bytes.Buffer
	err := GenderDistribution(&buf, recs, KindBar, GenderFilter{Enabled: true, Column: "department"})
	var missing *analysis.MissingRequiredArgumentError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRequiredArgumentError, got %v", err)
	}

	buf.Reset()
	f := GenderFilter{Enabled: true, Column: "department", Value: "General surgery"}
	if err := GenderDistribution(&buf, recs, KindPie, f); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Gender distribution of department in General surgery") {
		t.Errorf("title missing filter")
	}
	if !strings.Contains(out, "({d}%)") {
		t.Errorf("pie labels should show percentages")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Pie "); err != nil || k != KindPie {
		t.Fatalf("ParseKind = %v, %v", k, err)
	}
	if _, err := ParseKind("donut"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWordFrequencies(t *testing.T) {
	recs := []clinical.Record{
		rec("dx", "Gastric cancer"),
		rec("dx", "gastric ulcer"),
		rec("dx", ""),
	}
	words := WordFrequencies(recs, "dx")
	if len(words) != 3 || words[0].Name != "gastric" || words[0].Value.(int) != 2 {
		t.Fatalf("words = %+v", words)
	}

	filtered := WordFrequencies([]clinical.Record{
		rec("dx", "Cancer of the stomach and duodenum"),
		rec("dx", "Injury of a leg, type 2"),
	}, "dx")
	var names []string
	for _, w := range filtered {
		names = append(names, w.Name)
	}
	if got := strings.Join(names, ","); got != "cancer,duodenum,injury,leg,stomach,type" {
		t.Fatalf("filtered words = %s", got)
	}

	var many []clinical.Record
	for i := 0; i < MaxWords+50; i++ {
		many = append(many, rec("dx", "w"+strings.Repeat("x", i)))
	}
	if got := len(WordFrequencies(many, "dx")); got != MaxWords {
		t.Fatalf("len = %d, want %d", got, MaxWords)
	}
	if err := WordCloud(&bytes.Buffer{}, nil, "dx"); err == nil {
		t.Fatalf("expected error for empty column")
	}
}

func TestRegressionScatter(t *testing.T) {
	reg := &stats.Regression{
		Dependent: "icu_days", Independent: "age",
		Intercept: 1, Slope: 2, RSquared: 1,
		X: []float64{1, 2, 3}, Y: []float64{3, 5, 7},
	}
	var buf bytes.Buffer
	if err := RegressionScatter(&buf, reg); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Linear Regression: icu_days vs age") {
		t.Errorf("title missing")
	}
}
