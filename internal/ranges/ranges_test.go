package ranges

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/casescan/internal/clinical"
)

func TestDefaultTable(t *testing.T) {
	tbl := Default()
	if tbl.Len() != 20 {
		t.Fatalf("default table has %d fields, want 20", tbl.Len())
	}
	fields := tbl.Fields()
	if fields[0] != "preop_ecg" || fields[19] != "preop_sao2" {
		t.Fatalf("unexpected order: %v", fields)
	}
	k, ok := tbl.Lookup("preop_k")
	if !ok || k.IsCategory || k.Low != 3.5 || k.High != 5.5 {
		t.Fatalf("preop_k = %+v", k)
	}
	if tbl.Has("asa") {
		t.Fatalf("asa must not be monitored")
	}
}

func TestSpecViolates(t *testing.T) {
	k := Interval("preop_k", 3.5, 5.5)
	ecg := Category("preop_ecg", "Normal Sinus Rhythm")
	tests := []struct {
		name string
		spec Spec
		in   string
		want bool
	}{
		{"k high", k, "6.0", true},
		{"k low", k, "3.4", true},
		{"k normal", k, "4.0", false},
		{"k lower bound inclusive", k, "3.5", false},
		{"k upper bound inclusive", k, "5.5", false},
		{"k missing", k, "", false},
		{"k sentinel NSR", k, "Normal Sinus Rhythm", false},
		{"k sentinel Normal", k, "Normal", false},
		{"k malformed text", k, "hemolysed", false},
		{"ecg match", ecg, "Normal Sinus Rhythm", false},
		{"ecg afib", ecg, "Atrial Fibrillation", true},
		{"ecg missing", ecg, "NaN", false},
		{"ecg numeric", ecg, "1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.Violates(clinical.ParseValue(tt.in)); got != tt.want {
				t.Fatalf("Violates(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewRejectsBadSpecs(t *testing.T) {
	cases := [][]Spec{
		nil,
		{Interval("", 1, 2)},
		{Interval("a", 1, 2), Category("a", "x")},
		{Interval("a", 3, 2)},
		{Interval("a", math.NaN(), 2)},
		{Interval("a", 1, math.NaN())},
	}
	for i, specs := range cases {
		if _, err := New(specs); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Default()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Default().Specs()
	specs := got.Specs()
	if len(specs) != len(want) {
		t.Fatalf("len = %d, want %d", len(specs), len(want))
	}
	for i := range want {
		if specs[i] != want[i] {
			t.Fatalf("spec %d = %+v, want %+v", i, specs[i], want[i])
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	docs := []string{
		"ranges:\n  - field: preop_k\n    low: 3.5\n",
		"ranges:\n  - field: preop_k\n    category: x\n    low: 1\n    high: 2\n",
		"ranges:\n  - field: preop_k\n    lo: 1\n",
		"ranges:\n  - field: preop_k\n    low: .nan\n    high: 5.5\n",
	}
	for _, d := range docs {
		if _, err := Decode(strings.NewReader(d)); err == nil {
			t.Errorf("expected error for %q", d)
		}
	}
}
