package analysis

import (
	"math"
	"testing"

	"github.com/KaramelBytes/casescan/internal/clinical"
)

func TestComputeDurationsKeepsDivideBySixty(t *testing.T) {
	tbl := &clinical.Table{
		Columns: []string{"caseid", "anestart", "aneend", "opstart", "opend"},
		Records: []clinical.Record{
			rec("caseid", "1", "anestart", "0", "aneend", "3600", "opstart", "600", "opend", "3000"),
			rec("caseid", "2", "anestart", "0", "opstart", "0", "opend", "120"),
		},
	}
	out, err := ComputeDurations(tbl, DefaultDurationDivisor)
	if err != nil {
		t.Fatalf("ComputeDurations: %v", err)
	}
	if got, _ := out.Records[0].Get(clinical.ColAneDuration).Float(); got != 60.0 {
		t.Fatalf("anesthesia duration = %v, want 60", got)
	}
	if got, _ := out.Records[0].Get(clinical.ColOpDuration).Float(); got != 40.0 {
		t.Fatalf("surgery duration = %v, want 40", got)
	}
	if !out.Records[1].Get(clinical.ColAneDuration).IsMissing() {
		t.Fatalf("missing aneend must give a missing duration")
	}
	if !out.HasColumn(clinical.ColAneDuration) || !out.HasColumn(clinical.ColOpDuration) {
		t.Fatalf("derived columns not added: %v", out.Columns)
	}
	if _, ok := tbl.Records[0][clinical.ColAneDuration]; ok {
		t.Fatalf("input table mutated")
	}
}

func TestComputeDurationsDivisor(t *testing.T) {
	tbl := &clinical.Table{Records: []clinical.Record{rec("anestart", "0", "aneend", "3600")}}
	out, err := ComputeDurations(tbl, 3600)
	if err != nil {
		t.Fatalf("ComputeDurations: %v", err)
	}
	if got, _ := out.Records[0].Get(clinical.ColAneDuration).Float(); got != 1.0 {
		t.Fatalf("duration = %v, want 1", got)
	}
	if _, err := ComputeDurations(tbl, 0); err == nil {
		t.Fatalf("expected error for zero divisor")
	}
}

func TestAverageDurationsByProcedure(t *testing.T) {
	tbl := &clinical.Table{Records: []clinical.Record{
		rec("opname", "Lobectomy", "anestart", "0", "aneend", "600", "opstart", "0", "opend", "300"),
		rec("opname", "Cholecystectomy", "anestart", "0", "aneend", "120", "opstart", "0", "opend", "60"),
		rec("opname", "Lobectomy", "anestart", "0", "aneend", "1200", "opstart", "0"),
		rec("anestart", "0", "aneend", "60"),
	}}
	timed, err := ComputeDurations(tbl, DefaultDurationDivisor)
	if err != nil {
		t.Fatalf("ComputeDurations: %v", err)
	}
	avgs := AverageDurationsByProcedure(timed.Records)
	if len(avgs) != 2 {
		t.Fatalf("averages = %+v", avgs)
	}
	if avgs[0].Procedure != "Cholecystectomy" || avgs[0].AvgAnesthesia != 2 || avgs[0].AvgSurgery != 1 {
		t.Fatalf("cholecystectomy = %+v", avgs[0])
	}
	lob := avgs[1]
	if lob.Cases != 2 || lob.AvgAnesthesia != 15 || lob.AvgSurgery != 5 {
		t.Fatalf("lobectomy = %+v", lob)
	}

	rows := ProcedureAverages(avgs).Rows()
	if rows[1][0] != "Lobectomy" || rows[1][1] != "15" || rows[1][3] != "2" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestAverageWithNoDurations(t *testing.T) {
	avgs := AverageDurationsByProcedure([]clinical.Record{rec("opname", "Biopsy")})
	if len(avgs) != 1 || !math.IsNaN(avgs[0].AvgAnesthesia) {
		t.Fatalf("averages = %+v", avgs)
	}
	if got := ProcedureAverages(avgs).Rows()[0][1]; got != "" {
		t.Fatalf("NaN average should render empty, got %q", got)
	}
}

func TestFilterByProcedure(t *testing.T) {
	recs := []clinical.Record{
		rec("caseid", "1", "opname", "Lobectomy"),
		rec("caseid", "2", "opname", "lobectomy"),
		rec("caseid", "3"),
		rec("caseid", "4", "opname", "Lobectomy"),
	}
	got := FilterByProcedure(recs, "Lobectomy")
	if len(got) != 2 || got[1].Get("caseid").Raw != "4" {
		t.Fatalf("filter = %v", got)
	}
}
