package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func sampleFindings() *Findings {
	s := newTestScanner()
	return s.ScanAll([]clinical.Record{
		rec("subjectid", "100", "sex", "M", "preop_k", "6.0", "preop_na", "150"),
		rec("subjectid", "200", "sex", "F", "preop_k", "2.9"),
		rec("subjectid", "300", "sex", "F", "preop_k", "6.0", "preop_ecg", "Atrial Fibrillation"),
		rec("subjectid", "400", "sex", "M", "preop_hb", "9.1"),
	})
}

func TestGroupByField(t *testing.T) {
	view, err := GroupByField(sampleFindings(), "preop_k")
	if err != nil {
		t.Fatalf("GroupByField: %v", err)
	}
	if view.Size() != 3 || len(view.Groups) != 2 {
		t.Fatalf("groups = %+v", view.Groups)
	}
	if view.Groups[0].Key.Num != 2.9 || view.Groups[1].Key.Num != 6.0 {
		t.Fatalf("groups not ordered by value: %v, %v", view.Groups[0].Key, view.Groups[1].Key)
	}
	if ids := view.Groups[1].Findings; ids[0].PatientID != "100" || ids[1].PatientID != "300" {
		t.Fatalf("group members out of order: %+v", ids)
	}

	cols := strings.Join(view.Columns, ",")
	if !strings.Contains(cols, "preop_k") || strings.Contains(cols, "preop_na") || strings.Contains(cols, "preop_hb") {
		t.Fatalf("columns = %s", cols)
	}
	rows := view.Rows()
	if len(rows) != 3 || len(rows[0]) != len(view.Columns) {
		t.Fatalf("rows = %v", rows)
	}
}

func TestGroupByFieldValidButUnused(t *testing.T) {
	view, err := GroupByField(sampleFindings(), "preop_sao2")
	if err != nil {
		t.Fatalf("valid field must succeed: %v", err)
	}
	if view.Size() != 0 || len(view.Rows()) != 0 {
		t.Fatalf("expected empty view, got %+v", view.Groups)
	}
}

func TestGroupByFieldInvalid(t *testing.T) {
	for _, name := range []string{"asa", "", "PREOP_K"} {
		_, err := GroupByField(sampleFindings(), name)
		var ife *InvalidFieldError
		if !errors.As(err, &ife) {
			t.Fatalf("%q: expected InvalidFieldError, got %v", name, err)
		}
		if len(ife.Valid) != 20 || !strings.Contains(err.Error(), "preop_sao2") {
			t.Fatalf("error should list valid fields: %v", err)
		}
	}
}

func TestLookupCase(t *testing.T) {
	fs := sampleFindings()
	a, err := LookupCase(fs, "300")
	if err != nil {
		t.Fatalf("LookupCase: %v", err)
	}
	b, err := LookupCase(fs, "300")
	if err != nil {
		t.Fatalf("LookupCase again: %v", err)
	}
	if a.PatientID != b.PatientID || len(a.Abnormal) != len(b.Abnormal) {
		t.Fatalf("lookup not idempotent: %+v vs %+v", a, b)
	}
	if fs.Len() != 4 {
		t.Fatalf("collection modified")
	}

	_, err = LookupCase(fs, "999")
	var cnf *CaseNotFoundError
	if !errors.As(err, &cnf) || cnf.CaseID != "999" {
		t.Fatalf("expected CaseNotFoundError, got %v", err)
	}

	_, err = LookupCase(fs, " ")
	var mra *MissingRequiredArgumentError
	if !errors.As(err, &mra) {
		t.Fatalf("expected MissingRequiredArgumentError, got %v", err)
	}
}

func TestLookupCaseField(t *testing.T) {
	fs := sampleFindings()
	v, err := LookupCaseField(fs, "300", "preop_ecg")
	if err != nil || v.Raw != "Atrial Fibrillation" {
		t.Fatalf("LookupCaseField = %+v, %v", v, err)
	}

	_, err = LookupCaseField(fs, "300", "preop_na")
	var ife *InvalidFieldError
	if !errors.As(err, &ife) {
		t.Fatalf("expected InvalidFieldError, got %v", err)
	}
	if strings.Join(ife.Valid, ",") != "preop_ecg,preop_k" {
		t.Fatalf("valid fields = %v, want the case's abnormal fields", ife.Valid)
	}

	_, err = LookupCaseField(fs, "404", "preop_k")
	var cnf *CaseNotFoundError
	if !errors.As(err, &cnf) {
		t.Fatalf("expected CaseNotFoundError first, got %v", err)
	}
}

func TestFilterByClassification(t *testing.T) {
	recs := []clinical.Record{
		rec("subjectid", "1", "asa", "2"),
		rec("subjectid", "2", "asa", ""),
		rec("subjectid", "3", "asa", "3"),
		rec("subjectid", "4", "asa", "0"),
		rec("subjectid", "5", "asa", "2.0"),
	}
	log, hook := logtest.NewNullLogger()

	got := FilterByClassification(recs, 2, log)
	if len(got) != 2 || got[0].Get("subjectid").Raw != "1" || got[1].Get("subjectid").Raw != "5" {
		t.Fatalf("asa 2 = %v", got)
	}
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("unexpected warning for asa 2")
	}

	got = FilterByClassification(recs, 0, log)
	if len(got) != 2 || got[0].Get("subjectid").Raw != "2" || got[1].Get("subjectid").Raw != "4" {
		t.Fatalf("asa 0 = %v", got)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Message != UnknownASAWarning {
		t.Fatalf("expected warning, got %+v", entry)
	}
	if got[0].Get("asa").Raw != "0" {
		t.Fatalf("missing asa should read 0 in the selection, got %q", got[0].Get("asa").Raw)
	}
	if !recs[1].Get("asa").IsMissing() {
		t.Fatalf("input record mutated")
	}
}

func TestFilterByMedicalHistory(t *testing.T) {
	recs := []clinical.Record{
		rec("subjectid", "1", "preop_htn", "1", "preop_dm", "0"),
		rec("subjectid", "2", "preop_htn", "0", "preop_dm", "1"),
		rec("subjectid", "3", "preop_htn", "1", "preop_dm", "1"),
		rec("subjectid", "4"),
	}
	htn, err := FilterByMedicalHistory(recs, HistoryHypertension)
	if err != nil || len(htn) != 2 || htn[1].Get("subjectid").Raw != "3" {
		t.Fatalf("htn = %v, %v", htn, err)
	}
	dm, err := FilterByMedicalHistory(recs, HistoryDiabetes)
	if err != nil || len(dm) != 2 || dm[0].Get("subjectid").Raw != "2" {
		t.Fatalf("dm = %v, %v", dm, err)
	}
	if _, err := FilterByMedicalHistory(recs, HistoryCondition(9)); err == nil {
		t.Fatalf("expected error for unknown condition")
	}
}

func TestParseHistoryCondition(t *testing.T) {
	tests := map[string]HistoryCondition{"htn": HistoryHypertension, "Diabetes": HistoryDiabetes, " dm ": HistoryDiabetes}
	for in, want := range tests {
		got, err := ParseHistoryCondition(in)
		if err != nil || got != want {
			t.Errorf("ParseHistoryCondition(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseHistoryCondition(""); err == nil {
		t.Errorf("expected error for empty condition")
	}
	if _, err := ParseHistoryCondition("copd"); err == nil {
		t.Errorf("expected error for unsupported condition")
	}
}
