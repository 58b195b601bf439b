package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.IDColumn != "subjectid" || c.DurationDivisor != 60 || !c.StrictColumns || c.LogLevel != "info" || c.OutputDir != "." {
		t.Fatalf("defaults = %+v", c)
	}
	if c.DelimiterRune() != 0 {
		t.Fatalf("delimiter should be sniffed by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{
		LogLevel: "debug", LogFormat: "json", IDColumn: "caseid",
		DurationDivisor: 3600, StrictColumns: false, Delimiter: `\t`, OutputDir: "out",
	}
	if err := Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *in {
		t.Fatalf("got %+v, want %+v", got, in)
	}
	if got.DelimiterRune() != '\t' {
		t.Fatalf("delimiter = %q", got.DelimiterRune())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("duration_divisor: 3600\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CASESCAN_DURATION_DIVISOR", "1")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DurationDivisor != 1 {
		t.Fatalf("divisor = %v", c.DurationDivisor)
	}
}

func TestValidate(t *testing.T) {
	bad := []Global{
		{IDColumn: "subjectid", DurationDivisor: 0},
		{IDColumn: "", DurationDivisor: 60},
		{IDColumn: "subjectid", DurationDivisor: 60, Delimiter: ";;"},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("expected error for %+v", c)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for explicit missing config file")
	}
}
