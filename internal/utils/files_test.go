package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "avg.csv")
	if err := SafeWriteFile(p, []byte("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := SafeWriteFile(p, []byte("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "new" {
		t.Fatalf("content = %q, %v", b, err)
	}
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope", "avg.csv")
	if err := SafeWriteFile(p, []byte("x")); err == nil {
		t.Fatalf("expected error writing into a missing directory")
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]float64{"preop_k": 6})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"preop_k\": 6") {
		t.Fatalf("json = %s", b)
	}
}
