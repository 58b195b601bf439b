package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "json", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entry, id := WithRunID(log)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run id %q: %v", id, err)
	}
	entry.WithField("asa", 0).Warn("unknown ASA")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if got["run_id"] != id || got["level"] != "warning" || got["msg"] != "unknown ASA" {
		t.Fatalf("entry = %v", got)
	}
}

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("", "text", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v", log.GetLevel())
	}
	log.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug written at info level")
	}
	if _, err := New("loud", "text", nil); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := New("info", "xml", nil); err == nil {
		t.Fatalf("expected error for bad format")
	}
}
