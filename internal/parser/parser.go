// Package parser loads clinical case tables from CSV/TSV and XLSX files.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/sirupsen/logrus"
)

// Options controls how a dataset file is loaded.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet; the first sheet when empty.
	SheetName string
	// Strict rejects columns outside the case schema instead of dropping them.
	Strict bool
	// Log receives warnings about dropped columns. Optional.
	Log logrus.FieldLogger
}

// DefaultOptions returns strict loading with delimiter auto-detection.
func DefaultOptions() Options {
	return Options{Strict: true}
}

// Loader reads one file format into a case table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*clinical.Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a file format no loader accepts.
var ErrUnsupported = errors.New("unsupported dataset format")

// LoadFile selects a loader by filename and returns the case table.
func LoadFile(path string, opt Options) (*clinical.Table, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			t, err := l.Load(path, opt)
			if err != nil {
				return nil, err
			}
			if t.Name == "" {
				t.Name = filepath.Base(path)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// buildTable validates the header row and converts data rows to records.
func buildTable(name string, header []string, rows [][]string, opt Options) (*clinical.Table, error) {
	cols, keep, dropped, err := clinical.ValidateHeader(header, clinical.HeaderOptions{Strict: opt.Strict})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(dropped) > 0 && opt.Log != nil {
		opt.Log.WithFields(logrus.Fields{"file": name, "columns": dropped}).Warn("dropping columns outside the case schema")
	}
	t := &clinical.Table{Name: name, Columns: cols, Records: make([]clinical.Record, 0, len(rows))}
	for _, row := range rows {
		t.Records = append(t.Records, clinical.BuildRecord(header, keep, row))
	}
	return t, nil
}
