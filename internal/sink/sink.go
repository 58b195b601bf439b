// Package sink writes tabular analysis results. Analysis code hands its
// results to a Sink instead of writing paths itself.
package sink

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/casescan/internal/utils"
	"github.com/xuri/excelize/v2"
)

// RowSource is any result that renders as a header plus string rows.
type RowSource interface {
	Header() []string
	Rows() [][]string
}

// Sink receives one finished table.
type Sink interface {
	Write(src RowSource) error
}

// CSV writes comma-separated rows to W.
type CSV struct {
	W     io.Writer
	Comma rune
}

func (s CSV) Write(src RowSource) error {
	w := csv.NewWriter(s.W)
	if s.Comma != 0 {
		w.Comma = s.Comma
	}
	if err := w.Write(src.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(src.Rows()); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// XLSX writes rows to a single-sheet workbook on W.
type XLSX struct {
	W     io.Writer
	Sheet string
}

func (s XLSX) Write(src RowSource) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := s.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}
	write := func(rowNum int, cells []string) error {
		row := make([]interface{}, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &row)
	}
	if err := write(1, src.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range src.Rows() {
		if err := write(i+2, r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(s.W); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// File renders to Path, choosing the format from its extension (.xlsx, .tsv,
// otherwise CSV), and replaces the file atomically.
type File struct {
	Path string
}

func (s File) Write(src RowSource) error {
	var buf bytes.Buffer
	var inner Sink
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx":
		inner = XLSX{W: &buf}
	case ".tsv":
		inner = CSV{W: &buf, Comma: '\t'}
	default:
		inner = CSV{W: &buf}
	}
	if err := inner.Write(src); err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("ensure output dir: %w", err)
		}
	}
	return utils.SafeWriteFile(s.Path, buf.Bytes())
}

// Buffer keeps the last written table in memory.
type Buffer struct {
	Header []string
	Rows   [][]string
	Writes int
}

func (b *Buffer) Write(src RowSource) error {
	b.Header = append([]string(nil), src.Header()...)
	b.Rows = src.Rows()
	b.Writes++
	return nil
}
