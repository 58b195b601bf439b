package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/casescan/internal/clinical"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the selected sheet; the first row is the header.
func (xlsxLoader) Load(path string, opt Options) (*clinical.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := opt.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			sheet, filepath.Base(path), strings.Join(f.GetSheetList(), ", "))
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook '%s' has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	name := filepath.Base(path)
	if len(rows) == 0 {
		return &clinical.Table{Name: name}, nil
	}
	return buildTable(name, rows[0], rows[1:], opt)
}
