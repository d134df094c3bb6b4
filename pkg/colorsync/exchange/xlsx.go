package exchange

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// xlsxBook is the excelize backend for .xlsx and .xlsm documents.
type xlsxBook struct {
	f *excelize.File
}

func openXLSX(path string) (*xlsxBook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &xlsxBook{f: f}, nil
}

func newXLSX(path, sheet string) (*xlsxBook, error) {
	f := excelize.NewFile()
	// Write uses the path extension to pick the content type.
	f.Path = path
	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return &xlsxBook{f: f}, nil
}

func (b *xlsxBook) SheetNames() []string {
	return b.f.GetSheetList()
}

func (b *xlsxBook) Rows(sheet string) ([][]string, error) {
	return b.f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func (b *xlsxBook) EnsureSheet(sheet string) error {
	idx, err := b.f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx >= 0 {
		return nil
	}
	_, err = b.f.NewSheet(sheet)
	return err
}

func (b *xlsxBook) SetRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return b.f.SetSheetRow(sheet, cell, &values)
}

func (b *xlsxBook) ClearRow(sheet string, row, width int) error {
	for col := 1; col <= width; col++ {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := b.f.SetCellValue(sheet, cell, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *xlsxBook) Write(w io.Writer) error {
	return b.f.Write(w)
}

func (b *xlsxBook) Close() error {
	return b.f.Close()
}

// file exposes the excelize handle to the template builder.
func (b *xlsxBook) file() *excelize.File {
	return b.f
}
