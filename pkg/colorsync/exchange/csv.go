package exchange

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// csvBook is the backend for .csv documents. A csv file holds a single
// sheet named after the file; every sheet name addresses it.
type csvBook struct {
	name string
	rows [][]string
}

func openCSV(path string) (*csvBook, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return &csvBook{name: csvSheetName(path), rows: rows}, nil
}

func newCSV(path string) *csvBook {
	return &csvBook{name: csvSheetName(path)}
}

func csvSheetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (b *csvBook) SheetNames() []string {
	return []string{b.name}
}

func (b *csvBook) singleSheet() string { return b.name }

func (b *csvBook) Rows(string) ([][]string, error) {
	out := make([][]string, len(b.rows))
	for i, r := range b.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (b *csvBook) EnsureSheet(string) error { return nil }

func (b *csvBook) SetRow(_ string, row int, values []any) error {
	b.grow(row)
	line := b.rows[row-1]
	if len(line) < len(values) {
		line = append(line, make([]string, len(values)-len(line))...)
	}
	for i, v := range values {
		line[i] = formatCell(v)
	}
	b.rows[row-1] = line
	return nil
}

func (b *csvBook) ClearRow(_ string, row, width int) error {
	if row > len(b.rows) {
		return nil
	}
	line := b.rows[row-1]
	for i := 0; i < width && i < len(line); i++ {
		line[i] = ""
	}
	return nil
}

func (b *csvBook) grow(row int) {
	for len(b.rows) < row {
		b.rows = append(b.rows, nil)
	}
}

func (b *csvBook) Write(w io.Writer) error {
	width := 0
	for _, r := range b.rows {
		if len(r) > width {
			width = len(r)
		}
	}
	cw := csv.NewWriter(w)
	for _, r := range trimTrailingEmpty(b.rows) {
		line := make([]string, width)
		copy(line, r)
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (b *csvBook) Close() error { return nil }

func trimTrailingEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isEmptyLine(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isEmptyLine(r []string) bool {
	for _, c := range r {
		if c != "" {
			return false
		}
	}
	return true
}
