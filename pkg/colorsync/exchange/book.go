package exchange

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions without a backend.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrSheetNotFound is returned when a requested sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Format identifies a document backend.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf picks the backend for path by its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Book is an open exchange document. Rows and columns are 1-based.
type Book interface {
	// SheetNames lists sheets in document order.
	SheetNames() []string
	// Rows returns the raw text of every row of sheet, starting at row 1.
	Rows(sheet string) ([][]string, error)
	// EnsureSheet creates sheet when it does not exist.
	EnsureSheet(sheet string) error
	// SetRow writes values from column A of the given row.
	SetRow(sheet string, row int, values []any) error
	// ClearRow blanks the first width cells of the given row.
	ClearRow(sheet string, row, width int) error
	// Write encodes the whole document.
	Write(w io.Writer) error
	Close() error
}

// Open opens an existing document.
func Open(path string) (Book, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return openCSV(path)
	default:
		return openXLSX(path)
	}
}

// newBook returns an empty in-memory document holding one sheet.
func newBook(path, sheet string) (Book, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return newCSV(path), nil
	default:
		return newXLSX(path, sheet)
	}
}

// SheetNames returns the sheet names of the document at path.
func SheetNames(path string) ([]string, error) {
	book, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer book.Close()
	return book.SheetNames(), nil
}

// ResolveSheet picks the sheet to use: requested when present, otherwise
// the first sheet when requested is empty.
func ResolveSheet(names []string, requested string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("document has no sheets")
	}
	if requested == "" {
		return names[0], nil
	}
	for _, n := range names {
		if n == requested {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q (have %s)", ErrSheetNotFound, requested, strings.Join(names, ", "))
}

// singleSheetBook is a backend whose only sheet answers to every name.
type singleSheetBook interface {
	singleSheet() string
}

// resolveBookSheet is ResolveSheet for an open book.
func resolveBookSheet(book Book, requested string) (string, error) {
	if sb, ok := book.(singleSheetBook); ok {
		return sb.singleSheet(), nil
	}
	return ResolveSheet(book.SheetNames(), requested)
}

// saveAtomic writes book to a temporary file next to path and renames it
// into place.
func saveAtomic(book Book, path string, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()
	if err := book.Write(tmpFile); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
