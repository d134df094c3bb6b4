package exchange

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// WriteOptions configures WriteSheet.
type WriteOptions struct {
	// Metadata replaces rows 1-7. When nil, existing metadata is kept and
	// new sheets get DefaultMetadata.
	Metadata *models.Metadata
	// SampleSet names the set in default metadata.
	SampleSet string
	// ConfirmDiscard allows rewriting a sheet whose header violates the
	// contract even though cells below the header would be lost.
	ConfirmDiscard bool
}

// WriteResult describes a completed write.
type WriteResult struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet"`
	// Rows is the number of data rows written.
	Rows int `json:"rows"`
	// Created is set when the document did not exist.
	Created bool `json:"created"`
	// HeaderRewritten is set when a non-contract header was replaced.
	HeaderRewritten bool `json:"header_rewritten"`
	// Discarded counts cells dropped from a non-contract sheet.
	Discarded int `json:"discarded,omitempty"`
}

// WriteSheet replaces the data zone of sheet with rows, creating the
// document or the sheet when absent. Only the contract columns of each row
// are written; numeric columns are stored as numbers. The document is
// written to a temporary file and renamed into place.
//
// When the existing header violates the contract, the header is rewritten.
// If cells below it would be discarded, a FormatContractError with
// NeedsConfirm is returned unless opts.ConfirmDiscard is set.
func WriteSheet(path, sheet string, rows []models.Row, opts WriteOptions) (WriteResult, error) {
	res := WriteResult{Path: path}
	mode := fs.FileMode(0o644)

	info, statErr := os.Stat(path)
	var (
		book Book
		err  error
	)
	switch {
	case statErr == nil:
		mode = info.Mode().Perm()
		book, err = Open(path)
	case errors.Is(statErr, fs.ErrNotExist):
		if sheet == "" {
			sheet = DefaultSheet
		}
		res.Created = true
		book, err = newBook(path, sheet)
	default:
		return res, statErr
	}
	if err != nil {
		return res, err
	}
	defer book.Close()

	name := sheet
	existing := [][]string(nil)
	newSheet := res.Created
	if res.Created {
		if sb, ok := book.(singleSheetBook); ok {
			name = sb.singleSheet()
		}
	} else {
		resolved, rerr := resolveBookSheet(book, sheet)
		switch {
		case rerr == nil:
			name = resolved
		case sheet != "" && errors.Is(rerr, ErrSheetNotFound):
			newSheet = true
			if err := book.EnsureSheet(sheet); err != nil {
				return res, fmt.Errorf("create sheet %q: %w", sheet, err)
			}
		default:
			return res, rerr
		}
		if !newSheet {
			if existing, err = book.Rows(name); err != nil {
				return res, fmt.Errorf("read sheet %q: %w", name, err)
			}
		}
	}
	res.Sheet = name

	var header []string
	if len(existing) >= models.HeaderRow {
		header = existing[models.HeaderRow-1]
	}
	z := inspectZone(existing, models.HeaderRow)
	if !newSheet && CheckHeader(header) != nil {
		if z.dataCells > 0 && !opts.ConfirmDiscard {
			return res, &models.FormatContractError{
				Path:         path,
				Sheet:        name,
				Reason:       fmt.Sprintf("header row 8 does not match and %d cells below it would be discarded", z.dataCells),
				NeedsConfirm: true,
			}
		}
		res.HeaderRewritten = true
		res.Discarded = z.dataCells
		if err := book.ClearRow(name, models.HeaderRow, max(len(header), models.DocumentColumns)); err != nil {
			return res, err
		}
	}

	meta := opts.Metadata
	if meta == nil && newSheet {
		d := DefaultMetadata(opts.SampleSet)
		meta = &d
	}
	if meta != nil {
		if err := writeMetadata(book, name, *meta); err != nil {
			return res, err
		}
	}
	if newSheet {
		if err := decorateSheet(book, name); err != nil {
			return res, err
		}
	}
	if err := writeHeader(book, name); err != nil {
		return res, err
	}

	width := max(z.width, models.DocumentColumns)
	for r := models.FirstDataRow; r <= z.lastRow; r++ {
		if err := book.ClearRow(name, r, width); err != nil {
			return res, err
		}
	}
	for i, row := range rows {
		values := make([]any, models.DocumentColumns)
		for c := 0; c < models.DocumentColumns; c++ {
			values[c] = writeCell(models.Column(c), row.Cell(models.Column(c)))
		}
		if err := book.SetRow(name, models.FirstDataRow+i, values); err != nil {
			return res, fmt.Errorf("write row %d: %w", models.FirstDataRow+i, err)
		}
	}
	res.Rows = len(rows)

	if err := saveAtomic(book, path, mode); err != nil {
		return res, fmt.Errorf("save %s: %w", path, err)
	}
	return res, nil
}

func writeMetadata(book Book, sheet string, meta models.Metadata) error {
	for i, line := range meta.Rows() {
		row := i + 1
		if err := book.ClearRow(sheet, row, models.DocumentColumns); err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if err := book.SetRow(sheet, row, []any{line}); err != nil {
			return fmt.Errorf("write metadata row %d: %w", row, err)
		}
	}
	return nil
}

func writeHeader(book Book, sheet string) error {
	values := make([]any, len(models.HeaderContract))
	for i, h := range models.HeaderContract {
		values[i] = h
	}
	if err := book.SetRow(sheet, models.HeaderRow, values); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}
