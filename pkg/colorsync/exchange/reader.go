package exchange

import (
	"fmt"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// ReadOptions configures ReadSheet.
type ReadOptions struct {
	// Remap locates contract columns by header name when the header is not
	// in contract order. Every contract name must still be present.
	Remap bool
}

// ReadSheet reads one sheet of the document at path. An empty sheet name
// selects the first sheet. Rows 1-7 are returned as metadata text only;
// data is read from row 9.
func ReadSheet(path, sheet string, opts ReadOptions) (*models.SheetData, error) {
	book, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	name, err := resolveBookSheet(book, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	raw, err := book.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return parseSheet(path, name, raw, opts)
}

func parseSheet(path, name string, raw [][]string, opts ReadOptions) (*models.SheetData, error) {
	data := &models.SheetData{Name: name}
	for i := 0; i < models.MetadataRows; i++ {
		data.Metadata = append(data.Metadata, metadataLine(raw, i))
	}
	if len(raw) >= models.HeaderRow {
		for _, h := range raw[models.HeaderRow-1] {
			data.Header = append(data.Header, strings.TrimSpace(h))
		}
	}

	idx := identityIndex()
	if err := CheckHeader(data.Header); err != nil {
		if !opts.Remap {
			return nil, models.NewFormatContractError(path, name, "header row 8: "+err.Error())
		}
		remapped, rerr := MakeHeaderIndex(data.Header)
		if rerr != nil {
			return nil, models.NewFormatContractError(path, name, "header row 8: "+err.Error()+"; cannot remap: "+rerr.Error())
		}
		idx = remapped
	}

	for i := models.FirstDataRow - 1; i < len(raw); i++ {
		line := raw[i]
		row := make(models.Row, models.DocumentColumns)
		empty := true
		for col, pos := range idx {
			if pos >= len(line) {
				continue
			}
			if v := readCell(col, line[pos]); v != nil {
				row[col] = v
				empty = false
			}
		}
		if empty {
			continue
		}
		data.Rows = append(data.Rows, models.DataRow{Line: i + 1, Cells: row})
	}
	return data, nil
}

// metadataLine joins the non-empty cells of a metadata row.
func metadataLine(raw [][]string, i int) string {
	if i >= len(raw) {
		return ""
	}
	var parts []string
	for _, c := range raw[i] {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
