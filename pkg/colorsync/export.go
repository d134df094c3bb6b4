package colorsync

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/dataid"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/exchange"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/worksheet"
)

// Export writes rows to the exchange document at path.
//
// A missing document is created with the template layout. In an existing
// document with a valid header, rows are merged by DataID: non-empty
// outgoing cells overwrite the document's cells, empty outgoing cells never
// blank a value, unknown DataIDs are appended and rows only in the document
// keep their order. A sheet whose header violates the contract is replaced
// by the outgoing rows; when that would discard data the export fails with
// a FormatContractError unless opts.ConfirmDiscard is set.
func (c *Coordinator) Export(ctx context.Context, rows []models.Row, path string, opts ExportOptions) (res ExportResult, err error) {
	defer recoverOp(OpExport, &err)
	defer c.metrics.observe(OpExport, time.Now())

	if err := ctx.Err(); err != nil {
		return res, err
	}
	res.Path = path

	var outgoing []models.Row
	for i, r := range rows {
		cell := r.Cell(models.ColDataID)
		if _, _, err := dataid.FromCell(cell); err != nil {
			res.Skipped = append(res.Skipped, newIssue(i, cell, err))
			continue
		}
		outgoing = append(outgoing, r)
	}

	toWrite := outgoing
	wopts := exchange.WriteOptions{SampleSet: opts.SampleSet, ConfirmDiscard: opts.ConfirmDiscard}
	sheet := opts.Sheet
	_, err = c.docs.SheetNames(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Appended = len(outgoing)
	case err != nil:
		return res, err
	default:
		data, err := c.docs.ReadSheet(path, sheet, exchange.ReadOptions{})
		switch {
		case errors.Is(err, exchange.ErrSheetNotFound):
			res.Appended = len(outgoing)
		case errors.Is(err, models.ErrFormatContract):
			c.logger.Warn("replacing sheet with invalid header", "path", path, "sheet", sheet, "error", err)
			res.Appended = len(outgoing)
		case err != nil:
			return res, err
		default:
			sheet = data.Name
			toWrite = mergeDocument(data.Rows, outgoing, &res)
		}
	}

	wr, err := c.docs.WriteSheet(path, sheet, toWrite, wopts)
	if err != nil {
		return ExportResult{Path: path, Sheet: sheet, Skipped: res.Skipped}, err
	}
	res.Sheet = wr.Sheet
	res.Written = wr.Rows
	res.HeaderRewritten = wr.HeaderRewritten

	c.metrics.add(OpExport, "updated", res.Updated)
	c.metrics.add(OpExport, "appended", res.Appended)
	c.metrics.add(OpExport, "skipped", len(res.Skipped))
	c.logger.Info("export finished", "path", path, "sheet", res.Sheet, "written", res.Written,
		"updated", res.Updated, "appended", res.Appended, "skipped", len(res.Skipped))
	return res, nil
}

// ExportSet refreshes a fresh session from the store and exports it. The
// document metadata names the set's image unless opts.SampleSet is set.
func (c *Coordinator) ExportSet(ctx context.Context, setID int64, path string, opts ExportOptions) (ExportResult, error) {
	s := worksheet.New(setID)
	if _, err := c.Refresh(ctx, s, setID); err != nil {
		return ExportResult{Path: path}, err
	}
	if opts.SampleSet == "" {
		set, err := c.store.GetSampleSet(ctx, setID)
		if err != nil {
			return ExportResult{Path: path}, err
		}
		opts.SampleSet = set.ImageName
	}
	return c.Export(ctx, s.Rows(), path, opts)
}

// mergeDocument merges outgoing rows into the rows of a document sheet.
func mergeDocument(existing []models.DataRow, outgoing []models.Row, res *ExportResult) []models.Row {
	merged := make([]models.Row, 0, len(existing)+len(outgoing))
	pos := make(map[string]int, len(existing)+len(outgoing))
	for _, dr := range existing {
		row := dr.Cells.Clone()
		if id := row.DataID(); dataid.Valid(id) {
			if _, dup := pos[id]; !dup {
				pos[id] = len(merged)
			}
		}
		merged = append(merged, row)
	}
	for _, out := range outgoing {
		id := out.DataID()
		i, ok := pos[id]
		if !ok {
			pos[id] = len(merged)
			merged = append(merged, out.Clone())
			res.Appended++
			continue
		}
		for col := 0; col < models.DocumentColumns; col++ {
			if v := out.Cell(models.Column(col)); !models.IsBlank(v) {
				merged[i][col] = v
			}
		}
		res.Updated++
	}
	return merged
}
