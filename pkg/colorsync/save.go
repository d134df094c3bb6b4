package colorsync

import (
	"context"
	"errors"
	"time"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/dataid"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/worksheet"
)

// Save writes the analysis attributes of each row to the store. Rows are
// independent: a row with a bad DataID or a rejected value is reported in
// Skipped, a row the store could not write in Failed, and the batch goes
// on. Only an unreachable store aborts the whole operation.
func (c *Coordinator) Save(ctx context.Context, rows []models.Row) (res SaveResult, err error) {
	defer recoverOp(OpSave, &err)
	defer c.metrics.observe(OpSave, time.Now())

	if err := c.store.Ping(ctx); err != nil {
		return res, NewOperationError(OpSave, err)
	}

	for i, row := range rows {
		cell := row.Cell(models.ColDataID)
		setID, pointIndex, err := dataid.FromCell(cell)
		if err != nil {
			res.Skipped = append(res.Skipped, newIssue(i, cell, err))
			c.logger.Debug("row skipped", "op", OpSave, "row", i, "error", err)
			continue
		}
		if err := c.store.UpsertExtendedAttributes(ctx, setID, pointIndex, c.partialFromRow(row)); err != nil {
			issue := newIssue(i, cell, err)
			if errors.Is(err, models.ErrValidation) {
				res.Skipped = append(res.Skipped, issue)
				c.logger.Debug("row skipped", "op", OpSave, "row", i, "data_id", issue.DataID, "error", err)
			} else {
				res.Failed = append(res.Failed, issue)
				c.logger.Warn("row failed", "op", OpSave, "row", i, "data_id", issue.DataID, "error", err)
			}
			continue
		}
		res.Saved++
	}

	c.metrics.add(OpSave, "saved", res.Saved)
	c.metrics.add(OpSave, "skipped", len(res.Skipped))
	c.metrics.add(OpSave, "failed", len(res.Failed))
	c.logger.Info("save finished", "saved", res.Saved, "skipped", len(res.Skipped), "failed", len(res.Failed))
	return res, nil
}

// SaveSession saves every row of s.
func (c *Coordinator) SaveSession(ctx context.Context, s *worksheet.Session) (SaveResult, error) {
	return c.Save(ctx, s.Rows())
}

// partialFromRow collects the extended columns of row. Columns the row does
// not reach are left out; empty cells are left out unless ClearEmptyCells
// is set, in which case they clear the stored value.
func (c *Coordinator) partialFromRow(row models.Row) models.PartialAttributes {
	partial := make(models.PartialAttributes, len(models.ExtendedFields))
	for _, f := range models.ExtendedFields {
		col := models.FieldColumns[f]
		if int(col) >= len(row) {
			continue
		}
		v := row[col]
		if models.IsBlank(v) {
			if c.opts.ClearEmptyCells {
				partial[f] = nil
			}
			continue
		}
		partial[f] = v
	}
	return partial
}

func newIssue(row int, dataID any, err error) RowIssue {
	return RowIssue{Row: row, DataID: models.CellText(dataID), Reason: err.Error(), Err: err}
}
