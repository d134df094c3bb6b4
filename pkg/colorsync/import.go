package colorsync

import (
	"context"
	"time"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/dataid"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/exchange"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/worksheet"
)

// Import reads one sheet of the exchange document at path into s. An empty
// sheet selects the first sheet.
//
// Rows merge by DataID and the last writer wins: an incoming row replaces
// the contract columns of the session row with the same DataID, keeping
// only the worksheet-only Trendline cell. Rows with a missing or malformed
// DataID are skipped. A header that violates the contract fails the whole
// import with a FormatContractError unless opts.Remap can place every
// contract column by name.
func (c *Coordinator) Import(ctx context.Context, s *worksheet.Session, path, sheet string, opts ImportOptions) (res ImportResult, err error) {
	defer recoverOp(OpImport, &err)
	defer c.metrics.observe(OpImport, time.Now())

	if err := ctx.Err(); err != nil {
		return res, err
	}
	data, err := c.docs.ReadSheet(path, sheet, exchange.ReadOptions{Remap: opts.Remap})
	if err != nil {
		return res, err
	}
	res.Sheet = data.Name

	for _, dr := range data.Rows {
		cell := dr.Cells.Cell(models.ColDataID)
		if _, _, err := dataid.FromCell(cell); err != nil {
			res.Skipped = append(res.Skipped, newIssue(dr.Line, cell, err))
			c.logger.Debug("row skipped", "op", OpImport, "line", dr.Line, "error", err)
			continue
		}
		incoming := dr.Cells.Clone()
		if local, ok := s.Get(dr.Cells.DataID()); ok {
			incoming[models.ColTrendline] = local.Cell(models.ColTrendline)
			res.Overwritten++
		}
		s.Put(incoming)
		res.Imported++
	}

	c.metrics.add(OpImport, "imported", res.Imported)
	c.metrics.add(OpImport, "overwritten", res.Overwritten)
	c.metrics.add(OpImport, "skipped", len(res.Skipped))
	c.logger.Info("import finished", "path", path, "sheet", res.Sheet,
		"imported", res.Imported, "overwritten", res.Overwritten, "skipped", len(res.Skipped))
	return res, nil
}
