package colorsync

import (
	"context"
	"fmt"
	"time"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/dataid"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/store"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/worksheet"
)

// Refresh merges the stored records of a sample set into s. A setID of 0
// uses s.SetID.
//
// A row already in the session is updated in place: stored values win, and
// a field the store has not computed keeps the session's cell. Records
// missing from the session are appended. Session rows without a stored
// counterpart are left untouched.
func (c *Coordinator) Refresh(ctx context.Context, s *worksheet.Session, setID int64) (res RefreshResult, err error) {
	defer recoverOp(OpRefresh, &err)
	defer c.metrics.observe(OpRefresh, time.Now())

	if setID == 0 {
		setID = s.SetID
	}
	if setID < 1 {
		return res, models.NewValidationError("set_id", fmt.Sprint(setID), "must be >= 1")
	}
	res.SetID = setID

	records, err := c.store.GetAllMeasurements(ctx, store.Filter{SetID: setID})
	if err != nil {
		return res, NewOperationError(OpRefresh, err)
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		id := dataid.Encode(rec.SetID, rec.PointIndex)
		stored := c.rowFromRecord(rec)
		local, ok := s.Get(id)
		switch {
		case seen[id]:
			s.Put(c.withDefaults(mergeStored(local, stored)))
		case ok:
			s.Put(c.withDefaults(mergeStored(local, stored)))
			res.Updated++
		default:
			s.Put(c.withDefaults(stored))
			res.Inserted++
		}
		seen[id] = true
	}
	for _, r := range s.Rows() {
		if !seen[r.DataID()] {
			res.Untouched++
		}
	}
	s.SetID = setID

	c.metrics.add(OpRefresh, "updated", res.Updated)
	c.metrics.add(OpRefresh, "inserted", res.Inserted)
	c.metrics.add(OpRefresh, "untouched", res.Untouched)
	c.logger.Info("refresh finished", "set_id", setID,
		"updated", res.Updated, "inserted", res.Inserted, "untouched", res.Untouched)
	return res, nil
}

// rowFromRecord builds the worksheet row of a stored record. Fields the
// store has not computed stay nil.
func (c *Coordinator) rowFromRecord(rec models.MeasurementRecord) models.Row {
	row := models.NewRow()
	x, y, z := c.opts.Projection(rec)
	row[models.ColXnorm] = x
	row[models.ColYnorm] = y
	row[models.ColZnorm] = z
	row[models.ColDataID] = dataid.Encode(rec.SetID, rec.PointIndex)
	for _, f := range models.ExtendedFields {
		if v := rec.Attributes.Get(f); v != nil {
			row[models.FieldColumns[f]] = v
		}
	}
	return row
}

// mergeStored overlays the non-nil cells of stored onto local.
func mergeStored(local, stored models.Row) models.Row {
	out := local.Clone()
	for i, v := range stored {
		if v != nil {
			out[i] = v
		}
	}
	return out
}

func (c *Coordinator) withDefaults(row models.Row) models.Row {
	if models.IsBlank(row.Cell(models.ColMarker)) {
		row = row.WithCell(models.ColMarker, c.opts.DefaultMarker)
	}
	if models.IsBlank(row.Cell(models.ColColor)) {
		row = row.WithCell(models.ColColor, c.opts.DefaultColor)
	}
	return row
}
