package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// UpsertExtendedAttributes writes the fields present in partial for the
// record (setID, pointIndex) in one transaction. Fields absent from partial
// keep their stored values. When no row exists for the key but the set
// does, a stub row with zeroed base fields is inserted.
//
// Keys, field names and values are validated before anything is written;
// a rejected update leaves the store unchanged.
func (s *Store) UpsertExtendedAttributes(ctx context.Context, setID, pointIndex int64, partial models.PartialAttributes) error {
	if err := validateKey(setID, pointIndex); err != nil {
		return err
	}
	fields := partial.Fields()
	cols := make([]string, 0, len(fields))
	vals := make([]any, 0, len(fields))
	for _, f := range fields {
		v, err := coerce(f, partial[f])
		if err != nil {
			return err
		}
		cols = append(cols, string(f))
		vals = append(vals, v)
	}

	return s.withRetry(ctx, "upsert extended attributes", func() (retErr error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if retErr != nil {
				_ = tx.Rollback()
			}
		}()
		if err := requireSet(ctx, tx, setID); err != nil {
			return err
		}
		if len(cols) == 0 {
			return tx.Commit()
		}

		assign := make([]string, len(cols))
		for i, c := range cols {
			assign[i] = c + " = ?"
		}
		args := append(append([]any{}, vals...), setID, pointIndex)
		res, err := tx.ExecContext(ctx,
			"UPDATE color_measurements SET "+strings.Join(assign, ", ")+" WHERE set_id = ? AND coordinate_point = ?",
			args...)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			insertCols := append([]string{"set_id", "coordinate_point", "measurement_date"}, cols...)
			insertArgs := append([]any{setID, pointIndex, formatTime(nowFunc())}, vals...)
			marks := strings.TrimSuffix(strings.Repeat("?, ", len(insertCols)), ", ")
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO color_measurements ("+strings.Join(insertCols, ", ")+
					", x_position, y_position, l_value, a_value, b_value, rgb_r, rgb_g, rgb_b) VALUES ("+
					marks+", 0, 0, 0, 0, 0, 0, 0, 0)",
				insertArgs...); err != nil {
				return fmt.Errorf("insert: %w", err)
			}
			s.logger.Debug("inserted stub measurement", "set_id", setID, "point", pointIndex)
		}
		return tx.Commit()
	})
}
