package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// CentroidSetName is the image name of the sample set holding cluster
// centroids.
const CentroidSetName = "CENTROIDS"

// centroidFields are written on every centroid upsert, in this order.
var centroidFields = []models.Field{
	models.FieldClusterID,
	models.FieldCentroidX,
	models.FieldCentroidY,
	models.FieldCentroidZ,
	models.FieldSphereColor,
	models.FieldSphereRadius,
	models.FieldMarkerPreference,
	models.FieldColorPreference,
}

// UpsertCentroid stores the centroid and sphere of one cluster in the
// centroid set, creating the set on first use, and returns the point index
// of its row. Rows are keyed by cluster id within the set: an existing
// cluster is updated in place, a new one takes the next free point index.
// Centroid rows carry sample type "centroid" and are always
// trendline-valid.
func (s *Store) UpsertCentroid(ctx context.Context, c models.Centroid) (int64, error) {
	id, ok, err := models.ParseClusterID(c.ClusterID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, models.NewValidationError(string(models.FieldClusterID), "", "cluster id is required")
	}
	if c.Marker == "" {
		c.Marker = "."
	}
	if c.Color == "" {
		c.Color = "blue"
	}
	partial := models.PartialAttributes{
		models.FieldClusterID:        id,
		models.FieldCentroidX:        c.X,
		models.FieldCentroidY:        c.Y,
		models.FieldCentroidZ:        c.Z,
		models.FieldSphereColor:      c.SphereColor,
		models.FieldSphereRadius:     c.SphereRadius,
		models.FieldMarkerPreference: c.Marker,
		models.FieldColorPreference:  c.Color,
	}
	cols := make([]string, len(centroidFields))
	vals := make([]any, len(centroidFields))
	for i, f := range centroidFields {
		v, err := coerce(f, partial[f])
		if err != nil {
			return 0, err
		}
		cols[i] = string(f)
		vals[i] = v
	}

	setID, err := s.CreateSampleSet(ctx, CentroidSetName, "Cluster centroids for sphere plotting")
	if err != nil {
		return 0, err
	}

	var point int64
	err = s.withRetry(ctx, "upsert centroid", func() (retErr error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if retErr != nil {
				_ = tx.Rollback()
			}
		}()

		now := formatTime(nowFunc())
		err = tx.QueryRowContext(ctx,
			`SELECT coordinate_point FROM color_measurements WHERE set_id = ? AND cluster_id = ? ORDER BY id LIMIT 1`,
			setID, string(id)).Scan(&point)
		switch {
		case err == nil:
			assign := make([]string, len(cols))
			for i, col := range cols {
				assign[i] = col + " = ?"
			}
			args := append(append([]any{}, vals...), now, setID, point)
			if _, err := tx.ExecContext(ctx,
				"UPDATE color_measurements SET "+strings.Join(assign, ", ")+
					", measurement_date = ? WHERE set_id = ? AND coordinate_point = ?",
				args...); err != nil {
				return fmt.Errorf("update: %w", err)
			}
		case errors.Is(err, sql.ErrNoRows):
			if err := tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(coordinate_point), 0) + 1 FROM color_measurements WHERE set_id = ?`,
				setID).Scan(&point); err != nil {
				return err
			}
			// Base color fields mirror the centroid so older plot readers see it.
			x, y, z := orZero(vals[1]), orZero(vals[2]), orZero(vals[3])
			insertCols := append([]string{
				"set_id", "coordinate_point", "measurement_date",
				"x_position", "y_position", "l_value", "a_value", "b_value",
				"rgb_r", "rgb_g", "rgb_b", "sample_type", "trendline_valid",
			}, cols...)
			insertArgs := append([]any{
				setID, point, now,
				x, y, x, y, z,
				0, 0, 0, "centroid", int64(1),
			}, vals...)
			marks := strings.TrimSuffix(strings.Repeat("?, ", len(insertCols)), ", ")
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO color_measurements ("+strings.Join(insertCols, ", ")+") VALUES ("+marks+")",
				insertArgs...); err != nil {
				return fmt.Errorf("insert: %w", err)
			}
		default:
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("centroid stored", "cluster", string(id), "set_id", setID, "point", point)
	return point, nil
}

func orZero(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}
