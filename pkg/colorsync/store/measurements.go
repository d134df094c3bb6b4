package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// Filter narrows GetAllMeasurements. Zero values match everything.
type Filter struct {
	SetID     int64
	ImageName string
}

const selectMeasurements = `SELECT
	m.set_id, s.image_name, m.coordinate_point,
	m.x_position, m.y_position,
	m.l_value, m.a_value, m.b_value, m.rgb_r, m.rgb_g, m.rgb_b,
	m.sample_type, m.sample_size, m.sample_anchor,
	m.measurement_date, m.notes,
	m.marker_preference, m.color_preference, m.cluster_id, m.delta_e,
	m.centroid_x, m.centroid_y, m.centroid_z,
	m.sphere_color, m.sphere_radius, m.trendline_valid
FROM color_measurements m
JOIN measurement_sets s ON s.set_id = m.set_id`

// SaveMeasurement writes the base fields of rec (position, color, geometry,
// notes), updating the existing row for its key or inserting a new one.
// Extended attributes are never touched.
func (s *Store) SaveMeasurement(ctx context.Context, rec models.MeasurementRecord) error {
	if err := validateKey(rec.SetID, rec.PointIndex); err != nil {
		return err
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = nowFunc()
	}
	return s.withRetry(ctx, "save measurement", func() (retErr error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if retErr != nil {
				_ = tx.Rollback()
			}
		}()
		if err := requireSet(ctx, tx, rec.SetID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE color_measurements SET
			x_position = ?, y_position = ?,
			l_value = ?, a_value = ?, b_value = ?, rgb_r = ?, rgb_g = ?, rgb_b = ?,
			sample_type = ?, sample_size = ?, sample_anchor = ?, notes = ?
			WHERE set_id = ? AND coordinate_point = ?`,
			rec.X, rec.Y,
			rec.Color.L, rec.Color.A, rec.Color.B, rec.Color.R, rec.Color.G, rec.Color.Blue,
			nullString(rec.Geometry.Shape), nullString(rec.Geometry.Size), nullString(rec.Geometry.Anchor), nullString(rec.Notes),
			rec.SetID, rec.PointIndex)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := tx.ExecContext(ctx, `INSERT INTO color_measurements (
				set_id, coordinate_point, x_position, y_position,
				l_value, a_value, b_value, rgb_r, rgb_g, rgb_b,
				sample_type, sample_size, sample_anchor, measurement_date, notes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				rec.SetID, rec.PointIndex, rec.X, rec.Y,
				rec.Color.L, rec.Color.A, rec.Color.B, rec.Color.R, rec.Color.G, rec.Color.Blue,
				nullString(rec.Geometry.Shape), nullString(rec.Geometry.Size), nullString(rec.Geometry.Anchor),
				formatTime(created), nullString(rec.Notes)); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// GetAllMeasurements returns the records matching f joined with their set,
// in insertion order.
func (s *Store) GetAllMeasurements(ctx context.Context, f Filter) ([]models.MeasurementRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.SetID != 0 {
		where = append(where, "m.set_id = ?")
		args = append(args, f.SetID)
	}
	if f.ImageName != "" {
		where = append(where, "s.image_name = ?")
		args = append(args, f.ImageName)
	}
	query := selectMeasurements
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.id"

	var records []models.MeasurementRecord
	err := s.withRetry(ctx, "get measurements", func() error {
		records = nil
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			rec, err := scanMeasurement(rows)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetMeasurement returns the newest record for (setID, pointIndex).
func (s *Store) GetMeasurement(ctx context.Context, setID, pointIndex int64) (models.MeasurementRecord, error) {
	if err := validateKey(setID, pointIndex); err != nil {
		return models.MeasurementRecord{}, err
	}
	var rec models.MeasurementRecord
	err := s.withRetry(ctx, "get measurement", func() error {
		row := s.db.QueryRowContext(ctx,
			selectMeasurements+" WHERE m.set_id = ? AND m.coordinate_point = ? ORDER BY m.id DESC LIMIT 1",
			setID, pointIndex)
		var err error
		rec, err = scanMeasurement(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("measurement S%d_pt%d: %w", setID, pointIndex, ErrNotFound)
		}
		return err
	})
	return rec, err
}

// DeleteMeasurement removes every row stored for (setID, pointIndex) and
// returns how many were removed.
func (s *Store) DeleteMeasurement(ctx context.Context, setID, pointIndex int64) (int64, error) {
	if err := validateKey(setID, pointIndex); err != nil {
		return 0, err
	}
	var removed int64
	err := s.withRetry(ctx, "delete measurement", func() error {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM color_measurements WHERE set_id = ? AND coordinate_point = ?`, setID, pointIndex)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

// CleanupDuplicates keeps only the newest row for each (set, point) key.
// Older tools could write the same point more than once.
func (s *Store) CleanupDuplicates(ctx context.Context) (int64, error) {
	var removed int64
	err := s.withRetry(ctx, "cleanup duplicates", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM color_measurements
			WHERE id NOT IN (
				SELECT id FROM (
					SELECT id, ROW_NUMBER() OVER (
						PARTITION BY set_id, coordinate_point
						ORDER BY measurement_date DESC, id DESC
					) AS rn
					FROM color_measurements
				) ranked
				WHERE rn = 1
			)`)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("duplicates removed", "count", removed)
	}
	return removed, nil
}

func validateKey(setID, pointIndex int64) error {
	if setID < 1 {
		return models.NewValidationError("set_id", fmt.Sprint(setID), "must be >= 1")
	}
	if pointIndex < 1 {
		return models.NewValidationError("point_index", fmt.Sprint(pointIndex), "must be >= 1")
	}
	return nil
}

func requireSet(ctx context.Context, tx *sql.Tx, setID int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM measurement_sets WHERE set_id = ?`, setID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewValidationError("set_id", fmt.Sprint(setID), "sample set does not exist")
	}
	return err
}

func scanMeasurement(r rowScanner) (models.MeasurementRecord, error) {
	var (
		rec                        models.MeasurementRecord
		shape, size, anchor, notes sql.NullString
		created                    any
		marker, color, sphereColor sql.NullString
		cluster, trendline         any
		deltaE, cx, cy, cz, radius sql.NullFloat64
	)
	err := r.Scan(
		&rec.SetID, &rec.ImageName, &rec.PointIndex,
		&rec.X, &rec.Y,
		&rec.Color.L, &rec.Color.A, &rec.Color.B, &rec.Color.R, &rec.Color.G, &rec.Color.Blue,
		&shape, &size, &anchor,
		&created, &notes,
		&marker, &color, &cluster, &deltaE,
		&cx, &cy, &cz,
		&sphereColor, &radius, &trendline,
	)
	if err != nil {
		return models.MeasurementRecord{}, err
	}
	rec.Geometry = models.Geometry{Shape: shape.String, Size: size.String, Anchor: anchor.String}
	rec.Notes = notes.String
	rec.CreatedAt = parseTime(created)

	a := &rec.Attributes
	a.MarkerPreference = stringPtr(marker)
	a.ColorPreference = stringPtr(color)
	a.SphereColor = stringPtr(sphereColor)
	a.DeltaE = floatPtr(deltaE)
	a.CentroidX = floatPtr(cx)
	a.CentroidY = floatPtr(cy)
	a.CentroidZ = floatPtr(cz)
	a.SphereRadius = floatPtr(radius)
	// Legacy files declared cluster_id INTEGER; canonicalize on read.
	if id, ok, err := models.ParseClusterID(cluster); err == nil && ok {
		a.ClusterID = &id
	}
	if trendline != nil {
		if b, err := toBool(models.FieldTrendlineValid, trendline); err == nil {
			a.TrendlineValid = &b
		}
	}
	return rec, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}
