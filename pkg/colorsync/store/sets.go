package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// CreateSampleSet returns the id of the set for imageName, creating it when
// no set with that image name exists yet.
func (s *Store) CreateSampleSet(ctx context.Context, imageName, description string) (int64, error) {
	imageName = strings.TrimSpace(imageName)
	if imageName == "" {
		return 0, models.NewValidationError("image_name", "", "image name is required")
	}
	var id int64
	err := s.withRetry(ctx, "create sample set", func() error {
		err := s.db.QueryRowContext(ctx,
			`SELECT set_id FROM measurement_sets WHERE image_name = ? ORDER BY set_id LIMIT 1`,
			imageName).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO measurement_sets (image_name, measurement_date, description) VALUES (?, ?, ?)`,
			imageName, formatTime(nowFunc()), nullString(description))
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetSampleSet returns the set with the given id.
func (s *Store) GetSampleSet(ctx context.Context, setID int64) (models.SampleSet, error) {
	var set models.SampleSet
	err := s.withRetry(ctx, "get sample set", func() error {
		row := s.db.QueryRowContext(ctx,
			`SELECT set_id, image_name, measurement_date, description FROM measurement_sets WHERE set_id = ?`, setID)
		var err error
		set, err = scanSampleSet(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sample set %d: %w", setID, ErrNotFound)
		}
		return err
	})
	return set, err
}

// ListSampleSets returns every set ordered by id.
func (s *Store) ListSampleSets(ctx context.Context) ([]models.SampleSet, error) {
	var sets []models.SampleSet
	err := s.withRetry(ctx, "list sample sets", func() error {
		sets = nil
		rows, err := s.db.QueryContext(ctx,
			`SELECT set_id, image_name, measurement_date, description FROM measurement_sets ORDER BY set_id`)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			set, err := scanSampleSet(rows)
			if err != nil {
				return err
			}
			sets = append(sets, set)
		}
		return rows.Err()
	})
	return sets, err
}

// DeleteSampleSet removes a set and all of its measurements. It returns the
// number of measurements removed.
func (s *Store) DeleteSampleSet(ctx context.Context, setID int64) (int64, error) {
	var removed int64
	err := s.withRetry(ctx, "delete sample set", func() (retErr error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if retErr != nil {
				_ = tx.Rollback()
			}
		}()
		res, err := tx.ExecContext(ctx, `DELETE FROM color_measurements WHERE set_id = ?`, setID)
		if err != nil {
			return err
		}
		removed, _ = res.RowsAffected()
		res, err = tx.ExecContext(ctx, `DELETE FROM measurement_sets WHERE set_id = ?`, setID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("sample set %d: %w", setID, ErrNotFound)
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("sample set deleted", "set_id", setID, "measurements", removed)
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSampleSet(r rowScanner) (models.SampleSet, error) {
	var (
		set         models.SampleSet
		created     any
		description sql.NullString
	)
	if err := r.Scan(&set.SetID, &set.ImageName, &created, &description); err != nil {
		return models.SampleSet{}, err
	}
	set.CreatedAt = parseTime(created)
	set.Description = description.String
	return set, nil
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
