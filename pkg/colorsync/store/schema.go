package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

const (
	tableSets         = "measurement_sets"
	tableMeasurements = "color_measurements"
)

const createSetsTable = `CREATE TABLE IF NOT EXISTS measurement_sets (
	set_id INTEGER PRIMARY KEY AUTOINCREMENT,
	image_name TEXT NOT NULL,
	measurement_date TIMESTAMP,
	description TEXT
)`

// Base columns only. Every later column is added by the additive migration
// so fresh and legacy files go through the same path.
const createMeasurementsTable = `CREATE TABLE IF NOT EXISTS color_measurements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	set_id INTEGER NOT NULL,
	coordinate_point INTEGER NOT NULL,
	x_position REAL NOT NULL DEFAULT 0,
	y_position REAL NOT NULL DEFAULT 0,
	l_value REAL NOT NULL DEFAULT 0,
	a_value REAL NOT NULL DEFAULT 0,
	b_value REAL NOT NULL DEFAULT 0,
	rgb_r REAL NOT NULL DEFAULT 0,
	rgb_g REAL NOT NULL DEFAULT 0,
	rgb_b REAL NOT NULL DEFAULT 0,
	measurement_date TIMESTAMP,
	notes TEXT,
	FOREIGN KEY(set_id) REFERENCES measurement_sets(set_id)
)`

const createPointIndex = `CREATE INDEX IF NOT EXISTS idx_set_point
	ON color_measurements(set_id, coordinate_point)`

type columnDef struct {
	name string
	decl string
}

// additiveColumns are appended to color_measurements when missing.
// Extended attribute columns carry no default: NULL means "not computed".
var additiveColumns = []columnDef{
	{"sample_type", "TEXT"},
	{"sample_size", "TEXT"},
	{"sample_anchor", "TEXT"},
	{string(models.FieldMarkerPreference), "TEXT"},
	{string(models.FieldColorPreference), "TEXT"},
	{string(models.FieldClusterID), "TEXT"},
	{string(models.FieldDeltaE), "REAL"},
	{string(models.FieldCentroidX), "REAL"},
	{string(models.FieldCentroidY), "REAL"},
	{string(models.FieldCentroidZ), "REAL"},
	{string(models.FieldSphereColor), "TEXT"},
	{string(models.FieldSphereRadius), "REAL"},
	{string(models.FieldTrendlineValid), "BOOLEAN"},
}

// InitializeSchema creates the tables when absent and adds every missing
// additive column. Running it again is a no-op; existing rows and values
// are never touched.
func (s *Store) InitializeSchema(ctx context.Context) error {
	return s.withRetry(ctx, "initialize schema", func() error {
		for _, stmt := range []string{createSetsTable, createMeasurementsTable} {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create table: %w", err)
			}
		}

		existing, err := s.columnSet(ctx, tableMeasurements)
		if err != nil {
			return err
		}
		added := 0
		for _, col := range additiveColumns {
			if existing[col.name] {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableMeasurements, col.name, col.decl)
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				if isDuplicateColumn(err) {
					s.logger.Debug("column already present", "column", col.name)
					continue
				}
				return fmt.Errorf("add column %s: %w", col.name, err)
			}
			added++
			s.logger.Debug("added column", "table", tableMeasurements, "column", col.name)
		}

		if _, err := s.db.ExecContext(ctx, createPointIndex); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		if added > 0 {
			s.logger.Info("schema migrated", "path", s.path, "columns_added", added)
		}
		return nil
	})
}

// Columns returns the column names of a store table in declaration order.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	if table != tableSets && table != tableMeasurements {
		return nil, models.NewValidationError("table", table, "unknown table")
	}
	var cols []string
	err := s.withRetry(ctx, "columns", func() error {
		var err error
		cols, err = s.columnNames(ctx, table)
		return err
	})
	return cols, err
}

func (s *Store) columnSet(ctx context.Context, table string) (map[string]bool, error) {
	names, err := s.columnNames(ctx, table)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

func (s *Store) columnNames(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func isDuplicateColumn(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column")
}
