// Package models defines data structures shared by the store, the exchange
// adapter and the synchronization coordinator.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Column is the 0-based position of a cell within a worksheet row.
type Column int

// Contract columns, in the exact order of the exchange document header.
const (
	ColXnorm Column = iota
	ColYnorm
	ColZnorm
	ColDataID
	ColCluster
	ColDeltaE
	ColMarker
	ColColor
	ColCentroidX
	ColCentroidY
	ColCentroidZ
	ColSphere
	ColRadius
	// ColTrendline is worksheet-only; exchange documents do not carry it.
	ColTrendline
)

// DocumentColumns is the number of columns in the exchange header contract.
const DocumentColumns = int(ColTrendline)

// WorksheetColumns is the number of columns in a worksheet row.
const WorksheetColumns = DocumentColumns + 1

// HeaderContract is the exact row-8 header of an exchange document.
var HeaderContract = []string{
	"Xnorm", "Ynorm", "Znorm", "DataID", "Cluster", "DeltaE", "Marker",
	"Color", "CentroidX", "CentroidY", "CentroidZ", "Sphere", "Radius",
}

// ColumnName returns the header name of c, or "Trendline" for the
// worksheet-only column.
func (c Column) ColumnName() string {
	switch {
	case c >= 0 && int(c) < DocumentColumns:
		return HeaderContract[c]
	case c == ColTrendline:
		return "Trendline"
	default:
		return fmt.Sprintf("Column%d", int(c)+1)
	}
}

// Row is one worksheet line of raw cell values indexed by Column.
// A row may be shorter than WorksheetColumns; missing cells read as nil.
type Row []any

// NewRow returns an empty row sized for the worksheet.
func NewRow() Row {
	return make(Row, WorksheetColumns)
}

// Cell returns the value at c, or nil when the row is too short.
func (r Row) Cell(c Column) any {
	if c < 0 || int(c) >= len(r) {
		return nil
	}
	return r[c]
}

// WithCell returns a row with c set to v, growing the row when needed.
func (r Row) WithCell(c Column, v any) Row {
	if int(c) >= len(r) {
		grown := make(Row, int(c)+1)
		copy(grown, r)
		r = grown
	}
	r[c] = v
	return r
}

// Clone returns a copy of the row padded to WorksheetColumns.
func (r Row) Clone() Row {
	n := len(r)
	if n < WorksheetColumns {
		n = WorksheetColumns
	}
	out := make(Row, n)
	copy(out, r)
	return out
}

// DataID returns the trimmed textual DataID cell.
func (r Row) DataID() string {
	return CellText(r.Cell(ColDataID))
}

// IsBlank reports whether the cell holds no value.
func IsBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	case *float64:
		return t == nil
	case *bool:
		return t == nil
	case *ClusterID:
		return t == nil || *t == ""
	case ClusterID:
		return t == ""
	default:
		return false
	}
}

// CellText renders a cell as trimmed text. Numbers use the shortest
// representation that round-trips.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case ClusterID:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
