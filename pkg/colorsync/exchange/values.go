package exchange

import (
	"strconv"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// textColumns never hold numbers, even when the text looks numeric.
var textColumns = map[models.Column]bool{
	models.ColDataID: true,
	models.ColMarker: true,
	models.ColColor:  true,
	models.ColSphere: true,
}

// parseValue parses a numeric contract cell. Every numeric column is
// real-valued, so numbers come back as float64 whatever their spelling;
// text that is not a number is returned unchanged.
func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// readCell converts raw cell text into a row value. Empty cells are nil.
// Cluster cells become a models.ClusterID.
func readCell(col models.Column, raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	switch {
	case col == models.ColCluster:
		if id, ok, err := models.ParseClusterID(s); err == nil && ok {
			return id
		}
		return s
	case textColumns[col]:
		return s
	}
	return parseValue(s)
}

// writeCell converts a row value into the value stored in the document.
// Numeric columns store numbers whenever the value is numeric; cluster ids
// are stored as text in canonical form.
func writeCell(col models.Column, v any) any {
	if models.IsBlank(v) {
		return nil
	}
	if col == models.ColCluster {
		if id, ok, err := models.ParseClusterID(v); err == nil && ok {
			return string(id)
		}
		return models.CellText(v)
	}
	if textColumns[col] {
		return models.CellText(v)
	}
	switch t := v.(type) {
	case float64, float32, int, int64, bool:
		return t
	case *float64:
		return *t
	case *bool:
		return *t
	default:
		s := models.CellText(v)
		return parseValue(s)
	}
}

// formatCell renders a stored value as text for formats without cell types.
func formatCell(v any) string {
	if v == nil {
		return ""
	}
	return models.CellText(v)
}
