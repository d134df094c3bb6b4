// Package colorsync keeps analysis attributes consistent between an
// editing worksheet, the record store and exchange documents.
package colorsync

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Coordinator.
type Options struct {
	// Logger receives per-row outcomes at debug and batch summaries at info.
	// Defaults to slog.Default().
	Logger *slog.Logger
	// Registerer receives the coordinator metrics. If nil, metrics are kept
	// but not registered anywhere.
	Registerer prometheus.Registerer
	// ClearEmptyCells makes Save clear stored attributes whose worksheet
	// cell is empty. By default an empty cell means "not computed" and the
	// stored value is kept.
	ClearEmptyCells bool
	// Projection maps a record to its normalized plot coordinates.
	// Defaults to DefaultProjection.
	Projection Projection
	// DefaultMarker fills the Marker cell of refreshed rows that have
	// neither a stored nor a local marker.
	DefaultMarker string
	// DefaultColor fills the Color cell the same way.
	DefaultColor string
}

// DefaultOptions returns default coordinator options.
func DefaultOptions() Options {
	return Options{
		Projection:    DefaultProjection,
		DefaultMarker: ".",
		DefaultColor:  "blue",
	}
}

// ImportOptions configures Import.
type ImportOptions struct {
	// Remap locates contract columns by header name when the header row is
	// not in contract order.
	Remap bool
}

// ExportOptions configures Export.
type ExportOptions struct {
	// Sheet selects the target sheet. Empty selects the first sheet of an
	// existing document, or the default sheet of a new one.
	Sheet string
	// SampleSet names the set in the metadata of a new document.
	SampleSet string
	// ConfirmDiscard allows replacing a sheet whose header violates the
	// contract even when cells below it are lost.
	ConfirmDiscard bool
}
