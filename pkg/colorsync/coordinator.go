package colorsync

import (
	"context"
	"log/slog"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/exchange"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/store"
)

// RecordStore is the part of the record store the coordinator uses.
type RecordStore interface {
	Ping(ctx context.Context) error
	GetSampleSet(ctx context.Context, setID int64) (models.SampleSet, error)
	GetAllMeasurements(ctx context.Context, f store.Filter) ([]models.MeasurementRecord, error)
	UpsertExtendedAttributes(ctx context.Context, setID, pointIndex int64, partial models.PartialAttributes) error
}

// Documents is the part of the exchange adapter the coordinator uses.
type Documents interface {
	SheetNames(path string) ([]string, error)
	ReadSheet(path, sheet string, opts exchange.ReadOptions) (*models.SheetData, error)
	WriteSheet(path, sheet string, rows []models.Row, opts exchange.WriteOptions) (exchange.WriteResult, error)
}

// Coordinator runs Save, Refresh, Import and Export. It holds no worksheet
// state; every operation is given its rows or session explicitly.
type Coordinator struct {
	store   RecordStore
	docs    Documents
	opts    Options
	logger  *slog.Logger
	metrics *metrics
}

// New returns a coordinator over the given store and document adapter.
// Zero-valued options fall back to DefaultOptions.
func New(st RecordStore, docs Documents, opts Options) *Coordinator {
	def := DefaultOptions()
	if opts.Projection == nil {
		opts.Projection = def.Projection
	}
	if opts.DefaultMarker == "" {
		opts.DefaultMarker = def.DefaultMarker
	}
	if opts.DefaultColor == "" {
		opts.DefaultColor = def.DefaultColor
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:   st,
		docs:    docs,
		opts:    opts,
		logger:  logger.With("component", "coordinator"),
		metrics: newMetrics(opts.Registerer),
	}
}
