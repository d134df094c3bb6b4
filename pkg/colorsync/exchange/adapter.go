package exchange

import "github.com/ukaji3/colorsync-go/pkg/colorsync/models"

// Adapter exposes the package functions as methods so callers can depend on
// an interface.
type Adapter struct{}

// NewAdapter returns the file-backed adapter.
func NewAdapter() Adapter {
	return Adapter{}
}

func (Adapter) SheetNames(path string) ([]string, error) {
	return SheetNames(path)
}

func (Adapter) ReadSheet(path, sheet string, opts ReadOptions) (*models.SheetData, error) {
	return ReadSheet(path, sheet, opts)
}

func (Adapter) WriteSheet(path, sheet string, rows []models.Row, opts WriteOptions) (WriteResult, error) {
	return WriteSheet(path, sheet, rows, opts)
}

func (Adapter) CreateTemplate(path, sheet string, meta models.Metadata) error {
	return CreateTemplate(path, sheet, meta)
}
