package colorsync

import (
	"math"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// Projection maps a record to normalized plot coordinates in [0, 1].
type Projection func(rec models.MeasurementRecord) (x, y, z float64)

// DefaultProjection normalizes CIE Lab values: X = L*/100,
// Y = (a*+128)/255, Z = (b*+128)/255. Channel samples, marked by a zero L*
// or a sample type containing "channel", are projected from RGB instead.
// Results are clamped to [0, 1] and rounded to four decimals.
func DefaultProjection(rec models.MeasurementRecord) (x, y, z float64) {
	c := rec.Color
	if c.L == 0 || strings.Contains(strings.ToLower(rec.Geometry.Shape), "channel") {
		x, y, z = c.R/255, c.G/255, c.Blue/255
	} else {
		x, y, z = c.L/100, (c.A+128)/255, (c.B+128)/255
	}
	return unit(x), unit(y), unit(z)
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(0, math.Min(1, v))
	return math.Round(v*1e4) / 1e4
}
