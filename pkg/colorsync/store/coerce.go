package store

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// coerce converts a raw partial value into the SQL value written for f.
// A nil result clears the column.
func coerce(f models.Field, v any) (any, error) {
	kind, ok := f.Kind()
	if !ok {
		return nil, models.NewValidationError(string(f), models.CellText(v), "unknown field")
	}
	if models.IsBlank(v) {
		return nil, nil
	}
	switch kind {
	case models.KindReal:
		x, err := toReal(f, v)
		if err != nil {
			return nil, err
		}
		if f == models.FieldSphereRadius && x < 0 {
			return nil, models.NewValidationError(string(f), models.CellText(v), "radius must not be negative")
		}
		return x, nil
	case models.KindBool:
		b, err := toBool(f, v)
		if err != nil {
			return nil, err
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	case models.KindCluster:
		id, present, err := models.ParseClusterID(v)
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, nil
		}
		return string(id), nil
	default:
		return toText(f, v)
	}
}

func toReal(f models.Field, v any) (float64, error) {
	var x float64
	switch t := v.(type) {
	case float64:
		x = t
	case *float64:
		x = *t
	case float32:
		x = float64(t)
	case int:
		x = float64(t)
	case int64:
		x = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, models.NewValidationError(string(f), t, "not a number")
		}
		x = parsed
	default:
		return 0, models.NewValidationError(string(f), models.CellText(v), "not a number")
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, models.NewValidationError(string(f), models.CellText(v), "number must be finite")
	}
	return x, nil
}

func toBool(f models.Field, v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case *bool:
		return *t, nil
	case int:
		return intBool(f, int64(t))
	case int64:
		return intBool(f, t)
	case float64:
		if t == math.Trunc(t) {
			return intBool(f, int64(t))
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "t", "yes", "y", "on", "1.0":
			return true, nil
		case "0", "false", "f", "no", "n", "off", "0.0":
			return false, nil
		}
	}
	return false, models.NewValidationError(string(f), models.CellText(v), "not a boolean")
}

func intBool(f models.Field, n int64) (bool, error) {
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, models.NewValidationError(string(f), strconv.FormatInt(n, 10), "not a boolean")
}

func toText(f models.Field, v any) (any, error) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case *string:
		return strings.TrimSpace(*t), nil
	case bool:
		return nil, models.NewValidationError(string(f), strconv.FormatBool(t), "expected text")
	default:
		return models.CellText(v), nil
	}
}
