package models

import (
	"math"
	"strconv"
	"strings"
)

// ClusterID is the canonical string form of a cluster assignment.
// Cluster ids are stored, transmitted and compared only in this form.
type ClusterID string

// ParseClusterID canonicalizes a raw cell or column value.
// Integral numbers in any spelling ("2", "2.0", 2, 2.0) become "2".
// Other numbers keep their shortest decimal form and other text is trimmed.
// The boolean result is false when v is blank.
func ParseClusterID(v any) (ClusterID, bool, error) {
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case ClusterID:
		return ParseClusterID(string(t))
	case *ClusterID:
		if t == nil {
			return "", false, nil
		}
		return ParseClusterID(string(*t))
	case int:
		return ClusterID(strconv.Itoa(t)), true, nil
	case int64:
		return ClusterID(strconv.FormatInt(t, 10)), true, nil
	case float64:
		return clusterFromFloat(t)
	case float32:
		return clusterFromFloat(float64(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", false, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return clusterFromFloat(f)
		}
		return ClusterID(s), true, nil
	case []byte:
		return ParseClusterID(string(t))
	default:
		return "", false, &ValidationError{Field: "cluster_id", Value: CellText(v), Reason: "unsupported cluster value type"}
	}
}

func clusterFromFloat(f float64) (ClusterID, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false, &ValidationError{Field: "cluster_id", Value: strconv.FormatFloat(f, 'g', -1, 64), Reason: "cluster must be finite"}
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return ClusterID(strconv.FormatInt(int64(f), 10)), true, nil
	}
	return ClusterID(strconv.FormatFloat(f, 'f', -1, 64)), true, nil
}

// String implements fmt.Stringer.
func (c ClusterID) String() string { return string(c) }
