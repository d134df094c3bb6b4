// Package dataid encodes and decodes the DataID that addresses a
// measurement from a worksheet or exchange document row.
package dataid

import (
	"regexp"
	"strconv"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

var pattern = regexp.MustCompile(`^S([1-9][0-9]*)_pt([1-9][0-9]*)$`)

// Encode returns the DataID of (setID, pointIndex), e.g. "S10_pt1".
func Encode(setID, pointIndex int64) string {
	return "S" + strconv.FormatInt(setID, 10) + "_pt" + strconv.FormatInt(pointIndex, 10)
}

// Decode parses a DataID. Anything that does not match the pattern exactly
// is rejected, including surrounding whitespace and leading zeros.
func Decode(text string) (setID, pointIndex int64, err error) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, models.NewValidationError("DataID", text, "expected S<setId>_pt<pointIndex>")
	}
	setID, err = strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, 0, models.NewValidationError("DataID", text, "set id out of range")
	}
	pointIndex, err = strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, 0, models.NewValidationError("DataID", text, "point index out of range")
	}
	return setID, pointIndex, nil
}

// Valid reports whether text decodes.
func Valid(text string) bool {
	_, _, err := Decode(text)
	return err == nil
}

// FromCell decodes a raw DataID cell. Blank cells and non-text values are
// rejected.
func FromCell(v any) (setID, pointIndex int64, err error) {
	s, ok := v.(string)
	if !ok {
		if v == nil {
			return 0, 0, models.NewValidationError("DataID", "", "missing")
		}
		return 0, 0, models.NewValidationError("DataID", models.CellText(v), "not text")
	}
	if s == "" {
		return 0, 0, models.NewValidationError("DataID", "", "missing")
	}
	return Decode(s)
}
