// Package exchange reads and writes the rigid-layout exchange document:
// metadata rows 1-7, the contract header on row 8 and data from row 9.
// It translates formats only; merge and precedence rules belong to the
// caller.
package exchange

import (
	"fmt"
	"strings"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// DefaultSheet is the sheet name used for new documents.
const DefaultSheet = "Plot3D_Data"

// InstructionsSheet is the helper sheet added to xlsx templates.
const InstructionsSheet = "Instructions"

// headerAliases maps legacy header spellings to contract names.
var headerAliases = map[string]string{
	"∆E":         "DeltaE",
	"ΔE":         "DeltaE",
	"Centroid_X": "CentroidX",
	"Centroid_Y": "CentroidY",
	"Centroid_Z": "CentroidZ",
}

// HeaderIndex maps a contract column to its 0-based position in a sheet.
type HeaderIndex map[models.Column]int

// canonicalHeader trims a header cell and resolves legacy spellings.
func canonicalHeader(h string) string {
	h = strings.TrimSpace(h)
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

// CheckHeader reports whether found matches the header contract in exact
// order. Legacy spellings count as equal and columns beyond the contract
// are ignored.
func CheckHeader(found []string) error {
	for i, want := range models.HeaderContract {
		if i >= len(found) {
			return fmt.Errorf("header has %d columns, want %d", len(found), len(models.HeaderContract))
		}
		if got := canonicalHeader(found[i]); got != want {
			return fmt.Errorf("column %d is %q, want %q", i+1, found[i], want)
		}
	}
	return nil
}

// MakeHeaderIndex locates every contract column in found by name.
// It fails when a contract name is missing or appears twice.
func MakeHeaderIndex(found []string) (HeaderIndex, error) {
	pos := make(map[string]int, len(found))
	for i, h := range found {
		key := canonicalHeader(h)
		if key == "" {
			continue
		}
		if _, dup := pos[key]; dup {
			return nil, fmt.Errorf("header %q appears more than once", key)
		}
		pos[key] = i
	}
	idx := make(HeaderIndex, len(models.HeaderContract))
	var missing []string
	for c, name := range models.HeaderContract {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[models.Column(c)] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// identityIndex maps each contract column to its own position.
func identityIndex() HeaderIndex {
	idx := make(HeaderIndex, len(models.HeaderContract))
	for c := range models.HeaderContract {
		idx[models.Column(c)] = c
	}
	return idx
}

// DefaultMetadata returns the instruction block written to new documents.
func DefaultMetadata(sampleSet string) models.Metadata {
	return models.Metadata{
		Title: "Plot_3D Data Template",
		Lines: []string{
			"Sample Set: " + sampleSet,
			"Created by colorsync",
			"Do NOT modify headers in row 8",
			"IMPORTANT: This format is required for Plot_3D",
			"K-means expects exact column order",
			"ΔE calculations depend on structure",
		},
	}
}
