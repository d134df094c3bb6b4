package worksheet

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

//go:embed snapshot.schema.json
var snapshotSchema []byte

const snapshotSchemaURL = "https://github.com/ukaji3/colorsync-go/worksheet/snapshot.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(snapshotSchema))
		if err != nil {
			compileErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(snapshotSchemaURL, doc); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = c.Compile(snapshotSchemaURL)
	})
	return compiled, compileErr
}

// Snapshot is the JSON form of a worksheet exchanged with the GUI.
type Snapshot struct {
	SessionID string  `json:"session_id,omitempty"`
	SetID     int64   `json:"set_id,omitempty"`
	Rows      [][]any `json:"rows"`
}

// LoadSnapshot decodes a snapshot from r into a new session. The document is
// validated against the snapshot schema before any row is loaded.
func LoadSnapshot(r io.Reader) (*Session, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	sch, err := schema()
	if err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, models.NewValidationError("snapshot", "", err.Error())
	}
	if err := sch.Validate(inst); err != nil {
		return nil, models.NewValidationError("snapshot", "", err.Error())
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, models.NewValidationError("snapshot", "", err.Error())
	}
	s := New(snap.SetID)
	if snap.SessionID != "" {
		id, err := uuid.Parse(snap.SessionID)
		if err != nil {
			return nil, models.NewValidationError("session_id", snap.SessionID, "not a UUID")
		}
		s.ID = id
	}
	for _, cells := range snap.Rows {
		row := models.Row(cells)
		// Save reports cluster values that do not parse.
		if int(models.ColCluster) < len(row) {
			if id, ok, err := models.ParseClusterID(row[models.ColCluster]); err == nil && ok {
				row[models.ColCluster] = id
			}
		}
		s.Put(row)
	}
	return s, nil
}

// WriteSnapshot encodes the session as an indented JSON snapshot.
func (s *Session) WriteSnapshot(w io.Writer) error {
	snap := Snapshot{
		SessionID: s.ID.String(),
		SetID:     s.SetID,
		Rows:      make([][]any, len(s.rows)),
	}
	for i, r := range s.rows {
		cells := make([]any, len(r))
		for c, v := range r {
			cells[c] = snapshotValue(v)
		}
		snap.Rows[i] = cells
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// snapshotValue reduces a cell to a JSON scalar.
func snapshotValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int64:
		return t
	case models.ClusterID:
		return string(t)
	case *float64:
		if t == nil {
			return nil
		}
		return *t
	case *bool:
		if t == nil {
			return nil
		}
		return *t
	case *string:
		if t == nil {
			return nil
		}
		return *t
	default:
		return models.CellText(v)
	}
}
