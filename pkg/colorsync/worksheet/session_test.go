package worksheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

func row(id string, x float64) models.Row {
	return models.NewRow().WithCell(models.ColDataID, id).WithCell(models.ColXnorm, x)
}

func TestSessionPutReplacesInPlace(t *testing.T) {
	s := New(1)
	if s.Put(row("S1_pt1", 0.1)) {
		t.Error("first Put reported a replacement")
	}
	s.Put(row("S1_pt2", 0.2))
	s.Put(models.NewRow())
	if !s.Put(row("S1_pt1", 0.9)) {
		t.Error("second Put did not replace")
	}

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	rows := s.Rows()
	if rows[0].DataID() != "S1_pt1" || rows[0][models.ColXnorm] != 0.9 {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1].DataID() != "S1_pt2" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestSessionReturnsCopies(t *testing.T) {
	s := New(1)
	s.Put(row("S1_pt1", 0.1))

	got, ok := s.Get("S1_pt1")
	if !ok {
		t.Fatal("Get missed S1_pt1")
	}
	got[models.ColXnorm] = 5.0
	s.Rows()[0][models.ColXnorm] = 6.0

	again, _ := s.Get("S1_pt1")
	if again[models.ColXnorm] != 0.1 {
		t.Errorf("session row mutated through a copy: %v", again[models.ColXnorm])
	}
	if len(again) != models.WorksheetColumns {
		t.Errorf("row width = %d, want %d", len(again), models.WorksheetColumns)
	}
}

func TestSessionDelete(t *testing.T) {
	s := FromRows(1, []models.Row{row("S1_pt1", 0.1), row("S1_pt2", 0.2), row("S1_pt3", 0.3)})
	if !s.Delete("S1_pt2") {
		t.Fatal("Delete returned false")
	}
	if s.Delete("S1_pt2") {
		t.Error("second Delete returned true")
	}
	if s.Has("S1_pt2") || s.Len() != 2 {
		t.Errorf("row not removed, Len = %d", s.Len())
	}
	got, ok := s.Get("S1_pt3")
	if !ok || got[models.ColXnorm] != 0.3 {
		t.Errorf("index stale after delete: %v %v", got, ok)
	}
	s.Clear()
	if s.Len() != 0 || s.Has("S1_pt1") {
		t.Error("Clear left rows behind")
	}
}

func TestLoadSnapshot(t *testing.T) {
	doc := `{
  "session_id": "6f1c1b2a-4a59-4d8f-9d7e-0c1f0a2b3c4d",
  "set_id": 3,
  "rows": [
    [0.5, 0.25, 0.75, "S3_pt1", 2, 1.5, "^", "red", null, null, null, "blue", 0.05, true],
    [0.1, 0.2, 0.3, "S3_pt2"]
  ]
}`
	s, err := LoadSnapshot(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if s.SetID != 3 || s.ID.String() != "6f1c1b2a-4a59-4d8f-9d7e-0c1f0a2b3c4d" {
		t.Errorf("Unexpected session header: %d %s", s.SetID, s.ID)
	}
	r, ok := s.Get("S3_pt1")
	if !ok {
		t.Fatal("S3_pt1 missing")
	}
	if r[models.ColCluster] != models.ClusterID("2") || r[models.ColTrendline] != true {
		t.Errorf("Unexpected cells: %v", r)
	}

	var buf bytes.Buffer
	if err := s.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	back, err := LoadSnapshot(&buf)
	if err != nil {
		t.Fatalf("reloading snapshot failed: %v", err)
	}
	if back.ID != s.ID || back.Len() != 2 {
		t.Errorf("reloaded session differs: %s %d", back.ID, back.Len())
	}
}

func TestLoadSnapshotRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing rows", `{"set_id": 1}`},
		{"bad set id", `{"set_id": 0, "rows": []}`},
		{"object cell", `{"rows": [[{"x": 1}]]}`},
		{"too wide", `{"rows": [[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15]]}`},
		{"unknown key", `{"rows": [], "extra": true}`},
		{"bad uuid", `{"session_id": "nope", "rows": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSnapshot(strings.NewReader(tt.doc))
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}
