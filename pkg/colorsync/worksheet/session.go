// Package worksheet holds the in-memory worksheet of one editing session.
package worksheet

import (
	"github.com/google/uuid"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

// Session is the worksheet of a single editing session: an ordered list of
// rows addressed by DataID. Rows without a DataID are kept in place but can
// only be reached through Rows.
//
// A Session is not safe for concurrent use.
type Session struct {
	// ID identifies the session in logs and snapshots.
	ID uuid.UUID
	// SetID is the sample set the worksheet was last refreshed from, or 0.
	SetID int64

	rows  []models.Row
	index map[string]int
}

// New returns an empty session with a fresh ID.
func New(setID int64) *Session {
	return &Session{
		ID:    uuid.New(),
		SetID: setID,
		index: make(map[string]int),
	}
}

// FromRows returns a session holding copies of rows, in order.
func FromRows(setID int64, rows []models.Row) *Session {
	s := New(setID)
	for _, r := range rows {
		s.Put(r)
	}
	return s
}

// Len returns the number of rows.
func (s *Session) Len() int {
	return len(s.rows)
}

// Rows returns copies of every row in worksheet order.
func (s *Session) Rows() []models.Row {
	out := make([]models.Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Clone()
	}
	return out
}

// Get returns a copy of the row with the given DataID.
func (s *Session) Get(dataID string) (models.Row, bool) {
	i, ok := s.index[dataID]
	if !ok {
		return nil, false
	}
	return s.rows[i].Clone(), true
}

// Has reports whether a row with the given DataID exists.
func (s *Session) Has(dataID string) bool {
	_, ok := s.index[dataID]
	return ok
}

// Put stores a copy of row. A row whose DataID is already present replaces
// it in place; any other row is appended. It reports whether a row was
// replaced.
func (s *Session) Put(row models.Row) bool {
	row = row.Clone()
	id := row.DataID()
	if id != "" {
		if i, ok := s.index[id]; ok {
			s.rows[i] = row
			return true
		}
		s.index[id] = len(s.rows)
	}
	s.rows = append(s.rows, row)
	return false
}

// Delete removes the row with the given DataID and reports whether it
// existed.
func (s *Session) Delete(dataID string) bool {
	i, ok := s.index[dataID]
	if !ok {
		return false
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	s.reindex()
	return true
}

// Clear removes every row.
func (s *Session) Clear() {
	s.rows = nil
	s.index = make(map[string]int)
}

func (s *Session) reindex() {
	s.index = make(map[string]int, len(s.rows))
	for i, r := range s.rows {
		if id := r.DataID(); id != "" {
			if _, dup := s.index[id]; !dup {
				s.index[id] = i
			}
		}
	}
}
