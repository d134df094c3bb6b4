package colorsync

// RowIssue describes a row that was skipped or failed.
type RowIssue struct {
	// Row is the 0-based worksheet position, or the 1-based document line
	// for rows read from an exchange document.
	Row int `json:"row"`
	// DataID is the row's DataID as text, possibly malformed.
	DataID string `json:"data_id,omitempty"`
	// Reason is a human-readable cause.
	Reason string `json:"reason"`
	// Err is the underlying error.
	Err error `json:"-"`
}

// SaveResult reports the outcome of Save.
type SaveResult struct {
	// Saved counts rows whose attributes were written.
	Saved int `json:"saved"`
	// Skipped lists rows rejected by validation.
	Skipped []RowIssue `json:"skipped,omitempty"`
	// Failed lists rows the store could not write.
	Failed []RowIssue `json:"failed,omitempty"`
}

// RefreshResult reports the outcome of Refresh.
type RefreshResult struct {
	SetID int64 `json:"set_id"`
	// Updated counts session rows merged with their stored record.
	Updated int `json:"updated"`
	// Inserted counts stored records appended to the session.
	Inserted int `json:"inserted"`
	// Untouched counts session rows with no stored counterpart.
	Untouched int `json:"untouched"`
}

// ImportResult reports the outcome of Import.
type ImportResult struct {
	// Sheet is the sheet that was read.
	Sheet string `json:"sheet"`
	// Imported counts rows merged into the session.
	Imported int `json:"imported"`
	// Overwritten counts imported rows that replaced an existing session row.
	Overwritten int `json:"overwritten"`
	// Skipped lists rows without a valid DataID.
	Skipped []RowIssue `json:"skipped,omitempty"`
}

// ExportResult reports the outcome of Export.
type ExportResult struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet"`
	// Written counts data rows in the sheet after the export.
	Written int `json:"written"`
	// Updated counts document rows merged with an outgoing row.
	Updated int `json:"updated"`
	// Appended counts outgoing rows added to the document.
	Appended int `json:"appended"`
	// Skipped lists outgoing rows without a valid DataID.
	Skipped []RowIssue `json:"skipped,omitempty"`
	// HeaderRewritten is set when a non-contract header was replaced.
	HeaderRewritten bool `json:"header_rewritten,omitempty"`
}
