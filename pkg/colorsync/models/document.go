package models

// Physical layout of an exchange document, as 1-based spreadsheet rows.
const (
	MetadataRows = 7
	HeaderRow    = 8
	FirstDataRow = 9
)

// Metadata is the human-readable block written to rows 1-7.
// Readers expose it by position only and never parse it.
type Metadata struct {
	// Title is written to row 1.
	Title string `json:"title"`
	// Lines fill rows 2-7; extra lines are dropped.
	Lines []string `json:"lines,omitempty"`
}

// Rows returns exactly MetadataRows lines for rows 1-7.
func (m Metadata) Rows() []string {
	out := make([]string, MetadataRows)
	out[0] = m.Title
	for i, l := range m.Lines {
		if i+1 >= MetadataRows {
			break
		}
		out[i+1] = l
	}
	return out
}

// SheetData is the parsed content of one exchange document sheet.
type SheetData struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// Metadata holds the raw text of rows 1-7.
	Metadata []string `json:"metadata,omitempty"`
	// Header is row 8 as found in the file.
	Header []string `json:"header"`
	// Rows are data rows from row 9. Fully empty lines are dropped.
	Rows []DataRow `json:"rows"`
}

// DataRow is one data line of a sheet.
type DataRow struct {
	// Line is the 1-based spreadsheet row.
	Line int `json:"line"`
	// Cells holds the contract columns, DocumentColumns wide.
	Cells Row `json:"cells"`
}

// DocumentInfo describes an exchange document.
type DocumentInfo struct {
	// BookName is the document file name (no path).
	BookName string `json:"book_name"`
	// Sheets lists sheet names in document order.
	Sheets []string `json:"sheets"`
}
