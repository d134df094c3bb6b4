package exchange

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []models.Row {
	return []models.Row{
		{0.5, 0.25, 0.75, "S1_pt1", models.ClusterID("2"), 1.25, "^", "red", 0.4, 0.3, 0.2, "blue", 0.05, true},
		{0.1, 0.2, 0.3, "S1_pt2", nil, nil, ".", "blue", nil, nil, nil, nil, nil},
	}
}

// writeFixture builds an xlsx file with one sheet per entry of sheets.
// Each sheet gets seven metadata rows, the given header on row 8 and data
// from row 9.
func writeFixture(t *testing.T, sheets map[string][][]any, order []string, header []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName failed: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet failed: %v", err)
		}
		f.SetCellValue(name, "A1", "metadata for "+name)
		hdr := make([]any, len(header))
		for j, h := range header {
			hdr[j] = h
		}
		if err := f.SetSheetRow(name, "A8", &hdr); err != nil {
			t.Fatalf("SetSheetRow header failed: %v", err)
		}
		for j, row := range sheets[name] {
			cell, _ := excelize.CoordinatesToCellName(1, 9+j)
			r := row
			if err := f.SetSheetRow(name, cell, &r); err != nil {
				t.Fatalf("SetSheetRow failed: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return path
}

func TestCreateTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	if err := CreateTemplate(path, "", DefaultMetadata("stamps")); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open template: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !slices.Equal(got, []string{DefaultSheet, InstructionsSheet}) {
		t.Errorf("Unexpected sheets: %v", got)
	}
	rows, err := f.GetRows(DefaultSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != models.HeaderRow {
		t.Fatalf("Expected %d populated rows, got %d", models.HeaderRow, len(rows))
	}
	if !slices.Equal(rows[models.HeaderRow-1], models.HeaderContract) {
		t.Errorf("Header row = %v, want %v", rows[models.HeaderRow-1], models.HeaderContract)
	}
	if rows[0][0] != "Plot_3D Data Template" {
		t.Errorf("Unexpected title %q", rows[0][0])
	}

	dvs, err := f.GetDataValidations(DefaultSheet)
	if err != nil {
		t.Fatalf("GetDataValidations failed: %v", err)
	}
	var sqrefs []string
	for _, dv := range dvs {
		sqrefs = append(sqrefs, dv.Sqref)
	}
	for _, want := range []string{"G9:G200", "H9:H200", "L9:L200"} {
		if !slices.Contains(sqrefs, want) {
			t.Errorf("Missing drop-down on %s (have %v)", want, sqrefs)
		}
	}

	data, err := ReadSheet(path, "", ReadOptions{})
	if err != nil {
		t.Fatalf("ReadSheet on template failed: %v", err)
	}
	if len(data.Rows) != 0 {
		t.Errorf("Expected no data rows, got %d", len(data.Rows))
	}
	if data.Metadata[1] != "Sample Set: stamps" {
		t.Errorf("Unexpected metadata line: %q", data.Metadata[1])
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "plot.xlsx")
	want := sampleRows()

	res, err := WriteSheet(path, "", want, WriteOptions{SampleSet: "stamps"})
	if err != nil {
		t.Fatalf("WriteSheet failed: %v", err)
	}
	if !res.Created || res.Sheet != DefaultSheet || res.Rows != 2 {
		t.Errorf("Unexpected result: %+v", res)
	}

	data, err := ReadSheet(path, "", ReadOptions{})
	if err != nil {
		t.Fatalf("ReadSheet failed: %v", err)
	}
	if len(data.Rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(data.Rows))
	}
	for i, got := range data.Rows {
		if got.Line != models.FirstDataRow+i {
			t.Errorf("row %d: line = %d", i, got.Line)
		}
		if len(got.Cells) != models.DocumentColumns {
			t.Errorf("row %d: %d cells, want %d", i, len(got.Cells), models.DocumentColumns)
		}
		for c := 0; c < models.DocumentColumns; c++ {
			g := models.CellText(got.Cells[c])
			w := models.CellText(want[i].Cell(models.Column(c)))
			if g != w {
				t.Errorf("row %d %s: got %q, want %q", i, models.Column(c).ColumnName(), g, w)
			}
		}
	}
	if _, ok := data.Rows[0].Cells[models.ColXnorm].(float64); !ok {
		t.Errorf("Xnorm read as %T, want float64", data.Rows[0].Cells[models.ColXnorm])
	}
	if data.Rows[0].Cells[models.ColCluster] != models.ClusterID("2") {
		t.Errorf("Cluster read as %v (%T), want ClusterID(\"2\")", data.Rows[0].Cells[models.ColCluster], data.Rows[0].Cells[models.ColCluster])
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()
	for _, cell := range []string{"A9", "F9", "M9"} {
		typ, err := f.GetCellType(DefaultSheet, cell)
		if err != nil {
			t.Fatalf("GetCellType failed: %v", err)
		}
		if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
			t.Errorf("%s stored as text, want number", cell)
		}
	}
	typ, err := f.GetCellType(DefaultSheet, "E9")
	if err != nil {
		t.Fatalf("GetCellType failed: %v", err)
	}
	if typ != excelize.CellTypeSharedString && typ != excelize.CellTypeInlineString {
		t.Errorf("Cluster stored as type %v, want text", typ)
	}
	if v, _ := f.GetCellValue(DefaultSheet, "N9"); v != "" {
		t.Errorf("Trendline column leaked into document: %q", v)
	}
}

func TestReadSheetSelectsSheet(t *testing.T) {
	header := models.HeaderContract
	path := writeFixture(t, map[string][][]any{
		"First":  {{0.1, 0.1, 0.1, "S1_pt1"}},
		"Second": {{0.2, 0.2, 0.2, "S2_pt1"}, {0.3, 0.3, 0.3, "S2_pt2"}},
	}, []string{"First", "Second"}, header)

	tests := []struct {
		sheet   string
		wantIDs []string
	}{
		{"", []string{"S1_pt1"}},
		{"First", []string{"S1_pt1"}},
		{"Second", []string{"S2_pt1", "S2_pt2"}},
	}
	for _, tt := range tests {
		t.Run("sheet="+tt.sheet, func(t *testing.T) {
			data, err := ReadSheet(path, tt.sheet, ReadOptions{})
			if err != nil {
				t.Fatalf("ReadSheet failed: %v", err)
			}
			var ids []string
			for _, r := range data.Rows {
				ids = append(ids, r.Cells.DataID())
			}
			if !slices.Equal(ids, tt.wantIDs) {
				t.Errorf("DataIDs = %v, want %v", ids, tt.wantIDs)
			}
		})
	}

	if _, err := ReadSheet(path, "Missing", ReadOptions{}); err == nil {
		t.Error("Expected error for missing sheet")
	}
	names, err := SheetNames(path)
	if err != nil || !slices.Equal(names, []string{"First", "Second"}) {
		t.Errorf("SheetNames = %v, %v", names, err)
	}
}

func TestReadSheetHeaderMismatch(t *testing.T) {
	swapped := slices.Clone(models.HeaderContract)
	swapped[0], swapped[3] = swapped[3], swapped[0]
	path := writeFixture(t, map[string][][]any{
		"Data": {{"S1_pt1", 0.2, 0.3, 0.9}},
	}, []string{"Data"}, swapped)

	_, err := ReadSheet(path, "", ReadOptions{})
	var fce *models.FormatContractError
	if !errors.As(err, &fce) {
		t.Fatalf("Expected FormatContractError, got %v", err)
	}
	if fce.Sheet != "Data" {
		t.Errorf("Unexpected sheet in error: %q", fce.Sheet)
	}

	data, err := ReadSheet(path, "", ReadOptions{Remap: true})
	if err != nil {
		t.Fatalf("ReadSheet with remap failed: %v", err)
	}
	row := data.Rows[0].Cells
	if row.DataID() != "S1_pt1" || row[models.ColXnorm] != 0.9 {
		t.Errorf("Remap produced %v", row)
	}

	missing := slices.Clone(models.HeaderContract[:12])
	path = writeFixture(t, map[string][][]any{"Data": nil}, []string{"Data"}, missing)
	if _, err := ReadSheet(path, "", ReadOptions{Remap: true}); !errors.Is(err, models.ErrFormatContract) {
		t.Errorf("Expected FormatContractError for missing column, got %v", err)
	}
}

func TestCheckHeader(t *testing.T) {
	legacy := []string{"Xnorm", "Ynorm", "Znorm", "DataID", "Cluster", "∆E", "Marker",
		"Color", "Centroid_X", "Centroid_Y", "Centroid_Z", "Sphere", "Radius", "Extra"}
	if err := CheckHeader(legacy); err != nil {
		t.Errorf("Legacy header rejected: %v", err)
	}
	if err := CheckHeader(models.HeaderContract[:5]); err == nil {
		t.Error("Short header accepted")
	}
	renamed := slices.Clone(models.HeaderContract)
	renamed[5] = "Delta"
	if err := CheckHeader(renamed); err == nil {
		t.Error("Renamed header accepted")
	}
}

func TestWriteSheetDiscardNeedsConfirm(t *testing.T) {
	header := slices.Clone(models.HeaderContract)
	header[1] = "Y"
	path := writeFixture(t, map[string][][]any{
		"Data": {{1, 2, 3, "keep me"}},
	}, []string{"Data"}, header)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	_, err = WriteSheet(path, "", sampleRows(), WriteOptions{})
	var fce *models.FormatContractError
	if !errors.As(err, &fce) || !fce.NeedsConfirm {
		t.Fatalf("Expected FormatContractError needing confirmation, got %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("Rejected write modified the document")
	}

	res, err := WriteSheet(path, "", sampleRows(), WriteOptions{ConfirmDiscard: true})
	if err != nil {
		t.Fatalf("Confirmed WriteSheet failed: %v", err)
	}
	if !res.HeaderRewritten || res.Discarded != 4 {
		t.Errorf("Unexpected result: %+v", res)
	}
	data, err := ReadSheet(path, "", ReadOptions{})
	if err != nil {
		t.Fatalf("ReadSheet failed: %v", err)
	}
	if len(data.Rows) != 2 || data.Rows[0].Cells.DataID() != "S1_pt1" {
		t.Errorf("Unexpected rows after rewrite: %+v", data.Rows)
	}
}

func TestWriteSheetRewritesEmptyHeader(t *testing.T) {
	path := writeFixture(t, map[string][][]any{"Data": nil}, []string{"Data"}, []string{"wrong"})
	res, err := WriteSheet(path, "Data", sampleRows()[:1], WriteOptions{})
	if err != nil {
		t.Fatalf("WriteSheet failed: %v", err)
	}
	if !res.HeaderRewritten || res.Discarded != 0 {
		t.Errorf("Unexpected result: %+v", res)
	}
	data, err := ReadSheet(path, "Data", ReadOptions{})
	if err != nil {
		t.Fatalf("ReadSheet failed: %v", err)
	}
	if data.Metadata[0] != "metadata for Data" {
		t.Errorf("Metadata not kept: %q", data.Metadata[0])
	}
}

func TestWriteSheetReplacesDataZone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.xlsx")
	if _, err := WriteSheet(path, "", sampleRows(), WriteOptions{}); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := WriteSheet(path, "", sampleRows()[1:], WriteOptions{}); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	data, err := ReadSheet(path, "", ReadOptions{})
	if err != nil {
		t.Fatalf("ReadSheet failed: %v", err)
	}
	if len(data.Rows) != 1 || data.Rows[0].Cells.DataID() != "S1_pt2" {
		t.Errorf("Expected only S1_pt2, got %+v", data.Rows)
	}

	if _, err := WriteSheet(path, "Extra", sampleRows(), WriteOptions{}); err != nil {
		t.Fatalf("write to new sheet failed: %v", err)
	}
	names, _ := SheetNames(path)
	if !slices.Contains(names, "Extra") {
		t.Errorf("New sheet not created: %v", names)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.csv")
	if err := CreateTemplate(path, "", DefaultMetadata("csv")); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	empty, err := ReadSheet(path, "", ReadOptions{})
	if err != nil {
		t.Fatalf("ReadSheet on csv template failed: %v", err)
	}
	if len(empty.Rows) != 0 || empty.Name != "plot" {
		t.Errorf("Unexpected csv template content: %+v", empty)
	}

	if _, err := WriteSheet(path, "", sampleRows(), WriteOptions{}); err != nil {
		t.Fatalf("WriteSheet failed: %v", err)
	}
	data, err := ReadSheet(path, "", ReadOptions{})
	if err != nil {
		t.Fatalf("ReadSheet failed: %v", err)
	}
	if len(data.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(data.Rows))
	}
	if data.Rows[0].Cells[models.ColDeltaE] != 1.25 || data.Rows[0].Cells[models.ColMarker] != "^" {
		t.Errorf("Unexpected csv row: %v", data.Rows[0].Cells)
	}
}

func TestCSVAnySheetNameAddressesTheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.csv")
	first := []models.Row{
		{0.1, 0.1, 0.1, "S1_pt1"},
		{0.2, 0.2, 0.2, "S1_pt2"},
		{0.3, 0.3, 0.3, "S1_pt3"},
	}
	if _, err := WriteSheet(path, "", first, WriteOptions{}); err != nil {
		t.Fatalf("WriteSheet failed: %v", err)
	}

	res, err := WriteSheet(path, "Other", []models.Row{{0.9, 0.9, 0.9, "S9_pt1"}}, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteSheet to another sheet name failed: %v", err)
	}
	if res.Sheet != "plot" || res.Rows != 1 {
		t.Errorf("Unexpected result: %+v", res)
	}

	for _, sheet := range []string{"", "plot", "Other"} {
		data, err := ReadSheet(path, sheet, ReadOptions{})
		if err != nil {
			t.Fatalf("ReadSheet(%q) failed: %v", sheet, err)
		}
		var ids []string
		for _, r := range data.Rows {
			ids = append(ids, r.Cells.DataID())
		}
		if !slices.Equal(ids, []string{"S9_pt1"}) || data.Name != "plot" {
			t.Errorf("ReadSheet(%q) = %s %v, want plot [S9_pt1]", sheet, data.Name, ids)
		}
	}
}

func TestResolveSheetNotFound(t *testing.T) {
	if _, err := ResolveSheet([]string{"a", "b"}, "c"); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("Expected ErrSheetNotFound, got %v", err)
	}
	if got, err := ResolveSheet([]string{"a", "b"}, ""); err != nil || got != "a" {
		t.Errorf("ResolveSheet empty = %q, %v", got, err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := Open("plot.ods"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := WriteSheet(filepath.Join(t.TempDir(), "plot.txt"), "", nil, WriteOptions{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFindDataBounds(t *testing.T) {
	rows := [][]string{
		{"title"},
		{},
		{"", "x", "", "y"},
		{"", "", "z"},
	}
	minRow, maxRow, minCol, maxCol := findDataBounds(rows, 1)
	if minRow != 2 || maxRow != 3 || minCol != 1 || maxCol != 3 {
		t.Errorf("bounds = (%d,%d,%d,%d), want (2,3,1,3)", minRow, maxRow, minCol, maxCol)
	}
	if n := countNonEmptyCells(rows, minRow, maxRow, minCol, maxCol); n != 3 {
		t.Errorf("Expected 3 non-empty cells, got %d", n)
	}
	if r, _, _, _ := findDataBounds(rows, 10); r != -1 {
		t.Errorf("Expected empty zone, got row %d", r)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"123", 123.0},
		{"123.45", 123.45},
		{"-100", -100.0},
		{"1.0", 1.0},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		result := parseValue(tt.input)
		if result != tt.expected {
			t.Errorf("parseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}

func TestReadCellKeepsTextColumns(t *testing.T) {
	if got := readCell(models.ColMarker, "1"); got != "1" {
		t.Errorf("Marker read as %v (%T), want text", got, got)
	}
	if got := readCell(models.ColRadius, " 0.5 "); got != 0.5 {
		t.Errorf("Radius read as %v, want 0.5", got)
	}
	if got := readCell(models.ColDeltaE, "  "); got != nil {
		t.Errorf("Blank cell read as %v, want nil", got)
	}
	if got := readCell(models.ColDeltaE, "1"); got != 1.0 {
		t.Errorf("DeltaE read as %v (%T), want float64(1)", got, got)
	}
}

func TestClusterCellsStayText(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"2", models.ClusterID("2")},
		{"2.0", models.ClusterID("2")},
		{" core ", models.ClusterID("core")},
		{"", nil},
	}
	for _, tt := range tests {
		if got := readCell(models.ColCluster, tt.raw); got != tt.want {
			t.Errorf("readCell(Cluster, %q) = %v (%T), want %v", tt.raw, got, got, tt.want)
		}
	}

	writes := []struct {
		in   any
		want any
	}{
		{models.ClusterID("2"), "2"},
		{int64(3), "3"},
		{2.0, "2"},
		{"core", "core"},
		{nil, nil},
	}
	for _, tt := range writes {
		if got := writeCell(models.ColCluster, tt.in); got != tt.want {
			t.Errorf("writeCell(Cluster, %v) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}
