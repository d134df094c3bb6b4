package exchange

import (
	"fmt"

	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
	"github.com/xuri/excelize/v2"
)

// Value lists offered as drop-downs in xlsx templates.
var (
	ValidMarkers = []string{".", "o", "*", "^", "<", ">", "v", "s", "D", "+", "x"}
	ValidColors  = []string{
		"red", "blue", "green", "orange", "purple", "yellow", "cyan",
		"magenta", "brown", "pink", "lime", "navy", "teal", "gray",
	}
	ValidSpheres = ValidColors
)

// templateLastRow bounds styling and drop-down validation.
const templateLastRow = 200

var instructions = []string{
	"Plot_3D exchange document",
	"",
	"Rows 1-7 hold metadata and are not read back.",
	"Row 8 holds the column headers. Do not edit, reorder or rename them.",
	"Enter one measurement per row from row 9.",
	"DataID identifies the measurement as S<set>_pt<point>; rows without it are skipped on import.",
	"Use the drop-downs for Marker, Color and Sphere.",
	"Save the document before importing it.",
}

// CreateTemplate writes an empty document that satisfies the layout:
// metadata rows 1-7, the header on row 8 and nothing below. An existing
// file at path is replaced. Xlsx templates also carry styling, drop-down
// validation, unlocked entry cells, sheet protection and an instructions
// sheet.
func CreateTemplate(path, sheet string, meta models.Metadata) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	book, err := newBook(path, sheet)
	if err != nil {
		return err
	}
	defer book.Close()

	if err := writeMetadata(book, sheet, meta); err != nil {
		return err
	}
	if err := decorateSheet(book, sheet); err != nil {
		return err
	}
	if err := writeHeader(book, sheet); err != nil {
		return err
	}
	if xb, ok := book.(*xlsxBook); ok {
		if err := addInstructions(xb.file()); err != nil {
			return err
		}
	}
	return saveAtomic(book, path, 0o644)
}

type templateStyles struct {
	title, locked, header, entry, choice int
}

func newTemplateStyles(f *excelize.File) (templateStyles, error) {
	var s templateStyles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&s.locked, &excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFB6C1"}},
		}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&s.entry, &excelize.Style{Protection: &excelize.Protection{Locked: false}}},
		{&s.choice, &excelize.Style{
			Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E8E8E8"}},
			Protection: &excelize.Protection{Locked: false},
		}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, err
		}
		*d.dst = id
	}
	return s, nil
}

// decorateSheet styles a freshly laid out xlsx sheet. Other backends carry
// no formatting.
func decorateSheet(book Book, sheet string) error {
	xb, ok := book.(*xlsxBook)
	if !ok {
		return nil
	}
	f := xb.file()
	styles, err := newTemplateStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	last := fmt.Sprint(templateLastRow)
	ranges := []struct {
		from, to string
		style    int
	}{
		{"A1", "A1", styles.title},
		{"A2", "H7", styles.locked},
		{"A8", "M8", styles.header},
		{"A9", "M" + last, styles.entry},
		{"G9", "H" + last, styles.choice},
		{"L9", "L" + last, styles.choice},
	}
	for _, r := range ranges {
		if err := f.SetCellStyle(sheet, r.from, r.to, r.style); err != nil {
			return fmt.Errorf("style %s:%s: %w", r.from, r.to, err)
		}
	}

	lists := []struct {
		col   string
		title string
		keys  []string
	}{
		{"G", "Invalid Marker", ValidMarkers},
		{"H", "Invalid Color", ValidColors},
		{"L", "Invalid Sphere Color", ValidSpheres},
	}
	for _, l := range lists {
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s%d:%s%d", l.col, models.FirstDataRow, l.col, templateLastRow)
		if err := dv.SetDropList(l.keys); err != nil {
			return err
		}
		dv.SetError(excelize.DataValidationErrorStyleStop, l.title, "Please select a value from the list")
		if err := f.AddDataValidation(sheet, dv); err != nil {
			return fmt.Errorf("validation %s: %w", l.col, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "M", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "D", "D", 16); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      models.HeaderRow,
		TopLeftCell: "A9",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
		SelectLockedCells:   true,
		SelectUnlockedCells: true,
		FormatColumns:       true,
	})
}

func addInstructions(f *excelize.File) error {
	if _, err := f.NewSheet(InstructionsSheet); err != nil {
		return err
	}
	for i, line := range instructions {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(InstructionsSheet, cell, line); err != nil {
			return err
		}
	}
	return f.SetColWidth(InstructionsSheet, "A", "A", 90)
}
