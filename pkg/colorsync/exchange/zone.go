package exchange

// findDataBounds finds the bounding box of non-empty cells at or below
// fromRow (0-based). All bounds are -1 when the zone is empty.
func findDataBounds(rows [][]string, fromRow int) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx := fromRow; rowIdx < len(rows); rowIdx++ {
		for colIdx, cell := range rows[rowIdx] {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if maxRow < 0 || rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if maxCol < 0 || colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}

// countNonEmptyCells counts non-empty cells within bounds.
func countNonEmptyCells(rows [][]string, minRow, maxRow, minCol, maxCol int) int {
	if minRow < 0 {
		return 0
	}
	count := 0
	for rowIdx := minRow; rowIdx <= maxRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := minCol; colIdx <= maxCol && colIdx < len(row); colIdx++ {
			if row[colIdx] != "" {
				count++
			}
		}
	}
	return count
}

// zone describes the populated part of a sheet from the header row down.
type zone struct {
	// lastRow is the 1-based last row holding any value, or 0.
	lastRow int
	// width is the number of columns in use.
	width int
	// cells counts non-empty cells from the header row down.
	cells int
	// dataCells counts non-empty cells below the header row.
	dataCells int
}

func inspectZone(rows [][]string, headerRow int) zone {
	var z zone
	minRow, maxRow, minCol, maxCol := findDataBounds(rows, headerRow-1)
	if minRow < 0 {
		return z
	}
	z.lastRow = maxRow + 1
	z.width = maxCol + 1
	z.cells = countNonEmptyCells(rows, minRow, maxRow, minCol, maxCol)
	dMin, dMax, dMinCol, dMaxCol := findDataBounds(rows, headerRow)
	z.dataCells = countNonEmptyCells(rows, dMin, dMax, dMinCol, dMaxCol)
	return z
}
