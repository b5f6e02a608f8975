package scoresheet

import (
	"fmt"
	"strconv"
	"strings"
)

// CellRef represents a single cell reference in a workbook.
type CellRef struct {
	Sheet string // sheet name (empty = current sheet)
	Row   int    // 0-based row index
	Col   int    // 0-based column index
}

// NewCellRef creates a CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// ParseCellRef parses a cell reference string like "A1", "Teams!B5", "'Ref Pts'!B3" or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	var sheet string
	cellPart := s

	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet = strings.Trim(s[:idx], "'")
		cellPart = s[idx+1:]
	}

	cellPart = strings.ReplaceAll(cellPart, "$", "")
	if cellPart == "" {
		return CellRef{}, fmt.Errorf("invalid cell reference: %q", s)
	}

	col, row, err := parseCellName(cellPart)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}

	return CellRef{Sheet: sheet, Row: row, Col: col}, nil
}

// parseCellName parses "A1" into col=0, row=0.
func parseCellName(name string) (col, row int, err error) {
	i := 0
	for i < len(name) && isAlpha(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return 0, 0, fmt.Errorf("invalid cell name: %q", name)
	}

	col, err = NameToCol(name[:i])
	if err != nil {
		return 0, 0, err
	}

	rowNum, err := strconv.Atoi(name[i:])
	if err != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("invalid row in cell name: %q", name)
	}
	return col, rowNum - 1, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// RowNum returns the 1-based row number used inside formulas.
func (c CellRef) RowNum() int { return c.Row + 1 }

// CellName returns just the cell part like "A1" without sheet name.
func (c CellRef) CellName() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row+1)
}

// String formats the CellRef as a formula reference: "'Teams'!A2" or "A2" if no sheet.
func (c CellRef) String() string {
	if c.Sheet == "" {
		return c.CellName()
	}
	return QuoteSheet(c.Sheet) + "!" + c.CellName()
}

// QuoteSheet wraps a sheet name in single quotes for use in a formula,
// doubling any embedded quote. Quoting is always valid, so it is applied
// unconditionally to keep generated text uniform.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA", 702→"AAA"
func ColToName(col int) string {
	result := ""
	col++
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column name to a 0-based column index.
// "A"→0, "Z"→25, "AA"→26
func NameToCol(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// GridRange is a half-open rectangle of cells on one sheet, 0-based:
// rows [StartRow, EndRow) and columns [StartCol, EndCol).
type GridRange struct {
	Sheet    string
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
}

// ColumnRange returns the range covering rowCount rows of a single column.
func ColumnRange(sheet string, startRow, rowCount, col int) GridRange {
	return GridRange{Sheet: sheet, StartRow: startRow, EndRow: startRow + rowCount, StartCol: col, EndCol: col + 1}
}

// Rows returns the number of rows covered by the range.
func (g GridRange) Rows() int { return g.EndRow - g.StartRow }

// Empty reports whether the range covers no cells.
func (g GridRange) Empty() bool { return g.EndRow <= g.StartRow || g.EndCol <= g.StartCol }

// First returns the top-left cell of the range.
func (g GridRange) First() CellRef { return NewCellRef(g.Sheet, g.StartRow, g.StartCol) }

// Last returns the bottom-right cell of the range.
func (g GridRange) Last() CellRef { return NewCellRef(g.Sheet, g.EndRow-1, g.EndCol-1) }

// String formats the range as "Sheet!A3:A6" (A1 notation, inclusive).
func (g GridRange) String() string {
	if g.Empty() {
		return fmt.Sprintf("%s!<empty>", g.Sheet)
	}
	return fmt.Sprintf("%s!%s:%s", g.Sheet, g.First().CellName(), g.Last().CellName())
}

// absRange renders an absolute single-column range like "$A$3:$A$6".
func absRange(col, firstRowNum, lastRowNum int) string {
	name := ColToName(col)
	return fmt.Sprintf("$%s$%d:$%s$%d", name, firstRowNum, name, lastRowNum)
}

// relCell renders a relative cell like "G3"; the renderer shifts it per row.
func relCell(col, rowNum int) string {
	return ColToName(col) + strconv.Itoa(rowNum)
}

// colLockedCell renders a cell with an absolute column and relative row like "$F3".
func colLockedCell(col, rowNum int) string {
	return "$" + ColToName(col) + strconv.Itoa(rowNum)
}
