package scoresheet

import (
	"context"
	"fmt"
	"strings"
)

// Operation is one sheet mutation produced by the builder. The set is
// closed: InsertRows, FillFormula, SetValidation, SetCellStyle and
// SetColumnWidth.
type Operation interface {
	// Target is the cell range the operation writes to.
	Target() GridRange
	// Kind is a short name used in logs and plan descriptions.
	Kind() string
	isOperation()
}

// Style is the cell formatting the builder asks for. Colors are hex RGB
// without '#'; empty means unchanged.
type Style struct {
	Bold       bool
	Italic     bool
	Background string
	Foreground string
}

func (s Style) String() string {
	var parts []string
	if s.Bold {
		parts = append(parts, "bold")
	}
	if s.Italic {
		parts = append(parts, "italic")
	}
	if s.Background != "" {
		parts = append(parts, "bg=#"+s.Background)
	}
	if s.Foreground != "" {
		parts = append(parts, "fg=#"+s.Foreground)
	}
	if len(parts) == 0 {
		return "plain"
	}
	return strings.Join(parts, " ")
}

// Cell is one literal value or formula written by InsertRows. A non-empty
// Formula wins over Value.
type Cell struct {
	Value   string
	Formula string
}

// Text returns a literal cell.
func Text(v string) Cell { return Cell{Value: v} }

// Formula returns a formula cell.
func Formula(f string) Cell { return Cell{Formula: f} }

// InsertRows writes Rows starting at (Row, Col). Rows may be ragged.
type InsertRows struct {
	Sheet string
	Row   int
	Col   int
	Rows  [][]Cell
}

func (op InsertRows) Target() GridRange {
	width := 0
	for _, r := range op.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return GridRange{Sheet: op.Sheet, StartRow: op.Row, EndRow: op.Row + len(op.Rows), StartCol: op.Col, EndCol: op.Col + width}
}

func (InsertRows) Kind() string { return "insertRows" }
func (InsertRows) isOperation() {}

// FillFormula repeats Template down every row of Range. The template is
// written for the first row; relative references move with each row,
// absolute ($) references do not.
type FillFormula struct {
	Range    GridRange
	Template string
}

func (op FillFormula) Target() GridRange { return op.Range }
func (FillFormula) Kind() string         { return "fillFormula" }
func (FillFormula) isOperation()         {}

// SetValidation restricts Range to a dropdown of the values in Source.
type SetValidation struct {
	Range  GridRange
	Source GridRange
}

func (op SetValidation) Target() GridRange { return op.Range }
func (SetValidation) Kind() string         { return "setValidation" }
func (SetValidation) isOperation()         {}

// SetCellStyle applies Style to every cell of Range.
type SetCellStyle struct {
	Range GridRange
	Style Style
}

func (op SetCellStyle) Target() GridRange { return op.Range }
func (SetCellStyle) Kind() string         { return "setCellStyle" }
func (SetCellStyle) isOperation()         {}

// SetColumnWidth sets the width (in characters) of the columns of Range.
type SetColumnWidth struct {
	Range GridRange
	Width float64
}

func (op SetColumnWidth) Target() GridRange { return op.Range }
func (SetColumnWidth) Kind() string         { return "setColumnWidth" }
func (SetColumnWidth) isOperation()         {}

// DescribeOperation renders an operation on one line.
func DescribeOperation(op Operation) string {
	switch o := op.(type) {
	case InsertRows:
		return fmt.Sprintf("%s %s %d row(s)", o.Kind(), o.Target(), len(o.Rows))
	case FillFormula:
		return fmt.Sprintf("%s %s %s", o.Kind(), o.Range, o.Template)
	case SetValidation:
		return fmt.Sprintf("%s %s from %s", o.Kind(), o.Range, o.Source)
	case SetCellStyle:
		return fmt.Sprintf("%s %s %s", o.Kind(), o.Range, o.Style)
	case SetColumnWidth:
		return fmt.Sprintf("%s %s %.1f", o.Kind(), o.Range, o.Width)
	default:
		return fmt.Sprintf("%s %s", op.Kind(), op.Target())
	}
}

// SpreadsheetGateway applies operations to a sheet, creating it when it
// does not exist yet. The builder never reads anything back.
type SpreadsheetGateway interface {
	Apply(ctx context.Context, sheet string, ops []Operation) error
}
