// Package xlsx renders standings plans into an .xlsx workbook with excelize.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/javajack/scoresheet"
)

// defaultSheet is the sheet excelize creates with a new file.
const defaultSheet = "Sheet1"

// Workbook implements scoresheet.SpreadsheetGateway on an excelize file.
type Workbook struct {
	file       *excelize.File
	styleCache map[scoresheet.Style]int // style → excelize style id
	log        zerolog.Logger

	mu sync.Mutex // protects concurrent access
}

// Option configures a Workbook.
type Option func(*Workbook)

// WithLogger sets the logger (default: zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workbook) { w.log = l }
}

// New creates an empty workbook whose first sheet is named firstSheet.
func New(firstSheet string, opts ...Option) (*Workbook, error) {
	w := &Workbook{
		file:       excelize.NewFile(),
		styleCache: make(map[scoresheet.Style]int),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if firstSheet != "" && firstSheet != defaultSheet {
		if err := w.file.SetSheetName(defaultSheet, firstSheet); err != nil {
			w.file.Close()
			return nil, fmt.Errorf("rename first sheet to %q: %w", firstSheet, err)
		}
	}
	return w, nil
}

// File exposes the underlying excelize file.
func (w *Workbook) File() *excelize.File { return w.file }

// SetProperties stamps the workbook title and the generation run id.
func (w *Workbook) SetProperties(title, runID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.SetDocProps(&excelize.DocProperties{
		Title:      title,
		Identifier: runID,
		Creator:    "scoresheet",
	})
}

// Apply executes ops against sheet, creating the sheet if needed. An
// operation addressed to another sheet is applied there.
func (w *Workbook) Apply(ctx context.Context, sheet string, ops []scoresheet.Operation) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureSheet(sheet); err != nil {
		return err
	}
	var formulas int
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := op.Target().Sheet
		if target == "" {
			target = sheet
		} else if err := w.ensureSheet(target); err != nil {
			return err
		}
		n, err := w.apply(target, op)
		if err != nil {
			return fmt.Errorf("operation %d (%s %s): %w", i, op.Kind(), op.Target(), err)
		}
		formulas += n
	}
	w.log.Debug().Str("sheet", sheet).Int("ops", len(ops)).Int("formulas", formulas).Msg("sheet applied")
	return nil
}

// apply runs one operation and returns the number of formulas written.
func (w *Workbook) apply(sheet string, op scoresheet.Operation) (int, error) {
	switch o := op.(type) {
	case scoresheet.InsertRows:
		return w.insertRows(sheet, o)
	case scoresheet.FillFormula:
		return w.fillFormula(sheet, o)
	case scoresheet.SetValidation:
		return 0, w.setValidation(sheet, o)
	case scoresheet.SetCellStyle:
		return 0, w.setCellStyle(sheet, o)
	case scoresheet.SetColumnWidth:
		return 0, w.file.SetColWidth(sheet, scoresheet.ColToName(o.Range.StartCol), scoresheet.ColToName(o.Range.EndCol-1), o.Width)
	default:
		return 0, fmt.Errorf("unsupported operation %T", op)
	}
}

func (w *Workbook) ensureSheet(name string) error {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}
	if idx >= 0 {
		return nil
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	return nil
}

func (w *Workbook) insertRows(sheet string, op scoresheet.InsertRows) (int, error) {
	var formulas int
	for i, row := range op.Rows {
		for j, c := range row {
			cell := scoresheet.NewCellRef("", op.Row+i, op.Col+j).CellName()
			switch {
			case c.Formula != "":
				if err := w.file.SetCellFormula(sheet, cell, stripEquals(c.Formula)); err != nil {
					return formulas, err
				}
				formulas++
			case c.Value != "":
				if err := w.file.SetCellStr(sheet, cell, c.Value); err != nil {
					return formulas, err
				}
			}
		}
	}
	return formulas, nil
}

// fillFormula writes the template on the first row and the row-shifted
// template on every row below it.
func (w *Workbook) fillFormula(sheet string, op scoresheet.FillFormula) (int, error) {
	var formulas int
	for r := 0; r < op.Range.Rows(); r++ {
		formula := stripEquals(scoresheet.ShiftRows(op.Template, r))
		for col := op.Range.StartCol; col < op.Range.EndCol; col++ {
			cell := scoresheet.NewCellRef("", op.Range.StartRow+r, col).CellName()
			if err := w.file.SetCellFormula(sheet, cell, formula); err != nil {
				return formulas, err
			}
			formulas++
		}
	}
	return formulas, nil
}

func (w *Workbook) setValidation(sheet string, op scoresheet.SetValidation) error {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = a1Range(op.Range, sheet)
	dv.SetSqrefDropList(absoluteRange(op.Source, sheet))
	return w.file.AddDataValidation(sheet, dv)
}

func (w *Workbook) setCellStyle(sheet string, op scoresheet.SetCellStyle) error {
	if op.Range.Empty() {
		return nil
	}
	id, err := w.styleID(op.Style)
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, op.Range.First().CellName(), op.Range.Last().CellName(), id)
}

// styleID returns the excelize style for s, creating it on first use.
func (w *Workbook) styleID(s scoresheet.Style) (int, error) {
	if id, ok := w.styleCache[s]; ok {
		return id, nil
	}
	style := &excelize.Style{}
	if s.Bold || s.Italic || s.Foreground != "" {
		style.Font = &excelize.Font{Bold: s.Bold, Italic: s.Italic}
		if s.Foreground != "" {
			style.Font.Color = "#" + s.Foreground
		}
	}
	if s.Background != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + s.Background}}
	}
	id, err := w.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("create style %s: %w", s, err)
	}
	w.styleCache[s] = id
	return id, nil
}

// Write writes the workbook to the given writer.
func (w *Workbook) Write(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Write(out)
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func stripEquals(formula string) string {
	return strings.TrimPrefix(formula, "=")
}

// a1Range renders "A3:A6", prefixed with the quoted sheet when it differs from current.
func a1Range(g scoresheet.GridRange, current string) string {
	s := g.First().CellName() + ":" + g.Last().CellName()
	if g.Sheet != "" && g.Sheet != current {
		return scoresheet.QuoteSheet(g.Sheet) + "!" + s
	}
	return s
}

// absoluteRange renders "'Teams'!$A$2:$A$5" for dropdown sources.
func absoluteRange(g scoresheet.GridRange, current string) string {
	abs := func(c scoresheet.CellRef) string {
		return fmt.Sprintf("$%s$%d", scoresheet.ColToName(c.Col), c.RowNum())
	}
	s := abs(g.First()) + ":" + abs(g.Last())
	if g.Sheet != "" && g.Sheet != current {
		return scoresheet.QuoteSheet(g.Sheet) + "!" + s
	}
	return s
}
