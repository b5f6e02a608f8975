package scoresheet

import (
	"fmt"
	"sort"
)

// adjustmentBannerRows is the number of rows above the mirrored roster on
// an adjustment sheet.
const adjustmentBannerRows = 1

const (
	cumulativeBanner = "ATTENTION! Values entered for each round must be cumulative totals!"
	weeklyBanner     = "ATTENTION! Values entered for each round are for that round only!"
)

// AdjustmentInputColumn is the adjustment sheet column holding a round's
// entries: round 1 is column B, column A holds the team names.
func AdjustmentInputColumn(round int) int { return round }

// AdjustmentInputRow maps a team's roster anchor to its adjustment sheet row.
func AdjustmentInputRow(anchor CellRef) int { return anchor.Row + adjustmentBannerRows }

// AdjustmentInputCell is the cell where a team's points for round are entered.
func AdjustmentInputCell(sheet string, round int, anchor CellRef) CellRef {
	return NewCellRef(sheet, AdjustmentInputRow(anchor), AdjustmentInputColumn(round))
}

// PointsAdjustmentEngine generates the standings formulas of adjustment
// columns. It holds one configuration per active adjustment kind.
type PointsAdjustmentEngine struct {
	adjustments map[AdjustmentKind]Adjustment
}

// NewAdjustmentEngine indexes the active adjustments. A kind may appear once.
func NewAdjustmentEngine(adjustments []Adjustment) (*PointsAdjustmentEngine, error) {
	e := &PointsAdjustmentEngine{adjustments: make(map[AdjustmentKind]Adjustment, len(adjustments))}
	for _, a := range adjustments {
		if _, dup := e.adjustments[a.Kind]; dup {
			return nil, fmt.Errorf("adjustment %s configured twice", a.Kind)
		}
		if a.SheetName == "" {
			a.SheetName = a.Kind.DefaultSheetName()
		}
		e.adjustments[a.Kind] = a
	}
	return e, nil
}

// Adjustment returns the configuration of kind, or ErrMissingAdjustment.
func (e *PointsAdjustmentEngine) Adjustment(kind AdjustmentKind) (Adjustment, error) {
	a, ok := e.adjustments[kind]
	if !ok {
		return Adjustment{}, fmt.Errorf("%s: %w", kind, ErrMissingAdjustment)
	}
	return a, nil
}

// Active returns the configured adjustments ordered by kind.
func (e *PointsAdjustmentEngine) Active() []Adjustment {
	out := make([]Adjustment, 0, len(e.adjustments))
	for _, a := range e.adjustments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Formula returns the standings formula of an adjustment column for one
// team. prev is the team's cell in the previous round's standings, empty
// for the first round.
//
//	weekly, first round:      =input
//	weekly, later rounds:     =input+prev
//	cumulative, first round:  =IF(input="",0,input)
//	cumulative, later rounds: =IF(input="",prev,input)
func (e *PointsAdjustmentEngine) Formula(kind AdjustmentKind, round int, anchor CellRef, prev string) (string, error) {
	a, err := e.Adjustment(kind)
	if err != nil {
		return "", err
	}
	if round > 1 && prev == "" {
		return "", ErrMissingPreviousRound
	}
	input := AdjustmentInputCell(a.SheetName, round, anchor).String()
	switch {
	case a.Cumulative && prev == "":
		return fmt.Sprintf(`=IF(%s="",0,%s)`, input, input), nil
	case a.Cumulative:
		return fmt.Sprintf(`=IF(%s="",%s,%s)`, input, prev, input), nil
	case prev == "":
		return "=" + input, nil
	default:
		return "=" + input + "+" + prev, nil
	}
}

// DivisionRoster is one division's teams in roster order with its policy.
type DivisionRoster struct {
	Policy DivisionPolicy
	Teams  []Team
}

// AdjustmentSheetOperations lays out an adjustment sheet: a banner row,
// then the roster sheet mirrored one row lower. Each division gets a header
// row with one column per round, and each team row refers to the team's
// anchor. Teams outside the standings keep an empty row so every team
// stays exactly one row below its anchor.
func AdjustmentSheetOperations(a Adjustment, rounds []Round, divisions []DivisionRoster, palette Palette) []Operation {
	sheet := a.SheetName
	banner := weeklyBanner
	if a.Cumulative {
		banner = cumulativeBanner
	}
	width := len(rounds) + 1
	ops := []Operation{
		InsertRows{Sheet: sheet, Row: 0, Rows: [][]Cell{{Text(banner)}}},
		SetCellStyle{Range: GridRange{Sheet: sheet, StartRow: 0, EndRow: 1, StartCol: 0, EndCol: width}, Style: Style{Bold: true, Foreground: "FF0000"}},
	}
	header := a.Kind.Column().Header()
	for _, d := range divisions {
		if len(d.Teams) == 0 {
			continue
		}
		headerRow := AdjustmentInputRow(d.Teams[0].Anchor) - 1
		cells := []Cell{Text(d.Policy.Division)}
		for _, r := range rounds {
			cells = append(cells, Text(fmt.Sprintf("%s R%d %s", header, r.Number, r.Date.Format("1/2"))))
		}
		ops = append(ops,
			InsertRows{Sheet: sheet, Row: headerRow, Rows: [][]Cell{cells}},
			SetCellStyle{Range: GridRange{Sheet: sheet, StartRow: headerRow, EndRow: headerRow + 1, StartCol: 0, EndCol: width}, Style: Style{Bold: true, Background: palette.TeamsHeader}},
		)
		for _, t := range d.Teams {
			if !d.Policy.InStandings(t) {
				continue
			}
			ops = append(ops, InsertRows{Sheet: sheet, Row: AdjustmentInputRow(t.Anchor), Rows: [][]Cell{{Formula("=" + t.Anchor.String())}}})
		}
	}
	ops = append(ops, SetColumnWidth{Range: GridRange{Sheet: sheet, StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1}, Width: 30})
	return ops
}
