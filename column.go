package scoresheet

import (
	"fmt"
	"strings"
)

// Column identifies one column of a division sheet.
type Column int

// Score entry columns come first, then the standings columns.
const (
	ColHomeTeam Column = iota
	ColHomeGoals
	ColAwayGoals
	ColAwayTeam
	ColWinningTeam

	ColTeam
	ColGamesPlayed
	ColWins
	ColLosses
	ColDraws
	ColGamePoints
	ColRefereePoints
	ColVolunteerPoints
	ColSportsmanshipPoints
	ColPointsDeduction
	ColTotalPoints
	ColRank
	ColGoalsFor
	ColGoalsAgainst
	ColGoalDiff

	columnCount
)

var columnHeaders = [columnCount]string{
	ColHomeTeam:            "Home Team",
	ColHomeGoals:           "Home Goals",
	ColAwayGoals:           "Away Goals",
	ColAwayTeam:            "Away Team",
	ColWinningTeam:         "Winning Team",
	ColTeam:                "Team",
	ColGamesPlayed:         "GP",
	ColWins:                "W",
	ColLosses:              "L",
	ColDraws:               "D",
	ColGamePoints:          "Game Pts",
	ColRefereePoints:       "Ref Pts",
	ColVolunteerPoints:     "Vol Pts",
	ColSportsmanshipPoints: "Sptsmn Pts",
	ColPointsDeduction:     "Pts Deduction",
	ColTotalPoints:         "Total Pts",
	ColRank:                "Rank",
	ColGoalsFor:            "GF",
	ColGoalsAgainst:        "GA",
	ColGoalDiff:            "GD",
}

// ScoreEntryColumns are the fixed leading columns where game results are typed in.
var ScoreEntryColumns = []Column{ColHomeTeam, ColHomeGoals, ColAwayGoals, ColAwayTeam, ColWinningTeam}

// Header returns the column's header text.
func (c Column) Header() string {
	if c < 0 || c >= columnCount {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnHeaders[c]
}

func (c Column) String() string { return c.Header() }

// IsAdjustment reports whether the column is fed from a points adjustment sheet.
func (c Column) IsAdjustment() bool {
	switch c {
	case ColRefereePoints, ColVolunteerPoints, ColSportsmanshipPoints, ColPointsDeduction:
		return true
	}
	return false
}

// ColumnByHeader finds the column with the given header text.
func ColumnByHeader(header string) (Column, bool) {
	for c := Column(0); c < columnCount; c++ {
		if strings.EqualFold(columnHeaders[c], header) {
			return c, true
		}
	}
	return 0, false
}

// adjustmentColumnOrder is the order adjustment columns appear between Game Pts and Total Pts.
var adjustmentColumnOrder = []Column{ColRefereePoints, ColVolunteerPoints, ColSportsmanshipPoints, ColPointsDeduction}

// DefaultStandings returns the usual standings column order with a column
// for every adjustment that affects standings.
func DefaultStandings(adjustments []Adjustment) []Column {
	cols := []Column{ColTeam, ColGamesPlayed, ColWins, ColLosses, ColDraws, ColGamePoints}
	for _, c := range adjustmentColumnOrder {
		for _, a := range adjustments {
			if a.AffectsStandings && a.Kind.Column() == c {
				cols = append(cols, c)
				break
			}
		}
	}
	return append(cols, ColTotalPoints, ColRank, ColGoalsFor, ColGoalsAgainst, ColGoalDiff)
}

// ColumnCatalog is the ordered set of columns active on a division sheet.
// A column's index is its position; it is built once per report and never
// mutated afterwards.
type ColumnCatalog struct {
	order []Column
	index map[Column]int
}

// NewCatalog registers the score entry columns followed by the given
// standings columns. Duplicates and score entry columns in standings are
// rejected.
func NewCatalog(standings []Column) (*ColumnCatalog, error) {
	cat := &ColumnCatalog{index: make(map[Column]int, len(ScoreEntryColumns)+len(standings))}
	for _, c := range ScoreEntryColumns {
		cat.register(c)
	}
	for _, c := range standings {
		if c < ColTeam || c >= columnCount {
			return nil, fmt.Errorf("column %v cannot be used in standings", c)
		}
		if _, dup := cat.index[c]; dup {
			return nil, fmt.Errorf("column %q registered twice", c.Header())
		}
		cat.register(c)
	}
	if _, ok := cat.index[ColTeam]; !ok {
		return nil, fmt.Errorf("standings need a %q column: %w", ColTeam.Header(), ErrColumnNotFound)
	}
	return cat, nil
}

func (cat *ColumnCatalog) register(c Column) {
	cat.index[c] = len(cat.order)
	cat.order = append(cat.order, c)
}

// Index returns the 0-based column index, or ErrColumnNotFound.
func (cat *ColumnCatalog) Index(c Column) (int, error) {
	i, ok := cat.index[c]
	if !ok {
		return 0, fmt.Errorf("%q: %w", c.Header(), ErrColumnNotFound)
	}
	return i, nil
}

// Letter returns the column letter, or ErrColumnNotFound.
func (cat *ColumnCatalog) Letter(c Column) (string, error) {
	i, err := cat.Index(c)
	if err != nil {
		return "", err
	}
	return ColToName(i), nil
}

// Has reports whether the column is registered.
func (cat *ColumnCatalog) Has(c Column) bool {
	_, ok := cat.index[c]
	return ok
}

// Columns returns all registered columns in position order.
func (cat *ColumnCatalog) Columns() []Column {
	return append([]Column(nil), cat.order...)
}

// Standings returns the registered standings columns in position order.
func (cat *ColumnCatalog) Standings() []Column {
	return append([]Column(nil), cat.order[len(ScoreEntryColumns):]...)
}

// Headers returns the header row text.
func (cat *ColumnCatalog) Headers() []string {
	out := make([]string, len(cat.order))
	for i, c := range cat.order {
		out[i] = c.Header()
	}
	return out
}

// Width is the number of registered columns.
func (cat *ColumnCatalog) Width() int { return len(cat.order) }
