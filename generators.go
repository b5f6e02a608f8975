package scoresheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// GenContext is everything a column generator may read for one round.
type GenContext struct {
	Division string
	Sheet    string
	Catalog  *ColumnCatalog
	Layout   RowBlock
	Teams    []Team // standings rows, in order
	Scoring  Scoring
	Engine   *PointsAdjustmentEngine

	// Counting is false for practice rounds.
	Counting bool
	// RoundOnly drops the carry from the previous round's standings.
	RoundOnly bool
}

// FormulaRow is the standings row a formula is generated for.
type FormulaRow struct {
	Row  int // 0-based sheet row
	Team Team
}

// ColumnGenerator produces the formula of one standings column for one row.
// Generated formulas use relative references for the row's own cells so the
// first row's formula can be filled down the whole block.
type ColumnGenerator interface {
	Formula(g *GenContext, r FormulaRow) (string, error)
}

// FormulaFunc adapts a function to ColumnGenerator.
type FormulaFunc func(g *GenContext, r FormulaRow) (string, error)

func (f FormulaFunc) Formula(g *GenContext, r FormulaRow) (string, error) { return f(g, r) }

// Generators maps standings columns to their generators.
type Generators map[Column]ColumnGenerator

// DefaultGenerators returns a generator for every standings column.
func DefaultGenerators() Generators {
	return Generators{
		ColTeam:                FormulaFunc(teamFormula),
		ColGamesPlayed:         FormulaFunc(gamesPlayedFormula),
		ColWins:                FormulaFunc(winsFormula),
		ColLosses:              FormulaFunc(lossesFormula),
		ColDraws:               FormulaFunc(drawsFormula),
		ColGamePoints:          FormulaFunc(gamePointsFormula),
		ColRefereePoints:       adjustmentGenerator{Referee},
		ColVolunteerPoints:     adjustmentGenerator{Volunteer},
		ColSportsmanshipPoints: adjustmentGenerator{Sportsmanship},
		ColPointsDeduction:     adjustmentGenerator{Deduction},
		ColTotalPoints:         FormulaFunc(totalPointsFormula),
		ColRank:                FormulaFunc(rankFormula),
		ColGoalsFor:            FormulaFunc(goalsForFormula),
		ColGoalsAgainst:        FormulaFunc(goalsAgainstFormula),
		ColGoalDiff:            FormulaFunc(goalDiffFormula),
	}
}

// Carry reports whether season totals chain from the previous round.
func (g *GenContext) Carry() bool { return g.Layout.HasPrevious() && !g.RoundOnly }

// index looks a column up and tags a miss as a configuration error.
func (g *GenContext) index(c Column) (int, error) {
	i, err := g.Catalog.Index(c)
	if err != nil {
		return 0, &ConfigurationError{Division: g.Division, Column: c.Header(), Err: err}
	}
	return i, nil
}

// cell renders the relative reference of column c on row.
func (g *GenContext) cell(c Column, row int) (string, error) {
	i, err := g.index(c)
	if err != nil {
		return "", err
	}
	return relCell(i, row+1), nil
}

// prevRow maps a standings row of this round to the same team's row in the
// previous round.
func (g *GenContext) prevRow(row int) int {
	return g.Layout.PrevStandingsStartRow + (row - g.Layout.StandingsStartRow)
}

// teamCell is the standings Team cell of row with the column locked.
func (g *GenContext) teamCell(row int) (string, error) {
	i, err := g.index(ColTeam)
	if err != nil {
		return "", err
	}
	return colLockedCell(i, row+1), nil
}

// gameRange renders the absolute range of a score entry column over the
// round's counting game rows.
func (g *GenContext) gameRange(c Column) (string, error) {
	i, err := g.index(c)
	if err != nil {
		return "", err
	}
	first := g.Layout.GameStartRow + 1
	return absRange(i, first, first+g.Layout.CountingGameRows()-1), nil
}

// standingsRange renders the absolute range of a standings column over the
// round's standings rows.
func (g *GenContext) standingsRange(c Column) (string, error) {
	i, err := g.index(c)
	if err != nil {
		return "", err
	}
	first := g.Layout.StandingsStartRow + 1
	return absRange(i, first, first+g.Layout.StandingsRowCount-1), nil
}

func teamFormula(_ *GenContext, r FormulaRow) (string, error) {
	return "=" + r.Team.Anchor.String(), nil
}

// seasonTotal joins this round's game term with the previous round's value
// of the same column. Practice rounds keep only the carry.
func seasonTotal(g *GenContext, r FormulaRow, c Column, game func() (string, error)) (string, error) {
	var terms []string
	if g.Counting && g.Layout.CountingGameRows() > 0 {
		t, err := game()
		if err != nil {
			return "", err
		}
		terms = append(terms, t)
	}
	if g.Carry() {
		prev, err := g.cell(c, g.prevRow(r.Row))
		if err != nil {
			return "", err
		}
		terms = append(terms, prev)
	}
	if len(terms) == 0 {
		// the column must still exist even when nothing feeds it
		if _, err := g.index(c); err != nil {
			return "", err
		}
		return "=0", nil
	}
	return "=" + strings.Join(terms, "+"), nil
}

// scoreRanges looks up the score entry ranges every game term needs.
type scoreRanges struct {
	home, homeGoals, awayGoals, away, winner string
	team                                     string
}

func (g *GenContext) scoreRanges(row int) (scoreRanges, error) {
	var s scoreRanges
	var err error
	for _, p := range []struct {
		dst *string
		col Column
	}{
		{&s.home, ColHomeTeam},
		{&s.homeGoals, ColHomeGoals},
		{&s.awayGoals, ColAwayGoals},
		{&s.away, ColAwayTeam},
		{&s.winner, ColWinningTeam},
	} {
		if *p.dst, err = g.gameRange(p.col); err != nil {
			return s, err
		}
	}
	s.team, err = g.teamCell(row)
	return s, err
}

func gamesPlayedFormula(g *GenContext, r FormulaRow) (string, error) {
	return seasonTotal(g, r, ColGamesPlayed, func() (string, error) {
		s, err := g.scoreRanges(r.Row)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`COUNTIFS(%s,%s,%s,"<>",%s,"<>")+COUNTIFS(%s,%s,%s,"<>",%s,"<>")`,
			s.home, s.team, s.homeGoals, s.awayGoals,
			s.away, s.team, s.homeGoals, s.awayGoals), nil
	})
}

func winsFormula(g *GenContext, r FormulaRow) (string, error) {
	return seasonTotal(g, r, ColWins, func() (string, error) {
		s, err := g.scoreRanges(r.Row)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("COUNTIF(%s,%s)", s.winner, s.team), nil
	})
}

func drawsFormula(g *GenContext, r FormulaRow) (string, error) {
	return seasonTotal(g, r, ColDraws, func() (string, error) {
		s, err := g.scoreRanges(r.Row)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`COUNTIFS(%s,%s,%s,"DRAW")+COUNTIFS(%s,%s,%s,"DRAW")`,
			s.home, s.team, s.winner, s.away, s.team, s.winner), nil
	})
}

func goalsForFormula(g *GenContext, r FormulaRow) (string, error) {
	return seasonTotal(g, r, ColGoalsFor, func() (string, error) {
		s, err := g.scoreRanges(r.Row)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("SUMIF(%s,%s,%s)+SUMIF(%s,%s,%s)",
			s.home, s.team, s.homeGoals, s.away, s.team, s.awayGoals), nil
	})
}

func goalsAgainstFormula(g *GenContext, r FormulaRow) (string, error) {
	return seasonTotal(g, r, ColGoalsAgainst, func() (string, error) {
		s, err := g.scoreRanges(r.Row)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("SUMIF(%s,%s,%s)+SUMIF(%s,%s,%s)",
			s.home, s.team, s.awayGoals, s.away, s.team, s.homeGoals), nil
	})
}

// rowCells resolves the same-row references of several columns.
func (g *GenContext) rowCells(row int, cols ...Column) ([]string, error) {
	out := make([]string, len(cols))
	for i, c := range cols {
		ref, err := g.cell(c, row)
		if err != nil {
			return nil, err
		}
		out[i] = ref
	}
	return out, nil
}

func lossesFormula(g *GenContext, r FormulaRow) (string, error) {
	c, err := g.rowCells(r.Row, ColGamesPlayed, ColWins, ColDraws)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("=%s-%s-%s", c[0], c[1], c[2]), nil
}

func gamePointsFormula(g *GenContext, r FormulaRow) (string, error) {
	c, err := g.rowCells(r.Row, ColWins, ColDraws, ColLosses)
	if err != nil {
		return "", err
	}
	var terms []string
	for i, pts := range []int{g.Scoring.Win, g.Scoring.Draw, g.Scoring.Loss} {
		if pts != 0 {
			terms = append(terms, c[i]+"*"+strconv.Itoa(pts))
		}
	}
	if len(terms) == 0 {
		return "=0", nil
	}
	return "=" + strings.Join(terms, "+"), nil
}

func goalDiffFormula(g *GenContext, r FormulaRow) (string, error) {
	c, err := g.rowCells(r.Row, ColGoalsFor, ColGoalsAgainst)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("=%s-%s", c[0], c[1]), nil
}

// totalPointsFormula adds every adjustment column present in the catalog to
// the game points. Absent columns are skipped, never read as zero.
func totalPointsFormula(g *GenContext, r FormulaRow) (string, error) {
	gp, err := g.cell(ColGamePoints, r.Row)
	if err != nil {
		return "", err
	}
	terms := []string{gp}
	for _, c := range adjustmentColumnOrder {
		i, err := g.Catalog.Index(c)
		if errors.Is(err, ErrColumnNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		terms = append(terms, relCell(i, r.Row+1))
	}
	return "=" + strings.Join(terms, "+"), nil
}

// rankFormula ranks by total points, then goal difference, both descending.
// Teams level on both share a rank.
func rankFormula(g *GenContext, r FormulaRow) (string, error) {
	if !g.Counting {
		return `=""`, nil
	}
	totals, err := g.standingsRange(ColTotalPoints)
	if err != nil {
		return "", err
	}
	diffs, err := g.standingsRange(ColGoalDiff)
	if err != nil {
		return "", err
	}
	c, err := g.rowCells(r.Row, ColTotalPoints, ColGoalDiff)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`=COUNTIF(%s,">"&%s)+COUNTIFS(%s,%s,%s,">"&%s)+1`,
		totals, c[0], totals, c[0], diffs, c[1]), nil
}

type adjustmentGenerator struct {
	kind AdjustmentKind
}

func (a adjustmentGenerator) Formula(g *GenContext, r FormulaRow) (string, error) {
	if g.Engine == nil {
		return "", &ConfigurationError{Division: g.Division, Column: a.kind.Column().Header(), Err: ErrMissingAdjustment}
	}
	prev := ""
	if g.Layout.HasPrevious() {
		var err error
		if prev, err = g.cell(a.kind.Column(), g.prevRow(r.Row)); err != nil {
			return "", err
		}
	}
	f, err := g.Engine.Formula(a.kind, g.Layout.Round, r.Team.Anchor, prev)
	if err != nil {
		return "", &ConfigurationError{Division: g.Division, Column: a.kind.Column().Header(), Err: err}
	}
	return f, nil
}
