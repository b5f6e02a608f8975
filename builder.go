package scoresheet

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// RoundPlan is the output of one round: its layout and the operations that
// render it, in application order.
type RoundPlan struct {
	Round      Round
	Layout     RowBlock
	Counting   bool
	Operations []Operation
	Warnings   []Issue
}

// DivisionReport is a fully planned division sheet.
type DivisionReport struct {
	Division string
	Sheet    string
	Catalog  *ColumnCatalog
	Setup    []Operation // sheet-wide operations applied before the rounds
	Rounds   []RoundPlan
}

// Operations flattens the report into the order it must be applied.
func (r *DivisionReport) Operations() []Operation {
	n := len(r.Setup)
	for _, p := range r.Rounds {
		n += len(p.Operations)
	}
	ops := make([]Operation, 0, n)
	ops = append(ops, r.Setup...)
	for _, p := range r.Rounds {
		ops = append(ops, p.Operations...)
	}
	return ops
}

// Warnings collects the issues of every round.
func (r *DivisionReport) Warnings() []Issue {
	var out []Issue
	for _, p := range r.Rounds {
		out = append(out, p.Warnings...)
	}
	return out
}

// DivisionReportBuilder plans a division sheet round by round. It holds no
// state between calls; the only value carried from one round to the next
// is the previous RowBlock, passed explicitly.
type DivisionReportBuilder struct {
	policy  DivisionPolicy
	rounds  []Round
	catalog *ColumnCatalog
	engine  *PointsAdjustmentEngine
	opts    *Options
	log     zerolog.Logger
}

// NewDivisionReportBuilder checks the configuration of one division. Every
// problem it finds is a *ConfigurationError.
func NewDivisionReportBuilder(policy DivisionPolicy, rounds []Round, adjustments []Adjustment, opts ...Option) (*DivisionReportBuilder, error) {
	o := buildOptions(opts)
	cfgErr := func(col string, err error) error {
		return &ConfigurationError{Division: policy.Division, Column: col, Err: err}
	}

	if policy.Division == "" {
		return nil, cfgErr("", fmt.Errorf("division name is empty"))
	}
	if policy.RoundsCounting < 0 {
		return nil, cfgErr("", fmt.Errorf("rounds counting toward standings is negative: %d", policy.RoundsCounting))
	}
	for i, r := range rounds {
		if r.Number != i+1 {
			return nil, cfgErr("", fmt.Errorf("round %d is numbered %d", i+1, r.Number))
		}
	}

	engine, err := NewAdjustmentEngine(adjustments)
	if err != nil {
		return nil, cfgErr("", err)
	}

	standings := o.standings
	if standings == nil {
		standings = DefaultStandings(adjustments)
	}
	catalog, err := NewCatalog(standings)
	if err != nil {
		return nil, cfgErr("", err)
	}
	for _, c := range catalog.Standings() {
		if _, ok := o.generators[c]; !ok {
			return nil, cfgErr(c.Header(), ErrNoGenerator)
		}
		if !c.IsAdjustment() {
			continue
		}
		if _, err := engine.Adjustment(kindOf(c)); err != nil {
			return nil, cfgErr(c.Header(), err)
		}
	}
	// the standings chain reads these by position
	for _, c := range []Column{ColGamesPlayed, ColWins, ColDraws, ColLosses, ColGamePoints, ColTotalPoints, ColGoalsFor, ColGoalsAgainst, ColGoalDiff} {
		if catalog.Has(c) {
			continue
		}
		for _, dependent := range dependentsOf(c) {
			if catalog.Has(dependent) {
				return nil, cfgErr(c.Header(), fmt.Errorf("required by %q: %w", dependent.Header(), ErrColumnNotFound))
			}
		}
	}

	return &DivisionReportBuilder{
		policy:  policy,
		rounds:  append([]Round(nil), rounds...),
		catalog: catalog,
		engine:  engine,
		opts:    o,
		log:     o.logger.With().Str("division", policy.Division).Logger(),
	}, nil
}

func kindOf(c Column) AdjustmentKind {
	for k := Referee; k <= Deduction; k++ {
		if k.Column() == c {
			return k
		}
	}
	return Referee
}

// dependentsOf lists the columns whose formulas read c on the same row.
func dependentsOf(c Column) []Column {
	switch c {
	case ColGamesPlayed, ColWins, ColDraws:
		return []Column{ColLosses}
	case ColLosses:
		return []Column{ColGamePoints}
	case ColGamePoints:
		return []Column{ColTotalPoints}
	case ColTotalPoints, ColGoalDiff:
		return []Column{ColRank}
	case ColGoalsFor, ColGoalsAgainst:
		return []Column{ColGoalDiff}
	}
	return nil
}

// Catalog returns the division's column catalog.
func (b *DivisionReportBuilder) Catalog() *ColumnCatalog { return b.catalog }

// Sheet is the name of the division's sheet.
func (b *DivisionReportBuilder) Sheet() string { return b.policy.Division }

// Policy returns the division policy.
func (b *DivisionReportBuilder) Policy() DivisionPolicy { return b.policy }

// Build plans every round in order. Any failing round aborts the whole
// division: no partial report is returned.
func (b *DivisionReportBuilder) Build(ctx context.Context, teams []Team) (*DivisionReport, error) {
	b.log.Info().Int("teams", len(teams)).Int("rounds", len(b.rounds)).Msg("building division")

	report := &DivisionReport{
		Division: b.policy.Division,
		Sheet:    b.Sheet(),
		Catalog:  b.catalog,
		Setup:    b.setupOperations(),
	}
	var prev *RowBlock
	for _, r := range b.rounds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("division %q: %w", b.policy.Division, err)
		}
		plan, err := b.BuildRound(teams, r, prev)
		if err != nil {
			return nil, err
		}
		report.Rounds = append(report.Rounds, plan)
		layout := plan.Layout
		prev = &layout
	}
	return report, nil
}

// BuildRound plans one round. prev is the previous round's layout and must
// be nil exactly for round 1.
func (b *DivisionReportBuilder) BuildRound(teams []Team, round Round, prev *RowBlock) (RoundPlan, error) {
	layoutErr := func(err error) error {
		return &LayoutError{Division: b.policy.Division, Round: round.Number, Err: err}
	}
	switch {
	case round.Number < 1:
		return RoundPlan{}, layoutErr(fmt.Errorf("round number %d is not positive", round.Number))
	case round.Number > 1 && prev == nil:
		return RoundPlan{}, layoutErr(ErrMissingPreviousRound)
	case prev != nil && prev.Round != round.Number-1:
		return RoundPlan{}, layoutErr(fmt.Errorf("%w: got round %d", ErrMissingPreviousRound, prev.Round))
	}

	layout, err := ComputeLayout(CountTeams(teams, b.policy), b.policy, prev)
	if err != nil {
		return RoundPlan{}, err
	}

	plan := RoundPlan{
		Round:    round,
		Layout:   layout,
		Counting: b.policy.CountsTowardStandings(round.Number, len(b.rounds)),
	}
	standings := make([]Team, 0, len(teams))
	for _, t := range teams {
		if b.policy.InStandings(t) {
			standings = append(standings, t)
		}
	}
	plan.Warnings = b.checkAnchors(round.Number, teams)
	for _, w := range plan.Warnings {
		b.log.Warn().Int("round", round.Number).Str("cell", w.CellRef.String()).Msg(w.Message)
	}

	plan.Operations = append(plan.Operations, b.headerOperations(round, layout, plan.Counting)...)
	plan.Operations = append(plan.Operations, b.scoreEntryOperations(teams, layout)...)

	g := &GenContext{
		Division:  b.policy.Division,
		Sheet:     b.Sheet(),
		Catalog:   b.catalog,
		Layout:    layout,
		Teams:     standings,
		Scoring:   b.opts.scoring,
		Engine:    b.engine,
		Counting:  plan.Counting,
		RoundOnly: b.policy.RoundOnlyStandings,
	}
	fills, err := b.standingsOperations(g, contiguous(standings))
	if err != nil {
		return RoundPlan{}, err
	}
	plan.Operations = append(plan.Operations, fills...)

	b.log.Debug().Int("round", round.Number).Int("ops", len(plan.Operations)).
		Int("standings_row", layout.StandingsStartRow).Msg("round planned")
	return plan, nil
}

func (b *DivisionReportBuilder) setupOperations() []Operation {
	sheet := b.Sheet()
	var ops []Operation
	for _, c := range []Column{ColHomeTeam, ColAwayTeam, ColWinningTeam, ColTeam} {
		i, err := b.catalog.Index(c)
		if err != nil {
			continue
		}
		ops = append(ops, SetColumnWidth{Range: GridRange{Sheet: sheet, StartRow: 0, EndRow: 1, StartCol: i, EndCol: i + 1}, Width: 25})
	}
	return ops
}

func (b *DivisionReportBuilder) headerOperations(round Round, layout RowBlock, counting bool) []Operation {
	sheet := b.Sheet()
	width := b.catalog.Width()
	label := round.Label()
	if !counting {
		label += " (practice, not counted in standings)"
	}
	rowRange := func(row int) GridRange {
		return GridRange{Sheet: sheet, StartRow: row, EndRow: row + 1, StartCol: 0, EndCol: width}
	}
	headers := make([]Cell, width)
	for i, h := range b.catalog.Headers() {
		headers[i] = Text(h)
	}
	return []Operation{
		InsertRows{Sheet: sheet, Row: layout.StartRow, Rows: [][]Cell{{Text(label)}}},
		SetCellStyle{Range: rowRange(layout.StartRow), Style: Style{Bold: true, Background: b.opts.palette.RoundBanner}},
		InsertRows{Sheet: sheet, Row: layout.HeaderRow(), Rows: [][]Cell{headers}},
		SetCellStyle{Range: rowRange(layout.HeaderRow()), Style: Style{Bold: true, Background: b.opts.palette.StandingsHeader}},
	}
}

// scoreEntryOperations fills the winner formula, the team dropdowns and the
// friendly row highlight.
func (b *DivisionReportBuilder) scoreEntryOperations(teams []Team, layout RowBlock) []Operation {
	if layout.GameRowCount == 0 {
		return nil
	}
	sheet := b.Sheet()
	// score entry columns are always registered first, in fixed order
	home, homeGoals, awayGoals, away, winner := 0, 1, 2, 3, 4
	row := layout.GameStartRow + 1
	winnerFormula := fmt.Sprintf(`=IF(OR(%[2]s="",%[3]s=""),"",IF(%[2]s>%[3]s,%[1]s,IF(%[3]s>%[2]s,%[4]s,"DRAW")))`,
		relCell(home, row), relCell(homeGoals, row), relCell(awayGoals, row), relCell(away, row))

	ops := []Operation{
		FillFormula{Range: ColumnRange(sheet, layout.GameStartRow, layout.GameRowCount, winner), Template: winnerFormula},
	}
	if src, ok := anchorSpan(teams); ok {
		for _, c := range []int{home, away} {
			ops = append(ops, SetValidation{Range: ColumnRange(sheet, layout.GameStartRow, layout.GameRowCount, c), Source: src})
		}
	}
	if layout.HasFriendlyRow {
		fr := layout.FriendlyRow()
		ops = append(ops, SetCellStyle{
			Range: GridRange{Sheet: sheet, StartRow: fr, EndRow: fr + 1, StartCol: home, EndCol: winner + 1},
			Style: Style{Foreground: "FF0000"},
		})
	}
	return ops
}

// standingsOperations fills each standings column. When the standings
// anchors are contiguous one fill per column is enough; otherwise every row
// gets its own formula.
func (b *DivisionReportBuilder) standingsOperations(g *GenContext, contiguous bool) ([]Operation, error) {
	layout := g.Layout
	if layout.StandingsRowCount == 0 {
		return nil, nil
	}
	var ops []Operation
	for _, c := range b.catalog.Standings() {
		col, err := g.index(c)
		if err != nil {
			return nil, err
		}
		gen := b.opts.generators[c]
		rows := g.Teams
		if contiguous {
			rows = g.Teams[:1]
		}
		for i, t := range rows {
			row := layout.StandingsStartRow + i
			f, err := gen.Formula(g, FormulaRow{Row: row, Team: t})
			if err != nil {
				return nil, err
			}
			n := 1
			if contiguous {
				n = layout.StandingsRowCount
			}
			ops = append(ops, FillFormula{Range: ColumnRange(g.Sheet, row, n, col), Template: f})
		}
	}
	return ops, nil
}

// checkAnchors flags malformed and scattered team anchors. The teams are
// still rendered; the warnings mark the output for manual review.
func (b *DivisionReportBuilder) checkAnchors(round int, teams []Team) []Issue {
	var issues []Issue
	warn := func(ref CellRef, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Division: b.policy.Division,
			Round:    round,
			CellRef:  ref,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	for _, t := range teams {
		if msg := anchorProblem(t.Anchor); msg != "" {
			warn(t.Anchor, "team %q: %s", t.Name, msg)
		}
	}
	var standings []Team
	for _, t := range teams {
		if b.policy.InStandings(t) {
			standings = append(standings, t)
		}
	}
	if !contiguous(standings) {
		warn(CellRef{}, "team anchors are not on consecutive rows; standings use one formula per row")
	}
	return issues
}

func anchorProblem(a CellRef) string {
	switch {
	case a.Sheet == "":
		return "anchor has no sheet"
	case a.Row < 0 || a.Col < 0:
		return fmt.Sprintf("anchor position (%d,%d) is negative", a.Row, a.Col)
	}
	return ""
}

// contiguous reports whether the anchors run down one column on
// consecutive rows of one sheet.
func contiguous(teams []Team) bool {
	for i := 1; i < len(teams); i++ {
		a, p := teams[i].Anchor, teams[i-1].Anchor
		if a.Sheet != p.Sheet || a.Col != p.Col || a.Row != p.Row+1 {
			return false
		}
	}
	return true
}

// anchorSpan is the roster range covering every anchor, for dropdown lists.
func anchorSpan(teams []Team) (GridRange, bool) {
	if len(teams) == 0 {
		return GridRange{}, false
	}
	first := teams[0].Anchor
	span := GridRange{Sheet: first.Sheet, StartRow: first.Row, EndRow: first.Row + 1, StartCol: first.Col, EndCol: first.Col + 1}
	for _, t := range teams[1:] {
		a := t.Anchor
		if a.Sheet != span.Sheet {
			continue
		}
		span.StartRow = min(span.StartRow, a.Row)
		span.EndRow = max(span.EndRow, a.Row+1)
		span.StartCol = min(span.StartCol, a.Col)
		span.EndCol = max(span.EndCol, a.Col+1)
	}
	return span, true
}
