package scoresheet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_TenUBoysScenario(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 2, nil)
	report, err := b.Build(context.Background(), fourTeams())
	require.NoError(t, err)
	require.Len(t, report.Rounds, 2)

	r1, r2 := report.Rounds[0], report.Rounds[1]
	assert.Equal(t, 2, r1.Layout.StandingsStartRow)
	assert.Equal(t, 10, r2.Layout.StandingsStartRow)
	assert.Equal(t, r1.Layout.StandingsStartRow, r2.Layout.PrevStandingsStartRow)

	rank := standingsFill(t, r2, report.Catalog, ColRank)
	assert.Equal(t, `=COUNTIF($L$11:$L$14,">"&L11)+COUNTIFS($L$11:$L$14,L11,$P$11:$P$14,">"&P11)+1`, rank.Template)
	assert.Equal(t, 4, rank.Range.Rows())

	// the rank reads nothing outside its own round's standings rows
	for _, ref := range FormulaRefs(rank.Template) {
		for _, part := range strings.Split(ref, ":") {
			c, err := ParseCellRef(part)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, c.Row, r2.Layout.StandingsStartRow, ref)
			assert.Less(t, c.Row, r2.Layout.StandingsStartRow+r2.Layout.StandingsRowCount, ref)
		}
	}
}

func TestBuilder_FirstRoundFormulas(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 2, nil)
	plan, err := b.BuildRound(fourTeams(), testRounds(1)[0], nil)
	require.NoError(t, err)
	cat := b.Catalog()

	want := map[Column]string{
		ColTeam:         `='Teams'!A2`,
		ColGamesPlayed:  `=COUNTIFS($A$3:$A$4,$F3,$B$3:$B$4,"<>",$C$3:$C$4,"<>")+COUNTIFS($D$3:$D$4,$F3,$B$3:$B$4,"<>",$C$3:$C$4,"<>")`,
		ColWins:         `=COUNTIF($E$3:$E$4,$F3)`,
		ColLosses:       `=G3-H3-J3`,
		ColDraws:        `=COUNTIFS($A$3:$A$4,$F3,$E$3:$E$4,"DRAW")+COUNTIFS($D$3:$D$4,$F3,$E$3:$E$4,"DRAW")`,
		ColGamePoints:   `=H3*3+J3*1`,
		ColTotalPoints:  `=K3`,
		ColRank:         `=COUNTIF($L$3:$L$6,">"&L3)+COUNTIFS($L$3:$L$6,L3,$P$3:$P$6,">"&P3)+1`,
		ColGoalsFor:     `=SUMIF($A$3:$A$4,$F3,$B$3:$B$4)+SUMIF($D$3:$D$4,$F3,$C$3:$C$4)`,
		ColGoalsAgainst: `=SUMIF($A$3:$A$4,$F3,$C$3:$C$4)+SUMIF($D$3:$D$4,$F3,$B$3:$B$4)`,
		ColGoalDiff:     `=N3-O3`,
	}
	for c, f := range want {
		fill := standingsFill(t, plan, cat, c)
		assert.Equal(t, f, fill.Template, c.Header())
		assert.Equal(t, "10U Boys", fill.Range.Sheet)
		assert.Equal(t, 4, fill.Range.Rows(), c.Header())
	}
	for _, f := range opsOfType[FillFormula](plan.Operations) {
		assert.NoError(t, LintFormula(f.Template))
	}
}

func TestBuilder_ScoreEntry(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 1, nil)
	plan, err := b.BuildRound(fourTeams(), testRounds(1)[0], nil)
	require.NoError(t, err)

	rows := opsOfType[InsertRows](plan.Operations)
	require.Len(t, rows, 2)
	assert.Equal(t, "ROUND 1: 9/7", rows[0].Rows[0][0].Value)
	assert.Equal(t, 0, rows[0].Row)
	assert.Equal(t, 1, rows[1].Row)
	assert.Equal(t, "Home Team", rows[1].Rows[0][0].Value)
	assert.Equal(t, "GD", rows[1].Rows[0][15].Value)

	winner := opsOfType[FillFormula](plan.Operations)[0]
	assert.Equal(t, ColumnRange("10U Boys", 2, 2, 4), winner.Range)
	assert.Equal(t, `=IF(OR(B3="",C3=""),"",IF(B3>C3,A3,IF(C3>B3,D3,"DRAW")))`, winner.Template)

	dropdowns := opsOfType[SetValidation](plan.Operations)
	require.Len(t, dropdowns, 2)
	source := GridRange{Sheet: "Teams", StartRow: 1, EndRow: 5, StartCol: 0, EndCol: 1}
	assert.Equal(t, SetValidation{Range: ColumnRange("10U Boys", 2, 2, 0), Source: source}, dropdowns[0])
	assert.Equal(t, SetValidation{Range: ColumnRange("10U Boys", 2, 2, 3), Source: source}, dropdowns[1])

	styles := opsOfType[SetCellStyle](plan.Operations)
	require.Len(t, styles, 2)
	assert.Equal(t, DefaultPalette.RoundBanner, styles[0].Style.Background)
	assert.Equal(t, DefaultPalette.StandingsHeader, styles[1].Style.Background)
}

func TestBuilder_SeasonCarry(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 3, nil)
	report, err := b.Build(context.Background(), fourTeams())
	require.NoError(t, err)

	r2, r3 := report.Rounds[1], report.Rounds[2]
	assert.Equal(t, `=COUNTIF($E$11:$E$12,$F11)+H3`, standingsFill(t, r2, report.Catalog, ColWins).Template)
	assert.True(t, strings.HasSuffix(standingsFill(t, r2, report.Catalog, ColGamesPlayed).Template, `+G3`))
	assert.Equal(t, `=COUNTIF($E$19:$E$20,$F19)+H11`, standingsFill(t, r3, report.Catalog, ColWins).Template)
	assert.Equal(t, `=G19-H19-J19`, standingsFill(t, r3, report.Catalog, ColLosses).Template)
}

func TestBuilder_RoundOnlyStandings(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys", RoundOnlyStandings: true}, 2, nil)
	report, err := b.Build(context.Background(), fourTeams())
	require.NoError(t, err)
	assert.Equal(t, `=COUNTIF($E$11:$E$12,$F11)`, standingsFill(t, report.Rounds[1], report.Catalog, ColWins).Template)
}

func TestBuilder_PracticeRounds(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys", RoundsCounting: 1}, 2, nil)
	report, err := b.Build(context.Background(), fourTeams())
	require.NoError(t, err)

	r1, r2 := report.Rounds[0], report.Rounds[1]
	assert.False(t, r1.Counting)
	assert.True(t, r2.Counting)

	// practice rounds keep full layout and score entry
	assert.Equal(t, 2, r1.Layout.GameRowCount)
	assert.Len(t, opsOfType[SetValidation](r1.Operations), 2)
	assert.Contains(t, opsOfType[InsertRows](r1.Operations)[0].Rows[0][0].Value, "practice")

	assert.Equal(t, "=0", standingsFill(t, r1, report.Catalog, ColGamesPlayed).Template)
	assert.Equal(t, `=""`, standingsFill(t, r1, report.Catalog, ColRank).Template)
	assert.Equal(t, `=COUNTIF($E$11:$E$12,$F11)+H3`, standingsFill(t, r2, report.Catalog, ColWins).Template)
	assert.True(t, strings.HasPrefix(standingsFill(t, r2, report.Catalog, ColRank).Template, "=COUNTIF("))
}

func TestBuilder_PracticeRoundCarriesOnly(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys", RoundsCounting: 1}, 3, nil)
	report, err := b.Build(context.Background(), fourTeams())
	require.NoError(t, err)
	assert.Equal(t, "=H3", standingsFill(t, report.Rounds[1], report.Catalog, ColWins).Template)
}

func TestBuilder_TotalPointsComposition(t *testing.T) {
	adjs := []Adjustment{{Kind: Referee, SheetName: "Ref Pts", AffectsStandings: true}}
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 1, adjs)
	plan, err := b.BuildRound(fourTeams(), testRounds(1)[0], nil)
	require.NoError(t, err)

	total := standingsFill(t, plan, b.Catalog(), ColTotalPoints)
	assert.Equal(t, "=K3+L3", total.Template)
	assert.Len(t, FormulaRefs(total.Template), 2)
}

func TestBuilder_TotalPointsAllAdjustments(t *testing.T) {
	adjs := []Adjustment{
		{Kind: Referee, AffectsStandings: true},
		{Kind: Volunteer, AffectsStandings: true},
		{Kind: Sportsmanship, AffectsStandings: true},
		{Kind: Deduction, AffectsStandings: true},
	}
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 1, adjs)
	plan, err := b.BuildRound(fourTeams(), testRounds(1)[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "=K3+L3+M3+N3+O3", standingsFill(t, plan, b.Catalog(), ColTotalPoints).Template)
}

func TestBuilder_AdjustmentNotInStandings(t *testing.T) {
	adjs := []Adjustment{{Kind: Volunteer, SheetName: "Volunteer Pts"}}
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 1, adjs)
	assert.False(t, b.Catalog().Has(ColVolunteerPoints))

	plan, err := b.BuildRound(fourTeams(), testRounds(1)[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "=K3", standingsFill(t, plan, b.Catalog(), ColTotalPoints).Template)
}

func TestBuilder_Idempotent(t *testing.T) {
	adjs := []Adjustment{{Kind: Referee, Cumulative: true, AffectsStandings: true}}
	policy := DivisionPolicy{Division: "9U Girls", FriendlyGames: true, RoundsCounting: 2}
	teams := rosterTeams("9U Girls", "Region 1", 1, "A", "B", "C", "D", "E")

	first, err := newBuilder(t, policy, 3, adjs).Build(context.Background(), teams)
	require.NoError(t, err)
	second, err := newBuilder(t, policy, 3, adjs).Build(context.Background(), teams)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Operations(), second.Operations()); diff != "" {
		t.Errorf("operations differ (-first +second):\n%s", diff)
	}

	b := newBuilder(t, policy, 3, adjs)
	prev := first.Rounds[0].Layout
	again1, err := b.BuildRound(teams, testRounds(3)[1], &prev)
	require.NoError(t, err)
	again2, err := b.BuildRound(teams, testRounds(3)[1], &prev)
	require.NoError(t, err)
	if diff := cmp.Diff(again1.Operations, again2.Operations); diff != "" {
		t.Errorf("round 2 differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Rounds[1].Layout, again1.Layout)
}

func TestBuilder_FriendlyRow(t *testing.T) {
	teams := rosterTeams("9U Girls", "Region 1", 1, "A", "B", "C", "D", "E")
	b := newBuilder(t, DivisionPolicy{Division: "9U Girls", FriendlyGames: true}, 1, nil)
	plan, err := b.BuildRound(teams, testRounds(1)[0], nil)
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Layout.GameRowCount)
	assert.True(t, plan.Layout.HasFriendlyRow)
	assert.Equal(t, 5, plan.Layout.StandingsRowCount)

	winner := opsOfType[FillFormula](plan.Operations)[0]
	assert.Equal(t, 3, winner.Range.Rows())

	styles := opsOfType[SetCellStyle](plan.Operations)
	friendly := styles[len(styles)-1]
	assert.Equal(t, GridRange{Sheet: "9U Girls", StartRow: 4, EndRow: 5, StartCol: 0, EndCol: 5}, friendly.Range)
	assert.Equal(t, "FF0000", friendly.Style.Foreground)

	// the friendly does not count
	assert.Equal(t, `=COUNTIF($E$3:$E$4,$F3)`, standingsFill(t, plan, b.Catalog(), ColWins).Template)
}

func TestBuilder_Interregional(t *testing.T) {
	home := rosterTeams("12U Boys", "Region 1", 1, "A", "B", "C", "D")
	other := rosterTeams("12U Boys", "Region 99", 5, "U", "V", "W", "X", "Y", "Z")
	teams := append(home, other...)

	policy := DivisionPolicy{Division: "12U Boys", OtherRegionProgram: "Region 99"}
	b := newBuilder(t, policy, 1, nil)
	plan, err := b.BuildRound(teams, testRounds(1)[0], nil)
	require.NoError(t, err)
	assert.Equal(t, 4, plan.Layout.StandingsRowCount)
	assert.Equal(t, 4, plan.Layout.GameRowCount)
	assert.Equal(t, 4, standingsFill(t, plan, b.Catalog(), ColTeam).Range.Rows())
	assert.Equal(t, GridRange{Sheet: "Teams", StartRow: 1, EndRow: 11, StartCol: 0, EndCol: 1},
		opsOfType[SetValidation](plan.Operations)[0].Source, "dropdown offers every team")

	policy.IncludeOtherRegions = true
	b = newBuilder(t, policy, 1, nil)
	plan, err = b.BuildRound(teams, testRounds(1)[0], nil)
	require.NoError(t, err)
	assert.Equal(t, 10, plan.Layout.StandingsRowCount)
	assert.Equal(t, 10, standingsFill(t, plan, b.Catalog(), ColTeam).Range.Rows())
}

func TestBuilder_ZeroTeams(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "Empty"}, 2, nil)
	report, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Rounds, 2)
	for _, r := range report.Rounds {
		assert.Len(t, opsOfType[InsertRows](r.Operations), 2, "banner and header rows")
		assert.Empty(t, opsOfType[FillFormula](r.Operations))
	}
	assert.Equal(t, 2, report.Rounds[1].Layout.StartRow)
}

func TestBuilder_MissingPreviousRound(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 3, nil)
	rounds := testRounds(3)

	_, err := b.BuildRound(fourTeams(), rounds[1], nil)
	var le *LayoutError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 2, le.Round)
	assert.ErrorIs(t, err, ErrMissingPreviousRound)

	first, err := b.BuildRound(fourTeams(), rounds[0], nil)
	require.NoError(t, err)
	_, err = b.BuildRound(fourTeams(), rounds[2], &first.Layout)
	assert.ErrorIs(t, err, ErrMissingPreviousRound, "round 3 cannot follow round 1")
}

func TestNewDivisionReportBuilder_ConfigurationErrors(t *testing.T) {
	rounds := testRounds(2)
	policy := DivisionPolicy{Division: "10U Boys"}

	_, err := NewDivisionReportBuilder(policy, rounds, nil,
		WithStandingsColumns(ColTeam, ColGamesPlayed, ColWins, ColLosses, ColDraws, ColGamePoints, ColRefereePoints, ColTotalPoints))
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Ref Pts", ce.Column)
	assert.ErrorIs(t, err, ErrMissingAdjustment)

	_, err = NewDivisionReportBuilder(policy, rounds, nil,
		WithStandingsColumns(ColTeam, ColGamesPlayed, ColWins, ColLosses, ColDraws, ColGamePoints, ColTotalPoints, ColRank))
	assert.ErrorIs(t, err, ErrColumnNotFound, "rank needs goal difference")

	_, err = NewDivisionReportBuilder(DivisionPolicy{}, rounds, nil)
	assert.Error(t, err)

	_, err = NewDivisionReportBuilder(policy, []Round{{Number: 2}}, nil)
	assert.Error(t, err)

	_, err = NewDivisionReportBuilder(policy, rounds, []Adjustment{{Kind: Referee}, {Kind: Referee}})
	assert.Error(t, err)

	_, err = NewDivisionReportBuilder(DivisionPolicy{Division: "X", RoundsCounting: -1}, rounds, nil)
	assert.Error(t, err)
}

func TestBuilder_ReducedStandings(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "6U"}, 1, nil,
		WithStandingsColumns(ColTeam, ColGamesPlayed, ColWins, ColLosses, ColDraws, ColGamePoints, ColTotalPoints))
	plan, err := b.BuildRound(fourTeams(), testRounds(1)[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "=K3", standingsFill(t, plan, b.Catalog(), ColTotalPoints).Template)
	assert.Len(t, opsOfType[FillFormula](plan.Operations), 8)
}

func TestBuilder_Scoring(t *testing.T) {
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 1, nil, WithScoring(Scoring{Win: 2, Draw: 1, Loss: -1}))
	plan, err := b.BuildRound(fourTeams(), testRounds(1)[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "=H3*2+J3*1+I3*-1", standingsFill(t, plan, b.Catalog(), ColGamePoints).Template)
}

func TestBuilder_CustomGenerator(t *testing.T) {
	gd := FormulaFunc(func(g *GenContext, r FormulaRow) (string, error) { return "=0", nil })
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 1, nil, WithGenerator(ColGoalDiff, gd))
	plan, err := b.BuildRound(fourTeams(), testRounds(1)[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "=0", standingsFill(t, plan, b.Catalog(), ColGoalDiff).Template)

	// the defaults are not touched
	_, ok := DefaultGenerators()[ColGoalDiff].(FormulaFunc)
	assert.True(t, ok)
}

func TestBuilder_MalformedAnchor(t *testing.T) {
	teams := fourTeams()
	teams[2].Anchor = CellRef{Row: 3}
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 1, nil)
	plan, err := b.BuildRound(teams, testRounds(1)[0], nil)
	require.NoError(t, err)

	require.NotEmpty(t, plan.Warnings)
	assert.Equal(t, SeverityWarning, plan.Warnings[0].Severity)
	assert.Contains(t, plan.Warnings[0].Message, "Sharks")

	// every team still gets a row
	col, err := b.Catalog().Index(ColTeam)
	require.NoError(t, err)
	var teamFills []FillFormula
	for _, f := range opsOfType[FillFormula](plan.Operations) {
		if f.Range.StartCol == col {
			teamFills = append(teamFills, f)
		}
	}
	require.Len(t, teamFills, 4)
	assert.Equal(t, "=A4", teamFills[2].Template)
}

func TestBuilder_ScatteredAnchors(t *testing.T) {
	teams := fourTeams()
	teams[2].Anchor.Row = 10
	teams[3].Anchor.Row = 11
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 1, nil)
	plan, err := b.BuildRound(teams, testRounds(1)[0], nil)
	require.NoError(t, err)
	require.Len(t, plan.Warnings, 1)

	col, err := b.Catalog().Index(ColWins)
	require.NoError(t, err)
	var wins []FillFormula
	for _, f := range opsOfType[FillFormula](plan.Operations) {
		if f.Range.StartCol == col {
			wins = append(wins, f)
		}
	}
	require.Len(t, wins, 4)
	for i, f := range wins {
		assert.Equal(t, 1, f.Range.Rows())
		assert.Equal(t, 2+i, f.Range.StartRow)
	}
	assert.Equal(t, `=COUNTIF($E$3:$E$4,$F6)`, wins[3].Template)
}

func TestBuilder_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := newBuilder(t, DivisionPolicy{Division: "10U Boys"}, 2, nil)
	report, err := b.Build(ctx, fourTeams())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}
