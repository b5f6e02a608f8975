package scoresheet

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testTeamsSheet = "Teams"

// rosterTeams places teams on consecutive rows of the roster sheet,
// starting at 0-based row firstRow.
func rosterTeams(division, program string, firstRow int, names ...string) []Team {
	teams := make([]Team, len(names))
	for i, n := range names {
		teams[i] = Team{
			Name:     n,
			Program:  program,
			Division: division,
			Anchor:   NewCellRef(testTeamsSheet, firstRow+i, 0),
		}
	}
	return teams
}

func fourTeams() []Team {
	return rosterTeams("10U Boys", "Region 1", 1, "Comets", "Lions", "Sharks", "Tigers")
}

func testRounds(n int) []Round {
	start := time.Date(2024, time.September, 7, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, 7*i)
	}
	return RoundsFromDates(dates)
}

func newBuilder(t *testing.T, policy DivisionPolicy, rounds int, adjs []Adjustment, opts ...Option) *DivisionReportBuilder {
	t.Helper()
	b, err := NewDivisionReportBuilder(policy, testRounds(rounds), adjs, opts...)
	require.NoError(t, err)
	return b
}

// standingsFill finds the standings fill of a column in a round plan.
func standingsFill(t *testing.T, plan RoundPlan, cat *ColumnCatalog, c Column) FillFormula {
	t.Helper()
	col, err := cat.Index(c)
	require.NoError(t, err)
	for _, op := range plan.Operations {
		if f, ok := op.(FillFormula); ok && f.Range.StartCol == col && f.Range.StartRow == plan.Layout.StandingsStartRow {
			return f
		}
	}
	require.FailNow(t, fmt.Sprintf("no fill for %s in round %d", c.Header(), plan.Round.Number))
	return FillFormula{}
}

func opsOfType[T Operation](ops []Operation) []T {
	var out []T
	for _, op := range ops {
		if o, ok := op.(T); ok {
			out = append(out, o)
		}
	}
	return out
}
