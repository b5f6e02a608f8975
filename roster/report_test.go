package roster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/scoresheet"
)

const (
	coreProgram  = "2021 Core Program"
	otherProgram = "Other"
)

const teamDetails = `"Program Name", "Division Name", "Team Name", "Team Code", "AllocatedPlayer"
"2021 Core Program", "5U Boys", "Sharks"
"2021 Core Program", "10U Boys", "Super Sharks"
"2021 Core Program", "10U Girls", "Sharknado"
"2021 Extra", "10U Boys", "Awesomeness"
"Other", "10U Boys", "Big Bois"
"Other", "10U Girls", "Big Girlz"
"2021 Core Program", "10U Boys", "Arrows", "B-17", "9"
`

func policies(interregional bool) []scoresheet.DivisionPolicy {
	other := ""
	if interregional {
		other = otherProgram
	}
	return []scoresheet.DivisionPolicy{
		{Division: "10U Boys", OtherRegionProgram: other},
		{Division: "10U Girls", OtherRegionProgram: other},
	}
}

func names(teams []scoresheet.Team) []string {
	out := make([]string, len(teams))
	for i, t := range teams {
		out[i] = t.Name
	}
	return out
}

func TestRead_Filters(t *testing.T) {
	for _, interregional := range []bool{true, false} {
		r, err := Read(strings.NewReader(teamDetails), coreProgram, policies(interregional))
		require.NoError(t, err)
		assert.Equal(t, []string{"10U Boys", "10U Girls"}, r.Divisions())

		boys, err := r.Teams(context.Background(), "10U Boys")
		require.NoError(t, err)
		girls, err := r.Teams(context.Background(), "10U Girls")
		require.NoError(t, err)

		if interregional {
			assert.Equal(t, []string{"Arrows", "Super Sharks", "Big Bois"}, names(boys))
			assert.Equal(t, []string{"Sharknado", "Big Girlz"}, names(girls))
			assert.Equal(t, otherProgram, boys[2].Program)
			assert.Equal(t, 2, r.Skipped())
		} else {
			assert.Equal(t, []string{"Arrows", "Super Sharks"}, names(boys))
			assert.Equal(t, []string{"Sharknado"}, names(girls))
			assert.Equal(t, 4, r.Skipped())
		}
		for _, team := range append(boys, girls...) {
			assert.NotContains(t, team.Name, `"`)
			assert.NotContains(t, team.Division, `"`)
			assert.NotEqual(t, "2021 Extra", team.Program)
		}
	}
}

func TestRead_Anchors(t *testing.T) {
	r, err := Read(strings.NewReader(teamDetails), coreProgram, policies(true), WithSheet("Team List"))
	require.NoError(t, err)

	boys, _ := r.Teams(context.Background(), "10U Boys")
	girls, _ := r.Teams(context.Background(), "10U Girls")

	// 10U Boys: header row 1, teams A2:A4, blank row 5; 10U Girls: header row 6
	want := []string{"'Team List'!A2", "'Team List'!A3", "'Team List'!A4"}
	for i, team := range boys {
		assert.Equal(t, want[i], team.Anchor.String())
	}
	assert.Equal(t, "'Team List'!A7", girls[0].Anchor.String())
	assert.Equal(t, "'Team List'!A8", girls[1].Anchor.String())
	assert.Equal(t, 5, r.Len())
}

func TestRead_TeamSheetRoundTrip(t *testing.T) {
	r, err := Read(strings.NewReader(teamDetails), coreProgram, policies(false))
	require.NoError(t, err)

	var divisions []scoresheet.DivisionRoster
	for _, d := range r.Divisions() {
		teams, err := r.Teams(context.Background(), d)
		require.NoError(t, err)
		divisions = append(divisions, scoresheet.DivisionRoster{Policy: scoresheet.DivisionPolicy{Division: d}, Teams: teams})
	}
	ops := scoresheet.TeamSheetOperations(r.Sheet(), divisions, scoresheet.DefaultPalette)

	var rows []int
	for _, op := range ops {
		if ins, ok := op.(scoresheet.InsertRows); ok {
			rows = append(rows, ins.Row)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 4, 5}, rows, "headers and teams land on the anchor rows")
}

func TestRead_Transform(t *testing.T) {
	tr, err := CompileTransform(`trim(replace(name, "Super", ""))`)
	require.NoError(t, err)

	r, err := Read(strings.NewReader(teamDetails), coreProgram, policies(false), WithTransform(tr))
	require.NoError(t, err)
	boys, _ := r.Teams(context.Background(), "10U Boys")
	assert.Equal(t, []string{"Arrows", "Sharks"}, names(boys))
}

func TestRead_Malformed(t *testing.T) {
	in := "Program,Division,Team\n\"2021 Core Program\",\"10U Boys\"\n"
	_, err := Read(strings.NewReader(in), coreProgram, policies(false))
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "line 2")
}

func TestRead_HeaderOnly(t *testing.T) {
	r, err := Read(strings.NewReader("Program,Division,Team\n"), coreProgram, policies(false))
	require.NoError(t, err)
	assert.Empty(t, r.Divisions())
	assert.Zero(t, r.Len())
}

func TestTeams_ReturnsCopy(t *testing.T) {
	r, err := Read(strings.NewReader(teamDetails), coreProgram, policies(false))
	require.NoError(t, err)

	teams, _ := r.Teams(context.Background(), "10U Boys")
	teams[0].Name = "changed"
	again, _ := r.Teams(context.Background(), "10U Boys")
	assert.Equal(t, "Arrows", again[0].Name)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Teams(ctx, "10U Boys")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.csv")
	require.NoError(t, os.WriteFile(path, []byte(teamDetails), 0o644))

	r, err := Load(path, coreProgram, policies(false))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), coreProgram, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
