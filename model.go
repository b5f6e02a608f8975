package scoresheet

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Team is one roster entry. Anchor is the cell on the roster sheet that
// holds the team's name; every other sheet refers to the team through it.
type Team struct {
	Name     string
	Program  string
	Division string
	Anchor   CellRef
}

// RosterSource supplies the ordered team list of a division. Anchors must
// stay stable for the lifetime of one report build.
type RosterSource interface {
	Divisions() []string
	Teams(ctx context.Context, division string) ([]Team, error)
}

// DivisionPolicy is the per-division configuration. It is read-only during
// a build.
type DivisionPolicy struct {
	Division string

	// FriendlyGames schedules the odd team out in a non-counting friendly
	// instead of giving it a bye.
	FriendlyGames bool

	// RoundsCounting is the number of trailing rounds that count towards
	// standings; earlier rounds are practice rounds. Zero means all rounds count.
	RoundsCounting int

	// OtherRegionProgram is the program name used for teams from other
	// regions. Empty disables interregional play.
	OtherRegionProgram string

	// IncludeOtherRegions lists other-region teams in the standings table.
	IncludeOtherRegions bool

	// RoundOnlyStandings makes every standings column read only its own
	// round instead of chaining season totals from the previous round.
	RoundOnlyStandings bool
}

// Interregional reports whether the division plays teams from other regions.
func (p DivisionPolicy) Interregional() bool { return p.OtherRegionProgram != "" }

// IsOtherRegion reports whether the team belongs to another region's program.
func (p DivisionPolicy) IsOtherRegion(t Team) bool {
	return p.Interregional() && t.Program == p.OtherRegionProgram
}

// InStandings reports whether the team gets a row in the standings table.
func (p DivisionPolicy) InStandings(t Team) bool {
	return p.IncludeOtherRegions || !p.IsOtherRegion(t)
}

// CountsTowardStandings reports whether round (1-based) of totalRounds counts.
func (p DivisionPolicy) CountsTowardStandings(round, totalRounds int) bool {
	if p.RoundsCounting <= 0 || p.RoundsCounting >= totalRounds {
		return true
	}
	return round > totalRounds-p.RoundsCounting
}

// Round is one scheduled week of games.
type Round struct {
	Number int // 1-based
	Date   time.Time
}

// Label renders the round banner text, e.g. "ROUND 2: 9/18".
func (r Round) Label() string {
	return fmt.Sprintf("ROUND %d: %s", r.Number, r.Date.Format("1/2"))
}

// RoundsFromDates numbers the game dates in order.
func RoundsFromDates(dates []time.Time) []Round {
	rounds := make([]Round, len(dates))
	for i, d := range dates {
		rounds[i] = Round{Number: i + 1, Date: d}
	}
	return rounds
}

// AdjustmentKind tags a points adjustment sheet.
type AdjustmentKind int

const (
	Referee AdjustmentKind = iota
	Volunteer
	Sportsmanship
	Deduction
)

var adjustmentKindNames = map[AdjustmentKind]string{
	Referee:       "referee",
	Volunteer:     "volunteer",
	Sportsmanship: "sportsmanship",
	Deduction:     "deduction",
}

func (k AdjustmentKind) String() string {
	if s, ok := adjustmentKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("AdjustmentKind(%d)", int(k))
}

// ParseAdjustmentKind parses "referee", "volunteer", "sportsmanship" or "deduction".
func ParseAdjustmentKind(s string) (AdjustmentKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range adjustmentKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown adjustment kind %q", s)
}

// Column returns the standings column fed by this kind of adjustment.
func (k AdjustmentKind) Column() Column {
	switch k {
	case Volunteer:
		return ColVolunteerPoints
	case Sportsmanship:
		return ColSportsmanshipPoints
	case Deduction:
		return ColPointsDeduction
	default:
		return ColRefereePoints
	}
}

// DefaultSheetName is the sheet name used when the configuration leaves it empty.
func (k AdjustmentKind) DefaultSheetName() string {
	switch k {
	case Volunteer:
		return "Volunteer Pts"
	case Sportsmanship:
		return "Sptship Pts"
	case Deduction:
		return "Pts Deductions"
	default:
		return "Ref Pts"
	}
}

// Adjustment is one active points adjustment sheet. Only configured kinds
// exist; there is no "absent" adjustment value.
type Adjustment struct {
	Kind             AdjustmentKind
	SheetName        string
	Cumulative       bool // entries are running totals rather than per-round deltas
	AffectsStandings bool
}

// Scoring is the game points awarded per result.
type Scoring struct {
	Win  int
	Draw int
	Loss int
}

// DefaultScoring awards 3 points for a win and 1 for a draw.
var DefaultScoring = Scoring{Win: 3, Draw: 1, Loss: 0}

// Palette holds the background colors (hex RGB, no '#') of header rows.
type Palette struct {
	RoundBanner     string
	StandingsHeader string
	TeamsHeader     string
}

// DefaultPalette matches light blue round banners and gray headers.
var DefaultPalette = Palette{
	RoundBanner:     "A4C2F4",
	StandingsHeader: "999999",
	TeamsHeader:     "999999",
}
