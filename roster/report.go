// Package roster reads the team details report exported by the
// registration system and lays the teams out on the team list sheet.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/javajack/scoresheet"
)

// ErrMalformedRecord is returned for a report line with fewer than the
// three leading columns (program, division, team name).
var ErrMalformedRecord = errors.New("malformed team details record")

const (
	colProgram = iota
	colDivision
	colTeam
	requiredColumns
)

// Report is the parsed team details report. It implements
// scoresheet.RosterSource; anchors point into the team list sheet.
type Report struct {
	sheet     string
	transform NameTransform
	log       zerolog.Logger

	divisions map[string][]scoresheet.Team
	skipped   int
}

// Option configures how a report is read.
type Option func(*Report)

// WithLogger sets the logger (default: zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(r *Report) { r.log = l }
}

// WithTransform sets the team name transform.
func WithTransform(t NameTransform) Option {
	return func(r *Report) {
		if t != nil {
			r.transform = t
		}
	}
}

// WithSheet sets the name of the team list sheet anchors refer to
// (default: "Teams").
func WithSheet(name string) Option {
	return func(r *Report) { r.sheet = name }
}

// Load opens and reads the report at path.
func Load(path, program string, policies []scoresheet.DivisionPolicy, opts ...Option) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open team details report %q: %w", path, err)
	}
	defer f.Close()
	return Read(f, program, policies, opts...)
}

// Read parses a team details report. The first line is a header. Teams
// are kept when their division is configured and their program is either
// program or the division's other-region program.
func Read(in io.Reader, program string, policies []scoresheet.DivisionPolicy, opts ...Option) (*Report, error) {
	r := &Report{
		sheet:     "Teams",
		transform: identity{},
		log:       zerolog.Nop(),
		divisions: make(map[string][]scoresheet.Team),
	}
	for _, opt := range opts {
		opt(r)
	}
	byName := make(map[string]scoresheet.DivisionPolicy, len(policies))
	for _, p := range policies {
		byName[p.Division] = p
	}

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read team details report: %w", err)
		}
		if first {
			continue
		}
		if blank(rec) {
			continue
		}
		if len(rec) < requiredColumns {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w: %d field(s)", line, ErrMalformedRecord, len(rec))
		}

		division := clean(rec[colDivision])
		policy, ok := byName[division]
		if !ok {
			r.skipped++
			continue
		}
		prog := clean(rec[colProgram])
		if prog != program && (!policy.Interregional() || prog != policy.OtherRegionProgram) {
			r.skipped++
			continue
		}
		name, err := r.transform.Transform(clean(rec[colTeam]))
		if err != nil {
			line, _ := cr.FieldPos(colTeam)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		r.divisions[division] = append(r.divisions[division], scoresheet.Team{
			Name:     name,
			Program:  prog,
			Division: division,
		})
		r.log.Trace().Str("division", division).Str("team", name).Msg("loaded team")
	}

	r.assignAnchors(program)
	r.log.Info().Int("divisions", len(r.divisions)).Int("teams", r.Len()).Int("skipped", r.skipped).Msg("team details report loaded")
	return r, nil
}

// assignAnchors sorts each division (home program teams by name, then
// the rest by name) and gives every team its row on the team list sheet:
// a header row per division, one row per team, then a blank separator.
func (r *Report) assignAnchors(program string) {
	row := 0
	for _, division := range r.Divisions() {
		teams := r.divisions[division]
		sort.SliceStable(teams, func(i, j int) bool {
			hi, hj := teams[i].Program == program, teams[j].Program == program
			if hi != hj {
				return hi
			}
			return teams[i].Name < teams[j].Name
		})
		row++ // header
		for i := range teams {
			teams[i].Anchor = scoresheet.NewCellRef(r.sheet, row, 0)
			row++
		}
		row++ // separator
	}
}

// Divisions returns the divisions that have at least one team, by name.
func (r *Report) Divisions() []string {
	names := make([]string, 0, len(r.divisions))
	for d := range r.divisions {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

// Teams returns a copy of the teams of division in sheet order.
func (r *Report) Teams(ctx context.Context, division string) ([]scoresheet.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	teams := r.divisions[division]
	out := make([]scoresheet.Team, len(teams))
	copy(out, teams)
	return out, nil
}

// Len is the total number of teams kept.
func (r *Report) Len() int {
	n := 0
	for _, teams := range r.divisions {
		n += len(teams)
	}
	return n
}

// Skipped is the number of records dropped by the division and program
// filters.
func (r *Report) Skipped() int { return r.skipped }

// Sheet is the team list sheet the anchors refer to.
func (r *Report) Sheet() string { return r.sheet }

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

func blank(rec []string) bool {
	for _, f := range rec {
		if clean(f) != "" {
			return false
		}
	}
	return true
}
