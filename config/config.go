// Package config loads the score sheet configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/javajack/scoresheet"
	"github.com/javajack/scoresheet/roster"
)

// Environment variables that override file values.
const (
	EnvOutput      = "SCORESHEET_OUTPUT"
	EnvRoster      = "SCORESHEET_ROSTER"
	EnvEnvironment = "SCORESHEET_ENVIRONMENT"
)

// DateLayout is the format of game dates.
const DateLayout = "2006-01-02"

const maxSheetName = 31

type ColorsConfig struct {
	RoundBanner     string `yaml:"round_banner"`
	StandingsHeader string `yaml:"standings_header"`
	TeamsHeader     string `yaml:"teams_header"`
}

// ScoringConfig uses pointers so an explicit 0 is kept.
type ScoringConfig struct {
	Win  *int `yaml:"win"`
	Draw *int `yaml:"draw"`
	Loss *int `yaml:"loss"`
}

type AdjustmentConfig struct {
	Kind             string `yaml:"kind"`
	Sheet            string `yaml:"sheet"`
	Cumulative       bool   `yaml:"cumulative"`
	AffectsStandings bool   `yaml:"affects_standings"`
}

type DivisionConfig struct {
	Name                string `yaml:"name"`
	FriendlyGames       bool   `yaml:"friendly_games"`
	RoundsCounting      int    `yaml:"rounds_counting"`
	OtherRegionProgram  string `yaml:"other_region_program"`
	IncludeOtherRegions bool   `yaml:"include_other_regions"`
	RoundOnlyStandings  bool   `yaml:"round_only_standings"`
}

type Config struct {
	Title             string             `yaml:"title"`
	Program           string             `yaml:"program"`
	Environment       string             `yaml:"environment"`
	TeamsSheet        string             `yaml:"teams_sheet"`
	Roster            string             `yaml:"roster"`
	Output            string             `yaml:"output"`
	TeamNameTransform string             `yaml:"team_name_transform"`
	Concurrency       int                `yaml:"concurrency"`
	GameDates         []string           `yaml:"game_dates"`
	Colors            ColorsConfig       `yaml:"colors"`
	Scoring           ScoringConfig      `yaml:"scoring"`
	Adjustments       []AdjustmentConfig `yaml:"adjustments"`
	Divisions         []DivisionConfig   `yaml:"divisions"`
}

// Load loads the .env file next to configPath (if any), then the YAML
// file. Relative roster and output paths from the file are resolved
// against its directory.
func Load(configPath string) (*Config, error) {
	dir := filepath.Dir(configPath)
	envPath := filepath.Join(dir, ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if os.Getenv(EnvRoster) == "" {
		cfg.Roster = resolve(dir, cfg.Roster)
	}
	if os.Getenv(EnvOutput) == "" {
		cfg.Output = resolve(dir, cfg.Output)
	}
	return cfg, nil
}

// Parse decodes YAML, applies environment overrides and defaults, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv(EnvRoster); v != "" {
		cfg.Roster = v
	}
	if v := os.Getenv(EnvEnvironment); v != "" {
		cfg.Environment = v
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.TeamsSheet == "" {
		c.TeamsSheet = "Teams"
	}
	if c.Output == "" {
		c.Output = "standings.xlsx"
	}
	for i, a := range c.Adjustments {
		if a.Sheet != "" {
			continue
		}
		if kind, err := scoresheet.ParseAdjustmentKind(a.Kind); err == nil {
			c.Adjustments[i].Sheet = kind.DefaultSheetName()
		}
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.Title) == "" {
		fail("title is required")
	}
	if strings.TrimSpace(c.Program) == "" {
		fail("program is required")
	}
	if len(c.GameDates) == 0 {
		fail("at least one game date is required")
	}
	if _, err := c.dates(); err != nil {
		errs = append(errs, err)
	}
	if c.Concurrency < 0 {
		fail("concurrency must not be negative")
	}
	for name, v := range map[string]string{
		"round_banner":     c.Colors.RoundBanner,
		"standings_header": c.Colors.StandingsHeader,
		"teams_header":     c.Colors.TeamsHeader,
	} {
		if v != "" && !isHexColor(v) {
			fail("colors.%s: %q is not a hex RGB color", name, v)
		}
	}
	if _, err := roster.CompileTransform(c.TeamNameTransform); err != nil {
		errs = append(errs, err)
	}

	sheets := map[string]string{}
	claim := func(name, owner string) {
		if err := checkSheetName(name); err != nil {
			fail("%s: %w", owner, err)
			return
		}
		key := strings.ToLower(name)
		if prev, ok := sheets[key]; ok {
			fail("%s: sheet %q is already used by %s", owner, name, prev)
			return
		}
		sheets[key] = owner
	}
	claim(c.TeamsSheet, "teams_sheet")

	kinds := map[scoresheet.AdjustmentKind]bool{}
	for i, a := range c.Adjustments {
		owner := fmt.Sprintf("adjustments[%d]", i)
		kind, err := scoresheet.ParseAdjustmentKind(a.Kind)
		if err != nil {
			fail("%s: %w", owner, err)
			continue
		}
		if kinds[kind] {
			fail("%s: duplicate adjustment kind %q", owner, kind)
			continue
		}
		kinds[kind] = true
		if strings.TrimSpace(a.Sheet) == "" {
			fail("%s: sheet name is required", owner)
			continue
		}
		claim(a.Sheet, owner)
	}

	if len(c.Divisions) == 0 {
		fail("at least one division is required")
	}
	for i, d := range c.Divisions {
		owner := fmt.Sprintf("divisions[%d]", i)
		if strings.TrimSpace(d.Name) == "" {
			fail("%s: name is required", owner)
			continue
		}
		if d.RoundsCounting < 0 || d.RoundsCounting > len(c.GameDates) {
			fail("%s: rounds_counting %d outside 0..%d", owner, d.RoundsCounting, len(c.GameDates))
		}
		if d.IncludeOtherRegions && d.OtherRegionProgram == "" {
			fail("%s: include_other_regions requires other_region_program", owner)
		}
		if d.OtherRegionProgram != "" && d.OtherRegionProgram == c.Program {
			fail("%s: other_region_program must differ from program", owner)
		}
		claim(d.Name, owner)
	}
	return errors.Join(errs...)
}

func (c *Config) dates() ([]time.Time, error) {
	out := make([]time.Time, 0, len(c.GameDates))
	for i, s := range c.GameDates {
		d, err := time.Parse(DateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("game_dates[%d]: %q is not YYYY-MM-DD", i, s)
		}
		if i > 0 && !d.After(out[i-1]) {
			return nil, fmt.Errorf("game_dates[%d]: %s is not after %s", i, s, c.GameDates[i-1])
		}
		out = append(out, d)
	}
	return out, nil
}

// Rounds returns one round per game date.
func (c *Config) Rounds() ([]scoresheet.Round, error) {
	dates, err := c.dates()
	if err != nil {
		return nil, err
	}
	return scoresheet.RoundsFromDates(dates), nil
}

// Policies converts the division list.
func (c *Config) Policies() []scoresheet.DivisionPolicy {
	out := make([]scoresheet.DivisionPolicy, len(c.Divisions))
	for i, d := range c.Divisions {
		out[i] = scoresheet.DivisionPolicy{
			Division:            d.Name,
			FriendlyGames:       d.FriendlyGames,
			RoundsCounting:      d.RoundsCounting,
			OtherRegionProgram:  d.OtherRegionProgram,
			IncludeOtherRegions: d.IncludeOtherRegions,
			RoundOnlyStandings:  d.RoundOnlyStandings,
		}
	}
	return out
}

// AdjustmentList converts the adjustments list.
func (c *Config) AdjustmentList() ([]scoresheet.Adjustment, error) {
	out := make([]scoresheet.Adjustment, 0, len(c.Adjustments))
	for _, a := range c.Adjustments {
		kind, err := scoresheet.ParseAdjustmentKind(a.Kind)
		if err != nil {
			return nil, err
		}
		out = append(out, scoresheet.Adjustment{
			Kind:             kind,
			SheetName:        a.Sheet,
			Cumulative:       a.Cumulative,
			AffectsStandings: a.AffectsStandings,
		})
	}
	return out, nil
}

// ScoringPoints returns the points per result, defaulting to 3/1/0.
func (c *Config) ScoringPoints() scoresheet.Scoring {
	s := scoresheet.DefaultScoring
	if c.Scoring.Win != nil {
		s.Win = *c.Scoring.Win
	}
	if c.Scoring.Draw != nil {
		s.Draw = *c.Scoring.Draw
	}
	if c.Scoring.Loss != nil {
		s.Loss = *c.Scoring.Loss
	}
	return s
}

// Palette returns the header colors with defaults filled in.
func (c *Config) Palette() scoresheet.Palette {
	p := scoresheet.DefaultPalette
	if c.Colors.RoundBanner != "" {
		p.RoundBanner = normalizeColor(c.Colors.RoundBanner)
	}
	if c.Colors.StandingsHeader != "" {
		p.StandingsHeader = normalizeColor(c.Colors.StandingsHeader)
	}
	if c.Colors.TeamsHeader != "" {
		p.TeamsHeader = normalizeColor(c.Colors.TeamsHeader)
	}
	return p
}

// Transform compiles the team name transform.
func (c *Config) Transform() (roster.NameTransform, error) {
	return roster.CompileTransform(c.TeamNameTransform)
}

// GeneratorOptions returns the options for scoresheet.NewGenerator.
func (c *Config) GeneratorOptions(logger zerolog.Logger) []scoresheet.Option {
	opts := []scoresheet.Option{
		scoresheet.WithLogger(logger),
		scoresheet.WithTitle(c.Title),
		scoresheet.WithTeamsSheet(c.TeamsSheet),
		scoresheet.WithScoring(c.ScoringPoints()),
		scoresheet.WithPalette(c.Palette()),
	}
	if c.Concurrency > 0 {
		opts = append(opts, scoresheet.WithConcurrency(c.Concurrency))
	}
	return opts
}

// IsDevelopment reports whether logs should be human readable.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func checkSheetName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("sheet name is empty")
	case len([]rune(name)) > maxSheetName:
		return fmt.Errorf("sheet name %q is longer than %d characters", name, maxSheetName)
	case strings.ContainsAny(name, `[]:*?/\`):
		return fmt.Errorf("sheet name %q contains one of []:*?/\\", name)
	}
	return nil
}

func normalizeColor(s string) string {
	return strings.ToUpper(strings.TrimPrefix(s, "#"))
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
