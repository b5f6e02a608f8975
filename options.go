package scoresheet

import "github.com/rs/zerolog"

// Options holds configuration shared by the builder and the Generator.
type Options struct {
	logger      zerolog.Logger
	scoring     Scoring
	palette     Palette
	standings   []Column
	generators  Generators
	teamsSheet  string
	title       string
	runID       string
	concurrency int
}

func defaultOptions() *Options {
	return &Options{
		logger:      zerolog.Nop(),
		scoring:     DefaultScoring,
		palette:     DefaultPalette,
		generators:  DefaultGenerators(),
		teamsSheet:  "Teams",
		concurrency: 4,
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures the builder and the Generator.
type Option func(*Options)

// WithLogger sets the logger (default: zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithScoring sets the points per win, draw and loss (default: 3/1/0).
func WithScoring(s Scoring) Option {
	return func(o *Options) { o.scoring = s }
}

// WithPalette sets the header colors.
func WithPalette(p Palette) Option {
	return func(o *Options) { o.palette = p }
}

// WithStandingsColumns overrides the standings column order. By default it
// is DefaultStandings of the configured adjustments.
func WithStandingsColumns(cols ...Column) Option {
	return func(o *Options) { o.standings = append([]Column(nil), cols...) }
}

// WithGenerator replaces the formula generator of one standings column.
func WithGenerator(c Column, g ColumnGenerator) Option {
	return func(o *Options) {
		gens := make(Generators, len(o.generators)+1)
		for k, v := range o.generators {
			gens[k] = v
		}
		gens[c] = g
		o.generators = gens
	}
}

// WithTeamsSheet sets the name of the roster sheet (default: "Teams").
func WithTeamsSheet(name string) Option {
	return func(o *Options) { o.teamsSheet = name }
}

// WithTitle sets the workbook title.
func WithTitle(title string) Option {
	return func(o *Options) { o.title = title }
}

// WithRunID sets the id stamped on logs and the workbook (default: random UUID).
func WithRunID(id string) Option {
	return func(o *Options) { o.runID = id }
}

// WithConcurrency bounds how many divisions are planned at once (default: 4).
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}
