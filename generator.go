package scoresheet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SheetPlan is the operations of one sheet.
type SheetPlan struct {
	Name       string
	Operations []Operation
}

// WorkbookPlan is every sheet of a standings workbook, planned but not
// yet applied.
type WorkbookPlan struct {
	RunID       string
	Title       string
	Teams       SheetPlan
	Adjustments []SheetPlan
	Divisions   []*DivisionReport
}

// Sheets returns all sheets in application order: the roster, the
// adjustment sheets, then the divisions by name.
func (p *WorkbookPlan) Sheets() []SheetPlan {
	sheets := []SheetPlan{p.Teams}
	sheets = append(sheets, p.Adjustments...)
	for _, d := range p.Divisions {
		sheets = append(sheets, SheetPlan{Name: d.Sheet, Operations: d.Operations()})
	}
	return sheets
}

// Warnings collects the issues of every division.
func (p *WorkbookPlan) Warnings() []Issue {
	var out []Issue
	for _, d := range p.Divisions {
		out = append(out, d.Warnings()...)
	}
	return out
}

// PropertySetter is implemented by gateways that can stamp the workbook
// title and run id.
type PropertySetter interface {
	SetProperties(title, runID string) error
}

// Generator plans and renders a whole workbook.
type Generator struct {
	policies    map[string]DivisionPolicy
	rounds      []Round
	adjustments []Adjustment
	opts        *Options
}

// NewGenerator creates a Generator for the given divisions, game rounds
// and active adjustments.
func NewGenerator(policies []DivisionPolicy, rounds []Round, adjustments []Adjustment, opts ...Option) *Generator {
	g := &Generator{
		policies:    make(map[string]DivisionPolicy, len(policies)),
		rounds:      append([]Round(nil), rounds...),
		adjustments: append([]Adjustment(nil), adjustments...),
		opts:        buildOptions(opts),
	}
	for _, p := range policies {
		g.policies[p.Division] = p
	}
	if g.opts.runID == "" {
		g.opts.runID = uuid.NewString()
	}
	return g
}

// RunID identifies this generation run.
func (g *Generator) RunID() string { return g.opts.runID }

// divisionNames merges the configured and the roster divisions, sorted.
func (g *Generator) divisionNames(src RosterSource) []string {
	seen := make(map[string]bool)
	var names []string
	for name := range g.policies {
		seen[name] = true
		names = append(names, name)
	}
	for _, name := range src.Divisions() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Plan builds every division concurrently. Divisions share no state; the
// first failure cancels the rest and nothing is returned.
func (g *Generator) Plan(ctx context.Context, src RosterSource) (*WorkbookPlan, error) {
	log := g.opts.logger.With().Str("run_id", g.opts.runID).Logger()
	start := time.Now()

	names := g.divisionNames(src)
	for _, name := range names {
		if _, ok := g.policies[name]; !ok {
			return nil, &ConfigurationError{Division: name, Err: ErrUnknownDivision}
		}
	}

	engine, err := NewAdjustmentEngine(g.adjustments)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	rosters := make([]DivisionRoster, len(names))
	reports := make([]*DivisionReport, len(names))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.concurrency)
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			policy := g.policies[name]
			teams, err := src.Teams(egCtx, name)
			if err != nil {
				return fmt.Errorf("division %q: roster: %w", name, err)
			}
			b, err := NewDivisionReportBuilder(policy, g.rounds, g.adjustments,
				func(o *Options) { *o = *g.opts },
				WithLogger(log))
			if err != nil {
				return err
			}
			report, err := b.Build(egCtx, teams)
			if err != nil {
				return err
			}
			rosters[i] = DivisionRoster{Policy: policy, Teams: teams}
			reports[i] = report
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	plan := &WorkbookPlan{
		RunID:     g.opts.runID,
		Title:     g.opts.title,
		Teams:     SheetPlan{Name: g.opts.teamsSheet, Operations: TeamSheetOperations(g.opts.teamsSheet, rosters, g.opts.palette)},
		Divisions: reports,
	}
	for _, a := range engine.Active() {
		plan.Adjustments = append(plan.Adjustments, SheetPlan{
			Name:       a.SheetName,
			Operations: AdjustmentSheetOperations(a, g.rounds, rosters, g.opts.palette),
		})
	}
	log.Info().Int("divisions", len(reports)).Dur("elapsed", time.Since(start)).Msg("workbook planned")
	return plan, nil
}

// Generate plans the workbook and applies it sheet by sheet. Nothing is
// applied unless every division planned successfully.
func (g *Generator) Generate(ctx context.Context, src RosterSource, gw SpreadsheetGateway) (*WorkbookPlan, error) {
	plan, err := g.Plan(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := Render(ctx, plan, gw); err != nil {
		return nil, err
	}
	g.opts.logger.Info().Str("run_id", plan.RunID).Int("sheets", len(plan.Sheets())).Msg("workbook rendered")
	return plan, nil
}

// Render applies a plan to a gateway in sheet order.
func Render(ctx context.Context, plan *WorkbookPlan, gw SpreadsheetGateway) error {
	if ps, ok := gw.(PropertySetter); ok {
		if err := ps.SetProperties(plan.Title, plan.RunID); err != nil {
			return fmt.Errorf("set workbook properties: %w", err)
		}
	}
	for _, s := range plan.Sheets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := gw.Apply(ctx, s.Name, s.Operations); err != nil {
			return fmt.Errorf("apply sheet %q: %w", s.Name, err)
		}
	}
	return nil
}
