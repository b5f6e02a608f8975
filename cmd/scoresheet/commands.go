package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajack/scoresheet"
	"github.com/javajack/scoresheet/roster"
	"github.com/javajack/scoresheet/xlsx"
)

// errInvalidPlan is returned by validate when a formula fails to lint.
var errInvalidPlan = errors.New("plan has errors")

func newGenerateCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the standings workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = a.cfg.Output
			}
			return a.generate(cmd.Context(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .xlsx path (default from configuration)")
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the layout and formulas without writing a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.plan(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), scoresheet.Describe(plan))
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration, the roster and every generated formula",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.plan(cmd.Context())
			if err != nil {
				return err
			}
			issues := scoresheet.Validate(plan)
			for _, is := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), is.String())
			}
			if scoresheet.HasErrors(issues) {
				return errInvalidPlan
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d division(s), %d warning(s)\n", len(plan.Divisions), len(issues))
			return nil
		},
	}
}

func (a *app) generator() (*scoresheet.Generator, error) {
	rounds, err := a.cfg.Rounds()
	if err != nil {
		return nil, err
	}
	adjs, err := a.cfg.AdjustmentList()
	if err != nil {
		return nil, err
	}
	return scoresheet.NewGenerator(a.cfg.Policies(), rounds, adjs, a.cfg.GeneratorOptions(a.logger)...), nil
}

func (a *app) roster() (*roster.Report, error) {
	transform, err := a.cfg.Transform()
	if err != nil {
		return nil, err
	}
	return roster.Load(a.cfg.Roster, a.cfg.Program, a.cfg.Policies(),
		roster.WithSheet(a.cfg.TeamsSheet),
		roster.WithTransform(transform),
		roster.WithLogger(a.logger))
}

func (a *app) plan(ctx context.Context) (*scoresheet.WorkbookPlan, error) {
	gen, err := a.generator()
	if err != nil {
		return nil, err
	}
	src, err := a.roster()
	if err != nil {
		return nil, err
	}
	return gen.Plan(ctx, src)
}

func (a *app) generate(ctx context.Context, output string) error {
	gen, err := a.generator()
	if err != nil {
		return err
	}
	src, err := a.roster()
	if err != nil {
		return err
	}
	wb, err := xlsx.New(a.cfg.TeamsSheet, xlsx.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer wb.Close()

	plan, err := gen.Generate(ctx, src, wb)
	if err != nil {
		return err
	}
	if err := wb.SaveAs(output); err != nil {
		return err
	}
	a.logger.Info().Str("path", output).Str("run_id", plan.RunID).Msg("workbook written")
	return nil
}
