// Command scoresheet builds a formula-driven standings workbook from a
// team details report.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javajack/scoresheet/config"
)

// app is the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "scoresheet",
		Short: "Generate AYSO standings workbooks",
		Long: `scoresheet lays out one sheet per division with a block per round:
score entry rows, a winner column and a standings table whose formulas
carry season totals forward from the previous round.

Teams come from the registration system's team details report (CSV).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = setupLogger(cmd.ErrOrStderr(), cfg.IsDevelopment(), a.verbose)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "scoresheet.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCmd(a), newPlanCmd(a), newValidateCmd(a))
	return root
}

func setupLogger(w io.Writer, development, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if development {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
