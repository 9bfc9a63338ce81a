package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

// NewHistoryCommand returns the history parent command.
func NewHistoryCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("history", "Inspect the recorded workflow runs.")
}

// HistoryListCommand lists the recorded workflow runs.
type HistoryListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	limit  int
	format string
}

// NewHistoryListCommand returns the history list command.
func NewHistoryListCommand(rootCmd *RootCommand, historyCmd *kingpin.CmdClause) *HistoryListCommand {
	c := &HistoryListCommand{rootCmd: rootCmd}

	c.Cmd = historyCmd.Command("list", "List the most recent workflow runs.")
	c.Cmd.Flag("limit", "Maximum number of runs to list (0 lists all).").Default("20").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c HistoryListCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryListCommand) Run(ctx context.Context) error {
	repo, closeRepo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	runs, err := repo.ListRuns(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("could not list runs: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintRunList(runs); err != nil {
		return fmt.Errorf("could not print runs: %w", err)
	}

	return nil
}

// HistoryShowCommand shows a recorded workflow run.
type HistoryShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	runID  string
	format string
}

// NewHistoryShowCommand returns the history show command.
func NewHistoryShowCommand(rootCmd *RootCommand, historyCmd *kingpin.CmdClause) *HistoryShowCommand {
	c := &HistoryShowCommand{rootCmd: rootCmd}

	c.Cmd = historyCmd.Command("show", "Show a workflow run with its stages.")
	c.Cmd.Arg("run-id", "Run ID.").Required().StringVar(&c.runID)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c HistoryShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryShowCommand) Run(ctx context.Context) error {
	repo, closeRepo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	run, err := repo.GetRun(ctx, c.runID)
	if err != nil {
		return fmt.Errorf("could not get run: %w", err)
	}

	stages, err := repo.ListStages(ctx, c.runID)
	if err != nil {
		return fmt.Errorf("could not list run stages: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintRun(*run, stages); err != nil {
		return fmt.Errorf("could not print run: %w", err)
	}

	return nil
}
