package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/csflow/cmd/csflow/commands"
	"github.com/slok/csflow/internal/log"
	loglogrus "github.com/slok/csflow/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("csflow", "System Initiative change set workflow tool.")
	app.Version(Version)
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	whoamiCmd := commands.NewWhoAmICommand(rootCmd, app)
	runCmd := commands.NewRunCommand(rootCmd, app)

	csCmd := commands.NewChangeSetCommand(app)
	csCreateCmd := commands.NewChangeSetCreateCommand(rootCmd, csCmd)
	csStatusCmd := commands.NewChangeSetStatusCommand(rootCmd, csCmd)
	csRequestApprovalCmd := commands.NewChangeSetRequestApprovalCommand(rootCmd, csCmd)
	csApplyCmd := commands.NewChangeSetApplyCommand(rootCmd, csCmd)
	csWaitCmd := commands.NewChangeSetWaitCommand(rootCmd, csCmd)

	compCmd := commands.NewComponentCommand(app)
	compSetPropertiesCmd := commands.NewComponentSetPropertiesCommand(rootCmd, compCmd)
	compRunFunctionCmd := commands.NewComponentRunFunctionCommand(rootCmd, compCmd)

	historyCmd := commands.NewHistoryCommand(app)
	historyListCmd := commands.NewHistoryListCommand(rootCmd, historyCmd)
	historyShowCmd := commands.NewHistoryShowCommand(rootCmd, historyCmd)

	cmds := map[string]commands.Command{
		whoamiCmd.Name():            whoamiCmd,
		runCmd.Name():               runCmd,
		csCreateCmd.Name():          csCreateCmd,
		csStatusCmd.Name():          csStatusCmd,
		csRequestApprovalCmd.Name(): csRequestApprovalCmd,
		csApplyCmd.Name():           csApplyCmd,
		csWaitCmd.Name():            csWaitCmd,
		compSetPropertiesCmd.Name(): compSetPropertiesCmd,
		compRunFunctionCmd.Name():   compRunFunctionCmd,
		historyListCmd.Name():       historyListCmd,
		historyShowCmd.Name():       historyShowCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Printer commands don't log unless debugging so the output can be piped.
	printerCommands := map[string]bool{
		"changeset status": true,
		"history list":     true,
		"history show":     true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if merr := rootCmd.WriteMetrics(); merr != nil {
					rootCmd.Logger.Warningf("Could not write metrics: %s", merr)
				}
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Outputs and printers use stdout.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
