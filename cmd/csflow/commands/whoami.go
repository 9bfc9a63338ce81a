package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/csflow/internal/taskio"
)

// WhoAmICommand shows the API token owner.
type WhoAmICommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewWhoAmICommand returns the whoami command.
func NewWhoAmICommand(rootCmd *RootCommand, app *kingpin.Application) *WhoAmICommand {
	c := &WhoAmICommand{rootCmd: rootCmd}

	c.Cmd = app.Command("whoami", "Show the API token user and workspace.")
	c.Cmd.Flag("format", "Output format (table, json, outputs).").Default("outputs").EnumVar(&c.format, "table", "json", "outputs")

	return c
}

func (c WhoAmICommand) Name() string { return c.Cmd.FullCommand() }

func (c WhoAmICommand) Run(ctx context.Context) error {
	api, err := c.rootCmd.newAPI()
	if err != nil {
		return err
	}

	id, err := api.WhoAmI(ctx)
	if err != nil {
		return fmt.Errorf("could not get api token identity: %w", err)
	}

	if c.format != "outputs" {
		return c.rootCmd.newPrinter(c.format).PrintIdentity(*id)
	}

	tio, err := c.rootCmd.newReporter()
	if err != nil {
		return err
	}

	return setOutputs(tio,
		taskio.OutputUserID, id.UserID,
		taskio.OutputUserEmail, id.UserEmail,
		taskio.OutputWorkspaceID, id.WorkspaceID,
	)
}
