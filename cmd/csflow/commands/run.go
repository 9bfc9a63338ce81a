package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/csflow/internal/app/workflow"
	"github.com/slok/csflow/internal/model"
)

// RunCommand runs the full change set workflow.
type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	cs        changeSetFlags
	comp      componentFlags
	wait      waitFlags
	applyMode string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run the change set workflow: resolve or create a change set, mutate a component, apply and wait.")
	c.cs.register(c.Cmd)
	c.comp.register(c.Cmd)
	c.comp.registerFunction(c.Cmd)
	c.Cmd.Flag("trigger-management-function", "Trigger a management function on the component (implied by --management-function(-id)).").BoolVar(&c.comp.triggerFunction)
	c.Cmd.Flag("apply-on-success", "Apply the change set after the mutations (true/request, false/skip, force).").Default(inputDefault("applyOnSuccess", "false")).StringVar(&c.applyMode)
	c.wait.register(c.Cmd)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	mode, err := model.ParseApplyMode(c.applyMode)
	if err != nil {
		return fmt.Errorf("invalid apply mode: %w", err)
	}

	interval, err := c.wait.pollInterval()
	if err != nil {
		return err
	}

	props, err := c.comp.properties(ctx)
	if err != nil {
		return err
	}

	api, err := c.rootCmd.newAPI()
	if err != nil {
		return err
	}

	tio, err := c.rootCmd.newReporter()
	if err != nil {
		return err
	}

	repo, closeRepo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc, err := workflow.NewService(workflow.ServiceConfig{
		API:             api,
		Repository:      repo,
		Reporter:        tio,
		MetricsRecorder: c.rootCmd.metricsRecorder(),
		Logger:          c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	_, err = svc.Run(ctx, workflow.Request{
		WorkspaceID:               c.cs.workspaceID,
		ChangeSetID:               c.cs.changeSetID,
		ChangeSetName:             c.cs.changeSetName,
		Component:                 c.comp.component(),
		Properties:                props,
		TriggerManagementFunction: c.comp.wantsFunction(),
		ManagementFunction:        c.comp.managementFunctionRef(),
		View:                      c.comp.viewRef(),
		Config: workflow.Config{
			ApplyMode:       mode,
			WaitForApproval: c.wait.waitForApproval,
			WaitForActions:  c.wait.waitForActions,
			PollInterval:    interval,
		},
	})
	return err
}
