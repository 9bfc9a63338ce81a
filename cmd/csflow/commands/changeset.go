package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/csflow/internal/app/apply"
	"github.com/slok/csflow/internal/app/changeset"
	"github.com/slok/csflow/internal/app/wait"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote"
	"github.com/slok/csflow/internal/taskio"
)

// NewChangeSetCommand returns the change set parent command.
func NewChangeSetCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("changeset", "Manage change sets.").Alias("cs")
}

// resolveChangeSet returns the change set selected by the flags, creating it if requested.
func (r *RootCommand) resolveChangeSet(ctx context.Context, api remote.API, f changeSetFlags) (*model.ChangeSet, error) {
	svc, err := changeset.NewService(changeset.ServiceConfig{API: api, Logger: r.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc.Resolve(ctx, changeset.Request{
		WorkspaceID:   f.workspaceID,
		ChangeSetID:   f.changeSetID,
		ChangeSetName: f.changeSetName,
	})
}

func changeSetOutputs(tio taskio.Reporter, cs model.ChangeSet) error {
	return setOutputs(tio,
		taskio.OutputWorkspaceID, cs.WorkspaceID,
		taskio.OutputChangeSetID, cs.ID,
		taskio.OutputChangeSetWebURL, cs.WebURL,
	)
}

// ChangeSetCreateCommand creates a change set.
type ChangeSetCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	workspaceID string
	name        string
}

// NewChangeSetCreateCommand returns the change set create command.
func NewChangeSetCreateCommand(rootCmd *RootCommand, csCmd *kingpin.CmdClause) *ChangeSetCreateCommand {
	c := &ChangeSetCreateCommand{rootCmd: rootCmd}

	c.Cmd = csCmd.Command("create", "Create a change set.")
	c.Cmd.Flag("workspace-id", "Workspace ID, if empty the API token workspace is used.").Default(inputDefault("workspaceId", "")).StringVar(&c.workspaceID)
	c.Cmd.Flag("name", "Name of the change set.").Default(inputDefault("changeSetName", "")).StringVar(&c.name)

	return c
}

func (c ChangeSetCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ChangeSetCreateCommand) Run(ctx context.Context) error {
	api, err := c.rootCmd.newAPI()
	if err != nil {
		return err
	}

	tio, err := c.rootCmd.newReporter()
	if err != nil {
		return err
	}

	tio.StartGroup("Creating change set ...")
	defer tio.EndGroup()

	cs, err := c.rootCmd.resolveChangeSet(ctx, api, changeSetFlags{
		workspaceID:   c.workspaceID,
		changeSetID:   changeset.CreateID,
		changeSetName: c.name,
	})
	if err != nil {
		return err
	}

	return changeSetOutputs(tio, *cs)
}

// ChangeSetStatusCommand shows the status of a change set.
type ChangeSetStatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	workspaceID string
	changeSetID string
	format      string
}

// NewChangeSetStatusCommand returns the change set status command.
func NewChangeSetStatusCommand(rootCmd *RootCommand, csCmd *kingpin.CmdClause) *ChangeSetStatusCommand {
	c := &ChangeSetStatusCommand{rootCmd: rootCmd}

	c.Cmd = csCmd.Command("status", "Show the merge status of a change set and its actions.")
	c.Cmd.Arg("change-set-id", "Change set ID.").Required().StringVar(&c.changeSetID)
	c.Cmd.Flag("workspace-id", "Workspace ID, if empty the API token workspace is used.").Default(inputDefault("workspaceId", "")).StringVar(&c.workspaceID)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ChangeSetStatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c ChangeSetStatusCommand) Run(ctx context.Context) error {
	api, err := c.rootCmd.newAPI()
	if err != nil {
		return err
	}

	svc, err := changeset.NewService(changeset.ServiceConfig{API: api, Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	workspaceID, err := svc.WorkspaceID(ctx, c.workspaceID)
	if err != nil {
		return err
	}

	// Any status is shown, no workable state is required.
	cs, err := api.GetChangeSet(ctx, workspaceID, c.changeSetID)
	if err != nil {
		return fmt.Errorf("could not get change set: %w", err)
	}

	ms, err := api.GetMergeStatus(ctx, *cs)
	if err != nil {
		return fmt.Errorf("could not get change set merge status: %w", err)
	}
	if ms.ChangeSet.Name == "" {
		ms.ChangeSet.Name = cs.Name
	}

	return c.rootCmd.newPrinter(c.format).PrintMergeStatus(*ms)
}

// ChangeSetRequestApprovalCommand requests the approval to apply a change set.
type ChangeSetRequestApprovalCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	cs changeSetFlags
}

// NewChangeSetRequestApprovalCommand returns the change set request-approval command.
func NewChangeSetRequestApprovalCommand(rootCmd *RootCommand, csCmd *kingpin.CmdClause) *ChangeSetRequestApprovalCommand {
	c := &ChangeSetRequestApprovalCommand{rootCmd: rootCmd}

	c.Cmd = csCmd.Command("request-approval", "Request the approval to apply a change set.")
	c.cs.register(c.Cmd)

	return c
}

func (c ChangeSetRequestApprovalCommand) Name() string { return c.Cmd.FullCommand() }

func (c ChangeSetRequestApprovalCommand) Run(ctx context.Context) error {
	return runApply(ctx, c.rootCmd, c.cs, model.ApplyModeRequest, 0)
}

// ChangeSetApplyCommand applies a change set.
type ChangeSetApplyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	cs   changeSetFlags
	wait waitFlags
	mode string
}

// NewChangeSetApplyCommand returns the change set apply command.
func NewChangeSetApplyCommand(rootCmd *RootCommand, csCmd *kingpin.CmdClause) *ChangeSetApplyCommand {
	c := &ChangeSetApplyCommand{rootCmd: rootCmd}

	c.Cmd = csCmd.Command("apply", "Apply a change set (request approval or force apply).")
	c.cs.register(c.Cmd)
	c.wait.registerPollInterval(c.Cmd)
	c.Cmd.Flag("mode", "Apply mode (true/request, false/skip, force).").Default(inputDefault("applyOnSuccess", string(model.ApplyModeRequest))).StringVar(&c.mode)

	return c
}

func (c ChangeSetApplyCommand) Name() string { return c.Cmd.FullCommand() }

func (c ChangeSetApplyCommand) Run(ctx context.Context) error {
	mode, err := model.ParseApplyMode(c.mode)
	if err != nil {
		return fmt.Errorf("invalid apply mode: %w", err)
	}

	interval, err := c.wait.pollInterval()
	if err != nil {
		return err
	}

	return runApply(ctx, c.rootCmd, c.cs, mode, interval)
}

func runApply(ctx context.Context, rootCmd *RootCommand, f changeSetFlags, mode model.ApplyMode, interval time.Duration) error {
	api, err := rootCmd.newAPI()
	if err != nil {
		return err
	}

	tio, err := rootCmd.newReporter()
	if err != nil {
		return err
	}

	cs, err := rootCmd.resolveChangeSet(ctx, api, f)
	if err != nil {
		return err
	}
	if err := changeSetOutputs(tio, *cs); err != nil {
		return err
	}

	svc, err := apply.NewService(apply.ServiceConfig{
		API:             api,
		MetricsRecorder: rootCmd.metricsRecorder(),
		Reporter:        tio,
		Logger:          rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	tio.StartGroup("Applying change set ...")
	defer tio.EndGroup()

	_, err = svc.Run(ctx, apply.Request{ChangeSet: *cs, Mode: mode, RetryInterval: interval})
	return err
}

// ChangeSetWaitCommand waits for a change set to complete.
type ChangeSetWaitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	workspaceID string
	changeSetID string
	wait        waitFlags
}

// NewChangeSetWaitCommand returns the change set wait command.
func NewChangeSetWaitCommand(rootCmd *RootCommand, csCmd *kingpin.CmdClause) *ChangeSetWaitCommand {
	c := &ChangeSetWaitCommand{rootCmd: rootCmd}

	c.Cmd = csCmd.Command("wait", "Wait for a change set to be applied and its actions to finish.")
	c.Cmd.Flag("workspace-id", "Workspace ID, if empty the API token workspace is used.").Default(inputDefault("workspaceId", "")).StringVar(&c.workspaceID)
	c.Cmd.Flag("change-set-id", "Change set ID.").Default(inputDefault("changeSetId", "")).StringVar(&c.changeSetID)
	c.wait.register(c.Cmd)

	return c
}

func (c ChangeSetWaitCommand) Name() string { return c.Cmd.FullCommand() }

func (c ChangeSetWaitCommand) Run(ctx context.Context) error {
	if c.changeSetID == "" {
		return fmt.Errorf("change set id is required: %w", model.ErrNotValid)
	}

	interval, err := c.wait.pollInterval()
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

	csSvc, err := changeset.NewService(changeset.ServiceConfig{API: api, Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}
	workspaceID, err := csSvc.WorkspaceID(ctx, c.workspaceID)
	if err != nil {
		return err
	}

	// Waiting doesn't need a workable change set, applied ones are the common case.
	cs, err := api.GetChangeSet(ctx, workspaceID, c.changeSetID)
	if err != nil {
		return fmt.Errorf("could not get change set: %w", err)
	}

	svc, err := wait.NewService(wait.ServiceConfig{
		API:             api,
		MetricsRecorder: c.rootCmd.metricsRecorder(),
		Logger:          c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	tio.StartGroup("Waiting for change set to complete ...")
	defer tio.EndGroup()

	res, err := svc.Run(ctx, wait.Request{
		ChangeSet:       *cs,
		WaitForApproval: c.wait.waitForApproval,
		WaitForActions:  c.wait.waitForActions,
		PollInterval:    interval,
	})
	if err != nil {
		return err
	}

	c.rootCmd.Logger.Infof("Change set is complete! (status: %s, polls: %d)", res.Status.ChangeSet.Status, res.Polls)
	return nil
}
