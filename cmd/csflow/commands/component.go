package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/csflow/internal/app/mutate"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/taskio"
)

// NewComponentCommand returns the component parent command.
func NewComponentCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("component", "Mutate change set components.")
}

// ComponentSetPropertiesCommand sets the domain properties of a component.
type ComponentSetPropertiesCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	cs   changeSetFlags
	comp componentFlags
}

// NewComponentSetPropertiesCommand returns the component set-properties command.
func NewComponentSetPropertiesCommand(rootCmd *RootCommand, compCmd *kingpin.CmdClause) *ComponentSetPropertiesCommand {
	c := &ComponentSetPropertiesCommand{rootCmd: rootCmd}

	c.Cmd = compCmd.Command("set-properties", "Set the domain properties of a component.")
	c.cs.register(c.Cmd)
	c.comp.register(c.Cmd)

	return c
}

func (c ComponentSetPropertiesCommand) Name() string { return c.Cmd.FullCommand() }

func (c ComponentSetPropertiesCommand) Run(ctx context.Context) error {
	props, err := c.comp.properties(ctx)
	if err != nil {
		return err
	}
	if props == nil {
		return fmt.Errorf("domain properties are required: %w", model.ErrNotValid)
	}

	return runMutate(ctx, c.rootCmd, c.cs, mutate.Request{
		Component:  c.comp.component(),
		Properties: props,
	}, "Setting component properties ...")
}

// ComponentRunFunctionCommand triggers a management function on a component.
type ComponentRunFunctionCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	cs   changeSetFlags
	comp componentFlags
}

// NewComponentRunFunctionCommand returns the component run-function command.
func NewComponentRunFunctionCommand(rootCmd *RootCommand, compCmd *kingpin.CmdClause) *ComponentRunFunctionCommand {
	c := &ComponentRunFunctionCommand{rootCmd: rootCmd}

	c.Cmd = compCmd.Command("run-function", "Trigger a management function on a component.")
	c.cs.register(c.Cmd)
	c.Cmd.Flag("component-id", "Component ID.").Default(inputDefault("componentId", "")).StringVar(&c.comp.componentID)
	c.Cmd.Flag("component", "Component name, must match a single component.").Default(inputDefault("component", "")).StringVar(&c.comp.componentName)
	c.comp.registerFunction(c.Cmd)

	return c
}

func (c ComponentRunFunctionCommand) Name() string { return c.Cmd.FullCommand() }

func (c ComponentRunFunctionCommand) Run(ctx context.Context) error {
	return runMutate(ctx, c.rootCmd, c.cs, mutate.Request{
		Component:                 c.comp.component(),
		TriggerManagementFunction: true,
		ManagementFunction:        c.comp.managementFunctionRef(),
		View:                      c.comp.viewRef(),
	}, "Triggering management function ...")
}

func runMutate(ctx context.Context, rootCmd *RootCommand, f changeSetFlags, req mutate.Request, group string) error {
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

	svc, err := mutate.NewService(mutate.ServiceConfig{API: api, Logger: rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	tio.StartGroup(group)
	defer tio.EndGroup()

	req.ChangeSet = *cs
	res, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}

	if err := tio.SetOutput(taskio.OutputComponentWebURL, res.ComponentWebURL); err != nil {
		return fmt.Errorf("could not set output: %w", err)
	}
	if res.ManagementFunction != nil {
		if err := tio.SetOutput(taskio.OutputManagementFunctionLogs, res.ManagementFunction.Message); err != nil {
			return fmt.Errorf("could not set output: %w", err)
		}
	}

	return nil
}
