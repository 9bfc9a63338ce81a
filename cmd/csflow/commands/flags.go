package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/resolve"
	csio "github.com/slok/csflow/internal/storage/io"
)

// changeSetFlags select the change set a command works on.
type changeSetFlags struct {
	workspaceID   string
	changeSetID   string
	changeSetName string
}

func (f *changeSetFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("workspace-id", "Workspace ID, if empty the API token workspace is used.").Default(inputDefault("workspaceId", "")).StringVar(&f.workspaceID)
	cmd.Flag("change-set-id", `Change set ID, use "create" to create a new one.`).Default(inputDefault("changeSetId", "")).StringVar(&f.changeSetID)
	cmd.Flag("change-set-name", "Name of the change set to create.").Default(inputDefault("changeSetName", "")).StringVar(&f.changeSetName)
}

// componentFlags select a component and the mutations done on it.
type componentFlags struct {
	componentID          string
	componentName        string
	domain               string
	domainFile           string
	managementFunctionID string
	managementFunction   string
	viewID               string
	view                 string
	triggerFunction      bool
}

func (f *componentFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("component-id", "Component ID.").Default(inputDefault("componentId", "")).StringVar(&f.componentID)
	cmd.Flag("component", "Component name, must match a single component.").Default(inputDefault("component", "")).StringVar(&f.componentName)
	cmd.Flag("domain", "Component domain properties as YAML or JSON.").Default(inputDefault("domain", "")).StringVar(&f.domain)
	cmd.Flag("domain-file", "File with the component domain properties as YAML or JSON.").StringVar(&f.domainFile)
}

func (f *componentFlags) registerFunction(cmd *kingpin.CmdClause) {
	cmd.Flag("management-function-id", "Management function (prototype) ID.").Default(inputDefault("managementPrototypeId", "")).StringVar(&f.managementFunctionID)
	cmd.Flag("management-function", "Management function name, if empty the only function of the component is used.").Default(inputDefault("managementFunction", "")).StringVar(&f.managementFunction)
	cmd.Flag("view-id", "View ID where the management function runs.").Default(inputDefault("viewId", "")).StringVar(&f.viewID)
	cmd.Flag("view", "View name where the management function runs, if empty the only view of the component is used.").Default(inputDefault("view", "")).StringVar(&f.view)
}

func (f *componentFlags) component() resolve.Ref {
	return resolve.Ref{ID: f.componentID, Name: f.componentName}
}

func (f *componentFlags) managementFunctionRef() resolve.Ref {
	return resolve.Ref{ID: f.managementFunctionID, Name: f.managementFunction}
}

func (f *componentFlags) viewRef() resolve.Ref {
	return resolve.Ref{ID: f.viewID, Name: f.view}
}

// wantsFunction returns true when a management function was requested explicitly or by reference.
func (f *componentFlags) wantsFunction() bool {
	return f.triggerFunction || !f.managementFunctionRef().IsZero()
}

// properties returns the domain properties, nil if none were set.
func (f *componentFlags) properties(ctx context.Context) (*model.ComponentProperties, error) {
	switch {
	case f.domain != "" && f.domainFile != "":
		return nil, fmt.Errorf("domain and domain file can't be used at the same time: %w", model.ErrNotValid)
	case f.domainFile != "":
		repo := csio.NewPropertiesYAMLRepository(os.DirFS("/"))
		props, err := repo.GetProperties(ctx, fsPath(f.domainFile))
		if err != nil {
			return nil, fmt.Errorf("could not load domain file: %w", err)
		}
		return &props, nil
	case f.domain != "":
		props, err := csio.ParseProperties([]byte(f.domain))
		if err != nil {
			return nil, fmt.Errorf("could not parse domain: %w", err)
		}
		return &props, nil
	}

	return nil, nil
}

// waitFlags control how a change set is waited.
type waitFlags struct {
	waitForApproval     bool
	waitForActions      bool
	pollIntervalSeconds int
}

func (f *waitFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("wait-for-approval", "Keep waiting while the change set is pending approval.").Default(inputDefault("waitForApproval", "false")).BoolVar(&f.waitForApproval)
	cmd.Flag("wait-for-actions", "Keep waiting while the actions of the applied change set are running.").Default(inputDefault("waitForActions", "true")).BoolVar(&f.waitForActions)
	f.registerPollInterval(cmd)
}

func (f *waitFlags) registerPollInterval(cmd *kingpin.CmdClause) {
	cmd.Flag("poll-interval-seconds", "Seconds between change set polls and force apply retries.").Default(inputDefault("pollIntervalSeconds", "10")).IntVar(&f.pollIntervalSeconds)
}

func (f *waitFlags) pollInterval() (time.Duration, error) {
	if f.pollIntervalSeconds < 1 {
		return 0, fmt.Errorf("poll interval must be at least 1 second, got: %d: %w", f.pollIntervalSeconds, model.ErrNotValid)
	}
	return time.Duration(f.pollIntervalSeconds) * time.Second, nil
}

// fsPath converts a local path into an os.DirFS("/") relative path.
func fsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return strings.TrimPrefix(filepath.ToSlash(abs), "/")
}
