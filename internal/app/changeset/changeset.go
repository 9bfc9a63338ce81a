package changeset

import (
	"context"
	"fmt"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote"
)

// CreateID is the change set ID that requests the creation of a new change set.
const CreateID = "create"

// ServiceConfig is the configuration for the change set resolver service.
type ServiceConfig struct {
	API    remote.API
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.API == nil {
		return fmt.Errorf("api is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.ChangeSet"})

	return nil
}

// Service resolves the change set a workflow works on, reusing an existing one or creating a new one.
type Service struct {
	api    remote.API
	logger log.Logger
}

// NewService creates a new change set resolver service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		api:    cfg.API,
		logger: cfg.Logger,
	}, nil
}

// Request represents the change set resolve request parameters.
type Request struct {
	// WorkspaceID is the workspace of the change set, if empty the API token workspace is used.
	WorkspaceID string
	// ChangeSetID is an existing change set ID, or `create` to create a new one.
	ChangeSetID string
	// ChangeSetName is the name of the change set to create.
	ChangeSetName string
}

func (r Request) validate() error {
	if r.ChangeSetID == "" {
		return fmt.Errorf("change set id is required (use %q to create one): %w", CreateID, model.ErrNotValid)
	}

	if r.ChangeSetID == CreateID && r.ChangeSetName == "" {
		return fmt.Errorf("change set name is required to create a change set: %w", model.ErrNotValid)
	}

	return nil
}

// Resolve returns the change set identified by the request.
//
// Existing change sets are validated to be in a workable state, change sets that are already
// applied, abandoned, failed or rejected return a model.ErrPrecondition error.
func (s *Service) Resolve(ctx context.Context, req Request) (*model.ChangeSet, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	workspaceID, err := s.WorkspaceID(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	if req.ChangeSetID == CreateID {
		s.logger.Infof("Creating change set %q", req.ChangeSetName)
		cs, err := s.api.CreateChangeSet(ctx, workspaceID, req.ChangeSetName)
		if err != nil {
			return nil, fmt.Errorf("could not create change set: %w", err)
		}
		cs.Created = true

		s.logger.Infof("Created change set %q (ID: %s)", cs.Name, cs.ID)
		return cs, nil
	}

	cs, err := s.api.GetChangeSet(ctx, workspaceID, req.ChangeSetID)
	if err != nil {
		return nil, fmt.Errorf("could not get change set %s: %w", req.ChangeSetID, err)
	}

	switch {
	case !cs.Status.Known():
		return nil, fmt.Errorf("unknown change set %s status %q: %w", cs.ID, cs.Status, model.ErrUnrecognizedState)
	case !cs.Status.Workable():
		return nil, fmt.Errorf("change set %s can't be used (current status: %s): %w", cs.ID, cs.Status, model.ErrPrecondition)
	}

	s.logger.Infof("Using change set %q (ID: %s, status: %s)", cs.Name, cs.ID, cs.Status)
	return cs, nil
}

// WorkspaceID returns the workspace ID, when empty the API token owner workspace is used.
func (s *Service) WorkspaceID(ctx context.Context, workspaceID string) (string, error) {
	if workspaceID != "" {
		return workspaceID, nil
	}

	s.logger.Debugf("Getting workspace from API token")
	id, err := s.api.WhoAmI(ctx)
	if err != nil {
		return "", fmt.Errorf("could not get workspace from api token: %w", err)
	}

	if id.WorkspaceID == "" {
		return "", fmt.Errorf("api token has no workspace: %w", model.ErrNotValid)
	}

	return id.WorkspaceID, nil
}
