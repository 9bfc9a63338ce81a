package mutate

import (
	"context"
	"fmt"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote"
	"github.com/slok/csflow/internal/resolve"
)

// ServiceConfig is the configuration for the mutate service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Mutate"})

	return nil
}

// Service mutates a component of a change set, setting its properties and/or
// triggering one of its management functions.
type Service struct {
	api    remote.API
	logger log.Logger
}

// NewService creates a new mutate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		api:    cfg.API,
		logger: cfg.Logger,
	}, nil
}

// Request represents the mutate request parameters.
type Request struct {
	ChangeSet model.ChangeSet
	// Component is the component to mutate.
	Component resolve.Ref
	// Properties are set on the component when not nil.
	Properties *model.ComponentProperties
	// TriggerManagementFunction triggers a management function on the component.
	TriggerManagementFunction bool
	// ManagementFunction is the function to trigger, if empty the only function of the component is used.
	ManagementFunction resolve.Ref
	// View is the view where the management function runs, if empty the only view of the component is used.
	View resolve.Ref
}

// Result is the result of a mutation.
type Result struct {
	ComponentID     string
	ComponentWebURL string
	// ManagementFunction is the triggered management function result, nil if none was triggered.
	ManagementFunction *model.ManagementFunctionResult
}

// Run resolves every reference of the request and then applies the mutations in order:
// first the properties, then the management function.
//
// If any reference can't be resolved to a single ID nothing is mutated.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Component.IsZero() {
		return nil, fmt.Errorf("component is required: %w", model.ErrNotValid)
	}

	componentID, err := s.resolveComponent(ctx, req.ChangeSet, req.Component)
	if err != nil {
		return nil, err
	}

	var functionID, viewID string
	if req.TriggerManagementFunction {
		functionID, viewID, err = s.resolveFunction(ctx, req.ChangeSet, componentID, req.ManagementFunction, req.View)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{
		ComponentID:     componentID,
		ComponentWebURL: model.ComponentWebURL(req.ChangeSet.WebURL, componentID),
	}

	if req.Properties != nil {
		s.logger.Infof("Setting component %s properties", componentID)
		err := s.api.SetComponentProperties(ctx, req.ChangeSet, componentID, *req.Properties)
		if err != nil {
			return nil, fmt.Errorf("could not set component %s properties: %w", componentID, err)
		}
	}

	if req.TriggerManagementFunction {
		s.logger.Infof("Triggering management function %s on component %s (view: %s)", functionID, componentID, viewID)
		fnRes, err := s.api.ExecuteManagementFunction(ctx, req.ChangeSet, functionID, componentID, viewID)
		if err != nil {
			return nil, fmt.Errorf("could not trigger management function %s: %w", functionID, err)
		}
		res.ManagementFunction = fnRes
	}

	return res, nil
}

func (s *Service) resolveComponent(ctx context.Context, cs model.ChangeSet, ref resolve.Ref) (string, error) {
	if ref.ID != "" {
		return ref.ID, nil
	}

	s.logger.Debugf("Looking up component %q", ref.Name)
	comps, err := s.api.ListComponents(ctx, cs)
	if err != nil {
		return "", fmt.Errorf("could not list components: %w", err)
	}

	id, err := resolve.ByIDOrName(ref, "component", resolve.Components(comps))
	if err != nil {
		return "", fmt.Errorf("could not resolve component: %w", err)
	}

	return id, nil
}

func (s *Service) resolveFunction(ctx context.Context, cs model.ChangeSet, componentID string, fnRef, viewRef resolve.Ref) (functionID, viewID string, err error) {
	if fnRef.ID != "" && viewRef.ID != "" {
		return fnRef.ID, viewRef.ID, nil
	}

	s.logger.Debugf("Inferring view and management function from component %s", componentID)
	comp, err := s.api.GetComponent(ctx, cs, componentID)
	if err != nil {
		return "", "", fmt.Errorf("could not get component %s: %w", componentID, err)
	}

	viewID, err = resolve.ByIDOrName(viewRef, "view", resolve.Views(comp.Views))
	if err != nil {
		return "", "", fmt.Errorf("could not resolve component %s view: %w", comp.Name, err)
	}

	functionID, err = resolve.ByIDOrName(fnRef, "management function", resolve.ManagementFunctions(comp.ManagementFunctions))
	if err != nil {
		return "", "", fmt.Errorf("could not resolve component %s management function: %w", comp.Name, err)
	}

	return functionID, viewID, nil
}
