package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/csflow/internal/app/apply"
	"github.com/slok/csflow/internal/app/changeset"
	"github.com/slok/csflow/internal/app/mutate"
	"github.com/slok/csflow/internal/app/wait"
	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/metrics"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote"
	"github.com/slok/csflow/internal/resolve"
	"github.com/slok/csflow/internal/storage"
	"github.com/slok/csflow/internal/taskio"
)

// ServiceConfig is the configuration for the workflow service.
type ServiceConfig struct {
	API             remote.API
	Repository      storage.Repository
	Reporter        taskio.Reporter
	MetricsRecorder metrics.Recorder
	Logger          log.Logger
	// TimeNow is used to get the current time, mainly for testing.
	TimeNow func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.API == nil {
		return fmt.Errorf("api is required")
	}

	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Reporter == nil {
		c.Reporter = taskio.Noop
	}

	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Workflow"})

	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}

	return nil
}

// Service runs the full change set workflow: resolve, mutate, apply and wait.
type Service struct {
	changeSets *changeset.Service
	mutator    *mutate.Service
	applier    *apply.Service
	waiter     *wait.Service
	repo       storage.Repository
	reporter   taskio.Reporter
	metrics    metrics.Recorder
	logger     log.Logger
	timeNow    func() time.Time
}

// NewService creates a new workflow service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	changeSets, err := changeset.NewService(changeset.ServiceConfig{API: cfg.API, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create change set service: %w", err)
	}

	mutator, err := mutate.NewService(mutate.ServiceConfig{API: cfg.API, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create mutate service: %w", err)
	}

	applier, err := apply.NewService(apply.ServiceConfig{
		API:             cfg.API,
		MetricsRecorder: cfg.MetricsRecorder,
		Reporter:        cfg.Reporter,
		Logger:          cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create apply service: %w", err)
	}

	waiter, err := wait.NewService(wait.ServiceConfig{
		API:             cfg.API,
		MetricsRecorder: cfg.MetricsRecorder,
		Logger:          cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create wait service: %w", err)
	}

	return &Service{
		changeSets: changeSets,
		mutator:    mutator,
		applier:    applier,
		waiter:     waiter,
		repo:       cfg.Repository,
		reporter:   cfg.Reporter,
		metrics:    cfg.MetricsRecorder,
		logger:     cfg.Logger,
		timeNow:    cfg.TimeNow,
	}, nil
}

// Request represents the workflow run request parameters.
type Request struct {
	// WorkspaceID is the workspace of the change set, if empty the API token workspace is used.
	WorkspaceID string
	// ChangeSetID is an existing change set ID, or `create` to create a new one.
	ChangeSetID   string
	ChangeSetName string

	// Component is the component to mutate, no mutation is done when empty.
	Component                 resolve.Ref
	Properties                *model.ComponentProperties
	TriggerManagementFunction bool
	ManagementFunction        resolve.Ref
	View                      resolve.Ref

	Config Config
}

func (r Request) hasMutations() bool {
	return r.Properties != nil || r.TriggerManagementFunction
}

// Result is the result of a workflow run.
type Result struct {
	RunID     string
	ChangeSet *model.ChangeSet
	// Mutation is nil when no mutation was requested.
	Mutation *mutate.Result
	Apply    *apply.Result
	// Wait is nil when the change set was not applied.
	Wait *wait.Result
}

// Run executes the workflow recording its progress in the run journal.
//
// Every stage is executed in order and the first failure aborts the run, there is no
// rollback of the remote mutations already done. The result is returned on errors too
// with everything that was completed.
func (s *Service) Run(ctx context.Context, req Request) (res *Result, err error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	j, err := s.newJournal(ctx, req)
	if err != nil {
		return nil, err
	}
	res = &Result{RunID: j.run.ID}
	s.setOutput(taskio.OutputRunID, j.run.ID)

	logger := s.logger.WithValues(log.Kv{"run-id": j.run.ID})
	logger.Infof("Workflow run started")

	defer func() {
		j.finish(err)
		s.reporter.EndGroup()
		dur := j.duration()
		s.metrics.ObserveWorkflowRun(ctx, string(req.Config.ApplyMode), err == nil, dur)
		if err != nil {
			logger.Errorf("Workflow run failed after %s: %s", dur, err)
			return
		}
		logger.Infof("Workflow run succeeded after %s", dur)
	}()

	// Resolve.
	s.reporter.StartGroup("Resolving change set ...")
	cs, err := s.changeSets.Resolve(ctx, changeset.Request{
		WorkspaceID:   req.WorkspaceID,
		ChangeSetID:   req.ChangeSetID,
		ChangeSetName: req.ChangeSetName,
	})
	if err != nil {
		j.stageFailed(model.StageResolve, err)
		return res, fmt.Errorf("could not resolve change set: %w", err)
	}
	res.ChangeSet = cs
	j.changeSetResolved(*cs)
	s.setOutput(taskio.OutputWorkspaceID, cs.WorkspaceID)
	s.setOutput(taskio.OutputChangeSetID, cs.ID)
	s.setOutput(taskio.OutputChangeSetWebURL, cs.WebURL)
	j.stageDone(model.StageResolve)

	// Mutate.
	if req.hasMutations() {
		s.reporter.StartGroup("Mutating component ...")
		mres, err := s.mutator.Run(ctx, mutate.Request{
			ChangeSet:                 *cs,
			Component:                 req.Component,
			Properties:                req.Properties,
			TriggerManagementFunction: req.TriggerManagementFunction,
			ManagementFunction:        req.ManagementFunction,
			View:                      req.View,
		})
		if err != nil {
			j.stageFailed(model.StageMutate, err)
			return res, fmt.Errorf("could not mutate component: %w", err)
		}
		res.Mutation = mres
		s.setOutput(taskio.OutputComponentWebURL, mres.ComponentWebURL)
		if mres.ManagementFunction != nil {
			s.setOutput(taskio.OutputManagementFunctionLogs, mres.ManagementFunction.Message)
		}
		j.stageDone(model.StageMutate)
	} else {
		logger.Debugf("No component mutations requested")
		j.stageSkipped(model.StageMutate)
	}

	// Apply.
	s.reporter.StartGroup("Applying change set ...")
	ares, err := s.applier.Run(ctx, apply.Request{
		ChangeSet:     *cs,
		Mode:          req.Config.ApplyMode,
		RetryInterval: req.Config.PollInterval,
	})
	if err != nil {
		j.stageFailed(model.StageApply, err)
		return res, fmt.Errorf("could not apply change set: %w", err)
	}
	res.Apply = ares
	if !ares.Applied {
		j.stageSkipped(model.StageApply)
		j.stageSkipped(model.StageWait)
		return res, nil
	}
	j.stageDone(model.StageApply)

	// Wait.
	s.reporter.StartGroup("Waiting for change set to complete ...")
	wres, err := s.waiter.Run(ctx, wait.Request{
		ChangeSet:       *cs,
		WaitForApproval: req.Config.WaitForApproval,
		WaitForActions:  req.Config.WaitForActions,
		PollInterval:    req.Config.PollInterval,
	})
	res.Wait = wres
	j.polled(wres)
	if err != nil {
		j.stageFailed(model.StageWait, err)
		return res, fmt.Errorf("change set did not complete: %w", err)
	}
	logger.Infof("Change set is complete!")
	j.stageDone(model.StageWait)

	return res, nil
}

func (s *Service) setOutput(name, value string) {
	if err := s.reporter.SetOutput(name, value); err != nil {
		s.logger.Warningf("Could not set %q output: %s", name, err)
	}
}

func (s *Service) newJournal(ctx context.Context, req Request) (*journal, error) {
	j := &journal{
		repo:    s.repo,
		logger:  s.logger,
		timeNow: s.timeNow,
		ctx:     context.WithoutCancel(ctx),
		run: model.Run{
			ID:            ulid.Make().String(),
			WorkspaceID:   req.WorkspaceID,
			ChangeSetName: req.ChangeSetName,
			ApplyMode:     req.Config.ApplyMode,
			Status:        model.RunStatusRunning,
			StartedAt:     s.timeNow().UTC(),
		},
	}
	if req.ChangeSetID != changeset.CreateID {
		j.run.ChangeSetID = req.ChangeSetID
	}

	if err := s.repo.CreateRun(ctx, j.run); err != nil {
		return nil, fmt.Errorf("could not record run: %w", err)
	}

	err := s.repo.AddStages(ctx, j.run.ID, []string{model.StageResolve, model.StageMutate, model.StageApply, model.StageWait})
	if err != nil {
		return nil, fmt.Errorf("could not record run stages: %w", err)
	}

	return j, nil
}
