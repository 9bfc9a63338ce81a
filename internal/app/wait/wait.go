package wait

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/metrics"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote"
	"github.com/slok/csflow/internal/utils/timeutil"
)

// DefaultPollInterval is the default wait between merge status polls.
const DefaultPollInterval = 10 * time.Second

// ServiceConfig is the configuration for the wait service.
type ServiceConfig struct {
	API             remote.API
	MetricsRecorder metrics.Recorder
	Logger          log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.API == nil {
		return fmt.Errorf("api is required")
	}

	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Wait"})

	return nil
}

// Service waits for a change set to complete.
type Service struct {
	api     remote.API
	metrics metrics.Recorder
	logger  log.Logger
}

// NewService creates a new wait service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		api:     cfg.API,
		metrics: cfg.MetricsRecorder,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the wait request parameters.
type Request struct {
	ChangeSet       model.ChangeSet
	WaitForApproval bool
	WaitForActions  bool
	PollInterval    time.Duration
}

// Result is the result of waiting for a change set.
type Result struct {
	// Status is the last observed merge status.
	Status *model.MergeStatus
	// Polls is the number of merge status polls done.
	Polls int
}

// Run polls the change set merge status until it's done or fatal.
//
// There is no retry limit or deadline, callers should cancel the context to stop waiting.
// The result is returned on errors too, if at least one poll happened.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.PollInterval <= 0 {
		req.PollInterval = DefaultPollInterval
	}
	opts := ClassifyOptions{
		WaitForApproval: req.WaitForApproval,
		WaitForActions:  req.WaitForActions,
	}

	s.logger.Infof("Waiting for change set %s to complete", req.ChangeSet.ID)

	var res *Result
	for polls := 1; ; polls++ {
		ms, err := s.api.GetMergeStatus(ctx, req.ChangeSet)
		if err != nil {
			return res, fmt.Errorf("could not get change set merge status: %w", err)
		}
		res = &Result{Status: ms, Polls: polls}

		outcome, err := Classify(*ms, opts)
		s.metrics.IncPollCycle(ctx, string(ms.ChangeSet.Status), string(outcome))
		s.logger.Debugf("Change set %s status %s (%d actions): %s", req.ChangeSet.ID, ms.ChangeSet.Status, len(ms.Actions), outcome)

		switch outcome {
		case OutcomeDone:
			s.logger.Infof("Change set %s is complete (status: %s)", req.ChangeSet.ID, ms.ChangeSet.Status)
			return res, nil
		case OutcomeFatal:
			return res, err
		}

		if err := timeutil.Sleep(ctx, req.PollInterval); err != nil {
			return res, fmt.Errorf("waiting interrupted: %w", err)
		}
	}
}
