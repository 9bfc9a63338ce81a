package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/metrics"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote"
	"github.com/slok/csflow/internal/taskio"
	"github.com/slok/csflow/internal/utils/timeutil"
)

// unsettledDVUMarker is present on force apply error payloads when the dependent
// value update roots of the change set have not been processed yet.
const unsettledDVUMarker = "dvu roots"

// DefaultRetryInterval is the default wait between force apply retries.
const DefaultRetryInterval = 10 * time.Second

// ServiceConfig is the configuration for the apply service.
type ServiceConfig struct {
	API             remote.API
	MetricsRecorder metrics.Recorder
	// Reporter receives the task runner warnings.
	Reporter taskio.Reporter
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.API == nil {
		return fmt.Errorf("api is required")
	}

	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}

	if c.Reporter == nil {
		c.Reporter = taskio.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Apply"})

	return nil
}

// Service moves a change set towards being applied.
type Service struct {
	api      remote.API
	metrics  metrics.Recorder
	reporter taskio.Reporter
	logger   log.Logger
}

// NewService creates a new apply service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		api:      cfg.API,
		metrics:  cfg.MetricsRecorder,
		reporter: cfg.Reporter,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the apply request parameters.
type Request struct {
	ChangeSet model.ChangeSet
	Mode      model.ApplyMode
	// RetryInterval is the wait between force apply retries.
	RetryInterval time.Duration
}

// Result is the result of an apply.
type Result struct {
	// Applied is true when the change set was requested to be applied or force applied.
	Applied bool
	// Retries is the number of force apply retries done.
	Retries int
}

// Run applies the change set based on the request apply mode.
//
// Force apply is retried forever while the remote rejects it because the dependent values
// are not settled yet, any other error is returned immediately.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.RetryInterval <= 0 {
		req.RetryInterval = DefaultRetryInterval
	}

	switch req.Mode {
	case model.ApplyModeSkip, "":
		s.logger.Infof("Not applying change set %s", req.ChangeSet.ID)
		return &Result{Applied: false}, nil

	case model.ApplyModeRequest:
		s.logger.Infof("Requesting approval to apply change set %s", req.ChangeSet.ID)
		if err := s.api.RequestApproval(ctx, req.ChangeSet); err != nil {
			return nil, fmt.Errorf("could not request change set approval: %w", err)
		}
		return &Result{Applied: true}, nil

	case model.ApplyModeForce:
		s.logger.Infof("Force applying change set %s", req.ChangeSet.ID)
		retries := 0
		for {
			err := s.api.ForceApply(ctx, req.ChangeSet)
			if err == nil {
				break
			}

			if !isUnsettledDVU(err) {
				return nil, fmt.Errorf("could not force apply change set: %w", err)
			}

			retries++
			s.metrics.IncForceApplyRetry(ctx)
			s.reporter.Warning("DVUs not complete. Waiting ...")
			s.logger.Warningf("DVUs not complete, waiting %s before retrying force apply: %s", req.RetryInterval, fmt.Errorf("%w: %w", model.ErrTransientApply, err))

			if err := timeutil.Sleep(ctx, req.RetryInterval); err != nil {
				return nil, fmt.Errorf("force apply retry interrupted: %w", err)
			}
		}

		s.logger.Infof("Change set %s force applied", req.ChangeSet.ID)
		return &Result{Applied: true, Retries: retries}, nil
	}

	return nil, fmt.Errorf("unknown apply mode %q: %w", req.Mode, model.ErrNotValid)
}

func isUnsettledDVU(err error) bool {
	var rerr *model.RemoteError
	if !errors.As(err, &rerr) {
		return false
	}

	return strings.Contains(rerr.Body, unsettledDVUMarker)
}
