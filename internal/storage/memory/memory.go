package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	runs   map[string]model.Run
	stages map[string][]model.Stage
	mu     sync.RWMutex
	logger log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		runs:   make(map[string]model.Run),
		stages: make(map[string][]model.Stage),
		logger: cfg.Logger,
	}, nil
}

// CreateRun creates a new run in the repository.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("run with id %s: %w", run.ID, model.ErrAlreadyExists)
	}

	r.runs[run.ID] = run
	r.logger.Debugf("Created run in repository: %s", run.ID)

	return nil
}

// UpdateRun updates an existing run.
func (r *Repository) UpdateRun(ctx context.Context, run model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}

	r.runs[run.ID] = run
	r.logger.Debugf("Updated run in repository: %s", run.ID)

	return nil
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
	}

	// Return a copy
	runCopy := run
	return &runCopy, nil
}

// ListRuns returns the most recent runs first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]model.Run, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// AddStages adds pending stages to a run in order.
func (r *Repository) AddStages(ctx context.Context, runID string, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, model.ErrNotFound)
	}

	for _, name := range names {
		for _, st := range r.stages[runID] {
			if st.Name == name {
				return fmt.Errorf("stage %s of run %s: %w", name, runID, model.ErrAlreadyExists)
			}
		}
	}

	seq := len(r.stages[runID])
	for i, name := range names {
		r.stages[runID] = append(r.stages[runID], model.Stage{
			ID:       ulid.Make().String(),
			RunID:    runID,
			Sequence: seq + i + 1,
			Name:     name,
			Status:   model.StageStatusPending,
		})
	}

	r.logger.Debugf("Added %d stages for run %s", len(names), runID)
	return nil
}

// UpdateStage sets the status of a run stage.
func (r *Repository) UpdateStage(ctx context.Context, runID, name string, status model.StageStatus, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stages := r.stages[runID]
	for i := range stages {
		if stages[i].Name == name {
			stages[i].Status = status
			stages[i].Error = errMsg
			return nil
		}
	}

	return fmt.Errorf("stage %s of run %s: %w", name, runID, model.ErrNotFound)
}

// ListStages returns the stages of a run in order.
func (r *Repository) ListStages(ctx context.Context, runID string) ([]model.Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stages := make([]model.Stage, len(r.stages[runID]))
	copy(stages, r.stages[runID])

	return stages, nil
}
