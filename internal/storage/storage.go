package storage

import (
	"context"

	"github.com/slok/csflow/internal/model"
)

// Repository is the interface for the workflow run journal persistence.
type Repository interface {
	CreateRun(ctx context.Context, r model.Run) error
	UpdateRun(ctx context.Context, r model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// ListRuns returns the most recent runs first, limit <= 0 returns all of them.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// AddStages adds pending stages to a run in order.
	AddStages(ctx context.Context, runID string, names []string) error
	// UpdateStage sets the status (and error message) of a run stage.
	UpdateStage(ctx context.Context, runID, name string, status model.StageStatus, errMsg string) error
	// ListStages returns the stages of a run in order.
	ListStages(ctx context.Context, runID string) ([]model.Stage, error)
}
