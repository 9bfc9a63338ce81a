package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/storage"
	"github.com/slok/csflow/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	version, err := migrator.Up(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s (schema version %d)", cfg.DBPath, version)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const runColumns = `
	id, workspace_id, change_set_id, change_set_name, change_set_created,
	apply_mode, status, error, last_change_set_status, poll_count,
	started_at, finished_at
`

// CreateRun creates a new run in the repository.
func (r *Repository) CreateRun(ctx context.Context, run model.Run) error {
	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.WorkspaceID,
		run.ChangeSetID,
		run.ChangeSetName,
		boolToInt(run.ChangeSetCreated),
		run.ApplyMode,
		run.Status,
		run.Error,
		run.LastChangeSetStatus,
		run.PollCount,
		run.StartedAt.UnixMilli(),
		timeToNullInt(run.FinishedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.") {
			return fmt.Errorf("run already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert run: %w", err)
	}

	r.logger.Debugf("Created run in repository: %s", run.ID)
	return nil
}

// UpdateRun updates an existing run.
func (r *Repository) UpdateRun(ctx context.Context, run model.Run) error {
	query := `
		UPDATE runs SET
			workspace_id = ?, change_set_id = ?, change_set_name = ?, change_set_created = ?,
			apply_mode = ?, status = ?, error = ?, last_change_set_status = ?, poll_count = ?,
			started_at = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		run.WorkspaceID,
		run.ChangeSetID,
		run.ChangeSetName,
		boolToInt(run.ChangeSetCreated),
		run.ApplyMode,
		run.Status,
		run.Error,
		run.LastChangeSetStatus,
		run.PollCount,
		run.StartedAt.UnixMilli(),
		timeToNullInt(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated run in repository: %s", run.ID)
	return nil
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate runs: %w", err)
	}

	return runs, nil
}

// AddStages adds pending stages to a run in order.
func (r *Repository) AddStages(ctx context.Context, runID string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Get the current max sequence for this run.
	var maxSeq int
	query := `SELECT COALESCE(MAX(sequence), 0) FROM stages WHERE run_id = ?`
	if err := tx.QueryRowContext(ctx, query, runID).Scan(&maxSeq); err != nil {
		return fmt.Errorf("could not get max sequence: %w", err)
	}

	insertQuery := `INSERT INTO stages (id, run_id, sequence, name, status, error) VALUES (?, ?, ?, ?, ?, '')`
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, name := range names {
		_, err := stmt.ExecContext(ctx, ulid.Make().String(), runID, maxSeq+i+1, name, model.StageStatusPending)
		if err != nil {
			if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
				return fmt.Errorf("run %s: %w", runID, model.ErrNotFound)
			}
			if strings.Contains(err.Error(), "UNIQUE constraint failed: stages.") {
				return fmt.Errorf("stage %s of run %s: %w", name, runID, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert stage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Added %d stages for run %s", len(names), runID)
	return nil
}

// UpdateStage sets the status of a run stage.
func (r *Repository) UpdateStage(ctx context.Context, runID, name string, status model.StageStatus, errMsg string) error {
	query := `UPDATE stages SET status = ?, error = ? WHERE run_id = ? AND name = ?`

	result, err := r.db.ExecContext(ctx, query, status, errMsg, runID, name)
	if err != nil {
		return fmt.Errorf("could not update stage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("stage %s of run %s: %w", name, runID, model.ErrNotFound)
	}

	return nil
}

// ListStages returns the stages of a run in order.
func (r *Repository) ListStages(ctx context.Context, runID string) ([]model.Stage, error) {
	query := `SELECT id, run_id, sequence, name, status, error FROM stages WHERE run_id = ? ORDER BY sequence ASC`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("could not list stages: %w", err)
	}
	defer rows.Close()

	stages := []model.Stage{}
	for rows.Next() {
		var s model.Stage
		if err := rows.Scan(&s.ID, &s.RunID, &s.Sequence, &s.Name, &s.Status, &s.Error); err != nil {
			return nil, fmt.Errorf("could not scan stage: %w", err)
		}
		stages = append(stages, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate stages: %w", err)
	}

	return stages, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.Run, error) {
	var (
		run        model.Run
		created    int
		startedAt  int64
		finishedAt sql.NullInt64
	)

	err := s.Scan(
		&run.ID,
		&run.WorkspaceID,
		&run.ChangeSetID,
		&run.ChangeSetName,
		&created,
		&run.ApplyMode,
		&run.Status,
		&run.Error,
		&run.LastChangeSetStatus,
		&run.PollCount,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.ChangeSetCreated = created != 0
	run.StartedAt = time.UnixMilli(startedAt).UTC()
	if finishedAt.Valid {
		t := time.UnixMilli(finishedAt.Int64).UTC()
		run.FinishedAt = &t
	}

	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeToNullInt(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.UnixMilli()
	return &u
}
