package workflow

import (
	"context"
	"time"

	"github.com/slok/csflow/internal/app/wait"
	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/storage"
)

// journal records the progress of a workflow run.
//
// Recording failures are logged and never fail the run. Writes use a context
// that outlives the run cancellation so interrupted runs are recorded as failed.
type journal struct {
	repo    storage.Repository
	logger  log.Logger
	timeNow func() time.Time
	ctx     context.Context
	run     model.Run
}

func (j *journal) changeSetResolved(cs model.ChangeSet) {
	j.run.WorkspaceID = cs.WorkspaceID
	j.run.ChangeSetID = cs.ID
	if cs.Name != "" {
		j.run.ChangeSetName = cs.Name
	}
	j.run.ChangeSetCreated = cs.Created
	j.run.LastChangeSetStatus = cs.Status
	j.updateRun()
}

func (j *journal) polled(res *wait.Result) {
	if res == nil {
		return
	}
	j.run.PollCount = res.Polls
	if res.Status != nil {
		j.run.LastChangeSetStatus = res.Status.ChangeSet.Status
	}
}

func (j *journal) stageDone(name string)    { j.updateStage(name, model.StageStatusDone, "") }
func (j *journal) stageSkipped(name string) { j.updateStage(name, model.StageStatusSkipped, "") }

func (j *journal) stageFailed(name string, err error) {
	j.updateStage(name, model.StageStatusFailed, err.Error())
}

func (j *journal) finish(err error) {
	now := j.timeNow().UTC()
	j.run.FinishedAt = &now
	j.run.Status = model.RunStatusSucceeded
	if err != nil {
		j.run.Status = model.RunStatusFailed
		j.run.Error = err.Error()
	}
	j.updateRun()
}

func (j *journal) duration() time.Duration {
	if j.run.FinishedAt == nil {
		return j.timeNow().Sub(j.run.StartedAt)
	}
	return j.run.FinishedAt.Sub(j.run.StartedAt)
}

func (j *journal) updateRun() {
	if err := j.repo.UpdateRun(j.ctx, j.run); err != nil {
		j.logger.Warningf("Could not record run %s: %s", j.run.ID, err)
	}
}

func (j *journal) updateStage(name string, status model.StageStatus, errMsg string) {
	if err := j.repo.UpdateStage(j.ctx, j.run.ID, name, status, errMsg); err != nil {
		j.logger.Warningf("Could not record run %s stage %s: %s", j.run.ID, name, err)
	}
}
