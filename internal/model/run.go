package model

import "time"

// RunStatus is the status of a workflow run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// StageStatus is the status of a workflow run stage.
type StageStatus string

const (
	StageStatusPending StageStatus = "pending"
	StageStatusDone    StageStatus = "done"
	StageStatusFailed  StageStatus = "failed"
	StageStatusSkipped StageStatus = "skipped"
)

// Stage names of a workflow run in execution order.
const (
	StageResolve = "resolve"
	StageMutate  = "mutate"
	StageApply   = "apply"
	StageWait    = "wait"
)

// Run is a recorded workflow execution.
type Run struct {
	ID                  string
	WorkspaceID         string
	ChangeSetID         string
	ChangeSetName       string
	ChangeSetCreated    bool
	ApplyMode           ApplyMode
	Status              RunStatus
	Error               string
	LastChangeSetStatus ChangeSetStatus
	PollCount           int
	StartedAt           time.Time
	FinishedAt          *time.Time
}

// Stage is a single step of a recorded workflow run.
type Stage struct {
	ID       string
	RunID    string
	Sequence int
	Name     string
	Status   StageStatus
	Error    string
}
