package wait

import (
	"fmt"

	"github.com/slok/csflow/internal/model"
)

// Outcome is the classification of a change set merge status observation.
type Outcome string

const (
	// OutcomeDone stops polling successfully.
	OutcomeDone Outcome = "done"
	// OutcomePending polls again after the poll interval.
	OutcomePending Outcome = "pending"
	// OutcomeFatal stops polling with an error.
	OutcomeFatal Outcome = "fatal"
)

// ClassifyOptions are the options that change how a merge status is classified.
type ClassifyOptions struct {
	// WaitForApproval keeps waiting while the change set needs approval or is approved but not applied.
	WaitForApproval bool
	// WaitForActions keeps waiting while the actions of an applied change set have not finished.
	WaitForActions bool
}

// Classify classifies the merge status of a change set. Fatal outcomes always return an error.
//
// Actions are only looked at when the change set is applied and the options ask to wait for them.
func Classify(ms model.MergeStatus, opts ClassifyOptions) (Outcome, error) {
	status := ms.ChangeSet.Status

	switch status {
	case model.ChangeSetStatusNeedsApproval,
		model.ChangeSetStatusNeedsAbandonApproval,
		model.ChangeSetStatusApproved:
		if !opts.WaitForApproval {
			return OutcomeDone, nil
		}
		return OutcomePending, nil

	case model.ChangeSetStatusApplied:
		if !opts.WaitForActions {
			return OutcomeDone, nil
		}
		return classifyActions(ms.Actions)

	case model.ChangeSetStatusAbandoned,
		model.ChangeSetStatusFailed,
		model.ChangeSetStatusRejected,
		model.ChangeSetStatusOpen:
		return OutcomeFatal, fmt.Errorf("change set status is %s: %w", status, model.ErrNoProgress)
	}

	return OutcomeFatal, fmt.Errorf("unknown change set status %q: %w", status, model.ErrUnrecognizedState)
}

func classifyActions(actions []model.Action) (Outcome, error) {
	// A failed action wins over any other state.
	for _, a := range actions {
		if a.State == model.ActionStateFailed {
			return OutcomeFatal, fmt.Errorf("%w: %s", model.ErrActionFailed, a.Detail())
		}
	}

	outcome := OutcomeDone
	for _, a := range actions {
		if !a.State.InProgress() {
			return OutcomeFatal, fmt.Errorf("unknown action %s state %q: %w", a.ID, a.State, model.ErrUnrecognizedState)
		}
		outcome = OutcomePending
	}

	return outcome, nil
}
