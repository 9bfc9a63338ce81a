package model

import (
	"bytes"
	"encoding/json"
)

// ActionState is the state of an action queued by an applied change set.
// Values are open ended, the remote system may report states this type doesn't know.
type ActionState string

const (
	// ActionStateQueued is available to be dispatched once all of its prerequisites have succeeded.
	ActionStateQueued ActionState = "Queued"
	// ActionStateRunning has been dispatched and started execution in the job system.
	ActionStateRunning ActionState = "Running"
	// ActionStateOnHold is queued but not eligible to run until moved to queued.
	ActionStateOnHold ActionState = "OnHold"
	// ActionStateDispatched is eligible to run and its job has been sent to the job queue.
	ActionStateDispatched ActionState = "Dispatched"
	// ActionStateFailed failed during execution.
	ActionStateFailed ActionState = "Failed"
)

// InProgress returns true if the action has not finished yet.
func (s ActionState) InProgress() bool {
	switch s {
	case ActionStateQueued, ActionStateRunning, ActionStateOnHold, ActionStateDispatched:
		return true
	}
	return false
}

// Action is a unit of work queued on the remote system as a side effect of applying a change set.
type Action struct {
	ID            string
	Name          string
	Kind          string
	State         ActionState
	ComponentID   string
	ComponentName string
	// Raw is the action as received from the remote system.
	Raw json.RawMessage
}

// Detail returns a human readable full detail of the action.
func (a Action) Detail() string {
	if len(a.Raw) > 0 {
		var b bytes.Buffer
		if err := json.Indent(&b, a.Raw, "", "  "); err == nil {
			return b.String()
		}
		return string(a.Raw)
	}

	b, _ := json.MarshalIndent(map[string]string{
		"id":            a.ID,
		"name":          a.Name,
		"kind":          a.Kind,
		"state":         string(a.State),
		"componentId":   a.ComponentID,
		"componentName": a.ComponentName,
	}, "", "  ")
	return string(b)
}
