package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource or request is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrPrecondition is returned when a change set is not in a workable state.
	ErrPrecondition = errors.New("precondition failed")
	// ErrAmbiguousReference is returned when a name matches zero or more than one candidate.
	ErrAmbiguousReference = errors.New("ambiguous reference")
	// ErrTransientApply is returned when a force apply is blocked on dependent values not settled yet.
	ErrTransientApply = errors.New("dependent values not settled")
	// ErrRemote is returned on any remote API or transport failure.
	ErrRemote = errors.New("remote error")
	// ErrUnrecognizedState is returned when a status or action state is outside the known enumeration.
	ErrUnrecognizedState = errors.New("unrecognized state")
	// ErrNoProgress is returned when a change set status can't progress by waiting.
	ErrNoProgress = errors.New("no further progress possible")
	// ErrActionFailed is returned when an action queued by an apply failed.
	ErrActionFailed = errors.New("action failed")
)

// RemoteError is a remote API response with error semantics (non 2xx).
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	// Body is the raw response payload.
	Body string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *RemoteError) Unwrap() error { return ErrRemote }
