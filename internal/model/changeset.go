package model

import (
	"fmt"
	"net/url"
)

// ChangeSetStatus is the status of a change set as reported by the remote system.
// Values are open ended, the remote system may report statuses this type doesn't know.
type ChangeSetStatus string

const (
	// ChangeSetStatusOpen is available for users to modify.
	ChangeSetStatusOpen ChangeSetStatus = "Open"
	// ChangeSetStatusNeedsApproval is planned to be applied but needs approval first.
	ChangeSetStatusNeedsApproval ChangeSetStatus = "NeedsApproval"
	// ChangeSetStatusNeedsAbandonApproval is planned to be abandoned but needs approval first.
	ChangeSetStatusNeedsAbandonApproval ChangeSetStatus = "NeedsAbandonApproval"
	// ChangeSetStatusApproved is approved by the relevant parties and ready to be applied.
	ChangeSetStatusApproved ChangeSetStatus = "Approved"
	// ChangeSetStatusApplied has been applied to its parent.
	ChangeSetStatusApplied ChangeSetStatus = "Applied"
	// ChangeSetStatusAbandoned is no longer usable.
	ChangeSetStatusAbandoned ChangeSetStatus = "Abandoned"
	// ChangeSetStatusFailed means the workspace snapshot migration for the change set failed.
	ChangeSetStatusFailed ChangeSetStatus = "Failed"
	// ChangeSetStatusRejected means the request to apply was rejected.
	ChangeSetStatusRejected ChangeSetStatus = "Rejected"
)

// Known returns true if the status is one of the statuses known by the application.
func (s ChangeSetStatus) Known() bool {
	switch s {
	case ChangeSetStatusOpen,
		ChangeSetStatusNeedsApproval,
		ChangeSetStatusNeedsAbandonApproval,
		ChangeSetStatusApproved,
		ChangeSetStatusApplied,
		ChangeSetStatusAbandoned,
		ChangeSetStatusFailed,
		ChangeSetStatusRejected:
		return true
	}
	return false
}

// Workable returns true if changes can still be made to (or applied from) a change set with this status.
func (s ChangeSetStatus) Workable() bool {
	switch s {
	case ChangeSetStatusOpen,
		ChangeSetStatusNeedsApproval,
		ChangeSetStatusNeedsAbandonApproval,
		ChangeSetStatusApproved:
		return true
	}
	return false
}

// ChangeSet is a proposed bundle of modifications to a workspace.
type ChangeSet struct {
	ID          string
	Name        string
	WorkspaceID string
	Status      ChangeSetStatus
	// Created is true when the change set was created by this application run.
	Created bool
	// WebURL is the URL to see the change set on the web application.
	WebURL string
	// APIPath is the API path prefix for every change set scoped call.
	APIPath string
}

// ChangeSetsAPIPath returns the API path of the change sets collection of a workspace.
func ChangeSetsAPIPath(workspaceID string) string {
	return fmt.Sprintf("/api/public/v0/workspaces/%s/change-sets", url.PathEscape(workspaceID))
}

// ChangeSetAPIPath returns the API path prefix of a change set.
func ChangeSetAPIPath(workspaceID, changeSetID string) string {
	return fmt.Sprintf("%s/%s", ChangeSetsAPIPath(workspaceID), url.PathEscape(changeSetID))
}

// ChangeSetWebURL returns the web application URL of a change set.
func ChangeSetWebURL(webURL, workspaceID, changeSetID string) string {
	return fmt.Sprintf("%s/w/%s/%s/c", webURL, url.PathEscape(workspaceID), url.PathEscape(changeSetID))
}

// ComponentWebURL returns the web application URL of a component attributes inside a change set.
func ComponentWebURL(changeSetWebURL, componentID string) string {
	return fmt.Sprintf("%s?s=c_%s&t=attributes", changeSetWebURL, url.QueryEscape(componentID))
}

// MergeStatus is the merge status of a change set with the actions queued by it.
// Actions are only meaningful when the change set status is applied.
type MergeStatus struct {
	ChangeSet ChangeSet
	Actions   []Action
}
