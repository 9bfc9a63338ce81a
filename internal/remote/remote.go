package remote

import (
	"context"

	"github.com/slok/csflow/internal/model"
)

// API is the remote change management API.
type API interface {
	// WhoAmI returns the identity of the API token owner.
	WhoAmI(ctx context.Context) (*model.Identity, error)

	CreateChangeSet(ctx context.Context, workspaceID, name string) (*model.ChangeSet, error)
	GetChangeSet(ctx context.Context, workspaceID, changeSetID string) (*model.ChangeSet, error)
	// GetMergeStatus returns the change set status with the actions queued by it.
	GetMergeStatus(ctx context.Context, cs model.ChangeSet) (*model.MergeStatus, error)

	ListComponents(ctx context.Context, cs model.ChangeSet) ([]model.ComponentSummary, error)
	GetComponent(ctx context.Context, cs model.ChangeSet, componentID string) (*model.Component, error)
	SetComponentProperties(ctx context.Context, cs model.ChangeSet, componentID string, props model.ComponentProperties) error
	ExecuteManagementFunction(ctx context.Context, cs model.ChangeSet, functionID, componentID, viewID string) (*model.ManagementFunctionResult, error)

	RequestApproval(ctx context.Context, cs model.ChangeSet) error
	ForceApply(ctx context.Context, cs model.ChangeSet) error
}
