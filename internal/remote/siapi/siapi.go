package siapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote"
)

// APIConfig is the configuration of the System Initiative public API.
type APIConfig struct {
	Client *Client
	// WebURL is the base URL of the web application, used to build the web URLs.
	// Defaults to the API URL.
	WebURL string
}

func (c *APIConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("client is required")
	}

	if c.WebURL == "" {
		c.WebURL = c.Client.apiURL
	}
	c.WebURL = strings.TrimSuffix(c.WebURL, "/")

	return nil
}

// API implements remote.API using the System Initiative public HTTP API.
type API struct {
	client *Client
	webURL string
}

var _ remote.API = &API{}

// NewAPI returns a new API.
func NewAPI(cfg APIConfig) (*API, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &API{
		client: cfg.Client,
		webURL: cfg.WebURL,
	}, nil
}

// --- JSON wire types ---

type whoAmIJSON struct {
	UserID      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	WorkspaceID string `json:"workspaceId"`
}

type changeSetJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type changeSetResponseJSON struct {
	ChangeSet changeSetJSON `json:"changeSet"`
}

type createChangeSetRequestJSON struct {
	ChangeSetName string `json:"changeSetName"`
}

type actionJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	State     string `json:"state"`
	Component *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"component"`
}

type mergeStatusJSON struct {
	ChangeSet changeSetJSON     `json:"changeSet"`
	Actions   []json.RawMessage `json:"actions"`
}

type componentSummaryJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listComponentsJSON struct {
	Components []componentSummaryJSON `json:"components"`
}

type componentJSON struct {
	Component struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"component"`
	ViewData []struct {
		ViewID string `json:"viewId"`
		Name   string `json:"name"`
	} `json:"viewData"`
	ManagementFunctions []struct {
		ManagementPrototypeID string `json:"managementPrototypeId"`
		Name                  string `json:"name"`
	} `json:"managementFunctions"`
}

type setPropertiesRequestJSON struct {
	Domain map[string]any `json:"domain"`
}

type managementFunctionJSON struct {
	Message string `json:"message"`
}

func (a *API) changeSetToModel(workspaceID string, cs changeSetJSON) *model.ChangeSet {
	return &model.ChangeSet{
		ID:          cs.ID,
		Name:        cs.Name,
		WorkspaceID: workspaceID,
		Status:      model.ChangeSetStatus(cs.Status),
		WebURL:      model.ChangeSetWebURL(a.webURL, workspaceID, cs.ID),
		APIPath:     model.ChangeSetAPIPath(workspaceID, cs.ID),
	}
}

func actionToModel(raw json.RawMessage) (model.Action, error) {
	var state struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.Action{}, fmt.Errorf("could not decode action state: %w", err)
	}

	// Only the state drives the polling, the rest is informative.
	var a actionJSON
	_ = json.Unmarshal(raw, &a)

	action := model.Action{
		ID:    a.ID,
		Name:  a.Name,
		Kind:  a.Kind,
		State: model.ActionState(state.State),
		Raw:   raw,
	}
	if a.Component != nil {
		action.ComponentID = a.Component.ID
		action.ComponentName = a.Component.Name
	}

	return action, nil
}

// --- remote.API implementation ---

func (a *API) WhoAmI(ctx context.Context) (*model.Identity, error) {
	var resp whoAmIJSON
	if err := a.client.Get(ctx, "/api/whoami", &resp); err != nil {
		return nil, err
	}

	return &model.Identity{
		UserID:      resp.UserID,
		UserEmail:   resp.UserEmail,
		WorkspaceID: resp.WorkspaceID,
	}, nil
}

func (a *API) CreateChangeSet(ctx context.Context, workspaceID, name string) (*model.ChangeSet, error) {
	var resp changeSetResponseJSON
	err := a.client.Post(ctx, model.ChangeSetsAPIPath(workspaceID), createChangeSetRequestJSON{ChangeSetName: name}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.ChangeSet.ID == "" {
		return nil, fmt.Errorf("created change set has no id: %w", model.ErrRemote)
	}

	cs := a.changeSetToModel(workspaceID, resp.ChangeSet)
	if cs.Name == "" {
		cs.Name = name
	}

	return cs, nil
}

func (a *API) GetChangeSet(ctx context.Context, workspaceID, changeSetID string) (*model.ChangeSet, error) {
	var resp changeSetResponseJSON
	if err := a.client.Get(ctx, model.ChangeSetAPIPath(workspaceID, changeSetID), &resp); err != nil {
		return nil, err
	}

	// Some responses omit the ID, we already know it.
	if resp.ChangeSet.ID == "" {
		resp.ChangeSet.ID = changeSetID
	}

	return a.changeSetToModel(workspaceID, resp.ChangeSet), nil
}

func (a *API) GetMergeStatus(ctx context.Context, cs model.ChangeSet) (*model.MergeStatus, error) {
	var resp mergeStatusJSON
	if err := a.client.Get(ctx, cs.APIPath+"/merge_status", &resp); err != nil {
		return nil, err
	}

	status := cs
	status.Status = model.ChangeSetStatus(resp.ChangeSet.Status)

	actions := make([]model.Action, 0, len(resp.Actions))
	for _, raw := range resp.Actions {
		action, err := actionToModel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid merge status: %w: %w", model.ErrRemote, err)
		}
		actions = append(actions, action)
	}

	return &model.MergeStatus{
		ChangeSet: status,
		Actions:   actions,
	}, nil
}

func (a *API) ListComponents(ctx context.Context, cs model.ChangeSet) ([]model.ComponentSummary, error) {
	var resp listComponentsJSON
	if err := a.client.Get(ctx, cs.APIPath+"/components", &resp); err != nil {
		return nil, err
	}

	components := make([]model.ComponentSummary, 0, len(resp.Components))
	for _, c := range resp.Components {
		components = append(components, model.ComponentSummary{ID: c.ID, Name: c.Name})
	}

	return components, nil
}

func (a *API) GetComponent(ctx context.Context, cs model.ChangeSet, componentID string) (*model.Component, error) {
	var resp componentJSON
	if err := a.client.Get(ctx, fmt.Sprintf("%s/components/%s", cs.APIPath, url.PathEscape(componentID)), &resp); err != nil {
		return nil, err
	}

	c := &model.Component{
		ID:   resp.Component.ID,
		Name: resp.Component.DisplayName,
	}
	if c.ID == "" {
		c.ID = componentID
	}
	for _, v := range resp.ViewData {
		c.Views = append(c.Views, model.View{ID: v.ViewID, Name: v.Name})
	}
	for _, f := range resp.ManagementFunctions {
		c.ManagementFunctions = append(c.ManagementFunctions, model.ManagementFunction{ID: f.ManagementPrototypeID, Name: f.Name})
	}

	return c, nil
}

func (a *API) SetComponentProperties(ctx context.Context, cs model.ChangeSet, componentID string, props model.ComponentProperties) error {
	path := fmt.Sprintf("%s/components/%s/properties", cs.APIPath, url.PathEscape(componentID))
	return a.client.Put(ctx, path, setPropertiesRequestJSON{Domain: props.Domain}, nil)
}

func (a *API) ExecuteManagementFunction(ctx context.Context, cs model.ChangeSet, functionID, componentID, viewID string) (*model.ManagementFunctionResult, error) {
	path := fmt.Sprintf("%s/management/prototype/%s/%s/%s", cs.APIPath, url.PathEscape(functionID), url.PathEscape(componentID), url.PathEscape(viewID))

	var resp managementFunctionJSON
	if err := a.client.Post(ctx, path, struct{}{}, &resp); err != nil {
		return nil, err
	}

	return &model.ManagementFunctionResult{Message: resp.Message}, nil
}

func (a *API) RequestApproval(ctx context.Context, cs model.ChangeSet) error {
	return a.client.Post(ctx, cs.APIPath+"/request_approval", struct{}{}, nil)
}

func (a *API) ForceApply(ctx context.Context, cs model.ChangeSet) error {
	return a.client.Post(ctx, cs.APIPath+"/force_apply", nil, nil)
}
