package siapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote/siapi"
)

// newTestAPI creates an API backed by an httptest server.
func newTestAPI(t *testing.T, h http.Handler) *siapi.API {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := siapi.NewClient(siapi.ClientConfig{
		APIURL: srv.URL + "/",
		Token:  "test-token",
	})
	require.NoError(t, err)

	api, err := siapi.NewAPI(siapi.APIConfig{
		Client: client,
		WebURL: "https://web.test",
	})
	require.NoError(t, err)

	return api
}

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

func recordingHandler(reqs *[]recordedRequest, routes map[string]func(w http.ResponseWriter)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*reqs = append(*reqs, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})

		route, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		route(w)
	})
}

func writeJSON(v any) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func testChangeSet() model.ChangeSet {
	return model.ChangeSet{
		ID:          "cs1",
		WorkspaceID: "ws1",
		APIPath:     model.ChangeSetAPIPath("ws1", "cs1"),
	}
}

func TestNewClient(t *testing.T) {
	tests := map[string]struct {
		config siapi.ClientConfig
		expErr bool
	}{
		"Valid config should create the client.": {
			config: siapi.ClientConfig{Token: "t"},
		},
		"Missing token should fail.": {
			config: siapi.ClientConfig{APIURL: "https://x"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := siapi.NewClient(test.config)
			if test.expErr {
				assert.Error(t, err)
				assert.Nil(t, c)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, c)
			}
		})
	}
}

func TestAPIWhoAmI(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var reqs []recordedRequest
	api := newTestAPI(t, recordingHandler(&reqs, map[string]func(w http.ResponseWriter){
		"GET /api/whoami": writeJSON(map[string]string{"userId": "u1", "userEmail": "u1@test", "workspaceId": "ws1"}),
	}))

	id, err := api.WhoAmI(context.Background())
	require.NoError(err)

	assert.Equal(&model.Identity{UserID: "u1", UserEmail: "u1@test", WorkspaceID: "ws1"}, id)
	require.Len(reqs, 1)
	assert.Equal("Bearer test-token", reqs[0].Auth)
}

func TestAPICreateChangeSet(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var reqs []recordedRequest
	api := newTestAPI(t, recordingHandler(&reqs, map[string]func(w http.ResponseWriter){
		"POST /api/public/v0/workspaces/ws1/change-sets": writeJSON(map[string]any{
			"changeSet": map[string]string{"id": "cs-new", "status": "Open"},
		}),
	}))

	cs, err := api.CreateChangeSet(context.Background(), "ws1", "nightly-run")
	require.NoError(err)

	exp := &model.ChangeSet{
		ID:          "cs-new",
		Name:        "nightly-run",
		WorkspaceID: "ws1",
		Status:      model.ChangeSetStatusOpen,
		WebURL:      "https://web.test/w/ws1/cs-new/c",
		APIPath:     "/api/public/v0/workspaces/ws1/change-sets/cs-new",
	}
	assert.Equal(exp, cs)
	require.Len(reqs, 1)
	assert.JSONEq(`{"changeSetName":"nightly-run"}`, reqs[0].Body)
}

func TestAPIGetMergeStatus(t *testing.T) {
	tests := map[string]struct {
		handler   func(w http.ResponseWriter)
		expStatus *model.MergeStatus
		expErr    error
	}{
		"Merge status with actions should be decoded.": {
			handler: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{
					"changeSet": {"id": "cs1", "status": "Applied"},
					"actions": [
						{"id": "a1", "state": "Queued", "kind": "Create", "name": "create", "component": {"id": "c1", "name": "vpc"}},
						{"id": "a2", "state": "Failed"}
					]
				}`))
			},
			expStatus: &model.MergeStatus{
				ChangeSet: model.ChangeSet{
					ID:          "cs1",
					WorkspaceID: "ws1",
					Status:      model.ChangeSetStatusApplied,
					APIPath:     model.ChangeSetAPIPath("ws1", "cs1"),
				},
				Actions: []model.Action{
					{
						ID:            "a1",
						Name:          "create",
						Kind:          "Create",
						State:         model.ActionStateQueued,
						ComponentID:   "c1",
						ComponentName: "vpc",
						Raw:           json.RawMessage(`{"id": "a1", "state": "Queued", "kind": "Create", "name": "create", "component": {"id": "c1", "name": "vpc"}}`),
					},
					{
						ID:    "a2",
						State: model.ActionStateFailed,
						Raw:   json.RawMessage(`{"id": "a2", "state": "Failed"}`),
					},
				},
			},
		},

		"Actions with unexpected fields should be decoded as best as possible.": {
			handler: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"changeSet": {"status": "Applied"}, "actions": [{"id": "a1", "state": "Running", "name": 42, "component": "c1"}]}`))
			},
			expStatus: &model.MergeStatus{
				ChangeSet: model.ChangeSet{
					ID:          "cs1",
					WorkspaceID: "ws1",
					Status:      model.ChangeSetStatusApplied,
					APIPath:     model.ChangeSetAPIPath("ws1", "cs1"),
				},
				Actions: []model.Action{
					{
						ID:    "a1",
						State: model.ActionStateRunning,
						Raw:   json.RawMessage(`{"id": "a1", "state": "Running", "name": 42, "component": "c1"}`),
					},
				},
			},
		},

		"An action with an invalid state should be a remote error.": {
			handler: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"changeSet": {"status": "Applied"}, "actions": [{"id": "a1", "state": 3}]}`))
			},
			expErr: model.ErrRemote,
		},

		"Unknown statuses should be kept verbatim.": {
			handler: writeJSON(map[string]any{"changeSet": map[string]string{"status": "Merging"}}),
			expStatus: &model.MergeStatus{
				ChangeSet: model.ChangeSet{
					ID:          "cs1",
					WorkspaceID: "ws1",
					Status:      "Merging",
					APIPath:     model.ChangeSetAPIPath("ws1", "cs1"),
				},
				Actions: []model.Action{},
			},
		},

		"A server error should be a remote error.": {
			handler: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`internal`))
			},
			expErr: model.ErrRemote,
		},

		"An invalid body should be a remote error.": {
			handler: func(w http.ResponseWriter) { _, _ = w.Write([]byte(`{"changeSet": [`)) },
			expErr:  model.ErrRemote,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var reqs []recordedRequest
			api := newTestAPI(t, recordingHandler(&reqs, map[string]func(w http.ResponseWriter){
				"GET /api/public/v0/workspaces/ws1/change-sets/cs1/merge_status": test.handler,
			}))

			status, err := api.GetMergeStatus(context.Background(), testChangeSet())

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal(test.expStatus, status)
			}
		})
	}
}

func TestAPIGetComponent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var reqs []recordedRequest
	api := newTestAPI(t, recordingHandler(&reqs, map[string]func(w http.ResponseWriter){
		"GET /api/public/v0/workspaces/ws1/change-sets/cs1/components/c1": writeJSON(map[string]any{
			"component":           map[string]string{"id": "c1", "displayName": "my-vpc"},
			"viewData":            []map[string]string{{"viewId": "v1", "name": "default"}},
			"managementFunctions": []map[string]string{{"managementPrototypeId": "f1", "name": "import"}},
		}),
	}))

	c, err := api.GetComponent(context.Background(), testChangeSet(), "c1")
	require.NoError(err)

	exp := &model.Component{
		ID:                  "c1",
		Name:                "my-vpc",
		Views:               []model.View{{ID: "v1", Name: "default"}},
		ManagementFunctions: []model.ManagementFunction{{ID: "f1", Name: "import"}},
	}
	assert.Equal(exp, c)
}

func TestAPIMutations(t *testing.T) {
	tests := map[string]struct {
		call       func(api *siapi.API) error
		expMethod  string
		expPath    string
		expBody    string
		statusCode int
		respBody   string
		expErr     bool
		expStatus  int
	}{
		"Set properties should put the domain.": {
			call: func(api *siapi.API) error {
				return api.SetComponentProperties(context.Background(), testChangeSet(), "c1", model.ComponentProperties{
					Domain: map[string]any{"region": "us-east-1"},
				})
			},
			expMethod: http.MethodPut,
			expPath:   "/api/public/v0/workspaces/ws1/change-sets/cs1/components/c1/properties",
			expBody:   `{"domain":{"region":"us-east-1"}}`,
		},

		"Management function should be executed on the component and view.": {
			call: func(api *siapi.API) error {
				res, err := api.ExecuteManagementFunction(context.Background(), testChangeSet(), "f1", "c1", "v1")
				if err != nil {
					return err
				}
				if res.Message != "imported 3 resources" {
					return errors.New("unexpected message")
				}
				return nil
			},
			expMethod: http.MethodPost,
			expPath:   "/api/public/v0/workspaces/ws1/change-sets/cs1/management/prototype/f1/c1/v1",
			expBody:   `{}`,
			respBody:  `{"message": "imported 3 resources"}`,
		},

		"Request approval should post on the change set.": {
			call: func(api *siapi.API) error {
				return api.RequestApproval(context.Background(), testChangeSet())
			},
			expMethod: http.MethodPost,
			expPath:   "/api/public/v0/workspaces/ws1/change-sets/cs1/request_approval",
			expBody:   `{}`,
		},

		"Force apply errors should keep the response payload.": {
			call: func(api *siapi.API) error {
				return api.ForceApply(context.Background(), testChangeSet())
			},
			expMethod:  http.MethodPost,
			expPath:    "/api/public/v0/workspaces/ws1/change-sets/cs1/force_apply",
			statusCode: http.StatusConflict,
			respBody:   `waiting for dvu roots to be processed`,
			expErr:     true,
			expStatus:  http.StatusConflict,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			var got recordedRequest
			api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				got = recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)}
				if test.statusCode != 0 {
					w.WriteHeader(test.statusCode)
				}
				_, _ = w.Write([]byte(test.respBody))
			}))

			err := test.call(api)

			if test.expErr {
				var rerr *model.RemoteError
				require.True(errors.As(err, &rerr))
				assert.Equal(test.expStatus, rerr.StatusCode)
				assert.Equal(test.respBody, rerr.Body)
			} else {
				require.NoError(err)
			}

			assert.Equal(test.expMethod, got.Method)
			assert.Equal(test.expPath, got.Path)
			if test.expBody != "" {
				assert.JSONEq(test.expBody, got.Body)
			}
		})
	}
}

func TestAPIEscapesIDs(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var paths []string
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{}`))
	}))

	cs := model.ChangeSet{ID: "cs/1", WorkspaceID: "ws?1", APIPath: model.ChangeSetAPIPath("ws?1", "cs/1")}
	ctx := context.Background()

	require.NoError(api.SetComponentProperties(ctx, cs, "c/1", model.ComponentProperties{Domain: map[string]any{}}))
	_, err := api.ExecuteManagementFunction(ctx, cs, "f?1", "c/1", "v#1")
	require.NoError(err)
	_, err = api.GetComponent(ctx, cs, "c/1")
	require.NoError(err)

	assert.Equal([]string{
		"/api/public/v0/workspaces/ws%3F1/change-sets/cs%2F1/components/c%2F1/properties",
		"/api/public/v0/workspaces/ws%3F1/change-sets/cs%2F1/management/prototype/f%3F1/c%2F1/v%231",
		"/api/public/v0/workspaces/ws%3F1/change-sets/cs%2F1/components/c%2F1",
	}, paths)
}
