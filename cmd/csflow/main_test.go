package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSI is a minimal System Initiative API that creates a change set and
// applies it without actions.
type fakeSI struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeSI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer t0k3n" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	const csPath = "/api/public/v0/workspaces/ws1/change-sets"
	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "GET /api/whoami":
		_, _ = io.WriteString(w, `{"userId":"u1","userEmail":"ops@example.com","workspaceId":"ws1"}`)
	case "POST " + csPath:
		_, _ = io.WriteString(w, `{"changeSet":{"id":"cs-new","name":"nightly-run","status":"Open"}}`)
	case "PUT " + csPath + "/cs-new/components/c1/properties":
		_, _ = io.WriteString(w, `{}`)
	case "POST " + csPath + "/cs-new/force_apply":
		_, _ = io.WriteString(w, `{}`)
	case "GET " + csPath + "/cs-new/merge_status":
		_, _ = io.WriteString(w, `{"changeSet":{"id":"cs-new","status":"Applied"},"actions":[]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
	}
}

func (f *fakeSI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.requests...)
}

func cleanTaskEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_ACTIONS", "false")
	t.Setenv("GITHUB_OUTPUT", "")
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "INPUT_") || strings.HasPrefix(name, "CSFLOW_") {
			t.Setenv(name, "")
		}
	}
}

func TestRunWorkflowCommand(t *testing.T) {
	cleanTaskEnv(t)

	si := &fakeSI{}
	srv := httptest.NewServer(si)
	defer srv.Close()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "csflow.db")
	outputPath := filepath.Join(dir, "outputs")
	metricsPath := filepath.Join(dir, "metrics", "csflow.prom")

	var stdout, stderr bytes.Buffer
	err := Run(context.TODO(), []string{
		"csflow", "--no-log",
		"--api-url", srv.URL,
		"--api-token", "t0k3n",
		"--web-url", "https://app.example.com/",
		"--db-path", dbPath,
		"--github-output", outputPath,
		"--metrics-textfile", metricsPath,
		"run",
		"--change-set-id", "create",
		"--change-set-name", "nightly-run",
		"--component-id", "c1",
		"--domain", "region: us-east-1",
		"--apply-on-success", "force",
		"--poll-interval-seconds", "1",
	}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)

	// The created change set ID is used on every following request.
	assert.Equal(t, []string{
		"GET /api/whoami",
		"POST /api/public/v0/workspaces/ws1/change-sets",
		"PUT /api/public/v0/workspaces/ws1/change-sets/cs-new/components/c1/properties",
		"POST /api/public/v0/workspaces/ws1/change-sets/cs-new/force_apply",
		"GET /api/public/v0/workspaces/ws1/change-sets/cs-new/merge_status",
	}, si.Requests())

	outputs, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(outputs), "\nws1\n")
	assert.Contains(t, string(outputs), "\ncs-new\n")
	assert.Contains(t, string(outputs), "\nhttps://app.example.com/w/ws1/cs-new/c\n")
	assert.Contains(t, string(outputs), "\nhttps://app.example.com/w/ws1/cs-new/c?s=c_c1&t=attributes\n")
	assert.Empty(t, stdout.String())

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "csflow_")

	// The run is on the history.
	stdout.Reset()
	err = Run(context.TODO(), []string{"csflow", "--db-path", dbPath, "history", "list", "--format", "json"}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)

	var runs []map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "cs-new", runs[0]["change_set_id"])
	assert.Equal(t, "nightly-run", runs[0]["change_set_name"])
	assert.Equal(t, "force", runs[0]["apply_mode"])
	assert.Equal(t, "succeeded", runs[0]["status"])
}

func TestRunInputDefaults(t *testing.T) {
	tests := map[string]struct {
		env     map[string]string
		args    []string
		expOut  string
		expErr  bool
		expReqs []string
	}{
		"Task runner inputs should be used as flag defaults.": {
			env: map[string]string{
				"INPUT_APITOKEN": "t0k3n",
			},
			args:    []string{"whoami"},
			expOut:  "userId=u1\nuserEmail=ops@example.com\nworkspaceId=ws1\n",
			expReqs: []string{"GET /api/whoami"},
		},

		"Flags should override task runner inputs.": {
			env: map[string]string{
				"INPUT_APITOKEN": "wrong",
			},
			args:    []string{"--api-token", "t0k3n", "whoami"},
			expOut:  "userId=u1\nuserEmail=ops@example.com\nworkspaceId=ws1\n",
			expReqs: []string{"GET /api/whoami"},
		},

		"A missing token should fail without calling the API.": {
			args:    []string{"whoami"},
			expErr:  true,
			expReqs: []string{},
		},

		"Invalid apply modes should fail without calling the API.": {
			env: map[string]string{
				"INPUT_APITOKEN": "t0k3n",
			},
			args:    []string{"--no-history", "run", "--change-set-id", "cs-1", "--apply-on-success", "maybe"},
			expErr:  true,
			expReqs: []string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cleanTaskEnv(t)
			for k, v := range test.env {
				t.Setenv(k, v)
			}

			si := &fakeSI{}
			srv := httptest.NewServer(si)
			defer srv.Close()

			args := append([]string{"csflow", "--no-log", "--api-url", srv.URL, "--db-path", filepath.Join(t.TempDir(), "csflow.db")}, test.args...)

			var stdout, stderr bytes.Buffer
			err := Run(context.TODO(), args, strings.NewReader(""), &stdout, &stderr)

			if test.expErr {
				assert.Error(t, err)
			} else if assert.NoError(t, err) {
				assert.Equal(t, test.expOut, stdout.String())
			}
			assert.Equal(t, test.expReqs, append([]string{}, si.Requests()...))
		})
	}
}
