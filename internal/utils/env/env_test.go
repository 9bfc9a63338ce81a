package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/csflow/internal/utils/env"
)

func TestInputVar(t *testing.T) {
	tests := map[string]struct {
		name   string
		expVar string
	}{
		"Camel case names should be upper cased.": {name: "changeSetId", expVar: "INPUT_CHANGESETID"},
		"Spaces should be replaced.":              {name: "apply on success", expVar: "INPUT_APPLY_ON_SUCCESS"},
		"Surrounding spaces should be trimmed.":   {name: " domain ", expVar: "INPUT_DOMAIN"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expVar, env.InputVar(test.name))
		})
	}
}

func TestInput(t *testing.T) {
	t.Setenv("INPUT_WORKSPACEID", "  ws-1 \n")
	assert.Equal(t, "ws-1", env.Input("workspaceId"))
	assert.Equal(t, "", env.Input("missingInput"))
}

func TestInGitHubActions(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	assert.True(t, env.InGitHubActions())

	t.Setenv("GITHUB_ACTIONS", "")
	assert.False(t, env.InGitHubActions())
}
