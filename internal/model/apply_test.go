package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/csflow/internal/model"
)

func TestParseApplyMode(t *testing.T) {
	tests := map[string]struct {
		input   string
		expMode model.ApplyMode
		expErr  bool
	}{
		"True should request approval":           {input: "true", expMode: model.ApplyModeRequest},
		"Uppercase true should request approval": {input: "TRUE", expMode: model.ApplyModeRequest},
		"False should skip":                      {input: "false", expMode: model.ApplyModeSkip},
		"Capitalized false should skip":          {input: "False", expMode: model.ApplyModeSkip},
		"Force should force apply":               {input: "force", expMode: model.ApplyModeForce},
		"Empty should skip":                      {input: "", expMode: model.ApplyModeSkip},
		"Canonical request name should be valid": {input: "request", expMode: model.ApplyModeRequest},
		"Canonical skip name should be valid":    {input: "skip", expMode: model.ApplyModeSkip},
		"Yes should fail":                        {input: "yes", expErr: true},
		"Random string should fail":              {input: "apply-please", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			mode, err := model.ParseApplyMode(test.input)

			if test.expErr {
				assert.ErrorIs(err, model.ErrNotValid)
			} else if assert.NoError(err) {
				assert.Equal(test.expMode, mode)
			}
		})
	}
}
