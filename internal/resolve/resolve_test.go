package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/resolve"
)

func TestByIDOrName(t *testing.T) {
	candidates := []resolve.Candidate{
		{ID: "v1", Name: "default"},
		{ID: "v2", Name: "networking"},
		{ID: "v3", Name: "networking"},
	}

	tests := map[string]struct {
		ref        resolve.Ref
		candidates []resolve.Candidate
		expID      string
		expErr     bool
		expErrMsg  string
	}{
		"An ID should be used directly without looking at candidates.": {
			ref:   resolve.Ref{ID: "v9", Name: "default"},
			expID: "v9",
		},

		"A single name match should return its ID.": {
			ref:        resolve.Ref{Name: "default"},
			candidates: candidates,
			expID:      "v1",
		},

		"Multiple name matches should fail naming the matches.": {
			ref:        resolve.Ref{Name: "networking"},
			candidates: candidates,
			expErr:     true,
			expErrMsg:  `multiple views named "networking" found, pick one by ID or name (matches: networking (v2), networking (v3)): ambiguous reference`,
		},

		"No name match should fail naming the candidates.": {
			ref:        resolve.Ref{Name: "storage"},
			candidates: candidates[:2],
			expErr:     true,
			expErrMsg:  `no view named "storage" found (candidates: default (v1), networking (v2)): ambiguous reference`,
		},

		"An empty reference with a single candidate should pick it.": {
			ref:        resolve.Ref{},
			candidates: candidates[:1],
			expID:      "v1",
		},

		"An empty reference with multiple candidates should fail.": {
			ref:        resolve.Ref{},
			candidates: candidates,
			expErr:     true,
		},

		"An empty reference without candidates should fail.": {
			ref:       resolve.Ref{},
			expErr:    true,
			expErrMsg: `no view found (candidates: none): ambiguous reference`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			id, err := resolve.ByIDOrName(test.ref, "view", test.candidates)

			if test.expErr {
				assert.ErrorIs(err, model.ErrAmbiguousReference)
				if test.expErrMsg != "" {
					assert.EqualError(err, test.expErrMsg)
				}
			} else if assert.NoError(err) {
				assert.Equal(test.expID, id)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]resolve.Candidate{{ID: "v1", Name: "a"}}, resolve.Views([]model.View{{ID: "v1", Name: "a"}}))
	assert.Equal([]resolve.Candidate{{ID: "f1", Name: "b"}}, resolve.ManagementFunctions([]model.ManagementFunction{{ID: "f1", Name: "b"}}))
	assert.Equal([]resolve.Candidate{{ID: "c1", Name: "c"}}, resolve.Components([]model.ComponentSummary{{ID: "c1", Name: "c"}}))
}
