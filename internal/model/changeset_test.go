package model_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/csflow/internal/model"
)

func TestChangeSetStatus(t *testing.T) {
	tests := map[string]struct {
		status      model.ChangeSetStatus
		expKnown    bool
		expWorkable bool
	}{
		"Open is workable":                   {status: model.ChangeSetStatusOpen, expKnown: true, expWorkable: true},
		"Needs approval is workable":         {status: model.ChangeSetStatusNeedsApproval, expKnown: true, expWorkable: true},
		"Needs abandon approval is workable": {status: model.ChangeSetStatusNeedsAbandonApproval, expKnown: true, expWorkable: true},
		"Approved is workable":               {status: model.ChangeSetStatusApproved, expKnown: true, expWorkable: true},
		"Applied is not workable":            {status: model.ChangeSetStatusApplied, expKnown: true},
		"Abandoned is not workable":          {status: model.ChangeSetStatusAbandoned, expKnown: true},
		"Failed is not workable":             {status: model.ChangeSetStatusFailed, expKnown: true},
		"Rejected is not workable":           {status: model.ChangeSetStatusRejected, expKnown: true},
		"Unknown status is not known":        {status: "Merging"},
		"Lowercase status is not known":      {status: "open"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expKnown, test.status.Known())
			assert.Equal(test.expWorkable, test.status.Workable())
		})
	}
}

func TestChangeSetURLs(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("/api/public/v0/workspaces/ws1/change-sets", model.ChangeSetsAPIPath("ws1"))
	assert.Equal("/api/public/v0/workspaces/ws1/change-sets/cs1", model.ChangeSetAPIPath("ws1", "cs1"))
	assert.Equal("https://app.systeminit.com/w/ws1/cs1/c", model.ChangeSetWebURL("https://app.systeminit.com", "ws1", "cs1"))
	assert.Equal("https://app.systeminit.com/w/ws1/cs1/c?s=c_cmp1&t=attributes", model.ComponentWebURL("https://app.systeminit.com/w/ws1/cs1/c", "cmp1"))

	// IDs are escaped so they can't change the target.
	assert.Equal("/api/public/v0/workspaces/ws%2F1/change-sets/cs1%3Fx=1", model.ChangeSetAPIPath("ws/1", "cs1?x=1"))
	assert.Equal("https://app.systeminit.com/w/ws%2F1/cs%231/c", model.ChangeSetWebURL("https://app.systeminit.com", "ws/1", "cs#1"))
	assert.Equal("https://app.systeminit.com/w/ws1/cs1/c?s=c_cmp%261&t=attributes", model.ComponentWebURL("https://app.systeminit.com/w/ws1/cs1/c", "cmp&1"))
}

func TestActionDetail(t *testing.T) {
	tests := map[string]struct {
		action    model.Action
		expDetail string
	}{
		"Raw payload should be used indented": {
			action: model.Action{ID: "a1", Raw: json.RawMessage(`{"id":"a1","state":"Failed"}`)},
			expDetail: `{
  "id": "a1",
  "state": "Failed"
}`,
		},
		"Missing raw payload should use the fields": {
			action: model.Action{ID: "a1", Name: "create", Kind: "Create", State: model.ActionStateFailed},
			expDetail: `{
  "componentId": "",
  "componentName": "",
  "id": "a1",
  "kind": "Create",
  "name": "create",
  "state": "Failed"
}`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expDetail, test.action.Detail())
		})
	}
}

func TestRemoteError(t *testing.T) {
	assert := assert.New(t)

	var err error = &model.RemoteError{Method: "POST", Path: "/x", StatusCode: 400, Body: "boom"}
	err = fmt.Errorf("wrapped: %w", err)

	assert.ErrorIs(err, model.ErrRemote)
	var rerr *model.RemoteError
	assert.True(errors.As(err, &rerr))
	assert.Equal(400, rerr.StatusCode)
	assert.Equal("wrapped: POST /x: status 400: boom", err.Error())
}
