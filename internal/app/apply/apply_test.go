package apply_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/csflow/internal/app/apply"
	"github.com/slok/csflow/internal/model"
	"github.com/slok/csflow/internal/remote/remotemock"
	"github.com/slok/csflow/internal/taskio"
)

func dvuErr() error {
	return &model.RemoteError{Method: "POST", StatusCode: 400, Body: `{"error": "change set has unprocessed dvu roots"}`}
}

func TestNewService(t *testing.T) {
	_, err := apply.NewService(apply.ServiceConfig{})
	assert.Error(t, err)

	svc, err := apply.NewService(apply.ServiceConfig{API: &remotemock.MockAPI{}})
	assert.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestServiceRun(t *testing.T) {
	cs := model.ChangeSet{ID: "cs1", WorkspaceID: "ws1", APIPath: model.ChangeSetAPIPath("ws1", "cs1")}

	tests := map[string]struct {
		mock      func(m *remotemock.MockAPI)
		mode      model.ApplyMode
		expResult *apply.Result
		expErr    error
	}{
		"skip should not call the api": {
			mock:      func(m *remotemock.MockAPI) {},
			mode:      model.ApplyModeSkip,
			expResult: &apply.Result{Applied: false},
		},

		"request should request approval once": {
			mock: func(m *remotemock.MockAPI) {
				m.On("RequestApproval", mock.Anything, cs).Once().Return(nil)
			},
			mode:      model.ApplyModeRequest,
			expResult: &apply.Result{Applied: true},
		},

		"request errors should propagate without retries": {
			mock: func(m *remotemock.MockAPI) {
				m.On("RequestApproval", mock.Anything, cs).Once().Return(&model.RemoteError{StatusCode: 500, Body: "dvu roots"})
			},
			mode:   model.ApplyModeRequest,
			expErr: model.ErrRemote,
		},

		"force should apply once when there are no errors": {
			mock: func(m *remotemock.MockAPI) {
				m.On("ForceApply", mock.Anything, cs).Once().Return(nil)
			},
			mode:      model.ApplyModeForce,
			expResult: &apply.Result{Applied: true},
		},

		"force should retry while the dependent values are not settled": {
			mock: func(m *remotemock.MockAPI) {
				m.On("ForceApply", mock.Anything, cs).Times(3).Return(dvuErr())
				m.On("ForceApply", mock.Anything, cs).Once().Return(nil)
			},
			mode:      model.ApplyModeForce,
			expResult: &apply.Result{Applied: true, Retries: 3},
		},

		"force should propagate a not found error immediately": {
			mock: func(m *remotemock.MockAPI) {
				m.On("ForceApply", mock.Anything, cs).Once().Return(&model.RemoteError{StatusCode: 404, Body: "not found"})
			},
			mode:   model.ApplyModeForce,
			expErr: model.ErrRemote,
		},

		"force should propagate an unrelated bad request immediately": {
			mock: func(m *remotemock.MockAPI) {
				m.On("ForceApply", mock.Anything, cs).Once().Return(&model.RemoteError{StatusCode: 400, Body: "change set is not open"})
			},
			mode:   model.ApplyModeForce,
			expErr: model.ErrRemote,
		},

		"force should propagate transport errors immediately": {
			mock: func(m *remotemock.MockAPI) {
				m.On("ForceApply", mock.Anything, cs).Once().Return(fmt.Errorf("dvu roots: connection refused: %w", model.ErrRemote))
			},
			mode:   model.ApplyModeForce,
			expErr: model.ErrRemote,
		},

		"force should propagate a later unrelated error after retrying": {
			mock: func(m *remotemock.MockAPI) {
				m.On("ForceApply", mock.Anything, cs).Once().Return(dvuErr())
				m.On("ForceApply", mock.Anything, cs).Once().Return(&model.RemoteError{StatusCode: 403, Body: "forbidden"})
			},
			mode:   model.ApplyModeForce,
			expErr: model.ErrRemote,
		},

		"unknown modes should fail": {
			mock:   func(m *remotemock.MockAPI) {},
			mode:   "maybe",
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mAPI := &remotemock.MockAPI{}
			test.mock(mAPI)

			svc, err := apply.NewService(apply.ServiceConfig{API: mAPI})
			require.NoError(err)

			res, err := svc.Run(context.Background(), apply.Request{
				ChangeSet:     cs,
				Mode:          test.mode,
				RetryInterval: time.Millisecond,
			})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, res)
			}

			mAPI.AssertExpectations(t)
		})
	}
}

func TestServiceRunForceCancelled(t *testing.T) {
	require := require.New(t)

	cs := model.ChangeSet{ID: "cs1"}
	ctx, cancel := context.WithCancel(context.Background())

	mAPI := &remotemock.MockAPI{}
	mAPI.On("ForceApply", mock.Anything, cs).Once().Run(func(mock.Arguments) { cancel() }).Return(dvuErr())

	svc, err := apply.NewService(apply.ServiceConfig{API: mAPI})
	require.NoError(err)

	_, err = svc.Run(ctx, apply.Request{ChangeSet: cs, Mode: model.ApplyModeForce, RetryInterval: time.Hour})
	require.ErrorIs(err, context.Canceled)
	mAPI.AssertExpectations(t)
}

func TestServiceRunForceReportsWarnings(t *testing.T) {
	require := require.New(t)

	cs := model.ChangeSet{ID: "cs1"}
	mAPI := &remotemock.MockAPI{}
	mAPI.On("ForceApply", mock.Anything, cs).Twice().Return(dvuErr())
	mAPI.On("ForceApply", mock.Anything, cs).Once().Return(nil)

	var out bytes.Buffer
	reporter, err := taskio.New(taskio.Config{Annotate: true, Out: &out})
	require.NoError(err)

	svc, err := apply.NewService(apply.ServiceConfig{API: mAPI, Reporter: reporter})
	require.NoError(err)

	res, err := svc.Run(context.Background(), apply.Request{ChangeSet: cs, Mode: model.ApplyModeForce, RetryInterval: time.Millisecond})
	require.NoError(err)
	assert.Equal(t, 2, res.Retries)
	assert.Equal(t, "::warning::DVUs not complete. Waiting ...\n::warning::DVUs not complete. Waiting ...\n", out.String())
	mAPI.AssertExpectations(t)
}
