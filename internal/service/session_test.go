package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tink/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StartsIdle(t *testing.T) {
	sess := newTestSession(newFakeAPI())

	view := sess.View()
	assert.Equal(t, string(StateIdle), view.State)
	assert.Equal(t, string(ModeAuto), view.Mode)
	assert.Empty(t, view.Resolutions)
	assert.Len(t, view.Applications, 2)
}

func TestSession_GenerateRecommendations(t *testing.T) {
	sess := newTestSession(newFakeAPI())
	require.NoError(t, sess.SetMode(ModeManual))

	first, err := sess.GenerateRecommendations()
	require.NoError(t, err)
	require.Len(t, first, 2)

	view := sess.View()
	assert.Equal(t, string(StateAutoGenerated), view.State)
	assert.Equal(t, string(ModeAuto), view.Mode)

	second, err := sess.GenerateRecommendations()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSession_RegenerateDiscardsManualEdits(t *testing.T) {
	sess := newTestSession(newFakeAPI())
	_, err := sess.GenerateRecommendations()
	require.NoError(t, err)

	_, err = sess.SetManualAction(2, model.ActionApprove, nil)
	require.NoError(t, err)

	got, err := sess.GenerateRecommendations()
	require.NoError(t, err)
	assert.Equal(t, model.ActionReject, got[1].Action)
	assert.Equal(t, model.SourceAuto, got[1].Source)
}

func TestSession_SetManualAction(t *testing.T) {
	t.Run("creates a manual resolution", func(t *testing.T) {
		sess := newTestSession(newFakeAPI())

		res, err := sess.SetManualAction(2, model.ActionApprove, nil)
		require.NoError(t, err)
		assert.Equal(t, "Manual approve", res.Reason)
		assert.Equal(t, model.ReasonManual, res.ReasonCode)
		assert.Equal(t, model.SourceManual, res.Source)
		assert.Len(t, sess.Resolutions(), 1)
	})

	t.Run("leaves other resolutions untouched", func(t *testing.T) {
		sess := newTestSession(newFakeAPI())
		before, err := sess.GenerateRecommendations()
		require.NoError(t, err)

		_, err = sess.SetManualAction(2, model.ActionAssignRoom, int64Ptr(11))
		require.NoError(t, err)

		after := sess.Resolutions()
		require.Len(t, after, 2)
		assert.Equal(t, before[0], after[0])
		assert.Equal(t, model.ActionAssignRoom, after[1].Action)
		assert.Equal(t, int64(11), *after[1].RoomID)
		assert.Equal(t, model.SourceManual, after[1].Source)
		assert.Equal(t, before[1].Reason, after[1].Reason)
	})

	t.Run("does not change the mode", func(t *testing.T) {
		sess := newTestSession(newFakeAPI())
		_, err := sess.GenerateRecommendations()
		require.NoError(t, err)

		_, err = sess.SetManualAction(1, model.ActionReject, int64Ptr(10))
		require.NoError(t, err)

		assert.Equal(t, string(ModeAuto), sess.View().Mode)
		assert.Nil(t, sess.Resolutions()[0].RoomID)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		sess := newTestSession(newFakeAPI())

		tests := []struct {
			name   string
			appID  int64
			action model.Action
			roomID *int64
			field  string
		}{
			{name: "unknown application", appID: 99, action: model.ActionApprove, field: "application_id"},
			{name: "unknown action", appID: 1, action: "waitlist", field: "action"},
			{name: "assign without room", appID: 1, action: model.ActionAssignRoom, field: "room_id"},
			{name: "room of another property", appID: 1, action: model.ActionAssignRoom, roomID: int64Ptr(99), field: "room_id"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := sess.SetManualAction(tt.appID, tt.action, tt.roomID)

				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			})
		}
		assert.Empty(t, sess.Resolutions())
	})
}

func TestSession_SetMode(t *testing.T) {
	sess := newTestSession(newFakeAPI())
	_, err := sess.GenerateRecommendations()
	require.NoError(t, err)
	before := sess.Resolutions()

	require.NoError(t, sess.SetMode(ModeManual))
	assert.Equal(t, string(ModeManual), sess.View().Mode)
	assert.Equal(t, before, sess.Resolutions())

	var verr *ValidationError
	assert.ErrorAs(t, sess.SetMode("robot"), &verr)
}

func TestSession_SubmitWithoutResolutions(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(api)

	resp, err := sess.Submit(context.Background())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNoResolutions)
	assert.Equal(t, "select actions for all applications", err.Error())
	assert.Zero(t, api.callCount())
	assert.Equal(t, string(StateIdle), sess.View().State)
}

func TestSession_Submit(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(api)
	_, err := sess.GenerateRecommendations()
	require.NoError(t, err)

	resp, err := sess.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Applied)
	assert.Zero(t, resp.Failed)
	assert.Equal(t, string(StateSubmitted), sess.View().State)

	calls := api.callsFor(1)
	require.Len(t, calls, 1)
	assert.Equal(t, model.ActionAssignRoom, calls[0].Action)
	assert.Equal(t, int64(10), *calls[0].RoomID)
	assert.Equal(t, model.ActionReject, api.callsFor(2)[0].Action)

	_, err = sess.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSessionSubmitted)
	_, err = sess.SetManualAction(1, model.ActionApprove, nil)
	assert.ErrorIs(t, err, ErrSessionSubmitted)
	assert.Equal(t, 2, api.callCount())
}

func TestSession_SubmitPartialFailureIsRetryable(t *testing.T) {
	api := newFakeAPI()
	api.setFailure(2, errors.New("Application is no longer pending"))
	sess := newTestSession(api)
	_, err := sess.GenerateRecommendations()
	require.NoError(t, err)

	resp, err := sess.Submit(context.Background())

	var submitErr *SubmitError
	require.ErrorAs(t, err, &submitErr)
	require.Len(t, submitErr.Failures, 1)
	assert.Equal(t, int64(2), submitErr.Failures[0].ApplicationID)
	assert.Equal(t, "Application is no longer pending", submitErr.Failures[0].Message)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.Applied)
	assert.Equal(t, 1, resp.Failed)

	view := sess.View()
	assert.Equal(t, string(StateAutoGenerated), view.State)
	assert.False(t, view.Submitting)
	assert.Contains(t, view.LastError, "Application is no longer pending")

	// The operator edits the failed one and retries.
	_, err = sess.SetManualAction(2, model.ActionApprove, nil)
	require.NoError(t, err)
	api.setFailure(2, nil)

	resp, err = sess.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Applied)

	assert.Len(t, api.callsFor(1), 1, "applied resolution is not sent twice")
	assert.Len(t, api.callsFor(2), 2)
	assert.Empty(t, sess.View().LastError)
}

func TestSession_RetryResendsEditedResolution(t *testing.T) {
	api := newFakeAPI()
	api.setFailure(2, errors.New("boom"))
	sess := newTestSession(api)
	_, err := sess.GenerateRecommendations()
	require.NoError(t, err)

	_, err = sess.Submit(context.Background())
	require.Error(t, err)

	_, err = sess.SetManualAction(1, model.ActionAssignRoom, int64Ptr(11))
	require.NoError(t, err)
	api.setFailure(2, nil)

	_, err = sess.Submit(context.Background())
	require.NoError(t, err)

	calls := api.callsFor(1)
	require.Len(t, calls, 2)
	assert.Equal(t, int64(11), *calls[1].RoomID)
}

func TestSession_SubmitGuardsConcurrentCalls(t *testing.T) {
	api := newFakeAPI()
	api.block = make(chan struct{})
	api.started = make(chan struct{}, 1)
	sess := newTestSession(api)
	_, err := sess.GenerateRecommendations()
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = sess.Submit(context.Background())
	}()

	select {
	case <-api.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not reach the API")
	}

	assert.True(t, sess.View().Submitting)
	_, err = sess.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	_, err = sess.SetManualAction(1, model.ActionReject, nil)
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	_, err = sess.GenerateRecommendations()
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(api.block)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Equal(t, 2, api.callCount())
	assert.Equal(t, string(StateSubmitted), sess.View().State)
}

func TestSession_ExampleScenario(t *testing.T) {
	api := newFakeAPI()
	sess := newTestSession(api)

	got, err := sess.GenerateRecommendations()
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, model.ActionAssignRoom, got[0].Action)
	assert.Equal(t, int64(10), *got[0].RoomID)
	assert.Equal(t, "High priority (90) - Best room match (93% compatibility)", got[0].Reason)
	assert.Equal(t, model.ActionReject, got[1].Action)
	assert.Equal(t, "Low priority (55) - Reject to resolve conflict", got[1].Reason)
}
