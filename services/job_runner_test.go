package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/events"
	"publishing-ops-api/mocks"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestRunner(logs repository.RunLogStore, pub events.Publisher) *Runner {
	r := NewRunner(logs, pub, discardLogger(), testConfig().Jobs)
	clock := &fakeClock{now: time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC), step: 250 * time.Millisecond}
	r.now = clock.Now
	return r
}

func TestRunnerSuccessWritesOneLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	logs := mocks.NewMockRunLogStore(ctrl)

	var written *models.JobRunLog
	logs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entry *models.JobRunLog) error {
		written = entry
		return nil
	}).Times(1)

	runner := newTestRunner(logs, nil)
	outcome := runner.Run(context.Background(), JobDigest, TriggerCron, func(context.Context) (JobResult, error) {
		return JobResult{"summary": map[string]any{"users": 3}, "sent": 12}, nil
	})

	require.True(t, outcome.OK())
	assert.Equal(t, http.StatusOK, outcome.HTTPStatus())
	assert.EqualValues(t, 250, outcome.DurationMs)

	body := outcome.Body()
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, 12, body["sent"])
	assert.Equal(t, map[string]any{"users": 3}, body["summary"])
	assert.EqualValues(t, 250, body["durationMs"])

	require.NotNil(t, written)
	assert.Equal(t, JobDigest, written.JobName)
	assert.Equal(t, models.RunLogStatusSuccess, written.Status)
	assert.Equal(t, TriggerCron, written.Trigger)
	assert.Equal(t, 12, written.Result["sent"])
	assert.Nil(t, written.Error)
	require.NotNil(t, written.DurationMs)
	assert.EqualValues(t, 250, *written.DurationMs)
}

func TestRunnerFailureWritesErrorLog(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantMsg    string
		wantStatus int
	}{
		{"plain error", errors.New("sheets unreachable"), "sheets unreachable", http.StatusInternalServerError},
		{"empty message", errors.New(""), "unknown error", http.StatusInternalServerError},
		{"upstream", apperrors.Upstream("google sheets", errors.New("status 403")), "google sheets request failed: status 403", http.StatusInternalServerError},
		{"conflict", apperrors.Conflict("sync already running"), "sync already running", http.StatusConflict},
		{"rate limited", apperrors.RateLimited(180), "rate limited: retry after 180 seconds", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			logs := mocks.NewMockRunLogStore(ctrl)
			logs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entry *models.JobRunLog) error {
				assert.Equal(t, models.RunLogStatusError, entry.Status)
				require.NotNil(t, entry.Error)
				assert.Equal(t, tt.wantMsg, *entry.Error)
				assert.Nil(t, entry.Result)
				require.NotNil(t, entry.DurationMs)
				return nil
			}).Times(1)

			outcome := newTestRunner(logs, nil).Run(context.Background(), JobDirectorySync, TriggerCron, func(context.Context) (JobResult, error) {
				return nil, tt.err
			})

			assert.False(t, outcome.OK())
			assert.Equal(t, tt.wantStatus, outcome.HTTPStatus())
			body := outcome.Body()
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, tt.wantMsg, body["error"])
			assert.Contains(t, body, "durationMs")
		})
	}
}

func TestRunnerRateLimitedBodyCarriesRetryAfter(t *testing.T) {
	ctrl := gomock.NewController(t)
	logs := mocks.NewMockRunLogStore(ctrl)
	logs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	outcome := newTestRunner(logs, nil).Run(context.Background(), JobDirectorySync, TriggerManual, func(context.Context) (JobResult, error) {
		return nil, apperrors.RateLimited(299)
	})
	assert.Equal(t, 299, outcome.RetryAfter())
	assert.Equal(t, 299, outcome.Body()["retryAfterSeconds"])
}

func TestRunnerLogWriteFailureDoesNotChangeOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	logs := mocks.NewMockRunLogStore(ctrl)
	logs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("database is locked")).Times(1)

	outcome := newTestRunner(logs, nil).Run(context.Background(), JobDeadlines, TriggerCron, func(context.Context) (JobResult, error) {
		return JobResult{"created": 2}, nil
	})
	assert.True(t, outcome.OK())
	assert.Equal(t, http.StatusOK, outcome.HTTPStatus())
	assert.Equal(t, 2, outcome.Body()["created"])
}

func TestRunnerLogWriteSurvivesCancelledRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	logs := mocks.NewMockRunLogStore(ctrl)
	logs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ *models.JobRunLog) error {
		assert.NoError(t, ctx.Err())
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	outcome := newTestRunner(logs, nil).Run(ctx, JobDigest, TriggerCron, func(context.Context) (JobResult, error) {
		cancel()
		return nil, context.Canceled
	})
	assert.False(t, outcome.OK())
	assert.Equal(t, "context canceled", outcome.ErrorMessage())
}

func TestRunnerRecoversPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	logs := mocks.NewMockRunLogStore(ctrl)
	logs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	outcome := newTestRunner(logs, nil).Run(context.Background(), JobDigest, TriggerCron, func(context.Context) (JobResult, error) {
		panic("nil map")
	})
	assert.Equal(t, http.StatusInternalServerError, outcome.HTTPStatus())
	assert.Equal(t, "job panicked: nil map", outcome.ErrorMessage())
}

func TestRunnerPublishesCompletionEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	logs := mocks.NewMockRunLogStore(ctrl)
	pub := mocks.NewMockPublisher(ctrl)

	logs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	pub.EXPECT().PublishJobCompleted(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev events.JobCompleted) error {
		assert.Equal(t, JobSLAReminders, ev.JobName)
		assert.Equal(t, models.RunLogStatusError, ev.Status)
		assert.Equal(t, "smtp down", ev.Error)
		return errors.New("broker unavailable")
	})

	outcome := newTestRunner(logs, pub).Run(context.Background(), JobSLAReminders, TriggerCron, func(context.Context) (JobResult, error) {
		return nil, errors.New("smtp down")
	})
	assert.Equal(t, "smtp down", outcome.ErrorMessage())
}

func TestRunnerPersistsExactlyOneRow(t *testing.T) {
	ctx := context.Background()
	store := repository.NewRunLogStore(testutil.NewDB(t))
	runner := newTestRunner(store, nil)

	runner.Run(ctx, JobDigest, TriggerCron, func(context.Context) (JobResult, error) {
		return JobResult{"sent": 1}, nil
	})
	runner.Run(ctx, JobDirectorySync, TriggerCron, func(context.Context) (JobResult, error) {
		return nil, errors.New("boom")
	})

	logs, total, err := store.List(ctx, "", repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, logs, 2)
	assert.Equal(t, JobDirectorySync, logs[0].JobName)
	assert.Equal(t, models.RunLogStatusError, logs[0].Status)
	assert.Equal(t, JobDigest, logs[1].JobName)
	assert.Equal(t, float64(1), logs[1].Result["sent"])
}
