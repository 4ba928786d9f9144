package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/config"
	"publishing-ops-api/events"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
)

const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
	TriggerCLI    = "cli"

	unknownErrorMessage = "unknown error"
)

// JobResult is the structured summary a job returns. Its keys are spread
// into the top level of the HTTP response.
type JobResult map[string]any

// JobFunc is one scheduled job body.
type JobFunc func(ctx context.Context) (JobResult, error)

// RunOutcome describes a finished invocation.
type RunOutcome struct {
	JobName    string
	Result     JobResult
	Err        error
	DurationMs int64
}

func (o RunOutcome) OK() bool { return o.Err == nil }

// ErrorMessage is the message recorded for a failed run.
func (o RunOutcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	if msg := strings.TrimSpace(o.Err.Error()); msg != "" {
		return msg
	}
	return unknownErrorMessage
}

// HTTPStatus maps the outcome onto a response status. Only rate limiting and
// conflicts surface their own status; every other failure is a 500.
func (o RunOutcome) HTTPStatus() int {
	if o.Err == nil {
		return http.StatusOK
	}
	switch apperrors.CodeOf(o.Err) {
	case apperrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RetryAfter returns the wait in seconds for rate limited runs, else 0.
func (o RunOutcome) RetryAfter() int {
	if appErr, ok := apperrors.As(o.Err); ok && appErr.Code == apperrors.CodeRateLimited {
		return appErr.RetryAfter
	}
	return 0
}

// Body renders {ok: true, ...result, durationMs} or {ok: false, error, durationMs}.
func (o RunOutcome) Body() map[string]any {
	if o.Err != nil {
		body := map[string]any{
			"ok":         false,
			"error":      o.ErrorMessage(),
			"durationMs": o.DurationMs,
		}
		if wait := o.RetryAfter(); wait > 0 {
			body["retryAfterSeconds"] = wait
		}
		return body
	}
	body := make(map[string]any, len(o.Result)+2)
	for k, v := range o.Result {
		body[k] = v
	}
	body["ok"] = true
	body["durationMs"] = o.DurationMs
	return body
}

// Runner executes a job and records exactly one run-log row for it.
type Runner struct {
	logs   repository.RunLogStore
	events events.Publisher
	logger *slog.Logger

	jobTimeout   time.Duration
	writeTimeout time.Duration
	now          func() time.Time
}

func NewRunner(logs repository.RunLogStore, publisher events.Publisher, logger *slog.Logger, cfg config.JobsConfig) *Runner {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logs:         logs,
		events:       publisher,
		logger:       logger,
		jobTimeout:   cfg.Timeout,
		writeTimeout: cfg.RunLogWriteTimeout,
		now:          time.Now,
	}
}

// Run invokes fn once. The run-log write and event publish are best-effort
// and never alter the returned outcome.
func (r *Runner) Run(ctx context.Context, name, trigger string, fn JobFunc) RunOutcome {
	if trigger == "" {
		trigger = TriggerCron
	}
	started := r.now()

	jobCtx := ctx
	if r.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, r.jobTimeout)
		defer cancel()
	}

	result, err := invoke(jobCtx, fn)
	outcome := RunOutcome{
		JobName:    name,
		Result:     result,
		Err:        err,
		DurationMs: r.now().Sub(started).Milliseconds(),
	}

	r.record(ctx, outcome, trigger)
	return outcome
}

func invoke(ctx context.Context, fn JobFunc) (result JobResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = apperrors.Internal(fmt.Sprintf("job panicked: %v", rec), nil)
		}
	}()
	if fn == nil {
		return nil, apperrors.Internal("job function is nil", nil)
	}
	return fn(ctx)
}

func (r *Runner) record(ctx context.Context, outcome RunOutcome, trigger string) {
	writeCtx, cancel := detachedWithTimeout(ctx, r.writeTimeout)
	defer cancel()

	duration := outcome.DurationMs
	entry := &models.JobRunLog{
		JobName:    outcome.JobName,
		Status:     models.RunLogStatusSuccess,
		Trigger:    trigger,
		DurationMs: &duration,
	}
	if outcome.OK() {
		entry.Result = map[string]any(outcome.Result)
	} else {
		msg := outcome.ErrorMessage()
		entry.Status = models.RunLogStatusError
		entry.Error = &msg
	}

	if err := r.logs.Create(writeCtx, entry); err != nil {
		r.logger.Error("failed to write job run log",
			slog.String("job", outcome.JobName),
			slog.String("status", entry.Status),
			slog.Any("error", err),
		)
	}

	level := slog.LevelInfo
	if !outcome.OK() {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "job finished",
		slog.String("job", outcome.JobName),
		slog.String("trigger", trigger),
		slog.String("status", entry.Status),
		slog.Int64("duration_ms", duration),
	)

	event := events.JobCompleted{
		JobName:    outcome.JobName,
		Status:     entry.Status,
		Trigger:    trigger,
		DurationMs: duration,
		Error:      outcome.ErrorMessage(),
		CreatedAt:  r.now().UTC(),
	}
	if err := r.events.PublishJobCompleted(writeCtx, event); err != nil {
		r.logger.Warn("failed to publish job event", slog.String("job", outcome.JobName), slog.Any("error", err))
	}
}
