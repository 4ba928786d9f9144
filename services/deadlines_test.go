package services

import (
	"context"
	"testing"
	"time"

	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlineServiceGeneratesOccurrencesOnce(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	deadlines := repository.NewRecurringDeadlineRepository(db)
	items := repository.NewWorkItemRepository(db)

	weekly := &models.RecurringDeadline{Title: "Newsletter copy", Cadence: models.CadenceWeekly, Weekday: int(time.Monday), LeadDays: 2, SLAHours: 12, Active: true}
	monthly := &models.RecurringDeadline{Title: "Month-end report", Cadence: models.CadenceMonthly, DayOfMonth: 31, Active: true}
	paused := &models.RecurringDeadline{Title: "Paused", Cadence: models.CadenceWeekly, Weekday: int(time.Tuesday), Active: false}
	for _, d := range []*models.RecurringDeadline{weekly, monthly, paused} {
		require.NoError(t, deadlines.Create(ctx, d))
	}

	svc := NewDeadlineService(deadlines, items, testConfig().Jobs, discardLogger())
	svc.now = func() time.Time { return time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC) }

	result, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, JobResult{"created": 5, "skipped": 0, "templates": 2}, result)

	generated, err := items.List(ctx, repository.WorkItemFilter{IncludeClosed: true})
	require.NoError(t, err)
	require.Len(t, generated, 5)

	var first *models.WorkItem
	for i := range generated {
		item := &generated[i]
		if item.RecurringDeadlineID != nil && *item.RecurringDeadlineID == weekly.ID &&
			item.DueAt.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
			first = item
		}
	}
	require.NotNil(t, first, "first Monday after the run date is generated")
	require.NotNil(t, first.SLADueAt)
	assert.True(t, first.SLADueAt.Equal(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.WorkItemStatusTodo, first.Status)

	again, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, JobResult{"created": 0, "skipped": 5, "templates": 2}, again)
}
