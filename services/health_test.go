package services

import (
	"context"
	"errors"
	"testing"

	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReport(t *testing.T) {
	db := testutil.NewDB(t)
	logs := repository.NewRunLogStore(db)
	syncs := repository.NewSyncRunRepository(db)
	ctx := context.Background()

	boom := "boom"
	require.NoError(t, logs.Create(ctx, &models.JobRunLog{JobName: JobDigest, Status: models.RunLogStatusError, Trigger: TriggerCron, Error: &boom}))
	require.NoError(t, logs.Create(ctx, &models.JobRunLog{JobName: JobDigest, Status: models.RunLogStatusSuccess, Trigger: TriggerCron}))
	require.NoError(t, logs.Create(ctx, &models.JobRunLog{JobName: "legacy-job", Status: models.RunLogStatusSuccess, Trigger: TriggerCLI}))
	require.NoError(t, syncs.Create(ctx, &models.SyncRun{Kind: models.SyncKindDirectory, Status: models.SyncRunStatusSuccess}))

	svc := NewHealthService(logs, syncs, []string{JobDeadlines, JobDigest}, func(context.Context) error {
		return errors.New("db down")
	})
	report, err := svc.Report(ctx)
	require.NoError(t, err)

	assert.Equal(t, "db down", report.Database)
	require.Len(t, report.Jobs, 3)
	assert.Equal(t, JobDeadlines, report.Jobs[0].Name)
	assert.Nil(t, report.Jobs[0].LastRun)
	require.NotNil(t, report.Jobs[1].LastRun)
	assert.Equal(t, models.RunLogStatusSuccess, report.Jobs[1].LastRun.Status)
	assert.Equal(t, "legacy-job", report.Jobs[2].Name)

	require.NotNil(t, report.LastSync)
	require.Len(t, report.RecentFailures, 1)
	assert.Equal(t, "boom", *report.RecentFailures[0].Error)
}
