package services

import (
	"context"
	"time"

	"publishing-ops-api/models"
	"publishing-ops-api/repository"
)

// JobHealth is the latest run of one registered job. LastRun is nil for a
// job that never ran.
type JobHealth struct {
	Name    string            `json:"name"`
	LastRun *models.JobRunLog `json:"last_run"`
}

// HealthReport backs the admin health endpoint and page.
type HealthReport struct {
	Database       string             `json:"database"`
	Jobs           []JobHealth        `json:"jobs"`
	LastSync       *models.SyncRun    `json:"last_sync"`
	RecentFailures []models.JobRunLog `json:"recent_failures"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

type HealthService struct {
	logs  repository.RunLogStore
	syncs repository.SyncRunRepository
	names []string
	ping  func(ctx context.Context) error
	now   func() time.Time
}

// NewHealthService reports on names plus any other job found in the run log.
func NewHealthService(logs repository.RunLogStore, syncs repository.SyncRunRepository, names []string, ping func(ctx context.Context) error) *HealthService {
	return &HealthService{logs: logs, syncs: syncs, names: names, ping: ping, now: time.Now}
}

func (s *HealthService) Report(ctx context.Context) (*HealthReport, error) {
	report := &HealthReport{Database: "ok", GeneratedAt: s.now().UTC()}
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			report.Database = err.Error()
		}
	}

	latest, err := s.logs.LatestPerJob(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*models.JobRunLog, len(latest))
	for i := range latest {
		byName[latest[i].JobName] = &latest[i]
	}
	seen := make(map[string]bool, len(s.names))
	for _, name := range s.names {
		seen[name] = true
		report.Jobs = append(report.Jobs, JobHealth{Name: name, LastRun: byName[name]})
	}
	for i := range latest {
		if !seen[latest[i].JobName] {
			report.Jobs = append(report.Jobs, JobHealth{Name: latest[i].JobName, LastRun: &latest[i]})
		}
	}

	report.LastSync, err = s.syncs.Latest(ctx, models.SyncKindDirectory)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.logs.List(ctx, "", repository.Page{Limit: 50})
	if err != nil {
		return nil, err
	}
	report.RecentFailures = []models.JobRunLog{}
	for _, entry := range recent {
		if entry.Status == models.RunLogStatusError {
			report.RecentFailures = append(report.RecentFailures, entry)
		}
		if len(report.RecentFailures) == 10 {
			break
		}
	}
	return report, nil
}
