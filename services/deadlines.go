package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/config"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
)

const JobDeadlines = "deadlines"

// DeadlineService materializes recurring deadline templates into dated work
// items over a rolling horizon.
type DeadlineService struct {
	deadlines   repository.RecurringDeadlineRepository
	items       repository.WorkItemRepository
	horizonDays int
	logger      *slog.Logger
	now         func() time.Time
}

func NewDeadlineService(deadlines repository.RecurringDeadlineRepository, items repository.WorkItemRepository, cfg config.JobsConfig, logger *slog.Logger) *DeadlineService {
	if logger == nil {
		logger = slog.Default()
	}
	horizon := cfg.DeadlineHorizonDays
	if horizon <= 0 {
		horizon = 30
	}
	return &DeadlineService{
		deadlines:   deadlines,
		items:       items,
		horizonDays: horizon,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *DeadlineService) Run(ctx context.Context) (JobResult, error) {
	templates, err := s.deadlines.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recurring deadlines: %w", err)
	}

	today := s.now().UTC()
	until := today.AddDate(0, 0, s.horizonDays)
	created, skipped := 0, 0

	for i := range templates {
		tmpl := &templates[i]
		for _, dueAt := range tmpl.Occurrences(today, until) {
			exists, err := s.items.ExistsForOccurrence(ctx, tmpl.ID, dueAt)
			if err != nil {
				return nil, err
			}
			if exists {
				skipped++
				continue
			}

			err = s.items.Create(ctx, occurrenceItem(tmpl, dueAt))
			switch {
			case apperrors.IsConflict(err):
				// Another run created it between the check and the insert.
				skipped++
			case err != nil:
				return nil, fmt.Errorf("create occurrence of %q on %s: %w", tmpl.Title, dueAt.Format(time.DateOnly), err)
			default:
				created++
			}
		}
	}

	s.logger.Info("recurring deadlines generated",
		slog.Int("templates", len(templates)),
		slog.Int("created", created),
		slog.Int("skipped", skipped),
	)
	return JobResult{"created": created, "skipped": skipped, "templates": len(templates)}, nil
}

func occurrenceItem(tmpl *models.RecurringDeadline, dueAt time.Time) *models.WorkItem {
	due := dueAt
	sla := dueAt.AddDate(0, 0, -tmpl.LeadDays).Add(time.Duration(tmpl.SLAHours) * time.Hour)
	templateID := tmpl.ID
	return &models.WorkItem{
		Title:               tmpl.Title,
		Status:              models.WorkItemStatusTodo,
		Priority:            "normal",
		OwnerID:             tmpl.OwnerID,
		DueAt:               &due,
		SLADueAt:            &sla,
		RecurringDeadlineID: &templateID,
	}
}
