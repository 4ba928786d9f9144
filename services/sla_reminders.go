package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"publishing-ops-api/config"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
)

const JobSLAReminders = "sla-reminders"

// SLAReminderService emails owners whose open work items are near or past
// their SLA. Each item is reminded at most once per interval.
type SLAReminderService struct {
	items    repository.WorkItemRepository
	mailer   config.Mailer
	window   time.Duration
	interval time.Duration
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewSLAReminderService(items repository.WorkItemRepository, mailer config.Mailer, cfg *config.AppConfig, logger *slog.Logger) *SLAReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SLAReminderService{
		items:    items,
		mailer:   mailer,
		window:   cfg.Jobs.SLAReminderWindow,
		interval: cfg.Jobs.SLAReminderInterval,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SLAReminderService) Run(ctx context.Context) (JobResult, error) {
	now := s.now().UTC()
	due, err := s.items.ListSLADue(ctx, now.Add(s.window), now.Add(-s.interval))
	if err != nil {
		return nil, fmt.Errorf("load sla candidates: %w", err)
	}

	type ownerBatch struct {
		owner *models.User
		items []models.WorkItem
	}
	var order []uint
	batches := make(map[uint]*ownerBatch)
	for _, item := range due {
		if item.Owner == nil || !item.Owner.Active || item.Owner.Email == "" {
			continue
		}
		batch, ok := batches[item.Owner.ID]
		if !ok {
			batch = &ownerBatch{owner: item.Owner}
			batches[item.Owner.ID] = batch
			order = append(order, item.Owner.ID)
		}
		batch.items = append(batch.items, item)
	}

	reminded, itemCount, failed := 0, 0, 0
	for _, ownerID := range order {
		batch := batches[ownerID]
		html, err := s.render(batch.owner, batch.items, now)
		if err == nil {
			err = s.mailer.SendMail(ctx, []string{batch.owner.Email}, slaSubject(len(batch.items)), html)
		}
		if err != nil {
			failed++
			s.logger.Warn("sla reminder not delivered", slog.String("email", batch.owner.Email), slog.Any("error", err))
			continue
		}

		ids := make([]uint, len(batch.items))
		for i, item := range batch.items {
			ids[i] = item.ID
		}
		if err := s.items.MarkSLAReminded(ctx, ids, now); err != nil {
			return nil, fmt.Errorf("stamp sla reminders: %w", err)
		}
		reminded++
		itemCount += len(batch.items)
	}

	return JobResult{"reminded": reminded, "items": itemCount, "failed": failed}, nil
}

func slaSubject(n int) string {
	if n == 1 {
		return "1 work item needs attention"
	}
	return fmt.Sprintf("%d work items need attention", n)
}

func (s *SLAReminderService) render(owner *models.User, items []models.WorkItem, now time.Time) (string, error) {
	overdue := emailSection{Heading: "Past SLA"}
	soon := emailSection{Heading: "Due soon"}
	for _, item := range items {
		line := emailLine{Title: item.Title, Detail: "SLA " + formatDay(*item.SLADueAt)}
		if item.SLADueAt.Before(now) {
			line.Alert = true
			overdue.Lines = append(overdue.Lines, line)
		} else {
			soon.Lines = append(soon.Lines, line)
		}
	}

	var sections []emailSection
	for _, sec := range []emailSection{overdue, soon} {
		if len(sec.Lines) > 0 {
			sections = append(sections, sec)
		}
	}

	greeting := "Hello,"
	if owner.Name != "" {
		greeting = "Hello " + owner.Name + ","
	}
	return renderEmail(emailView{
		Subject:    slaSubject(len(items)),
		Paragraphs: []string{greeting, "These work items you own are at or near their SLA."},
		Sections:   sections,
		ButtonText: "Open work items",
		ButtonURL:  s.baseURL + "/work-items",
	})
}
