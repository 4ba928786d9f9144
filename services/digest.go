package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"publishing-ops-api/config"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"

	"golang.org/x/sync/errgroup"
)

const JobDigest = "digest"

// DigestService sends each active user a summary of their open work.
type DigestService struct {
	users       repository.UserRepository
	items       repository.WorkItemRepository
	magazine    repository.MagazineRepository
	mailer      config.Mailer
	dueSoon     time.Duration
	concurrency int
	baseURL     string
	logger      *slog.Logger
	now         func() time.Time
}

func NewDigestService(
	users repository.UserRepository,
	items repository.WorkItemRepository,
	magazine repository.MagazineRepository,
	mailer config.Mailer,
	cfg *config.AppConfig,
	logger *slog.Logger,
) *DigestService {
	if logger == nil {
		logger = slog.Default()
	}
	days := cfg.Jobs.DigestDueSoonDays
	if days <= 0 {
		days = 7
	}
	concurrency := cfg.Jobs.DigestSendConcurrent
	if concurrency <= 0 {
		concurrency = 4
	}
	return &DigestService{
		users:       users,
		items:       items,
		magazine:    magazine,
		mailer:      mailer,
		dueSoon:     time.Duration(days) * 24 * time.Hour,
		concurrency: concurrency,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		logger:      logger,
		now:         time.Now,
	}
}

// userDigest is what one user is told about.
type userDigest struct {
	user      models.User
	overdue   []models.WorkItem
	dueSoon   []models.WorkItem
	completed []models.WorkItem
	magazine  []models.MagazineItem
}

func (d *userDigest) empty() bool {
	return len(d.overdue)+len(d.dueSoon)+len(d.completed)+len(d.magazine) == 0
}

func (d *userDigest) openItems() int {
	return len(d.overdue) + len(d.dueSoon)
}

func (s *DigestService) Run(ctx context.Context) (JobResult, error) {
	now := s.now().UTC()
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	var digests []*userDigest
	skipped, openItems := 0, 0
	for _, user := range users {
		digest, err := s.build(ctx, user, now)
		if err != nil {
			return nil, err
		}
		if digest.empty() {
			skipped++
			continue
		}
		openItems += digest.openItems()
		digests = append(digests, digest)
	}

	var (
		mu     sync.Mutex
		sent   int
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, digest := range digests {
		g.Go(func() error {
			err := s.send(gctx, digest, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				s.logger.Warn("digest not delivered", slog.String("email", digest.user.Email), slog.Any("error", err))
				return nil
			}
			sent++
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("digest finished",
		slog.Int("users", len(users)),
		slog.Int("sent", sent),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
	)
	return JobResult{
		"summary": map[string]any{
			"users":     len(users),
			"skipped":   skipped,
			"failed":    failed,
			"openItems": openItems,
		},
		"sent": sent,
	}, nil
}

func (s *DigestService) build(ctx context.Context, user models.User, now time.Time) (*userDigest, error) {
	digest := &userDigest{user: user}

	open, err := s.items.ListOpenByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load open items for %s: %w", user.Email, err)
	}
	horizon := now.Add(s.dueSoon)
	for _, item := range open {
		switch {
		case item.DueAt == nil:
		case item.DueAt.Before(now):
			digest.overdue = append(digest.overdue, item)
		case !item.DueAt.After(horizon):
			digest.dueSoon = append(digest.dueSoon, item)
		}
	}

	if digest.completed, err = s.items.ListCompletedSince(ctx, user.ID, now.Add(-24*time.Hour)); err != nil {
		return nil, fmt.Errorf("load completed items for %s: %w", user.Email, err)
	}
	if digest.magazine, err = s.magazine.ListOpenItemsByOwner(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("load magazine items for %s: %w", user.Email, err)
	}
	return digest, nil
}

func (s *DigestService) send(ctx context.Context, digest *userDigest, now time.Time) error {
	subject := "Your daily digest for " + formatDay(now)

	var sections []emailSection
	addWork := func(heading string, items []models.WorkItem, alert bool, detail func(models.WorkItem) string) {
		if len(items) == 0 {
			return
		}
		sec := emailSection{Heading: heading}
		for _, item := range items {
			sec.Lines = append(sec.Lines, emailLine{Title: item.Title, Detail: detail(item), Alert: alert})
		}
		sections = append(sections, sec)
	}
	dueDetail := func(item models.WorkItem) string { return "due " + formatDay(*item.DueAt) }
	addWork("Overdue", digest.overdue, true, dueDetail)
	addWork("Due this week", digest.dueSoon, false, dueDetail)
	addWork("Completed in the last day", digest.completed, false, func(item models.WorkItem) string {
		return "done " + formatDay(*item.CompletedAt)
	})
	if len(digest.magazine) > 0 {
		sec := emailSection{Heading: "Magazine pieces"}
		for _, item := range digest.magazine {
			sec.Lines = append(sec.Lines, emailLine{Title: item.Title, Detail: item.Status})
		}
		sections = append(sections, sec)
	}

	html, err := renderEmail(emailView{
		Subject:    subject,
		Paragraphs: []string{"Here is what is on your plate today."},
		Sections:   sections,
		ButtonText: "Open the dashboard",
		ButtonURL:  s.baseURL + "/",
	})
	if err != nil {
		return err
	}
	return s.mailer.SendMail(ctx, []string{digest.user.Email}, subject, html)
}
