// Package app wires configuration into the repositories, services and jobs
// shared by the API server and opsctl.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"publishing-ops-api/config"
	"publishing-ops-api/events"
	"publishing-ops-api/repository"
	"publishing-ops-api/services"
	"publishing-ops-api/sheets"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Events events.Publisher

	Users     *repository.GormUserRepository
	WorkItems *repository.GormWorkItemRepository
	Subtasks  *repository.GormSubtaskRepository
	Magazine  *repository.GormMagazineRepository
	Authors   *repository.GormTexasAuthorRepository
	Deadlines *repository.GormRecurringDeadlineRepository
	RunLogs   *repository.GormRunLogStore
	SyncRuns  *repository.GormSyncRunRepository
	Audit     *repository.GormAuditRepository

	Jobs   *services.Jobs
	Health *services.HealthService
}

// New opens the database, optional Redis and AMQP connections and builds the
// job registry. Sheets credentials are optional; without them the directory
// sync reports that it is not configured.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, sqlLog io.Writer) (*App, error) {
	db, err := config.OpenDB(cfg, sqlLog)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, DB: db}

	a.Redis, err = config.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Events, err = events.New(cfg.AMQP, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Users = repository.NewUserRepository(db)
	a.WorkItems = repository.NewWorkItemRepository(db)
	a.Subtasks = repository.NewSubtaskRepository(db)
	a.Magazine = repository.NewMagazineRepository(db)
	a.Authors = repository.NewTexasAuthorRepository(db)
	a.Deadlines = repository.NewRecurringDeadlineRepository(db)
	a.RunLogs = repository.NewRunLogStore(db)
	a.SyncRuns = repository.NewSyncRunRepository(db)
	a.Audit = repository.NewAuditRepository(db)

	var source services.SheetSource
	if client, err := sheets.NewClient(ctx, cfg.Sheets); err == nil {
		source = client
	} else {
		logger.Warn("google sheets client unavailable", slog.String("error", err.Error()))
	}

	mailer := config.NewSMTPMailer(cfg.SMTP)
	runner := services.NewRunner(a.RunLogs, a.Events, logger, cfg.Jobs)
	a.Jobs = services.NewJobs(runner,
		services.NewDigestService(a.Users, a.WorkItems, a.Magazine, mailer, cfg, logger),
		services.NewDeadlineService(a.Deadlines, a.WorkItems, cfg.Jobs, logger),
		services.NewSLAReminderService(a.WorkItems, mailer, cfg, logger),
		services.NewDirectorySyncService(source, a.Authors, a.SyncRuns,
			services.NewLocker(a.Redis, logger), cfg, logger),
	)
	a.Health = services.NewHealthService(a.RunLogs, a.SyncRuns, a.Jobs.Names(), a.Ping)
	return a, nil
}

// Ping checks the database connection.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) Close() error {
	var errs []error
	if a.Events != nil {
		errs = append(errs, a.Events.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}
