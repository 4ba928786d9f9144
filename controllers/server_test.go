package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"publishing-ops-api/auth"
	"publishing-ops-api/config"
	"publishing-ops-api/controllers"
	"publishing-ops-api/middleware"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/routes"
	"publishing-ops-api/services"
	"publishing-ops-api/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const cronSecret = "cron-secret-for-tests"

type memMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *memMailer) SendMail(_ context.Context, to []string, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to...)
	return nil
}

func (m *memMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type staticSheet struct {
	rows [][]string
}

func (s staticSheet) Values(context.Context, string, string) ([][]string, error) {
	return s.rows, nil
}

func (s staticSheet) FirstSheetTitle(context.Context, string) (string, error) {
	return "Sheet1", nil
}

type server struct {
	router   *gin.Engine
	db       *gorm.DB
	users    *repository.GormUserRepository
	items    *repository.GormWorkItemRepository
	runLogs  *repository.GormRunLogStore
	sessions *auth.SessionManager
	mailer   *memMailer
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		BaseURL: "https://ops.example.org",
		Auth: config.AuthConfig{
			Mode:           config.AuthModeMock,
			SessionSecret:  "a-session-secret-that-is-long-enough",
			SessionTTL:     time.Hour,
			AllowedDomains: []string{"example.org"},
			AdminEmails:    []string{"boss@example.org"},
			DevEmail:       "dev@example.org",
			OIDC:           config.OIDCConfig{RedirectURL: "http://localhost/api/v1/auth/callback"},
		},
		Cron: config.CronConfig{Secret: cronSecret},
		Jobs: config.JobsConfig{
			Timeout:              time.Minute,
			RunLogWriteTimeout:   time.Second,
			SyncCooldown:         5 * time.Minute,
			DeadlineHorizonDays:  30,
			SLAReminderWindow:    24 * time.Hour,
			SLAReminderInterval:  24 * time.Hour,
			DigestDueSoonDays:    7,
			DigestSendConcurrent: 4,
		},
		Sheets: config.SheetsConfig{SpreadsheetID: "sheet-1", SheetName: "Texas Authors"},
	}
}

func newServer(t *testing.T, sheetRows [][]string) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewDB(t)

	s := &server{
		db:      db,
		users:   repository.NewUserRepository(db),
		items:   repository.NewWorkItemRepository(db),
		runLogs: repository.NewRunLogStore(db),
		mailer:  &memMailer{},
	}
	magazine := repository.NewMagazineRepository(db)
	authors := repository.NewTexasAuthorRepository(db)
	deadlines := repository.NewRecurringDeadlineRepository(db)
	syncRuns := repository.NewSyncRunRepository(db)

	runner := services.NewRunner(s.runLogs, nil, logger, cfg.Jobs)
	jobs := services.NewJobs(runner,
		services.NewDigestService(s.users, s.items, magazine, s.mailer, cfg, logger),
		services.NewDeadlineService(deadlines, s.items, cfg.Jobs, logger),
		services.NewSLAReminderService(s.items, s.mailer, cfg, logger),
		services.NewDirectorySyncService(staticSheet{rows: sheetRows}, authors, syncRuns, nil, cfg, logger),
	)

	s.sessions = auth.NewSessionManager(cfg.Auth, nil)
	provider, err := auth.NewProvider(context.Background(), cfg.Auth)
	require.NoError(t, err)

	h := controllers.New(controllers.Deps{
		Config:    cfg,
		Logger:    logger,
		Users:     s.users,
		WorkItems: s.items,
		Subtasks:  repository.NewSubtaskRepository(db),
		Magazine:  magazine,
		Authors:   authors,
		Deadlines: deadlines,
		RunLogs:   s.runLogs,
		SyncRuns:  syncRuns,
		Audit:     repository.NewAuditRepository(db),
		Jobs:      jobs,
		Health:    services.NewHealthService(s.runLogs, syncRuns, jobs.Names(), nil),
		Sessions:  s.sessions,
		Provider:  provider,
		SignIn:    auth.NewSignIn(s.users, cfg.Auth),
	})

	s.router = gin.New()
	routes.SetupRoutes(s.router, h, middleware.NewAuthenticator(s.sessions, s.users, logger), cfg.Cron.Secret)
	return s
}

// login creates the user and returns a session cookie for it.
func (s *server) login(t *testing.T, email, role string) (*models.User, *http.Cookie) {
	t.Helper()
	user := &models.User{Email: email, Name: email, Role: role, Active: true}
	require.NoError(t, s.users.Create(context.Background(), user))
	token, _, err := s.sessions.Issue(context.Background(), user)
	require.NoError(t, err)
	return user, &http.Cookie{Name: auth.SessionCookie, Value: token}
}

type call struct {
	method  string
	path    string
	body    any
	cookies []*http.Cookie
	header  map[string]string
}

func (s *server) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch v := c.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *server) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func (s *server) seedOverdueOwners(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	due := time.Now().Add(-48 * time.Hour)
	for i := 0; i < n; i++ {
		user := &models.User{Email: fmt.Sprintf("editor%02d@example.org", i), Role: models.RoleMember, Active: true}
		require.NoError(t, s.users.Create(ctx, user))
		require.NoError(t, s.items.Create(ctx, &models.WorkItem{Title: "Late piece", OwnerID: &user.ID, DueAt: &due}))
	}
}
