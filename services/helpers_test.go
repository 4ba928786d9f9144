package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"publishing-ops-api/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		BaseURL: "https://ops.example.org",
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
		Sheets: config.SheetsConfig{
			SpreadsheetID: "sheet-1",
			SheetName:     "Texas Authors",
		},
	}
}

// fakeClock advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// recordingMailer captures deliveries and fails for listed recipients.
type recordingMailer struct {
	mu      sync.Mutex
	sent    map[string][]string
	failFor map[string]bool
}

func newRecordingMailer(failFor ...string) *recordingMailer {
	m := &recordingMailer{sent: make(map[string][]string), failFor: make(map[string]bool)}
	for _, addr := range failFor {
		m.failFor[addr] = true
	}
	return m
}

func (m *recordingMailer) SendMail(_ context.Context, to []string, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, addr := range to {
		if m.failFor[addr] {
			return errors.New("mailbox unavailable")
		}
	}
	for _, addr := range to {
		m.sent[addr] = append(m.sent[addr], subject)
	}
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, subjects := range m.sent {
		n += len(subjects)
	}
	return n
}
