package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/config"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
)

const (
	JobDirectorySync = "directory-sync"

	directorySyncLock = "sync:" + models.SyncKindDirectory
	maxRowErrors      = 50
	maxSyncErrorLen   = 2000
)

// SheetSource reads raw spreadsheet values.
type SheetSource interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	FirstSheetTitle(ctx context.Context, spreadsheetID string) (string, error)
}

// RowError reports a row that could not be mapped. Row is 1-based as shown
// in the spreadsheet.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type DirectorySyncSummary struct {
	Range     string     `json:"range"`
	Fetched   int        `json:"fetched"`
	Created   int        `json:"created"`
	Updated   int        `json:"updated"`
	Unchanged int        `json:"unchanged"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors"`
}

func (s *DirectorySyncSummary) addError(row int, msg string) {
	s.Skipped++
	if len(s.Errors) < maxRowErrors {
		s.Errors = append(s.Errors, RowError{Row: row, Message: msg})
	}
}

func (s *DirectorySyncSummary) Result() JobResult {
	errs := s.Errors
	if errs == nil {
		errs = []RowError{}
	}
	return JobResult{
		"range":     s.Range,
		"fetched":   s.Fetched,
		"created":   s.Created,
		"updated":   s.Updated,
		"unchanged": s.Unchanged,
		"skipped":   s.Skipped,
		"errors":    errs,
	}
}

// DirectorySyncService mirrors the Texas Authors spreadsheet into
// texas_authors. Rows missing from a fetch are kept.
type DirectorySyncService struct {
	sheets  SheetSource
	authors repository.TexasAuthorRepository
	runs    repository.SyncRunRepository
	locker  Locker
	cfg     config.SheetsConfig
	logger  *slog.Logger

	cooldown time.Duration
	lockTTL  time.Duration
	now      func() time.Time
}

// NewDirectorySyncService wires the sync. sheets may be nil when no
// credentials are configured; runs then fail with an internal error.
func NewDirectorySyncService(
	sheets SheetSource,
	authors repository.TexasAuthorRepository,
	runs repository.SyncRunRepository,
	locker Locker,
	cfg *config.AppConfig,
	logger *slog.Logger,
) *DirectorySyncService {
	if locker == nil {
		locker = NoopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectorySyncService{
		sheets:   sheets,
		authors:  authors,
		runs:     runs,
		locker:   locker,
		cfg:      cfg.Sheets,
		logger:   logger,
		cooldown: cfg.Jobs.SyncCooldown,
		lockTTL:  cfg.Jobs.Timeout,
		now:      time.Now,
	}
}

// Run is the JobFunc for the directory sync.
func (s *DirectorySyncService) Run(ctx context.Context) (JobResult, error) {
	summary, err := s.Sync(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Result(), nil
}

// Sync enforces the cooldown, then fetches and upserts every row.
func (s *DirectorySyncService) Sync(ctx context.Context) (*DirectorySyncSummary, error) {
	if err := s.checkCooldown(ctx); err != nil {
		return nil, err
	}
	if s.sheets == nil || strings.TrimSpace(s.cfg.SpreadsheetID) == "" {
		return nil, apperrors.Internal("directory sync is not configured", nil)
	}

	release, err := s.locker.Acquire(ctx, directorySyncLock, s.lockTTL)
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("sync already running")
		}
		return nil, err
	}
	defer release()

	summary := &DirectorySyncSummary{}
	if err := s.syncRows(ctx, summary); err != nil {
		s.recordRun(ctx, summary, err)
		return nil, err
	}
	s.recordRun(ctx, summary, nil)

	s.logger.Info("directory sync finished",
		slog.String("range", summary.Range),
		slog.Int("fetched", summary.Fetched),
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("unchanged", summary.Unchanged),
		slog.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (s *DirectorySyncService) checkCooldown(ctx context.Context) error {
	if s.cooldown <= 0 {
		return nil
	}
	latest, err := s.runs.Latest(ctx, models.SyncKindDirectory)
	if err != nil {
		return fmt.Errorf("load latest sync run: %w", err)
	}
	if latest == nil {
		return nil
	}
	elapsed := s.now().Sub(latest.CreatedAt)
	if elapsed >= s.cooldown {
		return nil
	}
	if elapsed < 0 {
		elapsed = 0
	}
	wait := int(math.Ceil((s.cooldown - elapsed).Seconds()))
	if wait < 1 {
		wait = 1
	}
	return apperrors.RateLimited(wait)
}

func (s *DirectorySyncService) syncRows(ctx context.Context, summary *DirectorySyncSummary) error {
	rng, err := ResolveSheetRange(ctx, s.cfg, func(ctx context.Context) (string, error) {
		return s.sheets.FirstSheetTitle(ctx, s.cfg.SpreadsheetID)
	})
	if err != nil {
		return err
	}
	summary.Range = rng

	rows, err := s.sheets.Values(ctx, s.cfg.SpreadsheetID, rng)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	columns := mapHeader(rows[0])
	syncedAt := s.now().UTC()
	seen := make(map[string]int)
	var parsed []models.TexasAuthor

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		summary.Fetched++

		author := columns.author(row)
		key := SyncKey(&author)
		if key == "" {
			summary.addError(rowNum, "row has no id, email or name")
			continue
		}
		if first, dup := seen[key]; dup {
			summary.addError(rowNum, fmt.Sprintf("duplicate of row %d (%s)", first, key))
			continue
		}
		seen[key] = rowNum
		author.SyncKey = key
		author.LastSyncedAt = syncedAt
		parsed = append(parsed, author)
	}

	keys := make([]string, 0, len(parsed))
	for _, a := range parsed {
		keys = append(keys, a.SyncKey)
	}
	existing, err := s.authors.FindBySyncKeys(ctx, keys)
	if err != nil {
		return fmt.Errorf("load existing authors: %w", err)
	}

	var unchanged []string
	for i := range parsed {
		author := &parsed[i]
		current, found := existing[author.SyncKey]
		if found && current.SameContent(author) {
			summary.Unchanged++
			unchanged = append(unchanged, author.SyncKey)
			continue
		}
		if err := s.authors.Upsert(ctx, author); err != nil {
			return fmt.Errorf("upsert author %s: %w", author.SyncKey, err)
		}
		if found {
			summary.Updated++
		} else {
			summary.Created++
		}
	}

	if err := s.authors.TouchSynced(ctx, unchanged, syncedAt); err != nil {
		return fmt.Errorf("touch unchanged authors: %w", err)
	}
	return nil
}

func (s *DirectorySyncService) recordRun(ctx context.Context, summary *DirectorySyncSummary, syncErr error) {
	run := &models.SyncRun{
		Kind:           models.SyncKindDirectory,
		Status:         models.SyncRunStatusSuccess,
		FetchedCount:   summary.Fetched,
		CreatedCount:   summary.Created,
		UpdatedCount:   summary.Updated,
		UnchangedCount: summary.Unchanged,
		SkippedCount:   summary.Skipped,
		SheetRange:     summary.Range,
		CreatedAt:      s.now().UTC(),
	}
	if syncErr != nil {
		msg := syncErr.Error()
		if len(msg) > maxSyncErrorLen {
			msg = msg[:maxSyncErrorLen-3] + "..."
		}
		run.Status = models.SyncRunStatusFailed
		run.ErrorMessage = &msg
	}

	writeCtx, cancel := detachedWithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.runs.Create(writeCtx, run); err != nil {
		s.logger.Error("failed to record sync run", slog.String("status", run.Status), slog.Any("error", err))
	}
}

// SyncKey derives the identity of a directory row: external id, then
// lowercase email, then lowercase full name with collapsed whitespace.
func SyncKey(a *models.TexasAuthor) string {
	if a.ExternalID != nil {
		if id := strings.TrimSpace(*a.ExternalID); id != "" {
			return "id:" + id
		}
	}
	if email := strings.ToLower(strings.TrimSpace(a.Email)); email != "" {
		return "email:" + email
	}
	if name := strings.ToLower(strings.Join(strings.Fields(a.FullName), " ")); name != "" {
		return "name:" + name
	}
	return ""
}

type authorField int

const (
	fieldExtra authorField = iota
	fieldExternalID
	fieldFullName
	fieldFirstName
	fieldLastName
	fieldEmail
	fieldPhone
	fieldCity
	fieldWebsite
	fieldGenres
	fieldNotes
)

var headerAliases = map[string]authorField{
	"id":           fieldExternalID,
	"authorid":     fieldExternalID,
	"externalid":   fieldExternalID,
	"name":         fieldFullName,
	"fullname":     fieldFullName,
	"authorname":   fieldFullName,
	"firstname":    fieldFirstName,
	"lastname":     fieldLastName,
	"email":        fieldEmail,
	"emailaddress": fieldEmail,
	"phone":        fieldPhone,
	"phonenumber":  fieldPhone,
	"city":         fieldCity,
	"location":     fieldCity,
	"website":      fieldWebsite,
	"url":          fieldWebsite,
	"genre":        fieldGenres,
	"genres":       fieldGenres,
	"notes":        fieldNotes,
}

type headerColumn struct {
	field authorField
	label string
}

type headerMap []headerColumn

// NormalizeHeader lowercases and keeps only letters and digits.
func NormalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mapHeader(header []string) headerMap {
	columns := make(headerMap, len(header))
	claimed := make(map[authorField]bool)
	for i, label := range header {
		label = strings.TrimSpace(label)
		field, ok := headerAliases[NormalizeHeader(label)]
		if !ok || claimed[field] {
			field = fieldExtra
		} else {
			claimed[field] = true
		}
		columns[i] = headerColumn{field: field, label: label}
	}
	return columns
}

func (h headerMap) author(row []string) models.TexasAuthor {
	var a models.TexasAuthor
	for i, col := range h {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		switch col.field {
		case fieldExternalID:
			id := value
			a.ExternalID = &id
		case fieldFullName:
			a.FullName = strings.Join(strings.Fields(value), " ")
		case fieldFirstName:
			a.FirstName = value
		case fieldLastName:
			a.LastName = value
		case fieldEmail:
			a.Email = strings.ToLower(value)
		case fieldPhone:
			a.Phone = value
		case fieldCity:
			a.City = value
		case fieldWebsite:
			a.Website = value
		case fieldGenres:
			a.Genres = value
		case fieldNotes:
			a.Notes = value
		default:
			if col.label == "" {
				continue
			}
			if a.Extra == nil {
				a.Extra = make(map[string]string)
			}
			a.Extra[col.label] = value
		}
	}
	if a.FullName == "" {
		a.FullName = strings.TrimSpace(a.FirstName + " " + a.LastName)
	}
	return a
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
