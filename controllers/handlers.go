// Package controllers holds the gin handlers for the ops API.
package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/auth"
	"publishing-ops-api/config"
	"publishing-ops-api/middleware"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/services"
	"publishing-ops-api/utils"

	"github.com/gin-gonic/gin"
)

// Deps wires handlers to their collaborators.
type Deps struct {
	Config     *config.AppConfig
	Logger     *slog.Logger
	Users      repository.UserRepository
	WorkItems  repository.WorkItemRepository
	Subtasks   repository.SubtaskRepository
	Magazine   repository.MagazineRepository
	Authors    repository.TexasAuthorRepository
	Deadlines  repository.RecurringDeadlineRepository
	RunLogs    repository.RunLogStore
	SyncRuns   repository.SyncRunRepository
	Audit      repository.AuditRepository
	Jobs       *services.Jobs
	Health     *services.HealthService
	Sessions   *auth.SessionManager
	Provider   auth.Provider
	SignIn     *auth.SignIn
}

type Handlers struct {
	Deps
	now func() time.Time
}

func New(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Handlers{Deps: deps, now: time.Now}
}

// respondError writes the standard error envelope for err.
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("internal server error", err)
	}
	status := appErr.HTTPStatus()

	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		// Internal causes are logged, never returned.
		if appErr.Code == apperrors.CodeInternal {
			c.JSON(status, gin.H{"error": "internal server error"})
			return
		}
	}

	body := gin.H{"error": appErr.Message}
	switch appErr.Code {
	case apperrors.CodeValidation:
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
	case apperrors.CodeRateLimited:
		c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
		body["retryAfterSeconds"] = appErr.RetryAfter
	}
	c.JSON(status, body)
}

// bindObject decodes the request body as a JSON object. An empty body is an
// empty object.
func bindObject(c *gin.Context) (map[string]any, error) {
	body := map[string]any{}
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return body, nil
		}
		return nil, apperrors.Validation("request body must be a JSON object")
	}
	return body, nil
}

// pickUpdates binds a PATCH body and keeps only allow-listed fields.
func pickUpdates(c *gin.Context, allowed utils.AllowList) (map[string]any, error) {
	body, err := bindObject(c)
	if err != nil {
		return nil, err
	}
	updates, fieldErrs := allowed.Pick(body)
	if len(fieldErrs) > 0 {
		return nil, apperrors.ValidationFields(fieldErrs)
	}
	return updates, nil
}

// bindJSON binds a create payload and reports binding failures as validation errors.
func bindJSON(c *gin.Context, dest any) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return apperrors.Validation("invalid request: " + err.Error())
	}
	return nil
}

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid " + param)
	}
	return uint(id), nil
}

func parsePage(c *gin.Context) repository.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return repository.Page{Limit: limit, Offset: offset}.Normalize()
}

func respondPage(c *gin.Context, data any, total int64, page repository.Page) {
	c.JSON(http.StatusOK, gin.H{
		"data":   data,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

type reorderRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// audit records an admin mutation. Failures are logged and swallowed.
func (h *Handlers) audit(c *gin.Context, action, entity string, entityID uint, changes map[string]any) {
	if h.Audit == nil {
		return
	}
	actor := middleware.CurrentUser(c)
	event := &models.AuditEvent{Action: action, Entity: entity, EntityID: entityID, Changes: changes}
	if actor != nil {
		event.ActorID = actor.ID
		event.ActorEmail = actor.Email
	}
	if err := h.Audit.Create(c.Request.Context(), event); err != nil {
		h.Logger.Warn("audit write failed",
			slog.String("entity", entity),
			slog.Uint64("entity_id", uint64(entityID)),
			slog.String("error", err.Error()),
		)
	}
}
