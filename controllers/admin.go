package controllers

import (
	"net/http"
	"strings"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/middleware"
	"publishing-ops-api/models"
	"publishing-ops-api/utils"

	"github.com/gin-gonic/gin"
)

var userFields = utils.AllowList{
	"name":   {Column: "name", Kind: utils.KindString, MaxLen: 255},
	"role":   {Column: "role", Kind: utils.KindString, OneOf: []string{models.RoleAdmin, models.RoleMember}},
	"active": {Column: "active", Kind: utils.KindBool},
}

var recurringDeadlineFields = utils.AllowList{
	"title":        {Column: "title", Kind: utils.KindString, Required: true, MaxLen: 255},
	"cadence":      {Column: "cadence", Kind: utils.KindString, OneOf: []string{models.CadenceWeekly, models.CadenceMonthly}},
	"weekday":      {Column: "weekday", Kind: utils.KindInt, Min: utils.IntPtr(0), Max: utils.IntPtr(6)},
	"day_of_month": {Column: "day_of_month", Kind: utils.KindInt, Min: utils.IntPtr(1), Max: utils.IntPtr(31)},
	"lead_days":    {Column: "lead_days", Kind: utils.KindInt, Min: utils.IntPtr(0), Max: utils.IntPtr(365)},
	"sla_hours":    {Column: "sla_hours", Kind: utils.KindInt, Min: utils.IntPtr(0)},
	"owner_id":     {Column: "owner_id", Kind: utils.KindID, Nullable: true},
	"active":       {Column: "active", Kind: utils.KindBool},
}

type createUserRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name" binding:"max=255"`
	Role  string `json:"role" binding:"omitempty,oneof=admin member"`
}

type createRecurringDeadlineRequest struct {
	Title      string `json:"title" binding:"required,max=255"`
	Cadence    string `json:"cadence" binding:"required,oneof=weekly monthly"`
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	DayOfMonth int    `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	LeadDays   int    `json:"lead_days" binding:"min=0,max=365"`
	SLAHours   int    `json:"sla_hours" binding:"min=0"`
	OwnerID    *uint  `json:"owner_id"`
	Active     *bool  `json:"active"`
}

func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// CreateUser pre-registers a teammate so they can be assigned work before
// their first sign-in.
func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	email := strings.ToLower(utils.SanitizeInput(req.Email))
	if !utils.ValidateEmail(email) {
		h.respondError(c, apperrors.ValidationFields(map[string]string{"email": "must be a valid email address"}))
		return
	}
	user := &models.User{Email: email, Name: utils.SanitizeInput(req.Name), Role: req.Role, Active: true}
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	if err := h.Users.Create(c.Request.Context(), user); err != nil {
		h.respondError(c, err)
		return
	}
	h.audit(c, models.AuditActionCreate, "user", user.ID, map[string]any{"email": user.Email, "role": user.Role})
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (h *Handlers) UpdateUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	updates, err := pickUpdates(c, userFields)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if self := middleware.CurrentUser(c); self != nil && self.ID == id {
		if role, ok := updates["role"]; ok && role != models.RoleAdmin {
			h.respondError(c, apperrors.Validation("you cannot remove your own admin role"))
			return
		}
		if active, ok := updates["active"]; ok && active == false {
			h.respondError(c, apperrors.Validation("you cannot deactivate yourself"))
			return
		}
	}

	user, err := h.Users.Update(c.Request.Context(), id, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.audit(c, models.AuditActionUpdate, "user", user.ID, updates)
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *Handlers) ListRecurringDeadlines(c *gin.Context) {
	deadlines, err := h.Deadlines.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deadlines})
}

func (h *Handlers) GetRecurringDeadline(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	deadline, err := h.Deadlines.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deadline})
}

func (h *Handlers) CreateRecurringDeadline(c *gin.Context) {
	var req createRecurringDeadlineRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.checkOwner(c, req.OwnerID); err != nil {
		h.respondError(c, err)
		return
	}
	deadline := &models.RecurringDeadline{
		Title:      utils.SanitizeInput(req.Title),
		Cadence:    req.Cadence,
		Weekday:    req.Weekday,
		DayOfMonth: req.DayOfMonth,
		LeadDays:   req.LeadDays,
		SLAHours:   req.SLAHours,
		OwnerID:    req.OwnerID,
		Active:     req.Active == nil || *req.Active,
	}
	if deadline.DayOfMonth == 0 {
		deadline.DayOfMonth = 1
	}
	if err := h.Deadlines.Create(c.Request.Context(), deadline); err != nil {
		h.respondError(c, err)
		return
	}
	h.audit(c, models.AuditActionCreate, "recurring_deadline", deadline.ID, map[string]any{"title": deadline.Title, "cadence": deadline.Cadence})
	c.JSON(http.StatusCreated, gin.H{"data": deadline})
}

func (h *Handlers) UpdateRecurringDeadline(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	updates, err := pickUpdates(c, recurringDeadlineFields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if owner, ok := updates["owner_id"].(uint); ok {
		if err := h.checkOwner(c, &owner); err != nil {
			h.respondError(c, err)
			return
		}
	}
	deadline, err := h.Deadlines.Update(c.Request.Context(), id, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.audit(c, models.AuditActionUpdate, "recurring_deadline", id, updates)
	c.JSON(http.StatusOK, gin.H{"data": deadline})
}

func (h *Handlers) DeleteRecurringDeadline(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Deadlines.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	h.audit(c, models.AuditActionDelete, "recurring_deadline", id, nil)
	c.Status(http.StatusNoContent)
}

// AdminHealth reports the latest run per job and the last directory sync.
func (h *Handlers) AdminHealth(c *gin.Context) {
	report, err := h.Deps.Health.Report(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// ListJobRuns pages the run log, newest first (?job=, ?limit=, ?offset=).
func (h *Handlers) ListJobRuns(c *gin.Context) {
	page := parsePage(c)
	runs, total, err := h.RunLogs.List(c.Request.Context(), c.Query("job"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, runs, total, page)
}

func (h *Handlers) ListSyncRuns(c *gin.Context) {
	page := parsePage(c)
	runs, total, err := h.SyncRuns.List(c.Request.Context(), models.SyncKindDirectory, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, runs, total, page)
}

func (h *Handlers) ListAudit(c *gin.Context) {
	page := parsePage(c)
	events, total, err := h.Audit.List(c.Request.Context(), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, events, total, page)
}
