package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/middleware"
	"publishing-ops-api/models"
	"publishing-ops-api/repository"
	"publishing-ops-api/utils"

	"github.com/gin-gonic/gin"
)

var workItemFields = utils.AllowList{
	"title":       {Column: "title", Kind: utils.KindString, Required: true, MaxLen: 255},
	"description": {Column: "description", Kind: utils.KindString},
	"status":      {Column: "status", Kind: utils.KindString, OneOf: models.WorkItemStatuses},
	"priority":    {Column: "priority", Kind: utils.KindString, OneOf: models.WorkItemPriorities},
	"owner_id":    {Column: "owner_id", Kind: utils.KindID, Nullable: true},
	"due_at":      {Column: "due_at", Kind: utils.KindTime, Nullable: true},
	"sla_due_at":  {Column: "sla_due_at", Kind: utils.KindTime, Nullable: true},
	"sort_order":  {Column: "sort_order", Kind: utils.KindInt},
}

type createWorkItemRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=todo in_progress blocked done"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	OwnerID     *uint      `json:"owner_id"`
	DueAt       *time.Time `json:"due_at"`
	SLADueAt    *time.Time `json:"sla_due_at"`
	SortOrder   int        `json:"sort_order"`
}

// ListWorkItems supports ?owner=me|<id>, ?status= and ?include_closed=true.
func (h *Handlers) ListWorkItems(c *gin.Context) {
	filter := repository.WorkItemFilter{
		Status:        c.Query("status"),
		IncludeClosed: c.Query("include_closed") == "true",
	}
	switch owner := c.Query("owner"); owner {
	case "":
	case "me":
		id := middleware.CurrentUser(c).ID
		filter.OwnerID = &id
	default:
		id, err := strconv.ParseUint(owner, 10, 64)
		if err != nil {
			h.respondError(c, apperrors.Validation("invalid owner"))
			return
		}
		uid := uint(id)
		filter.OwnerID = &uid
	}

	items, err := h.WorkItems.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handlers) GetWorkItem(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	item, err := h.WorkItems.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *Handlers) CreateWorkItem(c *gin.Context) {
	var req createWorkItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	title := utils.SanitizeInput(req.Title)
	if title == "" {
		h.respondError(c, apperrors.ValidationFields(map[string]string{"title": "must not be empty"}))
		return
	}

	item := &models.WorkItem{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		OwnerID:     req.OwnerID,
		DueAt:       req.DueAt,
		SLADueAt:    req.SLADueAt,
		SortOrder:   req.SortOrder,
	}
	if item.Status == "" {
		item.Status = models.WorkItemStatusTodo
	}
	if item.Priority == "" {
		item.Priority = "normal"
	}
	if item.Status == models.WorkItemStatusDone {
		now := h.now().UTC()
		item.CompletedAt = &now
	}
	if err := h.checkOwner(c, item.OwnerID); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.WorkItems.Create(c.Request.Context(), item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (h *Handlers) UpdateWorkItem(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	updates, err := pickUpdates(c, workItemFields)
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

	// Status and completed_at move together.
	if status, ok := updates["status"].(string); ok {
		if status == models.WorkItemStatusDone {
			current, err := h.WorkItems.Get(c.Request.Context(), id)
			if err != nil {
				h.respondError(c, err)
				return
			}
			if !current.IsComplete() {
				updates["completed_at"] = h.now().UTC()
			}
		} else {
			updates["completed_at"] = nil
		}
	}

	item, err := h.WorkItems.Update(c.Request.Context(), id, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *Handlers) DeleteWorkItem(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.WorkItems.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) CompleteWorkItem(c *gin.Context) {
	h.setWorkItemCompletion(c, true)
}

func (h *Handlers) ReopenWorkItem(c *gin.Context) {
	h.setWorkItemCompletion(c, false)
}

func (h *Handlers) setWorkItemCompletion(c *gin.Context, done bool) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	updates := map[string]any{"completed_at": nil, "status": models.WorkItemStatusTodo}
	if done {
		updates = map[string]any{"completed_at": h.now().UTC(), "status": models.WorkItemStatusDone}
	}
	item, err := h.WorkItems.Update(c.Request.Context(), id, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *Handlers) ReorderWorkItems(c *gin.Context) {
	var req reorderRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.WorkItems.Reorder(c.Request.Context(), req.IDs); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// checkOwner rejects owner ids that do not name an active user.
func (h *Handlers) checkOwner(c *gin.Context, ownerID *uint) error {
	if ownerID == nil {
		return nil
	}
	user, err := h.Users.Get(c.Request.Context(), *ownerID)
	if apperrors.IsNotFound(err) || (err == nil && !user.Active) {
		return apperrors.ValidationFields(map[string]string{"owner_id": "must reference an active user"})
	}
	return err
}
