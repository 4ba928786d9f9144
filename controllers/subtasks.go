package controllers

import (
	"net/http"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"
	"publishing-ops-api/utils"

	"github.com/gin-gonic/gin"
)

var subtaskFields = utils.AllowList{
	"title":      {Column: "title", Kind: utils.KindString, Required: true, MaxLen: 255},
	"sort_order": {Column: "sort_order", Kind: utils.KindInt},
}

type createSubtaskRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handlers) ListSubtasks(c *gin.Context) {
	workItemID, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.WorkItems.Get(c.Request.Context(), workItemID); err != nil {
		h.respondError(c, err)
		return
	}
	subtasks, err := h.Subtasks.ListByWorkItem(c.Request.Context(), workItemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subtasks})
}

func (h *Handlers) CreateSubtask(c *gin.Context) {
	workItemID, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req createSubtaskRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	title := utils.SanitizeInput(req.Title)
	if title == "" {
		h.respondError(c, apperrors.ValidationFields(map[string]string{"title": "must not be empty"}))
		return
	}
	if _, err := h.WorkItems.Get(c.Request.Context(), workItemID); err != nil {
		h.respondError(c, err)
		return
	}

	subtask := &models.Subtask{WorkItemID: workItemID, Title: title, SortOrder: req.SortOrder}
	if err := h.Subtasks.Create(c.Request.Context(), subtask); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": subtask})
}

func (h *Handlers) UpdateSubtask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	updates, err := pickUpdates(c, subtaskFields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	subtask, err := h.Subtasks.Update(c.Request.Context(), id, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subtask})
}

func (h *Handlers) DeleteSubtask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Subtasks.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleSubtask flips completion.
func (h *Handlers) ToggleSubtask(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	current, err := h.Subtasks.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var completedAt any
	if current.CompletedAt == nil {
		completedAt = h.now().UTC()
	}
	subtask, err := h.Subtasks.Update(c.Request.Context(), id, map[string]any{"completed_at": completedAt})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subtask})
}
