package controllers

import (
	"net/http"
	"strings"
	"time"

	"publishing-ops-api/apperrors"
	"publishing-ops-api/models"
	"publishing-ops-api/utils"

	"github.com/gin-gonic/gin"
)

var issueFields = utils.AllowList{
	"title":        {Column: "title", Kind: utils.KindString, Required: true, MaxLen: 255},
	"volume":       {Column: "volume", Kind: utils.KindInt, Min: utils.IntPtr(0)},
	"number":       {Column: "number", Kind: utils.KindInt, Min: utils.IntPtr(0)},
	"publish_date": {Column: "publish_date", Kind: utils.KindTime, Nullable: true},
	"status":       {Column: "status", Kind: utils.KindString, OneOf: models.MagazineIssueStatuses},
	"sort_order":   {Column: "sort_order", Kind: utils.KindInt},
}

var magazineItemFields = utils.AllowList{
	"title":       {Column: "title", Kind: utils.KindString, Required: true, MaxLen: 255},
	"author_name": {Column: "author_name", Kind: utils.KindString, MaxLen: 255},
	"section":     {Column: "section", Kind: utils.KindString, MaxLen: 64},
	"status":      {Column: "status", Kind: utils.KindString, OneOf: models.MagazineItemStatuses},
	"word_count":  {Column: "word_count", Kind: utils.KindInt, Min: utils.IntPtr(0)},
	"page_start":  {Column: "page_start", Kind: utils.KindInt, Nullable: true, Min: utils.IntPtr(1)},
	"notes":       {Column: "notes", Kind: utils.KindString},
	"owner_id":    {Column: "owner_id", Kind: utils.KindID, Nullable: true},
	"sort_order":  {Column: "sort_order", Kind: utils.KindInt},
}

type createIssueRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Volume      int        `json:"volume" binding:"min=0"`
	Number      int        `json:"number" binding:"min=0"`
	PublishDate *time.Time `json:"publish_date"`
	Status      string     `json:"status" binding:"omitempty,oneof=planning production published"`
	SortOrder   int        `json:"sort_order"`
}

type createMagazineItemRequest struct {
	Title      string `json:"title" binding:"required,max=255"`
	AuthorName string `json:"author_name" binding:"max=255"`
	Section    string `json:"section" binding:"max=64"`
	Status     string `json:"status" binding:"omitempty,oneof=pitched assigned drafted edited final"`
	WordCount  int    `json:"word_count" binding:"min=0"`
	PageStart  *int   `json:"page_start" binding:"omitempty,min=1"`
	Notes      string `json:"notes"`
	OwnerID    *uint  `json:"owner_id"`
	SortOrder  int    `json:"sort_order"`
}

func (h *Handlers) ListIssues(c *gin.Context) {
	issues, err := h.Magazine.ListIssues(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issues})
}

func (h *Handlers) GetIssue(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	issue, err := h.Magazine.GetIssue(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issue})
}

func (h *Handlers) CreateIssue(c *gin.Context) {
	var req createIssueRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	title := utils.SanitizeInput(req.Title)
	if title == "" {
		h.respondError(c, apperrors.ValidationFields(map[string]string{"title": "must not be empty"}))
		return
	}
	issue := &models.MagazineIssue{
		Title:       title,
		Volume:      req.Volume,
		Number:      req.Number,
		PublishDate: req.PublishDate,
		Status:      req.Status,
		SortOrder:   req.SortOrder,
	}
	if issue.Status == "" {
		issue.Status = models.MagazineIssueStatuses[0]
	}
	if err := h.Magazine.CreateIssue(c.Request.Context(), issue); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": issue})
}

func (h *Handlers) UpdateIssue(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	updates, err := pickUpdates(c, issueFields)
	if err != nil {
		h.respondError(c, err)
		return
	}
	issue, err := h.Magazine.UpdateIssue(c.Request.Context(), id, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issue})
}

func (h *Handlers) DeleteIssue(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Magazine.DeleteIssue(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListMagazineItems(c *gin.Context) {
	issueID, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, err := h.Magazine.GetIssue(c.Request.Context(), issueID); err != nil {
		h.respondError(c, err)
		return
	}
	items, err := h.Magazine.ListItems(c.Request.Context(), issueID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handlers) CreateMagazineItem(c *gin.Context) {
	issueID, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req createMagazineItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	title := utils.SanitizeInput(req.Title)
	if title == "" {
		h.respondError(c, apperrors.ValidationFields(map[string]string{"title": "must not be empty"}))
		return
	}
	if _, err := h.Magazine.GetIssue(c.Request.Context(), issueID); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.checkOwner(c, req.OwnerID); err != nil {
		h.respondError(c, err)
		return
	}

	item := &models.MagazineItem{
		IssueID:    issueID,
		Title:      title,
		AuthorName: strings.TrimSpace(req.AuthorName),
		Section:    strings.TrimSpace(req.Section),
		Status:     req.Status,
		WordCount:  req.WordCount,
		PageStart:  req.PageStart,
		Notes:      req.Notes,
		OwnerID:    req.OwnerID,
		SortOrder:  req.SortOrder,
	}
	if item.Status == "" {
		item.Status = models.MagazineItemStatuses[0]
	}
	if item.Status == models.MagazineItemStatusFinal {
		now := h.now().UTC()
		item.CompletedAt = &now
	}
	if err := h.Magazine.CreateItem(c.Request.Context(), item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (h *Handlers) UpdateMagazineItem(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	updates, err := pickUpdates(c, magazineItemFields)
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
	// Reaching final completes the item; leaving it reopens.
	if status, ok := updates["status"].(string); ok {
		if status == models.MagazineItemStatusFinal {
			current, err := h.Magazine.GetItem(c.Request.Context(), id)
			if err != nil {
				h.respondError(c, err)
				return
			}
			if current.CompletedAt == nil {
				updates["completed_at"] = h.now().UTC()
			}
		} else {
			updates["completed_at"] = nil
		}
	}

	item, err := h.Magazine.UpdateItem(c.Request.Context(), id, updates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *Handlers) DeleteMagazineItem(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Magazine.DeleteItem(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ReorderMagazineItems(c *gin.Context) {
	issueID, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req reorderRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Magazine.ReorderItems(c.Request.Context(), issueID, req.IDs); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
