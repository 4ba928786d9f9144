package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListAuthors searches the Texas Authors directory (?q=, ?limit=, ?offset=).
func (h *Handlers) ListAuthors(c *gin.Context) {
	page := parsePage(c)
	authors, total, err := h.Authors.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondPage(c, authors, total, page)
}

func (h *Handlers) GetAuthor(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	author, err := h.Authors.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": author})
}
