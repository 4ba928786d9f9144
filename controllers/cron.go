package controllers

import (
	"log/slog"
	"strconv"

	"publishing-ops-api/services"

	"github.com/gin-gonic/gin"
)

// RunCronJob returns a handler that runs job through the Runner. The cron
// secret is checked by middleware before this runs.
func (h *Handlers) RunCronJob(job string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.runJob(c, job, services.TriggerCron)
	}
}

// SyncAuthors runs the directory sync on behalf of an admin. The cooldown
// applies as it does for cron.
func (h *Handlers) SyncAuthors(c *gin.Context) {
	h.runJob(c, services.JobDirectorySync, services.TriggerManual)
}

func (h *Handlers) runJob(c *gin.Context, job, trigger string) {
	outcome, err := h.Jobs.Run(c.Request.Context(), job, trigger)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if wait := outcome.RetryAfter(); wait > 0 {
		c.Header("Retry-After", strconv.Itoa(wait))
	}
	if !outcome.OK() {
		h.Logger.Warn("job request failed",
			slog.String("job", job),
			slog.String("trigger", trigger),
			slog.Int("status", outcome.HTTPStatus()),
		)
	}
	c.JSON(outcome.HTTPStatus(), outcome.Body())
}
