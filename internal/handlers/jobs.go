package handlers

import (
	"errors"
	"net/http"

	"foodshare/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListJobs returns the names of the scheduled jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.jobs.Names()})
}

// RunJob runs a scheduled job immediately and returns its counters.
func (h *Handler) RunJob(c *gin.Context) {
	name := c.Param("name")
	h.logger.Info("Running job on demand", zap.String("job", name))

	fields, err := h.jobs.RunNow(c.Request.Context(), name)
	switch {
	case errors.Is(err, services.ErrUnknownJob):
		h.handleError(c, http.StatusNotFound, "Unknown job", err)
		return
	case errors.Is(err, services.ErrJobRunning):
		h.handleError(c, http.StatusConflict, "Job is already running", err)
		return
	case err != nil:
		h.handleError(c, http.StatusInternalServerError, "Job failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": name, "fields": fields})
}
