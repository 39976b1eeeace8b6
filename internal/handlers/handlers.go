package handlers

import (
	"context"
	"net/http"
	"time"

	"foodshare/internal/config"
	"foodshare/internal/database"
	"foodshare/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GroupReader is the group access the handlers need.
type GroupReader interface {
	Find(ctx context.Context, id uint) (*models.Group, error)
	ListWithMemberCounts(ctx context.Context) ([]database.GroupWithCount, error)
}

// MembershipWriter records member visits.
type MembershipWriter interface {
	MarkSeen(ctx context.Context, groupID, userID uint, now time.Time) error
}

// UserReader loads the current user.
type UserReader interface {
	Find(ctx context.Context, id uint) (*models.User, error)
}

// JobRunner triggers scheduled jobs on demand.
type JobRunner interface {
	RunNow(ctx context.Context, name string) (map[string]float64, error)
	Names() []string
}

// Handler serves the HTTP API.
type Handler struct {
	cfg         *config.Config
	groups      GroupReader
	memberships MembershipWriter
	users       UserReader
	jobs        JobRunner
	logger      *zap.Logger
	now         func() time.Time
}

func New(cfg *config.Config, groups GroupReader, memberships MembershipWriter, users UserReader, jobs JobRunner, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:         cfg,
		groups:      groups,
		memberships: memberships,
		users:       users,
		jobs:        jobs,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// handleError provides a consistent way to handle and log errors
func (h *Handler) handleError(c *gin.Context, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Debug(message, zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message})
}

// HomeHandler handles requests to the root path "/"
func (h *Handler) HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to foodshare!")
}

// HealthHandler is a simple health check endpoint
func (h *Handler) HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
