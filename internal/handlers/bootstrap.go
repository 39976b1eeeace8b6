package handlers

import (
	"errors"
	"net/http"

	"foodshare/internal/auth"
	"foodshare/internal/database"

	"github.com/gin-gonic/gin"
)

func (h *Handler) clientConfig() gin.H {
	fcm := h.cfg.FCM
	return gin.H{
		"fcm": gin.H{
			"api_key":             fcm.APIKey,
			"messaging_sender_id": fcm.MessagingSenderID,
			"project_id":          fcm.ProjectID,
			"app_id":              fcm.AppID,
		},
		"sentry": gin.H{
			"dsn": h.cfg.Sentry.ClientDSN,
		},
	}
}

// ConfigHandler returns the settings frontends need before login.
func (h *Handler) ConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.clientConfig())
}

// BootstrapHandler returns everything a frontend loads on start in one call.
func (h *Handler) BootstrapHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var user any
	if id, ok := auth.UserIDFromContext(c); ok {
		u, err := h.users.Find(ctx, id)
		switch {
		case errors.Is(err, database.ErrUserNotFound):
		case err != nil:
			h.handleError(c, http.StatusInternalServerError, "Failed to load user", err)
			return
		default:
			user = u
		}
	}

	groups, err := h.groups.ListWithMemberCounts(ctx)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to load groups", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"server": gin.H{"revision": h.cfg.Revision},
		"config": h.clientConfig(),
		"user":   user,
		"groups": groups,
	})
}
