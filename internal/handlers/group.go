package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"foodshare/internal/auth"
	"foodshare/internal/database"

	"github.com/gin-gonic/gin"
)

func groupIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("group_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid group id")
	}
	return uint(id), nil
}

// ListGroups returns all groups with their member counts
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.groups.ListWithMemberCounts(c.Request.Context())
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to fetch groups", err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GetGroup returns a single group
func (h *Handler) GetGroup(c *gin.Context) {
	id, err := groupIDParam(c)
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid group ID", err)
		return
	}

	group, err := h.groups.Find(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrGroupNotFound) {
			h.handleError(c, http.StatusNotFound, "Group not found", err)
			return
		}
		h.handleError(c, http.StatusInternalServerError, "Failed to fetch group", err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// MarkSeen records a visit of the current user to a group. Lifecycle flags of
// a returning member are cleared.
func (h *Handler) MarkSeen(c *gin.Context) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	groupID, err := groupIDParam(c)
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid group ID", err)
		return
	}

	now := h.now()
	if err := h.memberships.MarkSeen(c.Request.Context(), groupID, userID, now); err != nil {
		if errors.Is(err, database.ErrMembershipNotFound) {
			h.handleError(c, http.StatusNotFound, "You are not a member of this group", err)
			return
		}
		h.handleError(c, http.StatusInternalServerError, "Failed to mark group as seen", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"group_id": groupID, "lastseen_at": now})
}
