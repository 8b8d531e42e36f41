package handler

import (
	"errors"
	"net/http"

	"tink/internal/model"
	"tink/internal/service"

	"github.com/gin-gonic/gin"
)

// ConflictHandler handles conflict detection and resolution session requests
type ConflictHandler struct {
	conflicts *service.ConflictService
	sessions  *service.SessionManager
}

// NewConflictHandler creates a new conflict handler
func NewConflictHandler(conflicts *service.ConflictService, sessions *service.SessionManager) *ConflictHandler {
	return &ConflictHandler{
		conflicts: conflicts,
		sessions:  sessions,
	}
}

// ListConflicts handles GET /api/v1/conflicts
func (h *ConflictHandler) ListConflicts(c *gin.Context) {
	groups, err := h.conflicts.AllConflicts(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to detect conflicts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": groups, "total": len(groups)})
}

// GetPropertyConflicts handles GET /api/v1/properties/:id/conflicts
func (h *ConflictHandler) GetPropertyConflicts(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	group, err := h.conflicts.Conflicts(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, "Failed to load conflicts", err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// CreateSession handles POST /api/v1/properties/:id/conflict-sessions
func (h *ConflictHandler) CreateSession(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	sess, err := h.conflicts.OpenSession(c.Request.Context(), propertyID, req)
	if err != nil {
		respondError(c, "Failed to open session", err)
		return
	}
	c.JSON(http.StatusCreated, sess.View())
}

// GetSession handles GET /api/v1/conflict-sessions/:sid
func (h *ConflictHandler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// GenerateRecommendations handles POST /api/v1/conflict-sessions/:sid/recommendations
func (h *ConflictHandler) GenerateRecommendations(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	if _, err := sess.GenerateRecommendations(); err != nil {
		respondError(c, "Failed to generate recommendations", err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// SetMode handles PUT /api/v1/conflict-sessions/:sid/mode
func (h *ConflictHandler) SetMode(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req model.SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := sess.SetMode(service.Mode(req.Mode)); err != nil {
		respondError(c, "Failed to set mode", err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// SetResolution handles PUT /api/v1/conflict-sessions/:sid/resolutions/:appId
func (h *ConflictHandler) SetResolution(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	appID, ok := parseID(c, "appId")
	if !ok {
		return
	}

	var req model.ManualActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if _, err := sess.SetManualAction(appID, model.Action(req.Action), req.RoomID); err != nil {
		respondError(c, "Failed to set resolution", err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// Submit handles POST /api/v1/conflict-sessions/:sid/submit
func (h *ConflictHandler) Submit(c *gin.Context) {
	sid := c.Param("sid")

	resp, err := h.conflicts.Submit(c.Request.Context(), sid)
	if err != nil {
		var submitErr *service.SubmitError
		if errors.As(err, &submitErr) && resp != nil {
			c.JSON(http.StatusBadGateway, resp)
			return
		}
		respondError(c, "Failed to submit resolutions", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DiscardSession handles DELETE /api/v1/conflict-sessions/:sid
func (h *ConflictHandler) DiscardSession(c *gin.Context) {
	if err := h.sessions.Discard(c.Param("sid")); err != nil {
		respondError(c, "Failed to discard session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ConflictHandler) session(c *gin.Context) (*service.Session, bool) {
	sess, err := h.sessions.Get(c.Param("sid"))
	if err != nil {
		respondError(c, "Failed to load session", err)
		return nil, false
	}
	return sess, true
}
