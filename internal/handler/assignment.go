package handler

import (
	"net/http"
	"strconv"
	"strings"

	"tink/internal/model"
	"tink/internal/service"

	"github.com/gin-gonic/gin"
)

// AssignmentHandler handles the single application room assignment flow
type AssignmentHandler struct {
	assignments *service.AssignmentService
	scorer      *service.Scorer
	maxLimit    int
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignments *service.AssignmentService, scorer *service.Scorer, maxLimit int) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		scorer:      scorer,
		maxLimit:    maxLimit,
	}
}

// Recommendations handles GET /api/v1/applications/:id/room-recommendations
func (h *AssignmentHandler) Recommendations(c *gin.Context) {
	appID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var opts service.RecommendationOptions
	if v := c.Query("min_score"); v != "" {
		minScore, err := strconv.ParseFloat(v, 64)
		if err != nil || minScore < 0 || minScore > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_score must be a number between 0 and 100"})
			return
		}
		opts.MinScore = &minScore
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		// Validate and cap limits
		if h.maxLimit > 0 && (limit == 0 || limit > h.maxLimit) {
			limit = h.maxLimit
		}
		opts.Limit = &limit
	}
	opts.Filter.RoomType = c.Query("room_type")
	if v := c.Query("features"); v != "" {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				opts.Filter.Features = append(opts.Filter.Features, f)
			}
		}
	}

	resp, err := h.assignments.Recommend(c.Request.Context(), appID, opts)
	if err != nil {
		respondError(c, "Failed to recommend rooms", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AssignRoom handles POST /api/v1/applications/:id/assign-room
func (h *AssignmentHandler) AssignRoom(c *gin.Context) {
	appID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.assignments.AssignRoom(c.Request.Context(), appID, req.RoomID); err != nil {
		respondError(c, "Failed to assign room", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"application_id": appID,
		"room_id":        req.RoomID,
		"message":        "Room assigned successfully",
	})
}

// Compatibility handles POST /api/v1/compatibility
func (h *AssignmentHandler) Compatibility(c *gin.Context) {
	var req model.CompatibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.scorer.Evaluate(req.Application, req.Room))
}
