package handlers

import (
	"net/http"
	"strconv"

	"questionnaire-service/internal/models"
	"questionnaire-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// saveSessionRequest mirrors the client payload. Pointer fields distinguish
// "absent" from zero values so validation can report what is missing.
type saveSessionRequest struct {
	SessionID  string           `json:"sessionId"`
	Responses  map[string]any   `json:"responses"`
	Progress   *models.Progress `json:"progress"`
	TotalScore *int             `json:"totalScore"`
	UserID     *string          `json:"userId"`
}

// validate never trusts client data; it collects every problem instead of
// stopping at the first one.
func (r *saveSessionRequest) validate() []string {
	var errs []string
	if r.SessionID == "" {
		errs = append(errs, "sessionId is required and must be a string")
	}
	if r.Responses == nil {
		errs = append(errs, "responses is required and must be an object")
	}
	if r.Progress == nil {
		errs = append(errs, "progress is required and must be an object")
	} else if r.Progress.CurrentStep < 1 || r.Progress.CurrentStep > r.Progress.TotalSteps {
		errs = append(errs, "progress.currentStep must be between 1 and progress.totalSteps")
	}
	return errs
}

// SaveResponses handles POST /api/responses: validate, save, report.
func (h *SessionHandler) SaveResponses(c *gin.Context) {
	var req saveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": []string{err.Error()},
		})
		return
	}

	if errs := req.validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid session data",
			"details": errs,
		})
		return
	}

	userID := req.UserID
	if userID == nil {
		if header := c.GetHeader("X-User-ID"); header != "" {
			userID = &header
		}
	}

	result, err := h.Service.SaveSession(c.Request.Context(), models.SaveSessionInput{
		SessionID:  req.SessionID,
		Responses:  req.Responses,
		Progress:   *req.Progress,
		TotalScore: req.TotalScore,
		UserID:     userID,
	})
	if err != nil {
		serverError(c, "Failed to save session", err)
		return
	}

	status := http.StatusOK
	message := "Progress saved and score updated"
	if result.Created {
		status = http.StatusCreated
		message = "Session created and score calculated"
	}
	c.JSON(status, gin.H{
		"success":         true,
		"sessionId":       result.SessionID,
		"calculatedScore": result.CalculatedScore,
		"created":         result.Created,
		"message":         message,
	})
}

// GetResponses handles GET /api/responses. With a sessionId query parameter
// it returns that single session; without one it pages through completed
// sessions.
func (h *SessionHandler) GetResponses(c *gin.Context) {
	if sessionID := c.Query("sessionId"); sessionID != "" {
		session, err := h.Service.GetSessionByID(c.Request.Context(), sessionID)
		if err != nil {
			serverError(c, "Failed to load session", err)
			return
		}
		if session == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": session})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	userID := queryUserID(c)

	sessions, total, err := h.Service.ListCompletedSessions(c.Request.Context(), userID, page, limit)
	if err != nil {
		serverError(c, "Failed to load sessions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
		"total":    total,
	})
}

// UpdateScore handles PUT /api/responses?sessionId=...: manual score fix.
func (h *SessionHandler) UpdateScore(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sessionId parameter"})
		return
	}

	var body struct {
		NewScore *int `json:"newScore"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.NewScore == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "newScore must be a number"})
		return
	}

	modified, err := h.Service.UpdateSessionScore(c.Request.Context(), sessionID, *body.NewScore)
	if err != nil {
		serverError(c, "Failed to update score", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": sessionID,
		"newScore":  *body.NewScore,
		"modified":  modified,
	})
}

// StartSession handles POST /api/sessions: issues a collision-resistant
// server-generated session id instead of the client clock-derived scheme.
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID := queryUserID(c)
	if header := c.GetHeader("X-User-ID"); userID == nil && header != "" {
		userID = &header
	}

	result, err := h.Service.StartSession(c.Request.Context(), userID)
	if err != nil {
		serverError(c, "Failed to start session", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"sessionId": result.SessionID,
	})
}

// DeleteSession handles DELETE /api/sessions/:id. Admin cleanup, not part
// of the questionnaire flow.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.Service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		serverError(c, "Failed to delete session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func queryUserID(c *gin.Context) *string {
	if v := c.Query("userId"); v != "" {
		return &v
	}
	return nil
}
