package handlers

import (
	"net/http"
	"strconv"
	"time"

	"questionnaire-service/internal/service"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	Service *service.SessionService
}

func NewHistoryHandler(s *service.SessionService) *HistoryHandler {
	return &HistoryHandler{Service: s}
}

type historyItem struct {
	SessionID   string         `json:"sessionId"`
	Responses   map[string]any `json:"responses"`
	TotalScore  int            `json:"totalScore"`
	CompletedAt *time.Time     `json:"completedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// GetHistory handles GET /api/history: the completed-session feed for the
// results page, most recent completion first.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	sessions, total, err := h.Service.ListCompletedSessions(c.Request.Context(), queryUserID(c), page, limit)
	if err != nil {
		serverError(c, "Failed to load history", err)
		return
	}

	history := make([]historyItem, 0, len(sessions))
	for _, s := range sessions {
		history = append(history, historyItem{
			SessionID:   s.SessionID,
			Responses:   s.Responses,
			TotalScore:  s.TotalScore,
			CompletedAt: s.CompletedAt,
			CreatedAt:   s.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"count":   len(history),
		"total":   total,
	})
}
