package handlers

import (
	"net/http"

	"questionnaire-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuestionnaireHandler struct {
	Service *service.QuestionnaireService
}

func NewQuestionnaireHandler(s *service.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{Service: s}
}

// GetQuestionnaire handles GET /api/questions: the active form definition.
func (h *QuestionnaireHandler) GetQuestionnaire(c *gin.Context) {
	q, err := h.Service.GetActiveQuestionnaire(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to load questionnaire", err)
		return
	}
	if q == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Questionnaire not found"})
		return
	}
	c.JSON(http.StatusOK, q)
}
