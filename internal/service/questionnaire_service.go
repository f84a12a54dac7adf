package service

import (
	"context"
	"time"

	"questionnaire-service/internal/cache"
	"questionnaire-service/internal/models"

	"github.com/sirupsen/logrus"
)

const questionnaireCacheKey = "questionnaire:active"
const questionnaireCacheTTL = 5 * time.Minute

// QuestionnaireStore is the lookup surface for form definitions.
type QuestionnaireStore interface {
	FindActive(ctx context.Context) (*models.Questionnaire, error)
}

type QuestionnaireService struct {
	Store QuestionnaireStore
	Cache cache.Cache
	Log   *logrus.Logger
}

func NewQuestionnaireService(store QuestionnaireStore, c cache.Cache, log *logrus.Logger) *QuestionnaireService {
	return &QuestionnaireService{Store: store, Cache: c, Log: log}
}

// GetActiveQuestionnaire returns the active form definition, or nil when no
// questionnaire is active. Served from cache when one is configured; cache
// errors degrade to a store read.
func (s *QuestionnaireService) GetActiveQuestionnaire(ctx context.Context) (*models.Questionnaire, error) {
	if s.Cache != nil {
		var cached models.Questionnaire
		hit, err := s.Cache.GetJSON(ctx, questionnaireCacheKey, &cached)
		if err != nil {
			s.Log.WithError(err).Warn("questionnaire cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	q, err := s.Store.FindActive(ctx)
	if err != nil || q == nil {
		return q, err
	}

	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, questionnaireCacheKey, q, questionnaireCacheTTL); err != nil {
			s.Log.WithError(err).Warn("questionnaire cache write failed")
		}
	}
	return q, nil
}
