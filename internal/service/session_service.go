package service

import (
	"context"
	"time"

	"questionnaire-service/internal/event"
	"questionnaire-service/internal/models"
	"questionnaire-service/internal/repository"
	"questionnaire-service/internal/score"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// Identifier of the questionnaire version new sessions are pinned to.
const activeQuestionnaireID = "dev-profile-2024"

// Number of form steps in the active questionnaire.
const defaultTotalSteps = 5

// SessionStore is the persistence surface the session service needs. The
// Mongo implementation lives in internal/repository; tests substitute an
// in-memory fake.
type SessionStore interface {
	Upsert(ctx context.Context, sessionID string, set bson.M, setOnInsert bson.M) (repository.UpsertResult, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	FindCompleted(ctx context.Context, userID *string, skip, limit int64) ([]models.Session, error)
	CountCompleted(ctx context.Context, userID *string) (int64, error)
	UpdateScore(ctx context.Context, sessionID string, newScore int, updatedAt time.Time) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// EventPublisher is the slice of the AMQP publisher the service uses.
// A nil publisher disables events without touching the save path.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type SessionService struct {
	Store     SessionStore
	Publisher EventPublisher
	Log       *logrus.Logger

	now func() time.Time
}

func NewSessionService(store SessionStore, publisher EventPublisher, log *logrus.Logger) *SessionService {
	return &SessionService{
		Store:     store,
		Publisher: publisher,
		Log:       log,
		now:       time.Now,
	}
}

// SaveSession upserts one questionnaire session keyed by its sessionId.
//
// The score comes from the input when the client supplied one, otherwise it
// is calculated from the responses. Completion is stamped when the current
// step reaches the last step; a session never leaves the completed state on
// later saves. Store errors propagate unmodified, nothing is retried here.
func (s *SessionService) SaveSession(ctx context.Context, input models.SaveSessionInput) (models.SaveSessionResult, error) {
	calculatedScore := 0
	if input.TotalScore != nil {
		calculatedScore = *input.TotalScore
	} else {
		calculatedScore = score.TotalScore(input.Responses)
	}

	now := s.now().UTC()
	completed := input.Progress.Completed()

	set := bson.M{
		"responses":  input.Responses,
		"progress":   input.Progress,
		"totalScore": calculatedScore,
		"userId":     input.UserID,
		"updatedAt":  now,
	}
	if completed {
		set["isCompleted"] = true
		set["completedAt"] = now
	}
	setOnInsert := bson.M{
		"createdAt":       now,
		"startedAt":       now,
		"questionnaireId": activeQuestionnaireID,
	}

	res, err := s.Store.Upsert(ctx, input.SessionID, set, setOnInsert)
	if err != nil {
		return models.SaveSessionResult{}, err
	}

	s.Log.WithFields(logrus.Fields{
		"sessionId": input.SessionID,
		"score":     calculatedScore,
		"questions": len(input.Responses),
		"created":   res.Created,
		"completed": completed,
	}).Info("session saved")

	s.publish(event.SessionSaved, bson.M{
		"sessionId": input.SessionID,
		"score":     calculatedScore,
		"created":   res.Created,
	})
	if completed {
		s.publish(event.SessionCompleted, bson.M{
			"sessionId": input.SessionID,
			"score":     calculatedScore,
		})
	}

	return models.SaveSessionResult{
		Success:         true,
		SessionID:       input.SessionID,
		Created:         res.Created,
		Modified:        res.Modified,
		CalculatedScore: calculatedScore,
	}, nil
}

// StartSession issues a fresh server-generated session id and persists the
// empty shell. Clients that generate their own ids can skip this and go
// straight to SaveSession.
func (s *SessionService) StartSession(ctx context.Context, userID *string) (models.SaveSessionResult, error) {
	input := models.SaveSessionInput{
		SessionID: uuid.NewString(),
		Responses: map[string]any{},
		Progress:  models.Progress{CurrentStep: 1, TotalSteps: defaultTotalSteps},
		UserID:    userID,
	}
	return s.SaveSession(ctx, input)
}

// GetSessionByID returns the session or nil when it does not exist.
func (s *SessionService) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.Store.FindBySessionID(ctx, sessionID)
}

// ListCompletedSessions pages through finished sessions, newest completion
// first, optionally scoped to one user.
func (s *SessionService) ListCompletedSessions(ctx context.Context, userID *string, page, limit int) ([]models.Session, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	skip := int64(page-1) * int64(limit)

	sessions, err := s.Store.FindCompleted(ctx, userID, skip, int64(limit))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.CountCompleted(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// UpdateSessionScore overwrites the score of an existing session, for
// manual corrections or recalculation after a rule change.
func (s *SessionService) UpdateSessionScore(ctx context.Context, sessionID string, newScore int) (bool, error) {
	modified, err := s.Store.UpdateScore(ctx, sessionID, newScore, s.now().UTC())
	if err != nil {
		return false, err
	}
	if modified {
		s.Log.WithFields(logrus.Fields{
			"sessionId": sessionID,
			"newScore":  newScore,
		}).Info("session score updated")
		s.publish(event.ScoreUpdated, bson.M{
			"sessionId": sessionID,
			"score":     newScore,
		})
	}
	return modified, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.Store.Delete(ctx, sessionID)
}

func (s *SessionService) publish(routingKey string, payload any) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(routingKey, payload); err != nil {
		s.Log.WithError(err).WithField("event", routingKey).Warn("event publish failed")
	}
}
