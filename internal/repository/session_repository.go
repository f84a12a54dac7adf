package repository

import (
	"context"
	"time"

	"questionnaire-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertResult mirrors what the store reported back: Created when a new
// document was inserted, Modified when an existing one changed.
type UpsertResult struct {
	Created  bool
	Modified bool
}

type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions")}
}

// Upsert applies set to the session keyed by sessionId, inserting it with
// the additional setOnInsert fields when no document exists yet. Atomic at
// the single-document level, so concurrent saves for the same sessionId
// resolve to last-write-wins without duplicate documents.
func (r *SessionRepository) Upsert(ctx context.Context, sessionID string, set bson.M, setOnInsert bson.M) (UpsertResult, error) {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return UpsertResult{}, err
	}
	return UpsertResult{
		Created:  res.UpsertedCount > 0,
		Modified: res.ModifiedCount > 0,
	}, nil
}

// FindBySessionID returns the session or nil when none exists. A missing
// session is a regular result here, not an error.
func (r *SessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	projection := bson.M{
		"_id":             0,
		"sessionId":       1,
		"responses":       1,
		"progress":        1,
		"totalScore":      1,
		"userId":          1,
		"createdAt":       1,
		"startedAt":       1,
		"updatedAt":       1,
		"completedAt":     1,
		"isCompleted":     1,
		"questionnaireId": 1,
	}

	var session models.Session
	err := r.Col.FindOne(ctx,
		bson.M{"sessionId": sessionID},
		options.FindOne().SetProjection(projection),
	).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func completedFilter(userID *string) bson.M {
	filter := bson.M{
		"isCompleted": true,
		"totalScore":  bson.M{"$exists": true},
	}
	if userID != nil {
		filter["userId"] = *userID
	}
	return filter
}

// FindCompleted lists finished sessions, most recently completed first.
func (r *SessionRepository) FindCompleted(ctx context.Context, userID *string, skip, limit int64) ([]models.Session, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0}).
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.Col.Find(ctx, completedFilter(userID), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sessions []models.Session
	for cur.Next(ctx) {
		var s models.Session
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, cur.Err()
}

func (r *SessionRepository) CountCompleted(ctx context.Context, userID *string) (int64, error) {
	return r.Col.CountDocuments(ctx, completedFilter(userID))
}

// UpdateScore overwrites the stored score of an existing session. Reports
// whether anything actually changed; a missing session simply changes
// nothing.
func (r *SessionRepository) UpdateScore(ctx context.Context, sessionID string, newScore int, updatedAt time.Time) (bool, error) {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$set": bson.M{"totalScore": newScore, "updatedAt": updatedAt}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// Delete removes a session. Not part of the save/score flow; kept for
// admin cleanup.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.Col.DeleteOne(ctx, bson.M{"sessionId": sessionID})
	return err
}
