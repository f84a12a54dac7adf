package repository

import (
	"context"

	"questionnaire-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuestionnaireRepository struct {
	Col *mongo.Collection
}

func NewQuestionnaireRepository(db *mongo.Database) *QuestionnaireRepository {
	return &QuestionnaireRepository{Col: db.Collection("questions")}
}

// FindActive returns the active questionnaire definition, or nil when none
// is marked active.
func (r *QuestionnaireRepository) FindActive(ctx context.Context) (*models.Questionnaire, error) {
	var q models.Questionnaire
	err := r.Col.FindOne(ctx, bson.M{"isActive": true}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}
