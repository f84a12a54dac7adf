package models

import "time"

type QuestionDef struct {
	ID       string   `bson:"id" json:"id"`
	Type     string   `bson:"type" json:"type"`
	Label    string   `bson:"label" json:"label"`
	Options  []string `bson:"options,omitempty" json:"options,omitempty"`
	Required bool     `bson:"required" json:"required"`
}

type QuestionnaireStep struct {
	Step      int           `bson:"step" json:"step"`
	Title     string        `bson:"title" json:"title"`
	Questions []QuestionDef `bson:"questions" json:"questions"`
}

// Questionnaire is the versioned form definition stored in the "questions"
// collection. Exactly one document is active at a time.
type Questionnaire struct {
	ID        string              `bson:"id" json:"id"`
	Title     string              `bson:"title" json:"title"`
	Steps     []QuestionnaireStep `bson:"steps" json:"steps"`
	IsActive  bool                `bson:"isActive" json:"isActive"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
