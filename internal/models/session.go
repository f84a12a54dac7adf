package models

import "time"

// Progress tracks where a client is inside the multi-step questionnaire.
// A session counts as completed once CurrentStep reaches TotalSteps.
type Progress struct {
	CurrentStep int `bson:"currentStep" json:"currentStep"`
	TotalSteps  int `bson:"totalSteps" json:"totalSteps"`
}

func (p Progress) Completed() bool {
	return p.TotalSteps > 0 && p.CurrentStep == p.TotalSteps
}

// Session is one questionnaire attempt, keyed by the client-supplied
// sessionId. Responses keeps the raw answer payloads exactly as submitted;
// scoring normalizes them on the fly instead of rewriting the document.
type Session struct {
	SessionID       string         `bson:"sessionId" json:"sessionId"`
	Responses       map[string]any `bson:"responses" json:"responses"`
	Progress        Progress       `bson:"progress" json:"progress"`
	TotalScore      int            `bson:"totalScore" json:"totalScore"`
	UserID          *string        `bson:"userId" json:"userId"`
	IsCompleted     bool           `bson:"isCompleted" json:"isCompleted"`
	QuestionnaireID string         `bson:"questionnaireId" json:"questionnaireId"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
	StartedAt       time.Time      `bson:"startedAt" json:"startedAt"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
	CompletedAt     *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// SaveSessionInput is what a save request carries after validation.
// TotalScore overrides the calculated score when the client supplies one.
type SaveSessionInput struct {
	SessionID  string         `json:"sessionId"`
	Responses  map[string]any `json:"responses"`
	Progress   Progress       `json:"progress"`
	TotalScore *int           `json:"totalScore,omitempty"`
	UserID     *string        `json:"userId,omitempty"`
}

// SaveSessionResult reports what the upsert did.
type SaveSessionResult struct {
	Success         bool   `json:"success"`
	SessionID       string `json:"sessionId"`
	Created         bool   `json:"created"`
	Modified        bool   `json:"modified"`
	CalculatedScore int    `json:"calculatedScore"`
}
