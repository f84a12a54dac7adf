package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"questionnaire-service/internal/event"
	"questionnaire-service/internal/models"
	"questionnaire-service/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// fakeStore applies the same field-level upsert semantics as the Mongo
// repository, in memory.
type fakeStore struct {
	docs      map[string]*models.Session
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]*models.Session{}}
}

func (f *fakeStore) Upsert(_ context.Context, sessionID string, set bson.M, setOnInsert bson.M) (repository.UpsertResult, error) {
	if f.upsertErr != nil {
		return repository.UpsertResult{}, f.upsertErr
	}
	doc, exists := f.docs[sessionID]
	if !exists {
		doc = &models.Session{SessionID: sessionID}
		applyFields(doc, setOnInsert)
		f.docs[sessionID] = doc
	}
	applyFields(doc, set)
	return repository.UpsertResult{Created: !exists, Modified: exists}, nil
}

func applyFields(doc *models.Session, fields bson.M) {
	for key, val := range fields {
		switch key {
		case "responses":
			doc.Responses = val.(map[string]any)
		case "progress":
			doc.Progress = val.(models.Progress)
		case "totalScore":
			doc.TotalScore = val.(int)
		case "userId":
			doc.UserID, _ = val.(*string)
		case "isCompleted":
			doc.IsCompleted = val.(bool)
		case "updatedAt":
			doc.UpdatedAt = val.(time.Time)
		case "createdAt":
			doc.CreatedAt = val.(time.Time)
		case "startedAt":
			doc.StartedAt = val.(time.Time)
		case "completedAt":
			t := val.(time.Time)
			doc.CompletedAt = &t
		case "questionnaireId":
			doc.QuestionnaireID = val.(string)
		}
	}
}

func (f *fakeStore) FindBySessionID(_ context.Context, sessionID string) (*models.Session, error) {
	doc, ok := f.docs[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeStore) completed(userID *string) []models.Session {
	var out []models.Session
	for _, doc := range f.docs {
		if !doc.IsCompleted {
			continue
		}
		if userID != nil && (doc.UserID == nil || *doc.UserID != *userID) {
			continue
		}
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool {
		var a, b time.Time
		if out[i].CompletedAt != nil {
			a = *out[i].CompletedAt
		}
		if out[j].CompletedAt != nil {
			b = *out[j].CompletedAt
		}
		return a.After(b)
	})
	return out
}

func (f *fakeStore) FindCompleted(_ context.Context, userID *string, skip, limit int64) ([]models.Session, error) {
	all := f.completed(userID)
	if skip >= int64(len(all)) {
		return nil, nil
	}
	all = all[skip:]
	if limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeStore) CountCompleted(_ context.Context, userID *string) (int64, error) {
	return int64(len(f.completed(userID))), nil
}

func (f *fakeStore) UpdateScore(_ context.Context, sessionID string, newScore int, updatedAt time.Time) (bool, error) {
	doc, ok := f.docs[sessionID]
	if !ok {
		return false, nil
	}
	doc.TotalScore = newScore
	doc.UpdatedAt = updatedAt
	return true, nil
}

func (f *fakeStore) Delete(_ context.Context, sessionID string) error {
	delete(f.docs, sessionID)
	return nil
}

type fakePublisher struct {
	events []string
}

func (p *fakePublisher) Publish(routingKey string, _ any) error {
	p.events = append(p.events, routingKey)
	return nil
}

func newTestService(store SessionStore, pub EventPublisher) *SessionService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewSessionService(store, pub, log)
}

func TestSaveSessionEmptyResponses(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	result, err := svc.SaveSession(context.Background(), models.SaveSessionInput{
		SessionID: "s1",
		Responses: map[string]any{},
		Progress:  models.Progress{CurrentStep: 1, TotalSteps: 5},
	})
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if !result.Success || !result.Created {
		t.Errorf("result = %+v, want success and created", result)
	}
	if result.CalculatedScore != 0 {
		t.Errorf("CalculatedScore = %d, want 0", result.CalculatedScore)
	}
	if store.docs["s1"].IsCompleted {
		t.Error("session should not be completed at step 1 of 5")
	}
}

func TestSaveSessionIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	input := models.SaveSessionInput{
		SessionID: "s1",
		Responses: map[string]any{
			"q1": map[string]any{"answer": "Jane"},
			"q2": map[string]any{"answer": "senior"},
			"q3": map[string]any{"answer": "fullstack"},
		},
		Progress: models.Progress{CurrentStep: 2, TotalSteps: 5},
	}

	first, err := svc.SaveSession(context.Background(), input)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := svc.SaveSession(context.Background(), input)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	if first.CalculatedScore != 70 || second.CalculatedScore != 70 {
		t.Errorf("scores = %d, %d, want 70 both times", first.CalculatedScore, second.CalculatedScore)
	}
	if !first.Created {
		t.Error("first save should create")
	}
	if second.Created {
		t.Error("second save must not create a duplicate")
	}
	if store.docs["s1"].IsCompleted {
		t.Error("session must stay incomplete")
	}
}

func TestSaveSessionCompletionStaysSet(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)
	ctx := context.Background()

	responses := map[string]any{"q1": "Jane"}

	first, err := svc.SaveSession(ctx, models.SaveSessionInput{
		SessionID: "s1",
		Responses: responses,
		Progress:  models.Progress{CurrentStep: 3, TotalSteps: 5},
	})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if !first.Created || store.docs["s1"].IsCompleted {
		t.Fatalf("first save: created=%v completed=%v, want created and not completed", first.Created, store.docs["s1"].IsCompleted)
	}

	second, err := svc.SaveSession(ctx, models.SaveSessionInput{
		SessionID: "s1",
		Responses: responses,
		Progress:  models.Progress{CurrentStep: 5, TotalSteps: 5},
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.Created || !second.Modified {
		t.Errorf("second save: created=%v modified=%v, want update of existing doc", second.Created, second.Modified)
	}
	if !store.docs["s1"].IsCompleted || store.docs["s1"].CompletedAt == nil {
		t.Fatal("second save must complete the session and stamp completedAt")
	}
	stamped := *store.docs["s1"].CompletedAt

	// a later save that regresses progress must not un-complete the session
	_, err = svc.SaveSession(ctx, models.SaveSessionInput{
		SessionID: "s1",
		Responses: responses,
		Progress:  models.Progress{CurrentStep: 2, TotalSteps: 5},
	})
	if err != nil {
		t.Fatalf("third save: %v", err)
	}
	if !store.docs["s1"].IsCompleted {
		t.Error("completion flag must survive a progress regression")
	}
	if store.docs["s1"].CompletedAt == nil || !store.docs["s1"].CompletedAt.Equal(stamped) {
		t.Error("completedAt must keep its original stamp")
	}

	wantEvents := []string{event.SessionSaved, event.SessionSaved, event.SessionCompleted, event.SessionSaved}
	if len(pub.events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", pub.events, wantEvents)
	}
	for i, want := range wantEvents {
		if pub.events[i] != want {
			t.Errorf("event[%d] = %s, want %s", i, pub.events[i], want)
		}
	}
}

func TestSaveSessionExplicitScoreWins(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	override := 88
	result, err := svc.SaveSession(context.Background(), models.SaveSessionInput{
		SessionID:  "s1",
		Responses:  map[string]any{"q1": "Jane"},
		Progress:   models.Progress{CurrentStep: 1, TotalSteps: 5},
		TotalScore: &override,
	})
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if result.CalculatedScore != 88 {
		t.Errorf("CalculatedScore = %d, want supplied 88", result.CalculatedScore)
	}
	if store.docs["s1"].TotalScore != 88 {
		t.Errorf("stored score = %d, want 88", store.docs["s1"].TotalScore)
	}
}

func TestSaveSessionStoreErrorPropagates(t *testing.T) {
	store := newFakeStore()
	storeErr := errors.New("connection reset")
	store.upsertErr = storeErr
	svc := newTestService(store, nil)

	_, err := svc.SaveSession(context.Background(), models.SaveSessionInput{
		SessionID: "s1",
		Responses: map[string]any{},
		Progress:  models.Progress{CurrentStep: 1, TotalSteps: 5},
	})
	if !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want the store error unmodified", err)
	}
}

func TestGetSessionByIDMissing(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)
	session, err := svc.GetSessionByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSessionByID: %v", err)
	}
	if session != nil {
		t.Errorf("session = %+v, want nil for a missing id", session)
	}
}

func TestStartSessionGeneratesUniqueIDs(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	a, err := svc.StartSession(ctx, nil)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	b, err := svc.StartSession(ctx, nil)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if a.SessionID == "" || a.SessionID == b.SessionID {
		t.Errorf("session ids %q, %q must be distinct and non-empty", a.SessionID, b.SessionID)
	}
	if !a.Created || !b.Created {
		t.Error("started sessions must be created as new documents")
	}
}

func TestListCompletedSessionsPaging(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		completedAt := base.Add(time.Duration(i) * time.Hour)
		store.docs[id] = &models.Session{
			SessionID:   id,
			IsCompleted: true,
			TotalScore:  50 + i,
			CompletedAt: &completedAt,
		}
	}
	store.docs["open"] = &models.Session{SessionID: "open"}

	items, total, err := svc.ListCompletedSessions(ctx, nil, 1, 2)
	if err != nil {
		t.Fatalf("ListCompletedSessions: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(items) != 2 || items[0].SessionID != "c" || items[1].SessionID != "b" {
		t.Errorf("page 1 = %v, want [c b] newest first", sessionIDs(items))
	}

	items, _, err = svc.ListCompletedSessions(ctx, nil, 2, 2)
	if err != nil {
		t.Fatalf("ListCompletedSessions page 2: %v", err)
	}
	if len(items) != 1 || items[0].SessionID != "a" {
		t.Errorf("page 2 = %v, want [a]", sessionIDs(items))
	}
}

func sessionIDs(sessions []models.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.SessionID
	}
	return out
}

func TestUpdateSessionScore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := context.Background()

	store.docs["s1"] = &models.Session{SessionID: "s1", TotalScore: 40}

	modified, err := svc.UpdateSessionScore(ctx, "s1", 95)
	if err != nil {
		t.Fatalf("UpdateSessionScore: %v", err)
	}
	if !modified || store.docs["s1"].TotalScore != 95 {
		t.Errorf("modified=%v score=%d, want modified with score 95", modified, store.docs["s1"].TotalScore)
	}

	modified, err = svc.UpdateSessionScore(ctx, "missing", 10)
	if err != nil {
		t.Fatalf("UpdateSessionScore missing: %v", err)
	}
	if modified {
		t.Error("updating a missing session must report modified=false")
	}
}
