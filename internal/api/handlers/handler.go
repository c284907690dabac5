package handlers

import (
	"context"
	"sync"

	"examwise/internal/db"
	"examwise/internal/models"
	"examwise/internal/session"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// UserProfile stores information about the authenticated user.
type UserProfile struct {
	DatabaseID    uuid.UUID `json:"-"`  // Our internal DB UUID (omit from JSON response to client)
	GoogleID      string    `json:"id"` // Google's ID (keep as 'id' in JSON)
	Email         string    `json:"email"`
	VerifiedEmail bool      `json:"verified_email"`
	Name          string    `json:"name"`
	GivenName     string    `json:"given_name"`
	FamilyName    string    `json:"family_name"`
	Picture       string    `json:"picture"`
	Locale        string    `json:"locale"`
}

// Constants for session keys - keep these consistent
const (
	OauthStateSessionKey = "oauthstate"
	ProfileSessionKey    = "profile"
)

// TestGenerator produces a quiz for a validated request; an empty quiz
// signals failure.
type TestGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest) models.Quiz
}

// ResultInterpreter produces feedback text for a finished test
type ResultInterpreter interface {
	Interpret(ctx context.Context, req models.InterpretationRequest) models.Interpretation
}

// FaceVerifier classifies whether an image contains a visible human face
type FaceVerifier interface {
	VerifyFace(ctx context.Context, image []byte, mimeType string) (bool, error)
}

// HistoryStore is the durable boundary finished sessions are handed to
type HistoryStore interface {
	UpsertUser(ctx context.Context, params db.UpsertUserParams) (uuid.UUID, error)
	CreateTestSession(ctx context.Context, params db.CreateTestSessionParams) (uuid.UUID, error)
	CreateAnswerRecords(ctx context.Context, sessionID uuid.UUID, records []models.AnswerRecord) error
	ListTestSessionsByUser(ctx context.Context, userID uuid.UUID) ([]models.TestSession, error)
	GetTestSession(ctx context.Context, id uuid.UUID) (models.TestSession, error)
	ListAnswerRecordsBySession(ctx context.Context, sessionID uuid.UUID) ([]models.AnswerRecord, error)
}

// testEntry pairs a session runner with its owner. The mutex serializes
// HTTP requests onto the runner, which itself is single-flow only.
type testEntry struct {
	mu     sync.Mutex
	runner *session.Runner
	userID uuid.UUID
}

// Handler contains the API handlers dependencies
type Handler struct {
	OauthConfig *oauth2.Config
	StoreName   string
	Store       HistoryStore
	Generator   TestGenerator
	Interpreter ResultInterpreter
	Faces       FaceVerifier

	mu    sync.Mutex
	tests map[uuid.UUID]*testEntry
}

// NewHandler creates a new Handler
func NewHandler(oauth *oauth2.Config, storeName string, store HistoryStore, generator TestGenerator, interpreter ResultInterpreter, faces FaceVerifier) *Handler {
	return &Handler{
		OauthConfig: oauth,
		StoreName:   storeName,
		Store:       store,
		Generator:   generator,
		Interpreter: interpreter,
		Faces:       faces,
		tests:       make(map[uuid.UUID]*testEntry),
	}
}

// registerTest stores a new runner under a fresh test id
func (h *Handler) registerTest(userID uuid.UUID, runner *session.Runner) uuid.UUID {
	id := uuid.New()
	h.mu.Lock()
	h.tests[id] = &testEntry{runner: runner, userID: userID}
	h.mu.Unlock()
	return id
}

// lookupTest finds a registered runner owned by the given user
func (h *Handler) lookupTest(id, userID uuid.UUID) (*testEntry, bool) {
	h.mu.Lock()
	entry, ok := h.tests[id]
	h.mu.Unlock()
	if !ok || entry.userID != userID {
		return nil, false
	}
	return entry, true
}

// dropTest removes a finished or abandoned runner from the registry
func (h *Handler) dropTest(id uuid.UUID) {
	h.mu.Lock()
	delete(h.tests, id)
	h.mu.Unlock()
}
