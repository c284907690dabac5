package generator

import (
	"context"
	"errors"
	"testing"

	"examwise/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeBackend struct {
	quiz           models.Quiz
	interpretation models.Interpretation
	err            error
	calls          int
}

func (f *fakeBackend) GenerateTest(_ context.Context, _ models.GenerationRequest) (models.Quiz, error) {
	f.calls++
	return f.quiz, f.err
}

func (f *fakeBackend) InterpretResults(_ context.Context, _ models.InterpretationRequest) (models.Interpretation, error) {
	f.calls++
	return f.interpretation, f.err
}

func validRequest() models.GenerationRequest {
	return models.GenerationRequest{
		LearningObjectives: "World geography and capitals",
		DifficultyLevel:    models.DifficultyEasy,
		NumberOfQuestions:  2,
	}
}

func TestGenerateReturnsBackendQuiz(t *testing.T) {
	quiz := models.Quiz{
		Questions: []models.Question{
			{Question: "Q1", Options: []string{"A", "B"}, CorrectAnswer: "A"},
		},
	}
	backend := &fakeBackend{quiz: quiz}
	g := NewTestGenerator(backend)

	got := g.Generate(context.Background(), validRequest())
	assert.Equal(t, quiz, got)
	assert.Equal(t, 1, backend.calls)
}

func TestGenerateCollapsesFailureToEmptyQuiz(t *testing.T) {
	backend := &fakeBackend{err: errors.New("backend exploded")}
	g := NewTestGenerator(backend)

	got := g.Generate(context.Background(), validRequest())
	assert.True(t, got.IsEmpty())
	assert.NotNil(t, got.Questions)
	// A single attempt, no internal retry
	assert.Equal(t, 1, backend.calls)
}

func TestGenerateAlwaysReinvokesBackend(t *testing.T) {
	backend := &fakeBackend{quiz: models.Quiz{
		Questions: []models.Question{{Question: "Q", Options: []string{"A", "B"}, CorrectAnswer: "A"}},
	}}
	g := NewTestGenerator(backend)

	g.Generate(context.Background(), validRequest())
	g.Generate(context.Background(), validRequest())
	assert.Equal(t, 2, backend.calls)
}

func TestInterpretReturnsBackendOutput(t *testing.T) {
	want := models.Interpretation{Insights: "good", Suggestions: "keep going"}
	backend := &fakeBackend{interpretation: want}
	i := NewResultInterpreter(backend)

	got := i.Interpret(context.Background(), models.InterpretationRequest{
		ExamName:      "Geography",
		TestTakerName: "Test Taker",
		Results:       map[string]float64{"Geography": 50},
	})
	assert.Equal(t, want, got)
}

func TestInterpretFallsBackOnFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("timeout")}
	i := NewResultInterpreter(backend)

	got := i.Interpret(context.Background(), models.InterpretationRequest{
		ExamName:      "Geography",
		TestTakerName: "Test Taker",
		Results:       map[string]float64{"Geography": 50},
	})
	assert.Equal(t, FallbackInsights, got.Insights)
	assert.Equal(t, FallbackSuggestions, got.Suggestions)
	assert.Equal(t, 1, backend.calls)
}
