package session

import (
	"context"
	"testing"

	"examwise/internal/models"
	"examwise/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	quiz  models.Quiz
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, _ models.GenerationRequest) models.Quiz {
	s.calls++
	return s.quiz
}

func twoQuestionQuiz() models.Quiz {
	return models.Quiz{
		Questions: []models.Question{
			{
				Question:      "What is the capital of France?",
				Options:       []string{"Berlin", "Paris", "Madrid", "Rome"},
				CorrectAnswer: "Paris",
			},
			{
				Question:      "What is the highest mountain in the world?",
				Options:       []string{"Mount Everest", "K2", "Kangchenjunga", "Lhotse"},
				CorrectAnswer: "Mount Everest",
			},
		},
	}
}

func startedRunner(t *testing.T) *Runner {
	t.Helper()
	runner := NewRunner(&stubGenerator{quiz: twoQuestionQuiz()})
	err := runner.Start(context.Background(), models.GenerationRequest{
		LearningObjectives: "World geography and capitals",
		DifficultyLevel:    models.DifficultyEasy,
		NumberOfQuestions:  2,
	})
	require.NoError(t, err)
	return runner
}

func TestStartTransitionsToTaking(t *testing.T) {
	runner := startedRunner(t)

	assert.Equal(t, StateTaking, runner.State())
	assert.Equal(t, 0, runner.Cursor())
	assert.Equal(t, 2, runner.TotalQuestions())
	assert.Equal(t, "World geography and capitals", runner.TestName())
	assert.Empty(t, runner.Answers())
	assert.False(t, runner.StartTime().IsZero())
}

func TestStartRejectsInvalidRequest(t *testing.T) {
	gen := &stubGenerator{quiz: twoQuestionQuiz()}
	runner := NewRunner(gen)

	tests := []struct {
		name string
		req  models.GenerationRequest
	}{
		{
			name: "objectives too short",
			req:  models.GenerationRequest{LearningObjectives: "short", DifficultyLevel: "easy", NumberOfQuestions: 5},
		},
		{
			name: "unknown difficulty",
			req:  models.GenerationRequest{LearningObjectives: "World geography basics", DifficultyLevel: "extreme", NumberOfQuestions: 5},
		},
		{
			name: "zero questions",
			req:  models.GenerationRequest{LearningObjectives: "World geography basics", DifficultyLevel: "easy", NumberOfQuestions: 0},
		},
		{
			name: "too many questions",
			req:  models.GenerationRequest{LearningObjectives: "World geography basics", DifficultyLevel: "easy", NumberOfQuestions: 21},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runner.Start(context.Background(), tt.req)
			assert.ErrorIs(t, err, models.ErrInvalidRequest)
			assert.Equal(t, StateSetup, runner.State())
		})
	}
	// Validation failures never reach the generator
	assert.Equal(t, 0, gen.calls)
}

func TestStartStaysInSetupOnGenerationFailure(t *testing.T) {
	runner := NewRunner(&stubGenerator{quiz: models.Quiz{Questions: []models.Question{}}})

	err := runner.Start(context.Background(), models.GenerationRequest{
		LearningObjectives: "World geography and capitals",
		DifficultyLevel:    models.DifficultyMedium,
		NumberOfQuestions:  2,
	})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, StateSetup, runner.State())

	// The failure is retryable: a later attempt with a working backend succeeds
	runner.generator = &stubGenerator{quiz: twoQuestionQuiz()}
	err = runner.Start(context.Background(), models.GenerationRequest{
		LearningObjectives: "World geography and capitals",
		DifficultyLevel:    models.DifficultyMedium,
		NumberOfQuestions:  2,
	})
	assert.NoError(t, err)
	assert.Equal(t, StateTaking, runner.State())
}

func TestNextIsGatedOnCurrentAnswer(t *testing.T) {
	runner := startedRunner(t)

	err := runner.Next()
	assert.ErrorIs(t, err, ErrAnswerRequired)
	assert.Equal(t, 0, runner.Cursor())

	require.NoError(t, runner.Answer("Paris"))
	require.NoError(t, runner.Next())
	assert.Equal(t, 1, runner.Cursor())

	// Clamped at the last question, no wraparound
	require.NoError(t, runner.Answer("K2"))
	require.NoError(t, runner.Next())
	assert.Equal(t, 1, runner.Cursor())
}

func TestPreviousIsClampedAtFirstQuestion(t *testing.T) {
	runner := startedRunner(t)

	require.NoError(t, runner.Previous())
	assert.Equal(t, 0, runner.Cursor())

	require.NoError(t, runner.Answer("Paris"))
	require.NoError(t, runner.Next())
	require.NoError(t, runner.Previous())
	assert.Equal(t, 0, runner.Cursor())
}

func TestAnswerOverwritesCurrentIndex(t *testing.T) {
	runner := startedRunner(t)

	require.NoError(t, runner.Answer("Berlin"))
	require.NoError(t, runner.Answer("Paris"))

	answer, ok := runner.CurrentAnswer()
	assert.True(t, ok)
	assert.Equal(t, "Paris", answer)
	assert.Len(t, runner.Answers(), 1)
}

func TestFinishIsGatedOnLastQuestionAnswered(t *testing.T) {
	runner := startedRunner(t)

	require.NoError(t, runner.Answer("Paris"))
	_, err := runner.Finish()
	assert.ErrorIs(t, err, ErrAnswerRequired)
	assert.Equal(t, StateTaking, runner.State())

	require.NoError(t, runner.Next())
	require.NoError(t, runner.Answer("K2"))

	result, err := runner.Finish()
	require.NoError(t, err)
	assert.Equal(t, StateResults, runner.State())
	assert.False(t, runner.EndTime().IsZero())

	// The finished result matches the pure scoring function exactly
	expected := scoring.Score(twoQuestionQuiz(), models.AnswerSet{0: "Paris", 1: "K2"})
	assert.Equal(t, expected, result)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, float64(50), result.ScorePercentage)

	stored, err := runner.Result()
	require.NoError(t, err)
	assert.Equal(t, result, stored)
}

func TestRetakeResetsFully(t *testing.T) {
	runner := startedRunner(t)
	require.NoError(t, runner.Answer("Paris"))
	require.NoError(t, runner.Next())
	require.NoError(t, runner.Answer("Mount Everest"))
	_, err := runner.Finish()
	require.NoError(t, err)

	runner.Retake()

	assert.Equal(t, StateSetup, runner.State())
	assert.True(t, runner.Quiz().IsEmpty())
	assert.Empty(t, runner.Answers())
	assert.Equal(t, 0, runner.Cursor())
	assert.Empty(t, runner.TestName())
	assert.True(t, runner.StartTime().IsZero())
	assert.True(t, runner.EndTime().IsZero())

	_, err = runner.Result()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestOperationsRejectedOutsideTaking(t *testing.T) {
	runner := NewRunner(&stubGenerator{quiz: twoQuestionQuiz()})

	assert.ErrorIs(t, runner.Answer("Paris"), ErrWrongState)
	assert.ErrorIs(t, runner.Next(), ErrWrongState)
	assert.ErrorIs(t, runner.Previous(), ErrWrongState)
	_, err := runner.Finish()
	assert.ErrorIs(t, err, ErrWrongState)
	_, err = runner.CurrentQuestion()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestStartRejectedWhileTaking(t *testing.T) {
	runner := startedRunner(t)

	err := runner.Start(context.Background(), models.GenerationRequest{
		LearningObjectives: "World geography and capitals",
		DifficultyLevel:    models.DifficultyEasy,
		NumberOfQuestions:  2,
	})
	assert.ErrorIs(t, err, ErrWrongState)
}
