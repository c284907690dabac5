package scoring

import (
	"testing"

	"examwise/internal/models"

	"github.com/stretchr/testify/assert"
)

func capitalsQuiz() models.Quiz {
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

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		quiz     models.Quiz
		answers  models.AnswerSet
		expected models.ScoredResult
	}{
		{
			name:    "empty quiz scores zero",
			quiz:    models.Quiz{},
			answers: models.AnswerSet{},
			expected: models.ScoredResult{
				CorrectCount:    0,
				TotalQuestions:  0,
				ScorePercentage: 0,
				AnswerRecords:   []models.AnswerRecord{},
			},
		},
		{
			name: "one correct one wrong",
			quiz: capitalsQuiz(),
			answers: models.AnswerSet{
				0: "Paris",
				1: "K2",
			},
			expected: models.ScoredResult{
				CorrectCount:    1,
				TotalQuestions:  2,
				ScorePercentage: 50,
				AnswerRecords: []models.AnswerRecord{
					{
						Question:      "What is the capital of France?",
						Options:       []string{"Berlin", "Paris", "Madrid", "Rome"},
						CorrectAnswer: "Paris",
						UserAnswer:    "Paris",
						Answered:      true,
						IsCorrect:     true,
					},
					{
						Question:      "What is the highest mountain in the world?",
						Options:       []string{"Mount Everest", "K2", "Kangchenjunga", "Lhotse"},
						CorrectAnswer: "Mount Everest",
						UserAnswer:    "K2",
						Answered:      true,
						IsCorrect:     false,
					},
				},
			},
		},
		{
			name: "all correct",
			quiz: capitalsQuiz(),
			answers: models.AnswerSet{
				0: "Paris",
				1: "Mount Everest",
			},
			expected: models.ScoredResult{
				CorrectCount:    2,
				TotalQuestions:  2,
				ScorePercentage: 100,
				AnswerRecords: []models.AnswerRecord{
					{
						Question:      "What is the capital of France?",
						Options:       []string{"Berlin", "Paris", "Madrid", "Rome"},
						CorrectAnswer: "Paris",
						UserAnswer:    "Paris",
						Answered:      true,
						IsCorrect:     true,
					},
					{
						Question:      "What is the highest mountain in the world?",
						Options:       []string{"Mount Everest", "K2", "Kangchenjunga", "Lhotse"},
						CorrectAnswer: "Mount Everest",
						UserAnswer:    "Mount Everest",
						Answered:      true,
						IsCorrect:     true,
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.quiz, tt.answers)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	quiz := capitalsQuiz()
	answers := models.AnswerSet{0: "Paris", 1: "K2"}

	first := Score(quiz, answers)
	second := Score(quiz, answers)
	assert.Equal(t, first, second)
}

func TestScoreUnansweredQuestionIsNeverCorrect(t *testing.T) {
	quiz := capitalsQuiz()
	// Second question left unanswered entirely
	result := Score(quiz, models.AnswerSet{0: "Paris"})

	assert.Equal(t, 1, result.CorrectCount)
	assert.False(t, result.AnswerRecords[1].Answered)
	assert.False(t, result.AnswerRecords[1].IsCorrect)
	assert.Equal(t, "", result.AnswerRecords[1].UserAnswer)
}

func TestScoreUnansweredWithEmptyCorrectAnswer(t *testing.T) {
	// A backend bug could emit an empty correct answer; an unanswered
	// question must still grade as incorrect.
	quiz := models.Quiz{
		Questions: []models.Question{
			{Question: "Broken question", Options: []string{"A", "B"}, CorrectAnswer: ""},
		},
	}

	result := Score(quiz, models.AnswerSet{})
	assert.Equal(t, 0, result.CorrectCount)
	assert.False(t, result.AnswerRecords[0].IsCorrect)
}

func TestScoreBounds(t *testing.T) {
	quiz := capitalsQuiz()
	answerSets := []models.AnswerSet{
		{},
		{0: "Paris"},
		{0: "Berlin", 1: "K2"},
		{0: "Paris", 1: "Mount Everest"},
		{5: "Paris"}, // out-of-range index is ignored
	}

	for _, answers := range answerSets {
		result := Score(quiz, answers)
		assert.GreaterOrEqual(t, result.CorrectCount, 0)
		assert.LessOrEqual(t, result.CorrectCount, result.TotalQuestions)
		assert.GreaterOrEqual(t, result.ScorePercentage, 0.0)
		assert.LessOrEqual(t, result.ScorePercentage, 100.0)
	}
}

func TestScoreCorrectAnswerNotInOptions(t *testing.T) {
	// The generation contract trusts the backend on option membership.
	// When the correct answer never appears in the options, the question
	// is effectively unanswerable unless the raw string is submitted.
	quiz := models.Quiz{
		Questions: []models.Question{
			{Question: "Pick one", Options: []string{"A", "B"}, CorrectAnswer: "C"},
		},
	}

	result := Score(quiz, models.AnswerSet{0: "A"})
	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, float64(0), result.ScorePercentage)
}
