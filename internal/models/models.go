package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Difficulty levels accepted for test generation
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// MaxQuestions is the practical upper bound for a single generated test
const MaxQuestions = 20

// ErrInvalidRequest indicates malformed generation/interpretation parameters.
// It is always returned before any external call is made.
var ErrInvalidRequest = errors.New("invalid request")

// validate is the shared validator instance for contract checks
var validate = validator.New()

// GenerationRequest holds the parameters for generating a test
type GenerationRequest struct {
	LearningObjectives string `json:"learningObjectives" validate:"required,min=10"`
	DifficultyLevel    string `json:"difficultyLevel" validate:"required,oneof=easy medium hard"`
	NumberOfQuestions  int    `json:"numberOfQuestions" validate:"required,gt=0,lte=20"`
}

// Validate checks the request against the generation contract. Generators
// never sanitize their input; callers must validate before dispatching.
func (r GenerationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Question is a single generated test item. CorrectAnswer is expected to be
// a member of Options, but the generative backend is trusted on that point:
// a question whose correct answer never appears in its options is simply
// never answered correctly.
type Question struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
}

// Quiz is an ordered sequence of generated questions for one session.
// An empty Questions slice is the canonical "generation failed" sentinel.
type Quiz struct {
	Questions []Question `json:"testQuestions"`
}

// IsEmpty reports whether the quiz carries no usable questions
func (q Quiz) IsEmpty() bool {
	return len(q.Questions) == 0
}

// ValidateQuiz checks the structural shape of a generated quiz: string
// fields present, at least two options per question. It deliberately does
// not verify that CorrectAnswer appears among Options.
func ValidateQuiz(q Quiz) error {
	for i, question := range q.Questions {
		if err := validate.Struct(question); err != nil {
			return fmt.Errorf("question %d fails schema validation: %v", i, err)
		}
	}
	return nil
}

// AnswerSet maps a zero-based question index to the user's chosen option.
// An absent index means the question is unanswered.
type AnswerSet map[int]string

// AnswerRecord is the per-question outcome derived at scoring time.
// Records are created once and never mutated afterwards.
type AnswerRecord struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	UserAnswer    string   `json:"userAnswer"`
	Answered      bool     `json:"answered"`
	IsCorrect     bool     `json:"isCorrect"`
}

// ScoredResult is the computed outcome of grading a Quiz against an AnswerSet
type ScoredResult struct {
	CorrectCount    int            `json:"correctCount"`
	TotalQuestions  int            `json:"totalQuestions"`
	ScorePercentage float64        `json:"scorePercentage"`
	AnswerRecords   []AnswerRecord `json:"answerRecords"`
}

// TestSession is the persisted record of one finished test
type TestSession struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"userId"`
	TestName        string    `json:"testName"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	ScorePercentage float64   `json:"scorePercentage"`
}

// InterpretationRequest holds the parameters for result interpretation
type InterpretationRequest struct {
	ExamName      string             `json:"examName" validate:"required"`
	TestTakerName string             `json:"testTakerName" validate:"required"`
	Results       map[string]float64 `json:"results" validate:"required,min=1"`
}

// Validate checks the interpretation request before dispatch
func (r InterpretationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Interpretation is the free-text feedback generated for a finished test
type Interpretation struct {
	Insights    string `json:"insights"`
	Suggestions string `json:"suggestions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
