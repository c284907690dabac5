// Package session orchestrates one quiz session end to end: setup
// parameters, a generated quiz, in-progress answer collection, and the
// finished state with per-question correctness and aggregate score.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examwise/internal/models"
	"examwise/internal/scoring"
)

// State identifies the phase of a test session
type State string

// Session states. The only transitions are SETUP -> TAKING -> RESULTS,
// plus retake/discard which resets back to SETUP.
const (
	StateSetup   State = "setup"
	StateTaking  State = "taking"
	StateResults State = "results"
)

var (
	// ErrGenerationFailed means the backend produced no usable quiz.
	// The session stays in SETUP and the request can be retried.
	ErrGenerationFailed = errors.New("test generation failed")

	// ErrWrongState means the operation is not valid in the current state
	ErrWrongState = errors.New("operation not valid in current session state")

	// ErrAnswerRequired gates forward progress: the current (or final)
	// question must be answered first.
	ErrAnswerRequired = errors.New("current question must be answered first")
)

// Generator produces a quiz for a validated generation request. An empty
// quiz signals failure; no error ever crosses this boundary.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) models.Quiz
}

// Runner owns the state of a single test session. It is not safe for
// concurrent use: one logical flow per Runner, multiple concurrent sessions
// are simply multiple Runner instances.
type Runner struct {
	generator Generator

	state     State
	testName  string
	quiz      models.Quiz
	answers   models.AnswerSet
	cursor    int
	startTime time.Time
	endTime   time.Time
	result    models.ScoredResult
}

// NewRunner creates a Runner in the SETUP state
func NewRunner(generator Generator) *Runner {
	return &Runner{
		generator: generator,
		state:     StateSetup,
		answers:   models.AnswerSet{},
	}
}

// State returns the current session state
func (r *Runner) State() State {
	return r.state
}

// TestName returns the label of the running test (the learning objectives)
func (r *Runner) TestName() string {
	return r.testName
}

// StartTime returns when the quiz was loaded
func (r *Runner) StartTime() time.Time {
	return r.startTime
}

// EndTime returns when the session was finished
func (r *Runner) EndTime() time.Time {
	return r.endTime
}

// Start validates the request, generates a quiz and transitions to TAKING.
// An invalid request or a failed generation keeps the session in SETUP so
// the caller can retry with adjusted parameters.
func (r *Runner) Start(ctx context.Context, req models.GenerationRequest) error {
	if r.state != StateSetup {
		return fmt.Errorf("%w: cannot start from %s", ErrWrongState, r.state)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	quiz := r.generator.Generate(ctx, req)
	if quiz.IsEmpty() {
		return ErrGenerationFailed
	}

	r.quiz = quiz
	r.testName = req.LearningObjectives
	r.answers = models.AnswerSet{}
	r.cursor = 0
	r.startTime = time.Now()
	r.endTime = time.Time{}
	r.result = models.ScoredResult{}
	r.state = StateTaking
	return nil
}

// Quiz returns the loaded quiz
func (r *Runner) Quiz() models.Quiz {
	return r.quiz
}

// TotalQuestions returns the number of questions in the loaded quiz
func (r *Runner) TotalQuestions() int {
	return len(r.quiz.Questions)
}

// Cursor returns the zero-based index of the current question
func (r *Runner) Cursor() int {
	return r.cursor
}

// CurrentQuestion returns the question under the cursor
func (r *Runner) CurrentQuestion() (models.Question, error) {
	if r.state != StateTaking {
		return models.Question{}, fmt.Errorf("%w: no current question in %s", ErrWrongState, r.state)
	}
	return r.quiz.Questions[r.cursor], nil
}

// CurrentAnswer returns the recorded answer for the current question, if any
func (r *Runner) CurrentAnswer() (string, bool) {
	answer, ok := r.answers[r.cursor]
	return answer, ok
}

// Answer records or overwrites the answer for the current question
func (r *Runner) Answer(option string) error {
	if r.state != StateTaking {
		return fmt.Errorf("%w: cannot answer in %s", ErrWrongState, r.state)
	}
	r.answers[r.cursor] = option
	return nil
}

// Next moves the cursor forward by one, clamped at the last question.
// Forward progress is gated on the current question being answered.
func (r *Runner) Next() error {
	if r.state != StateTaking {
		return fmt.Errorf("%w: cannot advance in %s", ErrWrongState, r.state)
	}
	if _, answered := r.answers[r.cursor]; !answered {
		return ErrAnswerRequired
	}
	if r.cursor < len(r.quiz.Questions)-1 {
		r.cursor++
	}
	return nil
}

// Previous moves the cursor backward by one, clamped at the first question
func (r *Runner) Previous() error {
	if r.state != StateTaking {
		return fmt.Errorf("%w: cannot move back in %s", ErrWrongState, r.state)
	}
	if r.cursor > 0 {
		r.cursor--
	}
	return nil
}

// Finish scores the session and transitions to RESULTS. It is gated on the
// final question being answered; a rejected finish leaves the session
// untouched in TAKING.
func (r *Runner) Finish() (models.ScoredResult, error) {
	if r.state != StateTaking {
		return models.ScoredResult{}, fmt.Errorf("%w: cannot finish in %s", ErrWrongState, r.state)
	}
	lastIndex := len(r.quiz.Questions) - 1
	if _, answered := r.answers[lastIndex]; !answered {
		return models.ScoredResult{}, ErrAnswerRequired
	}

	r.result = scoring.Score(r.quiz, r.answers)
	r.endTime = time.Now()
	r.state = StateResults
	return r.result, nil
}

// Result returns the scored outcome of a finished session
func (r *Runner) Result() (models.ScoredResult, error) {
	if r.state != StateResults {
		return models.ScoredResult{}, fmt.Errorf("%w: no result in %s", ErrWrongState, r.state)
	}
	return r.result, nil
}

// Answers returns a copy of the current answer set
func (r *Runner) Answers() models.AnswerSet {
	copied := make(models.AnswerSet, len(r.answers))
	for index, answer := range r.answers {
		copied[index] = answer
	}
	return copied
}

// Retake discards all session state and returns to SETUP. Also used to
// abandon an in-progress test.
func (r *Runner) Retake() {
	r.state = StateSetup
	r.testName = ""
	r.quiz = models.Quiz{}
	r.answers = models.AnswerSet{}
	r.cursor = 0
	r.startTime = time.Time{}
	r.endTime = time.Time{}
	r.result = models.ScoredResult{}
}
