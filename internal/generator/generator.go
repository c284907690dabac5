// Package generator is the absorbing boundary in front of the generative
// backend: every failure of a generation call is logged and collapsed into a
// sentinel value, so callers only ever branch on "empty result" vs
// "populated result" and never see a raised error from generation.
package generator

import (
	"context"
	"log"

	"examwise/internal/models"
)

// Fallback texts returned when interpretation fails. They are fixed,
// human-readable strings so the caller always has renderable feedback.
const (
	FallbackInsights    = "An error occurred while generating insights. Please try again later."
	FallbackSuggestions = "Could not generate suggestions due to an error."
)

// TestBackend is the slice of the Gemini client the test generator needs
type TestBackend interface {
	GenerateTest(ctx context.Context, req models.GenerationRequest) (models.Quiz, error)
}

// InterpretBackend is the slice of the Gemini client the interpreter needs
type InterpretBackend interface {
	InterpretResults(ctx context.Context, req models.InterpretationRequest) (models.Interpretation, error)
}

// TestGenerator turns a generation request into a quiz. One backend call per
// invocation, no caching, no retry.
type TestGenerator struct {
	backend TestBackend
}

// NewTestGenerator creates a TestGenerator on top of a backend
func NewTestGenerator(backend TestBackend) *TestGenerator {
	return &TestGenerator{backend: backend}
}

// Generate requests a quiz for the given (already validated) request. On any
// failure it returns the empty quiz sentinel; callers distinguish "no usable
// quiz" solely by checking the question count.
func (g *TestGenerator) Generate(ctx context.Context, req models.GenerationRequest) models.Quiz {
	quiz, err := g.backend.GenerateTest(ctx, req)
	if err != nil {
		log.Printf("ERROR: Test generation failed: %v", err)
		return models.Quiz{Questions: []models.Question{}}
	}
	return quiz
}

// ResultInterpreter turns finished results into free-text feedback
type ResultInterpreter struct {
	backend InterpretBackend
}

// NewResultInterpreter creates a ResultInterpreter on top of a backend
func NewResultInterpreter(backend InterpretBackend) *ResultInterpreter {
	return &ResultInterpreter{backend: backend}
}

// Interpret requests insights and suggestions for a finished test. On any
// failure it returns the fixed fallback pair instead of propagating the
// error; the output is presentational only and never feeds back into scoring.
func (i *ResultInterpreter) Interpret(ctx context.Context, req models.InterpretationRequest) models.Interpretation {
	out, err := i.backend.InterpretResults(ctx, req)
	if err != nil {
		log.Printf("ERROR: Result interpretation failed: %v", err)
		return models.Interpretation{
			Insights:    FallbackInsights,
			Suggestions: FallbackSuggestions,
		}
	}
	return out
}
