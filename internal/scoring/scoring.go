package scoring

import (
	"examwise/internal/models"
)

// Score grades a quiz against a set of submitted answers. It is pure and
// deterministic: no I/O, no randomness, and it never fails for any input
// shape. A quiz with zero questions scores as 0%.
func Score(quiz models.Quiz, answers models.AnswerSet) models.ScoredResult {
	total := len(quiz.Questions)
	records := make([]models.AnswerRecord, 0, total)
	correct := 0

	for i, question := range quiz.Questions {
		userAnswer, answered := answers[i]
		// An unanswered question is never correct, even if the backend
		// emitted an empty correct answer.
		isCorrect := answered && userAnswer == question.CorrectAnswer
		if isCorrect {
			correct++
		}
		records = append(records, models.AnswerRecord{
			Question:      question.Question,
			Options:       question.Options,
			CorrectAnswer: question.CorrectAnswer,
			UserAnswer:    userAnswer,
			Answered:      answered,
			IsCorrect:     isCorrect,
		})
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(correct) / float64(total) * 100
	}

	return models.ScoredResult{
		CorrectCount:    correct,
		TotalQuestions:  total,
		ScorePercentage: percentage,
		AnswerRecords:   records,
	}
}
