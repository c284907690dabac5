package handlers

import (
	"errors"
	"log"
	"net/http"

	"examwise/internal/db"
	"examwise/internal/models"
	"examwise/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// questionView is what the client sees while a test is in progress.
// CorrectAnswer stays server-side until the session is finished.
type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// takingView builds the in-progress response for a runner. The caller must
// hold the entry lock.
func takingView(id uuid.UUID, runner *session.Runner) gin.H {
	view := gin.H{
		"testId":               id,
		"state":                runner.State(),
		"testName":             runner.TestName(),
		"totalQuestions":       runner.TotalQuestions(),
		"currentQuestionIndex": runner.Cursor(),
	}

	question, err := runner.CurrentQuestion()
	if err == nil {
		view["currentQuestion"] = questionView{
			Question: question.Question,
			Options:  question.Options,
		}
	}
	if answer, ok := runner.CurrentAnswer(); ok {
		view["selectedAnswer"] = answer
	}
	return view
}

// currentUserID extracts the authenticated user's internal id, set by the
// auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// getTestEntry resolves the :testId path parameter to a registered runner
// owned by the calling user. It writes the error response itself and
// returns ok=false when resolution fails.
func (h *Handler) getTestEntry(c *gin.Context) (uuid.UUID, *testEntry, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, nil, false
	}

	testID, err := uuid.Parse(c.Param("testId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid test ID format"})
		return uuid.Nil, nil, false
	}

	entry, found := h.lookupTest(testID, userID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Test not found"})
		return uuid.Nil, nil, false
	}
	return testID, entry, true
}

// HandleCreateTest generates a new test from the submitted parameters and
// starts an interactive session for it.
func (h *Handler) HandleCreateTest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("WARN: Invalid test generation payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	runner := session.NewRunner(h.Generator)
	if err := runner.Start(c.Request.Context(), req); err != nil {
		if errors.Is(err, models.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, session.ErrGenerationFailed) {
			log.Printf("WARN: Test generation failed for user %s", userID)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate test. Please try again."})
			return
		}
		log.Printf("ERROR: Failed to start test session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start test session"})
		return
	}

	testID := h.registerTest(userID, runner)
	log.Printf("INFO: Started test %s for user %s (%d questions)", testID, userID, runner.TotalQuestions())
	c.JSON(http.StatusCreated, takingView(testID, runner))
}

// HandleGetTest returns the current view of an in-progress or finished test
func (h *Handler) HandleGetTest(c *gin.Context) {
	testID, entry, ok := h.getTestEntry(c)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.runner.State() == session.StateResults {
		result, err := entry.runner.Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load test results"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"testId":   testID,
			"state":    entry.runner.State(),
			"testName": entry.runner.TestName(),
			"result":   result,
		})
		return
	}

	c.JSON(http.StatusOK, takingView(testID, entry.runner))
}

// HandleAnswer records (or overwrites) the answer for the current question
func (h *Handler) HandleAnswer(c *gin.Context) {
	testID, entry, ok := h.getTestEntry(c)
	if !ok {
		return
	}

	var req struct {
		Answer string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: answer is required"})
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.runner.Answer(req.Answer); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, takingView(testID, entry.runner))
}

// HandleNext advances to the next question. The current question must be
// answered first.
func (h *Handler) HandleNext(c *gin.Context) {
	testID, entry, ok := h.getTestEntry(c)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.runner.Next(); err != nil {
		if errors.Is(err, session.ErrAnswerRequired) {
			c.JSON(http.StatusConflict, gin.H{"error": "Please select an answer before proceeding."})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, takingView(testID, entry.runner))
}

// HandlePrevious moves back to the previous question
func (h *Handler) HandlePrevious(c *gin.Context) {
	testID, entry, ok := h.getTestEntry(c)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.runner.Previous(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, takingView(testID, entry.runner))
}

// HandleFinish scores the session and persists the outcome. The computed
// score is always returned to the client; a storage failure only downgrades
// the response with a warning, it never discards the result.
func (h *Handler) HandleFinish(c *gin.Context) {
	testID, entry, ok := h.getTestEntry(c)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	result, err := entry.runner.Finish()
	if err != nil {
		if errors.Is(err, session.ErrAnswerRequired) {
			c.JSON(http.StatusConflict, gin.H{"error": "Please answer the final question before finishing."})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{
		"testId":   testID,
		"state":    entry.runner.State(),
		"testName": entry.runner.TestName(),
		"result":   result,
		"saved":    false,
	}

	ctx := c.Request.Context()
	sessionID, err := h.Store.CreateTestSession(ctx, db.CreateTestSessionParams{
		UserID:          entry.userID,
		TestName:        entry.runner.TestName(),
		StartTime:       entry.runner.StartTime(),
		EndTime:         entry.runner.EndTime(),
		ScorePercentage: result.ScorePercentage,
	})
	if err != nil {
		log.Printf("ERROR: Failed to save test session for user %s: %v", entry.userID, err)
		response["warning"] = "Test results could not be saved."
		c.JSON(http.StatusOK, response)
		return
	}

	if err := h.Store.CreateAnswerRecords(ctx, sessionID, result.AnswerRecords); err != nil {
		log.Printf("ERROR: Failed to save answer records for session %s: %v", sessionID, err)
		response["warning"] = "Test results could not be saved."
		c.JSON(http.StatusOK, response)
		return
	}

	log.Printf("INFO: Saved session %s for user %s (score %.1f%%)", sessionID, entry.userID, result.ScorePercentage)
	response["saved"] = true
	response["sessionId"] = sessionID
	c.JSON(http.StatusOK, response)
}

// HandleRetake discards the session so the user can configure a fresh test.
// Also serves as the abandon action for an in-progress test.
func (h *Handler) HandleRetake(c *gin.Context) {
	testID, entry, ok := h.getTestEntry(c)
	if !ok {
		return
	}

	entry.mu.Lock()
	entry.runner.Retake()
	entry.mu.Unlock()
	h.dropTest(testID)

	log.Printf("INFO: Test %s discarded", testID)
	c.JSON(http.StatusOK, gin.H{"state": session.StateSetup})
}
