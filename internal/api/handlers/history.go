package handlers

import (
	"errors"
	"log"
	"net/http"

	"examwise/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HandleListHistory returns the calling user's finished test sessions,
// most recent first.
func (h *Handler) HandleListHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sessions, err := h.Store.ListTestSessionsByUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("ERROR: Failed to list test history for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load test history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// HandleGetHistorySession returns one finished session with its full
// per-question answer breakdown.
func (h *Handler) HandleGetHistorySession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	ctx := c.Request.Context()
	testSession, err := h.Store.GetTestSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Test session not found"})
			return
		}
		log.Printf("ERROR: Failed to load session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load test session"})
		return
	}

	// Users can only inspect their own history
	if testSession.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Test session not found"})
		return
	}

	records, err := h.Store.ListAnswerRecordsBySession(ctx, sessionID)
	if err != nil {
		log.Printf("ERROR: Failed to load answer records for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load answer records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":       testSession,
		"answerRecords": records,
	})
}
