package handlers

import (
	"errors"
	"log"
	"net/http"

	"examwise/internal/models"

	"github.com/gin-gonic/gin"
)

// HandleInterpretResults generates narrative feedback for a finished test.
// The interpreter never fails outright; at worst the client receives the
// generic fallback texts.
func (h *Handler) HandleInterpretResults(c *gin.Context) {
	var req models.InterpretationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("WARN: Invalid interpretation payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		if errors.Is(err, models.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid interpretation request"})
		return
	}

	interpretation := h.Interpreter.Interpret(c.Request.Context(), req)
	c.JSON(http.StatusOK, interpretation)
}
