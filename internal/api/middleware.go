package api

import (
	"log"      // Added for logging
	"net/http" // Added for http status codes
	"os"       // Import os package to read environment variables
	"strings"  // Import strings package for TrimSuffix

	"examwise/internal/api/handlers"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid" // Added for uuid.Nil check
)

// CORSMiddleware adds CORS headers to allow cross-origin requests
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Read the allowed origin from environment variable
		frontendURL := os.Getenv("FRONTEND_URL")
		if frontendURL == "" {
			// Fallback for local development; production deployments must
			// set FRONTEND_URL explicitly. Using "*" here would break
			// credentialed requests.
			frontendURL = "http://localhost:3000"
		}
		// Trim trailing slash if present before setting the header
		c.Writer.Header().Set("Access-Control-Allow-Origin", strings.TrimSuffix(frontendURL, "/"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthRequired is middleware to ensure the user is authenticated.
// It checks for the presence and validity of the user profile in the session
// and adds the internal DatabaseID (UUID) to the context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		profileValue := session.Get(handlers.ProfileSessionKey)

		profileData, ok := profileValue.(handlers.UserProfile)
		// Check if profile exists in session AND if the DatabaseID is valid (not Nil)
		if !ok || profileValue == nil || profileData.DatabaseID == uuid.Nil {
			log.Printf("WARN: AuthRequired failed - profile not found, invalid type, or missing DatabaseID in session.")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required or session invalid"})
			return
		}

		// Set the INTERNAL DATABASE USER ID (which is a uuid.UUID) into the context
		c.Set("userID", profileData.DatabaseID)
		// Optionally set other useful info
		c.Set("userProfile", profileData) // Keep original profile if needed

		c.Next()
	}
}
