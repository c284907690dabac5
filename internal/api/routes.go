package api

import (
	"examwise/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	// Apply CORS middleware
	router.Use(CORSMiddleware())

	// --- Public Auth Routes ---
	router.GET("/login", handler.HandleGoogleLogin)                   // Initiates OAuth flow
	router.GET("/auth/google/callback", handler.HandleGoogleCallback) // Handles the redirect from Google

	// --- API Routes ---
	api := router.Group("/api")
	{
		// Public API routes (e.g., status check)
		api.GET("/auth/status", handler.HandleAuthStatus)    // Check if user is logged in
		api.POST("/auth/face-check", handler.HandleFaceCheck) // Classify login snapshot before the credential step

		// Protected API routes - Apply AuthRequired middleware
		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			// Routes that require authentication go here
			authorized.GET("/user/profile", handler.HandleUserProfile) // Get current user's profile
			authorized.POST("/logout", handler.HandleLogout)           // Log the user out

			// --- Test Session Routes ---
			authorized.POST("/tests", handler.HandleCreateTest)                  // Generate a test and start a session
			authorized.GET("/tests/:testId", handler.HandleGetTest)              // Get the current view of a session
			authorized.POST("/tests/:testId/answers", handler.HandleAnswer)      // Record/overwrite the current answer
			authorized.POST("/tests/:testId/next", handler.HandleNext)           // Advance to the next question
			authorized.POST("/tests/:testId/previous", handler.HandlePrevious)   // Go back to the previous question
			authorized.POST("/tests/:testId/finish", handler.HandleFinish)       // Score the session and persist the outcome
			authorized.POST("/tests/:testId/retake", handler.HandleRetake)       // Discard the session for a fresh start

			// --- Results & History Routes ---
			authorized.POST("/interpretations", handler.HandleInterpretResults)     // Generate feedback for a finished test
			authorized.GET("/history", handler.HandleListHistory)                   // List the user's finished sessions
			authorized.GET("/history/:sessionId", handler.HandleGetHistorySession)  // Get one session with its answer records
		}
	}
}
