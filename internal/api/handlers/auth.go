package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log"
	"net/http"
	"os"

	"examwise/internal/db"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"golang.org/x/oauth2"
)

// HandleGoogleLogin: Initiates the Google OAuth flow.
func (h *Handler) HandleGoogleLogin(c *gin.Context) {
	session := sessions.Default(c)

	stateBytes := make([]byte, 16)
	_, err := rand.Read(stateBytes)
	if err != nil {
		log.Printf("ERROR: Failed to generate state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate state"})
		return
	}
	oauthStateString := base64.URLEncoding.EncodeToString(stateBytes)

	session.Set(OauthStateSessionKey, oauthStateString)
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	url := h.OauthConfig.AuthCodeURL(oauthStateString, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// HandleGoogleCallback: Handles the redirect back from Google.
func (h *Handler) HandleGoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	retrievedState := session.Get(OauthStateSessionKey)
	originalState := c.Query("state")

	if originalState == "" || retrievedState == nil || retrievedState.(string) != originalState {
		log.Printf("WARN: Invalid state parameter. Session state: %v, Query state: %s", retrievedState, originalState)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid state parameter."})
		return
	}

	code := c.Query("code")
	token, err := h.OauthConfig.Exchange(context.Background(), code)
	if err != nil {
		log.Printf("ERROR: Failed to exchange code: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange code"})
		return
	}

	if !token.Valid() {
		log.Printf("WARN: Retrieved invalid token.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Retrieved invalid token"})
		return
	}

	client := h.OauthConfig.Client(context.Background(), token)
	oauth2Service, err := oauth2api.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		log.Printf("ERROR: Failed to create OAuth2 service: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create OAuth2 service"})
		return
	}

	userinfo, err := oauth2Service.Userinfo.V2.Me.Get().Do()
	if err != nil {
		log.Printf("ERROR: Failed to get user info: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info"})
		return
	}

	// Create or refresh our internal user record for this Google account
	ctx := c.Request.Context()
	databaseID, err := h.Store.UpsertUser(ctx, db.UpsertUserParams{
		GoogleID: userinfo.Id,
		Email:    userinfo.Email,
		Name:     userinfo.Name,
		Picture:  userinfo.Picture,
	})
	if err != nil {
		log.Printf("ERROR: Failed to upsert user %s: %v", userinfo.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store user profile"})
		return
	}
	log.Printf("INFO: User %s mapped to internal ID %s", userinfo.Email, databaseID)

	profile := UserProfile{
		DatabaseID:    databaseID,
		GoogleID:      userinfo.Id,
		Email:         userinfo.Email,
		VerifiedEmail: userinfo.VerifiedEmail != nil && *userinfo.VerifiedEmail,
		Name:          userinfo.Name,
		GivenName:     userinfo.GivenName,
		FamilyName:    userinfo.FamilyName,
		Picture:       userinfo.Picture,
		Locale:        userinfo.Locale,
	}

	session.Set(ProfileSessionKey, profile)
	session.Delete(OauthStateSessionKey)

	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session after login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	// Redirect to frontend URL - this should likely be configurable
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "/" // Default fallback
	}
	log.Printf("Redirecting user %s to frontend: %s", profile.Email, frontendURL)
	c.Redirect(http.StatusTemporaryRedirect, frontendURL)
}

// HandleUserProfile: Displays the user's profile information.
func (h *Handler) HandleUserProfile(c *gin.Context) {
	session := sessions.Default(c)
	profileData := session.Get(ProfileSessionKey)

	profile, ok := profileData.(UserProfile)
	if !ok || profileData == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated or session invalid"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// HandleLogout: Clears the session.
func (h *Handler) HandleLogout(c *gin.Context) {
	session := sessions.Default(c)

	userID := uuid.Nil
	if userIDValue, exists := c.Get("userID"); exists {
		if id, ok := userIDValue.(uuid.UUID); ok {
			userID = id
		}
	}

	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})

	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session during logout for user %s: %v", userID, err)
	}

	log.Printf("INFO: User session cleared successfully for user ID: %s", userID)
	c.Status(http.StatusOK)
}

// HandleAuthStatus checks if a user is currently authenticated via session.
func (h *Handler) HandleAuthStatus(c *gin.Context) {
	session := sessions.Default(c)
	profileData := session.Get(ProfileSessionKey)

	profile, ok := profileData.(UserProfile)
	if !ok || profileData == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          profile,
	})
}

// maxFaceImageSize bounds the uploaded login snapshot (4 MB)
const maxFaceImageSize = 4 << 20

// HandleFaceCheck classifies whether the uploaded snapshot contains a
// visible human face. Used by the facial login form before the credential
// step; any backend failure is reported as "no face detected" so login
// simply falls back to the password flow.
func (h *Handler) HandleFaceCheck(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image upload"})
		return
	}
	if fileHeader.Size == 0 || fileHeader.Size > maxFaceImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is empty or too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("ERROR: Failed to open face image upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		log.Printf("ERROR: Failed to read face image upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	detected, err := h.Faces.VerifyFace(c.Request.Context(), image, mimeType)
	if err != nil {
		log.Printf("ERROR: Face classification failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"isFaceDetected": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isFaceDetected": detected})
}
