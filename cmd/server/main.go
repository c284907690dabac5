package main

import (
	"context"
	"database/sql" // Added for session store connection
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examwise/internal/api"
	"examwise/internal/api/handlers"
	"examwise/internal/db"
	"examwise/internal/gemini"
	"examwise/internal/generator"

	sessions "github.com/gin-contrib/sessions"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib" // Import pgx driver for database/sql
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	GoogleOauthConfig *oauth2.Config
	// Session secret key will be loaded in init() after godotenv
	storeName = "examwise_session"
)

var sessionSecretKey []byte // Declare here so it's accessible in main()

func init() {
	// Load environment variables FIRST
	err := godotenv.Load()
	if err != nil {
		// Only treat "file not found" as a warning, other errors are fatal
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		} else {
			log.Println("Warning: .env file not found. Relying on system environment variables.")
		}
	}

	// Load session secret AFTER loading .env
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Println("WARNING: SESSION_SECRET environment variable is not set or empty!")
	}
	sessionSecretKey = []byte(secret)

	// Register types needed for session storage. Gob needs to know about the
	// concrete type stored under the profile key.
	gob.Register(handlers.UserProfile{})

	// --- Google OAuth Configuration ---
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL") // e.g., "http://localhost:8080/auth/google/callback"

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		log.Fatal("FATAL: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URL environment variables must be set.")
	}

	GoogleOauthConfig = &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func main() {
	// Environment variables are loaded in init()

	// Set up context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	database, err := db.NewDB(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Initialize Gemini client
	geminiClient, err := gemini.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	// Set up Gin router
	router := gin.Default()

	// --- Session Configuration ---
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("FATAL: DATABASE_URL environment variable must be set.")
	}

	// Create a standard sql.DB connection pool specifically for the session
	// store using the pgx driver via the stdlib adapter.
	sessionDB, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database connection for session store: %v", err)
	}
	defer sessionDB.Close()

	// Ping the database to verify the connection.
	if err := sessionDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database for session store: %v", err)
	}

	// Use the constructor from gin-contrib/sessions/postgres, passing the *sql.DB pool.
	store, err := gsessions.NewStore(sessionDB, sessionSecretKey)
	if err != nil {
		if err.Error() == "securecookie: hash key is not set" {
			log.Fatalf("FATAL: Failed to create postgres session store because SESSION_SECRET is missing or empty after loading env vars. Key length provided: %d", len(sessionSecretKey))
		}
		log.Fatalf("Failed to create postgres session store: %v", err)
	}

	// Set session options using the wrapper's Options method
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		Secure:   false,     // TODO: Set Secure=true in production (requires HTTPS)
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Use the session middleware globally, passing the wrapper store (*gsessions.Store)
	router.Use(sessions.Sessions(storeName, store))

	// Set up API handlers. The generator and interpreter wrap the Gemini
	// client behind the absorbing failure boundary; the client itself serves
	// face checks directly.
	testGenerator := generator.NewTestGenerator(geminiClient)
	interpreter := generator.NewResultInterpreter(geminiClient)
	handler := handlers.NewHandler(GoogleOauthConfig, storeName, database, testGenerator, interpreter, geminiClient)
	api.SetupRoutes(router, handler)

	// Get port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give server 5 seconds to shut down gracefully
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
