package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lessonlab/internal/audio"
	"lessonlab/internal/config"
	"lessonlab/internal/database"
	"lessonlab/internal/handlers"
	"lessonlab/internal/repository"
	"lessonlab/internal/security"
	"lessonlab/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	kvRepo := repository.NewKVRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(context.Background(), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	accountService := service.NewAccountService(accountRepo, emailService)
	authService := service.NewAuthService(accountService, kvRepo, cfg.SessionDuration, cfg.SessionExtendThreshold, cfg.AuditLogCapacity)
	if session, ok := authService.CheckAuthStatus(); ok {
		log.Printf("Restored %s session for account %s (expires %s)", session.Role, session.ID, session.ExpiresAt.Format(time.RFC3339))
	}

	progressService, err := service.NewProgressService(kvRepo)
	if err != nil {
		log.Fatalf("Failed to load progress: %v", err)
	}

	speechService := audio.NewSpeechService(cfg.TTSBaseURL, cfg.TTSLanguage, cfg.AudioCachePath, cfg.ExternalCallTimeout, cfg.Debug)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	tokens := security.NewTokenManager(cfg.JWTSecret)
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	loginLimiter := security.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	// Initialize handlers
	routes := &handlers.Routes{
		Auth:         handlers.NewAuthHandler(authService, accountService, tokens, csrf, oauthProviders, cfg.OAuthRedirectBaseURL, cfg.ExternalCallTimeout),
		Therapists:   handlers.NewTherapistHandler(authService, cfg.ExternalCallTimeout),
		Progress:     handlers.NewProgressHandler(progressService),
		Speech:       handlers.NewSpeechHandler(speechService, cfg.ExternalCallTimeout),
		Middleware:   handlers.NewMiddleware(authService, tokens, csrf),
		LoginLimiter: loginLimiter,
	}

	// Setup routes
	mux := http.NewServeMux()
	routes.Register(mux)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background cleanup
	go loginLimiter.Run(ctx, 5*time.Minute)
	go expireAuthSessions(ctx, authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// expireAuthSessions periodically logs out an AuthSession that has expired
// while no request touched it
func expireAuthSessions(ctx context.Context, authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := authService.State()
			if _, ok := authService.CheckAuthStatus(); !ok && before == service.StateAuthenticated {
				log.Println("Expired auth session cleaned up")
			}
		}
	}
}
