package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"phonicsquest/internal/adaptive"
	"phonicsquest/internal/ai"
	"phonicsquest/internal/audio"
	"phonicsquest/internal/config"
	"phonicsquest/internal/database"
	"phonicsquest/internal/handlers"
	"phonicsquest/internal/repository"
	"phonicsquest/internal/security"
	"phonicsquest/internal/service"
	"phonicsquest/internal/telemetry"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
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
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	kidRepo := repository.NewKidRepository(db)
	stateRepo := repository.NewStateRepository(db)
	telemetryRepo := repository.NewTelemetryRepository(db)

	// Telemetry: deliver to the collector when configured, otherwise log
	var sink telemetry.Sink = &telemetry.LogSink{}
	if cfg.TelemetryEndpoint != "" {
		sink = telemetry.NewHTTPSink(cfg.TelemetryEndpoint)
		log.Printf("Telemetry enabled: endpoint=%s", cfg.TelemetryEndpoint)
	}
	tracker := telemetry.NewTracker(telemetryRepo, sink, cfg.TelemetryFlushInterval)

	// Initialize services
	authService := service.NewAuthService(userRepo, familyRepo, cfg.SessionDuration)
	familyService := service.NewFamilyService(familyRepo, kidRepo, cfg.SessionDuration)
	progressService := service.NewProgressService(stateRepo, tracker)

	ttsService := audio.NewTTSService(filepath.Join(cfg.StaticFilesPath, "audio"))

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Gemini task enhancement; without an API key quests run on local
	// generation only
	var planGen adaptive.PlanGenerator
	var visualGen *ai.Generator
	if cfg.GeminiAPIKey != "" {
		generator, err := ai.NewGenerator(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiImageModel, filepath.Join(cfg.StaticFilesPath, "visuals"))
		if err != nil {
			log.Printf("Warning: failed to initialize Gemini generator: %v", err)
		} else {
			planGen = generator
			visualGen = generator
			log.Printf("AI task enhancement enabled: model=%s", cfg.GeminiModel)
		}
	} else {
		log.Println("AI task enhancement disabled: GEMINI_API_KEY not configured")
	}

	questService := service.NewQuestService(progressService, func() *adaptive.Pipeline {
		return adaptive.NewPipeline(planGen, nil, cfg.EnhanceTimeout)
	})

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
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
		"apple": {
			Name:  "apple",
			Label: "Apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: cfg.AppleClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
				Scopes: []string{"name", "email"},
			},
			AuthParams: map[string]string{
				"response_mode": "query",
			},
		},
	}

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(10, time.Minute)
	// Kid passwords are short, so kid logins get a tighter per-IP budget.
	kidLimiter := security.NewRateLimiter(5, time.Minute)
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	middleware := handlers.NewMiddleware(authService, familyService, rateLimiter, kidLimiter, csrf)
	authHandler := handlers.NewAuthHandler(authService, emailService, csrf, cfg.SessionDuration, oauthProviders, cfg.OAuthRedirectBaseURL)
	kidHandler := handlers.NewKidHandler(familyService, cfg.SessionDuration)
	questHandler := handlers.NewQuestHandler(progressService, questService, ttsService, visualGen)
	parentHandler := handlers.NewParentHandler(familyService, progressService, emailService)

	// Setup routes
	mux := http.NewServeMux()

	// Static files (audio, visuals, client bundle)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Parent auth
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /api/auth/providers", authHandler.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Kid auth
	mux.HandleFunc("POST /api/kid/login", middleware.KidRateLimit(kidHandler.Login))
	mux.HandleFunc("POST /api/kid/logout", kidHandler.Logout)
	mux.HandleFunc("GET /api/kid/me", middleware.RequireKidAuth(kidHandler.Me))

	// Game routes (kid session)
	mux.HandleFunc("GET /api/game/state", middleware.RequireKidAuth(questHandler.GetState))
	mux.HandleFunc("POST /api/game/quest/{skillId}", middleware.RequireKidAuth(questHandler.StartQuest))
	mux.HandleFunc("GET /api/game/quest", middleware.RequireKidAuth(questHandler.GetQuest))
	mux.HandleFunc("POST /api/game/quest/answer", middleware.RequireKidAuth(questHandler.SubmitAnswer))
	mux.HandleFunc("POST /api/game/quest/hint", middleware.RequireKidAuth(questHandler.RecordHint))
	mux.HandleFunc("POST /api/game/quest/complete", middleware.RequireKidAuth(questHandler.CompleteQuest))
	mux.HandleFunc("POST /api/game/placement", middleware.RequireKidAuth(questHandler.CompletePlacement))
	mux.HandleFunc("POST /api/game/onboarding", middleware.RequireKidAuth(questHandler.CompleteOnboarding))
	mux.HandleFunc("POST /api/game/daily-challenge", middleware.RequireKidAuth(questHandler.CompleteDailyChallenge))
	mux.HandleFunc("POST /api/game/guardians", middleware.RequireKidAuth(questHandler.SaveGuardian))
	mux.HandleFunc("PUT /api/game/settings", middleware.RequireKidAuth(questHandler.UpdateSettings))
	mux.HandleFunc("POST /api/game/reset", middleware.RequireKidAuth(questHandler.ResetProgress))
	mux.HandleFunc("POST /api/game/notifications/dismiss", middleware.RequireKidAuth(questHandler.DismissNotifications))
	mux.HandleFunc("POST /api/game/speak", middleware.RequireKidAuth(questHandler.Speak))
	mux.HandleFunc("POST /api/game/illustrate", middleware.RequireKidAuth(questHandler.Illustrate))

	// Parent dashboard routes
	mux.HandleFunc("GET /api/parent/families", middleware.RequireAuth(parentHandler.ListFamilies))
	mux.HandleFunc("GET /api/parent/families/{familyId}/kids", middleware.RequireAuth(parentHandler.ListKids))
	mux.HandleFunc("POST /api/parent/families/{familyId}/kids", middleware.RequireAuth(middleware.RequireCSRF(parentHandler.CreateKid)))
	mux.HandleFunc("PUT /api/parent/kids/{kidId}", middleware.RequireAuth(middleware.RequireCSRF(parentHandler.UpdateKid)))
	mux.HandleFunc("POST /api/parent/kids/{kidId}/password", middleware.RequireAuth(middleware.RequireCSRF(parentHandler.RegenerateKidPassword)))
	mux.HandleFunc("DELETE /api/parent/kids/{kidId}", middleware.RequireAuth(middleware.RequireCSRF(parentHandler.DeleteKid)))
	mux.HandleFunc("GET /api/parent/kids/{kidId}/progress", middleware.RequireAuth(parentHandler.GetKidProgress))
	mux.HandleFunc("POST /api/parent/kids/{kidId}/progress-email", middleware.RequireAuth(middleware.RequireCSRF(parentHandler.SendProgressEmail)))

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

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupExpiredSessions(authService, familyService)
	go cleanupAudioCache(ttsService)
	go tracker.Run(ctx)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Flush remaining telemetry before exit
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := tracker.Flush(flushCtx); err != nil {
		log.Printf("Warning: final telemetry flush failed: %v", err)
	}
}

// cleanupAudioCache prunes generated speech files once a day
func cleanupAudioCache(ttsService *audio.TTSService) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed, err := ttsService.CleanupStaleAudio(30 * 24 * time.Hour)
		if err != nil {
			log.Printf("Error cleaning up audio cache: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("Audio cache cleaned up: %d stale files removed", removed)
		}
	}
}

// cleanupExpiredSessions removes expired parent and kid sessions every hour
func cleanupExpiredSessions(authService *service.AuthService, familyService *service.FamilyService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		// Cleanup parent sessions
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired parent sessions cleaned up")
		}

		// Cleanup kid sessions
		if err := familyService.CleanupExpiredKidSessions(); err != nil {
			log.Printf("Error cleaning up expired kid sessions: %v", err)
		} else {
			log.Println("Expired kid sessions cleaned up")
		}
	}
}
