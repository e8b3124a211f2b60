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

	"vocabdrill/internal/audio"
	"vocabdrill/internal/cache"
	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/events"
	"vocabdrill/internal/handlers"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
	"vocabdrill/internal/study"
	"vocabdrill/internal/wordsource"
)

// snapshotTTL bounds how long an abandoned session can be resumed
const snapshotTTL = 7 * 24 * time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepSeed,
		handlers.StepServices,
		handlers.StepServer,
	)

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)
	startup.CompleteStep(handlers.StepDatabase)

	// Run migrations
	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
	startup.CompleteStep(handlers.StepMigrations)

	// Seed the starter vocabulary on first start
	startup.SetCurrentStep(handlers.StepSeed)
	if err := db.SeedStarterVocab(); err != nil {
		log.Printf("Warning: Failed to seed starter vocabulary: %v", err)
	}
	startup.CompleteStep(handlers.StepSeed)

	// Initialize services
	startup.SetCurrentStep(handlers.StepServices)
	ctx := context.Background()

	source := newWordSource(ctx, cfg, db)
	studyRepo := repository.NewStudyRepository(db)
	snapshots, closeSnapshots := newSnapshotStore(ctx, cfg, studyRepo)
	defer closeSnapshots()
	publisher := newPublisher(cfg)
	defer publisher.Close()

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Printf("Warning: Failed to initialize email service: %v", err)
		emailService, _ = service.NewEmailService(cfg.AWSRegion, "", "", cfg.AppBaseURL, cfg.Debug)
	}

	audioDir := filepath.Join(cfg.StaticFilesPath, "audio")
	var newSpeaker func() study.Speaker
	if cfg.TTSEnabled {
		tts := audio.NewTTSService(audioDir)
		newSpeaker = func() study.Speaker { return audio.NewVoice(tts, "/audio") }
	} else {
		audioDir = ""
		log.Println("Speech disabled: TTS_ENABLED=false")
	}

	studyService := service.NewStudyService(service.StudyServiceConfig{
		Source:           source,
		StudyRepo:        studyRepo,
		Snapshots:        snapshots,
		Publisher:        publisher,
		Email:            emailService,
		NewSpeaker:       newSpeaker,
		AutoAdvanceDelay: cfg.AutoAdvanceDelay,
	})
	defer studyService.Shutdown()

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), emailService)
	if has, err := authService.HasAdmins(); err == nil && !has {
		log.Println("No administrator accounts yet; create one with: vocabctl admin add")
	}

	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set; admin tokens will not survive a restart")
	}
	limiter := security.NewRateLimiter(10, time.Minute)
	defer limiter.Close()

	handler := handlers.NewRouter(handlers.Router{
		Middleware: handlers.NewMiddleware(authService, security.NewCSRFGenerator(cfg.JWTSecret), limiter),
		Auth:       handlers.NewAuthHandler(authService),
		Browse:     handlers.NewBrowseHandler(source),
		Study:      handlers.NewStudyHandler(studyService),
		Admin:      handlers.NewAdminHandler(service.NewVocabService(db), service.NewClassroomService(db), service.NewBackupService(db)),
		Startup:    startup,
		AudioDir:   audioDir,
	})
	startup.CompleteStep(handlers.StepServices)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	startup.CompleteStep(handlers.StepServer)
	startup.MarkReady()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// newWordSource uses the remote word service when configured, the database otherwise
func newWordSource(ctx context.Context, cfg *config.Config, db *database.DB) wordsource.Source {
	if cfg.WordSourceURL == "" {
		log.Println("Word source: local database")
		return wordsource.NewLocalSource(db)
	}

	source, err := wordsource.NewRESTSource(ctx, wordsource.RESTConfig{
		BaseURL:      cfg.WordSourceURL,
		ClientID:     cfg.WordSourceClientID,
		ClientSecret: cfg.WordSourceClientSecret,
		TokenURL:     cfg.WordSourceTokenURL,
		StaticToken:  cfg.WordSourceToken,
	})
	if err != nil {
		log.Fatalf("Failed to configure word source: %v", err)
	}
	log.Printf("Word source: %s", cfg.WordSourceURL)
	return source
}

// newSnapshotStore uses Redis when configured, the database otherwise
func newSnapshotStore(ctx context.Context, cfg *config.Config, repo *repository.StudyRepository) (cache.SnapshotStore, func()) {
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisSnapshotStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, snapshotTTL)
		if err == nil {
			log.Printf("Session snapshots: redis at %s", cfg.RedisAddr)
			return store, func() { store.Close() }
		}
		log.Printf("Warning: Redis unavailable, storing snapshots in the database: %v", err)
	}
	return cache.NewDBSnapshotStore(repo), func() {}
}

// newPublisher uses AMQP when configured and falls back to logging events
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err == nil {
			log.Printf("Study events: exchange %s", cfg.AMQPExchange)
			return publisher
		}
		log.Printf("Warning: AMQP unavailable, logging study events instead: %v", err)
	}
	return events.LogPublisher{}
}
