package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accaprep/backend/internal/ai"
	"github.com/accaprep/backend/internal/config"
	"github.com/accaprep/backend/internal/handlers"
	"github.com/accaprep/backend/internal/importer"
	"github.com/accaprep/backend/internal/logger"
	"github.com/accaprep/backend/internal/middleware"
	"github.com/accaprep/backend/internal/repositories"
	"github.com/accaprep/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title ACCA Prep API
// @version 1.0
// @description API for ACCA exam preparation: spaced-repetition reviews, quizzes and progress tracking

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting ACCA Prep API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	reviewRepo := repositories.NewReviewRepository(db, logger.Logger)
	questionRepo := repositories.NewQuestionRepository(db, logger.Logger)
	sessionRepo := repositories.NewStudySessionRepository(db, logger.Logger)

	// Initialize services
	clock := services.SystemClock{}
	reviewService := services.NewReviewService(reviewRepo, clock, logger.Logger)
	quizService := services.NewQuizService(questionRepo, reviewService, sessionRepo, clock, logger.Logger)
	leaderboardService := services.NewLeaderboardService(sessionRepo, logger.Logger)
	questionService := services.NewQuestionService(questionRepo, logger.Logger)
	coach := ai.NewCoach(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, logger.Logger)
	questionImporter := importer.New(questionRepo, logger.Logger)

	// Initialize handlers
	reviewHandler := handlers.NewReviewHandler(reviewService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, logger.Logger)
	chatHandler := handlers.NewChatHandler(coach, questionRepo, logger.Logger)
	questionHandler := handlers.NewQuestionHandler(questionService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(questionImporter, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware)

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		// User-facing routes require an identity from the auth proxy
		r.Group(func(r chi.Router) {
			r.Use(middleware.UserMiddleware)
			reviewHandler.RegisterRoutes(r)
			quizHandler.RegisterRoutes(r)
			leaderboardHandler.RegisterRoutes(r)
			chatHandler.RegisterRoutes(r)
			questionHandler.RegisterRoutes(r)
		})
		// Admin routes require the shared API key
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyMiddleware(cfg.APIKey))
			adminHandler.RegisterRoutes(r)
			questionHandler.RegisterAdminRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "accaprep_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
