package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accaprep/backend/internal/config"
	"github.com/accaprep/backend/internal/logger"
	"github.com/accaprep/backend/internal/repositories"
	"github.com/accaprep/backend/internal/scheduler"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

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

	logger.Logger.Info("Starting ACCA Prep Reminder Scheduler")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	reviewRepo := repositories.NewReviewRepository(db, logger.Logger)
	notificationRepo := repositories.NewNotificationRepository(db, logger.Logger)

	// Start the hourly reminder job
	sched := scheduler.New(reviewRepo, notificationRepo, cfg.Reminders.StartHour, cfg.Reminders.EndHour, logger.Logger)
	if err := sched.Start(); err != nil {
		logger.Logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	logger.Logger.Info("Scheduler running",
		zap.Int("start_hour", cfg.Reminders.StartHour),
		zap.Int("end_hour", cfg.Reminders.EndHour))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Scheduler exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
