package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aircheck/internal/adapter"
	"aircheck/internal/config"
	"aircheck/internal/exporter"
	"aircheck/internal/handler"
	"aircheck/internal/logger"
	"aircheck/internal/middleware"
	"aircheck/internal/repository/sqlite"
	"aircheck/internal/seed"
	"aircheck/internal/service"
	"aircheck/internal/task"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Log configuration (excluding secrets)
	cfg.LogConfiguration()

	// Initialize structured logging
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logger.SetGlobalLogger(logger.NewJSON(level))
	} else {
		logger.SetGlobalLogger(logger.New(level))
	}

	// Initialize SQLite database with WAL mode
	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations to ensure schema is up to date
	if err := sqlite.Migrate(db.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize data access layer
	projectRepo := sqlite.NewProjectRepository(db)

	// Seed a sample project for development environments
	if cfg.SeedSampleData {
		if err := seed.Run(context.Background(), projectRepo); err != nil {
			log.Printf("WARNING: sample data seeding failed: %v", err)
		}
	}

	// Initialize the detection provider client and reconciliation service
	provider := adapter.NewACRCloudAdapter(cfg.ACRBaseURL, cfg.ACRToken, cfg.ProviderTimeout)
	reportService := service.NewReportService(provider, cfg.UTCOffsetMinutes)
	emitter := exporter.NewExcelEmitter()

	// Initialize handlers
	reportHandler := handler.NewReportHandler(reportService, emitter, projectRepo)

	// Background retention janitor for stored projects
	janitor := task.NewRetentionJanitor(projectRepo, cfg.ProjectRetentionDays, 6*time.Hour)
	janitor.Start(context.Background())
	defer janitor.Stop()

	// Set up HTTP routing
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", reportHandler.HandlePing)
	mux.HandleFunc("POST /api/projects", reportHandler.HandleUploadProject)
	mux.HandleFunc("GET /api/projects", reportHandler.HandleListProjects)
	mux.HandleFunc("GET /api/projects/{id}", reportHandler.HandleGetProject)
	mux.HandleFunc("DELETE /api/projects/{id}", reportHandler.HandleDeleteProject)
	mux.HandleFunc("POST /api/projects/{id}/report", reportHandler.HandleGenerateStoredReport)
	mux.HandleFunc("POST /api/reports", reportHandler.HandleGenerateReport)

	// API key check guards every route when configured; request logging
	// wraps the whole stack
	var root http.Handler = mux
	root = middleware.APIKeyAuth(cfg.APIKey)(root)
	root = middleware.RequestLogger(logger.GetGlobalLogger())(root)

	// Configure HTTP server with timeouts to prevent resource exhaustion
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      root,
		ReadTimeout:  15 * time.Second,  // Max time to read request
		WriteTimeout: 120 * time.Second, // Report generation fans out provider calls
		IdleTimeout:  60 * time.Second,  // Max time for keep-alive connections
	}

	// Start server in background goroutine
	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
