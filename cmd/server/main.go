package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/picorama/server/internal/config"
	"github.com/picorama/server/internal/handlers"
	custommw "github.com/picorama/server/internal/middleware"
	"github.com/picorama/server/internal/observability"
	"github.com/picorama/server/internal/repository"
	"github.com/picorama/server/internal/services"
)

const serviceVersion = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize telemetry
	ctx := context.Background()
	telemetry, err := observability.Initialize(ctx, observability.NewConfig("picorama-server", serviceVersion))
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	// Initialize database and repository
	var photoRepo repository.PhotoRepo
	if cfg.UsePostgres() {
		log.Println("Using PostgreSQL database")
		db, err := repository.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
		}
		defer db.Close()
		photoRepo = repository.NewPhotoRepositoryPostgres(db)
	} else {
		log.Println("Using SQLite database")
		db, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		defer db.Close()
		photoRepo = repository.NewPhotoRepository(db)
	}

	// Initialize services
	storageService, err := services.NewStorageService(
		cfg.Media.MediaPath,
		cfg.Media.ThumbsPath,
		cfg.Media.MaxFileSizeMB,
	)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}

	nameService := services.NewNameService()
	exifService := services.NewEXIFService()
	normalizerService := services.NewNormalizerService(storageService, exifService)
	paletteService := services.NewPaletteService()
	ingestService := services.NewIngestService(nameService, normalizerService, paletteService, storageService, photoRepo)
	paginationService := services.NewPaginationService(photoRepo)
	calendarService := services.NewCalendarService(photoRepo)

	// Initialize metrics
	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize HTTP metrics: %v", err)
	}
	journalMetrics, err := observability.NewJournalMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize journal metrics: %v", err)
	}

	// Initialize handlers
	photoHandler := handlers.NewPhotoHandler(ingestService, paginationService, calendarService, journalMetrics)
	healthHandler := handlers.NewHealthHandler()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware("picorama-server"))
	r.Use(observability.MetricsMiddleware(httpMetrics))

	// Routes
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/version", handlers.VersionHandler)

	r.Group(func(r chi.Router) {
		r.Use(custommw.BearerAuth(cfg.Security.AuthCode, journalMetrics))
		r.Post("/add/", photoHandler.Add)
	})

	r.Get("/q/{page}", photoHandler.Query)
	r.Get("/history/{year}/{day}", photoHandler.History)
	r.Get("/page/{year}/{month}", photoHandler.PageForDate)
	r.Get("/page/{year}/{month}/{day}", photoHandler.PageForDate)

	// Static media
	fileServer(r, "/media", http.Dir(storageService.MediaPath()))
	fileServer(r, "/thumbs", http.Dir(storageService.ThumbsPath()))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found."}`))
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Longer for uploads
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Picorama server starting on %s", cfg.ServerAddress)
		log.Printf("Media path: %s", cfg.Media.MediaPath)
		log.Printf("Thumbs path: %s", cfg.Media.ThumbsPath)
		log.Printf("Max file size: %dMB", cfg.Media.MaxFileSizeMB)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Printf("Telemetry shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// fileServer mounts a read-only static file handler under path
func fileServer(r chi.Router, path string, root http.FileSystem) {
	fs := http.StripPrefix(path, http.FileServer(root))
	r.Get(path+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}
