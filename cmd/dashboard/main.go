package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/fieldtrace/fieldtracebackend/config"
	"github.com/fieldtrace/fieldtracebackend/database"
	"github.com/fieldtrace/fieldtracebackend/handlers"
	"github.com/fieldtrace/fieldtracebackend/logging"
	"github.com/fieldtrace/fieldtracebackend/repository"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer logger.Sync()

	db, err := database.Init(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := database.InitSchema(db, logger); err != nil {
		logger.Fatal("failed to initialize schema", zap.Error(err))
	}

	videoRepo := repository.NewVideoRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	searchHandler := &handlers.SearchHandler{Repo: searchRepo, Logger: logger}
	videoHandler := &handlers.VideoHandler{VideoRepo: videoRepo, SearchRepo: searchRepo, Cfg: cfg, Logger: logger}
	thumbnailHandler := &handlers.ThumbnailHandler{Repo: searchRepo, Logger: logger}
	pageHandler := &handlers.PageHandler{Logger: logger}

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", searchHandler.Search)
		r.Get("/segments/{segmentID}/thumbnail", thumbnailHandler.Get)

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", videoHandler.List)
			r.Route("/{videoID}", func(r chi.Router) {
				r.Get("/", videoHandler.Get)
				r.Get("/pings", videoHandler.Pings)
				r.Get("/route", videoHandler.Route)
				r.Get("/stream", videoHandler.Stream)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", pageHandler.Dashboard)

	logger.Info("dashboard listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("source_dir", cfg.SourceDir))

	server := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// no write deadline; playback responses can outlive any fixed one
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server exited gracefully")
}
