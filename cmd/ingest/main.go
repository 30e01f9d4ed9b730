package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fieldtrace/fieldtracebackend/config"
	"github.com/fieldtrace/fieldtracebackend/database"
	"github.com/fieldtrace/fieldtracebackend/logging"
	"github.com/fieldtrace/fieldtracebackend/media"
	"github.com/fieldtrace/fieldtracebackend/pipeline"
	"github.com/fieldtrace/fieldtracebackend/repository"
	"github.com/fieldtrace/fieldtracebackend/thumbnail"
	"github.com/fieldtrace/fieldtracebackend/transcribe"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "run every extraction step but skip the database commit")
	flag.Parse()

	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if *dryRun {
		cfg.CommitResults = false
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

	sourceType, err := media.ParseSourceType(cfg.SourceType)
	if err != nil {
		logger.Fatal("invalid source type", zap.String("source_type", cfg.SourceType), zap.Error(err))
	}
	extractor := media.Extractor{Source: sourceType}

	transcriptionCfg := transcribe.Config{
		Model:    cfg.WhisperModel,
		Device:   cfg.WhisperDevice,
		ModelDir: cfg.WhisperDir,
		TempDir:  cfg.TempDir,
	}
	runner, err := transcribe.NewRunner(transcriptionCfg, logger)
	if err != nil {
		logger.Fatal("transcription runner unavailable", zap.Error(err))
	}
	cfgJSON, err := transcriptionCfg.JSON()
	if err != nil {
		logger.Fatal("failed to serialize transcription config", zap.Error(err))
	}

	sampler := thumbnail.NewSampler(cfg.ThumbnailWidth, logger)

	videoRepo := repository.NewVideoRepository(db)
	ingestRepo := repository.NewIngestRepository(db)

	batch := pipeline.New(cfg, videoRepo, ingestRepo, extractor, runner, sampler, cfgJSON, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := batch.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("ingest interrupted",
				zap.Int("ingested", summary.Ingested),
				zap.Int("scanned", summary.Scanned))
			os.Exit(1)
		}
		logger.Error("ingest batch failed", zap.Error(err))
		os.Exit(1)
	}
}
