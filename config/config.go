package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultSourceType = "trackaddict"
	DefaultModel      = "base.en"
	DefaultListenAddr = ":8170"
	DefaultCORSOrigin = "http://localhost:5173"
)

const (
	defaultThumbnailWidth = 300
)

type Config struct {
	// source directory (where footage files are scanned)
	SourceDir string

	// telemetry source profile for the scanned footage (trackaddict, gopro)
	SourceType string

	// database configuration; DSN selects MySQL, otherwise SQLite at DatabasePath
	DatabasePath string
	DatabaseDSN  string

	// transcription settings
	WhisperModel  string
	WhisperDevice string // GPU selector handed to the transcription subprocess
	WhisperDir    string // model download/cache root

	// pipeline behavior switches
	CommitResults  bool // false turns the persistence step into a dry run
	SkipDuplicates bool

	// thumbnail generation settings
	ThumbnailWidth int

	// dashboard server settings
	ListenAddr string
	CORSOrigin string

	// scratch space for transcription artifacts
	TempDir string

	// zap level; "debug" switches to the development logger
	LogLevel string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %t. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	source := getEnvOrDefault("SOURCE_DIR", filepath.Join(".", "footage"))
	absSource, err := filepath.Abs(source)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for source directory '%s': %w", source, err)
	}

	whisperDir := getEnvOrDefault("WHISPER_DIR", filepath.Join(".", "models"))
	absWhisperDir, err := filepath.Abs(whisperDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for whisper model directory '%s': %w", whisperDir, err)
	}

	cfg := Config{
		SourceDir:      absSource,
		SourceType:     getEnvOrDefault("SOURCE_TYPE", DefaultSourceType),
		DatabasePath:   getEnvOrDefault("DATABASE_PATH", "fieldtrace.db"),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		WhisperModel:   getEnvOrDefault("WHISPER_MODEL", DefaultModel),
		WhisperDevice:  os.Getenv("WHISPER_DEVICE"),
		WhisperDir:     absWhisperDir,
		CommitResults:  getEnvBoolOrDefault("COMMIT_RESULTS", true),
		SkipDuplicates: getEnvBoolOrDefault("SKIP_DUPLICATES", true),
		ThumbnailWidth: getEnvIntOrDefault("THUMBNAIL_WIDTH", defaultThumbnailWidth),
		ListenAddr:     getEnvOrDefault("LISTEN_ADDR", DefaultListenAddr),
		CORSOrigin:     getEnvOrDefault("CORS_ORIGIN", DefaultCORSOrigin),
		TempDir:        getEnvOrDefault("TEMP_DIR", os.TempDir()),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
	}

	return cfg, nil
}
