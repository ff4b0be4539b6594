package config

import (
	"os"
	"path/filepath"
	"strconv"

	"covtrend/internal/ingest"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath     string
	LogDir       string
	Smoothing    int
	Weekly       bool
	OutputFormat string
	Columns      ingest.Options
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try the executable's directory first
	if exeDir := executableDir(); exeDir != "" {
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := DataPath()
	logDir := LogDir()

	defaults := ingest.DefaultOptions()
	cfg := &AppConfig{
		DataPath:     dataPath,
		LogDir:       logDir,
		Smoothing:    getEnvInt("COVTREND_SMOOTHING", 7),
		Weekly:       getEnvBool("COVTREND_WEEKLY", false),
		OutputFormat: getEnv("COVTREND_OUTPUT_FORMAT", "table"),
		Columns: ingest.Options{
			DateColumn:    getEnv("COVTREND_DATE_COLUMN", defaults.DateColumn),
			LineageColumn: getEnv("COVTREND_LINEAGE_COLUMN", defaults.LineageColumn),
			CountColumn:   getEnv("COVTREND_COUNT_COLUMN", defaults.CountColumn),
			Delimiter:     defaults.Delimiter,
		},
	}

	return cfg, nil
}

// DataPath returns DATA_PATH, or the executable's directory when it is unset.
func DataPath() string {
	if dataPath := os.Getenv("DATA_PATH"); dataPath != "" {
		return dataPath
	}
	if exeDir := executableDir(); exeDir != "" {
		return exeDir
	}
	return "."
}

// LogDir returns LOGS_FOLDER, or "logs" under DataPath. The logger and
// AppConfig.LogDir both resolve through it.
func LogDir() string {
	if logDir := os.Getenv("LOGS_FOLDER"); logDir != "" {
		return logDir
	}
	return filepath.Join(DataPath(), "logs")
}

func executableDir() string {
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exePath)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric configuration value")
	}
	return fallback
}
