package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGS_FOLDER", dir)
	defer func() { log.Logger = zerolog.Nop() }()

	if err := Init(true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("GlobalLevel() = %v, want debug", zerolog.GlobalLevel())
	}

	log.Info().Str("component", "test").Msg("hello")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("log file is empty")
	}
}

func TestInit_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOGS_FOLDER", filepath.Join(blocker, "logs"))
	defer func() { log.Logger = zerolog.Nop() }()

	if err := Init(false); err == nil {
		t.Errorf("Init() should report an unusable log directory")
	}
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("GlobalLevel() = %v, want info", zerolog.GlobalLevel())
	}
}

func TestInit_DefaultsUnderDataPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGS_FOLDER", "")
	t.Setenv("DATA_PATH", dir)
	defer func() { log.Logger = zerolog.Nop() }()

	if err := Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	log.Info().Msg("hello")

	if _, err := os.Stat(filepath.Join(dir, "logs", LogFileName)); err != nil {
		t.Errorf("log file not under DATA_PATH/logs: %v", err)
	}
}
