package seedgen

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/agonhq/agon/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_run_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Agon Seed Tool
==============

Generates a deterministic synthetic population, loads it through the
ingestion API and verifies the aggregation views.

Usage:
  go run cmd/seed-matches/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9090")
  -students int
        Number of synthetic students (default 200)
  -competitions int
        Number of synthetic competitions (default 6)
  -seed int
        RNG seed; the same seed regenerates the same population (default 1)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for run output (default: seed_run_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with defaults
  go run cmd/seed-matches/main.go

  # Larger cohort against a remote instance
  go run cmd/seed-matches/main.go -students 5000 -url http://staging:9090

  # Reproduce a previous population exactly
  go run cmd/seed-matches/main.go -seed 42
`)
}
