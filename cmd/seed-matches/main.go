package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/agonhq/agon/internal/seedgen"
)

// Default configuration constants.
const (
	defaultStudents     = 200
	defaultCompetitions = 6
	defaultSeed         = 1
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9090", "Base URL of the service")
		students     = flag.Int("students", defaultStudents, "Number of synthetic students")
		competitions = flag.Int("competitions", defaultCompetitions, "Number of synthetic competitions")
		seed         = flag.Int64("seed", defaultSeed, "RNG seed; same seed regenerates the same population")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile      = flag.String("log", "", "Log file for run output (default: seed_run_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedgen.ShowHelp()
		return
	}

	if err := seedgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seedgen.Config{
		BaseURL:         *baseURL,
		NumStudents:     *students,
		NumCompetitions: *competitions,
		Seed:            *seed,
		Workers:         *workers,
		Timeout:         *timeout,
		Verbose:         *verbose,
		LogFile:         *logFile,
	}

	if err := seedgen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
