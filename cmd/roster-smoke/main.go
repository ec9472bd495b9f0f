package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/roster/internal/smoke"
	"github.com/okian/roster/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumMembers  = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8000", "Base URL of the service")
		numMembers = flag.Int("members", defaultNumMembers, "Number of members to create concurrently")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		keep       = flag.Bool("keep", false, "Keep created members")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &smoke.Config{
		BaseURL:    *baseURL,
		NumMembers: *numMembers,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
		KeepData:   *keep,
	}

	stats, err := smoke.Run(ctx, config)
	smoke.DisplayStats(ctx, stats)
	if err != nil {
		os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called explicitly above
	}
}
