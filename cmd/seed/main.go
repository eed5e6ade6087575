package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/armandov/sellerpulse/internal/seed"
)

// Default configuration constants.
const (
	defaultSellers     = 20
	defaultDeals       = 40
	defaultMeetings    = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultSeedTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9090", "Base URL of the service")
		sellers  = flag.Int("sellers", defaultSellers, "Number of sellers to generate")
		deals    = flag.Int("deals", defaultDeals, "Number of deals per seller")
		meetings = flag.Int("meetings", defaultMeetings, "Number of meetings per seller")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := seed.SetupLogging(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	config := &seed.Config{
		BaseURL:           *baseURL,
		Sellers:           *sellers,
		DealsPerSeller:    *deals,
		MeetingsPerSeller: *meetings,
		Workers:           *workers,
		Timeout:           *timeout,
		Verbose:           *verbose,
	}

	if err := seed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
