// Package seed generates and submits synthetic CRM records against a
// running instance, then verifies the analytics endpoints agree with
// themselves.
package seed

import (
	"fmt"
	"os"

	"github.com/armandov/sellerpulse/pkg/logger"
)

// SetupLogging initializes the logger for the seed tool.
func SetupLogging() error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`SellerPulse Seed Tool
=====================

Generates synthetic sellers, deals and meetings, submits them
concurrently, and verifies the forecast and race endpoints.

Usage:
  go run cmd/seed/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9090")
  -sellers int
        Number of sellers to generate (default 20)
  -deals int
        Number of deals per seller (default 40)
  -meetings int
        Number of meetings per seller (default 10)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed/main.go

  # Seed a larger population
  go run cmd/seed/main.go -sellers 100 -deals 80 -workers 16
`)
}
