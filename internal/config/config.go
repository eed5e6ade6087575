// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers sources.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the CRM store.
	ShardCount int `koanf:"shard_count"`

	// MaxRaceLimit caps GET /race?limit.
	MaxRaceLimit int `koanf:"max_race_limit"`

	// PipelineStages fixes the funnel stage order.
	PipelineStages []string `koanf:"pipeline_stages"`

	// StageNegotiation is the exact negotiation stage label.
	StageNegotiation string `koanf:"stage_negotiation"`

	// StageWonMarker and StageLostMarker are the substrings that mark a
	// stage label as closed-won or closed-lost.
	StageWonMarker  string `koanf:"stage_won_marker"`
	StageLostMarker string `koanf:"stage_lost_marker"`
}

// New creates a Config with defaults. The stage vocabulary defaults to the
// CRM's Spanish labels.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9090",
		QueueSize:   100_000,
		WorkerCount: runtime.NumCPU() * 4,
		DedupeSize:  500_000,
		ShardCount:  8,

		MaxRaceLimit: 100,

		PipelineStages: []string{
			"Prospección",
			"Negociación",
			"Cerrado Ganado",
			"Cerrado Perdido",
		},
		StageNegotiation: "Negociación",
		StageWonMarker:   "Ganado",
		StageLostMarker:  "Perdido",
	}
}
