package db

import "time"

// Setting keys persisted in the settings table.
const (
	// SettingScoringWeights overrides the built-in scoring weight table.
	// The value is a JSON object mapping "platform", "platform/entity_type"
	// or "default" keys to weight vectors.
	SettingScoringWeights = "scoring_weights"
)

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection
	maxConnectionRetries = 10
)

// Database pool default constants
const (
	defaultMaxConns          int32         = 10
	defaultMinConns          int32         = 2
	defaultMaxConnIdleTime   time.Duration = 30 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute
)
