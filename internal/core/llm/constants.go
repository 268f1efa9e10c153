package llm

import "time"

// Error format strings.
const (
	errRateLimiter          = "rate limiter error: %w"
	errOpenAIChatCompletion = "openai chat completion error: %w"
	errOpenAIChatStream     = "openai chat completion stream error: %w"
)

// Circuit breaker settings.
const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
)

// Rate limiter settings.
const (
	rateLimiterBurst = 1
	secondsPerMinute = 60.0
)

// Metric label values.
const (
	statusOK    = "ok"
	statusError = "error"
)
