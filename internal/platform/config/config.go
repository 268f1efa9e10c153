package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Database pool
	DBMaxConns          int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Aggregation cycle
	Countries         []string      `env:"COUNTRIES" envSeparator:"," envDefault:"US"`
	Categories        []string      `env:"CATEGORIES" envSeparator:"," envDefault:"all"`
	Windows           []string      `env:"WINDOWS" envSeparator:"," envDefault:"24h"`
	TrendLimit        int           `env:"TREND_LIMIT" envDefault:"50"`
	RefreshInterval   time.Duration `env:"REFRESH_INTERVAL" envDefault:"6h"`
	RefreshJitter     time.Duration `env:"REFRESH_JITTER" envDefault:"5m"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"2m"`
	SnapshotRetention time.Duration `env:"SNAPSHOT_RETENTION" envDefault:"720h"`

	// Google Trends (SerpAPI)
	SerpAPIKey            string        `env:"SERPAPI_KEY"`
	SerpAPIRequestsPerMin int           `env:"SERPAPI_RPM" envDefault:"20"`
	SerpAPITimeout        time.Duration `env:"SERPAPI_TIMEOUT" envDefault:"30s"`

	// YouTube Data API
	YouTubeAPIKey         string        `env:"YOUTUBE_API_KEY"`
	YouTubeRequestsPerMin int           `env:"YOUTUBE_RPM" envDefault:"60"`
	YouTubeTimeout        time.Duration `env:"YOUTUBE_TIMEOUT" envDefault:"30s"`

	// TikTok (Apify actor)
	ApifyToken          string        `env:"APIFY_TOKEN"`
	ApifyActorID        string        `env:"APIFY_ACTOR_ID"`
	ApifyRequestsPerMin int           `env:"APIFY_RPM" envDefault:"6"`
	ApifyTimeout        time.Duration `env:"APIFY_TIMEOUT" envDefault:"120s"`

	// Narrative summaries
	LLMAPIKey         string        `env:"LLM_API_KEY"`
	LLMModel          string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMRequestsPerMin int           `env:"LLM_RPM" envDefault:"3"`
	LLMTimeout        time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	SummaryTopN       int           `env:"SUMMARY_TOP_N" envDefault:"10"`

	// Article context enrichment
	EnrichmentEnabled bool          `env:"ENRICHMENT_ENABLED" envDefault:"false"`
	WebFetchRPS       float64       `env:"WEB_FETCH_RPS" envDefault:"2"`
	WebFetchTimeout   time.Duration `env:"WEB_FETCH_TIMEOUT" envDefault:"30s"`
	MaxContextLength  int           `env:"MAX_CONTEXT_LENGTH" envDefault:"1500"`

	// Telegram digest
	BotToken     string `env:"BOT_TOKEN"`
	DigestChatID int64  `env:"DIGEST_CHAT_ID"`
	DigestHour   int    `env:"DIGEST_HOUR" envDefault:"9"`
	DigestTopN   int    `env:"DIGEST_TOP_N" envDefault:"10"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	normalizeLists(cfg)

	return cfg, nil
}

// normalizeLists trims whitespace around comma-separated entries and drops
// empties, so COUNTRIES="US, GB" and COUNTRIES="US,GB" behave the same.
func normalizeLists(cfg *Config) {
	cfg.Countries = cleanList(cfg.Countries)
	cfg.Categories = cleanList(cfg.Categories)
	cfg.Windows = cleanList(cfg.Windows)
}

func cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		cleaned = append(cleaned, v)
	}

	return cleaned
}
