package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the pipeline and its (out-of-core) HTTP surface.
type Config struct {
	// Server
	Port           string
	Environment    string
	AllowedOrigins string

	// Database
	DatabaseURL string

	// Redis / broker / result backend (the queue protocol)
	RedisURL            string
	CeleryBrokerURL     string
	CeleryResultBackend string

	// Supabase-compatible datastore credentials
	SupabaseURL            string
	SupabaseServiceRoleKey string

	// Admin bearer token guarding POST /scrape/run and POST /ml/analyze
	AdminToken string

	// Funds classifier / analytics feature flags
	UseSpacyFunds     bool
	UseSpacyAnalytics bool

	// Per-adapter feature flags
	UseAdvHeaders  bool
	UseHumanDelay  bool
	UseURLFilter   bool
	RapplerMaxPages int

	// Scheduler
	DefaultSourceIntervalMinutes int
	SourceIntervalOverrides      map[string]int

	// Scrape runner
	MaxArticlesPerRun  int
	DiscoveryOversampleFactor int
	FetchTimeoutSeconds       int
	StealthDelayMinMs         int
	StealthDelayMaxMs         int

	// Retry / backoff
	MaxFetchRetries     int
	MaxTaskRetries      int
	RetryBaseBackoffSec int

	// Lexicon
	PoliticalLexiconPath    string
	PoliticalLexiconVersion string

	Timezone string
}

func loadSourceIntervalOverrides() map[string]int {
	overrides := map[string]int{}
	for _, source := range []string{"INQUIRER", "GMA", "PHILSTAR", "RAPPLER", "MANILA_BULLETIN", "MANILA_TIMES", "ABS_CBN"} {
		key := "SOURCE_" + source + "_INTERVAL_MINUTES"
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				overrides[strings.ToLower(source)] = n
			}
		}
	}
	return overrides
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost/newsdesk?sslmode=disable"),

		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CeleryBrokerURL:     getEnv("CELERY_BROKER_URL", getEnv("REDIS_URL", "redis://localhost:6379/0")),
		CeleryResultBackend: getEnv("CELERY_RESULT_BACKEND", getEnv("REDIS_URL", "redis://localhost:6379/1")),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		UseSpacyFunds:     getEnvAsBool("USE_SPACY_FUNDS", false),
		UseSpacyAnalytics: getEnvAsBool("USE_SPACY_ANALYTICS", false),

		UseAdvHeaders:   getEnvAsBool("USE_ADV_HEADERS", true),
		UseHumanDelay:   getEnvAsBool("USE_HUMAN_DELAY", true),
		UseURLFilter:    getEnvAsBool("USE_URL_FILTER", true),
		RapplerMaxPages: getEnvAsInt("RAPPLER_LATEST_MAX_PAGES", 3),

		DefaultSourceIntervalMinutes: getEnvAsInt("DEFAULT_SOURCE_INTERVAL_MINUTES", 75),
		SourceIntervalOverrides:      loadSourceIntervalOverrides(),

		MaxArticlesPerRun:         getEnvAsInt("MAX_ARTICLES_PER_RUN", 10),
		DiscoveryOversampleFactor: getEnvAsInt("DISCOVERY_OVERSAMPLE_FACTOR", 4),
		FetchTimeoutSeconds:       getEnvAsInt("FETCH_TIMEOUT_SECONDS", 20),
		StealthDelayMinMs:         getEnvAsInt("STEALTH_DELAY_MIN_MS", 800),
		StealthDelayMaxMs:         getEnvAsInt("STEALTH_DELAY_MAX_MS", 2500),

		MaxFetchRetries:     getEnvAsInt("MAX_FETCH_RETRIES", 2),
		MaxTaskRetries:      getEnvAsInt("MAX_TASK_RETRIES", 3),
		RetryBaseBackoffSec: getEnvAsInt("RETRY_BASE_BACKOFF_SECONDS", 60),

		PoliticalLexiconPath:    getEnv("POLITICAL_LEXICON_PATH", "configs/political_keywords.json"),
		PoliticalLexiconVersion: getEnv("POLITICAL_LEXICON_VERSION", "v1"),

		Timezone: getEnv("TIMEZONE", "Asia/Manila"),
	}

	return cfg, nil
}

// ValidateAPIKeys returns human-readable warnings about missing secrets,
// mirroring the startup-warning pattern; none of them is treated as fatal.
func (c *Config) ValidateAPIKeys() []string {
	var warnings []string
	if c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "" {
		warnings = append(warnings, "datastore credentials (SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY) not set")
	}
	if c.AdminToken == "" {
		warnings = append(warnings, "ADMIN_TOKEN not set - maintenance endpoints are unreachable")
	}
	return warnings
}

// SourceInterval returns the configured dispatch interval for one source,
// falling back to the default when no per-source override is configured.
func (c *Config) SourceInterval(source string) time.Duration {
	if minutes, ok := c.SourceIntervalOverrides[strings.ToLower(source)]; ok {
		return time.Duration(minutes) * time.Minute
	}
	return time.Duration(c.DefaultSourceIntervalMinutes) * time.Minute
}

func (c *Config) IsSpacyFundsEnabled() bool     { return c.UseSpacyFunds }
func (c *Config) IsSpacyAnalyticsEnabled() bool { return c.UseSpacyAnalytics }

func (c *Config) IsProduction() bool  { return c.Environment == "production" }
func (c *Config) IsDevelopment() bool { return c.Environment == "development" }

func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchTimeout is the per-request timeout budget for adapter fetches.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// StealthDelayBounds is the bounded distribution for the inter-request delay
// the stealth pacing delay must honor: lower bound positive, honored before every subsequent request.
func (c *Config) StealthDelayBounds() (time.Duration, time.Duration) {
	return time.Duration(c.StealthDelayMinMs) * time.Millisecond, time.Duration(c.StealthDelayMaxMs) * time.Millisecond
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
