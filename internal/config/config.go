// Package config provides configuration management for the airdrop scanner
// application. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Scraper   ScraperConfig
	Sources   SourcesConfig
	External  ExternalConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// ClickHouseConfig holds ClickHouse configuration for the discovery log
type ClickHouseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// ScraperConfig holds discovery pipeline configuration
type ScraperConfig struct {
	Interval       time.Duration // cadence of scheduled discovery runs
	MinConfidence  float64       // orchestrator confidence filter
	DefaultLimit   int           // per-adapter item limit
	RequestTimeout time.Duration
	BatchSize      int
	BatchDelay     time.Duration
	CacheTTL       time.Duration // list-query cache TTL
}

// SourcesConfig holds per-adapter targets and credentials
type SourcesConfig struct {
	GitHubToken      string
	GitHubRepos      []string
	RSSFeeds         []string
	SocialBearer     string
	SocialHandles    []string
	ForumCommunities []string
	SearchAPIKey     string
	SearchQueries    []string
}

// ExternalConfig holds the collaborator service endpoints
type ExternalConfig struct {
	ScannerURL string // wallet activity scanner
	EnrichURL  string // LLM-backed enrichment service
	EnrichKey  string
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// AuthConfig holds admin authentication configuration.
// An empty AdminToken disables the check entirely (open by default).
type AuthConfig struct {
	AdminToken string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "airdrop_scanner"),
				User:           getEnv("POSTGRES_USER", "scanner"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
			ClickHouse: ClickHouseConfig{
				Host:     getEnv("CLICKHOUSE_HOST", "localhost"),
				Port:     getEnv("CLICKHOUSE_PORT", "9000"),
				Database: getEnv("CLICKHOUSE_DB", "airdrop_scanner"),
				User:     getEnv("CLICKHOUSE_USER", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Scraper: ScraperConfig{
			Interval:       getEnvAsDuration("SCRAPER_INTERVAL", 6*time.Hour),
			MinConfidence:  getEnvAsFloat("SCRAPER_MIN_CONFIDENCE", 0.5),
			DefaultLimit:   getEnvAsInt("SCRAPER_DEFAULT_LIMIT", 50),
			RequestTimeout: getEnvAsDuration("SCRAPER_REQUEST_TIMEOUT", 12*time.Second),
			BatchSize:      getEnvAsInt("SCRAPER_BATCH_SIZE", 3),
			BatchDelay:     getEnvAsDuration("SCRAPER_BATCH_DELAY", 2*time.Second),
			CacheTTL:       getEnvAsDuration("CACHE_TTL", 60*time.Second),
		},
		Sources: SourcesConfig{
			GitHubToken:      getEnv("GITHUB_TOKEN", ""),
			GitHubRepos:      getEnvAsList("GITHUB_REPOS", defaultGitHubRepos),
			RSSFeeds:         getEnvAsList("RSS_FEEDS", defaultRSSFeeds),
			SocialBearer:     getEnv("SOCIAL_BEARER_TOKEN", ""),
			SocialHandles:    getEnvAsList("SOCIAL_HANDLES", defaultSocialHandles),
			ForumCommunities: getEnvAsList("FORUM_COMMUNITIES", defaultForumCommunities),
			SearchAPIKey:     getEnv("SEARCH_API_KEY", ""),
			SearchQueries:    getEnvAsList("SEARCH_QUERIES", defaultSearchQueries),
		},
		External: ExternalConfig{
			ScannerURL: getEnv("SCANNER_URL", ""),
			EnrichURL:  getEnv("ENRICH_URL", ""),
			EnrichKey:  getEnv("ENRICH_API_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Auth: AuthConfig{
			AdminToken: getEnv("ADMIN_TOKEN", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

var (
	defaultGitHubRepos = []string{
		"jup-ag/jupiter-airdrop",
		"MarginFi/mrgn-points",
		"LayerZero-Labs/airdrop",
	}
	defaultRSSFeeds = []string{
		"https://blog.jup.ag/rss.xml",
		"https://mirror.xyz/feed",
	}
	defaultSocialHandles = []string{
		"JupiterExchange", "wormhole", "arbitrum", "Optimism",
	}
	defaultForumCommunities = []string{
		"CryptoAirdrops", "solana", "ethfinance", "defi",
	}
	defaultSearchQueries = []string{
		"crypto airdrop claim live",
		"token airdrop snapshot eligibility",
	}
)

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList gets a comma-separated environment variable as a string slice
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
