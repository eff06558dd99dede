package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Source page configuration
	SourceURL string

	// Output configuration
	OutputDir   string
	ReviewsFile string
	FiltersFile string
	CacheFile   string

	// HTTP API configuration; an empty address disables the server
	ListenAddr string

	// Redis configuration; an empty address disables event publishing
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration for the fetch rate-limit guard
	MemcacheAddr string

	// Scrape loop configuration; zero means a single scrape-and-save cycle
	ScrapeInterval time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	scrapeInterval, _ := strconv.Atoi(getEnv("SCRAPE_INTERVAL_SECONDS", "0"))

	return Config{
		SourceURL:            getEnv("SOURCE_URL", "https://www.ukereviewhub.com/uke-reviews/"),
		OutputDir:            getEnv("OUTPUT_DIR", "output"),
		ReviewsFile:          getEnv("REVIEWS_FILE", "reviews.json"),
		FiltersFile:          getEnv("FILTERS_FILE", "filters.json"),
		CacheFile:            getEnv("CACHE_FILE", "scrape-cache.json"),
		ListenAddr:           getEnv("LISTEN_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "reviewchanges"),
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		ScrapeInterval:       time.Duration(scrapeInterval) * time.Second,
		Environment:          getEnv("UKEWORKER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values that would make a run impossible
func (c *Config) Validate() error {
	u, err := url.Parse(c.SourceURL)
	if err != nil {
		return fmt.Errorf("invalid SOURCE_URL %q: %w", c.SourceURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("SOURCE_URL %q must be an http(s) URL", c.SourceURL)
	}
	if u.Host == "" {
		return fmt.Errorf("SOURCE_URL %q has no host", c.SourceURL)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	if c.ScrapeInterval < 0 {
		return fmt.Errorf("SCRAPE_INTERVAL_SECONDS must not be negative")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
