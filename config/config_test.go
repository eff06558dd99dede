package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://www.ukereviewhub.com/uke-reviews/", config.SourceURL)
	assert.Equal(t, "output", config.OutputDir)
	assert.Equal(t, "reviews.json", config.ReviewsFile)
	assert.Equal(t, "filters.json", config.FiltersFile)
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, time.Duration(0), config.ScrapeInterval)

	// Test with environment variables
	os.Setenv("SOURCE_URL", "https://example.com/reviews/")
	os.Setenv("OUTPUT_DIR", "/tmp/reviews")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("REDIS_DB", "1")
	os.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	os.Setenv("SCRAPE_INTERVAL_SECONDS", "30")

	config = LoadConfig()
	assert.Equal(t, "https://example.com/reviews/", config.SourceURL)
	assert.Equal(t, "/tmp/reviews", config.OutputDir)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, 30*time.Second, config.ScrapeInterval)

	// Clean up
	os.Unsetenv("SOURCE_URL")
	os.Unsetenv("OUTPUT_DIR")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("REDIS_DB")
	os.Unsetenv("MEMCACHE_ADDR")
	os.Unsetenv("SCRAPE_INTERVAL_SECONDS")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	config.SourceURL = "://missing-scheme"
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.SourceURL = "ftp://example.com/reviews"
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.OutputDir = ""
	assert.Error(t, config.Validate())
}
