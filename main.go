package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"ukescout/reviewworker/config"
	"ukescout/reviewworker/internal/scraper"
	"ukescout/reviewworker/logger"
	"ukescout/reviewworker/services/cache"
	"ukescout/reviewworker/services/detector"
	"ukescout/reviewworker/services/publisher"
	"ukescout/reviewworker/services/server"
	"ukescout/reviewworker/services/store"
	"ukescout/reviewworker/services/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("source_url", cfg.SourceURL).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Msg("Starting review worker")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Using Memcache at %s for the fetch guard", cfg.MemcacheAddr)

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		defer redisPublisher.Close()
		pub = redisPublisher

		logger.Info("Publishing change events to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	fileStore := store.NewFileStore(cfg.OutputDir, cfg.ReviewsFile, cfg.FiltersFile)
	changeDetector := detector.New(filepath.Join(cfg.OutputDir, cfg.CacheFile))

	s, err := scraper.New(scraper.Options{
		SourceURL: cfg.SourceURL,
		CacheSvc:  cacheService,
		Store:     fileStore,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scraper")
	}

	// Start worker in a goroutine
	w := worker.NewWorker(ctx, s, pub, changeDetector, cfg.ScrapeInterval)
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- w.Start()
	}()

	// Optionally serve the persisted data
	if cfg.ListenAddr != "" {
		srv := server.NewServer(fileStore)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
				log.Error().Err(err).Msg("HTTP server exited with error")
			}
		}()
	}

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
			return 1
		}
		log.Info().Msg("Worker exited normally")
	}

	log.Info().Msg("Shutting down gracefully...")
	return 0
}
