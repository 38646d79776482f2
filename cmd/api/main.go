package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/moodtune/internal/adapters/audio"
	"github.com/ewilliams-labs/moodtune/internal/adapters/catalog"
	"github.com/ewilliams-labs/moodtune/internal/adapters/gigachat"
	"github.com/ewilliams-labs/moodtune/internal/adapters/rest"
	"github.com/ewilliams-labs/moodtune/internal/adapters/spotify"
	"github.com/ewilliams-labs/moodtune/internal/config"
	"github.com/ewilliams-labs/moodtune/internal/core/ports"
	"github.com/ewilliams-labs/moodtune/internal/core/services"
	"github.com/ewilliams-labs/moodtune/internal/logger"
	"github.com/ewilliams-labs/moodtune/internal/metrics"
	"github.com/ewilliams-labs/moodtune/internal/recommender"
	"github.com/ewilliams-labs/moodtune/internal/validator"
	"github.com/ewilliams-labs/moodtune/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Driven adapters
	// -- Catalog and recommendation engine
	loader := catalog.NewLoader(cfg.Catalog.Path, cfg.Catalog.FallbackPath, log)
	engine, err := recommender.NewEngine(ctx, loader, log)
	if err != nil {
		return err
	}
	metrics.CatalogSize.Set(float64(engine.Size()))

	if cfg.Catalog.Watch {
		watcher, err := recommender.NewWatcher(engine, cfg.Catalog.Path, log)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
	}

	// -- External catalog
	spotifyClient := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		BaseURL:      cfg.Spotify.BaseURL,
		TokenURL:     cfg.Spotify.TokenURL,
	}, log)

	// -- Parameter inference
	inferenceClient := gigachat.NewClient(gigachat.Config{
		APIKey:        cfg.GigaChat.APIKey,
		BaseURL:       cfg.GigaChat.BaseURL,
		Model:         cfg.GigaChat.Model,
		Retries:       cfg.GigaChat.Retries,
		RetryDelay:    cfg.GigaChat.RetryDelay,
		Timeout:       cfg.GigaChat.Timeout,
		MaxConcurrent: int64(cfg.GigaChat.MaxConcurrent),
	}, log)

	// -- Metrics sink
	var sink ports.MetricsSink
	switch cfg.Metrics.Driver {
	case "sqlite":
		sqliteSink, err := metrics.NewSQLiteSink(cfg.Metrics.Path)
		if err != nil {
			return err
		}
		defer sqliteSink.Close()
		sink = sqliteSink
	default:
		sink = metrics.NewCSVSink(cfg.Metrics.Path)
	}

	pool := worker.NewPool(sink, cfg.Metrics.QueueSize, log)
	pool.Start(cfg.Metrics.Workers)
	defer pool.Stop()

	// 3. Core pipeline
	// The audio prevalidator screens clips before the upstream analyzer;
	// deployments without a speech service still reject unusable audio.
	var upstream ports.AudioAnalyzer = audio.Unavailable{}
	if cfg.Audio.ServiceURL != "" {
		upstream = audio.NewRemoteAnalyzer(cfg.Audio.ServiceURL, cfg.Audio.Timeout, log)
	}
	analyzer := audio.NewPrevalidator(upstream, log)
	pipeline := services.NewPipeline(
		analyzer,
		inferenceClient,
		engine,
		spotifyClient,
		validator.New(spotifyClient, log),
		pool,
		services.Options{
			TopK:              cfg.Recommend.TopK,
			MaxExternalCalls:  cfg.Recommend.MaxExternalCalls,
			UseExternalSearch: cfg.Recommend.UseExternalSearch,
		},
		log,
	)

	// 4. Driving adapter
	handler := rest.NewHandler(pipeline, engine, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	log.Info("moodtune api listening", "addr", srv.Addr, "catalog_records", engine.Size())

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown error", "error", err)
		}
	}
	return nil
}
