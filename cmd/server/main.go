package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arlen/cardbox/internal/ai"
	"github.com/arlen/cardbox/internal/api"
	"github.com/arlen/cardbox/internal/config"
	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/grader"
	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/review"
	"github.com/arlen/cardbox/internal/services"
	"github.com/arlen/cardbox/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Cardbox Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("openai_model=%s", cfg.OpenAIModel)
	log.Debug("ai_timeout=%s", cfg.AITimeout)
	log.Debug("generate_worker_count=%d", cfg.GenerateWorkerCount)
	log.Debug("generate_queue_size=%d", cfg.GenerateQueueSize)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// AI grading and generation run only when a key is configured. The
	// grader falls back to lexical matching without one.
	var aiClient *ai.Client
	if cfg.OpenAIAPIKey != "" {
		aiClient = ai.New(ai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.AITimeout,
		})
		log.Info("AI grading enabled (model=%s)", cfg.OpenAIModel)
	} else {
		log.Info("no OpenAI API key set, AI grading disabled")
	}

	generatePool := worker.NewPool(cfg.GenerateWorkerCount, cfg.GenerateQueueSize)

	queue := review.NewQueue(database)
	var scorer *grader.Scorer
	if aiClient != nil {
		scorer = grader.NewScorer(aiClient)
	} else {
		scorer = grader.NewScorer(nil)
	}

	var extractor worker.CardExtractor
	if aiClient != nil {
		extractor = aiClient
	}

	srv := &api.Server{
		DB:              database,
		LearnerService:  services.NewLearnerService(database),
		CardService:     services.NewCardService(database),
		ReviewService:   services.NewReviewService(database, queue, scorer),
		GenerateService: services.NewGenerateService(database, extractor, generatePool),
	}

	ctx, cancel := context.WithCancel(context.Background())
	generatePool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping worker pool")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	generatePool.Stop()

	log.Info("===========================================")
	log.Info("Cardbox Server Stopped")
	log.Info("===========================================")
}
