// Command api serves the study REST API.
//
// @title                       Study API
// @version                     1.0
// @description                 Vocabulary-learning experiments: authoring, story and narration generation, participant sessions.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wordlab/study-api/internal/api"
	"github.com/wordlab/study-api/internal/api/handler"
	"github.com/wordlab/study-api/internal/core/service"
	"github.com/wordlab/study-api/internal/infrastructure/blob"
	"github.com/wordlab/study-api/internal/infrastructure/content"
	mongostore "github.com/wordlab/study-api/internal/infrastructure/db/mongo"
	redisstore "github.com/wordlab/study-api/internal/infrastructure/db/redis"
	"github.com/wordlab/study-api/internal/pkg/config"
	"github.com/wordlab/study-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "study-api"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "study-api",
	})

	// --- Stores ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	store, err := blob.Open(ctx, blob.Config{
		Driver:    cfg.Blob.Driver,
		Dir:       cfg.Blob.Dir,
		PublicURL: cfg.Blob.PublicURL,
		S3: blob.S3Config{
			Bucket:    cfg.Blob.S3Bucket,
			Region:    cfg.Blob.S3Region,
			Endpoint:  cfg.Blob.S3Endpoint,
			PathStyle: cfg.Blob.S3PathStyle,
		},
	})
	if err != nil {
		return err
	}

	// --- Content providers, chosen once ---
	providers, err := content.NewProviders(content.OpenAIConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		StoryModel:  cfg.OpenAI.StoryModel,
		SpeechModel: cfg.OpenAI.SpeechModel,
		Voice:       cfg.OpenAI.Voice,
	}, store, logger.Component("content"))
	if err != nil {
		return err
	}

	// --- Services ---
	experimentRepo := mongostore.NewExperimentRepository(db)
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	experiments := service.NewExperimentService(experimentRepo, logger.Component("experiments"))

	deps := api.Dependencies{
		Auth:        service.NewAuthService(mongostore.NewAuthRepository(db), tokens, logger.Component("auth")),
		Tokens:      tokens,
		Experiments: experiments,
		Content:     service.NewContentService(experimentRepo, providers.Story, providers.Audio, cfg.Content.Language, logger.Component("content")),
		Sessions:    service.NewSessionService(redisstore.NewSessionStore(rdb, cfg.Redis.SessionTTL), experiments, logger.Component("sessions")),
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Logger: log,
	}
	switch s := store.(type) {
	case *blob.LocalStore:
		deps.AudioDir, deps.AudioPath = s.Root(), cfg.Blob.PublicURL
	case *blob.S3Store:
		deps.Checks["s3"] = s.Ping
	}

	e := api.NewRouter(deps)

	// --- Serve until signalled ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("content_vendor", providers.Vendor).Msg("api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
