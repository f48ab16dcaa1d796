package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/literaryvoice/literary-voice/internal/api"
	"github.com/literaryvoice/literary-voice/internal/infrastructure/config"
	mongostore "github.com/literaryvoice/literary-voice/internal/infrastructure/db/mongo"
	redisstore "github.com/literaryvoice/literary-voice/internal/infrastructure/db/redis"
	"github.com/literaryvoice/literary-voice/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Literary Voice API
// @version         1.0
// @description     Credit-accounting authentication service for the Literary Voice CLI.
//
// @securityDefinitions.apikey ApiKeyAuth
// @in   header
// @name X-API-Key
func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()

	if err := mongostore.NewAccountRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("account indexes")
	}
	if err := mongostore.NewTransactionRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("transaction indexes")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	e := api.NewRouter(db, rdb, api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		AdminKey:  cfg.AdminKey,
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
