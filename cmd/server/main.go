package main

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baadal-bistro/api/internal/config"
	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/logger"
	"github.com/baadal-bistro/api/internal/router"
	"github.com/baadal-bistro/api/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.L.WithError(err).Fatal("connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.L.WithError(err).Fatal("ping database")
	}
	logger.L.Info("connected to database")

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, queries, pool, hub)

	logger.L.WithField("port", cfg.Port).Info("starting server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.L.WithError(err).Fatal("server stopped")
	}
}
