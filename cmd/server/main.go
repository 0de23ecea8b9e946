package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	nats "github.com/nats-io/nats.go"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/api"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/service"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/dashboard"
	mongodb "github.com/Falzz1010/umkm-ai-spark-sub001/internal/infrastructure/db/mongo"
	redisdb "github.com/Falzz1010/umkm-ai-spark-sub001/internal/infrastructure/db/redis"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/infrastructure/functions"
	natsfeed "github.com/Falzz1010/umkm-ai-spark-sub001/internal/infrastructure/nats"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/pkg/config"
	"github.com/Falzz1010/umkm-ai-spark-sub001/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer func() { _ = rdb.Close() }()

	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("nats connect failed")
	}
	defer nc.Drain()

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	profiles := mongodb.NewProfileRepository(db)
	products := mongodb.NewProductRepository(db)
	sales := mongodb.NewSaleRepository(db)

	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := products.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("product index creation failed")
	}

	// --- Feeds ---
	authFeed := natsfeed.NewAuthFeed(nc, cfg.NATS.Subject, log)

	changeFeed := redisdb.NewChangeFeed(rdb, log)
	if err := changeFeed.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("change feed start failed")
	}
	defer func() { _ = changeFeed.Close() }()
	changePublisher := redisdb.NewChangePublisher(rdb)

	// --- Services ---
	tokens := redisdb.NewTokenStore(rdb)
	backend := service.NewAuthService(users, profiles, tokens, authFeed, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log)
	productService := service.NewProductService(products, changePublisher, log)
	saleService := service.NewSaleService(sales, products, changePublisher, log)
	invoker := functions.NewInvoker(cfg.Functions.BaseURL, cfg.Functions.Timeout, log)
	insightService := service.NewInsightService(products, sales, invoker, log)
	adminService := service.NewAdminService(users, profiles, products, sales, log)

	// --- Dashboard hub ---
	hub := dashboard.NewHub(backend, authFeed, changeFeed, products, cfg.SessionSettleDelay, log)
	if err := hub.Start(); err != nil {
		log.Fatal().Err(err).Msg("dashboard hub start failed")
	}
	defer hub.Close()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Backend:   backend,
		Products:  productService,
		Sales:     saleService,
		Insights:  insightService,
		Admin:     adminService,
		Hub:       hub,
		Mongo:     db,
		Redis:     rdb,
		NATS:      nc,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(":" + cfg.Port)
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			os.Exit(1)
		}
	}
}
