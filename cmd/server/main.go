package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"simpletodos/config"
	"simpletodos/internal/cache"
	"simpletodos/internal/events"
	"simpletodos/internal/graph"
	"simpletodos/internal/handler"
	"simpletodos/internal/httpserver"
	"simpletodos/internal/repository"
	"simpletodos/internal/service/auth"
	"simpletodos/internal/service/task"
	"simpletodos/pkg/circuitbreaker"
	"simpletodos/pkg/db"
	"simpletodos/pkg/logger"
	"simpletodos/pkg/mq"
	"simpletodos/pkg/otel"
	"simpletodos/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is configured from cfg, so fall back to a default one here
		logger.NewLogger("info").Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting todo server...",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("port", cfg.Server.Port),
		zap.Bool("redis", cfg.Redis.Addr != ""),
		zap.Bool("mq", cfg.MQ.URL != ""),
	)

	shutdownTracing, err := otel.Init(cfg.Otel, log)
	if err != nil {
		log.Warn("Tracing unavailable, continuing without it", zap.Error(err))
		shutdownTracing = func() {}
	}
	defer shutdownTracing()

	// Storage
	var (
		taskStore task.TaskStore
		userStore auth.UserStore
		pinger    httpserver.Pinger
	)
	switch cfg.Storage.Driver {
	case "memory":
		mem := repository.NewMemoryStore()
		taskStore, userStore, pinger = mem, mem, mem
		log.Warn("Using in-memory storage; data is lost on restart")
	default:
		pool, err := db.NewConnection(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal("Failed to init DB", zap.Error(err))
		}
		defer pool.Close()
		log.Info("Database connection established successfully")

		taskRepo := repository.NewTaskRepository(pool, log)
		taskStore, userStore, pinger = taskRepo, repository.NewUserRepository(pool), taskRepo
	}

	// Redis
	var (
		counts  task.CountCache
		revoker auth.Revoker
	)
	rdb, err := redis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		counts = cache.NewIncompleteCounter(rdb, 30*time.Second)
		revoker = cache.NewTokenRevocations(rdb)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	// MQ
	var (
		publisher events.Publisher = events.NopPublisher{}
		mqHealth  httpserver.EventsHealth
	)
	if cfg.MQ.URL != "" {
		mqPub, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Warn("MQ unavailable, task events disabled", zap.Error(err))
		} else {
			defer mqPub.Close()
			breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig())
			publisher = events.NewMQPublisher(mqPub, breaker, log)
			mqHealth = mqPub
			log.Info("MQ publisher ready", zap.String("exchange", mq.ExchangeName))
		}
	}

	taskSvc := task.NewService(taskStore, userStore, counts, publisher, log)
	authSvc := auth.NewService(userStore, revoker, cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour, log)

	schema, err := graph.NewSchema(graph.NewResolver(taskSvc, authSvc, log))
	if err != nil {
		log.Fatal("Failed to parse GraphQL schema", zap.Error(err))
	}

	router := httpserver.NewRouter(
		handler.NewAuthHandler(authSvc, log),
		graph.NewHandler(schema, log),
		authSvc,
		pinger,
		mqHealth,
		log,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down todo server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("todo server shutdown complete")
}
