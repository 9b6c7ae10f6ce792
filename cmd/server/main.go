package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enrollsvc/internal/audit"
	"enrollsvc/internal/enrollment/handler"
	"enrollsvc/internal/enrollment/service"
	"enrollsvc/internal/enrollment/store"
	"enrollsvc/internal/identity"
	"enrollsvc/internal/peers"
	"enrollsvc/internal/platform/config"
	"enrollsvc/internal/platform/httpserver"
	"enrollsvc/internal/platform/logger"
	"enrollsvc/internal/platform/metrics"
	platformmongo "enrollsvc/internal/platform/mongo"
	"enrollsvc/internal/platform/ratelimit"
	platformredis "enrollsvc/internal/platform/redis"
	httptransport "enrollsvc/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := platformmongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	enrollments := store.NewMongo(mongoClient, cfg.MongoDatabase)
	if err := enrollments.EnsureIndexes(ctx); err != nil {
		log.Error("mongo index creation failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		// The cache is an optimization; boot without it.
		log.Warn("redis unavailable, peer validation cache disabled", "error", err)
		redisClient = nil
	}

	m := metrics.New()

	validators := peers.New(peers.Config{
		StudentServiceURL: cfg.StudentServiceURL,
		CourseServiceURL:  cfg.CourseServiceURL,
		GradeServiceURL:   cfg.GradeServiceURL,
		CallTimeout:       cfg.CallTimeout,
		AllowMockFallback: cfg.AllowMockFallback,
	}, peers.NewCache(redisClient), log, m)

	var sink *audit.KafkaSink
	if cfg.KafkaBrokers != "" {
		sink, err = audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka producer setup failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			sink.Close(closeCtx)
		}()
	}
	publisher := audit.NewPublisher(audit.NewInMemoryStore(), sink, log)

	var tokenValidator identity.TokenValidator
	if cfg.AuthBypass {
		log.Warn("auth bypass enabled, all requests act as the development student")
		tokenValidator = identity.NewBypassValidator(identity.Actor{})
	} else {
		tokenValidator = identity.NewRemoteValidator(cfg.AuthServiceURL, cfg.CallTimeout, log)
	}

	svc := service.New(enrollments, validators, publisher, log, m)
	checkLimiter := ratelimit.NewLimiter(120, time.Minute)
	enrollmentHandler := handler.New(svc, log, m, tokenValidator, checkLimiter)
	router := httptransport.NewRouter(log, m, enrollmentHandler)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting enrollment service", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
