package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"easel/internal/board/broadcast"
	boardhandler "easel/internal/board/handler"
	boardmetrics "easel/internal/board/metrics"
	"easel/internal/board/service"
	boardstore "easel/internal/board/store/board"
	canvasstore "easel/internal/board/store/canvas"
	jwttoken "easel/internal/jwt_token"
	"easel/internal/platform/config"
	"easel/internal/platform/httpserver"
	"easel/internal/platform/logger"
	"easel/internal/platform/middleware"
	"easel/internal/platform/postgres"
	platformredis "easel/internal/platform/redis"
	"easel/internal/transport/ws"
	"easel/pkg/platform/audit"
	"easel/pkg/platform/audit/publisher"
	auditkafka "easel/pkg/platform/audit/store/kafka"
	auditmem "easel/pkg/platform/audit/store/memory"
	auditpg "easel/pkg/platform/audit/store/postgres"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}

	var directory service.DirectoryStore
	var canvas service.CanvasStore
	if db != nil {
		defer db.Close()
		directoryPG := boardstore.NewPostgres(db)
		canvasPG := canvasstore.NewPostgres(db)
		if err := directoryPG.EnsureSchema(ctx); err != nil {
			log.Error("board schema setup failed", "error", err)
			os.Exit(1)
		}
		if err := canvasPG.EnsureSchema(ctx); err != nil {
			log.Error("canvas schema setup failed", "error", err)
			os.Exit(1)
		}
		directory, canvas = directoryPG, canvasPG
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		directory, canvas = boardstore.NewInMemory(), canvasstore.NewInMemory()
	}

	var broadcaster broadcast.Broadcaster
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		broadcaster = broadcast.NewRedis(redisClient.Client, log)
	} else {
		log.Warn("no redis configured, broadcasts stay in-process")
		broadcaster = broadcast.NewInMemory()
	}

	var auditStore audit.Store
	switch {
	case len(cfg.KafkaBrokers) > 0:
		kafkaStore, err := auditkafka.New(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	case db != nil:
		pgStore := auditpg.New(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Error("audit schema setup failed", "error", err)
			os.Exit(1)
		}
		auditStore = pgStore
	default:
		log.Warn("no kafka or postgres configured, audit trail stays in-memory")
		auditStore = auditmem.NewInMemoryStore()
	}
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(256),
	)
	defer auditPublisher.Close()

	boards := service.New(directory, canvas, broadcaster,
		service.WithLogger(log),
		service.WithMetrics(boardmetrics.New()),
		service.WithAuditPublisher(auditPublisher),
		service.WithBoardExpiry(cfg.BoardExpiry),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "easel", "easel")
	validator := jwttoken.NewCallerAdapter(jwtService)

	router := newRouter(boards, broadcaster, log, validator)

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting easel", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := boards.RunJanitor(groupCtx, cfg.JanitorInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("easel stopped")
}

// newRouter assembles the full HTTP surface: operational endpoints, the
// websocket channel, and the board REST API on one router.
func newRouter(boards *service.Service, broadcaster broadcast.Broadcaster, log *slog.Logger, validator middleware.TokenValidator) chi.Router {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ws.New(boards, broadcaster, log, validator).Register(router)
	boardhandler.New(boards, log, validator).Register(router)
	return router
}
