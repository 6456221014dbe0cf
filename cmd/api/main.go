package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"million-ears/internal/auth"
	"million-ears/internal/calls"
	"million-ears/internal/chat"
	"million-ears/internal/config"
	"million-ears/internal/httpapi"
	"million-ears/internal/memories"
	"million-ears/internal/rag"
	"million-ears/internal/vapi"
	"million-ears/pkg/logger"
	"million-ears/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Domain services
	callsService := calls.NewService(calls.NewPostgresRepo(db), vapi.NewClient(cfg.Vapi))
	memoriesService := memories.NewService(memories.NewPostgresRepo(db))
	chatService := chat.NewService(chat.NewPostgresRepo(db), chat.NewHTTPAssistant(cfg.Rag))

	// Transcript ingestion pipeline: webhook enqueues, worker indexes.
	ingestQueue := rag.NewQueue(rdb)
	ingestWorker := rag.NewWorker(ingestQueue, rag.NewClient(cfg.Rag), log)
	go ingestWorker.Run(rootCtx)

	webhook := vapi.WebhookHandler{
		Calls:  callsService,
		Ingest: ingestQueue,
		Lock:   vapi.NewReconcileLock(rdb),
	}

	h := httpapi.Handlers{
		Auth:     authManager,
		Calls:    callsService,
		Memories: memoriesService,
		Chat:     chatService,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, webhook, cfg.Vapi.WebhookSecret, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
