package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/coachboard-dev/coachboard/internal/advisor"
	appcfg "github.com/coachboard-dev/coachboard/internal/config"
	"github.com/coachboard-dev/coachboard/internal/msgcat"
	"github.com/coachboard-dev/coachboard/internal/obslog"
	"github.com/coachboard-dev/coachboard/internal/render"
	"github.com/coachboard-dev/coachboard/internal/session"
	"github.com/coachboard-dev/coachboard/internal/uiserver"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	catalog, err := msgcat.New(cfg.MessageOverrideDir)
	if err != nil {
		logger.Fatal("message catalog init failed", zap.Error(err))
	}

	var store session.Store
	var redisStore *session.RedisStore
	if cfg.RedisURL != "" {
		redisStore, err = session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis store init failed", zap.Error(err))
		}
		store = redisStore
		logger.Info("session_store", zap.String("kind", "redis"))
	} else {
		store = session.NewMemoryStore()
		logger.Info("session_store", zap.String("kind", "memory"))
	}

	coach := advisor.NewClient(cfg.CoachBaseURL, cfg.CoachAPIKey,
		advisor.WithModel(cfg.CoachModel),
		advisor.WithTimeout(time.Duration(cfg.AdvisorTimeout)*time.Second),
	)

	mgr, err := session.NewManager(store, coach, catalog,
		time.Duration(cfg.SessionTTLSec)*time.Second)
	if err != nil {
		logger.Fatal("session manager init failed", zap.Error(err))
	}

	srv := uiserver.New(cfg.ListenAddr, mgr, render.NewRenderer(), cfg.MutedByDefault)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
	if redisStore != nil {
		_ = redisStore.Close()
	}
	logger.Info("shutdown_complete")
}
