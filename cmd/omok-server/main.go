package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/omok-arena/internal/arena"
	"github.com/park285/omok-arena/internal/chat"
	appcfg "github.com/park285/omok-arena/internal/config"
	"github.com/park285/omok-arena/internal/httpapi"
	"github.com/park285/omok-arena/internal/msgcat"
	"github.com/park285/omok-arena/internal/obslog"
	"github.com/park285/omok-arena/internal/render"
	"github.com/park285/omok-arena/internal/room"
	"github.com/park285/omok-arena/internal/stats"
	"github.com/park285/omok-arena/internal/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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

	catalog, err := msgcat.New(cfg.MsgTemplateDir)
	if err != nil {
		logger.Fatal("msgcat_init_failed", zap.Error(err))
	}

	// DATABASE_URL 미설정이면 메모리 저장소로 동작 (개발용).
	var repo stats.Repository
	if cfg.DatabaseURL != "" {
		repo, err = stats.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("stats_repo_init_failed", zap.Error(err))
		}
	} else {
		logger.Warn("stats_repo_memory_fallback")
		repo = stats.NewMemoryRepository()
	}

	var chatStore *chat.Store
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis_url_invalid", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("redis_ping_failed", zap.Error(err))
		}
		chatStore = chat.NewStore(rdb)
	} else {
		logger.Warn("chat_store_disabled")
	}

	rooms := room.NewManager(time.Duration(cfg.TurnTimeoutSec) * time.Second)
	tracker := room.NewReconnectTracker(time.Duration(cfg.ReconnectGraceSec) * time.Second)

	ws := transport.NewServer()
	svc := arena.New(rooms, tracker, repo, chatStore, catalog, ws)
	ws.Attach(svc)

	var renderer *render.BoardRenderer
	if cfg.BoardImageEnabled {
		renderer = render.NewBoardRenderer()
	}
	api := httpapi.NewServer(rooms, repo, renderer)

	wsSrv := &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           ws,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("ws_listen", zap.String("addr", cfg.WSAddr))
		if err := wsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ws_serve_failed", zap.Error(err))
		}
	}()
	go func() {
		if err := api.ListenAndServe(cfg.HTTPAddr); err != nil {
			logger.Fatal("http_serve_failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown_start")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGraceSec)*time.Second)
	defer cancel()
	_ = wsSrv.Shutdown(shutdownCtx)
	ws.CloseAll()
	_ = api.Shutdown()
	_ = repo.Close()
	logger.Info("shutdown_done")
}
