package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"

	"github.com/daon-clinic/clinic-sync/internal/api"
	"github.com/daon-clinic/clinic-sync/internal/common/config"
	"github.com/daon-clinic/clinic-sync/internal/repository"
)

const clinicTimezone = "Asia/Seoul"

func main() {
	port := flag.Int("port", 8080, "HTTPサーバーのポート")
	flag.Parse()

	// 設定の読み込み(HTTPサーバーではタスクトークンは使わない)
	cfg, err := config.LoadConfig(context.Background(), "")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	location, err := time.LoadLocation(clinicTimezone)
	if err != nil {
		logger.Fatal("failed to load clinic timezone", zap.Error(err))
	}

	store := repository.NewNotionClient(cfg.Notion.Token, cfg.EnableTracing)
	var handler http.Handler = api.NewRouter(api.NewHandler(cfg, store, location, logger))

	// トレーシング有効時はリクエストごとにルートセグメントを開く
	// サービス層のサブセグメントはこのセグメントにぶら下がる
	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{DaemonAddr: "127.0.0.1:2000", ServiceVersion: "1.0.0"}); err != nil {
			logger.Warn("failed to configure X-Ray, falling back to defaults", zap.Error(err))
		}
		os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
		handler = xray.Handler(xray.NewFixedSegmentNamer("clinic-sync"), handler)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: handler,
	}

	logger.Info("starting clinic-sync server",
		zap.Int("port", *port),
		zap.Bool("sync_enabled", cfg.SyncEnabled()),
	)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 優雅なシャットダウン
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
