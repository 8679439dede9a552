package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"runtime/debug"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"

	"github.com/daon-clinic/clinic-sync/internal/common/config"
	"github.com/daon-clinic/clinic-sync/internal/common/utils"
	"github.com/daon-clinic/clinic-sync/internal/repository"
	"github.com/daon-clinic/clinic-sync/internal/service/batch"
	"github.com/daon-clinic/clinic-sync/internal/transform"
)

const projectName = "clinic-sync"

// 予約日時の日付部分は院のあるソウルの当日を使う
const clinicTimezone = "Asia/Seoul"

func main() {
	file := flag.String("file", "", "アップロードされた予約表CSVのパス")
	kind := flag.String("kind", string(transform.KindReservations), "同期するレコードセット (reservations|events|customers)")
	timeout := flag.Duration("timeout", 5*time.Minute, "バッチ処理のタイムアウト時間")
	flag.Parse()

	// 最後の引数として渡されたタスクトークンを取得
	// ENV=LOCALの場合はタスクトークンを取得しない
	taskToken := "DUMMY_TASK_TOKEN"
	if os.Getenv("ENV") != "LOCAL" {
		taskToken = flag.Arg(len(flag.Args()) - 1)
		if taskToken == "" {
			log.Fatalf("Task token is required")
		}
	}

	recordKind, err := transform.ParseKind(*kind)
	if err != nil {
		log.Fatalf("Invalid record set kind: %v", err)
	}
	if *file == "" {
		log.Fatalf("-file is required")
	}

	// 設定の読み込み
	cfg, err := config.LoadConfig(context.Background(), taskToken)
	if err != nil {
		log.Fatalf("Failed to load config: %v\nStack trace:\n%s", err, debug.Stack())
	}
	if !cfg.SyncEnabled() {
		log.Fatalf("Notion credentials are not configured, nothing to sync")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// X-Ray設定
	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{
			DaemonAddr:     "127.0.0.1:2000", // X-Rayデーモンのアドレス
			ServiceVersion: "1.0.0",
		}); err != nil {
			logger.Warn("failed to configure X-Ray, falling back to defaults", zap.Error(err))
			if configErr := xray.Configure(xray.Config{}); configErr != nil {
				logger.Fatal("failed to configure default X-Ray settings", zap.Error(configErr))
			}
		}
		os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	}

	// Step Functionsクライアントの初期化
	var sfnClient *sfn.Client
	if os.Getenv("ENV") != "LOCAL" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			logger.Fatal("failed to load AWS config", zap.Error(err))
		}
		sfnClient = sfn.NewFromConfig(awsCfg)
	}

	location, err := time.LoadLocation(clinicTimezone)
	if err != nil {
		logger.Fatal("failed to load clinic timezone", zap.Error(err))
	}

	// サービスの初期化
	store := repository.NewNotionClient(cfg.Notion.Token, cfg.EnableTracing)
	syncService := batch.NewSyncService(cfg, store, sfnClient, logger)
	uploadService := batch.NewUploadService(syncService, location, logger)

	inputFile, err := os.Open(*file)
	if err != nil {
		logger.Fatal("failed to open input file", zap.String("file", *file), zap.Error(err))
	}
	defer inputFile.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// X-Rayセグメントの作成
	if cfg.EnableTracing {
		var seg *xray.Segment
		ctx, seg = xray.BeginSegment(ctx, projectName)
		defer seg.Close(nil)

		if err := seg.AddMetadata("kind", string(recordKind)); err != nil {
			logger.Warn("failed to add kind metadata", zap.Error(err))
		}
		if err := seg.AddMetadata("timeout", timeout.String()); err != nil {
			logger.Warn("failed to add timeout metadata", zap.Error(err))
		}
	}

	// シグナルハンドリングの設定
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// バッチ処理の実行
	var result *batch.SyncResult
	errChan := make(chan error, 1)
	go func() {
		errChan <- utils.RunWithTimeout(ctx, *timeout, func(ctx context.Context) error {
			var runErr error
			result, runErr = uploadService.Run(ctx, inputFile, recordKind)
			return utils.GetStackWithError(runErr)
		})
	}()

	// シグナルまたはエラーの待機
	select {
	case sig := <-sigChan:
		logger.Info("received signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("batch process failed", zap.Error(err))

			// ローカル環境以外の場合のみStep Functionsのエラー通知を行う
			if os.Getenv("ENV") != "LOCAL" && sfnClient != nil {
				input := &sfn.SendTaskFailureInput{
					TaskToken: aws.String(taskToken),
					Error:     aws.String("Sync batch process failed"),
				}
				if _, err := sfnClient.SendTaskFailure(ctx, input); err != nil {
					logger.Error("failed to send task failure", zap.Error(err))
				}
			}

			os.Exit(1)
		}

		logger.Info("batch process completed",
			zap.Int("total", result.Total),
			zap.Int("succeeded", result.Succeeded),
			zap.Int("failed", len(result.Errors)),
		)
		for _, rowErr := range result.Errors {
			fmt.Fprintln(os.Stderr, rowErr)
		}
	}
}
