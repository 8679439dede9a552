package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"

	"github.com/daon-clinic/clinic-sync/internal/common/config"
	"github.com/daon-clinic/clinic-sync/internal/repository"
	"github.com/daon-clinic/clinic-sync/internal/table"
)

// SyncResult は1回の同期実行の結果サマリです
// Errorsが空であれば全行が作成に成功しています
type SyncResult struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Errors    []string `json:"errors"`
}

// SyncService はレコードストアへの同期バッチ処理を担当します
type SyncService struct {
	store     repository.RecordStore
	sfnClient *sfn.Client
	cfg       *config.Config
	logger    *zap.Logger
}

// NewSyncService は新しいSyncServiceを作成します
func NewSyncService(cfg *config.Config, store repository.RecordStore, sfnClient *sfn.Client, logger *zap.Logger) *SyncService {
	return &SyncService{
		store:     store,
		sfnClient: sfnClient,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run はテーブルの全行をレコードストアへ同期します
//
// スキーマ解決は実行につき1回だけ行い、失敗した場合は行を1件も送らずに
// 致命的エラーとして返します。行単位のHTTPエラーは"Row {n}: {message}"の形式で
// 収集し、後続行の処理は継続します。
func (s *SyncService) Run(ctx context.Context, t *table.Table) (result *SyncResult, err error) {
	// 親セグメントがないコンテキストではsegはnilになる
	// Closeはnilレシーバ安全なのでdeferで1回だけ閉じる
	ctx, seg := xray.BeginSubsegment(ctx, "SyncService.Run")
	defer func() { seg.Close(err) }()

	if !s.cfg.SyncEnabled() {
		return nil, fmt.Errorf("notion credentials are not configured, sync is disabled")
	}

	startTime := time.Now()

	schema, err := s.store.FetchSchema(ctx, s.cfg.Notion.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database schema: %w", err)
	}

	titleProperty, ok := schema.TitleProperty()
	if !ok {
		// タイトル型フィールドがないデータベースでも残りのフィールドだけで同期を続ける
		s.logger.Warn("database schema has no title property",
			zap.String("database_id", s.cfg.Notion.DatabaseID))
	}

	result = &SyncResult{Total: t.Len(), Errors: []string{}}
	for i := 0; i < t.Len(); i++ {
		properties := repository.BuildPageProperties(t, i, schema, titleProperty)
		if err := s.store.CreatePage(ctx, s.cfg.Notion.DatabaseID, properties); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", i+1, rowErrorMessage(err)))
			continue
		}
		result.Succeeded++
	}

	duration := time.Since(startTime)
	if seg != nil {
		if err := seg.AddMetadata("total_rows", result.Total); err != nil {
			s.logger.Warn("failed to add total_rows metadata", zap.Error(err))
		}
		if err := seg.AddMetadata("duration", duration.String()); err != nil {
			s.logger.Warn("failed to add duration metadata", zap.Error(err))
		}
	}

	s.logger.Info("sync batch completed",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", len(result.Errors)),
		zap.Duration("duration", duration),
	)

	if err := s.sendTaskSuccess(ctx, result); err != nil {
		return result, fmt.Errorf("failed to send task success: %w", err)
	}

	return result, nil
}

// rowErrorMessage は行単位エラーの表示用メッセージを取り出します
// ストアのHTTPエラーはレスポンス本文をそのまま使います
func rowErrorMessage(err error) string {
	var storeErr *repository.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Message
	}
	return err.Error()
}

// sendTaskSuccess は、Step Functionsのタスク成功を通知し、同期サマリを返却します
func (s *SyncService) sendTaskSuccess(ctx context.Context, result *SyncResult) error {
	// ローカルの場合はStep Functionsの処理をスキップ
	if os.Getenv("ENV") == "LOCAL" || s.sfnClient == nil {
		s.logger.Info("skipping Step Functions task success notification")
		return nil
	}

	taskToken := s.cfg.SFN.TaskToken
	if taskToken == "" {
		return fmt.Errorf("SFN task token is not set in config")
	}

	output, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal sync result: %w", err)
	}

	input := &sfn.SendTaskSuccessInput{
		TaskToken: aws.String(taskToken),
		Output:    aws.String(string(output)),
	}
	if _, err := s.sfnClient.SendTaskSuccess(ctx, input); err != nil {
		return fmt.Errorf("failed to send task success: %w", err)
	}

	s.logger.Info("sent task success", zap.ByteString("output", output))
	return nil
}
