package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"

	"github.com/daon-clinic/clinic-sync/internal/table"
	"github.com/daon-clinic/clinic-sync/internal/transform"
)

// UploadService はアップロードされた予約表の取り込みから同期までを担当します
type UploadService struct {
	sync     *SyncService
	location *time.Location
	logger   *zap.Logger
}

// NewUploadService は新しいUploadServiceを作成します
// locationは予約日時の日付部分を決める実行日のタイムゾーンです
func NewUploadService(sync *SyncService, location *time.Location, logger *zap.Logger) *UploadService {
	return &UploadService{
		sync:     sync,
		location: location,
		logger:   logger,
	}
}

// Run はCSV入力を読み込み、指定種別のレコードセットへ変換して同期します
func (s *UploadService) Run(ctx context.Context, r io.Reader, kind transform.Kind) (result *SyncResult, err error) {
	ctx, seg := xray.BeginSubsegment(ctx, "UploadService.Run")
	defer func() { seg.Close(err) }()

	raw, err := table.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded table: %w", err)
	}

	s.logger.Info("uploaded table parsed",
		zap.Int("rows", raw.Len()),
		zap.Int("columns", len(raw.Columns)),
		zap.String("kind", string(kind)),
	)

	recordSet, err := transform.BuildRecordSet(raw, kind, time.Now().In(s.location), s.logger)
	if err != nil {
		return nil, err
	}

	return s.sync.Run(ctx, recordSet)
}
