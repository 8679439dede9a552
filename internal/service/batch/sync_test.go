package batch

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"

	"github.com/daon-clinic/clinic-sync/internal/common/config"
	"github.com/daon-clinic/clinic-sync/internal/repository"
	"github.com/daon-clinic/clinic-sync/internal/table"
)

// MockRecordStore はテスト用のモックレコードストアです
type MockRecordStore struct {
	schema      repository.Schema
	schemaErr   error
	failOnCall  map[int]error // 何回目のCreatePageを失敗させるか(1始まり)
	createCalls int
	created     []map[string]any
}

func (m *MockRecordStore) FetchSchema(ctx context.Context, databaseID string) (repository.Schema, error) {
	if m.schemaErr != nil {
		return nil, m.schemaErr
	}
	return m.schema, nil
}

func (m *MockRecordStore) CreatePage(ctx context.Context, databaseID string, properties map[string]any) error {
	m.createCalls++
	if err, ok := m.failOnCall[m.createCalls]; ok {
		return err
	}
	m.created = append(m.created, properties)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Notion.Token = "test-token"
	cfg.Notion.DatabaseID = "db-123"
	return cfg
}

func testTable(rows int) *table.Table {
	t := table.New([]string{"고객명", "차트번호"})
	for i := 0; i < rows; i++ {
		_ = t.Append([]any{fmt.Sprintf("고객%d", i+1), 100 + i})
	}
	return t
}

func TestSyncService_Run(t *testing.T) {
	// X-Rayのセグメントを設定
	ctx, seg := xray.BeginSegment(context.Background(), "TestSyncService_Run")
	defer seg.Close(nil)

	store := &MockRecordStore{
		schema: repository.Schema{"고객명": repository.PropertyTitle, "차트번호": repository.PropertyNumber},
	}
	service := NewSyncService(testConfig(), store, nil, zap.NewNop())

	result, err := service.Run(ctx, testTable(3))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Total != 3 || result.Succeeded != 3 {
		t.Errorf("result = %+v, want 3 total / 3 succeeded", result)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want empty", result.Errors)
	}
	if len(store.created) != 3 {
		t.Errorf("created pages = %d, want 3", len(store.created))
	}
}

func TestSyncService_Run_CollectsRowErrors(t *testing.T) {
	ctx, seg := xray.BeginSegment(context.Background(), "TestSyncService_Run_CollectsRowErrors")
	defer seg.Close(nil)

	// 5行中3行目だけHTTP 400で失敗する
	store := &MockRecordStore{
		schema: repository.Schema{"고객명": repository.PropertyTitle},
		failOnCall: map[int]error{
			3: &repository.StoreError{StatusCode: 400, Message: "validation error"},
		},
	}
	service := NewSyncService(testConfig(), store, nil, zap.NewNop())

	result, err := service.Run(ctx, testTable(5))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Succeeded != 4 {
		t.Errorf("Succeeded = %d, want 4", result.Succeeded)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(result.Errors))
	}
	if !strings.HasPrefix(result.Errors[0], "Row 3: ") {
		t.Errorf("Errors[0] = %q, want prefix \"Row 3: \"", result.Errors[0])
	}
	if !strings.Contains(result.Errors[0], "validation error") {
		t.Errorf("Errors[0] = %q, want remote error text", result.Errors[0])
	}
	// 1行の失敗が後続行を止めない
	if store.createCalls != 5 {
		t.Errorf("createCalls = %d, want 5", store.createCalls)
	}
}

func TestSyncService_Run_WithoutParentSegment(t *testing.T) {
	// 親セグメントのないコンテキストでもパニックせずに完走する
	store := &MockRecordStore{
		schema: repository.Schema{"고객명": repository.PropertyTitle},
	}
	service := NewSyncService(testConfig(), store, nil, zap.NewNop())

	result, err := service.Run(context.Background(), testTable(2))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", result.Succeeded)
	}
}

func TestSyncService_Run_ErrorKeepsParentSegmentUsable(t *testing.T) {
	// エラー実行後も同じ親セグメントの下で後続の実行とクローズができる
	ctx, seg := xray.BeginSegment(context.Background(), "TestSyncService_Run_ErrorKeepsParentSegmentUsable")

	store := &MockRecordStore{
		schemaErr: &repository.StoreError{StatusCode: 500, Message: "server error"},
	}
	service := NewSyncService(testConfig(), store, nil, zap.NewNop())
	if _, err := service.Run(ctx, testTable(1)); err == nil {
		t.Fatal("Run() should fail when schema resolution fails")
	}

	store.schemaErr = nil
	store.schema = repository.Schema{"고객명": repository.PropertyTitle}
	result, err := service.Run(ctx, testTable(1))
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", result.Succeeded)
	}

	seg.Close(nil)
	if seg.InProgress {
		t.Error("parent segment should be closed")
	}
}

func TestSyncService_Run_SchemaFetchFailureIsFatal(t *testing.T) {
	ctx, seg := xray.BeginSegment(context.Background(), "TestSyncService_Run_SchemaFetchFailureIsFatal")
	defer seg.Close(nil)

	store := &MockRecordStore{
		schemaErr: &repository.StoreError{StatusCode: 401, Message: "API token is invalid"},
	}
	service := NewSyncService(testConfig(), store, nil, zap.NewNop())

	if _, err := service.Run(ctx, testTable(2)); err == nil {
		t.Fatal("Run() should fail when schema resolution fails")
	}
	// 致命的エラーの場合は1行も送信されない
	if store.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0", store.createCalls)
	}
}

func TestSyncService_Run_DisabledWithoutCredentials(t *testing.T) {
	ctx, seg := xray.BeginSegment(context.Background(), "TestSyncService_Run_DisabledWithoutCredentials")
	defer seg.Close(nil)

	service := NewSyncService(&config.Config{}, &MockRecordStore{}, nil, zap.NewNop())
	if _, err := service.Run(ctx, testTable(1)); err == nil {
		t.Fatal("Run() should fail when credentials are not configured")
	}
}

func TestSyncService_Run_NoTitleProperty(t *testing.T) {
	ctx, seg := xray.BeginSegment(context.Background(), "TestSyncService_Run_NoTitleProperty")
	defer seg.Close(nil)

	store := &MockRecordStore{
		schema: repository.Schema{"차트번호": repository.PropertyNumber},
	}
	service := NewSyncService(testConfig(), store, nil, zap.NewNop())

	result, err := service.Run(ctx, testTable(1))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", result.Succeeded)
	}
}
