package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
)

const (
	defaultBaseURL = "https://api.notion.com"
	notionVersion  = "2022-06-28"
	// リモートストアへの1回の呼び出しに適用する固定タイムアウト
	requestTimeout = 30 * time.Second
)

// RecordStore はリモートのページ型レコードストアへのアクセスを表します
type RecordStore interface {
	FetchSchema(ctx context.Context, databaseID string) (Schema, error)
	CreatePage(ctx context.Context, databaseID string, properties map[string]any) error
}

// StoreError はレコードストアがHTTPエラーを返したことを表します
type StoreError struct {
	StatusCode int
	Message    string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store returned status %d: %s", e.StatusCode, e.Message)
}

// NotionClient はNotion APIをレコードストアとして利用するクライアントです
type NotionClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewNotionClient は新しいNotionClientを作成します
// tracingが有効な場合はX-Ray計装済みのHTTPクライアントを使います
func NewNotionClient(token string, tracing bool) *NotionClient {
	hc := &http.Client{Timeout: requestTimeout}
	if tracing {
		hc = xray.Client(hc)
	}
	return &NotionClient{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: hc,
	}
}

// FetchSchema はデータベースのフィールド定義を取得します
// 取得失敗は同期実行全体の致命的エラーとして扱われます
func (c *NotionClient) FetchSchema(ctx context.Context, databaseID string) (Schema, error) {
	url := fmt.Sprintf("%s/v1/databases/%s", c.baseURL, databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch database schema: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &StoreError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var database struct {
		Properties map[string]struct {
			Type PropertyType `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(body, &database); err != nil {
		return nil, fmt.Errorf("failed to decode schema response: %w", err)
	}

	schema := make(Schema, len(database.Properties))
	for name, p := range database.Properties {
		schema[name] = p.Type
	}
	return schema, nil
}

// CreatePage はデータベース配下に1ページを作成します
// HTTP 400以上はStoreErrorとして返し、呼び出し側で行単位のエラーとして収集されます
func (c *NotionClient) CreatePage(ctx context.Context, databaseID string, properties map[string]any) error {
	payload, err := json.Marshal(map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": properties,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal page payload: %w", err)
	}

	url := c.baseURL + "/v1/pages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build page request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read page response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &StoreError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return nil
}

func (c *NotionClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")
}
