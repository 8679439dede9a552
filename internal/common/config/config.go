package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// NotionConfig はレコードストア接続のための資格情報です
type NotionConfig struct {
	Token      string
	DatabaseID string
}

type Config struct {
	Notion NotionConfig
	SFN    struct {
		TaskToken string
	}
	EnableTracing bool
}

// notionSecret はSecrets Managerに格納されるシークレットのJSON形式です
type notionSecret struct {
	Token      string `json:"notion_token"`
	DatabaseID string `json:"notion_database_id"`
}

// LoadConfig は設定を読み込みます
//
// Notionの資格情報は環境変数[NOTION_SECRET_ID]が設定されていれば
// AWS Secrets Managerから取得し、欠けているキーは環境変数で補います。
// どちらからも得られない場合でもエラーにはならず、同期だけが無効になります。
func LoadConfig(ctx context.Context, taskToken string) (*Config, error) {
	cfg := &Config{}
	cfg.SFN.TaskToken = taskToken

	notion, err := loadNotionConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Notion = notion

	// 環境変数[CLINIC_SYNC_ENABLE_TRACING]を見てトレースを有効にする。対応しているTracingはAWS_XRAYのみ。
	// 環境変数[AWS_XRAY_SDK_DISABLED]がtrueの場合は必ずトレースを無効にする。
	enableKey := os.Getenv("CLINIC_SYNC_ENABLE_TRACING")
	if !sdkDisabled() && (strings.ToLower(enableKey) == "true" || enableKey == "1") {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "FALSE")
		cfg.EnableTracing = true
	} else {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "TRUE")
		cfg.EnableTracing = false
	}

	return cfg, nil
}

// SyncEnabled は同期パスが利用可能かどうかを返します
// 資格情報が欠けていてもローカルのプレビュー・CSVエクスポートは動作します
func (c *Config) SyncEnabled() bool {
	return c.Notion.Token != "" && c.Notion.DatabaseID != ""
}

func loadNotionConfig(ctx context.Context) (NotionConfig, error) {
	notion := NotionConfig{
		Token:      os.Getenv("NOTION_TOKEN"),
		DatabaseID: os.Getenv("NOTION_DATABASE_ID"),
	}

	secretID := os.Getenv("NOTION_SECRET_ID")
	if secretID == "" {
		if !notionConfigured(notion) {
			log.Printf("Notion credentials are not set, sync will be disabled")
		}
		return notion, nil
	}

	secret, err := fetchNotionSecret(ctx, secretID)
	if err != nil {
		return NotionConfig{}, fmt.Errorf("failed to load notion secret %s: %w", secretID, err)
	}

	// シークレット側の値を優先し、欠けているキーは環境変数で補う
	if secret.Token != "" {
		notion.Token = secret.Token
	}
	if secret.DatabaseID != "" {
		notion.DatabaseID = secret.DatabaseID
	}
	return notion, nil
}

func fetchNotionSecret(ctx context.Context, secretID string) (notionSecret, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return notionSecret{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return notionSecret{}, fmt.Errorf("failed to get secret value: %w", err)
	}

	var secret notionSecret
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &secret); err != nil {
		return notionSecret{}, fmt.Errorf("failed to decode secret JSON: %w", err)
	}
	return secret, nil
}

func notionConfigured(n NotionConfig) bool {
	return n.Token != "" && n.DatabaseID != ""
}

// Check if SDK is disabled
func sdkDisabled() bool {
	disableKey := os.Getenv("AWS_XRAY_SDK_DISABLED")
	return strings.ToLower(disableKey) == "true"
}
