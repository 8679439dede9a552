package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/daon-clinic/clinic-sync/internal/common/config"
	"github.com/daon-clinic/clinic-sync/internal/repository"
	"github.com/daon-clinic/clinic-sync/internal/service/batch"
	"github.com/daon-clinic/clinic-sync/internal/table"
	"github.com/daon-clinic/clinic-sync/internal/transform"
)

// プレビューで返す先頭行数(アップロード画面の確認用)
const previewRows = 5

// Handler はHTTPハンドラの依存をまとめて保持します
type Handler struct {
	cfg      *config.Config
	store    repository.RecordStore
	location *time.Location
	logger   *zap.Logger
}

// NewHandler は新しいHandlerを作成します
func NewHandler(cfg *config.Config, store repository.RecordStore, location *time.Location, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		store:    store,
		location: location,
		logger:   logger,
	}
}

// Health は死活監視用のエンドポイントです
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"sync_enabled": h.cfg.SyncEnabled(),
	})
}

// previewResponse はアップロードプレビューのレスポンスです
type previewResponse struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// Preview はCSVボディを受け取り、先頭数行を確認用に返します
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	t, err := table.ReadCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read table: %v", err))
		return
	}

	resp := previewResponse{Columns: t.Columns, Rows: [][]string{}, TotalRows: t.Len()}
	for i := 0; i < t.Len() && i < previewRows; i++ {
		row := make([]string, len(t.Columns))
		for j, cell := range t.Rows[i] {
			row[j] = table.CellString(cell)
		}
		resp.Rows = append(resp.Rows, row)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transform はCSVボディを指定種別のレコードセットへ変換し、CSVとして返します
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	kind, err := transform.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := table.ReadCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read table: %v", err))
		return
	}

	recordSet, err := transform.BuildRecordSet(t, kind, time.Now().In(h.location), h.logger)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", kind))
	if err := recordSet.WriteCSV(w); err != nil {
		h.logger.Error("failed to write csv response", zap.Error(err))
	}
}

// Sync はCSVボディを変換し、レコードストアへ同期して結果サマリを返します
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.SyncEnabled() {
		writeError(w, http.StatusServiceUnavailable, "notion credentials are not configured, sync is disabled")
		return
	}

	kind, err := transform.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// HTTP経由の同期ではStep Functionsの通知は行わない
	syncService := batch.NewSyncService(h.cfg, h.store, nil, h.logger)
	uploadService := batch.NewUploadService(syncService, h.location, h.logger)

	result, err := uploadService.Run(r.Context(), r.Body, kind)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
