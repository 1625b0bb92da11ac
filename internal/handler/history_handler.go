package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mailgen/internal/export"
	"github.com/hitoshi/mailgen/internal/middleware"
	"github.com/hitoshi/mailgen/internal/model"
)

// HistoryServiceInterface は履歴ハンドラーが必要とするサービスインターフェース。
type HistoryServiceInterface interface {
	// List はユーザーの履歴をソート・フィルター適用済みで返す。
	List(ctx context.Context, userID string, query model.HistoryQuery) ([]model.HistoryRecord, error)
	// Remove は指定IDの履歴を削除する。
	Remove(ctx context.Context, userID, historyID string) error
}

// HistoryHandler は生成履歴管理のHTTPハンドラー。
type HistoryHandler struct {
	service HistoryServiceInterface
	metrics HistoryMetricsRecorder
}

// NewHistoryHandler はHistoryHandlerを生成する。
// metricsはnilを許容する。
func NewHistoryHandler(service HistoryServiceInterface, metrics HistoryMetricsRecorder) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		metrics: metrics,
	}
}

// historyItemResponse は履歴1件のAPIレスポンス。
type historyItemResponse struct {
	ID        string          `json:"id"`
	Form      model.EmailForm `json:"form"`
	Result    string          `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// historyListResponse は履歴一覧のAPIレスポンス。
type historyListResponse struct {
	Items []historyItemResponse `json:"items"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListHistories は履歴一覧を返す。
// GET /api/history?sort=asc|desc&keyword=xxx&tone=xxx&purpose=xxx
func (h *HistoryHandler) ListHistories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	records, err := h.service.List(r.Context(), userID, parseHistoryQuery(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordHistoryOperation("list")
	}

	items := make([]historyItemResponse, len(records))
	for i, rec := range records {
		items[i] = toHistoryItemResponse(rec)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(historyListResponse{Items: items})
}

// DeleteHistory は履歴1件を削除する。
// DELETE /api/history/:id
func (h *HistoryHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	historyID := chi.URLParam(r, "id")

	if err := h.service.Remove(r.Context(), userID, historyID); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordHistoryOperation("delete")
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportHistories は現在のフィルター条件で絞り込んだ履歴をCSVで返す。
// GET /api/history/export?sort=asc|desc&keyword=xxx&tone=xxx&purpose=xxx
// 対象が0件の場合は204を返す。
func (h *HistoryHandler) ExportHistories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	records, err := h.service.List(r.Context(), userID, parseHistoryQuery(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordHistoryOperation("export")
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.CSVFilename))
	w.Write([]byte(export.BuildCSV(records)))
}

// --- ヘルパー関数 ---

// parseHistoryQuery はクエリパラメータから検索条件を組み立てる。
func parseHistoryQuery(r *http.Request) model.HistoryQuery {
	q := r.URL.Query()
	return model.HistoryQuery{
		SortOrder: q.Get("sort"),
		Keyword:   q.Get("keyword"),
		Tone:      q.Get("tone"),
		Purpose:   q.Get("purpose"),
	}
}

// toHistoryItemResponse はmodel.HistoryRecordからAPIレスポンスに変換する。
func toHistoryItemResponse(rec model.HistoryRecord) historyItemResponse {
	return historyItemResponse{
		ID:        rec.ID,
		Form:      rec.Form,
		Result:    rec.Result,
		CreatedAt: rec.CreatedAt,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeHistoryNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
