package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/mailgen/internal/export"
	"github.com/hitoshi/mailgen/internal/middleware"
	"github.com/hitoshi/mailgen/internal/model"
)

// EmailGenerator は生成ハンドラーが必要とするサービスインターフェース。
type EmailGenerator interface {
	// Generate はフォームの内容から営業メールの下書きを生成する。
	Generate(ctx context.Context, form model.EmailForm) (string, error)
}

// HistoryAdder は生成結果の履歴保存のためのインターフェース。
// ログイン中のユーザーに対してのみ呼ばれる。
type HistoryAdder interface {
	Add(ctx context.Context, userID string, form model.EmailForm, result string) (*model.HistoryRecord, error)
}

// HistoryMetricsRecorder は履歴操作のメトリクス記録インターフェース。
type HistoryMetricsRecorder interface {
	RecordHistoryOperation(op string)
}

// GenerateHandler は営業メール生成のHTTPハンドラー。
type GenerateHandler struct {
	generator EmailGenerator
	history   HistoryAdder
	metrics   HistoryMetricsRecorder
}

// NewGenerateHandler はGenerateHandlerを生成する。
// metricsはnilを許容する。
func NewGenerateHandler(generator EmailGenerator, history HistoryAdder, metrics HistoryMetricsRecorder) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		history:   history,
		metrics:   metrics,
	}
}

// generateResponse は生成成功時のAPIレスポンス。
type generateResponse struct {
	Result string `json:"result"`
	Mailto string `json:"mailto"`
}

// generateErrorResponse は生成エンドポイント専用のエラーレスポンス。
// フロントエンドがerrorフィールドだけを見る素朴な形式を維持する。
type generateErrorResponse struct {
	Error string `json:"error"`
}

// Generate は営業メール生成を処理する。
// POST /api/generate
// 未ログインでも利用可能。ログイン中は生成成功時に履歴へ保存する。
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var form model.EmailForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeGenerateError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	// バリデーションは補完APIを呼ぶ前に行う
	if !form.Validate() {
		writeGenerateError(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	result, err := h.generator.Generate(r.Context(), form)
	if err != nil {
		slog.Error("email generation failed", slog.String("error", err.Error()))
		writeGenerateError(w, http.StatusInternalServerError, model.NewUpstreamError())
		return
	}

	// ログイン中のみ履歴へ保存する。保存失敗は生成結果の返却を妨げない。
	if userID, ctxErr := middleware.UserIDFromContext(r.Context()); ctxErr == nil {
		if _, addErr := h.history.Add(r.Context(), userID, form, result); addErr != nil {
			slog.Error("failed to save history",
				slog.String("user_id", userID),
				slog.String("error", addErr.Error()),
			)
		} else if h.metrics != nil {
			h.metrics.RecordHistoryOperation("add")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(generateResponse{
		Result: result,
		Mailto: export.MailtoURI(result),
	})
}

// writeGenerateError は生成エンドポイントのエラーレスポンスを書き込む。
// 統一フォーマットではなくメッセージのみを返す。
func writeGenerateError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(generateErrorResponse{Error: apiErr.Message})
}
