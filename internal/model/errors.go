// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, upstream, store, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeUpstreamFailed  = "UPSTREAM_FAILED"
	ErrCodeHistoryNotFound = "HISTORY_NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
)

// NewInvalidRequestError はフォーム不備のバリデーションエラーを生成する。
// どの項目が不正かは返さず、一般化されたメッセージのみをユーザーに返す。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストが不正です",
		Category: "validation",
		Action:   "全ての項目を入力してから再度お試しください。",
	}
}

// NewUpstreamError は生成プロバイダー呼び出し失敗のエラーを生成する。
// 原因の詳細はサーバーログのみに記録し、ユーザーには一般メッセージを返す。
func NewUpstreamError() *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  "サーバーエラー",
		Category: "upstream",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewHistoryNotFoundError は履歴未検出エラーを生成する。
func NewHistoryNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeHistoryNotFound,
		Message:  fmt.Sprintf("指定された履歴が見つかりません: %s", id),
		Category: "store",
		Action:   "履歴一覧を再読み込みしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
