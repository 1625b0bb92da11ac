// Package generator は外部のチャット補完APIを用いた営業メール生成を提供する。
package generator

import (
	"context"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Client はサービス層が必要とする補完APIクライアントの最小インターフェース。
// *openai.Clientの部分集合として定義することでテスト時のモック差し替えを容易にする。
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient は補完APIクライアントを生成する。
// baseURLが空の場合はプロバイダーのデフォルトエンドポイントを使用する。
// timeoutは1回の補完呼び出し全体の上限時間として適用される。
// クライアントはアプリケーション起動時に1回構築し、ハンドラーへ明示的に注入する。
func NewClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(config)
}
