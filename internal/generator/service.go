package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sashabaranov/go-openai"

	"github.com/hitoshi/mailgen/internal/model"
	"github.com/hitoshi/mailgen/internal/prompt"
)

// MetricsRecorder は生成処理のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordGenerateSuccess()
	RecordGenerateFailure()
	RecordUpstreamLatency(duration time.Duration)
}

// ServiceConfig は生成サービスの設定。
// モデルIDとサンプリング温度は起動時に固定され、リクエストごとに変化しない。
type ServiceConfig struct {
	Model       string
	Temperature float32
}

// Service は営業メール生成のビジネスロジックを提供する。
// フォームからプロンプトを組み立て、補完APIを1回だけ呼び出す。
// リトライ・ストリーミング・キャッシュは行わない。
type Service struct {
	client  Client
	config  ServiceConfig
	policy  *bluemonday.Policy
	metrics MetricsRecorder
}

// NewService はServiceを生成する。
// 生成テキストに紛れ込んだHTMLタグを除去するため、
// bluemondayのStrictPolicy（全タグ除去）を初期化時に構築する。
// metricsはnilを許容する（テストやワーカーでの利用）。
func NewService(client Client, config ServiceConfig, metrics MetricsRecorder) *Service {
	return &Service{
		client:  client,
		config:  config,
		policy:  bluemonday.StrictPolicy(),
		metrics: metrics,
	}
}

// Generate はフォームの内容から営業メールの下書きを生成する。
// 単一のuserロールメッセージで補完APIを呼び出し、最初の選択肢の本文を返す。
// トランスポートエラー・プロバイダーエラーはそのまま呼び出し元へ伝播する。
func (s *Service) Generate(ctx context.Context, form model.EmailForm) (string, error) {
	p := prompt.Build(form)

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: p},
		},
	})
	if s.metrics != nil {
		s.metrics.RecordUpstreamLatency(time.Since(start))
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordGenerateFailure()
		}
		return "", fmt.Errorf("補完APIの呼び出しに失敗しました: %w", err)
	}

	if len(resp.Choices) == 0 {
		if s.metrics != nil {
			s.metrics.RecordGenerateFailure()
		}
		return "", fmt.Errorf("補完APIが選択肢を返しませんでした")
	}

	result := s.policy.Sanitize(resp.Choices[0].Message.Content)

	if s.metrics != nil {
		s.metrics.RecordGenerateSuccess()
	}
	slog.Info("email draft generated",
		slog.String("model", s.config.Model),
		slog.Int("result_length", len(result)),
	)

	return result, nil
}
