// Package prompt は営業メール生成用のプロンプト文字列を組み立てる。
package prompt

import (
	"fmt"

	"github.com/hitoshi/mailgen/internal/model"
)

// promptTemplate は生成モデルへ渡す日本語の指示テンプレート。
// 条件を箇条書きで埋め込み、件名と本文の両方を要求する。
const promptTemplate = `
以下の条件に基づいて、自然な営業メールを日本語で生成してください。

- 貴社名: %s
- サービス名: %s
- ターゲット: %s
- アピールポイント: %s
- トーン: %s
- メールの目的: %s

件名と本文を含めてください。`

// Build はバリデーション済みのフォームからプロンプト文字列を生成する。
// 決定的な純粋関数であり、同一入力に対して常に同一の文字列を返す。
// バリデーションは呼び出し側（ハンドラー境界）の責務。
func Build(form model.EmailForm) string {
	return fmt.Sprintf(promptTemplate,
		form.Company,
		form.Product,
		form.Target,
		form.Benefit,
		form.Tone,
		form.Purpose,
	)
}
