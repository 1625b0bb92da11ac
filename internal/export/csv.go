// Package export は履歴のCSVシリアライズとメールリンク生成を提供する。
package export

import (
	"strings"

	"github.com/hitoshi/mailgen/internal/model"
)

// CSVFilename はエクスポートファイルのダウンロード名。
const CSVFilename = "email_history.csv"

// csvHeader はCSVの固定ヘッダー行（日本語）。
var csvHeader = []string{"会社名", "サービス名", "ターゲット", "アピールポイント", "トーン", "目的", "メール本文"}

// BuildCSV はフィルター適用済みの履歴一覧をCSV文字列へ変換する。
// 全フィールドをダブルクォートで囲み、メール本文中の改行は半角スペースに置換する。
// N件のレコードからヘッダー行を含むN+1行を生成する。
func BuildCSV(records []model.HistoryRecord) string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, csvHeader)

	for _, rec := range records {
		body := strings.ReplaceAll(rec.Result, "\r\n", "\n")
		body = strings.ReplaceAll(body, "\n", " ")
		rows = append(rows, []string{
			rec.Form.Company,
			rec.Form.Product,
			rec.Form.Target,
			rec.Form.Benefit,
			rec.Form.Tone,
			rec.Form.Purpose,
			body,
		})
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		quoted := make([]string, len(row))
		for j, v := range row {
			quoted[j] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		lines[i] = strings.Join(quoted, ",")
	}

	return strings.Join(lines, "\n")
}
