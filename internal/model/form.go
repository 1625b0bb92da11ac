// Package model はドメインモデルを定義する。
package model

import "strings"

// トーン・目的の選択肢。UI側のセレクタと一致させる。
const (
	ToneFormal   = "丁寧"
	ToneCasual   = "カジュアル"
	PurposeFirst = "初回提案"
	PurposeRetry = "再提案"
	PurposeDemo  = "デモ案内"

	// FilterAll は履歴フィルターで「絞り込みなし」を意味するセンチネル値。
	FilterAll = "すべて"
)

// EmailForm は営業メール生成の入力フォームを表す。
// 送信後は変更されない。全フィールドが必須。
type EmailForm struct {
	Company string `json:"company"`
	Product string `json:"product"`
	Target  string `json:"target"`
	Benefit string `json:"benefit"`
	Tone    string `json:"tone"`
	Purpose string `json:"purpose"`
}

// Validate は全6フィールドがトリム後に空でないことを検証する。
// いずれかが空の場合はfalseを返す。
func (f EmailForm) Validate() bool {
	for _, v := range []string{f.Company, f.Product, f.Target, f.Benefit, f.Tone, f.Purpose} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
