// Package model はドメインモデルを定義する。
package model

import "time"

// HistoryRecord は生成済み営業メールの履歴レコードを表す。
// 生成成功時（ログイン中のみ）に作成され、更新されることはない。
// 削除はユーザーの明示的な操作によってのみ行われる。
type HistoryRecord struct {
	ID        string
	UserID    string
	Form      EmailForm
	Result    string
	CreatedAt time.Time // サーバー（DB）が割り当てるタイムスタンプ
}

// HistoryQuery は履歴一覧の検索条件を表す。
// Keyword、Tone、Purposeのフィルターはサーバー側フェッチ後に
// メモリ上で適用される。ソート順のみDBに委ねる。
type HistoryQuery struct {
	SortOrder string // "asc" または "desc"（デフォルト）
	Keyword   string // 会社名・サービス名への部分一致。空なら絞り込みなし
	Tone      string // 完全一致。"すべて" なら絞り込みなし
	Purpose   string // 完全一致。"すべて" なら絞り込みなし
}

// SortOrderOrDefault は未指定・不正値をdescに正規化したソート順を返す。
func (q HistoryQuery) SortOrderOrDefault() string {
	if q.SortOrder == "asc" {
		return "asc"
	}
	return "desc"
}
