// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/mailgen/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByGoogleSubject はIdPの安定識別子でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByGoogleSubject(ctx context.Context, subject string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile はメールアドレスと表示名を更新する。
	// 再ログイン時にIdP側の最新プロフィールを反映するために使用する。
	UpdateProfile(ctx context.Context, id, email, name string) error

	// DeleteByID は指定IDのユーザーを削除する。退会処理で使用する。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// HistoryRepository は生成履歴の永続化インターフェース。
// レコードは作成と削除のみで、更新されることはない。
type HistoryRepository interface {
	// Create は履歴レコードを作成する。
	// created_atはDBサーバーが割り当て、recordに書き戻される。
	Create(ctx context.Context, record *model.HistoryRecord) error

	// FindByID は指定IDの履歴を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.HistoryRecord, error)

	// ListByUserID はユーザーの全履歴をcreated_at順で取得する。
	// sortOrderは"asc"または"desc"。キーワード等の絞り込みは
	// サービス層がメモリ上で行うため、ここでは行わない。
	ListByUserID(ctx context.Context, userID, sortOrder string) ([]model.HistoryRecord, error)

	// DeleteByID は指定IDの履歴を1件削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID はユーザーの全履歴を削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
