// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// GoogleSubjectはIdPが発行する安定したユーザー識別子で、
// 同一ユーザーの再ログイン時に既存レコードを特定するキーとなる。
type User struct {
	ID            string
	GoogleSubject string
	Email         string
	Name          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
