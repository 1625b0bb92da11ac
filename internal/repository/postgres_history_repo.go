package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/mailgen/internal/model"
)

// PostgresHistoryRepo はPostgreSQLを使用した生成履歴リポジトリ。
type PostgresHistoryRepo struct {
	db *sql.DB
}

// NewPostgresHistoryRepo はPostgresHistoryRepoを生成する。
func NewPostgresHistoryRepo(db *sql.DB) *PostgresHistoryRepo {
	return &PostgresHistoryRepo{db: db}
}

// Create は履歴レコードを作成する。
// created_atはDBサーバーのnow()が割り当て、引数のCreatedAtに書き戻される。
func (r *PostgresHistoryRepo) Create(ctx context.Context, record *model.HistoryRecord) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO email_histories
		    (id, user_id, company, product, target, benefit, tone, purpose, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		 RETURNING created_at`,
		record.ID, record.UserID,
		record.Form.Company, record.Form.Product, record.Form.Target,
		record.Form.Benefit, record.Form.Tone, record.Form.Purpose,
		record.Result,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("履歴の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの履歴を取得する。見つからない場合はnilを返す。
func (r *PostgresHistoryRepo) FindByID(ctx context.Context, id string) (*model.HistoryRecord, error) {
	record := &model.HistoryRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, company, product, target, benefit, tone, purpose, result, created_at
		 FROM email_histories WHERE id = $1`,
		id,
	).Scan(
		&record.ID, &record.UserID,
		&record.Form.Company, &record.Form.Product, &record.Form.Target,
		&record.Form.Benefit, &record.Form.Tone, &record.Form.Purpose,
		&record.Result, &record.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("履歴の取得に失敗しました: %w", err)
	}

	return record, nil
}

// ListByUserID はユーザーの全履歴をcreated_at順で取得する。
// sortOrderは"asc"または"desc"（それ以外はdescにフォールバック）。
func (r *PostgresHistoryRepo) ListByUserID(ctx context.Context, userID, sortOrder string) ([]model.HistoryRecord, error) {
	// ORDER BY句はプレースホルダにできないため、許可値のみを埋め込む
	order := "DESC"
	if sortOrder == "asc" {
		order = "ASC"
	}

	query := `SELECT id, user_id, company, product, target, benefit, tone, purpose, result, created_at
	          FROM email_histories WHERE user_id = $1 ORDER BY created_at ` + order

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("履歴一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var records []model.HistoryRecord
	for rows.Next() {
		var record model.HistoryRecord
		if err := rows.Scan(
			&record.ID, &record.UserID,
			&record.Form.Company, &record.Form.Product, &record.Form.Target,
			&record.Form.Benefit, &record.Form.Tone, &record.Form.Purpose,
			&record.Result, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("履歴行の読み取りに失敗しました: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("履歴一覧の走査に失敗しました: %w", err)
	}

	return records, nil
}

// DeleteByID は指定IDの履歴を1件削除する。
func (r *PostgresHistoryRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM email_histories WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("履歴の削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの全履歴を削除する。
func (r *PostgresHistoryRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM email_histories WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ユーザー履歴の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ HistoryRepository = (*PostgresHistoryRepo)(nil)
