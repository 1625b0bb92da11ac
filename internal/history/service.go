// Package history は生成履歴管理のドメインロジックを提供する。
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/mailgen/internal/model"
	"github.com/hitoshi/mailgen/internal/repository"
)

// Service は生成履歴のサービス層。
// 履歴の保存、フィルター付き一覧取得、削除のビジネスロジックを提供する。
type Service struct {
	historyRepo repository.HistoryRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(historyRepo repository.HistoryRepository) *Service {
	return &Service{historyRepo: historyRepo}
}

// Add は生成成功した営業メールを履歴として保存する。
// IDはサーバー側で採番し、created_atはDBが割り当ててCreateが書き戻す。
func (s *Service) Add(ctx context.Context, userID string, form model.EmailForm, result string) (*model.HistoryRecord, error) {
	record := &model.HistoryRecord{
		ID:     uuid.NewString(),
		UserID: userID,
		Form:   form,
		Result: result,
	}

	if err := s.historyRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("履歴の保存に失敗しました: %w", err)
	}

	return record, nil
}

// List はユーザーの履歴をソート・フィルター適用済みで返す。
// 並び替えはDB側で行い、キーワード・トーン・目的の絞り込みは
// フェッチ後にメモリ上で適用する。
func (s *Service) List(ctx context.Context, userID string, query model.HistoryQuery) ([]model.HistoryRecord, error) {
	records, err := s.historyRepo.ListByUserID(ctx, userID, query.SortOrderOrDefault())
	if err != nil {
		return nil, fmt.Errorf("履歴一覧の取得に失敗しました: %w", err)
	}

	filtered := make([]model.HistoryRecord, 0, len(records))
	for _, rec := range records {
		if matches(rec, query) {
			filtered = append(filtered, rec)
		}
	}

	return filtered, nil
}

// Remove は指定IDの履歴を削除する。
// 他ユーザーの履歴は存在を漏らさないよう未検出として扱う。
func (s *Service) Remove(ctx context.Context, userID, historyID string) error {
	record, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return fmt.Errorf("履歴の取得に失敗しました: %w", err)
	}
	if record == nil {
		return model.NewHistoryNotFoundError(historyID)
	}
	if record.UserID != userID {
		return model.NewHistoryNotFoundError(historyID)
	}

	if err := s.historyRepo.DeleteByID(ctx, historyID); err != nil {
		return fmt.Errorf("履歴の削除に失敗しました: %w", err)
	}

	return nil
}

// matches は1レコードが検索条件を満たすか判定する。
// キーワードは会社名・サービス名への部分一致（大文字小文字を区別）、
// トーン・目的は完全一致で、空または「すべて」なら絞り込まない。
// 空白のみのキーワードは未指定として扱う。
func matches(rec model.HistoryRecord, query model.HistoryQuery) bool {
	if strings.TrimSpace(query.Keyword) != "" {
		if !strings.Contains(rec.Form.Company, query.Keyword) &&
			!strings.Contains(rec.Form.Product, query.Keyword) {
			return false
		}
	}
	if query.Tone != "" && query.Tone != model.FilterAll && rec.Form.Tone != query.Tone {
		return false
	}
	if query.Purpose != "" && query.Purpose != model.FilterAll && rec.Form.Purpose != query.Purpose {
		return false
	}
	return true
}
