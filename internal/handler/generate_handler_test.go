package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/mailgen/internal/middleware"
	"github.com/hitoshi/mailgen/internal/model"
)

// --- モック定義 ---

type mockEmailGenerator struct {
	generateFn func(ctx context.Context, form model.EmailForm) (string, error)
}

func (m *mockEmailGenerator) Generate(ctx context.Context, form model.EmailForm) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, form)
	}
	return "", nil
}

type mockHistoryAdder struct {
	addFn func(ctx context.Context, userID string, form model.EmailForm, result string) (*model.HistoryRecord, error)
}

func (m *mockHistoryAdder) Add(ctx context.Context, userID string, form model.EmailForm, result string) (*model.HistoryRecord, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, form, result)
	}
	return &model.HistoryRecord{}, nil
}

type mockHistoryMetrics struct {
	ops []string
}

func (m *mockHistoryMetrics) RecordHistoryOperation(op string) {
	m.ops = append(m.ops, op)
}

// --- テストヘルパー ---

func validFormJSON() string {
	return `{
		"company": "株式会社テスト",
		"product": "クラウド勤怠管理",
		"target": "中小企業の人事担当者",
		"benefit": "勤怠集計の工数を月10時間削減",
		"tone": "丁寧",
		"purpose": "初回提案"
	}`
}

func withUserID(req *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(req.Context(), userID)
	return req.WithContext(ctx)
}

// --- テスト ---

func TestGenerateHandler_Success_ReturnsResultAndMailto(t *testing.T) {
	gen := &mockEmailGenerator{
		generateFn: func(ctx context.Context, form model.EmailForm) (string, error) {
			return "拝啓 貴社ますますご清栄のこととお慶び申し上げます。", nil
		},
	}
	h := NewGenerateHandler(gen, &mockHistoryAdder{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validFormJSON()))
	w := httptest.NewRecorder()

	h.Generate(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Result string `json:"result"`
		Mailto string `json:"mailto"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Result == "" {
		t.Error("expected non-empty result")
	}
	if !strings.HasPrefix(body.Mailto, "mailto:?") {
		t.Errorf("mailto = %q, should start with mailto:?", body.Mailto)
	}
}

func TestGenerateHandler_InvalidJSON_Returns400(t *testing.T) {
	h := NewGenerateHandler(&mockEmailGenerator{}, &mockHistoryAdder{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{invalid"))
	w := httptest.NewRecorder()

	h.Generate(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body struct {
		Error string `json:"error"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Error != "リクエストが不正です" {
		t.Errorf("error = %q, want %q", body.Error, "リクエストが不正です")
	}
}

func TestGenerateHandler_MissingField_Returns400BeforeUpstream(t *testing.T) {
	generatorCalled := false
	gen := &mockEmailGenerator{
		generateFn: func(ctx context.Context, form model.EmailForm) (string, error) {
			generatorCalled = true
			return "should not be called", nil
		},
	}
	h := NewGenerateHandler(gen, &mockHistoryAdder{}, nil)

	// companyが空白のみ
	body := `{"company": "  ", "product": "p", "target": "t", "benefit": "b", "tone": "丁寧", "purpose": "初回提案"}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Generate(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if generatorCalled {
		t.Error("generator should not be called for invalid form")
	}
}

func TestGenerateHandler_UpstreamError_Returns500(t *testing.T) {
	gen := &mockEmailGenerator{
		generateFn: func(ctx context.Context, form model.EmailForm) (string, error) {
			return "", errors.New("api timeout")
		},
	}
	h := NewGenerateHandler(gen, &mockHistoryAdder{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validFormJSON()))
	w := httptest.NewRecorder()

	h.Generate(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	var body struct {
		Error string `json:"error"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Error != "サーバーエラー" {
		t.Errorf("error = %q, want %q", body.Error, "サーバーエラー")
	}
}

func TestGenerateHandler_LoggedIn_SavesHistory(t *testing.T) {
	gen := &mockEmailGenerator{
		generateFn: func(ctx context.Context, form model.EmailForm) (string, error) {
			return "生成されたメール本文", nil
		},
	}

	var savedUserID, savedResult string
	adder := &mockHistoryAdder{
		addFn: func(ctx context.Context, userID string, form model.EmailForm, result string) (*model.HistoryRecord, error) {
			savedUserID = userID
			savedResult = result
			return &model.HistoryRecord{ID: "hist-1"}, nil
		},
	}
	metrics := &mockHistoryMetrics{}
	h := NewGenerateHandler(gen, adder, metrics)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validFormJSON()))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Generate(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if savedUserID != "user-123" {
		t.Errorf("saved userID = %q, want %q", savedUserID, "user-123")
	}
	if savedResult != "生成されたメール本文" {
		t.Errorf("saved result = %q, want %q", savedResult, "生成されたメール本文")
	}
	if len(metrics.ops) != 1 || metrics.ops[0] != "add" {
		t.Errorf("recorded ops = %v, want [add]", metrics.ops)
	}
}

func TestGenerateHandler_Anonymous_DoesNotSaveHistory(t *testing.T) {
	gen := &mockEmailGenerator{
		generateFn: func(ctx context.Context, form model.EmailForm) (string, error) {
			return "生成されたメール本文", nil
		},
	}

	addCalled := false
	adder := &mockHistoryAdder{
		addFn: func(ctx context.Context, userID string, form model.EmailForm, result string) (*model.HistoryRecord, error) {
			addCalled = true
			return nil, nil
		},
	}
	h := NewGenerateHandler(gen, adder, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validFormJSON()))
	w := httptest.NewRecorder()

	h.Generate(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if addCalled {
		t.Error("history should not be saved for anonymous request")
	}
}

func TestGenerateHandler_HistorySaveFailure_StillReturnsResult(t *testing.T) {
	gen := &mockEmailGenerator{
		generateFn: func(ctx context.Context, form model.EmailForm) (string, error) {
			return "生成されたメール本文", nil
		},
	}
	adder := &mockHistoryAdder{
		addFn: func(ctx context.Context, userID string, form model.EmailForm, result string) (*model.HistoryRecord, error) {
			return nil, errors.New("db connection lost")
		},
	}
	h := NewGenerateHandler(gen, adder, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validFormJSON()))
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Generate(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Result string `json:"result"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Result != "生成されたメール本文" {
		t.Errorf("result = %q, want %q", body.Result, "生成されたメール本文")
	}
}
