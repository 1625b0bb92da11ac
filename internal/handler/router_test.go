package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/mailgen/internal/middleware"
	"github.com/hitoshi/mailgen/internal/model"
)

// --- モック定義 ---

type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

type mockHealthChecker struct {
	pingErr error
}

func (m *mockHealthChecker) Ping() error {
	return m.pingErr
}

// --- テストヘルパー ---

// newTestRouterDeps はテスト用のRouterDepsを構築する。
// セッション "valid-session" のみ user-123 として認証される。
func newTestRouterDeps() *RouterDeps {
	sessionFinder := &mockSessionFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id == "valid-session" {
				return &model.Session{
					ID:        "valid-session",
					UserID:    "user-123",
					ExpiresAt: time.Now().Add(1 * time.Hour),
				}, nil
			}
			return nil, nil
		},
	}

	return &RouterDeps{
		HealthChecker:     &mockHealthChecker{},
		SessionFinder:     sessionFinder,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
		CSRFConfig:        middleware.CSRFConfig{CookieSecure: false},

		AuthService: &mockAuthService{},
		AuthConfig: AuthHandlerConfig{
			BaseURL:       "http://localhost:3000",
			SessionMaxAge: 86400,
		},

		Generator: &mockEmailGenerator{
			generateFn: func(ctx context.Context, form model.EmailForm) (string, error) {
				return "生成されたメール本文", nil
			},
		},
		HistoryAdder: &mockHistoryAdder{},

		HistoryService: &mockHistoryService{
			listFn: func(ctx context.Context, userID string, query model.HistoryQuery) ([]model.HistoryRecord, error) {
				return []model.HistoryRecord{sampleRecord("hist-1")}, nil
			},
		},

		UserService: &mockUserService{},
	}
}

// --- テスト ---

func TestRouter_Health_ReturnsOK(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestRouter_Health_DBDown_Returns503(t *testing.T) {
	deps := newTestRouterDeps()
	deps.HealthChecker = &mockHealthChecker{pingErr: errors.New("connection refused")}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusServiceUnavailable)
	}
}

func TestRouter_CSRFToken_NoAuthRequired(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Token == "" {
		t.Error("expected non-empty csrf token")
	}
}

func TestRouter_Generate_Anonymous_Succeeds(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validFormJSON()))
	req.RemoteAddr = "203.0.113.1:54321"
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Result string `json:"result"`
		Mailto string `json:"mailto"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Result != "生成されたメール本文" {
		t.Errorf("result = %q, want %q", body.Result, "生成されたメール本文")
	}
	if body.Mailto == "" {
		t.Error("expected non-empty mailto")
	}
}

func TestRouter_Generate_WithSession_SavesHistory(t *testing.T) {
	deps := newTestRouterDeps()

	var savedUserID string
	deps.HistoryAdder = &mockHistoryAdder{
		addFn: func(ctx context.Context, userID string, form model.EmailForm, result string) (*model.HistoryRecord, error) {
			savedUserID = userID
			return &model.HistoryRecord{ID: "hist-new"}, nil
		},
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(validFormJSON()))
	req.RemoteAddr = "203.0.113.2:54321"
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if savedUserID != "user-123" {
		t.Errorf("saved userID = %q, want %q", savedUserID, "user-123")
	}
}

func TestRouter_History_NoSession_Returns401(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestRouter_History_WithSession_ReturnsItems(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Items) != 1 || body.Items[0].ID != "hist-1" {
		t.Errorf("items = %+v, want 1 item with id hist-1", body.Items)
	}
}

func TestRouter_HistoryDelete_WithoutCSRF_Returns403(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodDelete, "/api/history/hist-1", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestRouter_HistoryDelete_WithCSRF_Returns204(t *testing.T) {
	deps := newTestRouterDeps()
	deps.HistoryService = &mockHistoryService{
		removeFn: func(ctx context.Context, userID, historyID string) error {
			return nil
		},
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodDelete, "/api/history/hist-1", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "test-csrf"})
	req.Header.Set("X-CSRF-Token", "test-csrf")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

func TestRouter_HistoryExport_WithSession_ReturnsCSV(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/history/export", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", resp.Header.Get("Content-Type"))
	}
}

func TestRouter_Withdraw_WithCSRF_Returns204(t *testing.T) {
	deps := newTestRouterDeps()

	var withdrawnID string
	deps.UserService = &mockUserService{
		withdrawFn: func(ctx context.Context, userID string) error {
			withdrawnID = userID
			return nil
		},
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "test-csrf"})
	req.Header.Set("X-CSRF-Token", "test-csrf")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
	if withdrawnID != "user-123" {
		t.Errorf("withdrawn userID = %q, want %q", withdrawnID, "user-123")
	}
}

func TestRouter_Withdraw_NoSession_Returns401(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestRouter_AuthLogin_Redirects(t *testing.T) {
	deps := newTestRouterDeps()
	deps.AuthService = &mockAuthService{
		getLoginURLFn: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTemporaryRedirect)
	}
}

func TestRouter_CORSHeaders_Applied(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	origin := w.Result().Header.Get("Access-Control-Allow-Origin")
	if origin != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", origin, "http://localhost:3000")
	}
}
