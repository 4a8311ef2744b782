package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-apptemplate-backend/internal/ai"
	"github.com/tbourn/go-apptemplate-backend/internal/config"
	"github.com/tbourn/go-apptemplate-backend/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

// stubGateway is a canned provider for end-to-end router tests.
type stubGateway struct {
	reply     string
	fragments []string
	models    []ai.ModelInfo

	sendErr   error
	streamErr error
	listErr   error

	gotKey string
}

func (s *stubGateway) SendMessage(ctx context.Context, prompt, apiKey, model string) (string, error) {
	s.gotKey = apiKey
	return s.reply, s.sendErr
}

func (s *stubGateway) StreamMessage(ctx context.Context, prompt, apiKey, model string, onDelta func(string) error) error {
	s.gotKey = apiKey
	if s.streamErr != nil {
		return s.streamErr
	}
	for _, fr := range s.fragments {
		if err := onDelta(fr); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubGateway) ListModels(ctx context.Context, apiKey string) ([]ai.ModelInfo, error) {
	s.gotKey = apiKey
	return s.models, s.listErr
}

func testConfig() config.Config {
	return config.Config{
		Port:              "8080",
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		GinMode:           gin.TestMode,
		APIBasePath:       "/api",
		AppSecret:         "router-test-secret",
		Anthropic: config.AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
		},
		RateRPS:   1000,
		RateBurst: 1000,
		OTEL:      config.OTELConfig{ServiceName: "apptemplate-test"},
	}
}

func newRouterDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("router_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.APIKey{}, &domain.ChatMessage{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestServer(t *testing.T, gw *stubGateway, cfg config.Config) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := newRouterDB(t)
	r := gin.New()
	RegisterRoutes(r, db, gw, cfg)
	return r, db
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	w := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	w := do(t, r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("expected prometheus exposition, got: %.120s", w.Body.String())
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	w := do(t, r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestMethodNotAllowedEnvelope(t *testing.T) {
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	w := do(t, r, http.MethodPut, "/api/chat", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"method_not_allowed"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRequestIDPropagation(t *testing.T) {
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "fixed-id-123" {
		t.Fatalf("X-Request-ID = %q, want reuse of the inbound id", got)
	}

	// Without an inbound id, one is generated.
	w2 := do(t, r, http.MethodGet, "/health", "")
	if w2.Header().Get("X-Request-ID") == "" {
		t.Fatalf("a request id must always be assigned")
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	w := do(t, r, http.MethodGet, "/health", "")
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("default CORS must allow all, got %q", got)
	}
}

func TestRateLimiterEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r, _ := newTestServer(t, &stubGateway{}, cfg)

	if w := do(t, r, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	w := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d, want 429", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"rate_limited"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("429 must carry Retry-After")
	}
}

func TestAPIKeyLifecycleOverHTTP(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	// No key yet.
	w := do(t, r, http.MethodGet, "/api/apikeys/dev-1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"hasKey":false`) {
		t.Fatalf("initial status: %d %s", w.Code, w.Body.String())
	}

	// Save.
	w = do(t, r, http.MethodPost, "/api/apikeys",
		`{"deviceId":"dev-1","apiKey":"sk-ant-api03-abcdef1234"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"maskedKey":"sk-ant-****1234"`) {
		t.Fatalf("save body = %s", w.Body.String())
	}

	// Status reflects the stored key.
	w = do(t, r, http.MethodGet, "/api/apikeys/dev-1", "")
	if !strings.Contains(w.Body.String(), `"hasKey":true`) ||
		!strings.Contains(w.Body.String(), `"maskedKey":"sk-ant-****1234"`) {
		t.Fatalf("status body = %s", w.Body.String())
	}

	// Full key never appears in any response.
	if strings.Contains(w.Body.String(), "sk-ant-api03-abcdef1234") {
		t.Fatalf("plaintext key leaked: %s", w.Body.String())
	}

	// Delete, twice (idempotent).
	for i := 0; i < 2; i++ {
		w = do(t, r, http.MethodDelete, "/api/apikeys/dev-1", "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"hasKey":false`) {
			t.Fatalf("delete #%d: %d %s", i+1, w.Code, w.Body.String())
		}
	}
}

func TestChatFlowOverHTTP(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	gw := &stubGateway{reply: "stub answer"}
	r, _ := newTestServer(t, gw, testConfig())

	// Store a key so the device has a credential.
	w := do(t, r, http.MethodPost, "/api/apikeys",
		`{"deviceId":"dev-1","apiKey":"sk-ant-api03-abcdef1234"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("save key: %d", w.Code)
	}

	// Send a message.
	w = do(t, r, http.MethodPost, "/api/chat", `{"message":"hello","deviceId":"dev-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"response":"stub answer"`) {
		t.Fatalf("chat body = %s", w.Body.String())
	}
	if gw.gotKey != "sk-ant-api03-abcdef1234" {
		t.Fatalf("gateway must receive the decrypted device key, got %q", gw.gotKey)
	}

	// History holds the exchange, oldest first.
	w = do(t, r, http.MethodGet, "/api/chat/history/dev-1", "")
	var history []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("history unmarshal: %v", err)
	}
	if len(history) != 2 || history[0]["isUser"] != true || history[1]["content"] != "stub answer" {
		t.Fatalf("history = %v", history)
	}

	// Clear, then verify empty.
	if w = do(t, r, http.MethodDelete, "/api/chat/history/dev-1", ""); w.Code != http.StatusOK {
		t.Fatalf("clear: %d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/chat/history/dev-1", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("history after clear = %s", w.Body.String())
	}
}

func TestChatWithoutAnyKeyOverHTTP(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	w := do(t, r, http.MethodPost, "/api/chat", `{"message":"hello","deviceId":"dev-1"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"no_api_key"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestChatBlankMessageOverHTTP(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "ambient")
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	w := do(t, r, http.MethodPost, "/api/chat", `{"message":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":"bad_request"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestStreamOverHTTP(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "ambient")
	gw := &stubGateway{fragments: []string{"str", "eam"}}
	r, db := newTestServer(t, gw, testConfig())

	w := do(t, r, http.MethodPost, "/api/chat/stream", `{"message":"hello","deviceId":"dev-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
	want := "data: str\n\ndata: eam\n\ndata: [DONE]\n\n"
	if w.Body.String() != want {
		t.Fatalf("body = %q, want %q", w.Body.String(), want)
	}

	// Fully drained streams are persisted.
	var count int64
	if err := db.Model(&domain.ChatMessage{}).Where("device_id = ?", "dev-1").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected persisted exchange, got %d rows", count)
	}
}

func TestModelsFailureSoftensOverHTTP(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	gw := &stubGateway{listErr: errors.New("401 unauthorized")}
	r, _ := newTestServer(t, gw, testConfig())

	w := do(t, r, http.MethodGet, "/api/chat/models", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"models":[]`) ||
		!strings.Contains(w.Body.String(), `"defaultModel":"claude-sonnet-4-20250514"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestEnvKeyAvailableOverHTTP(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := testConfig()
	r, _ := newTestServer(t, &stubGateway{}, cfg)

	w := do(t, r, http.MethodGet, "/api/chat/env-key-available", "")
	if !strings.Contains(w.Body.String(), `"available":false`) {
		t.Fatalf("body = %s", w.Body.String())
	}

	cfg.Anthropic.APIKey = "sk-ant-configured"
	r2, _ := newTestServer(t, &stubGateway{}, cfg)
	w = do(t, r2, http.MethodGet, "/api/chat/env-key-available", "")
	if !strings.Contains(w.Body.String(), `"available":true`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestWeatherOverHTTP(t *testing.T) {
	r, _ := newTestServer(t, &stubGateway{}, testConfig())

	w := do(t, r, http.MethodGet, "/api/weather", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var forecasts []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &forecasts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(forecasts) != 10 {
		t.Fatalf("expected 10 cities, got %d", len(forecasts))
	}

	w = do(t, r, http.MethodGet, "/api/weather/london", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"city":"London"`) {
		t.Fatalf("city lookup: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/weather/Atlantis", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown city: %d", w.Code)
	}
}
