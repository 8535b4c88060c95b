package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/verifact/verifact-server-go/internal/config"
	"github.com/verifact/verifact-server-go/internal/cost"
	"github.com/verifact/verifact-server-go/internal/httperror"
	"github.com/verifact/verifact-server-go/internal/identity"
	"github.com/verifact/verifact-server-go/internal/llm"
	"github.com/verifact/verifact-server-go/internal/metrics"
	"github.com/verifact/verifact-server-go/internal/quota"
	"github.com/verifact/verifact-server-go/internal/verdict"
)

type stubClient struct {
	configured bool
	text       string
	usage      llm.Usage
	err        error
	calls      int
}

func (s *stubClient) Configured() bool { return s.configured }

func (s *stubClient) Complete(_ context.Context, _ string) (llm.Completion, error) {
	s.calls++
	if s.err != nil {
		return llm.Completion{}, s.err
	}
	return llm.Completion{Text: s.text, Usage: s.usage, Elapsed: 250 * time.Millisecond}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Model:           "gemini-3-flash-preview",
			MaxOutputTokens: 800,
			FallbackScore:   75,
		},
		Quota: config.QuotaConfig{MaxPerDay: 2, WindowHours: 24},
		Identity: config.IdentityConfig{
			CookieSecret: "test-secret",
			CookieName:   "clientId",
		},
		Cost: config.CostConfig{
			InputUSDPerThousand:  0.003,
			OutputUSDPerThousand: 0.015,
			EURPerUSD:            0.92,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, client *stubClient) (*gin.Engine, *metrics.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := metrics.NewStore()
	handler := NewVerifyHandler(
		cfg,
		client,
		identity.NewResolver(cfg.Identity),
		quota.NewTracker(quota.NewMemoryStore(), cfg.Quota.MaxPerDay, cfg.Quota.Window()),
		verdict.NewNormalizer(cfg.LLM.FallbackScore),
		cost.Rates(cfg.Cost),
		store,
		slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})),
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router, store
}

func postVerify(router *gin.Engine, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeErrorBody(t *testing.T, resp *httptest.ResponseRecorder) httperror.ErrorResponse {
	t.Helper()
	var payload httperror.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return payload
}

func TestVerifySuccess(t *testing.T) {
	client := &stubClient{
		configured: true,
		text:       `{"veridicita":82,"spiegazione":"Confermato.","fonti":[{"nome":"ANSA","tipo":"testata_primaria","affidabilita":90,"url":"https://www.ansa.it"}],"segnali_allerta":[],"contesto":"ctx"}`,
		usage:      llm.Usage{InputTokens: 1000, OutputTokens: 500, TotalTokens: 1500},
	}
	router, _ := newTestRouter(t, testConfig(), client)

	resp := postVerify(router, `{"input":"La terra è piatta"}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload VerifyResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Analysis.TruthScore != 82 {
		t.Fatalf("truth score = %d, want 82", payload.Analysis.TruthScore)
	}
	if payload.Metrics.TokenTotali != 1500 {
		t.Fatalf("tokenTotali = %d, want 1500", payload.Metrics.TokenTotali)
	}
	if payload.Metrics.CostoTotaleUSD != "0.010500" || payload.Metrics.CostoTotaleEUR != "0.009660" {
		t.Fatalf("unexpected costs: %+v", payload.Metrics)
	}
	if payload.Metrics.TempoRispostaMs != 250 {
		t.Fatalf("tempoRispostaMs = %d, want 250", payload.Metrics.TempoRispostaMs)
	}

	// First contact mints the identity cookie.
	cookies := resp.Result().Cookies()
	found := false
	for _, cookie := range cookies {
		if cookie.Name == "clientId" && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected clientId cookie, got %v", cookies)
	}
}

func TestVerifyMissingInput(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), &stubClient{configured: true})

	for _, body := range []string{``, `{}`, `{"input":""}`} {
		resp := postVerify(router, body, nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, resp.Code)
		}
		payload := decodeErrorBody(t, resp)
		if payload.Error != "Input mancante" {
			t.Fatalf("body %q: error = %q, want Input mancante", body, payload.Error)
		}
		if payload.ErrorCode != string(httperror.ErrorCodeMissingInput) {
			t.Fatalf("body %q: error_code = %q", body, payload.ErrorCode)
		}
	}
}

func TestVerifyMissingAPIKey(t *testing.T) {
	client := &stubClient{configured: false}
	router, _ := newTestRouter(t, testConfig(), client)

	resp := postVerify(router, `{"input":"claim"}`, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	payload := decodeErrorBody(t, resp)
	if payload.Error != "API Key mancante" {
		t.Fatalf("error = %q, want API Key mancante", payload.Error)
	}
	if client.calls != 0 {
		t.Fatalf("completion must not be called without a key")
	}
}

func TestVerifyQuotaExhaustion(t *testing.T) {
	client := &stubClient{
		configured: true,
		text:       `{"veridicita":50,"spiegazione":"x","fonti":[],"segnali_allerta":[],"contesto":"c"}`,
		usage:      llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
	cfg := testConfig()
	router, store := newTestRouter(t, cfg, client)

	// Replay the minted cookie so all requests share one identity.
	first := postVerify(router, `{"input":"claim"}`, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", first.Code)
	}
	cookies := first.Result().Cookies()

	second := postVerify(router, `{"input":"claim"}`, cookies)
	if second.Code != http.StatusOK {
		t.Fatalf("second request: expected 200, got %d", second.Code)
	}

	third := postVerify(router, `{"input":"claim"}`, cookies)
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: expected 429, got %d", third.Code)
	}
	if third.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on 429")
	}
	payload := decodeErrorBody(t, third)
	if payload.ErrorCode != string(httperror.ErrorCodeQuotaExceeded) {
		t.Fatalf("error_code = %q", payload.ErrorCode)
	}
	if client.calls != 2 {
		t.Fatalf("completion calls = %d, want 2 (denial must not reach the model)", client.calls)
	}
	if store.Snapshot()["quota_denials"] != 1 {
		t.Fatalf("expected one recorded quota denial")
	}
}

func TestVerifyUpstreamError(t *testing.T) {
	client := &stubClient{configured: true, err: errors.New("upstream exploded")}
	router, _ := newTestRouter(t, testConfig(), client)

	resp := postVerify(router, `{"input":"claim"}`, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	payload := decodeErrorBody(t, resp)
	if payload.Error != "upstream exploded" {
		t.Fatalf("error = %q, want upstream message surfaced", payload.Error)
	}
}

func TestVerifyUpstreamTimeout(t *testing.T) {
	client := &stubClient{configured: true, err: context.DeadlineExceeded}
	router, _ := newTestRouter(t, testConfig(), client)

	resp := postVerify(router, `{"input":"claim"}`, nil)
	if resp.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", resp.Code)
	}
	payload := decodeErrorBody(t, resp)
	if payload.ErrorCode != string(httperror.ErrorCodeLLMTimeout) {
		t.Fatalf("error_code = %q", payload.ErrorCode)
	}
}

func TestVerifyMalformedModelOutputFallsBack(t *testing.T) {
	client := &stubClient{
		configured: true,
		text:       "I cannot comply.",
		usage:      llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
	router, _ := newTestRouter(t, testConfig(), client)

	resp := postVerify(router, `{"input":"claim"}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on malformed model output, got %d", resp.Code)
	}
	var payload VerifyResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Analysis.TruthScore != 75 {
		t.Fatalf("fallback truth score = %d, want 75", payload.Analysis.TruthScore)
	}
}

func TestVerifyMetricsSnapshot(t *testing.T) {
	client := &stubClient{
		configured: true,
		text:       `{"veridicita":50,"spiegazione":"x","fonti":[],"segnali_allerta":[],"contesto":"c"}`,
		usage:      llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
	router, store := newTestRouter(t, testConfig(), client)
	store.RecordSuccess(100*time.Millisecond, llm.Usage{InputTokens: 10, OutputTokens: 5})

	req := httptest.NewRequest(http.MethodGet, "/api/verify/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var snapshot map[string]float64
	if err := json.Unmarshal(resp.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snapshot["total_calls"] != 1 {
		t.Fatalf("total_calls = %v, want 1", snapshot["total_calls"])
	}
}

func TestPreviewClaim(t *testing.T) {
	long := strings.Repeat("à", 100)
	preview := previewClaim(long)
	if preview != strings.Repeat("à", 80)+"..." {
		t.Fatalf("unexpected preview: %q", preview)
	}
	if previewClaim("breve") != "breve" {
		t.Fatalf("short claims must pass through")
	}
}
