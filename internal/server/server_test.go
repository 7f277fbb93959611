package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumelift/internal/ai"
	"resumelift/internal/config"
	"resumelift/internal/doccache"
	lifterrors "resumelift/internal/errors"
	"resumelift/internal/types"
)

func testServer() *Server {
	return &Server{
		APIKeys: map[string]bool{"valid-key": true},
		Logger:  lifterrors.NewLogger(slog.LevelError),
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"ValidAPIKeyHeader", "X-API-Key", "valid-key", http.StatusOK},
		{"ValidBearerToken", "Authorization", "Bearer valid-key", http.StatusOK},
		{"InvalidKey", "X-API-Key", "wrong-key", http.StatusUnauthorized},
		{"MissingKey", "", "", http.StatusUnauthorized},
	}

	s := testServer()
	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/analyze-resume", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthMiddlewareDisabledWithoutKeys(t *testing.T) {
	s := testServer()
	s.APIKeys = map[string]bool{}
	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-resume", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no keys configured", rec.Code)
	}
}

// staticModelProvider serves a scripted model info result for health tests
type staticModelProvider struct {
	info *ai.ModelInfo
}

func (p *staticModelProvider) GapAnalysis(context.Context, ai.GapInput) (types.GapAnalysis, *ai.TokenUsage, error) {
	return types.GapAnalysis{}, nil, nil
}

func (p *staticModelProvider) Assessment(context.Context, ai.AssessmentInput) (types.Assessment, *ai.TokenUsage, error) {
	return types.Assessment{}, nil, nil
}

func (p *staticModelProvider) Strategy(context.Context, ai.StrategyInput) (types.ImprovementStrategy, *ai.TokenUsage, error) {
	return types.ImprovementStrategy{}, nil, nil
}

func (p *staticModelProvider) WriteResume(context.Context, ai.WriteInput) (string, *ai.TokenUsage, error) {
	return "", nil, nil
}

func (p *staticModelProvider) TrackChanges(context.Context, ai.TrackInput) (types.ChangeTracking, *ai.TokenUsage, error) {
	return types.ChangeTracking{}, nil, nil
}

func (p *staticModelProvider) GetModelInfo(context.Context) *ai.ModelInfo { return p.info }
func (p *staticModelProvider) Close() error                               { return nil }

func healthTestServer(t *testing.T, info *ai.ModelInfo) *Server {
	t.Helper()
	s := testServer()
	s.AIService = &ai.Service{Provider: &staticModelProvider{info: info}}
	s.DocCache = doccache.New(time.Minute, 0, nil)
	t.Cleanup(s.DocCache.Close)
	s.AppConfig = &config.Config{}
	s.AppConfig.Observability.HealthCheck.Timeout = time.Second
	return s
}

func TestHealthHandlerDegraded(t *testing.T) {
	s := healthTestServer(t, &ai.ModelInfo{Available: false, Error: "model probe failed"})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", body["status"])
	}
}

func TestHealthHandlerHealthy(t *testing.T) {
	s := healthTestServer(t, &ai.ModelInfo{Name: "gemini-2.0-flash", Available: true})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
	if body["market_insights_mode"] != "cached" {
		t.Errorf("market_insights_mode = %v, want cached", body["market_insights_mode"])
	}
}

func TestGetModelCheckTimeout(t *testing.T) {
	s := testServer()
	s.AppConfig = &config.Config{}
	s.AppConfig.Observability.HealthCheck.Timeout = 15 * time.Second

	if got := s.getModelCheckTimeout(); got != 15*time.Second {
		t.Errorf("fallback timeout = %v, want 15s", got)
	}

	s.AppConfig.Observability.HealthCheck.AIModelCheckTimeout = 10 * time.Second
	if got := s.getModelCheckTimeout(); got != 10*time.Second {
		t.Errorf("timeout = %v, want the configured model check value 10s", got)
	}
}

func TestWriteAppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"ValidationGate",
			lifterrors.NewValidationError(lifterrors.ErrCodeValidationFailed, "gate failed", nil),
			http.StatusUnprocessableEntity,
			"VALIDATION_FAILED",
		},
		{
			"SessionExpired",
			lifterrors.NewValidationError(lifterrors.ErrCodeSessionNotFound, "session gone", nil),
			http.StatusNotFound,
			"SESSION_NOT_FOUND",
		},
		{
			"ExtractionFailure",
			lifterrors.NewValidationError(lifterrors.ErrCodeExtractionFailed, "empty file", nil),
			http.StatusBadRequest,
			"EXTRACTION_FAILED",
		},
		{
			"CompletionUnavailable",
			lifterrors.NewAIError(lifterrors.ErrCodeCompletionFailed, "provider down", nil),
			http.StatusBadGateway,
			"COMPLETION_UNAVAILABLE",
		},
		{
			"PlainError",
			http.ErrBodyNotAllowed,
			http.StatusInternalServerError,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeAppError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestResolveDocumentInline(t *testing.T) {
	s := testServer()

	doc, err := s.resolveDocument(&GenerateRequest{
		ResumeData: &ResumeData{
			Text:  "resume text",
			Links: []types.Link{{URL: "https://github.com/janedoe"}},
		},
	})
	if err != nil {
		t.Fatalf("resolveDocument() error = %v", err)
	}
	if doc.Text != "resume text" || len(doc.Links) != 1 {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestResolveDocumentMissingInput(t *testing.T) {
	s := testServer()

	_, err := s.resolveDocument(&GenerateRequest{})
	if err == nil {
		t.Fatal("expected error when neither session nor resume data given")
	}
	appErr, ok := err.(*lifterrors.AppError)
	if !ok || appErr.Code != lifterrors.ErrCodeInvalidRequest {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(60, 2, nil)
	defer rl.Close()

	if !rl.Allow("client") || !rl.Allow("client") {
		t.Fatal("burst requests should be allowed")
	}
	if rl.Allow("client") {
		t.Error("request beyond burst should be rejected")
	}
	// A different client has its own bucket
	if !rl.Allow("other") {
		t.Error("independent client should be allowed")
	}
}

func TestGetRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-resume", nil)
	req.Header.Set("X-API-Key", "abc")
	req.RemoteAddr = "10.0.0.7:12345"

	if got := getRateLimitKey(req, true, true); got != "api:abc" {
		t.Errorf("key = %q, want api:abc", got)
	}
	if got := getRateLimitKey(req, false, true); got != "ip:10.0.0.7" {
		t.Errorf("key = %q, want ip:10.0.0.7", got)
	}
	if got := getRateLimitKey(req, false, false); got != "" {
		t.Errorf("key = %q, want empty", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"RemoteAddr", "192.168.1.5:443", nil, "192.168.1.5"},
		{"XForwardedFor", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "203.0.113.9"},
		{"XRealIP", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{"InvalidForwardedFallsThrough", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
