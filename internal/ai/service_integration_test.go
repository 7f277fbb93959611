package ai

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resumelift/internal/config"
	"resumelift/internal/errors"
)

// Helper functions to create pointers for test values
func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func int32Ptr(i int32) *int32                { return &i }
func float32Ptr(f float32) *float32          { return &f }
func boolPtr(b bool) *bool                   { return &b }

var testLogger = errors.NewLogger(slog.LevelDebug)

// TestOperationSpecificConfigDerivation verifies that per-operation
// configurations are correctly derived, with fallbacks to the global AI
// configuration.
func TestOperationSpecificConfigDerivation(t *testing.T) {
	cfg := &config.Config{
		AI: config.AIConfig{
			Provider:         "gemini",
			APIKey:           "global-api-key",
			Model:            "gemini-2.0-flash",
			Temperature:      0.1,
			MaxOutputTokens:  1000,
			Timeout:          60 * time.Second,
			MaxRetries:       5,
			UseSystemPrompts: true,
			Gap: config.OperationAIConfig{
				Model:           "gap-specific-model",
				Temperature:     float32Ptr(0.0),
				MaxOutputTokens: int32Ptr(800),
			},
			Assess: config.OperationAIConfig{
				MaxRetries: intPtr(1),
			},
			Write: config.OperationAIConfig{
				Temperature:     float32Ptr(0.2),
				MaxOutputTokens: int32Ptr(3500),
				Timeout:         timePtr(120 * time.Second),
			},
		},
	}

	testCases := []struct {
		name      string
		getConfig func() config.OperationAIConfig
		check     func(t *testing.T, op config.OperationAIConfig)
	}{
		{
			name:      "GapConfigDerivation",
			getConfig: cfg.GetGapConfig,
			check: func(t *testing.T, op config.OperationAIConfig) {
				if op.Model != "gap-specific-model" {
					t.Errorf("Model = %q, want gap-specific-model", op.Model)
				}
				if *op.Temperature != 0.0 {
					t.Errorf("Temperature = %v, want 0.0", *op.Temperature)
				}
				if *op.MaxOutputTokens != 800 {
					t.Errorf("MaxOutputTokens = %v, want 800", *op.MaxOutputTokens)
				}
				// Fallbacks from global
				if op.APIKey != "global-api-key" {
					t.Errorf("APIKey = %q, want global fallback", op.APIKey)
				}
				if *op.MaxRetries != 5 {
					t.Errorf("MaxRetries = %v, want global fallback 5", *op.MaxRetries)
				}
			},
		},
		{
			name:      "AssessConfigDerivation",
			getConfig: cfg.GetAssessConfig,
			check: func(t *testing.T, op config.OperationAIConfig) {
				if *op.MaxRetries != 1 {
					t.Errorf("MaxRetries = %v, want 1", *op.MaxRetries)
				}
				if op.Model != "gemini-2.0-flash" {
					t.Errorf("Model = %q, want global fallback", op.Model)
				}
				if *op.Timeout != 60*time.Second {
					t.Errorf("Timeout = %v, want global fallback", *op.Timeout)
				}
			},
		},
		{
			name:      "WriteConfigDerivation",
			getConfig: cfg.GetWriteConfig,
			check: func(t *testing.T, op config.OperationAIConfig) {
				if *op.Temperature != 0.2 {
					t.Errorf("Temperature = %v, want 0.2", *op.Temperature)
				}
				if *op.MaxOutputTokens != 3500 {
					t.Errorf("MaxOutputTokens = %v, want 3500", *op.MaxOutputTokens)
				}
				if *op.Timeout != 120*time.Second {
					t.Errorf("Timeout = %v, want 120s", *op.Timeout)
				}
			},
		},
		{
			name:      "StrategyFullFallback",
			getConfig: cfg.GetStrategyConfig,
			check: func(t *testing.T, op config.OperationAIConfig) {
				if op.Model != "gemini-2.0-flash" || op.APIKey != "global-api-key" {
					t.Error("Strategy config should inherit all global values")
				}
				if *op.UseSystemPrompts != true {
					t.Error("UseSystemPrompts should inherit global true")
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, tc.getConfig())
		})
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	cfg := &config.AIConfig{Provider: "openai"}

	_, err := NewService(cfg, "", testLogger)
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "Unsupported AI provider") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuditLogRoundTrip(t *testing.T) {
	dir := t.TempDir()

	audit, err := NewAuditLog(dir, testLogger)
	if err != nil {
		t.Fatalf("NewAuditLog() error = %v", err)
	}

	audit.Record(OpGapAnalysis, "gemini-2.0-flash", "prompt text", `{"ok":true}`,
		&TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil)
	audit.Record(OpWriteResume, "gemini-2.0-flash", "prompt", "", nil, os.ErrDeadlineExceeded)

	if err := audit.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "completions.jsonl"))
	if err != nil {
		t.Fatalf("reading audit file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("audit file has %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"operation":"gap"`) || !strings.Contains(lines[0], `"success":true`) {
		t.Errorf("first record malformed: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"success":false`) {
		t.Errorf("second record should be a failure: %s", lines[1])
	}
}

func TestAuditLogDisabled(t *testing.T) {
	audit, err := NewAuditLog("", testLogger)
	if err != nil {
		t.Fatalf("NewAuditLog(\"\") error = %v", err)
	}
	if audit != nil {
		t.Fatal("empty dir should disable auditing")
	}

	// Nil receiver must be safe
	audit.Record(OpGapAnalysis, "m", "p", "r", nil, nil)
	if err := audit.Close(); err != nil {
		t.Errorf("Close on nil audit: %v", err)
	}
}
