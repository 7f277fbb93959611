package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{"Int64Value", int64(42), 42, false},
		{"Float64Value", float64(42.0), 42, false},
		{"StringValue", "42", 42, false},
		{"InvalidString", "not-a-number", 0, true},
		{"UnsupportedType", []string{"42"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVersionValue() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("parseVersionValue() = %d, want %d", result, tt.expected)
			}
		})
	}
}

func TestApplyGeminiKeyToConfig(t *testing.T) {
	config := &Config{}

	applyGeminiKeyToConfig(config, "test-gemini-key")

	if config.AI.APIKey != "test-gemini-key" {
		t.Errorf("global APIKey = %q", config.AI.APIKey)
	}
	for name, got := range map[string]string{
		"gap":      config.AI.Gap.APIKey,
		"assess":   config.AI.Assess.APIKey,
		"strategy": config.AI.Strategy.APIKey,
		"write":    config.AI.Write.APIKey,
		"track":    config.AI.Track.APIKey,
	} {
		if got != "test-gemini-key" {
			t.Errorf("%s APIKey = %q, want vault key", name, got)
		}
	}
}

func TestApplyGeminiKeyToConfigWithExistingKeys(t *testing.T) {
	config := &Config{
		AI: AIConfig{
			Write: OperationAIConfig{APIKey: "existing-write-key"},
		},
	}

	applyGeminiKeyToConfig(config, "test-gemini-key")

	if config.AI.Write.APIKey != "existing-write-key" {
		t.Errorf("explicit per-operation key was overwritten: %q", config.AI.Write.APIKey)
	}
	if config.AI.Gap.APIKey != "test-gemini-key" {
		t.Errorf("gap APIKey = %q, want vault key", config.AI.Gap.APIKey)
	}
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("TokenFromConfig", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"})
		if err != nil {
			t.Fatalf("resolveVaultToken() error = %v", err)
		}
		if token != "direct-token" {
			t.Errorf("token = %q", token)
		}
	})

	t.Run("TokenFromFile", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		if err := os.WriteFile(tokenFile, []byte("  file-token  \n"), 0o600); err != nil {
			t.Fatal(err)
		}

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		if err != nil {
			t.Fatalf("resolveVaultToken() error = %v", err)
		}
		if token != "file-token" {
			t.Errorf("token = %q, want trimmed file content", token)
		}
	})

	t.Run("MissingTokenFile", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"})
		if err == nil || !strings.Contains(err.Error(), "failed to read vault token file") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("NoTokenProvided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		if err == nil || !strings.Contains(err.Error(), "vault token is required") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("EmptyTokenFromFile", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "empty-token")
		if err := os.WriteFile(tokenFile, []byte("   \n  \n"), 0o600); err != nil {
			t.Fatal(err)
		}

		_, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		if err == nil || !strings.Contains(err.Error(), "vault token is required") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestApplyTLSCertContent(t *testing.T) {
	config := &Config{}
	tlsData := &VaultSecret{
		Data: map[string]any{
			"cert": "cert-content",
			"key":  "key-content",
			"ca":   "ca-content",
		},
	}

	certCount, err := applyTLSCertContent(config, tlsData)
	if err != nil {
		t.Fatalf("applyTLSCertContent() error = %v", err)
	}
	if certCount != 3 {
		t.Errorf("loaded %d certificates, want 3", certCount)
	}
	if config.Server.TLS.CertContent != "cert-content" ||
		config.Server.TLS.KeyContent != "key-content" ||
		config.Server.TLS.CAContent != "ca-content" {
		t.Error("certificate content not applied to TLS config")
	}
}

func TestApplyTLSCertContentPartial(t *testing.T) {
	config := &Config{}
	tlsData := &VaultSecret{Data: map[string]any{"cert": "cert-content"}}

	certCount, err := applyTLSCertContent(config, tlsData)
	if err != nil {
		t.Fatalf("applyTLSCertContent() error = %v", err)
	}
	if certCount != 1 {
		t.Errorf("loaded %d certificates, want 1", certCount)
	}
	if config.Server.TLS.KeyContent != "" || config.Server.TLS.CAContent != "" {
		t.Error("missing fields should stay empty")
	}
}

func TestApplyTLSCertContentRejectsFileReferences(t *testing.T) {
	config := &Config{}
	tlsData := &VaultSecret{Data: map[string]any{"cert_file": "/path/to/cert"}}

	_, err := applyTLSCertContent(config, tlsData)
	if err == nil || !strings.Contains(err.Error(), "cert_file") {
		t.Errorf("expected cert_file rejection, got %v", err)
	}
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{Vault: VaultConfig{Enabled: false}}

	if err := ApplyVaultSecrets(config, nil); err != nil {
		t.Errorf("ApplyVaultSecrets() with disabled vault: %v", err)
	}
}

func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewVaultClient() error = %v", err)
	}
	if client != nil {
		t.Error("disabled vault should yield a nil client")
	}
}

func TestGetSecretV2NilClient(t *testing.T) {
	var vc *VaultClient
	if _, err := vc.GetSecretV2("secret/data/foo"); err == nil {
		t.Error("expected error from nil vault client")
	}
}
