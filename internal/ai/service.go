package ai

import (
	"context"
	"fmt"

	"resumelift/internal/config"
	"resumelift/internal/errors"
)

// Service bundles the completion provider with its audit log
type Service struct {
	Provider Provider // Exported for access from server package
	audit    *AuditLog
	logger   *errors.Logger
}

// NewService creates the AI service from the resolved AI configuration.
// auditDir enables the append-only completion audit log; empty disables it.
func NewService(cfg *config.AIConfig, auditDir string, logger *errors.Logger) (*Service, error) {
	audit, err := NewAuditLog(auditDir, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"audit_enabled", audit != nil)

	var provider Provider
	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, audit, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeCompletionFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		audit:    audit,
		logger:   logger,
	}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases the provider and the audit log
func (s *Service) Close() error {
	if err := s.Provider.Close(); err != nil {
		return err
	}
	return s.audit.Close()
}
