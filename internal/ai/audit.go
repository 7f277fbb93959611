package ai

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"resumelift/internal/errors"
)

// AuditLog appends one NDJSON line per completion call. Audit failures are
// logged but never break the request flow.
type AuditLog struct {
	mu     sync.Mutex
	file   *os.File
	logger *errors.Logger
}

type auditRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Operation    string    `json:"operation"`
	Model        string    `json:"model"`
	PromptChars  int       `json:"prompt_chars"`
	Response     string    `json:"response,omitempty"`
	InputTokens  int64     `json:"input_tokens,omitempty"`
	OutputTokens int64     `json:"output_tokens,omitempty"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}

// NewAuditLog opens the append-only audit file under dir. An empty dir
// disables auditing and returns nil.
func NewAuditLog(dir string, logger *errors.Logger) (*AuditLog, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to create audit directory", err).WithContext("dir", dir)
	}

	path := filepath.Join(dir, "completions.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to open audit log", err).WithContext("path", path)
	}

	return &AuditLog{file: f, logger: logger}, nil
}

// Record appends one completion call to the audit log. Safe to call on a
// nil receiver when auditing is disabled.
func (a *AuditLog) Record(operation, model, prompt, response string, usage *TokenUsage, callErr error) {
	if a == nil {
		return
	}

	rec := auditRecord{
		Timestamp:   time.Now().UTC(),
		Operation:   operation,
		Model:       model,
		PromptChars: len(prompt),
		Response:    response,
		Success:     callErr == nil,
	}
	if usage != nil {
		rec.InputTokens = usage.InputTokens
		rec.OutputTokens = usage.OutputTokens
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		a.logger.Warn("Failed to marshal audit record", "operation", operation, "error", err.Error())
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.file.Write(append(line, '\n')); err != nil {
		a.logger.Warn("Failed to write audit record", "operation", operation, "error", err.Error())
	}
}

// Close closes the underlying audit file
func (a *AuditLog) Close() error {
	if a == nil || a.file == nil {
		return nil
	}
	return a.file.Close()
}
