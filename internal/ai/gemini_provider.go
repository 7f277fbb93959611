package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumelift/internal/config"
	lifterrors "resumelift/internal/errors"
	"resumelift/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// opRuntime bundles one operation's resolved config with its breaker
type opRuntime struct {
	cfg     *config.OperationAIConfig
	breaker *CompletionBreaker
}

// GeminiProvider implements Provider for Google Gemini. It holds one client
// shared by all five pipeline operations, each with its own generation
// settings and circuit breaker.
type GeminiProvider struct {
	client       *genai.Client
	ops          map[string]*opRuntime
	modelBreaker *ModelCircuitBreaker
	audit        *AuditLog
	logger       *lifterrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider wired for all pipeline
// operations
func NewGeminiProvider(cfg *config.AIConfig, audit *AuditLog, logger *lifterrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, lifterrors.NewAIError(lifterrors.ErrCodeCompletionFailed,
			"Failed to create Gemini client", err)
	}

	ops := map[string]*opRuntime{
		OpGapAnalysis:  {cfg: &cfg.Gap},
		OpAssessment:   {cfg: &cfg.Assess},
		OpStrategy:     {cfg: &cfg.Strategy},
		OpWriteResume:  {cfg: &cfg.Write},
		OpTrackChanges: {cfg: &cfg.Track},
	}
	for name, op := range ops {
		op.breaker = NewCompletionBreaker(name, op.cfg, logger)
	}

	return &GeminiProvider{
		client:       client,
		ops:          ops,
		modelBreaker: NewModelCircuitBreaker(&cfg.Gap, logger),
		audit:        audit,
		logger:       logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	cfg := g.ops[OpGapAnalysis].cfg
	modelInfo := &ModelInfo{
		Name:      cfg.Model,
		Available: false,
	}

	// Callers pass their configured check timeout via the context
	// deadline; the fallback only applies to deadline-free contexts
	checkCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, defaultModelCheckTimeout)
		defer cancel()
	}

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, cfg.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", cfg.Model,
			"provider", cfg.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", cfg.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes a completion call with bounded retries and
// exponential backoff. Retry wraps the single call only, never the whole
// pipeline; completion calls are idempotent.
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, cfg *config.OperationAIConfig, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *cfg.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *cfg.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *cfg.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		// Timeouts and connection errors are both worth retrying
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// generate runs one completion call through the operation's circuit breaker
// and retry loop, records the raw exchange in the audit log, and returns the
// response text.
func (g *GeminiProvider) generate(ctx context.Context, operation, userPrompt, systemPrompt string, gc *genai.GenerateContentConfig) (string, *TokenUsage, error) {
	op := g.ops[operation]

	if *op.cfg.UseSystemPrompts && systemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := op.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operation, op.cfg, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, op.cfg.Model, genai.Text(userPrompt), gc)
		})
	})
	if err != nil {
		g.audit.Record(operation, op.cfg.Model, userPrompt, "", nil, err)
		return "", nil, lifterrors.NewAIError(lifterrors.ErrCodeCompletionFailed,
			"Completion failed for "+operation, err)
	}

	text := result.Text()
	tokenUsage := extractTokenUsage(result)
	g.audit.Record(operation, op.cfg.Model, userPrompt, text, tokenUsage, nil)

	return text, tokenUsage, nil
}

// executeJSONOperation is a generic helper to run structured completion
// calls with common tracing, circuit breaker, retry and parsing logic.
func executeJSONOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operation string,
	userPrompt string,
	systemPrompt string,
	gc *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	op := g.ops[operation]

	tracer := otel.Tracer("resumelift.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", op.cfg.Model),
		attribute.Float64("ai.temperature", float64(*op.cfg.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	text, tokenUsage, err := g.generate(ctx, operation, userPrompt, systemPrompt, gc)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, err
	}

	if err := json.Unmarshal([]byte(cleanFences(text)), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, lifterrors.NewAIError(lifterrors.ErrCodeMalformedCompletion,
			"Failed to parse completion for "+operation, err).
			WithContext("response_chars", len(text))
	}

	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// executeTextOperation runs a plain-text completion call with the same
// tracing and resilience as the structured variant
func (g *GeminiProvider) executeTextOperation(ctx context.Context, operation, userPrompt, systemPrompt string, gc *genai.GenerateContentConfig, spanAttributes ...attribute.KeyValue) (string, *TokenUsage, error) {
	op := g.ops[operation]

	tracer := otel.Tracer("resumelift.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", op.cfg.Model),
		attribute.Float64("ai.temperature", float64(*op.cfg.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	text, tokenUsage, err := g.generate(ctx, operation, userPrompt, systemPrompt, gc)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	text = strings.TrimSpace(cleanFences(text))
	if text == "" {
		err := lifterrors.NewAIError(lifterrors.ErrCodeMalformedCompletion,
			"Empty completion for "+operation, nil)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return text, tokenUsage, nil
}

// GapAnalysis implements Provider for the gap analysis call
func (g *GeminiProvider) GapAnalysis(ctx context.Context, input GapInput) (types.GapAnalysis, *TokenUsage, error) {
	systemPrompt, userTemplate := g.promptsFor(OpGapAnalysis)
	userPrompt := fmt.Sprintf(userTemplate,
		input.ResumeText,
		input.FresherSkills,
		input.IntermediateSkills,
		input.ExperiencedSkills,
		strings.Join(input.Vocabulary, ", "))

	output, tokenUsage, err := executeJSONOperation[types.GapAnalysis](
		g, ctx, OpGapAnalysis, userPrompt, systemPrompt,
		buildGapSchema(g.ops[OpGapAnalysis].cfg),
		attribute.Int("input.resume_length", len(input.ResumeText)),
	)
	if err != nil {
		return types.GapAnalysis{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Float64("output.experience_years", output.ExperienceYears),
			attribute.Int("output.skills_missing", len(output.SkillsMissing)),
		)
	}

	return output, tokenUsage, nil
}

// Assessment implements Provider for the assessment call
func (g *GeminiProvider) Assessment(ctx context.Context, input AssessmentInput) (types.Assessment, *TokenUsage, error) {
	systemPrompt, userTemplate := g.promptsFor(OpAssessment)
	gapJSON, err := json.MarshalIndent(input.Gap, "", "  ")
	if err != nil {
		return types.Assessment{}, nil, lifterrors.NewInternalError(errInternalEncode,
			"Failed to encode gap analysis", err)
	}
	userPrompt := fmt.Sprintf(userTemplate,
		input.ResumeText, string(gapJSON), input.MarketData, input.ScoringRubric)

	output, tokenUsage, err := executeJSONOperation[types.Assessment](
		g, ctx, OpAssessment, userPrompt, systemPrompt,
		buildAssessmentSchema(g.ops[OpAssessment].cfg),
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.String("input.level", string(input.Gap.Level)),
	)
	if err != nil {
		return types.Assessment{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Float64("output.ats_score", output.ATSScore),
			attribute.Float64("output.job_relevance_score", output.JobRelevanceScore),
		)
	}

	return output, tokenUsage, nil
}

// Strategy implements Provider for the improvement strategy call
func (g *GeminiProvider) Strategy(ctx context.Context, input StrategyInput) (types.ImprovementStrategy, *TokenUsage, error) {
	systemPrompt, userTemplate := g.promptsFor(OpStrategy)
	gapJSON, err := json.MarshalIndent(input.Gap, "", "  ")
	if err != nil {
		return types.ImprovementStrategy{}, nil, lifterrors.NewInternalError(errInternalEncode,
			"Failed to encode gap analysis", err)
	}
	userPrompt := fmt.Sprintf(userTemplate, string(gapJSON), input.RemoveCount, input.Curriculum)

	output, tokenUsage, err := executeJSONOperation[types.ImprovementStrategy](
		g, ctx, OpStrategy, userPrompt, systemPrompt,
		buildStrategySchema(g.ops[OpStrategy].cfg),
		attribute.Int("input.remove_count", input.RemoveCount),
	)
	if err != nil {
		return types.ImprovementStrategy{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.enhancements", len(output.SkillsToEnhance)),
			attribute.Int("output.additions", len(output.SkillsToAdd)),
			attribute.Int("output.projects", len(output.ProjectsToAdd)),
		)
	}

	return output, tokenUsage, nil
}

// WriteResume implements Provider for the plain-text resume writing call
func (g *GeminiProvider) WriteResume(ctx context.Context, input WriteInput) (string, *TokenUsage, error) {
	systemPrompt, userTemplate := g.promptsFor(OpWriteResume)
	strategyJSON, err := json.MarshalIndent(input.Strategy, "", "  ")
	if err != nil {
		return "", nil, lifterrors.NewInternalError(errInternalEncode,
			"Failed to encode strategy", err)
	}
	userPrompt := fmt.Sprintf(userTemplate,
		string(input.Level), input.CurrentYear, formatLinks(input.Links),
		string(strategyJSON), input.ResumeText)

	return g.executeTextOperation(ctx, OpWriteResume, userPrompt, systemPrompt,
		buildWriteConfig(g.ops[OpWriteResume].cfg),
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.links", len(input.Links)),
		attribute.String("input.level", string(input.Level)),
	)
}

// TrackChanges implements Provider for the change tracking call
func (g *GeminiProvider) TrackChanges(ctx context.Context, input TrackInput) (types.ChangeTracking, *TokenUsage, error) {
	systemPrompt, userTemplate := g.promptsFor(OpTrackChanges)
	strategyJSON, err := json.MarshalIndent(input.Strategy, "", "  ")
	if err != nil {
		return types.ChangeTracking{}, nil, lifterrors.NewInternalError(errInternalEncode,
			"Failed to encode strategy", err)
	}
	gapJSON, err := json.MarshalIndent(input.Gap, "", "  ")
	if err != nil {
		return types.ChangeTracking{}, nil, lifterrors.NewInternalError(errInternalEncode,
			"Failed to encode gap analysis", err)
	}
	userPrompt := fmt.Sprintf(userTemplate,
		string(strategyJSON), string(gapJSON), input.ScoringRubric, input.ImprovedText)

	output, tokenUsage, err := executeJSONOperation[types.ChangeTracking](
		g, ctx, OpTrackChanges, userPrompt, systemPrompt,
		buildTrackingSchema(g.ops[OpTrackChanges].cfg),
		attribute.Int("input.improved_length", len(input.ImprovedText)),
	)
	if err != nil {
		return types.ChangeTracking{}, nil, err
	}

	return output, tokenUsage, nil
}

// GetCircuitBreakerStats returns per-operation circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := make(map[string]any, len(g.ops)+2)
	healthy := true
	for name, op := range g.ops {
		stats[name] = op.breaker.GetStats()
		healthy = healthy && op.breaker.IsHealthy()
	}
	stats["model_operations"] = g.modelBreaker.GetModelStats()
	stats["overall_healthy"] = healthy && g.modelBreaker.IsModelHealthy()
	return stats
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// promptsFor returns the resolved system prompt and user prompt template
// for an operation, prioritizing file content over config over defaults
func (g *GeminiProvider) promptsFor(operation string) (string, string) {
	loaded := config.GetPromptsForOperation(operation)
	opCfg := g.ops[operation].cfg

	return resolvePrompt(loaded.System, opCfg.CustomPrompts.System, defaultSystemPrompt(operation)),
		resolvePrompt(loaded.User, opCfg.CustomPrompts.User, defaultUserPrompt(operation))
}

func defaultSystemPrompt(operation string) string {
	switch operation {
	case OpGapAnalysis:
		return DefaultSystemPrompts.GapAnalysis
	case OpAssessment:
		return DefaultSystemPrompts.Assessment
	case OpStrategy:
		return DefaultSystemPrompts.Strategy
	case OpWriteResume:
		return DefaultSystemPrompts.WriteResume
	case OpTrackChanges:
		return DefaultSystemPrompts.TrackChanges
	}
	return ""
}

func defaultUserPrompt(operation string) string {
	switch operation {
	case OpGapAnalysis:
		return DefaultUserPrompts.GapAnalysis
	case OpAssessment:
		return DefaultUserPrompts.Assessment
	case OpStrategy:
		return DefaultUserPrompts.Strategy
	case OpWriteResume:
		return DefaultUserPrompts.WriteResume
	case OpTrackChanges:
		return DefaultUserPrompts.TrackChanges
	}
	return ""
}

// formatLinks renders discovered hyperlinks for the writing prompt
func formatLinks(links []types.Link) string {
	if len(links) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, l := range links {
		if l.AnchorText != "" {
			fmt.Fprintf(&b, "- %s: %s\n", l.AnchorText, l.URL)
		} else {
			fmt.Fprintf(&b, "- %s\n", l.URL)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// cleanFences strips markdown code fences some models wrap around output
func cleanFences(s string) string {
	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// defaultModelCheckTimeout bounds model availability checks when the caller
// supplies no deadline of its own
const defaultModelCheckTimeout = 10 * time.Second

const errInternalEncode = "INTERNAL_ENCODE_FAILED"
