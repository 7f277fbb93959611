package server

import (
	"time"

	"resumelift/internal/ai"
	"resumelift/internal/config"
	"resumelift/internal/doccache"
	lifterrors "resumelift/internal/errors"
	"resumelift/internal/extract"
	"resumelift/internal/pipeline"
	"resumelift/internal/refdata"
	"resumelift/internal/types"
)

// AnalyzeRequest is the body for the analyze endpoint
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse wraps the merged phase 1 output
type AnalyzeResponse struct {
	FullAnalysis *types.FullAnalysis `json:"full_analysis"`
}

// ResumeData resubmits an extracted document inline instead of by session ID
type ResumeData struct {
	Text  string       `json:"text"`
	Links []types.Link `json:"links"`
}

// GenerateRequest is the body for the generate endpoint. Either SessionID
// or ResumeData identifies the extracted document.
type GenerateRequest struct {
	SessionID    string              `json:"session_id,omitempty"`
	ResumeData   *ResumeData         `json:"resume_data,omitempty"`
	FullAnalysis *types.FullAnalysis `json:"full_analysis"`
}

// ExtractResponse is the body returned by the extract endpoint
type ExtractResponse struct {
	SessionID string       `json:"session_id"`
	Text      string       `json:"text"`
	Links     []types.Link `json:"links"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Server holds configuration and the pipeline components for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Pipeline components
	AIService *ai.Service
	Store     *refdata.Store
	DocCache  *doccache.Cache
	Extractor *extract.Extractor
	Pipeline  *pipeline.Pipeline

	// Logger
	Logger *lifterrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a Server instance and wires the pipeline: reference
// data store, AI service, document cache and extractor. Loading the
// reference data is fatal here, not at first request.
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *lifterrors.Logger) (*Server, error) {
	store, err := refdata.Load(appCfg.App.DataDir, logger)
	if err != nil {
		return nil, err
	}

	aiService, err := ai.NewService(&appCfg.AI, appCfg.App.AuditDir, logger)
	if err != nil {
		return nil, err
	}

	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		AIService:      aiService,
		Store:          store,
		DocCache:       doccache.New(appCfg.App.SessionTTL, appCfg.App.SessionSweep, logger),
		Extractor:      extract.NewExtractor(appCfg.App.MinExtractChars, logger),
		Pipeline:       pipeline.New(aiService.Provider, store, appCfg.AI.ScoringRubric, logger),
		Logger:         logger,
	}, nil
}
