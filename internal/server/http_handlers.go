package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	lifterrors "resumelift/internal/errors"
)

// getModelCheckTimeout returns the configured timeout for the AI model
// availability probe, falling back to the general health check timeout
func (s *Server) getModelCheckTimeout() time.Duration {
	hc := s.AppConfig.Observability.HealthCheck
	if hc.AIModelCheckTimeout > 0 {
		return hc.AIModelCheckTimeout
	}
	return hc.Timeout
}

// indexHandler lists the available endpoints
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]any{
		"service": "resumelift",
		"version": s.Version,
		"endpoints": map[string]string{
			"GET /api/health":                    "Health check including AI model status",
			"GET /stats":                         "Server statistics",
			"POST /api/extract-text":             "Extract text and links from an uploaded resume (multipart)",
			"POST /api/analyze-resume":           "Run the gap analysis and assessment phase",
			"POST /api/generate-improved-resume": "Generate an improved resume from a prior analysis",
		},
	})
}

// healthHandler provides a health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumelift",
		"version": s.Version,
		// Market insights come from the pre-analyzed data files loaded
		// at startup, never from live calls
		"market_insights_mode": "cached",
		"active_sessions":      s.DocCache.Len(),
	}

	aiStatus := s.checkAIModelHealth()
	response["ai_model"] = aiStatus

	overallHealthy := true
	if modelInfo, ok := aiStatus.(map[string]any); ok {
		if available, exists := modelInfo["available"]; exists {
			if avail, ok := available.(bool); ok && !avail {
				overallHealthy = false
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		// Content-Type must be set before the status line goes out
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJSON(w, response)
}

// checkAIModelHealth checks the availability of the configured model. All
// five pipeline operations share one provider client, so one probe covers
// them.
func (s *Server) checkAIModelHealth() any {
	timeout := s.getModelCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	info := s.AIService.GetModelInfo(ctx)
	if info == nil {
		return map[string]any{
			"available": false,
			"error":     "model info unavailable",
		}
	}

	// Flatten through JSON so the handler does not depend on the
	// provider's concrete type
	raw, err := json.Marshal(info)
	if err != nil {
		return map[string]any{
			"available": false,
			"error":     fmt.Sprintf("failed to encode model info: %v", err),
		}
	}
	var status map[string]any
	if err := json.Unmarshal(raw, &status); err != nil || status == nil {
		return map[string]any{
			"available": false,
			"error":     "model info unavailable",
		}
	}
	return status
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumelift",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"sessions": map[string]any{
			"active":      s.DocCache.Len(),
			"ttl_seconds": int(s.AppConfig.App.SessionTTL.Seconds()),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSON writes a JSON response with a 200 status unless the caller has
// already written a header
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeAppError maps the pipeline error taxonomy onto HTTP statuses
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *lifterrors.AppError
	if !errors.As(err, &appErr) {
		writeErrorResponse(w, "Internal error", err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case lifterrors.ErrCodeInvalidRequest, lifterrors.ErrCodeExtractionFailed, lifterrors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case lifterrors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case lifterrors.ErrCodeValidationFailed, lifterrors.ErrCodeMalformedCompletion:
		status = http.StatusUnprocessableEntity
	case lifterrors.ErrCodeCompletionFailed, lifterrors.ErrCodeAITimeout:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	}
	if appErr.Cause != nil {
		response.Message = appErr.Cause.Error()
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
