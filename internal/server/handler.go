package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	lifterrors "resumelift/internal/errors"
	"resumelift/internal/observability"
	"resumelift/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createExtractHandler wraps the document extraction handler with
// observability. The uploaded file goes through the extractor and the
// resulting document is cached under a fresh session ID.
func (s *Server) createExtractHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelift.api")
		ctx, span := tracer.Start(ctx, "api.extract")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(s.MaxRequestSize); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid multipart request", err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing file", "multipart field 'file' is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Warn("Failed to close uploaded file", "error", err.Error())
			}
		}()

		data, err := io.ReadAll(file)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to read uploaded file", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.filename", header.Filename),
			attribute.Int("request.file_size", len(data)),
			attribute.String("operation", "extract"),
		)

		metrics := om.GetMetrics()
		doc, err := s.Extractor.Extract(header.Filename, data)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "extraction"))
			metrics.RecordBusinessMetric(ctx, "text_extracted", false, om,
				attribute.String("filename", header.Filename))
			writeAppError(w, err)
			return
		}

		sessionID := s.DocCache.Put(doc)

		metrics.RecordBusinessMetric(ctx, "text_extracted", true, om,
			attribute.Int("text_length", len(doc.Text)),
			attribute.Int("links_found", len(doc.Links)))
		metrics.RecordSessionMetrics(ctx, 1, 0, int64(s.DocCache.Len()), om)

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.text_length", len(doc.Text)),
			attribute.Int("response.links", len(doc.Links)),
		)

		writeJSON(w, ExtractResponse{
			SessionID: sessionID,
			Text:      doc.Text,
			Links:     doc.Links,
		})
	}
}

// createAnalyzeHandler wraps the phase 1 handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelift.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Text) == "" {
			writeErrorResponse(w, "Missing resume text", "text field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.text_length", len(req.Text)),
			attribute.String("operation", "analyze"),
		)

		metrics := om.GetMetrics()
		var analysis *types.FullAnalysis
		err := metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
			var pipelineErr error
			analysis, pipelineErr = s.Pipeline.AnalyzeResume(ctx, req.Text)
			return &observability.AIOperationResult{Error: pipelineErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			s.recordPipelineFailure(ctx, metrics, om, "resume_analyzed", err)
			writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_analyzed", true, om,
			attribute.String("level", string(analysis.Gap.Level)),
			attribute.Int("skills_missing", len(analysis.Gap.SkillsMissing)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("response.level", string(analysis.Gap.Level)),
			attribute.Float64("response.ats_score", analysis.Assessment.ATSScore),
		)

		writeJSON(w, AnalyzeResponse{FullAnalysis: analysis})
	}
}

// createGenerateHandler wraps the phase 2 handler with observability
func (s *Server) createGenerateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelift.api")
		ctx, span := tracer.Start(ctx, "api.generate")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req GenerateRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if req.FullAnalysis == nil {
			writeErrorResponse(w, "Missing analysis", "full_analysis field is required", http.StatusBadRequest)
			return
		}

		doc, err := s.resolveDocument(&req)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "session"))
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("request.by_session", req.SessionID != ""),
			attribute.Int("request.text_length", len(doc.Text)),
			attribute.String("operation", "generate"),
		)

		metrics := om.GetMetrics()
		var result *types.PipelineResult
		err = metrics.TrackAIOperationWithTokens(ctx, "generate", func(ctx context.Context) *observability.AIOperationResult {
			var pipelineErr error
			result, pipelineErr = s.Pipeline.GenerateImprovedResume(ctx, doc, req.FullAnalysis)
			return &observability.AIOperationResult{Error: pipelineErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			s.recordPipelineFailure(ctx, metrics, om, "resume_improved", err)
			writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_improved", true, om,
			attribute.Int("output.improved_length", len(result.ImprovedText)),
			attribute.Float64("ats.score", result.Tracking.ATSScore))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.improved_length", len(result.ImprovedText)),
			attribute.Float64("response.ats_score", result.Tracking.ATSScore),
		)

		writeJSON(w, result)
	}
}

// resolveDocument looks up the extracted document by session ID, or accepts
// it inline when the caller resubmits text and links
func (s *Server) resolveDocument(req *GenerateRequest) (*types.ExtractedDocument, error) {
	if req.SessionID != "" {
		return s.DocCache.Get(req.SessionID)
	}

	if req.ResumeData != nil && strings.TrimSpace(req.ResumeData.Text) != "" {
		return &types.ExtractedDocument{
			Text:  req.ResumeData.Text,
			Links: req.ResumeData.Links,
		}, nil
	}

	return nil, lifterrors.NewValidationError(lifterrors.ErrCodeInvalidRequest,
		"Either session_id or resume_data with text is required", nil)
}

// recordPipelineFailure records the failure business metric, and counts a
// separate gate-failure metric when a validation gate rejected a stage
func (s *Server) recordPipelineFailure(ctx context.Context, metrics *observability.Metrics, om *observability.ObservabilityManager, metricType string, err error) {
	metrics.RecordBusinessMetric(ctx, metricType, false, om,
		attribute.String("error", err.Error()))

	var appErr *lifterrors.AppError
	if errors.As(err, &appErr) && appErr.Code == lifterrors.ErrCodeValidationFailed {
		attrs := []attribute.KeyValue{}
		if stage, ok := appErr.Context["stage"].(string); ok {
			attrs = append(attrs, attribute.String("stage", stage))
		}
		metrics.RecordBusinessMetric(ctx, "validation_failed", false, om, attrs...)
	}
}
