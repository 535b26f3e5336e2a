package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"resumeforge/internal/ai"
	"resumeforge/internal/observability"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// createParseFileHandler turns an uploaded resume file (PDF or image) into a
// normalized resume document via the vision model.
func (s *Server) createParseFileHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.parse_file")
		defer span.End()

		input, err := parseUploadRequest(r, s.MaxRequestSize)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid upload", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.file_size", len(input.Data)),
			attribute.String("request.mime_type", input.MimeType),
			attribute.String("operation", "parseFile"),
		)

		parseFileConfig := s.AppConfig.GetParseFileConfig()
		aiService, err := s.newAIService(&parseFileConfig, "parseFile", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.ParseOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "parseFile", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.ParseFile(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, om,
				attribute.String("source", "file"))
			writeAppError(w, s.Logger, err, "Failed to parse resume file")
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, om,
			attribute.String("source", "file"))
		span.SetAttributes(attribute.Bool("success", true))

		writeJSONResponse(w, span, result)
	}
}

// createParseTextHandler turns pasted resume text into a normalized resume
// document.
func (s *Server) createParseTextHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.parse_text")
		defer span.End()

		var req ParseTextRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Text) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "text field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.text_length", len(req.Text)),
			attribute.String("operation", "parseText"),
		)

		parseTextConfig := s.AppConfig.GetParseTextConfig()
		aiService, err := s.newAIService(&parseTextConfig, "parseText", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var result types.ParseOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "parseText", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.ParseText(ctx, types.ParseTextInput{Text: req.Text})
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, om,
				attribute.String("source", "text"))
			writeAppError(w, s.Logger, err, "Failed to parse resume text")
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, om,
			attribute.String("source", "text"))
		span.SetAttributes(attribute.Bool("success", true))

		writeJSONResponse(w, span, result)
	}
}

// createJobMatchHandler tailors a resume against a job posting. The caller's
// jobDescription always ends up in the returned document.
func (s *Server) createJobMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.job_match")
		defer span.End()

		var req JobMatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.Int("request.resume_length", len(req.Resume)),
			attribute.String("operation", "jobMatch"),
		)

		jobMatchConfig := s.AppConfig.GetJobMatchConfig()
		aiService, err := s.newAIService(&jobMatchConfig, "jobMatch", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		input := types.JobMatchInput{
			JobDescription: req.JobDescription,
			Resume:         req.Resume,
		}

		metrics := om.GetMetrics()
		var result types.JobMatchOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "jobMatch", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.MatchJob(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "job_matched", false, om,
				attribute.String("error", err.Error()))
			writeAppError(w, s.Logger, err, "Failed to match resume against job")
			return
		}

		metrics.RecordBusinessMetric(ctx, "job_matched", true, om,
			attribute.Int("output.tailored_length", len(result.TailoredText)))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.tailored_length", len(result.TailoredText)),
		)

		writeJSONResponse(w, span, result)
	}
}

// createGenerateResumeHandler produces a print-ready rendition of a resume
// for the selected template.
func (s *Server) createGenerateResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumeforge.api")
		ctx, span := tracer.Start(ctx, "api.generate_resume")
		defer span.End()

		var req GenerateResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if len(req.Resume) == 0 {
			err := fmt.Errorf("missing resume payload")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume", "resume field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.Resume)),
			attribute.String("request.template", req.Template),
			attribute.String("operation", "generateLayout"),
		)

		generateConfig := s.AppConfig.GetGenerateLayoutConfig()
		aiService, err := s.newAIService(&generateConfig, "generateLayout", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		input := types.GenerateResumeInput{
			Resume:   req.Resume,
			Template: req.Template,
		}

		metrics := om.GetMetrics()
		var result types.GenerateResumeOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "generateLayout", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.GenerateLayout(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_generated", false, om,
				attribute.String("template", req.Template))
			writeAppError(w, s.Logger, err, "Failed to generate resume layout")
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_generated", true, om,
			attribute.String("template", result.UpdatedResume.ResumeSettings.Template),
			attribute.Int("output.formatted_length", len(result.FormattedText)))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.formatted_length", len(result.FormattedText)),
		)

		writeJSONResponse(w, span, result)
	}
}

// parseUploadRequest extracts the resume file from a multipart form. The
// form field is named "file"; its content type decides how the model sees
// the upload, sniffing the payload when the client did not set one.
func parseUploadRequest(r *http.Request, maxRequestSize int64) (types.ParseFileInput, error) {
	if err := r.ParseMultipartForm(maxRequestSize); err != nil {
		return types.ParseFileInput{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return types.ParseFileInput{}, fmt.Errorf("file field is required: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ai.MaxUploadSize+1))
	if err != nil {
		return types.ParseFileInput{}, fmt.Errorf("failed to read upload: %w", err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	// Strip parameters like "; charset=binary"
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	return types.ParseFileInput{
		FileName: header.Filename,
		MimeType: mimeType,
		Data:     data,
	}, nil
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSONResponse encodes a successful payload as JSON
func writeJSONResponse(w http.ResponseWriter, span oteltrace.Span, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		span.RecordError(err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
