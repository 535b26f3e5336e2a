package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/schema"
	"resumeforge/internal/types"
)

// GeminiProvider implements Provider for Google Gemini. It keeps the same
// single-attempt contract as the OpenRouter provider; the prompt contract
// steers the output shape instead of a response schema.
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	operationType  string
	circuitBreaker *CompletionBreaker
	modelBreaker   *ModelBreaker
	logger         *forgeErrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *forgeErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, forgeErrors.NewAIError(forgeErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		operationType:  operationType,
		circuitBreaker: NewCompletionBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
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
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// classifyUpstreamError maps transport and API failures onto the error
// taxonomy. Everything that went wrong talking to the model is upstream.
func classifyUpstreamError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return forgeErrors.NewUpstreamError(
			fmt.Sprintf("Model endpoint returned status %d", apiErr.Code), err).
			WithContext("status", apiErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return forgeErrors.NewUpstreamError("Model request timed out", err).
			WithContext("status", http.StatusGatewayTimeout)
	}

	return forgeErrors.NewUpstreamError("Model request failed", err)
}

// generate runs one content generation call with tracing and circuit breaker
// protection, returning the textual reply.
func (g *GeminiProvider) generate(ctx context.Context, operationName string, contents []*genai.Content, systemPrompt string) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumeforge.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)

	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}
	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	var usage *TokenUsage
	reply, err := g.circuitBreaker.Execute(func() (string, error) {
		result, err := g.client.Models.GenerateContent(ctx, g.config.Model, contents, genaiConfig)
		if err != nil {
			return "", classifyUpstreamError(err)
		}
		usage = extractTokenUsage(result)
		text := result.Text()
		if text == "" {
			return "", forgeErrors.NewAIError(forgeErrors.ErrCodeEmptyModelResponse,
				"Model returned an empty reply", nil)
		}
		return text, nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, err
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))

	return reply, usage, nil
}

// ParseResumeFile implements Provider for the vision parse operation
func (g *GeminiProvider) ParseResumeFile(ctx context.Context, input types.ParseFileInput) (types.ParsedResumeEnvelope, *TokenUsage, error) {
	prompt := BuildParseFilePrompt(userPromptFor("parseFile", &g.config.CustomPrompts))
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(input.Data, input.MimeType),
		}, genai.RoleUser),
	}

	reply, usage, err := g.generate(ctx, "parse_file", contents,
		systemPromptFor("parseFile", &g.config.CustomPrompts))
	if err != nil {
		return types.ParsedResumeEnvelope{}, nil, err
	}

	envelope, err := ExtractJSON[types.ParsedResumeEnvelope](reply)
	if err != nil {
		return types.ParsedResumeEnvelope{}, usage, err
	}
	return envelope, usage, nil
}

// ParseResumeText implements Provider for the text parse operation
func (g *GeminiProvider) ParseResumeText(ctx context.Context, input types.ParseTextInput) (types.ParsedResumeEnvelope, *TokenUsage, error) {
	prompt := BuildParseTextPrompt(userPromptFor("parseText", &g.config.CustomPrompts), input.Text)

	reply, usage, err := g.generate(ctx, "parse_text", genai.Text(prompt),
		systemPromptFor("parseText", &g.config.CustomPrompts))
	if err != nil {
		return types.ParsedResumeEnvelope{}, nil, err
	}

	envelope, err := ExtractJSON[types.ParsedResumeEnvelope](reply)
	if err != nil {
		return types.ParsedResumeEnvelope{}, usage, err
	}
	return envelope, usage, nil
}

// MatchJob implements Provider for the job-match tailoring operation
func (g *GeminiProvider) MatchJob(ctx context.Context, jobDescription string, resume schema.ResumeDocument) (types.TailoredResumeEnvelope, *TokenUsage, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return types.TailoredResumeEnvelope{}, nil, forgeErrors.NewInternalError(
			"RESUME_ENCODE_FAILED", "Failed to encode resume for prompt", err)
	}
	prompt := BuildJobMatchPrompt(userPromptFor("jobMatch", &g.config.CustomPrompts),
		jobDescription, string(resumeJSON))

	reply, usage, err := g.generate(ctx, "job_match", genai.Text(prompt),
		systemPromptFor("jobMatch", &g.config.CustomPrompts))
	if err != nil {
		return types.TailoredResumeEnvelope{}, nil, err
	}

	envelope, err := ExtractJSON[types.TailoredResumeEnvelope](reply)
	if err != nil {
		return types.TailoredResumeEnvelope{}, usage, err
	}
	return envelope, usage, nil
}

// GenerateLayout implements Provider for the layout generation operation
func (g *GeminiProvider) GenerateLayout(ctx context.Context, template string, resume schema.ResumeDocument) (types.FormattedResumeEnvelope, *TokenUsage, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return types.FormattedResumeEnvelope{}, nil, forgeErrors.NewInternalError(
			"RESUME_ENCODE_FAILED", "Failed to encode resume for prompt", err)
	}
	prompt := BuildLayoutPrompt(userPromptFor("generateLayout", &g.config.CustomPrompts),
		template, string(resumeJSON))

	reply, usage, err := g.generate(ctx, "generate_layout", genai.Text(prompt),
		systemPromptFor("generateLayout", &g.config.CustomPrompts))
	if err != nil {
		return types.FormattedResumeEnvelope{}, nil, err
	}

	envelope, err := ExtractJSON[types.FormattedResumeEnvelope](reply)
	if err != nil {
		return types.FormattedResumeEnvelope{}, usage, err
	}
	return envelope, usage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()
	return stats
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// extractTokenUsage extracts token usage information from a Gemini response
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
