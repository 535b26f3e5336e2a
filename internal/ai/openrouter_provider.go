package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/schema"
	"resumeforge/internal/types"
)

// OpenRouterProvider implements Provider against the OpenRouter
// chat/completions endpoint. One request per logical operation, no retry.
type OpenRouterProvider struct {
	httpClient     *http.Client
	config         *config.OperationAIConfig
	operationType  string
	circuitBreaker *CompletionBreaker
	logger         *forgeErrors.Logger
}

// Ensure OpenRouterProvider implements Provider
var _ Provider = (*OpenRouterProvider)(nil)

// NewOpenRouterProvider creates a provider instance for a specific operation
func NewOpenRouterProvider(cfg *config.OperationAIConfig, operationType string, logger *forgeErrors.Logger) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, forgeErrors.NewConfigError(forgeErrors.ErrCodeMissingAPIKey,
			"OpenRouter API key is required", nil)
	}

	return &OpenRouterProvider{
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		operationType:  operationType,
		circuitBreaker: NewCompletionBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// Chat completion wire types for the OpenRouter API.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
}

// extractReplyText pulls the textual content out of a message content block,
// which the API returns either as a plain string or as a list of parts.
func extractReplyText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return text
	}

	var parts []contentPart
	if err := json.Unmarshal(content, &parts); err != nil {
		return ""
	}
	var buf bytes.Buffer
	for _, part := range parts {
		if part.Text != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(part.Text)
		}
	}
	return buf.String()
}

// complete sends one chat completion request and returns the reply text.
// Transport and HTTP failures surface as UpstreamError; a reply with no
// content block is an EmptyModelResponse. Neither is retried.
func (p *OpenRouterProvider) complete(ctx context.Context, operationName string, messages []chatMessage) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumeforge.ai.openrouter")
	ctx, span := tracer.Start(ctx, "openrouter."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "openrouter"),
		attribute.String("ai.model", p.config.Model),
		attribute.Float64("ai.temperature", float64(*p.config.Temperature)),
	)

	payload := chatCompletionRequest{
		Model:          p.config.Model,
		Messages:       messages,
		Temperature:    p.config.Temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, forgeErrors.NewInternalError("REQUEST_ENCODE_FAILED",
			"Failed to encode completion request", err)
	}

	var usage *TokenUsage
	reply, err := p.circuitBreaker.Execute(func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			p.config.OpenRouter.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", forgeErrors.NewInternalError("REQUEST_BUILD_FAILED",
				"Failed to build completion request", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
		req.Header.Set("HTTP-Referer", p.config.OpenRouter.AppURL)
		req.Header.Set("X-Title", p.config.OpenRouter.AppName)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return "", forgeErrors.NewUpstreamError("Model request failed", err)
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil && p.logger != nil {
				p.logger.Warn("Failed to close response body", "error", closeErr)
			}
		}()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", forgeErrors.NewUpstreamError("Failed to read model response", err)
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return "", forgeErrors.NewUpstreamError(
				fmt.Sprintf("Model endpoint returned status %d", resp.StatusCode), nil).
				WithContext("status", resp.StatusCode).
				WithContext("model", p.config.Model)
		}

		var decoded chatCompletionResponse
		if err := json.Unmarshal(data, &decoded); err != nil {
			return "", forgeErrors.NewUpstreamError("Failed to decode model response", err)
		}
		if decoded.Usage != nil {
			usage = &TokenUsage{
				InputTokens:  decoded.Usage.PromptTokens,
				OutputTokens: decoded.Usage.CompletionTokens,
				TotalTokens:  decoded.Usage.TotalTokens,
			}
		}
		if len(decoded.Choices) == 0 {
			return "", forgeErrors.NewAIError(forgeErrors.ErrCodeEmptyModelResponse,
				"Model returned no choices", nil)
		}
		content := extractReplyText(decoded.Choices[0].Message.Content)
		if content == "" {
			return "", forgeErrors.NewAIError(forgeErrors.ErrCodeEmptyModelResponse,
				"Model returned an empty reply", nil)
		}
		return content, nil
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

// messages assembles the system and user messages for one call, honoring
// the useSystemPrompts switch.
func (p *OpenRouterProvider) messages(systemPrompt string, userContent any) []chatMessage {
	var messages []chatMessage
	if *p.config.UseSystemPrompts && systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	return append(messages, chatMessage{Role: "user", Content: userContent})
}

// ParseResumeFile implements Provider for the vision parse operation
func (p *OpenRouterProvider) ParseResumeFile(ctx context.Context, input types.ParseFileInput) (types.ParsedResumeEnvelope, *TokenUsage, error) {
	prompt := BuildParseFilePrompt(userPromptFor("parseFile", &p.config.CustomPrompts))
	userContent := []contentPart{
		{Type: "input_text", Text: prompt},
		{
			Type:        "input_image",
			ImageBase64: base64.StdEncoding.EncodeToString(input.Data),
			MimeType:    input.MimeType,
		},
	}

	reply, usage, err := p.complete(ctx, "parse_file",
		p.messages(systemPromptFor("parseFile", &p.config.CustomPrompts), userContent))
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
func (p *OpenRouterProvider) ParseResumeText(ctx context.Context, input types.ParseTextInput) (types.ParsedResumeEnvelope, *TokenUsage, error) {
	prompt := BuildParseTextPrompt(userPromptFor("parseText", &p.config.CustomPrompts), input.Text)

	reply, usage, err := p.complete(ctx, "parse_text",
		p.messages(systemPromptFor("parseText", &p.config.CustomPrompts), prompt))
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
func (p *OpenRouterProvider) MatchJob(ctx context.Context, jobDescription string, resume schema.ResumeDocument) (types.TailoredResumeEnvelope, *TokenUsage, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return types.TailoredResumeEnvelope{}, nil, forgeErrors.NewInternalError(
			"RESUME_ENCODE_FAILED", "Failed to encode resume for prompt", err)
	}
	prompt := BuildJobMatchPrompt(userPromptFor("jobMatch", &p.config.CustomPrompts),
		jobDescription, string(resumeJSON))

	reply, usage, err := p.complete(ctx, "job_match",
		p.messages(systemPromptFor("jobMatch", &p.config.CustomPrompts), prompt))
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
func (p *OpenRouterProvider) GenerateLayout(ctx context.Context, template string, resume schema.ResumeDocument) (types.FormattedResumeEnvelope, *TokenUsage, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return types.FormattedResumeEnvelope{}, nil, forgeErrors.NewInternalError(
			"RESUME_ENCODE_FAILED", "Failed to encode resume for prompt", err)
	}
	prompt := BuildLayoutPrompt(userPromptFor("generateLayout", &p.config.CustomPrompts),
		template, string(resumeJSON))

	reply, usage, err := p.complete(ctx, "generate_layout",
		p.messages(systemPromptFor("generateLayout", &p.config.CustomPrompts), prompt))
	if err != nil {
		return types.FormattedResumeEnvelope{}, nil, err
	}

	envelope, err := ExtractJSON[types.FormattedResumeEnvelope](reply)
	if err != nil {
		return types.FormattedResumeEnvelope{}, usage, err
	}
	return envelope, usage, nil
}

// GetModelInfo reports the configured model. OpenRouter has no cheap model
// metadata endpoint worth a health-check call, so availability mirrors the
// breaker state.
func (p *OpenRouterProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{
		Name:      p.config.Model,
		Available: p.circuitBreaker.IsHealthy(),
	}
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (p *OpenRouterProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":   p.circuitBreaker.GetStats(),
		"overall_healthy": p.circuitBreaker.IsHealthy(),
	}
}

// Close implements Provider
func (p *OpenRouterProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
