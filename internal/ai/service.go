package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/schema"
	"resumeforge/internal/types"
)

// MaxUploadSize caps resume file uploads for the vision parse operation.
const MaxUploadSize = 8 << 20 // 8MB

// allowedUploadTypes lists the mime types the vision parser accepts.
var allowedUploadTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/webp",
}

// Service composes the normalizer, prompt builder, and model provider into
// the four resume operations. Each method validates caller input, runs one
// model call, and returns a fully normalized document or an error; there is
// no partial success.
type Service struct {
	Provider Provider // Exported for access from server package
	config   *config.OperationAIConfig
	logger   *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	var provider Provider
	var err error

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "openrouter":
		provider, err = NewOpenRouterProvider(cfg, operationType, logger)
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		config:   cfg,
		logger:   logger,
	}, nil
}

// ParseFile turns an uploaded resume file into a normalized document.
func (s *Service) ParseFile(ctx context.Context, input types.ParseFileInput) (types.ParseOutput, *TokenUsage, error) {
	if len(input.Data) == 0 {
		return types.ParseOutput{}, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"A resume file (PDF or image) is required.", nil)
	}
	if len(input.Data) > MaxUploadSize {
		return types.ParseOutput{}, nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("Resume file exceeds the %dMB limit.", MaxUploadSize>>20), nil)
	}
	if !slices.Contains(allowedUploadTypes, input.MimeType) {
		return types.ParseOutput{}, nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported file type %q; upload a PDF or image.", input.MimeType), nil)
	}

	envelope, usage, err := s.Provider.ParseResumeFile(ctx, input)
	if err != nil {
		return types.ParseOutput{}, usage, err
	}

	resume, err := schema.Normalize(envelope.Resume)
	if err != nil {
		return types.ParseOutput{}, usage, err
	}
	return types.ParseOutput{Resume: resume}, usage, nil
}

// ParseText turns raw resume text into a normalized document.
func (s *Service) ParseText(ctx context.Context, input types.ParseTextInput) (types.ParseOutput, *TokenUsage, error) {
	if strings.TrimSpace(input.Text) == "" {
		return types.ParseOutput{}, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Resume text is required.", nil)
	}

	envelope, usage, err := s.Provider.ParseResumeText(ctx, input)
	if err != nil {
		return types.ParseOutput{}, usage, err
	}

	resume, err := schema.Normalize(envelope.Resume)
	if err != nil {
		return types.ParseOutput{}, usage, err
	}
	return types.ParseOutput{Resume: resume}, usage, nil
}

// MatchJob tailors a resume against a job posting. The caller's
// jobDescription always lands in the updated document, overriding whatever
// the model echoed back.
func (s *Service) MatchJob(ctx context.Context, input types.JobMatchInput) (types.JobMatchOutput, *TokenUsage, error) {
	if strings.TrimSpace(input.JobDescription) == "" {
		return types.JobMatchOutput{}, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"jobDescription is required.", nil)
	}

	base, err := schema.Normalize(input.Resume)
	if err != nil {
		return types.JobMatchOutput{}, nil, err
	}

	envelope, usage, err := s.Provider.MatchJob(ctx, input.JobDescription, base)
	if err != nil {
		return types.JobMatchOutput{}, usage, err
	}

	merged := overlayResume(base, envelope.Resume)
	merged["jobDescription"] = input.JobDescription

	updated, err := schema.Normalize(merged)
	if err != nil {
		return types.JobMatchOutput{}, usage, err
	}

	return types.JobMatchOutput{
		TailoredText:  envelope.TailoredResumeText,
		UpdatedResume: updated,
	}, usage, nil
}

// GenerateLayout produces a print-ready text rendition of a resume for the
// chosen template. The caller's template choice overrides the model's echo,
// and the document's settings stay the caller's except for that template.
func (s *Service) GenerateLayout(ctx context.Context, input types.GenerateResumeInput) (types.GenerateResumeOutput, *TokenUsage, error) {
	if isEmptyJSON(input.Resume) {
		return types.GenerateResumeOutput{}, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"resume payload is required.", nil)
	}

	base, err := schema.Normalize(input.Resume)
	if err != nil {
		return types.GenerateResumeOutput{}, nil, err
	}

	template := input.Template
	if template == "" {
		template = base.ResumeSettings.Template
	}
	if !slices.Contains(schema.TemplateOptions, template) {
		return types.GenerateResumeOutput{}, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("template must be one of %v.", schema.TemplateOptions), nil)
	}

	envelope, usage, err := s.Provider.GenerateLayout(ctx, template, base)
	if err != nil {
		return types.GenerateResumeOutput{}, usage, err
	}

	merged := overlayResume(base, envelope.Resume)
	settings := asJSONMap(base.ResumeSettings)
	settings["template"] = template
	merged["resumeSettings"] = settings

	updated, err := schema.Normalize(merged)
	if err != nil {
		return types.GenerateResumeOutput{}, usage, err
	}

	return types.GenerateResumeOutput{
		FormattedText: envelope.FormattedText,
		UpdatedResume: updated,
	}, usage, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases the underlying provider.
func (s *Service) Close() error {
	return s.Provider.Close()
}

// overlayResume spreads the model's partial resume over the caller's
// normalized document at the top-level key granularity, mirroring a
// shallow merge. Normalization afterwards restores all invariants.
func overlayResume(base schema.ResumeDocument, patch json.RawMessage) map[string]any {
	merged := asJSONMap(base)

	var patchMap map[string]any
	if len(patch) > 0 {
		if err := json.Unmarshal(patch, &patchMap); err == nil {
			for key, value := range patchMap {
				merged[key] = value
			}
		}
	}
	return merged
}

// asJSONMap round-trips a value through JSON into a generic map.
func asJSONMap(v any) map[string]any {
	m := make(map[string]any)
	if data, err := json.Marshal(v); err == nil {
		_ = json.Unmarshal(data, &m)
	}
	return m
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}
