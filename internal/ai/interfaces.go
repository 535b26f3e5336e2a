package ai

import (
	"context"

	"resumeforge/internal/schema"
	"resumeforge/internal/types"
)

// Provider is the outbound client to an external text/vision completion
// model. Each method performs exactly one upstream call per invocation and
// returns the model's decoded envelope plus token usage when the provider
// reports it.
type Provider interface {
	ParseResumeFile(ctx context.Context, input types.ParseFileInput) (types.ParsedResumeEnvelope, *TokenUsage, error)
	ParseResumeText(ctx context.Context, input types.ParseTextInput) (types.ParsedResumeEnvelope, *TokenUsage, error)
	MatchJob(ctx context.Context, jobDescription string, resume schema.ResumeDocument) (types.TailoredResumeEnvelope, *TokenUsage, error)
	GenerateLayout(ctx context.Context, template string, resume schema.ResumeDocument) (types.FormattedResumeEnvelope, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// ModelInfo represents information about the configured model, used by
// health checks.
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// TokenUsage represents token usage information from model responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
