package ai

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"resumeforge/internal/errors"
	"resumeforge/internal/schema"
	"resumeforge/internal/types"
)

// fakeProvider returns canned envelopes so Service tests cover the
// merge and normalization pipeline without network calls.
type fakeProvider struct {
	parsedResume  json.RawMessage
	tailoredText  string
	tailoredJSON  json.RawMessage
	formattedText string
	formattedJSON json.RawMessage
	err           error

	lastJobDescription string
	lastTemplate       string
}

func (f *fakeProvider) ParseResumeFile(ctx context.Context, input types.ParseFileInput) (types.ParsedResumeEnvelope, *TokenUsage, error) {
	if f.err != nil {
		return types.ParsedResumeEnvelope{}, nil, f.err
	}
	return types.ParsedResumeEnvelope{Resume: f.parsedResume}, &TokenUsage{TotalTokens: 10}, nil
}

func (f *fakeProvider) ParseResumeText(ctx context.Context, input types.ParseTextInput) (types.ParsedResumeEnvelope, *TokenUsage, error) {
	if f.err != nil {
		return types.ParsedResumeEnvelope{}, nil, f.err
	}
	return types.ParsedResumeEnvelope{Resume: f.parsedResume}, &TokenUsage{TotalTokens: 10}, nil
}

func (f *fakeProvider) MatchJob(ctx context.Context, jobDescription string, resume schema.ResumeDocument) (types.TailoredResumeEnvelope, *TokenUsage, error) {
	f.lastJobDescription = jobDescription
	if f.err != nil {
		return types.TailoredResumeEnvelope{}, nil, f.err
	}
	return types.TailoredResumeEnvelope{
		TailoredResumeText: f.tailoredText,
		Resume:             f.tailoredJSON,
	}, &TokenUsage{TotalTokens: 20}, nil
}

func (f *fakeProvider) GenerateLayout(ctx context.Context, template string, resume schema.ResumeDocument) (types.FormattedResumeEnvelope, *TokenUsage, error) {
	f.lastTemplate = template
	if f.err != nil {
		return types.FormattedResumeEnvelope{}, nil, f.err
	}
	return types.FormattedResumeEnvelope{
		FormattedText: f.formattedText,
		Resume:        f.formattedJSON,
	}, &TokenUsage{TotalTokens: 20}, nil
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake-model", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

func newTestService(p Provider) *Service {
	logger, _ := errors.New("error")
	return &Service{Provider: p, logger: logger}
}

func TestParseTextNormalizesModelOutput(t *testing.T) {
	fake := &fakeProvider{
		parsedResume: json.RawMessage(`{
			"personalInformation": {"firstName": "Ada", "lastName": "Lovelace"},
			"workExperience": [{"jobTitle": "Engineer"}]
		}`),
	}
	svc := newTestService(fake)

	out, usage, err := svc.ParseText(context.Background(), types.ParseTextInput{Text: "Ada Lovelace, Engineer"})
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	if usage == nil || usage.TotalTokens != 10 {
		t.Errorf("expected token usage from provider, got %+v", usage)
	}
	if out.Resume.PersonalInformation.FirstName != "Ada" {
		t.Errorf("firstName = %q", out.Resume.PersonalInformation.FirstName)
	}
	if out.Resume.PersonalInformation.LastName != "Lovelace" {
		t.Errorf("lastName = %q", out.Resume.PersonalInformation.LastName)
	}
	if len(out.Resume.WorkExperience) != 1 {
		t.Fatalf("workExperience length = %d", len(out.Resume.WorkExperience))
	}
	if out.Resume.WorkExperience[0].ID == "" {
		t.Error("normalization should mint an id for the experience entry")
	}
	if out.Resume.WorkExperience[0].EmploymentType != schema.EmploymentTypes[0] {
		t.Errorf("employmentType = %q, want default %q",
			out.Resume.WorkExperience[0].EmploymentType, schema.EmploymentTypes[0])
	}
}

func TestParseTextRejectsEmptyInput(t *testing.T) {
	svc := newTestService(&fakeProvider{})

	_, _, err := svc.ParseText(context.Background(), types.ParseTextInput{Text: "   "})
	if !errors.IsType(err, errors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseFileValidation(t *testing.T) {
	svc := newTestService(&fakeProvider{parsedResume: json.RawMessage(`{}`)})

	tests := []struct {
		name     string
		input    types.ParseFileInput
		wantCode string
	}{
		{
			name:     "empty file",
			input:    types.ParseFileInput{FileName: "resume.pdf", MimeType: "application/pdf"},
			wantCode: errors.ErrCodeInvalidRequest,
		},
		{
			name: "oversized file",
			input: types.ParseFileInput{
				FileName: "resume.pdf",
				MimeType: "application/pdf",
				Data:     make([]byte, MaxUploadSize+1),
			},
			wantCode: errors.ErrCodeFileTooLarge,
		},
		{
			name: "unsupported type",
			input: types.ParseFileInput{
				FileName: "resume.docx",
				MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				Data:     []byte("content"),
			},
			wantCode: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.ParseFile(context.Background(), tt.input)
			appErr, ok := err.(*errors.AppError)
			if !ok {
				t.Fatalf("expected *AppError, got %v", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestParseFileAcceptsAllowedTypes(t *testing.T) {
	svc := newTestService(&fakeProvider{parsedResume: json.RawMessage(`{}`)})

	for _, mimeType := range []string{"application/pdf", "image/png", "image/jpeg", "image/webp"} {
		input := types.ParseFileInput{FileName: "resume", MimeType: mimeType, Data: []byte("bytes")}
		if _, _, err := svc.ParseFile(context.Background(), input); err != nil {
			t.Errorf("ParseFile(%s) error = %v", mimeType, err)
		}
	}
}

func TestMatchJobCallerJobDescriptionWins(t *testing.T) {
	// The model echoes back its own jobDescription; the caller's must win.
	fake := &fakeProvider{
		tailoredText: "Tailored summary.",
		tailoredJSON: json.RawMessage(`{
			"jobDescription": "model-invented description",
			"professionalSummary": "Backend engineer with Go experience."
		}`),
	}
	svc := newTestService(fake)

	base := json.RawMessage(`{"personalInformation": {"firstName": "Ada"}, "jobDescription": "old"}`)
	out, _, err := svc.MatchJob(context.Background(), types.JobMatchInput{
		JobDescription: "Backend Engineer at Initech",
		Resume:         base,
	})
	if err != nil {
		t.Fatalf("MatchJob() error = %v", err)
	}

	if out.UpdatedResume.JobDescription != "Backend Engineer at Initech" {
		t.Errorf("jobDescription = %q, want the caller's value", out.UpdatedResume.JobDescription)
	}
	if fake.lastJobDescription != "Backend Engineer at Initech" {
		t.Errorf("provider received jobDescription %q", fake.lastJobDescription)
	}
	if out.TailoredText != "Tailored summary." {
		t.Errorf("tailoredText = %q", out.TailoredText)
	}
	if out.UpdatedResume.ProfessionalSummary != "Backend engineer with Go experience." {
		t.Errorf("professionalSummary = %q", out.UpdatedResume.ProfessionalSummary)
	}
	// Untouched base fields survive the merge.
	if out.UpdatedResume.PersonalInformation.FirstName != "Ada" {
		t.Errorf("firstName = %q, want 'Ada'", out.UpdatedResume.PersonalInformation.FirstName)
	}
}

func TestMatchJobRequiresJobDescription(t *testing.T) {
	svc := newTestService(&fakeProvider{})

	_, _, err := svc.MatchJob(context.Background(), types.JobMatchInput{
		Resume: json.RawMessage(`{}`),
	})
	if !errors.IsType(err, errors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateLayoutTemplateAuthority(t *testing.T) {
	// The model's resumeSettings echo must not leak into the result; only
	// the selected template changes, everything else stays the caller's.
	fake := &fakeProvider{
		formattedText: "ADA LOVELACE\n============",
		formattedJSON: json.RawMessage(`{
			"professionalSummary": "Polished summary.",
			"resumeSettings": {"template": "simple", "fontFamily": "Times New Roman", "colorScheme": "#4b5563"}
		}`),
	}
	svc := newTestService(fake)

	base := json.RawMessage(`{
		"personalInformation": {"firstName": "Ada"},
		"resumeSettings": {"template": "chronological", "fontFamily": "Arial"}
	}`)
	out, _, err := svc.GenerateLayout(context.Background(), types.GenerateResumeInput{
		Resume:   base,
		Template: "professional",
	})
	if err != nil {
		t.Fatalf("GenerateLayout() error = %v", err)
	}

	if fake.lastTemplate != "professional" {
		t.Errorf("provider received template %q", fake.lastTemplate)
	}
	settings := out.UpdatedResume.ResumeSettings
	if settings.Template != "professional" {
		t.Errorf("template = %q, want 'professional'", settings.Template)
	}
	if settings.FontFamily != "Arial" {
		t.Errorf("fontFamily = %q, want the caller's 'Arial'", settings.FontFamily)
	}
	if settings.ColorScheme != schema.ColorSchemes[0] {
		t.Errorf("colorScheme = %q, want default %q", settings.ColorScheme, schema.ColorSchemes[0])
	}
	if out.FormattedText == "" || !strings.Contains(out.FormattedText, "ADA LOVELACE") {
		t.Errorf("formattedText = %q", out.FormattedText)
	}
	if out.UpdatedResume.ProfessionalSummary != "Polished summary." {
		t.Errorf("professionalSummary = %q", out.UpdatedResume.ProfessionalSummary)
	}
}

func TestGenerateLayoutDefaultsToDocumentTemplate(t *testing.T) {
	fake := &fakeProvider{formattedText: "text", formattedJSON: json.RawMessage(`{}`)}
	svc := newTestService(fake)

	base := json.RawMessage(`{"resumeSettings": {"template": "simple"}}`)
	out, _, err := svc.GenerateLayout(context.Background(), types.GenerateResumeInput{Resume: base})
	if err != nil {
		t.Fatalf("GenerateLayout() error = %v", err)
	}
	if fake.lastTemplate != "simple" {
		t.Errorf("provider received template %q, want the document's 'simple'", fake.lastTemplate)
	}
	if out.UpdatedResume.ResumeSettings.Template != "simple" {
		t.Errorf("template = %q", out.UpdatedResume.ResumeSettings.Template)
	}
}

func TestGenerateLayoutRejectsUnknownTemplate(t *testing.T) {
	svc := newTestService(&fakeProvider{})

	_, _, err := svc.GenerateLayout(context.Background(), types.GenerateResumeInput{
		Resume:   json.RawMessage(`{}`),
		Template: "futuristic",
	})
	if !errors.IsType(err, errors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateLayoutRequiresResume(t *testing.T) {
	svc := newTestService(&fakeProvider{})

	for _, raw := range []string{"", "null", "  "} {
		_, _, err := svc.GenerateLayout(context.Background(), types.GenerateResumeInput{
			Resume: json.RawMessage(raw),
		})
		if !errors.IsType(err, errors.ErrorTypeValidation) {
			t.Errorf("Resume=%q: expected validation error, got %v", raw, err)
		}
	}
}

func TestServicePropagatesProviderErrors(t *testing.T) {
	upstream := errors.NewUpstreamError("Model endpoint returned status 502", nil)
	svc := newTestService(&fakeProvider{err: upstream})

	_, _, err := svc.ParseText(context.Background(), types.ParseTextInput{Text: "resume text"})
	if !errors.IsType(err, errors.ErrorTypeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestOverlayResumeShallowMerge(t *testing.T) {
	base, err := schema.Normalize(map[string]any{
		"title":               "My Resume",
		"professionalSummary": "Original summary",
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	merged := overlayResume(base, json.RawMessage(`{"professionalSummary": "Patched summary"}`))
	if merged["professionalSummary"] != "Patched summary" {
		t.Errorf("professionalSummary = %v", merged["professionalSummary"])
	}
	if merged["title"] != "My Resume" {
		t.Errorf("title = %v, base fields should survive", merged["title"])
	}

	// Invalid patches leave the base untouched.
	merged = overlayResume(base, json.RawMessage(`not json`))
	if merged["title"] != "My Resume" {
		t.Errorf("title = %v after invalid patch", merged["title"])
	}
}
