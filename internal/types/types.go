package types

import (
	"encoding/json"

	"resumeforge/internal/schema"
)

// ParseFileInput carries an uploaded resume file (PDF or image) for the
// vision parse operation.
type ParseFileInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// ParseTextInput carries raw resume text for the text parse operation.
type ParseTextInput struct {
	Text string `json:"text"`
}

// ParseOutput is the result of either parse operation.
type ParseOutput struct {
	Resume schema.ResumeDocument `json:"resume"`
}

// JobMatchInput carries a job posting and the resume to tailor against it.
// The resume is kept raw so normalization decides what survives.
type JobMatchInput struct {
	JobDescription string          `json:"jobDescription"`
	Resume         json.RawMessage `json:"resume"`
}

// JobMatchOutput is the result of the job-match operation. The caller's
// jobDescription always wins over whatever the model echoed back.
type JobMatchOutput struct {
	TailoredText  string                `json:"tailoredText"`
	UpdatedResume schema.ResumeDocument `json:"updatedResume"`
}

// GenerateResumeInput carries the resume to lay out and an optional template
// override.
type GenerateResumeInput struct {
	Resume   json.RawMessage `json:"resume"`
	Template string          `json:"template,omitempty"`
}

// GenerateResumeOutput is the result of the layout operation.
type GenerateResumeOutput struct {
	FormattedText string                `json:"formattedText"`
	UpdatedResume schema.ResumeDocument `json:"updatedResume"`
}

// ParsedResumeEnvelope is the JSON shape the parse prompts instruct the
// model to return.
type ParsedResumeEnvelope struct {
	Resume json.RawMessage `json:"resume"`
}

// TailoredResumeEnvelope is the JSON shape the job-match prompt instructs
// the model to return.
type TailoredResumeEnvelope struct {
	TailoredResumeText string          `json:"tailoredResumeText"`
	Resume             json.RawMessage `json:"resume"`
}

// FormattedResumeEnvelope is the JSON shape the layout prompt instructs the
// model to return.
type FormattedResumeEnvelope struct {
	FormattedText string          `json:"formattedText"`
	Resume        json.RawMessage `json:"resume"`
}
