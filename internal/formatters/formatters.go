package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumeforge/internal/schema"
	"resumeforge/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ParseOutput", &ParseTextFormatter{})
	registry.RegisterFormatter("markdown", "ParseOutput", &ParseMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobMatchOutput", &MatchTextFormatter{})
	registry.RegisterFormatter("markdown", "JobMatchOutput", &MatchMarkdownFormatter{})
	registry.RegisterFormatter("text", "GenerateResumeOutput", &GenerateTextFormatter{})
	registry.RegisterFormatter("markdown", "GenerateResumeOutput", &GenerateMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ParseOutput:
		return "ParseOutput"
	case types.JobMatchOutput:
		return "JobMatchOutput"
	case types.GenerateResumeOutput:
		return "GenerateResumeOutput"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// writeResumeSummary renders the human-readable digest of a structured
// resume shared by the text formatters.
func writeResumeSummary(output *strings.Builder, resume schema.ResumeDocument) {
	pi := resume.PersonalInformation
	name := strings.TrimSpace(pi.FirstName + " " + pi.LastName)
	if name != "" {
		output.WriteString(fmt.Sprintf("Name: %s\n", name))
	}
	if pi.Email != "" {
		output.WriteString(fmt.Sprintf("Email: %s\n", pi.Email))
	}
	if pi.Location != "" {
		output.WriteString(fmt.Sprintf("Location: %s\n", pi.Location))
	}
	if resume.TargetRole != "" {
		output.WriteString(fmt.Sprintf("Target role: %s\n", resume.TargetRole))
	}
	if resume.ProfessionalSummary != "" {
		output.WriteString("\nSummary:\n")
		output.WriteString(resume.ProfessionalSummary)
		output.WriteString("\n")
	}
	output.WriteString(fmt.Sprintf("\nWork experience entries: %d\n", len(resume.WorkExperience)))
	output.WriteString(fmt.Sprintf("Education entries: %d\n", len(resume.Education)))
	output.WriteString(fmt.Sprintf("Projects: %d\n", len(resume.Projects)))
	if langs := resume.TechnicalSkills.ProgrammingLanguages; len(langs) > 0 {
		output.WriteString(fmt.Sprintf("Programming languages: %s\n", strings.Join(langs, ", ")))
	}
}

// writeResumeSummaryMarkdown is the markdown counterpart of writeResumeSummary.
func writeResumeSummaryMarkdown(output *strings.Builder, resume schema.ResumeDocument) {
	pi := resume.PersonalInformation
	name := strings.TrimSpace(pi.FirstName + " " + pi.LastName)
	if name != "" {
		output.WriteString(fmt.Sprintf("**Name:** %s\n\n", name))
	}
	if pi.Email != "" {
		output.WriteString(fmt.Sprintf("**Email:** %s\n\n", pi.Email))
	}
	if resume.TargetRole != "" {
		output.WriteString(fmt.Sprintf("**Target role:** %s\n\n", resume.TargetRole))
	}
	if resume.ProfessionalSummary != "" {
		output.WriteString("### Summary\n\n")
		output.WriteString(resume.ProfessionalSummary)
		output.WriteString("\n\n")
	}
	output.WriteString(fmt.Sprintf("- Work experience entries: %d\n", len(resume.WorkExperience)))
	output.WriteString(fmt.Sprintf("- Education entries: %d\n", len(resume.Education)))
	output.WriteString(fmt.Sprintf("- Projects: %d\n", len(resume.Projects)))
	if langs := resume.TechnicalSkills.ProgrammingLanguages; len(langs) > 0 {
		output.WriteString(fmt.Sprintf("- Programming languages: %s\n", strings.Join(langs, ", ")))
	}
}

// ParseTextFormatter handles text formatting for parse results
type ParseTextFormatter struct{}

func (ptf *ParseTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParseOutput)
	if !ok {
		return "", fmt.Errorf("expected ParseOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== PARSED RESUME ===\n\n")
	writeResumeSummary(&output, result.Resume)
	output.WriteString("\nRun with --format json to see the full structured resume.\n")

	return output.String(), nil
}

func (ptf *ParseTextFormatter) SupportedType() string {
	return "ParseOutput"
}

// ParseMarkdownFormatter handles markdown formatting for parse results
type ParseMarkdownFormatter struct{}

func (pmf *ParseMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParseOutput)
	if !ok {
		return "", fmt.Errorf("expected ParseOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Parsed Resume\n\n")
	writeResumeSummaryMarkdown(&output, result.Resume)

	return output.String(), nil
}

func (pmf *ParseMarkdownFormatter) SupportedType() string {
	return "ParseOutput"
}

// MatchTextFormatter handles text formatting for job-match results
type MatchTextFormatter struct{}

func (mtf *MatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.JobMatchOutput)
	if !ok {
		return "", fmt.Errorf("expected JobMatchOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== TAILORED RESUME ===\n\n")
	output.WriteString(result.TailoredText)
	output.WriteString("\n\n")

	output.WriteString("=== UPDATED RESUME ===\n\n")
	writeResumeSummary(&output, result.UpdatedResume)

	return output.String(), nil
}

func (mtf *MatchTextFormatter) SupportedType() string {
	return "JobMatchOutput"
}

// MatchMarkdownFormatter handles markdown formatting for job-match results
type MatchMarkdownFormatter struct{}

func (mmf *MatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.JobMatchOutput)
	if !ok {
		return "", fmt.Errorf("expected JobMatchOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Tailored Resume\n\n")
	output.WriteString(result.TailoredText)
	output.WriteString("\n\n")

	output.WriteString("## Updated Resume\n\n")
	writeResumeSummaryMarkdown(&output, result.UpdatedResume)

	return output.String(), nil
}

func (mmf *MatchMarkdownFormatter) SupportedType() string {
	return "JobMatchOutput"
}

// GenerateTextFormatter handles text formatting for layout results
type GenerateTextFormatter struct{}

func (gtf *GenerateTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.GenerateResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected GenerateResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== FORMATTED RESUME (%s) ===\n\n", result.UpdatedResume.ResumeSettings.Template))
	output.WriteString(result.FormattedText)
	output.WriteString("\n")

	return output.String(), nil
}

func (gtf *GenerateTextFormatter) SupportedType() string {
	return "GenerateResumeOutput"
}

// GenerateMarkdownFormatter handles markdown formatting for layout results
type GenerateMarkdownFormatter struct{}

func (gmf *GenerateMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.GenerateResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected GenerateResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Formatted Resume\n\n")
	output.WriteString(fmt.Sprintf("**Template:** %s\n\n", result.UpdatedResume.ResumeSettings.Template))
	output.WriteString("```\n")
	output.WriteString(result.FormattedText)
	output.WriteString("\n```\n")

	return output.String(), nil
}

func (gmf *GenerateMarkdownFormatter) SupportedType() string {
	return "GenerateResumeOutput"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
