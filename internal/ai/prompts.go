package ai

import (
	"fmt"
	"strings"

	"resumeforge/internal/schema"
)

// SystemPrompts contains all system-level instructions for model calls
type SystemPrompts struct {
	ParseFile      string
	ParseText      string
	JobMatch       string
	GenerateLayout string
}

// UserPrompts contains user-level prompt templates with placeholders for
// dynamic content
type UserPrompts struct {
	ParseFile      string
	ParseText      string
	JobMatch       string
	GenerateLayout string
}

// schemaContract is the resume shape restated as prompt text. The consuming
// model never sees the Go types or the validator, so every closed
// enumeration has to be spelled out as an instruction.
var schemaContract = fmt.Sprintf(`Return valid JSON that matches this shape:
{
  "resume": {
    "resumeTitle": string,
    "targetRole": string,
    "targetCompany": string,
    "jobDescription": string,
    "tailoredResumeText": string,
    "personalInformation": {
      "firstName": string,
      "lastName": string,
      "middleName": string,
      "preferredName": string,
      "email": string,
      "phoneNumber": string,
      "linkedinUrl": string,
      "githubUrl": string,
      "portfolioUrl": string,
      "location": string,
      "willingToRelocate": %s
    },
    "professionalSummary": string,
    "workExperience": WorkExperienceItem[],
    "education": EducationItem[],
    "technicalSkills": { all keys return string[] },
    "projects": ProjectItem[],
    "certifications": CertificationItem[],
    "publications": PublicationItem[],
    "openSource": OpenSourceItem[],
    "awards": AwardItem[],
    "languages": LanguageItem[],
    "volunteerExperience": VolunteerItem[],
    "professionalMemberships": string[],
    "references": {
      "availableUponRequest": boolean,
      "contacts": ReferenceContact[]
    },
    "resumeSettings": {
      "template": %s,
      "colorScheme": %s,
      "fontFamily": %s,
      "sectionOrder": ResumeSectionKey[],
      "sectionsVisibility": Record<ResumeSectionKey, boolean>
    }
  }
}
Where ResumeSectionKey is one of: %s.
- Populate arrays even when empty.
- Responsibilities, achievements, and key features must be string arrays (each entry is a bullet).
- Dates must be "YYYY-MM" or "Present".
- Never invent experience; only reorganize what exists.
- Use sentence case text (no markdown, HTML, or LaTeX).`,
	enumAlternatives(schema.RelocationOptions),
	enumAlternatives(schema.TemplateOptions),
	enumAlternatives(schema.ColorSchemes),
	enumAlternatives(schema.FontFamilies),
	sectionKeyList(),
)

func enumAlternatives(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, " | ")
}

func sectionKeyList() string {
	keys := make([]string, len(schema.SectionKeys))
	for i, key := range schema.SectionKeys {
		keys[i] = string(key)
	}
	return strings.Join(keys, ", ")
}

// templateGuidance holds per-template layout instructions for the layout
// generation prompt.
var templateGuidance = map[string]string{
	"chronological": "Start with name + contact, then professional summary, work experience (reverse chronological), education, skills, then optional sections. Use bold headings and bullet points.",
	"simple":        "Use a single column minimalist layout. Headings should be uppercase text with blank line dividers. Avoid extra separators.",
	"professional":  "Use balanced spacing, subtle section dividers, and emphasize readability for executives.",
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	ParseFile:      "You are an expert resume parser. Return strict JSON that matches the provided schema. Do not include markdown or commentary.",
	ParseText:      "You convert raw resume text into normalized JSON. Never add markdown, only JSON in the response.",
	JobMatch:       "You are an ATS optimization assistant. Blend keywords naturally, respect truthful experience, and respond with JSON only.",
	GenerateLayout: "You are a professional resume formatter. Produce JSON with a formattedText property and updated resume payload.",
}

// DefaultUserPrompts provides the default user prompt templates. The
// placeholders are filled by the Build* helpers below.
var DefaultUserPrompts = UserPrompts{
	ParseFile: schemaContract + `
Parse the attached resume (PDF or image) and fill the JSON. Follow reverse-chronological ordering by default and copy bullet language exactly as shown when possible.`,

	ParseText: schemaContract + `
Source resume text:
"""
%s
"""
Normalize this resume into structured JSON.`,

	JobMatch: schemaContract + `
Job description:
"""
%s
"""
Existing resume JSON:
%s

Objectives:
1. Identify skills, responsibilities, and achievements from the resume that align with the job.
2. Insert relevant keywords naturally without exaggerating experience.
3. Update professionalSummary, workExperience bullets, technicalSkills, and projects so they speak to the role.
4. Update resume.jobDescription with the provided posting.

Return JSON shaped as:
{
  "tailoredResumeText": "Plain text resume with headings and bullet symbols",
  "resume": Resume
}`,

	GenerateLayout: schemaContract + `
Template requested: %s.
Guidance: %s
Color palette must stay in grayscale (black/gray/white). Fonts limited to Arial, Times New Roman, or Calibri. No icons, tables, or colored elements.

Existing resume JSON:
%s

Return JSON:
{
  "formattedText": "Plain text print-ready resume following the template instructions",
  "resume": Resume
}`,
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}

// BuildParseFilePrompt renders the vision parse prompt.
func BuildParseFilePrompt(template string) string {
	return template
}

// BuildParseTextPrompt renders the text parse prompt around the raw resume
// text.
func BuildParseTextPrompt(template, text string) string {
	return fmt.Sprintf(template, text)
}

// BuildJobMatchPrompt renders the tailoring prompt around the job posting
// and the serialized current resume.
func BuildJobMatchPrompt(template, jobDescription, resumeJSON string) string {
	return fmt.Sprintf(template, jobDescription, resumeJSON)
}

// BuildLayoutPrompt renders the layout prompt for the chosen template.
func BuildLayoutPrompt(template, layoutTemplate, resumeJSON string) string {
	return fmt.Sprintf(template,
		strings.ToUpper(layoutTemplate),
		templateGuidance[layoutTemplate],
		resumeJSON)
}
