package ai

import (
	"resumeforge/internal/config"
)

// systemPromptFor returns the system prompt for an operation, preferring a
// prompt loaded from a file, then one set in configuration, then the
// built-in default.
func systemPromptFor(operationType string, configPrompts *config.PromptConfig) string {
	loaded := config.GetPromptsForOperation(operationType)
	prompts := &config.SystemPrompts{}
	if configPrompts != nil {
		prompts = &configPrompts.SystemPrompts
	}

	switch operationType {
	case "parseFile":
		return resolvePrompt(loaded.SystemPrompts.ParseFile, prompts.ParseFile, DefaultSystemPrompts.ParseFile)
	case "parseText":
		return resolvePrompt(loaded.SystemPrompts.ParseText, prompts.ParseText, DefaultSystemPrompts.ParseText)
	case "jobMatch":
		return resolvePrompt(loaded.SystemPrompts.JobMatch, prompts.JobMatch, DefaultSystemPrompts.JobMatch)
	case "generateLayout":
		return resolvePrompt(loaded.SystemPrompts.GenerateLayout, prompts.GenerateLayout, DefaultSystemPrompts.GenerateLayout)
	default:
		return ""
	}
}

// userPromptFor returns the user prompt template for an operation with the
// same precedence as systemPromptFor.
func userPromptFor(operationType string, configPrompts *config.PromptConfig) string {
	loaded := config.GetPromptsForOperation(operationType)
	prompts := &config.UserPrompts{}
	if configPrompts != nil {
		prompts = &configPrompts.UserPrompts
	}

	switch operationType {
	case "parseFile":
		return resolvePrompt(loaded.UserPrompts.ParseFile, prompts.ParseFile, DefaultUserPrompts.ParseFile)
	case "parseText":
		return resolvePrompt(loaded.UserPrompts.ParseText, prompts.ParseText, DefaultUserPrompts.ParseText)
	case "jobMatch":
		return resolvePrompt(loaded.UserPrompts.JobMatch, prompts.JobMatch, DefaultUserPrompts.JobMatch)
	case "generateLayout":
		return resolvePrompt(loaded.UserPrompts.GenerateLayout, prompts.GenerateLayout, DefaultUserPrompts.GenerateLayout)
	default:
		return ""
	}
}

// resolvePrompt selects the correct prompt string based on a clear priority
// order: a prompt loaded from a file, then a prompt defined directly in the
// configuration, then the hardcoded default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
