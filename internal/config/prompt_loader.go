package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	// Initialize loaded prompts exactly once
	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loadedPrompts.Global.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &loadedPrompts.Global.UserPrompts); err != nil {
		return fmt.Errorf("failed to load global user prompts: %w", err)
	}

	// Load operation-specific prompts
	operations := []struct {
		name    string
		prompts *PromptConfig
		target  *OperationLoadedPrompts
	}{
		{"parseFile", &c.AI.ParseFile.CustomPrompts, &loadedPrompts.ParseFile},
		{"parseText", &c.AI.ParseText.CustomPrompts, &loadedPrompts.ParseText},
		{"jobMatch", &c.AI.JobMatch.CustomPrompts, &loadedPrompts.JobMatch},
		{"generateLayout", &c.AI.GenerateLayout.CustomPrompts, &loadedPrompts.GenerateLayout},
	}
	for _, op := range operations {
		if err := c.loadSystemPromptsFromFiles(&op.prompts.SystemPrompts, &op.target.SystemPrompts); err != nil {
			return fmt.Errorf("failed to load %s system prompts: %w", op.name, err)
		}
		if err := c.loadUserPromptsFromFiles(&op.prompts.UserPrompts, &op.target.UserPrompts); err != nil {
			return fmt.Errorf("failed to load %s user prompts: %w", op.name, err)
		}
	}

	c.logPromptLoadingSummary()

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.ParseFileFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseFileFile, "system", "parseFile")
		if err != nil {
			return err
		}
		target.ParseFile = content
	}

	if prompts.ParseTextFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseTextFile, "system", "parseText")
		if err != nil {
			return err
		}
		target.ParseText = content
	}

	if prompts.JobMatchFile != "" {
		content, err := c.loadPromptFromFile(prompts.JobMatchFile, "system", "jobMatch")
		if err != nil {
			return err
		}
		target.JobMatch = content
	}

	if prompts.GenerateLayoutFile != "" {
		content, err := c.loadPromptFromFile(prompts.GenerateLayoutFile, "system", "generateLayout")
		if err != nil {
			return err
		}
		target.GenerateLayout = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	if prompts.ParseFileFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseFileFile, "user", "parseFile")
		if err != nil {
			return err
		}
		target.ParseFile = content
	}

	if prompts.ParseTextFile != "" {
		content, err := c.loadPromptFromFile(prompts.ParseTextFile, "user", "parseText")
		if err != nil {
			return err
		}
		target.ParseText = content
	}

	if prompts.JobMatchFile != "" {
		content, err := c.loadPromptFromFile(prompts.JobMatchFile, "user", "jobMatch")
		if err != nil {
			return err
		}
		target.JobMatch = content
	}

	if prompts.GenerateLayoutFile != "" {
		content, err := c.loadPromptFromFile(prompts.GenerateLayoutFile, "user", "generateLayout")
		if err != nil {
			return err
		}
		target.GenerateLayout = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	validatePromptConfig := func(prefix string, prompts *PromptConfig) {
		validateFile(prompts.SystemPrompts.ParseFileFile, prefix+"system", "parseFile")
		validateFile(prompts.SystemPrompts.ParseTextFile, prefix+"system", "parseText")
		validateFile(prompts.SystemPrompts.JobMatchFile, prefix+"system", "jobMatch")
		validateFile(prompts.SystemPrompts.GenerateLayoutFile, prefix+"system", "generateLayout")
		validateFile(prompts.UserPrompts.ParseFileFile, prefix+"user", "parseFile")
		validateFile(prompts.UserPrompts.ParseTextFile, prefix+"user", "parseText")
		validateFile(prompts.UserPrompts.JobMatchFile, prefix+"user", "jobMatch")
		validateFile(prompts.UserPrompts.GenerateLayoutFile, prefix+"user", "generateLayout")
	}

	validatePromptConfig("", &c.AI.CustomPrompts)
	validatePromptConfig("parseFile ", &c.AI.ParseFile.CustomPrompts)
	validatePromptConfig("parseText ", &c.AI.ParseText.CustomPrompts)
	validatePromptConfig("jobMatch ", &c.AI.JobMatch.CustomPrompts)
	validatePromptConfig("generateLayout ", &c.AI.GenerateLayout.CustomPrompts)

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Global.SystemPrompts.ParseFile, "[CONFIG] Global system parseFile prompt: loaded from file"},
		{loadedPrompts.Global.SystemPrompts.ParseText, "[CONFIG] Global system parseText prompt: loaded from file"},
		{loadedPrompts.Global.SystemPrompts.JobMatch, "[CONFIG] Global system jobMatch prompt: loaded from file"},
		{loadedPrompts.Global.SystemPrompts.GenerateLayout, "[CONFIG] Global system generateLayout prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.ParseFile, "[CONFIG] Global user parseFile prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.ParseText, "[CONFIG] Global user parseText prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.JobMatch, "[CONFIG] Global user jobMatch prompt: loaded from file"},
		{loadedPrompts.Global.UserPrompts.GenerateLayout, "[CONFIG] Global user generateLayout prompt: loaded from file"},
		{loadedPrompts.ParseFile.SystemPrompts.ParseFile, "[CONFIG] ParseFile-specific system prompt: loaded from file"},
		{loadedPrompts.ParseFile.UserPrompts.ParseFile, "[CONFIG] ParseFile-specific user prompt: loaded from file"},
		{loadedPrompts.ParseText.SystemPrompts.ParseText, "[CONFIG] ParseText-specific system prompt: loaded from file"},
		{loadedPrompts.ParseText.UserPrompts.ParseText, "[CONFIG] ParseText-specific user prompt: loaded from file"},
		{loadedPrompts.JobMatch.SystemPrompts.JobMatch, "[CONFIG] JobMatch-specific system prompt: loaded from file"},
		{loadedPrompts.JobMatch.UserPrompts.JobMatch, "[CONFIG] JobMatch-specific user prompt: loaded from file"},
		{loadedPrompts.GenerateLayout.SystemPrompts.GenerateLayout, "[CONFIG] GenerateLayout-specific system prompt: loaded from file"},
		{loadedPrompts.GenerateLayout.UserPrompts.GenerateLayout, "[CONFIG] GenerateLayout-specific user prompt: loaded from file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
