package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
	// OpenRouter endpoint settings are shared unless overridden per operation
	if opCfg.OpenRouter.BaseURL == "" {
		opCfg.OpenRouter.BaseURL = c.AI.OpenRouter.BaseURL
	}
	if opCfg.OpenRouter.AppURL == "" {
		opCfg.OpenRouter.AppURL = c.AI.OpenRouter.AppURL
	}
	if opCfg.OpenRouter.AppName == "" {
		opCfg.OpenRouter.AppName = c.AI.OpenRouter.AppName
	}
}

// GetParseFileConfig returns the AI configuration for the vision file parse
// operation with fallback to global config
func (c *Config) GetParseFileConfig() OperationAIConfig {
	config := c.AI.ParseFile

	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.ParseFile == "" {
		config.CustomPrompts.SystemPrompts.ParseFile = c.AI.CustomPrompts.SystemPrompts.ParseFile
	}
	if config.CustomPrompts.UserPrompts.ParseFile == "" {
		config.CustomPrompts.UserPrompts.ParseFile = c.AI.CustomPrompts.UserPrompts.ParseFile
	}
	// Also copy file paths for potential later loading
	if config.CustomPrompts.SystemPrompts.ParseFileFile == "" {
		config.CustomPrompts.SystemPrompts.ParseFileFile = c.AI.CustomPrompts.SystemPrompts.ParseFileFile
	}
	if config.CustomPrompts.UserPrompts.ParseFileFile == "" {
		config.CustomPrompts.UserPrompts.ParseFileFile = c.AI.CustomPrompts.UserPrompts.ParseFileFile
	}

	return config
}

// GetParseTextConfig returns the AI configuration for the text parse
// operation with fallback to global config
func (c *Config) GetParseTextConfig() OperationAIConfig {
	config := c.AI.ParseText

	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.ParseText == "" {
		config.CustomPrompts.SystemPrompts.ParseText = c.AI.CustomPrompts.SystemPrompts.ParseText
	}
	if config.CustomPrompts.UserPrompts.ParseText == "" {
		config.CustomPrompts.UserPrompts.ParseText = c.AI.CustomPrompts.UserPrompts.ParseText
	}
	if config.CustomPrompts.SystemPrompts.ParseTextFile == "" {
		config.CustomPrompts.SystemPrompts.ParseTextFile = c.AI.CustomPrompts.SystemPrompts.ParseTextFile
	}
	if config.CustomPrompts.UserPrompts.ParseTextFile == "" {
		config.CustomPrompts.UserPrompts.ParseTextFile = c.AI.CustomPrompts.UserPrompts.ParseTextFile
	}

	return config
}

// GetJobMatchConfig returns the AI configuration for the job match operation
// with fallback to global config
func (c *Config) GetJobMatchConfig() OperationAIConfig {
	config := c.AI.JobMatch

	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.JobMatch == "" {
		config.CustomPrompts.SystemPrompts.JobMatch = c.AI.CustomPrompts.SystemPrompts.JobMatch
	}
	if config.CustomPrompts.UserPrompts.JobMatch == "" {
		config.CustomPrompts.UserPrompts.JobMatch = c.AI.CustomPrompts.UserPrompts.JobMatch
	}
	if config.CustomPrompts.SystemPrompts.JobMatchFile == "" {
		config.CustomPrompts.SystemPrompts.JobMatchFile = c.AI.CustomPrompts.SystemPrompts.JobMatchFile
	}
	if config.CustomPrompts.UserPrompts.JobMatchFile == "" {
		config.CustomPrompts.UserPrompts.JobMatchFile = c.AI.CustomPrompts.UserPrompts.JobMatchFile
	}

	return config
}

// GetGenerateLayoutConfig returns the AI configuration for the layout
// generation operation with fallback to global config
func (c *Config) GetGenerateLayoutConfig() OperationAIConfig {
	config := c.AI.GenerateLayout

	c.applyOperationDefaults(&config)

	if config.CustomPrompts.SystemPrompts.GenerateLayout == "" {
		config.CustomPrompts.SystemPrompts.GenerateLayout = c.AI.CustomPrompts.SystemPrompts.GenerateLayout
	}
	if config.CustomPrompts.UserPrompts.GenerateLayout == "" {
		config.CustomPrompts.UserPrompts.GenerateLayout = c.AI.CustomPrompts.UserPrompts.GenerateLayout
	}
	if config.CustomPrompts.SystemPrompts.GenerateLayoutFile == "" {
		config.CustomPrompts.SystemPrompts.GenerateLayoutFile = c.AI.CustomPrompts.SystemPrompts.GenerateLayoutFile
	}
	if config.CustomPrompts.UserPrompts.GenerateLayoutFile == "" {
		config.CustomPrompts.UserPrompts.GenerateLayoutFile = c.AI.CustomPrompts.UserPrompts.GenerateLayoutFile
	}

	return config
}

// GetLoadedParseFilePrompts returns a copy of the loaded prompts for the file parse operation
func (c *Config) GetLoadedParseFilePrompts() OperationLoadedPrompts {
	return loadedPrompts.ParseFile
}

// GetLoadedParseTextPrompts returns a copy of the loaded prompts for the text parse operation
func (c *Config) GetLoadedParseTextPrompts() OperationLoadedPrompts {
	return loadedPrompts.ParseText
}

// GetLoadedJobMatchPrompts returns a copy of the loaded prompts for the job match operation
func (c *Config) GetLoadedJobMatchPrompts() OperationLoadedPrompts {
	return loadedPrompts.JobMatch
}

// GetLoadedGenerateLayoutPrompts returns a copy of the loaded prompts for the layout operation
func (c *Config) GetLoadedGenerateLayoutPrompts() OperationLoadedPrompts {
	return loadedPrompts.GenerateLayout
}

// GetLoadedGlobalPrompts returns a copy of the loaded global prompts
func (c *Config) GetLoadedGlobalPrompts() LoadedPrompts {
	return loadedPrompts.Global
}
