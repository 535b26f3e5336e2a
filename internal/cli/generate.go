package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"resumeforge/internal/ai"
	"resumeforge/internal/common"
	"resumeforge/internal/schema"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [resume-json-file]",
	Short: "Generate a print-ready text resume from a structured document",
	Long: `Generate a formatted, print-ready text resume from a structured resume
JSON file (as produced by the parse command). The --template flag overrides
the template stored in the resume; available templates are chronological,
simple and professional.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if generateConfig.OutputFormat == "" {
			generateConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if err := common.ValidateOutputFormat(generateConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
			return err
		}
		// Validate the template override against the closed template list
		if generateTemplate != "" && !slices.Contains(schema.TemplateOptions, generateTemplate) {
			return fmt.Errorf("unknown template '%s'. Available templates: %v",
				generateTemplate, schema.TemplateOptions)
		}
		return nil
	},
	RunE: runGenerate,
}

var (
	generateConfig   common.CommandConfig
	generateTemplate string
)

func init() {
	generateCmd.Flags().StringVarP(&generateConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	generateCmd.Flags().StringVar(&generateConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	generateCmd.Flags().StringVarP(&generateTemplate, "template", "t", "", "Resume template: chronological, simple, or professional")

	// Add completion for format and template flags
	_ = generateCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	_ = generateCmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return schema.TemplateOptions, cobra.ShellCompDirectiveNoFileComp
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for the layout operation
	generateAIConfig := cfg.GetGenerateLayoutConfig()
	aiService, err := ai.NewService(&generateAIConfig, "generateLayout", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.GenerateResumeInput, error) {
		if len(contents) != 1 {
			return types.GenerateResumeInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		if !json.Valid([]byte(contents[0])) {
			return types.GenerateResumeInput{}, fmt.Errorf("resume file %s is not valid JSON", args[0])
		}
		return types.GenerateResumeInput{
			Resume:   json.RawMessage(contents[0]),
			Template: generateTemplate,
		}, nil
	}

	logDetails := func(input types.GenerateResumeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume generation",
			"resume_bytes", len(input.Resume),
			"template", input.Template,
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	generateOperation := func(ctx context.Context, input types.GenerateResumeInput) (types.GenerateResumeOutput, *ai.TokenUsage, error) {
		return aiService.GenerateLayout(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		generateConfig,
		args,
		createInput,
		generateOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate resume: %w", err)
	}
	logger.Info("Resume generation completed successfully")
	return nil
}
