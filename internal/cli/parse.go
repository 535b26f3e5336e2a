package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"resumeforge/internal/ai"
	"resumeforge/internal/common"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"
	"resumeforge/internal/utils"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Parse a resume file into a structured document",
	Long: `Parse a resume into the structured, normalized document format using AI.
The command takes one argument: the path to the resume. Text files (.txt, .md)
go through the text parser; PDF and image files (.pdf, .png, .jpg, .webp) go
through the vision parser.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if parseConfig.OutputFormat == "" {
			parseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(parseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

// uploadMimeTypes maps file extensions to the mime types the vision parser
// accepts. Anything not listed here is treated as plain resume text.
var uploadMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

func init() {
	parseCmd.Flags().StringVarP(&parseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().StringVar(&parseConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = parseCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if mimeType, ok := uploadMimeTypes[utils.GetFileExtension(args[0])]; ok {
		return runParseFile(cmd.Context(), logger, args[0], mimeType)
	}

	// Create AI service for the text parse operation
	parseAIConfig := cfg.GetParseTextConfig()
	aiService, err := ai.NewService(&parseAIConfig, "parseText", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.ParseTextInput, error) {
		if len(contents) != 1 {
			return types.ParseTextInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.ParseTextInput{Text: contents[0]}, nil
	}

	logDetails := func(input types.ParseTextInput, cfg common.CommandConfig) {
		logger.Info("Starting resume text parse",
			"resume_chars", len(input.Text),
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	parseOperation := func(ctx context.Context, input types.ParseTextInput) (types.ParseOutput, *ai.TokenUsage, error) {
		return aiService.ParseText(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		parseConfig,
		args,
		createInput,
		parseOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}
	logger.Info("Resume parse completed successfully")
	return nil
}

// runParseFile sends a PDF or image resume through the vision parser. The
// file is binary, so it bypasses the text file pipeline.
func runParseFile(ctx context.Context, logger *forgeErrors.Logger, filename, mimeType string) error {
	cfg := getConfigFromContext(ctx)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	if len(data) > ai.MaxUploadSize {
		return fmt.Errorf("resume file exceeds the %dMB upload limit", ai.MaxUploadSize>>20)
	}

	parseAIConfig := cfg.GetParseFileConfig()
	aiService, err := ai.NewService(&parseAIConfig, "parseFile", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	logger.Info("Starting resume file parse",
		"file", filename,
		"mime_type", mimeType,
		"size_bytes", len(data),
		"output_format", parseConfig.OutputFormat)

	input := types.ParseFileInput{
		FileName: filepath.Base(filename),
		MimeType: mimeType,
		Data:     data,
	}

	result, tokenUsage, err := aiService.ParseFile(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}

	if tokenUsage != nil {
		logger.Info("AI token usage",
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens,
			"total_tokens", tokenUsage.TotalTokens)
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(result, parseConfig); err != nil {
		return err
	}
	logger.Info("Resume parse completed successfully")
	return nil
}
