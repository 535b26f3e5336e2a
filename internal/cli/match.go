package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"resumeforge/internal/ai"
	"resumeforge/internal/common"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [resume-json-file] [job-description-file]",
	Short: "Tailor a structured resume to a job posting",
	Long: `Tailor a structured resume to a specific job posting using AI.
The command takes two arguments: the path to a structured resume JSON file
(as produced by the parse command) and the path to the job description file.
The job description from the file always ends up in the updated resume,
regardless of what the model returns.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

var matchConfig common.CommandConfig

func init() {
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = matchCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for the job match operation
	matchAIConfig := cfg.GetJobMatchConfig()
	aiService, err := ai.NewService(&matchAIConfig, "jobMatch", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.JobMatchInput, error) {
		if len(contents) != 2 {
			return types.JobMatchInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		if !json.Valid([]byte(contents[0])) {
			return types.JobMatchInput{}, fmt.Errorf("resume file %s is not valid JSON", args[0])
		}
		return types.JobMatchInput{
			Resume:         json.RawMessage(contents[0]),
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input types.JobMatchInput, cfg common.CommandConfig) {
		logger.Info("Starting job match",
			"resume_bytes", len(input.Resume),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	// Create a wrapper function that uses our specific AI service
	matchOperation := func(ctx context.Context, input types.JobMatchInput) (types.JobMatchOutput, *ai.TokenUsage, error) {
		return aiService.MatchJob(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		matchConfig,
		args,
		createInput,
		matchOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to match resume: %w", err)
	}
	logger.Info("Job match completed successfully")
	return nil
}
