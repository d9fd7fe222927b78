package cli

import (
	"fmt"

	"talentscreen/internal/ai"
	"talentscreen/internal/common"
	"talentscreen/internal/types"

	"github.com/spf13/cobra"
)

var screenCmd = &cobra.Command{
	Use:   "screen [job-file] [resume-file] [requirements-file]",
	Short: "Screen a resume against a job description",
	Long: `Screen a candidate resume against a job description using AI.
The command takes the path to the job description file and the path to the
resume file, plus an optional third path to a separate requirements file
(otherwise requirements are read as part of the job description). It
produces a match score (0-100), a summary, and lists of strengths,
weaknesses, and missing qualifications.`,
	Args: cobra.RangeArgs(2, 3),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if screenConfig.OutputFormat == "" {
			screenConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(screenConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScreen,
}

var screenConfig common.CommandConfig
var screenJobTitle string

func init() {
	screenCmd.Flags().StringVarP(&screenConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	screenCmd.Flags().StringVar(&screenConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	screenCmd.Flags().StringVarP(&screenJobTitle, "title", "t", "", "Job title for the posting being screened against")

	// Add completion for format flag
	_ = screenCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	gateway, err := ai.NewGeminiGateway(&cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI gateway: %w", err)
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logger.Warn("Failed to close AI gateway", "error", err)
		}
	}()

	createInput := func(contents []string) (types.MatchInput, error) {
		if len(contents) < 2 || len(contents) > 3 {
			return types.MatchInput{}, fmt.Errorf("expected 2 or 3 file paths, got %d", len(contents))
		}
		input := types.MatchInput{
			JobTitle:       screenJobTitle,
			JobDescription: contents[0],
			ResumeText:     contents[1],
		}
		if len(contents) == 3 {
			input.JobRequirements = contents[2]
		}
		return input, nil
	}

	logDetails := func(input types.MatchInput, cfg common.CommandConfig) {
		logger.Info("Starting resume screening",
			"job_title", input.JobTitle,
			"job_chars", len(input.JobDescription),
			"resume_chars", len(input.ResumeText),
			"output_format", cfg.OutputFormat)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		screenConfig,
		args,
		createInput,
		gateway.ScreenResume,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to screen resume: %w", err)
	}
	logger.Info("Resume screening completed successfully")
	return nil
}
