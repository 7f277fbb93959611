package cli

import (
	"context"
	"fmt"

	"resumelift/internal/ai"
	"resumelift/internal/common"
	"resumelift/internal/config"
	"resumelift/internal/errors"
	"resumelift/internal/pipeline"
	"resumelift/internal/refdata"
	"resumelift/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume against the cached job market",
	Long: `Analyze a plain-text resume against pre-analyzed job-market data.

The analysis includes:
- Experience detection and level classification
- Skill and project gap analysis against the curriculum vocabulary
- ATS and job relevance scoring
- Market demand summary for the detected experience level

The resulting analysis JSON is the input to the improve command.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// newPipeline wires the reference data store, the AI service, and the
// pipeline for one-shot CLI use. The caller must Close the returned
// service when done.
func newPipeline(cfg *config.Config, logger *errors.Logger) (*pipeline.Pipeline, *ai.Service, error) {
	store, err := refdata.Load(cfg.App.DataDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	aiService, err := ai.NewService(&cfg.AI, cfg.App.AuditDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI service: %w", err)
	}

	return pipeline.New(aiService.Provider, store, cfg.AI.ScoringRubric, logger), aiService, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	p, aiService, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := aiService.Close(); err != nil {
			logger.Warn("Failed to close AI service", "error", err)
		}
	}()

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return contents[0], nil
	}

	logDetails := func(text string, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_chars", len(text),
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, text string) (*types.FullAnalysis, error) {
		return p.AnalyzeResume(ctx, text)
	}

	err = common.RunPipelineCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		createInput,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
