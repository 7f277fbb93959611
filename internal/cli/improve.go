package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"resumelift/internal/common"
	"resumelift/internal/extract"
	"resumelift/internal/types"

	"github.com/spf13/cobra"
)

var improveCmd = &cobra.Command{
	Use:   "improve [resume-file] [analysis-file]",
	Short: "Generate an improved resume from an analysis",
	Long: `Rewrite a resume using the result of a previous analyze run.

The first argument is the plain-text resume, the second the analysis JSON
produced by the analyze command. The rewrite preserves every hyperlink in
the original, enhances skills the resume already demonstrates, and adds
missing skills and projects backed by curriculum modules. The output
includes the improved text, the strategy, change tracking, and market fit.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if improveConfig.OutputFormat == "" {
			improveConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(improveConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runImprove,
}

var improveConfig common.CommandConfig

func init() {
	improveCmd.Flags().StringVarP(&improveConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	improveCmd.Flags().StringVar(&improveConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = improveCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// improveInput pairs the resume document with its parsed analysis
type improveInput struct {
	doc      *types.ExtractedDocument
	analysis *types.FullAnalysis
}

func runImprove(cmd *cobra.Command, args []string) error {
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

	createInput := func(contents []string) (improveInput, error) {
		if len(contents) != 2 {
			return improveInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}

		var analysis types.FullAnalysis
		if err := json.Unmarshal([]byte(contents[1]), &analysis); err != nil {
			return improveInput{}, fmt.Errorf("parsing analysis file: %w", err)
		}

		// Plain-text input carries no annotations, so link discovery
		// runs on the text itself
		doc := &types.ExtractedDocument{
			Text:  contents[0],
			Links: extract.FilterRelevant(extract.DiscoverTextLinks(contents[0])),
		}
		return improveInput{doc: doc, analysis: &analysis}, nil
	}

	logDetails := func(input improveInput, cfg common.CommandConfig) {
		logger.Info("Starting resume improvement",
			"resume_chars", len(input.doc.Text),
			"links", len(input.doc.Links),
			"level", string(input.analysis.Gap.Level),
			"output_format", cfg.OutputFormat)
	}

	improveOperation := func(ctx context.Context, input improveInput) (*types.PipelineResult, error) {
		return p.GenerateImprovedResume(ctx, input.doc, input.analysis)
	}

	err = common.RunPipelineCommand(
		cmd.Context(),
		logger,
		improveConfig,
		args,
		createInput,
		improveOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to improve resume: %w", err)
	}
	logger.Info("Resume improvement completed successfully")
	return nil
}
