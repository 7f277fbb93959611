// Package pipeline sequences the five dependent completion calls that turn
// an extracted resume into a full analysis and an improved rewrite. Stage
// outputs are validated and post-processed in code before they feed the
// next call; the model is never trusted with a rule that plain computation
// can enforce.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resumelift/internal/ai"
	"resumelift/internal/errors"
	"resumelift/internal/refdata"
	"resumelift/internal/types"
)

// minResumeChars rejects inputs too short to be a resume before any
// completion call is spent on them
const minResumeChars = 50

// topSkillsForSummary sizes the market summary attached to an analysis
const topSkillsForSummary = 10

// promptSkillsPerLevel is how many ranked market skills each level
// contributes to the gap analysis prompt
const promptSkillsPerLevel = 10

// Pipeline orchestrates the two phases: analysis (gap + assessment) and
// generation (strategy + write + tracking)
type Pipeline struct {
	provider ai.Provider
	store    *refdata.Store
	rubric   string
	logger   *errors.Logger
	tracer   trace.Tracer
}

// New creates the orchestrator. An empty rubric selects the built-in
// scoring rubric.
func New(provider ai.Provider, store *refdata.Store, rubric string, logger *errors.Logger) *Pipeline {
	if rubric == "" {
		rubric = ai.DefaultScoringRubric
	}
	return &Pipeline{
		provider: provider,
		store:    store,
		rubric:   rubric,
		logger:   logger,
		tracer:   otel.Tracer("resumelift.pipeline"),
	}
}

// certificationYear is the year named in rewritten certification lines.
// The original system deliberately dates them one year ahead.
func certificationYear(now time.Time) int {
	return now.Year() + 1
}

// AnalyzeResume runs phase 1: the gap analysis call followed by the
// assessment call, with deterministic post-processing and a validation
// gate after each parse. All-or-nothing; no partial result is returned.
func (p *Pipeline) AnalyzeResume(ctx context.Context, resumeText string) (*types.FullAnalysis, error) {
	ctx, span := p.tracer.Start(ctx, "resumelift.pipeline.analyze")
	defer span.End()

	resumeText = strings.TrimSpace(resumeText)
	if len(resumeText) < minResumeChars {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Resume text is too short (%d characters, minimum %d)", len(resumeText), minResumeChars), nil)
	}

	gap, gapUsage, err := p.provider.GapAnalysis(ctx, ai.GapInput{
		ResumeText:         resumeText,
		FresherSkills:      p.store.FormatTopSkills(types.LevelFresher, promptSkillsPerLevel),
		IntermediateSkills: p.store.FormatTopSkills(types.LevelIntermediate, promptSkillsPerLevel),
		ExperiencedSkills:  p.store.FormatTopSkills(types.LevelExperienced, promptSkillsPerLevel),
		Vocabulary:         p.store.Vocabulary(),
	})
	if err != nil {
		return nil, err
	}
	p.logUsage("gap", gapUsage)

	gap = p.refineGap(gap)
	if err := validateGap(gap, p.store.Vocabulary()); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("pipeline.level", string(gap.Level)),
		attribute.Int("pipeline.skills_missing", len(gap.SkillsMissing)),
	)

	market, err := p.store.Market(gap.Level)
	if err != nil {
		return nil, err
	}

	assessment, assessUsage, err := p.provider.Assessment(ctx, ai.AssessmentInput{
		ResumeText:    resumeText,
		Gap:           gap,
		MarketData:    p.store.FormatMarket(gap.Level),
		ScoringRubric: p.rubric,
	})
	if err != nil {
		return nil, err
	}
	p.logUsage("assess", assessUsage)

	// Clamping is the assessment gate: out-of-range scores are forced
	// into [0,100] rather than rejected
	assessment.JobRelevanceScore = clampScore(assessment.JobRelevanceScore)
	assessment.ATSScore = clampScore(assessment.ATSScore)

	return &types.FullAnalysis{
		Gap:        gap,
		Assessment: assessment,
		MarketSummary: types.MarketSummary{
			Level:        gap.Level,
			JobsAnalyzed: market.TotalJobsAnalyzed,
			TopSkills:    p.store.TopSkills(gap.Level, topSkillsForSummary),
		},
	}, nil
}

// refineGap applies the deterministic rules the model is not trusted with:
// the experience level comes from the reported years, missing skills are
// filtered to the curriculum vocabulary, and present/missing are forced
// disjoint (presence wins).
func (p *Pipeline) refineGap(gap types.GapAnalysis) types.GapAnalysis {
	gap.Level = types.LevelFromYears(gap.ExperienceYears)

	vocab := normalizeSet(p.store.Vocabulary())
	present := normalizeSet(gap.SkillsPresent)

	var missing []string
	dropped := 0
	for _, skill := range gap.SkillsMissing {
		normalized := NormalizeSkillName(skill)
		if !vocab[normalized] || present[normalized] {
			dropped++
			continue
		}
		missing = append(missing, skill)
	}
	gap.SkillsMissing = missing

	if dropped > 0 && p.logger != nil {
		p.logger.Debug("Dropped off-vocabulary or duplicate missing skills",
			"dropped", dropped, "kept", len(missing))
	}
	return gap
}

// GenerateImprovedResume runs phase 2: strategy, rewrite and change
// tracking, each behind its validation gate, then assembles the
// deterministic display views into the final result
func (p *Pipeline) GenerateImprovedResume(ctx context.Context, doc *types.ExtractedDocument, analysis *types.FullAnalysis) (*types.PipelineResult, error) {
	ctx, span := p.tracer.Start(ctx, "resumelift.pipeline.generate")
	defer span.End()

	if doc == nil || strings.TrimSpace(doc.Text) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Resume text is required", nil)
	}
	if analysis == nil || !analysis.Gap.Level.Valid() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"A full analysis from /api/analyze-resume is required", nil)
	}
	gap := analysis.Gap
	span.SetAttributes(attribute.String("pipeline.level", string(gap.Level)))

	strategy, strategyUsage, err := p.provider.Strategy(ctx, ai.StrategyInput{
		Gap:         gap,
		Curriculum:  p.store.FormatCurriculum(),
		RemoveCount: len(gap.ProjectsToRemove),
	})
	if err != nil {
		return nil, err
	}
	p.logUsage("strategy", strategyUsage)

	if err := validateStrategy(strategy, gap, p.store.ModuleNames()); err != nil {
		return nil, err
	}

	improved, writeUsage, err := p.provider.WriteResume(ctx, ai.WriteInput{
		ResumeText:  doc.Text,
		Links:       doc.Links,
		Strategy:    strategy,
		Level:       gap.Level,
		CurrentYear: certificationYear(time.Now()),
	})
	if err != nil {
		return nil, err
	}
	p.logUsage("write", writeUsage)

	if err := validateImprovedResume(improved, doc.Links, gap.Level); err != nil {
		return nil, err
	}

	tracking, trackUsage, err := p.provider.TrackChanges(ctx, ai.TrackInput{
		Strategy:      strategy,
		ImprovedText:  improved,
		Gap:           gap,
		ScoringRubric: p.rubric,
	})
	if err != nil {
		return nil, err
	}
	p.logUsage("track", trackUsage)

	tracking.JobRelevanceScore = clampScore(tracking.JobRelevanceScore)
	tracking.ATSScore = clampScore(tracking.ATSScore)
	if err := validateTracking(tracking, strategy); err != nil {
		return nil, err
	}

	return &types.PipelineResult{
		OriginalText:       doc.Text,
		ImprovedText:       improved,
		Strategy:           strategy,
		Tracking:           tracking,
		LearningComparison: learningComparison(),
		MarketStats:        marketStats(improved, gap.Level, p.store),
		CurriculumUsed:     curriculumUsed(strategy, p.store.ModuleNames()),
	}, nil
}

func (p *Pipeline) logUsage(operation string, usage *ai.TokenUsage) {
	if usage == nil || p.logger == nil {
		return
	}
	p.logger.Debug("Completion call finished",
		"operation", operation,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"total_tokens", usage.TotalTokens)
}
