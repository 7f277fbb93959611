package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"resumelift/internal/ai"
	"resumelift/internal/errors"
	"resumelift/internal/refdata"
	"resumelift/internal/types"
)

// fakeProvider scripts the five completion calls so pipeline behavior can
// be tested without a model
type fakeProvider struct {
	gap      func(ai.GapInput) (types.GapAnalysis, error)
	assess   func(ai.AssessmentInput) (types.Assessment, error)
	strategy func(ai.StrategyInput) (types.ImprovementStrategy, error)
	write    func(ai.WriteInput) (string, error)
	track    func(ai.TrackInput) (types.ChangeTracking, error)
}

func (f *fakeProvider) GapAnalysis(_ context.Context, in ai.GapInput) (types.GapAnalysis, *ai.TokenUsage, error) {
	out, err := f.gap(in)
	return out, nil, err
}

func (f *fakeProvider) Assessment(_ context.Context, in ai.AssessmentInput) (types.Assessment, *ai.TokenUsage, error) {
	out, err := f.assess(in)
	return out, nil, err
}

func (f *fakeProvider) Strategy(_ context.Context, in ai.StrategyInput) (types.ImprovementStrategy, *ai.TokenUsage, error) {
	out, err := f.strategy(in)
	return out, nil, err
}

func (f *fakeProvider) WriteResume(_ context.Context, in ai.WriteInput) (string, *ai.TokenUsage, error) {
	out, err := f.write(in)
	return out, nil, err
}

func (f *fakeProvider) TrackChanges(_ context.Context, in ai.TrackInput) (types.ChangeTracking, *ai.TokenUsage, error) {
	out, err := f.track(in)
	return out, nil, err
}

func (f *fakeProvider) GetModelInfo(context.Context) *ai.ModelInfo { return nil }
func (f *fakeProvider) Close() error                              { return nil }

func loadStore(t *testing.T) *refdata.Store {
	t.Helper()
	store, err := refdata.Load("../refdata/testdata", nil)
	if err != nil {
		t.Fatalf("loading reference data: %v", err)
	}
	return store
}

const resumeText = `Jane Doe, aspiring data analyst with six months of internship experience.
Skills: Excel, SQL basics. Projects: canteen survey, library tracker.
Portfolio: https://github.com/janedoe`

func baseGap() types.GapAnalysis {
	return types.GapAnalysis{
		ExperienceYears:     0.5,
		ExperienceReasoning: "six month internship",
		SkillsPresent:       []string{"Excel", "SQL"},
		SkillsMissing:       []string{"Python", "Power BI"},
		ProjectsToKeep:      []string{"canteen survey"},
		ProjectsToRemove:    []string{"library tracker"},
	}
}

func baseStrategy() types.ImprovementStrategy {
	return types.ImprovementStrategy{
		SkillsToEnhance: []types.SkillEnhancement{
			{BaseSkill: "Excel", Enhancement: "Excel with Power Query", Module: "Excel & Power Query Mastery"},
		},
		SkillsToAdd: []types.SkillAddition{
			{Skill: "Python", Module: "Python for Data Analysis"},
			{Skill: "Power BI", Module: "Business Intelligence with Power BI"},
		},
		ProjectsToAdd: []types.ProjectAddition{
			{Name: "Customer Churn EDA", Module: "Python for Data Analysis", Technologies: []string{"Pandas"}, Description: "Churn analysis"},
		},
		CurriculumMapping: []types.ModuleMapping{
			{Module: "Python for Data Analysis", Skills: []string{"Python"}},
		},
	}
}

func happyProvider() *fakeProvider {
	return &fakeProvider{
		gap: func(ai.GapInput) (types.GapAnalysis, error) { return baseGap(), nil },
		assess: func(ai.AssessmentInput) (types.Assessment, error) {
			return types.Assessment{
				KeywordsPresent:   []string{"excel"},
				KeywordsMissing:   []string{"python"},
				ATSReasoning:      "plain layout",
				JobRelevanceScore: 42,
				ATSScore:          55,
				MarketAlignment:   "partially aligned",
			}, nil
		},
		strategy: func(ai.StrategyInput) (types.ImprovementStrategy, error) { return baseStrategy(), nil },
		write: func(in ai.WriteInput) (string, error) {
			var sb strings.Builder
			sb.WriteString("Jane Doe\nData Analyst in training, skilled in Excel, SQL, Python and Power BI.\n")
			for _, link := range in.Links {
				sb.WriteString(link.URL + "\n")
			}
			sb.WriteString("Projects: canteen survey, Customer Churn EDA\n")
			return sb.String(), nil
		},
		track: func(ai.TrackInput) (types.ChangeTracking, error) {
			return types.ChangeTracking{
				SkillsAdded:          []string{"Python", "Power BI"},
				SkillsEnhanced:       []string{"Excel"},
				ProjectsAdded:        []string{"Customer Churn EDA"},
				JobRelevanceScore:    78,
				ATSScore:             82,
				EstimatedImprovement: "+36%",
			}, nil
		},
	}
}

func newTestPipeline(t *testing.T, provider ai.Provider) *Pipeline {
	t.Helper()
	return New(provider, loadStore(t), "", nil)
}

func TestAnalyzeResume(t *testing.T) {
	p := newTestPipeline(t, happyProvider())

	analysis, err := p.AnalyzeResume(context.Background(), resumeText)
	if err != nil {
		t.Fatalf("AnalyzeResume() error = %v", err)
	}

	// 0.5 years classifies as Fresher in code, whatever the model said
	if analysis.Gap.Level != types.LevelFresher {
		t.Errorf("Level = %q, want Fresher", analysis.Gap.Level)
	}
	if analysis.MarketSummary.JobsAnalyzed != 120 {
		t.Errorf("JobsAnalyzed = %d, want 120", analysis.MarketSummary.JobsAnalyzed)
	}
	if len(analysis.MarketSummary.TopSkills) == 0 {
		t.Fatal("market summary has no top skills")
	}
	if analysis.MarketSummary.TopSkills[0].Skill != "Excel" {
		t.Errorf("top skill = %q, want Excel", analysis.MarketSummary.TopSkills[0].Skill)
	}
	if analysis.Assessment.JobRelevanceScore != 42 {
		t.Errorf("JobRelevanceScore = %v", analysis.Assessment.JobRelevanceScore)
	}
}

func TestAnalyzeResumeRejectsShortText(t *testing.T) {
	p := newTestPipeline(t, happyProvider())

	_, err := p.AnalyzeResume(context.Background(), "too short")
	if err == nil {
		t.Fatal("expected error for short text")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeInvalidRequest {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAnalyzeResumeFiltersOffVocabularySkills(t *testing.T) {
	provider := happyProvider()
	provider.gap = func(ai.GapInput) (types.GapAnalysis, error) {
		gap := baseGap()
		// Kubernetes is not in the curriculum vocabulary; Excel is already present
		gap.SkillsMissing = []string{"Python", "Kubernetes", "MS Excel"}
		return gap, nil
	}
	p := newTestPipeline(t, provider)

	analysis, err := p.AnalyzeResume(context.Background(), resumeText)
	if err != nil {
		t.Fatalf("AnalyzeResume() error = %v", err)
	}

	if len(analysis.Gap.SkillsMissing) != 1 || analysis.Gap.SkillsMissing[0] != "Python" {
		t.Errorf("SkillsMissing = %v, want [Python]", analysis.Gap.SkillsMissing)
	}
}

func TestAnalyzeResumeClampsScores(t *testing.T) {
	provider := happyProvider()
	provider.assess = func(ai.AssessmentInput) (types.Assessment, error) {
		return types.Assessment{JobRelevanceScore: 140, ATSScore: -5}, nil
	}
	p := newTestPipeline(t, provider)

	analysis, err := p.AnalyzeResume(context.Background(), resumeText)
	if err != nil {
		t.Fatalf("AnalyzeResume() error = %v", err)
	}
	if analysis.Assessment.JobRelevanceScore != 100 || analysis.Assessment.ATSScore != 0 {
		t.Errorf("scores not clamped: %+v", analysis.Assessment)
	}
}

func TestAnalyzeResumeExperienceLevels(t *testing.T) {
	tests := []struct {
		years float64
		want  types.ExperienceLevel
	}{
		{0.5, types.LevelFresher},
		{1.0, types.LevelFresher},
		{2.5, types.LevelIntermediate},
		{3.0, types.LevelIntermediate},
		{7.0, types.LevelExperienced},
	}

	for _, tt := range tests {
		provider := happyProvider()
		provider.gap = func(ai.GapInput) (types.GapAnalysis, error) {
			gap := baseGap()
			gap.ExperienceYears = tt.years
			return gap, nil
		}
		p := newTestPipeline(t, provider)

		analysis, err := p.AnalyzeResume(context.Background(), resumeText)
		if err != nil {
			t.Fatalf("AnalyzeResume(%v years) error = %v", tt.years, err)
		}
		if analysis.Gap.Level != tt.want {
			t.Errorf("years %.1f: Level = %q, want %q", tt.years, analysis.Gap.Level, tt.want)
		}
	}
}

func extractedDoc() *types.ExtractedDocument {
	return &types.ExtractedDocument{
		Text: resumeText,
		Links: []types.Link{
			{URL: "https://github.com/janedoe", Provenance: types.LinkFromText},
		},
	}
}

func fresherAnalysis(t *testing.T) *types.FullAnalysis {
	t.Helper()
	p := newTestPipeline(t, happyProvider())
	analysis, err := p.AnalyzeResume(context.Background(), resumeText)
	if err != nil {
		t.Fatalf("AnalyzeResume() error = %v", err)
	}
	return analysis
}

func TestGenerateImprovedResume(t *testing.T) {
	p := newTestPipeline(t, happyProvider())
	analysis := fresherAnalysis(t)

	result, err := p.GenerateImprovedResume(context.Background(), extractedDoc(), analysis)
	if err != nil {
		t.Fatalf("GenerateImprovedResume() error = %v", err)
	}

	if !strings.Contains(result.ImprovedText, "https://github.com/janedoe") {
		t.Error("original link missing from improved resume")
	}
	if result.Tracking.EstimatedImprovement != "+36%" {
		t.Errorf("EstimatedImprovement = %q", result.Tracking.EstimatedImprovement)
	}
	if result.LearningComparison.Note == "" || len(result.LearningComparison.Paths) != 2 {
		t.Errorf("learning comparison malformed: %+v", result.LearningComparison)
	}
	if result.MarketStats.Level != types.LevelFresher {
		t.Errorf("MarketStats.Level = %q", result.MarketStats.Level)
	}
	// Improved text names Excel, SQL, Python and Power BI out of the
	// fixture's top five market skills
	if result.MarketStats.MatchPercentage != 80 {
		t.Errorf("MatchPercentage = %v, want 80", result.MarketStats.MatchPercentage)
	}
	wantModules := []string{
		"Excel & Power Query Mastery",
		"Python for Data Analysis",
		"Business Intelligence with Power BI",
	}
	if len(result.CurriculumUsed) != len(wantModules) {
		t.Fatalf("CurriculumUsed = %v, want %v", result.CurriculumUsed, wantModules)
	}
	for i, want := range wantModules {
		if result.CurriculumUsed[i] != want {
			t.Errorf("CurriculumUsed[%d] = %q, want %q", i, result.CurriculumUsed[i], want)
		}
	}
}

func TestGenerateRejectsProjectCountMismatch(t *testing.T) {
	provider := happyProvider()
	provider.strategy = func(ai.StrategyInput) (types.ImprovementStrategy, error) {
		s := baseStrategy()
		s.ProjectsToAdd = append(s.ProjectsToAdd, types.ProjectAddition{
			Name: "Extra Project", Module: "SQL for Analytics",
		})
		return s, nil
	}
	p := newTestPipeline(t, provider)

	_, err := p.GenerateImprovedResume(context.Background(), extractedDoc(), fresherAnalysis(t))
	assertValidationFailure(t, err, "projects")
}

func TestGenerateRejectsUnknownEnhancementBase(t *testing.T) {
	provider := happyProvider()
	provider.strategy = func(ai.StrategyInput) (types.ImprovementStrategy, error) {
		s := baseStrategy()
		s.SkillsToEnhance[0].BaseSkill = "Tableau"
		return s, nil
	}
	p := newTestPipeline(t, provider)

	_, err := p.GenerateImprovedResume(context.Background(), extractedDoc(), fresherAnalysis(t))
	assertValidationFailure(t, err, "not among present skills")
}

func TestGenerateRejectsDroppedLink(t *testing.T) {
	provider := happyProvider()
	provider.write = func(ai.WriteInput) (string, error) {
		return "An improved resume that forgot every link.", nil
	}
	p := newTestPipeline(t, provider)

	_, err := p.GenerateImprovedResume(context.Background(), extractedDoc(), fresherAnalysis(t))
	assertValidationFailure(t, err, "was dropped")
}

func TestGenerateRejectsExperienceSectionForFresher(t *testing.T) {
	provider := happyProvider()
	provider.write = func(in ai.WriteInput) (string, error) {
		return "Professional Experience\nNone yet.\nhttps://github.com/janedoe", nil
	}
	p := newTestPipeline(t, provider)

	_, err := p.GenerateImprovedResume(context.Background(), extractedDoc(), fresherAnalysis(t))
	assertValidationFailure(t, err, "professional experience")
}

func TestGenerateRejectsUntraceableTracking(t *testing.T) {
	provider := happyProvider()
	provider.track = func(ai.TrackInput) (types.ChangeTracking, error) {
		return types.ChangeTracking{
			SkillsAdded:       []string{"Rust"},
			JobRelevanceScore: 70,
			ATSScore:          70,
		}, nil
	}
	p := newTestPipeline(t, provider)

	_, err := p.GenerateImprovedResume(context.Background(), extractedDoc(), fresherAnalysis(t))
	assertValidationFailure(t, err, "not in the strategy")
}

func TestGenerateClampsTrackingScores(t *testing.T) {
	provider := happyProvider()
	provider.track = func(ai.TrackInput) (types.ChangeTracking, error) {
		return types.ChangeTracking{
			SkillsAdded:       []string{"Python"},
			JobRelevanceScore: 150,
			ATSScore:          -10,
		}, nil
	}
	p := newTestPipeline(t, provider)

	// Out-of-range re-scores are clamped into [0,100], never rejected
	result, err := p.GenerateImprovedResume(context.Background(), extractedDoc(), fresherAnalysis(t))
	if err != nil {
		t.Fatalf("GenerateImprovedResume() error = %v", err)
	}
	if result.Tracking.JobRelevanceScore != 100 || result.Tracking.ATSScore != 0 {
		t.Errorf("scores not clamped: %+v", result.Tracking)
	}
}

func TestGeneratePropagatesProviderFailure(t *testing.T) {
	provider := happyProvider()
	provider.strategy = func(ai.StrategyInput) (types.ImprovementStrategy, error) {
		return types.ImprovementStrategy{}, errors.NewAIError(errors.ErrCodeCompletionFailed, "provider down", nil)
	}
	p := newTestPipeline(t, provider)

	_, err := p.GenerateImprovedResume(context.Background(), extractedDoc(), fresherAnalysis(t))
	if err == nil {
		t.Fatal("expected provider failure to propagate")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeCompletionFailed {
		t.Errorf("unexpected error: %v", err)
	}
}

func assertValidationFailure(t *testing.T, err error, fragment string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("error type %T, want *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeValidationFailed {
		t.Errorf("Code = %q, want VALIDATION_FAILED", appErr.Code)
	}
	if !strings.Contains(strings.ToLower(appErr.Message), strings.ToLower(fragment)) {
		t.Errorf("message %q does not mention %q", appErr.Message, fragment)
	}
}

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Excel", "excel"},
		{"MS Excel", "excel"},
		{"Microsoft Excel", "excel"},
		{"MySQL", "sql"},
		{"PostgreSQL", "sql"},
		{"SQL Server", "sql"},
		{"  Power BI  ", "power bi"},
		{"Python", "python"},
	}

	for _, tt := range tests {
		if got := NormalizeSkillName(tt.in); got != tt.want {
			t.Errorf("NormalizeSkillName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCertificationYear(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if got := certificationYear(now); got != 2027 {
		t.Errorf("certificationYear() = %d, want 2027", got)
	}
}
