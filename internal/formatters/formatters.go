package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumelift/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "FullAnalysis", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "FullAnalysis", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "PipelineResult", &ResultTextFormatter{})
	registry.RegisterFormatter("markdown", "PipelineResult", &ResultMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case *types.FullAnalysis, types.FullAnalysis:
		return "FullAnalysis"
	case *types.PipelineResult, types.PipelineResult:
		return "PipelineResult"
	default:
		return "any"
	}
}

func asFullAnalysis(data any) (*types.FullAnalysis, bool) {
	switch v := data.(type) {
	case *types.FullAnalysis:
		return v, v != nil
	case types.FullAnalysis:
		return &v, true
	}
	return nil, false
}

func asPipelineResult(data any) (*types.PipelineResult, bool) {
	switch v := data.(type) {
	case *types.PipelineResult:
		return v, v != nil
	case types.PipelineResult:
		return &v, true
	}
	return nil, false
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter handles text formatting for resume analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := asFullAnalysis(data)
	if !ok {
		return "", fmt.Errorf("expected FullAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== GAP ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Experience: %.1f years (%s)\n", result.Gap.ExperienceYears, result.Gap.Level))
	if result.Gap.ExperienceReasoning != "" {
		output.WriteString(result.Gap.ExperienceReasoning)
		output.WriteString("\n")
	}
	output.WriteString("\n")
	writeSkillList(&output, "Skills present:", result.Gap.SkillsPresent)
	writeSkillList(&output, "Skills missing:", result.Gap.SkillsMissing)
	writeSkillList(&output, "Projects to keep:", result.Gap.ProjectsToKeep)
	writeSkillList(&output, "Projects to remove:", result.Gap.ProjectsToRemove)

	output.WriteString("=== ASSESSMENT ===\n\n")
	output.WriteString(fmt.Sprintf("ATS score: %.0f/100\n", result.Assessment.ATSScore))
	output.WriteString(fmt.Sprintf("Job relevance score: %.0f/100\n\n", result.Assessment.JobRelevanceScore))
	if result.Assessment.ATSReasoning != "" {
		output.WriteString("ATS reasoning:\n")
		output.WriteString(result.Assessment.ATSReasoning)
		output.WriteString("\n\n")
	}
	writeSkillList(&output, "Keywords present:", result.Assessment.KeywordsPresent)
	writeSkillList(&output, "Keywords missing:", result.Assessment.KeywordsMissing)
	if result.Assessment.MarketAlignment != "" {
		output.WriteString("Market alignment:\n")
		output.WriteString(result.Assessment.MarketAlignment)
		output.WriteString("\n\n")
	}

	output.WriteString("=== MARKET SUMMARY ===\n\n")
	output.WriteString(fmt.Sprintf("Level: %s (%d jobs analyzed)\n\n",
		result.MarketSummary.Level, result.MarketSummary.JobsAnalyzed))
	if len(result.MarketSummary.TopSkills) > 0 {
		output.WriteString("Top skills in demand:\n")
		for _, skill := range result.MarketSummary.TopSkills {
			output.WriteString(fmt.Sprintf("- %s: %.1f%% of postings (%s demand)\n",
				skill.Skill, skill.Percentage, skill.Demand))
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "FullAnalysis"
}

// AnalysisMarkdownFormatter handles markdown formatting for resume analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asFullAnalysis(data)
	if !ok {
		return "", fmt.Errorf("expected FullAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")

	output.WriteString("## Gap Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Experience:** %.1f years (%s)\n\n", result.Gap.ExperienceYears, result.Gap.Level))
	if result.Gap.ExperienceReasoning != "" {
		output.WriteString(result.Gap.ExperienceReasoning)
		output.WriteString("\n\n")
	}
	writeMarkdownList(&output, "### Skills Present", result.Gap.SkillsPresent)
	writeMarkdownList(&output, "### Skills Missing", result.Gap.SkillsMissing)
	writeMarkdownList(&output, "### Projects to Keep", result.Gap.ProjectsToKeep)
	writeMarkdownList(&output, "### Projects to Remove", result.Gap.ProjectsToRemove)

	output.WriteString("## Assessment\n\n")
	output.WriteString(fmt.Sprintf("**ATS Score:** %.0f/100\n\n", result.Assessment.ATSScore))
	output.WriteString(fmt.Sprintf("**Job Relevance Score:** %.0f/100\n\n", result.Assessment.JobRelevanceScore))
	if result.Assessment.ATSReasoning != "" {
		output.WriteString("### ATS Reasoning\n")
		output.WriteString(result.Assessment.ATSReasoning)
		output.WriteString("\n\n")
	}
	writeMarkdownList(&output, "### Keywords Present", result.Assessment.KeywordsPresent)
	writeMarkdownList(&output, "### Keywords Missing", result.Assessment.KeywordsMissing)
	if result.Assessment.MarketAlignment != "" {
		output.WriteString("### Market Alignment\n")
		output.WriteString(result.Assessment.MarketAlignment)
		output.WriteString("\n\n")
	}

	output.WriteString("## Market Summary\n\n")
	output.WriteString(fmt.Sprintf("**Level:** %s (%d jobs analyzed)\n\n",
		result.MarketSummary.Level, result.MarketSummary.JobsAnalyzed))
	if len(result.MarketSummary.TopSkills) > 0 {
		output.WriteString("| Skill | Demand | Share of Postings |\n")
		output.WriteString("|-------|--------|-------------------|\n")
		for _, skill := range result.MarketSummary.TopSkills {
			output.WriteString(fmt.Sprintf("| %s | %s | %.1f%% |\n",
				skill.Skill, skill.Demand, skill.Percentage))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "FullAnalysis"
}

// ResultTextFormatter handles text formatting for improved resume results
type ResultTextFormatter struct{}

func (rtf *ResultTextFormatter) Format(data any) (string, error) {
	result, ok := asPipelineResult(data)
	if !ok {
		return "", fmt.Errorf("expected PipelineResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== IMPROVED RESUME ===\n\n")
	output.WriteString(result.ImprovedText)
	output.WriteString("\n\n")

	output.WriteString("=== STRATEGY ===\n\n")
	if len(result.Strategy.SkillsToEnhance) > 0 {
		output.WriteString("Skills enhanced:\n")
		for _, e := range result.Strategy.SkillsToEnhance {
			output.WriteString(fmt.Sprintf("- %s -> %s (%s)\n", e.BaseSkill, e.Enhancement, e.Module))
		}
		output.WriteString("\n")
	}
	if len(result.Strategy.SkillsToAdd) > 0 {
		output.WriteString("Skills added:\n")
		for _, a := range result.Strategy.SkillsToAdd {
			output.WriteString(fmt.Sprintf("- %s (%s)\n", a.Skill, a.Module))
		}
		output.WriteString("\n")
	}
	if len(result.Strategy.ProjectsToAdd) > 0 {
		output.WriteString("Projects added:\n")
		for _, p := range result.Strategy.ProjectsToAdd {
			output.WriteString(fmt.Sprintf("- %s (%s): %s\n", p.Name, p.Module, p.Description))
			if len(p.Technologies) > 0 {
				output.WriteString(fmt.Sprintf("  Technologies: %s\n", strings.Join(p.Technologies, ", ")))
			}
		}
		output.WriteString("\n")
	}

	output.WriteString("=== CHANGE TRACKING ===\n\n")
	writeSkillList(&output, "Skills added:", result.Tracking.SkillsAdded)
	writeSkillList(&output, "Skills enhanced:", result.Tracking.SkillsEnhanced)
	writeSkillList(&output, "Projects added:", result.Tracking.ProjectsAdded)
	output.WriteString(fmt.Sprintf("ATS score: %.0f/100\n", result.Tracking.ATSScore))
	output.WriteString(fmt.Sprintf("Job relevance score: %.0f/100\n", result.Tracking.JobRelevanceScore))
	if result.Tracking.EstimatedImprovement != "" {
		output.WriteString(fmt.Sprintf("Estimated improvement: %s\n", result.Tracking.EstimatedImprovement))
	}
	output.WriteString("\n")

	output.WriteString("=== MARKET FIT ===\n\n")
	output.WriteString(fmt.Sprintf("Level: %s, match: %.0f%% of top in-demand skills\n",
		result.MarketStats.Level, result.MarketStats.MatchPercentage))
	for _, skill := range result.MarketStats.MatchedSkills {
		output.WriteString(fmt.Sprintf("- %s: %.1f%% of postings (%s demand)\n",
			skill.Skill, skill.Percentage, skill.Demand))
	}
	output.WriteString("\n")

	if len(result.LearningComparison.Paths) > 0 {
		output.WriteString("=== LEARNING COMPARISON ===\n\n")
		output.WriteString(result.LearningComparison.Note)
		output.WriteString("\n")
		for _, path := range result.LearningComparison.Paths {
			output.WriteString(fmt.Sprintf("- %s: ~%d months. %s\n",
				path.Approach, path.DurationMonths, path.Description))
		}
		output.WriteString("\n")
	}

	writeSkillList(&output, "Curriculum modules used:", result.CurriculumUsed)

	return output.String(), nil
}

func (rtf *ResultTextFormatter) SupportedType() string {
	return "PipelineResult"
}

// ResultMarkdownFormatter handles markdown formatting for improved resume results
type ResultMarkdownFormatter struct{}

func (rmf *ResultMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asPipelineResult(data)
	if !ok {
		return "", fmt.Errorf("expected PipelineResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Improved Resume\n\n")
	output.WriteString(result.ImprovedText)
	output.WriteString("\n\n")

	output.WriteString("## Strategy\n\n")
	if len(result.Strategy.SkillsToEnhance) > 0 {
		output.WriteString("### Skills Enhanced\n")
		for _, e := range result.Strategy.SkillsToEnhance {
			output.WriteString(fmt.Sprintf("- **%s** upgraded with %s (*%s*)\n", e.BaseSkill, e.Enhancement, e.Module))
		}
		output.WriteString("\n")
	}
	if len(result.Strategy.SkillsToAdd) > 0 {
		output.WriteString("### Skills Added\n")
		for _, a := range result.Strategy.SkillsToAdd {
			output.WriteString(fmt.Sprintf("- **%s** (*%s*)\n", a.Skill, a.Module))
		}
		output.WriteString("\n")
	}
	if len(result.Strategy.ProjectsToAdd) > 0 {
		output.WriteString("### Projects Added\n")
		for _, p := range result.Strategy.ProjectsToAdd {
			output.WriteString(fmt.Sprintf("- **%s** (*%s*): %s\n", p.Name, p.Module, p.Description))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Change Tracking\n\n")
	writeMarkdownList(&output, "### Skills Added", result.Tracking.SkillsAdded)
	writeMarkdownList(&output, "### Skills Enhanced", result.Tracking.SkillsEnhanced)
	writeMarkdownList(&output, "### Projects Added", result.Tracking.ProjectsAdded)
	output.WriteString(fmt.Sprintf("**ATS Score:** %.0f/100\n\n", result.Tracking.ATSScore))
	output.WriteString(fmt.Sprintf("**Job Relevance Score:** %.0f/100\n\n", result.Tracking.JobRelevanceScore))
	if result.Tracking.EstimatedImprovement != "" {
		output.WriteString(fmt.Sprintf("**Estimated Improvement:** %s\n\n", result.Tracking.EstimatedImprovement))
	}

	output.WriteString("## Market Fit\n\n")
	output.WriteString(fmt.Sprintf("**Level:** %s, matching %.0f%% of top in-demand skills\n\n",
		result.MarketStats.Level, result.MarketStats.MatchPercentage))
	if len(result.MarketStats.MatchedSkills) > 0 {
		output.WriteString("| Skill | Demand | Share of Postings |\n")
		output.WriteString("|-------|--------|-------------------|\n")
		for _, skill := range result.MarketStats.MatchedSkills {
			output.WriteString(fmt.Sprintf("| %s | %s | %.1f%% |\n",
				skill.Skill, skill.Demand, skill.Percentage))
		}
		output.WriteString("\n")
	}

	if len(result.LearningComparison.Paths) > 0 {
		output.WriteString("## Learning Comparison\n\n")
		output.WriteString(result.LearningComparison.Note)
		output.WriteString("\n\n")
		for _, path := range result.LearningComparison.Paths {
			output.WriteString(fmt.Sprintf("- **%s** (~%d months): %s\n",
				path.Approach, path.DurationMonths, path.Description))
		}
		output.WriteString("\n")
	}

	writeMarkdownList(&output, "## Curriculum Modules Used", result.CurriculumUsed)

	return output.String(), nil
}

func (rmf *ResultMarkdownFormatter) SupportedType() string {
	return "PipelineResult"
}

func writeSkillList(output *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(heading)
	output.WriteString("\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

func writeMarkdownList(output *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(heading)
	output.WriteString("\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
