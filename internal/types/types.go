package types

// LinkProvenance tells where in the source document a hyperlink was found
type LinkProvenance string

const (
	LinkFromAnnotation LinkProvenance = "annotation"
	LinkFromText       LinkProvenance = "text"
)

// Link represents a hyperlink discovered in an uploaded document
type Link struct {
	URL        string         `json:"url"`
	AnchorText string         `json:"anchor_text,omitempty"`
	Page       int            `json:"page,omitempty"`
	Provenance LinkProvenance `json:"provenance,omitempty"`
}

// ExtractedDocument is the result of text extraction from an upload
type ExtractedDocument struct {
	Text     string `json:"text"`
	Links    []Link `json:"links"`
	Filename string `json:"filename,omitempty"`
}

// ExperienceLevel classifies a candidate by years of work experience
type ExperienceLevel string

const (
	LevelFresher      ExperienceLevel = "Fresher"
	LevelIntermediate ExperienceLevel = "Intermediate"
	LevelExperienced  ExperienceLevel = "Experienced"
)

// LevelFromYears maps reported work-duration years to an experience level.
// At most one year is Fresher, up to three Intermediate, anything beyond
// that Experienced.
func LevelFromYears(years float64) ExperienceLevel {
	switch {
	case years <= 1:
		return LevelFresher
	case years <= 3:
		return LevelIntermediate
	default:
		return LevelExperienced
	}
}

// Valid reports whether the level is one of the known values
func (l ExperienceLevel) Valid() bool {
	switch l {
	case LevelFresher, LevelIntermediate, LevelExperienced:
		return true
	}
	return false
}

// GapAnalysis is the output of the first pipeline stage. Level is not
// model-reported; it is computed from ExperienceYears after parsing.
type GapAnalysis struct {
	ExperienceYears     float64         `json:"experience_years"`
	ExperienceReasoning string          `json:"experience_reasoning"`
	Level               ExperienceLevel `json:"level"`
	SkillsPresent       []string        `json:"skills_present"`
	SkillsMissing       []string        `json:"skills_missing"`
	ProjectsToKeep      []string        `json:"projects_to_keep"`
	ProjectsToRemove    []string        `json:"projects_to_remove"`
}

// Assessment is the output of the second pipeline stage
type Assessment struct {
	KeywordsPresent   []string `json:"keywords_present"`
	KeywordsMissing   []string `json:"keywords_missing"`
	ATSReasoning      string   `json:"ats_reasoning"`
	JobRelevanceScore float64  `json:"job_relevance_score"`
	ATSScore          float64  `json:"ats_score"`
	MarketAlignment   string   `json:"market_alignment"`
}

// TopSkill is a market-demand ranked skill with its demand tier
type TopSkill struct {
	Skill      string  `json:"skill"`
	Percentage float64 `json:"percentage"`
	Demand     string  `json:"demand"`
}

// MarketSummary is the deterministic market view attached to an analysis
type MarketSummary struct {
	Level        ExperienceLevel `json:"level"`
	JobsAnalyzed int             `json:"jobs_analyzed"`
	TopSkills    []TopSkill      `json:"top_skills"`
}

// FullAnalysis merges both first-phase stages into one immutable result
type FullAnalysis struct {
	Gap           GapAnalysis   `json:"gap_analysis"`
	Assessment    Assessment    `json:"assessment"`
	MarketSummary MarketSummary `json:"market_summary"`
}

// SkillEnhancement upgrades a skill the resume already demonstrates
type SkillEnhancement struct {
	BaseSkill   string `json:"base_skill"`
	Enhancement string `json:"enhancement"`
	Module      string `json:"module"`
}

// SkillAddition introduces a missing skill backed by a curriculum module
type SkillAddition struct {
	Skill  string `json:"skill"`
	Module string `json:"module"`
}

// ProjectAddition is a new portfolio project proposed by the strategy stage
type ProjectAddition struct {
	Name         string   `json:"name"`
	Module       string   `json:"module"`
	Technologies []string `json:"technologies"`
	Description  string   `json:"description"`
}

// ModuleMapping ties a curriculum module to the skills it covers
type ModuleMapping struct {
	Module string   `json:"module"`
	Skills []string `json:"skills"`
}

// ImprovementStrategy is the output of the third pipeline stage
type ImprovementStrategy struct {
	SkillsToEnhance   []SkillEnhancement `json:"skills_to_enhance"`
	SkillsToAdd       []SkillAddition    `json:"skills_to_add"`
	ProjectsToAdd     []ProjectAddition  `json:"projects_to_add"`
	CurriculumMapping []ModuleMapping    `json:"curriculum_mapping"`
}

// ChangeTracking is the output of the fifth pipeline stage. Entries are
// classified against the strategy, which remains the source of truth.
type ChangeTracking struct {
	SkillsAdded          []string `json:"skills_added"`
	SkillsEnhanced       []string `json:"skills_enhanced"`
	ProjectsAdded        []string `json:"projects_added"`
	JobRelevanceScore    float64  `json:"job_relevance_score"`
	ATSScore             float64  `json:"ats_score"`
	EstimatedImprovement string   `json:"estimated_improvement"`
}

// LearningPath is one approach in the learning comparison
type LearningPath struct {
	Approach       string `json:"approach"`
	DurationMonths int    `json:"duration_months"`
	Description    string `json:"description"`
}

// LearningComparison contrasts study approaches. The figures are fixed
// illustrative values, never model output; Note says so on the wire.
type LearningComparison struct {
	Note  string         `json:"note"`
	Paths []LearningPath `json:"paths"`
}

// MarketStats reports how the resume's skills intersect the cached
// market data for the detected level
type MarketStats struct {
	Level           ExperienceLevel `json:"level"`
	MatchedSkills   []TopSkill      `json:"matched_skills"`
	MatchPercentage float64         `json:"match_percentage"`
}

// PipelineResult is the full second-phase output
type PipelineResult struct {
	OriginalText       string              `json:"original_text"`
	ImprovedText       string              `json:"improved_text"`
	Strategy           ImprovementStrategy `json:"strategy"`
	Tracking           ChangeTracking      `json:"tracking"`
	LearningComparison LearningComparison  `json:"learning_comparison"`
	MarketStats        MarketStats         `json:"market_stats"`
	CurriculumUsed     []string            `json:"curriculum_used"`
}
