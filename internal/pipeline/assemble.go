package pipeline

import (
	"strings"

	"resumelift/internal/refdata"
	"resumelift/internal/types"
)

// topSkillsForStats is how many market skills the coverage statistic
// compares against
const topSkillsForStats = 5

// learningComparisonNote is returned verbatim with every result so callers
// cannot mistake the timeline for personalized output
const learningComparisonNote = "Illustrative example timelines; not computed from this candidate's analysis."

// learningComparison returns the fixed study-approach comparison. The
// figures are illustrative constants by contract, never model output.
func learningComparison() types.LearningComparison {
	return types.LearningComparison{
		Note: learningComparisonNote,
		Paths: []types.LearningPath{
			{
				Approach:       "conventional",
				DurationMonths: 12,
				Description:    "Self-paced study across scattered resources",
			},
			{
				Approach:       "structured course",
				DurationMonths: 5,
				Description:    "Guided curriculum with projects and case studies",
			},
		},
	}
}

// marketStats intersects the improved resume with the cached top market
// skills for the level. Matching is by normalized skill-name substring.
func marketStats(improvedText string, level types.ExperienceLevel, store *refdata.Store) types.MarketStats {
	top := store.TopSkills(level, topSkillsForStats)
	normalizedText := strings.ToLower(improvedText)

	var matched []types.TopSkill
	for _, skill := range top {
		if strings.Contains(normalizedText, NormalizeSkillName(skill.Skill)) {
			matched = append(matched, skill)
		}
	}

	pct := 0.0
	if len(top) > 0 {
		pct = float64(len(matched)) / float64(len(top)) * 100
	}

	return types.MarketStats{
		Level:           level,
		MatchedSkills:   matched,
		MatchPercentage: pct,
	}
}

// curriculumUsed lists the curriculum modules the strategy drew from, in
// curriculum order, deduplicated
func curriculumUsed(strategy types.ImprovementStrategy, moduleNames []string) []string {
	referenced := make(map[string]bool)
	note := func(module string) {
		if module != "" {
			referenced[strings.ToLower(strings.TrimSpace(module))] = true
		}
	}
	for _, enh := range strategy.SkillsToEnhance {
		note(enh.Module)
	}
	for _, add := range strategy.SkillsToAdd {
		note(add.Module)
	}
	for _, proj := range strategy.ProjectsToAdd {
		note(proj.Module)
	}
	for _, m := range strategy.CurriculumMapping {
		note(m.Module)
	}

	var used []string
	for _, name := range moduleNames {
		if referenced[strings.ToLower(strings.TrimSpace(name))] {
			used = append(used, name)
		}
	}
	return used
}

// clampScore forces a model-reported score into [0,100]
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
