package refdata

import (
	"fmt"
	"strings"

	"resumelift/internal/types"
)

// FormatMarket renders one level's market data as prompt text: top 20
// demanded skills with their demand tiers, then top 15 soft skills, job
// titles and educational backgrounds.
func (s *Store) FormatMarket(level types.ExperienceLevel) string {
	md, ok := s.markets[level]
	if !ok {
		return "Market data not available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total Jobs Analyzed: %d\n", md.TotalJobsAnalyzed)

	b.WriteString("\n## Most Demanded Skills:\n")
	for _, e := range topN(md.MostDemandedSkills, 20) {
		fmt.Fprintf(&b, "- %s (appears in %.2f%%) - Demand: %s\n", e.name, e.pct, DemandTier(e.pct))
	}

	b.WriteString("\n## Soft Skills:\n")
	for _, e := range topN(md.SoftSkills, 15) {
		fmt.Fprintf(&b, "- %s (%.2f%%)\n", e.name, e.pct)
	}

	b.WriteString("\n## Common Job Titles:\n")
	for _, e := range topN(md.Roles, 15) {
		fmt.Fprintf(&b, "- %s (%.2f%%)\n", e.name, e.pct)
	}

	b.WriteString("\n## Educational Background:\n")
	for _, e := range topN(md.EducationalBackground, 15) {
		fmt.Fprintf(&b, "- %s (%.2f%%)\n", e.name, e.pct)
	}

	return b.String()
}

// FormatTopSkills renders one level's top skills as a compact prompt line
func (s *Store) FormatTopSkills(level types.ExperienceLevel, n int) string {
	skills := s.TopSkills(level, n)
	parts := make([]string, 0, len(skills))
	for _, sk := range skills {
		parts = append(parts, fmt.Sprintf("%s (appears in %.2f%%) - Demand: %s", sk.Skill, sk.Percentage, sk.Demand))
	}
	return strings.Join(parts, "; ")
}

// FormatCurriculum renders the full curriculum as prompt text
func (s *Store) FormatCurriculum() string {
	var b strings.Builder
	b.WriteString("# Training Curriculum\n")
	for _, m := range s.curriculum.Modules {
		fmt.Fprintf(&b, "\n## %s\n", m.Module)
		b.WriteString("\n### Topics Covered:\n")
		for _, t := range m.Topics {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		if len(m.CaseStudies) > 0 {
			b.WriteString("\n### Case Studies:\n")
			for _, c := range m.CaseStudies {
				fmt.Fprintf(&b, "- %s\n", c)
			}
		}
	}
	return b.String()
}

func topN(m map[string]string, n int) []rankedEntry {
	ranked := rankByPercent(m)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
