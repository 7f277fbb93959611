package pipeline

import "strings"

// skillAliases folds vendor-specific skill spellings onto one canonical
// name before set comparisons. Overlapping aliases must agree on the
// canonical form because matching is by substring.
var skillAliases = map[string]string{
	"ms excel":        "excel",
	"microsoft excel": "excel",
	"mysql":           "sql",
	"mssql":           "sql",
	"sql server":      "sql",
	"postgresql":      "sql",
	"postgres":        "sql",
}

// NormalizeSkillName lowercases, trims and canonicalizes a skill name so
// "Microsoft Excel" and "Excel" count as the same market skill
func NormalizeSkillName(skill string) string {
	name := strings.ToLower(strings.TrimSpace(skill))
	for alias, canonical := range skillAliases {
		if strings.Contains(name, alias) {
			return canonical
		}
	}
	return name
}

// normalizeSet builds a membership set of normalized skill names
func normalizeSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		set[NormalizeSkillName(s)] = true
	}
	return set
}
