package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"resumelift/internal/errors"
	"resumelift/internal/types"
)

// MarketData is one level's pre-analyzed job market file. Percentage values
// are stored as strings like "91.01%" in the data files.
type MarketData struct {
	TotalJobsAnalyzed     int               `json:"total_jobs_analyzed"`
	MostDemandedSkills    map[string]string `json:"most_demanded_skills"`
	SoftSkills            map[string]string `json:"soft_skills"`
	Roles                 map[string]string `json:"roles"`
	EducationalBackground map[string]string `json:"educational_background"`
}

// Module is one curriculum module with its topics and case studies
type Module struct {
	Module      string   `json:"module"`
	Topics      []string `json:"topics"`
	CaseStudies []string `json:"caseStudies"`
}

// Curriculum is the training curriculum file
type Curriculum struct {
	Modules     []Module `json:"curriculum"`
	SkillsFocus []string `json:"skillsFocus,omitempty"`
}

// defaultSkillsFocus keeps skill filtering lightweight when the curriculum
// file does not carry its own focus list
var defaultSkillsFocus = []string{
	"Excel", "Power BI", "SQL", "MySQL", "Python", "NumPy", "Pandas",
	"Matplotlib", "Seaborn", "Statistics", "EDA", "Power Query", "DAX",
	"Generative AI",
}

// Store holds the read-only reference data loaded at startup. All lookups
// are safe for concurrent use because nothing mutates after Load.
type Store struct {
	markets    map[types.ExperienceLevel]*MarketData
	curriculum *Curriculum
	vocabulary []string
}

// Load reads the three level-keyed market files and the curriculum file
// from dir. A missing or unreadable file is fatal; the pipeline cannot run
// without its reference data.
func Load(dir string, logger *errors.Logger) (*Store, error) {
	files := map[types.ExperienceLevel]string{
		types.LevelFresher:      "fresher.json",
		types.LevelIntermediate: "intermediate.json",
		types.LevelExperienced:  "experienced.json",
	}

	markets := make(map[types.ExperienceLevel]*MarketData, len(files))
	for level, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeMissingReferenceData,
				fmt.Sprintf("market data file not found: %s", name), err).
				WithContext("path", path)
		}
		var md MarketData
		if err := json.Unmarshal(data, &md); err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeMissingReferenceData,
				fmt.Sprintf("market data file malformed: %s", name), err).
				WithContext("path", path)
		}
		markets[level] = &md
		if logger != nil {
			logger.Info("Loaded market data",
				"level", string(level),
				"jobs_analyzed", md.TotalJobsAnalyzed,
				"skills", len(md.MostDemandedSkills))
		}
	}

	curPath := filepath.Join(dir, "curriculum.json")
	data, err := os.ReadFile(curPath)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeMissingReferenceData,
			"curriculum file not found", err).WithContext("path", curPath)
	}
	var cur Curriculum
	if err := json.Unmarshal(data, &cur); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeMissingReferenceData,
			"curriculum file malformed", err).WithContext("path", curPath)
	}
	if len(cur.Modules) == 0 {
		return nil, errors.NewConfigError(errors.ErrCodeMissingReferenceData,
			"curriculum file has no modules", nil).WithContext("path", curPath)
	}

	vocab := cur.SkillsFocus
	if len(vocab) == 0 {
		vocab = defaultSkillsFocus
	}

	if logger != nil {
		logger.Info("Loaded curriculum",
			"modules", len(cur.Modules),
			"vocabulary_size", len(vocab))
	}

	return &Store{
		markets:    markets,
		curriculum: &cur,
		vocabulary: vocab,
	}, nil
}

// Market returns the market data for a level
func (s *Store) Market(level types.ExperienceLevel) (*MarketData, error) {
	md, ok := s.markets[level]
	if !ok {
		return nil, errors.NewInternalError(errors.ErrCodeMissingReferenceData,
			fmt.Sprintf("no market data for level %q", level), nil)
	}
	return md, nil
}

// Vocabulary returns the curriculum skill vocabulary used to filter
// model-reported missing skills
func (s *Store) Vocabulary() []string {
	return s.vocabulary
}

// Modules returns the curriculum modules
func (s *Store) Modules() []Module {
	return s.curriculum.Modules
}

// ModuleNames returns the names of all curriculum modules
func (s *Store) ModuleNames() []string {
	names := make([]string, 0, len(s.curriculum.Modules))
	for _, m := range s.curriculum.Modules {
		names = append(names, m.Module)
	}
	return names
}

// DemandTier buckets an appearance percentage into a demand label
func DemandTier(pct float64) string {
	switch {
	case pct >= 60:
		return "Critical"
	case pct >= 40:
		return "High"
	case pct >= 20:
		return "Essential"
	default:
		return "Growing"
	}
}

// parsePercent reads values like "91.01%" or "81" from the data files
func parsePercent(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0
	}
	return v
}

// rankedEntry pairs a name with its parsed percentage for sorting
type rankedEntry struct {
	name string
	pct  float64
}

// rankByPercent sorts a percentage map descending. Ties break on name so
// output order is stable across runs.
func rankByPercent(m map[string]string) []rankedEntry {
	entries := make([]rankedEntry, 0, len(m))
	for name, pct := range m {
		entries = append(entries, rankedEntry{name: name, pct: parsePercent(pct)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pct != entries[j].pct {
			return entries[i].pct > entries[j].pct
		}
		return entries[i].name < entries[j].name
	})
	return entries
}

// TopSkills returns the n most demanded skills for a level with their
// demand tiers
func (s *Store) TopSkills(level types.ExperienceLevel, n int) []types.TopSkill {
	md, ok := s.markets[level]
	if !ok {
		return nil
	}
	ranked := rankByPercent(md.MostDemandedSkills)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	skills := make([]types.TopSkill, 0, len(ranked))
	for _, e := range ranked {
		skills = append(skills, types.TopSkill{
			Skill:      e.name,
			Percentage: e.pct,
			Demand:     DemandTier(e.pct),
		})
	}
	return skills
}
