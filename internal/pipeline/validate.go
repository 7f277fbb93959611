package pipeline

import (
	"fmt"
	"strings"

	"resumelift/internal/errors"
	"resumelift/internal/types"
)

// The validation gates run immediately after each stage's output is parsed.
// A failed gate aborts the phase with VALIDATION_FAILED before the next
// completion call is made; no logically inconsistent result travels forward.

func validationErr(stage, msg string) error {
	return errors.NewValidationError(errors.ErrCodeValidationFailed, msg, nil).
		WithContext("stage", stage)
}

// validateGap checks the gap analysis invariants: a known experience level,
// disjoint present/missing skill sets, and missing skills confined to the
// curriculum vocabulary.
func validateGap(gap types.GapAnalysis, vocabulary []string) error {
	if !gap.Level.Valid() {
		return validationErr("gap", fmt.Sprintf("unknown experience level %q", gap.Level))
	}
	if gap.ExperienceYears < 0 {
		return validationErr("gap", fmt.Sprintf("negative experience years %.1f", gap.ExperienceYears))
	}

	present := normalizeSet(gap.SkillsPresent)
	for _, skill := range gap.SkillsMissing {
		if present[NormalizeSkillName(skill)] {
			return validationErr("gap", fmt.Sprintf("skill %q is both present and missing", skill))
		}
	}

	vocab := normalizeSet(vocabulary)
	for _, skill := range gap.SkillsMissing {
		if !vocab[NormalizeSkillName(skill)] {
			return validationErr("gap", fmt.Sprintf("missing skill %q is outside the curriculum vocabulary", skill))
		}
	}

	return nil
}

// validateStrategy checks the strategy invariants against the gap analysis:
// every enhanced skill must already be present, every added skill must be a
// reported gap, the project replacement count must match, and referenced
// modules must exist in the curriculum.
func validateStrategy(strategy types.ImprovementStrategy, gap types.GapAnalysis, moduleNames []string) error {
	present := normalizeSet(gap.SkillsPresent)
	for _, enh := range strategy.SkillsToEnhance {
		if !present[NormalizeSkillName(enh.BaseSkill)] {
			return validationErr("strategy",
				fmt.Sprintf("enhancement base skill %q is not among present skills", enh.BaseSkill))
		}
	}

	missing := normalizeSet(gap.SkillsMissing)
	for _, add := range strategy.SkillsToAdd {
		if !missing[NormalizeSkillName(add.Skill)] {
			return validationErr("strategy",
				fmt.Sprintf("added skill %q is not among missing skills", add.Skill))
		}
	}

	if len(strategy.ProjectsToAdd) != len(gap.ProjectsToRemove) {
		return validationErr("strategy",
			fmt.Sprintf("strategy proposes %d projects but %d were removed",
				len(strategy.ProjectsToAdd), len(gap.ProjectsToRemove)))
	}

	modules := make(map[string]bool, len(moduleNames))
	for _, name := range moduleNames {
		modules[strings.ToLower(strings.TrimSpace(name))] = true
	}
	checkModule := func(module, what string) error {
		if module == "" {
			return nil
		}
		if !modules[strings.ToLower(strings.TrimSpace(module))] {
			return validationErr("strategy",
				fmt.Sprintf("%s references unknown curriculum module %q", what, module))
		}
		return nil
	}
	for _, enh := range strategy.SkillsToEnhance {
		if err := checkModule(enh.Module, "skill enhancement"); err != nil {
			return err
		}
	}
	for _, add := range strategy.SkillsToAdd {
		if err := checkModule(add.Module, "skill addition"); err != nil {
			return err
		}
	}
	for _, proj := range strategy.ProjectsToAdd {
		if err := checkModule(proj.Module, "project addition"); err != nil {
			return err
		}
	}
	for _, m := range strategy.CurriculumMapping {
		if err := checkModule(m.Module, "curriculum mapping"); err != nil {
			return err
		}
	}

	return nil
}

// validateImprovedResume enforces the writing contract: non-empty output,
// every original link preserved verbatim, and no professional experience
// section for Fresher candidates.
func validateImprovedResume(improved string, links []types.Link, level types.ExperienceLevel) error {
	if strings.TrimSpace(improved) == "" {
		return validationErr("write", "improved resume is empty")
	}

	for _, link := range links {
		if !strings.Contains(improved, link.URL) {
			return validationErr("write",
				fmt.Sprintf("original link %q was dropped from the improved resume", link.URL))
		}
	}

	if level == types.LevelFresher {
		lower := strings.ToLower(improved)
		for _, heading := range []string{"professional experience", "work experience", "employment history"} {
			if strings.Contains(lower, heading) {
				return validationErr("write",
					fmt.Sprintf("Fresher resume must not contain a %q section", heading))
			}
		}
	}

	return nil
}

// validateTracking checks that every reported change traces back to the
// strategy, which is the source of truth. Re-scores are clamped by the
// caller, not range-checked here.
func validateTracking(tracking types.ChangeTracking, strategy types.ImprovementStrategy) error {
	added := make(map[string]bool, len(strategy.SkillsToAdd))
	for _, add := range strategy.SkillsToAdd {
		added[NormalizeSkillName(add.Skill)] = true
	}
	for _, skill := range tracking.SkillsAdded {
		if !added[NormalizeSkillName(skill)] {
			return validationErr("track",
				fmt.Sprintf("reported added skill %q is not in the strategy", skill))
		}
	}

	enhanced := make(map[string]bool, 2*len(strategy.SkillsToEnhance))
	for _, enh := range strategy.SkillsToEnhance {
		enhanced[NormalizeSkillName(enh.BaseSkill)] = true
		enhanced[NormalizeSkillName(enh.Enhancement)] = true
	}
	for _, skill := range tracking.SkillsEnhanced {
		if !enhanced[NormalizeSkillName(skill)] {
			return validationErr("track",
				fmt.Sprintf("reported enhanced skill %q is not in the strategy", skill))
		}
	}

	projects := make(map[string]bool, len(strategy.ProjectsToAdd))
	for _, proj := range strategy.ProjectsToAdd {
		projects[strings.ToLower(strings.TrimSpace(proj.Name))] = true
	}
	for _, name := range tracking.ProjectsAdded {
		if !projects[strings.ToLower(strings.TrimSpace(name))] {
			return validationErr("track",
				fmt.Sprintf("reported added project %q is not in the strategy", name))
		}
	}

	return nil
}
