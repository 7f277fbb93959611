package types

import (
	"encoding/json"
	"testing"
)

func TestLevelFromYears(t *testing.T) {
	tests := []struct {
		years float64
		want  ExperienceLevel
	}{
		{0, LevelFresher},
		{0.5, LevelFresher},
		{1.0, LevelFresher},
		{1.1, LevelIntermediate},
		{3.0, LevelIntermediate},
		{3.5, LevelExperienced},
		{10, LevelExperienced},
	}

	for _, tt := range tests {
		if got := LevelFromYears(tt.years); got != tt.want {
			t.Errorf("LevelFromYears(%v) = %v, want %v", tt.years, got, tt.want)
		}
	}
}

func TestExperienceLevelValid(t *testing.T) {
	for _, level := range []ExperienceLevel{LevelFresher, LevelIntermediate, LevelExperienced} {
		if !level.Valid() {
			t.Errorf("%v should be valid", level)
		}
	}
	if ExperienceLevel("Junior").Valid() {
		t.Error("unknown level should not be valid")
	}
}

func TestFullAnalysisWireFormat(t *testing.T) {
	analysis := FullAnalysis{
		Gap: GapAnalysis{
			ExperienceYears: 0.5,
			Level:           LevelFresher,
			SkillsPresent:   []string{"Excel"},
		},
		Assessment: Assessment{ATSScore: 62},
		MarketSummary: MarketSummary{
			Level:        LevelFresher,
			JobsAnalyzed: 120,
		},
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// The API keeps the snake_case field names clients already depend on
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"gap_analysis", "assessment", "market_summary"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing wire key %q", key)
		}
	}
}
