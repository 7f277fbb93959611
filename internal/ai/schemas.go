package ai

import (
	"resumelift/internal/config"

	"google.golang.org/genai"
)

// applyGeneration copies the operation's generation settings onto a request
// config. Temperature is always set when configured: 0.0 is a deliberate
// value for deterministic calls, not an absence, and omitting it would let
// the provider default apply.
func applyGeneration(cfg *config.OperationAIConfig, gc *genai.GenerateContentConfig) *genai.GenerateContentConfig {
	if cfg.Temperature != nil {
		gc.Temperature = cfg.Temperature
	}
	if cfg.MaxOutputTokens != nil && *cfg.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = *cfg.MaxOutputTokens
	}
	return gc
}

// buildGapSchema creates the structured response schema for gap analysis.
// The experience level is deliberately absent; it is computed from
// experience_years after parsing.
func buildGapSchema(cfg *config.OperationAIConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"experience_years":     {Type: genai.TypeNumber},
				"experience_reasoning": {Type: genai.TypeString},
				"skills_present": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"skills_missing": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"projects_to_keep": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"projects_to_remove": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{
				"experience_years", "experience_reasoning",
				"skills_present", "skills_missing",
				"projects_to_keep", "projects_to_remove",
			},
		},
	}
	return applyGeneration(cfg, gc)
}

// buildAssessmentSchema creates the structured response schema for the
// assessment call
func buildAssessmentSchema(cfg *config.OperationAIConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"keywords_present": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"keywords_missing": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"ats_reasoning":       {Type: genai.TypeString},
				"job_relevance_score": {Type: genai.TypeNumber},
				"ats_score":           {Type: genai.TypeNumber},
				"market_alignment":    {Type: genai.TypeString},
			},
			Required: []string{
				"keywords_present", "keywords_missing", "ats_reasoning",
				"job_relevance_score", "ats_score", "market_alignment",
			},
		},
	}
	return applyGeneration(cfg, gc)
}

// buildStrategySchema creates the structured response schema for the
// strategy call
func buildStrategySchema(cfg *config.OperationAIConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"skills_to_enhance": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"base_skill":  {Type: genai.TypeString},
							"enhancement": {Type: genai.TypeString},
							"module":      {Type: genai.TypeString},
						},
						Required: []string{"base_skill", "enhancement", "module"},
					},
				},
				"skills_to_add": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"skill":  {Type: genai.TypeString},
							"module": {Type: genai.TypeString},
						},
						Required: []string{"skill", "module"},
					},
				},
				"projects_to_add": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":   {Type: genai.TypeString},
							"module": {Type: genai.TypeString},
							"technologies": {
								Type:  genai.TypeArray,
								Items: &genai.Schema{Type: genai.TypeString},
							},
							"description": {Type: genai.TypeString},
						},
						Required: []string{"name", "module", "technologies", "description"},
					},
				},
				"curriculum_mapping": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"module": {Type: genai.TypeString},
							"skills": {
								Type:  genai.TypeArray,
								Items: &genai.Schema{Type: genai.TypeString},
							},
						},
						Required: []string{"module", "skills"},
					},
				},
			},
			Required: []string{
				"skills_to_enhance", "skills_to_add",
				"projects_to_add", "curriculum_mapping",
			},
		},
	}
	return applyGeneration(cfg, gc)
}

// buildWriteConfig creates the request config for the resume writing call.
// The output is plain text, not structured JSON.
func buildWriteConfig(cfg *config.OperationAIConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "text/plain",
	}
	return applyGeneration(cfg, gc)
}

// buildTrackingSchema creates the structured response schema for the
// change tracking call
func buildTrackingSchema(cfg *config.OperationAIConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"skills_added": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"skills_enhanced": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"projects_added": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"job_relevance_score":   {Type: genai.TypeNumber},
				"ats_score":             {Type: genai.TypeNumber},
				"estimated_improvement": {Type: genai.TypeString},
			},
			Required: []string{
				"skills_added", "skills_enhanced", "projects_added",
				"job_relevance_score", "ats_score", "estimated_improvement",
			},
		},
	}
	return applyGeneration(cfg, gc)
}
