package ai

import (
	"testing"

	"resumelift/internal/config"

	"google.golang.org/genai"
)

func TestApplyGenerationTemperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature *float32
		want        *float32
	}{
		// Zero is a deliberate setting for deterministic calls and must
		// reach the request, or the provider default takes over
		{"ZeroIsSet", float32Ptr(0.0), float32Ptr(0.0)},
		{"NonZeroIsSet", float32Ptr(0.2), float32Ptr(0.2)},
		{"NilStaysUnset", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.OperationAIConfig{Temperature: tt.temperature}
			gc := applyGeneration(cfg, &genai.GenerateContentConfig{})

			if tt.want == nil {
				if gc.Temperature != nil {
					t.Errorf("Temperature = %v, want unset", *gc.Temperature)
				}
				return
			}
			if gc.Temperature == nil {
				t.Fatal("Temperature not set on request config")
			}
			if *gc.Temperature != *tt.want {
				t.Errorf("Temperature = %v, want %v", *gc.Temperature, *tt.want)
			}
		})
	}
}

func TestApplyGenerationMaxOutputTokens(t *testing.T) {
	cfg := &config.OperationAIConfig{
		Temperature:     float32Ptr(0.1),
		MaxOutputTokens: int32Ptr(800),
	}
	gc := applyGeneration(cfg, &genai.GenerateContentConfig{})

	if gc.MaxOutputTokens != 800 {
		t.Errorf("MaxOutputTokens = %d, want 800", gc.MaxOutputTokens)
	}
}

func TestBuildGapSchemaCarriesZeroTemperature(t *testing.T) {
	cfg := &config.OperationAIConfig{
		Temperature:     float32Ptr(0.0),
		MaxOutputTokens: int32Ptr(800),
	}
	gc := buildGapSchema(cfg)

	if gc.Temperature == nil || *gc.Temperature != 0.0 {
		t.Error("gap request must pin temperature 0.0 for deterministic extraction")
	}
	if gc.ResponseMIMEType != "application/json" {
		t.Errorf("ResponseMIMEType = %q, want application/json", gc.ResponseMIMEType)
	}
	if gc.ResponseSchema == nil {
		t.Fatal("gap request must carry a response schema")
	}
	if _, ok := gc.ResponseSchema.Properties["level"]; ok {
		t.Error("level must not be model-reported; it is computed from experience_years")
	}
}
