package ai

import (
	"context"

	"resumelift/internal/types"
)

// Provider is the completion client used by the pipeline. One typed method
// per call site; all methods return token usage which callers may ignore.
type Provider interface {
	GapAnalysis(ctx context.Context, input GapInput) (types.GapAnalysis, *TokenUsage, error)
	Assessment(ctx context.Context, input AssessmentInput) (types.Assessment, *TokenUsage, error)
	Strategy(ctx context.Context, input StrategyInput) (types.ImprovementStrategy, *TokenUsage, error)
	WriteResume(ctx context.Context, input WriteInput) (string, *TokenUsage, error)
	TrackChanges(ctx context.Context, input TrackInput) (types.ChangeTracking, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// GapInput carries everything the gap analysis call needs
type GapInput struct {
	ResumeText         string
	FresherSkills      string
	IntermediateSkills string
	ExperiencedSkills  string
	Vocabulary         []string
}

// AssessmentInput carries the assessment call payload. MarketData is the
// formatted market text for the level detected by the gap stage.
type AssessmentInput struct {
	ResumeText    string
	Gap           types.GapAnalysis
	MarketData    string
	ScoringRubric string
}

// StrategyInput carries the strategy call payload. RemoveCount is the
// number of projects the gap stage marked for removal; the strategy must
// propose exactly that many replacements.
type StrategyInput struct {
	Gap         types.GapAnalysis
	Curriculum  string
	RemoveCount int
}

// WriteInput carries the resume writing call payload
type WriteInput struct {
	ResumeText  string
	Links       []types.Link
	Strategy    types.ImprovementStrategy
	Level       types.ExperienceLevel
	CurrentYear int
}

// TrackInput carries the change tracking call payload. The strategy is the
// source of truth the tracking output is classified against.
type TrackInput struct {
	Strategy      types.ImprovementStrategy
	ImprovedText  string
	Gap           types.GapAnalysis
	ScoringRubric string
}
