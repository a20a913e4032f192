package config

import (
	"fmt"
)

// ScoringConfig holds the fixed relevance weights. Weights are configuration,
// not learned, and are renormalized to sum to one.
type ScoringConfig struct {
	TermOverlap    float64 `mapstructure:"term_overlap"`
	Recency        float64 `mapstructure:"recency"`
	SourcePriority float64 `mapstructure:"source_priority"`
}

// Normalize clamps negative weights and rescales the rest so they sum to one.
func (c ScoringConfig) Normalize() ScoringConfig {
	cfg := c
	if cfg.TermOverlap < 0 {
		cfg.TermOverlap = 0
	}
	if cfg.Recency < 0 {
		cfg.Recency = 0
	}
	if cfg.SourcePriority < 0 {
		cfg.SourcePriority = 0
	}
	sum := cfg.TermOverlap + cfg.Recency + cfg.SourcePriority
	if sum == 0 {
		return ScoringConfig{TermOverlap: 0.5, Recency: 0.3, SourcePriority: 0.2}
	}
	cfg.TermOverlap /= sum
	cfg.Recency /= sum
	cfg.SourcePriority /= sum
	return cfg
}

// Validate ensures configuration is internally consistent.
func (c ScoringConfig) Validate() error {
	if c.TermOverlap < 0 || c.Recency < 0 || c.SourcePriority < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	if c.TermOverlap+c.Recency+c.SourcePriority == 0 {
		return fmt.Errorf("at least one scoring weight must be positive")
	}
	return nil
}
