package srs

import "github.com/phrazzld/studyquest/internal/domain"

// Params defines all configurable parameters for the SM-2 strategy
type Params struct {
	// Core limits
	MinEaseFactor     float64
	InitialEaseFactor float64

	// Intervals (days) for the first two consecutive correct recalls
	FirstInterval  int
	SecondInterval int

	// Lowest quality (0..5) that counts as a correct recall
	PassingQuality int

	// Ease adjustment terms: EF' = EF + EaseBonus - d*(EaseLinear + d*EaseQuadratic),
	// where d = MaxQuality - quality
	EaseBonus     float64
	EaseLinear    float64
	EaseQuadratic float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinEaseFactor     float64
	InitialEaseFactor float64
	FirstInterval     int
	SecondInterval    int
	PassingQuality    int
}

// Quality bounds for SM-2 grading.
const (
	MinQuality = 0
	MaxQuality = 5
)

// NewDefaultParams creates a new Params instance with the classic SM-2 values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     domain.MinEaseFactor,
		InitialEaseFactor: domain.DefaultEaseFactor,

		FirstInterval:  1,
		SecondInterval: 6,

		PassingQuality: 3,

		EaseBonus:     0.1,
		EaseLinear:    0.08,
		EaseQuadratic: 0.02,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero fields in config keep their default.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	// The floor can be raised but never lowered below the domain invariant
	if config.MinEaseFactor > domain.MinEaseFactor {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.InitialEaseFactor >= params.MinEaseFactor {
		params.InitialEaseFactor = config.InitialEaseFactor
	}

	if config.FirstInterval >= domain.MinInterval {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval >= domain.MinInterval {
		params.SecondInterval = config.SecondInterval
	}

	if config.PassingQuality > MinQuality && config.PassingQuality <= MaxQuality {
		params.PassingQuality = config.PassingQuality
	}

	return params
}
