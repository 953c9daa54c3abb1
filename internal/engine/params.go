package engine

import (
	"errors"
	"fmt"
)

// ErrConfiguration wraps every parameter validation failure so callers
// can distinguish bad configuration from runtime failures.
var ErrConfiguration = errors.New("invalid simulation configuration")

// Parameters is the immutable configuration bundle for one run. A nil
// probability means the initial symbol probability is drawn uniformly
// from [0,1) inside the run's own random stream.
type Parameters struct {
	Seed             int64
	SpaceLength      int
	SpaceProb        *float64
	TechLength       int
	TechProb         *float64
	Eta              float64
	Lambda           float64
	InitialEndowment float64
	PTradeoff        float64
	Generations      int
	ComplexityLimit  int
}

// Validate rejects invalid configuration before any run state exists.
func (p Parameters) Validate() error {
	if p.Seed < 0 {
		return configErrorf("seed must be >= 0, got %d", p.Seed)
	}
	if p.SpaceLength < 1 {
		return configErrorf("space length must be >= 1, got %d", p.SpaceLength)
	}
	if p.TechLength < 1 {
		return configErrorf("tech length must be >= 1, got %d", p.TechLength)
	}
	if err := validateProbability("space probability", p.SpaceProb); err != nil {
		return err
	}
	if err := validateProbability("tech probability", p.TechProb); err != nil {
		return err
	}
	if p.Eta < 0 || p.Eta > 1 {
		return configErrorf("eta must be in [0,1], got %g", p.Eta)
	}
	if p.Lambda < 0 || p.Lambda > 1 {
		return configErrorf("lambda must be in [0,1], got %g", p.Lambda)
	}
	if p.PTradeoff < 0 || p.PTradeoff > 1 {
		return configErrorf("p_tradeoff must be in [0,1], got %g", p.PTradeoff)
	}
	if p.InitialEndowment < 0 {
		return configErrorf("initial endowment must be >= 0, got %g", p.InitialEndowment)
	}
	if p.Generations < 1 {
		return configErrorf("generation limit must be >= 1, got %d", p.Generations)
	}
	if p.ComplexityLimit < 1 {
		return configErrorf("complexity limit must be >= 1, got %d", p.ComplexityLimit)
	}
	return nil
}

func validateProbability(name string, value *float64) error {
	if value == nil {
		return nil
	}
	if *value < 0 || *value > 1 {
		return configErrorf("%s must be in [0,1], got %g", name, *value)
	}
	return nil
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
