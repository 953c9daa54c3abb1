// Package society holds the state of one simulated society and the
// resource model that feeds or drains its store.
package society

import (
	"math/rand"

	"bitworld/internal/bitstring"
)

// Config describes the initial state of a society. A nil probability
// means the value is drawn uniformly from [0,1) at construction time.
type Config struct {
	SpaceLength      int
	SpaceProb        *float64
	TechLength       int
	TechProb         *float64
	InitialEndowment float64
}

// Society owns the two co-evolving strings and the depletable resource
// store. Depletion is an absorbing terminal state: once Depleted is set
// the society must never be mutated again, and every mutator enforces
// that with a panic.
type Society struct {
	Technologies     bitstring.BitString
	Space            bitstring.BitString
	ResourceStore    float64
	InitialEndowment float64
	Depleted         bool
}

// New constructs a society from cfg, drawing any unspecified initial
// probabilities from rng. The draw order (space probability, tech
// probability, space string, tech string) is fixed so identical seeds
// produce identical societies.
func New(rng *rand.Rand, cfg Config) Society {
	spaceProb := cfg.SpaceProb
	if spaceProb == nil {
		p := rng.Float64()
		spaceProb = &p
	}
	techProb := cfg.TechProb
	if techProb == nil {
		p := rng.Float64()
		techProb = &p
	}

	return Society{
		Space:            bitstring.Generate(rng, *spaceProb, cfg.SpaceLength),
		Technologies:     bitstring.Generate(rng, *techProb, cfg.TechLength),
		ResourceStore:    cfg.InitialEndowment,
		InitialEndowment: cfg.InitialEndowment,
	}
}

// EvolveTechnologies replaces the technological system with an edited
// candidate evaluated against the search space. eta controls how often
// the edit is selective rather than drift.
func (s *Society) EvolveTechnologies(rng *rand.Rand, eta float64) {
	s.ensureActive()
	s.Technologies = bitstring.Edit(rng, s.Technologies, s.Space, eta)
}

// EvolveSpace replaces the search space with an edited candidate
// evaluated against the technological system. lambda controls how often
// the edit is selective rather than drift.
func (s *Society) EvolveSpace(rng *rand.Rand, lambda float64) {
	s.ensureActive()
	s.Space = bitstring.Edit(rng, s.Space, s.Technologies, lambda)
}

// UpdateResources applies netFlow to the store and returns the
// resources available this generation. If the store cannot cover the
// deficit the society collapses: the store is zeroed and Depleted is
// set, a one-way transition.
func (s *Society) UpdateResources(netFlow float64) float64 {
	s.ensureActive()
	update := ApplyToStore(s.ResourceStore, netFlow)
	s.ResourceStore = update.Store
	s.Depleted = update.Depleted
	return update.Available
}

func (s *Society) ensureActive() {
	if s.Depleted {
		panic("society: mutation of a depleted society")
	}
}
