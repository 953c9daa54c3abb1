// Package engine drives a single society through an ordered sequence of
// generations, emitting one record per completed generation and stopping
// on exactly one of three terminal conditions.
package engine

import (
	"math"
	"math/rand"

	"bitworld/internal/bitstring"
	"bitworld/internal/model"
	"bitworld/internal/society"
)

// StopReason tags the terminal condition of a run.
type StopReason string

const (
	StopDepleted             StopReason = "depleted"
	StopComplexityLimit      StopReason = "complexity_limit"
	StopGenerationsExhausted StopReason = "generations_exhausted"
)

// Result is the ordered record sequence of a run plus its terminal
// condition.
type Result struct {
	Records []model.GenerationRecord
	Reason  StopReason
}

// Reporter receives observational per-generation progress. It has no
// effect on run state; nil disables reporting.
type Reporter interface {
	Generation(record model.GenerationRecord)
	Stopped(seed int64, generation int, reason StopReason)
}

// Run executes one simulation. All randomness derives from a single
// stream seeded from params.Seed, so identical parameters yield
// bit-identical record sequences regardless of what else is running.
func Run(params Parameters, reporter Reporter) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	rng := rand.New(rand.NewSource(params.Seed))
	soc := society.New(rng, society.Config{
		SpaceLength:      params.SpaceLength,
		SpaceProb:        params.SpaceProb,
		TechLength:       params.TechLength,
		TechProb:         params.TechProb,
		InitialEndowment: params.InitialEndowment,
	})

	records := make([]model.GenerationRecord, 0, params.Generations)

	// Generation 0. Effectiveness and the resource-flow similarity are
	// computed as two independent calls with swapped arguments; the
	// metric is symmetric today but the resource model is defined on
	// similarity(space, technologies) specifically.
	effectiveness := bitstring.Similarity(soc.Technologies, soc.Space)
	netFlow := society.NetFlow(soc.Space.Len(), bitstring.Similarity(soc.Space, soc.Technologies), soc.Technologies.Len())
	available := soc.UpdateResources(netFlow)
	records = append(records, makeRecord(params, 0, &soc, effectiveness, available))

	for generation := 1; generation < params.Generations; generation++ {
		// A society depleted by the previous update is terminal; no
		// further record is emitted for this generation.
		if soc.Depleted {
			if reporter != nil {
				reporter.Stopped(params.Seed, generation, StopDepleted)
			}
			return Result{Records: records, Reason: StopDepleted}, nil
		}

		netFlow = society.NetFlow(soc.Space.Len(), bitstring.Similarity(soc.Space, soc.Technologies), soc.Technologies.Len())
		available = soc.UpdateResources(netFlow)
		if soc.Depleted {
			if reporter != nil {
				reporter.Stopped(params.Seed, generation, StopDepleted)
			}
			return Result{Records: records, Reason: StopDepleted}, nil
		}

		for i := iterationsFor(available); i > 0; i-- {
			if rng.Float64() < params.PTradeoff {
				soc.EvolveTechnologies(rng, params.Eta)
			} else {
				soc.EvolveSpace(rng, params.Lambda)
			}
		}

		effectiveness = bitstring.Similarity(soc.Technologies, soc.Space)
		record := makeRecord(params, generation, &soc, effectiveness, available)
		records = append(records, record)
		if reporter != nil {
			reporter.Generation(record)
		}

		if soc.Technologies.Len() >= params.ComplexityLimit {
			if reporter != nil {
				reporter.Stopped(params.Seed, generation, StopComplexityLimit)
			}
			return Result{Records: records, Reason: StopComplexityLimit}, nil
		}
	}

	if reporter != nil {
		reporter.Stopped(params.Seed, params.Generations-1, StopGenerationsExhausted)
	}
	return Result{Records: records, Reason: StopGenerationsExhausted}, nil
}

// iterationsFor converts available resources into a discrete edit-event
// count: round-half-to-even above one unit, otherwise exactly one.
func iterationsFor(available float64) int {
	if available < 1 {
		return 1
	}
	return int(math.RoundToEven(available))
}

func makeRecord(params Parameters, generation int, soc *society.Society, effectiveness, available float64) model.GenerationRecord {
	return model.GenerationRecord{
		Seed:               params.Seed,
		Generation:         generation,
		TechLength:         soc.Technologies.Len(),
		SpaceLength:        soc.Space.Len(),
		Effectiveness:      effectiveness,
		InitialTechLength:  params.TechLength,
		InitialSpaceLength: params.SpaceLength,
		Eta:                params.Eta,
		Lambda:             params.Lambda,
		InitialEndowment:   params.InitialEndowment,
		PTradeoff:          params.PTradeoff,
		AvailableResources: available,
		ResourceStore:      soc.ResourceStore,
	}
}
