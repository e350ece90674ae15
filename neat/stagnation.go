package neat

import (
	"fmt"
	"math"
	"sort"
)

// Stagnation manages the detection of stagnant species.
type Stagnation struct {
	Config             *StagnationConfig
	SpeciesFitnessFunc func([]float64) float64
}

// NewStagnation creates a new stagnation manager.
func NewStagnation(config *StagnationConfig) (*Stagnation, error) {
	fn, ok := StatFunctions[config.SpeciesFitnessFunc]
	if !ok {
		return nil, fmt.Errorf("%w: species_fitness_func %q", ErrInvalidConfig, config.SpeciesFitnessFunc)
	}
	return &Stagnation{Config: config, SpeciesFitnessFunc: fn}, nil
}

// StagnationInfo reports whether one species was found stagnant.
type StagnationInfo struct {
	SpeciesID  int
	Species    *Species
	IsStagnant bool
}

// Update recomputes each species' fitness and fitness history, then marks a
// species stagnant once generation-LastImproved reaches max_stagnation,
// provided there are more
// active species than species_elitism and it does not rank among the
// species_elitism fittest (species sorted ascending by (fitness, id)).
func (s *Stagnation) Update(speciesSet *SpeciesSet, generation int) ([]StagnationInfo, error) {
	if len(speciesSet.Species) == 0 {
		return nil, nil
	}

	var sids []int
	for sid := range speciesSet.Species {
		sids = append(sids, sid)
	}
	sort.Ints(sids)

	for _, sid := range sids {
		sp := speciesSet.Species[sid]
		previousMax := math.Inf(-1)
		if len(sp.FitnessHistory) > 0 {
			previousMax = MaxFloat(sp.FitnessHistory)
		}

		memberFitnesses := sp.GetFitnesses()
		if len(memberFitnesses) == 0 {
			sp.Fitness = math.Inf(-1)
		} else {
			sp.Fitness = s.SpeciesFitnessFunc(memberFitnesses)
		}
		sp.FitnessHistory = append(sp.FitnessHistory, sp.Fitness)
		sp.AdjustedFitness = 0

		if sp.Fitness > previousMax {
			sp.LastImproved = generation
		}
	}

	sort.Slice(sids, func(i, j int) bool {
		si, sj := speciesSet.Species[sids[i]], speciesSet.Species[sids[j]]
		if si.Fitness != sj.Fitness {
			return si.Fitness < sj.Fitness
		}
		return sids[i] < sids[j]
	})

	numSpecies := len(sids)
	result := make([]StagnationInfo, numSpecies)
	for rank, sid := range sids {
		sp := speciesSet.Species[sid]
		stagnantTime := generation - sp.LastImproved
		elite := (numSpecies - rank) <= s.Config.SpeciesElitism
		isStagnant := stagnantTime >= s.Config.MaxStagnation && numSpecies > s.Config.SpeciesElitism && !elite
		result[rank] = StagnationInfo{SpeciesID: sid, Species: sp, IsStagnant: isStagnant}
	}

	return result, nil
}
