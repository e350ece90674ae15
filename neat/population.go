package neat

import (
	"fmt"
	"math/rand"
	"time"
)

// FitnessFunc is supplied by the caller to score one genome. The engine
// calls it once per genome per generation, in no particular order; it must
// be safe to treat as a pure function of the genome.
type FitnessFunc func(genome *Genome) float64

// Population holds the mutable state of one NEAT run: the raw config, the
// current generation's genomes, the species partition, and the
// reproduction/stagnation managers that produce the next generation.
type Population struct {
	Config       *Config
	Population   map[int]*Genome
	SpeciesSet   *SpeciesSet
	Reproduction *Reproduction
	Stagnation   *Stagnation
	Generation   int
	BestGenome   *Genome

	rng *rand.Rand
}

// NewPopulation creates a new Population and its initial generation of
// pop_size freshly initialized genomes. Every random choice of the run is
// drawn from one source seeded with seed; see NewSource for why two runs with
// the same seed can still differ.
func NewPopulation(config *Config, seed int64) (*Population, error) {
	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to create stagnation manager: %w", err)
	}
	reproduction := NewReproduction(&config.Reproduction, stagnation)
	rng := NewSource(seed)

	initialPopulation, err := reproduction.CreateNewPopulation(&config.Genome, config.Neat.PopSize, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial population: %w", err)
	}

	p := &Population{
		Config:       config,
		Population:   initialPopulation,
		SpeciesSet:   NewSpeciesSet(&config.SpeciesSet),
		Reproduction: reproduction,
		Stagnation:   stagnation,
		Generation:   0,
		rng:          rng,
	}
	if err := p.SpeciesSet.Speciate(p.Population, p.Generation); err != nil {
		return nil, fmt.Errorf("initial speciation failed: %w", err)
	}
	return p, nil
}

// Run drives the evolutionary loop until a fitness-threshold
// win, extinction without reset, or maxGenerations (negative for
// unbounded) is reached, returning the best genome seen.
func (p *Population) Run(fitnessFunc FitnessFunc, maxGenerations int) (*Genome, error) {
	for maxGenerations < 0 || p.Generation < maxGenerations {
		start := time.Now()
		fmt.Printf("****** Generation %d ******\n", p.Generation)

		fitnesses := make([]float64, 0, len(p.Population))
		var genBest *Genome
		for _, g := range p.Population {
			g.Activate()
			g.Fitness = fitnessFunc(g)
			fitnesses = append(fitnesses, g.Fitness)
			if genBest == nil || g.Fitness > genBest.Fitness {
				genBest = g
			}
		}

		if genBest != nil && (p.BestGenome == nil || genBest.Fitness > p.BestGenome.Fitness) {
			p.BestGenome = genBest
			fmt.Printf(" new best genome: key %d fitness %.4f\n", genBest.Key, genBest.Fitness)
		}

		if !p.Config.Neat.NoFitnessTermination {
			criterionFn, ok := StatFunctions[p.Config.Neat.FitnessCriterion]
			if !ok {
				return p.BestGenome, fmt.Errorf("%w: fitness_criterion %q", ErrInvalidConfig, p.Config.Neat.FitnessCriterion)
			}
			if criterionFn(fitnesses) >= p.Config.Neat.FitnessThreshold {
				fmt.Println(" fitness threshold reached")
				return p.BestGenome, nil
			}
		}

		newPopulation, err := p.Reproduction.Reproduce(p.Config, p.SpeciesSet, p.Config.Neat.PopSize, p.Generation, p.rng)
		if err != nil {
			return p.BestGenome, fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
		}
		if len(newPopulation) == 0 && p.Generation > 0 {
			if !p.Config.Neat.ResetOnExtinction {
				fmt.Println(" population extinct; no reset configured")
				return p.BestGenome, nil
			}
			fmt.Println(" population extinct; resetting")
			p.Population, err = p.Reproduction.CreateNewPopulation(&p.Config.Genome, p.Config.Neat.PopSize, p.rng)
			if err != nil {
				return p.BestGenome, fmt.Errorf("failed to reset population: %w", err)
			}
			p.SpeciesSet = NewSpeciesSet(&p.Config.SpeciesSet)
		} else {
			p.Population = newPopulation
		}

		if err := p.SpeciesSet.Speciate(p.Population, p.Generation); err != nil {
			return p.BestGenome, fmt.Errorf("speciation failed in generation %d: %w", p.Generation, err)
		}
		p.Generation++

		fmt.Printf(" generation finished in %s, %d species\n\n", time.Since(start), len(p.SpeciesSet.Species))
	}
	return p.BestGenome, nil
}
