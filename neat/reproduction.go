package neat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Reproduction creates genomes, both for the initial population and for
// each subsequent generation via fitness-apportioned spawn counts, uniform
// parent selection among each species' fittest members, and crossover.
type Reproduction struct {
	Config        *ReproductionConfig
	NextGenomeKey int
	Ancestors     map[int][]int
	Stagnation    *Stagnation
}

func (r *Reproduction) getNextKey() int {
	key := r.NextGenomeKey
	r.NextGenomeKey++
	return key
}

// NewReproduction creates a reproduction manager; genome keys start at 1.
func NewReproduction(config *ReproductionConfig, stagnation *Stagnation) *Reproduction {
	return &Reproduction{
		Config:        config,
		NextGenomeKey: 1,
		Ancestors:     make(map[int][]int),
		Stagnation:    stagnation,
	}
}

// CreateNewPopulation builds popSize freshly initialized genomes.
func (r *Reproduction) CreateNewPopulation(genomeConfig *GenomeConfig, popSize int, rng *rand.Rand) (map[int]*Genome, error) {
	newGenomes := make(map[int]*Genome, popSize)
	for i := 0; i < popSize; i++ {
		key := r.getNextKey()
		g := NewGenome(key, genomeConfig)
		if err := g.ConfigureNew(rng); err != nil {
			return nil, err
		}
		newGenomes[key] = g
		r.Ancestors[key] = []int{}
	}
	return newGenomes, nil
}

// Reproduce prunes stagnant species, computes each surviving species'
// adjusted fitness, apportions the next generation's spawn counts, and
// produces each species' offspring by elitism plus crossover+mutation over
// its top survival_threshold fraction of members. An empty
// result means every species went extinct; the caller decides whether to
// reset the population.
func (r *Reproduction) Reproduce(overallConfig *Config, speciesSet *SpeciesSet, popSize int, generation int, rng *rand.Rand) (map[int]*Genome, error) {
	stagnationInfo, err := r.Stagnation.Update(speciesSet, generation)
	if err != nil {
		return nil, fmt.Errorf("failed to update stagnation: %w", err)
	}

	var allFitnesses []float64
	var remainingSpecies []*Species
	for _, info := range stagnationInfo {
		if info.IsStagnant {
			continue
		}
		sp := info.Species
		memberFitnesses := sp.GetFitnesses()
		if len(memberFitnesses) == 0 {
			continue
		}
		allFitnesses = append(allFitnesses, memberFitnesses...)
		remainingSpecies = append(remainingSpecies, sp)
	}

	if len(remainingSpecies) == 0 {
		return make(map[int]*Genome), nil
	}

	minFitness := MinFloat(allFitnesses)
	maxFitness := MaxFloat(allFitnesses)
	fitnessRange := math.Max(1.0, maxFitness-minFitness)

	adjustedFitnessSum := 0.0
	for _, sp := range remainingSpecies {
		adjusted := (sp.Fitness - minFitness) / fitnessRange
		sp.AdjustedFitness = adjusted
		adjustedFitnessSum += adjusted
	}

	previousSizes := make([]int, len(remainingSpecies))
	adjustedFitnesses := make([]float64, len(remainingSpecies))
	for i, sp := range remainingSpecies {
		previousSizes[i] = len(sp.Members)
		adjustedFitnesses[i] = sp.AdjustedFitness
	}

	spawnMinSize := r.Config.MinSpeciesSize
	if r.Config.Elitism > spawnMinSize {
		spawnMinSize = r.Config.Elitism
	}
	spawnAmounts := computeSpawnAmounts(adjustedFitnesses, adjustedFitnessSum, previousSizes, popSize, spawnMinSize, rng)

	newPopulation := make(map[int]*Genome)
	newAncestors := make(map[int][]int)

	for i, sp := range remainingSpecies {
		spawn := spawnAmounts[i]
		if spawn < r.Config.Elitism {
			spawn = r.Config.Elitism
		}
		if spawn <= 0 {
			continue
		}

		oldMembers := make([]*Genome, 0, len(sp.Members))
		for _, g := range sp.Members {
			oldMembers = append(oldMembers, g)
		}
		sort.Slice(oldMembers, func(a, b int) bool {
			if oldMembers[a].Fitness != oldMembers[b].Fitness {
				return oldMembers[a].Fitness > oldMembers[b].Fitness
			}
			return oldMembers[a].Key < oldMembers[b].Key
		})

		elitesTaken := 0
		if r.Config.Elitism > 0 {
			for j := 0; j < r.Config.Elitism && j < len(oldMembers); j++ {
				elite := oldMembers[j]
				newPopulation[elite.Key] = elite
				newAncestors[elite.Key] = []int{elite.Key}
				elitesTaken++
			}
		}
		spawn -= elitesTaken
		if spawn <= 0 {
			continue
		}

		cutoff := int(math.Ceil(r.Config.SurvivalThreshold * float64(len(oldMembers))))
		if cutoff < 2 {
			cutoff = 2
		}
		if cutoff > len(oldMembers) {
			cutoff = len(oldMembers)
		}
		parents := oldMembers[:cutoff]
		if len(parents) == 0 {
			continue
		}

		for j := 0; j < spawn; j++ {
			parent1 := parents[rng.Intn(len(parents))]
			parent2 := parents[rng.Intn(len(parents))]

			childKey := r.getNextKey()
			child := NewGenome(childKey, &overallConfig.Genome)
			if err := child.ConfigureCrossover(parent1, parent2, rng); err != nil {
				return nil, err
			}
			if err := child.Mutate(rng); err != nil {
				return nil, err
			}

			newPopulation[childKey] = child
			newAncestors[childKey] = []int{parent1.Key, parent2.Key}
		}
	}
	r.Ancestors = newAncestors

	return newPopulation, nil
}

// computeSpawnAmounts implements the spawn-apportionment rule: each
// species' desired size is its adjusted-fitness share of pop_size (or
// min_species_size if all adjusted fitnesses are zero),
// nudged halfway from its previous size toward that desired size (at least
// one step, in the desired direction, if the halfway delta rounds to
// zero), then the whole vector is scaled toward pop_size: each entry is
// rounded and kept at least min_species_size, and the remaining difference is
// spread one unit per species in shuffled order without taking any species
// below min_species_size. When those minimums do not fit, the total stays
// above pop_size.
func computeSpawnAmounts(adjustedFitnesses []float64, adjustedFitnessSum float64, previousSizes []int, popSize int, minSpeciesSize int, rng *rand.Rand) []int {
	spawnAmounts := make([]int, len(adjustedFitnesses))

	for i, af := range adjustedFitnesses {
		ps := previousSizes[i]
		var desired float64
		if adjustedFitnessSum > 0 {
			desired = af / adjustedFitnessSum * float64(popSize)
		} else {
			desired = float64(minSpeciesSize)
		}
		if desired < float64(minSpeciesSize) {
			desired = float64(minSpeciesSize)
		}

		delta := (desired - float64(ps)) / 2.0
		c := int(math.Round(delta))
		spawn := ps
		switch {
		case c != 0:
			spawn += c
		case delta > 0:
			spawn++
		case delta < 0:
			spawn--
		}
		if spawn < minSpeciesSize {
			spawn = minSpeciesSize
		}
		spawnAmounts[i] = spawn
	}

	totalSpawn := 0
	for _, sa := range spawnAmounts {
		totalSpawn += sa
	}
	if totalSpawn == 0 {
		for i := range spawnAmounts {
			spawnAmounts[i] = minSpeciesSize
		}
		return spawnAmounts
	}

	norm := float64(popSize) / float64(totalSpawn)
	finalSpawnAmounts := make([]int, len(spawnAmounts))
	currentTotal := 0
	for i, sa := range spawnAmounts {
		normalized := int(math.Round(float64(sa) * norm))
		if normalized < minSpeciesSize {
			normalized = minSpeciesSize
		}
		finalSpawnAmounts[i] = normalized
		currentTotal += normalized
	}

	diff := popSize - currentTotal
	if diff != 0 {
		indices := make([]int, len(finalSpawnAmounts))
		for i := range indices {
			indices[i] = i
		}
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

		for _, idx := range indices {
			if diff == 0 {
				break
			}
			if diff > 0 {
				finalSpawnAmounts[idx]++
				diff--
			} else if finalSpawnAmounts[idx] > minSpeciesSize {
				finalSpawnAmounts[idx]--
				diff++
			}
		}
	}

	return finalSpawnAmounts
}
