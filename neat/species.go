package neat

import (
	"fmt"
	"math"
	"sort"
)

// Species represents a group of genetically similar genomes, identified by
// a representative genome.
type Species struct {
	Key             int
	Created         int
	LastImproved    int
	Representative  *Genome
	Members         map[int]*Genome
	Fitness         float64
	AdjustedFitness float64
	FitnessHistory  []float64
}

// NewSpecies creates a new, empty species.
func NewSpecies(key, generation int) *Species {
	return &Species{
		Key:            key,
		Created:        generation,
		LastImproved:   generation,
		Members:        make(map[int]*Genome),
		FitnessHistory: []float64{},
	}
}

// Update replaces the species' representative and member set.
func (s *Species) Update(representative *Genome, members map[int]*Genome) {
	s.Representative = representative
	s.Members = members
}

// GetFitnesses returns the fitness of every member genome.
func (s *Species) GetFitnesses() []float64 {
	fitnesses := make([]float64, 0, len(s.Members))
	for _, g := range s.Members {
		fitnesses = append(fitnesses, g.Fitness)
	}
	return fitnesses
}

// --------------------------- GenomeDistanceCache ---------------------------

// genomePairKey orders a genome pair so (a, b) and (b, a) hash identically.
type genomePairKey struct {
	lo, hi int
}

// GenomeDistanceCache memoizes Genome.Distance calls within one speciation
// pass.
type GenomeDistanceCache struct {
	distances map[genomePairKey]float64
	Hits      int
	Misses    int
}

// NewGenomeDistanceCache creates an empty distance cache.
func NewGenomeDistanceCache() *GenomeDistanceCache {
	return &GenomeDistanceCache{distances: make(map[genomePairKey]float64)}
}

// Distance computes or retrieves the symmetric distance between two
// genomes.
func (dc *GenomeDistanceCache) Distance(genome1, genome2 *Genome) float64 {
	key := genomePairKey{genome1.Key, genome2.Key}
	if key.lo > key.hi {
		key.lo, key.hi = key.hi, key.lo
	}
	if d, ok := dc.distances[key]; ok {
		dc.Hits++
		return d
	}
	dc.Misses++
	d := genome1.Distance(genome2)
	dc.distances[key] = d
	return d
}

// --------------------------- SpeciesSet ---------------------------

// SpeciesSet manages the population's partition into species.
type SpeciesSet struct {
	Species         map[int]*Species
	GenomeToSpecies map[int]int
	indexer         int
	Config          *SpeciesSetConfig
}

// NewSpeciesSet creates an empty species set manager; species keys are
// assigned starting at 1.
func NewSpeciesSet(config *SpeciesSetConfig) *SpeciesSet {
	return &SpeciesSet{
		Species:         make(map[int]*Species),
		GenomeToSpecies: make(map[int]int),
		indexer:         1,
		Config:          config,
	}
}

// Speciate partitions population into species, in three phases: first each
// existing species picks, as its new representative, the unspeciated
// genome nearest its old representative; then every remaining genome joins
// the nearest current representative within the compatibility threshold, or
// starts a new species; finally species membership and representatives are
// published.
func (ss *SpeciesSet) Speciate(population map[int]*Genome, generation int) error {
	if len(population) == 0 {
		ss.Species = make(map[int]*Species)
		ss.GenomeToSpecies = make(map[int]int)
		return nil
	}

	threshold := ss.Config.CompatibilityThreshold
	cache := NewGenomeDistanceCache()

	unspeciated := make(map[int]*Genome, len(population))
	for k, v := range population {
		unspeciated[k] = v
	}
	newRepresentatives := make(map[int]*Genome)
	newMembers := make(map[int][]int)

	var existingSpeciesKeys []int
	for sid := range ss.Species {
		existingSpeciesKeys = append(existingSpeciesKeys, sid)
	}
	sort.Ints(existingSpeciesKeys)

	for _, sid := range existingSpeciesKeys {
		s := ss.Species[sid]
		if len(unspeciated) == 0 {
			break
		}
		if s.Representative == nil {
			continue
		}

		var candidateKeys []int
		for k := range unspeciated {
			candidateKeys = append(candidateKeys, k)
		}
		sort.Ints(candidateKeys)

		bestKey := -1
		bestDist := math.Inf(1)
		for _, gk := range candidateKeys {
			d := cache.Distance(s.Representative, unspeciated[gk])
			if d < bestDist {
				bestDist = d
				bestKey = gk
			}
		}
		if bestKey == -1 {
			continue
		}

		newRep := unspeciated[bestKey]
		newRepresentatives[sid] = newRep
		newMembers[sid] = []int{newRep.Key}
		delete(unspeciated, bestKey)
	}

	var remainingKeys []int
	for k := range unspeciated {
		remainingKeys = append(remainingKeys, k)
	}
	sort.Ints(remainingKeys)

	var currentSpeciesOrder []int
	for sid := range newRepresentatives {
		currentSpeciesOrder = append(currentSpeciesOrder, sid)
	}

	for _, gk := range remainingKeys {
		g := unspeciated[gk]

		var order []int
		order = append(order, currentSpeciesOrder...)
		sort.Ints(order)

		bestSpecies := -1
		bestDist := math.Inf(1)
		for _, sid := range order {
			d := cache.Distance(newRepresentatives[sid], g)
			if d < threshold && d < bestDist {
				bestDist = d
				bestSpecies = sid
			}
		}

		if bestSpecies != -1 {
			newMembers[bestSpecies] = append(newMembers[bestSpecies], gk)
			continue
		}

		newSID := ss.indexer
		ss.indexer++
		newRepresentatives[newSID] = g
		newMembers[newSID] = []int{gk}
		currentSpeciesOrder = append(currentSpeciesOrder, newSID)
	}

	newSpeciesMap := make(map[int]*Species)
	newGenomeToSpeciesMap := make(map[int]int)

	var sids []int
	for sid := range newRepresentatives {
		sids = append(sids, sid)
	}
	sort.Ints(sids)

	for _, sid := range sids {
		representative := newRepresentatives[sid]
		membersList := newMembers[sid]
		if len(membersList) == 0 {
			continue
		}

		s := ss.Species[sid]
		if s == nil {
			s = NewSpecies(sid, generation)
		}

		memberMap := make(map[int]*Genome, len(membersList))
		for _, gid := range membersList {
			memberMap[gid] = population[gid]
			newGenomeToSpeciesMap[gid] = sid
		}

		s.Update(representative, memberMap)
		newSpeciesMap[sid] = s
	}

	ss.Species = newSpeciesMap
	ss.GenomeToSpecies = newGenomeToSpeciesMap

	if len(cache.distances) > 0 {
		allDistances := make([]float64, 0, len(cache.distances))
		for _, d := range cache.distances {
			allDistances = append(allDistances, d)
		}
		fmt.Printf("Speciation: %d species, mean distance %.3f, stdev %.3f\n",
			len(newSpeciesMap), Mean(allDistances), Stdev(allDistances))
	}

	return nil
}

// GetSpeciesID returns the species key a genome currently belongs to.
func (ss *SpeciesSet) GetSpeciesID(genomeID int) (int, bool) {
	sid, exists := ss.GenomeToSpecies[genomeID]
	return sid, exists
}

// GetSpecies returns the Species a genome currently belongs to.
func (ss *SpeciesSet) GetSpecies(genomeID int) (*Species, bool) {
	sid, exists := ss.GenomeToSpecies[genomeID]
	if !exists {
		return nil, false
	}
	s, exists := ss.Species[sid]
	return s, exists
}
