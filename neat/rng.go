package neat

import "math/rand"

// NewSource returns a seeded, explicitly-owned random source. The core never
// touches the process-global math/rand functions: every mutation, crossover,
// and selection step takes one of these as an explicit parameter. Genome.Mutate,
// Genome.ConfigureCrossover and the gene Mutate/Crossover methods draw from
// the source while ranging over Go maps, whose iteration order varies between
// runs, so a given seed plus a given configuration does not reproduce an
// identical sequence of generations.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
