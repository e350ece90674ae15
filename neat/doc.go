// Package neat provides a Go implementation of the NeuroEvolution of
// Augmenting Topologies (NEAT) algorithm.
//
// NEAT co-evolves the topology and the weights of feed-forward neural
// networks, grouping genomes into species so that structural innovation
// has time to optimize before it has to compete head-to-head with the
// rest of the population.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	pop, err := neat.NewPopulation(config, 42)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	winner, err := pop.Run(evalGenomes, 300)
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
package neat
