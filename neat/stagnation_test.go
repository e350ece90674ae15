package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSpeciesWithFitness(key int, fitness float64) *Species {
	cfg := testGenomeConfig()
	sp := NewSpecies(key, 0)
	g := NewGenome(key*100, cfg)
	g.Fitness = fitness
	sp.Members[g.Key] = g
	return sp
}

func TestStagnationOneSpeciesAtGeneration15(t *testing.T) {
	stag, err := NewStagnation(&StagnationConfig{SpeciesFitnessFunc: "max", MaxStagnation: 15, SpeciesElitism: 1})
	require.NoError(t, err)

	ss := NewSpeciesSet(&SpeciesSetConfig{CompatibilityThreshold: 3.0})
	ss.Species[1] = makeSpeciesWithFitness(1, 5.0)  // fitness never changes
	ss.Species[2] = makeSpeciesWithFitness(2, 1.0)  // fitness increases each gen

	for gen := 0; gen <= 14; gen++ {
		ss.Species[2].Members[200].Fitness = 1.0 + float64(gen)
		infos, err := stag.Update(ss, gen)
		require.NoError(t, err)
		for _, info := range infos {
			assert.False(t, info.IsStagnant, "generation %d species %d should not be stagnant yet", gen, info.SpeciesID)
		}
	}

	ss.Species[2].Members[200].Fitness = 1.0 + 15.0
	infos, err := stag.Update(ss, 15)
	require.NoError(t, err)

	var stagnantIDs []int
	for _, info := range infos {
		if info.IsStagnant {
			stagnantIDs = append(stagnantIDs, info.SpeciesID)
		}
	}
	assert.Equal(t, []int{1}, stagnantIDs)
}

func TestStagnationSparesEliteRegardlessOfAge(t *testing.T) {
	stag, err := NewStagnation(&StagnationConfig{SpeciesFitnessFunc: "max", MaxStagnation: 1, SpeciesElitism: 5})
	require.NoError(t, err)

	ss := NewSpeciesSet(&SpeciesSetConfig{CompatibilityThreshold: 3.0})
	ss.Species[1] = makeSpeciesWithFitness(1, 1.0)
	ss.Species[2] = makeSpeciesWithFitness(2, 2.0)

	infos, err := stag.Update(ss, 100)
	require.NoError(t, err)
	for _, info := range infos {
		assert.False(t, info.IsStagnant, "species_elitism >= |species| must spare all species")
	}
}

func TestStagnationRejectsUnknownFitnessFunc(t *testing.T) {
	_, err := NewStagnation(&StagnationConfig{SpeciesFitnessFunc: "bogus", MaxStagnation: 5, SpeciesElitism: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
