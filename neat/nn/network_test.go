package nn

import (
	"testing"

	"github.com/fenwick-labs/neat/neat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildXORConfig() *neat.GenomeConfig {
	return &neat.GenomeConfig{
		NumInputs: 2, NumOutputs: 1, NumHidden: 0,
		CompatibilityDisjointCoefficient: 1.0,
		CompatibilityWeightCoefficient:   0.5,
		InitialConnection:                "full_direct",
		BiasInitMean:                     0.0, BiasInitStdev: 1.0, BiasInit: neat.InitGaussian,
		BiasMutateRate: 0.7, BiasReplaceRate: 0.1, BiasMutatePower: 0.5,
		BiasMinValue: -30, BiasMaxValue: 30,
		ResponseInitMean: 1.0, ResponseInitStdev: 0.0, ResponseInit: neat.InitGaussian,
		ResponseMinValue: -30, ResponseMaxValue: 30,
		ActivationDefault: "sigmoid", ActivationOptions: []string{"sigmoid"},
		AggregationDefault: "sum", AggregationOptions: []string{"sum"},
		WeightInitMean: 0.0, WeightInitStdev: 1.0, WeightInit: neat.InitGaussian,
		WeightMutateRate: 0.8, WeightReplaceRate: 0.1, WeightMutatePower: 0.5,
		WeightMinValue: -30, WeightMaxValue: 30,
		EnabledDefault: "true", EnabledMutateRate: 0.01,
		InputKeys:  []int{-1, -2},
		OutputKeys: []int{0},
	}
}

func TestBuildAndActivateMatchesGenomeForward(t *testing.T) {
	cfg := buildXORConfig()
	g := neat.NewGenome(1, cfg)
	require.NoError(t, g.ConfigureNew(neat.NewSource(1)))
	g.Activate()

	net, err := Build(g)
	require.NoError(t, err)

	genomeOut, err := g.Forward([]float64{0.5, 0.25})
	require.NoError(t, err)
	netOut, err := net.Activate([]float64{0.5, 0.25})
	require.NoError(t, err)

	assert.InDeltaSlice(t, genomeOut, netOut, 1e-9)
}

func TestActivateRejectsWrongArity(t *testing.T) {
	cfg := buildXORConfig()
	g := neat.NewGenome(1, cfg)
	require.NoError(t, g.ConfigureNew(neat.NewSource(2)))

	net, err := Build(g)
	require.NoError(t, err)

	_, err = net.Activate([]float64{1.0})
	require.Error(t, err)
}
