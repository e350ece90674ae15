package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenomeConfig() *GenomeConfig {
	return &GenomeConfig{
		NumInputs: 2, NumOutputs: 1, NumHidden: 0,
		CompatibilityDisjointCoefficient: 1.0,
		CompatibilityWeightCoefficient:   0.5,
		InitialConnection:                "full_direct",
		BiasInitMean:                     0.0, BiasInitStdev: 1.0, BiasInit: InitGaussian,
		BiasMutateRate: 0.7, BiasReplaceRate: 0.1, BiasMutatePower: 0.5,
		BiasMinValue: -30, BiasMaxValue: 30,
		ResponseInitMean: 1.0, ResponseInitStdev: 0.0, ResponseInit: InitGaussian,
		ResponseMutateRate: 0.0, ResponseReplaceRate: 0.0, ResponseMutatePower: 0.0,
		ResponseMinValue: -30, ResponseMaxValue: 30,
		ActivationDefault: "sigmoid", ActivationOptions: []string{"sigmoid", "tanh"}, ActivationMutateRate: 0.0,
		AggregationDefault: "sum", AggregationOptions: []string{"sum", "mean"}, AggregationMutateRate: 0.0,
		WeightInitMean: 0.0, WeightInitStdev: 1.0, WeightInit: InitGaussian,
		WeightMutateRate: 0.8, WeightReplaceRate: 0.1, WeightMutatePower: 0.5,
		WeightMinValue: -30, WeightMaxValue: 30,
		EnabledDefault: "true", EnabledMutateRate: 0.01,
		InputKeys:  []int{-1, -2},
		OutputKeys: []int{0},
	}
}

func TestNewNodeGeneHasRequiredAttributes(t *testing.T) {
	cfg := testGenomeConfig()
	rng := NewSource(1)
	node, err := NewNodeGene(0, cfg, rng)
	require.NoError(t, err)

	for _, name := range []string{"bias", "response", "activation", "aggregation"} {
		_, ok := node.Attrs[name]
		assert.True(t, ok, "missing attribute %s", name)
	}
	assert.Contains(t, cfg.ActivationOptions, node.Activation())
	assert.Contains(t, cfg.AggregationOptions, node.Aggregation())
}

func TestNodeGeneCrossoverRequiresEqualKeys(t *testing.T) {
	cfg := testGenomeConfig()
	rng := NewSource(2)
	n1, err := NewNodeGene(0, cfg, rng)
	require.NoError(t, err)
	n2, err := NewNodeGene(1, cfg, rng)
	require.NoError(t, err)

	_, err = n1.Crossover(n2, rng)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCrossover)
}

func TestNodeGeneCrossoverPicksOneParentPerAttribute(t *testing.T) {
	cfg := testGenomeConfig()
	rng := NewSource(3)
	n1, err := NewNodeGene(0, cfg, rng)
	require.NoError(t, err)
	n2, err := NewNodeGene(0, cfg, rng)
	require.NoError(t, err)
	n1.SetBias(1.0)
	n2.SetBias(-1.0)

	for i := 0; i < 50; i++ {
		child, err := n1.Crossover(n2, rng)
		require.NoError(t, err)
		assert.Contains(t, []float64{1.0, -1.0}, child.Bias())
	}
}

func TestNodeGeneDistanceIsZeroForIdenticalGenes(t *testing.T) {
	cfg := testGenomeConfig()
	rng := NewSource(4)
	n1, err := NewNodeGene(0, cfg, rng)
	require.NoError(t, err)
	n2 := n1.Copy()
	assert.Equal(t, 0.0, n1.Distance(n2, cfg.CompatibilityWeightCoefficient))
}

func TestConnectionGeneEnableDisablePreservesMutateRate(t *testing.T) {
	cfg := testGenomeConfig()
	rng := NewSource(5)
	key := ConnectionKey{InNodeID: -1, OutNodeID: 0}
	conn, err := NewConnectionGene(key, cfg, rng)
	require.NoError(t, err)

	rate := conn.Attrs["enable"].MutateRate
	conn.Disable()
	assert.False(t, conn.Enabled())
	assert.Equal(t, rate, conn.Attrs["enable"].MutateRate)

	conn.Enable()
	assert.True(t, conn.Enabled())
	assert.Equal(t, rate, conn.Attrs["enable"].MutateRate)
}

func TestConnectionGeneDistanceCountsEnableMismatch(t *testing.T) {
	cfg := testGenomeConfig()
	rng := NewSource(6)
	key := ConnectionKey{InNodeID: -1, OutNodeID: 0}
	c1, err := NewConnectionGene(key, cfg, rng)
	require.NoError(t, err)
	c2 := c1.Copy()
	c2.SetWeight(c1.Weight())
	c2.Disable()
	c1.Enable()

	got := c1.Distance(c2, 1.0)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestGeneCopyIsDeep(t *testing.T) {
	cfg := testGenomeConfig()
	rng := NewSource(7)
	node, err := NewNodeGene(0, cfg, rng)
	require.NoError(t, err)

	clone := node.Copy()
	clone.SetBias(clone.Bias() + 1)
	assert.NotEqual(t, node.Bias(), clone.Bias())
}
