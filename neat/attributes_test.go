package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatAttributeClampedAfterMutation(t *testing.T) {
	rng := NewSource(1)
	attr, err := NewFloatAttribute("bias", 0, 1, InitGaussian, 1.0, 0.0, 5.0, -2.0, 2.0, rng)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		attr.Mutate(rng)
		assert.GreaterOrEqual(t, attr.FloatVal, -2.0)
		assert.LessOrEqual(t, attr.FloatVal, 2.0)
	}
}

func TestFloatAttributeInvalidBounds(t *testing.T) {
	rng := NewSource(1)
	_, err := NewFloatAttribute("bias", 5.0, 1.0, InitGaussian, 0.5, 0.0, 1.0, 10.0, -10.0, rng)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestIntAttributeRoundsAndClamps(t *testing.T) {
	rng := NewSource(2)
	attr, err := NewIntAttribute("count", 0, 3, InitGaussian, 1.0, 0.0, 10.0, -5, 5, rng)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		attr.Mutate(rng)
		assert.Equal(t, attr.FloatVal, float64(int64(attr.FloatVal)))
		assert.GreaterOrEqual(t, attr.FloatVal, -5.0)
		assert.LessOrEqual(t, attr.FloatVal, 5.0)
	}
}

func TestBoolAttributeAlwaysMutatesWhenRateOne(t *testing.T) {
	attr, err := NewBoolAttribute("enable", true, 1.0)
	require.NoError(t, err)
	attr.Mutate(NewSource(3))
	assert.Contains(t, []bool{true, false}, attr.BoolVal)
}

func TestStringAttributeStaysWithinOptions(t *testing.T) {
	options := []string{"sigmoid", "tanh", "relu"}
	attr, err := NewStringAttribute("activation", "sigmoid", options, 1.0)
	require.NoError(t, err)

	rng := NewSource(4)
	for i := 0; i < 100; i++ {
		attr.Mutate(rng)
		assert.Contains(t, options, attr.StringVal)
	}
}

func TestStringAttributeRequiresOptions(t *testing.T) {
	_, err := NewStringAttribute("activation", "sigmoid", nil, 0.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAttributeFloatConversions(t *testing.T) {
	boolAttr, err := NewBoolAttribute("enable", true, 0.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, boolAttr.Float())

	boolAttr.BoolVal = false
	assert.Equal(t, 0.0, boolAttr.Float())

	strAttr, err := NewStringAttribute("x", "3.5", []string{"3.5", "other"}, 0.0)
	require.NoError(t, err)
	assert.Equal(t, 3.5, strAttr.Float())

	strAttr.StringVal = "other"
	assert.Equal(t, 0.0, strAttr.Float())
}

func TestAttributeCopyIsIndependent(t *testing.T) {
	rng := NewSource(5)
	attr, err := NewFloatAttribute("weight", 0, 1, InitGaussian, 0.5, 0.1, 0.5, -3, 3, rng)
	require.NoError(t, err)

	clone := attr.Copy()
	clone.FloatVal = 99.0
	assert.NotEqual(t, attr.FloatVal, clone.FloatVal)
}

func TestParseInitTypeRejectsUnknown(t *testing.T) {
	_, err := ParseInitType("exponential")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGaussianInitWithZeroStdevYieldsMean(t *testing.T) {
	rng := NewSource(6)
	attr, err := NewFloatAttribute("response", 2.0, 0.0, InitGaussian, 0.0, 0.0, 0.0, -10, 10, rng)
	require.NoError(t, err)
	assert.Equal(t, 2.0, attr.FloatVal)
}
