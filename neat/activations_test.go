package neat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivationFunctions(t *testing.T) {
	cases := []struct {
		name string
		x    float64
		want float64
	}{
		{"linear", 2.5, 2.5},
		{"relu", -3.0, 0.0},
		{"relu", 3.0, 3.0},
		{"abs", -4.0, 4.0},
		{"square", -3.0, 9.0},
		{"cubed", -2.0, -8.0},
		{"clamped", 5.0, 1.0},
		{"clamped", -5.0, -1.0},
		{"gauss", 0.0, 1.0},
		{"sin", 0.0, 0.0},
		{"tanh", 0.0, 0.0},
	}
	for _, c := range cases {
		fn, err := GetActivation(c.name)
		require.NoError(t, err)
		assert.InDelta(t, c.want, fn(c.x), 1e-9, c.name)
	}
}

func TestGaussActivationUsesPositiveExponent(t *testing.T) {
	fn, err := GetActivation("gauss")
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(4), fn(2.0), 1e-9)
}

func TestUnknownActivationFails(t *testing.T) {
	_, err := GetActivation("nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestSigmoidBounded(t *testing.T) {
	fn, err := GetActivation("sigmoid")
	require.NoError(t, err)
	assert.Greater(t, fn(100), 0.99)
	assert.Less(t, fn(-100), 0.01)
}
