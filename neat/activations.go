package neat

import (
	"fmt"
	"math"
)

// ActivationFunc is a pure scalar transfer function applied to a node's
// aggregated, biased input.
type ActivationFunc func(x float64) float64

// ActivationFunctions maps an activation method name to its implementation.
var ActivationFunctions = map[string]ActivationFunc{
	"linear":   func(x float64) float64 { return x },
	"sigmoid":  sigmoidActivation,
	"tanh":     math.Tanh,
	"sin":      math.Sin,
	"gauss":    gaussActivation,
	"relu":     func(x float64) float64 { return math.Max(0, x) },
	"softplus": softplusActivation,
	"clamped":  func(x float64) float64 { return clamp(x, -1.0, 1.0) },
	"abs":      math.Abs,
	"square":   func(x float64) float64 { return x * x },
	"cubed":    func(x float64) float64 { return x * x * x },
}

// GetActivation looks up an activation function by name.
func GetActivation(name string) (ActivationFunc, error) {
	fn, ok := ActivationFunctions[name]
	if !ok {
		return nil, fmt.Errorf("%w: activation %q", ErrUnknownMethod, name)
	}
	return fn, nil
}

func sigmoidActivation(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// gaussActivation uses e^(x^2) rather than the conventional Gaussian
// e^(-x^2). Left as-is rather than silently "corrected".
func gaussActivation(x float64) float64 {
	return math.Exp(x * x)
}

func softplusActivation(x float64) float64 {
	cx := clamp(x, -60.0, 60.0)
	return math.Log(1.0 + math.Exp(cx))
}
