package neat

import "fmt"

// AggregationFunc reduces a node's weighted incoming values to a scalar
// before the bias/response/activation stage.
type AggregationFunc func(values []float64) float64

// AggregationFunctions maps an aggregation method name to its implementation.
var AggregationFunctions = map[string]AggregationFunc{
	"sum":    Sum,
	"mean":   Mean,
	"max":    MaxFloat,
	"min":    MinFloat,
	"median": Median,
}

// GetAggregation looks up an aggregation function by name.
func GetAggregation(name string) (AggregationFunc, error) {
	fn, ok := AggregationFunctions[name]
	if !ok {
		return nil, fmt.Errorf("%w: aggregation %q", ErrUnknownMethod, name)
	}
	return fn, nil
}
