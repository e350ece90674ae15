package neat

import "errors"

// Sentinel errors surfaced by the core. Callers should use errors.Is to
// test for a specific kind rather than comparing formatted strings.
var (
	// Configuration problems, detected while loading a config file.
	ErrMissingKey     = errors.New("neat: missing config key")
	ErrInvalidValue   = errors.New("neat: invalid config value")
	ErrUnknownSection = errors.New("neat: unknown config section")
	ErrInvalidConfig  = errors.New("neat: invalid config")

	// Structural contract violations on genes.
	ErrInvalidGene      = errors.New("neat: invalid gene")
	ErrInvalidCrossover = errors.New("neat: invalid crossover")

	// Activation/aggregation lookup failures.
	ErrUnknownMethod = errors.New("neat: unknown method")

	// Forward-pass preconditions.
	ErrNotActivated  = errors.New("neat: genome not activated")
	ErrArityMismatch = errors.New("neat: input arity mismatch")
)
