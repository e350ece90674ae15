package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores every configuration parameter consumed by the core,
// parsed from a section-header style key-value file.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	SpeciesSet   SpeciesSetConfig
	Stagnation   StagnationConfig
}

// NeatConfig holds the top-level parameters of the evolutionary loop.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size"`
	FitnessCriterion     string  `ini:"fitness_criterion"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	ResetOnExtinction    bool    `ini:"reset_on_extinction"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
}

// GenomeConfig holds the parameters that govern genome construction,
// mutation, and compatibility distance.
type GenomeConfig struct {
	NumInputs                        int     `ini:"num_inputs"`
	NumOutputs                       int     `ini:"num_outputs"`
	NumHidden                        int     `ini:"num_hidden"`
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`
	ConnAddProb                      float64 `ini:"conn_add_prob"`
	ConnDeleteProb                   float64 `ini:"conn_delete_prob"`
	NodeAddProb                      float64 `ini:"node_add_prob"`
	NodeDeleteProb                   float64 `ini:"node_delete_prob"`
	InitialConnection                string  `ini:"initial_connection"`

	BiasInitMean    float64 `ini:"bias_init_mean"`
	BiasInitStdev   float64 `ini:"bias_init_stdev"`
	BiasInitTypeStr string  `ini:"bias_init_type"`
	BiasReplaceRate float64 `ini:"bias_replace_rate"`
	BiasMutateRate  float64 `ini:"bias_mutate_rate"`
	BiasMutatePower float64 `ini:"bias_mutate_power"`
	BiasMaxValue    float64 `ini:"bias_max_value"`
	BiasMinValue    float64 `ini:"bias_min_value"`

	ResponseInitMean    float64 `ini:"response_init_mean"`
	ResponseInitStdev   float64 `ini:"response_init_stdev"`
	ResponseInitTypeStr string  `ini:"response_init_type"`
	ResponseReplaceRate float64 `ini:"response_replace_rate"`
	ResponseMutateRate  float64 `ini:"response_mutate_rate"`
	ResponseMutatePower float64 `ini:"response_mutate_power"`
	ResponseMaxValue    float64 `ini:"response_max_value"`
	ResponseMinValue    float64 `ini:"response_min_value"`

	ActivationDefault    string   `ini:"activation_default"`
	ActivationOptions    []string `ini:"activation_options" delim:","`
	ActivationMutateRate float64  `ini:"activation_mutate_rate"`

	AggregationDefault    string   `ini:"aggregation_default"`
	AggregationOptions    []string `ini:"aggregation_options" delim:","`
	AggregationMutateRate float64  `ini:"aggregation_mutate_rate"`

	WeightInitMean    float64 `ini:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_stdev"`
	WeightInitTypeStr string  `ini:"weight_init_type"`
	WeightReplaceRate float64 `ini:"weight_replace_rate"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
	WeightMaxValue    float64 `ini:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value"`

	EnabledDefault        string  `ini:"enabled_default"`
	EnabledMutateRate     float64 `ini:"enabled_mutate_rate"`
	EnabledRateToTrueAdd  float64 `ini:"enabled_rate_to_true_add"`
	EnabledRateToFalseAdd float64 `ini:"enabled_rate_to_false_add"`

	// Derived, parsed forms of the *_init_type strings above.
	BiasInit     InitType
	ResponseInit InitType
	WeightInit   InitType

	// Derived node id layout.
	InputKeys  []int
	OutputKeys []int
}

// ReproductionConfig holds parameters governing elitism and parent
// selection.
type ReproductionConfig struct {
	Elitism           int     `ini:"elitism"`
	SurvivalThreshold float64 `ini:"survival_threshold"`
	MinSpeciesSize    int     `ini:"min_species_size"`
}

// SpeciesSetConfig holds parameters governing speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
}

// StagnationConfig holds parameters governing stagnation detection.
type StagnationConfig struct {
	SpeciesFitnessFunc string `ini:"species_fitness_func"`
	MaxStagnation      int    `ini:"max_stagnation"`
	SpeciesElitism     int    `ini:"species_elitism"`
}

// LoadConfig loads and validates configuration parameters from an INI-style
// file. A missing section fails with ErrUnknownSection, a malformed value
// with ErrInvalidValue, and any remaining structural problem with
// ErrInvalidConfig. A key absent from a present section is not reported as
// missing: its field keeps its zero value, which fails only where validation
// rejects that zero (for example pop_size or num_inputs with ErrInvalidValue,
// or empty activation_options/aggregation_options with ErrMissingKey).
func LoadConfig(filePath string) (*Config, error) {
	raw, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load config file %q: %v", ErrInvalidConfig, filePath, err)
	}

	config := &Config{}
	sections := []struct {
		name string
		dst  interface{}
	}{
		{"NEAT", &config.Neat},
		{"DefaultGenome", &config.Genome},
		{"DefaultReproduction", &config.Reproduction},
		{"DefaultSpeciesSet", &config.SpeciesSet},
		{"DefaultStagnation", &config.Stagnation},
	}
	for _, s := range sections {
		sec, err := raw.GetSection(s.name)
		if err != nil {
			return nil, fmt.Errorf("%w: section [%s]", ErrUnknownSection, s.name)
		}
		if err := sec.StrictMapTo(s.dst); err != nil {
			return nil, fmt.Errorf("%w: section [%s]: %v", ErrInvalidValue, s.name, err)
		}
	}

	for i, opt := range config.Genome.ActivationOptions {
		config.Genome.ActivationOptions[i] = strings.TrimSpace(opt)
	}
	for i, opt := range config.Genome.AggregationOptions {
		config.Genome.AggregationOptions[i] = strings.TrimSpace(opt)
	}

	if err := deriveAndValidate(config); err != nil {
		return nil, err
	}
	return config, nil
}

func deriveAndValidate(config *Config) error {
	gc := &config.Genome

	if len(gc.ActivationOptions) == 0 {
		return fmt.Errorf("%w: activation_options must be specified", ErrMissingKey)
	}
	if len(gc.AggregationOptions) == 0 {
		return fmt.Errorf("%w: aggregation_options must be specified", ErrMissingKey)
	}
	if gc.NumInputs <= 0 {
		return fmt.Errorf("%w: num_inputs must be positive", ErrInvalidValue)
	}
	if gc.NumOutputs <= 0 {
		return fmt.Errorf("%w: num_outputs must be positive", ErrInvalidValue)
	}
	if gc.NumHidden < 0 {
		return fmt.Errorf("%w: num_hidden must be non-negative", ErrInvalidValue)
	}
	if gc.CompatibilityDisjointCoefficient < 0 || gc.CompatibilityWeightCoefficient < 0 {
		return fmt.Errorf("%w: compatibility coefficients must be non-negative", ErrInvalidValue)
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"conn_add_prob", gc.ConnAddProb}, {"conn_delete_prob", gc.ConnDeleteProb},
		{"node_add_prob", gc.NodeAddProb}, {"node_delete_prob", gc.NodeDeleteProb},
	} {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1]", ErrInvalidValue, p.name)
		}
	}
	if gc.BiasMaxValue < gc.BiasMinValue || gc.ResponseMaxValue < gc.ResponseMinValue || gc.WeightMaxValue < gc.WeightMinValue {
		return fmt.Errorf("%w: a max_value is less than its min_value", ErrInvalidValue)
	}

	var err error
	if gc.BiasInit, err = ParseInitType(gc.BiasInitTypeStr); err != nil {
		return err
	}
	if gc.ResponseInit, err = ParseInitType(gc.ResponseInitTypeStr); err != nil {
		return err
	}
	if gc.WeightInit, err = ParseInitType(gc.WeightInitTypeStr); err != nil {
		return err
	}

	gc.InputKeys = make([]int, gc.NumInputs)
	for i := 0; i < gc.NumInputs; i++ {
		gc.InputKeys[i] = -(i + 1)
	}
	gc.OutputKeys = make([]int, gc.NumOutputs)
	for i := 0; i < gc.NumOutputs; i++ {
		gc.OutputKeys[i] = i
	}

	validConnections := map[string]bool{"full_direct": true, "full_indirect": true, "unconnected": true}
	if !validConnections[gc.InitialConnection] {
		return fmt.Errorf("%w: invalid initial_connection %q", ErrInvalidConfig, gc.InitialConnection)
	}

	rc := &config.Reproduction
	if rc.SurvivalThreshold < 0 || rc.SurvivalThreshold > 1 {
		return fmt.Errorf("%w: survival_threshold must be in [0,1]", ErrInvalidValue)
	}
	if rc.MinSpeciesSize <= 0 {
		return fmt.Errorf("%w: min_species_size must be positive", ErrInvalidValue)
	}
	if rc.Elitism < 0 {
		return fmt.Errorf("%w: elitism must be non-negative", ErrInvalidValue)
	}

	if config.SpeciesSet.CompatibilityThreshold < 0 {
		return fmt.Errorf("%w: compatibility_threshold must be non-negative", ErrInvalidValue)
	}

	sc := &config.Stagnation
	if sc.MaxStagnation <= 0 {
		return fmt.Errorf("%w: max_stagnation must be positive", ErrInvalidValue)
	}
	if sc.SpeciesElitism < 0 {
		return fmt.Errorf("%w: species_elitism must be non-negative", ErrInvalidValue)
	}
	if _, ok := StatFunctions[strings.ToLower(sc.SpeciesFitnessFunc)]; !ok {
		return fmt.Errorf("%w: invalid species_fitness_func %q", ErrInvalidConfig, sc.SpeciesFitnessFunc)
	}

	validCriteria := map[string]bool{"max": true, "min": true, "mean": true}
	if !validCriteria[strings.ToLower(config.Neat.FitnessCriterion)] {
		return fmt.Errorf("%w: invalid fitness_criterion %q", ErrInvalidConfig, config.Neat.FitnessCriterion)
	}
	if config.Neat.PopSize <= 0 {
		return fmt.Errorf("%w: pop_size must be positive", ErrInvalidValue)
	}

	return nil
}

