package neat

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// AttributeKind tags which variant an Attribute holds.
type AttributeKind int

const (
	FloatAttr AttributeKind = iota
	IntAttr
	BoolAttr
	StringAttr
)

// InitType selects how a Float/Int attribute is randomly initialized.
type InitType int

const (
	InitGaussian InitType = iota
	InitUniform
)

// ParseInitType parses the config string form of an init type.
func ParseInitType(s string) (InitType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gaussian", "normal", "":
		return InitGaussian, nil
	case "uniform":
		return InitUniform, nil
	default:
		return 0, fmt.Errorf("%w: init_type %q", ErrInvalidConfig, s)
	}
}

// Attribute is a named, typed, mutable parameter with a mutation rate in
// [0,1]. Exactly one of the Kind-tagged fields is meaningful at a time; this
// is a tagged sum type standing in for the class-hierarchy/downcast style a
// genome attribute might otherwise use.
type Attribute struct {
	Name string
	Kind AttributeKind

	// Float/Int shared fields. For IntAttr, FloatVal always holds an
	// integral value; perturbations are rounded before clamping.
	FloatVal    float64
	InitMean    float64
	InitStdev   float64
	Init        InitType
	MutateRate  float64
	ReplaceRate float64
	MutatePower float64
	MinValue    float64
	MaxValue    float64

	// Bool fields.
	BoolVal bool

	// String (categorical) fields.
	StringVal string
	Options   []string
}

// NewFloatAttribute constructs and validates a Float attribute, drawing its
// initial value from the configured distribution.
func NewFloatAttribute(name string, mean, stdev float64, init InitType, mutateRate, replaceRate, mutatePower, minVal, maxVal float64, rng *rand.Rand) (*Attribute, error) {
	a := &Attribute{
		Name: name, Kind: FloatAttr,
		InitMean: mean, InitStdev: stdev, Init: init,
		MutateRate: mutateRate, ReplaceRate: replaceRate, MutatePower: mutatePower,
		MinValue: minVal, MaxValue: maxVal,
	}
	if err := a.validateNumeric(); err != nil {
		return nil, err
	}
	a.FloatVal = a.sampleInit(rng)
	return a, nil
}

// NewIntAttribute constructs and validates an Int attribute.
func NewIntAttribute(name string, mean, stdev float64, init InitType, mutateRate, replaceRate, mutatePower, minVal, maxVal float64, rng *rand.Rand) (*Attribute, error) {
	a := &Attribute{
		Name: name, Kind: IntAttr,
		InitMean: mean, InitStdev: stdev, Init: init,
		MutateRate: mutateRate, ReplaceRate: replaceRate, MutatePower: mutatePower,
		MinValue: minVal, MaxValue: maxVal,
	}
	if err := a.validateNumeric(); err != nil {
		return nil, err
	}
	a.FloatVal = math.Round(a.sampleInit(rng))
	a.FloatVal = clamp(a.FloatVal, minVal, maxVal)
	return a, nil
}

// NewBoolAttribute constructs a Bool attribute with the given initial value.
func NewBoolAttribute(name string, value bool, mutateRate float64) (*Attribute, error) {
	if mutateRate < 0 || mutateRate > 1 {
		return nil, fmt.Errorf("%w: %s mutate_rate out of [0,1]", ErrInvalidConfig, name)
	}
	return &Attribute{Name: name, Kind: BoolAttr, BoolVal: value, MutateRate: mutateRate}, nil
}

// NewStringAttribute constructs a String (categorical) attribute.
func NewStringAttribute(name, value string, options []string, mutateRate float64) (*Attribute, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: %s has no options", ErrInvalidConfig, name)
	}
	if mutateRate < 0 || mutateRate > 1 {
		return nil, fmt.Errorf("%w: %s mutate_rate out of [0,1]", ErrInvalidConfig, name)
	}
	return &Attribute{Name: name, Kind: StringAttr, StringVal: value, Options: append([]string{}, options...), MutateRate: mutateRate}, nil
}

func (a *Attribute) validateNumeric() error {
	if a.MinValue > a.MaxValue {
		return fmt.Errorf("%w: %s min > max", ErrInvalidConfig, a.Name)
	}
	if a.InitMean < a.MinValue || a.InitMean > a.MaxValue {
		return fmt.Errorf("%w: %s init mean out of bounds", ErrInvalidConfig, a.Name)
	}
	if a.InitStdev < 0 {
		return fmt.Errorf("%w: %s init stdev negative", ErrInvalidConfig, a.Name)
	}
	if a.MutateRate < 0 || a.MutateRate > 1 {
		return fmt.Errorf("%w: %s mutate_rate out of [0,1]", ErrInvalidConfig, a.Name)
	}
	if a.MutatePower < 0 {
		return fmt.Errorf("%w: %s mutate_power negative", ErrInvalidConfig, a.Name)
	}
	return nil
}

// sampleInit draws a fresh value per Init, without clamping or rounding.
func (a *Attribute) sampleInit(rng *rand.Rand) float64 {
	switch a.Init {
	case InitGaussian:
		if a.InitStdev == 0 {
			return a.InitMean
		}
		return rng.NormFloat64()*a.InitStdev + a.InitMean
	case InitUniform:
		rangeMin := math.Max(a.MinValue, a.InitMean-2*a.InitStdev)
		rangeMax := math.Min(a.MaxValue, a.InitMean+2*a.InitStdev)
		if rangeMax < rangeMin {
			rangeMax = rangeMin
		}
		return rng.Float64()*(rangeMax-rangeMin) + rangeMin
	default:
		return a.InitMean
	}
}

// Copy returns an independent, value-equal copy of the attribute.
func (a *Attribute) Copy() *Attribute {
	c := *a
	c.Options = append([]string{}, a.Options...)
	return &c
}

// Mutate applies this attribute's mutation rule in place. ReplaceRate is
// parsed and validated but, per the original implementation, never
// consulted here: only the additive Gaussian perturbation applies.
func (a *Attribute) Mutate(rng *rand.Rand) {
	switch a.Kind {
	case FloatAttr, IntAttr:
		if rng.Float64() < a.MutateRate {
			perturbation := rng.NormFloat64() * a.MutatePower
			v := a.FloatVal + perturbation
			if a.Kind == IntAttr {
				v = math.Round(v)
			}
			a.FloatVal = clamp(v, a.MinValue, a.MaxValue)
		}
	case BoolAttr:
		if rng.Float64() < a.MutateRate {
			a.BoolVal = rng.Float64() < 0.5
		}
	case StringAttr:
		if len(a.Options) <= 1 {
			return
		}
		if rng.Float64() < a.MutateRate {
			a.StringVal = a.Options[rng.Intn(len(a.Options))]
		}
	}
}

// Float returns the attribute's value as a float64, per §4.1: Bool yields
// 1.0/0.0, String attempts a numeric parse and returns 0 on failure.
func (a *Attribute) Float() float64 {
	switch a.Kind {
	case FloatAttr, IntAttr:
		return a.FloatVal
	case BoolAttr:
		if a.BoolVal {
			return 1.0
		}
		return 0.0
	case StringAttr:
		v, err := strconv.ParseFloat(a.StringVal, 64)
		if err != nil {
			return 0.0
		}
		return v
	}
	return 0.0
}

// Bool returns the attribute's boolean interpretation.
func (a *Attribute) Bool() bool {
	if a.Kind == BoolAttr {
		return a.BoolVal
	}
	return a.Float() != 0.0
}

// String renders the attribute's value for display.
func (a *Attribute) String() string {
	switch a.Kind {
	case FloatAttr:
		return fmt.Sprintf("%.4f", a.FloatVal)
	case IntAttr:
		return fmt.Sprintf("%d", int64(a.FloatVal))
	case BoolAttr:
		return fmt.Sprintf("%t", a.BoolVal)
	case StringAttr:
		return a.StringVal
	}
	return ""
}
