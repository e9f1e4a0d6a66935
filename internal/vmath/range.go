package vmath

import (
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

// Range is a closed interval sampled uniformly. In YAML it is written either
// as a scalar (min == max) or as a two element sequence [min, max].
type Range struct{ Min, Max float64 }

// Fixed returns a degenerate range that always samples v.
func Fixed(v float64) Range { return Range{v, v} }

func (r Range) Valid() bool    { return r.Min <= r.Max }
func (r Range) Mid() float64   { return (r.Min + r.Max) / 2 }
func (r Range) Span() float64  { return r.Max - r.Min }
func (r Range) Negative() bool { return r.Min < 0 || r.Max < 0 }

// Sample draws uniformly from [Min, Max).
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Scale multiplies both bounds by k.
func (r Range) Scale(k float64) Range { return Range{r.Min * k, r.Max * k} }

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

func (r *Range) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := n.Decode(&v); err != nil {
			return err
		}
		*r = Fixed(v)
		return nil
	case yaml.SequenceNode:
		var vs []float64
		if err := n.Decode(&vs); err != nil {
			return err
		}
		switch len(vs) {
		case 1:
			*r = Fixed(vs[0])
		case 2:
			*r = Range{vs[0], vs[1]}
		default:
			return fmt.Errorf("range: want 1 or 2 values, got %d", len(vs))
		}
		return nil
	}
	return fmt.Errorf("range: unsupported yaml node at line %d", n.Line)
}

func (r Range) MarshalYAML() (any, error) {
	if r.Min == r.Max {
		return r.Min, nil
	}
	return []float64{r.Min, r.Max}, nil
}
