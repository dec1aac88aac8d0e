package library

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Param is a scalar or vector parameter value.
// In YAML it may be written as a single number or as a sequence.
type Param []float64

// Params maps parameter names to values.
type Params map[string]Param

// UnmarshalYAML accepts either a scalar or a sequence of numbers.
func (p *Param) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var f float64
		if err := value.Decode(&f); err != nil {
			return fmt.Errorf("line %d: parameter: %w", value.Line, err)
		}
		*p = Param{f}
		return nil
	case yaml.SequenceNode:
		var fs []float64
		if err := value.Decode(&fs); err != nil {
			return fmt.Errorf("line %d: parameter: %w", value.Line, err)
		}
		*p = fs
		return nil
	}
	return fmt.Errorf("line %d: parameter must be a number or a list of numbers", value.Line)
}

// Clone returns a deep copy of ps.
func (ps Params) Clone() Params {
	if ps == nil {
		return nil
	}
	out := make(Params, len(ps))
	for k, v := range ps {
		out[k] = append(Param(nil), v...)
	}
	return out
}
