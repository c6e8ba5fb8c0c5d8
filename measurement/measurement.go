// Package measurement describes what a set of circuits measures and how the
// registers they return are reduced to named expectation values.
//
// There are four kinds of measurement. BasisRotation, CheatedBasisRotation
// and Cheated evaluate to expectation values; ClassicalRegister returns the
// registers unevaluated.
package measurement

import (
	"github.com/go-faster/errors"
	"github.com/mohae/deepcopy"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.uber.org/multierr"
)

// Measurement is implemented by *BasisRotation, *CheatedBasisRotation,
// *Cheated and *ClassicalRegister only.
type Measurement interface {
	Kind() Kind
	// Constant returns the circuit run ahead of every circuit, or nil.
	Constant() *circuit.Circuit
	CircuitList() []circuit.Circuit
	// SubstituteParameters returns a copy with every symbolic gate parameter
	// resolvable from params replaced by its value.
	SubstituteParameters(params map[string]float64) (Measurement, error)
	Validate() error

	isMeasurement()
}

// Evaluator is a Measurement that reduces registers to expectation values.
type Evaluator interface {
	Measurement
	Evaluate(regs register.Registers) (map[string]float64, error)
}

var (
	_ Evaluator   = (*BasisRotation)(nil)
	_ Evaluator   = (*CheatedBasisRotation)(nil)
	_ Evaluator   = (*Cheated)(nil)
	_ Measurement = (*ClassicalRegister)(nil)
)

// Evaluate reduces regs to the expectation values declared by m.
// ClassicalRegister measurements have none and are rejected.
func Evaluate(m Measurement, regs register.Registers) (map[string]float64, error) {
	switch v := m.(type) {
	case *BasisRotation:
		return v.Evaluate(regs)
	case *CheatedBasisRotation:
		return v.Evaluate(regs)
	case *Cheated:
		return v.Evaluate(regs)
	case *ClassicalRegister:
		return nil, core.NewKindError(core.ErrWrongExecutionEntryPoint,
			"ClassicalRegister measurements return registers, not expectation values")
	default:
		return nil, core.NewKindError(core.ErrUnknownMeasurementKind, "%T", m)
	}
}

// ExecutionCircuits returns the circuits a backend has to run for m, each
// prefixed by the constant circuit when there is one.
func ExecutionCircuits(m Measurement) []circuit.Circuit {
	constant := m.Constant()
	circuits := m.CircuitList()
	out := make([]circuit.Circuit, len(circuits))
	for i, c := range circuits {
		if constant != nil {
			out[i] = constant.Concat(c)
		} else {
			out[i] = c.Clone()
		}
	}
	return out
}

// IsParametrized reports whether any circuit of m still has symbolic
// parameters.
func IsParametrized(m Measurement) bool {
	if c := m.Constant(); c != nil && c.IsParametrized() {
		return true
	}
	for _, c := range m.CircuitList() {
		if c.IsParametrized() {
			return true
		}
	}
	return false
}

func substituteCircuits(constant *circuit.Circuit, circuits []circuit.Circuit,
	params map[string]float64) (*circuit.Circuit, []circuit.Circuit, error) {
	var outConstant *circuit.Circuit
	if constant != nil {
		c, err := constant.SubstituteParameters(params)
		if err != nil {
			return nil, nil, errors.Wrap(err, "constant circuit")
		}
		outConstant = &c
	}
	var outCircuits []circuit.Circuit
	if circuits != nil {
		outCircuits = make([]circuit.Circuit, len(circuits))
	}
	for i, c := range circuits {
		s, err := c.SubstituteParameters(params)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "circuit %d", i)
		}
		outCircuits[i] = s
	}
	return outConstant, outCircuits, nil
}

// validateCircuits checks the constant circuit and every circuit of a
// measurement.
func validateCircuits(constant *circuit.Circuit, circuits []circuit.Circuit) error {
	var errs error
	if constant != nil {
		if err := constant.Validate(); err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "constant circuit"))
		}
	}
	for i, c := range circuits {
		if err := c.Validate(); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "circuit %d", i))
		}
	}
	return errs
}

func clone[T any](v *T) *T {
	return deepcopy.Copy(v).(*T)
}
