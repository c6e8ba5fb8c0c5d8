// Package circuit is the minimal circuit model the measurement engine passes
// to execution backends: ordered operations, register definitions and gate
// parameters that may still be symbolic.
package circuit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/mohae/deepcopy"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"go.uber.org/multierr"
)

const (
	DefinitionBit             = "DefinitionBit"
	DefinitionFloat           = "DefinitionFloat"
	DefinitionComplex         = "DefinitionComplex"
	MeasureQubit              = "MeasureQubit"
	PragmaRepeatedMeasurement = "PragmaRepeatedMeasurement"
	PragmaGetStateVector      = "PragmaGetStateVector"
	PragmaGetDensityMatrix    = "PragmaGetDensityMatrix"
)

// Operation is one step of a circuit. Which fields are meaningful depends on
// Name: gates use Qubits and Params, definitions use Readout, Length and
// IsOutput, measurements use Qubits, Readout and ReadoutIndex.
type Operation struct {
	Name         string            `json:"name" msgpack:"name"`
	Qubits       []int             `json:"qubits" msgpack:"qubits"`
	Params       []CalculatorFloat `json:"params" msgpack:"params"`
	Readout      string            `json:"readout" msgpack:"readout"`
	ReadoutIndex int               `json:"readout_index" msgpack:"readout_index"`
	Length       int               `json:"length" msgpack:"length"`
	IsOutput     bool              `json:"is_output" msgpack:"is_output"`
}

func (o Operation) IsDefinition() bool {
	return strings.HasPrefix(o.Name, "Definition")
}

func (o Operation) IsParametrized() bool {
	for _, p := range o.Params {
		if !p.IsFloat() {
			return true
		}
	}
	return false
}

func (o Operation) String() string {
	var b strings.Builder
	b.WriteString(o.Name)
	if len(o.Params) > 0 {
		params := make([]string, len(o.Params))
		for i, p := range o.Params {
			params[i] = p.String()
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(params, ", "))
	}
	if len(o.Qubits) > 0 {
		fmt.Fprintf(&b, " %v", o.Qubits)
	}
	if o.Readout != "" {
		fmt.Fprintf(&b, " -> %s", o.Readout)
	}
	return b.String()
}

func NewGate(name string, qubits []int, params ...CalculatorFloat) Operation {
	return Operation{Name: name, Qubits: qubits, Params: params}
}

func NewDefinitionBit(name string, length int, isOutput bool) Operation {
	return Operation{Name: DefinitionBit, Readout: name, Length: length, IsOutput: isOutput}
}

func NewDefinitionFloat(name string, length int, isOutput bool) Operation {
	return Operation{Name: DefinitionFloat, Readout: name, Length: length, IsOutput: isOutput}
}

func NewDefinitionComplex(name string, length int, isOutput bool) Operation {
	return Operation{Name: DefinitionComplex, Readout: name, Length: length, IsOutput: isOutput}
}

func NewMeasureQubit(qubit int, readout string, readoutIndex int) Operation {
	return Operation{Name: MeasureQubit, Qubits: []int{qubit}, Readout: readout, ReadoutIndex: readoutIndex}
}

// NewPragmaRepeatedMeasurement measures every qubit into readout,
// numberMeasurements times.
func NewPragmaRepeatedMeasurement(readout string, numberMeasurements int) Operation {
	return Operation{Name: PragmaRepeatedMeasurement, Readout: readout, Length: numberMeasurements}
}

func NewPragmaGetStateVector(readout string) Operation {
	return Operation{Name: PragmaGetStateVector, Readout: readout}
}

func NewPragmaGetDensityMatrix(readout string) Operation {
	return Operation{Name: PragmaGetDensityMatrix, Readout: readout}
}

type Circuit struct {
	Definitions []Operation `json:"definitions" msgpack:"definitions"`
	Operations  []Operation `json:"operations" msgpack:"operations"`
}

func New(ops ...Operation) Circuit {
	c := Circuit{}
	for _, op := range ops {
		c.Add(op)
	}
	return c
}

// Add appends op, routing definitions ahead of the other operations.
func (c *Circuit) Add(op Operation) {
	if op.IsDefinition() {
		c.Definitions = append(c.Definitions, op)
		return
	}
	c.Operations = append(c.Operations, op)
}

func (c Circuit) Len() int {
	return len(c.Definitions) + len(c.Operations)
}

func (c Circuit) Clone() Circuit {
	return deepcopy.Copy(c).(Circuit)
}

// Concat returns c followed by other, without touching either.
func (c Circuit) Concat(other Circuit) Circuit {
	out := c.Clone()
	o := other.Clone()
	out.Definitions = append(out.Definitions, o.Definitions...)
	out.Operations = append(out.Operations, o.Operations...)
	return out
}

func (c Circuit) IsParametrized() bool {
	for _, op := range c.Operations {
		if op.IsParametrized() {
			return true
		}
	}
	return false
}

// FreeParameters returns the sorted names of every unresolved variable.
func (c Circuit) FreeParameters() ([]string, error) {
	seen := map[string]struct{}{}
	for _, op := range c.Operations {
		for _, p := range op.Params {
			vars, err := p.FreeParameters()
			if err != nil {
				return nil, err
			}
			for _, v := range vars {
				seen[v] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// SubstituteParameters returns a copy of c with every symbolic parameter
// whose variables are all bound by params replaced by its value. Parameters
// using unbound variables stay symbolic; the backend rejects them when it
// is asked to execute the circuit.
func (c Circuit) SubstituteParameters(params map[string]float64) (Circuit, error) {
	out := c.Clone()
	for i, op := range out.Operations {
		for j, p := range op.Params {
			s, err := p.Substitute(params)
			if err != nil {
				return Circuit{}, errors.Wrapf(err, "operation %d (%s)", i, op.Name)
			}
			out.Operations[i].Params[j] = s
		}
	}
	return out, nil
}

// Validate rejects negative register lengths, qubit indices and readout
// indices, and operations filed in the wrong list.
func (c Circuit) Validate() error {
	var errs error
	for i, d := range c.Definitions {
		if !d.IsDefinition() {
			errs = multierr.Append(errs, errors.Errorf("definition %d is a %s operation", i, d.Name))
		}
		if d.Length < 0 {
			errs = multierr.Append(errs, core.NewKindError(core.ErrRegisterShape,
				"register %s has negative length %d", d.Readout, d.Length))
		}
	}
	for i, op := range c.Operations {
		if op.IsDefinition() {
			errs = multierr.Append(errs, errors.Errorf("operation %d is a definition of %s", i, op.Readout))
		}
		for _, q := range op.Qubits {
			if q < 0 {
				errs = multierr.Append(errs, core.NewKindError(core.ErrQubitIndexOutOfRange,
					"operation %d (%s) uses qubit %d", i, op.Name, q))
			}
		}
		if op.ReadoutIndex < 0 {
			errs = multierr.Append(errs, core.NewKindError(core.ErrQubitIndexOutOfRange,
				"operation %d (%s) writes readout index %d", i, op.Name, op.ReadoutIndex))
		}
		if op.Name == PragmaRepeatedMeasurement && op.Length < 0 {
			errs = multierr.Append(errs, core.NewKindError(core.ErrRegisterShape,
				"operation %d repeats %d times", i, op.Length))
		}
	}
	return errs
}

// Readouts returns the register definitions keyed by register name.
func (c Circuit) Readouts() map[string]Operation {
	out := make(map[string]Operation, len(c.Definitions))
	for _, d := range c.Definitions {
		out[d.Readout] = d
	}
	return out
}
