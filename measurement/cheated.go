package measurement

import (
	"math"
	"math/cmplx"

	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.uber.org/multierr"
)

const (
	// MaxCheatedQubits bounds the operator dimension 2^n of a Cheated input.
	MaxCheatedQubits   = 30
	imaginaryTolerance = 1e-10
)

// OperatorEntry is one non-zero entry of a sparse operator.
type OperatorEntry struct {
	Row int     `json:"row" msgpack:"row"`
	Col int     `json:"col" msgpack:"col"`
	Re  float64 `json:"re" msgpack:"re"`
	Im  float64 `json:"im" msgpack:"im"`
}

func (e OperatorEntry) Value() complex128 {
	return complex(e.Re, e.Im)
}

// OperatorExpVal is a sparse operator whose expectation value is taken on
// the state written to a complex readout register.
type OperatorExpVal struct {
	Operator []OperatorEntry `json:"operator" msgpack:"operator"`
	Readout  string          `json:"readout" msgpack:"readout"`
}

// CheatedInput declares operators evaluated directly on state vectors or
// density matrices returned by a simulator.
type CheatedInput struct {
	MeasuredOperators map[string]OperatorExpVal `json:"measured_operators" msgpack:"measured_operators"`
	NumberQubits      int                       `json:"number_qubits" msgpack:"number_qubits"`
}

func NewCheatedInput(numberQubits int) CheatedInput {
	return CheatedInput{
		MeasuredOperators: map[string]OperatorExpVal{},
		NumberQubits:      numberQubits,
	}
}

func (in CheatedInput) dimension() int {
	return 1 << uint(in.NumberQubits)
}

// AddOperatorExpVal declares name as the expectation value of operator on
// the state in the readout register.
func (in *CheatedInput) AddOperatorExpVal(name string, operator []OperatorEntry, readout string) error {
	if in.MeasuredOperators == nil {
		in.MeasuredOperators = map[string]OperatorExpVal{}
	}
	if _, ok := in.MeasuredOperators[name]; ok {
		return core.NewKindError(core.ErrDuplicateResultName, "%s", name)
	}
	e := OperatorExpVal{Operator: append([]OperatorEntry{}, operator...), Readout: readout}
	if err := in.checkOperator(name, e); err != nil {
		return err
	}
	in.MeasuredOperators[name] = e
	return nil
}

func (in CheatedInput) checkQubits() error {
	if in.NumberQubits < 0 || in.NumberQubits > MaxCheatedQubits {
		return core.NewKindError(core.ErrQubitIndexOutOfRange,
			"%d qubits, supported are 0 to %d", in.NumberQubits, MaxCheatedQubits)
	}
	return nil
}

func (in CheatedInput) checkOperator(name string, e OperatorExpVal) error {
	if err := in.checkQubits(); err != nil {
		return err
	}
	dim := in.dimension()
	for _, entry := range e.Operator {
		if entry.Row < 0 || entry.Row >= dim || entry.Col < 0 || entry.Col >= dim {
			return core.NewKindError(core.ErrQubitIndexOutOfRange,
				"entry (%d, %d) of %s, operator dimension is %d", entry.Row, entry.Col, name, dim)
		}
	}
	return nil
}

func (in CheatedInput) Validate() error {
	if err := in.checkQubits(); err != nil {
		return err
	}
	var errs error
	for _, name := range sortedNames(in.MeasuredOperators) {
		errs = multierr.Append(errs, in.checkOperator(name, in.MeasuredOperators[name]))
	}
	return errs
}

// expectation evaluates op on the first row of reg. A row of length 2^n is
// a state vector, a row of length 4^n a row-major density matrix.
func (in CheatedInput) expectation(name string, op OperatorExpVal, reg register.ComplexOutputRegister) (float64, error) {
	if len(reg) == 0 {
		return 0, core.NewKindError(core.ErrEmptyRegister, "complex register %s", op.Readout)
	}
	state := reg[0]
	dim := in.dimension()
	var v complex128
	switch len(state) {
	case dim:
		for _, e := range op.Operator {
			v += cmplx.Conj(state[e.Row]) * e.Value() * state[e.Col]
		}
	case dim * dim:
		for _, e := range op.Operator {
			v += e.Value() * state[e.Col*dim+e.Row]
		}
	default:
		return 0, core.NewKindError(core.ErrRegisterShape,
			"complex register %s has %d entries, want %d or %d", op.Readout, len(state), dim, dim*dim)
	}
	if math.Abs(imag(v)) > imaginaryTolerance {
		return 0, core.NewKindError(core.ErrNonRealFormulaResult,
			"%s has imaginary part %g", name, imag(v))
	}
	return real(v), nil
}

// Cheated measures operator expectation values on simulator states.
type Cheated struct {
	ConstantCircuit *circuit.Circuit  `json:"constant_circuit" msgpack:"constant_circuit"`
	Circuits        []circuit.Circuit `json:"circuits" msgpack:"circuits"`
	Input           CheatedInput      `json:"input" msgpack:"input"`
}

func NewCheated(input CheatedInput, constant *circuit.Circuit, circuits []circuit.Circuit) *Cheated {
	return &Cheated{ConstantCircuit: constant, Circuits: circuits, Input: input}
}

func (m *Cheated) Kind() Kind                     { return KindCheated }
func (m *Cheated) Constant() *circuit.Circuit     { return m.ConstantCircuit }
func (m *Cheated) CircuitList() []circuit.Circuit { return m.Circuits }
func (m *Cheated) isMeasurement()                 {}

func (m *Cheated) Validate() error {
	return multierr.Combine(m.Input.Validate(), validateCircuits(m.ConstantCircuit, m.Circuits))
}

func (m *Cheated) SubstituteParameters(params map[string]float64) (Measurement, error) {
	constant, circuits, err := substituteCircuits(m.ConstantCircuit, m.Circuits, params)
	if err != nil {
		return nil, err
	}
	out := clone(m)
	out.ConstantCircuit = constant
	out.Circuits = circuits
	return out, nil
}

func (m *Cheated) Evaluate(regs register.Registers) (map[string]float64, error) {
	if len(regs.Complex) == 0 {
		return nil, core.NewKindError(core.ErrUnknownRegisterName, "no complex registers to evaluate")
	}
	if err := m.Input.checkQubits(); err != nil {
		return nil, err
	}
	names := sortedNames(m.Input.MeasuredOperators)
	out := make(map[string]float64, len(names))
	for _, name := range names {
		op := m.Input.MeasuredOperators[name]
		reg, ok := regs.Complex[op.Readout]
		if !ok {
			return nil, core.NewKindError(core.ErrUnknownRegisterName, "complex register %s", op.Readout)
		}
		v, err := m.Input.expectation(name, op, reg)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
