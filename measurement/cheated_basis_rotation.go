package measurement

import (
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.uber.org/multierr"
)

// CheatedBasisRotationInput declares Pauli products whose expectation values
// a simulator writes directly into float registers, one register per
// product.
type CheatedBasisRotationInput struct {
	// PauliProductKeys maps a float readout register to its product index.
	PauliProductKeys map[string]int    `json:"pauli_product_keys" msgpack:"pauli_product_keys"`
	MeasuredExpVals  map[string]ExpVal `json:"measured_exp_vals" msgpack:"measured_exp_vals"`
}

func NewCheatedBasisRotationInput() CheatedBasisRotationInput {
	return CheatedBasisRotationInput{
		PauliProductKeys: map[string]int{},
		MeasuredExpVals:  map[string]ExpVal{},
	}
}

func (in CheatedBasisRotationInput) NumberPauliProducts() int {
	return len(in.PauliProductKeys)
}

// AddPauliProduct declares the product read from the readout register and
// returns its index. Adding a readout twice returns the existing index.
func (in *CheatedBasisRotationInput) AddPauliProduct(readout string) int {
	if in.PauliProductKeys == nil {
		in.PauliProductKeys = map[string]int{}
	}
	if index, ok := in.PauliProductKeys[readout]; ok {
		return index
	}
	index := len(in.PauliProductKeys)
	in.PauliProductKeys[readout] = index
	return index
}

func (in *CheatedBasisRotationInput) AddLinearExpVal(name string, coefficients map[int]float64) error {
	return in.addExpVal(name, LinearExpVal(coefficients))
}

func (in *CheatedBasisRotationInput) AddSymbolicExpVal(name string, expression string) error {
	return in.addExpVal(name, SymbolicExpVal(expression))
}

func (in *CheatedBasisRotationInput) addExpVal(name string, e ExpVal) error {
	if in.MeasuredExpVals == nil {
		in.MeasuredExpVals = map[string]ExpVal{}
	}
	return addExpVal(in.MeasuredExpVals, name, e, in.NumberPauliProducts())
}

func (in CheatedBasisRotationInput) Validate() error {
	var errs error
	n := in.NumberPauliProducts()
	seen := make(map[int]string, n)
	for _, readout := range sortedNames(in.PauliProductKeys) {
		index := in.PauliProductKeys[readout]
		if other, ok := seen[index]; ok {
			errs = multierr.Append(errs, core.NewKindError(core.ErrDuplicateResultName,
				"Pauli product %d read from %s and %s", index, other, readout))
		}
		seen[index] = readout
		if index < 0 || index >= n {
			errs = multierr.Append(errs, core.NewKindError(core.ErrUndeclaredFormulaVariable,
				"Pauli product %d of %s, %d declared", index, readout, n))
		}
	}
	return multierr.Append(errs, checkExpVals(in.MeasuredExpVals, n))
}

// productValues averages slot 0 of each product's float register.
func (in CheatedBasisRotationInput) productValues(floats map[string]register.FloatOutputRegister) ([]float64, error) {
	if len(floats) == 0 {
		return nil, core.NewKindError(core.ErrUnknownRegisterName, "no float registers to evaluate")
	}
	products := make([]float64, in.NumberPauliProducts())
	for _, readout := range sortedNames(in.PauliProductKeys) {
		reg, ok := floats[readout]
		if !ok {
			return nil, core.NewKindError(core.ErrUnknownRegisterName, "float register %s", readout)
		}
		if len(reg) == 0 {
			return nil, core.NewKindError(core.ErrEmptyRegister, "float register %s", readout)
		}
		sum := 0.0
		for shot, row := range reg {
			if len(row) == 0 {
				return nil, core.NewKindError(core.ErrRegisterShape,
					"float register %s has no slot in shot %d", readout, shot)
			}
			sum += row[0]
		}
		products[in.PauliProductKeys[readout]] = sum / float64(len(reg))
	}
	return products, nil
}

// CheatedBasisRotation is a BasisRotation whose products are read from a
// simulator instead of being estimated from measured bits.
type CheatedBasisRotation struct {
	ConstantCircuit *circuit.Circuit          `json:"constant_circuit" msgpack:"constant_circuit"`
	Circuits        []circuit.Circuit         `json:"circuits" msgpack:"circuits"`
	Input           CheatedBasisRotationInput `json:"input" msgpack:"input"`
}

func NewCheatedBasisRotation(input CheatedBasisRotationInput, constant *circuit.Circuit, circuits []circuit.Circuit) *CheatedBasisRotation {
	return &CheatedBasisRotation{ConstantCircuit: constant, Circuits: circuits, Input: input}
}

func (m *CheatedBasisRotation) Kind() Kind                     { return KindCheatedBasisRotation }
func (m *CheatedBasisRotation) Constant() *circuit.Circuit     { return m.ConstantCircuit }
func (m *CheatedBasisRotation) CircuitList() []circuit.Circuit { return m.Circuits }
func (m *CheatedBasisRotation) isMeasurement()                 {}

func (m *CheatedBasisRotation) Validate() error {
	return multierr.Combine(m.Input.Validate(), validateCircuits(m.ConstantCircuit, m.Circuits))
}

func (m *CheatedBasisRotation) SubstituteParameters(params map[string]float64) (Measurement, error) {
	constant, circuits, err := substituteCircuits(m.ConstantCircuit, m.Circuits, params)
	if err != nil {
		return nil, err
	}
	out := clone(m)
	out.ConstantCircuit = constant
	out.Circuits = circuits
	return out, nil
}

func (m *CheatedBasisRotation) Evaluate(regs register.Registers) (map[string]float64, error) {
	products, err := m.Input.productValues(regs.Float)
	if err != nil {
		return nil, err
	}
	return combine(products, m.Input.MeasuredExpVals)
}
