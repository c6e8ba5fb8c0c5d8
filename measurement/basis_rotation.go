package measurement

import (
	"sort"

	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.uber.org/multierr"
)

// BasisRotationInput declares the Pauli products measured by a
// BasisRotation and the expectation values combined from them.
type BasisRotationInput struct {
	// PauliProductQubitMasks maps a readout register to the products read
	// from it, each given as product index to qubit indices.
	PauliProductQubitMasks map[string]map[int][]int `json:"pauli_product_qubit_masks" msgpack:"pauli_product_qubit_masks"`
	NumberQubits           int                      `json:"number_qubits" msgpack:"number_qubits"`
	NumberPauliProducts    int                      `json:"number_pauli_products" msgpack:"number_pauli_products"`
	MeasuredExpVals        map[string]ExpVal        `json:"measured_exp_vals" msgpack:"measured_exp_vals"`
	UseFlippedMeasurement  bool                     `json:"use_flipped_measurement" msgpack:"use_flipped_measurement"`
}

func NewBasisRotationInput(numberQubits int, useFlippedMeasurement bool) BasisRotationInput {
	return BasisRotationInput{
		PauliProductQubitMasks: map[string]map[int][]int{},
		NumberQubits:           numberQubits,
		MeasuredExpVals:        map[string]ExpVal{},
		UseFlippedMeasurement:  useFlippedMeasurement,
	}
}

// AddPauliProduct declares the product of the given qubits, read from the
// readout register, and returns its index. An empty qubit list is the
// identity.
func (in *BasisRotationInput) AddPauliProduct(readout string, qubits []int) (int, error) {
	for _, q := range qubits {
		if q < 0 || q >= in.NumberQubits {
			return 0, core.NewKindError(core.ErrQubitIndexOutOfRange,
				"qubit %d, input has %d qubits", q, in.NumberQubits)
		}
	}
	if in.PauliProductQubitMasks == nil {
		in.PauliProductQubitMasks = map[string]map[int][]int{}
	}
	masks, ok := in.PauliProductQubitMasks[readout]
	if !ok {
		masks = map[int][]int{}
		in.PauliProductQubitMasks[readout] = masks
	}
	index := in.NumberPauliProducts
	masks[index] = append([]int{}, qubits...)
	in.NumberPauliProducts++
	return index, nil
}

// AddLinearExpVal declares name as the weighted sum of the products in
// coefficients, keyed by product index.
func (in *BasisRotationInput) AddLinearExpVal(name string, coefficients map[int]float64) error {
	return in.addExpVal(name, LinearExpVal(coefficients))
}

// AddSymbolicExpVal declares name as a formula over pauli_product_<i>.
func (in *BasisRotationInput) AddSymbolicExpVal(name string, expression string) error {
	return in.addExpVal(name, SymbolicExpVal(expression))
}

func (in *BasisRotationInput) addExpVal(name string, e ExpVal) error {
	if in.MeasuredExpVals == nil {
		in.MeasuredExpVals = map[string]ExpVal{}
	}
	return addExpVal(in.MeasuredExpVals, name, e, in.NumberPauliProducts)
}

// Validate reports every broken invariant of the input.
func (in BasisRotationInput) Validate() error {
	var errs error
	if in.NumberQubits < 0 {
		errs = multierr.Append(errs, core.NewKindError(core.ErrQubitIndexOutOfRange,
			"negative number of qubits %d", in.NumberQubits))
	}
	seen := make(map[int]string, in.NumberPauliProducts)
	for _, readout := range sortedNames(in.PauliProductQubitMasks) {
		masks := in.PauliProductQubitMasks[readout]
		for _, index := range sortedMaskIndices(masks) {
			if other, ok := seen[index]; ok {
				errs = multierr.Append(errs, core.NewKindError(core.ErrDuplicateResultName,
					"Pauli product %d declared for %s and %s", index, other, readout))
			}
			seen[index] = readout
			if index < 0 || index >= in.NumberPauliProducts {
				errs = multierr.Append(errs, core.NewKindError(core.ErrUndeclaredFormulaVariable,
					"Pauli product %d of %s, %d declared", index, readout, in.NumberPauliProducts))
			}
			for _, q := range masks[index] {
				if q < 0 || q >= in.NumberQubits {
					errs = multierr.Append(errs, core.NewKindError(core.ErrQubitIndexOutOfRange,
						"qubit %d of Pauli product %d, input has %d qubits", q, index, in.NumberQubits))
				}
			}
		}
	}
	if len(seen) != in.NumberPauliProducts {
		errs = multierr.Append(errs, core.NewKindError(core.ErrUndeclaredFormulaVariable,
			"%d Pauli products declared, %d have a mask", in.NumberPauliProducts, len(seen)))
	}
	return multierr.Append(errs, checkExpVals(in.MeasuredExpVals, in.NumberPauliProducts))
}

// productValues measures every declared product on the bit registers.
func (in BasisRotationInput) productValues(bits map[string]register.BitOutputRegister) ([]float64, error) {
	if len(bits) == 0 {
		return nil, core.NewKindError(core.ErrUnknownRegisterName, "no bit registers to evaluate")
	}
	products := make([]float64, in.NumberPauliProducts)
	for _, readout := range sortedNames(in.PauliProductQubitMasks) {
		reg, ok := bits[readout]
		if !ok {
			return nil, core.NewKindError(core.ErrUnknownRegisterName, "bit register %s", readout)
		}
		masks := in.PauliProductQubitMasks[readout]
		for _, index := range sortedMaskIndices(masks) {
			if index < 0 || index >= len(products) {
				return nil, core.NewKindError(core.ErrUndeclaredFormulaVariable,
					"Pauli product %d of %s, %d declared", index, readout, len(products))
			}
			v, err := PauliProductExpectation(reg, masks[index], in.UseFlippedMeasurement)
			if err != nil {
				return nil, errors.Wrapf(err, "bit register %s", readout)
			}
			products[index] = v
		}
	}
	return products, nil
}

// BasisRotation measures Pauli products by rotating qubits into the Z basis
// and averaging the parity of the measured bits.
type BasisRotation struct {
	ConstantCircuit *circuit.Circuit   `json:"constant_circuit" msgpack:"constant_circuit"`
	Circuits        []circuit.Circuit  `json:"circuits" msgpack:"circuits"`
	Input           BasisRotationInput `json:"input" msgpack:"input"`
}

func NewBasisRotation(input BasisRotationInput, constant *circuit.Circuit, circuits []circuit.Circuit) *BasisRotation {
	return &BasisRotation{ConstantCircuit: constant, Circuits: circuits, Input: input}
}

func (m *BasisRotation) Kind() Kind                     { return KindBasisRotation }
func (m *BasisRotation) Constant() *circuit.Circuit     { return m.ConstantCircuit }
func (m *BasisRotation) CircuitList() []circuit.Circuit { return m.Circuits }
func (m *BasisRotation) isMeasurement()                 {}

func (m *BasisRotation) Validate() error {
	return multierr.Combine(m.Input.Validate(), validateCircuits(m.ConstantCircuit, m.Circuits))
}

func (m *BasisRotation) SubstituteParameters(params map[string]float64) (Measurement, error) {
	constant, circuits, err := substituteCircuits(m.ConstantCircuit, m.Circuits, params)
	if err != nil {
		return nil, err
	}
	out := clone(m)
	out.ConstantCircuit = constant
	out.Circuits = circuits
	return out, nil
}

// Evaluate computes the declared expectation values from the bit registers.
func (m *BasisRotation) Evaluate(regs register.Registers) (map[string]float64, error) {
	products, err := m.Input.productValues(regs.Bit)
	if err != nil {
		return nil, err
	}
	return combine(products, m.Input.MeasuredExpVals)
}

func sortedMaskIndices(m map[int][]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
