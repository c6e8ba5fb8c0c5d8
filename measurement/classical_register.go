package measurement

import (
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
)

// ClassicalRegister runs its circuits and hands back the raw registers.
type ClassicalRegister struct {
	ConstantCircuit *circuit.Circuit  `json:"constant_circuit" msgpack:"constant_circuit"`
	Circuits        []circuit.Circuit `json:"circuits" msgpack:"circuits"`
}

func NewClassicalRegister(constant *circuit.Circuit, circuits []circuit.Circuit) *ClassicalRegister {
	return &ClassicalRegister{ConstantCircuit: constant, Circuits: circuits}
}

func (m *ClassicalRegister) Kind() Kind                     { return KindClassicalRegister }
func (m *ClassicalRegister) Constant() *circuit.Circuit     { return m.ConstantCircuit }
func (m *ClassicalRegister) CircuitList() []circuit.Circuit { return m.Circuits }
func (m *ClassicalRegister) isMeasurement()                 {}

func (m *ClassicalRegister) Validate() error {
	return validateCircuits(m.ConstantCircuit, m.Circuits)
}

func (m *ClassicalRegister) SubstituteParameters(params map[string]float64) (Measurement, error) {
	constant, circuits, err := substituteCircuits(m.ConstantCircuit, m.Circuits, params)
	if err != nil {
		return nil, err
	}
	return &ClassicalRegister{ConstantCircuit: constant, Circuits: circuits}, nil
}
