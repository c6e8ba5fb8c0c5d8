package backend

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/measurement"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.uber.org/zap"
)

const DummyExecutorName = "dummy"

type DummySetting struct {
	Shots int `toml:"shots"`
}

func NewDummySetting() DummySetting {
	return DummySetting{Shots: 100}
}

// DummyExecutor pretends every circuit leaves all qubits in |0...0>. Bit
// registers are all false, float registers zero and complex registers hold
// the |0...0> state vector or density matrix.
type DummyExecutor struct {
	Shots int
}

// NewDummyExecutor reads [com.dummy] from the parsed setting file.
func NewDummyExecutor() (*DummyExecutor, error) {
	s := NewDummySetting()
	if _, err := core.DecodeComponentSetting(DummyExecutorName, &s); err != nil {
		return nil, err
	}
	if s.Shots <= 0 {
		return nil, errors.Errorf("shots must be positive, got %d", s.Shots)
	}
	zap.L().Debug(fmt.Sprintf("[Dummy] %d shots per circuit", s.Shots))
	return &DummyExecutor{Shots: s.Shots}, nil
}

func (d *DummyExecutor) Name() string {
	return DummyExecutorName
}

func (d *DummyExecutor) RunCircuit(ctx context.Context, c circuit.Circuit) (register.Registers, error) {
	if c.IsParametrized() {
		free, err := c.FreeParameters()
		if err != nil {
			return register.Registers{}, err
		}
		return register.Registers{}, core.NewKindError(core.ErrExecution,
			"circuit has unresolved parameters %v", free)
	}
	if err := c.Validate(); err != nil {
		return register.Registers{}, core.WrapKind(core.ErrExecution, err, "invalid circuit")
	}
	shots := map[string]int{}
	states := map[string]int{}
	qubits := numberQubits(c)
	for _, op := range c.Operations {
		switch op.Name {
		case circuit.PragmaRepeatedMeasurement:
			if op.Length > 0 {
				shots[op.Readout] = op.Length
			}
		case circuit.PragmaGetStateVector, circuit.PragmaGetDensityMatrix:
			if qubits > measurement.MaxCheatedQubits {
				return register.Registers{}, core.NewKindError(core.ErrExecution,
					"%s on %d qubits exceeds the limit of %d", op.Name, qubits, measurement.MaxCheatedQubits)
			}
			if op.Name == circuit.PragmaGetStateVector {
				states[op.Readout] = 1 << uint(qubits)
			} else {
				states[op.Readout] = 1 << uint(2*qubits)
			}
		}
	}

	regs := register.NewRegisters()
	for _, def := range c.Definitions {
		if !def.IsOutput {
			continue
		}
		switch def.Name {
		case circuit.DefinitionBit:
			n := d.Shots
			if s, ok := shots[def.Readout]; ok {
				n = s
			}
			rows := make(register.BitOutputRegister, n)
			for i := range rows {
				rows[i] = make([]bool, def.Length)
			}
			regs.Bit[def.Readout] = rows
		case circuit.DefinitionFloat:
			regs.Float[def.Readout] = register.FloatOutputRegister{make([]float64, def.Length)}
		case circuit.DefinitionComplex:
			length := def.Length
			if length == 0 {
				length = states[def.Readout]
			}
			row := make([]complex128, length)
			if length > 0 {
				row[0] = 1
			}
			regs.Complex[def.Readout] = register.ComplexOutputRegister{row}
		}
	}
	return regs, nil
}

// numberQubits is one more than the highest qubit index used, at least 1.
func numberQubits(c circuit.Circuit) int {
	n := 1
	for _, op := range c.Operations {
		for _, q := range op.Qubits {
			if q+1 > n {
				n = q + 1
			}
		}
	}
	return n
}
