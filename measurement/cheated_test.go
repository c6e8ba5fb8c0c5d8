//go:build unit
// +build unit

package measurement

import (
	"math"
	"testing"

	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pauliZ = []OperatorEntry{{Row: 0, Col: 0, Re: 1}, {Row: 1, Col: 1, Re: -1}}
	pauliX = []OperatorEntry{{Row: 0, Col: 1, Re: 1}, {Row: 1, Col: 0, Re: 1}}
	pauliY = []OperatorEntry{{Row: 0, Col: 1, Im: -1}, {Row: 1, Col: 0, Im: 1}}
)

func singleQubitCheated(t *testing.T) *Cheated {
	t.Helper()
	in := NewCheatedInput(1)
	require.NoError(t, in.AddOperatorExpVal("z", pauliZ, "state"))
	require.NoError(t, in.AddOperatorExpVal("x", pauliX, "state"))
	require.NoError(t, in.AddOperatorExpVal("y", pauliY, "state"))
	return NewCheated(in, nil, []circuit.Circuit{circuit.New(circuit.NewPragmaGetStateVector("state"))})
}

func TestCheatedEvaluate(t *testing.T) {
	s := 1 / math.Sqrt2
	tests := []struct {
		name     string
		state    []complex128
		expected map[string]float64
	}{
		{
			name:     "state vector zero",
			state:    []complex128{1, 0},
			expected: map[string]float64{"z": 1, "x": 0, "y": 0},
		},
		{
			name:     "state vector plus",
			state:    []complex128{complex(s, 0), complex(s, 0)},
			expected: map[string]float64{"z": 0, "x": 1, "y": 0},
		},
		{
			name:     "state vector plus i",
			state:    []complex128{complex(s, 0), complex(0, s)},
			expected: map[string]float64{"z": 0, "x": 0, "y": 1},
		},
		{
			name:     "density matrix one",
			state:    []complex128{0, 0, 0, 1},
			expected: map[string]float64{"z": -1, "x": 0, "y": 0},
		},
		{
			name:     "density matrix plus i",
			state:    []complex128{0.5, complex(0, -0.5), complex(0, 0.5), 0.5},
			expected: map[string]float64{"z": 0, "x": 0, "y": 1},
		},
		{
			name:     "mixed density matrix",
			state:    []complex128{0.75, 0, 0, 0.25},
			expected: map[string]float64{"z": 0.5, "x": 0, "y": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regs := register.NewRegisters()
			regs.Complex["state"] = register.ComplexOutputRegister{tt.state}
			got, err := singleQubitCheated(t).Evaluate(regs)
			require.NoError(t, err)
			require.Len(t, got, len(tt.expected))
			for name, want := range tt.expected {
				assert.InDelta(t, want, got[name], 1e-12, name)
			}
		})
	}
}

func TestCheatedEvaluateErrors(t *testing.T) {
	tests := []struct {
		name    string
		complex map[string]register.ComplexOutputRegister
		wantErr error
	}{
		{
			name:    "no registers",
			complex: map[string]register.ComplexOutputRegister{},
			wantErr: core.ErrUnknownRegisterName,
		},
		{
			name:    "missing readout",
			complex: map[string]register.ComplexOutputRegister{"other": {{1, 0}}},
			wantErr: core.ErrUnknownRegisterName,
		},
		{
			name:    "empty register",
			complex: map[string]register.ComplexOutputRegister{"state": {}},
			wantErr: core.ErrEmptyRegister,
		},
		{
			name:    "wrong length",
			complex: map[string]register.ComplexOutputRegister{"state": {{1, 0, 0}}},
			wantErr: core.ErrRegisterShape,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := singleQubitCheated(t).Evaluate(register.Registers{Complex: tt.complex})
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestCheatedNonHermitianOperator(t *testing.T) {
	in := NewCheatedInput(1)
	require.NoError(t, in.AddOperatorExpVal("raising", []OperatorEntry{{Row: 0, Col: 1, Re: 1}}, "state"))
	m := NewCheated(in, nil, nil)

	regs := register.NewRegisters()
	regs.Complex["state"] = register.ComplexOutputRegister{{complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2)}}
	_, err := m.Evaluate(regs)
	assert.True(t, errors.Is(err, core.ErrNonRealFormulaResult), "got %v", err)
}

func TestAddOperatorExpValErrors(t *testing.T) {
	in := NewCheatedInput(1)
	require.NoError(t, in.AddOperatorExpVal("z", pauliZ, "state"))

	err := in.AddOperatorExpVal("z", pauliX, "state")
	assert.True(t, errors.Is(err, core.ErrDuplicateResultName), "got %v", err)

	err = in.AddOperatorExpVal("big", []OperatorEntry{{Row: 2, Col: 0, Re: 1}}, "state")
	assert.True(t, errors.Is(err, core.ErrQubitIndexOutOfRange), "got %v", err)

	huge := NewCheatedInput(MaxCheatedQubits + 1)
	err = huge.AddOperatorExpVal("z", pauliZ, "state")
	assert.True(t, errors.Is(err, core.ErrQubitIndexOutOfRange), "got %v", err)

	assert.Len(t, in.MeasuredOperators, 1)
	assert.NoError(t, in.Validate())
}
