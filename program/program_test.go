//go:build unit
// +build unit

package program

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/golang/mock/gomock"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/measurement"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parametrizedCircuits() (*circuit.Circuit, []circuit.Circuit) {
	constant := circuit.New(
		circuit.NewDefinitionBit("ro", 2, true),
		circuit.NewGate("RotateX", []int{0}, circuit.Symbol("theta")),
	)
	rotation := circuit.New(
		circuit.NewGate("RotateY", []int{1}, circuit.Symbol("phi / 2")),
		circuit.NewPragmaRepeatedMeasurement("ro", 10),
	)
	return &constant, []circuit.Circuit{rotation}
}

func basisRotation(t *testing.T) *measurement.BasisRotation {
	t.Helper()
	in := measurement.NewBasisRotationInput(2, false)
	_, err := in.AddPauliProduct("ro", []int{0})
	require.NoError(t, err)
	require.NoError(t, in.AddLinearExpVal("z0", map[int]float64{0: 1}))
	constant, circuits := parametrizedCircuits()
	return measurement.NewBasisRotation(in, constant, circuits)
}

func cheated(t *testing.T) *measurement.Cheated {
	t.Helper()
	in := measurement.NewCheatedInput(1)
	require.NoError(t, in.AddOperatorExpVal("z", []measurement.OperatorEntry{{Row: 0, Col: 0, Re: 1}, {Row: 1, Col: 1, Re: -1}}, "state"))
	constant, circuits := parametrizedCircuits()
	return measurement.NewCheated(in, constant, circuits)
}

func cheatedBasisRotation(t *testing.T) *measurement.CheatedBasisRotation {
	t.Helper()
	in := measurement.NewCheatedBasisRotationInput()
	in.AddPauliProduct("pp")
	require.NoError(t, in.AddSymbolicExpVal("e", "2 * pauli_product_0"))
	constant, circuits := parametrizedCircuits()
	return measurement.NewCheatedBasisRotation(in, constant, circuits)
}

func classicalRegister() *measurement.ClassicalRegister {
	constant, circuits := parametrizedCircuits()
	return measurement.NewClassicalRegister(constant, circuits)
}

func TestNew(t *testing.T) {
	names := []string{"theta", "phi"}
	p, err := New(classicalRegister(), names)
	require.NoError(t, err)
	names[0] = "changed"
	assert.Equal(t, []string{"theta", "phi"}, p.InputParameterNames)
	assert.Equal(t, measurement.KindClassicalRegister, p.Kind())

	_, err = New(classicalRegister(), []string{"theta", "theta"})
	assert.True(t, errors.Is(err, core.ErrDuplicateParameterName), "got %v", err)

	_, err = New(nil, nil)
	assert.True(t, errors.Is(err, core.ErrUnknownMeasurementKind), "got %v", err)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		m    measurement.Measurement
	}{
		{name: "basis rotation", m: basisRotation(t)},
		{name: "cheated basis rotation", m: cheatedBasisRotation(t)},
		{name: "cheated", m: cheated(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.m, []string{"theta", "phi"})
			require.NoError(t, err)

			ctrl := gomock.NewController(t)
			backend := NewMockBackend(ctrl)
			backend.EXPECT().RunMeasurement(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, m measurement.Measurement) (map[string]float64, error) {
					assert.Equal(t, tt.m.Kind(), m.Kind())
					assert.False(t, measurement.IsParametrized(m))
					assert.Equal(t, circuit.Float(0.5), m.Constant().Operations[0].Params[0])
					assert.Equal(t, circuit.Float(1.5), m.CircuitList()[0].Operations[0].Params[0])
					return map[string]float64{"value": 1}, nil
				})

			got, err := p.Run(context.Background(), backend, []float64{0.5, 3})
			require.NoError(t, err)
			assert.Equal(t, map[string]float64{"value": 1}, got)
			// the program keeps its symbols
			assert.True(t, measurement.IsParametrized(p.Measurement))
		})
	}
}

func TestRunParameterCount(t *testing.T) {
	p, err := New(basisRotation(t), []string{"theta", "phi"})
	require.NoError(t, err)
	backend := NewMockBackend(gomock.NewController(t))

	for _, params := range [][]float64{nil, {1}, {1, 2, 3}} {
		_, err := p.Run(context.Background(), backend, params)
		assert.True(t, errors.Is(err, core.ErrParameterCountMismatch), "got %v", err)
		var pce *core.ParameterCountError
		require.True(t, errors.As(err, &pce))
		assert.Equal(t, 2, pce.Expected)
		assert.Equal(t, len(params), pce.Given)
	}

	r, err := New(classicalRegister(), []string{"theta"})
	require.NoError(t, err)
	_, err = r.RunRegisters(context.Background(), backend, []float64{1, 2})
	assert.True(t, errors.Is(err, core.ErrParameterCountMismatch), "got %v", err)
}

func TestRunWithoutParameters(t *testing.T) {
	in := measurement.NewBasisRotationInput(1, false)
	_, err := in.AddPauliProduct("ro", []int{0})
	require.NoError(t, err)
	p, err := New(measurement.NewBasisRotation(in, nil, []circuit.Circuit{circuit.New()}), nil)
	require.NoError(t, err)

	backend := NewMockBackend(gomock.NewController(t))
	backend.EXPECT().RunMeasurement(gomock.Any(), gomock.Any()).Return(map[string]float64{}, nil)
	got, err := p.Run(context.Background(), backend, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunLeavesUnboundSymbols(t *testing.T) {
	p, err := New(basisRotation(t), []string{"theta"})
	require.NoError(t, err)

	backend := NewMockBackend(gomock.NewController(t))
	backend.EXPECT().RunMeasurement(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m measurement.Measurement) (map[string]float64, error) {
			assert.Equal(t, circuit.Symbol("phi / 2"), m.CircuitList()[0].Operations[0].Params[0])
			return nil, core.NewKindError(core.ErrExecution, "circuit has free parameters")
		})
	_, err = p.Run(context.Background(), backend, []float64{1})
	assert.True(t, errors.Is(err, core.ErrExecution), "got %v", err)
}

func TestRunWrongEntryPoint(t *testing.T) {
	backend := NewMockBackend(gomock.NewController(t))

	r, err := New(classicalRegister(), []string{"theta", "phi"})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), backend, []float64{1, 2})
	assert.True(t, errors.Is(err, core.ErrWrongExecutionEntryPoint), "got %v", err)
	assert.Contains(t, err.Error(), "use `run_registers` instead")

	// the entry point is checked before the parameter count
	_, err = r.Run(context.Background(), backend, nil)
	assert.True(t, errors.Is(err, core.ErrWrongExecutionEntryPoint), "got %v", err)

	for _, m := range []measurement.Measurement{basisRotation(t), cheatedBasisRotation(t), cheated(t)} {
		p, err := New(m, []string{"theta", "phi"})
		require.NoError(t, err)
		_, err = p.RunRegisters(context.Background(), backend, []float64{1, 2})
		assert.True(t, errors.Is(err, core.ErrWrongExecutionEntryPoint), "got %v", err)
	}
}

func TestRunRegisters(t *testing.T) {
	p, err := New(classicalRegister(), []string{"theta", "phi"})
	require.NoError(t, err)

	want := register.NewRegisters()
	want.Bit["ro"] = register.BitOutputRegister{{true, false}}

	backend := NewMockBackend(gomock.NewController(t))
	backend.EXPECT().RunMeasurementRegisters(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m measurement.Measurement) (register.Registers, error) {
			assert.False(t, measurement.IsParametrized(m))
			return want, nil
		})
	got, err := p.RunRegisters(context.Background(), backend, []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunBackendError(t *testing.T) {
	cause := errors.New("device offline")
	backend := NewMockBackend(gomock.NewController(t))
	backend.EXPECT().RunMeasurement(gomock.Any(), gomock.Any()).Return(nil, cause)
	backend.EXPECT().RunMeasurementRegisters(gomock.Any(), gomock.Any()).Return(register.Registers{}, cause)

	p, err := New(basisRotation(t), []string{"theta", "phi"})
	require.NoError(t, err)
	_, err = p.Run(context.Background(), backend, []float64{1, 2})
	assert.True(t, errors.Is(err, core.ErrExecution), "got %v", err)
	assert.True(t, errors.Is(err, cause), "got %v", err)

	r, err := New(classicalRegister(), []string{"theta", "phi"})
	require.NoError(t, err)
	_, err = r.RunRegisters(context.Background(), backend, []float64{1, 2})
	assert.True(t, errors.Is(err, core.ErrExecution), "got %v", err)
}

func TestRunSubstitutionError(t *testing.T) {
	bad := circuit.New(circuit.NewGate("RotateX", []int{0}, circuit.Symbol("log(theta)")))
	p, err := New(measurement.NewClassicalRegister(nil, []circuit.Circuit{bad}), []string{"theta"})
	require.NoError(t, err)
	backend := NewMockBackend(gomock.NewController(t))
	_, err = p.RunRegisters(context.Background(), backend, []float64{0})
	assert.True(t, errors.Is(err, core.ErrParameterSubstitution), "got %v", err)
}
