//go:build unit
// +build unit

package program

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/common"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/measurement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func programFixtures(t *testing.T) map[string]*QuantumProgram {
	t.Helper()
	fixtures := map[string]*QuantumProgram{}
	add := func(name string, m measurement.Measurement, names []string) {
		p, err := New(m, names)
		require.NoError(t, err)
		fixtures[name] = p
	}
	add("basis rotation", basisRotation(t), []string{"theta", "phi"})
	add("cheated basis rotation", cheatedBasisRotation(t), []string{})
	add("cheated", cheated(t), []string{"theta"})
	add("classical register", classicalRegister(), nil)
	add("classical register without circuits", measurement.NewClassicalRegister(nil, nil), []string{"x"})
	return fixtures
}

func TestProgramBinaryRoundTrip(t *testing.T) {
	for name, p := range programFixtures(t) {
		t.Run(name, func(t *testing.T) {
			data, err := p.ToBinary()
			require.NoError(t, err)
			back, err := FromBinary(data)
			require.NoError(t, err)
			assert.Equal(t, p, back)
		})
	}
}

func TestProgramJSONRoundTrip(t *testing.T) {
	for name, p := range programFixtures(t) {
		t.Run(name, func(t *testing.T) {
			s, err := p.ToJSON()
			require.NoError(t, err)
			back, err := FromJSON(s)
			require.NoError(t, err)
			assert.Equal(t, p, back)

			pretty, err := p.ToPrettyJSON()
			require.NoError(t, err)
			back, err = FromJSON(pretty)
			require.NoError(t, err)
			assert.Equal(t, p, back)
		})
	}
}

func TestProgramDecodeFailure(t *testing.T) {
	str, err := common.MarshalMsgpack("fails")
	require.NoError(t, err)
	list, err := common.MarshalMsgpack([]int{0})
	require.NoError(t, err)
	measurementOnly, err := measurement.ToBinary(classicalRegister())
	require.NoError(t, err)

	for name, data := range map[string][]byte{
		"string":           str,
		"list":             list,
		"measurement only": measurementOnly,
	} {
		t.Run("binary "+name, func(t *testing.T) {
			_, err := FromBinary(data)
			assert.True(t, errors.Is(err, core.ErrDecodeFailure), "got %v", err)
		})
	}

	for name, data := range map[string]string{
		"string":          `"fails"`,
		"list":            `[0]`,
		"empty object":    `{}`,
		"duplicate names": `{"versions":{"program":"1.4.0","measurement":"1.4.0"},"input_parameter_names":["a","a"],"measurement":` + mustJSON(t) + `}`,
		"repeated key":    `{"versions":{"program":"1.4.0","measurement":"1.4.0"},"input_parameter_names":["a"],"input_parameter_names":["b"],"measurement":` + mustJSON(t) + `}`,
	} {
		t.Run("json "+name, func(t *testing.T) {
			_, err := FromJSON(data)
			assert.True(t, errors.Is(err, core.ErrDecodeFailure), "got %v", err)
		})
	}
}

func TestProgramVersionMismatch(t *testing.T) {
	_, err := FromJSON(`{"versions":{"program":"1.3.9","measurement":"1.4.0"},"input_parameter_names":[],"measurement":` + mustJSON(t) + `}`)
	assert.True(t, errors.Is(err, core.ErrVersionMismatch), "got %v", err)
}

func mustJSON(t *testing.T) string {
	t.Helper()
	s, err := measurement.ToJSON(classicalRegister())
	require.NoError(t, err)
	return s
}
