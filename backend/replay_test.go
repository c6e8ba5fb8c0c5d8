//go:build unit
// +build unit

package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/common"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replayEntries = `[
  {"registers": {"bit": {"ro": [[1, 0], [0, 0]]}, "float": {}, "complex": {}}},
  {"counts": {"ro": {"01": 1, "10": 2}}},
  {"counts": {"ro": {"01": 1}}, "virtual_physical_mapping": {"0": 1, "1": 0}},
  {"combined": {"counts": {"011": 2, "100": 1}, "readouts": [{"name": "ro", "length": 2}, {"name": "flag", "length": 1}]}}
]`

func TestLoadReplay(t *testing.T) {
	r, err := LoadReplay([]byte(replayEntries))
	require.NoError(t, err)
	require.Equal(t, 4, r.Len())

	want := []map[string]register.BitOutputRegister{
		{"ro": {{true, false}, {false, false}}},
		{"ro": {{true, false}, {false, true}, {false, true}}},
		{"ro": {{false, true}}},
		{
			"ro":   {{false, false}, {true, true}, {true, true}},
			"flag": {{false}, {false}, {true}},
		},
	}
	c := circuit.New(circuit.NewDefinitionBit("ro", 2, true))
	for i, w := range want {
		got, err := r.RunCircuit(context.Background(), c)
		require.NoError(t, err, "entry %d", i)
		assert.Equal(t, w, got.Bit, "entry %d", i)
	}

	// starts over after the last entry
	got, err := r.RunCircuit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, want[0], got.Bit)

	// callers own the returned rows
	got.Bit["ro"][0][0] = false
	for i := 0; i < r.Len(); i++ {
		got, err = r.RunCircuit(context.Background(), c)
		require.NoError(t, err)
	}
	assert.Equal(t, want[0], got.Bit)
	got, err = r.RunCircuit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, want[1], got.Bit)
}

func TestLoadReplayErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{
			name:    "not json",
			in:      "replay",
			wantErr: core.ErrDecodeFailure,
		},
		{
			name:    "no entries",
			in:      "[]",
			wantErr: core.ErrEmptyRegister,
		},
		{
			name:    "empty entry",
			in:      "[{}]",
			wantErr: core.ErrDecodeFailure,
		},
		{
			name:    "jagged register",
			in:      `[{"registers": {"bit": {"ro": [[1], [0, 1]]}}}]`,
			wantErr: core.ErrRegisterShape,
		},
		{
			name:    "bad bit string",
			in:      `[{"counts": {"ro": {"0x": 1}}}]`,
			wantErr: core.ErrDecodeFailure,
		},
		{
			name:    "combined too long",
			in:      `[{"combined": {"counts": {"0110": 1}, "readouts": [{"name": "ro", "length": 2}]}}]`,
			wantErr: core.ErrRegisterShape,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReplay([]byte(tt.in))
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestReplayRejectsSymbols(t *testing.T) {
	r, err := LoadReplay([]byte(replayEntries))
	require.NoError(t, err)
	c := circuit.New(circuit.NewGate("RotateX", []int{0}, circuit.Symbol("theta")))
	_, err = r.RunCircuit(context.Background(), c)
	assert.True(t, errors.Is(err, core.ErrExecution), "got %v", err)
}

func TestNewReplayExecutor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.json")
	require.NoError(t, common.WriteFile(path, []byte(replayEntries)))

	core.ResetSetting()
	core.RegisterSetting(ReplayExecutorName, NewReplaySetting())
	require.NoError(t, core.ParseSetting(heredoc.Docf(`
		[com.replay]
		path = %q
	`, path)))
	r, err := NewReplayExecutor()
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, ReplayExecutorName, r.Name())

	require.NoError(t, core.ParseSetting(heredoc.Docf(`
		[com.replay]
		path = %q
	`, filepath.Join(t.TempDir(), "missing.json"))))
	_, err = NewReplayExecutor()
	assert.Error(t, err)
}
