//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testShotSetting struct {
	Shots   int    `toml:"shots"`
	Readout string `toml:"readout"`
}

type testReplaySetting struct {
	Paths []string `toml:"paths"`
}

func TestRegisterSettings(t *testing.T) {
	s := registeredSettings()
	assert.Equal(t, 2, len(s.ComponentSetting))
}

func TestParseSettings(t *testing.T) {
	ResetSetting()
	tests := []struct {
		name      string
		in        string
		wantError error
		want      *Setting
	}{
		{
			name:      "empty",
			in:        "",
			wantError: nil,
			want: &Setting{
				ComponentSetting: map[string]interface{}{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotError := globalSetting.parseSetting(tt.in)
			assert.Equal(t, tt.wantError, gotError)
			assert.Equal(t, tt.want, globalSetting)
		})
	}
}

func TestDecodeComponentSetting(t *testing.T) {
	ResetSetting()
	RegisterSetting("dummy", testShotSetting{Shots: 100, Readout: "ro"})
	RegisterSetting("replay", testReplaySetting{})
	err := ParseSetting(heredoc.Doc(`
		[com.dummy]
		shots = 250
	`))
	require.NoError(t, err)

	dummy := testShotSetting{Shots: 100, Readout: "ro"}
	found, err := DecodeComponentSetting("dummy", &dummy)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testShotSetting{Shots: 250, Readout: "ro"}, dummy)

	replay := testReplaySetting{Paths: []string{"a.json"}}
	found, err = DecodeComponentSetting("replay", &replay)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"a.json"}, replay.Paths)

	found, err = DecodeComponentSetting("missing", &replay)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestParseSettingBroken(t *testing.T) {
	ResetSetting()
	err := ParseSetting("[com.dummy\nshots = ")
	assert.Error(t, err)
}

func registeredSettings() *Setting {
	ns := newSetting()
	ns.registerSetting("dummy", &testShotSetting{
		Shots: 100,
	})
	ns.registerSetting("replay", &testReplaySetting{
		Paths: []string{},
	})
	return ns
}
