//go:build unit
// +build unit

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codecSample struct {
	Name   string         `msgpack:"name" json:"name"`
	Counts map[string]int `msgpack:"counts" json:"counts"`
	Empty  []int          `msgpack:"empty" json:"empty"`
	Nil    []int          `msgpack:"nil" json:"nil"`
}

func TestMsgpackRoundTrip(t *testing.T) {
	in := codecSample{Name: "ro", Counts: map[string]int{"b": 2, "a": 1, "c": 3}, Empty: []int{}}
	data, err := MarshalMsgpack(in)
	require.NoError(t, err)

	var out codecSample
	require.NoError(t, UnmarshalMsgpack(data, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalMsgpackStrict(t *testing.T) {
	type wider struct {
		Name  string `msgpack:"name"`
		Extra int    `msgpack:"extra"`
	}
	data, err := MarshalMsgpack(wider{Name: "ro", Extra: 1})
	require.NoError(t, err)
	var out codecSample
	assert.Error(t, UnmarshalMsgpack(data, &out))

	data, err = MarshalMsgpack(codecSample{Name: "ro"})
	require.NoError(t, err)
	assert.Error(t, UnmarshalMsgpack(append(data, 0x01), &out))

	str, err := MarshalMsgpack("fails")
	require.NoError(t, err)
	assert.Error(t, UnmarshalMsgpack(str, &out))
}

func TestStrictJSON(t *testing.T) {
	var out codecSample
	assert.Error(t, StrictJSON.UnmarshalFromString(`{"name":"ro","extra":1}`, &out))
	require.NoError(t, StrictJSON.UnmarshalFromString(`{"name":"ro","counts":{"a":1},"empty":[],"nil":null}`, &out))
	assert.Equal(t, codecSample{Name: "ro", Counts: map[string]int{"a": 1}, Empty: []int{}}, out)

	s, err := StrictJSON.MarshalToString(codecSample{Counts: map[string]int{"b": 1, "a": 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"","counts":{"a":2,"b":1},"empty":null,"nil":null}`, s)
}

func TestCheckDuplicateKeys(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "flat", data: `{"a":1,"b":[1,2],"c":null}`},
		{name: "same key in sibling objects", data: `[{"a":1},{"a":2}]`},
		{name: "same key at different depths", data: `{"a":{"a":{"a":true}}}`},
		{name: "scalar", data: `"a"`},
		{name: "top level", data: `{"a":1,"a":2}`, wantErr: `duplicate key "a" in $`},
		{
			name:    "nested",
			data:    `{"body":{"input":{"measured_exp_vals":{"x":1,"y":2,"x":3}}}}`,
			wantErr: `duplicate key "x" in $.body.input.measured_exp_vals`,
		},
		{name: "inside array", data: `{"list":[{},{"k":1,"k":1}]}`, wantErr: `duplicate key "k" in $.list[1]`},
		{name: "malformed", data: `{"a":`, wantErr: "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDuplicateKeys([]byte(tt.data))
			switch tt.wantErr {
			case "":
				assert.NoError(t, err)
			case "?":
				assert.Error(t, err)
			default:
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
