//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestParameterCountError(t *testing.T) {
	var err error = &ParameterCountError{Expected: 2, Given: 3}
	assert.EqualError(t, err, "Wrong number of parameters 2 parameters expected 3 parameters given")
	assert.True(t, errors.Is(err, ErrParameterCountMismatch))
	assert.False(t, errors.Is(err, ErrDecodeFailure))

	wrapped := errors.Wrap(err, "run failed")
	var pce *ParameterCountError
	assert.True(t, errors.As(wrapped, &pce))
	assert.Equal(t, 2, pce.Expected)
	assert.Equal(t, 3, pce.Given)
}

func TestKindError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		wantMsg string
	}{
		{
			name:    "with detail",
			err:     NewKindError(ErrUnknownRegisterName, "register %s is missing", "ro"),
			kind:    ErrUnknownRegisterName,
			wantMsg: "unknown register name: register ro is missing",
		},
		{
			name:    "without detail",
			err:     &KindError{Kind: ErrDecodeFailure},
			kind:    ErrDecodeFailure,
			wantMsg: "decode failure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.wantMsg)
			assert.True(t, errors.Is(tt.err, tt.kind))
			assert.True(t, errors.Is(errors.Wrap(tt.err, "outer"), tt.kind))
		})
	}
}

func TestWrapKind(t *testing.T) {
	cause := NewKindError(ErrInvalidFormula, "sin(")
	err := WrapKind(ErrParameterSubstitution, cause, "operation %d", 2)
	assert.EqualError(t, err, "parameter substitution failed: operation 2: invalid formula: sin(")
	assert.True(t, errors.Is(err, ErrParameterSubstitution))
	assert.True(t, errors.Is(err, ErrInvalidFormula))
	assert.False(t, errors.Is(err, ErrDecodeFailure))
}
