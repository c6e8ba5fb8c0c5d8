package core

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	ErrParameterCountMismatch = errors.New("parameter count mismatch")
	ErrUnknownRegisterName    = errors.New("unknown register name")
	ErrQubitIndexOutOfRange   = errors.New("qubit index out of range")
	ErrDuplicateResultName    = errors.New("duplicate result name")
	ErrNonRealFormulaResult   = errors.New("formula result is not a real number")

	// ErrUndeclaredFormulaVariable is returned when a combination references a
	// Pauli product that was never declared.
	ErrUndeclaredFormulaVariable = errors.New("undeclared formula variable")
	ErrWrongExecutionEntryPoint  = errors.New("wrong execution entry point")
	ErrDecodeFailure             = errors.New("decode failure")
	ErrVersionMismatch           = errors.New("version mismatch")

	ErrInvalidFormula         = errors.New("invalid formula")
	ErrEmptyRegister          = errors.New("register has no shots")
	ErrRegisterShape          = errors.New("register shape does not match")
	ErrDuplicateParameterName = errors.New("duplicate parameter name")
	ErrParameterSubstitution  = errors.New("parameter substitution failed")
	ErrExecution              = errors.New("execution failed")
	ErrUnknownMeasurementKind = errors.New("unknown measurement kind")
)

// ParameterCountError reports both lengths of a run call whose parameter list
// does not match the declared parameter names.
type ParameterCountError struct {
	Expected int
	Given    int
}

func (e *ParameterCountError) Error() string {
	return fmt.Sprintf("Wrong number of parameters %d parameters expected %d parameters given",
		e.Expected, e.Given)
}

func (e *ParameterCountError) Is(target error) bool {
	return target == ErrParameterCountMismatch
}

// KindError wraps one of the sentinel errors with a detail message, and
// optionally the error that caused it. errors.Is matches both.
type KindError struct {
	Kind   error
	Detail string
	Cause  error
}

func (e *KindError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Cause)
	}
	return msg
}

func (e *KindError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func NewKindError(kind error, format string, args ...interface{}) error {
	return &KindError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func WrapKind(kind, cause error, format string, args ...interface{}) error {
	return &KindError{Kind: kind, Detail: fmt.Sprintf(format, args...), Cause: cause}
}
