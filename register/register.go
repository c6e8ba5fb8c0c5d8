// Package register holds the raw classical output of circuit executions.
// Every register is shaped shots x slots.
package register

import (
	"sort"

	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
)

type BitOutputRegister [][]bool

type FloatOutputRegister [][]float64

type ComplexOutputRegister [][]complex128

// Registers is the triple of named register maps returned by an execution.
type Registers struct {
	Bit     map[string]BitOutputRegister     `json:"bit"`
	Float   map[string]FloatOutputRegister   `json:"float"`
	Complex map[string]ComplexOutputRegister `json:"complex"`
}

func NewRegisters() Registers {
	return Registers{
		Bit:     map[string]BitOutputRegister{},
		Float:   map[string]FloatOutputRegister{},
		Complex: map[string]ComplexOutputRegister{},
	}
}

func (r BitOutputRegister) Shots() int {
	return len(r)
}

// Slots returns the common row length. Jagged registers are rejected.
func (r BitOutputRegister) Slots() (int, error) {
	lengths := make([]int, len(r))
	for i, row := range r {
		lengths[i] = len(row)
	}
	return commonLength(lengths)
}

func (r FloatOutputRegister) Slots() (int, error) {
	lengths := make([]int, len(r))
	for i, row := range r {
		lengths[i] = len(row)
	}
	return commonLength(lengths)
}

func (r ComplexOutputRegister) Slots() (int, error) {
	lengths := make([]int, len(r))
	for i, row := range r {
		lengths[i] = len(row)
	}
	return commonLength(lengths)
}

func commonLength(lengths []int) (int, error) {
	if len(lengths) == 0 {
		return 0, nil
	}
	for i, l := range lengths {
		if l != lengths[0] {
			return 0, core.NewKindError(core.ErrRegisterShape,
				"shot %d has %d slots, shot 0 has %d", i, l, lengths[0])
		}
	}
	return lengths[0], nil
}

// Validate checks that every named register is rectangular.
func (r Registers) Validate() error {
	for _, name := range sortedKeys(r.Bit) {
		if _, err := r.Bit[name].Slots(); err != nil {
			return errors.Wrapf(err, "bit register %s", name)
		}
	}
	for _, name := range sortedKeys(r.Float) {
		if _, err := r.Float[name].Slots(); err != nil {
			return errors.Wrapf(err, "float register %s", name)
		}
	}
	for _, name := range sortedKeys(r.Complex) {
		if _, err := r.Complex[name].Slots(); err != nil {
			return errors.Wrapf(err, "complex register %s", name)
		}
	}
	return nil
}

// Append adds the rows of other to the registers of the same name.
func (r *Registers) Append(other Registers) {
	if r.Bit == nil {
		r.Bit = map[string]BitOutputRegister{}
	}
	if r.Float == nil {
		r.Float = map[string]FloatOutputRegister{}
	}
	if r.Complex == nil {
		r.Complex = map[string]ComplexOutputRegister{}
	}
	for name, rows := range other.Bit {
		r.Bit[name] = append(r.Bit[name], rows...)
	}
	for name, rows := range other.Float {
		r.Float[name] = append(r.Float[name], rows...)
	}
	for name, rows := range other.Complex {
		r.Complex[name] = append(r.Complex[name], rows...)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
