package measurement

import (
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
)

// PauliProductExpectation estimates the expectation value of the Pauli
// product acting on qubits from a bit register. Each shot contributes +1
// when an even number of the selected bits is set and -1 otherwise; flipped
// inverts that sign. The estimate is the mean over all shots. The empty
// product is identically +1.
func PauliProductExpectation(reg register.BitOutputRegister, qubits []int, flipped bool) (float64, error) {
	if len(reg) == 0 {
		return 0, core.NewKindError(core.ErrEmptyRegister, "no shots to average")
	}
	sum := 0
	for shot, row := range reg {
		parity := 0
		for _, q := range qubits {
			if q < 0 || q >= len(row) {
				return 0, core.NewKindError(core.ErrQubitIndexOutOfRange,
					"qubit %d in shot %d with %d slots", q, shot, len(row))
			}
			if row[q] {
				parity ^= 1
			}
		}
		sign := 1
		if parity == 1 {
			sign = -1
		}
		if flipped {
			sign = -sign
		}
		sum += sign
	}
	return float64(sum) / float64(len(reg)), nil
}
