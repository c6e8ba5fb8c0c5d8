package register

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"go.uber.org/zap"
)

// Counts is a histogram of measured bit strings. A key like "0110" reads
// "q_3q_2q_1q_0": qubit 0 is the rightmost character.
type Counts map[string]uint32

// VirtualPhysicalMapping maps virtual qubit indices to physical ones.
type VirtualPhysicalMapping map[int]int

// BitRegisterFromCounts expands a histogram into one row per shot. Rows are
// ordered by bit string so that equal counts give equal registers.
func BitRegisterFromCounts(counts Counts) (BitOutputRegister, error) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := BitOutputRegister{}
	width := -1
	for _, k := range keys {
		if width < 0 {
			width = len(k)
		} else if len(k) != width {
			return nil, core.NewKindError(core.ErrRegisterShape,
				"bit string %s has %d bits, expected %d", k, len(k), width)
		}
		row, err := bitStringToRow(k)
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < counts[k]; i++ {
			shot := make([]bool, len(row))
			copy(shot, row)
			out = append(out, shot)
		}
	}
	return out, nil
}

func bitStringToRow(s string) ([]bool, error) {
	n := len(s)
	row := make([]bool, n)
	for i := 0; i < n; i++ {
		switch s[n-i-1] {
		case '0':
		case '1':
			row[i] = true
		default:
			return nil, errors.Errorf("%s is not a bit string", s)
		}
	}
	return row, nil
}

// SwapVirtualPhysical relocates every physical bit to its virtual position.
func SwapVirtualPhysical(counts Counts, mapping VirtualPhysicalMapping) (Counts, error) {
	if len(mapping) == 0 {
		zap.L().Debug("No virtualPhysicalMapping is given, so the counts are not swapped")
		return counts, nil
	}
	result := Counts{}
	nQubits := len(mapping)

	for physicalBits, count := range counts {
		length := len(physicalBits)
		if length != nQubits {
			return counts, errors.New("bit string length of the counts is not equal to the length of virtualPhysicalMapping")
		}
		swapped := make([]string, length)
		for virtual, physical := range mapping {
			if physical >= length || virtual >= length || physical < 0 || virtual < 0 {
				return counts, core.NewKindError(core.ErrQubitIndexOutOfRange,
					"virtual: %d, physical: %d, length: %d", virtual, physical, length)
			}
			swapped[length-virtual-1] = physicalBits[length-physical-1 : length-physical]
		}
		result[strings.Join(swapped, "")] += count
	}
	return result, nil
}

func divideStringByLengths(input string, lengths []int) ([]string, error) {
	// ex) input: "101011011", lengths: [2, 3, 4] -> ["10", "101", "1011"]
	result := []string{}
	currentPos := 0
	for _, length := range lengths {
		if currentPos+length > len(input) {
			return nil, core.NewKindError(core.ErrRegisterShape,
				"bit string %s is shorter than the register lengths %v", input, lengths)
		}
		result = append(result, input[currentPos:currentPos+length])
		currentPos += length
	}
	if currentPos != len(input) {
		return nil, core.NewKindError(core.ErrRegisterShape,
			"bit string %s is longer than the register lengths %v", input, lengths)
	}
	return result, nil
}

// DivideCounts splits a histogram of combined bit strings into one histogram
// per register. lengths lists register widths from the leftmost to the
// rightmost characters; the result is indexed from the rightmost register,
// so result[0] holds the lowest bits.
func DivideCounts(counts Counts, lengths []int) ([]Counts, error) {
	if len(counts) == 0 {
		return nil, core.NewKindError(core.ErrEmptyRegister, "no counts to divide")
	}
	result := make([]Counts, len(lengths))
	for i := range result {
		result[i] = Counts{}
	}
	for k, v := range counts {
		divided, err := divideStringByLengths(k, lengths)
		if err != nil {
			return nil, err
		}
		zap.L().Debug(fmt.Sprintf("divided %s into %v", k, divided))
		for i, part := range divided {
			result[len(lengths)-i-1][part] += v
		}
	}
	return result, nil
}
