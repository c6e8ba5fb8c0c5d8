package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-faster/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/common"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.uber.org/zap"
)

const ReplayExecutorName = "replay"

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type ReplaySetting struct {
	Path string `toml:"path"`
}

func NewReplaySetting() ReplaySetting {
	return ReplaySetting{Path: "replay.json"}
}

// ReadoutLength names one segment of a combined bit string.
type ReadoutLength struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}

// CombinedCounts is a histogram over bit strings that concatenate several
// registers. Readouts are listed from the rightmost segment.
type CombinedCounts struct {
	Counts   register.Counts `json:"counts"`
	Readouts []ReadoutLength `json:"readouts"`
}

// ReplayEntry is one recorded execution. Exactly one of Registers, Counts
// and Combined is set. Counts are keyed by bit register name.
type ReplayEntry struct {
	Registers              *register.Registers             `json:"registers"`
	Counts                 map[string]register.Counts      `json:"counts"`
	Combined               *CombinedCounts                 `json:"combined"`
	VirtualPhysicalMapping register.VirtualPhysicalMapping `json:"virtual_physical_mapping"`
}

func (e ReplayEntry) toRegisters() (register.Registers, error) {
	switch {
	case e.Registers != nil:
		return *e.Registers, nil
	case e.Counts != nil:
		regs := register.NewRegisters()
		for _, name := range sortedKeys(e.Counts) {
			bits, err := countsToBits(e.Counts[name], e.VirtualPhysicalMapping)
			if err != nil {
				return register.Registers{}, errors.Wrapf(err, "counts of %s", name)
			}
			regs.Bit[name] = bits
		}
		return regs, nil
	case e.Combined != nil:
		counts, err := register.SwapVirtualPhysical(e.Combined.Counts, e.VirtualPhysicalMapping)
		if err != nil {
			return register.Registers{}, err
		}
		lengths := make([]int, len(e.Combined.Readouts))
		for i, r := range e.Combined.Readouts {
			lengths[len(lengths)-i-1] = r.Length
		}
		divided, err := register.DivideCounts(counts, lengths)
		if err != nil {
			return register.Registers{}, err
		}
		regs := register.NewRegisters()
		for i, r := range e.Combined.Readouts {
			bits, err := register.BitRegisterFromCounts(divided[i])
			if err != nil {
				return register.Registers{}, errors.Wrapf(err, "counts of %s", r.Name)
			}
			regs.Bit[r.Name] = bits
		}
		return regs, nil
	default:
		return register.Registers{}, errors.New("entry has neither registers nor counts")
	}
}

func countsToBits(counts register.Counts, mapping register.VirtualPhysicalMapping) (register.BitOutputRegister, error) {
	swapped, err := register.SwapVirtualPhysical(counts, mapping)
	if err != nil {
		return nil, err
	}
	return register.BitRegisterFromCounts(swapped)
}

// ReplayExecutor answers circuits with recorded registers, in order, starting
// over after the last one.
type ReplayExecutor struct {
	mu      sync.Mutex
	entries []register.Registers
	next    int
}

// NewReplayExecutor loads the file named by [com.replay] path.
func NewReplayExecutor() (*ReplayExecutor, error) {
	s := NewReplaySetting()
	if _, err := core.DecodeComponentSetting(ReplayExecutorName, &s); err != nil {
		return nil, err
	}
	blob, err := common.ReadFile(s.Path)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read replay file:%s/reason:%s", s.Path, err))
		return nil, err
	}
	return LoadReplay([]byte(blob))
}

// LoadReplay decodes a JSON list of replay entries.
func LoadReplay(data []byte) (*ReplayExecutor, error) {
	var entries []ReplayEntry
	if err := jsonIter.Unmarshal(data, &entries); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "replay entries")
	}
	if len(entries) == 0 {
		return nil, core.NewKindError(core.ErrEmptyRegister, "replay file has no entries")
	}
	r := &ReplayExecutor{entries: make([]register.Registers, len(entries))}
	for i, e := range entries {
		regs, err := e.toRegisters()
		if err != nil {
			return nil, core.WrapKind(core.ErrDecodeFailure, err, "replay entry %d", i)
		}
		if err := regs.Validate(); err != nil {
			return nil, core.WrapKind(core.ErrDecodeFailure, err, "replay entry %d", i)
		}
		r.entries[i] = regs
	}
	zap.L().Debug(fmt.Sprintf("[Replay] loaded %d entries", len(entries)))
	return r, nil
}

func (r *ReplayExecutor) Name() string {
	return ReplayExecutorName
}

func (r *ReplayExecutor) Len() int {
	return len(r.entries)
}

func (r *ReplayExecutor) RunCircuit(ctx context.Context, c circuit.Circuit) (register.Registers, error) {
	if c.IsParametrized() {
		return register.Registers{}, core.NewKindError(core.ErrExecution, "circuit has unresolved parameters")
	}
	r.mu.Lock()
	regs := r.entries[r.next]
	r.next = (r.next + 1) % len(r.entries)
	r.mu.Unlock()
	return deepcopy.Copy(regs).(register.Registers), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
