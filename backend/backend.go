// Package backend runs measurements by executing their circuits one at a
// time and evaluating the collected registers.
package backend

import (
	"context"
	"fmt"

	"github.com/oqtopus-team/oqtopus-engine/measureapp/circuit"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/measurement"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.uber.org/zap"
)

// CircuitExecutor runs a single circuit with concrete parameters.
type CircuitExecutor interface {
	Name() string
	RunCircuit(ctx context.Context, c circuit.Circuit) (register.Registers, error)
}

// EvaluatingBackend runs every circuit of a measurement on Executor. The
// constant circuit is prepended to each circuit and rows of registers with
// the same name are appended across circuits.
type EvaluatingBackend struct {
	Executor CircuitExecutor
}

func NewEvaluatingBackend(executor CircuitExecutor) *EvaluatingBackend {
	return &EvaluatingBackend{Executor: executor}
}

func (b *EvaluatingBackend) RunMeasurementRegisters(ctx context.Context, m measurement.Measurement) (register.Registers, error) {
	circuits := measurement.ExecutionCircuits(m)
	zap.L().Debug(fmt.Sprintf("[%s] running %d circuits of a %s measurement",
		b.Executor.Name(), len(circuits), m.Kind()))
	regs := register.NewRegisters()
	for i, c := range circuits {
		if err := ctx.Err(); err != nil {
			return register.Registers{}, err
		}
		out, err := b.Executor.RunCircuit(ctx, c)
		if err != nil {
			zap.L().Info(fmt.Sprintf("[%s] circuit %d failed/reason:%s", b.Executor.Name(), i, err))
			return register.Registers{}, core.WrapKind(core.ErrExecution, err, "circuit %d", i)
		}
		regs.Append(out)
	}
	if err := regs.Validate(); err != nil {
		return register.Registers{}, core.WrapKind(core.ErrExecution, err, "%s", b.Executor.Name())
	}
	return regs, nil
}

func (b *EvaluatingBackend) RunMeasurement(ctx context.Context, m measurement.Measurement) (map[string]float64, error) {
	if !m.Kind().ReturnsExpectationValues() {
		return nil, core.NewKindError(core.ErrWrongExecutionEntryPoint,
			"%s measurements return registers", m.Kind())
	}
	regs, err := b.RunMeasurementRegisters(ctx, m)
	if err != nil {
		return nil, err
	}
	return measurement.Evaluate(m, regs)
}
