// Package program binds a measurement to the names of its free parameters
// and runs it on a backend for a list of parameter values.
package program

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/measurement"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	runRegistersMessage = "A quantum programm returning classical registeres cannot be executed by `run` use `run_registers` instead"
	runMessage          = "A quantum programm returning expectation values cannot be executed by `run_registers` use `run` instead"
)

var (
	tracer = otel.Tracer("measureapp.program")
	meter  = otel.Meter("measureapp.program")

	metricsOnce sync.Once
	runCounter  metric.Int64Counter
	runLatency  metric.Float64Histogram
)

func initMetrics() {
	metricsOnce.Do(func() {
		var err error
		runCounter, err = meter.Int64Counter("program_runs_total",
			metric.WithDescription("Number of quantum program runs"),
		)
		if err != nil {
			zap.L().Warn(fmt.Sprintf("failed to create run counter/reason:%s", err))
		}
		runLatency, err = meter.Float64Histogram("program_run_duration_seconds",
			metric.WithDescription("Time spent in the backend per run"),
			metric.WithUnit("s"),
		)
		if err != nil {
			zap.L().Warn(fmt.Sprintf("failed to create run histogram/reason:%s", err))
		}
	})
}

// QuantumProgram is a measurement whose circuits use the free parameters
// named in InputParameterNames. Run binds them positionally.
type QuantumProgram struct {
	Measurement         measurement.Measurement
	InputParameterNames []string
}

// New returns a program for m. Parameter names must be unique.
func New(m measurement.Measurement, inputParameterNames []string) (*QuantumProgram, error) {
	if m == nil {
		return nil, core.NewKindError(core.ErrUnknownMeasurementKind, "nil measurement")
	}
	seen := make(map[string]struct{}, len(inputParameterNames))
	for _, name := range inputParameterNames {
		if _, ok := seen[name]; ok {
			return nil, core.NewKindError(core.ErrDuplicateParameterName, "%s", name)
		}
		seen[name] = struct{}{}
	}
	var names []string
	if inputParameterNames != nil {
		names = make([]string, len(inputParameterNames))
		copy(names, inputParameterNames)
	}
	return &QuantumProgram{Measurement: m, InputParameterNames: names}, nil
}

func (p *QuantumProgram) Kind() measurement.Kind {
	return p.Measurement.Kind()
}

// Substitute binds parameters to InputParameterNames in order and returns
// the measurement with those values substituted. Symbols that are not bound
// stay in the circuits.
func (p *QuantumProgram) Substitute(parameters []float64) (measurement.Measurement, error) {
	if len(parameters) != len(p.InputParameterNames) {
		return nil, &core.ParameterCountError{Expected: len(p.InputParameterNames), Given: len(parameters)}
	}
	substitutions := make(map[string]float64, len(parameters))
	for i, name := range p.InputParameterNames {
		substitutions[name] = parameters[i]
	}
	return p.Measurement.SubstituteParameters(substitutions)
}

// Run substitutes parameters and returns the expectation values computed by
// backend. A nil parameters slice is the same as an empty one.
func (p *QuantumProgram) Run(ctx context.Context, backend Backend, parameters []float64) (map[string]float64, error) {
	switch p.Measurement.(type) {
	case *measurement.BasisRotation, *measurement.CheatedBasisRotation, *measurement.Cheated:
	case *measurement.ClassicalRegister:
		return nil, core.NewKindError(core.ErrWrongExecutionEntryPoint, runRegistersMessage)
	default:
		return nil, core.NewKindError(core.ErrUnknownMeasurementKind, "%T", p.Measurement)
	}

	ctx, span := p.startSpan(ctx, "program.Run", len(parameters))
	defer span.End()

	m, err := p.Substitute(parameters)
	if err != nil {
		return nil, p.fail(span, err)
	}
	start := time.Now()
	values, err := backend.RunMeasurement(ctx, m)
	p.record(ctx, start, err)
	if err != nil {
		return nil, p.fail(span, core.WrapKind(core.ErrExecution, err, "%s measurement", p.Kind()))
	}
	span.SetAttributes(attribute.Int("program.result_count", len(values)))
	span.SetStatus(codes.Ok, "")
	zap.L().Debug(fmt.Sprintf("ran %s program with %d parameters/results:%d",
		p.Kind(), len(parameters), len(values)))
	return values, nil
}

// RunRegisters substitutes parameters and returns the raw registers from
// backend. Only ClassicalRegister programs can be run this way.
func (p *QuantumProgram) RunRegisters(ctx context.Context, backend Backend, parameters []float64) (register.Registers, error) {
	switch p.Measurement.(type) {
	case *measurement.ClassicalRegister:
	case *measurement.BasisRotation, *measurement.CheatedBasisRotation, *measurement.Cheated:
		return register.Registers{}, core.NewKindError(core.ErrWrongExecutionEntryPoint, runMessage)
	default:
		return register.Registers{}, core.NewKindError(core.ErrUnknownMeasurementKind, "%T", p.Measurement)
	}

	ctx, span := p.startSpan(ctx, "program.RunRegisters", len(parameters))
	defer span.End()

	m, err := p.Substitute(parameters)
	if err != nil {
		return register.Registers{}, p.fail(span, err)
	}
	start := time.Now()
	regs, err := backend.RunMeasurementRegisters(ctx, m)
	p.record(ctx, start, err)
	if err != nil {
		return register.Registers{}, p.fail(span, core.WrapKind(core.ErrExecution, err, "%s measurement", p.Kind()))
	}
	span.SetStatus(codes.Ok, "")
	zap.L().Debug(fmt.Sprintf("ran %s program with %d parameters/registers:%d",
		p.Kind(), len(parameters), len(regs.Bit)+len(regs.Float)+len(regs.Complex)))
	return regs, nil
}

func (p *QuantumProgram) startSpan(ctx context.Context, name string, parameterCount int) (context.Context, trace.Span) {
	initMetrics()
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("program.run_id", uuid.NewString()),
			attribute.String("program.kind", p.Kind().String()),
			attribute.Int("program.parameter_count", parameterCount),
			attribute.Int("program.circuit_count", len(p.Measurement.CircuitList())),
		),
	)
}

func (p *QuantumProgram) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	zap.L().Debug(fmt.Sprintf("%s program failed/reason:%s", p.Kind(), err))
	return err
}

func (p *QuantumProgram) record(ctx context.Context, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", p.Kind().String()),
		attribute.String("outcome", outcome),
	)
	if runCounter != nil {
		runCounter.Add(ctx, 1, attrs)
	}
	if runLatency != nil {
		runLatency.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
