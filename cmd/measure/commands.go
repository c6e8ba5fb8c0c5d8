package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/run"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/common"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/log"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/measurement"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/program"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/sweep"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

func readProgram(path string) (*program.QuantumProgram, error) {
	blob, err := common.ReadFile(path)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read program file:%s/reason:%s", path, err))
		return nil, err
	}
	if common.IsBinaryPath(path) {
		return program.FromBinary([]byte(blob))
	}
	return program.FromJSON(blob)
}

func printJSON(v interface{}) error {
	out, err := jsonIter.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(pretty.Pretty(out))
	return err
}

func shotCount(regs register.Registers) int {
	n := 0
	for _, r := range regs.Bit {
		n += r.Shots()
	}
	return n
}

type evaluateCmd struct {
	Program   string `long:"program" description:"program file, binary when the extension is .bin, .msgpack or .mp" required:"true"`
	Registers string `long:"registers" description:"JSON file with bit, float and complex registers" required:"true"`
}

func (c *evaluateCmd) Execute(args []string) error {
	logger, err := setup(measure.Conf)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := readProgram(c.Program)
	if err != nil {
		return err
	}
	blob, err := common.ReadFile(c.Registers)
	if err != nil {
		return err
	}
	var regs register.Registers
	if err := jsonIter.UnmarshalFromString(blob, &regs); err != nil {
		return core.WrapKind(core.ErrDecodeFailure, err, "registers %s", c.Registers)
	}
	if err := regs.Validate(); err != nil {
		return err
	}
	ml := metricsLogger(measure)
	defer ml.Close()
	start := time.Now()
	values, err := measurement.Evaluate(p.Measurement, regs)
	ml.Record(p.Kind().String(), len(values), shotCount(regs), time.Since(start), err)
	if err != nil {
		return err
	}
	return printJSON(values)
}

type runCmd struct {
	Program    string    `long:"program" description:"program file" required:"true"`
	Parameters []float64 `long:"param" description:"value of the next input parameter, repeat in parameter order"`
}

func (c *runCmd) Execute(args []string) error {
	logger, err := setup(measure.Conf)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := readProgram(c.Program)
	if err != nil {
		return err
	}
	container, err := measure.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		return err
	}
	return container.Invoke(func(b program.Backend, ml *log.MetricsLogger) error {
		defer ml.Close()
		ctx := context.Background()
		start := time.Now()
		if p.Kind().ReturnsExpectationValues() {
			values, err := p.Run(ctx, b, c.Parameters)
			ml.Record(p.Kind().String(), len(values), 0, time.Since(start), err)
			if err != nil {
				return err
			}
			return printJSON(values)
		}
		regs, err := p.RunRegisters(ctx, b, c.Parameters)
		ml.Record(p.Kind().String(), len(regs.Bit)+len(regs.Float)+len(regs.Complex), shotCount(regs), time.Since(start), err)
		if err != nil {
			return err
		}
		return printJSON(regs)
	})
}

type sweepCmd struct {
	Program string `long:"program" description:"program file" required:"true"`
	Points  string `long:"points" description:"JSON file holding a list of parameter vectors" required:"true"`
}

func (c *sweepCmd) Execute(args []string) error {
	logger, err := setup(measure.Conf)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := readProgram(c.Program)
	if err != nil {
		return err
	}
	blob, err := common.ReadFile(c.Points)
	if err != nil {
		return err
	}
	var points [][]float64
	if err := jsonIter.UnmarshalFromString(blob, &points); err != nil {
		return core.WrapKind(core.ErrDecodeFailure, err, "points %s", c.Points)
	}
	container, err := measure.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		return err
	}
	return container.Invoke(func(b program.Backend, s sweep.Setting, ml *log.MetricsLogger) error {
		defer ml.Close()
		ctx, cancel := context.WithCancel(context.Background())
		var results []sweep.PointResult
		var g run.Group
		g.Add(func() error {
			start := time.Now()
			var err error
			results, err = sweep.Run(ctx, p, b, points, s)
			ml.Record(p.Kind().String(), len(results), 0, time.Since(start), err)
			if err != nil {
				zap.L().Info(fmt.Sprintf("sweep finished with errors/reason:%s", err))
			}
			return nil
		}, func(error) {
			cancel()
		})
		g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
		if err := g.Run(); err != nil {
			var se run.SignalError
			if !errors.As(err, &se) {
				return err
			}
			zap.L().Info(fmt.Sprintf("sweep interrupted by %s", se.Signal))
		}
		return printJSON(results)
	})
}

type convertCmd struct {
	In  string `long:"in" description:"program file to read" required:"true"`
	Out string `long:"out" description:"file to write" required:"true"`
	To  string `long:"to" description:"output encoding" default:"json" choice:"json" choice:"binary" choice:"tagged"`
}

func (c *convertCmd) Execute(args []string) error {
	logger, err := setup(measure.Conf)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := readProgram(c.In)
	if err != nil {
		return err
	}
	var out []byte
	switch c.To {
	case "binary":
		out, err = p.ToBinary()
	case "tagged":
		var t measurement.Tagged
		t, err = measurement.ToTagged(p.Measurement)
		if err == nil {
			out, err = common.StrictJSON.Marshal(t)
		}
	default:
		var s string
		s, err = p.ToPrettyJSON()
		out = []byte(s)
	}
	if err != nil {
		return err
	}
	if err := common.WriteFile(c.Out, out); err != nil {
		zap.L().Error(fmt.Sprintf("failed to write %s/reason:%s", c.Out, err))
		return err
	}
	zap.L().Info(fmt.Sprintf("converted %s to %s (%s)", c.In, c.Out, strings.ToUpper(c.To)))
	return nil
}

type versionCmd struct{}

func (c *versionCmd) Execute(args []string) error {
	core.SetVersion(measure.Conf, versionByBuildFlag)
	v := core.CurrentVersions()
	fmt.Printf("build: %s\nprogram: %s\nmeasurement: %s\n", core.Version, v.Program, v.Measurement)
	return nil
}

func metricsLogger(m *Measure) *log.MetricsLogger {
	if m.Conf.MetricsDir == "" {
		return nil
	}
	ml, err := log.NewMetricsLogger(m.Conf.MetricsDir)
	if err != nil {
		zap.L().Warn(fmt.Sprintf("metrics log is disabled/reason:%s", err))
		return nil
	}
	return ml
}
