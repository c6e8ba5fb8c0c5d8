package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/backend"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/log"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/program"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/sweep"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

var versionByBuildFlag string
var parser *flags.Parser
var measure *Measure

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	}
	measure = &Measure{}
	setParser(measure)
}

type Measure struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	Backend string `long:"backend" description:"circuit executor" default:"dummy" choice:"dummy" choice:"replay" env:"QIQB_MEASURE_BACKEND"`
}

func setParser(m *Measure) {
	parser = flags.NewParser(m, flags.Default)
	parser.ShortDescription = "qiqb measure"
	parser.LongDescription = "evaluates measurements of quantum programs from registers or by running them on a backend."
	parser.AddCommand("evaluate", "evaluate registers",
		"evaluate the measurement of a program on recorded registers", &evaluateCmd{})
	parser.AddCommand("run", "run a program",
		"run a program with one parameter vector on the selected backend", &runCmd{})
	parser.AddCommand("sweep", "run a parameter sweep",
		"run a program for every parameter vector of a points file", &sweepCmd{})
	parser.AddCommand("convert", "convert a program",
		"convert a program file between json, binary and tagged encodings", &convertCmd{})
	parser.AddCommand("version", "print versions",
		"print the build, program and measurement versions", &versionCmd{})
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Fprintf(os.Stderr, "failed to run, because %s\n", err)
		}
		os.Exit(code)
	}
}

func main() {
	parse()
}

func (m *Measure) provideDIContainer() (c *dig.Container, err error) {
	c = dig.New()
	err = c.Provide(func() (backend.CircuitExecutor, error) {
		switch m.DIContainerParameters.Backend {
		case backend.DummyExecutorName:
			return backend.NewDummyExecutor()
		case backend.ReplayExecutorName:
			return backend.NewReplayExecutor()
		default:
			return nil, fmt.Errorf("%s is an unknown backend", m.DIContainerParameters.Backend)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func(e backend.CircuitExecutor) program.Backend {
		return backend.NewEvaluatingBackend(e)
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(sweep.LoadSetting)
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (*log.MetricsLogger, error) {
		if m.Conf.MetricsDir == "" {
			return nil, nil
		}
		return log.NewMetricsLogger(m.Conf.MetricsDir)
	})
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

// setup installs the logger and reads the setting file. A missing setting
// file leaves every component on its defaults.
func setup(conf *core.Conf) (*zap.Logger, error) {
	logger, err := log.SetZap(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger. Reason:%s\n", err)
		return nil, err
	}
	core.SetVersion(conf, versionByBuildFlag)
	log.LogVersion()

	core.ResetSetting()
	registerSetting()
	if _, err := os.Stat(conf.SettingPath); err != nil {
		zap.L().Debug(fmt.Sprintf("no setting file at %s, using defaults", conf.SettingPath))
		return logger, nil
	}
	if err := core.ParseSettingFromPath(conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return logger, err
	}
	return logger, nil
}

func registerSetting() {
	core.RegisterSetting(backend.DummyExecutorName, backend.NewDummySetting())
	core.RegisterSetting(backend.ReplayExecutorName, backend.NewReplaySetting())
	core.RegisterSetting(sweep.SettingName, sweep.NewSetting())
}
