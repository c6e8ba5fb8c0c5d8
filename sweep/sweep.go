// Package sweep runs one quantum program for many parameter vectors on a
// pool of workers.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/program"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const SettingName = "sweep"

type Setting struct {
	Workers   int `toml:"workers"`
	MaxPoints int `toml:"max_points"`
}

func NewSetting() Setting {
	return Setting{
		Workers:   4,
		MaxPoints: 10000,
	}
}

// LoadSetting reads [com.sweep] on top of the defaults.
func LoadSetting() (Setting, error) {
	s := NewSetting()
	if _, err := core.DecodeComponentSetting(SettingName, &s); err != nil {
		return Setting{}, err
	}
	return s, nil
}

// PointResult is the outcome of one parameter vector. Values is set for
// programs returning expectation values, Registers for ClassicalRegister
// programs.
type PointResult struct {
	ID         string              `json:"id"`
	Index      int                 `json:"index"`
	Parameters []float64           `json:"parameters"`
	Values     map[string]float64  `json:"values,omitempty"`
	Registers  *register.Registers `json:"registers,omitempty"`
	Started    strfmt.DateTime     `json:"started"`
	Ended      strfmt.DateTime     `json:"ended"`
	Err        error               `json:"-"`
	Error      string              `json:"error,omitempty"`
}

func (r PointResult) Elapsed() time.Duration {
	return time.Time(r.Ended).Sub(time.Time(r.Started))
}

// Run executes p once per entry of points and returns the results in the
// order of points. Failed points keep their error in PointResult.Err and
// the returned error combines all of them.
func Run(ctx context.Context, p *program.QuantumProgram, backend program.Backend,
	points [][]float64, setting Setting) ([]PointResult, error) {
	if setting.Workers <= 0 {
		return nil, errors.Errorf("workers must be positive, got %d", setting.Workers)
	}
	q := newPointQueue(setting.MaxPoints)
	for i, params := range points {
		if err := q.Put(i, params); err != nil {
			return nil, err
		}
	}
	workers := setting.Workers
	if workers > len(points) {
		workers = len(points)
	}
	zap.L().Debug(fmt.Sprintf("starting a %s sweep of %d points on %d workers", p.Kind(), len(points), workers))

	results := make([]PointResult, len(points))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				pt, ok := q.Next()
				if !ok {
					return
				}
				results[pt.index] = runPoint(ctx, p, backend, pt)
			}
		}()
	}
	wg.Wait()

	var errs error
	for _, r := range results {
		if r.Err != nil {
			errs = multierr.Append(errs, errors.Wrapf(r.Err, "point %d", r.Index))
		}
	}
	if errs != nil {
		zap.L().Info(fmt.Sprintf("sweep finished with %d failed points", len(multierr.Errors(errs))))
	}
	return results, errs
}

func runPoint(ctx context.Context, p *program.QuantumProgram, backend program.Backend, pt *point) (r PointResult) {
	r = PointResult{
		ID:         uuid.NewString(),
		Index:      pt.index,
		Parameters: pt.parameters,
		Started:    strfmt.DateTime(time.Now()),
	}
	defer func() {
		r.Ended = strfmt.DateTime(time.Now())
	}()
	if err := ctx.Err(); err != nil {
		r.fail(err)
		return r
	}
	if p.Kind().ReturnsExpectationValues() {
		values, err := p.Run(ctx, backend, pt.parameters)
		if err != nil {
			r.fail(err)
			return r
		}
		r.Values = values
	} else {
		regs, err := p.RunRegisters(ctx, backend, pt.parameters)
		if err != nil {
			r.fail(err)
			return r
		}
		r.Registers = &regs
	}
	return r
}

func (r *PointResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
	zap.L().Debug(fmt.Sprintf("point %d(%s) failed/reason:%s", r.Index, r.ID, err))
}
