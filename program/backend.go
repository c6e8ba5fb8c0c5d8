package program

//go:generate mockgen -source=backend.go -destination=mock_backend.go -package=program

import (
	"context"

	"github.com/oqtopus-team/oqtopus-engine/measureapp/measurement"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/register"
)

// Backend executes measurements whose parameters have been substituted.
type Backend interface {
	// RunMeasurement runs every circuit of meas and returns its expectation
	// values.
	RunMeasurement(ctx context.Context, meas measurement.Measurement) (map[string]float64, error)
	// RunMeasurementRegisters runs every circuit of meas and returns the raw
	// registers.
	RunMeasurementRegisters(ctx context.Context, meas measurement.Measurement) (register.Registers, error)
}
