package core

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var Version string

const NoVersion = "no_version_info"

// Versions of the two layers that take part in serialized payloads.
// Only the first two dot-separated components are compared.
const (
	ProgramVersion     = "1.4.0"
	MeasurementVersion = "1.4.0"
)

type Versions struct {
	Program     string `json:"program" msgpack:"program"`
	Measurement string `json:"measurement" msgpack:"measurement"`
}

func CurrentVersions() Versions {
	return Versions{
		Program:     ProgramVersion,
		Measurement: MeasurementVersion,
	}
}

// CheckCompatible returns ErrVersionMismatch unless both identifiers share
// major and minor with the versions of this build.
func (v Versions) CheckCompatible() error {
	current := CurrentVersions()
	if !SameMajorMinor(v.Program, current.Program) {
		return NewKindError(ErrVersionMismatch,
			"program version %s is not compatible with %s", v.Program, current.Program)
	}
	if !SameMajorMinor(v.Measurement, current.Measurement) {
		return NewKindError(ErrVersionMismatch,
			"measurement version %s is not compatible with %s", v.Measurement, current.Measurement)
	}
	return nil
}

func SameMajorMinor(a, b string) bool {
	ma, okA := majorMinor(a)
	mb, okB := majorMinor(b)
	return okA && okB && ma == mb
}

func majorMinor(v string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "." + parts[1], true
}

func SetVersion(c *Conf, versionByBuildFlag string) {
	if versionByBuildFlag != "" {
		Version = versionByBuildFlag
	} else if c.Version != "" {
		Version = c.Version
	} else {
		Version = NoVersion
	}
	zap.L().Info(fmt.Sprintf("Version is %s", Version))
}
