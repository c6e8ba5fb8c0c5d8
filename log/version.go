package log

import (
	"fmt"

	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"go.uber.org/zap"
)

func VersionFields() []zap.Field {
	v := core.CurrentVersions()
	return []zap.Field{
		zap.String("build", core.Version),
		zap.String("program", v.Program),
		zap.String("measurement", v.Measurement),
	}
}

func LogVersion() {
	zap.L().Debug(fmt.Sprintf("Measure version:%s", core.Version), VersionFields()...)
}
