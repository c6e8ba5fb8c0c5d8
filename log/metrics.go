package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oqtopus-team/oqtopus-engine/measureapp/common"
	"go.uber.org/zap"
)

const (
	resultCountKeyInMetrics = "result_count"
	shotCountKeyInMetrics   = "shot_count"
	elapsedKeyInMetrics     = "elapsed_ms"
	kindKeyInMetrics        = "kind"
	failedKeyInMetrics      = "failed"
)

// MetricsLogger appends one JSON line per evaluation to
// metrics-YYYY-MM-DD.log in its directory.
type MetricsLogger struct {
	dl     *dailyLogger
	logger *slog.Logger
}

func NewMetricsLogger(fileDir string) (*MetricsLogger, error) {
	if err := common.IsDirWritable(fileDir); err != nil {
		zap.L().Error("failed to set up metrics log", zap.Error(err))
		return nil, fmt.Errorf("failed to write to %s: %w", fileDir, err)
	}
	dl := newDailyLogger(fileDir)
	return &MetricsLogger{
		dl:     dl,
		logger: slog.New(slog.NewJSONHandler(dl, nil)),
	}, nil
}

// Record logs the outcome of one run. A nil receiver discards it, so
// callers without a metrics directory need no checks.
func (m *MetricsLogger) Record(kind string, results, shots int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.logger.Info(
		"Metrics",
		slog.String(kindKeyInMetrics, kind),
		slog.Int(resultCountKeyInMetrics, results),
		slog.Int(shotCountKeyInMetrics, shots),
		slog.Int64(elapsedKeyInMetrics, elapsed.Milliseconds()),
		slog.Bool(failedKeyInMetrics, err != nil),
	)
}

func (m *MetricsLogger) Close() error {
	if m == nil {
		return nil
	}
	return m.dl.Close()
}

type dailyLogger struct {
	mu              sync.Mutex
	fileDir         string
	currentFileName string
	file            *os.File
	now             func() time.Time
}

func newDailyLogger(fileDir string) *dailyLogger {
	return &dailyLogger{
		fileDir: fileDir,
		now:     time.Now,
	}
}

func (dl *dailyLogger) fileName() string {
	return fmt.Sprintf("metrics-%s.log", dl.now().Format("2006-01-02"))
}

func (dl *dailyLogger) Write(p []byte) (n int, err error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	fileName := dl.fileName()
	if dl.file == nil || dl.currentFileName != fileName {
		if dl.file != nil {
			dl.file.Close()
		}
		var err error
		dl.file, err = os.OpenFile(filepath.Join(dl.fileDir, fileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, err
		}
		dl.currentFileName = fileName
	}

	return dl.file.Write(p)
}

func (dl *dailyLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		err := dl.file.Close()
		dl.file = nil
		return err
	}
	return nil
}
