//go:build unit
// +build unit

package log

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var out []map[string]interface{}
	s := bufio.NewScanner(f)
	for s.Scan() {
		var line map[string]interface{}
		require.NoError(t, jsoniter.Unmarshal(s.Bytes(), &line))
		out = append(out, line)
	}
	return out
}

func TestMetricsLogger(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMetricsLogger(dir)
	require.NoError(t, err)
	m.Record("BasisRotation", 2, 400, 1500*time.Millisecond, nil)
	m.Record("ClassicalRegister", 0, 10, time.Millisecond, errors.New("failed"))
	require.NoError(t, m.Close())

	lines := readLines(t, filepath.Join(dir, m.dl.fileName()))
	require.Len(t, lines, 2)
	assert.Equal(t, "Metrics", lines[0]["msg"])
	assert.Equal(t, "BasisRotation", lines[0][kindKeyInMetrics])
	assert.Equal(t, float64(2), lines[0][resultCountKeyInMetrics])
	assert.Equal(t, float64(400), lines[0][shotCountKeyInMetrics])
	assert.Equal(t, float64(1500), lines[0][elapsedKeyInMetrics])
	assert.Equal(t, false, lines[0][failedKeyInMetrics])
	assert.Equal(t, true, lines[1][failedKeyInMetrics])
}

func TestMetricsLoggerNil(t *testing.T) {
	var m *MetricsLogger
	m.Record("Cheated", 1, 1, time.Second, nil)
	assert.NoError(t, m.Close())
}

func TestNewMetricsLoggerMissingDir(t *testing.T) {
	_, err := NewMetricsLogger(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDailyLoggerRollsOver(t *testing.T) {
	dir := t.TempDir()
	dl := newDailyLogger(dir)
	day := time.Date(2024, 4, 1, 23, 59, 0, 0, time.UTC)
	dl.now = func() time.Time { return day }
	_, err := dl.Write([]byte("first\n"))
	require.NoError(t, err)
	day = day.Add(2 * time.Minute)
	_, err = dl.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, dl.Close())

	first, err := os.ReadFile(filepath.Join(dir, "metrics-2024-04-01.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(first))
	second, err := os.ReadFile(filepath.Join(dir, "metrics-2024-04-02.log"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(second))
}
