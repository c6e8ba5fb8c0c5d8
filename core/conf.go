package core

type Conf struct {
	Version            string `long:"version" description:"version of the measure tool" env:"QIQB_MEASURE_VERSION"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"QIQB_MEASURE_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QIQB_MEASURE_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"QIQB_MEASURE_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QIQB_MEASURE_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QIQB_MEASURE_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QIQB_MEASURE_LOG_ROTATION_MAX_DAYS"`
	MetricsDir         string `long:"metrics-dir" description:"directory of the daily metrics log, disabled when empty" env:"QIQB_MEASURE_METRICS_DIR"`
	SettingPath        string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QIQB_MEASURE_SETTING_PATH"`
}
