package config

const (
	defaultLedgerPath      = "~/scribe/ledger.xlsx"
	defaultLogDir          = "~/.local/share/scribe/logs"
	defaultCaptureMode     = ModeAuto
	defaultIntervalSeconds = 5
	defaultCommandTimeout  = 2
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	// MinIntervalSeconds is the shortest auto-capture interval accepted.
	MinIntervalSeconds = 3
)

// Capture modes.
const (
	ModeAuto  = "auto"
	ModeEvent = "event"
	ModeWatch = "watch"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Ledger: defaultLedgerPath,
			LogDir: defaultLogDir,
		},
		Capture: Capture{
			Mode:                  defaultCaptureMode,
			IntervalSeconds:       defaultIntervalSeconds,
			CommandTimeoutSeconds: defaultCommandTimeout,
		},
		Output: Output{
			PrintFields: []string{"卦象名字"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
