package loadgen

import "time"

// Defaults applied by Normalize.
const (
	DefaultBaseURL    = "http://localhost:9080"
	DefaultProgramID  = "loadgen"
	DefaultCandidates = 1000
	DefaultTopN       = 25
	DefaultTimeout    = 30 * time.Second
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	progressInterval        = time.Second
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	logFilePermission    = 0o600
	directoryPermission  = 0o750
	timestampLayout      = "20060102_150405"
)
