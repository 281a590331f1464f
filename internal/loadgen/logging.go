package loadgen

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/njrini99-code/Helm-Sports-Labs-sub006/pkg/logger"
)

// SetupLogging initializes the global logger to write to both stdout and a
// log file. If logFile is empty, a timestamped filename is generated. The
// returned closer releases the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "loadgen_" + time.Now().Format(timestampLayout) + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}
