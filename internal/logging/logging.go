package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// ServiceName identifies this program in log sinks.
const ServiceName = "airsim"

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")),
	)
}
