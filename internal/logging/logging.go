package logging

import (
	"path/filepath"
	"strings"
	"time"
)

// LogFilePath returns the log file for one session, named
// <app>[.<scenario>].<yyyymmdd_hhmmss>.log under logsDir. Characters of
// scenario that don't belong in a file name become underscores.
func LogFilePath(logsDir, appName, scenario string, sessionStart time.Time) string {
	parts := []string{appName}
	if name := fileSafe(scenario); name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, sessionStart.Format("20060102_150405"), "log")
	return filepath.Join(logsDir, strings.Join(parts, "."))
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
}
