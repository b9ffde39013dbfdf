package base

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// LogLevel is the severity of a log item, ordered from Verbose to Fatal
//
// LevelUnknown is used for items whose priority isn't recognized
type LogLevel uint8

// Known log levels in ascending severity
const (
	LevelUnknown LogLevel = iota
	LevelVerbose
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

var logLevelIdentifiers = [...]string{"", "V", "D", "I", "W", "E", "WTF"}

var logLevelNames = [...]string{"unknown", "verbose", "debug", "info", "warning", "error", "fatal"}

// LogLevelFromPriority converts binary logcat priority (2-7) to LogLevel
func LogLevelFromPriority(priority byte) LogLevel {
	if priority < 2 || priority > 7 {
		return LevelUnknown
	}
	return LogLevel(priority - 1)
}

// ParseLogLevel parses either an identifier ("W") or a name ("warning"), case-insensitive
func ParseLogLevel(text string) (LogLevel, error) {
	for i := range logLevelNames {
		if i == int(LevelUnknown) {
			continue
		}
		if strings.EqualFold(text, logLevelIdentifiers[i]) || strings.EqualFold(text, logLevelNames[i]) {
			return LogLevel(i), nil
		}
	}
	if strings.EqualFold(text, "F") {
		return LevelFatal, nil
	}
	return LevelUnknown, fmt.Errorf("unknown log level '%s'", text)
}

// Identifier returns the short identifier used in logcat output, or empty string for unknown level
func (level LogLevel) Identifier() string {
	if int(level) >= len(logLevelIdentifiers) {
		return ""
	}
	return logLevelIdentifiers[level]
}

// Priority returns the binary logcat priority, or 0 for unknown level
func (level LogLevel) Priority() byte {
	if level == LevelUnknown || int(level) >= len(logLevelNames) {
		return 0
	}
	return byte(level) + 1
}

func (level LogLevel) String() string {
	if int(level) >= len(logLevelNames) {
		return logLevelNames[LevelUnknown]
	}
	return logLevelNames[level]
}

// MarshalYAML exports the name of level
func (level LogLevel) MarshalYAML() (interface{}, error) {
	return level.String(), nil
}

// UnmarshalYAML accepts the same forms as ParseLogLevel
func (level *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseLogLevel(value.Value)
	if err != nil {
		return fmt.Errorf("yaml line %d:%d: %w", value.Line, value.Column, err)
	}
	*level = parsed
	return nil
}
