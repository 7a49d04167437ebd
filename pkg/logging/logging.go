// Copyright 2025 The Skewguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides structured logging for skewguard components.
//
// It wraps the standard library slog package with shared defaults:
// JSON output to stderr, LOG_LEVEL environment configuration,
// module/version context on every record, and source location tracking
// at debug level.
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("skewctl", version)
//	    slog.Info("starting", "config", path)
//	}
package logging

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
)

// envLogLevel is the environment variable controlling verbosity when no
// explicit level is given. Defaults to INFO when unset.
const envLogLevel = "LOG_LEVEL"

// ParseLevel converts a level name (case-insensitive) to a slog.Level.
// Recognized: debug, info, warn, warning, error. Empty input returns
// the INFO default.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// envLevel resolves the level from LOG_LEVEL, falling back to INFO for
// unset or unparseable values.
func envLevel() slog.Level {
	level, err := ParseLevel(os.Getenv(envLogLevel))
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewStructuredLogger creates a JSON slog.Logger writing to stderr with
// the given module and version attached to every record. The level
// string is parsed with ParseLevel; unparseable values fall back to the
// LOG_LEVEL environment variable, then INFO. Source location is
// recorded when the effective level is debug.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	l, err := ParseLevel(level)
	if err != nil {
		l = envLevel()
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     l,
		AddSource: l <= slog.LevelDebug,
	})

	return slog.New(handler).With(
		"module", module,
		"version", version,
	)
}

// SetDefaultStructuredLogger installs a structured logger as the slog
// default, with the level taken from the LOG_LEVEL environment variable.
func SetDefaultStructuredLogger(module, version string) {
	slog.SetDefault(NewStructuredLogger(module, version, os.Getenv(envLogLevel)))
}

// SetDefaultStructuredLoggerWithLevel installs a structured logger as
// the slog default with an explicit level, overriding LOG_LEVEL.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level))
}

// NewLogLogger returns a standard library *log.Logger that forwards to
// the default slog handler at the given level, for libraries that only
// accept the legacy logger.
func NewLogLogger(level slog.Level) *log.Logger {
	return slog.NewLogLogger(slog.Default().Handler(), level)
}
