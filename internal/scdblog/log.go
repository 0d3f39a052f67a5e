// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scdblog provides the shared logging backend every SCDB
// subsystem logger writes through. Individual packages keep their own
// unexported `log` variable (defaulting to slog.Disabled) and a
// UseLogger setter; cmd/scdbd calls those setters once it has built
// real per-subsystem loggers from Backend.
package scdblog

import (
	"os"

	"github.com/decred/slog"
)

// Backend is the process-wide logging backend. cmd/scdbd repoints its
// writer at a rotating log file; until then it writes to stdout.
var Backend = slog.NewBackend(os.Stdout)

// NewSubsystemLogger returns a Logger tagged with subsystem, ready to
// be handed to that subsystem's UseLogger.
func NewSubsystemLogger(subsystem string) slog.Logger {
	return Backend.Logger(subsystem)
}
