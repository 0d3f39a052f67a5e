// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/EXCCoin/scdb/internal/scdblog"
	"github.com/EXCCoin/scdb/mainchain"
	"github.com/EXCCoin/scdb/notify"
	"github.com/EXCCoin/scdb/stateengine"
)

// logRotator writes to stdout and a rotated log file simultaneously.
// It is nil until initLogRotator runs; loggers are usable (they simply
// don't rotate to disk) before the data directory is known.
var logRotator *rotator.Rotator

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var backend = slog.NewBackend(logWriter{})

// subsystemLoggers names every package-level logger this daemon wires,
// one per subsystem tag.
var subsystemLoggers = map[string]slog.Logger{
	"SCDB": backend.Logger("SCDB"),
	"ENGN": backend.Logger("ENGN"),
	"NTFY": backend.Logger("NTFY"),
	"MNCH": backend.Logger("MNCH"),
}

var log = subsystemLoggers["SCDB"]

func init() {
	scdblog.Backend = backend
	stateengine.UseLogger(subsystemLoggers["ENGN"])
	notify.UseLogger(subsystemLoggers["NTFY"])
	mainchain.UseLogger(subsystemLoggers["MNCH"])
}

// initLogRotator creates a rotating log file at logFile. It must be
// called before any substantial logging happens if file output is
// wanted.
func initLogRotator(logFile string) error {
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("initLogRotator: %w", err)
	}
	logRotator = r
	return nil
}

// setLogLevels sets every subsystem logger to level, returning an
// error if level does not name a known slog.Level.
func setLogLevels(levelStr string) error {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelStr)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}
