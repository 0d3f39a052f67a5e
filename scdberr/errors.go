// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scdberr defines the error kinds SCDB components diagnose
// internally. The public mutation methods on Registry, DepositLedger,
// WTJoinStore, ScoreBook, and StateEngine still return a plain bool
// (that is the load-bearing consensus contract), but callers that need
// to tell "malformed/arithmetic, fall back to all-ignore" apart from
// "capacity/invariant, reject outright" without string-matching an
// error message can use these codes in their own diagnostics.
package scdberr

// ErrorCode classifies why an SCDB operation declined to proceed.
type ErrorCode int

const (
	ErrInvalidSidechain ErrorCode = iota
	ErrCapacityExceeded
	ErrDuplicateEntry
	ErrMalformedScript
	ErrArithmeticAbort
	ErrInvariantViolation
	ErrUpstreamUnavailable
)

var codeStrings = map[ErrorCode]string{
	ErrInvalidSidechain:    "invalid sidechain",
	ErrCapacityExceeded:    "capacity exceeded",
	ErrDuplicateEntry:      "duplicate entry",
	ErrMalformedScript:     "malformed script",
	ErrArithmeticAbort:     "arithmetic abort",
	ErrInvariantViolation:  "invariant violation",
	ErrUpstreamUnavailable: "upstream unavailable",
}

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	if s, ok := codeStrings[c]; ok {
		return s
	}
	return "unknown error"
}

// ScdbError pairs an ErrorCode with a human-readable description, so
// call sites can dispatch on category rather than matching text.
type ScdbError struct {
	Code        ErrorCode
	Description string
}

// Error implements the error interface.
func (e ScdbError) Error() string {
	return e.Description
}

// New builds a ScdbError for code with description.
func New(code ErrorCode, description string) ScdbError {
	return ScdbError{Code: code, Description: description}
}

// FallsBackToAllIgnore reports whether an error of this code should,
// per the StateEngine's apply_block_coinbase contract, trigger the
// all-ignore fallback ballot rather than an outright rejection of the
// block's update.
func (c ErrorCode) FallsBackToAllIgnore() bool {
	return c == ErrMalformedScript || c == ErrArithmeticAbort
}
