// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry holds the fixed, ordered table of sidechains SCDB
// knows about and the single definition of what makes a sidechain ID
// valid.
package registry

import "github.com/EXCCoin/scdb/scdbtypes"

// Built-in sidechain IDs, matching the registry rows tests are written
// against.
const (
	SidechainTest      uint8 = 0
	SidechainHivemind   uint8 = 1
	SidechainWimble     uint8 = 2
)

// SidechainMaxWT is the maximum number of distinct live WT^ candidates
// a single sidechain may carry at once.
const SidechainMaxWT = 3

// Default is the built-in registry used by a standard SCDB deployment.
// Order is significant: the WireCodec encodes and decodes sidechains in
// this order.
var Default = New([]scdbtypes.Sidechain{
	{ID: SidechainTest, Name: "SIDECHAIN_TEST", WaitPeriod: 100, VerificationPeriod: 200, MinWorkScore: 100},
	{ID: SidechainHivemind, Name: "SIDECHAIN_HIVEMIND", WaitPeriod: 200, VerificationPeriod: 400, MinWorkScore: 200},
	{ID: SidechainWimble, Name: "SIDECHAIN_WIMBLE", WaitPeriod: 200, VerificationPeriod: 400, MinWorkScore: 200},
})

// Registry is an immutable, ordered table of sidechains. The zero value
// is not usable; construct one with New.
type Registry struct {
	sidechains []scdbtypes.Sidechain
}

// New builds a Registry from rows in the order they should be iterated,
// encoded, and decoded. The caller retains no further access to rows;
// New copies it.
func New(rows []scdbtypes.Sidechain) *Registry {
	cp := make([]scdbtypes.Sidechain, len(rows))
	copy(cp, rows)
	return &Registry{sidechains: cp}
}

// Len returns the number of rows in the registry.
func (r *Registry) Len() int {
	return len(r.sidechains)
}

// IsValid reports whether sid refers to a row in the registry. Per the
// resolved open question, any index greater than or equal to the
// registry's length is invalid; there is no other invalidity
// condition once a row is in the table.
func (r *Registry) IsValid(sid uint8) bool {
	return int(sid) < len(r.sidechains)
}

// Get returns the registry row for sid and whether it was found.
func (r *Registry) Get(sid uint8) (scdbtypes.Sidechain, bool) {
	if !r.IsValid(sid) {
		return scdbtypes.Sidechain{}, false
	}
	return r.sidechains[sid], true
}

// MustGet returns the registry row for sid. It panics if sid is
// invalid; callers must check IsValid first, which every call site in
// this module does before reaching MustGet.
func (r *Registry) MustGet(sid uint8) scdbtypes.Sidechain {
	s, ok := r.Get(sid)
	if !ok {
		panic("registry: MustGet called with invalid sidechain id")
	}
	return s
}

// All returns the registry rows in their fixed iteration order. The
// returned slice is owned by the caller; mutating it has no effect on
// the registry.
func (r *Registry) All() []scdbtypes.Sidechain {
	cp := make([]scdbtypes.Sidechain, len(r.sidechains))
	copy(cp, r.sidechains)
	return cp
}
