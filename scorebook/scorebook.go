// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scorebook implements the per-sidechain append-only
// Verification log that backs the withdrawal-bundle voting state
// machine.
package scorebook

import (
	"sync"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"

	"github.com/EXCCoin/scdb/registry"
	"github.com/EXCCoin/scdb/scdbtypes"
)

// Book is the voting ledger: one ordered sequence of Verification
// records per sidechain. The zero value is not usable; construct one
// with New.
type Book struct {
	mtx    sync.RWMutex
	reg    *registry.Registry
	scores map[uint8][]scdbtypes.Verification
}

// New builds a Book with one empty sequence per entry in reg.
func New(reg *registry.Registry) *Book {
	scores := make(map[uint8][]scdbtypes.Verification, reg.Len())
	for _, sc := range reg.All() {
		scores[sc.ID] = nil
	}
	return &Book{reg: reg, scores: scores}
}

// Update appends a Verification for sid unless dryRun is set, in which
// case it only reports whether the append would be legal. The only
// validation performed here is that sid names a registered sidechain;
// callers (StateEngine) are responsible for sequencing the
// blocks_left/work_score arithmetic correctly before calling Update.
func (b *Book) Update(sid uint8, blocksLeft, workScore uint32, wtxid chainhash.Hash, dryRun bool) bool {
	if !b.reg.IsValid(sid) {
		return false
	}
	if dryRun {
		return true
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.scores[sid] = append(b.scores[sid], scdbtypes.Verification{
		SidechainID: sid,
		BlocksLeft:  blocksLeft,
		WorkScore:   workScore,
		Wtxid:       wtxid,
	})
	return true
}

// Prune permanently removes every log entry for wtxid on sid. Callers
// use this once a candidate has reached its terminal blocks_left == 0
// state: an expired candidate has nothing left to vote on, and leaving
// it in the log would make it reappear in every future Latest view
// forever. It is a no-op if sid is not registered or wtxid has no
// entries.
func (b *Book) Prune(sid uint8, wtxid chainhash.Hash) {
	if !b.reg.IsValid(sid) {
		return
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	log := b.scores[sid]
	kept := log[:0]
	for _, v := range log {
		if v.Wtxid != wtxid {
			kept = append(kept, v)
		}
	}
	b.scores[sid] = kept
}

// Latest returns the latest-per-wtxid view of sid's log: scanning in
// order, the entry with the greatest work_score per distinct wtxid
// wins ties in favor of the later entry, and the result preserves
// first-seen wtxid order.
func (b *Book) Latest(sid uint8) []scdbtypes.Verification {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	return b.latestLocked(sid)
}

func (b *Book) latestLocked(sid uint8) []scdbtypes.Verification {
	log := b.scores[sid]
	order := make([]chainhash.Hash, 0, len(log))
	best := make(map[chainhash.Hash]scdbtypes.Verification, len(log))
	for _, v := range log {
		if _, seen := best[v.Wtxid]; !seen {
			order = append(order, v.Wtxid)
		}
		prior, seen := best[v.Wtxid]
		if !seen || v.WorkScore >= prior.WorkScore {
			best[v.Wtxid] = v
		}
	}
	out := make([]scdbtypes.Verification, len(order))
	for i, wtxid := range order {
		out[i] = best[wtxid]
	}
	return out
}

// CheckWorkScore replays sid's log for wtxid, accumulating a running
// score that only advances on single-step deltas (|entry - score| <=
// 1); any larger jump is skipped rather than rejecting the whole scan.
// This mirrors the original walk exactly, including its first-entry
// quirk: because the running score starts at zero, a candidate whose
// very first recorded work_score is not 0 or 1 is silently skipped on
// that entry.
func (b *Book) CheckWorkScore(sid uint8, wtxid chainhash.Hash) bool {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	sc, ok := b.reg.Get(sid)
	if !ok {
		return false
	}
	var score uint32
	for _, v := range b.scores[sid] {
		if v.Wtxid != wtxid {
			continue
		}
		delta := diff(v.WorkScore, score)
		if delta <= 1 {
			score = v.WorkScore
		}
	}
	return score >= sc.MinWorkScore
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// Best returns the wtxid with the highest work_score in sid's
// latest-per-candidate view, earliest insertion breaking ties. ok is
// false if the view is empty or the best candidate's work_score is
// below the sidechain's min_work_score.
func (b *Book) Best(sid uint8) (wtxid chainhash.Hash, ok bool) {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	sc, regOK := b.reg.Get(sid)
	if !regOK {
		return chainhash.Hash{}, false
	}
	latest := b.latestLocked(sid)
	if len(latest) == 0 {
		return chainhash.Hash{}, false
	}
	bestV := latest[0]
	for _, v := range latest[1:] {
		if v.WorkScore > bestV.WorkScore {
			bestV = v
		}
	}
	if bestV.WorkScore < sc.MinWorkScore {
		return chainhash.Hash{}, false
	}
	return bestV.Wtxid, true
}
