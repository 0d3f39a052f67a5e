// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wtjoinstore caches the full withdrawal-bundle transactions
// that back the wtxids ScoreBook scores, keyed by hash and bounded in
// both total size and per-sidechain occupancy.
package wtjoinstore

import (
	"sync"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
	"github.com/EXCCoin/exccd/wire"
	"github.com/jrick/bitset"

	"github.com/EXCCoin/scdb/registry"
)

// Store is a capacity-bounded cache of WT^ transactions. The zero
// value is not usable; construct one with New.
type Store struct {
	mtx      sync.RWMutex
	reg      *registry.Registry
	entries  map[chainhash.Hash]uint8 // wtxid -> sidechain id
	byHash   map[chainhash.Hash]*wire.MsgTx
	occupied map[uint8]bitset.Bytes // sidechain id -> which of its SidechainMaxWT slots are in use
	slotOf   map[chainhash.Hash]int // wtxid -> slot index within its sidechain's bitset
}

// New builds an empty Store bounded to reg's SidechainMaxWT*len(reg)
// capacity.
func New(reg *registry.Registry) *Store {
	return &Store{
		reg:      reg,
		entries:  make(map[chainhash.Hash]uint8),
		byHash:   make(map[chainhash.Hash]*wire.MsgTx),
		occupied: make(map[uint8]bitset.Bytes),
		slotOf:   make(map[chainhash.Hash]int),
	}
}

// capacity returns the total number of WT^ transactions this Store may
// hold across every sidechain.
func (s *Store) capacity() int {
	return registry.SidechainMaxWT * s.reg.Len()
}

// freeSlot returns the index of an unoccupied slot for sid, or -1 if
// sid already holds SidechainMaxWT live candidates.
func (s *Store) freeSlot(sid uint8) int {
	occ, ok := s.occupied[sid]
	if !ok {
		return 0
	}
	for i := 0; i < registry.SidechainMaxWT; i++ {
		if !occ.Get(i) {
			return i
		}
	}
	return -1
}

// Add caches tx under the sidechain sid. It fails if the store is at
// global capacity, if sid already holds SidechainMaxWT live
// candidates, if sid is not a registered sidechain, or if tx's hash is
// already cached.
func (s *Store) Add(sid uint8, tx *wire.MsgTx) bool {
	if !s.reg.IsValid(sid) || tx == nil {
		return false
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(s.byHash) >= s.capacity() {
		return false
	}
	hash := tx.TxHash()
	if _, ok := s.byHash[hash]; ok {
		return false
	}
	slot := s.freeSlot(sid)
	if slot < 0 {
		return false
	}

	occ, ok := s.occupied[sid]
	if !ok {
		occ = bitset.NewBytes(registry.SidechainMaxWT)
		s.occupied[sid] = occ
	}
	occ.Set(slot)
	s.byHash[hash] = tx
	s.entries[hash] = sid
	s.slotOf[hash] = slot
	return true
}

// Remove evicts wtxid from the store, freeing both its global capacity
// slot and its per-sidechain occupancy slot so a later candidate can
// reuse them. It reports whether wtxid was present. Callers are
// expected to remove a candidate once it has expired (blocks_left
// reaches 0); nothing in this package decides that on its own.
func (s *Store) Remove(wtxid chainhash.Hash) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sid, ok := s.entries[wtxid]
	if !ok {
		return false
	}
	if occ, ok := s.occupied[sid]; ok {
		if slot, ok := s.slotOf[wtxid]; ok {
			occ.Unset(slot)
		}
	}
	delete(s.entries, wtxid)
	delete(s.byHash, wtxid)
	delete(s.slotOf, wtxid)
	return true
}

// Get returns the cached transaction for wtxid, if any.
func (s *Store) Get(wtxid chainhash.Hash) (*wire.MsgTx, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	tx, ok := s.byHash[wtxid]
	return tx, ok
}

// Has reports whether wtxid's full transaction is cached.
func (s *Store) Has(wtxid chainhash.Hash) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	_, ok := s.byHash[wtxid]
	return ok
}

// Len returns the total number of transactions currently cached, for
// diagnostics and capacity-aware callers.
func (s *Store) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.byHash)
}
