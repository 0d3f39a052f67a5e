// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package depositledger caches accepted sidechain deposits. Inserts are
// all-or-nothing per transaction: if any deposit output a transaction
// carries is invalid, nothing from that transaction is cached.
package depositledger

import (
	"sync"

	"github.com/EXCCoin/exccd/container/apbf"
	"github.com/EXCCoin/exccd/wire"

	"github.com/EXCCoin/scdb/registry"
	"github.com/EXCCoin/scdb/scdbtypes"
	"github.com/EXCCoin/scdb/wirecodec"
)

// filterFalsePositiveRate bounds how often the fast membership
// pre-filter reports a possible match that the exact scan then rules
// out. It never affects correctness, only how often Has/Add fall
// through to the exact scan.
const filterFalsePositiveRate = 0.0001

// IsSidechainDepositFunc validates a deposit-carrying transaction
// against parent-chain consensus rules the core does not implement
// itself (UTXO existence, output value, maturity, and so on). It is an
// external collaborator: Ledger calls it but never inspects its logic.
type IsSidechainDepositFunc func(tx *wire.MsgTx) bool

// Ledger is a deduplicated, per-sidechain-indexed cache of accepted
// deposits. The zero value is not usable; construct one with New.
type Ledger struct {
	mtx         sync.RWMutex
	reg         *registry.Registry
	isDeposit   IsSidechainDepositFunc
	bySidechain map[uint8][]scdbtypes.SidechainDeposit
	filter      *apbf.Filter
}

// New builds an empty Ledger bound to reg. If isDeposit is nil, every
// transaction is treated as satisfying the external deposit predicate;
// callers that need the real parent-chain check must supply it.
func New(reg *registry.Registry, isDeposit IsSidechainDepositFunc) *Ledger {
	if isDeposit == nil {
		isDeposit = func(*wire.MsgTx) bool { return true }
	}
	// Sized for a few tau epochs' worth of deposits per sidechain; being
	// wrong in either direction only changes how often the exact scan
	// runs, never correctness.
	capacity := uint32(registry.SidechainMaxWT) * uint32(reg.Len()+1) * 256
	return &Ledger{
		reg:         reg,
		isDeposit:   isDeposit,
		bySidechain: make(map[uint8][]scdbtypes.SidechainDeposit),
		filter:      apbf.NewFilter(capacity, filterFalsePositiveRate),
	}
}

// depositKey builds the byte key fed to the membership filter.
func depositKey(d scdbtypes.SidechainDeposit) []byte {
	key := make([]byte, 0, 1+scdbtypes.KeyIDSize+32)
	key = append(key, d.SidechainID)
	key = append(key, d.KeyID[:]...)
	hash := d.Dtx.TxHash()
	key = append(key, hash[:]...)
	return key
}

// isNullTx reports whether tx is the default-constructed, empty
// transaction.
func isNullTx(tx *wire.MsgTx) bool {
	return tx == nil || (len(tx.TxIn) == 0 && len(tx.TxOut) == 0)
}

// Add scans every output of tx for a deposit script. If every
// candidate deposit it finds is valid, each one not already cached is
// appended; if any candidate is invalid, Add rejects the whole
// transaction and the ledger is left unchanged.
func (l *Ledger) Add(tx *wire.MsgTx) bool {
	if isNullTx(tx) {
		return false
	}

	var candidates []scdbtypes.SidechainDeposit
	for _, out := range tx.TxOut {
		sid, keyID, ok := wirecodec.ExtractDeposit(out.PkScript)
		if !ok {
			continue
		}
		candidates = append(candidates, scdbtypes.SidechainDeposit{
			SidechainID: sid,
			KeyID:       keyID,
			Dtx:         tx,
		})
	}
	if len(candidates) == 0 {
		return true
	}

	for _, d := range candidates {
		if !l.reg.IsValid(d.SidechainID) {
			return false
		}
		if d.KeyID.IsNull() {
			return false
		}
		if !l.isDeposit(d.Dtx) {
			return false
		}
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()
	for _, d := range candidates {
		if l.has(d) {
			continue
		}
		l.bySidechain[d.SidechainID] = append(l.bySidechain[d.SidechainID], d)
		l.filter.Add(depositKey(d))
	}
	return true
}

// has is the lock-free core of Has, used both externally and while
// already holding the write lock from Add.
func (l *Ledger) has(d scdbtypes.SidechainDeposit) bool {
	if !l.filter.Contains(depositKey(d)) {
		return false
	}
	for _, existing := range l.bySidechain[d.SidechainID] {
		if existing.Equal(d) {
			return true
		}
	}
	return false
}

// Has reports whether an equal deposit is already cached.
func (l *Ledger) Has(d scdbtypes.SidechainDeposit) bool {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.has(d)
}

// Get returns every cached deposit for sid, in the order it was
// inserted.
func (l *Ledger) Get(sid uint8) []scdbtypes.SidechainDeposit {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	cp := make([]scdbtypes.SidechainDeposit, len(l.bySidechain[sid]))
	copy(cp, l.bySidechain[sid])
	return cp
}
