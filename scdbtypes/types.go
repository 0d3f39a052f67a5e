// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scdbtypes defines the data model shared by every sidechain
// coordination database package: the immutable registry row shape, the
// per-block verification record, and the deposit/WT^ value types that
// flow between them.
package scdbtypes

import (
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
	"github.com/EXCCoin/exccd/wire"
	"golang.org/x/crypto/ripemd160"
)

// KeyIDSize is the length in bytes of a sidechain recipient identifier.
const KeyIDSize = 20

// KeyID identifies a recipient on a sidechain. It is the 20-byte hash
// carried by a deposit output's script, the sidechain-side analogue of
// a mainchain pay-to-pubkey-hash address.
type KeyID [KeyIDSize]byte

// IsNull returns true if the key ID is the all-zero value. A null key ID
// never identifies a valid deposit recipient.
func (k KeyID) IsNull() bool {
	return k == KeyID{}
}

// String renders the key ID as hex. This is purely a display aid for
// logs and RPC responses; consensus code must never compare on it.
func (k KeyID) String() string {
	return hex.EncodeToString(k[:])
}

// calcHash hashes buf with hasher.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 computes ripemd160(blake256(buf)), the sidechain recipient
// hash construction a deposit's KeyID is derived from.
func Hash160(buf []byte) []byte {
	return calcHash(chainhash.HashB(buf), ripemd160.New())
}

// KeyIDFromPubKey derives the KeyID a given serialized public key would
// deposit to.
func KeyIDFromPubKey(serializedPubKey []byte) KeyID {
	var id KeyID
	copy(id[:], Hash160(serializedPubKey))
	return id
}

// Sidechain is one immutable row of the registry: the windowing
// parameters a sidechain's WT^ candidates are scored against.
type Sidechain struct {
	ID                 uint8
	Name                string
	WaitPeriod          uint32
	VerificationPeriod  uint32
	MinWorkScore        uint32
}

// Tau is the length in blocks of one voting epoch: wait period plus
// verification period.
func (s Sidechain) Tau() uint32 {
	return s.WaitPeriod + s.VerificationPeriod
}

// String implements fmt.Stringer for diagnostic logging.
func (s Sidechain) String() string {
	return fmt.Sprintf("Sidechain{id=%d name=%q wait=%d verify=%d min=%d tau=%d}",
		s.ID, s.Name, s.WaitPeriod, s.VerificationPeriod, s.MinWorkScore, s.Tau())
}

// Verification is one entry in a sidechain's scoring log: the state of
// a single WT^ candidate as of one applied block. Verifications are
// immutable once appended; the latest-view query keeps, per Wtxid, the
// Verification with the greatest WorkScore, a later one replacing an
// earlier one only when its WorkScore is equal or greater.
type Verification struct {
	SidechainID uint8
	BlocksLeft  uint32
	WorkScore   uint32
	Wtxid       chainhash.Hash
}

// String implements fmt.Stringer for diagnostic logging.
func (v Verification) String() string {
	return fmt.Sprintf("Verification{sidechain=%d blocksLeft=%d workScore=%d wtxid=%s}",
		v.SidechainID, v.BlocksLeft, v.WorkScore, v.Wtxid)
}

// SidechainDeposit is a parent-chain output that credits a sidechain
// recipient. Equality is structural over all three fields, matching the
// deduplication rule DepositLedger enforces.
type SidechainDeposit struct {
	SidechainID uint8
	KeyID       KeyID
	Dtx         *wire.MsgTx
}

// Equal reports whether d and other refer to the same deposit: same
// sidechain, same recipient, and the same underlying transaction by
// hash. Two deposit values built from structurally identical but
// distinct *wire.MsgTx pointers still compare equal.
func (d SidechainDeposit) Equal(other SidechainDeposit) bool {
	if d.SidechainID != other.SidechainID || d.KeyID != other.KeyID {
		return false
	}
	return txHash(d.Dtx) == txHash(other.Dtx)
}

// String implements fmt.Stringer for diagnostic logging.
func (d SidechainDeposit) String() string {
	return fmt.Sprintf("SidechainDeposit{sidechain=%d keyID=%s dtx=%s}",
		d.SidechainID, d.KeyID, txHash(d.Dtx))
}

// txHash returns the transaction hash of tx, or the zero hash if tx is
// nil, so a null transaction still compares consistently.
func txHash(tx *wire.MsgTx) chainhash.Hash {
	if tx == nil {
		return chainhash.Hash{}
	}
	return tx.TxHash()
}

// WTJoin is the full withdrawal-bundle transaction corresponding to a
// wtxid that has entered a sidechain's scoring log.
type WTJoin struct {
	SidechainID uint8
	Tx          *wire.MsgTx
}

// Wtxid returns the hash identifying this WT^.
func (w WTJoin) Wtxid() chainhash.Hash {
	return txHash(w.Tx)
}
