// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package depositledger

import (
	"testing"

	"github.com/EXCCoin/exccd/wire"

	"github.com/EXCCoin/scdb/registry"
	"github.com/EXCCoin/scdb/wirecodec"
)

func depositOutput(t *testing.T, sid uint8, last byte) *wire.TxOut {
	t.Helper()
	var keyID [20]byte
	keyID[19] = last
	return &wire.TxOut{PkScript: wirecodec.BuildDepositScript(sid, keyID)}
}

func nonNullTx(outs ...*wire.TxOut) *wire.MsgTx {
	tx := wire.NewMsgTx()
	tx.TxIn = append(tx.TxIn, &wire.TxIn{})
	for _, o := range outs {
		tx.AddTxOut(o)
	}
	return tx
}

func TestAddAndGet(t *testing.T) {
	l := New(registry.Default, nil)
	tx := nonNullTx(depositOutput(t, registry.SidechainTest, 1))

	if ok := l.Add(tx); !ok {
		t.Fatal("Add() = false, want true")
	}
	deposits := l.Get(registry.SidechainTest)
	if len(deposits) != 1 {
		t.Fatalf("Get() returned %d deposits, want 1", len(deposits))
	}
	if !l.Has(deposits[0]) {
		t.Fatal("Has() = false for just-added deposit")
	}
}

func TestAddDeduplicates(t *testing.T) {
	l := New(registry.Default, nil)
	tx := nonNullTx(depositOutput(t, registry.SidechainTest, 1))
	l.Add(tx)
	l.Add(tx)
	if got := len(l.Get(registry.SidechainTest)); got != 1 {
		t.Fatalf("Get() returned %d deposits after duplicate Add, want 1", got)
	}
}

func TestAddRejectsTransactionWithAnyInvalidOutput(t *testing.T) {
	l := New(registry.Default, nil)
	valid := depositOutput(t, registry.SidechainTest, 1)
	var nullKeyID [20]byte
	invalid := &wire.TxOut{PkScript: wirecodec.BuildDepositScript(registry.SidechainTest, nullKeyID)}
	tx := nonNullTx(valid, invalid)

	if ok := l.Add(tx); ok {
		t.Fatal("Add() = true, want false for a transaction with a null key ID output")
	}
	if got := len(l.Get(registry.SidechainTest)); got != 0 {
		t.Fatalf("Get() returned %d deposits, want 0; rejection must be atomic", got)
	}
}

func TestAddRejectsInvalidSidechain(t *testing.T) {
	l := New(registry.Default, nil)
	tx := nonNullTx(depositOutput(t, 200, 1))
	if ok := l.Add(tx); ok {
		t.Fatal("Add() = true, want false for out-of-range sidechain id")
	}
}

func TestAddIgnoresNonDepositOutputs(t *testing.T) {
	l := New(registry.Default, nil)
	tx := nonNullTx(&wire.TxOut{PkScript: []byte{0x00, 0x01, 0x02}})
	if ok := l.Add(tx); !ok {
		t.Fatal("Add() = false, want true; no deposit candidates found is not an error")
	}
	if got := len(l.Get(registry.SidechainTest)); got != 0 {
		t.Fatalf("Get() returned %d deposits, want 0", got)
	}
}

func TestAddRejectsNullTransaction(t *testing.T) {
	l := New(registry.Default, nil)
	if ok := l.Add(wire.NewMsgTx()); ok {
		t.Fatal("Add() = true, want false for a null transaction")
	}
}
