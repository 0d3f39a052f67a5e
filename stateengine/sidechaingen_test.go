// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stateengine

import (
	"github.com/EXCCoin/exccd/wire"

	"github.com/EXCCoin/scdb/wirecodec"
)

// sidechaingen is a small fluent builder for coinbase transactions
// carrying zero, one, or several candidate state scripts, so tests can
// drive ApplyBlockCoinbase across many simulated blocks without
// hand-assembling wire.MsgTx values.
type sidechaingen struct {
	tx *wire.MsgTx
}

// newCoinbase starts a fresh, otherwise-empty coinbase transaction.
func newCoinbase() *sidechaingen {
	tx := wire.NewMsgTx()
	tx.TxIn = append(tx.TxIn, &wire.TxIn{})
	return &sidechaingen{tx: tx}
}

// withStateScript appends votes encoded as a state-script output.
func (g *sidechaingen) withStateScript(votes [][]wirecodec.Vote) *sidechaingen {
	g.tx.AddTxOut(&wire.TxOut{PkScript: wirecodec.Encode(votes)})
	return g
}

// withRawOutput appends an arbitrary output script, used to construct
// malformed or duplicate state-script candidates.
func (g *sidechaingen) withRawOutput(script []byte) *sidechaingen {
	g.tx.AddTxOut(&wire.TxOut{PkScript: script})
	return g
}

func (g *sidechaingen) build() *wire.MsgTx {
	return g.tx
}

func stateScript(votes [][]wirecodec.Vote) []byte {
	return wirecodec.Encode(votes)
}
