// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scdbjson defines the JSON-RPC command and result types the
// mainchain package exchanges with the parent-chain daemon. It mirrors
// exccd/dcrjson's "plain struct plus NewXxxCmd constructor" convention
// but is restricted to the two calls SCDB actually consumes.
package scdbjson

// ListSidechainDepositsCmd requests every deposit the mainchain daemon
// has observed for a given sidechain.
type ListSidechainDepositsCmd struct {
	SidechainID uint8 `json:"sidechainid"`
}

// NewListSidechainDepositsCmd returns a new ListSidechainDepositsCmd.
func NewListSidechainDepositsCmd(sidechainID uint8) *ListSidechainDepositsCmd {
	return &ListSidechainDepositsCmd{SidechainID: sidechainID}
}

// SidechainDepositResult is one entry of a listsidechaindeposits reply.
type SidechainDepositResult struct {
	SidechainID uint8  `json:"sidechainid"`
	KeyID       string `json:"keyid"`
	RawTx       string `json:"rawtx"`
}

// SubmitWTJoinCmd broadcasts a locally-assembled WT^ to the mainchain.
type SubmitWTJoinCmd struct {
	Wtxid string `json:"wtxid"`
	RawTx string `json:"rawtx"`
}

// NewSubmitWTJoinCmd returns a new SubmitWTJoinCmd.
func NewSubmitWTJoinCmd(wtxid, rawTx string) *SubmitWTJoinCmd {
	return &SubmitWTJoinCmd{Wtxid: wtxid, RawTx: rawTx}
}

// SubmitWTJoinResult reports whether the mainchain daemon accepted the
// submission.
type SubmitWTJoinResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}
