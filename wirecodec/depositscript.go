// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wirecodec

import "github.com/decred/dcrd/txscript/v4"

// depositScriptLen is the exact byte length of a well-formed deposit
// output script: 1-byte sidechain id, OP_DATA_20, 20 bytes of key ID,
// OP_CHECKWORKSCORE.
const depositScriptLen = 1 + 1 + 20 + 1

// BuildDepositScript builds a deposit output script of the form
// <sidechain_id> <push 20 bytes: key_id> OP_CHECKWORKSCORE.
func BuildDepositScript(sidechainID uint8, keyID [20]byte) []byte {
	builder := txscript.NewScriptBuilder()
	builder.AddOp(sidechainID)
	builder.AddData(keyID[:])
	builder.AddOp(OpCheckWorkScore)
	script, err := builder.Script()
	if err != nil {
		panic("wirecodec: unreachable deposit script build failure: " + err.Error())
	}
	return script
}

// HasDepositScriptShape reports whether script has the exact byte
// layout of a deposit output script: a 1-byte sidechain id, a 20-byte
// data push, and a trailing OP_CHECKWORKSCORE. It does not validate
// that the sidechain id names a registered sidechain or that the key
// ID is non-null; those are DepositLedger's concerns.
func HasDepositScriptShape(script []byte) bool {
	return len(script) == depositScriptLen &&
		script[1] == txscript.OP_DATA_20 &&
		script[depositScriptLen-1] == OpCheckWorkScore
}

// ExtractDeposit extracts the sidechain id and key ID from script if it
// has deposit-script shape. ok is false otherwise.
func ExtractDeposit(script []byte) (sidechainID uint8, keyID [20]byte, ok bool) {
	if !HasDepositScriptShape(script) {
		return 0, keyID, false
	}
	sidechainID = script[0]
	copy(keyID[:], script[2:2+20])
	return sidechainID, keyID, true
}
