// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wirecodec implements the bit-exact wire format SCDB uses to
// carry a block's vote matrix in a coinbase OP_RETURN output, and the
// companion deposit-output format that credits a sidechain recipient.
// Nothing here inspects ScoreBook state; it only encodes and decodes
// bytes, and callers are responsible for deciding what the bytes mean.
package wirecodec

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/txscript/v4"
)

// Wire symbols. These values, once shipped, must never change without
// a version bump: every byte in a state script is consensus data.
const (
	// OpReturn is the parent chain's unspendable-output opcode that
	// introduces every state script.
	OpReturn = txscript.OP_RETURN

	// ScopVersion is the only state-script version this package
	// understands.
	ScopVersion byte = 0x00

	// ScopVersionDelim separates the version byte from the vote stream.
	ScopVersionDelim byte = 0x3a

	// ScopSCDelim moves the cursor to the next sidechain.
	ScopSCDelim byte = 0x3b

	// ScopWTDelim moves the cursor to the next WT^ within a sidechain.
	ScopWTDelim byte = 0x7c

	// ScopReject, ScopVerify, and ScopIgnore are the three vote bytes:
	// downvote, upvote, and abstain respectively.
	ScopReject byte = 0x72
	ScopVerify byte = 0x76
	ScopIgnore byte = 0x69

	// OpCheckWorkScore is a reserved opcode repurposed from the parent
	// chain's NOP pool to terminate a deposit output script.
	OpCheckWorkScore = txscript.OP_NOP10
)

// minStateScriptLen is the shortest a parseable state script can be:
// OP_RETURN, version, delimiter, and at least one more byte to walk.
const minStateScriptLen = 4

// ErrMalformedScript is returned when a byte sequence does not have the
// shape Parse or ExtractDeposit require.
var ErrMalformedScript = errors.New("wirecodec: malformed script")

// Vote is one of the three ballot values a miner may cast on a WT^
// candidate in a given block.
type Vote byte

const (
	VoteReject Vote = Vote(ScopReject)
	VoteVerify Vote = Vote(ScopVerify)
	VoteIgnore Vote = Vote(ScopIgnore)
)

// String implements fmt.Stringer.
func (v Vote) String() string {
	switch byte(v) {
	case ScopReject:
		return "reject"
	case ScopVerify:
		return "verify"
	case ScopIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("Vote(0x%02x)", byte(v))
	}
}

func isVoteByte(b byte) bool {
	return b == ScopReject || b == ScopVerify || b == ScopIgnore
}

// VoteEntry is a single (sidechain cursor, WT^ cursor, vote) triple
// recorded while walking a state script, in the order it was found.
type VoteEntry struct {
	SidechainIndex int
	WTIndex        int
	Vote           Vote
}

// Votes2D is the result of parsing a state script: every vote found, in
// script order. In a script built by Encode the same (SidechainIndex,
// WTIndex) pair never appears twice, since Encode writes one vote per
// cursor position; Parse does not reject a script that repeats a pair
// and returns every occurrence.
type Votes2D struct {
	Entries []VoteEntry
}

// HasStateScriptHeader reports whether script begins with the
// OP_RETURN / version / version-delimiter triple that marks it as a
// candidate state script. It does not validate anything past that;
// callers use it to collect candidate outputs before handing exactly
// one of them to Parse.
func HasStateScriptHeader(script []byte) bool {
	return len(script) >= 3 &&
		script[0] == OpReturn &&
		script[1] == ScopVersion &&
		script[2] == ScopVersionDelim
}

// Parse decodes a state script into its vote matrix. It fails only on
// a malformed header; once the header is accepted, every remaining
// byte is either a delimiter, a recognized vote, or silently skipped
// (forward compatibility for vote kinds this build does not know
// about). Parse never aborts partway through a well-headed script.
func Parse(script []byte) (Votes2D, error) {
	if len(script) < minStateScriptLen || !HasStateScriptHeader(script) {
		return Votes2D{}, ErrMalformedScript
	}

	var votes Votes2D
	sidCursor, wtCursor := 0, 0
	for _, b := range script[3:] {
		switch {
		case b == ScopWTDelim:
			wtCursor++
		case b == ScopSCDelim:
			wtCursor = 0
			sidCursor++
		case isVoteByte(b):
			votes.Entries = append(votes.Entries, VoteEntry{
				SidechainIndex: sidCursor,
				WTIndex:        wtCursor,
				Vote:           Vote(b),
			})
		default:
			// Unknown byte: skip it. A future version may define new
			// vote kinds here; this build must not treat them as fatal.
		}
	}
	return votes, nil
}

// Encode builds the state script for votes, a per-sidechain slice of
// per-WT^ votes in registry order and ScoreBook insertion order
// respectively. A sidechain with no live WT^ contributes only its
// trailing delimiter (or nothing, if it is the last registry entry). If
// every sidechain is empty, Encode returns an empty script; there is
// nothing to say about an SCDB with no live state.
func Encode(votes [][]Vote) []byte {
	anyLive := false
	for _, sidVotes := range votes {
		if len(sidVotes) > 0 {
			anyLive = true
			break
		}
	}
	if !anyLive {
		return nil
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(OpReturn)
	builder.AddOp(ScopVersion)
	builder.AddOp(ScopVersionDelim)
	for sidIdx, sidVotes := range votes {
		for wtIdx, v := range sidVotes {
			builder.AddOp(byte(v))
			if wtIdx != len(sidVotes)-1 {
				builder.AddOp(ScopWTDelim)
			}
		}
		if sidIdx != len(votes)-1 {
			builder.AddOp(ScopSCDelim)
		}
	}
	script, err := builder.Script()
	if err != nil {
		// The script builder only fails when the result exceeds the
		// maximum standard script size, which a vote stream bounded by
		// SidechainMaxWT candidates per a small registry never reaches.
		panic(fmt.Sprintf("wirecodec: unreachable encode failure: %v", err))
	}
	return script
}
