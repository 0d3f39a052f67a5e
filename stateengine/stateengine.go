// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stateengine ties the registry, score book, WT^ store, and
// deposit ledger together into the per-block voting update protocol:
// block ingestion, two-phase check-then-apply updates, state-script
// production, and work-score queries.
package stateengine

import (
	"sync"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
	"github.com/EXCCoin/exccd/wire"
	"github.com/decred/slog"

	"github.com/EXCCoin/scdb/depositledger"
	"github.com/EXCCoin/scdb/notify"
	"github.com/EXCCoin/scdb/registry"
	"github.com/EXCCoin/scdb/scdberr"
	"github.com/EXCCoin/scdb/scdbtypes"
	"github.com/EXCCoin/scdb/scorebook"
	"github.com/EXCCoin/scdb/wirecodec"
	"github.com/EXCCoin/scdb/wtjoinstore"
)

// log is this package's subsystem logger. It is a no-op until
// UseLogger wires in a real one.
var log = slog.Disabled

// UseLogger sets the subsystem logger used by the package.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Engine is the single mutable handle to an SCDB instance. All
// mutating operations (AddWTJoin, AddDeposit, ApplyBlockCoinbase)
// serialize under one exclusive lock spanning the registry, score
// book, WT^ store, and deposit ledger; readers take a shared lock.
// Construct one with New; the zero value is not usable.
type Engine struct {
	mtx    sync.RWMutex
	reg    *registry.Registry
	sb     *scorebook.Book
	wts    *wtjoinstore.Store
	dl     *depositledger.Ledger
	events *notify.Server
}

// New builds an Engine over reg. isDeposit is forwarded to the
// underlying DepositLedger (see depositledger.New); events may be nil,
// in which case notifications are simply not emitted.
func New(reg *registry.Registry, isDeposit depositledger.IsSidechainDepositFunc, events *notify.Server) *Engine {
	return &Engine{
		reg:    reg,
		sb:     scorebook.New(reg),
		wts:    wtjoinstore.New(reg),
		dl:     depositledger.New(reg, isDeposit),
		events: events,
	}
}

// step is one computed ScoreBook update, produced but not yet
// committed by either ApplyBlockCoinbase's paths.
type step struct {
	sid          uint8
	blocksLeft   uint32
	workScore    uint32
	oldWorkScore uint32
	wtxid        chainhash.Hash
}

// AddWTJoin registers tx as a new WT^ candidate for sid with a
// starting Verification of (tau, 0). The capacity- and
// duplicate-bounded WTJoinStore insert happens before the append-only
// ScoreBook insert, so a rejection here never leaves a dangling
// Verification behind: the only way the ScoreBook append can fail
// (an invalid sid) is already ruled out by the time the store accepts
// the candidate.
func (e *Engine) AddWTJoin(sid uint8, tx *wire.MsgTx) bool {
	if tx == nil {
		return false
	}
	sc, ok := e.reg.Get(sid)
	if !ok {
		return false
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if !e.wts.Add(sid, tx) {
		return false
	}
	wtxid := tx.TxHash()
	if !e.sb.Update(sid, sc.Tau(), 0, wtxid, false) {
		log.Errorf("wtjoinstore accepted %s for sidechain %d but scorebook rejected its opening verification", wtxid, sid)
		return false
	}
	return true
}

// AddDeposit delegates to the underlying DepositLedger.
func (e *Engine) AddDeposit(tx *wire.MsgTx) bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.dl.Add(tx)
}

// Deposits returns every cached deposit for sid.
func (e *Engine) Deposits(sid uint8) []scdbtypes.SidechainDeposit {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.dl.Get(sid)
}

// HasState reports whether any sidechain currently has a live WT^
// candidate.
func (e *Engine) HasState() bool {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.hasStateLocked()
}

func (e *Engine) hasStateLocked() bool {
	for _, sc := range e.reg.All() {
		if len(e.sb.Latest(sc.ID)) > 0 {
			return true
		}
	}
	return false
}

// snapshot builds the per-sidechain latest-candidate view, indexed by
// registry position, that both ApplyBlockCoinbase and
// CreateStateScript operate over.
func (e *Engine) snapshot() [][]scdbtypes.Verification {
	all := e.reg.All()
	snap := make([][]scdbtypes.Verification, len(all))
	for i, sc := range all {
		snap[i] = e.sb.Latest(sc.ID)
	}
	return snap
}

// ApplyBlockCoinbase is the per-block entry point that performs the
// voting update. It returns false, leaving SCDB unchanged, if there is
// no live state to update or if the single candidate state script
// names a sidechain or WT^ index outside the live snapshot. A coinbase
// carrying zero or several candidate state scripts, an unparseable
// one, or one whose votes would underflow or decrement an expired
// candidate instead falls back to the all-ignore ballot, which commits
// and returns true unless a live candidate is already at
// blocks_left == 0, in which case nothing is committed and it returns
// false.
func (e *Engine) ApplyBlockCoinbase(coinbase *wire.MsgTx) bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if !e.hasStateLocked() {
		return false
	}

	var candidates [][]byte
	if coinbase != nil {
		for _, out := range coinbase.TxOut {
			if wirecodec.HasStateScriptHeader(out.PkScript) {
				candidates = append(candidates, out.PkScript)
			}
		}
	}

	snap := e.snapshot()

	if len(candidates) != 1 {
		return e.applyAllIgnore(snap)
	}

	votes, err := wirecodec.Parse(candidates[0])
	if err != nil {
		log.Warnf("coinbase carried an unparseable state script, falling back to all-ignore: %v", err)
		return e.applyAllIgnore(snap)
	}

	steps, err := computeVoteSteps(votes, snap)
	if err != nil {
		if scdbErr, ok := err.(scdberr.ScdbError); ok && scdbErr.Code.FallsBackToAllIgnore() {
			log.Warnf("state script failed validation, falling back to all-ignore: %v", err)
			return e.applyAllIgnore(snap)
		}
		log.Warnf("state script rejected: %v", err)
		return false
	}
	e.commit(steps)
	return true
}

// applyAllIgnore casts the implicit all-ignore ballot used when a
// block's coinbase carries zero or more than one candidate state
// script: every live WT^ has its blocks_left decremented with its
// work_score unchanged.
func (e *Engine) applyAllIgnore(snap [][]scdbtypes.Verification) bool {
	steps, err := allIgnoreSteps(snap)
	if err != nil {
		log.Errorf("all-ignore fallback itself failed: %v", err)
		return false
	}
	e.commit(steps)
	return true
}

// computeVoteSteps validates votes against snap and produces the
// ScoreBook update each entry implies. A vote naming a sidechain or
// WT^ index the snapshot does not have is an invariant violation (the
// update is rejected outright); a vote that would decrement an
// already-expired candidate or underflow a reject vote's work_score
// below zero is an arithmetic abort, which ApplyBlockCoinbase falls
// back to the all-ignore ballot for instead of rejecting the block.
func computeVoteSteps(votes wirecodec.Votes2D, snap [][]scdbtypes.Verification) ([]step, error) {
	steps := make([]step, 0, len(votes.Entries))
	for _, entry := range votes.Entries {
		if entry.SidechainIndex < 0 || entry.SidechainIndex >= len(snap) {
			return nil, scdberr.New(scdberr.ErrInvariantViolation, "state script named a sidechain index outside the registry")
		}
		row := snap[entry.SidechainIndex]
		if entry.WTIndex < 0 || entry.WTIndex >= len(row) {
			return nil, scdberr.New(scdberr.ErrInvariantViolation, "state script named a WT^ index outside the live candidate list")
		}
		old := row[entry.WTIndex]
		if old.BlocksLeft == 0 {
			return nil, scdberr.New(scdberr.ErrArithmeticAbort, "vote cast on a candidate already at blocks_left == 0")
		}
		newBlocks := old.BlocksLeft - 1

		var newScore uint32
		switch entry.Vote {
		case wirecodec.VoteReject:
			if old.WorkScore == 0 {
				return nil, scdberr.New(scdberr.ErrArithmeticAbort, "reject vote would underflow work_score below zero")
			}
			newScore = old.WorkScore - 1
		case wirecodec.VoteVerify:
			newScore = old.WorkScore + 1
		case wirecodec.VoteIgnore:
			newScore = old.WorkScore
		default:
			continue
		}
		steps = append(steps, step{
			sid:          old.SidechainID,
			blocksLeft:   newBlocks,
			workScore:    newScore,
			oldWorkScore: old.WorkScore,
			wtxid:        old.Wtxid,
		})
	}
	return steps, nil
}

// allIgnoreSteps builds the all-ignore ballot over snap. A snapshot
// entry already at blocks_left == 0 should never occur: commit prunes
// every candidate that reaches it the moment it does, so seeing one
// here means an expired candidate escaped pruning, an invariant
// violation in its own right.
func allIgnoreSteps(snap [][]scdbtypes.Verification) ([]step, error) {
	var steps []step
	for _, row := range snap {
		for _, v := range row {
			if v.BlocksLeft == 0 {
				return nil, scdberr.New(scdberr.ErrInvariantViolation, "live snapshot contained an already-expired candidate")
			}
			steps = append(steps, step{
				sid:          v.SidechainID,
				blocksLeft:   v.BlocksLeft - 1,
				workScore:    v.WorkScore,
				oldWorkScore: v.WorkScore,
				wtxid:        v.Wtxid,
			})
		}
	}
	return steps, nil
}

// commit applies steps for real, prunes any candidate that reached
// blocks_left == 0 from both the ScoreBook and the WTJoinStore, and
// emits notifications for every candidate whose payable or expiry
// status changed. The steps were already validated by a dry run;
// ScoreBook.Update can only fail here on an invalid sidechain id,
// which cannot happen since every step's sid came from a live
// snapshot entry.
//
// Pruning expired candidates here, rather than leaving that to an
// external trim policy, is what keeps a fully-expired WT^ from
// reappearing in every future snapshot: an entry stuck at
// blocks_left == 0 forever would otherwise make allIgnoreSteps and
// computeVoteSteps refuse every later block update for good.
func (e *Engine) commit(steps []step) {
	type transition struct {
		sid                   uint8
		wtxid                 chainhash.Hash
		workScore             uint32
		blocksLeft            uint32
		wasPayable, isPayable bool
	}
	transitions := make([]transition, 0, len(steps))

	for _, s := range steps {
		sc, ok := e.reg.Get(s.sid)
		if !ok {
			continue
		}
		wasPayable := s.oldWorkScore >= sc.MinWorkScore
		if !e.sb.Update(s.sid, s.blocksLeft, s.workScore, s.wtxid, false) {
			log.Errorf("scorebook rejected a pre-validated update for sidechain %d wtxid %s", s.sid, s.wtxid)
			continue
		}
		isPayable := s.workScore >= sc.MinWorkScore
		transitions = append(transitions, transition{
			sid: s.sid, wtxid: s.wtxid, workScore: s.workScore, blocksLeft: s.blocksLeft,
			wasPayable: wasPayable, isPayable: isPayable,
		})
	}

	for _, t := range transitions {
		if t.blocksLeft != 0 {
			continue
		}
		e.sb.Prune(t.sid, t.wtxid)
		e.wts.Remove(t.wtxid)
	}

	if e.events == nil {
		return
	}
	for _, t := range transitions {
		switch {
		case t.blocksLeft == 0:
			e.events.Publish(notify.Event{SidechainID: t.sid, Wtxid: t.wtxid, Kind: notify.Expired, WorkScore: t.workScore, BlocksLeft: t.blocksLeft})
		case t.isPayable && !t.wasPayable:
			e.events.Publish(notify.Event{SidechainID: t.sid, Wtxid: t.wtxid, Kind: notify.Payable, WorkScore: t.workScore, BlocksLeft: t.blocksLeft})
		case !t.isPayable && t.wasPayable:
			e.events.Publish(notify.Event{SidechainID: t.sid, Wtxid: t.wtxid, Kind: notify.Unpayable, WorkScore: t.workScore, BlocksLeft: t.blocksLeft})
		}
	}
}

// CheckWorkScore reports whether wtxid's running work_score on sid
// meets the sidechain's min_work_score threshold.
func (e *Engine) CheckWorkScore(sid uint8, wtxid chainhash.Hash) bool {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.sb.CheckWorkScore(sid, wtxid)
}

// Best returns sid's highest-scoring payable candidate, if any.
func (e *Engine) Best(sid uint8) (chainhash.Hash, bool) {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.sb.Best(sid)
}

// lastTauBoundary returns the greatest h <= height with h % tau == 0.
func lastTauBoundary(height, tau uint32) uint32 {
	if tau == 0 {
		return 0
	}
	return (height / tau) * tau
}

// CreateStateScript produces this block's proposed state script: for
// each sidechain, the best live candidate is upvoted and every other
// live candidate downvoted during the verification portion of tau;
// every candidate is abstained-on during the waiting portion.
func (e *Engine) CreateStateScript(height uint32) []byte {
	e.mtx.RLock()
	defer e.mtx.RUnlock()

	all := e.reg.All()
	votes := make([][]wirecodec.Vote, len(all))
	for i, sc := range all {
		latest := e.sb.Latest(sc.ID)
		if len(latest) == 0 {
			continue
		}

		bestIdx := 0
		for j := 1; j < len(latest); j++ {
			if latest[j].WorkScore > latest[bestIdx].WorkScore {
				bestIdx = j
			}
		}

		boundary := lastTauBoundary(height, sc.Tau())
		inVerification := height-boundary >= sc.WaitPeriod

		row := make([]wirecodec.Vote, len(latest))
		for j := range latest {
			switch {
			case !inVerification:
				row[j] = wirecodec.VoteIgnore
			case j == bestIdx:
				row[j] = wirecodec.VoteVerify
			default:
				row[j] = wirecodec.VoteReject
			}
		}
		votes[i] = row
	}
	return wirecodec.Encode(votes)
}
