// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scorebook

import (
	"testing"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"

	"github.com/EXCCoin/scdb/registry"
)

func hashOf(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func TestUpdateRejectsInvalidSidechain(t *testing.T) {
	b := New(registry.Default)
	if ok := b.Update(200, 100, 0, hashOf(1), false); ok {
		t.Fatal("Update() = true, want false for out-of-range sidechain id")
	}
}

func TestUpdateDryRunDoesNotMutate(t *testing.T) {
	b := New(registry.Default)
	if ok := b.Update(registry.SidechainTest, 100, 0, hashOf(1), true); !ok {
		t.Fatal("Update(dryRun=true) = false, want true")
	}
	if got := b.Latest(registry.SidechainTest); len(got) != 0 {
		t.Fatalf("Latest() after dry run = %v, want empty", got)
	}
}

func TestUpdateAppendsOnRealRun(t *testing.T) {
	b := New(registry.Default)
	b.Update(registry.SidechainTest, 100, 0, hashOf(1), false)
	got := b.Latest(registry.SidechainTest)
	if len(got) != 1 || got[0].Wtxid != hashOf(1) {
		t.Fatalf("Latest() = %v, want single entry for wtxid 1", got)
	}
}

func TestLatestKeepsHighestPerWtxidLaterWinsTies(t *testing.T) {
	b := New(registry.Default)
	b.Update(registry.SidechainTest, 100, 5, hashOf(1), false)
	b.Update(registry.SidechainTest, 99, 3, hashOf(2), false)
	b.Update(registry.SidechainTest, 98, 5, hashOf(1), false) // same score, later wins
	b.Update(registry.SidechainTest, 97, 2, hashOf(2), false) // lower score, ignored

	got := b.Latest(registry.SidechainTest)
	if len(got) != 2 {
		t.Fatalf("Latest() returned %d entries, want 2", len(got))
	}
	if got[0].Wtxid != hashOf(1) || got[0].BlocksLeft != 98 {
		t.Errorf("Latest()[0] = %+v, want the later wtxid-1 entry", got[0])
	}
	if got[1].Wtxid != hashOf(2) || got[1].WorkScore != 3 {
		t.Errorf("Latest()[1] = %+v, want the higher-scored wtxid-2 entry", got[1])
	}
}

func TestCheckWorkScoreSingleStepOnly(t *testing.T) {
	b := New(registry.Default)
	b.Update(registry.SidechainTest, 100, 1, hashOf(1), false)
	b.Update(registry.SidechainTest, 99, 2, hashOf(1), false)
	// A jump of +50 should be skipped, not adopted.
	b.Update(registry.SidechainTest, 98, 52, hashOf(1), false)
	b.Update(registry.SidechainTest, 97, 3, hashOf(1), false)

	sc, _ := registry.Default.Get(registry.SidechainTest)
	if ok := b.CheckWorkScore(registry.SidechainTest, hashOf(1)); ok {
		t.Fatalf("CheckWorkScore() = true, want false: running score should be 3, below min %d", sc.MinWorkScore)
	}
}

func TestCheckWorkScoreFirstEntryQuirk(t *testing.T) {
	b := New(registry.Default)
	// The first recorded work_score for this wtxid is already 2, more
	// than one step from the zero-initialized running score, so it is
	// skipped rather than adopted.
	b.Update(registry.SidechainTest, 100, 2, hashOf(1), false)
	if ok := b.CheckWorkScore(registry.SidechainTest, hashOf(1)); ok {
		t.Fatal("CheckWorkScore() = true, want false: first entry should be skipped by the single-step filter")
	}
}

func TestCheckWorkScoreReachesThreshold(t *testing.T) {
	reg := registry.Default
	sc, _ := reg.Get(registry.SidechainTest)
	b := New(reg)
	b.Update(registry.SidechainTest, 100, 1, hashOf(1), false)
	for i := uint32(2); i <= sc.MinWorkScore; i++ {
		b.Update(registry.SidechainTest, 100-i, i, hashOf(1), false)
	}
	if ok := b.CheckWorkScore(registry.SidechainTest, hashOf(1)); !ok {
		t.Fatal("CheckWorkScore() = false, want true once the running score reaches min_work_score")
	}
}

func TestPruneRemovesOnlyNamedWtxid(t *testing.T) {
	b := New(registry.Default)
	b.Update(registry.SidechainTest, 100, 5, hashOf(1), false)
	b.Update(registry.SidechainTest, 0, 3, hashOf(2), false)
	b.Update(registry.SidechainTest, 99, 6, hashOf(1), false)

	b.Prune(registry.SidechainTest, hashOf(1))

	got := b.Latest(registry.SidechainTest)
	if len(got) != 1 || got[0].Wtxid != hashOf(2) {
		t.Fatalf("Latest() after Prune = %v, want only wtxid 2 left", got)
	}
}

func TestPruneUnknownSidechainIsNoop(t *testing.T) {
	b := New(registry.Default)
	b.Update(registry.SidechainTest, 100, 5, hashOf(1), false)
	b.Prune(200, hashOf(1))
	if got := b.Latest(registry.SidechainTest); len(got) != 1 {
		t.Fatalf("Latest() = %v, want the untouched entry to survive an invalid-sidechain Prune", got)
	}
}

func TestBestTieBreaksByInsertionAndThreshold(t *testing.T) {
	reg := registry.Default
	sc, _ := reg.Get(registry.SidechainTest)
	b := New(reg)

	if _, ok := b.Best(registry.SidechainTest); ok {
		t.Fatal("Best() ok = true on an empty book, want false")
	}

	b.Update(registry.SidechainTest, 100, sc.MinWorkScore-1, hashOf(1), false)
	if _, ok := b.Best(registry.SidechainTest); ok {
		t.Fatal("Best() ok = true, want false: best candidate is below min_work_score")
	}

	b.Update(registry.SidechainTest, 100, sc.MinWorkScore, hashOf(2), false)
	b.Update(registry.SidechainTest, 99, sc.MinWorkScore, hashOf(3), false)
	wtxid, ok := b.Best(registry.SidechainTest)
	if !ok {
		t.Fatal("Best() ok = false, want true")
	}
	if wtxid != hashOf(2) {
		t.Errorf("Best() = %v, want wtxid 2 (first inserted among tied scores)", wtxid)
	}
}
