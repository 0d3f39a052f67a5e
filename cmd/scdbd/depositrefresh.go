// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	"github.com/EXCCoin/scdb/mainchain"
	"github.com/EXCCoin/scdb/registry"
	"github.com/EXCCoin/scdb/stateengine"
)

// depositRefreshInterval bounds how often the daemon polls the
// mainchain daemon for newly observed deposits. The core has no
// internal timers of its own (per its no-suspension-points
// concurrency model); this loop lives entirely in the daemon, not in
// stateengine.
const depositRefreshInterval = 30 * time.Second

// refreshDepositsLoop polls the mainchain client for each registered
// sidechain's deposits and folds new ones into engine, outside any
// SCDB lock, until ctx is canceled.
func refreshDepositsLoop(ctx context.Context, client *mainchain.Client, engine *stateengine.Engine) {
	ticker := time.NewTicker(depositRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshDepositsOnce(ctx, client, engine)
		}
	}
}

func refreshDepositsOnce(ctx context.Context, client *mainchain.Client, engine *stateengine.Engine) {
	for _, sc := range registry.Default.All() {
		deposits, err := client.FetchDeposits(ctx, sc.ID)
		if err != nil {
			log.Warnf("fetching deposits for sidechain %d: %v", sc.ID, err)
			continue
		}
		for _, d := range deposits {
			if engine.AddDeposit(d.Dtx) {
				continue
			}
			log.Debugf("mainchain deposit for sidechain %d rejected locally", sc.ID)
		}
	}
}
