// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command scdbd runs the Sidechain Coordination Database as a
// standalone service: it holds the in-memory SCDB state, periodically
// refreshes the deposit cache from the mainchain daemon, and serves a
// websocket feed of payable/expiry notifications. Feeding it blocks
// and coinbase transactions, and broadcasting locally-built WT^
// candidates, is the embedding caller's job: those are the
// collaborator interfaces the core itself does not implement.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/EXCCoin/scdb/mainchain"
	"github.com/EXCCoin/scdb/notify"
	"github.com/EXCCoin/scdb/registry"
	"github.com/EXCCoin/scdb/stateengine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.HomeDir, 0700); err != nil {
		return fmt.Errorf("creating home directory: %w", err)
	}
	if err := initLogRotator(filepath.Join(cfg.HomeDir, "logs", defaultLogFilename)); err != nil {
		return err
	}
	if err := setLogLevels(cfg.DebugLevel); err != nil {
		return err
	}

	events := notify.NewServer()
	engine := stateengine.New(registry.Default, nil, events)

	var client *mainchain.Client
	if cfg.MainchainRPCHost != "" {
		client = mainchain.New(cfg.MainchainRPCHost, cfg.MainchainRPCUser, cfg.MainchainRPCPass)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if client != nil {
		go refreshDepositsLoop(ctx, client, engine)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", notify.NewWebsocketServer(events))
	httpServer := &http.Server{Addr: cfg.Listen, Handler: mux}
	go func() {
		log.Infof("serving notifications on %s", cfg.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("notification server stopped: %v", err)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	log.Info("shutting down")
	cancel()
	return httpServer.Shutdown(context.Background())
}
