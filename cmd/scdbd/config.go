// Copyright (c) 2024 The EXCCoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "scdbd.conf"
	defaultLogFilename    = "scdbd.log"
	defaultListen         = "127.0.0.1:9230"
	defaultLogLevel       = "info"
)

var (
	defaultHomeDir   = appHomeDir()
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, "logs")
)

// config defines the configuration options for scdbd, parsed from an
// optional config file followed by command-line overrides.
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	HomeDir    string `long:"homedir" description:"Directory to store data and logs"`

	MainchainRPCHost string `long:"rpchost" description:"Mainchain daemon JSON-RPC endpoint (e.g. http://127.0.0.1:9109/)"`
	MainchainRPCUser string `long:"rpcuser" description:"Mainchain daemon RPC username"`
	MainchainRPCPass string `long:"rpcpass" description:"Mainchain daemon RPC password"`

	Listen   string `long:"listen" description:"Address to serve the event-notification websocket on"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems: trace, debug, info, warn, error, critical"`
}

// appHomeDir returns the default application data directory.
func appHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".scdbd")
}

// loadConfig parses the config file (if present) and then
// command-line flags over it, file settings first, CLI flags
// overriding them. It returns the fully-populated config and the list
// of unparsed positional arguments.
func loadConfig() (*config, []string, error) {
	cfg := config{
		HomeDir:    defaultHomeDir,
		ConfigFile: defaultConfigFile,
		Listen:     defaultListen,
		DebugLevel: defaultLogLevel,
	}

	preParser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash|flags.IgnoreUnknown)
	if _, err := preParser.Parse(); err != nil {
		return nil, nil, err
	}

	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err == nil {
			fileParser := flags.NewParser(&cfg, flags.Default)
			if err := flags.NewIniParser(fileParser).ParseFile(cfg.ConfigFile); err != nil {
				return nil, nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	parser := flags.NewParser(&cfg, flags.Default)
	rest, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}
	return &cfg, rest, nil
}
