// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	flags "github.com/jessevdk/go-flags"
)

const (
	appName = "kdfkit"
	version = "0.3.0"

	defaultChunk      = 1000
	defaultDebugLevel = "info"
	defaultLogName    = appName + ".log"
)

// errExit is returned by loadConfig when the requested action (help, version,
// subsystem listing) has been carried out and the program should exit
// successfully without deriving a key.
var errExit = errors.New("exit")

// config defines the configuration options for kdfkit.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion   bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile    string        `short:"C" long:"configfile" description:"Path to an ini configuration file"`
	ProfilesFile  string        `long:"profiles" description:"Path to a YAML file of named derivation profiles"`
	Profile       string        `long:"profile" description:"Derivation profile to start from (default: interactive)"`
	Algorithm     string        `short:"a" long:"algorithm" description:"Key derivation function {pbkdf2, scrypt}"`
	Iterations    int           `short:"i" long:"iterations" description:"PBKDF2 iteration count"`
	N             int           `short:"N" long:"cost" description:"scrypt CPU/memory cost, a power of 2"`
	R             int           `short:"r" long:"blocksize" description:"scrypt block size factor"`
	P             int           `short:"p" long:"parallel" description:"scrypt parallelization factor"`
	Parallelism   int           `long:"parallelism" description:"Number of scrypt blocks mixed concurrently (0 selects automatically)"`
	MaxMemory     uint64        `long:"maxmemory" description:"Upper bound on scrypt memory in bytes (0 selects physical memory)"`
	KeyLen        int           `short:"l" long:"keylen" description:"Length of the derived key in bytes"`
	Salt          string        `short:"s" long:"salt" description:"Salt as text"`
	SaltHex       string        `long:"salthex" description:"Salt as hexadecimal"`
	PasswordStdin bool          `long:"password-stdin" description:"Read the password from the first line of standard input instead of prompting"`
	Chunk         int           `long:"chunk" description:"PBKDF2 iterations between progress reports (default: 1000)"`
	Progress      bool          `long:"progress" description:"Report PBKDF2 progress on standard error"`
	Fingerprint   bool          `long:"fingerprint" description:"Print a BLAKE3 fingerprint of the derived key on standard error"`
	Timeout       time.Duration `long:"timeout" description:"Abandon the derivation after this long (0 waits indefinitely)"`
	LogDir        string        `long:"logdir" description:"Directory to log output"`
	DebugLevel    string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	salt []byte
}

// applyProfile copies the parameters of p into cfg.
func (cfg *config) applyProfile(p profile) {
	cfg.Algorithm = p.Algorithm
	cfg.Iterations = p.Iterations
	cfg.N, cfg.R, cfg.P = p.N, p.R, p.P
	cfg.KeyLen = p.KeyLen
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	parser := flags.NewParser(cfg, options)
	parser.Name = appName
	return parser
}

// loadConfig initializes and parses the config using a config file, a
// profile and command line options.  Help, version and subsystem listings are
// written to stdout.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line (and the config file, if one is named) to
//     find the profile and profiles file
//  3. Apply the selected profile
//  4. Load the config file, overwriting profile values
//  5. Parse CLI options and overwrite/add any specified options
//
// The above results in kdfkit functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig(args []string, stdout io.Writer) (*config, error) {
	// Default config.
	cfg := config{
		Profile:    defaultProfile,
		Chunk:      defaultChunk,
		DebugLevel: defaultDebugLevel,
	}

	// Pre-parse the command line options to see if an alternative config
	// file, a profile, or the version flag was specified.  Any errors aside
	// from the help message error can be ignored here since they will be
	// caught by the final parse below.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return nil, errExit
		}
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		fmt.Fprintf(stdout, "%s version %s\n", appName, version)
		return nil, errExit
	}

	if preCfg.ConfigFile != "" {
		err := flags.NewIniParser(preParser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %v", err)
		}
		preParser.ParseArgs(args)
	}

	profiles, err := loadProfiles(preCfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("error loading profiles: %v", err)
	}
	p, ok := profiles[preCfg.Profile]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q -- available profiles %v",
			preCfg.Profile, profileNames(profiles))
	}
	cfg.applyProfile(p)

	// Load additional config from file.
	parser := newConfigParser(&cfg, flags.Default&^flags.PrintErrors)
	if preCfg.ConfigFile != "" {
		err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %v", err)
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(remainingArgs) > 0 {
		return nil, fmt.Errorf("unexpected arguments %v -- the password is "+
			"read from the terminal or standard input", remainingArgs)
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Fprintln(stdout, "Supported subsystems", supportedSubsystems())
		return nil, errExit
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, err
	}

	if cfg.LogDir != "" {
		if err := initLogRotator(filepath.Join(cfg.LogDir, defaultLogName)); err != nil {
			return nil, err
		}
	}

	cfg.Algorithm = strings.ToLower(cfg.Algorithm)
	switch cfg.Algorithm {
	case algPBKDF2, algScrypt:
	default:
		return nil, fmt.Errorf("unknown algorithm %q -- supported "+
			"algorithms [%s %s]", cfg.Algorithm, algPBKDF2, algScrypt)
	}

	switch {
	case cfg.Salt != "" && cfg.SaltHex != "":
		return nil, errors.New("the --salt and --salthex options can " +
			"not be used together")
	case cfg.SaltHex != "":
		cfg.salt, err = hex.DecodeString(cfg.SaltHex)
		if err != nil {
			return nil, fmt.Errorf("invalid --salthex: %v", err)
		}
	default:
		cfg.salt = []byte(cfg.Salt)
	}
	if len(cfg.salt) == 0 {
		kdfkLog.Warnf("Deriving with an empty salt")
	}

	if cfg.Chunk < 1 {
		return nil, fmt.Errorf("the --chunk option must be at least 1, "+
			"got %d", cfg.Chunk)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("the --timeout option must not be "+
			"negative, got %v", cfg.Timeout)
	}

	kdfkLog.Debugf("Configuration: %v", newLogClosure(func() string {
		return spew.Sdump(cfg)
	}))

	return &cfg, nil
}
