// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command kdfkit derives key material from a password with PBKDF2-HMAC-SHA256
// or scrypt and prints it as hexadecimal.
//
// Usage:
//
//	kdfkit [options]
//
// The password is read from the terminal without echo, or from the first line
// of standard input with --password-stdin.  The derived key is written to
// standard output; logs and progress go to standard error.
//
// Examples:
//
//	kdfkit --salt NaCl                       # scrypt N=2^15 r=8 p=1
//	kdfkit --profile sensitive --salthex 00ff
//	kdfkit -a pbkdf2 -i 100000 -l 64 --salt NaCl --progress
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

// kdfkitMain is the real main function for kdfkit.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is
// called.  The returned value is the process exit code.
func kdfkitMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logOutput.out = stderr
	defer func() { logOutput.out = os.Stderr }()

	cfg, err := loadConfig(args, stdout)
	if err != nil {
		if errors.Is(err, errExit) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		fmt.Fprintf(stderr, "Use %s -h to show usage\n", appName)
		return 2
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	password, err := readPassword(cfg, stdin, stderr)
	if err != nil {
		kdfkLog.Error(err)
		return 1
	}

	// Abandon the derivation on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var progress io.Writer
	if cfg.Progress {
		progress = stderr
	}
	dk, err := derive(ctx, cfg, password, progress)
	if err != nil {
		kdfkLog.Errorf("Unable to derive key: %v", err)
		return 1
	}

	fmt.Fprintln(stdout, hex.EncodeToString(dk))
	if cfg.Fingerprint {
		fmt.Fprintf(stderr, "Fingerprint: %s\n", fingerprint(dk))
	}
	return 0
}

func main() {
	os.Exit(kdfkitMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
