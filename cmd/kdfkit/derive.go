// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/kdfkit/kdfkit/kdf"
	"github.com/kdfkit/kdfkit/pbkdf2"
	"github.com/kdfkit/kdfkit/scrypt"
	"lukechampine.com/blake3"
)

// newDeriver returns the key deriver selected by cfg.  When progress is not
// nil PBKDF2 progress is written to it.
func newDeriver(cfg *config, progress io.Writer) kdf.KeyDeriver {
	switch cfg.Algorithm {
	case algPBKDF2:
		d := &pbkdf2.Deriver{
			Iterations: cfg.Iterations,
			KeyLen:     cfg.KeyLen,
			ChunkSize:  cfg.Chunk,
		}
		if progress != nil {
			d.Observer = func(percent float64) {
				fmt.Fprintf(progress, "\rDerived %5.1f%%", percent)
				if percent >= 100 {
					fmt.Fprintln(progress)
				}
			}
		}
		return d

	default:
		return &scrypt.Deriver{
			Params: scrypt.Params{
				N:           cfg.N,
				R:           cfg.R,
				P:           cfg.P,
				Parallelism: cfg.Parallelism,
				MaxMemory:   cfg.MaxMemory,
			},
			KeyLen: cfg.KeyLen,
		}
	}
}

// derive runs the configured derivation over password, abandoning it when ctx
// is done or the configured timeout expires.
func derive(ctx context.Context, cfg *config, password []byte, progress io.Writer) ([]byte, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if cfg.Algorithm == algScrypt && progress != nil {
		kdfkLog.Infof("Progress is only reported for %s", algPBKDF2)
		progress = nil
	}

	start := time.Now()
	dk, err := newDeriver(cfg, progress).DeriveKey(ctx, password, cfg.salt)
	if err != nil {
		return nil, err
	}
	kdfkLog.Infof("Derived %d-byte %s key in %v", len(dk), cfg.Algorithm,
		time.Since(start).Round(time.Millisecond))
	return dk, nil
}

// fingerprint returns a short identifier of dk that can be displayed and
// compared without revealing the key.
func fingerprint(dk []byte) string {
	sum := blake3.Sum256(dk)
	return hex.EncodeToString(sum[:8])
}
