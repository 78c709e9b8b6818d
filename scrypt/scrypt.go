// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scrypt implements the scrypt key derivation function as defined in
// Colin Percival's paper "Stronger Key Derivation via Sequential Memory-Hard
// Functions" (https://www.tarsnap.com/scrypt/scrypt.pdf) and RFC 7914.
package scrypt

import (
	"context"
	"errors"
	"math"
	"math/bits"
	"runtime"

	"github.com/kdfkit/kdfkit/internal/sysmem"
	"github.com/kdfkit/kdfkit/kdf"
	"github.com/kdfkit/kdfkit/pbkdf2"
	"golang.org/x/sync/errgroup"
)

const maxInt = int(^uint(0) >> 1)

// Params are the scrypt cost parameters together with the resource limits
// applied while deriving.
type Params struct {
	N int // CPU/memory cost, a power of two greater than 1
	R int // block size factor
	P int // parallelization factor

	// Parallelism bounds the number of blocks mixed at the same time. Each
	// concurrently mixed block needs its own 128*R*N bytes of scratch memory.
	// Zero selects min(P, GOMAXPROCS), lowered as far as one worker when
	// needed to stay within MaxMemory.
	Parallelism int

	// MaxMemory bounds the memory, in bytes, a derivation may allocate. Zero
	// selects the amount of physical memory when it can be determined and no
	// limit otherwise.
	MaxMemory uint64
}

// Validate reports whether the cost parameters are acceptable. It performs no
// allocation.
func (p Params) Validate() error {
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return kdf.Invalid("scrypt", "N must be > 1 and a power of 2")
	}
	if p.R < 1 || p.P < 1 {
		return kdf.Invalid("scrypt", "r and p must be at least 1")
	}
	if uint64(p.R)*uint64(p.P) >= 1<<30 || p.R > maxInt/128/p.P || p.R > maxInt/256 || p.N > maxInt/128/p.R {
		return kdf.Invalid("scrypt", "parameters are too large")
	}
	if p.Parallelism < 0 {
		return kdf.Invalid("scrypt", "parallelism must not be negative")
	}
	return nil
}

// Workers returns the number of blocks requested to be mixed concurrently,
// before any reduction to fit the memory limit.
func (p Params) Workers() int {
	n := p.Parallelism
	if n == 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > p.P {
		n = p.P
	}
	return n
}

// Memory returns the number of bytes a derivation with workers concurrent
// mixers allocates: the p blocks themselves plus, per worker, the scratch
// array V and the two working blocks. A count that does not fit in a uint64
// is reported as math.MaxUint64.
func (p Params) Memory(workers int) uint64 {
	need, ok := p.memory(workers)
	if !ok {
		return math.MaxUint64
	}
	return need
}

// memory is Memory with overflow reported by ok.
func (p Params) memory(workers int) (need uint64, ok bool) {
	blockLen := uint64(128) * uint64(p.R)
	hi, v := bits.Mul64(blockLen, uint64(p.N))
	if hi != 0 {
		return 0, false
	}
	perWorker, carry := bits.Add64(v, 2*blockLen, 0)
	if carry != 0 {
		return 0, false
	}
	hi, scratch := bits.Mul64(uint64(workers), perWorker)
	if hi != 0 {
		return 0, false
	}
	hi, b := bits.Mul64(blockLen, uint64(p.P))
	if hi != 0 {
		return 0, false
	}
	need, carry = bits.Add64(b, scratch, 0)
	return need, carry == 0
}

// plan returns the number of workers to run and the bytes they need. With
// automatic parallelism the worker count is lowered until the derivation
// fits the memory limit; an explicit Parallelism is never lowered.
func (p Params) plan() (workers int, need uint64, err error) {
	limit := p.MaxMemory
	if limit == 0 {
		limit = sysmem.Total()
	}
	for workers = p.Workers(); ; workers-- {
		n, ok := p.memory(workers)
		if ok && (limit == 0 || n <= limit) {
			return workers, n, nil
		}
		if p.Parallelism != 0 || workers == 1 {
			if !ok {
				return 0, 0, kdf.Exhausted("scrypt", "memory needed by %d workers overflows a 64-bit size", workers)
			}
			return 0, 0, kdf.Exhausted("scrypt", "needs %d bytes of memory, limit is %d", n, limit)
		}
	}
}

// Key derives a key from the password, salt, and cost parameters, returning
// a byte slice of length keyLen that can be used as cryptographic key.
//
// N is a CPU/memory cost parameter, which must be a power of two greater than 1.
// r and p must satisfy r * p < 2³⁰. If the parameters do not satisfy the
// limits, the function returns a nil byte slice and an error wrapping
// kdf.ErrInvalidParameter.
//
// For example, you can get a derived key for e.g. AES-256 (which needs a
// 32-byte key) by doing:
//
//	dk, err := scrypt.Key([]byte("some password"), salt, 32768, 8, 1, 32)
//
// The recommended parameters for interactive logins as of 2017 are N=32768, r=8
// and p=1. The parameters N, r, and p should be increased as memory latency and
// CPU parallelism increases; consider setting N to the highest power of 2 you
// can derive within 100 milliseconds. Remember to get a good random salt.
func Key(password, salt []byte, N, r, p, keyLen int) ([]byte, error) {
	return KeyContext(context.Background(), password, salt, Params{N: N, R: r, P: p}, keyLen)
}

// KeyContext is like Key but takes the cost parameters and resource limits as
// Params and stops early, returning an error wrapping kdf.ErrCancelled and
// ctx.Err(), if ctx is done before the key is derived.
//
// The p blocks are mixed independently, up to params.Workers() at a time, or
// fewer when automatic parallelism has to fit params.MaxMemory. The result does
// not depend on the degree of parallelism.
func KeyContext(ctx context.Context, password, salt []byte, params Params, keyLen int) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if keyLen < 1 {
		return nil, kdf.Invalid("scrypt", "key length must be at least 1, got %d", keyLen)
	}
	if uint64(keyLen) > (1<<32-1)*pbkdf2.Size {
		return nil, kdf.Invalid("scrypt", "derived key too long")
	}
	workers, need, err := params.plan()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, kdf.Cancelled("scrypt", err)
	}

	N, r, p := params.N, params.R, params.P
	log.Debugf("Deriving with N=%d r=%d p=%d using %d workers and %d bytes",
		N, r, p, workers, need)

	b, err := pbkdf2.Key(password, salt, 1, p*128*r)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			v, xy, err := allocate(r, N)
			if err != nil {
				return err
			}
			for i := w; i < p; i += workers {
				if err := smix(gctx, b[i*128*r:(i+1)*128*r], r, N, v, xy); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var kerr *kdf.Error
		if errors.As(err, &kerr) {
			return nil, err
		}
		return nil, kdf.Cancelled("scrypt", err)
	}

	return pbkdf2.Key(password, b, 1, keyLen)
}

// allocate returns the scratch array V and the two working blocks X and Y for
// one mixer.
func allocate(r, N int) (v, xy []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, xy = nil, nil
			err = kdf.Exhausted("scrypt", "cannot allocate %d bytes of scratch memory", uint64(128*r)*uint64(N))
		}
	}()
	xy = make([]byte, 256*r)
	v = make([]byte, 128*r*N)
	return v, xy, nil
}
