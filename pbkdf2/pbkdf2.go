// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package pbkdf2 implements the key derivation function PBKDF2 as defined in
RFC 8018 (PKCS #5 v2.1), using HMAC-SHA256 as the pseudorandom function.

A key derivation function is useful when encrypting data based on a password
or any other not-fully-random data. It uses a pseudorandom function to derive
a secure encryption key based on the password.

Besides the one-shot Key function the package exposes the derivation as a
resumable State. A caller that must stay responsive can advance the state a
bounded number of iterations at a time, do other work in between, and observe
progress. The result does not depend on how the work was split up.
*/
package pbkdf2

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"runtime"

	"github.com/kdfkit/kdfkit/kdf"
)

const (
	// Size is the length in bytes of one PRF output (hLen).
	Size = sha256.Size

	// DefaultChunkSize is the number of iterations Run performs between two
	// observer callbacks when no chunk size is given.
	DefaultChunkSize = 10

	// maxBlocks is the largest number of hLen-sized blocks a derived key may
	// span, since the block index is encoded as a 32-bit integer.
	maxBlocks = 1<<32 - 1
)

// Key derives a key from the password, salt and iteration count, returning a
// []byte of length keyLen that can be used as cryptographic key.
//
// Using a higher iteration count will increase the cost of an exhaustive
// search but will also make derivation proportionally slower.
func Key(password, salt []byte, iter, keyLen int) ([]byte, error) {
	s, err := New(password, salt, iter, keyLen)
	if err != nil {
		return nil, err
	}
	for !s.Step(iter) {
	}
	return s.dk[:s.keyLen:s.keyLen], nil
}

// State is an in-progress PBKDF2 derivation. It carries the HMAC keyed with
// the password, the index of the output block being computed, the number of
// iterations already applied to it, the running XOR accumulator and the last
// PRF output.
//
// A State must not be advanced from more than one goroutine at a time.
// Abandoning a derivation only requires dropping the State.
type State struct {
	prf    hash.Hash
	salt   []byte
	iter   int
	keyLen int
	blocks int

	block int    // 1-based index of the block in progress
	done  int    // iterations applied to the block in progress
	u     []byte // previous PRF output
	t     []byte // XOR of all PRF outputs for the block in progress
	dk    []byte // completed blocks
	index [4]byte
}

// New returns a State positioned before the first iteration of the first
// output block. The password is consumed immediately to key the HMAC.
func New(password, salt []byte, iter, keyLen int) (*State, error) {
	if err := validate(iter, keyLen, Size); err != nil {
		return nil, err
	}
	return newState(hmac.New(sha256.New, password), salt, iter, keyLen), nil
}

func validate(iter, keyLen, hLen int) error {
	if iter < 1 {
		return kdf.Invalid("pbkdf2", "iteration count must be at least 1, got %d", iter)
	}
	if keyLen < 1 {
		return kdf.Invalid("pbkdf2", "key length must be at least 1, got %d", keyLen)
	}
	if uint64(keyLen) > maxBlocks*uint64(hLen) {
		return kdf.Invalid("pbkdf2", "derived key too long")
	}
	return nil
}

func newState(prf hash.Hash, salt []byte, iter, keyLen int) *State {
	hLen := prf.Size()
	return &State{
		prf:    prf,
		salt:   append([]byte(nil), salt...),
		iter:   iter,
		keyLen: keyLen,
		blocks: (keyLen-1)/hLen + 1,
		block:  1,
		u:      make([]byte, 0, hLen),
		t:      make([]byte, hLen),
	}
}

// Step applies at most n further iterations to the output block in progress
// and reports whether the whole derived key is now available. A step never
// crosses a block boundary: once the last iteration of a block has been
// applied the block is appended to the key and the next block starts on the
// following call. A non-positive n is treated as 1.
func (s *State) Step(n int) bool {
	if s.Done() {
		return true
	}
	if n < 1 {
		n = 1
	}
	if rem := s.iter - s.done; n > rem {
		n = rem
	}

	prf := s.prf
	for k := 0; k < n; k++ {
		prf.Reset()
		if s.done == 0 {
			// U_1 = PRF(P, S || INT(i))
			binary.BigEndian.PutUint32(s.index[:], uint32(s.block))
			prf.Write(s.salt)
			prf.Write(s.index[:])
			s.u = prf.Sum(s.u[:0])
			copy(s.t, s.u)
		} else {
			prf.Write(s.u)
			s.u = prf.Sum(s.u[:0])
			for j, v := range s.u {
				s.t[j] ^= v
			}
		}
		s.done++
	}

	if s.done == s.iter {
		s.dk = append(s.dk, s.t...)
		log.Tracef("Block %d of %d complete", s.block, s.blocks)
		s.block++
		s.done = 0
	}
	return s.Done()
}

// Done reports whether every output block has been computed.
func (s *State) Done() bool {
	return s.block > s.blocks
}

// Progress returns the completed fraction of the derivation as a percentage.
func (s *State) Progress() float64 {
	if s.Done() {
		return 100
	}
	return (float64(s.block-1) + float64(s.done)/float64(s.iter)) / float64(s.blocks) * 100
}

// Result returns a copy of the derived key, truncated to the requested
// length. The second value is false while the derivation is incomplete.
func (s *State) Result() ([]byte, bool) {
	if !s.Done() {
		return nil, false
	}
	return append([]byte(nil), s.dk[:s.keyLen]...), true
}

// Run advances the state to completion chunk iterations at a time, calling
// observe (if not nil) with the progress after every chunk and yielding the
// processor in between. If ctx is done before the key is complete Run stops
// and returns an error wrapping kdf.ErrCancelled and ctx.Err(); the state may
// be resumed later with another call. A non-positive chunk selects
// DefaultChunkSize.
func (s *State) Run(ctx context.Context, chunk int, observe kdf.Observer) ([]byte, error) {
	if chunk < 1 {
		chunk = DefaultChunkSize
	}
	for {
		select {
		case <-ctx.Done():
			return nil, kdf.Cancelled("pbkdf2", ctx.Err())
		default:
		}

		done := s.Step(chunk)
		if observe != nil {
			observe(s.Progress())
		}
		if done {
			break
		}
		runtime.Gosched()
	}
	dk, _ := s.Result()
	return dk, nil
}
