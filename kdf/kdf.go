// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kdf holds the pieces shared by the password-based key derivation
// packages in this module: the error taxonomy, the progress observer type and
// the KeyDeriver interface implemented by pbkdf2.Deriver and scrypt.Deriver.
//
// Every error returned by those packages is a *Error whose Kind is one of
// ErrInvalidParameter, ErrResourceExhausted or ErrCancelled, so callers can
// classify failures with errors.Is:
//
//	if errors.Is(err, kdf.ErrInvalidParameter) {
//		// bad cost parameters, nothing was computed
//	}
package kdf

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a cost parameter, iteration count
	// or output length is out of range. It is reported before any memory is
	// allocated or any PRF invocation is made.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrResourceExhausted is returned when the scratch memory required by
	// the derivation cannot be provided.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrCancelled is returned when the caller abandons the derivation
	// before it completes. No partial key is returned.
	ErrCancelled = errors.New("cancelled")
)

// Error describes a failed derivation.
type Error struct {
	Op   string // "pbkdf2" or "scrypt"
	Kind error  // one of the Err* sentinels above
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Msg
}

// Unwrap returns the kind and, when present, the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Invalid returns an ErrInvalidParameter error for op.
func Invalid(op, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: ErrInvalidParameter, Msg: fmt.Sprintf(format, args...)}
}

// Exhausted returns an ErrResourceExhausted error for op.
func Exhausted(op, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: ErrResourceExhausted, Msg: fmt.Sprintf(format, args...)}
}

// Cancelled returns an ErrCancelled error for op wrapping the context error
// that caused it.
func Cancelled(op string, cause error) error {
	return &Error{Op: op, Kind: ErrCancelled, Msg: "derivation abandoned", Err: cause}
}

// Observer receives the completed fraction of a derivation, as a percentage in
// [0, 100]. It is informational only.
type Observer func(percentDone float64)

// KeyDeriver derives a key from a password and a salt using parameters bound
// at construction time.
type KeyDeriver interface {
	DeriveKey(ctx context.Context, password, salt []byte) ([]byte, error)
}
