// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbkdf2

import (
	"context"

	"github.com/kdfkit/kdfkit/kdf"
)

var _ kdf.KeyDeriver = (*Deriver)(nil)

// Deriver is a kdf.KeyDeriver that runs PBKDF2-HMAC-SHA256 with fixed
// parameters, in chunks of ChunkSize iterations, reporting progress to
// Observer when set.
type Deriver struct {
	Iterations int
	KeyLen     int
	ChunkSize  int
	Observer   kdf.Observer
}

// DeriveKey derives a KeyLen-byte key from password and salt.
func (d *Deriver) DeriveKey(ctx context.Context, password, salt []byte) ([]byte, error) {
	s, err := New(password, salt, d.Iterations, d.KeyLen)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, d.ChunkSize, d.Observer)
}
