// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrypt

import (
	"context"

	"github.com/kdfkit/kdfkit/kdf"
)

var _ kdf.KeyDeriver = (*Deriver)(nil)

// Deriver is a kdf.KeyDeriver that runs scrypt with fixed parameters.
type Deriver struct {
	Params Params
	KeyLen int
}

// DeriveKey derives a KeyLen-byte key from password and salt.
func (d *Deriver) DeriveKey(ctx context.Context, password, salt []byte) ([]byte, error) {
	return KeyContext(ctx, password, salt, d.Params, d.KeyLen)
}
