// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrypt

import (
	"context"
	"crypto/subtle"
	"encoding/binary"

	"github.com/kdfkit/kdfkit/salsa20/salsa"
)

// cancelCheckInterval is how many smix iterations run between two checks of
// the context.
const cancelCheckInterval = 1 << 10

// blockXOR XORs n bytes of src into dst.
func blockXOR(dst, src []byte, n int) {
	subtle.XORBytes(dst[:n], dst[:n], src[:n])
}

// blockMix applies BlockMix-Salsa20/8 to the 128*r bytes of b, using the
// 128*r bytes of y as scratch. The 64-byte outputs Y_0 .. Y_{2r-1} are written
// back to b as Y_0, Y_2, ..., Y_{2r-2}, Y_1, Y_3, ..., Y_{2r-1}.
func blockMix(b, y []byte, r int) {
	var x [64]byte

	copy(x[:], b[(2*r-1)*64:2*r*64])

	for i := 0; i < 2*r; i++ {
		blockXOR(x[:], b[i*64:], 64)
		salsa.Core208(&x, &x)
		copy(y[i*64:], x[:])
	}

	for i := 0; i < r; i++ {
		copy(b[i*64:(i+1)*64], y[2*i*64:])
		copy(b[(r+i)*64:(r+i+1)*64], y[(2*i+1)*64:])
	}
}

// integer returns the first eight bytes of the last 64-byte sub-block of b as
// a little-endian integer.
func integer(b []byte, r int) uint64 {
	return binary.LittleEndian.Uint64(b[(2*r-1)*64:])
}

// smix runs ROMix on the 128*r-byte block b in place. v must hold 128*r*N
// bytes and xy 256*r bytes; both are owned by the caller for the duration of
// the call and their contents are overwritten.
//
// The first loop fills v strictly in order, every entry depending on the one
// before. The second reads v at indexes chosen by the data. Neither loop may
// be reordered or split.
func smix(ctx context.Context, b []byte, r, N int, v, xy []byte) error {
	blockLen := 128 * r
	x := xy[:blockLen]
	y := xy[blockLen:]

	copy(x, b[:blockLen])

	for i := 0; i < N; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		copy(v[i*blockLen:], x)
		blockMix(x, y, r)
	}

	for i := 0; i < N; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		j := int(integer(x, r) & uint64(N-1))
		blockXOR(x, v[j*blockLen:], blockLen)
		blockMix(x, y, r)
	}

	copy(b, x)
	return nil
}
