// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sysmem reports how much physical memory the host has.
package sysmem

// Total returns the amount of physical memory in bytes, or 0 if it cannot be
// determined on this platform.
func Total() uint64 {
	return total()
}
