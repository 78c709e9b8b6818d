// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pbkdf2

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/kdfkit/kdfkit/kdf"
	xpbkdf2 "golang.org/x/crypto/pbkdf2"
)

type testVector struct {
	password string
	salt     string
	iter     int
	output   string
}

// Test vectors for PBKDF2-HMAC-SHA256, from RFC 7914 section 11 and the
// commonly used "password"/"salt" set.
var sha256TestVectors = []testVector{
	{
		"password",
		"salt",
		1,
		"120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b",
	},
	{
		"password",
		"salt",
		2,
		"ae4d0c95af6b46d32d0adff928f06dd02a303f8ef3c251dfd6e2d85a95474c43",
	},
	{
		"password",
		"salt",
		4096,
		"c5e478d59288c841aa530db6845c4c8d962893a001ce4e11a4963873aa98134a",
	},
	{
		"passwd",
		"salt",
		1,
		"55ac046e56e3089fec1691c22544b605f94185216dde0465e68b9d57c20dacbc" +
			"49ca9cccf179b645991664b39d77ef317c71b845b1e30bd509112041d3a19783",
	},
	{
		"Password",
		"NaCl",
		80000,
		"4ddcd8f60b98be21830cee5ef22701f9641a4418d04c0414aeff08876b34ab56" +
			"a1d425a1225833549adb841b51c9b3176a272bdebba1d078478f62b397f33c8d",
	},
}

func TestVectors(t *testing.T) {
	for i, v := range sha256TestVectors {
		want, _ := hex.DecodeString(v.output)
		got, err := Key([]byte(v.password), []byte(v.salt), v.iter, len(want))
		if err != nil {
			t.Errorf("%d: unexpected error: %s", i, err)
			continue
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%d: got %x, want %x", i, got, want)
		}
	}
}

// A single iteration producing a single block is one HMAC over the salt and
// the big-endian block index 1.
func TestSingleIterationIsOneHMAC(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("password"))
	mac.Write([]byte("salt"))
	mac.Write([]byte{0, 0, 0, 1})
	want := mac.Sum(nil)

	got, err := Key([]byte("password"), []byte("salt"), 1, 32)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

// Block indexes above 15 must keep their full big-endian encoding.
// A key shorter than a whole number of blocks must not expose the rest of
// the last block through its capacity.
func TestKeyHasNoSpareCapacity(t *testing.T) {
	for _, keyLen := range []int{1, 20, Size, 40, 2 * Size} {
		dk, err := Key([]byte("password"), []byte("salt"), 2, keyLen)
		if err != nil {
			t.Fatalf("keyLen %d: %s", keyLen, err)
		}
		if len(dk) != keyLen || cap(dk) != keyLen {
			t.Errorf("keyLen %d: got len %d cap %d", keyLen, len(dk), cap(dk))
		}
	}

	dk, err := Key([]byte("password"), []byte("salt"), 2, 20)
	if err != nil {
		t.Fatal(err)
	}
	full, err := Key([]byte("password"), []byte("salt"), 2, Size)
	if err != nil {
		t.Fatal(err)
	}
	grown := append(dk, make([]byte, Size-20)...)
	if !bytes.Equal(grown[:20], full[:20]) {
		t.Errorf("append changed the key: got %x, want prefix %x", grown[:20], full[:20])
	}
}

func TestBlockIndexEncoding(t *testing.T) {
	password, salt := []byte("password"), []byte("salt")
	got, err := Key(password, salt, 1, 17*Size)
	if err != nil {
		t.Fatal(err)
	}

	mac := hmac.New(sha256.New, password)
	mac.Write(salt)
	mac.Write([]byte{0, 0, 0, 17})
	want := mac.Sum(nil)
	if last := got[16*Size:]; !bytes.Equal(last, want) {
		t.Errorf("block 17: got %x, want %x", last, want)
	}
}

func TestMatchesReference(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt := []byte("NaCl")
	for _, iter := range []int{1, 3, 17} {
		for _, keyLen := range []int{1, 16, 31, 32, 33, 64, 100} {
			want := xpbkdf2.Key(password, salt, iter, keyLen, sha256.New)
			got, err := Key(password, salt, iter, keyLen)
			if err != nil {
				t.Fatalf("iter=%d keyLen=%d: %s", iter, keyLen, err)
			}
			if len(got) != keyLen {
				t.Errorf("iter=%d keyLen=%d: got %d bytes", iter, keyLen, len(got))
			}
			if !bytes.Equal(got, want) {
				t.Errorf("iter=%d keyLen=%d: got %x, want %x", iter, keyLen, got, want)
			}
		}
	}
}

func TestLongPassword(t *testing.T) {
	password := bytes.Repeat([]byte("p"), 200)
	want := xpbkdf2.Key(password, []byte("salt"), 2, 40, sha256.New)
	got, err := Key(password, []byte("salt"), 2, 40)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestDeterministic(t *testing.T) {
	a, err := Key([]byte("password"), []byte("salt"), 10, 50)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Key([]byte("password"), []byte("salt"), 10, 50)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("repeated derivation differs: %x != %x", a, b)
	}
}

func TestChunkingInvariance(t *testing.T) {
	const iter, keyLen = 25, 70
	want, err := Key([]byte("password"), []byte("salt"), iter, keyLen)
	if err != nil {
		t.Fatal(err)
	}

	for _, chunk := range []int{0, 1, 3, 7, DefaultChunkSize, 24, 25, 1000} {
		t.Run(strconv.Itoa(chunk), func(t *testing.T) {
			s, err := New([]byte("password"), []byte("salt"), iter, keyLen)
			if err != nil {
				t.Fatal(err)
			}
			for !s.Step(chunk) {
			}
			got, ok := s.Result()
			if !ok {
				t.Fatal("result not available after completion")
			}
			if !bytes.Equal(got, want) {
				t.Errorf("chunk %d: got %x, want %x", chunk, got, want)
			}
		})
	}
}

func TestStepStopsAtBlockBoundary(t *testing.T) {
	s, err := New([]byte("password"), []byte("salt"), 4, 2*Size)
	if err != nil {
		t.Fatal(err)
	}
	if s.Step(100) {
		t.Fatal("first step finished a two-block key")
	}
	if got := s.Progress(); got != 50 {
		t.Errorf("progress after first block: got %v, want 50", got)
	}
	if !s.Step(100) {
		t.Fatal("second step did not finish the key")
	}
	if got := s.Progress(); got != 100 {
		t.Errorf("progress after completion: got %v, want 100", got)
	}
}

func TestProgress(t *testing.T) {
	s, err := New([]byte("password"), []byte("salt"), 10, 3*Size)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Progress(); got != 0 {
		t.Errorf("initial progress: got %v, want 0", got)
	}

	var reports []float64
	dk, err := s.Run(context.Background(), 4, func(p float64) {
		reports = append(reports, p)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(dk) != 3*Size {
		t.Errorf("got %d bytes, want %d", len(dk), 3*Size)
	}

	// Each block of 10 iterations takes chunks of 4, 4 and 2.
	if len(reports) != 9 {
		t.Fatalf("got %d progress reports, want 9: %v", len(reports), reports)
	}
	prev := 0.0
	for i, p := range reports {
		if p < prev || p < 0 || p > 100 {
			t.Errorf("report %d out of order or range: %v", i, reports)
		}
		prev = p
	}
	if want := 40.0 / 3; math.Abs(reports[0]-want) > 1e-9 {
		t.Errorf("first report: got %v, want %v", reports[0], want)
	}
	if reports[len(reports)-1] != 100 {
		t.Errorf("last report: got %v, want 100", reports[len(reports)-1])
	}
}

func TestResultBeforeCompletion(t *testing.T) {
	s, err := New([]byte("password"), []byte("salt"), 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	s.Step(2)
	if dk, ok := s.Result(); ok || dk != nil {
		t.Errorf("got %x, %v before completion", dk, ok)
	}
}

func TestSaltIsCopied(t *testing.T) {
	salt := []byte("salt")
	s, err := New([]byte("password"), salt, 3, 32)
	if err != nil {
		t.Fatal(err)
	}
	salt[0] = 'X'
	for !s.Step(1) {
	}
	got, _ := s.Result()
	want, _ := Key([]byte("password"), []byte("salt"), 3, 32)
	if !bytes.Equal(got, want) {
		t.Errorf("state observed caller's salt mutation")
	}
}

func TestInvalidParameters(t *testing.T) {
	testCases := []struct {
		name   string
		iter   int
		keyLen int
	}{
		{"ZeroIterations", 0, 32},
		{"NegativeIterations", -1, 32},
		{"ZeroKeyLength", 1, 0},
		{"NegativeKeyLength", 1, -5},
	}
	if strconv.IntSize == 64 {
		tooLong := uint64(maxBlocks) * Size
		testCases = append(testCases, struct {
			name   string
			iter   int
			keyLen int
		}{"KeyTooLong", 1, int(tooLong + 1)})
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			dk, err := Key([]byte("password"), []byte("salt"), test.iter, test.keyLen)
			if !errors.Is(err, kdf.ErrInvalidParameter) {
				t.Errorf("got error %v, want ErrInvalidParameter", err)
			}
			if dk != nil {
				t.Errorf("got key %x alongside error", dk)
			}
			if s, err := New(nil, nil, test.iter, test.keyLen); s != nil || err == nil {
				t.Errorf("New accepted iter=%d keyLen=%d", test.iter, test.keyLen)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New([]byte("password"), []byte("salt"), 1000, 32)
	if err != nil {
		t.Fatal(err)
	}
	dk, err := s.Run(ctx, 10, nil)
	if !errors.Is(err, kdf.ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v, want cancellation", err)
	}
	if dk != nil {
		t.Errorf("got partial key %x", dk)
	}
	if got := s.Progress(); got != 0 {
		t.Errorf("cancelled before start, progress %v", got)
	}
}

func TestRunCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := New([]byte("password"), []byte("salt"), 100, 64)
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	_, err = s.Run(ctx, 10, func(float64) {
		calls++
		if calls == 3 {
			cancel()
		}
	})
	if !errors.Is(err, kdf.ErrCancelled) {
		t.Fatalf("got error %v, want ErrCancelled", err)
	}
	if calls != 3 {
		t.Errorf("observer called %d times after cancellation", calls)
	}

	// The abandoned state can still be resumed to the same result.
	dk, err := s.Run(context.Background(), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Key([]byte("password"), []byte("salt"), 100, 64)
	if !bytes.Equal(dk, want) {
		t.Errorf("resumed: got %x, want %x", dk, want)
	}
}

func TestDeriver(t *testing.T) {
	var last float64
	d := &Deriver{Iterations: 4096, KeyLen: 32, ChunkSize: 512, Observer: func(p float64) { last = p }}
	dk, err := d.DeriveKey(context.Background(), []byte("password"), []byte("salt"))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := hex.DecodeString("c5e478d59288c841aa530db6845c4c8d962893a001ce4e11a4963873aa98134a")
	if !bytes.Equal(dk, want) {
		t.Errorf("got %x, want %x", dk, want)
	}
	if last != 100 {
		t.Errorf("final progress %v, want 100", last)
	}

	d.Iterations = 0
	if _, err := d.DeriveKey(context.Background(), nil, nil); !errors.Is(err, kdf.ErrInvalidParameter) {
		t.Errorf("got error %v, want ErrInvalidParameter", err)
	}
}

func benchmark(b *testing.B, iter int) {
	password := []byte("password")
	salt := []byte("salt")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Key(password, salt, iter, Size); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkKey1(b *testing.B)    { benchmark(b, 1) }
func BenchmarkKey4096(b *testing.B) { benchmark(b, 4096) }
