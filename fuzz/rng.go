/*
 * naclbc - Deterministic, portable 64-bit PRNG for the record fuzzer.
 *
 * Copyright 2026
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package fuzz implements the record-level mutator: a deterministic
// PRNG seeded from a string plus an integer salt, weighted
// distributions over edit actions/sizes/values/codes, and the five
// edit algorithms (Insert, Remove, Replace, Mutate, Swap) applied
// against a record.Munger.
//
// math/rand/v2 is deliberately not used here: its generator algorithm
// is unspecified across Go versions, so two builds could legally
// disagree on the sequence produced by the same seed. This package
// hand-rolls splitmix64 (seed expansion) feeding xoshiro256**
// (the generator proper), both fixed, public bit-mixing constructions
// with no implementation-defined behavior, so a repeated (seed, salt)
// pair reproduces the same mutation sequence forever.
package fuzz

import "encoding/binary"

// RNG is a xoshiro256** generator. It carries no global state; every
// caller holds its own instance and passes it by reference, per the
// "no process-wide mutable RNG" requirement.
type RNG struct {
	s [4]uint64
}

// splitMix64 expands a single 64-bit state word into a stream of
// well-mixed 64-bit values, used only to seed xoshiro256**'s four
// words from whatever-sized key material New is given.
type splitMix64 struct {
	state uint64
}

func (sm *splitMix64) next() uint64 {
	sm.state += 0x9E3779B97F4A7C15
	z := sm.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// seedWord folds a UTF-8 seed string and an integer salt into a single
// 64-bit value via FNV-1a, the same way a hash map key would be mixed;
// this is just key-derivation, not the generator itself.
func seedWord(seed string, salt int64) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(seed); i++ {
		h ^= uint64(seed[i])
		h *= prime64
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(salt))
	for _, b := range buf {
		h ^= uint64(b)
		h *= prime64
	}
	return h
}

// NewRNG returns an RNG whose entire future sequence is a deterministic
// function of (seed, salt): identical arguments always produce
// identical output, on any platform, forever.
func NewRNG(seed string, salt int64) *RNG {
	sm := &splitMix64{state: seedWord(seed, salt)}
	r := &RNG{}
	for i := range r.s {
		r.s[i] = sm.next()
	}
	// All-zero state is the one value xoshiro256** cannot recover
	// from (every output would be zero); replace it the same way the
	// reference construction does, with another splitMix64 draw.
	allZero := true
	for _, w := range r.s {
		if w != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		r.s[0] = sm.next()
	}
	return r
}

func rotl(x uint64, k uint) uint64 {
	return (x << k) | (x >> (64 - k))
}

// Uint64 returns the next raw 64-bit value.
func (r *RNG) Uint64() uint64 {
	result := rotl(r.s[1]*5, 7) * 9

	t := r.s[1] << 17

	r.s[2] ^= r.s[0]
	r.s[3] ^= r.s[1]
	r.s[1] ^= r.s[2]
	r.s[0] ^= r.s[3]

	r.s[2] ^= t

	r.s[3] = rotl(r.s[3], 45)

	return result
}

// IntN returns a value uniformly distributed over [0, n). Panics if
// n <= 0. Uses Lemire's rejection-free range reduction.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		panic("fuzz: IntN called with n <= 0")
	}
	return int(r.uint64n(uint64(n)))
}

func (r *RNG) uint64n(n uint64) uint64 {
	hi, _ := bitsMul64(r.Uint64(), n)
	return hi
}

// bitsMul64 returns the 128-bit product of x*y as (high, low), the
// same decomposition math/bits.Mul64 exposes, reimplemented locally so
// this package has no dependency beyond encoding/binary.
func bitsMul64(x, y uint64) (hi, lo uint64) {
	const mask32 = 1<<32 - 1
	x0, x1 := x&mask32, x>>32
	y0, y1 := y&mask32, y>>32
	w0 := x0 * y0
	t := x1*y0 + w0>>32
	w1 := t & mask32
	w2 := t >> 32
	w1 += x0 * y1
	hi = x1*y1 + w2 + w1>>32
	lo = x * y
	return hi, lo
}

// Bool draws a uniformly random boolean.
func (r *RNG) Bool() bool {
	return r.Uint64()&1 == 1
}

// Uint32 returns the high 32 bits of the next Uint64.
func (r *RNG) Uint32() uint32 {
	return uint32(r.Uint64() >> 32)
}
