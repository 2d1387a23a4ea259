/*
 * naclbc - Record-level fuzzer: weighted random edits against a Munger.
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

package fuzz

import (
	"errors"
	"fmt"

	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/record"
)

// ErrEmptyBase is returned by Run when the Munger's base list is
// empty: there is no index to target, so the fuzzer cannot operate.
var ErrEmptyBase = errors.New("fuzz: cannot fuzz an empty record list")

// Report summarizes one Run: how many times each action fired, and how
// many edits landed on each target index, for optional histograms.
type Report struct {
	ActionCounts [numActions]int
	IndexCounts  map[int]int
	Actions      []Action // the sequence of actions actually applied, in order
}

func (rep *Report) record(a Action, i int) {
	rep.ActionCounts[a]++
	if rep.IndexCounts == nil {
		rep.IndexCounts = make(map[int]int)
	}
	rep.IndexCounts[i]++
	rep.Actions = append(rep.Actions, a)
}

// Fuzzer applies weighted random edits to a record.Munger. It owns one
// RNG instance; nothing here touches process-wide state, so two
// Fuzzers never interfere even when run concurrently over independent
// Mungers.
type Fuzzer struct {
	rng *RNG
	cfg Config
}

// New returns a Fuzzer seeded from (seed, salt) with cfg governing its
// distributions. Repeated (seed, salt, cfg) triples reproduce the same
// edit sequence on every run (P8).
func New(seed string, salt int64, cfg Config) *Fuzzer {
	return &Fuzzer{rng: NewRNG(seed, salt), cfg: cfg}
}

// Run performs k = max(1, floor(n*p/base)) edits against m, where n is
// m's base length, each edit chosen by drawAction and applied at a
// freshly drawn target index. m is mutated in place; the returned
// Report records what happened.
func (f *Fuzzer) Run(m *record.Munger, p, base int) (Report, error) {
	n := m.Len()
	if n == 0 {
		return Report{}, ErrEmptyBase
	}
	if base <= 0 {
		return Report{}, fmt.Errorf("fuzz: base must be positive, got %d", base)
	}

	k := (n * p) / base
	if k < 1 {
		k = 1
	}

	var rep Report
	for step := 0; step < k; step++ {
		action := drawAction(f.rng, &f.cfg)
		i := f.rng.IntN(n)
		f.apply(m, action, i, n)
		rep.record(action, i)
	}
	return rep, nil
}

func (f *Fuzzer) apply(m *record.Munger, action Action, i, n int) {
	switch action {
	case Insert:
		r := f.generateRecord()
		if f.rng.Bool() {
			m.AddBefore(i, r)
		} else {
			m.AddAfter(i, r)
		}
	case Remove:
		m.Remove(i)
	case Replace:
		m.Replace(i, f.generateRecord())
	case Mutate:
		m.Replace(i, f.mutate(m.Base()[i]))
	case Swap:
		j := i
		if n > 1 {
			j = f.rng.IntN(n)
			for j == i {
				j = f.rng.IntN(n)
			}
		}
		a, b := m.Base()[i], m.Base()[j]
		m.Replace(i, b)
		m.Replace(j, a)
	}
}

// generateRecord builds a random application record: unabbreviated (the
// fuzzer has no abbreviation table of its own to encode against), a
// code drawn from the code-frequency table, and a value count/range
// per the size and value distributions.
func (f *Fuzzer) generateRecord() record.Record {
	code := drawCode(f.rng, &f.cfg)
	n := drawSize(f.rng, &f.cfg)
	values := make([]uint64, n)
	for i := range values {
		values[i] = drawValue(f.rng, &f.cfg)
	}
	return record.Data(uint64(block.UnabbrevRecord), code, values...)
}

// mutate copies base, then either changes its code or flips exactly
// one value (if it has any), per the documented Mutate algorithm.
func (f *Fuzzer) mutate(base record.Record) record.Record {
	mutated := base
	mutated.Values = append([]uint64(nil), base.Values...)

	if len(mutated.Values) == 0 || f.rng.Bool() {
		mutated.Code = drawCode(f.rng, &f.cfg)
		return mutated
	}
	idx := f.rng.IntN(len(mutated.Values))
	mutated.Values[idx] = drawValue(f.rng, &f.cfg)
	return mutated
}
