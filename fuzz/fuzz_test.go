/*
 * naclbc - Fuzzer determinism and edit-algorithm tests.
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
	"testing"

	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/record"
)

func threeRecordBase() []record.Record {
	return []record.Record{
		record.Data(uint64(block.UnabbrevRecord), 1, 10),
		record.Data(uint64(block.UnabbrevRecord), 2, 20),
		record.Data(uint64(block.UnabbrevRecord), 3, 30),
	}
}

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG("abc", 0)
	b := NewRNG("abc", 0)
	for i := 0; i < 1000; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("sequence diverged at draw %d", i)
		}
	}
}

func TestRNGDistinguishesSeedAndSalt(t *testing.T) {
	base := NewRNG("abc", 0).Uint64()
	if NewRNG("abd", 0).Uint64() == base {
		t.Errorf("different seed strings produced identical first draw")
	}
	if NewRNG("abc", 1).Uint64() == base {
		t.Errorf("different salts produced identical first draw")
	}
}

func TestIntNRange(t *testing.T) {
	r := NewRNG("range-check", 7)
	for i := 0; i < 5000; i++ {
		v := r.IntN(5)
		if v < 0 || v >= 5 {
			t.Fatalf("IntN(5) returned %d out of range", v)
		}
	}
}

// TestFuzzDeterminism is scenario 5: seed="abc", salt=0 over a
// three-record base must produce the same first five actions on every
// independent run. It uses p=500, base=100 so that at least five
// actions are drawn.
func TestFuzzDeterminism(t *testing.T) {
	cfg := DefaultConfig()

	run := func() []Action {
		f := New("abc", 0, cfg)
		m := record.NewMunger(threeRecordBase())
		rep, err := f.Run(m, 500, 100) // k = 3*500/100 = 15, well over 5
		if err != nil {
			t.Fatalf("Run error: %v", err)
		}
		if len(rep.Actions) < 5 {
			t.Fatalf("expected at least 5 actions, got %d", len(rep.Actions))
		}
		return rep.Actions[:5]
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("action count mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("action %d diverged: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRunRejectsEmptyBase(t *testing.T) {
	f := New("x", 0, DefaultConfig())
	m := record.NewMunger(nil)
	if _, err := f.Run(m, 100, 100); err != ErrEmptyBase {
		t.Errorf("expected ErrEmptyBase, got %v", err)
	}
}

func TestRunEditCountAtLeastOne(t *testing.T) {
	f := New("tiny-percentage", 0, DefaultConfig())
	m := record.NewMunger(threeRecordBase())
	rep, err := f.Run(m, 1, 100000) // k would floor to 0 without the max(1, ...) clamp
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(rep.Actions) != 1 {
		t.Fatalf("expected exactly one edit from the k=max(1,...) clamp, got %d", len(rep.Actions))
	}
}

func TestRemoveAppliesToMunger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActionWeights = [numActions]uint32{0, 0, 1, 0, 0} // force Remove every time
	f := New("remove-only", 0, cfg)
	m := record.NewMunger(threeRecordBase())
	rep, err := f.Run(m, 100, 100) // k = 3*100/100 = 3 Remove actions
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	out := m.Materialize()
	if len(out) != m.Len()-len(rep.IndexCounts) {
		t.Errorf("expected one record removed per distinct target index (%d), got %d entries from base %d", len(rep.IndexCounts), len(out), m.Len())
	}
}

func TestSwapExchangesTwoIndices(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActionWeights = [numActions]uint32{0, 0, 0, 0, 1} // force Swap every time
	f := New("swap-only", 0, cfg)
	base := threeRecordBase()
	m := record.NewMunger(base)
	if _, err := f.Run(m, 100, 100); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	out := m.Materialize()
	if len(out) != len(base) {
		t.Fatalf("swap changed record count: got %d, want %d", len(out), len(base))
	}
	seen := make(map[uint32]bool)
	for _, r := range out {
		seen[r.Code] = true
	}
	for _, want := range base {
		if !seen[want.Code] {
			t.Errorf("code %d missing after swap-only fuzzing", want.Code)
		}
	}
}

func TestMutateChangesCodeOrOneValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActionWeights = [numActions]uint32{0, 1, 0, 0, 0} // force Mutate every time
	f := New("mutate-only", 0, cfg)
	base := threeRecordBase()
	m := record.NewMunger(append([]record.Record(nil), base...))
	if _, err := f.Run(m, 100, 100); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	out := m.Materialize()
	if len(out) != len(base) {
		t.Fatalf("mutate changed record count: got %d, want %d", len(out), len(base))
	}
}

func TestDrawCodeOtherAvoidsNamedCodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Codes = []CodeEntry{{Code: 100, Weight: 0}}
	cfg.OtherWeight = 1
	cfg.OtherMin, cfg.OtherMax = 100, 101
	r := NewRNG("other-check", 3)
	for i := 0; i < 50; i++ {
		c := drawCode(r, &cfg)
		if c == 100 {
			t.Errorf("Other sentinel drew a code from the named set")
		}
		if c != 101 {
			t.Errorf("Other sentinel drew %d, want 101 (only free slot)", c)
		}
	}
}
