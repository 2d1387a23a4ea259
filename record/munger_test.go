package record

/*
 * naclbc - munger overlay tests
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

import "testing"

func abc() []Record {
	return []Record{
		Data(0, 1, 10),
		Data(0, 2, 20),
		Data(0, 3, 30),
	}
}

func drain(it *Iterator) []Record {
	var out []Record
	for {
		r, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}

func codesOf(recs []Record) []uint32 {
	out := make([]uint32, len(recs))
	for i, r := range recs {
		out[i] = r.Code
	}
	return out
}

func TestMaterializeNoEditsReturnsBase(t *testing.T) {
	m := NewMunger(abc())
	got := codesOf(m.Materialize())
	want := []uint32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAddBeforeAndAfter(t *testing.T) {
	m := NewMunger(abc())
	m.AddBefore(0, Data(0, 100))
	m.AddAfter(1, Data(0, 200))
	got := codesOf(m.Materialize())
	want := []uint32{100, 1, 2, 200, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRemoveDropsEntryButKeepsInserts(t *testing.T) {
	m := NewMunger(abc())
	m.AddBefore(1, Data(0, 99))
	m.Remove(1)
	m.AddAfter(1, Data(0, 98))
	got := codesOf(m.Materialize())
	want := []uint32{1, 99, 98, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReplaceLastWriteWins(t *testing.T) {
	m := NewMunger(abc())
	m.Replace(1, Data(0, 50))
	m.Remove(1)
	got := codesOf(m.Materialize())
	want := []uint32{1, 3}
	if len(got) != len(want) {
		t.Fatalf("expected Remove (last write) to win, got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}

	m2 := NewMunger(abc())
	m2.Remove(1)
	m2.Replace(1, Data(0, 50))
	got2 := codesOf(m2.Materialize())
	want2 := []uint32{1, 50, 3}
	if len(got2) != len(want2) {
		t.Fatalf("got %v, want %v", got2, want2)
	}
	for i := range want2 {
		if got2[i] != want2[i] {
			t.Errorf("index %d: got %d, want %d", i, got2[i], want2[i])
		}
	}
}

func TestRemoveEditsRestoresBase(t *testing.T) {
	m := NewMunger(abc())
	m.AddBefore(0, Data(0, 1))
	m.Remove(1)
	m.RemoveEdits()
	got := codesOf(m.Materialize())
	want := []uint32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestIteratorEqualityTracksPosition(t *testing.T) {
	m := NewMunger(abc())
	a := m.Iterate()
	b := m.Iterate()
	if !a.Equal(b) {
		t.Fatalf("two fresh iterators over the same Munger should be equal")
	}
	a.Next()
	if a.Equal(b) {
		t.Errorf("iterator that advanced should no longer equal one that didn't")
	}
	b.Next()
	if !a.Equal(b) {
		t.Errorf("iterators that advanced identically should be equal again")
	}
}

func TestCloneEditsAreIndependent(t *testing.T) {
	m := NewMunger(abc())
	m.AddBefore(0, Data(0, 7))
	clone := m.Clone()
	clone.AddBefore(0, Data(0, 8))

	got := codesOf(m.Materialize())
	want := []uint32{7, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("original got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("original index %d: got %d, want %d", i, got[i], want[i])
		}
	}

	gotClone := codesOf(clone.Materialize())
	wantClone := []uint32{7, 8, 1, 2, 3}
	if len(gotClone) != len(wantClone) {
		t.Fatalf("clone got %v, want %v", gotClone, wantClone)
	}
}
