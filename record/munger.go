/*
 * naclbc - Non-destructive edit overlay over a base record list.
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

package record

// replaceKind tags what, if anything, a Munger has done to the base
// entry at a given index.
type replaceKind int

const (
	replaceNone replaceKind = iota
	replaceRemoved
	replaceReplaced
)

type replaceEntry struct {
	kind replaceKind
	rec  Record
}

// Munger layers before/after/replace edits over an immutable base
// list. The base slice is never mutated; every edit is recorded in a
// side table keyed by base index, so cloning a Munger (copying the
// struct) is cheap and independent edit sets can share one base.
type Munger struct {
	base    []Record
	before  map[int][]Record
	after   map[int][]Record
	replace map[int]replaceEntry
}

// NewMunger wraps base (not copied; the caller must not mutate it
// afterward) with an empty edit overlay.
func NewMunger(base []Record) *Munger {
	return &Munger{
		base:    base,
		before:  make(map[int][]Record),
		after:   make(map[int][]Record),
		replace: make(map[int]replaceEntry),
	}
}

// Len returns the number of entries in the base list (not counting
// edits).
func (m *Munger) Len() int {
	return len(m.base)
}

// Base returns the underlying base list; callers must treat it as
// read-only.
func (m *Munger) Base() []Record {
	return m.base
}

// Clone returns a Munger sharing the same base list with an
// independent copy of the edit overlay.
func (m *Munger) Clone() *Munger {
	c := NewMunger(m.base)
	for i, recs := range m.before {
		c.before[i] = append([]Record(nil), recs...)
	}
	for i, recs := range m.after {
		c.after[i] = append([]Record(nil), recs...)
	}
	for i, re := range m.replace {
		c.replace[i] = re
	}
	return c
}

// AddBefore inserts r to be yielded immediately before base index i.
func (m *Munger) AddBefore(i int, r Record) {
	m.before[i] = append(m.before[i], r)
}

// AddAfter inserts r to be yielded immediately after base index i (and
// after any earlier AddAfter entries for the same index, and before any
// AddBefore entries queued for i+1).
func (m *Munger) AddAfter(i int, r Record) {
	m.after[i] = append(m.after[i], r)
}

// Remove marks the base entry at i as dropped. A later Replace or
// Remove call for the same index overwrites this one; last write
// wins.
func (m *Munger) Remove(i int) {
	m.replace[i] = replaceEntry{kind: replaceRemoved}
}

// Replace marks the base entry at i as substituted by r. Last write
// for a given index wins, matching Remove.
func (m *Munger) Replace(i int, r Record) {
	m.replace[i] = replaceEntry{kind: replaceReplaced, rec: r}
}

// RemoveEdits discards every before/after/replace edit, restoring the
// overlay to empty; the base list is untouched.
func (m *Munger) RemoveEdits() {
	m.before = make(map[int][]Record)
	m.after = make(map[int][]Record)
	m.replace = make(map[int]replaceEntry)
}

// Materialize walks the whole edited sequence eagerly into a slice.
// Most callers should prefer Iterate, which never allocates the
// intermediate result.
func (m *Munger) Materialize() []Record {
	out := make([]Record, 0, len(m.base))
	it := m.Iterate()
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out
}

// Phase names the three positions an Iterator can be parked at within
// a single base index.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseAt
	PhaseAfter
)

// Iterator walks a Munger's edited record sequence lazily: each Next
// call does O(1) amortized work rather than rebuilding the whole list.
// Its position is the triple (index, phase, cursor); two iterators
// over the same Munger compare equal (see Equal) exactly when all
// three agree, per the munging model's documented equality rule.
type Iterator struct {
	m      *Munger
	index  int
	phase  Phase
	cursor int
}

// Iterate returns an Iterator positioned before the first entry.
func (m *Munger) Iterate() *Iterator {
	return &Iterator{m: m}
}

// Position reports the iterator's current (index, phase) pair.
func (it *Iterator) Position() (index int, phase Phase) {
	return it.index, it.phase
}

// Equal reports whether it and other are at the same position over
// the same Munger.
func (it *Iterator) Equal(other *Iterator) bool {
	if other == nil {
		return false
	}
	return it.m == other.m && it.index == other.index && it.phase == other.phase && it.cursor == other.cursor
}

// Next returns the next record in the edited sequence, or ok=false
// once the sequence is exhausted.
func (it *Iterator) Next() (Record, bool) {
	for it.index < len(it.m.base) {
		switch it.phase {
		case PhaseBefore:
			list := it.m.before[it.index]
			if it.cursor < len(list) {
				r := list[it.cursor]
				it.cursor++
				return r, true
			}
			it.phase = PhaseAt
			it.cursor = 0

		case PhaseAt:
			it.phase = PhaseAfter
			re, edited := it.m.replace[it.index]
			if !edited || re.kind == replaceNone {
				return it.m.base[it.index], true
			}
			if re.kind == replaceReplaced {
				return re.rec, true
			}
			// replaceRemoved: yield nothing for this index, fall
			// through to the PhaseAfter inserts.

		case PhaseAfter:
			list := it.m.after[it.index]
			if it.cursor < len(list) {
				r := list[it.cursor]
				it.cursor++
				return r, true
			}
			it.index++
			it.phase = PhaseBefore
			it.cursor = 0
		}
	}
	return Record{}, false
}
