/*
 * naclbc - Per-(code,size) record shape statistics.
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

package compress

import "math/bits"

// groupKey identifies one shape of record within a block: its code and
// its operand count, the two things an abbreviation template is
// specialized against. Records longer than the configured size cutoff
// collapse onto one shared "large" bucket per code, rather than one
// bucket per exact length, so a block with records of wildly varying
// array length doesn't explode the candidate search.
type groupKey struct {
	Code uint32
	Size int
}

// groupKeyFor buckets a record of the given code and operand count
// under cutoff's rules.
func groupKeyFor(cutoff int, code uint32, size int) (key groupKey, large bool) {
	if size > cutoff {
		return groupKey{Code: code, Size: cutoff + 1}, true
	}
	return groupKey{Code: code, Size: size}, false
}

// group accumulates everything seen across every instance of one
// groupKey. For ordinary (non-large) groups, ValueCounts and MaxVal
// track, per operand position, the distinct values observed and the
// largest magnitude, so a candidate abbreviation can literal-ize
// positions that never vary and size VBR fields for the rest. Large
// groups skip all of this: their candidate is always one VBR8 array.
type group struct {
	Count       int
	Large       bool
	Example     []uint64
	ValueCounts []map[uint64]int
	MaxVal      []uint64
}

func newGroup(large bool, size int) *group {
	g := &group{Large: large}
	if !large {
		g.ValueCounts = make([]map[uint64]int, size)
		g.MaxVal = make([]uint64, size)
		for i := range g.ValueCounts {
			g.ValueCounts[i] = make(map[uint64]int)
		}
	}
	return g
}

func (g *group) addRecord(values []uint64) {
	g.Count++
	if g.Large {
		return
	}
	if g.Example == nil {
		g.Example = append([]uint64(nil), values...)
	}
	for i, v := range values {
		g.ValueCounts[i][v]++
		if v > g.MaxVal[i] {
			g.MaxVal[i] = v
		}
	}
}

// constantAt reports whether every instance of the group agreed on the
// value at position pos.
func (g *group) constantAt(pos int) bool {
	return len(g.ValueCounts[pos]) == 1
}

// vbrWidthFor picks a VBR chunk width comfortably above maxVal's bit
// length, so the common case costs one chunk and an occasional outlier
// spills into a second rather than forcing every value that wide.
func vbrWidthFor(maxVal uint64) uint32 {
	w := uint32(bits.Len64(maxVal)) + 1
	if w < 4 {
		w = 4
	}
	if w > 32 {
		w = 32
	}
	return w
}
