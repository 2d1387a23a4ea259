/*
 * naclbc - Second compressor pass: choose abbreviations per block id.
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

import "github.com/rcornwell/naclbc/abbrev"

// candidate is one abbreviation under consideration for a block id,
// either one Analyze found already in use or one Select synthesized
// from a group's statistics. usage accumulates how many records Select
// assigned to it; candidates below the configured threshold are
// dropped before Emit ever sees them.
type candidate struct {
	abbrev *abbrev.Abbrev
	usage  int
}

// Selection is the chosen abbreviation set for one block id: the
// surviving candidates, in the order Emit must DEFINE_ABBREV them, and
// which candidate (by index) each observed record shape should use. A
// GroupChoice value of -1 means no candidate paid for itself; those
// records stay unabbreviated.
type Selection struct {
	ID          uint32
	Candidates  []candidate
	GroupChoice map[groupKey]int
	Dropped     int
	cutoff      int
}

// SelectBlock derives a Selection for ba: existing abbreviations keep
// their observed usage counts; every group seen more than once gets a
// synthesized candidate competing alongside them; each group then picks
// whichever candidate matches its representative values with the
// fewest bits. Candidates whose total usage falls below minUses are
// dropped and their groups fall back to -1.
func SelectBlock(ba *BlockAnalysis, cutoff, minUses int) *Selection {
	sel := &Selection{ID: ba.ID, GroupChoice: make(map[groupKey]int), cutoff: cutoff}

	for i, a := range ba.Existing {
		sel.Candidates = append(sel.Candidates, candidate{abbrev: a, usage: ba.ExistingUsage[i]})
	}

	for _, key := range ba.GroupOrder {
		g := ba.Groups[key]
		if g.Count < 2 {
			continue
		}
		cand := generateCandidate(key.Code, g)
		if cand == nil {
			continue
		}
		dup := false
		for _, c := range sel.Candidates {
			if c.abbrev.Equals(cand) {
				dup = true
				break
			}
		}
		if !dup {
			sel.Candidates = append(sel.Candidates, candidate{abbrev: cand})
		}
	}

	for _, key := range ba.GroupOrder {
		g := ba.Groups[key]
		full := representative(key.Code, g)
		best, bestBits := -1, 0
		for i, c := range sel.Candidates {
			m := c.abbrev.Matches(full)
			if !m.OK {
				continue
			}
			if best == -1 || m.Bits < bestBits {
				best, bestBits = i, m.Bits
			}
		}
		sel.GroupChoice[key] = best
		if best >= 0 {
			sel.Candidates[best].usage += g.Count
		}
	}

	kept := make([]candidate, 0, len(sel.Candidates))
	remap := make(map[int]int, len(sel.Candidates))
	for i, c := range sel.Candidates {
		if c.usage >= minUses {
			remap[i] = len(kept)
			kept = append(kept, c)
		} else {
			sel.Dropped++
		}
	}
	for key, idx := range sel.GroupChoice {
		if idx < 0 {
			continue
		}
		if newIdx, ok := remap[idx]; ok {
			sel.GroupChoice[key] = newIdx
		} else {
			sel.GroupChoice[key] = -1
		}
	}
	sel.Candidates = kept
	return sel
}

// representative builds the (code, values) tuple Matches expects for a
// group: the large bucket has no stored values, so an empty array
// instance stands in, since every real instance will be re-checked
// against its own values at emit time regardless.
func representative(code uint32, g *group) []uint64 {
	if g.Large {
		return []uint64{uint64(code)}
	}
	full := make([]uint64, 0, len(g.Example)+1)
	full = append(full, uint64(code))
	full = append(full, g.Example...)
	return full
}

// generateCandidate synthesizes an abbreviation template for a group:
// the large bucket always gets one VBR8 array; otherwise every operand
// position that never varied becomes a Literal and the rest become a
// VBR field sized to the largest value observed at that position.
func generateCandidate(code uint32, g *group) *abbrev.Abbrev {
	var ops []abbrev.Operand
	ops = append(ops, abbrev.LiteralOp(uint64(code)))
	if g.Large {
		ops = append(ops, abbrev.ArrayOp(), abbrev.VBROp(8))
	} else {
		for pos := range g.Example {
			if g.constantAt(pos) {
				ops = append(ops, abbrev.LiteralOp(g.Example[pos]))
			} else {
				ops = append(ops, abbrev.VBROp(vbrWidthFor(g.MaxVal[pos])))
			}
		}
	}
	a, err := abbrev.New(ops)
	if err != nil {
		return nil
	}
	return a
}
