/*
 * naclbc - First compressor pass: collect per-block usage statistics.
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

// Package compress rewrites a bitcode file so that every record is
// encoded with whichever abbreviation — existing or newly synthesized
// from observed record shapes — costs the fewest bits, dropping any
// abbreviation whose final usage falls below a configured threshold.
// It never changes the logical (code, values) sequence a reader would
// recover: only how that sequence is packed into bits.
//
// Three passes do the work. Analyze walks the input once, recording
// per-block-id which abbreviations are actually referenced and how
// often, plus per-(code,size) shape statistics. Select turns those
// statistics into a final abbreviation list per block id, literalizing
// operand positions that never varied. Emit walks the input a second
// time, writing each record with its selected abbreviation when (and
// only when) that abbreviation still matches the record's actual
// values — falling back to an unabbreviated record otherwise, which is
// always correct regardless of how good the selection heuristic was.
package compress

import (
	"fmt"
	"log/slog"

	"github.com/rcornwell/naclbc/abbrev"
	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/header"
)

// BlockAnalysis accumulates what Analyze observed about every instance
// of one block id.
type BlockAnalysis struct {
	ID uint32

	// Existing holds every structurally distinct abbreviation Analyze
	// saw in scope (BLOCKINFO-inherited or block-local), referenced or
	// not, deduplicated by Abbrev.Equals. ExistingUsage is the matching
	// per-index count of records actually encoded with it (0 for an
	// abbreviation no record used).
	Existing      []*abbrev.Abbrev
	ExistingUsage []int

	Groups     map[groupKey]*group
	GroupOrder []groupKey
}

func (ba *BlockAnalysis) addExisting(a *abbrev.Abbrev) int {
	for i, e := range ba.Existing {
		if e.Equals(a) {
			return i
		}
	}
	ba.Existing = append(ba.Existing, a)
	ba.ExistingUsage = append(ba.ExistingUsage, 0)
	return len(ba.Existing) - 1
}

func (ba *BlockAnalysis) group(key groupKey, large bool, size int) *group {
	g, ok := ba.Groups[key]
	if !ok {
		g = newGroup(large, size)
		ba.Groups[key] = g
		ba.GroupOrder = append(ba.GroupOrder, key)
	}
	return g
}

// Analysis is the outcome of analyzing one whole bitcode file.
type Analysis struct {
	Header header.Header
	Blocks map[uint32]*BlockAnalysis
	cutoff int
}

func (an *Analysis) blockFor(id uint32) *BlockAnalysis {
	ba, ok := an.Blocks[id]
	if !ok {
		ba = &BlockAnalysis{ID: id, Groups: make(map[groupKey]*group)}
		an.Blocks[id] = ba
	}
	return ba
}

// Analyze parses data (header included) and collects the statistics
// Select needs, bucketing record shapes longer than cutoff operands
// into one shared group per code.
func Analyze(data []byte, cutoff int, log *slog.Logger) (*Analysis, error) {
	hdr, consumed, err := header.Read(data)
	if err != nil {
		return nil, err
	}
	an := &Analysis{Header: hdr, Blocks: make(map[uint32]*BlockAnalysis), cutoff: cutoff}

	r := bitstream.NewReader(data[consumed:], log)
	if err := analyzeWalk(r, an, nil); err != nil {
		return nil, err
	}
	return an, nil
}

func analyzeWalk(r *bitstream.Reader, an *Analysis, cur *BlockAnalysis) error {
	for {
		entry, err := r.Advance(cur != nil)
		if err != nil {
			return err
		}
		switch entry.Kind {
		case bitstream.EOF:
			if cur != nil {
				return fmt.Errorf("compress: unexpected EOF inside block %d", cur.ID)
			}
			return nil

		case bitstream.Error:
			return entry.Err

		case bitstream.EndBlock:
			if cur == nil {
				return fmt.Errorf("compress: unexpected END_BLOCK at top level")
			}
			count := r.CurrentScopeAbbrevCount()
			for i := 0; i < count; i++ {
				idx := uint64(block.FirstAppAbbrev) + uint64(i)
				a, err := r.CurrentAbbrev(idx)
				if err != nil {
					return err
				}
				cur.addExisting(a)
			}
			return r.ExitScope()

		case bitstream.SubBlock:
			if err := r.EnterSubBlock(); err != nil {
				return err
			}
			child := an.blockFor(entry.ID)
			if err := analyzeWalk(r, an, child); err != nil {
				return err
			}

		case bitstream.Record:
			if cur == nil {
				return fmt.Errorf("compress: unexpected record at top level")
			}
			if entry.ID >= block.FirstAppAbbrev {
				a, err := r.CurrentAbbrev(uint64(entry.ID))
				if err != nil {
					return err
				}
				idx := cur.addExisting(a)
				cur.ExistingUsage[idx]++
			}
			rec, err := r.ReadRecord()
			if err != nil {
				return err
			}
			key, large := groupKeyFor(an.cutoff, rec.Code, len(rec.Values))
			g := cur.group(key, large, len(rec.Values))
			g.addRecord(rec.Values)

		default:
			return fmt.Errorf("compress: unexpected entry kind %v", entry.Kind)
		}
	}
}
