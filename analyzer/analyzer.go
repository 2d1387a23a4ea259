/*
 * naclbc - Per-block-id bitstream statistics.
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

// Package analyzer walks a bitstream's reader event stream and
// accumulates per-block-id statistics: how many times a block id
// occurs, how many bits its instances span, how many sub-blocks,
// abbreviations and records they hold, and a histogram of record
// codes seen within the id. BLOCKINFO is never counted: the reader
// hides it, exactly as it hides it from every other consumer.
package analyzer

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/rcornwell/naclbc/abbrev"
	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/header"
)

// BlockStats accumulates everything observed across every instance of
// one block id.
type BlockStats struct {
	ID                    uint32
	Instances             int
	TotalBits             uint64
	NumSubBlocks          int
	NumAbbrevs            int
	NumRecords            int
	NumAbbreviatedRecords int
	CodeHist              map[uint32]int
}

// Result is the outcome of analyzing one whole bitstream file.
type Result struct {
	Header header.Header
	Blocks map[uint32]*BlockStats
	// Order lists block ids in the order each was first seen, so a
	// textual dump can walk them in a stable, meaningful sequence
	// rather than map iteration order.
	Order []uint32
	// BlockInfo holds, for every id that has one, the abbreviations
	// registered in the shared BLOCKINFO table — the -dump-blockinfo
	// equivalent, captured once the whole file has been walked.
	BlockInfo map[uint32][]*abbrev.Abbrev
}

func (res *Result) statsFor(id uint32) *BlockStats {
	s, ok := res.Blocks[id]
	if !ok {
		s = &BlockStats{ID: id, CodeHist: make(map[uint32]int)}
		res.Blocks[id] = s
		res.Order = append(res.Order, id)
	}
	return s
}

// Analyze parses data (a whole PEXE file, header included) and returns
// its per-block-id statistics.
func Analyze(data []byte, log *slog.Logger) (*Result, error) {
	hdr, consumed, err := header.Read(data)
	if err != nil {
		return nil, err
	}
	res := &Result{Header: hdr, Blocks: make(map[uint32]*BlockStats)}

	r := bitstream.NewReader(data[consumed:], log)
	if err := walk(r, res, nil); err != nil {
		return nil, err
	}

	res.BlockInfo = make(map[uint32][]*abbrev.Abbrev)
	for _, id := range res.Order {
		if abbrevs := r.BlockInfo(id); len(abbrevs) > 0 {
			res.BlockInfo[id] = abbrevs
		}
	}
	return res, nil
}

// walk drives Advance until it sees an EndBlock (when parent is
// non-nil, meaning we're inside a block) or EOF (at the top level).
// parent, when non-nil, is the BlockStats of the block we're currently
// inside, so nested sub-blocks and records are attributed to it.
func walk(r *bitstream.Reader, res *Result, parent *BlockStats) error {
	for {
		entry, err := r.Advance(parent != nil)
		if err != nil {
			return err
		}
		switch entry.Kind {
		case bitstream.EOF:
			if parent != nil {
				return fmt.Errorf("analyzer: unexpected EOF inside block %d", parent.ID)
			}
			return nil

		case bitstream.Error:
			return entry.Err

		case bitstream.EndBlock:
			if parent == nil {
				return fmt.Errorf("analyzer: unexpected END_BLOCK at top level")
			}
			parent.NumAbbrevs += r.CurrentScopeAbbrevCount()
			return r.ExitScope()

		case bitstream.SubBlock:
			startBit := r.CurrentBitNo()
			if parent != nil {
				parent.NumSubBlocks++
			}
			if err := r.EnterSubBlock(); err != nil {
				return err
			}
			child := res.statsFor(entry.ID)
			child.Instances++
			if err := walk(r, res, child); err != nil {
				return err
			}
			child.TotalBits += r.CurrentBitNo() - startBit

		case bitstream.Record:
			rec, err := r.ReadRecord()
			if err != nil {
				return err
			}
			if parent == nil {
				return fmt.Errorf("analyzer: unexpected record at top level")
			}
			parent.NumRecords++
			if entry.ID >= block.FirstAppAbbrev {
				parent.NumAbbreviatedRecords++
			}
			parent.CodeHist[rec.Code]++

		default:
			return fmt.Errorf("analyzer: unexpected entry kind %v", entry.Kind)
		}
	}
}

// Dump returns an XML-like textual summary of res: one element per
// block id in first-seen order, with its counters and code histogram
// as attributes/children.
func Dump(res *Result) string {
	version, _ := res.Header.Version()
	out := fmt.Sprintf("<stream version=%d>\n", version)
	for _, id := range res.Order {
		s := res.Blocks[id]
		out += fmt.Sprintf(
			"  <block id=%d instances=%d bits=%d subblocks=%d abbrevs=%d records=%d abbreviated=%d>\n",
			s.ID, s.Instances, s.TotalBits, s.NumSubBlocks, s.NumAbbrevs, s.NumRecords, s.NumAbbreviatedRecords)
		codes := make([]uint32, 0, len(s.CodeHist))
		for c := range s.CodeHist {
			codes = append(codes, c)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
		for _, c := range codes {
			out += fmt.Sprintf("    <code value=%d count=%d/>\n", c, s.CodeHist[c])
		}
		out += "  </block>\n"
	}
	out += "</stream>\n"
	return out
}

// DumpBlockInfo writes a textual summary of every BLOCKINFO-registered
// abbreviation res captured, one block id at a time in first-seen
// order.
func DumpBlockInfo(res *Result) string {
	out := "<blockinfo>\n"
	for _, id := range res.Order {
		abbrevs := res.BlockInfo[id]
		if len(abbrevs) == 0 {
			continue
		}
		out += fmt.Sprintf("  <block id=%d>\n", id)
		for i, a := range abbrevs {
			out += fmt.Sprintf("    <abbrev index=%d ops=%d>\n", i, len(a.Ops))
		}
		out += "  </block>\n"
	}
	out += "</blockinfo>\n"
	return out
}
