/*
 * naclbc - Flattening a whole file into, and replaying it from, a
 * single linear record sequence for munging.
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

package bitstream

import (
	"fmt"
	"log/slog"

	"github.com/rcornwell/naclbc/abbrev"
	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/header"
	"github.com/rcornwell/naclbc/record"
)

// flatListener mirrors every abbreviation-bookkeeping event Advance
// performs internally into the flat record buffer being built, in the
// exact order the underlying bits carried them.
type flatListener struct {
	buf *[]record.Record
}

func (l *flatListener) OnAbbrev(a *abbrev.Abbrev, local bool) {
	*l.buf = append(*l.buf, record.DefineAbbrevRecord(a, local))
}

func (l *flatListener) OnSetBID(id uint32) {
	*l.buf = append(*l.buf, record.Data(uint64(block.UnabbrevRecord), SetBIDRecordCode, uint64(id)))
}

func (l *flatListener) OnBlockInfoBegin(codeWidth uint32) {
	*l.buf = append(*l.buf, record.EnterBlock(block.BlockInfoID, codeWidth))
}

func (l *flatListener) OnBlockInfoEnd() {
	*l.buf = append(*l.buf, record.ExitBlock())
}

// ReadFlat parses a whole frozen bitcode file into one linear record
// sequence: a KindHeader entry, then KindEnterBlock/KindDefineAbbrev/
// KindData/KindExitBlock entries for everything the file contains,
// BLOCKINFO included. This is the form the munger and fuzzer operate
// on, since every token — not just top-level data records — is a
// position a caller may want to insert before, insert after, remove
// or replace.
func ReadFlat(data []byte, log *slog.Logger) ([]record.Record, error) {
	hdr, consumed, err := header.Read(data)
	if err != nil {
		return nil, err
	}

	buf := []record.Record{record.HeaderRecord(hdr)}
	r := NewReader(data[consumed:], log)
	r.SetListener(&flatListener{buf: &buf})

	for {
		entry, err := r.Advance(false)
		if err != nil {
			return nil, err
		}
		switch entry.Kind {
		case EOF:
			return buf, nil
		case Error:
			return nil, entry.Err
		case SubBlock:
			buf = append(buf, record.EnterBlock(entry.ID, entry.CodeWidth))
			if err := r.EnterSubBlock(); err != nil {
				return nil, err
			}
		case EndBlock:
			buf = append(buf, record.ExitBlock())
		case Record:
			rec, err := r.ReadRecord()
			if err != nil {
				return nil, err
			}
			buf = append(buf, rec)
		default:
			return nil, fmt.Errorf("bitstream: unexpected entry kind %v", entry.Kind)
		}
	}
}

// WriteFlat replays a flat record sequence (as produced by ReadFlat,
// or hand-built/munged from one) back into bytes: a header followed
// by a bitstream body. recs must begin with a KindHeader entry. Any
// malformed construct (an out-of-range block code width, a record
// naming an abbreviation its block never defined, an unclosed block
// at the end of the list) is a hard error.
func WriteFlat(recs []record.Record, log *slog.Logger) ([]byte, error) {
	out, _, _, err := writeFlat(recs, log, false)
	return out, err
}

// WriteFlatRecover is WriteFlat with the writer's recover mode
// enabled: the same malformed constructs are patched on a best-effort
// basis instead of aborting, and the counts of what was seen
// (numErrors) versus what was actually patched (numRepairs) are
// returned alongside the bytes.
func WriteFlatRecover(recs []record.Record, log *slog.Logger) ([]byte, int, int, error) {
	return writeFlat(recs, log, true)
}

func writeFlat(recs []record.Record, log *slog.Logger, recover bool) ([]byte, int, int, error) {
	if len(recs) == 0 || recs[0].Kind != record.KindHeader {
		return nil, 0, 0, fmt.Errorf("bitstream: flat record list must begin with a header entry")
	}
	headerBytes, err := header.Write(*recs[0].Header)
	if err != nil {
		return nil, 0, 0, err
	}

	w := NewWriter(log)
	w.SetRecover(recover)
	var blockInfoEntries []BlockInfoEntry
	var blockInfoCodeWidth uint32
	inBlockInfo := false
	depth := 0

	for _, rec := range recs[1:] {
		switch rec.Kind {
		case record.KindEnterBlock:
			if rec.Code == block.BlockInfoID && depth == 0 {
				inBlockInfo = true
				blockInfoCodeWidth = uint32(rec.Abbrev)
				blockInfoEntries = nil
				continue
			}
			if err := w.EnterBlock(rec.Code, uint32(rec.Abbrev)); err != nil {
				return nil, 0, 0, err
			}
			depth++
		case record.KindExitBlock:
			if inBlockInfo && depth == 0 {
				if err := w.WriteBlockInfo(blockInfoCodeWidth, blockInfoEntries); err != nil {
					return nil, 0, 0, err
				}
				inBlockInfo = false
				continue
			}
			if err := w.ExitBlock(); err != nil {
				return nil, 0, 0, err
			}
			depth--
		case record.KindDefineAbbrev:
			if inBlockInfo {
				if len(blockInfoEntries) == 0 {
					return nil, 0, 0, fmt.Errorf("bitstream: BLOCKINFO abbreviation with no preceding SETBID")
				}
				last := &blockInfoEntries[len(blockInfoEntries)-1]
				last.Abbrevs = append(last.Abbrevs, rec.AbbrevDef)
				continue
			}
			if err := w.DefineAbbrev(rec.AbbrevDef); err != nil {
				return nil, 0, 0, err
			}
		case record.KindData:
			if inBlockInfo && rec.Code == SetBIDRecordCode && len(rec.Values) >= 1 {
				blockInfoEntries = append(blockInfoEntries, BlockInfoEntry{BlockID: uint32(rec.Values[0])})
				continue
			}
			if err := w.EmitRecord(rec); err != nil {
				return nil, 0, 0, err
			}
		case record.KindHeader:
			return nil, 0, 0, fmt.Errorf("bitstream: header record may only appear first")
		default:
			return nil, 0, 0, fmt.Errorf("bitstream: unknown record kind %v", rec.Kind)
		}
	}

	out, err := w.Finish()
	if err != nil {
		return nil, 0, 0, err
	}
	return append(headerBytes, out...), w.NumErrors(), w.NumRepairs(), nil
}
