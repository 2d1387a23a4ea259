/*
 * naclbc - Third compressor pass: rewrite the bitstream.
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

import (
	"fmt"
	"log/slog"

	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/header"
	"github.com/rcornwell/naclbc/record"
)

// emit walks data's body a second time, writing w with each block id's
// selected abbreviations defined locally up front and each record
// encoded with whichever selected candidate still matches its actual
// values — never the one the analyze pass merely expected it to match.
func emit(data []byte, hdr header.Header, sels map[uint32]*Selection, rpt *Report, log *slog.Logger) ([]byte, error) {
	_, consumed, err := header.Read(data)
	if err != nil {
		return nil, err
	}
	headerOut, err := header.Write(hdr)
	if err != nil {
		return nil, err
	}

	w := bitstream.NewWriter(log)
	r := bitstream.NewReader(data[consumed:], log)
	if err := emitWalk(r, w, sels, rpt, nil); err != nil {
		return nil, err
	}
	body, err := w.Finish()
	if err != nil {
		return nil, err
	}
	return append(headerOut, body...), nil
}

func emitWalk(r *bitstream.Reader, w *bitstream.Writer, sels map[uint32]*Selection, rpt *Report, cur *Selection) error {
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
			return r.ExitScope()

		case bitstream.SubBlock:
			if err := r.EnterSubBlock(); err != nil {
				return err
			}
			if err := w.EnterBlock(entry.ID, entry.CodeWidth); err != nil {
				return err
			}
			child := sels[entry.ID]
			if child != nil {
				for _, c := range child.Candidates {
					if err := w.DefineAbbrev(c.abbrev); err != nil {
						return err
					}
				}
				rpt.noteBlock(entry.ID, len(child.Candidates), child.Dropped)
			}
			if err := emitWalk(r, w, sels, rpt, child); err != nil {
				return err
			}
			if err := w.ExitBlock(); err != nil {
				return err
			}

		case bitstream.Record:
			if cur == nil {
				return fmt.Errorf("compress: unexpected record at top level")
			}
			rec, err := r.ReadRecord()
			if err != nil {
				return err
			}
			if err := emitRecord(w, cur, rpt, rec); err != nil {
				return err
			}

		default:
			return fmt.Errorf("compress: unexpected entry kind %v", entry.Kind)
		}
	}
}

func emitRecord(w *bitstream.Writer, cur *Selection, rpt *Report, rec record.Record) error {
	key, _ := groupKeyFor(cur.cutoff, rec.Code, len(rec.Values))
	if idx, ok := cur.GroupChoice[key]; ok && idx >= 0 {
		cand := cur.Candidates[idx]
		full := make([]uint64, 0, len(rec.Values)+1)
		full = append(full, uint64(rec.Code))
		full = append(full, rec.Values...)
		if m := cand.abbrev.Matches(full); m.OK {
			rpt.noteAbbreviated(cur.ID)
			return w.EmitAbbrevRecord(uint64(block.FirstAppAbbrev)+uint64(idx), rec.Code, rec.Values...)
		}
	}
	rpt.noteUnabbreviated(cur.ID)
	return w.EmitUnabbrevRecord(rec.Code, rec.Values...)
}
