/*
 * naclbc - Bitstream writer: the event loop's mirror image.
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
	"github.com/rcornwell/naclbc/bitio"
	"github.com/rcornwell/naclbc/record"
)

// BlockInfoEntry is one (block id, abbreviations) pair to emit as part
// of a BLOCKINFO block.
type BlockInfoEntry struct {
	BlockID uint32
	Abbrevs []*abbrev.Abbrev
}

// Writer is the encoding counterpart of Reader.
type Writer struct {
	bits          *bitio.Writer
	stack         *block.Stack
	log           *slog.Logger
	lengthOffsets []int

	recover    bool
	numErrors  int
	numRepairs int
}

// NewWriter returns a Writer starting at the top level.
func NewWriter(log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{bits: bitio.NewWriter(), stack: block.NewStack(), log: log}
}

// Depth reports how many blocks are currently open.
func (w *Writer) Depth() int { return w.stack.Depth() }

// SetRecover toggles best-effort recovery from malformed emission
// requests: an out-of-range block code width is clamped to 32, a
// record naming an abbreviation the current scope doesn't have falls
// back to an unabbreviated emission, and any block left open at Finish
// is closed with synthesized END_BLOCKs. Each substitution increments
// NumErrors and, where a repair was actually made rather than merely
// tolerated, NumRepairs. Outside recover mode the same conditions
// return an error instead.
func (w *Writer) SetRecover(enabled bool) {
	w.recover = enabled
}

// NumErrors reports how many malformed emissions recover mode has
// seen so far.
func (w *Writer) NumErrors() int { return w.numErrors }

// NumRepairs reports how many of those were actually patched up rather
// than merely tolerated.
func (w *Writer) NumRepairs() int { return w.numRepairs }

func (w *Writer) recordError(err error) {
	w.numErrors++
	w.log.Debug("bitstream: recovering from malformed emission", "error", err)
}

func (w *Writer) recordRepair() {
	w.numRepairs++
}

// Finish flushes any partial trailing word and returns the encoded
// bytes. Outside recover mode the writer must have no open blocks; in
// recover mode any still-open blocks are closed with a synthesized
// ExitBlock first.
func (w *Writer) Finish() ([]byte, error) {
	if w.stack.Depth() != 0 {
		if !w.recover {
			return nil, fmt.Errorf("bitstream: Finish called with %d block(s) still open", w.stack.Depth())
		}
		for w.stack.Depth() != 0 {
			w.recordError(fmt.Errorf("bitstream: block still open at Finish"))
			if err := w.ExitBlock(); err != nil {
				return nil, err
			}
			w.recordRepair()
		}
	}
	w.bits.FlushToWord()
	return w.bits.Bytes(), nil
}

// EnterBlock emits an ENTER_SUBBLOCK header and pushes a scope for id,
// reserving a block-length word to be filled in by ExitBlock. In
// recover mode a code width outside [block.MinCodeWidth, 32] is
// clamped to 32 rather than rejected.
func (w *Writer) EnterBlock(id uint32, codeWidth uint32) error {
	if w.recover && (codeWidth < block.MinCodeWidth || codeWidth > 32) {
		w.recordError(fmt.Errorf("%w: %d", block.ErrBadCodeWidth, codeWidth))
		codeWidth = 32
		w.recordRepair()
	}
	outerWidth := w.stack.CodeWidth()
	w.bits.Emit(block.EnterSubblock, outerWidth)
	w.bits.EmitVBR(id, 8)
	w.bits.EmitVBR(codeWidth, 4)
	w.bits.FlushToWord()
	offset := w.bits.Reserve()
	if _, err := w.stack.Enter(id, codeWidth); err != nil {
		return err
	}
	w.lengthOffsets = append(w.lengthOffsets, offset)
	return nil
}

// ExitBlock emits an END_BLOCK and backpatches the matching EnterBlock
// call's reserved length word.
func (w *Writer) ExitBlock() error {
	width := w.stack.CodeWidth()
	w.bits.Emit(block.EndBlock, width)
	w.bits.FlushToWord()
	if len(w.lengthOffsets) == 0 {
		return ErrBlockSizeMismatch
	}
	offset := w.lengthOffsets[len(w.lengthOffsets)-1]
	w.lengthOffsets = w.lengthOffsets[:len(w.lengthOffsets)-1]

	bodyStart := offset + 4
	bodyLen := len(w.bits.Bytes()) - bodyStart
	if bodyLen%4 != 0 {
		return fmt.Errorf("bitstream: block body length %d is not word-aligned", bodyLen)
	}
	if err := w.bits.BackpatchWord(offset, uint32(bodyLen/4)); err != nil {
		return err
	}
	_, err := w.stack.Exit()
	return err
}

// DefineAbbrev emits a DEFINE_ABBREV local to the current block.
func (w *Writer) DefineAbbrev(a *abbrev.Abbrev) error {
	if w.stack.Depth() == 0 {
		return fmt.Errorf("bitstream: DEFINE_ABBREV at top level")
	}
	w.emitAbbrevDefBits(a)
	w.stack.AddAbbrev(a)
	return nil
}

func (w *Writer) emitAbbrevDefBits(a *abbrev.Abbrev) {
	codeWidth := w.stack.CodeWidth()
	w.bits.Emit(block.DefineAbbrev, codeWidth)
	w.bits.EmitVBR(uint32(len(a.Ops)), 5)
	for _, op := range a.Ops {
		switch op.Kind {
		case abbrev.Literal:
			w.bits.Emit(1, 1)
			w.bits.EmitVBR64(op.Value, 8)
		case abbrev.Fixed:
			w.bits.Emit(0, 1)
			w.bits.Emit(1, 3)
			w.bits.EmitVBR(op.Width, 5)
		case abbrev.VBR:
			w.bits.Emit(0, 1)
			w.bits.Emit(2, 3)
			w.bits.EmitVBR(op.Width, 5)
		case abbrev.Array:
			w.bits.Emit(0, 1)
			w.bits.Emit(3, 3)
		case abbrev.Char6:
			w.bits.Emit(0, 1)
			w.bits.Emit(4, 3)
		}
	}
}

// WriteBlockInfo emits a whole BLOCKINFO block from entries, in order,
// and registers every abbreviation into the shared BLOCKINFO table so
// later EnterBlock calls for a matching id inherit it exactly as a
// Reader would.
func (w *Writer) WriteBlockInfo(codeWidth uint32, entries []BlockInfoEntry) error {
	if w.stack.HaveBlockInfo() {
		return ErrBlockInfoReentryForWriter
	}
	if err := w.EnterBlock(block.BlockInfoID, codeWidth); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.EmitUnabbrevRecord(SetBIDRecordCode, uint64(e.BlockID)); err != nil {
			return err
		}
		for _, a := range e.Abbrevs {
			w.emitAbbrevDefBits(a)
			w.stack.AddBlockInfoAbbrev(e.BlockID, a)
		}
	}
	if err := w.ExitBlock(); err != nil {
		return err
	}
	w.stack.MarkBlockInfoRead()
	return nil
}

// ErrBlockInfoReentryForWriter is returned by WriteBlockInfo if called
// more than once on the same Writer.
var ErrBlockInfoReentryForWriter = fmt.Errorf("bitstream: BLOCKINFO already written")

// EmitUnabbrevRecord writes code and values using UNABBREV_RECORD.
func (w *Writer) EmitUnabbrevRecord(code uint32, values ...uint64) error {
	width := w.stack.CodeWidth()
	w.bits.Emit(block.UnabbrevRecord, width)
	w.bits.EmitVBR(code, 6)
	w.bits.EmitVBR(uint32(len(values)), 6)
	for _, v := range values {
		w.bits.EmitVBR64(v, 6)
	}
	return nil
}

// EmitAbbrevRecord writes code and values using the abbreviation at
// abbrevID in the current scope. In recover mode, an abbrevID the
// scope doesn't recognize falls back to an unabbreviated emission of
// the same code and values instead of failing.
func (w *Writer) EmitAbbrevRecord(abbrevID uint64, code uint32, values ...uint64) error {
	a, err := w.stack.Abbrev(abbrevID)
	if err != nil {
		if w.recover {
			w.recordError(err)
			w.recordRepair()
			return w.EmitUnabbrevRecord(code, values...)
		}
		return err
	}
	width := w.stack.CodeWidth()
	w.bits.Emit(uint32(abbrevID), width)

	all := make([]uint64, 0, len(values)+1)
	all = append(all, uint64(code))
	all = append(all, values...)
	return w.encodeAbbrevValues(a, all)
}

// EmitBadAbbrevIndex writes one record code one past the current
// scope's last valid abbreviation index, with no payload bits behind
// it, then returns — the block still closes cleanly afterward. This
// exists purely to hand a reader fuzz-test a single deliberately
// invalid abbreviation reference without otherwise corrupting the
// stream.
func (w *Writer) EmitBadAbbrevIndex() error {
	cur := w.stack.Current()
	if cur == nil {
		return fmt.Errorf("bitstream: EmitBadAbbrevIndex at top level")
	}
	bad := uint64(block.FirstAppAbbrev) + uint64(len(cur.Abbrevs))
	width := w.stack.CodeWidth()
	w.bits.Emit(uint32(bad), width)
	return nil
}

// EmitRecord writes r using whichever abbreviation r.Abbrev names
// (block.UnabbrevRecord included).
func (w *Writer) EmitRecord(r record.Record) error {
	if r.Abbrev == uint64(block.UnabbrevRecord) {
		return w.EmitUnabbrevRecord(r.Code, r.Values...)
	}
	return w.EmitAbbrevRecord(r.Abbrev, r.Code, r.Values...)
}

func (w *Writer) encodeAbbrevValues(a *abbrev.Abbrev, values []uint64) error {
	ops := a.Ops
	vi := 0
	for oi := 0; oi < len(ops); oi++ {
		op := ops[oi]
		if op.Kind == abbrev.Array {
			elem := ops[oi+1]
			count := len(values) - vi
			if count < 0 {
				return fmt.Errorf("bitstream: negative array count")
			}
			w.bits.EmitVBR(uint32(count), 6)
			for ; vi < len(values); vi++ {
				if err := w.encodeOne(elem, values[vi]); err != nil {
					return err
				}
			}
			oi++
			continue
		}
		if vi >= len(values) {
			return fmt.Errorf("bitstream: too few values for abbreviation")
		}
		if err := w.encodeOne(op, values[vi]); err != nil {
			return err
		}
		vi++
	}
	if vi != len(values) {
		return fmt.Errorf("bitstream: too many values for abbreviation")
	}
	return nil
}

func (w *Writer) encodeOne(op abbrev.Operand, v uint64) error {
	switch op.Kind {
	case abbrev.Literal:
		if v != op.Value {
			return fmt.Errorf("bitstream: value %d does not match literal operand %d", v, op.Value)
		}
		return nil
	case abbrev.Fixed:
		if op.Width == 0 {
			if v != 0 {
				return fmt.Errorf("bitstream: value %d does not fit Fixed(0)", v)
			}
			return nil
		}
		if op.Width < 32 && v >= uint64(1)<<op.Width {
			return fmt.Errorf("bitstream: value %d does not fit Fixed(%d)", v, op.Width)
		}
		w.bits.Emit(uint32(v), op.Width)
		return nil
	case abbrev.VBR:
		if op.Width == 0 {
			if v != 0 {
				return fmt.Errorf("bitstream: value %d does not fit VBR(0)", v)
			}
			return nil
		}
		w.bits.EmitVBR64(v, op.Width)
		return nil
	case abbrev.Char6:
		if v > 0xFF || !abbrev.IsChar6(byte(v)) {
			return fmt.Errorf("bitstream: value %d is not a Char6 character", v)
		}
		w.bits.Emit(uint32(abbrev.EncodeChar6(byte(v))), 6)
		return nil
	default:
		return fmt.Errorf("bitstream: operand kind %v cannot appear here", op.Kind)
	}
}
