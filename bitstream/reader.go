/*
 * naclbc - Bitstream reader: the event loop driving bitio/header/abbrev/block.
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

// Package bitstream drives bitio, abbrev and block together into the
// reader/writer event loop that turns a byte buffer into a sequence of
// block-enter, block-exit and record events, and back. Abbreviation
// definitions are processed inline as they're encountered rather than
// surfaced to the caller; a Listener can still observe them (and
// BLOCKINFO's SETBID records) for callers, like this package's
// flattening reader ReadFlat, that need to reconstruct them verbatim.
package bitstream

import (
	"fmt"
	"log/slog"

	"github.com/rcornwell/naclbc/abbrev"
	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/bitio"
	"github.com/rcornwell/naclbc/record"
)

// Listener observes abbreviation bookkeeping Advance performs
// internally, without it being surfaced as its own event.
type Listener interface {
	// OnAbbrev fires for every DEFINE_ABBREV processed, local to the
	// current block (local=true) or registered into BLOCKINFO's
	// global table (local=false).
	OnAbbrev(a *abbrev.Abbrev, local bool)
	// OnSetBID fires for every SETBID record read inside BLOCKINFO.
	OnSetBID(id uint32)
	// OnBlockInfoBegin and OnBlockInfoEnd bracket a first-seen
	// BLOCKINFO block's internal processing, letting a caller that
	// needs a literal token-for-token replay (this package's
	// flattening reader, ReadFlat) reconstruct it even though Advance never
	// surfaces it as an ordinary SubBlock/EndBlock pair.
	OnBlockInfoBegin(codeWidth uint32)
	OnBlockInfoEnd()
}

// Reader drives a bitio.Reader and a block.Stack to produce the
// bitstream's event sequence.
type Reader struct {
	bits    *bitio.Reader
	stack   *block.Stack
	log     *slog.Logger
	listener Listener

	recover    bool
	numErrors  int
	numRepairs int

	havePendingBlock bool
	pendingBlockID   uint32
	pendingCodeWidth uint32
	pendingBodyBit   uint64
	pendingNumWords  uint32

	havePendingRecord bool
	pendingAbbrevID   uint64
}

// NewReader wraps data (the bitstream body, past any header) for
// event-driven reading.
func NewReader(data []byte, log *slog.Logger) *Reader {
	if log == nil {
		log = slog.Default()
	}
	return &Reader{bits: bitio.NewReader(data), stack: block.NewStack(), log: log}
}

// SetListener installs l to observe abbreviation bookkeeping. Pass nil
// to stop observing.
func (r *Reader) SetListener(l Listener) {
	r.listener = l
}

// SetRecover toggles best-effort recovery from malformed input: bad
// code widths are clamped, invalid abbreviation indices degrade to an
// empty placeholder record, and a missing trailing END_BLOCK is
// synthesized, each incrementing NumErrors and, where a repair was
// actually made, NumRepairs.
func (r *Reader) SetRecover(enabled bool) {
	r.recover = enabled
}

// NumErrors reports how many malformed constructs Recover mode has
// seen so far.
func (r *Reader) NumErrors() int { return r.numErrors }

// NumRepairs reports how many of those were actually patched up rather
// than merely tolerated.
func (r *Reader) NumRepairs() int { return r.numRepairs }

// Depth reports how many blocks are currently open.
func (r *Reader) Depth() int { return r.stack.Depth() }

// CurrentBitNo exposes the underlying bit cursor, mostly for tests and
// the analyzer's per-block byte accounting.
func (r *Reader) CurrentBitNo() uint64 { return r.bits.CurrentBitNo() }

// AtEnd reports whether the underlying buffer is exhausted.
func (r *Reader) AtEnd() bool { return r.bits.AtEnd() }

// CurrentScopeAbbrevCount reports how many abbreviations (inherited
// plus locally defined) are visible in the innermost open scope; the
// analyzer uses this, paired with Advance(dontPopAtEnd=true), to
// report a block instance's total abbreviation count before popping
// it off the stack.
func (r *Reader) CurrentScopeAbbrevCount() int {
	cur := r.stack.Current()
	if cur == nil {
		return 0
	}
	return len(cur.Abbrevs)
}

func (r *Reader) recordError(err error) {
	r.numErrors++
	r.log.Debug("bitstream: recovering from malformed input", "error", err)
}

func (r *Reader) recordRepair() {
	r.numRepairs++
}

// Advance reads the next code at the current scope's width and
// returns the event it names. DEFINE_ABBREV codes are processed
// inline (see Listener) and never returned; a BLOCKINFO sub-block is
// consumed in full internally the first time it is seen, and skipped
// whole on any later occurrence, so callers never see it as a
// SubBlock event either. dontPopAtEnd, when true, leaves the innermost
// scope open across an EndBlock event (the analyzer uses this to
// inspect a just-closed scope's accumulated abbreviation count).
func (r *Reader) Advance(dontPopAtEnd bool) (Entry, error) {
	for {
		if r.bits.AtEnd() {
			if r.stack.Depth() == 0 {
				return Entry{Kind: EOF}, nil
			}
			if !r.recover {
				return Entry{Kind: Error, Err: ErrTruncatedStream}, nil
			}
			r.recordError(ErrTruncatedStream)
			r.recordRepair()
			if !dontPopAtEnd {
				r.stack.Exit()
			}
			return Entry{Kind: EndBlock}, nil
		}

		codeWidth := r.stack.CodeWidth()
		code, err := r.bits.Read(codeWidth)
		if err != nil {
			return Entry{Kind: Error, Err: err}, nil
		}

		switch code {
		case block.EndBlock:
			r.bits.SkipToFourByteBoundary()
			if r.stack.Depth() == 0 {
				if !r.recover {
					return Entry{Kind: Error, Err: fmt.Errorf("bitstream: END_BLOCK at top level")}, nil
				}
				r.recordError(fmt.Errorf("bitstream: END_BLOCK at top level"))
				continue
			}
			if !dontPopAtEnd {
				if _, err := r.stack.Exit(); err != nil {
					return Entry{Kind: Error, Err: err}, nil
				}
			}
			return Entry{Kind: EndBlock}, nil

		case block.EnterSubblock:
			entry, handled, err := r.handleEnterSubblock()
			if err != nil {
				return Entry{Kind: Error, Err: err}, nil
			}
			if handled {
				continue
			}
			return entry, nil

		case block.DefineAbbrev:
			a, err := r.readAbbrevDef()
			if err != nil {
				return Entry{Kind: Error, Err: err}, nil
			}
			if r.stack.Depth() == 0 {
				return Entry{Kind: Error, Err: fmt.Errorf("bitstream: DEFINE_ABBREV at top level")}, nil
			}
			r.stack.AddAbbrev(a)
			if r.listener != nil {
				r.listener.OnAbbrev(a, true)
			}
			continue

		default:
			r.havePendingRecord = true
			r.pendingAbbrevID = uint64(code)
			return Entry{Kind: Record, ID: code}, nil
		}
	}
}

// handleEnterSubblock parses an ENTER_SUBBLOCK header. handled=true
// means BLOCKINFO was processed or skipped internally and the caller's
// Advance loop should read the next code; handled=false means entry
// is a genuine SubBlock event for the caller.
func (r *Reader) handleEnterSubblock() (entry Entry, handled bool, err error) {
	blockID, err := r.bits.ReadVBR(8)
	if err != nil {
		return Entry{}, false, err
	}
	codeWidth, err := r.bits.ReadVBR(4)
	if err != nil {
		return Entry{}, false, err
	}
	if codeWidth < block.MinCodeWidth || codeWidth > 32 {
		if !r.recover {
			return Entry{}, false, fmt.Errorf("%w: %d", errBadBlockCodeWidth, codeWidth)
		}
		r.recordError(fmt.Errorf("%w: %d", errBadBlockCodeWidth, codeWidth))
		if codeWidth < block.MinCodeWidth {
			codeWidth = block.MinCodeWidth
		} else {
			codeWidth = 32
		}
		r.recordRepair()
	}
	r.bits.SkipToFourByteBoundary()
	numWords, err := r.bits.Read(32)
	if err != nil {
		return Entry{}, false, err
	}

	if blockID == block.BlockInfoID {
		if r.stack.HaveBlockInfo() {
			target := r.bits.CurrentBitNo() + uint64(numWords)*bitio.WordBits
			if err := r.bits.JumpToBit(target); err != nil {
				return Entry{}, false, err
			}
			return Entry{}, true, nil
		}
		if err := r.processBlockInfo(codeWidth); err != nil {
			return Entry{}, false, err
		}
		return Entry{}, true, nil
	}

	r.havePendingBlock = true
	r.pendingBlockID = blockID
	r.pendingCodeWidth = codeWidth
	r.pendingBodyBit = r.bits.CurrentBitNo()
	r.pendingNumWords = numWords
	return Entry{Kind: SubBlock, ID: blockID, CodeWidth: codeWidth}, false, nil
}

var errBadBlockCodeWidth = fmt.Errorf("bitstream: block code width out of range")

// processBlockInfo consumes a first-seen BLOCKINFO block fully,
// registering its abbreviations against whichever block id the
// preceding SETBID record named.
func (r *Reader) processBlockInfo(codeWidth uint32) error {
	if _, err := r.stack.Enter(block.BlockInfoID, codeWidth); err != nil {
		return err
	}
	if r.listener != nil {
		r.listener.OnBlockInfoBegin(codeWidth)
	}
	var target uint32
	haveTarget := false

	for {
		code, err := r.bits.Read(r.stack.CodeWidth())
		if err != nil {
			return err
		}
		switch code {
		case block.EndBlock:
			r.bits.SkipToFourByteBoundary()
			if _, err := r.stack.Exit(); err != nil {
				return err
			}
			r.stack.MarkBlockInfoRead()
			if r.listener != nil {
				r.listener.OnBlockInfoEnd()
			}
			return nil

		case block.DefineAbbrev:
			a, err := r.readAbbrevDef()
			if err != nil {
				return err
			}
			if !haveTarget {
				if !r.recover {
					return ErrNoSetBIDTarget
				}
				r.recordError(ErrNoSetBIDTarget)
				continue
			}
			r.stack.AddBlockInfoAbbrev(target, a)
			if r.listener != nil {
				r.listener.OnAbbrev(a, false)
			}

		case block.UnabbrevRecord:
			recCode, err := r.bits.ReadVBR(6)
			if err != nil {
				return err
			}
			n, err := r.bits.ReadVBR(6)
			if err != nil {
				return err
			}
			values := make([]uint64, n)
			for i := range values {
				v, err := r.bits.ReadVBR64(6)
				if err != nil {
					return err
				}
				values[i] = v
			}
			if recCode == SetBIDRecordCode {
				if len(values) < 1 {
					return ErrUnexpectedSetBID
				}
				target = uint32(values[0])
				haveTarget = true
				if r.listener != nil {
					r.listener.OnSetBID(target)
				}
			}

		case block.EnterSubblock:
			return fmt.Errorf("bitstream: nested block inside BLOCKINFO is not supported")

		default:
			return fmt.Errorf("bitstream: abbreviated record inside BLOCKINFO is not supported")
		}
	}
}

// readAbbrevDef parses one DEFINE_ABBREV payload: an operand count
// followed by that many tagged operand descriptions.
func (r *Reader) readAbbrevDef() (*abbrev.Abbrev, error) {
	n, err := r.bits.ReadVBR(5)
	if err != nil {
		return nil, err
	}
	ops := make([]abbrev.Operand, n)
	for i := range ops {
		isLiteral, err := r.bits.Read(1)
		if err != nil {
			return nil, err
		}
		if isLiteral != 0 {
			v, err := r.bits.ReadVBR64(8)
			if err != nil {
				return nil, err
			}
			ops[i] = abbrev.LiteralOp(v)
			continue
		}
		enc, err := r.bits.Read(3)
		if err != nil {
			return nil, err
		}
		switch enc {
		case 1:
			width, err := r.bits.ReadVBR(5)
			if err != nil {
				return nil, err
			}
			ops[i] = abbrev.FixedOp(width)
		case 2:
			width, err := r.bits.ReadVBR(5)
			if err != nil {
				return nil, err
			}
			ops[i] = abbrev.VBROp(width)
		case 3:
			ops[i] = abbrev.ArrayOp()
		case 4:
			ops[i] = abbrev.Char6Op()
		default:
			return nil, fmt.Errorf("bitstream: unknown abbreviation operand encoding %d", enc)
		}
	}
	return abbrev.New(ops)
}

// CurrentAbbrev resolves an application abbreviation index in the
// innermost open scope without consuming anything; the compressor
// uses this right after a Record entry to learn which abbreviation
// shape a record was actually encoded with, for its existing-
// abbreviation usage accounting.
func (r *Reader) CurrentAbbrev(index uint64) (*abbrev.Abbrev, error) {
	return r.stack.Abbrev(index)
}

// BlockInfo returns a read-only snapshot of the abbreviations
// registered for block id in the shared BLOCKINFO table, in
// definition order. Used by -dump-blockinfo style reporting; the slice
// is the stack's own backing array and must not be mutated.
func (r *Reader) BlockInfo(id uint32) []*abbrev.Abbrev {
	return r.stack.BlockInfoAbbrevs(id)
}

// ExitScope pops the innermost open scope. Callers only need this
// after an Advance(true) call left an just-closed scope open for
// inspection (see CurrentScopeAbbrevCount); in the normal
// Advance(false) flow, EndBlock already pops the scope itself.
func (r *Reader) ExitScope() error {
	_, err := r.stack.Exit()
	return err
}

// EnterSubBlock pushes a scope for the block the last Advance
// announced via a SubBlock entry.
func (r *Reader) EnterSubBlock() error {
	if !r.havePendingBlock {
		return ErrNoPendingBlock
	}
	r.havePendingBlock = false
	_, err := r.stack.Enter(r.pendingBlockID, r.pendingCodeWidth)
	return err
}

// SkipBlock jumps past the block the last Advance announced without
// entering it.
func (r *Reader) SkipBlock() error {
	if !r.havePendingBlock {
		return ErrNoPendingBlock
	}
	r.havePendingBlock = false
	target := r.pendingBodyBit + uint64(r.pendingNumWords)*bitio.WordBits
	return r.bits.JumpToBit(target)
}

// ReadRecord decodes the record the last Advance announced via a
// Record entry.
func (r *Reader) ReadRecord() (record.Record, error) {
	if !r.havePendingRecord {
		return record.Record{}, ErrNoPendingRecord
	}
	r.havePendingRecord = false
	abbrevID := r.pendingAbbrevID

	if abbrevID == block.UnabbrevRecord {
		code, err := r.bits.ReadVBR(6)
		if err != nil {
			return record.Record{}, err
		}
		n, err := r.bits.ReadVBR(6)
		if err != nil {
			return record.Record{}, err
		}
		values := make([]uint64, n)
		for i := range values {
			v, err := r.bits.ReadVBR64(6)
			if err != nil {
				return record.Record{}, err
			}
			values[i] = v
		}
		return record.Data(abbrevID, code, values...), nil
	}

	a, err := r.stack.Abbrev(abbrevID)
	if err != nil {
		if !r.recover {
			return record.Record{}, err
		}
		r.recordError(err)
		r.recordRepair()
		return record.Data(block.UnabbrevRecord, 0), nil
	}

	values, err := r.decodeAbbrevValues(a)
	if err != nil {
		return record.Record{}, err
	}
	if len(values) == 0 {
		return record.Record{}, fmt.Errorf("bitstream: abbreviated record produced no values")
	}
	return record.Data(abbrevID, uint32(values[0]), values[1:]...), nil
}

// SkipRecord discards the record the last Advance announced.
func (r *Reader) SkipRecord() error {
	_, err := r.ReadRecord()
	return err
}

func (r *Reader) decodeAbbrevValues(a *abbrev.Abbrev) ([]uint64, error) {
	var out []uint64
	ops := a.Ops
	for oi := 0; oi < len(ops); oi++ {
		op := ops[oi]
		if op.Kind == abbrev.Array {
			count, err := r.bits.ReadVBR(6)
			if err != nil {
				return nil, err
			}
			elem := ops[oi+1]
			for i := uint32(0); i < count; i++ {
				v, err := r.decodeOne(elem)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			oi++
			continue
		}
		v, err := r.decodeOne(op)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Reader) decodeOne(op abbrev.Operand) (uint64, error) {
	switch op.Kind {
	case abbrev.Literal:
		return op.Value, nil
	case abbrev.Fixed:
		if op.Width == 0 {
			return 0, nil
		}
		v, err := r.bits.Read(op.Width)
		return uint64(v), err
	case abbrev.VBR:
		if op.Width == 0 {
			return 0, nil
		}
		return r.bits.ReadVBR64(op.Width)
	case abbrev.Char6:
		v, err := r.bits.Read(6)
		if err != nil {
			return 0, err
		}
		return uint64(abbrev.DecodeChar6(uint8(v))), nil
	default:
		return 0, fmt.Errorf("bitstream: operand kind %v cannot appear here", op.Kind)
	}
}
