/*
 * naclbc - Bitstream reader/writer error values.
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

import "errors"

var (
	// ErrNoPendingBlock is returned by EnterSubBlock/SkipBlock when the
	// last Advance did not return a SubBlock entry.
	ErrNoPendingBlock = errors.New("bitstream: no pending sub-block to enter or skip")
	// ErrNoPendingRecord is returned by ReadRecord/SkipRecord when the
	// last Advance did not return a Record entry.
	ErrNoPendingRecord = errors.New("bitstream: no pending record to read or skip")
	// ErrBadAbbrevID is returned when a Record entry's abbreviation
	// index resolves to nothing in the current scope.
	ErrBadAbbrevID = errors.New("bitstream: record abbreviation index out of range")
	// ErrTruncatedStream is returned when a read runs past the end of
	// the buffer outside of Recover mode.
	ErrTruncatedStream = errors.New("bitstream: truncated stream")
	// ErrBlockSizeMismatch is returned by the writer's ExitBlock when no
	// block-length word was reserved for the block being closed, i.e.
	// there is no matching EnterBlock (programmer error).
	ErrBlockSizeMismatch = errors.New("bitstream: block size word was not reserved")
	// ErrUnexpectedSetBID is returned when a SETBID record inside the
	// BLOCKINFO block carries no block id operand. Outside BLOCKINFO,
	// code 1 is an ordinary record code and is not checked.
	ErrUnexpectedSetBID = errors.New("bitstream: SETBID record without a block id")
	// ErrNoSetBIDTarget is returned when an abbreviation definition
	// appears in BLOCKINFO before any SETBID record.
	ErrNoSetBIDTarget = errors.New("bitstream: BLOCKINFO abbreviation with no SETBID target")
)

// SetBIDRecordCode is the unabbreviated record code BLOCKINFO uses to
// announce which block id subsequent DEFINE_ABBREVs in the block
// apply to. It is part of the wire format's own bookkeeping mechanism,
// not an application-level record code, so the core bakes it in
// rather than leaving it to a caller.
const SetBIDRecordCode = 1
