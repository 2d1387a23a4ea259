/*
 * naclbc - Bitstream reader event kinds.
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

// EntryKind classifies what Reader.Advance found at the cursor.
type EntryKind int

const (
	// EOF is the zero value: the cursor is exhausted at the top level
	// with no open blocks. This is the normal way a bitstream ends;
	// there is no explicit top-level terminator code.
	EOF EntryKind = iota
	// Error means the cursor could not make sense of the next code;
	// Entry.Err carries the reason. In Recover mode an out-of-range
	// block code width, a truncated trailing block and a stray
	// top-level END_BLOCK are repaired or tolerated and counted instead;
	// other malformed input (a bad abbreviation definition, a
	// DEFINE_ABBREV at the top level, a malformed BLOCKINFO block)
	// still yields Error.
	Error
	// EndBlock means the innermost open block just closed. Advance
	// already popped the scope unless called with dontPopAtEnd=true.
	EndBlock
	// SubBlock means a nested block is opening. Entry.ID is the new
	// block's id and Entry.CodeWidth its code width; the caller must
	// follow up with EnterSubBlock or SkipBlock before calling Advance
	// again.
	SubBlock
	// Record means a data record is available. Entry.ID is the
	// abbreviation index (block.UnabbrevRecord or >= block.FirstAppAbbrev)
	// it was encoded with; the caller follows up with ReadRecord or
	// SkipRecord.
	Record
)

func (k EntryKind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Error:
		return "Error"
	case EndBlock:
		return "EndBlock"
	case SubBlock:
		return "SubBlock"
	case Record:
		return "Record"
	default:
		return "EntryKind(?)"
	}
}

// Entry is what Reader.Advance returns.
type Entry struct {
	Kind EntryKind
	ID   uint32
	// CodeWidth is meaningful only for a SubBlock entry: the code
	// width the about-to-be-entered block will use.
	CodeWidth uint32
	Err       error
}
