/*
 * naclbc - Block scope stack and BLOCKINFO abbreviation inheritance.
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

// Package block tracks the nested block scopes a bitstream cursor is
// inside: each scope carries its own code width and abbreviation
// table, and a global side table remembers the abbreviations BLOCKINFO
// (block id 0) registered for inheritance by later blocks of a given
// id.
package block

import (
	"errors"
	"fmt"

	"github.com/rcornwell/naclbc/abbrev"
)

// Reserved abbreviation indices, valid in every scope regardless of
// code width.
const (
	EndBlock       = 0
	EnterSubblock  = 1
	DefineAbbrev   = 2
	UnabbrevRecord = 3
	FirstAppAbbrev = 4
)

// BlockInfoID is the well-known top-level block id carrying
// SetBID/abbreviation-definition pairs that other blocks inherit.
const BlockInfoID = 0

// MinCodeWidth is the narrowest legal per-block code width.
const MinCodeWidth = 2

// OuterCodeWidth is the implicit code width of the top-level stream,
// used to read the first ENTER_SUBBLOCK.
const OuterCodeWidth = 2

var (
	ErrEmptyStack        = errors.New("block: Exit called with no open scope")
	ErrBadCodeWidth      = errors.New("block: code width out of range")
	ErrBadAbbrevIndex    = errors.New("block: abbreviation index out of range")
	ErrBlockInfoReentry  = errors.New("block: BLOCKINFO may only be read once")
	ErrNoSetBIDTarget    = errors.New("block: BLOCKINFO abbreviation defined with no SetBID target")
)

// Scope is one nested block's view of the world.
type Scope struct {
	ID        uint32
	CodeWidth uint32
	Abbrevs   []*abbrev.Abbrev // inherited + locally defined, in index order

	// Writer-only slot for the byte offset of the reserved block-length
	// word. Stack never sets or backpatches it; bitstream.Writer keeps
	// its own list of reserved offsets and backpatches them itself.
	LengthWordOffset int
}

// Stack is the block-nesting state shared by a single reader or writer
// cursor. It is not safe for concurrent use, matching the rest of this
// core's single-threaded model.
type Stack struct {
	scopes       []*Scope
	blockInfo    map[uint32][]*abbrev.Abbrev
	haveBlockInfo bool
}

// NewStack returns an empty stack, not yet inside any block.
func NewStack() *Stack {
	return &Stack{blockInfo: make(map[uint32][]*abbrev.Abbrev)}
}

// Depth reports how many blocks are currently open.
func (s *Stack) Depth() int {
	return len(s.scopes)
}

// Current returns the innermost open scope, or nil at the top level.
func (s *Stack) Current() *Scope {
	if len(s.scopes) == 0 {
		return nil
	}
	return s.scopes[len(s.scopes)-1]
}

// CodeWidth returns the code width in effect: the innermost scope's,
// or OuterCodeWidth at the top level.
func (s *Stack) CodeWidth() uint32 {
	if c := s.Current(); c != nil {
		return c.CodeWidth
	}
	return OuterCodeWidth
}

// Enter pushes a new scope for block id with the given per-block code
// width, seeded with a copy of whatever BLOCKINFO has accumulated for
// that id so far. Copying the slice copies *abbrev.Abbrev pointers,
// not their payloads, so the abbreviations themselves are shared
// between every block instance that inherits them.
func (s *Stack) Enter(id uint32, codeWidth uint32) (*Scope, error) {
	if codeWidth < MinCodeWidth || codeWidth > 32 {
		return nil, fmt.Errorf("%w: %d", ErrBadCodeWidth, codeWidth)
	}
	inherited := s.blockInfo[id]
	local := make([]*abbrev.Abbrev, len(inherited))
	copy(local, inherited)

	sc := &Scope{ID: id, CodeWidth: codeWidth, Abbrevs: local}
	s.scopes = append(s.scopes, sc)
	return sc, nil
}

// Exit pops the innermost scope.
func (s *Stack) Exit() (*Scope, error) {
	if len(s.scopes) == 0 {
		return nil, ErrEmptyStack
	}
	sc := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]
	return sc, nil
}

// AddAbbrev appends a to the innermost open scope's local table. It is
// a programmer error to call this at the top level.
func (s *Stack) AddAbbrev(a *abbrev.Abbrev) {
	cur := s.Current()
	if cur == nil {
		panic("block: AddAbbrev called outside any block")
	}
	cur.Abbrevs = append(cur.Abbrevs, a)
}

// Abbrev resolves an application abbreviation index (>= FirstAppAbbrev)
// in the innermost scope.
func (s *Stack) Abbrev(index uint64) (*abbrev.Abbrev, error) {
	cur := s.Current()
	if cur == nil {
		return nil, fmt.Errorf("%w: no open block", ErrBadAbbrevIndex)
	}
	if index < FirstAppAbbrev {
		return nil, fmt.Errorf("%w: %d is reserved", ErrBadAbbrevIndex, index)
	}
	i := index - FirstAppAbbrev
	if i >= uint64(len(cur.Abbrevs)) {
		return nil, fmt.Errorf("%w: %d (table has %d entries)", ErrBadAbbrevIndex, index, len(cur.Abbrevs))
	}
	return cur.Abbrevs[i], nil
}

// HaveBlockInfo reports whether BLOCKINFO has already been consumed;
// callers skip a second BLOCKINFO block rather than re-processing it.
func (s *Stack) HaveBlockInfo() bool {
	return s.haveBlockInfo
}

// MarkBlockInfoRead records that BLOCKINFO has been fully consumed.
func (s *Stack) MarkBlockInfoRead() {
	s.haveBlockInfo = true
}

// AddBlockInfoAbbrev registers a as inherited by every future block
// with the given id.
func (s *Stack) AddBlockInfoAbbrev(id uint32, a *abbrev.Abbrev) {
	s.blockInfo[id] = append(s.blockInfo[id], a)
}

// BlockInfoAbbrevs returns a read-only snapshot of the abbreviations
// registered for id; used by the analyzer's block-info dump.
func (s *Stack) BlockInfoAbbrevs(id uint32) []*abbrev.Abbrev {
	src := s.blockInfo[id]
	out := make([]*abbrev.Abbrev, len(src))
	copy(out, src)
	return out
}
