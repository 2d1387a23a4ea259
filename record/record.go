/*
 * naclbc - Munged bitcode: a flat record list plus an edit overlay.
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

// Package record holds the flat representation a whole bitcode file is
// flattened into for munging: not just application records, but the
// block-enter/exit markers, abbreviation definitions and header that
// frame them, so a fuzzer or hand-written edit script can touch any
// corner of the file rather than only its payload records. A Munger
// layers non-destructive before/after/replace edits on top of an
// immutable base list; an Iterator walks the edited sequence lazily
// without ever materializing it.
package record

import (
	"github.com/rcornwell/naclbc/abbrev"
	"github.com/rcornwell/naclbc/header"
)

// Kind distinguishes the handful of token shapes a flattened bitcode
// file is made of.
type Kind int

const (
	// KindData is an ordinary application record: Code and Values hold
	// its logical payload, Abbrev the abbreviation index (or
	// block.UnabbrevRecord) it was, or will be, encoded with.
	KindData Kind = iota
	// KindEnterBlock opens a nested block. Code is the block id,
	// Abbrev the block's code width.
	KindEnterBlock
	// KindExitBlock closes the innermost open block.
	KindExitBlock
	// KindHeader carries the file's PEXE header; it may only appear as
	// the first entry of a base list.
	KindHeader
	// KindDefineAbbrev carries one abbreviation definition. Abbrev
	// holds 1 if the definition is local to the current block, 0 if it
	// was read from (or is destined for) the global BLOCKINFO table
	// for the current block id.
	KindDefineAbbrev
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "Data"
	case KindEnterBlock:
		return "EnterBlock"
	case KindExitBlock:
		return "ExitBlock"
	case KindHeader:
		return "Header"
	case KindDefineAbbrev:
		return "DefineAbbrev"
	default:
		return "Kind(?)"
	}
}

// Record is one token of a flattened bitcode file.
type Record struct {
	Kind   Kind
	Abbrev uint64
	Code   uint32
	Values []uint64

	AbbrevDef *abbrev.Abbrev // set when Kind == KindDefineAbbrev
	Header    *header.Header // set when Kind == KindHeader
}

// Data builds an ordinary application record.
func Data(abbrevIndex uint64, code uint32, values ...uint64) Record {
	return Record{Kind: KindData, Abbrev: abbrevIndex, Code: code, Values: append([]uint64(nil), values...)}
}

// EnterBlock builds a block-open marker.
func EnterBlock(blockID uint32, codeWidth uint32) Record {
	return Record{Kind: KindEnterBlock, Code: blockID, Abbrev: uint64(codeWidth)}
}

// ExitBlock builds a block-close marker.
func ExitBlock() Record {
	return Record{Kind: KindExitBlock}
}

// HeaderRecord wraps h as the leading entry of a base list.
func HeaderRecord(h header.Header) Record {
	cp := h
	return Record{Kind: KindHeader, Header: &cp}
}

// DefineAbbrevRecord builds an abbreviation-definition marker. local is
// true when the abbreviation was (or should be) registered in the
// current block's own table rather than the BLOCKINFO side table.
func DefineAbbrevRecord(a *abbrev.Abbrev, local bool) Record {
	isLocal := uint64(0)
	if local {
		isLocal = 1
	}
	return Record{Kind: KindDefineAbbrev, Abbrev: isLocal, AbbrevDef: a}
}

// IsLocal reports whether a KindDefineAbbrev record is block-local
// rather than BLOCKINFO-global.
func (r Record) IsLocal() bool {
	return r.Abbrev != 0
}
