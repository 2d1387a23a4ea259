/*
 * naclbc - Record abbreviation templates.
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

// Package abbrev models the per-block record abbreviation templates:
// ordered operand lists that prescribe how a record's values are
// encoded. An Abbrev is treated as an immutable value once built;
// block scopes and the BLOCKINFO table share it by holding the same
// *Abbrev pointer rather than copying, which is this core's Go
// realization of the source's reference-counted abbreviation handle
// (the garbage collector retires the manual retain/release pair).
package abbrev

import (
	"errors"
	"fmt"
	"math/bits"
)

// Kind distinguishes the five operand shapes the wire format allows.
type Kind int

const (
	Literal Kind = iota
	Fixed
	VBR
	Array
	Char6
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "Literal"
	case Fixed:
		return "Fixed"
	case VBR:
		return "VBR"
	case Array:
		return "Array"
	case Char6:
		return "Char6"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Operand is one tagged template entry. Value is meaningful only for
// Literal; Width only for Fixed and VBR.
type Operand struct {
	Kind  Kind
	Value uint64
	Width uint32
}

// LiteralOp builds a Literal operand.
func LiteralOp(v uint64) Operand { return Operand{Kind: Literal, Value: v} }

// FixedOp builds a Fixed operand of the given width (<= 32).
func FixedOp(width uint32) Operand { return Operand{Kind: Fixed, Width: width} }

// VBROp builds a VBR operand of the given width (>= 2, <= 32).
func VBROp(width uint32) Operand { return Operand{Kind: VBR, Width: width} }

// ArrayOp builds the Array marker operand; the following operand in
// the abbreviation is the element template.
func ArrayOp() Operand { return Operand{Kind: Array} }

// Char6Op builds a Char6 operand.
func Char6Op() Operand { return Operand{Kind: Char6} }

var (
	// ErrEmpty is returned by Validate for a zero-operand abbreviation.
	ErrEmpty = errors.New("abbrev: abbreviation must have at least one operand")
	// ErrArrayPosition is returned when Array does not sit at len-2.
	ErrArrayPosition = errors.New("abbrev: Array operand must be second-to-last")
	// ErrMultipleArrays is returned when more than one Array operand appears.
	ErrMultipleArrays = errors.New("abbrev: at most one Array operand is allowed")
	// ErrArrayIsLast is returned when Array has no following element template.
	ErrArrayIsLast = errors.New("abbrev: Array operand must be followed by an element template")
	// ErrBadVBRWidth is returned for a VBR width outside [2,32] (0 is
	// accepted as a literal-zero alias; see Simplify).
	ErrBadVBRWidth = errors.New("abbrev: VBR width out of range")
	// ErrBadFixedWidth is returned for a Fixed width above 32.
	ErrBadFixedWidth = errors.New("abbrev: Fixed width out of range")
)

// Abbrev is a non-empty ordered sequence of operand templates.
type Abbrev struct {
	Ops []Operand
}

// New builds an Abbrev from ops, validating structural constraints.
func New(ops []Operand) (*Abbrev, error) {
	a := &Abbrev{Ops: append([]Operand(nil), ops...)}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the structural invariants from spec.md: non-empty,
// at most one Array, positioned second-to-last with a trailing
// element template, and widths in range (0 is tolerated as the
// literal-zero alias per the documented boundary case).
func (a *Abbrev) Validate() error {
	if len(a.Ops) == 0 {
		return ErrEmpty
	}
	arrayCount := 0
	arrayPos := -1
	for i, op := range a.Ops {
		switch op.Kind {
		case Array:
			arrayCount++
			arrayPos = i
		case Fixed:
			if op.Width > 32 {
				return fmt.Errorf("%w: %d", ErrBadFixedWidth, op.Width)
			}
		case VBR:
			if op.Width == 1 || op.Width > 32 {
				return fmt.Errorf("%w: %d", ErrBadVBRWidth, op.Width)
			}
		}
	}
	if arrayCount > 1 {
		return ErrMultipleArrays
	}
	if arrayCount == 1 {
		if arrayPos == len(a.Ops)-1 {
			return ErrArrayIsLast
		}
		if arrayPos != len(a.Ops)-2 {
			return ErrArrayPosition
		}
	}
	return nil
}

// Simplify returns a canonicalized copy: Fixed(0) and VBR(0) operands
// — which encode zero bits and always read back as zero — collapse to
// Literal(0), the boundary case spec.md §8 documents explicitly.
func (a *Abbrev) Simplify() *Abbrev {
	out := make([]Operand, len(a.Ops))
	for i, op := range a.Ops {
		switch {
		case op.Kind == Fixed && op.Width == 0:
			out[i] = LiteralOp(0)
		case op.Kind == VBR && op.Width == 0:
			out[i] = LiteralOp(0)
		default:
			out[i] = op
		}
	}
	return &Abbrev{Ops: out}
}

// Equals reports whether a and other have pointwise-equal operand
// sequences once both are simplified.
func (a *Abbrev) Equals(other *Abbrev) bool {
	if other == nil {
		return false
	}
	sa, so := a.Simplify(), other.Simplify()
	if len(sa.Ops) != len(so.Ops) {
		return false
	}
	for i := range sa.Ops {
		if sa.Ops[i] != so.Ops[i] {
			return false
		}
	}
	return true
}

// Match is the result of attempting to encode a value sequence with
// an abbreviation.
type Match struct {
	OK   bool
	Bits int
}

// bitsNeeded returns the number of bits required to hold v, treating
// zero as needing one bit (a VBR or Fixed field always costs at least
// one chunk/width even when the value is zero).
func bitsNeeded(v uint64) int {
	if v == 0 {
		return 1
	}
	return bits.Len64(v)
}

// Matches walks the operand list in lockstep with values as described
// in spec.md §4.3, returning whether the abbreviation applies and, if
// so, the number of bits the encoded operands (excluding the leading
// abbreviation-index bits) would occupy.
func (a *Abbrev) Matches(values []uint64) Match {
	ops := a.Ops
	vi := 0
	totalBits := 0

	for oi := 0; oi < len(ops); oi++ {
		op := ops[oi]
		switch op.Kind {
		case Literal:
			if vi >= len(values) || values[vi] != op.Value {
				return Match{OK: false}
			}
			vi++
		case Fixed:
			if vi >= len(values) {
				return Match{OK: false}
			}
			if op.Width < 32 && values[vi] >= uint64(1)<<op.Width {
				return Match{OK: false}
			}
			totalBits += int(op.Width)
			vi++
		case VBR:
			if vi >= len(values) {
				return Match{OK: false}
			}
			totalBits += vbrCost(values[vi], op.Width)
			vi++
		case Char6:
			if vi >= len(values) || values[vi] > 0xFF || !IsChar6(byte(values[vi])) {
				return Match{OK: false}
			}
			totalBits += 6
			vi++
		case Array:
			elem := ops[oi+1]
			count := len(values) - vi
			if count < 0 {
				return Match{OK: false}
			}
			totalBits += vbrCost(uint64(count), 6)
			for ; vi < len(values); vi++ {
				m := matchOne(elem, values[vi])
				if !m.OK {
					return Match{OK: false}
				}
				totalBits += m.Bits
			}
			oi++ // consumed the trailing element template too
		}
	}
	if vi != len(values) {
		return Match{OK: false}
	}
	return Match{OK: true, Bits: totalBits}
}

func matchOne(op Operand, v uint64) Match {
	switch op.Kind {
	case Literal:
		if v != op.Value {
			return Match{OK: false}
		}
		return Match{OK: true, Bits: 0}
	case Fixed:
		if op.Width < 32 && v >= uint64(1)<<op.Width {
			return Match{OK: false}
		}
		return Match{OK: true, Bits: int(op.Width)}
	case VBR:
		return Match{OK: true, Bits: vbrCost(v, op.Width)}
	case Char6:
		if v > 0xFF || !IsChar6(byte(v)) {
			return Match{OK: false}
		}
		return Match{OK: true, Bits: 6}
	default:
		return Match{OK: false}
	}
}

func vbrCost(v uint64, width uint32) int {
	if width < 2 {
		width = 2
	}
	chunks := bitsNeeded(v) / int(width-1)
	if bitsNeeded(v)%int(width-1) != 0 {
		chunks++
	}
	if chunks == 0 {
		chunks = 1
	}
	return chunks * int(width)
}
