/*
 * naclbc - Unaligned bit-level reader/writer over a byte buffer.
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

// Package bitio implements the lowest layer of the frozen bitcode wire
// format: unaligned fixed-width reads/writes and variable-bit-rate (VBR)
// integer coding over a fully materialized byte buffer. Bits within a
// byte are numbered LSB-first; bytes appear in stream order (so the
// stream is, bit for bit, little-endian). Nothing above this package
// knows about blocks, abbreviations, or records.
package bitio

import (
	"errors"
	"fmt"
)

// WordBits is the alignment unit used by block headers and the stream
// trailer: four bytes.
const WordBits = 32

var (
	// ErrBadWidth is returned when a caller asks for a read/write width
	// outside the range the wire format allows.
	ErrBadWidth = errors.New("bitio: width out of range")
	// ErrJumpPastEnd is returned by JumpToBit when the target bit is
	// more than one byte past the end of the buffer.
	ErrJumpPastEnd = errors.New("bitio: jump past end of stream")
)

// Reader reads unaligned bit fields from an in-memory byte buffer.
// It advances strictly forward except for explicit JumpToBit calls;
// there is no random-access cursor API beyond that single operation.
type Reader struct {
	data   []byte
	bitPos uint64
	atEnd  bool
}

// NewReader wraps data for bit-level reading starting at bit 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// CurrentBitNo returns the current read position, in bits from the
// start of the buffer.
func (r *Reader) CurrentBitNo() uint64 {
	return r.bitPos
}

// AtEnd reports whether the cursor has consumed the entire buffer, or a
// prior Read ran past the end and set the sticky end-of-stream flag.
func (r *Reader) AtEnd() bool {
	return r.atEnd || r.bitPos >= uint64(len(r.data))*8
}

// Size returns the length of the underlying buffer, in bytes.
func (r *Reader) Size() int {
	return len(r.data)
}

// Read returns the next n bits, 1 <= n <= 32, LSB-first within each
// byte. If fewer than n bits remain the missing high bits read as
// zero and the sticky end-of-stream flag is set.
func (r *Reader) Read(n uint32) (uint32, error) {
	if n < 1 || n > 32 {
		return 0, fmt.Errorf("%w: Read(%d)", ErrBadWidth, n)
	}
	v, err := r.readBits(n)
	return uint32(v), err
}

// Read64 is the same as Read but allows n up to 64; used internally by
// VBR decoding and by emit64's mirror image.
func (r *Reader) Read64(n uint32) (uint64, error) {
	if n < 1 || n > 64 {
		return 0, fmt.Errorf("%w: Read64(%d)", ErrBadWidth, n)
	}
	return r.readBits(n)
}

func (r *Reader) readBits(n uint32) (uint64, error) {
	var result uint64
	total := uint64(len(r.data)) * 8
	for i := uint32(0); i < n; i++ {
		var bit uint64
		if r.bitPos < total {
			byteIdx := r.bitPos / 8
			bitIdx := r.bitPos % 8
			bit = uint64((r.data[byteIdx] >> bitIdx) & 1)
		} else {
			r.atEnd = true
		}
		result |= bit << i
		r.bitPos++
	}
	return result, nil
}

// ReadVBR reads a VBR-encoded value in chunks of width bits (width >=
// 2). The value is decoded as 64 bits and truncated to its low 32
// bits; no overflow error is reported for wider values.
func (r *Reader) ReadVBR(width uint32) (uint32, error) {
	v, err := r.ReadVBR64(width)
	return uint32(v), err
}

// ReadVBR64 reads a VBR-encoded 64-bit value in chunks of width bits.
func (r *Reader) ReadVBR64(width uint32) (uint64, error) {
	if width < 2 || width > 32 {
		return 0, fmt.Errorf("%w: ReadVBR64(width=%d)", ErrBadWidth, width)
	}
	hiMask := uint64(1) << (width - 1)
	loMask := hiMask - 1

	var result uint64
	var shift uint32
	for {
		piece, err := r.Read64(width)
		if err != nil {
			return 0, err
		}
		result |= (piece & loMask) << shift
		if piece&hiMask == 0 {
			return result, nil
		}
		shift += width - 1
		if shift >= 64 {
			return 0, fmt.Errorf("bitio: VBR value wider than 64 bits")
		}
	}
}

// SkipToFourByteBoundary discards bits until the bit position is a
// multiple of 32.
func (r *Reader) SkipToFourByteBoundary() {
	rem := r.bitPos % WordBits
	if rem != 0 {
		r.bitPos += uint64(WordBits) - rem
	}
}

// JumpToBit resets the read position to an arbitrary bit offset. One
// byte past the end of the buffer is permitted (so a reader can land
// exactly at EOF); anything further is rejected.
func (r *Reader) JumpToBit(bit uint64) error {
	if bit > (uint64(len(r.data))+1)*8 {
		return ErrJumpPastEnd
	}
	r.bitPos = bit
	r.atEnd = false
	return nil
}

// Writer accumulates bits into a growing byte buffer, MSB-of-chunk-last
// the same way Reader consumes them: bits within a byte are written
// LSB-first.
type Writer struct {
	buf     []byte
	curByte byte
	curBits uint32 // number of bits already placed into curByte, 0..7
}

// NewWriter returns an empty bit writer.
func NewWriter() *Writer {
	return &Writer{}
}

// CurrentBitNo returns the number of bits emitted so far.
func (w *Writer) CurrentBitNo() uint64 {
	return uint64(len(w.buf))*8 + uint64(w.curBits)
}

// Bytes returns the buffer built so far. The caller must have flushed
// to a word boundary (FlushToWord) if a byte-aligned result is
// required; Bytes never flushes implicitly.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) emitBit(bit uint64) {
	if bit&1 != 0 {
		w.curByte |= 1 << w.curBits
	}
	w.curBits++
	if w.curBits == 8 {
		w.buf = append(w.buf, w.curByte)
		w.curByte = 0
		w.curBits = 0
	}
}

// Emit writes the low n bits of v, 1 <= n <= 32. It panics if v has
// bits set above position n-1: per spec this is a programmer error,
// not a recoverable condition, the same way a Go slice index out of
// range panics rather than erroring.
func (w *Writer) Emit(v uint32, n uint32) {
	if n < 1 || n > 32 {
		panic(fmt.Sprintf("bitio: Emit width out of range: %d", n))
	}
	if n < 32 && v >= uint32(1)<<n {
		panic(fmt.Sprintf("bitio: Emit value %d does not fit in %d bits", v, n))
	}
	for i := uint32(0); i < n; i++ {
		w.emitBit(uint64(v>>i) & 1)
	}
}

// Emit64 writes the low n bits of v, n <= 64, emitting the low 32 bits
// first and then the remainder (mirrors Reader.Read64's bit order).
func (w *Writer) Emit64(v uint64, n uint32) {
	if n > 64 {
		panic(fmt.Sprintf("bitio: Emit64 width out of range: %d", n))
	}
	if n <= 32 {
		if n < 64 && v >= uint64(1)<<n {
			panic(fmt.Sprintf("bitio: Emit64 value %d does not fit in %d bits", v, n))
		}
		w.Emit(uint32(v), n)
		return
	}
	if v>>n != 0 && n < 64 {
		panic(fmt.Sprintf("bitio: Emit64 value %d does not fit in %d bits", v, n))
	}
	w.Emit(uint32(v), 32)
	w.Emit(uint32(v>>32), n-32)
}

// EmitVBR writes v as a VBR value in chunks of width bits.
func (w *Writer) EmitVBR(v uint32, width uint32) {
	w.EmitVBR64(uint64(v), width)
}

// EmitVBR64 writes v as a VBR value in chunks of width bits, width in
// [2,32].
func (w *Writer) EmitVBR64(v uint64, width uint32) {
	if width < 2 || width > 32 {
		panic(fmt.Sprintf("bitio: EmitVBR64 width out of range: %d", width))
	}
	loMask := uint64(1)<<(width-1) - 1
	hiBit := uint64(1) << (width - 1)
	for {
		chunk := v & loMask
		v >>= width - 1
		if v != 0 {
			w.Emit64(chunk|hiBit, width)
		} else {
			w.Emit64(chunk, width)
			break
		}
	}
}

// FlushToWord zero-fills the current partial word (4-byte unit) and
// advances the buffer so CurrentBitNo is a multiple of 32 afterward.
func (w *Writer) FlushToWord() {
	for w.curBits != 0 {
		w.emitBit(0)
	}
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

// BackpatchWord overwrites the four bytes at byteOffset with the
// little-endian encoding of value. byteOffset+4 must already be within
// the flushed portion of the buffer; used to fill in block-size and
// header-length words reserved earlier in the stream.
func (w *Writer) BackpatchWord(byteOffset int, value uint32) error {
	if byteOffset < 0 || byteOffset+4 > len(w.buf) {
		return fmt.Errorf("bitio: backpatch offset %d out of range (len=%d)", byteOffset, len(w.buf))
	}
	w.buf[byteOffset] = byte(value)
	w.buf[byteOffset+1] = byte(value >> 8)
	w.buf[byteOffset+2] = byte(value >> 16)
	w.buf[byteOffset+3] = byte(value >> 24)
	return nil
}

// Reserve emits a placeholder 32-bit zero word and returns the byte
// offset it was written at, suitable for a later BackpatchWord. The
// writer must already be word-aligned.
func (w *Writer) Reserve() int {
	if w.curBits != 0 {
		panic("bitio: Reserve called off a word boundary")
	}
	offset := len(w.buf)
	w.Emit(0, 32)
	return offset
}
