package bitio

/*
 * naclbc - bit-level reader/writer tests
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

import (
	"testing"
)

func TestEmitReadFixedRoundTrip(t *testing.T) {
	w := NewWriter()
	vals := []struct {
		v uint32
		n uint32
	}{
		{0, 1}, {1, 1}, {5, 3}, {0xFF, 8}, {0x1234, 16}, {0xFFFFFFFF, 32},
	}
	for _, tc := range vals {
		w.Emit(tc.v, tc.n)
	}
	w.FlushToWord()

	r := NewReader(w.Bytes())
	for _, tc := range vals {
		got, err := r.Read(tc.n)
		if err != nil {
			t.Fatalf("Read(%d) error: %v", tc.n, err)
		}
		if got != tc.v {
			t.Errorf("Read(%d) got: %#x expected: %#x", tc.n, got, tc.v)
		}
	}
}

func TestEmit64ReadAcrossWordBoundary(t *testing.T) {
	w := NewWriter()
	w.Emit(0x7, 3) // misalign the stream first
	w.Emit64(0x0102030405060708, 64)
	w.FlushToWord()

	r := NewReader(w.Bytes())
	if _, err := r.Read(3); err != nil {
		t.Fatalf("Read(3) error: %v", err)
	}
	got, err := r.Read64(64)
	if err != nil {
		t.Fatalf("Read64(64) error: %v", err)
	}
	if got != 0x0102030405060708 {
		t.Errorf("Read64 got: %#x expected: %#x", got, uint64(0x0102030405060708))
	}
}

func TestVBRRoundTrip(t *testing.T) {
	widths := []uint32{2, 4, 6, 8, 32}
	values := []uint64{0, 1, 2, 63, 64, 4095, 1 << 20, 1<<63 - 1, 1<<64 - 1}

	for _, width := range widths {
		w := NewWriter()
		for _, v := range values {
			w.EmitVBR64(v, width)
		}
		w.FlushToWord()

		r := NewReader(w.Bytes())
		for _, v := range values {
			got, err := r.ReadVBR64(width)
			if err != nil {
				t.Fatalf("width=%d ReadVBR64 error: %v", width, err)
			}
			if got != v {
				t.Errorf("width=%d ReadVBR64 got: %#x expected: %#x", width, got, v)
			}
		}
	}
}

func TestVBR32Truncates(t *testing.T) {
	w := NewWriter()
	w.EmitVBR64(0x1_0000_0001, 6)
	w.FlushToWord()

	r := NewReader(w.Bytes())
	got, err := r.ReadVBR(6)
	if err != nil {
		t.Fatalf("ReadVBR error: %v", err)
	}
	if got != 1 {
		t.Errorf("ReadVBR got: %#x expected: %#x", got, uint32(1))
	}
}

func TestSkipToFourByteBoundary(t *testing.T) {
	w := NewWriter()
	w.Emit(1, 1)
	w.FlushToWord()
	w.Emit(0xAB, 8)
	w.FlushToWord()

	r := NewReader(w.Bytes())
	if _, err := r.Read(1); err != nil {
		t.Fatalf("Read error: %v", err)
	}
	r.SkipToFourByteBoundary()
	if r.CurrentBitNo()%32 != 0 {
		t.Errorf("bit position not word aligned: %d", r.CurrentBitNo())
	}
	got, err := r.Read(8)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != 0xAB {
		t.Errorf("Read got: %#x expected: %#x", got, uint32(0xAB))
	}
}

func TestReadPastEndReturnsZeroAndSetsAtEnd(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.Read(8); err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !r.AtEnd() {
		t.Errorf("AtEnd false after consuming the whole buffer")
	}
	got, err := r.Read(8)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != 0 {
		t.Errorf("Read past end got: %#x expected: 0", got)
	}
	if !r.AtEnd() {
		t.Errorf("AtEnd false after reading past buffer")
	}
}

func TestJumpToBit(t *testing.T) {
	r := NewReader([]byte{0x00, 0xFF})
	if err := r.JumpToBit(8); err != nil {
		t.Fatalf("JumpToBit error: %v", err)
	}
	got, err := r.Read(8)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != 0xFF {
		t.Errorf("Read after jump got: %#x expected: 0xFF", got)
	}

	if err := r.JumpToBit(24); err != nil {
		t.Fatalf("JumpToBit one byte past end should be allowed: %v", err)
	}
	if err := r.JumpToBit(1000); err == nil {
		t.Errorf("JumpToBit far past end should fail")
	}
}

func TestBackpatchWord(t *testing.T) {
	w := NewWriter()
	offset := w.Reserve()
	w.Emit(0xAA, 8)
	w.FlushToWord()
	if err := w.BackpatchWord(offset, 0xDEADBEEF); err != nil {
		t.Fatalf("BackpatchWord error: %v", err)
	}

	r := NewReader(w.Bytes())
	got, err := r.Read(32)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Errorf("Backpatched word got: %#x expected: 0xDEADBEEF", got)
	}
}

func TestEmitPanicsOnOversizedValue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Emit should have panicked on a value wider than its width")
		}
	}()
	w := NewWriter()
	w.Emit(256, 8)
}
