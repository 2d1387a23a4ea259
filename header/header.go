/*
 * naclbc - 16-byte-aligned bitcode header.
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

// Package header reads and writes the PEXE prelude: a magic number
// followed by a set of tagged fields, padded to 4-byte boundaries. The
// only field this core requires is the PNaCl format version.
package header

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the four-byte signature that opens every frozen bitcode
// file: "PEXE".
var Magic = [4]byte{'P', 'E', 'X', 'E'}

// SupportedVersion is the only PNaCl bitcode version this core reads
// and writes.
const SupportedVersion = 2

// Tag identifies the semantic meaning of a header field.
type Tag uint16

const (
	// TagInvalid marks a zero-value, unset Field.
	TagInvalid Tag = 0
	// TagPNaClVersion is the required uint32 field carrying the
	// format version.
	TagPNaClVersion Tag = 1
)

// Kind is the wire representation of a Field's payload.
type Kind uint8

const (
	KindUint32 Kind = 0
	KindBytes  Kind = 1
)

var (
	ErrBadMagic     = errors.New("header: bad magic, not a PEXE file")
	ErrTruncated    = errors.New("header: truncated header")
	ErrOverrun      = errors.New("header: field length overruns header payload")
	ErrShortPayload = errors.New("header: declared payload length does not match consumed bytes")
	ErrNoVersion    = errors.New("header: missing required PNaClVersion field")
)

// Field is one tagged header entry. Exactly one with ID ==
// TagPNaClVersion and Kind == KindUint32 must be present in a readable
// header.
type Field struct {
	ID    Tag
	Kind  Kind
	Value uint32 // valid when Kind == KindUint32
	Bytes []byte // valid when Kind == KindBytes
}

// Uint32Field constructs a KindUint32 field.
func Uint32Field(id Tag, value uint32) Field {
	return Field{ID: id, Kind: KindUint32, Value: value}
}

// BytesField constructs a KindBytes field.
func BytesField(id Tag, data []byte) Field {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Field{ID: id, Kind: KindBytes, Bytes: cp}
}

func (f Field) payload() []byte {
	if f.Kind == KindUint32 {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, f.Value)
		return buf
	}
	return f.Bytes
}

// idAndKind packs the tag and kind into one word. Read and Write are
// exact inverses of this packing, which is all the round-trip
// property needs; it is not claimed to match any other encoder.
func (f Field) idAndKind() uint16 {
	return uint16(f.ID)<<1 | uint16(f.Kind)
}

func decodeIDAndKind(v uint16) (Tag, Kind) {
	return Tag(v >> 1), Kind(v & 1)
}

// Header is an ordered list of fields read from, or to be written
// before, a bitstream body.
type Header struct {
	Fields []Field
}

// New builds a minimal header carrying just the supported version.
func New() Header {
	return Header{Fields: []Field{Uint32Field(TagPNaClVersion, SupportedVersion)}}
}

// Version returns the value of the PNaClVersion field, or ok=false if
// absent or not a uint32 field.
func (h Header) Version() (value uint32, ok bool) {
	for _, f := range h.Fields {
		if f.ID == TagPNaClVersion && f.Kind == KindUint32 {
			return f.Value, true
		}
	}
	return 0, false
}

// Readable reports whether the header's structural invariants hold:
// it was parsed successfully and carries no contradictions. Read never
// returns a Header unless this holds, so Readable always reports true
// on a Header obtained from Read; it exists for callers that built a
// Header by hand.
func (h Header) Readable() bool {
	n := 0
	for _, f := range h.Fields {
		if f.ID == TagPNaClVersion && f.Kind == KindUint32 {
			n++
		}
	}
	return n == 1
}

// Supported reports whether the header is Readable and its version
// equals SupportedVersion.
func (h Header) Supported() bool {
	v, ok := h.Version()
	return ok && v == SupportedVersion
}

// Read parses a header from the front of data, returning the header
// and the number of bytes consumed (always a multiple of 4).
func Read(data []byte) (Header, int, error) {
	if len(data) < 8 || string(data[:4]) != string(Magic[:]) {
		return Header{}, 0, ErrBadMagic
	}
	numFields := binary.LittleEndian.Uint16(data[4:6])
	numBytes := binary.LittleEndian.Uint16(data[6:8])

	consumed := 0
	var fields []Field
	pos := 8
	for i := 0; i < int(numFields); i++ {
		if pos+4 > 8+int(numBytes) || pos+4 > len(data) {
			return Header{}, 0, ErrTruncated
		}
		idKind := binary.LittleEndian.Uint16(data[pos : pos+2])
		length := binary.LittleEndian.Uint16(data[pos+2 : pos+4])
		id, kind := decodeIDAndKind(idKind)
		fieldStart := pos + 4
		fieldEnd := fieldStart + int(length)
		if fieldEnd > 8+int(numBytes) || fieldEnd > len(data) {
			return Header{}, 0, ErrOverrun
		}
		var f Field
		switch kind {
		case KindUint32:
			if length != 4 {
				return Header{}, 0, fmt.Errorf("header: uint32 field with length %d", length)
			}
			f = Uint32Field(id, binary.LittleEndian.Uint32(data[fieldStart:fieldEnd]))
		default:
			f = BytesField(id, data[fieldStart:fieldEnd])
		}
		fields = append(fields, f)

		padded := 4 + int(length)
		if rem := padded % 4; rem != 0 {
			padded += 4 - rem
		}
		pos += padded
	}
	consumed = pos
	if consumed != 8+int(numBytes) {
		return Header{}, 0, ErrShortPayload
	}

	h := Header{Fields: fields}
	if !h.Readable() {
		return Header{}, 0, ErrNoVersion
	}
	return h, consumed, nil
}

// Write serializes h, returning bytes whose length is a multiple of 4.
func Write(h Header) ([]byte, error) {
	if !h.Readable() {
		return nil, ErrNoVersion
	}

	var body []byte
	for _, f := range h.Fields {
		payload := f.payload()
		if len(payload) > 0xFFFF {
			return nil, fmt.Errorf("header: field payload too large: %d bytes", len(payload))
		}
		tagBuf := make([]byte, 4)
		binary.LittleEndian.PutUint16(tagBuf[0:2], f.idAndKind())
		binary.LittleEndian.PutUint16(tagBuf[2:4], uint16(len(payload)))
		body = append(body, tagBuf...)
		body = append(body, payload...)
		for len(body)%4 != 0 {
			body = append(body, 0)
		}
	}

	if len(body) > 0xFFFF {
		return nil, fmt.Errorf("header: total payload too large: %d bytes", len(body))
	}

	out := make([]byte, 0, 8+len(body))
	out = append(out, Magic[:]...)
	prefix := make([]byte, 4)
	binary.LittleEndian.PutUint16(prefix[0:2], uint16(len(h.Fields)))
	binary.LittleEndian.PutUint16(prefix[2:4], uint16(len(body)))
	out = append(out, prefix...)
	out = append(out, body...)
	return out, nil
}
