/*
 * naclbc - Char6 alphabet table.
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

package abbrev

// char6Alphabet is the 64-entry table the wire format requires bit for
// bit: 'a'-'z' map to 0-25, 'A'-'Z' to 26-51, '0'-'9' to 52-61, '.' to
// 62 and '_' to 63. This ordering is normative for wire compatibility
// and must never be reordered.
const char6Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789._"

var char6Decode [256]int16

func init() {
	for i := range char6Decode {
		char6Decode[i] = -1
	}
	for i := 0; i < len(char6Alphabet); i++ {
		char6Decode[char6Alphabet[i]] = int16(i)
	}
}

// IsChar6 reports whether c is in the Char6 alphabet.
func IsChar6(c byte) bool {
	return char6Decode[c] >= 0
}

// EncodeChar6 returns the 6-bit code for c. The caller must have
// checked IsChar6 first; an out-of-alphabet byte encodes as 0.
func EncodeChar6(c byte) uint8 {
	v := char6Decode[c]
	if v < 0 {
		return 0
	}
	return uint8(v)
}

// DecodeChar6 returns the character for a 6-bit code, 0 <= v <= 63.
func DecodeChar6(v uint8) byte {
	return char6Alphabet[v&0x3F]
}
