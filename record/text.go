/*
 * naclbc - Textual record I/O.
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

package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rcornwell/naclbc/block"
)

// Textual record form has no header and no abbreviations: each line is
// `code, v1, v2, ...;`, one record per line. Two reserved codes let a
// line describe block structure instead of a data record; everything
// else the binary form can carry (the header, abbreviation
// definitions) has no textual spelling at all.
const (
	TextEnterBlockCode uint32 = 0xFFFFFFF0
	TextExitBlockCode  uint32 = 0xFFFFFFF1
	TextHeaderCode     uint32 = 0xFFFFFFF2
	TextDefineAbbrevCode uint32 = 0xFFFFFFF3
)

var (
	// ErrHeaderInText is returned by Parse when a line spells the
	// reserved header code: headers live only in the binary form.
	ErrHeaderInText = errors.New("record: header record has no textual form")
	// ErrAbbrevDefInText is returned by Parse when a line spells the
	// reserved abbreviation-definition code, for the same reason.
	ErrAbbrevDefInText = errors.New("record: abbreviation definition has no textual form")
	// ErrMalformedLine is returned for a line that is not a
	// semicolon-terminated, comma-separated list of integers.
	ErrMalformedLine = errors.New("record: malformed text record")
)

// Parse reads newline-separated textual records from r. Blank lines
// and lines whose first non-space character is '#' are skipped.
func Parse(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("record: line %d: %w", lineNo, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseLine(line string) (Record, error) {
	body := strings.TrimSpace(line)
	body = strings.TrimSuffix(body, ";")
	fields := strings.Split(body, ",")
	if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
		return Record{}, ErrMalformedLine
	}

	nums := make([]uint64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		nums[i] = v
	}

	code := uint32(nums[0])
	values := nums[1:]

	switch code {
	case TextEnterBlockCode:
		if len(values) != 2 {
			return Record{}, fmt.Errorf("%w: ENTER_BLOCK needs exactly 2 values", ErrMalformedLine)
		}
		return EnterBlock(uint32(values[0]), uint32(values[1])), nil
	case TextExitBlockCode:
		if len(values) != 0 {
			return Record{}, fmt.Errorf("%w: EXIT_BLOCK takes no values", ErrMalformedLine)
		}
		return ExitBlock(), nil
	case TextHeaderCode:
		return Record{}, ErrHeaderInText
	case TextDefineAbbrevCode:
		return Record{}, ErrAbbrevDefInText
	default:
		return Data(uint64(block.UnabbrevRecord), code, values...), nil
	}
}

// Print writes records in the textual form Parse reads back.
func Print(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		switch r.Kind {
		case KindData:
			if _, err := fmt.Fprintf(bw, "%d", r.Code); err != nil {
				return err
			}
			for _, v := range r.Values {
				if _, err := fmt.Fprintf(bw, ", %d", v); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(";\n"); err != nil {
				return err
			}
		case KindEnterBlock:
			if _, err := fmt.Fprintf(bw, "%d, %d, %d;\n", TextEnterBlockCode, r.Code, r.Abbrev); err != nil {
				return err
			}
		case KindExitBlock:
			if _, err := fmt.Fprintf(bw, "%d;\n", TextExitBlockCode); err != nil {
				return err
			}
		case KindHeader:
			return ErrHeaderInText
		case KindDefineAbbrev:
			return ErrAbbrevDefInText
		default:
			return fmt.Errorf("record: unknown kind %v", r.Kind)
		}
	}
	return bw.Flush()
}
