package record

/*
 * naclbc - textual record I/O tests
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
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseSimpleRecord(t *testing.T) {
	recs, err := Parse(strings.NewReader("1, 0, 0;\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.Kind != KindData || r.Code != 1 || len(r.Values) != 2 || r.Values[0] != 0 || r.Values[1] != 0 {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	recs, err := Parse(strings.NewReader("\n# a comment\n1, 5;\n\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(recs) != 1 || recs[0].Code != 1 {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestParseEnterAndExitBlock(t *testing.T) {
	input := "4294967280, 17, 6;\n4294967281;\n"
	recs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Kind != KindEnterBlock || recs[0].Code != 17 || recs[0].Abbrev != 6 {
		t.Errorf("unexpected enter-block record: %+v", recs[0])
	}
	if recs[1].Kind != KindExitBlock {
		t.Errorf("unexpected exit-block record: %+v", recs[1])
	}
}

func TestParseRejectsHeaderAndAbbrevDef(t *testing.T) {
	if _, err := Parse(strings.NewReader("4294967282;\n")); !errors.Is(err, ErrHeaderInText) {
		t.Errorf("expected ErrHeaderInText, got %v", err)
	}
	if _, err := Parse(strings.NewReader("4294967283;\n")); !errors.Is(err, ErrAbbrevDefInText) {
		t.Errorf("expected ErrAbbrevDefInText, got %v", err)
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	if _, err := Parse(strings.NewReader("not a number;\n")); err == nil {
		t.Errorf("expected an error for a malformed line")
	}
}

func TestPrintParseRoundTrip(t *testing.T) {
	recs := []Record{
		EnterBlock(17, 6),
		Data(0, 1, 0, 0),
		Data(0, 2, 42),
		ExitBlock(),
	}
	var buf bytes.Buffer
	if err := Print(&buf, recs); err != nil {
		t.Fatalf("Print error: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("round trip length mismatch: got %d, want %d", len(got), len(recs))
	}
	for i := range recs {
		if got[i].Kind != recs[i].Kind || got[i].Code != recs[i].Code {
			t.Errorf("record %d mismatch: got %+v, want %+v", i, got[i], recs[i])
		}
	}
}

func TestPrintRejectsHeaderAndAbbrevDef(t *testing.T) {
	if err := Print(&bytes.Buffer{}, []Record{{Kind: KindHeader}}); err != ErrHeaderInText {
		t.Errorf("expected ErrHeaderInText, got %v", err)
	}
	if err := Print(&bytes.Buffer{}, []Record{{Kind: KindDefineAbbrev}}); err != ErrAbbrevDefInText {
		t.Errorf("expected ErrAbbrevDefInText, got %v", err)
	}
}
