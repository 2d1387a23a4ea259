/*
 * naclbc - Compressor round-trip and selection tests.
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

package compress

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/header"
)

// token is one flattened (enter/record/exit) event, used to compare
// the logical content of two bitcode files irrespective of how their
// records happen to be encoded.
type token struct {
	kind   string
	id     uint32
	code   uint32
	values []uint64
}

func decodeEvents(t *testing.T, data []byte) []token {
	t.Helper()
	_, consumed, err := header.Read(data)
	if err != nil {
		t.Fatalf("header.Read error: %v", err)
	}
	r := bitstream.NewReader(data[consumed:], nil)
	var out []token
	var walk func(cur bool) error
	walk = func(inBlock bool) error {
		for {
			entry, err := r.Advance(inBlock)
			if err != nil {
				return err
			}
			switch entry.Kind {
			case bitstream.EOF:
				return nil
			case bitstream.Error:
				return entry.Err
			case bitstream.EndBlock:
				if !inBlock {
					return fmt.Errorf("unexpected END_BLOCK")
				}
				if err := r.ExitScope(); err != nil {
					return err
				}
				out = append(out, token{kind: "exit"})
				return nil
			case bitstream.SubBlock:
				if err := r.EnterSubBlock(); err != nil {
					return err
				}
				out = append(out, token{kind: "enter", id: entry.ID})
				if err := walk(true); err != nil {
					return err
				}
			case bitstream.Record:
				rec, err := r.ReadRecord()
				if err != nil {
					return err
				}
				out = append(out, token{kind: "rec", code: rec.Code, values: rec.Values})
			}
		}
	}
	if err := walk(false); err != nil {
		t.Fatalf("decodeEvents walk error: %v", err)
	}
	return out
}

func buildBlock8Sample(t *testing.T) []byte {
	t.Helper()
	hdr := header.New()
	headerBytes, err := header.Write(hdr)
	if err != nil {
		t.Fatalf("header.Write error: %v", err)
	}

	w := bitstream.NewWriter(nil)
	if err := w.EnterBlock(8, 4); err != nil {
		t.Fatalf("EnterBlock error: %v", err)
	}
	for i := uint64(0); i < 5; i++ {
		if err := w.EmitUnabbrevRecord(5, 10+i, 20); err != nil {
			t.Fatalf("EmitUnabbrevRecord error: %v", err)
		}
	}
	if err := w.EmitUnabbrevRecord(7, 99); err != nil {
		t.Fatalf("EmitUnabbrevRecord error: %v", err)
	}
	if err := w.ExitBlock(); err != nil {
		t.Fatalf("ExitBlock error: %v", err)
	}
	body, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	return append(headerBytes, body...)
}

func TestCompressPreservesRecordSequence(t *testing.T) {
	data := buildBlock8Sample(t)
	want := decodeEvents(t, data)

	out, _, err := Compress(data, Config{MinAbbrevUses: 3, SizeCutoff: 16}, nil)
	if err != nil {
		t.Fatalf("Compress error: %v", err)
	}
	got := decodeEvents(t, out)

	if !reflect.DeepEqual(want, got) {
		t.Fatalf("record sequence changed by compression:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestCompressSynthesizesAndUsesAbbrev(t *testing.T) {
	data := buildBlock8Sample(t)
	_, rpt, err := Compress(data, Config{MinAbbrevUses: 3, SizeCutoff: 16}, nil)
	if err != nil {
		t.Fatalf("Compress error: %v", err)
	}
	b8, ok := rpt.Blocks[8]
	if !ok {
		t.Fatalf("expected a report for block 8, got %+v", rpt.Blocks)
	}
	if b8.KeptAbbrevs < 1 {
		t.Errorf("KeptAbbrevs = %d, want at least 1", b8.KeptAbbrevs)
	}
	if b8.AbbreviatedRecords != 5 {
		t.Errorf("AbbreviatedRecords = %d, want 5", b8.AbbreviatedRecords)
	}
	if b8.UnabbreviatedRecords != 1 {
		t.Errorf("UnabbreviatedRecords = %d, want 1 (the singleton code-7 record)", b8.UnabbreviatedRecords)
	}
}

func TestCompressDropsUnderusedCandidate(t *testing.T) {
	data := buildBlock8Sample(t)
	// A threshold above the group's instance count (5) means the
	// synthesized candidate never survives, and every record falls
	// back to unabbreviated.
	_, rpt, err := Compress(data, Config{MinAbbrevUses: 50, SizeCutoff: 16}, nil)
	if err != nil {
		t.Fatalf("Compress error: %v", err)
	}
	b8 := rpt.Blocks[8]
	if b8 == nil || b8.KeptAbbrevs != 0 {
		t.Errorf("expected every candidate dropped, got %+v", b8)
	}
	if b8 == nil || b8.UnabbreviatedRecords != 6 {
		t.Errorf("expected all 6 records unabbreviated, got %+v", b8)
	}
}

func TestGenerateCandidateLiteralizesConstantPosition(t *testing.T) {
	g := newGroup(false, 2)
	g.addRecord([]uint64{10, 20})
	g.addRecord([]uint64{11, 20})
	g.addRecord([]uint64{12, 20})

	a := generateCandidate(5, g)
	if a == nil {
		t.Fatalf("generateCandidate returned nil")
	}
	if len(a.Ops) != 3 {
		t.Fatalf("expected 3 ops (code + 2 positions), got %d", len(a.Ops))
	}
	if a.Ops[2].Kind.String() != "Literal" || a.Ops[2].Value != 20 {
		t.Errorf("expected position 1 to literalize to 20, got %+v", a.Ops[2])
	}
	if a.Ops[1].Kind.String() != "VBR" {
		t.Errorf("expected position 0 to stay VBR, got %+v", a.Ops[1])
	}
}
