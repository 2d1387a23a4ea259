/*
 * naclbc - Analyzer statistics tests.
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

package analyzer

import (
	"strings"
	"testing"

	"github.com/rcornwell/naclbc/abbrev"
	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/header"
)

func buildSample(t *testing.T) []byte {
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
	if err := w.EmitUnabbrevRecord(1, 1); err != nil {
		t.Fatalf("EmitUnabbrevRecord error: %v", err)
	}
	a, err := abbrev.New([]abbrev.Operand{abbrev.FixedOp(8)})
	if err != nil {
		t.Fatalf("abbrev.New error: %v", err)
	}
	if err := w.DefineAbbrev(a); err != nil {
		t.Fatalf("DefineAbbrev error: %v", err)
	}
	if err := w.EmitAbbrevRecord(block.FirstAppAbbrev, 42); err != nil {
		t.Fatalf("EmitAbbrevRecord error: %v", err)
	}
	if err := w.EnterBlock(9, 4); err != nil {
		t.Fatalf("nested EnterBlock error: %v", err)
	}
	if err := w.EmitUnabbrevRecord(2, 7); err != nil {
		t.Fatalf("nested EmitUnabbrevRecord error: %v", err)
	}
	if err := w.ExitBlock(); err != nil {
		t.Fatalf("nested ExitBlock error: %v", err)
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

func TestAnalyzeCountsBlockAndRecords(t *testing.T) {
	data := buildSample(t)
	res, err := Analyze(data, nil)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	b8, ok := res.Blocks[8]
	if !ok {
		t.Fatalf("expected stats for block id 8, got %+v", res.Blocks)
	}
	if b8.Instances != 1 {
		t.Errorf("block 8 instances = %d, want 1", b8.Instances)
	}
	if b8.NumSubBlocks != 1 {
		t.Errorf("block 8 subblocks = %d, want 1", b8.NumSubBlocks)
	}
	if b8.NumRecords != 2 {
		t.Errorf("block 8 records = %d, want 2", b8.NumRecords)
	}
	if b8.NumAbbreviatedRecords != 1 {
		t.Errorf("block 8 abbreviated records = %d, want 1", b8.NumAbbreviatedRecords)
	}
	if b8.NumAbbrevs != 1 {
		t.Errorf("block 8 abbrev count = %d, want 1", b8.NumAbbrevs)
	}
	if b8.CodeHist[1] != 1 || b8.CodeHist[42] != 1 {
		t.Errorf("unexpected block 8 code histogram: %+v", b8.CodeHist)
	}

	b9, ok := res.Blocks[9]
	if !ok {
		t.Fatalf("expected stats for block id 9, got %+v", res.Blocks)
	}
	if b9.Instances != 1 || b9.NumRecords != 1 || b9.CodeHist[2] != 1 {
		t.Errorf("unexpected block 9 stats: %+v", b9)
	}
	if b8.TotalBits == 0 || b9.TotalBits == 0 {
		t.Errorf("expected nonzero TotalBits, got block8=%d block9=%d", b8.TotalBits, b9.TotalBits)
	}
}

func TestAnalyzeCapturesBlockInfo(t *testing.T) {
	hdr := header.New()
	headerBytes, err := header.Write(hdr)
	if err != nil {
		t.Fatalf("header.Write error: %v", err)
	}

	w := bitstream.NewWriter(nil)
	a, err := abbrev.New([]abbrev.Operand{abbrev.FixedOp(8)})
	if err != nil {
		t.Fatalf("abbrev.New error: %v", err)
	}
	if err := w.WriteBlockInfo(4, []bitstream.BlockInfoEntry{{BlockID: 9, Abbrevs: []*abbrev.Abbrev{a}}}); err != nil {
		t.Fatalf("WriteBlockInfo error: %v", err)
	}
	if err := w.EnterBlock(9, 4); err != nil {
		t.Fatalf("EnterBlock error: %v", err)
	}
	if err := w.EmitAbbrevRecord(block.FirstAppAbbrev, 200); err != nil {
		t.Fatalf("EmitAbbrevRecord error: %v", err)
	}
	if err := w.ExitBlock(); err != nil {
		t.Fatalf("ExitBlock error: %v", err)
	}
	body, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}

	res, err := Analyze(append(headerBytes, body...), nil)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(res.BlockInfo[9]) != 1 {
		t.Fatalf("expected one BLOCKINFO abbrev for block 9, got %+v", res.BlockInfo)
	}
	if out := DumpBlockInfo(res); !strings.Contains(out, "id=9") {
		t.Errorf("DumpBlockInfo missing block 9: %s", out)
	}
}

func TestDumpIncludesEveryBlock(t *testing.T) {
	data := buildSample(t)
	res, err := Analyze(data, nil)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	out := Dump(res)
	if !strings.Contains(out, "id=8") || !strings.Contains(out, "id=9") {
		t.Errorf("dump missing expected block ids: %s", out)
	}
}
