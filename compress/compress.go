/*
 * naclbc - Compressor entry point and summary report.
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

import "log/slog"

// BlockReport summarizes what happened to one block id during Emit.
type BlockReport struct {
	KeptAbbrevs          int
	DroppedAbbrevs       int
	AbbreviatedRecords   int
	UnabbreviatedRecords int
}

// Report summarizes a whole Compress run, one BlockReport per block id
// that Emit entered with a selection or wrote a record into, including
// block ids whose candidates were all dropped.
type Report struct {
	Blocks map[uint32]*BlockReport
}

func newReport() *Report {
	return &Report{Blocks: make(map[uint32]*BlockReport)}
}

func (rpt *Report) blockFor(id uint32) *BlockReport {
	b, ok := rpt.Blocks[id]
	if !ok {
		b = &BlockReport{}
		rpt.Blocks[id] = b
	}
	return b
}

func (rpt *Report) noteBlock(id uint32, kept, dropped int) {
	b := rpt.blockFor(id)
	b.KeptAbbrevs = kept
	b.DroppedAbbrevs = dropped
}

func (rpt *Report) noteAbbreviated(id uint32) {
	rpt.blockFor(id).AbbreviatedRecords++
}

func (rpt *Report) noteUnabbreviated(id uint32) {
	rpt.blockFor(id).UnabbreviatedRecords++
}

// Config tunes the three passes: MinAbbrevUses is the usage floor a
// candidate abbreviation must clear to survive into Emit's output;
// SizeCutoff bounds how many distinct record-shape groups Analyze
// tracks per code before collapsing the long tail into one bucket.
type Config struct {
	MinAbbrevUses int
	SizeCutoff    int
}

// Compress rewrites data, re-selecting abbreviations per block id
// under cfg, and returns the rewritten file alongside a report of what
// was kept, dropped, and how many records ended up abbreviated.
func Compress(data []byte, cfg Config, log *slog.Logger) ([]byte, *Report, error) {
	cutoff := cfg.SizeCutoff
	if cutoff <= 0 {
		cutoff = 16
	}

	an, err := Analyze(data, cutoff, log)
	if err != nil {
		return nil, nil, err
	}

	sels := make(map[uint32]*Selection, len(an.Blocks))
	for id, ba := range an.Blocks {
		sels[id] = SelectBlock(ba, cutoff, cfg.MinAbbrevUses)
	}

	rpt := newReport()
	out, err := emit(data, an.Header, sels, rpt, log)
	if err != nil {
		return nil, nil, err
	}
	return out, rpt, nil
}
