/*
 * naclbc - bcconv: convert between binary bitcode and its flat text form.
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

package main

import (
	"bytes"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/header"
	"github.com/rcornwell/naclbc/internal/cliio"
	"github.com/rcornwell/naclbc/internal/logger"
	"github.com/rcornwell/naclbc/record"
)

func main() {
	optOut := getopt.StringLong("output", 'o', "-", "Output path ('-' for stdout)")
	optEncode := getopt.BoolLong("encode", 'e', "Convert text to binary (default: binary to text)")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	args := getopt.Args()
	if *optHelp || len(args) != 1 {
		getopt.Usage()
		os.Exit(0)
	}
	input := args[0]

	log := logger.Discard()

	data, err := cliio.ReadInput(input)
	if err != nil {
		log.Error("reading input: " + err.Error())
		os.Exit(1)
	}

	var out []byte
	if *optEncode {
		out, err = encode(data, log)
	} else {
		out, err = decode(data, log)
	}
	if err != nil {
		log.Error("converting: " + err.Error())
		os.Exit(1)
	}

	if err := cliio.WriteOutput(*optOut, out); err != nil {
		log.Error("writing output: " + err.Error())
		os.Exit(1)
	}
}

// decode turns a whole PEXE file into its flat textual record form.
// Headers and abbreviation definitions have no textual spelling, so
// only the block structure and record payloads survive the trip.
func decode(data []byte, log *slog.Logger) ([]byte, error) {
	recs, err := bitstream.ReadFlat(data, log)
	if err != nil {
		return nil, err
	}
	printable := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		if r.Kind == record.KindHeader || r.Kind == record.KindDefineAbbrev {
			continue
		}
		printable = append(printable, r)
	}
	var buf bytes.Buffer
	if err := record.Print(&buf, printable); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encode turns a textual record listing back into a binary PEXE file.
// The text form carries no header, so a fresh minimal one is
// synthesized; the result carries no abbreviations either, since none
// were recorded on the way out.
func encode(data []byte, log *slog.Logger) ([]byte, error) {
	recs, err := record.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	full := make([]record.Record, 0, len(recs)+1)
	full = append(full, record.HeaderRecord(header.New()))
	full = append(full, recs...)
	return bitstream.WriteFlat(full, log)
}
