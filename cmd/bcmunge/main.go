/*
 * naclbc - bcmunge: apply a binary edit script to bitcode records.
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
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/internal/cliio"
	"github.com/rcornwell/naclbc/internal/logger"
	"github.com/rcornwell/naclbc/record"
)

func main() {
	optOut := getopt.StringLong("output", 'o', "-", "Output path ('-' for stdout)")
	optScript := getopt.StringLong("script", 's', "", "Path to the binary edit script (required)")
	optTerminator := getopt.StringLong("terminator", 't', "18446744073709551615", "Terminator value marking the end of each script group")
	optRecover := getopt.BoolLong("recover", 'r', "Patch malformed emissions (bad code widths, dangling abbrev refs, unclosed blocks) instead of aborting")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	args := getopt.Args()
	if *optHelp || len(args) != 1 || *optScript == "" {
		getopt.Usage()
		os.Exit(0)
	}
	input := args[0]

	log := logger.Discard()

	terminator, err := strconv.ParseUint(*optTerminator, 10, 64)
	if err != nil {
		log.Error("parsing -terminator: " + err.Error())
		os.Exit(1)
	}

	data, err := cliio.ReadInput(input)
	if err != nil {
		log.Error("reading input: " + err.Error())
		os.Exit(1)
	}

	scriptBytes, err := cliio.ReadInput(*optScript)
	if err != nil {
		log.Error("reading script: " + err.Error())
		os.Exit(1)
	}
	words, err := decodeWords(scriptBytes)
	if err != nil {
		log.Error("decoding script: " + err.Error())
		os.Exit(1)
	}

	edits, err := record.ParseScript(words, terminator)
	if err != nil {
		log.Error("parsing script: " + err.Error())
		os.Exit(1)
	}

	flat, err := bitstream.ReadFlat(data, log)
	if err != nil {
		log.Error("parsing input: " + err.Error())
		os.Exit(1)
	}

	m := record.NewMunger(flat)
	record.ApplyScript(m, edits)

	var out []byte
	if *optRecover {
		var numErrors, numRepairs int
		out, numErrors, numRepairs, err = bitstream.WriteFlatRecover(m.Materialize(), log)
		if err == nil {
			log.Info("recover mode", "errors", numErrors, "repairs", numRepairs)
		}
	} else {
		out, err = bitstream.WriteFlat(m.Materialize(), log)
	}
	if err != nil {
		log.Error("writing result: " + err.Error())
		os.Exit(1)
	}

	if err := cliio.WriteOutput(*optOut, out); err != nil {
		log.Error("writing output: " + err.Error())
		os.Exit(1)
	}
}

// decodeWords reinterprets a byte stream as a sequence of
// little-endian uint64 words, the wire form a script file is stored
// in on disk.
func decodeWords(data []byte) ([]uint64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("bcmunge: script length %d is not a multiple of 8", len(data))
	}
	words := make([]uint64, len(data)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[i*8 : i*8+8])
	}
	return words, nil
}
