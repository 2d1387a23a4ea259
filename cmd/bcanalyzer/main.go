/*
 * naclbc - bcanalyzer: per-block-id bitcode statistics.
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
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/naclbc/analyzer"
	"github.com/rcornwell/naclbc/internal/cliio"
	"github.com/rcornwell/naclbc/internal/logger"
)

func main() {
	optOut := getopt.StringLong("output", 'o', "-", "Output path for the report ('-' for stdout)")
	optBlockInfo := getopt.BoolLong("blockinfo", 'b', "Also dump the BLOCKINFO abbreviation table")
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

	res, err := analyzer.Analyze(data, log)
	if err != nil {
		log.Error("analyzing: " + err.Error())
		os.Exit(1)
	}

	out := analyzer.Dump(res)
	if *optBlockInfo {
		out += analyzer.DumpBlockInfo(res)
	}

	if err := cliio.WriteOutput(*optOut, []byte(out)); err != nil {
		log.Error("writing output: " + err.Error())
		os.Exit(1)
	}
}
