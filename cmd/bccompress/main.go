/*
 * naclbc - bccompress: abbreviation synthesis over existing bitcode.
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
	"fmt"
	"os"
	"sort"
	"strconv"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/naclbc/compress"
	"github.com/rcornwell/naclbc/config"
	"github.com/rcornwell/naclbc/internal/cliio"
	"github.com/rcornwell/naclbc/internal/logger"
)

func main() {
	optOut := getopt.StringLong("output", 'o', "-", "Output path ('-' for stdout)")
	optConfig := getopt.StringLong("config", 'c', "", "TOML config file (compress thresholds)")
	optMinUses := getopt.StringLong("min-uses", 0, "0", "Override the minimum abbreviation use count (0 keeps the config value)")
	optCutoff := getopt.StringLong("size-cutoff", 0, "0", "Override the record-size bucket cutoff (0 keeps the config value)")
	optReport := getopt.StringLong("report", 'r', "", "Write a per-block report to this path ('-' for stderr, empty for none)")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	args := getopt.Args()
	if *optHelp || len(args) != 1 {
		getopt.Usage()
		os.Exit(0)
	}
	input := args[0]

	log := logger.Discard()

	minUses, err := strconv.Atoi(*optMinUses)
	if err != nil {
		log.Error("parsing -min-uses: " + err.Error())
		os.Exit(1)
	}
	cutoff, err := strconv.Atoi(*optCutoff)
	if err != nil {
		log.Error("parsing -size-cutoff: " + err.Error())
		os.Exit(1)
	}

	cfg := config.Default()
	if *optConfig != "" {
		loaded, loadErr := config.LoadFrom(*optConfig)
		if loadErr != nil {
			log.Error("loading config: " + loadErr.Error())
			os.Exit(1)
		}
		cfg = loaded
	}
	if minUses > 0 {
		cfg.Compress.MinAbbrevUses = minUses
	}
	if cutoff > 0 {
		cfg.Compress.SizeCutoff = cutoff
	}

	data, err := cliio.ReadInput(input)
	if err != nil {
		log.Error("reading input: " + err.Error())
		os.Exit(1)
	}

	out, report, err := compress.Compress(data, compress.Config{
		MinAbbrevUses: cfg.Compress.MinAbbrevUses,
		SizeCutoff:    cfg.Compress.SizeCutoff,
	}, log)
	if err != nil {
		log.Error("compressing: " + err.Error())
		os.Exit(1)
	}

	if *optReport != "" {
		text := formatReport(report)
		if *optReport == "-" {
			fmt.Fprint(os.Stderr, text)
		} else if err := cliio.WriteOutput(*optReport, []byte(text)); err != nil {
			log.Error("writing report: " + err.Error())
			os.Exit(1)
		}
	}

	if err := cliio.WriteOutput(*optOut, out); err != nil {
		log.Error("writing output: " + err.Error())
		os.Exit(1)
	}
}

func formatReport(report *compress.Report) string {
	ids := make([]int, 0, len(report.Blocks))
	for id := range report.Blocks {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	out := "block  kept  dropped  abbreviated  unabbreviated\n"
	for _, id := range ids {
		b := report.Blocks[uint32(id)]
		out += fmt.Sprintf("%-6d %-5d %-8d %-12d %-12d\n",
			id, b.KeptAbbrevs, b.DroppedAbbrevs, b.AbbreviatedRecords, b.UnabbreviatedRecords)
	}
	return out
}
