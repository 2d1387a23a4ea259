/*
 * naclbc - bcfuzz: deterministic stochastic bitcode mutation.
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
	"strconv"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/config"
	"github.com/rcornwell/naclbc/fuzz"
	"github.com/rcornwell/naclbc/internal/cliio"
	"github.com/rcornwell/naclbc/internal/logger"
	"github.com/rcornwell/naclbc/record"
)

func main() {
	optOut := getopt.StringLong("output", 'o', "-", "Output path ('-' for stdout)")
	optConfig := getopt.StringLong("config", 'c', "", "TOML config file (fuzz distributions)")
	optSeed := getopt.StringLong("seed", 's', "naclbc", "PRNG seed string")
	optSalt := getopt.StringLong("salt", 0, "0", "PRNG salt")
	optPermille := getopt.StringLong("permille", 'p', "50", "Edits per mille of the base record count")
	optBase := getopt.StringLong("base", 0, "1000", "Base divisor for the permille edit-count formula")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	args := getopt.Args()
	if *optHelp || len(args) != 1 {
		getopt.Usage()
		os.Exit(0)
	}
	input := args[0]

	log := logger.Discard()

	salt, err := strconv.ParseInt(*optSalt, 10, 64)
	if err != nil {
		log.Error("parsing -salt: " + err.Error())
		os.Exit(1)
	}
	permille, err := strconv.Atoi(*optPermille)
	if err != nil {
		log.Error("parsing -permille: " + err.Error())
		os.Exit(1)
	}
	base, err := strconv.Atoi(*optBase)
	if err != nil {
		log.Error("parsing -base: " + err.Error())
		os.Exit(1)
	}

	cfg := config.Default()
	if *optConfig != "" {
		loaded, err := config.LoadFrom(*optConfig)
		if err != nil {
			log.Error("loading config: " + err.Error())
			os.Exit(1)
		}
		cfg = loaded
	}

	data, err := cliio.ReadInput(input)
	if err != nil {
		log.Error("reading input: " + err.Error())
		os.Exit(1)
	}

	flat, err := bitstream.ReadFlat(data, log)
	if err != nil {
		log.Error("parsing input: " + err.Error())
		os.Exit(1)
	}

	m := record.NewMunger(flat)
	f := fuzz.New(*optSeed, salt, cfg.Fuzz)
	report, err := f.Run(m, permille, base)
	if err != nil {
		log.Error("fuzzing: " + err.Error())
		os.Exit(1)
	}
	log.Info("fuzz run complete", "edits", len(report.Actions))

	out, err := bitstream.WriteFlat(m.Materialize(), log)
	if err != nil {
		log.Error("writing result: " + err.Error())
		os.Exit(1)
	}

	if err := cliio.WriteOutput(*optOut, out); err != nil {
		log.Error("writing output: " + err.Error())
		os.Exit(1)
	}
}
