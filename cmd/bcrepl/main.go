/*
 * naclbc - bcrepl: interactive record editor over a loaded bitcode file.
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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	"github.com/rcornwell/naclbc/bitstream"
	"github.com/rcornwell/naclbc/block"
	"github.com/rcornwell/naclbc/internal/cliio"
	"github.com/rcornwell/naclbc/internal/logger"
	"github.com/rcornwell/naclbc/record"
)

// replCommands lists the top-level verbs, for SetCompleter.
var replCommands = []string{"list", "before", "after", "remove", "replace", "save", "help", "quit"}

func main() {
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

	flat, err := bitstream.ReadFlat(data, log)
	if err != nil {
		log.Error("parsing input: " + err.Error())
		os.Exit(1)
	}

	m := record.NewMunger(flat)
	savePath := input
	runRepl(m, &savePath, log)
}

func runRepl(m *record.Munger, savePath *string, log *slog.Logger) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(line string) []string {
		var matches []string
		for _, c := range replCommands {
			if strings.HasPrefix(c, line) {
				matches = append(matches, c)
			}
		}
		return matches
	})

	for {
		command, err := line.Prompt("bcrepl> ")
		if err == nil {
			line.AppendHistory(command)
			quit, err := dispatch(command, m, savePath, log)
			if err != nil {
				fmt.Println("Error: " + err.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		log.Error("reading line: " + err.Error())
		return
	}
}

// dispatch runs one REPL command line against m, returning true when
// the caller should exit.
func dispatch(line string, m *record.Munger, savePath *string, log *slog.Logger) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "help":
		fmt.Println("commands: list | before <i> <code> <v...> | after <i> <code> <v...> | remove <i> | replace <i> <code> <v...> | save [path] | quit")
		return false, nil

	case "quit", "exit":
		return true, nil

	case "list":
		printList(m)
		return false, nil

	case "before", "after", "replace":
		if len(fields) < 3 {
			return false, fmt.Errorf("usage: %s <index> <code> [values...]", fields[0])
		}
		idx, code, values, err := parseEdit(fields[1:])
		if err != nil {
			return false, err
		}
		rec := record.Data(uint64(block.UnabbrevRecord), code, values...)
		switch fields[0] {
		case "before":
			m.AddBefore(idx, rec)
		case "after":
			m.AddAfter(idx, rec)
		case "replace":
			m.Replace(idx, rec)
		}
		return false, nil

	case "remove":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: remove <index>")
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("bad index %q: %w", fields[1], err)
		}
		m.Remove(idx)
		return false, nil

	case "save":
		path := *savePath
		if len(fields) == 2 {
			path = fields[1]
		}
		out, err := bitstream.WriteFlat(m.Materialize(), log)
		if err != nil {
			return false, err
		}
		if err := cliio.WriteOutput(path, out); err != nil {
			return false, err
		}
		fmt.Println("saved to " + path)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
}

func parseEdit(fields []string) (idx int, code uint32, values []uint64, err error) {
	idx, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, nil, fmt.Errorf("bad index %q: %w", fields[0], err)
	}
	c, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("bad code %q: %w", fields[1], err)
	}
	code = uint32(c)
	values = make([]uint64, 0, len(fields)-2)
	for _, f := range fields[2:] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("bad value %q: %w", f, err)
		}
		values = append(values, v)
	}
	return idx, code, values, nil
}

func printList(m *record.Munger) {
	it := m.Iterate()
	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		idx, phase := it.Position()
		fmt.Printf("%d [%v]: kind=%v code=%d values=%v\n", idx, phase, rec.Kind, rec.Code, rec.Values)
	}
}
