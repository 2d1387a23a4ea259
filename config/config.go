/*
 * naclbc - Fuzzer and compressor configuration.
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

// Package config loads the TOML file that tunes the fuzzer's
// distributions and the compressor's abbreviation-selection
// thresholds. Every cmd/ front-end that touches either one accepts an
// optional -config flag; absent a file, Default's values apply.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/rcornwell/naclbc/fuzz"
)

// Compress holds the compressor's two tunables: the minimum number of
// times a candidate abbreviation must be used to survive into the
// final emit, and the record-size cutoff past which the compressor's
// record-shape statistics share one group per code for every larger
// size.
type Compress struct {
	MinAbbrevUses int `toml:"min_abbrev_uses"`
	SizeCutoff    int `toml:"size_cutoff"`
}

// Config is the whole on-disk settings file.
type Config struct {
	Fuzz     fuzz.Config `toml:"fuzz"`
	Compress Compress    `toml:"compress"`
}

// Default returns the built-in settings, identical to what every
// cmd/ front-end uses when no -config file is given.
func Default() Config {
	return Config{
		Fuzz:     fuzz.DefaultConfig(),
		Compress: Compress{MinAbbrevUses: 5, SizeCutoff: 16},
	}
}

// LoadFrom reads and decodes path over a copy of Default, so a config
// file only needs to name the fields it wants to override. A missing
// file is not an error: Default is returned as-is.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// SaveTo writes cfg to path in TOML form, overwriting any existing
// file, giving an editable starting point. No cmd/ front-end calls it.
func SaveTo(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
