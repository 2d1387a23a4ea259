/*
 * naclbc - Config load/save tests.
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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	want := Default()
	if cfg.Compress.MinAbbrevUses != want.Compress.MinAbbrevUses {
		t.Errorf("MinAbbrevUses = %d, want %d", cfg.Compress.MinAbbrevUses, want.Compress.MinAbbrevUses)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Compress.MinAbbrevUses = 9
	cfg.Fuzz.SignFlipPerMille = 77

	path := filepath.Join(t.TempDir(), "naclbc.toml")
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if got.Compress.MinAbbrevUses != 9 {
		t.Errorf("MinAbbrevUses = %d, want 9", got.Compress.MinAbbrevUses)
	}
	if got.Fuzz.SignFlipPerMille != 77 {
		t.Errorf("SignFlipPerMille = %d, want 77", got.Fuzz.SignFlipPerMille)
	}
	if len(got.Fuzz.Codes) != len(cfg.Fuzz.Codes) {
		t.Errorf("Codes length = %d, want %d", len(got.Fuzz.Codes), len(cfg.Fuzz.Codes))
	}
}

func TestLoadFromPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	contents := "[compress]\nmin_abbrev_uses = 3\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("os.WriteFile error: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.Compress.MinAbbrevUses != 3 {
		t.Errorf("MinAbbrevUses = %d, want 3", cfg.Compress.MinAbbrevUses)
	}
	// Everything not named in the file keeps Default's value.
	if cfg.Compress.SizeCutoff != Default().Compress.SizeCutoff {
		t.Errorf("SizeCutoff = %d, want untouched default %d", cfg.Compress.SizeCutoff, Default().Compress.SizeCutoff)
	}
}
