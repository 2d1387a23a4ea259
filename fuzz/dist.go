/*
 * naclbc - Weighted distributions the record fuzzer draws from.
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

package fuzz

// Action is one of the five edit operations the fuzzer can apply to a
// record.Munger.
type Action int

const (
	Insert Action = iota
	Mutate
	Remove
	Replace
	Swap
	numActions
)

func (a Action) String() string {
	switch a {
	case Insert:
		return "Insert"
	case Mutate:
		return "Mutate"
	case Remove:
		return "Remove"
	case Replace:
		return "Replace"
	case Swap:
		return "Swap"
	default:
		return "Action(?)"
	}
}

// CodeEntry is one hand-tuned (code, weight) pair in the code-frequency
// table.
type CodeEntry struct {
	Code   uint32 `toml:"code"`
	Weight uint32 `toml:"weight"`
}

// Config holds every tunable distribution the fuzzer draws from. The
// zero Config is not usable; start from DefaultConfig.
type Config struct {
	// ActionWeights has one entry per Action (Insert, Mutate, Remove,
	// Replace, Swap, in that order).
	ActionWeights [numActions]uint32 `toml:"action_weights"`

	// SizeWeights[i] is the relative weight of a generated record
	// having i values, for i in [0, len-1); SizeWeights[len-1] covers
	// "len-1 or more" (the long tail), and the actual count beyond the
	// cutoff grows geometrically from there.
	SizeWeights []uint32 `toml:"size_weights"`

	// ValueWeights[i] is the relative weight of drawing a value from
	// [0, ValueMax[i]]; bands are tried in order and should run from
	// small to large so small values are favored.
	ValueWeights []uint32 `toml:"value_weights"`
	ValueMax     []uint64 `toml:"value_max"`

	// SignFlipPerMille is the probability (out of 1000) that a
	// generated or mutated value is bitwise-negated, approximating a
	// rare negative/out-of-range value.
	SignFlipPerMille uint32 `toml:"sign_flip_per_mille"`

	// Codes is the hand-tuned code-frequency table. OtherWeight is the
	// weight of the Other sentinel, which draws a code uniformly from
	// OtherMin..OtherMax excluding every code already in Codes.
	Codes       []CodeEntry `toml:"codes"`
	OtherWeight uint32      `toml:"other_weight"`
	OtherMin    uint32      `toml:"other_min"`
	OtherMax    uint32      `toml:"other_max"`
}

// DefaultConfig returns the distributions described informally: small
// record sizes favored with a long tail, small positive values
// favored with a rare sign flip, and a short hand-tuned code table
// plus an Other sentinel.
func DefaultConfig() Config {
	return Config{
		ActionWeights:    [numActions]uint32{3, 5, 1, 1, 1}, // Insert, Mutate, Remove, Replace, Swap
		SizeWeights:      []uint32{40, 30, 15, 8, 4, 3},
		ValueWeights:     []uint32{50, 30, 15, 5},
		ValueMax:         []uint64{15, 255, 65535, 1<<32 - 1},
		SignFlipPerMille: 20,
		Codes: []CodeEntry{
			{Code: 1, Weight: 20}, // MODULE_CODE_VERSION-shaped
			{Code: 2, Weight: 15},
			{Code: 8, Weight: 15},
			{Code: 10, Weight: 10},
			{Code: 34, Weight: 10},
		},
		OtherWeight: 30,
		OtherMin:    64,
		OtherMax:    4096,
	}
}

// weightedPick draws an index in [0, len(weights)) with probability
// proportional to weights[i]. Mirrors the cumulative-threshold dispatch
// idiom (draw 0..total, walk buckets summing weight until the draw
// falls inside one) rather than a binary search, since these tables
// are always short.
func weightedPick(r *RNG, weights []uint32) int {
	var total uint32
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 0
	}
	draw := uint32(r.IntN(int(total)))
	var acc uint32
	for i, w := range weights {
		acc += w
		if draw < acc {
			return i
		}
	}
	return len(weights) - 1
}

// drawAction picks an edit action per cfg.ActionWeights.
func drawAction(r *RNG, cfg *Config) Action {
	return Action(weightedPick(r, cfg.ActionWeights[:]))
}

// drawSize picks a value count for a generated record. Past the last
// named bucket the count keeps growing geometrically (each extra step
// half as likely as the last), capturing the "long tail" without an
// unbounded table.
func drawSize(r *RNG, cfg *Config) int {
	n := weightedPick(r, cfg.SizeWeights)
	if n < len(cfg.SizeWeights)-1 {
		return n
	}
	extra := 0
	for r.Bool() {
		extra++
		if extra > 32 {
			break
		}
	}
	return n + extra
}

// drawValue picks one record value: a band per cfg.ValueWeights/ValueMax,
// a uniform draw within the band, and a low-probability sign flip.
func drawValue(r *RNG, cfg *Config) uint64 {
	band := weightedPick(r, cfg.ValueWeights)
	max := cfg.ValueMax[band]
	var v uint64
	if max >= uint64(1)<<63 {
		v = r.Uint64()
	} else {
		v = r.uint64n(max + 1)
	}
	if uint32(r.IntN(1000)) < cfg.SignFlipPerMille {
		v = ^v
	}
	return v
}

// drawCode picks a record code: either one of the hand-tuned entries,
// or — for the Other sentinel — a uniformly random code in
// [OtherMin, OtherMax] that does not collide with a named entry.
func drawCode(r *RNG, cfg *Config) uint32 {
	weights := make([]uint32, len(cfg.Codes)+1)
	for i, c := range cfg.Codes {
		weights[i] = c.Weight
	}
	weights[len(cfg.Codes)] = cfg.OtherWeight
	pick := weightedPick(r, weights)
	if pick < len(cfg.Codes) {
		return cfg.Codes[pick].Code
	}
	span := cfg.OtherMax - cfg.OtherMin + 1
	for {
		c := cfg.OtherMin + uint32(r.uint64n(uint64(span)))
		collide := false
		for _, e := range cfg.Codes {
			if e.Code == c {
				collide = true
				break
			}
		}
		if !collide {
			return c
		}
	}
}
