/*
 * naclbc - Munging-script decoding: a flat uint64 array of edits.
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

package record

import (
	"errors"
	"fmt"
)

// ScriptAction numbers the four edits a munging script can spell,
// matching the order a Munger itself exposes them in.
type ScriptAction uint64

const (
	ScriptAddBefore ScriptAction = iota
	ScriptAddAfter
	ScriptRemove
	ScriptReplace
)

var (
	// ErrScriptTruncated is returned when a script ends mid-entry.
	ErrScriptTruncated = errors.New("record: munging script truncated")
	// ErrScriptBadAction is returned for an action code outside 0..3.
	ErrScriptBadAction = errors.New("record: munging script has an unknown action code")
	// ErrScriptNoTerminator is returned when a variable-length record
	// never reaches the chosen terminator value before the script ends.
	ErrScriptNoTerminator = errors.New("record: munging script record missing its terminator")
)

// ScriptEdit is one decoded entry: Index and Action always apply;
// AddBefore/AddAfter/Replace additionally carry the record to insert
// or substitute.
type ScriptEdit struct {
	Index  int
	Action ScriptAction
	Rec    Record
}

// ParseScript decodes a flat uint64 array as described by the
// munging-script wire form: each entry is (index, action, [abbrev,
// code, values..., terminator]) — the trailing group present only for
// AddBefore, AddAfter and Replace, and read until a value equal to
// terminator is seen. Remove carries no trailing group.
func ParseScript(data []uint64, terminator uint64) ([]ScriptEdit, error) {
	var edits []ScriptEdit
	i := 0
	for i < len(data) {
		if i+1 >= len(data) {
			return nil, ErrScriptTruncated
		}
		index := int(data[i])
		action := ScriptAction(data[i+1])
		i += 2

		if action == ScriptRemove {
			edits = append(edits, ScriptEdit{Index: index, Action: action})
			continue
		}
		if action != ScriptAddBefore && action != ScriptAddAfter && action != ScriptReplace {
			return nil, fmt.Errorf("%w: %d", ErrScriptBadAction, action)
		}

		if i+1 >= len(data) {
			return nil, ErrScriptTruncated
		}
		abbrevIndex := data[i]
		code := uint32(data[i+1])
		i += 2

		var values []uint64
		found := false
		for i < len(data) {
			v := data[i]
			i++
			if v == terminator {
				found = true
				break
			}
			values = append(values, v)
		}
		if !found {
			return nil, ErrScriptNoTerminator
		}

		edits = append(edits, ScriptEdit{
			Index:  index,
			Action: action,
			Rec:    Data(abbrevIndex, code, values...),
		})
	}
	return edits, nil
}

// ApplyScript layers every decoded edit onto m, in order.
func ApplyScript(m *Munger, edits []ScriptEdit) {
	for _, e := range edits {
		switch e.Action {
		case ScriptAddBefore:
			m.AddBefore(e.Index, e.Rec)
		case ScriptAddAfter:
			m.AddAfter(e.Index, e.Rec)
		case ScriptRemove:
			m.Remove(e.Index)
		case ScriptReplace:
			m.Replace(e.Index, e.Rec)
		}
	}
}
