/*
 * naclbc - Munging-script decoding tests.
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

import "testing"

func TestParseScriptAddBeforeAndRemove(t *testing.T) {
	const term = ^uint64(0)
	data := []uint64{
		0, uint64(ScriptAddBefore), 0, 5, 1, 2, term,
		2, uint64(ScriptRemove),
	}
	edits, err := ParseScript(data, term)
	if err != nil {
		t.Fatalf("ParseScript error: %v", err)
	}
	if len(edits) != 2 {
		t.Fatalf("got %d edits, want 2", len(edits))
	}
	if edits[0].Index != 0 || edits[0].Action != ScriptAddBefore {
		t.Errorf("edit 0 = %+v", edits[0])
	}
	if edits[0].Rec.Code != 5 || len(edits[0].Rec.Values) != 2 || edits[0].Rec.Values[0] != 1 || edits[0].Rec.Values[1] != 2 {
		t.Errorf("edit 0 record = %+v", edits[0].Rec)
	}
	if edits[1].Index != 2 || edits[1].Action != ScriptRemove {
		t.Errorf("edit 1 = %+v", edits[1])
	}
}

func TestParseScriptReplaceAndApply(t *testing.T) {
	const term = ^uint64(0)
	data := []uint64{
		1, uint64(ScriptReplace), 0, 9, 42, term,
	}
	edits, err := ParseScript(data, term)
	if err != nil {
		t.Fatalf("ParseScript error: %v", err)
	}

	base := []Record{Data(0, 1, 0), Data(0, 2, 0), Data(0, 3, 0)}
	m := NewMunger(base)
	ApplyScript(m, edits)

	got := m.Materialize()
	if len(got) != 3 || got[1].Code != 9 || got[1].Values[0] != 42 {
		t.Fatalf("unexpected result after replace: %+v", got)
	}
}

func TestParseScriptMissingTerminatorErrors(t *testing.T) {
	data := []uint64{0, uint64(ScriptAddBefore), 0, 5, 1, 2}
	if _, err := ParseScript(data, ^uint64(0)); err != ErrScriptNoTerminator {
		t.Errorf("ParseScript error = %v, want ErrScriptNoTerminator", err)
	}
}

func TestParseScriptBadActionErrors(t *testing.T) {
	data := []uint64{0, 9}
	if _, err := ParseScript(data, ^uint64(0)); err == nil {
		t.Errorf("expected error for bad action code")
	}
}
