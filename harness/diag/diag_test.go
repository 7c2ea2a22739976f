// Copyright 2026 CoreOS, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kylelemons/godebug/pretty"
)

func TestContext(t *testing.T) {
	var b Buffer
	b.SetFile("fma_test.go")
	b.SetCaller("fmaFails")
	b.SetAssert("FloatEquals")
	b.SetLine(42)

	want := Context{File: "fma_test.go", Func: "fmaFails", Assert: "FloatEquals", Line: 42}
	if diff := pretty.Compare(want, b.Context()); diff != "" {
		t.Errorf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat(t *testing.T) {
	var b Buffer
	got := b.FormatNarrow("UINT EQ: %d == %d?\n", 1, 2)
	if got != "UINT EQ: 1 == 2?\n" {
		t.Errorf("got %q", got)
	}
	if b.LastWidth() != Narrow {
		t.Errorf("width %v, want narrow", b.LastWidth())
	}

	got = b.FormatWide("WIDE STRING EQ: %q?\n", "héllo")
	if got != "WIDE STRING EQ: \"héllo\"?\n" {
		t.Errorf("got %q", got)
	}
	if b.LastWidth() != Wide {
		t.Errorf("width %v, want wide", b.LastWidth())
	}
}

func TestTruncate(t *testing.T) {
	var b Buffer

	b.FormatNarrow("%s", strings.Repeat("a", 4*Capacity))
	if b.Len() != Capacity-1 || len(b.Message()) != Capacity-1 {
		t.Errorf("narrow ascii: len %d, message %d bytes", b.Len(), len(b.Message()))
	}

	// Two byte runes: the narrow limit counts bytes, so a rune that would
	// straddle the limit is dropped.
	b.FormatNarrow("%s", strings.Repeat("é", Capacity))
	if n := len(b.Message()); n != Capacity-2 {
		t.Errorf("narrow multibyte: %d bytes", n)
	}
	if !utf8.ValidString(b.Message()) {
		t.Error("narrow multibyte: invalid utf-8")
	}

	// The wide limit counts runes.
	b.FormatWide("%s", strings.Repeat("é", Capacity))
	if n := utf8.RuneCountInString(b.Message()); n != Capacity-1 {
		t.Errorf("wide: %d runes", n)
	}
}

func TestClip(t *testing.T) {
	var b Buffer
	long := strings.Repeat("x", Capacity-2) + "ééé"
	b.SetFile(long)
	f := b.Context().File
	if len(f) > Capacity-1 || !utf8.ValidString(f) {
		t.Errorf("file clipped to %d bytes, valid %v", len(f), utf8.ValidString(f))
	}
}
