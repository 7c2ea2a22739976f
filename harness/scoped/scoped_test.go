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

package scoped

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestAllocFree(t *testing.T) {
	var a Allocator
	p := a.Alloc(128)
	if len(p) != 128 {
		t.Fatalf("Alloc(128) returned %d bytes", len(p))
	}
	if a.Live() != 1 || a.LiveBytes() != 128 {
		t.Errorf("live %d/%d, want 1/128", a.Live(), a.LiveBytes())
	}
	a.Free(p)
	if a.Live() != 0 || a.LiveBytes() != 0 {
		t.Errorf("live %d/%d after Free", a.Live(), a.LiveBytes())
	}

	// double free and foreign slices are ignored
	a.Free(p)
	a.Free(make([]byte, 8))
	a.Free(nil)
	if a.Live() != 0 {
		t.Errorf("live %d after ignored frees", a.Live())
	}
}

func TestAllocZero(t *testing.T) {
	var a Allocator
	if p := a.Alloc(0); p != nil {
		t.Errorf("Alloc(0) = %v, want nil", p)
	}
	if p := a.Calloc(0, 4); p != nil {
		t.Errorf("Calloc(0, 4) = %v, want nil", p)
	}
	if a.Live() != 0 {
		t.Errorf("live %d", a.Live())
	}
}

func TestCalloc(t *testing.T) {
	var a Allocator
	p := a.Calloc(4, 8)
	if len(p) != 32 {
		t.Fatalf("Calloc(4, 8) returned %d bytes", len(p))
	}
	if !bytes.Equal(p, make([]byte, 32)) {
		t.Error("Calloc memory not zeroed")
	}
	if p := a.Calloc(math.MaxInt, 2); p != nil {
		t.Error("overflowing Calloc succeeded")
	}
	if a.Live() != 1 {
		t.Errorf("live %d, want 1", a.Live())
	}
}

func TestRealloc(t *testing.T) {
	var a Allocator

	p := a.Realloc(nil, 4)
	if len(p) != 4 || a.Live() != 1 {
		t.Fatalf("Realloc(nil, 4): len %d, live %d", len(p), a.Live())
	}
	copy(p, "abcd")

	q := a.Realloc(p, 8)
	if len(q) != 8 || string(q[:4]) != "abcd" {
		t.Fatalf("Realloc grow: %q", q)
	}
	if a.Live() != 1 || a.LiveBytes() != 8 {
		t.Errorf("live %d/%d, want 1/8", a.Live(), a.LiveBytes())
	}
	if a.Owns(p) || !a.Owns(q) {
		t.Error("record not moved to the new block")
	}

	if r := a.Realloc(make([]byte, 4), 16); r != nil {
		t.Error("Realloc of an untracked slice succeeded")
	}

	if r := a.Realloc(q, 0); r != nil {
		t.Error("Realloc(q, 0) returned memory")
	}
	if a.Live() != 0 {
		t.Errorf("live %d after Realloc to zero", a.Live())
	}
}

func TestReallocFailureKeepsRecord(t *testing.T) {
	a := New(16)
	p := a.Alloc(8)
	copy(p, "12345678")
	if q := a.Realloc(p, 32); q != nil {
		t.Fatal("Realloc above the limit succeeded")
	}
	if !a.Owns(p) || a.LiveBytes() != 8 || string(p) != "12345678" {
		t.Error("failed Realloc changed the record")
	}
}

func TestLimit(t *testing.T) {
	a := New(100)
	if a.Alloc(60) == nil {
		t.Fatal("Alloc(60) failed")
	}
	if a.Alloc(60) != nil {
		t.Error("Alloc over the limit succeeded")
	}
	if a.Alloc(40) == nil {
		t.Error("Alloc up to the limit failed")
	}
}

func TestFreeAllOrder(t *testing.T) {
	var a Allocator
	var logged []string
	a.SetLogger(func(format string, args ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, args...))
	})

	var blocks [][]byte
	for i := 1; i <= 5; i++ {
		blocks = append(blocks, a.Alloc(i))
	}
	// punch a hole so the free list gets used
	a.Free(blocks[2])
	blocks = append(blocks[:2], blocks[3:]...)
	blocks = append(blocks, a.Alloc(6))

	got := a.Blocks()
	if len(got) != len(blocks) {
		t.Fatalf("%d blocks, want %d", len(got), len(blocks))
	}
	for i := range got {
		if len(got[i]) != len(blocks[i]) {
			t.Errorf("block %d has size %d, want %d", i, len(got[i]), len(blocks[i]))
		}
	}

	logged = nil
	if n := a.FreeAll(); n != 5 {
		t.Errorf("FreeAll released %d, want 5", n)
	}
	if a.Live() != 0 || a.LiveBytes() != 0 {
		t.Errorf("live %d/%d after FreeAll", a.Live(), a.LiveBytes())
	}
	want := []string{"1 B", "2 B", "4 B", "5 B", "6 B"}
	for i, line := range logged {
		if !strings.HasPrefix(line, "MEMORY: Freed "+want[i]) {
			t.Errorf("line %d: %q", i, line)
		}
	}
}
