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

// Package scoped tracks memory handed out to a single test so that all of it
// can be released when the test ends, whether it returned or was aborted.
//
// Records live in an arena indexed by int32. Slot 0 is the sentinel of a
// circular doubly linked list that keeps allocation order; released slots
// are recycled through a free list.
package scoped

import (
	"math"
	"math/bits"

	"github.com/coreos/pkg/capnslog"
	"github.com/dustin/go-humanize"
)

// DefaultLimit caps the live bytes of one Allocator.
const DefaultLimit = 1 << 30

var plog = capnslog.NewPackageLogger("github.com/coreos/microharness", "harness/scoped")

type record struct {
	data []byte
	prev int32
	next int32
}

// Allocator is not safe for concurrent use. The zero value is ready to use.
type Allocator struct {
	recs  []record
	free  []int32
	index map[*byte]int32
	bytes int64
	limit int64
	logf  func(format string, args ...interface{})
}

// New returns an Allocator that refuses to hold more than limit live bytes.
// A limit <= 0 selects DefaultLimit.
func New(limit int64) *Allocator {
	a := &Allocator{}
	a.SetLimit(limit)
	return a
}

// SetLimit changes the live byte limit. A limit <= 0 selects DefaultLimit.
func (a *Allocator) SetLimit(limit int64) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	a.limit = limit
}

// SetLogger installs a function receiving one line per allocator event.
func (a *Allocator) SetLogger(logf func(format string, args ...interface{})) {
	a.logf = logf
}

func (a *Allocator) init() {
	if a.recs != nil {
		return
	}
	a.recs = make([]record, 1, 16)
	a.index = make(map[*byte]int32)
	if a.limit <= 0 {
		a.limit = DefaultLimit
	}
}

func (a *Allocator) log(format string, args ...interface{}) {
	if a.logf != nil {
		a.logf(format, args...)
	}
}

// key identifies a block by its first byte.
func key(p []byte) *byte {
	if cap(p) == 0 {
		return nil
	}
	return &p[:1][0]
}

func (a *Allocator) fits(n int64) bool {
	if n > a.limit-a.bytes {
		plog.Warningf("refusing %s: %s of %s already in use",
			humanize.IBytes(uint64(n)), humanize.IBytes(uint64(a.bytes)), humanize.IBytes(uint64(a.limit)))
		return false
	}
	return true
}

func (a *Allocator) link(data []byte) {
	var slot int32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		slot = int32(len(a.recs))
		a.recs = append(a.recs, record{})
	}
	tail := a.recs[0].prev
	a.recs[slot] = record{data: data, prev: tail, next: 0}
	a.recs[tail].next = slot
	a.recs[0].prev = slot
	a.index[key(data)] = slot
	a.bytes += int64(len(data))
}

func (a *Allocator) unlink(slot int32) []byte {
	r := a.recs[slot]
	a.recs[r.prev].next = r.next
	a.recs[r.next].prev = r.prev
	a.recs[slot] = record{}
	a.free = append(a.free, slot)
	delete(a.index, key(r.data))
	a.bytes -= int64(len(r.data))
	return r.data
}

// Alloc returns n bytes, or nil if n <= 0 or the limit would be exceeded.
func (a *Allocator) Alloc(n int) []byte {
	a.init()
	if n <= 0 || !a.fits(int64(n)) {
		return nil
	}
	data := make([]byte, n)
	a.link(data)
	a.log("MEMORY: Allocated %s of memory at @%p!\n", humanize.IBytes(uint64(n)), key(data))
	return data
}

// Calloc returns n*size zeroed bytes, or nil if the product overflows, is
// zero, or would exceed the limit.
func (a *Allocator) Calloc(n, size int) []byte {
	a.init()
	if n <= 0 || size <= 0 {
		return nil
	}
	hi, lo := bits.Mul64(uint64(n), uint64(size))
	if hi != 0 || lo > math.MaxInt {
		plog.Warningf("refusing %d elements of %d bytes: size overflows", n, size)
		return nil
	}
	total := int(lo)
	if !a.fits(int64(total)) {
		return nil
	}
	data := make([]byte, total)
	a.link(data)
	a.log("MEMORY: Zeroed %s of memory at @%p!\n", humanize.IBytes(uint64(total)), key(data))
	return data
}

// Realloc resizes a tracked block, preserving its prefix. A nil p behaves
// like Alloc. An n <= 0 frees p and returns nil. On failure, or when p is not
// tracked, nil is returned and the existing block is left untouched.
func (a *Allocator) Realloc(p []byte, n int) []byte {
	a.init()
	if p == nil {
		return a.Alloc(n)
	}
	slot, ok := a.index[key(p)]
	if !ok {
		return nil
	}
	if n <= 0 {
		a.Free(p)
		return nil
	}
	old := a.recs[slot].data
	if grow := int64(n) - int64(len(old)); grow > 0 && !a.fits(grow) {
		return nil
	}
	data := make([]byte, n)
	copy(data, old)

	delete(a.index, key(old))
	a.recs[slot].data = data
	a.index[key(data)] = slot
	a.bytes += int64(n) - int64(len(old))

	a.log("MEMORY: Reallocated %s of memory at @%p (from %s at @%p)!\n",
		humanize.IBytes(uint64(n)), key(data), humanize.IBytes(uint64(len(old))), key(old))
	return data
}

// Free releases a tracked block. Nil and untracked slices are ignored.
func (a *Allocator) Free(p []byte) {
	if a.index == nil || p == nil {
		return
	}
	slot, ok := a.index[key(p)]
	if !ok {
		return
	}
	data := a.unlink(slot)
	a.log("MEMORY: Freed %s of memory at @%p!\n", humanize.IBytes(uint64(len(data))), key(data))
}

// FreeAll releases every tracked block in allocation order and returns how
// many there were.
func (a *Allocator) FreeAll() int {
	if a.recs == nil {
		return 0
	}
	n := 0
	for slot := a.recs[0].next; slot != 0; slot = a.recs[0].next {
		data := a.unlink(slot)
		a.log("MEMORY: Freed %s of memory at @%p!\n", humanize.IBytes(uint64(len(data))), key(data))
		n++
	}
	return n
}

// Live returns the number of tracked blocks.
func (a *Allocator) Live() int {
	return len(a.index)
}

// LiveBytes returns the total size of tracked blocks.
func (a *Allocator) LiveBytes() int64 {
	return a.bytes
}

// Owns reports whether p is the start of a tracked block.
func (a *Allocator) Owns(p []byte) bool {
	if a.index == nil {
		return false
	}
	_, ok := a.index[key(p)]
	return ok
}

// Blocks returns the tracked blocks in allocation order.
func (a *Allocator) Blocks() [][]byte {
	if a.recs == nil {
		return nil
	}
	var out [][]byte
	for slot := a.recs[0].next; slot != 0; slot = a.recs[slot].next {
		out = append(out, a.recs[slot].data)
	}
	return out
}
