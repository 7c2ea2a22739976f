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

package harness

import (
	"bytes"
	"reflect"
	"slices"
	"strings"

	"github.com/kylelemons/godebug/diff"

	"github.com/coreos/microharness/harness/ndarray"
)

// hashConstant is the multiplier of the byte hash printed for object and
// array comparisons.
const hashConstant = 524287

// objHash folds b into a number small enough to print in a diagnostic.
func objHash(b []byte) uint64 {
	if b == nil {
		return 0
	}
	result := uint64(1)
	multiplier := uint64(1)
	for _, x := range b {
		result += uint64(x) * multiplier
		multiplier *= hashConstant
	}
	return result
}

// True asserts that cond holds.
func (c *common) True(cond bool) {
	c.at("True")
	c.vprintf("BOOL is TRUE: %t?\n", cond)
	c.check(cond)
}

// False asserts that cond does not hold.
func (c *common) False(cond bool) {
	c.at("False")
	c.vprintf("BOOL is FALSE: %t?\n", cond)
	c.check(!cond)
}

func (c *common) UintEquals(a, b uint64) {
	c.at("UintEquals")
	c.vprintf("UINT EQ: %d == %d?\n", a, b)
	c.check(a == b)
}

func (c *common) UintNotEquals(a, b uint64) {
	c.at("UintNotEquals")
	c.vprintf("UINT NEQ: %d != %d?\n", a, b)
	c.check(a != b)
}

func (c *common) IntEquals(a, b int64) {
	c.at("IntEquals")
	c.vprintf("SINT EQ: %d == %d?\n", a, b)
	c.check(a == b)
}

func (c *common) IntNotEquals(a, b int64) {
	c.at("IntNotEquals")
	c.vprintf("SINT NEQ: %d != %d?\n", a, b)
	c.check(a != b)
}

// FloatEquals asserts |a-b| < epsilon. The bound is strict, so an epsilon
// of zero never holds, and NaN is never equal to anything.
func (c *common) FloatEquals(a, b, epsilon float32) {
	c.at("FloatEquals")
	c.vprintf("FLOAT EQ: %f == %f (eps = %f)?\n", a, b, epsilon)
	d := a - b
	c.check(d > -epsilon && d < epsilon)
}

func (c *common) FloatNotEquals(a, b, epsilon float32) {
	c.at("FloatNotEquals")
	c.vprintf("FLOAT NEQ: %f != %f (eps = %f)?\n", a, b, epsilon)
	d := a - b
	c.check(!(d > -epsilon && d < epsilon))
}

// DoubleEquals is FloatEquals for float64.
func (c *common) DoubleEquals(a, b, epsilon float64) {
	c.at("DoubleEquals")
	c.vprintf("DOUBLE EQ: %f == %f (eps = %f)?\n", a, b, epsilon)
	d := a - b
	c.check(d > -epsilon && d < epsilon)
}

func (c *common) DoubleNotEquals(a, b, epsilon float64) {
	c.at("DoubleNotEquals")
	c.vprintf("DOUBLE NEQ: %f != %f (eps = %f)?\n", a, b, epsilon)
	d := a - b
	c.check(!(d > -epsilon && d < epsilon))
}

// StringEquals asserts a == b. Multi-line mismatches also print a line diff.
func (c *common) StringEquals(a, b string) {
	c.at("StringEquals")
	c.vprintf("STRING EQ: \"%s\" == \"%s\"?\n", a, b)
	if a != b && strings.ContainsRune(a+b, '\n') {
		c.w.Write([]byte(diff.Diff(a, b) + "\n"))
	}
	c.check(a == b)
}

func (c *common) StringNotEquals(a, b string) {
	c.at("StringNotEquals")
	c.vprintf("STRING NEQ: \"%s\" != \"%s\"?\n", a, b)
	c.check(a != b)
}

// WideStringEquals compares strings held as code points.
func (c *common) WideStringEquals(a, b []rune) {
	c.at("WideStringEquals")
	c.vwprintf("WIDE STRING EQ: \"%s\" == \"%s\"?\n", string(a), string(b))
	c.check(slices.Equal(a, b))
}

func (c *common) WideStringNotEquals(a, b []rune) {
	c.at("WideStringNotEquals")
	c.vwprintf("WIDE STRING NEQ: \"%s\" != \"%s\"?\n", string(a), string(b))
	c.check(!slices.Equal(a, b))
}

// Equals asserts that two objects have identical bytes. Use ndarray.AsBytes
// to view a value as bytes.
func (c *common) Equals(a, b []byte) {
	c.at("Equals")
	c.vprintf("OBJ EQ: %x == %x?\n", objHash(a), objHash(b))
	c.check(bytes.Equal(a, b))
}

func (c *common) NotEquals(a, b []byte) {
	c.at("NotEquals")
	c.vprintf("OBJ NEQ: %x != %x?\n", objHash(a), objHash(b))
	c.check(!bytes.Equal(a, b))
}

// arrayElems splits the first n elements of size bytes, or reports false
// if the storage is too short.
func arrayElems(a []byte, n, size int) bool {
	return n >= 0 && size > 0 && n <= len(a)/size
}

// ArrayEquals asserts that the first n elements of size bytes match.
func (c *common) ArrayEquals(a, b []byte, n, size int) {
	c.at("ArrayEquals")
	if !arrayElems(a, n, size) || !arrayElems(b, n, size) {
		c.vprintf("ARR EQ: %d elements of %d bytes do not fit in %d and %d bytes\n", n, size, len(a), len(b))
		c.check(false)
		return
	}
	c.vprintf("ARR EQ: %x == %x?\n", objHash(a[:n*size]), objHash(b[:n*size]))
	for i := 0; i < n; i++ {
		lo, hi := i*size, (i+1)*size
		c.check(bytes.Equal(a[lo:hi], b[lo:hi]))
	}
}

// ArrayNotEquals asserts that at least one of the first n elements differs.
func (c *common) ArrayNotEquals(a, b []byte, n, size int) {
	c.at("ArrayNotEquals")
	if !arrayElems(a, n, size) || !arrayElems(b, n, size) {
		c.vprintf("ARR NEQ: %d elements of %d bytes do not fit in %d and %d bytes\n", n, size, len(a), len(b))
		c.check(false)
		return
	}
	c.vprintf("ARR NEQ: %x != %x?\n", objHash(a[:n*size]), objHash(b[:n*size]))
	for i := 0; i < n; i++ {
		lo, hi := i*size, (i+1)*size
		if !bytes.Equal(a[lo:hi], b[lo:hi]) {
			return
		}
	}
	c.check(false)
}

// DeepArrayEquals asserts that two N-dimensional arrays of the given
// dimensions hold the same bytes at every index.
func (c *common) DeepArrayEquals(a, b ndarray.Array, dims ...int) {
	c.at("DeepArrayEquals")
	c.vprintf("DEEP ARR EQ: @%p and @%p?\n", a, b)
	ok, ix, err := ndarray.Every(a, b, ndarray.Dims(dims), ndarray.MemoryEqual)
	switch {
	case err != nil:
		c.vprintf("DEEP ARR EQ: %v\n", err)
	case !ok:
		c.vprintf("DEEP ARR EQ: @%p and @%p differ at %v\n", a, b, []int(ix))
	}
	c.check(ok && err == nil)
}

// DeepArrayNotEquals asserts that two N-dimensional arrays differ at one
// index at least.
func (c *common) DeepArrayNotEquals(a, b ndarray.Array, dims ...int) {
	c.at("DeepArrayNotEquals")
	c.vprintf("DEEP ARR NEQ: @%p and @%p?\n", a, b)
	ok, _, err := ndarray.Some(a, b, ndarray.Dims(dims), ndarray.MemoryNotEqual)
	switch {
	case err != nil:
		c.vprintf("DEEP ARR NEQ: %v\n", err)
	case !ok:
		c.vprintf("DEEP ARR NEQ: @%p and @%p hold the same items\n", a, b)
	}
	c.check(ok && err == nil)
}

// isNil reports whether v is nil or a typed nil pointer, map, slice,
// channel, function or interface.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// NotNull asserts that v is not nil.
func (c *common) NotNull(v interface{}) {
	c.at("NotNull")
	c.vprintf("PTR not NULL: %v != <nil>?\n", v)
	c.check(!isNil(v))
}

// Null asserts that v is nil.
func (c *common) Null(v interface{}) {
	c.at("Null")
	c.vprintf("PTR is NULL: %v == <nil>?\n", v)
	c.check(isNil(v))
}
