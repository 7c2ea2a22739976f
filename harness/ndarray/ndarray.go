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

// Package ndarray walks N-dimensional arrays stored either flat (one
// contiguous row-major block) or jagged (nested slices, one level of
// indirection per outer dimension) and compares them element by element.
package ndarray

import (
	"bytes"
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// Dims holds the extent of each dimension, outermost first.
type Dims []int

// Len returns the number of elements described by d.
func (d Dims) Len() (int, error) {
	if len(d) == 0 {
		return 0, errors.New("ndarray: zero dimensions")
	}
	n := uint64(1)
	for i, x := range d {
		if x < 0 {
			return 0, errors.Errorf("ndarray: dimension %d is negative (%d)", i, x)
		}
		hi, lo := bits.Mul64(n, uint64(x))
		if hi != 0 || lo > math.MaxInt {
			return 0, errors.Errorf("ndarray: dimensions %v overflow", []int(d))
		}
		n = lo
	}
	return int(n), nil
}

// Index addresses one element. It has the same length as the Dims it walks.
type Index []int

// Next advances ix to the following element in row-major order, the last
// dimension moving fastest. It reports false once every element was visited,
// leaving ix back at the origin.
func (ix Index) Next(d Dims) bool {
	for k := len(ix) - 1; k >= 0; k-- {
		ix[k]++
		if ix[k] < d[k] {
			return true
		}
		ix[k] = 0
	}
	return false
}

func (ix Index) check(d Dims) error {
	if len(ix) != len(d) {
		return errors.Errorf("ndarray: index %v has rank %d, dimensions %v have rank %d", []int(ix), len(ix), []int(d), len(d))
	}
	for k := range ix {
		if ix[k] < 0 || ix[k] >= d[k] {
			return errors.Errorf("ndarray: index %v out of range for dimensions %v", []int(ix), []int(d))
		}
	}
	return nil
}

// Array is an N-dimensional array of fixed size elements.
type Array interface {
	// Jagged reports whether the array is stored as nested slices.
	Jagged() bool
	// ElemSize returns the size in bytes of an element when the array is
	// viewed with the given rank.
	ElemSize(rank int) (int, error)
	// At returns the bytes of the element at ix. The result aliases the
	// array storage.
	At(d Dims, ix Index) ([]byte, error)
}

// Get returns the bytes of the element of a at ix.
func Get(a Array, d Dims, ix Index) ([]byte, error) {
	return a.At(d, ix)
}

// Validator decides whether a pair of elements satisfies a comparison.
type Validator func(a, b []byte) bool

// MemoryEqual reports whether two elements are byte for byte identical.
func MemoryEqual(a, b []byte) bool { return bytes.Equal(a, b) }

// MemoryNotEqual reports whether two elements differ in at least one byte.
func MemoryNotEqual(a, b []byte) bool { return !bytes.Equal(a, b) }

func prepare(a, b Array, d Dims) (int, error) {
	n, err := d.Len()
	if err != nil {
		return 0, err
	}
	sa, err := a.ElemSize(len(d))
	if err != nil {
		return 0, err
	}
	sb, err := b.ElemSize(len(d))
	if err != nil {
		return 0, err
	}
	if sa != sb {
		return 0, errors.Errorf("ndarray: element sizes differ (%d and %d bytes)", sa, sb)
	}
	return n, nil
}

// Every reports whether v holds for the elements of a and b at every index
// of d. It stops at the first index where v fails and returns that index.
// Arrays with no elements satisfy Every.
func Every(a, b Array, d Dims, v Validator) (bool, Index, error) {
	n, err := prepare(a, b, d)
	if err != nil || n == 0 {
		return err == nil, nil, err
	}
	ix := make(Index, len(d))
	for {
		ea, err := a.At(d, ix)
		if err != nil {
			return false, ix, err
		}
		eb, err := b.At(d, ix)
		if err != nil {
			return false, ix, err
		}
		if !v(ea, eb) {
			return false, ix, nil
		}
		if !ix.Next(d) {
			return true, nil, nil
		}
	}
}

// Some reports whether v holds for the elements of a and b at one index of
// d at least, returning the first such index. Arrays with no elements never
// satisfy Some.
func Some(a, b Array, d Dims, v Validator) (bool, Index, error) {
	n, err := prepare(a, b, d)
	if err != nil || n == 0 {
		return false, nil, err
	}
	ix := make(Index, len(d))
	for {
		ea, err := a.At(d, ix)
		if err != nil {
			return false, ix, err
		}
		eb, err := b.At(d, ix)
		if err != nil {
			return false, ix, err
		}
		if v(ea, eb) {
			return true, ix, nil
		}
		if !ix.Next(d) {
			return false, nil, nil
		}
	}
}
