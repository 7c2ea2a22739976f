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

package ndarray

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

type flat struct {
	data []byte
	size int
}

// FlatBytes views data as a row-major array of elemSize byte elements.
func FlatBytes(data []byte, elemSize int) Array {
	return &flat{data: data, size: elemSize}
}

// NewFlat views a slice, or a pointer to an array, as one contiguous
// row-major block. Nested fixed size arrays such as [][4]int32 are flattened
// down to their scalar element.
func NewFlat(v interface{}) (Array, error) {
	rv := reflect.ValueOf(v)
	var n int
	var t reflect.Type
	switch rv.Kind() {
	case reflect.Slice:
		n, t = rv.Len(), rv.Type().Elem()
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Array {
			return nil, errors.Errorf("ndarray: flat array needs a slice or array pointer, got %T", v)
		}
		n, t = rv.Elem().Len(), rv.Elem().Type().Elem()
	default:
		return nil, errors.Errorf("ndarray: flat array needs a slice or array pointer, got %T", v)
	}
	total := n * int(t.Size())
	leaf := t
	for leaf.Kind() == reflect.Array {
		leaf = leaf.Elem()
	}
	if leaf.Size() == 0 {
		return nil, errors.Errorf("ndarray: zero sized element type %v", leaf)
	}
	var data []byte
	if total > 0 {
		data = unsafe.Slice((*byte)(rv.UnsafePointer()), total)
	}
	return &flat{data: data, size: int(leaf.Size())}, nil
}

// FlatAt returns the element of a row-major block at ix.
func FlatAt(data []byte, elemSize int, d Dims, ix Index) ([]byte, error) {
	if err := ix.check(d); err != nil {
		return nil, err
	}
	off := 0
	for k := range d {
		off = off*d[k] + ix[k]
	}
	start := off * elemSize
	if elemSize <= 0 || start+elemSize > len(data) {
		return nil, errors.Errorf("ndarray: element %v lies outside %d bytes of storage", []int(ix), len(data))
	}
	return data[start : start+elemSize], nil
}

func (f *flat) Jagged() bool { return false }

func (f *flat) ElemSize(int) (int, error) {
	if f.size <= 0 {
		return 0, errors.Errorf("ndarray: invalid element size %d", f.size)
	}
	return f.size, nil
}

func (f *flat) At(d Dims, ix Index) ([]byte, error) {
	return FlatAt(f.data, f.size, d, ix)
}

// AsBytes views the memory of *p as a byte slice.
func AsBytes[T any](p *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), unsafe.Sizeof(*p))
}
