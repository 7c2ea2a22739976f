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

type jagged struct {
	v reflect.Value
}

// NewJagged views nested slices (or pointers to them) as an array that is
// indexed one level per dimension. Rows may have different lengths; only
// the indices actually walked need to exist.
func NewJagged(v interface{}) (Array, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, errors.New("ndarray: jagged array is nil")
	}
	switch indirect(rv.Type()).Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, errors.Errorf("ndarray: jagged array needs nested slices, got %T", v)
	}
	return &jagged{v: rv}, nil
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func deref(v reflect.Value) (reflect.Value, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, errors.New("ndarray: nil row")
		}
		v = v.Elem()
	}
	return v, nil
}

func (j *jagged) Jagged() bool { return true }

func (j *jagged) ElemSize(rank int) (int, error) {
	t := j.v.Type()
	for k := 0; k < rank; k++ {
		t = indirect(t)
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return 0, errors.Errorf("ndarray: %v has fewer than %d dimensions", j.v.Type(), rank)
		}
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface {
		return 0, errors.Errorf("ndarray: element type of %v is not fixed", j.v.Type())
	}
	return int(t.Size()), nil
}

func (j *jagged) At(d Dims, ix Index) ([]byte, error) {
	if err := ix.check(d); err != nil {
		return nil, err
	}
	cur := j.v
	for k := range ix {
		row, err := deref(cur)
		if err != nil {
			return nil, errors.Wrapf(err, "ndarray: at %v", []int(ix[:k]))
		}
		if row.Kind() != reflect.Slice && row.Kind() != reflect.Array {
			return nil, errors.Errorf("ndarray: level %d is %v, not a slice", k, row.Type())
		}
		if ix[k] >= row.Len() {
			return nil, errors.Errorf("ndarray: row %v has %d elements, need index %d", []int(ix[:k]), row.Len(), ix[k])
		}
		cur = row.Index(ix[k])
	}
	if !cur.CanAddr() {
		tmp := reflect.New(cur.Type()).Elem()
		tmp.Set(cur)
		cur = tmp
	}
	return unsafe.Slice((*byte)(cur.Addr().UnsafePointer()), cur.Type().Size()), nil
}
