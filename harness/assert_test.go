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
	"math"
	"strings"
	"testing"

	"github.com/coreos/microharness/harness/ndarray"
)

func TestAssertions(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]int
	one := 1
	x, y := uint32(0xdeadbeef), uint32(0xdeadbeef)
	flat := ndarray.FlatBytes([]byte{1, 2, 3, 4, 5, 6}, 2)
	other := ndarray.FlatBytes([]byte{1, 2, 3, 4, 5, 7}, 2)
	empty := ndarray.FlatBytes(nil, 1)

	for _, tc := range []struct {
		desc string
		ok   bool
		f    func(*H)
	}{
		{"true", true, func(h *H) { h.True(1 < 2) }},
		{"true fails", false, func(h *H) { h.True(false) }},
		{"false", true, func(h *H) { h.False(false) }},
		{"uint equals", true, func(h *H) { h.UintEquals(math.MaxUint64, math.MaxUint64) }},
		{"uint equals fails", false, func(h *H) { h.UintEquals(1, 2) }},
		{"uint not equals", true, func(h *H) { h.UintNotEquals(1, 2) }},
		{"int equals", true, func(h *H) { h.IntEquals(-5, -5) }},
		{"int not equals fails", false, func(h *H) { h.IntNotEquals(-5, -5) }},
		{"float equals", true, func(h *H) { h.FloatEquals(0.1+0.2, 0.3, 1e-6) }},
		{"float zero epsilon", false, func(h *H) { h.FloatEquals(1, 1, 0) }},
		{"float nan", false, func(h *H) { h.FloatEquals(float32(math.NaN()), 0, 1) }},
		{"float not equals", true, func(h *H) { h.FloatNotEquals(1, 2, 0.5) }},
		{"float not equals at epsilon", true, func(h *H) { h.FloatNotEquals(1, 1.5, 0.5) }},
		{"double equals", true, func(h *H) { h.DoubleEquals(math.FMA(2, 3, 4), 10, 1e-12) }},
		{"double equals fails", false, func(h *H) { h.DoubleEquals(1, 1.1, 0.05) }},
		{"double not equals fails", false, func(h *H) { h.DoubleNotEquals(1, 1, 1e-9) }},
		{"string equals", true, func(h *H) { h.StringEquals("abc", "abc") }},
		{"string equals fails", false, func(h *H) { h.StringEquals("abc", "abd") }},
		{"string not equals", true, func(h *H) { h.StringNotEquals("abc", "abd") }},
		{"wide string equals", true, func(h *H) { h.WideStringEquals([]rune("ünï"), []rune("ünï")) }},
		{"wide string not equals fails", false, func(h *H) { h.WideStringNotEquals([]rune("ü"), []rune("ü")) }},
		{"equals", true, func(h *H) { h.Equals(ndarray.AsBytes(&x), ndarray.AsBytes(&y)) }},
		{"not equals fails", false, func(h *H) { h.NotEquals(ndarray.AsBytes(&x), ndarray.AsBytes(&y)) }},
		{"array equals", true, func(h *H) { h.ArrayEquals([]byte{1, 2, 3, 9}, []byte{1, 2, 3, 8}, 3, 1) }},
		{"array equals fails", false, func(h *H) { h.ArrayEquals([]byte{1, 2, 3, 4}, []byte{1, 2, 3, 5}, 2, 2) }},
		{"array equals short", false, func(h *H) { h.ArrayEquals([]byte{1}, []byte{1}, 2, 1) }},
		{"array not equals", true, func(h *H) { h.ArrayNotEquals([]byte{1, 2}, []byte{1, 3}, 2, 1) }},
		{"array not equals fails", false, func(h *H) { h.ArrayNotEquals([]byte{1, 2}, []byte{1, 2}, 2, 1) }},
		{"deep equals", true, func(h *H) { h.DeepArrayEquals(flat, flat, 3) }},
		{"deep equals fails", false, func(h *H) { h.DeepArrayEquals(flat, other, 3) }},
		{"deep not equals", true, func(h *H) { h.DeepArrayNotEquals(flat, other, 3) }},
		{"deep bad rank", false, func(h *H) { h.DeepArrayEquals(flat, other) }},
		{"deep zero length", true, func(h *H) { h.DeepArrayEquals(empty, empty, 0) }},
		{"deep not equals zero length", false, func(h *H) { h.DeepArrayNotEquals(empty, empty, 0) }},
		{"null", true, func(h *H) { h.Null(nil) }},
		{"null typed", true, func(h *H) { h.Null(nilPtr) }},
		{"null map", true, func(h *H) { h.Null(nilMap) }},
		{"null fails", false, func(h *H) { h.Null(&one) }},
		{"not null", true, func(h *H) { h.NotNull(&one) }},
		{"not null value", true, func(h *H) { h.NotNull(0) }},
		{"not null fails", false, func(h *H) { h.NotNull(nilPtr) }},
	} {
		var tests Tests
		tests.Add(tc.desc, tc.f)
		suite, buf := newBufferedSuite(Options{}, tests)
		suite.Run()
		if tests[0].Passed != tc.ok {
			t.Errorf("%s: passed %v, want %v\n%s", tc.desc, tests[0].Passed, tc.ok, buf.String())
		}
		if failed := strings.Contains(buf.String(), "Assertion Failed."); failed == tc.ok {
			t.Errorf("%s: failure report printed: %v", tc.desc, failed)
		}
	}
}

func TestAssertionStopsTest(t *testing.T) {
	reached := false
	var tests Tests
	tests.Add("stops", func(h *H) {
		h.IntEquals(1, 2)
		reached = true
	})
	suite, buf := newBufferedSuite(Options{}, tests)
	suite.Run()
	if reached {
		t.Error("test continued after a failed assertion")
	}
	for _, want := range []string{
		"\n[assert_test.go] Assertion Failed. IntEquals failed in TestAssertionStopsTest.",
		"SINT EQ: 1 == 2?\n",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output is missing %q:\n%s", want, buf.String())
		}
	}
}

func TestStringDiff(t *testing.T) {
	var tests Tests
	tests.Add("lines", func(h *H) { h.StringEquals("one\ntwo\nthree", "one\n2\nthree") })
	suite, buf := newBufferedSuite(Options{}, tests)
	suite.Run()
	for _, want := range []string{"-two", "+2"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("diff is missing %q:\n%s", want, buf.String())
		}
	}
}

func TestObjHash(t *testing.T) {
	if got := objHash(nil); got != 0 {
		t.Errorf("objHash(nil) = %d, want 0", got)
	}
	if got := objHash([]byte{}); got != 1 {
		t.Errorf("objHash(empty) = %d, want 1", got)
	}
	// 1 + 2*1 + 3*524287
	if got, want := objHash([]byte{2, 3}), uint64(1+2+3*524287); got != want {
		t.Errorf("objHash = %d, want %d", got, want)
	}
	if objHash([]byte{1, 2}) == objHash([]byte{2, 1}) {
		t.Error("objHash ignores byte order")
	}
}

func TestShortFuncName(t *testing.T) {
	for in, want := range map[string]string{
		"github.com/coreos/microharness/harness.TestX.func1": "TestX.func1",
		"github.com/coreos/microharness/harness.(*H).Fatal":  "(*H).Fatal",
		"main.main":                                          "main",
		"nodots":                                             "nodots",
	} {
		if got := shortFuncName(in); got != want {
			t.Errorf("shortFuncName(%q) = %q, want %q", in, got, want)
		}
	}
}
