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

// Package example holds the sample suite run by the microharness command:
// tests and a benchmark of a fused multiply-add.
package example

import (
	"encoding/binary"
	"math"

	"github.com/coreos/microharness/harness"
	"github.com/coreos/microharness/harness/ndarray"
)

// FailingName is the test that fails on purpose.
const FailingName = "This test will always fail"

// FMA returns a*b+c computed with a single rounding.
func FMA(a, b, c float32) float32 {
	return float32(math.FMA(float64(a), float64(b), float64(c)))
}

// Tests returns the sample tests. The failing one is left out unless
// withFailing is set.
func Tests(withFailing bool) harness.Tests {
	var tests harness.Tests
	tests.Add("Test if fma returns correct results", func(h *harness.H) {
		h.FloatEquals(FMA(1, 1, 0), 1, 0.001)
		h.FloatEquals(FMA(2, 3, 4), 10, 0.001)
		h.FloatEquals(FMA(8, 1.5, 2.5), 14.5, 0.001)
	})
	tests.Add("Test if fma correctly handles negatives", func(h *harness.H) {
		h.FloatEquals(FMA(-1, 1, 0), -1, 0.001)
		h.FloatEquals(FMA(1, -1, 0), -1, 0.001)
		h.FloatEquals(FMA(-1, -1, 0), 1, 0.001)
		h.FloatEquals(FMA(-1, -1, -1), 0, 0.001)
		h.FloatEquals(FMA(-5, 5, 10), -15, 0.001)
	})
	tests.Add("Test fma over a matrix", testMatrix)
	tests.Add("Test fma into scratch memory", testScratch)
	tests.AddTimed("Test fma stays fast", func(h *harness.H) {
		var acc float32
		for i := 0; i < 100000; i++ {
			acc = FMA(acc, 0.5, 1)
		}
		h.FloatEquals(acc, 2, 0.001)
	}, 1, false)
	tests.AddTimed("Test fma finishes before its deadline", func(h *harness.H) {
		h.FloatEquals(FMA(16.5, 18.5, 2), 307.25, 0.001)
	}, 5, true)
	if withFailing {
		tests.Add(FailingName, func(h *harness.H) {
			h.True(false)
		})
	}
	return tests
}

// testMatrix applies FMA element-wise to a flat matrix and compares the
// result with rows computed one at a time.
func testMatrix(h *harness.H) {
	a := [2][3]float32{{1, 2, 3}, {-1, -2, -3}}
	var got [2][3]float32
	for i := range a {
		for j := range a[i] {
			got[i][j] = FMA(a[i][j], 2, 1)
		}
	}
	want := [][]float32{{3, 5, 7}, {-1, -3, -5}}

	flat, err := ndarray.NewFlat(&got)
	if err != nil {
		h.Fatal(err)
	}
	jagged, err := ndarray.NewJagged(want)
	if err != nil {
		h.Fatal(err)
	}
	h.DeepArrayEquals(flat, jagged, 2, 3)

	want[1][2] = 0
	h.DeepArrayNotEquals(flat, jagged, 2, 3)
}

// testScratch stores results in memory released by the harness.
func testScratch(h *harness.H) {
	const n = 16
	buf := h.Calloc(n, 4)
	h.NotNull(buf)
	for i := 0; i < n; i++ {
		v := FMA(float32(i), 2, 0.5)
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}

	buf = h.Realloc(buf, 2*n*4)
	h.NotNull(buf)
	h.UintEquals(uint64(len(buf)), 2*n*4)

	first := math.Float32frombits(binary.LittleEndian.Uint32(buf))
	last := math.Float32frombits(binary.LittleEndian.Uint32(buf[4*(n-1):]))
	h.FloatEquals(first, 0.5, 0.001)
	h.FloatEquals(last, 30.5, 0.001)
	h.ArrayNotEquals(buf[:4], buf[4:8], 1, 4)
}

// Benchmarks returns the sample benchmark.
func Benchmarks() harness.Benchmarks {
	var bs harness.Benchmarks
	bs.Add("Performance check for fma", func(b *harness.B) {
		var t float32
		for i := 0; i < 1000; i++ {
			a, x, c := float32(16.5), float32(18.5), float32(2)
			t = FMA(a, x, c)
		}
		sink = t
	})
	return bs
}

var sink float32
