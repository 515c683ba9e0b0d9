// Copyright 2025 Zintix Labs
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

package scroll

import (
	"math"
	"testing"
)

func TestNewValidates(t *testing.T) {
	if _, err := New(0, 10, 0); err == nil {
		t.Fatalf("expected error for zero size")
	}
	if _, err := New(-1, 10, 0); err == nil {
		t.Fatalf("expected error for negative size")
	}
	if _, err := New(math.NaN(), 10, 0); err == nil {
		t.Fatalf("expected error for NaN size")
	}
	if _, err := New(100, 2, 0); err == nil {
		t.Fatalf("expected error for short strip")
	}
}

func TestWrapWindow(t *testing.T) {
	m, _ := New(100, 10, 6)
	if m.WrapTop() != -300 || m.WrapLength() != 1000 {
		t.Fatalf("unexpected bounds top=%v len=%v", m.WrapTop(), m.WrapLength())
	}
	for _, v := range []float64{-5000, -1300.5, -300, -299, 0, 42, 699.9, 700, 12345.25} {
		w := m.Wrap(v)
		if w < m.WrapTop() || w >= m.WrapTop()+m.WrapLength() {
			t.Fatalf("wrap(%v) = %v outside window", v, w)
		}
		k := (w - v) / m.WrapLength()
		if math.Abs(k-math.Round(k)) > 1e-9 {
			t.Fatalf("wrap(%v) = %v is not a whole number of turns", v, w)
		}
	}
}

func TestWrapBoundaryIsStable(t *testing.T) {
	m, _ := New(100, 10, 0)
	// 剛好落在邊界：每一圈的邊界都映射回 wrapTop，不會跳到下一個視窗
	for turns := -3; turns <= 3; turns++ {
		v := m.WrapTop() + float64(turns)*m.WrapLength()
		if got := m.Wrap(v); got != m.WrapTop() {
			t.Fatalf("boundary %v wrapped to %v", v, got)
		}
	}
	// 邊界下緣（+L）是開區間
	if got := m.Wrap(700); got != -300 {
		t.Fatalf("upper edge should map to top, got %v", got)
	}
}

func TestWrapPreservesIndex(t *testing.T) {
	const n = 37
	m, _ := New(144, n, 6)
	for i := -3 * n; i < 3*n; i++ {
		got := m.IndexFromPosition(m.Wrap(m.PositionFromIndex(i)))
		want := ((i % n) + n) % n
		if got != want {
			t.Fatalf("index %d: got %d want %d", i, got, want)
		}
	}
}

func TestYRoundTrip(t *testing.T) {
	m, _ := New(100, 10, 6)
	for _, v := range []float64{-250, 0, 130, 650} {
		y := m.Y(v)
		if got := m.ScrollFromY(y); got != m.Wrap(v) {
			t.Fatalf("ScrollFromY(Y(%v)) = %v, want %v", v, got, m.Wrap(v))
		}
	}
	if m.Y(0) != 6 {
		t.Fatalf("Y(0) should equal offset, got %v", m.Y(0))
	}
}
