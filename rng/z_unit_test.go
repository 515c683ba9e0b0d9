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

package rng

import "testing"

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 50; i++ {
		if a, b := c1.Index(37), c2.Index(37); a != b {
			t.Fatalf("index mismatch at %d: %d vs %d", i, a, b)
		}
	}
}

func TestIndexRange(t *testing.T) {
	c := New(Default().New(3))
	seen := make([]bool, 5)
	for i := 0; i < 1000; i++ {
		v := c.Index(5)
		if v < 0 || v >= 5 {
			t.Fatalf("index out of range: %d", v)
		}
		seen[v] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("index %d never drawn", i)
		}
	}
	if c.Index(0) != -1 {
		t.Fatalf("expected -1 for empty range")
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New(Default().New(11))
	c.Index(10)
	snap, err := c.SnapshotB64()
	if err != nil {
		t.Fatal(err)
	}
	want := []int{c.Index(100), c.Index(100), c.Index(100)}

	other := New(Default().New(99))
	if err := other.RestoreB64(snap); err != nil {
		t.Fatal(err)
	}
	for i, w := range want {
		if got := other.Index(100); got != w {
			t.Fatalf("restore mismatch at %d: %d vs %d", i, got, w)
		}
	}
	if err := other.RestoreB64("!!"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSeedMakerUnique(t *testing.T) {
	sm := NewSeedMaker(42)
	seen := map[int64]struct{}{}
	for i := 0; i < 1000; i++ {
		s := sm.Next()
		if s < 0 {
			t.Fatalf("negative seed %d", s)
		}
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate seed %d", s)
		}
		seen[s] = struct{}{}
	}
}
