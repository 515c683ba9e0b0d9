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

package match

import (
	"slices"
	"testing"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want *Result
	}{
		{"pair top", []string{"a", "a", "b"}, &Result{Symbol: "a", Count: 2, Slots: []int{0, 1}}},
		{"pair split", []string{"b", "a", "b"}, &Result{Symbol: "b", Count: 2, Slots: []int{0, 2}}},
		{"pair bottom", []string{"c", "a", "a"}, &Result{Symbol: "a", Count: 2, Slots: []int{1, 2}}},
		{"triple", []string{"a", "a", "a"}, &Result{Symbol: "a", Count: 3, Slots: []int{0, 1, 2}}},
		{"no match", []string{"a", "b", "c"}, nil},
		{"empty", nil, nil},
	}
	for _, c := range cases {
		got := Evaluate(c.in)
		if c.want == nil {
			if got != nil {
				t.Fatalf("%s: expected nil, got %+v", c.name, got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("%s: expected match, got nil", c.name)
		}
		if got.Symbol != c.want.Symbol || got.Count != c.want.Count || !slices.Equal(got.Slots, c.want.Slots) {
			t.Fatalf("%s: got %+v want %+v", c.name, got, c.want)
		}
	}
}

func TestTieBreakLowestSlot(t *testing.T) {
	// 兩組對子：b 先出現於 slot 0
	got := Evaluate([]string{"b", "a", "a", "b"})
	if got == nil || got.Symbol != "b" || !slices.Equal(got.Slots, []int{0, 3}) {
		t.Fatalf("unexpected tie-break result %+v", got)
	}
	got = Evaluate([]string{"c", "a", "b", "a", "b"})
	if got == nil || got.Symbol != "a" {
		t.Fatalf("unexpected tie-break result %+v", got)
	}
}
