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

package reel

import (
	"slices"
	"testing"
	"time"

	"github.com/zintix-labs/reelab/event"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/strip"
	"github.com/zintix-labs/reelab/timeline"
)

const frame = time.Second / 60

func newTestEngine(t *testing.T, symbols []string) *Engine {
	t.Helper()
	s, err := strip.New(symbols)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(s, rng.New(rng.Default().New(1)), Config{SymbolSize: 100, Offset: 6}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func record(e *Engine) *[]string {
	var got []string
	e.Events().On(func(ev event.Event[EngineKind]) { got = append(got, ev.Name) })
	return &got
}

func runToIdle(e *Engine) {
	for i := 0; e.Busy() && i < 100000; i++ {
		e.Advance(frame)
	}
}

func TestNewEngineValidates(t *testing.T) {
	s, _ := strip.New([]string{"a", "b", "c"})
	if _, err := NewEngine(nil, rng.New(rng.Default().New(1)), Config{SymbolSize: 1}, nil); err == nil {
		t.Fatalf("expected error for nil strip")
	}
	if _, err := NewEngine(s, nil, Config{SymbolSize: 1}, nil); err == nil {
		t.Fatalf("expected error for nil core")
	}
	if _, err := NewEngine(s, rng.New(rng.Default().New(1)), Config{}, nil); err == nil {
		t.Fatalf("expected error for zero symbol size")
	}
}

func TestSpinLifecycleOrder(t *testing.T) {
	e := newTestEngine(t, []string{"a", "b", "c", "d", "e", "f"})
	got := record(e)

	var idxAtFinish = -1
	var spinningAtFinish = true
	e.Events().OnKind(Finished, func(event.Event[EngineKind]) {
		idxAtFinish = e.State().CurrentIndex
		spinningAtFinish = e.State().Spinning
	})

	req, ok := e.ScrollTo(4)
	if !ok {
		t.Fatalf("expected spin to start")
	}
	if !e.State().Spinning || e.Phase() != timeline.PhaseRoll {
		t.Fatalf("expected spinning in roll phase, got %+v %s", e.State(), e.Phase())
	}
	if !slices.Equal(*got, []string{"disabled", "started"}) {
		t.Fatalf("unexpected start events %v", *got)
	}
	runToIdle(e)

	want := []string{"disabled", "started", "finished", "enabled", "enabled"}
	if !slices.Equal(*got, want) {
		t.Fatalf("got %v want %v", *got, want)
	}
	if idxAtFinish != 4 || spinningAtFinish {
		t.Fatalf("index must be applied before finished: idx=%d spinning=%v", idxAtFinish, spinningAtFinish)
	}
	if req.ToIndex != 4 || req.FromIndex != 0 {
		t.Fatalf("unexpected request %+v", req)
	}
	if e.Clock() < 5*time.Second || e.Clock() > 5*time.Second+frame {
		t.Fatalf("default spin should take 4.5s roll + 0.5s enable delay, took %v", e.Clock())
	}
	if e.Symbols() != [3]string{"e", "f", "a"} {
		t.Fatalf("unexpected window %v", e.Symbols())
	}
}

func TestScrollDistanceAtLeastOneTurn(t *testing.T) {
	const n = 7
	e := newTestEngine(t, []string{"a", "b", "c", "d", "e", "f", "g"})
	for rounds := 0; rounds < 3; rounds++ {
		for from := 0; from < n; from++ {
			for to := -n; to < 2*n; to++ {
				req, ok := e.ScrollTo(to, WithFrom(from), WithRounds(rounds))
				if !ok {
					t.Fatalf("spin rejected while idle")
				}
				if d := req.Distance(); d < n {
					t.Fatalf("from=%d to=%d rounds=%d: distance %d < %d", from, to, rounds, d, n)
				}
				if d := req.Distance(); rounds == 0 && d >= 2*n {
					t.Fatalf("from=%d to=%d: distance %d should stay under two turns", from, to, d)
				}
				if ((req.TargetIndex-to)%n+n)%n != 0 {
					t.Fatalf("target %d not congruent to %d", req.TargetIndex, to)
				}
				runToIdle(e)
				if st := e.State(); st.CurrentIndex != ((to%n)+n)%n || st.Spinning {
					t.Fatalf("unexpected state %+v after scrolling to %d", st, to)
				}
			}
		}
	}
}

func TestSecondSpinFastForwards(t *testing.T) {
	e := newTestEngine(t, []string{"a", "b", "c", "d", "e", "f"})
	got := record(e)

	first, ok := e.ScrollTo(2)
	if !ok {
		t.Fatal("expected first spin")
	}
	for i := 0; i < 60; i++ {
		e.Advance(frame)
	}
	second, ok := e.Spin()
	if ok {
		t.Fatalf("second spin must not start while spinning")
	}
	if second != first {
		t.Fatalf("target must stay fixed: %+v vs %+v", second, first)
	}
	runToIdle(e)

	if e.State().CurrentIndex != 2 {
		t.Fatalf("fast-forward changed final index to %d", e.State().CurrentIndex)
	}
	// 剩下 3.5s roll + 0.5s delay，以 5 倍速跑完
	if e.Clock() > time.Second+800*time.Millisecond+2*frame {
		t.Fatalf("fast-forward too slow: %v", e.Clock())
	}
	want := []string{"disabled", "started", "disabled", "quickstop", "finished", "enabled", "enabled"}
	if !slices.Equal(*got, want) {
		t.Fatalf("got %v want %v", *got, want)
	}
	if e.FastForward(0) {
		t.Fatalf("fast-forward while idle must be a no-op")
	}
}

func TestTrailingEnableDroppedByNewSpin(t *testing.T) {
	e := newTestEngine(t, []string{"a", "b", "c", "d", "e", "f"})
	e.ScrollTo(1, WithDuration(time.Second))
	for e.State().Spinning {
		e.Advance(frame)
	}
	if !e.Busy() {
		t.Fatalf("trailing enable should still be pending")
	}
	got := record(e)
	if _, ok := e.ScrollTo(3); !ok {
		t.Fatalf("new spin must start once the previous one settled")
	}
	for i := 0; i < 60; i++ {
		e.Advance(frame)
	}
	if slices.Contains(*got, "enabled") {
		t.Fatalf("stale enable fired during new spin: %v", *got)
	}
}

func TestScrollStaysInWrapWindow(t *testing.T) {
	e := newTestEngine(t, []string{"a", "b", "c", "d", "e"})
	m := e.Mapper()
	for i := 0; i < 5; i++ {
		e.Spin()
		for e.Busy() {
			e.Advance(frame)
			w := m.Wrap(e.State().ScrollPosition)
			if w < m.WrapTop() || w >= m.WrapTop()+m.WrapLength() {
				t.Fatalf("wrapped position %v outside window", w)
			}
			if y := e.Y(); y != -w+6 {
				t.Fatalf("y=%v want %v", y, -w+6)
			}
		}
	}
}

func TestReelWinLose(t *testing.T) {
	e := newTestEngine(t, []string{"a", "a", "b", "c", "d", "e"})
	r := New(e)
	var got []event.Event[Kind]
	r.Events().On(func(ev event.Event[Kind]) { got = append(got, ev) })

	e.ScrollTo(0)
	runToIdle(e)
	e.ScrollTo(3)
	runToIdle(e)

	if len(got) != 2 || got[0].Kind != Win || got[0].Value != 2 || got[1].Kind != Lose {
		t.Fatalf("unexpected reel events %+v", got)
	}
	if r.LastMatch() != nil {
		t.Fatalf("last match should be nil after a loss")
	}

	if !r.Spin() {
		t.Fatalf("expected spin to start")
	}
	if r.Spin() {
		t.Fatalf("second press should only quick stop")
	}
	runToIdle(e)
	var spins int
	for _, ev := range got {
		if ev.Kind == Spin {
			spins++
		}
	}
	if spins != 1 {
		t.Fatalf("expected exactly one spin event, got %d", spins)
	}
}

func TestKindNames(t *testing.T) {
	for _, k := range EngineKinds {
		if k.String() == "unknown" {
			t.Fatalf("missing name for %d", k)
		}
	}
	for _, k := range Kinds {
		if k.String() == "unknown" {
			t.Fatalf("missing name for %d", k)
		}
	}
}
