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

package timeline

import (
	"math"
	"slices"
	"testing"
	"time"
)

func TestEase(t *testing.T) {
	if ExpoOut(0) != 0 || ExpoOut(1) != 1 || ExpoOut(2) != 1 {
		t.Fatalf("ExpoOut endpoints wrong")
	}
	if ExpoOut(0.5) <= 0.5 {
		t.Fatalf("ExpoOut should front-load progress, got %v", ExpoOut(0.5))
	}
	if Lerp(-3, 7, 1, ExpoOut) != 7 {
		t.Fatalf("Lerp must land exactly on target")
	}
}

func TestCallsFireInTimeOrder(t *testing.T) {
	var got []string
	tl := New().
		Call(2*time.Second, func() { got = append(got, "c") }).
		Call(0, func() { got = append(got, "a") }).
		Call(time.Second, func() { got = append(got, "b") }).
		Call(time.Second, func() { got = append(got, "b2") })

	tl.Advance(0)
	if !slices.Equal(got, []string{"a"}) {
		t.Fatalf("after 0s got %v", got)
	}
	// 一次跨過全部時間點也不能漏掉、也不能亂序
	if done := tl.Advance(10 * time.Second); !done {
		t.Fatalf("timeline should be done")
	}
	if !slices.Equal(got, []string{"a", "b", "b2", "c"}) {
		t.Fatalf("got %v", got)
	}
	if tl.Progress() != 1 || tl.Elapsed() != 2*time.Second {
		t.Fatalf("progress=%v elapsed=%v", tl.Progress(), tl.Elapsed())
	}
}

func TestTweenAppliesExactEnd(t *testing.T) {
	var v float64
	var atEnd float64
	tl := New().
		Tween(0, time.Second, 0, 100, Linear, func(x float64) { v = x }).
		Call(time.Second, func() { atEnd = v })

	tl.Advance(250 * time.Millisecond)
	if math.Abs(v-25) > 1e-9 {
		t.Fatalf("expected 25 at quarter, got %v", v)
	}
	tl.Advance(5 * time.Second)
	if v != 100 || atEnd != 100 {
		t.Fatalf("expected exact end before call, v=%v atEnd=%v", v, atEnd)
	}
}

func TestTimeScale(t *testing.T) {
	fired := false
	tl := New().Call(3*time.Second, func() { fired = true })
	tl.Advance(time.Second)
	tl.SetTimeScale(5)
	tl.SetTimeScale(-1) // 忽略
	if tl.TimeScale() != 5 {
		t.Fatalf("time scale = %v", tl.TimeScale())
	}
	tl.Advance(399 * time.Millisecond)
	if fired {
		t.Fatalf("fired too early at %v", tl.Elapsed())
	}
	tl.Advance(time.Millisecond)
	if !fired {
		t.Fatalf("expected fire at %v", tl.Elapsed())
	}
}

func TestCancel(t *testing.T) {
	fired := false
	tl := New().Call(time.Second, func() { fired = true })
	tl.Cancel()
	tl.Advance(time.Hour)
	if fired || !tl.Done() {
		t.Fatalf("cancelled step must not fire")
	}
}

func TestSequencerOrder(t *testing.T) {
	var got []string
	var pos []float64
	var seq *Sequencer
	seq = NewSequencer(SpinPlan{
		From:        0,
		To:          -1000,
		Roll:        4500 * time.Millisecond,
		EnableDelay: 500 * time.Millisecond,
		OnStart:     func() { got = append(got, "start") },
		OnScroll:    func(p float64) { pos = append(pos, p) },
		OnSettle: func() {
			if seq.Phase() != PhaseSettle {
				t.Errorf("phase inside settle = %s", seq.Phase())
			}
			got = append(got, "settle")
		},
		OnFinish: func() { got = append(got, "finish") },
		OnEnable: func() { got = append(got, "enable") },
	})
	if seq.Phase() != PhaseStart {
		t.Fatalf("phase before first frame = %s", seq.Phase())
	}
	seq.Advance(0)
	if seq.Phase() != PhaseRoll {
		t.Fatalf("phase after start = %s", seq.Phase())
	}
	for !seq.Advance(time.Second / 60) {
	}
	want := []string{"start", "settle", "finish", "enable", "enable"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if pos[0] != 0 || pos[len(pos)-1] != -1000 {
		t.Fatalf("scroll did not start/end at plan bounds: first=%v last=%v", pos[0], pos[len(pos)-1])
	}
	for i := 1; i < len(pos); i++ {
		if pos[i] > pos[i-1] {
			t.Fatalf("scroll must move monotonically downward: %v -> %v", pos[i-1], pos[i])
		}
	}
	if seq.Phase() != PhaseIdle || seq.Duration() != 5*time.Second {
		t.Fatalf("phase=%s duration=%v", seq.Phase(), seq.Duration())
	}
}
