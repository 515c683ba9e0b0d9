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

// Package timeline 是 reel 的動畫時間軸：把呼叫、屬性設定與補間放在虛擬時間上，
// 只由 Advance(dt) 推進（對應瀏覽器的 animation frame），沒有 goroutine 也不讀 wall clock。
package timeline

import "time"

type stepKind uint8

const (
	stepCall stepKind = iota
	stepTween
)

type step struct {
	kind  stepKind
	at    time.Duration
	dur   time.Duration
	fn    func()
	from  float64
	to    float64
	ease  Ease
	apply func(float64)
	done  bool
}

func (s *step) end() time.Duration { return s.at + s.dur }

// Timeline 同一時間點的步驟依加入順序執行；補間在被跨過時一定會套用精確終值。
type Timeline struct {
	steps    []*step
	elapsed  time.Duration
	duration time.Duration
	scale    float64
}

func New() *Timeline {
	return &Timeline{scale: 1}
}

// Call 在 at 時間點執行 fn。
func (t *Timeline) Call(at time.Duration, fn func()) *Timeline {
	return t.add(&step{kind: stepCall, at: at, fn: fn})
}

// Set 與 Call 相同，語意上用於「瞬間設定屬性」。
func (t *Timeline) Set(at time.Duration, fn func()) *Timeline {
	return t.Call(at, fn)
}

// Tween 從 at 起在 dur 內把 from 補間到 to，每次推進都以當下值呼叫 apply。
func (t *Timeline) Tween(at, dur time.Duration, from, to float64, ease Ease, apply func(float64)) *Timeline {
	if ease == nil {
		ease = Linear
	}
	return t.add(&step{kind: stepTween, at: at, dur: max(dur, 0), from: from, to: to, ease: ease, apply: apply})
}

func (t *Timeline) add(s *step) *Timeline {
	if s.at < 0 {
		s.at = 0
	}
	t.steps = append(t.steps, s)
	t.duration = max(t.duration, s.end())
	return t
}

// SetTimeScale 設定之後推進的播放倍率（> 0）。
func (t *Timeline) SetTimeScale(s float64) {
	if s > 0 {
		t.scale = s
	}
}

func (t *Timeline) TimeScale() float64 { return t.scale }

func (t *Timeline) Elapsed() time.Duration { return t.elapsed }

func (t *Timeline) Duration() time.Duration { return t.duration }

// Progress 0~1；空時間軸視為完成。
func (t *Timeline) Progress() float64 {
	if t.duration <= 0 {
		if t.Done() {
			return 1
		}
		return 0
	}
	return float64(t.elapsed) / float64(t.duration)
}

// Done 所有步驟皆已執行。
func (t *Timeline) Done() bool {
	for _, s := range t.steps {
		if !s.done {
			return false
		}
	}
	return true
}

// Cancel 捨棄尚未執行的步驟（不套用、不呼叫），時間軸直接結束。
func (t *Timeline) Cancel() {
	for _, s := range t.steps {
		s.done = true
	}
	t.elapsed = t.duration
}

// Advance 以 dt*timeScale 推進時間軸，回傳推進後是否完成。
//
// 推進過程中依時間順序逐一處理每個「步驟結束點」：先把所有進行中的補間套用到該時間點，
// 再依加入順序執行剛好在該點結束的呼叫。不會因為 dt 過大而跳過任何步驟。
func (t *Timeline) Advance(dt time.Duration) bool {
	if dt < 0 {
		dt = 0
	}
	target := t.elapsed + time.Duration(float64(dt)*t.scale)
	if target > t.duration {
		target = t.duration
	}
	for {
		inst, ok := t.nextInstant(target)
		if !ok {
			break
		}
		t.elapsed = inst
		t.applyTweens(inst)
		for _, s := range t.steps {
			if s.done || s.end() != inst {
				continue
			}
			s.done = true
			if s.kind == stepCall && s.fn != nil {
				s.fn()
			}
		}
	}
	t.elapsed = max(t.elapsed, target)
	t.applyTweens(t.elapsed)
	return t.Done()
}

func (t *Timeline) nextInstant(limit time.Duration) (time.Duration, bool) {
	var (
		best  time.Duration
		found bool
	)
	for _, s := range t.steps {
		if s.done {
			continue
		}
		if e := s.end(); e <= limit && (!found || e < best) {
			best, found = e, true
		}
	}
	return best, found
}

func (t *Timeline) applyTweens(at time.Duration) {
	for _, s := range t.steps {
		if s.kind != stepTween || s.done || s.at > at {
			continue
		}
		p := 1.0
		if s.dur > 0 {
			p = float64(at-s.at) / float64(s.dur)
		}
		if s.apply != nil {
			s.apply(Lerp(s.from, s.to, p, s.ease))
		}
	}
}
