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

import "time"

// Phase 一次 spin 的四個階段。
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseStart
	PhaseRoll
	PhaseSettle
	PhaseFinish
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseRoll:
		return "roll"
	case PhaseSettle:
		return "settle"
	case PhaseFinish:
		return "finish"
	default:
		return "idle"
	}
}

// SpinPlan 一次 spin 的時間軸參數與回呼。
//
// 回呼觸發順序固定：OnStart → OnScroll（多次）→ OnSettle → OnFinish → OnEnable → （EnableDelay 後）OnEnable。
type SpinPlan struct {
	From        float64       // 起始 scroll position
	To          float64       // 目標 scroll position
	Roll        time.Duration // 滾動時間
	EnableDelay time.Duration // 第二次 enable 的延遲
	Ease        Ease

	OnStart  func()
	OnScroll func(pos float64)
	OnSettle func()
	OnFinish func()
	OnEnable func()
}

// Sequencer 把 SpinPlan 排成 start/roll/settle/finish 四段時間軸。
type Sequencer struct {
	tl       *Timeline
	started  bool
	rolled   bool
	settled  bool
	finished bool
}

func NewSequencer(p SpinPlan) *Sequencer {
	if p.Ease == nil {
		p.Ease = ExpoOut
	}
	s := &Sequencer{tl: New()}
	scroll := func(v float64) {
		if p.OnScroll != nil {
			p.OnScroll(v)
		}
	}
	s.tl.
		Call(0, func() {
			s.started = true
			call(p.OnStart)
		}).
		Set(0, func() { scroll(p.From) }).
		Tween(0, p.Roll, p.From, p.To, p.Ease, scroll).
		Call(p.Roll, func() { s.rolled = true }).
		Set(p.Roll, func() {
			s.settled = true
			call(p.OnSettle)
		}).
		Call(p.Roll, func() {
			s.finished = true
			call(p.OnFinish)
		}).
		Call(p.Roll, func() { call(p.OnEnable) }).
		Call(p.Roll+max(p.EnableDelay, 0), func() { call(p.OnEnable) })
	return s
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// Advance 推進一幀，回傳是否整段（含延遲的 enable）已完成。
func (s *Sequencer) Advance(dt time.Duration) bool { return s.tl.Advance(dt) }

// Phase 目前所在階段；整段完成後回到 PhaseIdle。
func (s *Sequencer) Phase() Phase {
	switch {
	case s.tl.Done():
		return PhaseIdle
	case s.finished:
		return PhaseFinish
	case s.settled, s.rolled:
		return PhaseSettle
	case s.started:
		return PhaseRoll
	default:
		return PhaseStart
	}
}

// Settled 目標 index 已套用。
func (s *Sequencer) Settled() bool { return s.settled }

// Finished finished 訊號已發出。
func (s *Sequencer) Finished() bool { return s.finished }

func (s *Sequencer) Done() bool { return s.tl.Done() }

// Cancel 丟棄尚未觸發的步驟。只應在 Finished 之後用來捨棄延遲的 enable。
func (s *Sequencer) Cancel() { s.tl.Cancel() }

func (s *Sequencer) SetTimeScale(v float64) { s.tl.SetTimeScale(v) }

func (s *Sequencer) TimeScale() float64 { return s.tl.TimeScale() }

func (s *Sequencer) Progress() float64 { return s.tl.Progress() }

func (s *Sequencer) Elapsed() time.Duration { return s.tl.Elapsed() }

func (s *Sequencer) Duration() time.Duration { return s.tl.Duration() }
