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

// Package reel 實作單軸 reel 的狀態機：選停點、排程滾動、停輪後判獎。
//
// 狀態只有 Idle → Spinning → Idle。Engine 的公開方法都立即返回，
// 完成與否只能透過訊號（started/finished/quickstop/enabled/disabled）觀察；
// 時間由呼叫端以 Advance(dt) 一幀一幀推進。
package reel

import (
	"io"
	"log/slog"
	"time"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/event"
	"github.com/zintix-labs/reelab/match"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/scroll"
	"github.com/zintix-labs/reelab/strip"
	"github.com/zintix-labs/reelab/timeline"
)

const (
	DefaultDuration         = 3 * time.Second
	DefaultFastForwardScale = 5.0
	DefaultEnableDelay      = 500 * time.Millisecond
	// rollFactor 實際滾動時間 = duration * 1.5
	rollFactor = 1.5
)

// Config Engine 的外觀與時間參數。
type Config struct {
	SymbolSize       float64
	Offset           float64
	Duration         time.Duration
	Rounds           int
	FastForwardScale float64
	EnableDelay      time.Duration
}

func (c *Config) withDefaults() {
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.Rounds < 0 {
		c.Rounds = 0
	}
	if c.FastForwardScale <= 0 {
		c.FastForwardScale = DefaultFastForwardScale
	}
	if c.EnableDelay <= 0 {
		c.EnableDelay = DefaultEnableDelay
	}
}

// State currentIndex 只在 !Spinning 時有效；Spinning 時以 ScrollPosition 為準。
type State struct {
	CurrentIndex   int     `json:"current_index"`
	ScrollPosition float64 `json:"scroll_position"`
	Spinning       bool    `json:"spinning"`
}

// SpinRequest 一次 spin 的不可變描述。
//
// TargetIndex 是已扣掉整圈數後的邏輯 index（負值），ToIndex 是停輪後的 currentIndex。
type SpinRequest struct {
	FromIndex   int           `json:"from_index"`
	ToIndex     int           `json:"to_index"`
	TargetIndex int           `json:"target_index"`
	Rounds      int           `json:"rounds"`
	Duration    time.Duration `json:"duration"`
}

// Distance 捲動的格數（往下為正）。
func (r SpinRequest) Distance() int { return r.FromIndex - r.TargetIndex }

type Engine struct {
	strip  *strip.Strip
	mapper *scroll.Mapper
	core   *rng.Core
	cfg    Config
	log    *slog.Logger

	current  int
	scroll   float64
	spinning bool
	req      *SpinRequest
	seq      *timeline.Sequencer
	clock    time.Duration

	events event.Emitter[EngineKind]
}

// NewEngine strip 與 core 不可為 nil；log 為 nil 時丟棄。
func NewEngine(s *strip.Strip, core *rng.Core, cfg Config, log *slog.Logger) (*Engine, error) {
	if s == nil {
		return nil, errs.NewFatal("strip required")
	}
	if core == nil {
		return nil, errs.NewFatal("rng core required")
	}
	cfg.withDefaults()
	m, err := scroll.New(cfg.SymbolSize, s.Len(), cfg.Offset)
	if err != nil {
		return nil, errs.Wrap(err, "build scroll mapper failed")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{strip: s, mapper: m, core: core, cfg: cfg, log: log}, nil
}

func (e *Engine) Events() *event.Emitter[EngineKind] { return &e.events }

func (e *Engine) Strip() *strip.Strip { return e.strip }

func (e *Engine) Mapper() *scroll.Mapper { return e.mapper }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) emit(k EngineKind) {
	e.events.Emit(event.New(k, 0, e.clock))
}

// Spin 均勻抽一個停點並滾過去；滾動中呼叫只會快轉目前這一轉，回傳 false。
func (e *Engine) Spin() (SpinRequest, bool) {
	if e.spinning {
		e.emit(Disabled)
		e.FastForward(0)
		return *e.req, false
	}
	return e.ScrollTo(e.core.Index(e.strip.Len()))
}

// ScrollOption ScrollTo 的選填參數。
type ScrollOption func(*scrollOpts)

type scrollOpts struct {
	rounds   int
	duration time.Duration
	from     *int
}

// WithRounds 額外多滾的整圈數；圈數越多、同樣時間內滾得越快。
func WithRounds(n int) ScrollOption {
	return func(o *scrollOpts) { o.rounds = max(n, 0) }
}

// WithDuration 滾動基準時間，實際滾動時間為其 1.5 倍。
func WithDuration(d time.Duration) ScrollOption {
	return func(o *scrollOpts) {
		if d > 0 {
			o.duration = d
		}
	}
}

// WithFrom 指定起始 index，預設為目前 currentIndex。
func WithFrom(i int) ScrollOption {
	return func(o *scrollOpts) { o.from = &i }
}

// ScrollTo 從 from 滾到 toIndex。
//
// 目標 = toIndex - rounds*N，若與 from 的距離不足一整圈就再減 N，
// 因此畫面一定往下滾至少一整圈，不會出現原地或反向的短捲動。
// 已在滾動中時只會快轉目前這一轉（不排隊第二轉），回傳 false。
func (e *Engine) ScrollTo(toIndex int, opts ...ScrollOption) (SpinRequest, bool) {
	e.emit(Disabled)
	if e.spinning {
		e.FastForward(0)
		return *e.req, false
	}
	// 上一轉延遲的 enable 還沒送出就開新的一轉：丟掉，避免滾動中被重新啟用
	if e.seq != nil && !e.seq.Done() {
		e.seq.Cancel()
	}

	o := scrollOpts{rounds: e.cfg.Rounds, duration: e.cfg.Duration}
	for _, fn := range opts {
		fn(&o)
	}
	n := e.strip.Len()
	from := e.current
	if o.from != nil {
		from = *o.from
	}
	to := e.strip.Normalize(toIndex)
	target := toIndex - o.rounds*n
	for from-target < n {
		target -= n
	}

	req := SpinRequest{FromIndex: from, ToIndex: to, TargetIndex: target, Rounds: o.rounds, Duration: o.duration}
	e.req = &req
	e.spinning = true

	e.seq = timeline.NewSequencer(timeline.SpinPlan{
		From:        e.mapper.PositionFromIndex(from),
		To:          e.mapper.PositionFromIndex(target),
		Roll:        time.Duration(float64(o.duration) * rollFactor),
		EnableDelay: e.cfg.EnableDelay,
		Ease:        timeline.ExpoOut,
		OnStart:     func() { e.emit(Started) },
		OnScroll:    func(v float64) { e.scroll = v },
		OnSettle: func() {
			e.current = to
			e.scroll = e.mapper.PositionFromIndex(to)
			e.spinning = false
		},
		OnFinish: func() { e.emit(Finished) },
		OnEnable: func() { e.emit(Enabled) },
	})
	e.log.Debug("reel spin",
		slog.Int("from", from),
		slog.Int("to", to),
		slog.Int("target", target),
		slog.Duration("duration", o.duration),
	)
	e.seq.Advance(0)
	return req, true
}

// FastForward 發出 quickstop 並加快目前這一轉的播放倍率；目標與訊號不變。
// scale <= 0 使用設定的預設倍率。閒置時不做事並回傳 false。
func (e *Engine) FastForward(scale float64) bool {
	if !e.spinning || e.seq == nil {
		return false
	}
	if scale <= 0 {
		scale = e.cfg.FastForwardScale
	}
	e.emit(Quickstop)
	e.seq.SetTimeScale(scale)
	return true
}

// Advance 推進一幀。
func (e *Engine) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	e.clock += dt
	if e.seq != nil && !e.seq.Done() {
		e.seq.Advance(dt)
	}
}

// Busy 這一轉（含延遲的 enable）是否還有步驟沒跑完。
func (e *Engine) Busy() bool {
	return e.seq != nil && !e.seq.Done()
}

func (e *Engine) State() State {
	return State{CurrentIndex: e.current, ScrollPosition: e.scroll, Spinning: e.spinning}
}

// Request 目前或最近一次的 SpinRequest。
func (e *Engine) Request() (SpinRequest, bool) {
	if e.req == nil {
		return SpinRequest{}, false
	}
	return *e.req, true
}

func (e *Engine) Phase() timeline.Phase {
	if e.seq == nil {
		return timeline.PhaseIdle
	}
	return e.seq.Phase()
}

// Clock 累計推進的虛擬時間。
func (e *Engine) Clock() time.Duration { return e.clock }

// Y renderer 應套用的容器 y 座標。
func (e *Engine) Y() float64 { return e.mapper.Y(e.scroll) }

// Symbols 目前停輪位置可見的 3 個圖標。
func (e *Engine) Symbols() [strip.Visible]string {
	return e.strip.Window(e.current)
}

// Matches 以目前可見圖標判獎，無獎回傳 nil。
func (e *Engine) Matches() *match.Result {
	w := e.Symbols()
	return match.Evaluate(w[:])
}
