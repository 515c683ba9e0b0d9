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

package reelab

import (
	"io"
	"log/slog"
	"time"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/event"
	"github.com/zintix-labs/reelab/match"
	"github.com/zintix-labs/reelab/panel"
	"github.com/zintix-labs/reelab/reel"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/setting"
	"github.com/zintix-labs/reelab/strip"
)

const (
	// DefaultFrame RunToIdle 每一步推進的虛擬時間
	DefaultFrame = time.Second / 60
	// journalCap 訊號日誌上限，超過時丟掉最舊的
	journalCap = 256
	// maxIdleFrames RunToIdle 的保險上限
	maxIdleFrames = 1 << 20
)

// Action Press 的結果。
type Action uint8

const (
	ActionRejected Action = iota
	ActionSpin
	ActionQuickStop
)

func (a Action) String() string {
	switch a {
	case ActionSpin:
		return "spin"
	case ActionQuickStop:
		return "quickstop"
	default:
		return "rejected"
	}
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Signal 日誌中的一筆訊號，Source 為發出元件（engine / reel / panel）。
type Signal struct {
	Source string        `json:"source"`
	Kind   string        `json:"kind"`
	Value  int           `json:"value,omitempty"`
	At     time.Duration `json:"at"`
}

// Machine 一台單軸機台：一條 reel、一塊面板與一顆 play 按鈕。
//
// 元件之間只透過訊號連線：
//   - reel spin → panel.Spin；reel win(n) → panel.Win(n)；reel lose → panel.Lose
//   - panel bankrupt → 機台進入破產狀態，按鈕不再啟用
//   - engine enabled / disabled → 按鈕狀態
//
// 並發語意：Machine 不是 goroutine-safe；同一台 Machine 只能由一條 goroutine 推進，
// 需要共用時由上層（Runtime 的 session 鎖）負責。
type Machine struct {
	name     string
	id       setting.MID
	ms       *setting.MachineSetting
	core     *rng.Core
	engine   *reel.Engine
	reel     *reel.Reel
	panel    *panel.Panel
	log      *slog.Logger
	initseed int64
	isSim    bool
	frame    time.Duration

	enabled  bool // play 按鈕
	bankrupt bool
	rounds   int

	journal []Signal
	tweens  []panel.Tween
}

// newMachineWithSeed 以指定 seed 建立 Machine。同一份設定 + 同一個 seed 會得到相同的停點序列。
//
// isSim 為 true 時不保留訊號日誌與 tween（模擬器熱路徑）。
func newMachineWithSeed(ms *setting.MachineSetting, cf rng.Factory, seed int64, isSim bool, log *slog.Logger) (*Machine, error) {
	if ms == nil || ms.StripValue() == nil {
		return nil, errs.NewFatal("machine setting required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With(slog.String("machine", ms.MachineName))

	m := &Machine{
		name:     ms.MachineName,
		id:       ms.MachineID,
		ms:       ms,
		core:     rng.New(cf.New(seed)),
		log:      log,
		initseed: seed,
		isSim:    isSim,
		frame:    DefaultFrame,
		enabled:  true,
	}
	var err error
	m.engine, err = reel.NewEngine(ms.StripValue(), m.core, ms.ReelConfig(), log)
	if err != nil {
		return nil, err
	}
	// 先掛日誌，engine 的 finished 才會排在 reel 的 win/lose 之前
	m.engine.Events().On(func(ev event.Event[reel.EngineKind]) { m.record("engine", ev.Name, ev.Value, ev.At) })
	m.reel = reel.New(m.engine)
	var intro []panel.Tween
	m.panel, intro, err = panel.New(ms.PanelConfig())
	if err != nil {
		return nil, err
	}
	m.panel.SetClock(m.engine.Clock)
	m.pushTweens(intro)
	m.wire()
	return m, nil
}

func (m *Machine) wire() {
	en := m.engine.Events()
	en.OnKind(reel.Enabled, func(event.Event[reel.EngineKind]) { m.enabled = !m.bankrupt })
	en.OnKind(reel.Disabled, func(event.Event[reel.EngineKind]) { m.enabled = false })

	re := m.reel.Events()
	re.On(func(ev event.Event[reel.Kind]) { m.record("reel", ev.Name, ev.Value, ev.At) })
	re.OnKind(reel.Spin, func(event.Event[reel.Kind]) {
		tw, _ := m.panel.Spin()
		m.pushTweens(tw)
	})
	re.OnKind(reel.Win, func(ev event.Event[reel.Kind]) {
		m.rounds++
		m.pushTweens(m.panel.Win(ev.Value))
	})
	re.OnKind(reel.Lose, func(event.Event[reel.Kind]) {
		m.rounds++
		m.pushTweens(m.panel.Lose())
	})

	pe := m.panel.Events()
	pe.On(func(ev event.Event[panel.Kind]) { m.record("panel", ev.Name, ev.Value, ev.At) })
	pe.OnKind(panel.Bankrupt, func(ev event.Event[panel.Kind]) {
		m.bankrupt = true
		m.enabled = false
		m.log.Debug("machine bankrupt", slog.Int("balance", ev.Value))
	})
}

func (m *Machine) record(src, kind string, v int, at time.Duration) {
	if m.isSim {
		return
	}
	if len(m.journal) == journalCap {
		copy(m.journal, m.journal[1:])
		m.journal = m.journal[:journalCap-1]
	}
	m.journal = append(m.journal, Signal{Source: src, Kind: kind, Value: v, At: at})
}

func (m *Machine) pushTweens(tw []panel.Tween) {
	if m.isSim || len(tw) == 0 {
		return
	}
	m.tweens = append(m.tweens, tw...)
}

// Press play 按鈕：閒置時開轉，滾動中快轉。
//
// 破產、按鈕未啟用或面板付不起 spinCost + bet 時回傳 ActionRejected。
func (m *Machine) Press() Action {
	if m.engine.State().Spinning {
		if m.reel.QuickStop() {
			return ActionQuickStop
		}
		return ActionRejected
	}
	if m.bankrupt || !m.enabled || !m.panel.CanSpin() {
		return ActionRejected
	}
	if !m.reel.Spin() {
		return ActionRejected
	}
	return ActionSpin
}

// QuickStop 快轉目前這一轉，閒置時回傳 false。
func (m *Machine) QuickStop() bool { return m.reel.QuickStop() }

// Tick 推進一幀。
func (m *Machine) Tick(dt time.Duration) { m.engine.Advance(dt) }

// RunToIdle 以固定 frame 推進直到這一轉（含延遲的 enable）結束，回傳推進的虛擬時間。
func (m *Machine) RunToIdle() time.Duration {
	start := m.engine.Clock()
	for i := 0; m.engine.Busy() && i < maxIdleFrames; i++ {
		m.engine.Advance(m.frame)
	}
	return m.engine.Clock() - start
}

// SetFrame 設定 RunToIdle 的步長，d <= 0 時回到 DefaultFrame。
func (m *Machine) SetFrame(d time.Duration) {
	if d <= 0 {
		d = DefaultFrame
	}
	m.frame = d
}

// Bet 調整押注；鎖定中或超出可負擔範圍時回傳 false，押注不變。
func (m *Machine) Bet(op panel.BetOp, value int) bool {
	tw, ok := m.panel.Apply(op, value)
	m.pushTweens(tw)
	return ok
}

// Drain 取出並清空訊號日誌。
func (m *Machine) Drain() []Signal {
	out := m.journal
	m.journal = nil
	return out
}

// DrainTweens 取出並清空尚未交給 renderer 的 tween。
func (m *Machine) DrainTweens() []panel.Tween {
	out := m.tweens
	m.tweens = nil
	return out
}

func (m *Machine) Name() string { return m.name }

func (m *Machine) ID() setting.MID { return m.id }

func (m *Machine) Setting() *setting.MachineSetting { return m.ms }

func (m *Machine) Seed() int64 { return m.initseed }

func (m *Machine) Busy() bool { return m.engine.Busy() }

func (m *Machine) Spinning() bool { return m.engine.State().Spinning }

func (m *Machine) Enabled() bool { return m.enabled }

func (m *Machine) Bankrupt() bool { return m.bankrupt }

func (m *Machine) Rounds() int { return m.rounds }

func (m *Machine) Clock() time.Duration { return m.engine.Clock() }

func (m *Machine) Panel() panel.State { return m.panel.State() }

func (m *Machine) SpinCost() int { return m.panel.Config().SpinCost }

// MaxAffordableBet 目前餘額下可押的最大值。
func (m *Machine) MaxAffordableBet() int { return m.panel.MaxAffordableBet() }

func (m *Machine) LastMatch() *match.Result { return m.reel.LastMatch() }

// SnapshotCore 以 base64url 取得 RNG 狀態。
func (m *Machine) SnapshotCore() (string, error) { return m.core.SnapshotB64() }

// RestoreCore 還原 RNG 狀態；只能在閒置時呼叫。
func (m *Machine) RestoreCore(b64 string) error {
	if m.engine.Busy() {
		return errs.NewWarn("can not restore rng while spinning")
	}
	return m.core.RestoreB64(b64)
}

// Snapshot 機台對外的完整視圖。
type Snapshot struct {
	Machine   string                `json:"machine"`
	MachineID setting.MID           `json:"machine_id"`
	Seed      int64                 `json:"seed"`
	Phase     string                `json:"phase"`
	Reel      reel.State            `json:"reel"`
	Request   *reel.SpinRequest     `json:"request,omitempty"`
	Symbols   [strip.Visible]string `json:"symbols"`
	Y         float64               `json:"y"`
	Match     *match.Result         `json:"match,omitempty"`
	Panel     panel.State           `json:"panel"`
	Enabled   bool                  `json:"enabled"`
	Bankrupt  bool                  `json:"bankrupt"`
	Rounds    int                   `json:"rounds"`
	Clock     time.Duration         `json:"clock"`
	Tweens    []panel.Tween         `json:"tweens,omitempty"`
	Signals   []Signal              `json:"signals,omitempty"`
	Core      string                `json:"core"`
}

// Snapshot 回傳目前狀態並清空日誌與 tween。
func (m *Machine) Snapshot() (Snapshot, error) {
	core, err := m.core.SnapshotB64()
	if err != nil {
		return Snapshot{}, err
	}
	s := Snapshot{
		Machine:   m.name,
		MachineID: m.id,
		Seed:      m.initseed,
		Phase:     m.engine.Phase().String(),
		Reel:      m.engine.State(),
		Symbols:   m.engine.Symbols(),
		Y:         m.engine.Y(),
		Match:     m.reel.LastMatch(),
		Panel:     m.panel.State(),
		Enabled:   m.enabled,
		Bankrupt:  m.bankrupt,
		Rounds:    m.rounds,
		Clock:     m.engine.Clock(),
		Tweens:    m.DrainTweens(),
		Signals:   m.Drain(),
		Core:      core,
	}
	if req, ok := m.engine.Request(); ok {
		s.Request = &req
	}
	return s, nil
}
