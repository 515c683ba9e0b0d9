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

// Package panel 是下注面板：餘額、押注、贏分三個數字與 spin 期間的鎖定。
//
// 面板只反應 reel 的 spin/win/lose 訊號，自己只會發出 bankrupt。
// 所有數字變化都會回傳一組 Tween，描述 renderer 應該播放的數字跳動；
// 面板本身不持有任何動畫狀態。
package panel

import (
	"time"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/event"
)

const (
	DefaultBetStep       = 10
	DefaultTweenDuration = 500 * time.Millisecond
)

// Kind 面板發出的訊號。
type Kind uint8

const (
	Bankrupt Kind = iota // Value = 當下餘額
)

var Kinds = []Kind{Bankrupt}

func (k Kind) String() string {
	switch k {
	case Bankrupt:
		return "bankrupt"
	default:
		return "unknown"
	}
}

type Config struct {
	InitialBalance int
	InitialBet     int
	SpinCost       int
	BetStep        int
	TweenDuration  time.Duration
}

func (c *Config) withDefaults() {
	if c.BetStep <= 0 {
		c.BetStep = DefaultBetStep
	}
	if c.TweenDuration <= 0 {
		c.TweenDuration = DefaultTweenDuration
	}
}

func (c Config) Valid() error {
	if c.InitialBalance < 0 {
		return errs.Fatalf("initial balance must be >= 0, got %d", c.InitialBalance)
	}
	if c.SpinCost < 0 {
		return errs.Fatalf("spin cost must be >= 0, got %d", c.SpinCost)
	}
	if c.InitialBet < 0 || c.InitialBet > max(c.InitialBalance-c.SpinCost, 0) {
		return errs.Fatalf("initial bet %d outside [0, %d]", c.InitialBet, max(c.InitialBalance-c.SpinCost, 0))
	}
	return nil
}

// State 面板數值。三個數字永遠非負。
type State struct {
	Balance int  `json:"balance"`
	Bet     int  `json:"bet"`
	Win     int  `json:"win"`
	Locked  bool `json:"locked"`
}

type Panel struct {
	cfg    Config
	st     State
	now    func() time.Duration
	events event.Emitter[Kind]
}

// New 建立面板並回傳開場的餘額跳動（0 → 初始餘額）。
func New(cfg Config) (*Panel, []Tween, error) {
	cfg.withDefaults()
	if err := cfg.Valid(); err != nil {
		return nil, nil, err
	}
	p := &Panel{
		cfg: cfg,
		st:  State{Balance: cfg.InitialBalance, Bet: cfg.InitialBet},
		now: func() time.Duration { return 0 },
	}
	return p, []Tween{p.SetAnimatedValue(FieldBalance, 0, cfg.InitialBalance)}, nil
}

// SetClock 指定訊號時間戳來源，通常是 reel engine 的虛擬時鐘。
func (p *Panel) SetClock(now func() time.Duration) {
	if now != nil {
		p.now = now
	}
}

func (p *Panel) Events() *event.Emitter[Kind] { return &p.events }

func (p *Panel) State() State { return p.st }

func (p *Panel) Config() Config { return p.cfg }

// MaxAffordableBet 目前可押的上限 balance - spinCost（不小於 0）。
func (p *Panel) MaxAffordableBet() int { return max(p.st.Balance-p.cfg.SpinCost, 0) }

// CanSpin 未鎖定且餘額足以支付 spinCost + bet。
func (p *Panel) CanSpin() bool {
	return !p.st.Locked && p.st.Balance >= p.cfg.SpinCost+p.st.Bet
}

// Spin 鎖定面板並扣款；已鎖定或餘額不足時不動作並回傳 false。
func (p *Panel) Spin() ([]Tween, bool) {
	if !p.CanSpin() {
		return nil, false
	}
	from := p.st.Balance
	p.st.Locked = true
	p.st.Balance -= p.cfg.SpinCost + p.st.Bet
	return []Tween{p.SetAnimatedValue(FieldBalance, from, p.st.Balance)}, true
}

// Win 解鎖並派彩 bet * matchCount。
func (p *Panel) Win(matchCount int) []Tween {
	matchCount = max(matchCount, 0)
	fromBal, fromWin := p.st.Balance, p.st.Win
	p.st.Locked = false
	p.st.Win = p.st.Bet * matchCount
	p.st.Balance += p.st.Win
	return []Tween{
		p.SetAnimatedValue(FieldBalance, fromBal, p.st.Balance),
		p.SetAnimatedValue(FieldWin, fromWin, p.st.Win),
	}
}

// Lose 解鎖、贏分歸零，押注壓回可負擔範圍；餘額不足 spinCost 時發出 bankrupt。
func (p *Panel) Lose() []Tween {
	fromBet, fromWin := p.st.Bet, p.st.Win
	p.st.Locked = false
	p.st.Win = 0
	p.st.Bet = max(min(p.st.Bet, p.st.Balance-p.cfg.SpinCost), 0)
	tw := []Tween{p.SetAnimatedValue(FieldWin, fromWin, 0)}
	if p.st.Bet != fromBet {
		tw = append(tw, p.SetAnimatedValue(FieldBet, fromBet, p.st.Bet))
	}
	if p.st.Balance < p.cfg.SpinCost {
		p.events.Emit(event.New(Bankrupt, p.st.Balance, p.now()))
	}
	return tw
}

// Bankrupt 餘額已不足一次 spinCost。
func (p *Panel) Bankrupt() bool { return p.st.Balance < p.cfg.SpinCost }

func (p *Panel) IncreaseBet() ([]Tween, bool) { return p.SetBet(p.st.Bet + p.cfg.BetStep) }

func (p *Panel) DecreaseBet() ([]Tween, bool) { return p.SetBet(p.st.Bet - p.cfg.BetStep) }

func (p *Panel) MaxBet() ([]Tween, bool) { return p.SetBet(p.st.Balance - p.cfg.SpinCost) }

// SetBet 鎖定中或 v 超出 [0, balance-spinCost] 時不動作並回傳 false。
func (p *Panel) SetBet(v int) ([]Tween, bool) {
	if p.st.Locked || v < 0 || v > p.st.Balance-p.cfg.SpinCost {
		return nil, false
	}
	if v == p.st.Bet {
		return nil, true
	}
	from := p.st.Bet
	p.st.Bet = v
	return []Tween{p.SetAnimatedValue(FieldBet, from, v)}, true
}

// Apply 依 BetOp 調整押注，value 只有 BetSet 使用。
func (p *Panel) Apply(op BetOp, value int) ([]Tween, bool) {
	switch op {
	case BetInc:
		return p.IncreaseBet()
	case BetDec:
		return p.DecreaseBet()
	case BetMax:
		return p.MaxBet()
	case BetSet:
		return p.SetBet(value)
	default:
		return nil, false
	}
}
