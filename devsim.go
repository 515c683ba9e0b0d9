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
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/match"
	"github.com/zintix-labs/reelab/panel"
	"github.com/zintix-labs/reelab/strip"
)

// MaxDevSpins DevSimulator 單次請求的上限。
const MaxDevSpins = 5000

// DevSimulator
//
// 只提供給 Dev 模式使用的模擬器，單線（不併發），重點在可審計、可重現：
// 每份報表都附上開始前與結束後的 RNG 快照，RestoreSpins 可從任一快照重播。
type DevSimulator struct {
	m *Machine
}

// DevSpin 單局結果。
type DevSpin struct {
	Index   int                   `json:"index"`
	Symbols [strip.Visible]string `json:"symbols"`
	Match   *match.Result         `json:"match,omitempty"`
	Bet     int                   `json:"bet"`
	Win     int                   `json:"win"`
	Balance int                   `json:"balance"`
}

type DevSpinReport struct {
	Before    string    `json:"start_b64u"`
	After     string    `json:"after_b64u"`
	Round     int       `json:"round"`
	Rtp       float64   `json:"rtp"`
	TotalCost int       `json:"total_cost"`
	TotalBet  int       `json:"total_bet"`
	TotalWin  int       `json:"total_win"`
	Bankrupt  bool      `json:"bankrupt"`
	Results   []DevSpin `json:"results"`
}

func (d *DevSimulator) Machine() *Machine { return d.m }

// Spins 連續按 round 次（破產提前結束），每局押 min(bet, 可負擔上限)。
func (d *DevSimulator) Spins(bet int, round int) (DevSpinReport, error) {
	if round < 1 || round > MaxDevSpins {
		return DevSpinReport{}, errs.Warnf("round must be between 1 and %d", MaxDevSpins)
	}
	if bet < 0 {
		return DevSpinReport{}, errs.NewWarn("bet must >= 0")
	}
	before, err := d.m.SnapshotCore()
	if err != nil {
		return DevSpinReport{}, err
	}
	rep := DevSpinReport{Before: before, Results: make([]DevSpin, 0, round)}
	cost := d.m.SpinCost()
	for range round {
		d.m.Bet(panel.BetSet, min(bet, d.m.MaxAffordableBet()))
		b := d.m.Panel().Bet
		if d.m.Press() != ActionSpin {
			break
		}
		d.m.RunToIdle()
		ps := d.m.Panel()
		rep.Results = append(rep.Results, DevSpin{
			Index:   d.m.engine.State().CurrentIndex,
			Symbols: d.m.engine.Symbols(),
			Match:   d.m.LastMatch(),
			Bet:     b,
			Win:     ps.Win,
			Balance: ps.Balance,
		})
		rep.TotalCost += cost
		rep.TotalBet += b
		rep.TotalWin += ps.Win
		if d.m.Bankrupt() {
			break
		}
	}
	rep.Round = len(rep.Results)
	rep.Bankrupt = d.m.Bankrupt()
	if stake := rep.TotalCost + rep.TotalBet; stake > 0 {
		rep.Rtp = 100.0 * float64(rep.TotalWin) / float64(stake)
	}
	if rep.After, err = d.m.SnapshotCore(); err != nil {
		return DevSpinReport{}, err
	}
	return rep, nil
}

// RestoreSpins 先把 RNG 還原到 b64 快照再執行 Spins。
func (d *DevSimulator) RestoreSpins(b64 string, bet int, round int) (DevSpinReport, error) {
	if err := d.m.RestoreCore(b64); err != nil {
		return DevSpinReport{}, errs.Wrap(err, "machine restore failed")
	}
	return d.Spins(bet, round)
}
