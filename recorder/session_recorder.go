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

package recorder

import (
	"fmt"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/setting"
	"github.com/zintix-labs/reelab/stats"
	"github.com/zintix-labs/reelab/strip"
)

// Round 一次按鈕到停輪的結果。
type Round struct {
	Cost      int  // 扣掉的 spin cost
	Bet       int  // 該局押注
	Win       int  // 派彩
	Count     int  // 中獎顆數，0 表示未中
	QuickStop bool // 是否快轉
}

// SessionRecorder 遊戲紀錄員
//
// SessionRecorder 負責紀錄一位玩家（或一台機台）的所有回合，並透過 Done 輸出統計報表
type SessionRecorder struct {
	MachineName string
	MachineId   setting.MID
	SpinCost    int
	InitBalance int
	Basic       *BasicRecord
	Hits        []int // index = 中獎顆數
	Player      *PlayerRecord
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalCost  int
	TotalBet   int
	TotalWin   int
	WinSqSum   int // 平方和
	NoWin      int
	QuickStops int
	Rounds     int
}

// PlayerRecord 玩家統計
type PlayerRecord struct {
	Balance    int
	MaxBalance int
	MinBalance int
	Bankrupt   bool
}

func NewSessionRecorder(name string, id setting.MID, spinCost int, initBalance int) (*SessionRecorder, error) {
	s := new(SessionRecorder)
	if spinCost < 0 {
		return s, errs.NewFatal(fmt.Sprintf("spin cost must not negative integer, got: %d", spinCost))
	}
	if initBalance < 0 {
		return s, errs.NewFatal(fmt.Sprintf("init balance must not negative integer, got: %d", initBalance))
	}
	s.MachineName = name
	s.MachineId = id
	s.SpinCost = spinCost
	s.InitBalance = initBalance
	s.Basic = new(BasicRecord)
	s.Hits = make([]int, strip.Visible+1)
	s.Player = &PlayerRecord{Balance: initBalance, MaxBalance: initBalance, MinBalance: initBalance}
	return s, nil
}

// MergeSessionRecorder 合併多位玩家的紀錄成機台整體紀錄。玩家欄位不合併。
func MergeSessionRecorder(r []*SessionRecorder) (*SessionRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge session record err : empty input")
	}
	r0 := r[0]
	s, err := NewSessionRecorder(r0.MachineName, r0.MachineId, r0.SpinCost, r0.InitBalance)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.MachineName != r0.MachineName {
			return s, errs.NewFatal("merge session record err : different machine name")
		}
		if v.SpinCost != r0.SpinCost {
			return s, errs.NewFatal("merge session record err : different spin cost")
		}
		s.Basic.TotalCost += v.Basic.TotalCost
		s.Basic.TotalBet += v.Basic.TotalBet
		s.Basic.TotalWin += v.Basic.TotalWin
		s.Basic.WinSqSum += v.Basic.WinSqSum
		s.Basic.NoWin += v.Basic.NoWin
		s.Basic.QuickStops += v.Basic.QuickStops
		s.Basic.Rounds += v.Basic.Rounds
		for i := range v.Hits {
			s.Hits[i] += v.Hits[i]
		}
	}
	s.Player = nil
	return s, nil
}

// Record 以單局結果更新基本統計（不含玩家）
func (s *SessionRecorder) Record(r Round) {
	b := s.Basic
	b.TotalCost += r.Cost
	b.TotalBet += r.Bet
	b.TotalWin += r.Win
	b.WinSqSum += r.Win * r.Win
	if r.QuickStop {
		b.QuickStops++
	}
	if r.Count <= 0 || r.Count >= len(s.Hits) {
		b.NoWin++
		s.Hits[0]++
	} else {
		s.Hits[r.Count]++
	}
	b.Rounds++
}

// RecordWithPlayer 在 Record 的基礎上更新玩家餘額，回傳玩家是否離場（破產）。
//
// balance 以面板的實際餘額為準，不在此重算。
func (s *SessionRecorder) RecordWithPlayer(r Round, balance int, bankrupt bool) bool {
	s.Record(r)
	p := s.Player
	p.Balance = balance
	p.MaxBalance = max(p.MaxBalance, balance)
	p.MinBalance = min(p.MinBalance, balance)
	p.Bankrupt = bankrupt
	return bankrupt
}

func (s *SessionRecorder) Done() *stats.StatReport {
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			MachineName: s.MachineName,
			MachineId:   s.MachineId,
			SpinCost:    s.SpinCost,
			TotalCost:   s.Basic.TotalCost,
			TotalBet:    s.Basic.TotalBet,
			TotalWin:    s.Basic.TotalWin,
			WinSqSum:    s.Basic.WinSqSum,
			NoWinRounds: s.Basic.NoWin,
			QuickStops:  s.Basic.QuickStops,
			Rounds:      s.Basic.Rounds,
		},
		Hits: &stats.HitReport{
			Labels: stats.HitLabels,
			Counts: append([]int(nil), s.Hits...),
		},
	}
	if s.Player != nil {
		report.Player = &stats.PlayerReport{
			InitBalance: s.InitBalance,
			Balance:     s.Player.Balance,
			MaxBalance:  s.Player.MaxBalance,
			MinBalance:  s.Player.MinBalance,
			Bankrupt:    s.Player.Bankrupt,
		}
	}
	report.Done()
	return report
}
