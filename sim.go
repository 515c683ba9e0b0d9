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
	"context"
	"io"
	"runtime"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/panel"
	"github.com/zintix-labs/reelab/recorder"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/setting"
	"github.com/zintix-labs/reelab/stats"
	"golang.org/x/sync/errgroup"
)

// SimFrame 模擬時 RunToIdle 的步長。timeline 不會跳過 step，步長只影響迴圈次數。
const SimFrame = 250 * time.Millisecond

// Simulator 以多位玩家平行模擬機台，每位玩家擁有自己的 Machine。
//
// 玩家 seed 由 seed maker 依序預先產生，因此結果與 worker 數量無關。
type Simulator struct {
	MachineName string
	MachineId   setting.MID
	ms          *setting.MachineSetting
	cf          rng.Factory
	initSeed    int64
}

// SimOptions SimPlayers 的參數。
type SimOptions struct {
	Players   int  // 玩家數
	Presses   int  // 每位玩家最多按幾次
	Workers   int  // 併發數，<= 0 使用 runtime.NumCPU()
	Bet       int  // 每局想押的注，超出可負擔範圍時壓到上限
	QuickStop bool // 每局開轉後立即快轉
	Progress  bool // 顯示進度條
}

func (o SimOptions) valid() error {
	if o.Players < 1 {
		return errs.NewWarn("players must > 0")
	}
	if o.Presses < 1 {
		return errs.NewWarn("presses must > 0")
	}
	if o.Bet < 0 {
		return errs.NewWarn("bet must >= 0")
	}
	return nil
}

func newSimulator(ms *setting.MachineSetting, cf rng.Factory, seed int64) *Simulator {
	return &Simulator{
		MachineName: ms.MachineName,
		MachineId:   ms.MachineID,
		ms:          ms,
		cf:          cf,
		initSeed:    seed,
	}
}

func (s *Simulator) Seed() int64 { return s.initSeed }

// SimPlayers 模擬多位玩家各自從初始餘額開始遊玩，直到按滿 Presses 次或破產。
//
// 回傳機台整體報表、玩家分佈估計與用時。ctx 取消時回傳已被包裝的 ctx 錯誤。
func (s *Simulator) SimPlayers(ctx context.Context, opt SimOptions) (*stats.StatReport, *stats.EstimatorPlayers, time.Duration, error) {
	if err := opt.valid(); err != nil {
		return nil, nil, 0, err
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, opt.Players)

	pc := s.ms.PanelConfig()
	seeds := make([]int64, opt.Players)
	sm := rng.NewSeedMaker(s.initSeed)
	for i := range seeds {
		seeds[i] = sm.Next()
	}
	recs := make([]*recorder.SessionRecorder, opt.Players)
	for i := range recs {
		r, err := recorder.NewSessionRecorder(s.MachineName, s.MachineId, pc.SpinCost, pc.InitialBalance)
		if err != nil {
			return nil, nil, 0, err
		}
		recs[i] = r
	}

	bar := pb.New(opt.Players)
	if !opt.Progress {
		bar.SetWriter(io.Discard)
	}
	bar.Start()

	// 每位玩家的 seed 事先決定，結果與 worker 數無關
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range opt.Players {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if err := s.play(seeds[i], recs[i], opt); err != nil {
				return err
			}
			bar.Increment()
			return nil
		})
	}
	err := g.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, nil, used, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, used, errs.Wrap(err, "simulation interrupted")
	}

	merged, err := recorder.MergeSessionRecorder(recs)
	if err != nil {
		return nil, nil, used, err
	}
	st := merged.Done()
	st.Strip = stats.NewStripReport(s.ms.StripValue())
	st.Done()

	players := make([]*stats.StatReport, len(recs))
	for i, r := range recs {
		players[i] = r.Done()
		players[i].Done()
	}
	return st, stats.EstimatorPlayerExp(players), used, nil
}

// play 一位玩家的完整歷程。
func (s *Simulator) play(seed int64, rec *recorder.SessionRecorder, opt SimOptions) error {
	m, err := newMachineWithSeed(s.ms, s.cf, seed, true, nil)
	if err != nil {
		return err
	}
	m.SetFrame(SimFrame)
	cost := m.SpinCost()
	for range opt.Presses {
		m.Bet(panel.BetSet, min(opt.Bet, m.MaxAffordableBet()))
		bet := m.Panel().Bet
		if m.Press() != ActionSpin {
			break
		}
		qs := opt.QuickStop && m.QuickStop()
		m.RunToIdle()
		if m.Busy() {
			return errs.NewFatal("machine did not settle")
		}
		r := recorder.Round{Cost: cost, Bet: bet, Win: m.Panel().Win, QuickStop: qs}
		if lm := m.LastMatch(); lm != nil {
			r.Count = lm.Count
		}
		if rec.RecordWithPlayer(r, m.Panel().Balance, m.Bankrupt()) {
			break
		}
	}
	return nil
}
