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

package stats

import (
	"fmt"
	"io"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// 所有區間估計皆為 95%
const confidence = 0.95

// EstimatorPlayers 多玩家模擬的體驗評估
type EstimatorPlayers struct {
	Players     int         `json:"Players"     yaml:"players"`
	RtpStat     RtpStat     `json:"RtpStat"     yaml:"rtp_stat"`
	BalanceStat BalanceStat `json:"BalanceStat" yaml:"balance_stat"`
	SessionStat SessionStat `json:"SessionStat" yaml:"session_stat"`
}

// RtpStat 玩家個人 RTP 的分布
type RtpStat struct {
	ExpMedian PointStat `json:"ExpMedian" yaml:"exp_median"`
	ExpPerc   ExpPerc   `json:"ExpPerc"   yaml:"exp_perc"`
	RtpPerc   RtpPerc   `json:"RtpPerc"   yaml:"rtp_perc"`
}

// ExpPerc 第 q 分位玩家的 RTP
type ExpPerc struct {
	ExpP10 PointStat `json:"ExpP10" yaml:"p10"`
	ExpP33 PointStat `json:"ExpP33" yaml:"p33"`
	ExpP67 PointStat `json:"ExpP67" yaml:"p67"`
	ExpP90 PointStat `json:"ExpP90" yaml:"p90"`
}

// RtpPerc RTP 不超過門檻的玩家比例
type RtpPerc struct {
	Rtp30  PointStat `json:"Rtp30"  yaml:"rtp30"`
	Rtp50  PointStat `json:"Rtp50"  yaml:"rtp50"`
	Rtp70  PointStat `json:"Rtp70"  yaml:"rtp70"`
	Rtp100 PointStat `json:"Rtp100" yaml:"rtp100"`
}

// PointStat 點估計與信賴區間
type PointStat struct {
	Hat float64 `json:"Hat" yaml:"hat"`
	CI  CI      `json:"CI"  yaml:"ci"`
}

// BalanceStat 離場餘額
type BalanceStat struct {
	Mean   PointStat `json:"Mean"   yaml:"mean"` // t 近似
	Std    float64   `json:"Std"    yaml:"std"`
	Median float64   `json:"Median" yaml:"median"`
	P10    float64   `json:"P10"    yaml:"p10"`
	P90    float64   `json:"P90"    yaml:"p90"`
	Min    float64   `json:"Min"    yaml:"min"`
	Max    float64   `json:"Max"    yaml:"max"`
}

// SessionStat 離場方式
type SessionStat struct {
	Bankrupt PointStat `json:"Bankrupt" yaml:"bankrupt"`
	Alive    PointStat `json:"Alive"    yaml:"alive"` // 按完所有次數仍在場
	// Doubled 餘額曾經達到初始的兩倍
	Doubled PointStat `json:"Doubled" yaml:"doubled"`
	// RoundsToBankrupt 破產玩家撐過的局數（中位數）
	RoundsToBankrupt PointStat `json:"RoundsToBankrupt" yaml:"rounds_to_bankrupt"`
}

// sample 已排序的觀測值
type sample []float64

func newSample(data []float64) sample {
	s := slices.Clone(data)
	slices.Sort(s)
	return s
}

// point 最近秩法的分位點
func (s sample) point(q float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[min(max(int(q*float64(len(s))), 0), len(s)-1)]
}

// quantile 分位點與其 order statistic 信賴區間：
// 秩視為二項，以 Beta 反推 p 的範圍後換回樣本索引。
func (s sample) quantile(q float64) PointStat {
	n := len(s)
	switch n {
	case 0:
		return PointStat{}
	case 1:
		return PointStat{Hat: s[0], CI: CI{Lo: s[0], Hi: s[0]}}
	}
	alpha := 1 - confidence
	k := min(max(int(q*float64(n)), 1), n-1)
	pLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	pHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)

	li := min(max(int(pLo*float64(n)), 0), n-1)
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui--
	}
	ui = min(max(ui, 0), n-1)
	return PointStat{Hat: s.point(q), CI: CI{Lo: s[li], Hi: s[ui]}}
}

// atMost P(X <= x0) 的估計
func (s sample) atMost(x0 float64) PointStat {
	if len(s) == 0 {
		return PointStat{}
	}
	k, _ := slices.BinarySearchFunc(s, x0, func(v, t float64) int {
		if v <= t {
			return -1
		}
		return 1
	})
	return proportion(k, len(s))
}

// proportion Clopper-Pearson exact CI（k 成功 / n 次）
func proportion(k, n int) PointStat {
	if n == 0 {
		return PointStat{CI: CI{Lo: 0, Hi: 1}}
	}
	alpha := 1 - confidence
	ps := PointStat{Hat: float64(k) / float64(n), CI: CI{Lo: 0, Hi: 1}}
	if k > 0 {
		ps.CI.Lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	}
	if k < n {
		ps.CI.Hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)
	}
	return ps
}

// EstimatorPlayerExp 由每位玩家的報表估計整體體驗：
// 個人 RTP 分布、離場餘額、破產或撐完的比例。
func EstimatorPlayerExp(sts []*StatReport) *EstimatorPlayers {
	n := len(sts)
	out := &EstimatorPlayers{Players: n}
	if n == 0 {
		return out
	}

	rtp := make([]float64, n)
	for i, s := range sts {
		rtp[i] = s.Rtp()
	}
	rs := newSample(rtp)
	out.RtpStat = RtpStat{
		ExpMedian: rs.quantile(0.5),
		ExpPerc: ExpPerc{
			ExpP10: rs.quantile(0.10),
			ExpP33: rs.quantile(1.0 / 3.0),
			ExpP67: rs.quantile(2.0 / 3.0),
			ExpP90: rs.quantile(0.90),
		},
		RtpPerc: RtpPerc{
			Rtp30:  rs.atMost(0.30),
			Rtp50:  rs.atMost(0.50),
			Rtp70:  rs.atMost(0.70),
			Rtp100: rs.atMost(1.00),
		},
	}

	var (
		bal     []float64
		toBank  []float64
		bankK   int
		aliveK  int
		doubleK int
	)
	for _, s := range sts {
		p := s.Player
		if p == nil {
			continue
		}
		bal = append(bal, float64(p.Balance))
		if p.Bankrupt {
			bankK++
			if s.Summary != nil {
				toBank = append(toBank, float64(s.Summary.Rounds))
			}
		} else {
			aliveK++
		}
		if p.InitBalance > 0 && p.MaxBalance >= 2*p.InitBalance {
			doubleK++
		}
	}
	out.BalanceStat = balanceStat(newSample(bal))
	out.SessionStat = SessionStat{
		Bankrupt:         proportion(bankK, n),
		Alive:            proportion(aliveK, n),
		Doubled:          proportion(doubleK, n),
		RoundsToBankrupt: newSample(toBank).quantile(0.5),
	}
	return out
}

func balanceStat(s sample) BalanceStat {
	if len(s) == 0 {
		return BalanceStat{}
	}
	mean, std := stat.MeanStdDev(s, nil)
	half := 0.0
	if n := float64(len(s)); n > 1 {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}
		half = t.Quantile(1-(1-confidence)/2) * std / math.Sqrt(n)
	} else {
		std = 0
	}
	return BalanceStat{
		Mean:   PointStat{Hat: mean, CI: CI{Lo: mean - half, Hi: mean + half}},
		Std:    std,
		Median: stat.Quantile(0.5, stat.Empirical, s, nil),
		P10:    stat.Quantile(0.10, stat.Empirical, s, nil),
		P90:    stat.Quantile(0.90, stat.Empirical, s, nil),
		Min:    s[0],
		Max:    s[len(s)-1],
	}
}

// Out 以表格輸出玩家體驗評估。
func (est *EstimatorPlayers) Out(w io.Writer) {
	r := est.RtpStat
	rtp := []row{
		{"Median RTP", pct(r.ExpMedian)},
		{"P10 RTP", pct(r.ExpPerc.ExpP10)},
		{"P33 RTP", pct(r.ExpPerc.ExpP33)},
		{"P67 RTP", pct(r.ExpPerc.ExpP67)},
		{"P90 RTP", pct(r.ExpPerc.ExpP90)},
		{"≤30% RTP (players)", pct(r.RtpPerc.Rtp30)},
		{"≤50% RTP (players)", pct(r.RtpPerc.Rtp50)},
		{"≤70% RTP (players)", pct(r.RtpPerc.Rtp70)},
		{"≤100% RTP (players)", pct(r.RtpPerc.Rtp100)},
	}
	b := est.BalanceStat
	bal := []row{
		{"Mean", fmt.Sprintf("%.2f [%.2f, %.2f]", b.Mean.Hat, b.Mean.CI.Lo, b.Mean.CI.Hi)},
		{"Std", fmt.Sprintf("%.2f", b.Std)},
		{"Median", fmt.Sprintf("%.0f", b.Median)},
		{"P10", fmt.Sprintf("%.0f", b.P10)},
		{"P90", fmt.Sprintf("%.0f", b.P90)},
		{"Min", fmt.Sprintf("%.0f", b.Min)},
		{"Max", fmt.Sprintf("%.0f", b.Max)},
	}
	ss := est.SessionStat
	rtb := ss.RoundsToBankrupt
	session := []row{
		{"Bankrupt", pct(ss.Bankrupt)},
		{"Alive", pct(ss.Alive)},
		{"Doubled", pct(ss.Doubled)},
		{"Rounds to Bankrupt", fmt.Sprintf("%.0f [%.0f, %.0f]", rtb.Hat, rtb.CI.Lo, rtb.CI.Hi)},
	}
	for _, t := range []struct {
		title string
		rows  []row
	}{{"RTP (Player Experience)", rtp}, {"Final Balance", bal}, {"Session Outcome", session}} {
		fmt.Fprintln(w, fmtRows(t.title, t.rows))
	}
}

type row struct{ key, val string }

func fmtRows(title string, rows []row) string {
	keys := make([]string, len(rows))
	msg := make(map[string]string, len(rows))
	for i, r := range rows {
		keys[i] = r.key
		msg[r.key] = r.val
	}
	return fmtTable(title, keys, msg)
}

func pct(p PointStat) string {
	return fmt.Sprintf("%.2f%% [%.2f%%, %.2f%%]", p.Hat*100, p.CI.Lo*100, p.CI.Hi*100)
}
