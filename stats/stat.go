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
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zintix-labs/reelab/setting"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"lo"`
	Hi float64 `json:"Hi" yaml:"hi"`
}

// HitLabels 中獎顆數分桶標籤，index = 可見窗內相同圖標顆數（0 表示未中）。
var HitLabels = []string{"no win", "-", "x2", "x3"}

// StatReport 機台（或單一玩家）的統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary" yaml:"summary"`
	Hits    *HitReport     `json:"Hits"    yaml:"hits"`
	Player  *PlayerReport  `json:"Player,omitzero" yaml:"player,omitempty"`
	Strip   *StripReport   `json:"Strip,omitempty" yaml:"strip,omitempty"`
	isDone  bool
}

type SummaryReport struct {
	MachineName string      `json:"MachineName" yaml:"machine_name"`
	MachineId   setting.MID `json:"MachineId"   yaml:"machine_id"`
	SpinCost    int         `json:"SpinCost"    yaml:"spin_cost"`
	TotalCost   int         `json:"TotalCost"   yaml:"total_cost"` // spin cost 總和
	TotalBet    int         `json:"TotalBet"    yaml:"total_bet"`  // 押注總和（不含 cost）
	TotalWin    int         `json:"TotalWin"    yaml:"total_win"`
	WinSqSum    int         `json:"WinSqSum"    yaml:"win_sq_sum"` // 單局贏分平方和
	RTP         float64     `json:"RTP"         yaml:"rtp"`
	RtpCI       CI          `json:"RtpCI"       yaml:"rtp_ci"`
	Std         float64     `json:"Std"         yaml:"std"`
	Cv          float64     `json:"Cv"          yaml:"cv"`
	NoWinRounds int         `json:"NoWinRounds" yaml:"no_win_rounds"`
	HitRate     float64     `json:"HitRate"     yaml:"hit_rate"`
	QuickStops  int         `json:"QuickStops"  yaml:"quick_stops"`
	Rounds      int         `json:"Rounds"      yaml:"rounds"`
}

// HitReport 中獎顆數分布
type HitReport struct {
	Labels []string  `json:"Labels" yaml:"labels"`
	Counts []int     `json:"Counts" yaml:"counts"`
	Dist   []float64 `json:"Dist"   yaml:"dist"`
}

// PlayerReport 玩家統計
//
// 需使用 RecordWithPlayer 才會統計
type PlayerReport struct {
	InitBalance int  `json:"InitBalance" yaml:"init_balance"`
	Balance     int  `json:"Balance"     yaml:"balance"`
	MaxBalance  int  `json:"MaxBalance"  yaml:"max_balance"`
	MinBalance  int  `json:"MinBalance"  yaml:"min_balance"`
	Bankrupt    bool `json:"Bankrupt"    yaml:"bankrupt"`
	Alive       bool `json:"Alive"       yaml:"alive"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。可重複呼叫。
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	if s.Summary.Rounds > 0 {
		s.Summary.HitRate = 1.0 - float64(s.Summary.NoWinRounds)/float64(s.Summary.Rounds)
	}
	if s.Hits != nil {
		s.Hits.Dist = make([]float64, len(s.Hits.Counts))
		for i, c := range s.Hits.Counts {
			if s.Summary.Rounds > 0 {
				s.Hits.Dist[i] = float64(c) / float64(s.Summary.Rounds)
			}
		}
	}
	if s.Player != nil {
		s.Player.Alive = !s.Player.Bankrupt
	}
	s.isDone = true
}

// Stake 總投入（cost + bet）
func (s *StatReport) Stake() int { return s.Summary.TotalCost + s.Summary.TotalBet }

// Rtp 回傳整體 RTP（總贏分 / 總投入）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Stake() == 0 {
		return 0
	}
	return float64(s.Summary.TotalWin) / float64(s.Stake())
}

// Std 回傳單局贏分的標準差（以平均單局投入為單位）
func (s *StatReport) Std() float64 {
	n := float64(s.Summary.Rounds)
	if s.Summary.Rounds < 2 || s.Stake() == 0 {
		return 0
	}
	unit := float64(s.Stake()) / n
	w := float64(s.Summary.TotalWin) / unit
	sq := float64(s.Summary.WinSqSum) / (unit * unit)
	variance := (sq - w*w/n) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局贏分的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	if rtp <= 0 {
		return 0
	}
	return s.Std() / rtp
}

// Ci 回傳(95% Rtp)信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	se := 0.0
	if s.Summary.Rounds > 1 {
		se = s.Std() / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{Lo: max(rtp-1.96*se, 0.0), Hi: rtp + 1.96*se}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 以表格印出摘要與用時。
func (s *StatReport) StdOut(w io.Writer, ut time.Duration) {
	s.Done()
	formatDuration(w, ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	fmt.Fprintln(w, fmtTable(s.Summary.MachineName, sk, sm))
	if s.Strip != nil {
		k, m := s.Strip.fmtStrip()
		fmt.Fprintln(w, fmtTable("Strip", k, m))
	}
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(w io.Writer, d time.Duration, spins int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(spins) / sec)
	if sec < 60.0 {
		p.Fprintf(w, "used: %.2f seconds\nsps : %d spins/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Fprintf(w, "used: %dm %ds\nsps : %d spins/sec\n", m, s, sps)
		return
	}
	p.Fprintf(w, "used: %dh:%dm:%ds\nsps : %d spins/sec\n", h, m, s, sps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Machine":      p.Sprintf("%s (%d)", s.Summary.MachineName, s.Summary.MachineId),
		"Total Rounds": p.Sprintf("%d", s.Summary.Rounds),
		"Total RTP":    p.Sprintf("%.2f %%", 100.0*s.Summary.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.RtpCI.Lo, 100.0*s.Summary.RtpCI.Hi),
		"Total Cost":   p.Sprintf("%d", s.Summary.TotalCost),
		"Total Bet":    p.Sprintf("%d", s.Summary.TotalBet),
		"Total Win":    p.Sprintf("%d", s.Summary.TotalWin),
		"Hit Rate":     p.Sprintf("%.2f %%", 100.0*s.Summary.HitRate),
		"NoWin Rounds": p.Sprintf("%d", s.Summary.NoWinRounds),
		"Quick Stops":  p.Sprintf("%d", s.Summary.QuickStops),
		"STD":          p.Sprintf("%.3f", s.Summary.Std),
		"CV":           p.Sprintf("%.3f", s.Summary.Cv),
	}
	keys := []string{"Machine", "Total Rounds", "Total RTP", "RTP 95% CI", "Total Cost", "Total Bet", "Total Win", "Hit Rate", "NoWin Rounds", "Quick Stops", "STD", "CV"}
	if s.Hits != nil {
		for i, l := range s.Hits.Labels {
			if i == 0 || l == "-" {
				continue
			}
			k := "Hits " + l
			basic[k] = p.Sprintf("%d (%.2f%%)", s.Hits.Counts[i], 100.0*s.Hits.Dist[i])
			keys = append(keys, k)
		}
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := max((totalInner-titleW)/2, 0)
	right := max(totalInner-titleW-left, 0)

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
