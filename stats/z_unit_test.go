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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/reelab/stats"
	"github.com/zintix-labs/reelab/strip"
)

// buildStatReport 以固定 cost=0、bet=stake 的回合列表建構報表。
func buildStatReport(stake int, wins []int, balance int, bankrupt bool) *stats.StatReport {
	counts := make([]int, len(stats.HitLabels))
	var totalWin, sq, noWin int
	for _, w := range wins {
		if w == 0 {
			counts[0]++
			noWin++
		} else {
			counts[2]++
		}
		totalWin += w
		sq += w * w
	}
	r := &stats.StatReport{
		Summary: &stats.SummaryReport{
			MachineName: "test",
			TotalBet:    stake * len(wins),
			TotalWin:    totalWin,
			WinSqSum:    sq,
			NoWinRounds: noWin,
			Rounds:      len(wins),
		},
		Hits:   &stats.HitReport{Labels: stats.HitLabels, Counts: counts},
		Player: &stats.PlayerReport{Balance: balance, Bankrupt: bankrupt},
	}
	r.Done()
	return r
}

func TestStatReportCoreMetrics(t *testing.T) {
	bu := 40
	rep := buildStatReport(bu, []int{bu, 2 * bu}, 0, false)

	wantRTP := float64(bu+2*bu) / float64(2*bu)
	if got := rep.Rtp(); math.Abs(got-wantRTP) > 1e-12 {
		t.Fatalf("RTP got %.12f want %.12f", got, wantRTP)
	}
	variance := ((1.0 + 4.0) - 9.0/2) / (2 - 1)
	wantStd := math.Sqrt(variance)
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("Std got %.12f want %.12f", got, wantStd)
	}
	if got := rep.Cv(); math.Abs(got-wantStd/wantRTP) > 1e-12 {
		t.Fatalf("CV got %.12f", got)
	}
	if rep.Summary.HitRate != 1 {
		t.Fatalf("hit rate got %v", rep.Summary.HitRate)
	}
	if rep.Hits.Dist[2] != 1 {
		t.Fatalf("hit dist %v", rep.Hits.Dist)
	}
	rep.Done()
	if rep.Rtp() != wantRTP {
		t.Fatalf("RTP changed after second Done")
	}
}

func TestEstimatorPlayers(t *testing.T) {
	reports := make([]*stats.StatReport, 0, 100)
	for i := 0; i < 100; i++ {
		reports = append(reports, buildStatReport(100, []int{i}, i, i < 30))
	}
	est := stats.EstimatorPlayerExp(reports)
	if math.Abs(est.RtpStat.ExpMedian.Hat-0.5) > 0.05 {
		t.Fatalf("median RTP expected ~0.5, got %.3f", est.RtpStat.ExpMedian.Hat)
	}
	if math.Abs(est.RtpStat.ExpPerc.ExpP90.Hat-0.9) > 0.05 {
		t.Fatalf("P90 RTP expected ~0.9, got %.3f", est.RtpStat.ExpPerc.ExpP90.Hat)
	}
	if est.SessionStat.Bankrupt.Hat != 0.3 || est.SessionStat.Alive.Hat != 0.7 {
		t.Fatalf("unexpected session stat %+v", est.SessionStat)
	}
	b := est.BalanceStat
	if b.Mean.Hat != 49.5 || b.Min != 0 || b.Max != 99 {
		t.Fatalf("unexpected balance stat %+v", b)
	}
	if b.Mean.CI.Lo >= b.Mean.Hat || b.Mean.CI.Hi <= b.Mean.Hat {
		t.Fatalf("mean CI should bracket the mean: %+v", b.Mean)
	}
	if b.P10 > b.Median || b.Median > b.P90 {
		t.Fatalf("quantiles out of order %+v", b)
	}

	if est.SessionStat.RoundsToBankrupt.Hat != 1 || est.SessionStat.Doubled.Hat != 0 {
		t.Fatalf("unexpected bankrupt rounds / doubled %+v", est.SessionStat)
	}
	if r := est.RtpStat.RtpPerc.Rtp50; math.Abs(r.Hat-0.51) > 1e-9 || r.CI.Lo > r.Hat || r.CI.Hi < r.Hat {
		t.Fatalf("share of players with RTP <= 50%% %+v", r)
	}

	single := stats.EstimatorPlayerExp(reports[:1])
	if single.Players != 1 || single.BalanceStat.Std != 0 {
		t.Fatalf("single player estimator %+v", single)
	}
}

func TestEstimatorDoubled(t *testing.T) {
	reports := make([]*stats.StatReport, 0, 4)
	for i := range 4 {
		r := buildStatReport(10, []int{0, 0, 0}, 0, i < 2)
		r.Player.InitBalance = 50
		r.Player.MaxBalance = 50 + 25*i
		reports = append(reports, r)
	}
	est := stats.EstimatorPlayerExp(reports)
	// MaxBalance 50, 75, 100, 125 -> 兩位翻倍
	if est.SessionStat.Doubled.Hat != 0.5 {
		t.Fatalf("doubled %+v", est.SessionStat.Doubled)
	}
	if est.SessionStat.RoundsToBankrupt.Hat != 3 {
		t.Fatalf("rounds to bankrupt %+v", est.SessionStat.RoundsToBankrupt)
	}
	var buf strings.Builder
	est.Out(&buf)
	if !strings.Contains(buf.String(), "Rounds to Bankrupt") {
		t.Fatalf("table missing session rows")
	}
}

func TestStripReport(t *testing.T) {
	s, err := strip.New([]string{"a", "a", "a", "b", "c", "d"})
	if err != nil {
		t.Fatal(err)
	}
	r := stats.NewStripReport(s)
	// 停點 0:aaa 1:aab 5:daa 中獎，2:abc 3:bcd 4:cda 未中
	if r.StopHits[3] != 1 || r.StopHits[2] != 2 || r.StopHits[0] != 3 {
		t.Fatalf("unexpected stop hits %v", r.StopHits)
	}
	if r.HitRate != 0.5 {
		t.Fatalf("hit rate %v", r.HitRate)
	}
	if want := 7.0 / 6.0; math.Abs(r.ExpectedMult-want) > 1e-12 {
		t.Fatalf("expected mult %v", r.ExpectedMult)
	}
	if r.Symbols[0].Symbol != "a" || r.Symbols[0].Count != 3 {
		t.Fatalf("symbols should be sorted by count: %+v", r.Symbols)
	}
}

func TestRenders(t *testing.T) {
	rep := buildStatReport(10, []int{0, 20, 0}, 50, false)
	s, _ := strip.New([]string{"a", "b", "c"})
	rep.Strip = stats.NewStripReport(s)

	for _, f := range []string{"table", "json", "yaml"} {
		r, err := stats.NewStatReportRender(f)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := rep.WriteWith(&buf, r); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if !strings.Contains(strings.ToLower(buf.String()), "test") {
			t.Fatalf("%s: machine name missing:\n%s", f, buf.String())
		}
		if f == "json" {
			var back map[string]any
			if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
		}
	}
	if _, err := stats.NewStatReportRender("xml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
	if f, err := stats.ParseFormat("YML"); err != nil || f != stats.FormatYAML {
		t.Fatalf("ParseFormat(YML) = %q, %v", f, err)
	}

	var buf bytes.Buffer
	est := stats.EstimatorPlayerExp([]*stats.StatReport{rep})
	er, err := stats.NewEstimatorRender("")
	if err != nil {
		t.Fatal(err)
	}
	if err := er.Write(&buf, est); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Session Outcome") {
		t.Fatalf("estimator table missing section:\n%s", buf.String())
	}
}
