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
	"sort"

	"golang.org/x/text/message"

	"github.com/zintix-labs/reelab/match"
	"github.com/zintix-labs/reelab/strip"
)

// StripReport 由 strip 排列窮舉每個停點得到的理論值；停點為均勻抽樣，
// 因此這就是長期模擬應收斂到的機率。
type StripReport struct {
	Length       int          `json:"Length"       yaml:"length"`
	Symbols      []SymbolFreq `json:"Symbols"      yaml:"symbols"`
	StopHits     []int        `json:"StopHits"     yaml:"stop_hits,flow"` // index = 中獎顆數
	HitRate      float64      `json:"HitRate"      yaml:"hit_rate"`
	ExpectedMult float64      `json:"ExpectedMult" yaml:"expected_mult"` // 每押 1 的期望派彩（不含 cost）
}

type SymbolFreq struct {
	Symbol string  `json:"Symbol" yaml:"symbol"`
	Count  int     `json:"Count"  yaml:"count"`
	Freq   float64 `json:"Freq"   yaml:"freq"`
}

func NewStripReport(s *strip.Strip) *StripReport {
	n := s.Len()
	r := &StripReport{Length: n, StopHits: make([]int, strip.Visible+1)}

	counts := s.Count()
	for _, sym := range s.Distinct() {
		r.Symbols = append(r.Symbols, SymbolFreq{Symbol: sym, Count: counts[sym], Freq: float64(counts[sym]) / float64(n)})
	}
	sort.SliceStable(r.Symbols, func(i, j int) bool { return r.Symbols[i].Count > r.Symbols[j].Count })

	pay := 0
	for i := 0; i < n; i++ {
		w := s.Window(i)
		res := match.Evaluate(w[:])
		if res == nil {
			r.StopHits[0]++
			continue
		}
		r.StopHits[res.Count]++
		pay += res.Count
	}
	r.HitRate = 1 - float64(r.StopHits[0])/float64(n)
	r.ExpectedMult = float64(pay) / float64(n)
	return r
}

func (r *StripReport) fmtStrip() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := []string{"Length", "Theoretical Hit", "Expected Mult"}
	m := map[string]string{
		"Length":          p.Sprintf("%d", r.Length),
		"Theoretical Hit": p.Sprintf("%.2f %%", 100*r.HitRate),
		"Expected Mult":   p.Sprintf("%.4f", r.ExpectedMult),
	}
	for _, sf := range r.Symbols {
		k := fmt.Sprintf("Symbol %s", sf.Symbol)
		m[k] = p.Sprintf("%d (%.2f%%)", sf.Count, 100*sf.Freq)
		keys = append(keys, k)
	}
	return keys, m
}
