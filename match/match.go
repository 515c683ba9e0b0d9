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

// Package match 判斷可見圖標中重複出現最多的圖標（Win Evaluator）。
package match

import "github.com/samber/lo"

// MinRepeat 至少重複幾次才算中獎。
const MinRepeat = 2

// Result 一次評估的結果；Slots 為該圖標所在的可見格（由上而下 0 起算，遞增）。
type Result struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
	Slots  []int  `json:"slots"`
}

// Evaluate 計算重複次數最多的圖標，次數 < MinRepeat 回傳 nil。
//
// 同分規則：首次出現位置（slot）最小者勝出。
// 3 格視窗下同分只會發生在全部不同（次數 1），但規則對任意長度都成立。
func Evaluate(symbols []string) *Result {
	if len(symbols) == 0 {
		return nil
	}
	counts := lo.CountValues(symbols)
	best, bestCount := "", 0
	// 依 slot 順序掃描，只有嚴格大於才換人，保證首次出現者優先
	for _, s := range symbols {
		if c := counts[s]; c > bestCount {
			best, bestCount = s, c
		}
	}
	if bestCount < MinRepeat {
		return nil
	}
	r := &Result{Symbol: best, Count: bestCount, Slots: make([]int, 0, bestCount)}
	for i, s := range symbols {
		if s == best {
			r.Slots = append(r.Slots, i)
		}
	}
	return r
}
