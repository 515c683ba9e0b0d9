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

// Package strip 定義 reel 上固定的圖標排列（Symbol Strip）。
//
// Strip 是一個環狀、建立後不可變的序列，由 reel.Engine 與 match 共用唯讀。
package strip

import (
	"strings"

	"github.com/samber/lo"

	"github.com/zintix-labs/reelab/errs"
)

// Visible 畫面上同時可見的格數（由上而下 slot 0,1,2）。
const Visible = 3

type Strip struct {
	symbols []string
}

// New 以複本建立 Strip。
//
// 長度小於 Visible、或含空白 id 的排列會直接回傳 Fatal：
// 這是建構期前置條件，執行期不再檢查。
func New(symbols []string) (*Strip, error) {
	if len(symbols) < Visible {
		return nil, errs.Fatalf("strip length must >= %d, got %d", Visible, len(symbols))
	}
	cp := make([]string, len(symbols))
	for i, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, errs.Fatalf("blank symbol at %d", i)
		}
		cp[i] = s
	}
	return &Strip{symbols: cp}, nil
}

// Parse 解析 "SYM1, SYM2, ..." 形式的排列字串（轉小寫、去空白）。
func Parse(s string) (*Strip, error) {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return nil, errs.NewFatal("empty strip")
	}
	return New(strings.Split(s, ","))
}

func (s *Strip) Len() int { return len(s.symbols) }

// Normalize 把任意整數 index 映射回 [0,N)。
func (s *Strip) Normalize(index int) int {
	n := len(s.symbols)
	i := index % n
	if i < 0 {
		i += n
	}
	return i
}

// At 回傳 index（可為負或 >= N）位置的圖標。
func (s *Strip) At(index int) string {
	return s.symbols[s.Normalize(index)]
}

// Window 回傳 reel 停在 index 時可見的 3 個圖標，超過尾端時從頭接續。
func (s *Strip) Window(index int) [Visible]string {
	var w [Visible]string
	start := s.Normalize(index)
	for i := range w {
		w[i] = s.symbols[(start+i)%len(s.symbols)]
	}
	return w
}

// Symbols 回傳排列的複本。
func (s *Strip) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// Distinct 依首次出現順序列出不重複的圖標 id。
func (s *Strip) Distinct() []string {
	return lo.Uniq(s.symbols)
}

// Count 回傳每個圖標在排列中出現的次數。
func (s *Strip) Count() map[string]int {
	return lo.CountValues(s.symbols)
}

func (s *Strip) String() string {
	return strings.Join(s.symbols, ",")
}
