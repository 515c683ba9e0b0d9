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

// Package scroll 負責 symbol index 與像素捲動位置之間的換算，以及環狀繞回。
//
// scroll position 是 reel 內容往下捲的距離（= 容器 y 的相反數），
// index 變小代表畫面往下捲。
package scroll

import (
	"math"

	"github.com/zintix-labs/reelab/errs"
)

// wrapAbove 繞回起點位於第一格上方 3 格（即 strip 最後 3 格接在開頭上方）。
const wrapAbove = 3

type Mapper struct {
	size      float64
	length    int
	offset    float64
	wrapTop   float64
	wrapRange float64
}

// New 建立 Mapper；size 為單格邊長（像素），n 為 strip 長度，offset 為容器相對父層的垂直位移。
func New(size float64, n int, offset float64) (*Mapper, error) {
	if !(size > 0) || math.IsInf(size, 0) {
		return nil, errs.Fatalf("symbol size must > 0, got %v", size)
	}
	if n < wrapAbove {
		return nil, errs.Fatalf("strip length must >= %d, got %d", wrapAbove, n)
	}
	m := &Mapper{size: size, length: n, offset: offset}
	m.wrapTop = m.PositionFromIndex(-wrapAbove)
	m.wrapRange = float64(n) * size
	return m, nil
}

func (m *Mapper) SymbolSize() float64 { return m.size }

// WrapTop 繞回視窗上界。
func (m *Mapper) WrapTop() float64 { return m.wrapTop }

// WrapLength 一整圈的像素長度。
func (m *Mapper) WrapLength() float64 { return m.wrapRange }

// PositionFromIndex index 可為負或大於 N。
func (m *Mapper) PositionFromIndex(index int) float64 {
	return float64(index) * m.size
}

// Wrap 把任意 scroll position 映射到 [wrapTop, wrapTop+wrapLength)。
//
//	k = ceil((wrapTop - value) / wrapLength)
//	y = value + k * wrapLength
//
// 剛好落在邊界上的值取 ceiling，回傳邊界本身，避免相鄰兩幀各繞一次造成閃爍。
func (m *Mapper) Wrap(value float64) float64 {
	k := math.Ceil((m.wrapTop - value) / m.wrapRange)
	return value + k*m.wrapRange
}

// IndexFromPosition 取最近的格子並正規化到 [0,N)。
func (m *Mapper) IndexFromPosition(pos float64) int {
	i := int(math.Round(pos/m.size)) % m.length
	if i < 0 {
		i += m.length
	}
	return i
}

// Y 回傳 renderer 應套用在 reel 容器上的 y 座標。
func (m *Mapper) Y(value float64) float64 {
	return -m.Wrap(value) + m.offset
}

// ScrollFromY 是 Y 的反函數（回傳的 position 已繞回）。
func (m *Mapper) ScrollFromY(y float64) float64 {
	return -(y - m.offset)
}
