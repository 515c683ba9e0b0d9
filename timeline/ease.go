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

package timeline

import "math"

// Ease 把進度 p ∈ [0,1] 映射成插值比例。
type Ease func(p float64) float64

func Linear(p float64) float64 { return clamp01(p) }

// ExpoOut 快速起步、長尾減速，是 reel 滾動的曲線。
func ExpoOut(p float64) float64 {
	p = clamp01(p)
	if p == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*p)
}

// QuadOut 面板數字跳動用的減速曲線。
func QuadOut(p float64) float64 {
	p = clamp01(p)
	return 1 - (1-p)*(1-p)
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Lerp 依 ease 在 from/to 之間插值。
func Lerp(from, to float64, p float64, ease Ease) float64 {
	if ease == nil {
		ease = Linear
	}
	e := ease(p)
	if e == 1 {
		return to
	}
	return from + (to-from)*e
}
