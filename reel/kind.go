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

package reel

// EngineKind Engine 在一次 spin 生命週期中會發出的全部訊號。
type EngineKind uint8

const (
	Started EngineKind = iota
	Finished
	Quickstop
	Enabled
	Disabled
)

// EngineKinds 列出全部 EngineKind，方便 exhaustive 檢查與訂閱。
var EngineKinds = []EngineKind{Started, Finished, Quickstop, Enabled, Disabled}

func (k EngineKind) String() string {
	switch k {
	case Started:
		return "started"
	case Finished:
		return "finished"
	case Quickstop:
		return "quickstop"
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Kind Reel（Engine + 判獎）對外發出的訊號。
type Kind uint8

const (
	Spin Kind = iota
	Win       // Value = 中獎顆數
	Lose
)

var Kinds = []Kind{Spin, Win, Lose}

func (k Kind) String() string {
	switch k {
	case Spin:
		return "spin"
	case Win:
		return "win"
	case Lose:
		return "lose"
	default:
		return "unknown"
	}
}
