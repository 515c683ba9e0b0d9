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

package panel

import (
	"math"
	"strings"
	"time"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/timeline"
)

// Field 面板上會跳動的數字欄位。
type Field string

const (
	FieldBalance Field = "balance"
	FieldBet     Field = "bet"
	FieldWin     Field = "win"
)

// Tween 一段數字跳動的描述；Round 表示每一幀的顯示值取整數。
type Tween struct {
	Field    Field         `json:"field"`
	From     int           `json:"from"`
	To       int           `json:"to"`
	Duration time.Duration `json:"duration"`
	Round    bool          `json:"round"`
}

// SetAnimatedValue 產生 current → target 的跳動描述，不改動面板狀態。
func (p *Panel) SetAnimatedValue(field Field, current, target int) Tween {
	return Tween{Field: field, From: current, To: target, Duration: p.cfg.TweenDuration, Round: true}
}

// ValueAt elapsed 時刻應顯示的值。
func (t Tween) ValueAt(elapsed time.Duration) float64 {
	p := 1.0
	if t.Duration > 0 {
		p = float64(elapsed) / float64(t.Duration)
	}
	v := timeline.Lerp(float64(t.From), float64(t.To), p, timeline.QuadOut)
	if t.Round {
		v = math.Round(v)
	}
	return v
}

// BetOp 押注操作。
type BetOp uint8

const (
	BetInc BetOp = iota + 1
	BetDec
	BetMax
	BetSet
)

func (o BetOp) String() string {
	switch o {
	case BetInc:
		return "inc"
	case BetDec:
		return "dec"
	case BetMax:
		return "max"
	case BetSet:
		return "set"
	default:
		return ""
	}
}

// ParseBetOp 不分大小寫，接受 inc/dec/max/set 與 +/-。
func ParseBetOp(s string) (BetOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inc", "+", "increase":
		return BetInc, nil
	case "dec", "-", "decrease":
		return BetDec, nil
	case "max":
		return BetMax, nil
	case "set":
		return BetSet, nil
	default:
		return 0, errs.Warnf("unknown bet op %q", s)
	}
}
