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

import (
	"github.com/zintix-labs/reelab/event"
	"github.com/zintix-labs/reelab/match"
)

// Reel 把 Engine 與判獎組合成對外的元件：開轉發 spin，停輪後發 win(顆數) 或 lose。
type Reel struct {
	engine *Engine
	last   *match.Result
	events event.Emitter[Kind]
}

func New(e *Engine) *Reel {
	r := &Reel{engine: e}
	e.Events().OnKind(Finished, func(ev event.Event[EngineKind]) {
		r.last = e.Matches()
		if r.last != nil {
			r.events.Emit(event.New(Win, r.last.Count, ev.At))
			return
		}
		r.events.Emit(event.New(Lose, 0, ev.At))
	})
	return r
}

func (r *Reel) Engine() *Engine { return r.engine }

func (r *Reel) Events() *event.Emitter[Kind] { return &r.events }

// Spin 閒置時發出 spin 並開轉，回傳 true；滾動中則改為快轉，回傳 false。
func (r *Reel) Spin() bool {
	if r.engine.State().Spinning {
		r.engine.Spin()
		return false
	}
	r.last = nil
	r.events.Emit(event.New(Spin, 0, r.engine.Clock()))
	_, ok := r.engine.Spin()
	return ok
}

// QuickStop 快轉目前這一轉。
func (r *Reel) QuickStop() bool {
	return r.engine.FastForward(0)
}

// LastMatch 最近一次停輪的判獎結果，尚未停輪或沒中回傳 nil。
func (r *Reel) LastMatch() *match.Result { return r.last }
