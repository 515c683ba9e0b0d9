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

// Package event 提供元件之間點對點的訊號訂閱。
//
// 每個元件用自己的列舉型別（~uint8）定義它會發出的全部訊號種類，
// 訂閱端可以對 Kind 做 exhaustive switch。Emitter 不是 goroutine-safe：
// 同一台 Machine 的元件都在同一條執行緒上被 frame 推進。
package event

import "time"

// Kind 元件訊號列舉的約束。
type Kind interface {
	~uint8
	String() string
}

// Event 一次訊號。Value 只有帶值的訊號（例如 win 的中獎顆數）才有意義；
// At 為發出當下的虛擬時間。
type Event[K Kind] struct {
	Kind  K             `json:"-"`
	Name  string        `json:"kind"`
	Value int           `json:"value,omitempty"`
	At    time.Duration `json:"at"`
}

func New[K Kind](k K, value int, at time.Duration) Event[K] {
	return Event[K]{Kind: k, Name: k.String(), Value: value, At: at}
}

type subscriber[K Kind] struct {
	id   int
	only bool
	kind K
	fn   func(Event[K])
}

type Emitter[K Kind] struct {
	subs   []subscriber[K]
	nextID int
}

// On 訂閱所有訊號，回傳取消訂閱函數。
func (e *Emitter[K]) On(fn func(Event[K])) (off func()) {
	return e.add(subscriber[K]{fn: fn})
}

// OnKind 只訂閱某一種訊號。
func (e *Emitter[K]) OnKind(k K, fn func(Event[K])) (off func()) {
	return e.add(subscriber[K]{only: true, kind: k, fn: fn})
}

func (e *Emitter[K]) add(s subscriber[K]) func() {
	e.nextID++
	s.id = e.nextID
	e.subs = append(e.subs, s)
	id := s.id
	return func() {
		for i := range e.subs {
			if e.subs[i].id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit 依訂閱順序同步呼叫。回呼內新增的訂閱從下一次 Emit 才生效。
func (e *Emitter[K]) Emit(ev Event[K]) {
	if ev.Name == "" {
		ev.Name = ev.Kind.String()
	}
	subs := append([]subscriber[K](nil), e.subs...)
	for _, s := range subs {
		if s.only && s.kind != ev.Kind {
			continue
		}
		s.fn(ev)
	}
}

// Len 目前的訂閱數。
func (e *Emitter[K]) Len() int { return len(e.subs) }
