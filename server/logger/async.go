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

package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// AsyncHandler 把 Handle 變成 enqueue，由單一背景 goroutine 依序寫到 next。
//
// 隊列滿或已 Close 時直接丟棄並計數，請求路徑不會被 log I/O 卡住。
// slog.Logger 會忽略 Handle 的回傳值，寫出錯誤需由 next 自行處理。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type record struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// queue 由同一個 AsyncHandler 衍生出的 WithAttrs / WithGroup 共用
type queue struct {
	ch      chan record
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	written atomic.Uint64
	dropped atomic.Uint64
}

// AsyncStats 觀測用計數
type AsyncStats struct {
	Written uint64 `json:"written"`
	Dropped uint64 `json:"dropped"`
	Pending int    `json:"pending"`
}

// NewAsyncHandler 包裝 next；buf <= 0 使用 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = NewHandler(ModeDev, Options{})
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{
		ch:   make(chan record, buf),
		stop: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.loop()
	return &AsyncHandler{next: next, q: q}
}

func (h *AsyncHandler) Ready() bool { return h != nil && h.q != nil }

func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

func (h *AsyncHandler) Stats() AsyncStats {
	if !h.Ready() {
		return AsyncStats{}
	}
	return AsyncStats{
		Written: h.q.written.Load(),
		Dropped: h.q.dropped.Load(),
		Pending: len(h.q.ch),
	}
}

// Close 停止收件並把隊列中剩餘的紀錄寫完；可重複呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.once.Do(func() { close(h.q.stop) })
	h.q.wg.Wait()
}

func (q *queue) loop() {
	defer q.wg.Done()
	for {
		select {
		case r := <-q.ch:
			q.write(r)
		case <-q.stop:
			for {
				select {
				case r := <-q.ch:
					q.write(r)
				default:
					return
				}
			}
		}
	}
}

func (q *queue) write(r record) {
	_ = r.h.Handle(r.ctx, r.rec)
	q.written.Add(1)
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.q.stop:
		h.q.dropped.Add(1)
		return nil
	default:
	}
	// Record 內的 attrs 可能與呼叫端共用，跨 goroutine 前需 Clone
	select {
	case h.q.ch <- record{ctx: ctx, rec: r.Clone(), h: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}
