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

package reelab

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/panel"
)

const (
	DefaultSessionTTL  = 15 * time.Minute
	DefaultMaxSessions = 10_000
	// maxCatchUp 單次請求最多補跑的牆鐘時間
	maxCatchUp = time.Minute
)

// RuntimeConfig SessionRuntime 的行為設定，零值使用預設。
type RuntimeConfig struct {
	TTL         time.Duration    // 閒置多久後回收
	MaxSessions int              // 同時存在的 session 上限
	Now         func() time.Time // 牆鐘來源，測試可注入
}

func (c *RuntimeConfig) withDefaults() {
	if c.TTL <= 0 {
		c.TTL = DefaultSessionTTL
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = DefaultMaxSessions
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// session 一位玩家的機台。lock 是容量 1 的 channel，讓等鎖也能被 ctx 取消。
type session struct {
	id       string
	m        *Machine
	lock     chan struct{}
	created  time.Time
	lastSeen time.Time
}

// SessionRuntime 以 session 為單位持有 Machine，供 HTTP 服務使用。
//
// 每個 session 的 Machine 只會被持鎖的那條 goroutine 推進；
// 虛擬時鐘在每次存取時以「距上次存取的牆鐘時間」補跑（lazy advance）。
// 操作中若發生 panic，該 session 視為不可信並直接移除。
type SessionRuntime struct {
	lab *Lab
	cfg RuntimeConfig
	log *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	created atomic.Int64
	evicted atomic.Int64
	panics  atomic.Int64
}

// NewRuntime 建立 SessionRuntime 並啟動閒置回收。呼叫端負責 Close。
func (l *Lab) NewRuntime(cfg RuntimeConfig) *SessionRuntime {
	cfg.withDefaults()
	rt := &SessionRuntime{
		lab:      l,
		cfg:      cfg,
		log:      l.log,
		sessions: make(map[string]*session),
		done:     make(chan struct{}),
	}
	rt.reason.Store("")
	go rt.janitor(max(cfg.TTL/4, time.Second))
	return rt
}

func (rt *SessionRuntime) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-rt.done:
			return
		case <-t.C:
			if n := rt.Sweep(); n > 0 {
				rt.log.Debug("sessions evicted", slog.Int("count", n))
			}
		}
	}
}

// Sweep 移除閒置超過 TTL 的 session，回傳移除數量。
func (rt *SessionRuntime) Sweep() int {
	now := rt.cfg.Now()
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n := 0
	for id, s := range rt.sessions {
		select {
		case s.lock <- struct{}{}:
		default:
			continue // 使用中
		}
		if now.Sub(s.lastSeen) > rt.cfg.TTL {
			delete(rt.sessions, id)
			n++
		}
		<-s.lock
	}
	rt.evicted.Add(int64(n))
	return n
}

func (rt *SessionRuntime) check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), "session canceled/timeout")
	case <-rt.done:
		rt.closed.Store(true)
		return errs.NewFatal("session runtime closed: " + rt.ClosedReason())
	default:
		return nil
	}
}

// Create 建立新 session；seed 為 nil 時以 crypto/rand 產生。
func (rt *SessionRuntime) Create(ctx context.Context, name string, seed *int64) (string, Snapshot, error) {
	if err := rt.check(ctx); err != nil {
		return "", Snapshot{}, err
	}
	var (
		m   *Machine
		err error
	)
	if seed != nil {
		m, err = rt.lab.NewMachineWithSeed(name, *seed)
	} else {
		m, err = rt.lab.NewMachine(name)
	}
	if err != nil {
		return "", Snapshot{}, err
	}
	now := rt.cfg.Now()
	s := &session{
		id:       uuid.NewString(),
		m:        m,
		lock:     make(chan struct{}, 1),
		created:  now,
		lastSeen: now,
	}

	if rt.Len() >= rt.cfg.MaxSessions {
		rt.Sweep()
	}
	rt.mu.Lock()
	if len(rt.sessions) >= rt.cfg.MaxSessions {
		rt.mu.Unlock()
		return "", Snapshot{}, errs.Warnf("session limit reached: %d", rt.cfg.MaxSessions)
	}
	rt.sessions[s.id] = s
	rt.mu.Unlock()
	rt.created.Add(1)

	snap, err := m.Snapshot()
	if err != nil {
		return "", Snapshot{}, err
	}
	return s.id, snap, nil
}

func (rt *SessionRuntime) get(id string) (*session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.NotFoundf("session %q", id)
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s, ok := rt.sessions[id]
	if !ok {
		return nil, errs.NotFoundf("session %q", id)
	}
	return s, nil
}

func (rt *SessionRuntime) drop(id string) {
	rt.mu.Lock()
	delete(rt.sessions, id)
	rt.mu.Unlock()
}

// Do 持鎖執行 fn，之前先以牆鐘補跑虛擬時間，之後回傳快照。fn 可為 nil。
func (rt *SessionRuntime) Do(ctx context.Context, id string, fn func(m *Machine) error) (snap Snapshot, err error) {
	if err := rt.check(ctx); err != nil {
		return Snapshot{}, err
	}
	s, err := rt.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	select {
	case s.lock <- struct{}{}:
	case <-ctx.Done():
		return Snapshot{}, errs.Wrap(ctx.Err(), "session busy")
	case <-rt.done:
		return Snapshot{}, errs.NewFatal("session runtime closed: " + rt.ClosedReason())
	}
	defer func() {
		<-s.lock
		if r := recover(); r != nil {
			rt.panics.Add(1)
			rt.drop(id)
			rt.log.Error("session panic", slog.String("session", id), slog.Any("panic", r))
			snap, err = Snapshot{}, errs.NewFatal(fmt.Sprintf("session %s panic: %v", id, r))
		}
	}()

	now := rt.cfg.Now()
	if el := now.Sub(s.lastSeen); el > 0 {
		s.m.Tick(min(el, maxCatchUp))
	}
	s.lastSeen = now

	if fn != nil {
		if err := fn(s.m); err != nil {
			return Snapshot{}, err
		}
	}
	return s.m.Snapshot()
}

func (rt *SessionRuntime) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	return rt.Do(ctx, id, nil)
}

// Press 按下 play 按鈕；被拒絕不是錯誤，由 Action 表示。
func (rt *SessionRuntime) Press(ctx context.Context, id string) (Action, Snapshot, error) {
	var act Action
	snap, err := rt.Do(ctx, id, func(m *Machine) error {
		act = m.Press()
		return nil
	})
	return act, snap, err
}

func (rt *SessionRuntime) QuickStop(ctx context.Context, id string) (bool, Snapshot, error) {
	var ok bool
	snap, err := rt.Do(ctx, id, func(m *Machine) error {
		ok = m.QuickStop()
		return nil
	})
	return ok, snap, err
}

func (rt *SessionRuntime) Bet(ctx context.Context, id string, op panel.BetOp, value int) (bool, Snapshot, error) {
	var ok bool
	snap, err := rt.Do(ctx, id, func(m *Machine) error {
		ok = m.Bet(op, value)
		return nil
	})
	return ok, snap, err
}

// Settle 立即把目前這一轉跑完。
func (rt *SessionRuntime) Settle(ctx context.Context, id string) (Snapshot, error) {
	return rt.Do(ctx, id, func(m *Machine) error {
		m.RunToIdle()
		return nil
	})
}

func (rt *SessionRuntime) Delete(id string) error {
	if _, err := rt.get(id); err != nil {
		return err
	}
	rt.drop(id)
	return nil
}

func (rt *SessionRuntime) Len() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.sessions)
}

func (rt *SessionRuntime) Lab() *Lab { return rt.lab }

// Close 進入關閉狀態，可重複呼叫。
func (rt *SessionRuntime) Close() {
	rt.closeWithReason("closed")
}

func (rt *SessionRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
	})
}

func (rt *SessionRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *SessionRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RuntimeMetrics 拉取式的觀測快照，不綁任何 metrics SDK。
type RuntimeMetrics struct {
	Sessions    int    `json:"sessions"`
	MaxSessions int    `json:"max_sessions"`
	Created     int64  `json:"created"`
	Evicted     int64  `json:"evicted"`
	Panics      int64  `json:"panics"`
	Closed      bool   `json:"closed"`
	CloseReason string `json:"close_reason"`
}

func (rt *SessionRuntime) Metrics() RuntimeMetrics {
	return RuntimeMetrics{
		Sessions:    rt.Len(),
		MaxSessions: rt.cfg.MaxSessions,
		Created:     rt.created.Load(),
		Evicted:     rt.evicted.Load(),
		Panics:      rt.panics.Load(),
		Closed:      rt.Closed(),
		CloseReason: rt.ClosedReason(),
	}
}

// Done 關閉後會被 close 的 channel。
func (rt *SessionRuntime) Done() <-chan struct{} { return rt.done }
