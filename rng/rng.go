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

// Package rng 提供 reel 選停點用的可重現亂數核心。
//
// 每台 Machine 持有一個 Core；相同 seed 必須得到相同的停點序列，
// 並可透過 Snapshot/Restore 在任意時間點保存與回放（session 重播、測試）。
package rng

import (
	"crypto/rand"
	"encoding/base64"
	"math"
	"math/big"
	"sync/atomic"

	"github.com/zintix-labs/reelab/errs"
)

// Source 定義 Core 所需的亂數來源。
type Source interface {
	Uint64() uint64
	// IntN 回傳 [0,n) 的亂數，n <= 0 回傳 -1。
	IntN(n int) int
	// Float64 回傳 [0,1) 的亂數。
	Float64() float64
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// Factory 以 seed 建立 Source。
//
// 合約：同一實作同一版本下 New(seed) 必須是決定性的。
type Factory interface {
	New(seed int64) Source
}

// PCGFactory 預設的 Factory，產生 PCG64。
type PCGFactory struct{}

func (PCGFactory) New(seed int64) Source {
	return newPCG64WithSeed(seed)
}

func Default() Factory {
	return PCGFactory{}
}

// Core 封裝 Source 並提供 reel 需要的取樣方法。
type Core struct {
	Source
}

func New(src Source) *Core {
	return &Core{Source: src}
}

// Index 均勻抽出 [0,n) 的停點。
func (c *Core) Index(n int) int {
	return c.IntN(n)
}

// SnapshotB64 以 base64url 回傳當下狀態，方便放進 JSON。
func (c *Core) SnapshotB64() (string, error) {
	b, err := c.Snapshot()
	if err != nil {
		return "", errs.Wrap(err, "rng snapshot failed")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RestoreB64 還原 SnapshotB64 的輸出。
func (c *Core) RestoreB64(s string) error {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return errs.Warnf("decode rng snapshot failed: %v", err)
	}
	if err := c.Restore(b); err != nil {
		return errs.Warnf("restore rng snapshot failed: %v", err)
	}
	return nil
}

// NewSeed 以 crypto/rand 產生非負 seed。
func NewSeed() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 1
	}
	return n.Int64()
}

const mask63 = uint64(1<<63) - 1

// SeedMaker 從一個 base seed 派生不重複的子 seed，可被多個 goroutine 同時呼叫。
type SeedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func NewSeedMaker(seed int64) *SeedMaker {
	s := &SeedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// Next 推進一次全週期 LCG (mod 2^63) 並以可逆混洗打散。
func (s *SeedMaker) Next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next))
		}
	}
}

func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
