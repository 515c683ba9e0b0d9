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

package rng

import (
	"math/bits"
	r2 "math/rand/v2"
)

// pcg64 以 math/rand/v2 的 PCG 為底，補上無偏 bounded 取樣與狀態序列化。
type pcg64 struct {
	g *r2.PCG
}

func newPCG64WithSeed(seed int64) *pcg64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	return &pcg64{g: r2.NewPCG(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))}
}

func (p *pcg64) Uint64() uint64 { return p.g.Uint64() }

func (p *pcg64) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return int(p.below(uint64(n)))
}

// Float64 53-bit 精度
func (p *pcg64) Float64() float64 {
	return float64(p.Uint64()<<11>>11) / (1 << 53)
}

func (p *pcg64) Snapshot() ([]byte, error) { return p.g.MarshalBinary() }

func (p *pcg64) Restore(b []byte) error { return p.g.UnmarshalBinary(b) }

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// below 回傳 [0,n) 的無偏亂數（乘法高位 + 拒絕採樣）。
func (p *pcg64) below(n uint64) uint64 {
	if n&(n-1) == 0 {
		return p.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(p.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(p.Uint64(), n)
		}
	}
	return hi
}
