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

// Package dev 提供開發者工具路由：可重播的單機台連續 spin。
//
// Routes：
//   - GET  /dev/meta ：機台設定摘要。
//   - POST /dev/spin ：以 seed（或 RNG 快照）連續按 N 次，回傳逐局結果與前後快照。
package dev

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/server/httperr"
	"github.com/zintix-labs/reelab/server/netsvr"
	"github.com/zintix-labs/reelab/server/svrcfg"
)

// devRequest Dev 工具的輸入。
//
// Seed 為 int64 字串，空字串自動產生；Snap 為 base64url 的 RNG 快照，
// 提供 Snap 時以 Snap 還原為準。
type devRequest struct {
	Machine string `json:"machine"`
	Bet     int    `json:"bet"`
	Rounds  int    `json:"rounds"`
	Seed    string `json:"seed"`
	Snap    string `json:"snap"`
}

type devResponse struct {
	Seed int64 `json:"seed,string"`
	reelab.DevSpinReport
}

func Register(svr netsvr.NetRouter, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev/meta", devMeta(cfg))
	svr.Post("/dev/spin", devSpin(cfg))
}

func devMeta(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg.Lab.Summaries())
	}
}

func devSpin(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		name := strings.TrimSpace(req.Machine)
		if name == "" {
			httperr.Errs(w, errs.NewWarn("machine is required"))
			return
		}
		if req.Rounds < 1 {
			httperr.Errs(w, errs.NewWarn("rounds is required"))
			return
		}
		seed, err := resolveSeed(req.Seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		sim, err := cfg.Lab.NewDevSimulator(name, seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report reelab.DevSpinReport
		if snap := strings.TrimSpace(req.Snap); snap != "" {
			report, err = sim.RestoreSpins(snap, req.Bet, req.Rounds)
		} else {
			report, err = sim.Spins(req.Bet, req.Rounds)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(devResponse{Seed: seed, DevSpinReport: report})
	}
}

// resolveSeed 空字串自動產生；非空必須為非負 int64。
func resolveSeed(seed string) (int64, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return rng.NewSeed(), nil
	}
	v, err := strconv.ParseInt(seed, 10, 64)
	if err != nil || v < 0 {
		return 0, errs.NewWarn("seed must be non-negative int64")
	}
	return v, nil
}
