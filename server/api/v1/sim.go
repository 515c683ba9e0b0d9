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

package v1

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/server/httperr"
	"github.com/zintix-labs/reelab/stats"
)

// simTimeout /v1/sim 的計算期限
const simTimeout = 30 * time.Second

type SimHandler struct {
	lab   *reelab.Lab
	limit int
	log   *slog.Logger
}

// NewSimHandler limit 為 players*presses 的上限。
func NewSimHandler(lab *reelab.Lab, limit int, log *slog.Logger) *SimHandler {
	return &SimHandler{lab: lab, limit: limit, log: log}
}

type simRequest struct {
	Machine   string `json:"machine"`
	Players   int    `json:"players"`
	Presses   int    `json:"presses"`
	Workers   int    `json:"workers"`
	Bet       int    `json:"bet"`
	QuickStop bool   `json:"quickstop"`
	Seed      *int64 `json:"seed,omitempty"`
}

type simResponse struct {
	Seed     int64                   `json:"seed"`
	Stats    *stats.StatReport       `json:"stats"`
	Players  *stats.EstimatorPlayers `json:"players"`
	UsedTime int64                   `json:"used_ms"`
}

// Sim POST /v1/sim
func (sh *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	req := new(simRequest)
	if err := decodeJSON(w, r, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	name := strings.TrimSpace(req.Machine)
	if name == "" {
		httperr.Errs(w, errs.NewWarn("machine is required"))
		return
	}
	if req.Players < 1 || req.Presses < 1 {
		httperr.Errs(w, errs.NewWarn("players and presses must > 0"))
		return
	}
	if req.Players > sh.limit/req.Presses {
		httperr.Errs(w, errs.Warnf("players*presses must <= %d", sh.limit))
		return
	}
	seed := rng.NewSeed()
	if req.Seed != nil {
		if *req.Seed < 0 {
			httperr.Errs(w, errs.NewWarn("seed must be non-negative"))
			return
		}
		seed = *req.Seed
	}
	sim, err := sh.lab.NewSimulator(name, seed)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build simulator err: "+name))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), simTimeout)
	defer cancel()
	st, est, used, err := sim.SimPlayers(ctx, reelab.SimOptions{
		Players:   req.Players,
		Presses:   req.Presses,
		Workers:   min(max(req.Workers, 0), runtime.NumCPU()),
		Bet:       req.Bet,
		QuickStop: req.QuickStop,
	})
	if err != nil {
		httperr.Log(sh.log, "simulate failed", err)
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}
	writeJSON(w, http.StatusOK, simResponse{Seed: seed, Stats: st, Players: est, UsedTime: used.Milliseconds()})
}
