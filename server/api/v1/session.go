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
	"strings"
	"time"

	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/panel"
	"github.com/zintix-labs/reelab/server/httperr"
	"github.com/zintix-labs/reelab/server/netsvr"
)

// sessionTimeout 單一 session 操作的期限（含等鎖）
const sessionTimeout = 5 * time.Second

type SessionHandler struct {
	rt      *reelab.SessionRuntime
	log     *slog.Logger
	onPress func(machine, action string)
}

func NewSessionHandler(rt *reelab.SessionRuntime, log *slog.Logger) *SessionHandler {
	return &SessionHandler{rt: rt, log: log}
}

// WithPressObserver 每次 press 成功處理後呼叫 fn（指標用）。
func (sh *SessionHandler) WithPressObserver(fn func(machine, action string)) *SessionHandler {
	sh.onPress = fn
	return sh
}

type createRequest struct {
	Machine string `json:"machine"`
	Seed    *int64 `json:"seed,omitempty"`
}

type sessionResponse struct {
	ID       string          `json:"id,omitempty"`
	Action   string          `json:"action,omitempty"`
	OK       *bool           `json:"ok,omitempty"`
	Snapshot reelab.Snapshot `json:"snapshot"`
}

type betRequest struct {
	Op    string `json:"op"`
	Value int    `json:"value"`
}

func (sh *SessionHandler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(sh.log, msg, err)
	httperr.Errs(w, err)
}

func ctxOf(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), sessionTimeout)
}

// Create POST /v1/sessions
func (sh *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := new(createRequest)
	if err := decodeJSON(w, r, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	name := strings.TrimSpace(req.Machine)
	if name == "" {
		httperr.Errs(w, errs.NewWarn("machine is required"))
		return
	}
	if req.Seed != nil && *req.Seed < 0 {
		httperr.Errs(w, errs.NewWarn("seed must be non-negative"))
		return
	}
	ctx, cancel := ctxOf(r)
	defer cancel()
	id, snap, err := sh.rt.Create(ctx, name, req.Seed)
	if err != nil {
		sh.fail(w, "create session failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Snapshot: snap})
}

// Get GET /v1/sessions/{id}
func (sh *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxOf(r)
	defer cancel()
	id := netsvr.URLParam(r, "id")
	snap, err := sh.rt.Snapshot(ctx, id)
	if err != nil {
		sh.fail(w, "get session failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: snap})
}

// Press POST /v1/sessions/{id}/press
func (sh *SessionHandler) Press(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxOf(r)
	defer cancel()
	id := netsvr.URLParam(r, "id")
	act, snap, err := sh.rt.Press(ctx, id)
	if err != nil {
		sh.fail(w, "press failed", err)
		return
	}
	if sh.onPress != nil {
		sh.onPress(snap.Machine, act.String())
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Action: act.String(), Snapshot: snap})
}

// QuickStop POST /v1/sessions/{id}/quickstop
func (sh *SessionHandler) QuickStop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxOf(r)
	defer cancel()
	id := netsvr.URLParam(r, "id")
	ok, snap, err := sh.rt.QuickStop(ctx, id)
	if err != nil {
		sh.fail(w, "quickstop failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, OK: &ok, Snapshot: snap})
}

// Bet POST /v1/sessions/{id}/bet
//
// 規則上的拒絕（鎖定中、超出範圍）回 200 + ok=false；op 不存在才是 400。
func (sh *SessionHandler) Bet(w http.ResponseWriter, r *http.Request) {
	req := new(betRequest)
	if err := decodeJSON(w, r, req); err != nil {
		httperr.Errs(w, err)
		return
	}
	op, err := panel.ParseBetOp(req.Op)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	ctx, cancel := ctxOf(r)
	defer cancel()
	id := netsvr.URLParam(r, "id")
	ok, snap, err := sh.rt.Bet(ctx, id, op, req.Value)
	if err != nil {
		sh.fail(w, "bet failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, OK: &ok, Snapshot: snap})
}

// Settle POST /v1/sessions/{id}/settle
func (sh *SessionHandler) Settle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := ctxOf(r)
	defer cancel()
	id := netsvr.URLParam(r, "id")
	snap, err := sh.rt.Settle(ctx, id)
	if err != nil {
		sh.fail(w, "settle failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: snap})
}

// Delete DELETE /v1/sessions/{id}
func (sh *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := sh.rt.Delete(netsvr.URLParam(r, "id")); err != nil {
		sh.fail(w, "delete session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
