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

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/configs"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/server/netsvr"
	"github.com/zintix-labs/reelab/server/svrcfg"
)

type snapView struct {
	Reel struct {
		CurrentIndex int  `json:"current_index"`
		Spinning     bool `json:"spinning"`
	} `json:"reel"`
	Symbols []string `json:"symbols"`
	Panel   struct {
		Balance int  `json:"balance"`
		Bet     int  `json:"bet"`
		Locked  bool `json:"locked"`
	} `json:"panel"`
	Enabled bool `json:"enabled"`
}

type sessionView struct {
	ID       string   `json:"id"`
	Action   string   `json:"action"`
	OK       *bool    `json:"ok"`
	Snapshot snapView `json:"snapshot"`
}

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	lab, err := reelab.New(rng.Default(), configs.FS)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &svrcfg.SvrCfg{Log: slog.New(slog.NewTextHandler(io.Discard, nil)), Lab: lab, SimLimit: 10_000}
	if err := cfg.Valid(); err != nil {
		t.Fatal(err)
	}
	rt := lab.NewRuntime(cfg.RuntimeConfig())
	t.Cleanup(rt.Close)
	svr := netsvr.NewChiServer("")
	RegisterRoutes(svr, cfg, rt)
	return svr.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestMachines(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodGet, "/v1/machines", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	sums := decode[[]map[string]any](t, rec)
	if len(sums) != 2 || sums[0]["name"] != "classic" {
		t.Fatalf("unexpected summaries: %v", sums)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestSessionFlow(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodPost, "/v1/sessions", `{"machine":"Classic","seed":11}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[sessionView](t, rec)
	if created.ID == "" || created.Snapshot.Panel.Balance != 100 || !created.Snapshot.Enabled {
		t.Fatalf("unexpected create: %+v", created)
	}
	base := "/v1/sessions/" + created.ID

	rec = do(t, h, http.MethodPost, base+"/bet", `{"op":"set","value":5}`)
	if v := decode[sessionView](t, rec); rec.Code != http.StatusOK || v.OK == nil || !*v.OK || v.Snapshot.Panel.Bet != 5 {
		t.Fatalf("bet: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, base+"/press", "")
	pressed := decode[sessionView](t, rec)
	if pressed.Action != "spin" || !pressed.Snapshot.Reel.Spinning || pressed.Snapshot.Panel.Balance != 94 {
		t.Fatalf("press: %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, base+"/bet", `{"op":"inc"}`)
	if v := decode[sessionView](t, rec); rec.Code != http.StatusOK || v.OK == nil || *v.OK {
		t.Fatalf("bet while spinning should be refused: %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, base+"/settle", "")
	settled := decode[sessionView](t, rec)
	if settled.Snapshot.Reel.Spinning || settled.Snapshot.Panel.Locked || len(settled.Snapshot.Symbols) != 3 {
		t.Fatalf("settle: %s", rec.Body.String())
	}

	if rec = do(t, h, http.MethodPost, base+"/bet", `{"op":"double"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown op should be 400, got %d", rec.Code)
	}
	if rec = do(t, h, http.MethodDelete, base, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec = do(t, h, http.MethodGet, base, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted session should be 404, got %d", rec.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	h := newHandler(t)
	if rec := do(t, h, http.MethodPost, "/v1/sessions", `{"machine":"nope"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown machine should be 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/sessions", `{"machine":"classic","extra":1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field should be 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/v1/sessions/abc/press", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("bad id should be 404, got %d", rec.Code)
	}
}

func TestSim(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodPost, "/v1/sim", `{"machine":"turbo","players":10,"presses":50,"workers":2,"bet":5,"seed":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sim: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Seed  int64 `json:"seed"`
		Stats struct {
			Summary struct {
				Rounds int
			}
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Seed != 3 || out.Stats.Summary.Rounds == 0 {
		t.Fatalf("unexpected sim body: %s", rec.Body.String())
	}
	if rec = do(t, h, http.MethodPost, "/v1/sim", `{"machine":"turbo","players":1000,"presses":1000}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("over limit should be 400, got %d", rec.Code)
	}
}

func TestDevSpinReplay(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodPost, "/dev/spin", `{"machine":"classic","rounds":5,"seed":"8"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("dev spin: %d %s", rec.Code, rec.Body.String())
	}
	first := decode[reelab.DevSpinReport](t, rec)
	rec = do(t, h, http.MethodPost, "/dev/spin", `{"machine":"classic","rounds":5,"snap":"`+first.Before+`"}`)
	again := decode[reelab.DevSpinReport](t, rec)
	if again.After != first.After || len(again.Results) != 5 {
		t.Fatalf("replay mismatch")
	}
}

func TestGzipResponse(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/machines", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	var sums []map[string]any
	if err := json.NewDecoder(zr).Decode(&sums); err != nil || len(sums) != 2 {
		t.Fatalf("gzip body: %v", err)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodGet, "/v1/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status %d", rec.Code)
	}
	if body := decode[map[string]any](t, rec); body["status"] != float64(http.StatusNotFound) {
		t.Fatalf("unexpected 404 body %v", body)
	}
	rec = do(t, h, http.MethodPut, "/v1/machines", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method status %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodPost, "/v1/sessions", `{"machine":"turbo","seed":5}`)
	id := decode[sessionView](t, rec).ID
	do(t, h, http.MethodPost, "/v1/sessions/"+id+"/press", "")

	rec = do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`reelab_press_total{action="spin",machine="turbo"} 1`,
		"reelab_sessions 1",
		"reelab_sessions_created_total 1",
		`route="/v1/sessions/{id}/press"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight headers: %v", rec.Header())
	}
}
