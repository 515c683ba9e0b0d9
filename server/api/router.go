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
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/server/api/dev"
	v1 "github.com/zintix-labs/reelab/server/api/v1"
	"github.com/zintix-labs/reelab/server/metrics"
	"github.com/zintix-labs/reelab/server/netsvr"
	"github.com/zintix-labs/reelab/server/netsvr/middleware"
	"github.com/zintix-labs/reelab/server/svrcfg"
)

// RegisterRoutes 註冊 middleware 與全部路由；rt 由呼叫端建立並負責關閉。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, rt *reelab.SessionRuntime) {
	m := metrics.New(rt, sCfg.Log)
	registerMiddleware(svr, sCfg, m) // 1. 註冊 middleware
	registerIndex(svr, sCfg, rt, m)  // 2. 主頁、健康檢查與指標
	dev.Register(svr, sCfg)          // 3. 開發者工具
	registerV1API(svr, sCfg, rt, m)  // 4. 註冊 v1 api
}

func registerMiddleware(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, m *metrics.Metrics) {
	svr.Use(middleware.CORS(sCfg.CORSOrigins))
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(m.Middleware)
	svr.Use(middleware.Recover(sCfg.Log))
	svr.Use(middleware.Compression)
}

func registerIndex(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, rt *reelab.SessionRuntime, m *metrics.Metrics) {
	svr.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service":  "reelab",
			"machines": sCfg.Lab.Names(),
		})
	})
	svr.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		rm := rt.Metrics()
		status := http.StatusOK
		if rm.Closed {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(rm)
	})
	svr.Get("/metrics", m.Handler().ServeHTTP)
}

func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, rt *reelab.SessionRuntime, met *metrics.Metrics) {
	m := v1.NewMachineHandler(sCfg.Lab)
	s := v1.NewSessionHandler(rt, sCfg.Log).WithPressObserver(met.ObservePress)
	sim := v1.NewSimHandler(sCfg.Lab, sCfg.SimLimit, sCfg.Log)
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/machines", m.Machines)

		vOne.Post("/sessions", s.Create)
		vOne.Get("/sessions/{id}", s.Get)
		vOne.Delete("/sessions/{id}", s.Delete)
		vOne.Post("/sessions/{id}/press", s.Press)
		vOne.Post("/sessions/{id}/quickstop", s.QuickStop)
		vOne.Post("/sessions/{id}/bet", s.Bet)
		vOne.Post("/sessions/{id}/settle", s.Settle)

		vOne.Post("/sim", sim.Sim)
	})
}
