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

package netsvr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/server/httperr"
)

const defaultAddr string = ":5808"

// Timeouts http.Server 的各項期限
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// DefaultTimeouts Write 放寬到 60s，/v1/sim 大量玩家時需要較長計算時間
var DefaultTimeouts = Timeouts{
	ReadHeader: 5 * time.Second,
	Read:       10 * time.Second,
	Write:      60 * time.Second,
	Idle:       120 * time.Second,
}

// ChiAdapter 以 chi 實作 NetSvr。
type ChiAdapter struct {
	chiRouter
	server *http.Server
	addr   string
}

// chiRouter 只有路由能力，Group 的回呼拿到的是它
type chiRouter struct {
	r chi.Router
}

// NewChiServer 以 DefaultTimeouts 建立 ChiAdapter，addr 為空時使用 :5808。
func NewChiServer(addr string) *ChiAdapter {
	return NewChiServerWith(addr, DefaultTimeouts)
}

func NewChiServerWith(addr string, to Timeouts) *ChiAdapter {
	if addr == "" {
		addr = defaultAddr
	}
	cr := chi.NewRouter()
	cr.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperr.Errs(w, errs.NotFoundf("route %s %s", r.Method, r.URL.Path))
	})
	cr.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperr.WriteStatus(w, http.StatusMethodNotAllowed, errs.Warnf("method %s not allowed on %s", r.Method, r.URL.Path))
	})
	return &ChiAdapter{
		chiRouter: chiRouter{r: cr},
		server: &http.Server{
			Addr:              addr,
			Handler:           cr,
			ReadHeaderTimeout: to.ReadHeader,
			ReadTimeout:       to.Read,
			WriteTimeout:      to.Write,
			IdleTimeout:       to.Idle,
		},
		addr: addr,
	}
}

func (c *ChiAdapter) Ready() bool {
	if c == nil || c.r == nil || c.server == nil || c.server.Handler == nil {
		return false
	}
	_, _, err := net.SplitHostPort(c.addr)
	return err == nil
}

// Run 阻塞直到 server 關閉；正常 Shutdown 不視為錯誤。
func (c *ChiAdapter) Run() error {
	if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Address() string { return c.addr }

// Handler 回傳根 router，httptest 直接掛載。
func (c *ChiAdapter) Handler() http.Handler { return c.r }

func (c chiRouter) Use(mw func(http.Handler) http.Handler) { c.r.Use(mw) }
func (c chiRouter) Get(path string, h http.HandlerFunc)    { c.r.Get(path, h) }
func (c chiRouter) Post(path string, h http.HandlerFunc)   { c.r.Post(path, h) }
func (c chiRouter) Put(path string, h http.HandlerFunc)    { c.r.Put(path, h) }
func (c chiRouter) Delete(path string, h http.HandlerFunc) { c.r.Delete(path, h) }

func (c chiRouter) Group(path string, fn func(NetRouter)) {
	c.r.Route(path, func(r chi.Router) { fn(chiRouter{r: r}) })
}

// URLParam 讀取路徑參數（例如 /sessions/{id}）。
func URLParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
