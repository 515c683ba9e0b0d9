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

// Package metrics 以 Prometheus 暴露 server 指標：
// session runtime 計數、HTTP 延遲、各機台的按鈕動作，以及非同步 log 的丟棄數。
package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/server/logger"
)

const namespace = "reelab"

// Metrics 使用獨立 registry，同一個 process 可以建立多份（測試）。
type Metrics struct {
	reg      *prometheus.Registry
	requests *prometheus.HistogramVec
	presses  *prometheus.CounterVec
}

func New(rt *reelab.SessionRuntime, log *slog.Logger) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 請求延遲",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		presses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "press_total",
			Help:      "play button 動作（spin / quickstop / rejected）",
		}, []string{"machine", "action"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.presses,
	)
	if rt != nil {
		m.reg.MustRegister(runtimeCollectors(rt)...)
	}
	if log != nil {
		if ah, ok := log.Handler().(*logger.AsyncHandler); ok && ah.Ready() {
			m.reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_dropped_total",
				Help:      "非同步 log 隊列滿而丟棄的筆數",
			}, func() float64 { return float64(ah.Dropped()) }))
		}
	}
	return m
}

func runtimeCollectors(rt *reelab.SessionRuntime) []prometheus.Collector {
	gauge := func(name, help string, f func(reelab.RuntimeMetrics) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help},
			func() float64 { return f(rt.Metrics()) })
	}
	counter := func(name, help string, f func(reelab.RuntimeMetrics) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help},
			func() float64 { return f(rt.Metrics()) })
	}
	return []prometheus.Collector{
		gauge("sessions", "目前存活的 session 數", func(m reelab.RuntimeMetrics) float64 { return float64(m.Sessions) }),
		gauge("sessions_max", "session 上限", func(m reelab.RuntimeMetrics) float64 { return float64(m.MaxSessions) }),
		counter("sessions_created_total", "建立過的 session 數", func(m reelab.RuntimeMetrics) float64 { return float64(m.Created) }),
		counter("sessions_evicted_total", "閒置逾時被清除的 session 數", func(m reelab.RuntimeMetrics) float64 { return float64(m.Evicted) }),
		counter("session_panics_total", "操作中 panic 而被丟棄的 session 數", func(m reelab.RuntimeMetrics) float64 { return float64(m.Panics) }),
	}
}

// Handler /metrics；壓縮交給外層 middleware
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg, DisableCompression: true})
}

// ObservePress 記錄一次 play button 動作
func (m *Metrics) ObservePress(machine, action string) {
	m.presses.WithLabelValues(machine, action).Inc()
}

// Middleware 以 chi 的 route pattern 記錄延遲，避免 session id 撐爆 label。
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
