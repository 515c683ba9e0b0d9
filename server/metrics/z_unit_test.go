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

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/reelab/server/logger"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	b, _ := io.ReadAll(rec.Body)
	return string(b)
}

func TestPressAndRequests(t *testing.T) {
	m := New(nil, nil)
	m.ObservePress("classic", "spin")
	m.ObservePress("classic", "spin")
	m.ObservePress("classic", "quickstop")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	out := scrape(t, m)
	for _, want := range []string{
		`reelab_press_total{action="spin",machine="classic"} 2`,
		`reelab_press_total{action="quickstop",machine="classic"} 1`,
		`reelab_http_request_duration_seconds_count{method="GET",route="unmatched",status="418"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q", want)
		}
	}
}

func TestAsyncLogDropped(t *testing.T) {
	log, ah := logger.NewAsync(8, logger.ModeSilence)
	defer ah.Close()
	out := scrape(t, New(nil, log))
	if !strings.Contains(out, "reelab_log_dropped_total 0") {
		t.Fatalf("dropped counter missing")
	}
}
