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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/reelab/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"deadline", errs.Wrap(context.DeadlineExceeded, "sim"), http.StatusGatewayTimeout},
		{"canceled", errs.Wrap(context.Canceled, "wait lock"), http.StatusRequestTimeout},
		{"not found", errs.Wrap(errs.NotFoundf("session %s", "x"), "get"), http.StatusNotFound},
		{"warn", errs.NewWarn("bad op"), http.StatusBadRequest},
		{"fatal", errs.NewFatal("broken"), http.StatusInternalServerError},
		{"foreign", errors.New("io"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Errorf("%s: got %d want %d", c.name, got, c.want)
		}
	}
}

func TestErrsWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Errs(rec, errs.NewWarn("bad op"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	var b Body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatal(err)
	}
	if b.Level != "warn" || b.Status != 400 {
		t.Fatalf("unexpected body: %+v", b)
	}
}
