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

// Package v1 提供 /v1 的 HTTP handlers：機台列表、遊戲 session 與模擬。
package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/server/httperr"
)

// maxBody 請求 body 上限
const maxBody = 1 << 20

// decodeJSON 解析 body；空 body 視為零值。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errs.Warnf("invalid json: %v", err)
	}
	return nil
}

// writeJSON 先完整編碼再寫出，避免寫到一半才出錯。
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response failed"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
