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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/server/logger"
)

const (
	DefaultAddr = ":5808"
	// DefaultSimLimit /v1/sim 單次請求 players*presses 的上限
	DefaultSimLimit = 2_000_000
)

type SvrCfg struct {
	Log         *slog.Logger
	Addr        string
	Lab         *reelab.Lab
	SessionTTL  time.Duration
	MaxSessions int
	SimLimit    int
	// CORSOrigins 允許的瀏覽器來源；nil 使用 ["*"]，空 slice 關閉 CORS
	CORSOrigins []string
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	if sc.SessionTTL <= 0 {
		sc.SessionTTL = reelab.DefaultSessionTTL
	}
	if sc.MaxSessions <= 0 {
		sc.MaxSessions = reelab.DefaultMaxSessions
	}
	if sc.SimLimit <= 0 {
		sc.SimLimit = DefaultSimLimit
	}
	if sc.CORSOrigins == nil {
		sc.CORSOrigins = []string{"*"}
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}

// RuntimeConfig 轉成 session runtime 的設定。
func (sc *SvrCfg) RuntimeConfig() reelab.RuntimeConfig {
	return reelab.RuntimeConfig{TTL: sc.SessionTTL, MaxSessions: sc.MaxSessions}
}
