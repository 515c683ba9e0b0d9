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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/server/api"
	"github.com/zintix-labs/reelab/server/app"
	"github.com/zintix-labs/reelab/server/netsvr"
	"github.com/zintix-labs/reelab/server/svrcfg"
)

// Run 以預設的 chi server 組裝並啟動服務，阻塞直到收到終止信號。
//
// 所有依賴都透過 SvrCfg 注入；Run 不讀取任何檔案路徑或環境變數。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的 logger 不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但由呼叫端注入自訂的 NetSvr（自訂 listener、TLS、timeout 等）。
//
// svr 不可為 nil；若是 ChiAdapter 會要求 Ready() 為 true。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	sCfg.Lab.SetLogger(sCfg.Log)
	rt := sCfg.Lab.NewRuntime(sCfg.RuntimeConfig())
	api.RegisterRoutes(svr, sCfg, rt)

	// runtime 先註冊、後關閉：server 停止收請求後才清掉 session
	a := app.NewWith(app.WaitClose(rt.Done(), rt.Close), svr)
	a.SetLogger(sCfg.Log)
	sCfg.Log.Info("[reelab] listening", slog.String("addr", svr.Address()), slog.Any("machines", sCfg.Lab.Names()))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
