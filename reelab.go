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

// Package reelab 提供單軸 reel 小遊戲的「組裝入口」與「運行入口」。
//
// Lab 把兩個地基組合在一起，並提供建立 Machine / Simulator 的入口：
//  1. Registry：機台設定目錄，由一或多個 fs.FS 內的 YAML/JSON 載入。
//  2. rng.Factory：亂數核心工廠，保證同一個 seed 得到相同的停點序列。
//
// Lab 本身不綁定任何檔案路徑：設定來源一律以 fs.FS 注入（go:embed 或 os.DirFS）。
//
//	lab, _ := reelab.New(rng.Default(), configs.FS)
//	m, _ := lab.NewMachine("classic")
//	m.Press()
//	m.RunToIdle()
package reelab

import (
	"io"
	"io/fs"
	"log/slog"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/setting"
)

// Lab 組裝器。建立後唯讀，可被多個 goroutine 共用。
type Lab struct {
	reg *setting.Registry
	cf  rng.Factory
	log *slog.Logger
}

// New 載入所有設定來源並建立 Lab。
//
// cf 不能為 nil，cfgs 至少一個；任何一份設定解析失敗都會讓 New 失敗（fail-fast）。
func New(cf rng.Factory, cfgs ...fs.FS) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("rng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	reg, err := setting.Load(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{
		reg: reg,
		cf:  cf,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger 之後建立的 Machine 都會沿用此 logger；nil 表示不輸出。
func (l *Lab) SetLogger(log *slog.Logger) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l.log = log
}

func (l *Lab) Logger() *slog.Logger { return l.log }

// NewMachine 以 crypto/rand 產生的 seed 建立機台。
func (l *Lab) NewMachine(name string) (*Machine, error) {
	return l.NewMachineWithSeed(name, rng.NewSeed())
}

// NewMachineWithSeed 同一份設定 + 同一個 seed，停點序列一致。
func (l *Lab) NewMachineWithSeed(name string, seed int64) (*Machine, error) {
	ms, err := l.reg.ByName(name)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(ms, l.cf, seed, false, l.log)
}

func (l *Lab) NewSimulator(name string, seed int64) (*Simulator, error) {
	ms, err := l.reg.ByName(name)
	if err != nil {
		return nil, err
	}
	return newSimulator(ms, l.cf, seed), nil
}

// NewDevSimulator 單機台、可重播的模擬器，只給 dev 路由使用。
func (l *Lab) NewDevSimulator(name string, seed int64) (*DevSimulator, error) {
	ms, err := l.reg.ByName(name)
	if err != nil {
		return nil, err
	}
	m, err := newMachineWithSeed(ms, l.cf, seed, true, l.log)
	if err != nil {
		return nil, err
	}
	return &DevSimulator{m: m}, nil
}

func (l *Lab) Names() []string { return l.reg.Names() }

func (l *Lab) Setting(name string) (*setting.MachineSetting, error) { return l.reg.ByName(name) }

func (l *Lab) Summaries() []setting.Summary { return l.reg.Summaries() }
