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

// Package setting 讀取並驗證機台設定（YAML / JSON），並把它們註冊成可依名稱、
// 依 ID 查詢的 Registry。
package setting

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/panel"
	"github.com/zintix-labs/reelab/reel"
	"github.com/zintix-labs/reelab/strip"
)

// MID 機台 ID
type MID uint

type MachineSetting struct {
	MachineID   MID          `yaml:"machine_id"   json:"machine_id"`
	MachineName string       `yaml:"machine_name" json:"machine_name"`
	Strip       string       `yaml:"strip"        json:"strip"`
	Reel        ReelSetting  `yaml:"reel"         json:"reel"`
	Panel       PanelSetting `yaml:"panel"        json:"panel"`

	strip *strip.Strip
}

type ReelSetting struct {
	SymbolSize       float64  `yaml:"symbol_size"        json:"symbol_size"`
	Offset           float64  `yaml:"offset"             json:"offset"`
	Duration         Duration `yaml:"duration"           json:"duration"`
	Rounds           int      `yaml:"rounds"             json:"rounds"`
	FastForwardScale float64  `yaml:"fast_forward_scale" json:"fast_forward_scale"`
	EnableDelay      Duration `yaml:"enable_delay"       json:"enable_delay"`
}

type PanelSetting struct {
	InitialBalance int      `yaml:"initial_balance" json:"initial_balance"`
	InitialBet     int      `yaml:"initial_bet"     json:"initial_bet"`
	SpinCost       int      `yaml:"spin_cost"       json:"spin_cost"`
	BetStep        int      `yaml:"bet_step"        json:"bet_step"`
	TweenDuration  Duration `yaml:"tween_duration"  json:"tween_duration"`
}

// GetMachineSettingByYAML
// 會讀取 YAML 設定、解析 strip 並執行基本檢查後回傳
func GetMachineSettingByYAML(data []byte) (*MachineSetting, error) {
	ms := &MachineSetting{}
	if err := yaml.Unmarshal(data, ms); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}
	if err := ms.init(); err != nil {
		return nil, errs.Wrap(err, "machine setting initialized err")
	}
	return ms, nil
}

// GetMachineSettingByJSON
// 會讀取 Json 設定、解析 strip 並執行基本檢查後回傳
func GetMachineSettingByJSON(data []byte) (*MachineSetting, error) {
	ms := &MachineSetting{}
	if err := json.Unmarshal(data, ms); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}
	if err := ms.init(); err != nil {
		return nil, errs.Wrap(err, "machine setting initialized err")
	}
	return ms, nil
}

func (ms *MachineSetting) init() error {
	s, err := strip.Parse(ms.Strip)
	if err != nil {
		return err
	}
	ms.strip = s
	return ms.valid()
}

// valid 執行最基本的設定檔檢查；其餘預設值由 reel / panel 各自補齊。
func (ms *MachineSetting) valid() error {
	if ms.MachineName == "" {
		return errs.NewFatal("machine_name required")
	}
	r := ms.Reel
	if r.SymbolSize <= 0 {
		return errs.NewFatal(fmt.Sprintf("machine_name: %s err:symbol_size must be > 0", ms.MachineName))
	}
	if r.Duration < 0 || r.EnableDelay < 0 || r.Rounds < 0 || r.FastForwardScale < 0 {
		return errs.NewFatal(fmt.Sprintf("machine_name: %s err:negative reel timing", ms.MachineName))
	}
	if err := ms.PanelConfig().Valid(); err != nil {
		return errs.Wrap(err, "machine_name: "+ms.MachineName)
	}
	return nil
}

// StripValue 解析後的 strip，設定檔未經 init 時為 nil。
func (ms *MachineSetting) StripValue() *strip.Strip { return ms.strip }

func (ms *MachineSetting) ReelConfig() reel.Config {
	r := ms.Reel
	return reel.Config{
		SymbolSize:       r.SymbolSize,
		Offset:           r.Offset,
		Duration:         r.Duration.Std(),
		Rounds:           r.Rounds,
		FastForwardScale: r.FastForwardScale,
		EnableDelay:      r.EnableDelay.Std(),
	}
}

func (ms *MachineSetting) PanelConfig() panel.Config {
	p := ms.Panel
	return panel.Config{
		InitialBalance: p.InitialBalance,
		InitialBet:     p.InitialBet,
		SpinCost:       p.SpinCost,
		BetStep:        p.BetStep,
		TweenDuration:  p.TweenDuration.Std(),
	}
}
