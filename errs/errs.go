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

// Package errs 定義 reelab 全域共用的分級錯誤。
//
// 分級只有三種語意：
//   - Fatal：建構期前置條件被破壞（例如 strip 太短、symbol size <= 0），物件不可用。
//   - Warn ：呼叫端傳入的參數不合法（例如找不到機台名稱、bet 操作不存在），可重試。
//   - Log  ：僅供記錄，不影響流程。
//
// 注意：遊戲規則上的「守門」（spin 中再按 spin、下注超出範圍）不是錯誤，
// 由各元件以 bool 回傳或直接忽略，不會經過本包。
package errs

import (
	"errors"
	"fmt"
)

// Level 錯誤分級
type Level uint8

const (
	None Level = iota
	Fatal
	Warn
	Log
)

func (l Level) String() string {
	switch l {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	case Log:
		return "log"
	default:
		return ""
	}
}

// E 是統一的錯誤型別。
type E struct {
	Msg   string
	Extra string
	Cause error
	Lv    Level
}

func (e *E) Error() string {
	s := "errlv=" + e.Lv.String() + " " + e.Msg
	if e.Extra != "" {
		s += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return s
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 以「同一個 sentinel 指標」或「同級同訊息」視為相等。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return e == t || (e.Lv == t.Lv && e.Msg == t.Msg && t.Cause == nil && t.Extra == "")
}

// ErrNotFound 查無資源（機台設定、session）。HTTP 邊界層會映射成 404。
var ErrNotFound = &E{Msg: "not found", Lv: Warn}

func New(lv Level, msg string) *E { return &E{Msg: msg, Lv: lv} }

func NewFatal(msg string) *E { return New(Fatal, msg) }

func NewWarn(msg string) *E { return New(Warn, msg) }

func NewLog(msg string) *E { return New(Log, msg) }

func Fatalf(format string, a ...any) *E { return NewFatal(fmt.Sprintf(format, a...)) }

func Warnf(format string, a ...any) *E { return NewWarn(fmt.Sprintf(format, a...)) }

// NotFoundf 建立一個會被 errors.Is(err, ErrNotFound) 命中的錯誤。
func NotFoundf(format string, a ...any) *E {
	return &E{Msg: ErrNotFound.Msg, Extra: fmt.Sprintf(format, a...), Cause: ErrNotFound, Lv: Warn}
}

// Wrap 包裝底層錯誤。
//
// 若 cause 已經是 *E，沿用其分級；標準庫或三方依賴的錯誤一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	lv := Fatal
	if e, ok := AsErr(cause); ok {
		lv = e.Lv
	}
	return &E{Msg: msg, Cause: cause, Lv: lv}
}

// LevelOf 回傳錯誤鏈上第一個 *E 的分級，非本包錯誤回傳 None。
func LevelOf(err error) Level {
	if e, ok := AsErr(err); ok {
		return e.Lv
	}
	return None
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
