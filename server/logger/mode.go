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

// Package logger 組裝 reelab server 使用的 slog.Logger。
//
// 三種模式：dev（text、debug、stderr）、prod（json、info、stdout）、silence（全部丟棄）。
// 任何 slog.Handler 都可以再包一層 AsyncHandler 變成非阻塞寫出。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/zintix-labs/reelab/errs"
)

type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

func (m LogMode) String() string {
	switch m {
	case ModeDev:
		return "dev"
	case ModeProd:
		return "prod"
	case ModeSilence:
		return "silence"
	default:
		return "unknown"
	}
}

// ParseMode 解析 CLI 的 -log 參數（dev / prod / silence）。
func ParseMode(s string) (LogMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dev":
		return ModeDev, nil
	case "prod", "json":
		return ModeProd, nil
	case "silence", "silent", "off":
		return ModeSilence, nil
	default:
		return ModeDev, errs.Warnf("unknown log mode: %q", s)
	}
}

// Options 覆寫模式預設值；零值欄位沿用模式預設。
type Options struct {
	Out   io.Writer
	Level slog.Leveler
}

// NewHandler 依模式建立同步 handler。
func NewHandler(mode LogMode, opt Options) slog.Handler {
	switch mode {
	case ModeSilence:
		return slog.DiscardHandler
	case ModeProd:
		// json 給 log 收集端解析
		return slog.NewJSONHandler(orWriter(opt.Out, os.Stdout), &slog.HandlerOptions{
			Level: orLevel(opt.Level, slog.LevelInfo),
		})
	default:
		return slog.NewTextHandler(orWriter(opt.Out, os.Stderr), &slog.HandlerOptions{
			Level:       orLevel(opt.Level, slog.LevelDebug),
			ReplaceAttr: devTime,
		})
	}
}

// NewAsync 以模式預設值建立 handler 並包上 AsyncHandler。
// 呼叫端在結束前需呼叫 Close 把隊列寫完。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(NewHandler(mode, Options{}), buf)
	return slog.New(ah), ah
}

// dev 模式只留時分秒毫秒
func devTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format(time.TimeOnly+".000"))
	}
	return a
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

func orLevel(l, def slog.Leveler) slog.Leveler {
	if l == nil {
		return def
	}
	return l
}
