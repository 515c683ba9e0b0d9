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

package stats

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/reelab/errs"
)

// Format 報表輸出格式
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat 接受 table / json / yaml（yml），空字串視為 table。
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errs.Warnf("unknown report format %q", s)
	}
}

// Render 把報表寫到 w
type Render[T any] interface {
	Write(w io.Writer, v *T) error
}

type (
	StatReportRender = Render[StatReport]
	EstimatorRender  = Render[EstimatorPlayers]
)

type renderFunc[T any] func(w io.Writer, v *T) error

func (f renderFunc[T]) Write(w io.Writer, v *T) error { return f(w, v) }

func newRender[T any](format string, table renderFunc[T]) (Render[T], error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatJSON:
		return renderFunc[T](writeJSON[T]), nil
	case FormatYAML:
		return renderFunc[T](writeYAML[T]), nil
	default:
		return table, nil
	}
}

// NewStatReportRender 表格只輸出摘要與 strip，不含用時。
func NewStatReportRender(format string) (StatReportRender, error) {
	return newRender[StatReport](format, func(w io.Writer, r *StatReport) error {
		k, m := r.fmtBasic()
		if _, err := io.WriteString(w, fmtTable(r.Summary.MachineName, k, m)); err != nil {
			return err
		}
		if r.Strip == nil {
			return nil
		}
		k, m = r.Strip.fmtStrip()
		_, err := io.WriteString(w, fmtTable("Strip", k, m))
		return err
	})
}

func NewEstimatorRender(format string) (EstimatorRender, error) {
	return newRender[EstimatorPlayers](format, func(w io.Writer, e *EstimatorPlayers) error {
		e.Out(w)
		return nil
	})
}

func writeJSON[T any](w io.Writer, v *T) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML 外層照預設展開，最內層的一維陣列（hit counts、stop hits）改成 [a, b, c]
func writeYAML[T any](w io.Writer, v *T) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return err
	}
	flowInnerSeqs(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(&node)
}

// flowInnerSeqs 回傳 n 是否為 sequence
func flowInnerSeqs(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	nested := false
	for _, c := range n.Content {
		if flowInnerSeqs(c) {
			nested = true
		}
	}
	if n.Kind != yaml.SequenceNode {
		return false
	}
	if !nested {
		n.Style = yaml.FlowStyle
	}
	return true
}
