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

package setting

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/reelab/errs"
)

var (
	ErrDupID   = errs.NewFatal("duplicate machine id")
	ErrDupName = errs.NewFatal("duplicate machine name")
)

// Summary 對外列出機台時的精簡資訊。
type Summary struct {
	ID             MID      `json:"id"              yaml:"id"`
	Name           string   `json:"name"            yaml:"name"`
	Config         string   `json:"config"          yaml:"config"`
	StripLength    int      `json:"strip_length"    yaml:"strip_length"`
	Symbols        []string `json:"symbols"       yaml:"symbols,flow"`
	SpinCost       int      `json:"spin_cost"       yaml:"spin_cost"`
	InitialBalance int      `json:"initial_balance" yaml:"initial_balance"`
}

type entry struct {
	file string
	ms   *MachineSetting
}

// Registry 已載入且驗證過的機台設定。建立後唯讀，可安全地被多個 goroutine 共用。
type Registry struct {
	byID   map[MID]entry
	byName map[string]entry
	names  []string // 依 ID 排序
}

// Load 讀取所有來源中的 .yaml/.yml/.json 設定。
//
// 來源必須是平面目錄；跨來源同檔名、同 ID、同名稱一律失敗，不會留下部分註冊的結果。
func Load(src ...fs.FS) (*Registry, error) {
	mfs, err := newMultiFS(src...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create registry")
	}
	files := make([]string, 0, len(mfs.index))
	for name := range mfs.index {
		files = append(files, name)
	}
	sort.Strings(files)

	r := &Registry{byID: map[MID]entry{}, byName: map[string]entry{}}
	for _, file := range files {
		raw, err := fs.ReadFile(mfs.src[mfs.index[file]], file)
		if err != nil {
			return nil, errs.Wrap(err, "registry read file error")
		}
		ms, err := parseByExt(file, raw)
		if err != nil {
			return nil, errs.Wrap(err, "config "+file)
		}
		ms.MachineName = strings.ToLower(strings.TrimSpace(ms.MachineName))
		if _, ok := r.byID[ms.MachineID]; ok {
			return nil, errs.Wrap(ErrDupID, fmt.Sprintf("config %s: id %d", file, ms.MachineID))
		}
		if _, ok := r.byName[ms.MachineName]; ok {
			return nil, errs.Wrap(ErrDupName, fmt.Sprintf("config %s: name %s", file, ms.MachineName))
		}
		e := entry{file: file, ms: ms}
		r.byID[ms.MachineID] = e
		r.byName[ms.MachineName] = e
	}
	if len(r.byID) == 0 {
		return nil, errs.NewFatal("no machine config found")
	}
	ids := make([]MID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		r.names = append(r.names, r.byID[id].ms.MachineName)
	}
	return r, nil
}

// ByName 名稱不分大小寫。找不到時回傳 errs.ErrNotFound。
func (r *Registry) ByName(name string) (*MachineSetting, error) {
	e, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errs.NotFoundf("machine %q", name)
	}
	return e.ms, nil
}

func (r *Registry) ByID(id MID) (*MachineSetting, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, errs.NotFoundf("machine id %d", id)
	}
	return e.ms, nil
}

// Names 依機台 ID 排序。
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Summaries() []Summary {
	out := make([]Summary, 0, len(r.names))
	for _, n := range r.names {
		e := r.byName[n]
		out = append(out, Summary{
			ID:             e.ms.MachineID,
			Name:           n,
			Config:         e.file,
			StripLength:    e.ms.strip.Len(),
			Symbols:        e.ms.strip.Distinct(),
			SpinCost:       e.ms.Panel.SpinCost,
			InitialBalance: e.ms.Panel.InitialBalance,
		})
	}
	return out
}

func parseByExt(filename string, raw []byte) (*MachineSetting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return GetMachineSettingByYAML(raw)
	case ".json":
		return GetMachineSettingByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}

func isConfigFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}
	m := &multiFS{src: src, index: make(map[string]int, 16)}
	for i := range src {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			if !isConfigFile(path) || strings.HasPrefix(path, ".") {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
