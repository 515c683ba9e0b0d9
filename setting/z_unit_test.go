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
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/zintix-labs/reelab/configs"
	"github.com/zintix-labs/reelab/errs"
)

const sampleYAML = `
machine_id: 7
machine_name: Sample
strip: "A, b, C, a"
reel:
  symbol_size: 100
  offset: 6
  duration: 2s
  enable_delay: 250
panel:
  initial_balance: 50
  spin_cost: 1
`

const sampleJSON = `{
  "machine_id": 8,
  "machine_name": "json",
  "strip": "x,y,z",
  "reel": {"symbol_size": 10, "duration": "1s", "enable_delay": 100},
  "panel": {"initial_balance": 10, "initial_bet": 5, "spin_cost": 1, "tween_duration": "200ms"}
}`

func TestGetMachineSettingByYAML(t *testing.T) {
	ms, err := GetMachineSettingByYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	if ms.StripValue().Len() != 4 || ms.StripValue().At(0) != "a" {
		t.Fatalf("unexpected strip %v", ms.StripValue())
	}
	rc := ms.ReelConfig()
	if rc.Duration != 2*time.Second || rc.EnableDelay != 250*time.Millisecond || rc.SymbolSize != 100 {
		t.Fatalf("unexpected reel config %+v", rc)
	}
	if pc := ms.PanelConfig(); pc.InitialBalance != 50 || pc.SpinCost != 1 {
		t.Fatalf("unexpected panel config %+v", pc)
	}
}

func TestGetMachineSettingByJSON(t *testing.T) {
	ms, err := GetMachineSettingByJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	if ms.ReelConfig().Duration != time.Second || ms.ReelConfig().EnableDelay != 100*time.Millisecond {
		t.Fatalf("unexpected durations %+v", ms.ReelConfig())
	}
	if ms.PanelConfig().TweenDuration != 200*time.Millisecond {
		t.Fatalf("unexpected tween duration %v", ms.PanelConfig().TweenDuration)
	}
}

func TestInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"short strip":   "machine_name: a\nstrip: \"a,b\"\nreel: {symbol_size: 1}\n",
		"zero size":     "machine_name: a\nstrip: \"a,b,c\"\nreel: {symbol_size: 0}\n",
		"no name":       "strip: \"a,b,c\"\nreel: {symbol_size: 1}\n",
		"bad duration":  "machine_name: a\nstrip: \"a,b,c\"\nreel: {symbol_size: 1, duration: soon}\n",
		"expensive bet": "machine_name: a\nstrip: \"a,b,c\"\nreel: {symbol_size: 1}\npanel: {initial_balance: 5, initial_bet: 9}\n",
	}
	for name, raw := range cases {
		if _, err := GetMachineSettingByYAML([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadRegistry(t *testing.T) {
	r, err := Load(fstest.MapFS{
		"a.yaml":    {Data: []byte(sampleYAML)},
		"b.json":    {Data: []byte(sampleJSON)},
		"notes.txt": {Data: []byte("ignored")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Names(); len(got) != 2 || got[0] != "sample" || got[1] != "json" {
		t.Fatalf("unexpected names %v", got)
	}
	if _, err := r.ByName(" SAMPLE "); err != nil {
		t.Fatalf("lookup should be case-insensitive: %v", err)
	}
	if _, err := r.ByName("missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if ms, err := r.ByID(8); err != nil || ms.MachineName != "json" {
		t.Fatalf("lookup by id: %v %v", ms, err)
	}
	sum := r.Summaries()
	if len(sum) != 2 || sum[0].Config != "a.yaml" || sum[0].StripLength != 4 || len(sum[0].Symbols) != 3 {
		t.Fatalf("unexpected summaries %+v", sum)
	}
}

func TestLoadRejectsDuplicates(t *testing.T) {
	_, err := Load(fstest.MapFS{
		"a.yaml": {Data: []byte(sampleYAML)},
		"b.yaml": {Data: []byte(sampleYAML)},
	})
	if !errors.Is(err, ErrDupID) {
		t.Fatalf("expected duplicate id, got %v", err)
	}
	_, err = Load(fstest.MapFS{"a.yaml": {Data: []byte(sampleYAML)}}, fstest.MapFS{"a.yaml": {Data: []byte(sampleJSON)}})
	if err == nil {
		t.Fatalf("expected duplicate file error")
	}
	_, err = Load(fstest.MapFS{"sub/a.yaml": {Data: []byte(sampleYAML)}})
	if err == nil {
		t.Fatalf("expected flat fs error")
	}
	if _, err := Load(fstest.MapFS{}); err == nil {
		t.Fatalf("expected error for empty fs")
	}
}

func TestEmbeddedConfigs(t *testing.T) {
	r, err := Load(configs.FS)
	if err != nil {
		t.Fatal(err)
	}
	ms, err := r.ByName("classic")
	if err != nil {
		t.Fatal(err)
	}
	if ms.StripValue().Len() != 37 {
		t.Fatalf("classic strip should have 37 symbols, got %d", ms.StripValue().Len())
	}
	if d := ms.StripValue().Distinct(); len(d) != 5 {
		t.Fatalf("expected 5 distinct symbols, got %v", d)
	}
}
