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

package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"", "cpu", "heap", "allocs"} {
		if _, err := ParseMode(s); err != nil {
			t.Fatalf("%q: %v", s, err)
		}
	}
	if _, err := ParseMode("trace"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestRunWritesProfile(t *testing.T) {
	dir := t.TempDir()
	called := false
	if err := Run(ModeHeap, dir, func() error { called = true; return nil }); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatalf("exe not called")
	}
	if fi, err := os.Stat(filepath.Join(dir, "heap.pprof")); err != nil || fi.Size() == 0 {
		t.Fatalf("heap profile missing: %v", err)
	}
}

func TestRunPropagatesError(t *testing.T) {
	want := errors.New("sim failed")
	if err := Run(ModeNone, "", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected exe error, got %v", err)
	}
}
