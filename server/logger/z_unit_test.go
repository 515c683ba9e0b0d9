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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type syncBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuf) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuf) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{"": ModeDev, "DEV": ModeDev, "json": ModeProd, "off": ModeSilence}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %s, %v", in, got, err)
		}
	}
	if _, err := ParseMode("loud"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	out := &syncBuf{}
	ah := NewAsyncHandler(NewHandler(ModeProd, Options{Out: out}), 64)
	log := slog.New(ah).With(slog.String("machine", "classic"))
	for range 10 {
		log.Info("press")
	}
	ah.Close()
	if n := strings.Count(out.String(), "\"machine\":\"classic\""); n != 10 {
		t.Fatalf("expected 10 records, got %d", n)
	}
	st := ah.Stats()
	if st.Written != 10 || st.Pending != 0 {
		t.Fatalf("stats: %+v", st)
	}

	log.Info("after close")
	if ah.Dropped() != 1 {
		t.Fatalf("records after Close should be dropped, got %d", ah.Dropped())
	}
}

func TestSilenceDiscards(t *testing.T) {
	if slog.New(NewHandler(ModeSilence, Options{})).Enabled(t.Context(), slog.LevelError) {
		t.Fatalf("silence should not enable any level")
	}
}
