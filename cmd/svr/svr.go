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

package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/configs"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/server"
	"github.com/zintix-labs/reelab/server/logger"
	"github.com/zintix-labs/reelab/server/svrcfg"
)

// lab server 入口：machines / sessions / sim / dev 全部開啟。
func main() {
	sCfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	err = server.Run(sCfg)
	closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type config struct {
	LogMode     string
	Addr        string
	Configs     string
	TTL         time.Duration
	MaxSessions int
	SimLimit    int
	CORS        string
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log", "dev", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.Addr, "addr", svrcfg.DefaultAddr, "listen address")
	flag.StringVar(&cfg.Configs, "configs", "", "machine yaml dir (default: embedded configs)")
	flag.DurationVar(&cfg.TTL, "ttl", reelab.DefaultSessionTTL, "idle session ttl")
	flag.IntVar(&cfg.MaxSessions, "max-sessions", reelab.DefaultMaxSessions, "max live sessions")
	flag.IntVar(&cfg.SimLimit, "sim-limit", svrcfg.DefaultSimLimit, "max players*presses per /v1/sim request")
	flag.StringVar(&cfg.CORS, "cors", "*", "comma separated allowed origins (empty: disable CORS)")

	flag.Parse()

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}

	lab, err := reelab.New(rng.Default(), cfg.source())
	if err != nil {
		return nil, nil, err
	}

	log, ah := logger.NewAsync(4096, mode)
	sCfg := &svrcfg.SvrCfg{
		Log:         log,
		Addr:        cfg.Addr,
		Lab:         lab,
		SessionTTL:  cfg.TTL,
		MaxSessions: cfg.MaxSessions,
		SimLimit:    cfg.SimLimit,
		CORSOrigins: cfg.origins(),
	}
	return sCfg, ah.Close, nil
}

func (cfg *config) origins() []string {
	out := []string{}
	for _, o := range strings.Split(cfg.CORS, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (cfg *config) source() fs.FS {
	if cfg.Configs == "" {
		return configs.FS
	}
	return os.DirFS(cfg.Configs)
}
