package main

import (
	"context"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"runtime"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zintix-labs/reelab"
	"github.com/zintix-labs/reelab/configs"
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/perf"
	"github.com/zintix-labs/reelab/rng"
	"github.com/zintix-labs/reelab/stats"
)

var cfg *config = new(config)

type config struct {
	machine   string
	configs   string
	workers   int
	players   int
	presses   int
	bet       int
	quickstop bool
	seed      int64
	format    string
	progress  bool
	pprofmode perf.Mode
	pprofdir  string
}

type modeFlag struct{ p *perf.Mode }

func (f modeFlag) String() string {
	if f.p == nil {
		return ""
	}
	return string(*f.p)
}

func (f modeFlag) Set(s string) error {
	m, err := perf.ParseMode(s)
	if err != nil {
		return err
	}
	*f.p = m
	return nil
}

func bindVar() error {
	flag.StringVar(&cfg.machine, "machine", "classic", "target machine name")
	flag.StringVar(&cfg.configs, "configs", "", "machine yaml dir (default: embedded configs)")
	flag.IntVar(&cfg.workers, "workers", runtime.NumCPU(), "number of workers")
	flag.IntVar(&cfg.players, "players", 1000, "number of players")
	flag.IntVar(&cfg.presses, "presses", 500, "presses per player")
	flag.IntVar(&cfg.bet, "bet", 1, "bet per round (capped by balance)")
	flag.BoolVar(&cfg.quickstop, "quickstop", false, "quick-stop every round")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed (< 0: random)")
	flag.StringVar(&cfg.format, "format", "table", "report format: table, json, yaml")
	flag.BoolVar(&cfg.progress, "progress", stderrIsTerminal(), "show progress bar (default: stderr is a tty)")
	flag.Var(modeFlag{&cfg.pprofmode}, "p", "pprof: '', cpu, heap, allocs")
	flag.StringVar(&cfg.pprofdir, "pprof-dir", perf.DefaultDir, "pprof output dir")

	flag.Parse()

	// 未指定 seed -> 隨機
	if cfg.seed < 0 {
		cfg.seed = rng.NewSeed()
	}
	return cfg.valid()
}

func (cfg *config) valid() error {
	p := message.NewPrinter(language.English)

	if cfg.workers < 1 {
		return errs.NewWarn("workers must > 0")
	}
	if cfg.players < 1 {
		return errs.NewWarn("players must > 0")
	}
	if cfg.players > 100000 {
		p.Printf("too much players: %d resized to 100k players\n", cfg.players)
		cfg.players = 100000
	}
	if cfg.presses < 1 {
		return errs.NewWarn("presses must > 0")
	}
	// 一位玩家 15000 按約等於十小時，再長就不是單一玩家的體驗了
	if cfg.presses > 15000 {
		p.Printf("too much presses for each player: %d resized to 15k\n", cfg.presses)
		cfg.presses = 15000
	}
	if cfg.bet < 0 {
		return errs.NewWarn("bet must >= 0")
	}
	return nil
}

// 進度條寫在 stderr，導向檔案時不畫
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (cfg *config) source() fs.FS {
	if cfg.configs == "" {
		return configs.FS
	}
	return os.DirFS(cfg.configs)
}

// 解析參數後執行多玩家模擬並輸出報表
func executeSimulator() error {
	stRender, err := stats.NewStatReportRender(cfg.format)
	if err != nil {
		return err
	}
	estRender, err := stats.NewEstimatorRender(cfg.format)
	if err != nil {
		return err
	}

	lab, err := reelab.New(rng.Default(), cfg.source())
	if err != nil {
		return err
	}
	s, err := lab.NewSimulator(cfg.machine, cfg.seed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	format, err := stats.ParseFormat(cfg.format)
	if err != nil {
		return err
	}
	table := format == stats.FormatTable
	if table {
		green := "\033[1;32m"
		reset := "\033[0m"
		p := message.NewPrinter(language.English)
		p.Printf("%s[WORKERS:%d] [MACHINE:%s] [PLAYERS:%d PRESSES:%d BET:%d QUICKSTOP:%t SEED:%d]%s\n",
			green, cfg.workers, s.MachineName, cfg.players, cfg.presses, cfg.bet, cfg.quickstop, s.Seed(), reset)
	}

	st, est, used, err := s.SimPlayers(ctx, reelab.SimOptions{
		Players:   cfg.players,
		Presses:   cfg.presses,
		Workers:   cfg.workers,
		Bet:       cfg.bet,
		QuickStop: cfg.quickstop,
		Progress:  cfg.progress && table,
	})
	if err != nil {
		return err
	}

	if table {
		st.StdOut(os.Stdout, used)
		est.Out(os.Stdout)
		return nil
	}
	if err := stRender.Write(os.Stdout, st); err != nil {
		return errs.Wrap(err, "write stat report failed")
	}
	if err := estRender.Write(os.Stdout, est); err != nil {
		return errs.Wrap(err, "write estimator report failed")
	}
	return nil
}
