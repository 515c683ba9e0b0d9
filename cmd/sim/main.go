package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/reelab/perf"
)

// makefile runner
func main() {
	if err := bindVar(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := perf.Run(cfg.pprofmode, cfg.pprofdir, executeSimulator); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
