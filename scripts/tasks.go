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
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// lineFilter 回傳 false 表示不印出該行
type lineFilter func(line string) bool

// goCmd 執行 go 子命令；filter 為 nil 時直接接到 stdout/stderr。
func goCmd(filter lineFilter, args ...string) error {
	cmd := exec.Command("go", args...)
	if filter == nil {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Stdin = os.Stdin
		return cmd.Run()
	}

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	// 編譯錯誤通常在 stderr，一起讀
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start go %s: %w", args[0], err)
	}
	sc := bufio.NewScanner(pipe)
	for sc.Scan() {
		line := sc.Text()
		if !filter(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			PrintRed(line)
		default:
			fmt.Println(line)
		}
	}
	if err := sc.Err(); err != nil {
		PrintRed(fmt.Sprintf("scanner error: %v", err))
	}
	return cmd.Wait()
}

func cleanTestCache() error {
	if err := goCmd(nil, "clean", "-testcache"); err != nil {
		return fmt.Errorf("go clean -testcache failed: %w", err)
	}
	return nil
}

func summaryOnly(line string) bool {
	return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
		strings.Contains(line, "build failed") || strings.Contains(line, "setup failed")
}

func skipNoTestFiles(line string) bool { return !strings.Contains(line, "[no test files]") }

func runTest() error {
	PrintGreen("running tests")
	_ = cleanTestCache()
	if err := goCmd(summaryOnly, "test", "./...", "-cover", "-count=1"); err != nil {
		return fmt.Errorf("tests finished with errors")
	}
	return nil
}

func runTestAll() error {
	PrintGreen("running tests (all with coverage)")
	if err := cleanTestCache(); err != nil {
		return err
	}
	if err := goCmd(nil, "test", "./...", "-cover"); err != nil {
		return fmt.Errorf("tests (with coverage) finished with errors")
	}
	return nil
}

func runTestDetail() error {
	PrintGreen("running tests (detail)")
	if err := cleanTestCache(); err != nil {
		return err
	}
	if err := goCmd(skipNoTestFiles, "test", "./...", "-v", "-count=1"); err != nil {
		return fmt.Errorf("tests (detail) finished with errors")
	}
	return nil
}

// session runtime 與模擬器都有併發路徑，單獨跑一次 race
func runTestRace() error {
	PrintGreen("running tests (race)")
	if err := goCmd(summaryOnly, "test", "./...", "-race", "-count=1"); err != nil {
		return fmt.Errorf("race tests finished with errors")
	}
	return nil
}

func runSim(extra []string) error {
	PrintBlue("go run ./cmd/sim " + strings.Join(extra, " "))
	return goCmd(nil, append([]string{"run", "./cmd/sim"}, extra...)...)
}

func runSvr(extra []string) error {
	PrintBlue("go run ./cmd/svr " + strings.Join(extra, " "))
	return goCmd(nil, append([]string{"run", "./cmd/svr"}, extra...)...)
}

// profile 以 cpu 模式跑一次模擬，提示如何打開結果
func runProfile(extra []string) error {
	args := append([]string{"run", "./cmd/sim", "-p", "cpu", "-progress=false"}, extra...)
	if err := goCmd(nil, args...); err != nil {
		return err
	}
	PrintYellow("go tool pprof -http=:8080 build/profiling/cpu.pprof")
	return nil
}
