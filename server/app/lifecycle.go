// Package app 管理 server 內長期運行元件的啟動與反向關閉。
package app

import "context"

// Component 是可啟動、可關閉的長生命週期元件（HTTP server、session janitor 等）。
//   - Run() 阻塞直到元件停止。
//   - Shutdown(ctx) 要求優雅關閉，需尊重 ctx 的 deadline。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Func 以兩個函式組出 Component；nil 欄位視為立即返回。
type Func struct {
	RunFn      func() error
	ShutdownFn func(ctx context.Context) error
}

func (f Func) Run() error {
	if f.RunFn == nil {
		return nil
	}
	return f.RunFn()
}

func (f Func) Shutdown(ctx context.Context) error {
	if f.ShutdownFn == nil {
		return nil
	}
	return f.ShutdownFn(ctx)
}

// WaitClose 把「等 done 關閉 / 呼叫 close」的物件包成 Component。
func WaitClose(done <-chan struct{}, closeFn func()) Component {
	return Func{
		RunFn: func() error {
			<-done
			return nil
		},
		ShutdownFn: func(context.Context) error {
			closeFn()
			return nil
		},
	}
}
