package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/zintix-labs/reelab/errs"
	"github.com/zintix-labs/reelab/server/httperr"
)

// Recover 攔下 handler 的 panic，記錄後回 500 JSON。
//
// http.ErrAbortHandler 照 net/http 慣例重新拋出。
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				if log != nil {
					log.Error("http.panic",
						slog.String("req_id", chimid.GetReqID(r.Context())),
						slog.Any("panic", rvr),
						slog.String("stack", string(debug.Stack())),
					)
				}
				if r.Header.Get("Connection") != "Upgrade" {
					httperr.Errs(w, errs.NewFatal(fmt.Sprintf("internal panic: %v", rvr)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
