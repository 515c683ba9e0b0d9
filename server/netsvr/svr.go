package netsvr

import (
	"net/http"

	"github.com/zintix-labs/reelab/server/app"
)

// NetSvr 是 server 層唯一持有啟停權的介面，交給 app.App 管理生命週期。
// 換掉 http 框架時只需重新實作本介面。
type NetSvr interface {
	NetRouter
	app.Component

	// Address 監聽位址（log 用）
	Address() string
	// Handler 回傳組好 middleware 的根 handler，httptest 直接掛上即可。
	Handler() http.Handler
}

// NetRouter 只有路由能力；api 子模組拿到它無法關閉 server。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
