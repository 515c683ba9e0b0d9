package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultMinSize 小於此長度的回應不壓縮（snapshot 錯誤訊息、ok=false 等）
const DefaultMinSize = 128

type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
	MinSize   int
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
	MinSize:   DefaultMinSize,
}

// encoder 是 gzip.Writer 與 zstd.Encoder 的共同行為
type encoder interface {
	io.WriteCloser
	Flush() error
	Reset(w io.Writer)
}

// Compressor 持有兩種編碼器的 pool。
type Compressor struct {
	minSize int
	pools   map[string]*sync.Pool
}

func NewCompressor(cfg CompressConfig) *Compressor {
	if cfg.MinSize < 0 {
		cfg.MinSize = 0
	}
	return &Compressor{
		minSize: cfg.MinSize,
		pools: map[string]*sync.Pool{
			"gzip": {New: func() any {
				gw, err := gzip.NewWriterLevel(io.Discard, cfg.GzipLevel)
				if err != nil {
					gw = gzip.NewWriter(io.Discard)
				}
				return gw
			}},
			"zstd": {New: func() any {
				zw, err := zstd.NewWriter(io.Discard,
					zstd.WithEncoderLevel(cfg.ZstdLevel),
					zstd.WithEncoderConcurrency(1),
				)
				if err != nil {
					return nil
				}
				return zw
			}},
		},
	}
}

var defaultCompressor = NewCompressor(DefaultCompressConfig)

// Compression 以預設設定壓縮回應。
func Compression(next http.Handler) http.Handler {
	return defaultCompressor.Handler(next)
}

// negotiate 依 Accept-Encoding 選出編碼：zstd 優先於 gzip，q=0 視為拒絕。
func negotiate(accept string) string {
	var zstdOK, gzipOK bool
	for _, part := range strings.Split(accept, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if q, ok := strings.CutPrefix(strings.ReplaceAll(params, " ", ""), "q="); ok && strings.Trim(q, "0.") == "" {
			continue
		}
		switch name {
		case "zstd":
			zstdOK = true
		case "gzip", "*":
			gzipOK = true
		}
	}
	switch {
	case zstdOK:
		return "zstd"
	case gzipOK:
		return "gzip"
	default:
		return ""
	}
}

func skipCompression(w http.ResponseWriter, r *http.Request) bool {
	return r.Method == http.MethodHead ||
		r.Header.Get("Upgrade") != "" ||
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		w.Header().Get("Content-Encoding") != ""
}

// Handler 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應。
//
// 回應先緩衝到 minSize 才決定是否壓縮；204/304/1xx 一律原樣送出。
func (c *Compressor) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipCompression(w, r) {
			next.ServeHTTP(w, r)
			return
		}
		name := negotiate(r.Header.Get("Accept-Encoding"))
		if name == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Add("Vary", "Accept-Encoding")
		cw := &compressWriter{ResponseWriter: w, c: c, name: name, status: http.StatusOK}
		defer func() {
			// panic 交給外層 Recover 寫 500，這裡不送任何 header
			if p := recover(); p != nil {
				cw.release()
				panic(p)
			}
			cw.finish()
		}()
		next.ServeHTTP(cw, r)
	})
}

type compressWriter struct {
	http.ResponseWriter
	c    *Compressor
	name string

	status  int
	buf     []byte
	decided bool
	plain   bool // 已決定不壓縮
	enc     encoder
}

func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

func (cw *compressWriter) WriteHeader(code int) {
	if cw.decided {
		return
	}
	cw.status = code
	if isNoBodyStatus(code) {
		cw.decided, cw.plain = true, true
		cw.Header().Del("Vary")
		cw.ResponseWriter.WriteHeader(code)
	}
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if !cw.decided {
		cw.buf = append(cw.buf, b...)
		if len(cw.buf) < cw.c.minSize {
			return len(b), nil
		}
		if err := cw.start(true); err != nil {
			return 0, err
		}
		return len(b), nil
	}
	if cw.plain {
		return cw.ResponseWriter.Write(b)
	}
	return cw.enc.Write(b)
}

// start 送出 header 並把緩衝寫到壓縮器或底層
func (cw *compressWriter) start(compress bool) error {
	cw.decided = true
	h := cw.Header()
	if h.Get("Content-Type") == "" && len(cw.buf) > 0 {
		h.Set("Content-Type", http.DetectContentType(cw.buf))
	}
	buf := cw.buf
	cw.buf = nil

	// handler 自己編碼過（例如 promhttp）就原樣送出
	if compress && h.Get("Content-Encoding") != "" {
		compress = false
	}
	if compress {
		if v, ok := cw.c.pools[cw.name].Get().(encoder); ok && v != nil {
			cw.enc = v
		} else {
			compress = false
		}
	}
	if !compress {
		cw.plain = true
		cw.ResponseWriter.WriteHeader(cw.status)
		if len(buf) == 0 {
			return nil
		}
		_, err := cw.ResponseWriter.Write(buf)
		return err
	}

	h.Del("Content-Length")
	h.Set("Content-Encoding", cw.name)
	cw.ResponseWriter.WriteHeader(cw.status)
	cw.enc.Reset(cw.ResponseWriter)
	_, err := cw.enc.Write(buf)
	return err
}

func (cw *compressWriter) finish() {
	if !cw.decided {
		_ = cw.start(false)
	}
	if cw.enc != nil {
		_ = cw.enc.Close()
	}
	cw.release()
}

func (cw *compressWriter) release() {
	if cw.enc == nil {
		return
	}
	cw.enc.Reset(io.Discard)
	cw.c.pools[cw.name].Put(cw.enc)
	cw.enc = nil
}

func (cw *compressWriter) Flush() {
	if !cw.decided {
		_ = cw.start(len(cw.buf) > 0)
	}
	if cw.enc != nil {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

func (cw *compressWriter) Unwrap() http.ResponseWriter { return cw.ResponseWriter }
