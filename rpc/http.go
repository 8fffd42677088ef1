// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"io"
	"net"
	"net/http"
	"net/rpc/jsonrpc"

	"github.com/rs/cors"
)

// 单个请求体上限
const maxRequestBody = 1 << 20

// HTTPConn adapt HTTP connection to ReadWriteCloser
type HTTPConn struct {
	in  io.Reader
	out io.Writer
}

func (c *HTTPConn) Read(p []byte) (n int, err error)  { return c.in.Read(p) }
func (c *HTTPConn) Write(d []byte) (n int, err error) { return c.out.Write(d) }

// Close nothing to close, the http server owns the connection
func (c *HTTPConn) Close() error { return nil }

// Handler serves one json rpc request per http POST on "/"
func (s *JSONRPCServer) Handler() http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !s.checkIPWhitelist(ip) {
			log.Error("HandlerFunc", "reject ip", ip)
			http.Error(w, "reject", http.StatusForbidden)
			return
		}
		if !s.allow(ip) {
			log.Warn("HandlerFunc", "rate limited", ip)
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		serverCodec := jsonrpc.NewServerCodec(&HTTPConn{in: io.LimitReader(r.Body, maxRequestBody), out: w})
		w.Header().Set("Content-type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := s.s.ServeRequest(serverCodec); err != nil {
			log.Debug("Error while serving JSON request", "err", err)
		}
	})
	if len(s.cfg.CorsOrigins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.CorsOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h)
}
