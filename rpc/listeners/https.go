// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/fault"
)

const (
	httpLogName      = "http_rpc"
	readWriteTimeout = 10 * time.Second
	keepAlivePeriod  = 3 * time.Minute
	shutdownTimeout  = 5 * time.Second
)

type httpListener struct {
	sync.Mutex
	log             *logger.L
	listenIPAndPort []string
	tlsConfig       *tls.Config
	handler         http.Handler
	servers         []*http.Server
}

type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if nil != err {
		return nil, err
	}
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(keepAlivePeriod)
	return tc, nil
}

// NewHTTP - HTTP listeners in front of a handler, served over TLS when
// tlsConfig is not nil
//
// an empty listen list gives a nil listener
func NewHTTP(listen []string, log *logger.L, tlsConfig *tls.Config, handler http.Handler) (Listener, error) {
	if 0 == len(listen) {
		log.Infof("disable: %s", httpLogName)
		return nil, nil
	}
	if nil == handler {
		return nil, fault.MissingParameters
	}

	addresses := make([]string, 0, len(listen))
	for _, l := range listen {
		if "" == l {
			return nil, fault.ErrInvalidIPAddress
		}
		if '*' == l[0] {
			l = "[::]" + ":" + strings.Split(l, ":")[1]
		}
		addresses = append(addresses, l)
	}

	return &httpListener{
		log:             log,
		listenIPAndPort: addresses,
		tlsConfig:       tlsConfig,
		handler:         handler,
	}, nil
}

func (h *httpListener) Serve() error {
	h.Lock()
	defer h.Unlock()

	for _, addr := range h.listenIPAndPort {
		h.log.Infof("starting server: %s on: %q  tls: %t", httpLogName, addr, nil != h.tlsConfig)

		ln, err := net.Listen("tcp", addr)
		if nil != err {
			h.log.Errorf("%s listen error: %s", httpLogName, err)
			return err
		}
		var l net.Listener = tcpKeepAliveListener{ln.(*net.TCPListener)}
		if nil != h.tlsConfig {
			cfg := h.tlsConfig.Clone()
			cfg.NextProtos = []string{"http/1.1"}
			l = tls.NewListener(l, cfg)
		}

		s := &http.Server{
			Addr:           addr,
			Handler:        h.handler,
			ReadTimeout:    readWriteTimeout,
			WriteTimeout:   readWriteTimeout,
			MaxHeaderBytes: 1 << 20,
		}
		h.servers = append(h.servers, s)

		go func(addr string) {
			if err := s.Serve(l); nil != err && http.ErrServerClosed != err {
				h.log.Errorf("%s: %q  serve error: %s", httpLogName, addr, err)
			}
		}(addr)
	}

	return nil
}

func (h *httpListener) Stop() {
	h.Lock()
	defer h.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, s := range h.servers {
		_ = s.Shutdown(ctx)
	}
	h.servers = nil
}
