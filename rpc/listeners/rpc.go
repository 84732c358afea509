// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"crypto/tls"
	"net"
	"net/rpc"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/counter"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/rpc/codec"
)

const (
	logName            = "tcp_rpc"
	minConnectionCount = 1
)

// Listener - a started network front end for the rpc server
type Listener interface {
	Serve() error
	Stop()
}

// TCPConfiguration - raw socket listeners carrying newline
// delimited JSON-RPC
type TCPConfiguration struct {
	MaximumConnections uint64
	Listen             []string
}

type tcpListener struct {
	sync.Mutex
	log             *logger.L
	count           *counter.Counter
	server          *rpc.Server
	methods         codec.Methods
	maxConnections  uint64
	tlsConfig       *tls.Config
	ipType          []string
	listenIPAndPort []string
	listeners       []net.Listener
}

// NewTCP - raw JSON-RPC listeners, using TLS when tlsConfig is not nil
func NewTCP(
	configuration *TCPConfiguration,
	log *logger.L,
	count *counter.Counter,
	server *rpc.Server,
	methods codec.Methods,
	tlsConfig *tls.Config,
) (Listener, error) {
	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", logName, configuration.MaximumConnections)
		return nil, fault.MissingParameters
	}
	if 0 == len(configuration.Listen) {
		log.Errorf("missing %s listen", logName)
		return nil, fault.MissingParameters
	}

	listen := make([]string, len(configuration.Listen))
	copy(listen, configuration.Listen)

	ipType, err := parseListenAddress(listen, log)
	if nil != err {
		return nil, err
	}

	return &tcpListener{
		log:             log,
		count:           count,
		server:          server,
		methods:         methods,
		maxConnections:  configuration.MaximumConnections,
		tlsConfig:       tlsConfig,
		ipType:          ipType,
		listenIPAndPort: listen,
	}, nil
}

func (r *tcpListener) Serve() error {
	r.Lock()
	defer r.Unlock()

	for i, listen := range r.listenIPAndPort {
		r.log.Infof("starting %s server: %s  tls: %t", logName, listen, nil != r.tlsConfig)

		var l net.Listener
		var err error
		if nil == r.tlsConfig {
			l, err = net.Listen(r.ipType[i], listen)
		} else {
			l, err = tls.Listen(r.ipType[i], listen, r.tlsConfig)
		}
		if nil != err {
			r.log.Errorf("%s listen error: %s", logName, err)
			return err
		}
		r.listeners = append(r.listeners, l)

		go r.accept(l)
	}
	return nil
}

func (r *tcpListener) Stop() {
	r.Lock()
	defer r.Unlock()

	for _, l := range r.listeners {
		_ = l.Close()
	}
	r.listeners = nil
}

func (r *tcpListener) accept(listen net.Listener) {
	for {
		conn, err := listen.Accept()
		if nil != err {
			r.log.Infof("%s accept terminated: %s", logName, err)
			break
		}
		if !r.count.IncrementBelow(r.maxConnections) {
			r.log.Warnf("%s: too many connections, rejecting: %s", logName, conn.RemoteAddr())
			_ = conn.Close()
			continue
		}
		go func() {
			r.server.ServeCodec(codec.NewServerCodec(conn, r.methods))
			_ = conn.Close()
			r.count.Decrement()
		}()
	}
	_ = listen.Close()
}

// "*:PORT" listens on every interface, "[v6]:PORT" on IPv6 and
// anything else on IPv4
func parseListenAddress(addrs []string, log *logger.L) ([]string, error) {
	parsed := make([]string, len(addrs))
	for i, listen := range addrs {
		if "" == listen {
			return nil, fault.ErrInvalidIPAddress
		}
		if '*' == listen[0] {
			addrs[i] = "[::]" + ":" + strings.Split(listen, ":")[1]
			listen = "::"
			parsed[i] = "tcp"
		} else if '[' == listen[0] {
			listen = strings.Split(listen[1:], "]:")[0]
			parsed[i] = "tcp6"
		} else {
			listen = strings.Split(listen, ":")[0]
			parsed[i] = "tcp4"
		}

		if ip := net.ParseIP(listen); nil == ip {
			err := fault.ErrInvalidIPAddress
			log.Errorf("%s listen address: %q  error: %s", logName, addrs[i], err)
			return nil, err
		}
	}

	return parsed, nil
}
