// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"crypto/tls"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/configuration"
	"github.com/tari-l2/tari-l2-node/counter"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/rpc/certificate"
	"github.com/tari-l2/tari-l2-node/rpc/handler"
	"github.com/tari-l2/tari-l2-node/rpc/listeners"
	"github.com/tari-l2/tari-l2-node/rpc/server"
)

const (
	tlsName = "rpc_tls"
)

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	listeners []listeners.Listener

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// open connections across every listener
var connectionCount counter.Counter

// Initialise - start the HTTP, HTTPS and raw TCP listeners
func Initialise(rpcConfiguration *configuration.RPCType, version string, handles server.Handles) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	if rpcConfiguration.MaximumConnections < 1 {
		log.Errorf("invalid maximum connection limit: %d", rpcConfiguration.MaximumConnections)
		return fault.MissingParameters
	}
	maximumConnections := uint64(rpcConfiguration.MaximumConnections)

	s := server.Create(log, version, &connectionCount, handles)
	h := handler.New(log, s, server.Methods, &connectionCount, maximumConnections)

	var tlsConfig *tls.Config
	if 0 != len(rpcConfiguration.HTTPS.Listen) || rpcConfiguration.TCPUseTLS {
		c, fingerprint, err := certificate.Load(log, tlsName, rpcConfiguration.Certificate, rpcConfiguration.PrivateKey)
		if nil != err {
			return err
		}
		log.Infof("%s: SHA3-256 fingerprint: %x", tlsName, fingerprint)
		tlsConfig = c
	}

	started := make([]listeners.Listener, 0, 3)

	httpListener, err := listeners.NewHTTP([]string{rpcConfiguration.Listen()}, log, nil, h)
	if nil != err {
		return err
	}
	started = append(started, httpListener)

	httpsListener, err := listeners.NewHTTP(rpcConfiguration.HTTPS.Listen, log, tlsConfig, h)
	if nil != err {
		return err
	}
	if nil != httpsListener {
		started = append(started, httpsListener)
	}

	if 0 != len(rpcConfiguration.TCPListen) {
		tcpTLS := tlsConfig
		if !rpcConfiguration.TCPUseTLS {
			tcpTLS = nil
		}
		tcpListener, err := listeners.NewTCP(
			&listeners.TCPConfiguration{
				MaximumConnections: maximumConnections,
				Listen:             rpcConfiguration.TCPListen,
			},
			log,
			&connectionCount,
			s,
			server.Methods,
			tcpTLS,
		)
		if nil != err {
			return err
		}
		started = append(started, tcpListener)
	}

	for i, l := range started {
		if err := l.Serve(); nil != err {
			for _, running := range started[:i+1] {
				running.Stop()
			}
			return err
		}
	}
	globalData.listeners = started

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop all listeners
func Finalise() error {

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	for _, l := range globalData.listeners {
		l.Stop()
	}
	globalData.listeners = nil

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
