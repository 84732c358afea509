// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/rpc"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/counter"
	"github.com/tari-l2/tari-l2-node/rpc/codec"
)

const (
	methodNotAllowed = "Method not allowed. Use POST for JSON-RPC"
	tooManyRequests  = "Too Many Requests"
	internalError    = "Internal Server Error"
)

// connection - lets the rpc server read a request body and write
// into a buffer
type connection struct {
	in  io.Reader
	out io.Writer
}

func (c *connection) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

func (c *connection) Write(d []byte) (int, error) {
	return c.out.Write(d)
}

func (c *connection) Close() error {
	return nil
}

// Handler - serves JSON-RPC over HTTP POST on every path
type Handler struct {
	log                *logger.L
	server             *rpc.Server
	methods            codec.Methods
	count              *counter.Counter
	maximumConnections uint64
}

// New - create an HTTP handler in front of an rpc server
func New(log *logger.L, server *rpc.Server, methods codec.Methods, count *counter.Counter, maximumConnections uint64) *Handler {
	return &Handler{
		log:                log,
		server:             server,
		methods:            methods,
		count:              count,
		maximumConnections: maximumConnections,
	}
}

// ServeHTTP - http.Handler interface
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		sendError(w, methodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	if !h.count.IncrementBelow(h.maximumConnections) {
		h.log.Warnf("too many connections from: %s", r.RemoteAddr)
		sendError(w, tooManyRequests, http.StatusTooManyRequests)
		return
	}
	defer h.count.Decrement()

	var out bytes.Buffer
	serverCodec := codec.NewServerCodec(&connection{in: r.Body, out: &out}, h.methods)

	// a single request per POST, a notification leaves the buffer empty
	err := h.server.ServeRequest(serverCodec)
	if nil != err && 0 == out.Len() {
		h.log.Debugf("serve request error: %s", err)
	}

	header.Set("Content-Type", "application/json")
	header.Set("X-Content-Type-Options", "nosniff")

	if 0 == out.Len() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Bytes())
}

// to compose JSON error messages
type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		http.Error(w, `{"code":500,"error":"`+internalError+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(text)
}
