// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/json"
	"errors"
	"io"
	"net/rpc"
	"sync"
)

// JSON-RPC 2.0 error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	InvalidParams  = -32602
	InternalError  = -32603
	ServerError    = -32000
)

// Version - protocol version written in every response
const Version = "2.0"

// Methods - maps a JSON-RPC method name to a net/rpc "Service.Method"
type Methods map[string]string

// Request - incoming JSON-RPC 2.0 message
type Request struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// Error - the error member of a response
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response - outgoing JSON-RPC 2.0 message
type Response struct {
	Version string           `json:"jsonrpc"`
	Result  interface{}      `json:"result,omitempty"`
	Error   *Error           `json:"error,omitempty"`
	ID      *json.RawMessage `json:"id"`
}

var null = json.RawMessage("null")

// state of one request between header and response
type pending struct {
	id           *json.RawMessage
	method       string
	code         int
	notification bool
}

type serverCodec struct {
	dec     *json.Decoder
	enc     *json.Encoder
	c       io.Closer
	methods Methods

	// the request being read
	req     Request
	current *pending

	// a stream that failed to parse cannot be resynchronised
	broken bool

	mutex   sync.Mutex
	seq     uint64
	pending map[uint64]*pending
}

// NewServerCodec - a JSON-RPC 2.0 codec for a net/rpc server
//
// only methods present in the table are dispatched; any other
// name is answered with an unknown method error
func NewServerCodec(conn io.ReadWriteCloser, methods Methods) rpc.ServerCodec {
	return &serverCodec{
		dec:     json.NewDecoder(conn),
		enc:     json.NewEncoder(conn),
		c:       conn,
		methods: methods,
		pending: make(map[uint64]*pending),
	}
}

func (c *serverCodec) ReadRequestHeader(r *rpc.Request) error {
	if c.broken {
		return io.EOF
	}

	c.req = Request{}
	p := &pending{}

	err := c.dec.Decode(&c.req)
	if nil != err {
		// only a clean end between requests closes the stream
		if io.EOF == err {
			return err
		}
		c.broken = true
		p.id = &null
		p.code = ParseError
	} else {
		// an absent id marks a notification, an explicit null does not
		p.notification = 0 == len(c.req.ID)
		p.method = c.req.Method
		p.id = &null
		if !p.notification {
			id := append(json.RawMessage(nil), c.req.ID...)
			p.id = &id
		}
	}

	// an ill-formed service name makes net/rpc reply with an error
	// which WriteResponse replaces with the proper JSON-RPC error
	r.ServiceMethod = ""
	if 0 == p.code {
		if "" == c.req.Method {
			p.code = InvalidRequest
		} else if serviceMethod, ok := c.methods[c.req.Method]; ok {
			r.ServiceMethod = serviceMethod
		} else {
			p.code = ServerError
		}
	}

	c.mutex.Lock()
	c.seq += 1
	c.pending[c.seq] = p
	r.Seq = c.seq
	c.mutex.Unlock()

	c.current = p
	return nil
}

func (c *serverCodec) ReadRequestBody(x interface{}) error {
	if nil == x {
		return nil
	}
	params := c.req.Params
	if 0 == len(params) || "null" == string(params) {
		params = json.RawMessage("{}")
	}
	err := json.Unmarshal(params, x)
	if nil != err {
		c.current.code = InvalidParams
		return err
	}
	return nil
}

func (c *serverCodec) WriteResponse(r *rpc.Response, x interface{}) error {
	c.mutex.Lock()
	p, ok := c.pending[r.Seq]
	if !ok {
		c.mutex.Unlock()
		return errors.New("invalid sequence number in response")
	}
	delete(c.pending, r.Seq)
	c.mutex.Unlock()

	if p.notification && ParseError != p.code && InvalidRequest != p.code {
		return nil
	}

	resp := Response{
		Version: Version,
		ID:      p.id,
	}

	switch p.code {
	case ParseError:
		resp.Error = &Error{Code: ParseError, Message: "Parse error"}
	case InvalidRequest:
		resp.Error = &Error{Code: InvalidRequest, Message: "Invalid Request"}
	case ServerError:
		resp.Error = &Error{Code: ServerError, Message: "Unknown method: " + p.method}
	case InvalidParams:
		resp.Error = &Error{Code: InvalidParams, Message: "Invalid params: " + r.Error}
	default:
		if "" != r.Error {
			resp.Error = &Error{Code: ServerError, Message: r.Error}
			break
		}
		result, err := json.Marshal(x)
		if nil != err {
			resp.Error = &Error{Code: InternalError, Message: "Internal error"}
			break
		}
		raw := json.RawMessage(result)
		resp.Result = &raw
	}

	return c.enc.Encode(resp)
}

func (c *serverCodec) Close() error {
	return c.c.Close()
}
