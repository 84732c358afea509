// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
)

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      uint64      `json:"id"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
	ID      json.RawMessage `json:"id"`
}

// Error - a JSON-RPC error object returned by the node
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call - send one request and decode its result into reply
func (client *Client) Call(method string, params interface{}, reply interface{}) error {

	client.nextID += 1
	if nil == params {
		params = struct{}{}
	}
	r := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      client.nextID,
	}
	client.printJson(method+" request", r)

	body, err := json.Marshal(r)
	if nil != err {
		return err
	}

	resp, err := client.client.Post(client.url, "application/json", bytes.NewReader(body))
	if nil != err {
		return err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if nil != err {
		return err
	}
	if http.StatusOK != resp.StatusCode {
		return fmt.Errorf("http status: %s  body: %q", resp.Status, data)
	}

	var result response
	if err := json.Unmarshal(data, &result); nil != err {
		return err
	}
	client.printJson(method+" response", result)

	if nil != result.Error {
		return result.Error
	}
	if nil == reply {
		return nil
	}
	return json.Unmarshal(result.Result, reply)
}
