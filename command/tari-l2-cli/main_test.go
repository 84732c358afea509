// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	channelID = "1111111111111111111111111111111111111111111111111111111111111111"
	publicKey = "2222222222222222222222222222222222222222222222222222222222222222"
)

type call struct {
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
}

// a node that records every call and answers from a table
func testNode(t *testing.T, results map[string]string) (*httptest.Server, *[]call) {
	calls := []call{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := ioutil.ReadAll(r.Body)
		assert.Nil(t, err, "read body")
		var c call
		assert.Nil(t, json.Unmarshal(b, &c), "decode request")
		calls = append(calls, c)

		result, ok := results[c.Method]
		if !ok {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"},"id":1}`))
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":` + result + `,"id":1}`))
	}))
	return ts, &calls
}

func run(ts *httptest.Server, args ...string) (string, error) {
	w := &bytes.Buffer{}
	e := &bytes.Buffer{}
	app := newApp(w, e)
	err := app.Run(append([]string{"tari-l2-cli", "--connect", strings.TrimPrefix(ts.URL, "http://")}, args...))
	return w.String(), err
}

func TestInfo(t *testing.T) {
	ts, calls := testNode(t, map[string]string{
		"get_node_info": `{"version":"0.1.0","network":"esmeralda"}`,
	})
	defer ts.Close()

	out, err := run(ts, "info")
	assert.Nil(t, err, "wrong error")
	assert.Equal(t, 1, len(*calls), "wrong call count")
	assert.Contains(t, out, `"version": "0.1.0"`, "wrong output")
	assert.Contains(t, out, `"_connection"`, "missing connection")
}

func TestOpenChannel(t *testing.T) {
	ts, calls := testNode(t, map[string]string{
		"create_channel": `{"channel_id":"` + channelID + `"}`,
	})
	defer ts.Close()

	out, err := run(ts, "open-channel", "-a", publicKey, "-b", publicKey, "-m", "1000")
	assert.Nil(t, err, "wrong error")
	assert.Contains(t, out, channelID, "wrong output")

	c := (*calls)[0]
	assert.Equal(t, "create_channel", c.Method, "wrong method")
	assert.Equal(t, float64(1000), c.Params["collateral"], "wrong collateral")
	_, hasPeriod := c.Params["challenge_period"]
	assert.False(t, hasPeriod, "unexpected challenge period")
}

func TestOpenChannelMissingParticipant(t *testing.T) {
	ts, calls := testNode(t, nil)
	defer ts.Close()

	_, err := run(ts, "open-channel", "-a", publicKey, "-m", "1000")
	assert.Equal(t, ErrRequiredParticipants, err, "wrong error")
	assert.Equal(t, 0, len(*calls), "node should not be called")
}

func TestTransferBadChannel(t *testing.T) {
	ts, _ := testNode(t, nil)
	defer ts.Close()

	_, err := run(ts, "transfer", "-n", "abc", "-m", "5")
	assert.Equal(t, ErrInvalidID, err, "wrong error")
}

func TestChannelBalanceDefaultsToNodeKey(t *testing.T) {
	ts, calls := testNode(t, map[string]string{
		"get_node_info": `{"public_key":"` + publicKey + `"}`,
		"get_balance":   `600`,
	})
	defer ts.Close()

	out, err := run(ts, "balance", "-n", channelID)
	assert.Nil(t, err, "wrong error")
	assert.Equal(t, 2, len(*calls), "wrong call count")
	assert.Equal(t, publicKey, (*calls)[1].Params["participant"], "wrong participant")
	assert.Contains(t, out, `"balance": 600`, "wrong output")
}

func TestWalletImportNeedsOneSource(t *testing.T) {
	ts, _ := testNode(t, nil)
	defer ts.Close()

	_, err := run(ts, "wallet-import", "-s", "words", "-k", "key")
	assert.Equal(t, ErrRequiredSeedOrKey, err, "wrong error")
}

func TestOrderStatus(t *testing.T) {
	ts, calls := testNode(t, map[string]string{
		"update_order_status": `{"status":"confirmed"}`,
	})
	defer ts.Close()

	_, err := run(ts, "order-status", "-o", channelID, "-s", "Confirmed")
	assert.Nil(t, err, "wrong error")
	assert.Equal(t, "confirmed", (*calls)[0].Params["status"], "status not normalised")
}

func TestUnknownMethodError(t *testing.T) {
	ts, _ := testNode(t, map[string]string{})
	defer ts.Close()

	_, err := run(ts, "channels")
	assert.NotNil(t, err, "missing error")
	assert.Contains(t, err.Error(), "Method not found", "wrong error")
}
