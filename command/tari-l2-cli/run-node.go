// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/tari-l2/tari-l2-node/command/tari-l2-cli/rpccalls"
)

// call a method and print its result
func runSimple(c *cli.Context, method string, params interface{}) error {

	m := c.App.Metadata["config"].(*metadata)

	client := rpccalls.NewClient(m.connect, m.verbose, m.e)

	var response interface{}
	if err := client.Call(method, params, &response); nil != err {
		return err
	}

	return printJson(m.w, response)
}

func runInfo(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	client := rpccalls.NewClient(m.connect, m.verbose, m.e)

	var response map[string]interface{}
	if err := client.Call("get_node_info", nil, &response); nil != err {
		return err
	}
	response["_connection"] = m.connect

	return printJson(m.w, response)
}

func runL1Status(c *cli.Context) error {
	return runSimple(c, "get_l1_status", nil)
}

// the node key, used as the default party of an operation
func nodePublicKey(client *rpccalls.Client) (string, error) {
	var response struct {
		PublicKey string `json:"public_key"`
	}
	if err := client.Call("get_node_info", nil, &response); nil != err {
		return "", err
	}
	return response.PublicKey, nil
}
