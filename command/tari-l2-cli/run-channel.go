// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/tari-l2/tari-l2-node/command/tari-l2-cli/rpccalls"
)

func runChannels(c *cli.Context) error {
	return runSimple(c, "list_channels", nil)
}

func runOpenChannel(c *cli.Context) error {

	p1, err := checkPublicKey(c.String("participant1"))
	if nil != err {
		return err
	}
	p2, err := checkPublicKey(c.String("participant2"))
	if nil != err {
		return err
	}
	if "" == p1 || "" == p2 {
		return ErrRequiredParticipants
	}
	collateral, err := checkAmount(c.Uint64("collateral"))
	if nil != err {
		return err
	}

	params := map[string]interface{}{
		"participant1": p1,
		"participant2": p2,
		"collateral":   collateral,
	}
	if period := c.Uint64("challenge-period"); 0 != period {
		params["challenge_period"] = period
	}
	return runSimple(c, "create_channel", params)
}

func runChannel(c *cli.Context) error {

	channelID, err := checkID(c.String("channel"), ErrRequiredChannel)
	if nil != err {
		return err
	}

	method := "get_channel_info"
	if c.Bool("history") {
		method = "get_channel_history"
	}
	return runSimple(c, method, map[string]interface{}{
		"channel_id": channelID,
	})
}

func runTransfer(c *cli.Context) error {

	channelID, err := checkID(c.String("channel"), ErrRequiredChannel)
	if nil != err {
		return err
	}
	amount, err := checkAmount(c.Uint64("amount"))
	if nil != err {
		return err
	}
	from, err := checkPublicKey(c.String("from"))
	if nil != err {
		return err
	}
	to, err := checkPublicKey(c.String("to"))
	if nil != err {
		return err
	}

	params := map[string]interface{}{
		"channel_id": channelID,
		"amount":     amount,
	}
	if "" != from {
		params["from"] = from
	}
	if "" != to {
		params["to"] = to
	}
	return runSimple(c, "transfer_in_channel", params)
}

func runCloseChannel(c *cli.Context) error {

	channelID, err := checkID(c.String("channel"), ErrRequiredChannel)
	if nil != err {
		return err
	}
	return runSimple(c, "close_channel", map[string]interface{}{
		"channel_id": channelID,
	})
}

func runBalance(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	if "" == c.String("channel") {
		params := map[string]interface{}{}
		if seed := c.String("seed"); "" != seed {
			params["seed_phrase"] = seed
		}
		if password := c.String("password"); "" != password {
			params["password"] = password
		}
		return runSimple(c, "get_l1_balance", params)
	}

	channelID, err := checkID(c.String("channel"), ErrRequiredChannel)
	if nil != err {
		return err
	}
	participant, err := checkPublicKey(c.String("participant"))
	if nil != err {
		return err
	}

	client := rpccalls.NewClient(m.connect, m.verbose, m.e)
	if "" == participant {
		participant, err = nodePublicKey(client)
		if nil != err {
			return err
		}
	}

	var balance uint64
	err = client.Call("get_balance", map[string]interface{}{
		"channel_id":  channelID,
		"participant": participant,
	}, &balance)
	if nil != err {
		return err
	}

	return printJson(m.w, map[string]interface{}{
		"channel_id":  channelID,
		"participant": participant,
		"balance":     balance,
	})
}
