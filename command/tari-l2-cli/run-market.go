// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/urfave/cli"
)

func runListings(c *cli.Context) error {
	return runSimple(c, "get_listings", nil)
}

func runListItem(c *cli.Context) error {

	title := strings.TrimSpace(c.String("title"))
	if "" == title {
		return ErrRequiredTitle
	}
	price, err := checkAmount(c.Uint64("price"))
	if nil != err {
		return err
	}

	params := map[string]interface{}{
		"title":       title,
		"description": c.String("description"),
		"price":       price,
		"category":    c.String("category"),
		"ipfs_hash":   c.String("ipfs-hash"),
	}
	if "" != c.String("channel") {
		channelID, err := checkID(c.String("channel"), ErrRequiredChannel)
		if nil != err {
			return err
		}
		params["channel_id"] = channelID
	}
	return runSimple(c, "create_listing", params)
}

func runOrders(c *cli.Context) error {
	return runSimple(c, "get_orders", nil)
}

func runOrder(c *cli.Context) error {

	listingID, err := checkID(c.String("listing"), ErrRequiredListing)
	if nil != err {
		return err
	}
	buyer, err := checkPublicKey(c.String("buyer"))
	if nil != err {
		return err
	}

	params := map[string]interface{}{
		"listing_id": listingID,
	}
	if "" != buyer {
		params["buyer_pubkey"] = buyer
	}
	if "" != c.String("channel") {
		channelID, err := checkID(c.String("channel"), ErrRequiredChannel)
		if nil != err {
			return err
		}
		params["channel_id"] = channelID
	}
	return runSimple(c, "create_order", params)
}

func runOrderStatus(c *cli.Context) error {

	orderID, err := checkID(c.String("order"), ErrRequiredOrder)
	if nil != err {
		return err
	}
	status := strings.ToLower(strings.TrimSpace(c.String("status")))
	if "" == status {
		return ErrRequiredStatus
	}

	return runSimple(c, "update_order_status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
}
