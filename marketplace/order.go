// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marketplace

import (
	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/merkle"
)

// Order - a buyer's purchase of a listing
type Order struct {
	ID        merkle.Digest     `json:"id"`
	ListingID merkle.Digest     `json:"listing_id"`
	Buyer     account.PublicKey `json:"buyer_pubkey"`
	Seller    account.PublicKey `json:"seller_pubkey"`
	Amount    uint64            `json:"amount"`
	Status    OrderStatus       `json:"status"`
	ChannelID *merkle.Digest    `json:"channel_id,omitempty"`
	CreatedAt uint64            `json:"created_at"`
	UpdatedAt uint64            `json:"updated_at"`
}

// NewOrder - a pending order for the full listing price
func NewOrder(listing *Listing, buyer account.PublicKey, channelID *merkle.Digest, createdAt uint64) Order {
	return Order{
		ID:        merkle.NewRandomDigest(),
		ListingID: listing.ID,
		Buyer:     buyer,
		Seller:    listing.Seller,
		Amount:    listing.Price,
		Status:    OrderPending,
		ChannelID: channelID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
