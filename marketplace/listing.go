// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marketplace

import (
	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/merkle"
)

// defaults for optional listing fields
const (
	DefaultIPFSHash = "QmPending"
	DefaultCategory = "other"
)

// Listing - an item offered for sale
type Listing struct {
	ID          merkle.Digest     `json:"id"`
	Seller      account.PublicKey `json:"seller"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       uint64            `json:"price"`
	IPFSHash    string            `json:"ipfs_hash"`
	Category    string            `json:"category"`
	Active      bool              `json:"active"`
	ChannelID   *merkle.Digest    `json:"channel_id,omitempty"`
	CreatedAt   uint64            `json:"created_at"`
}

// NewListing - an active listing with a fresh random id
func NewListing(seller account.PublicKey, title string, description string, price uint64, ipfsHash string, category string, channelID *merkle.Digest, createdAt uint64) Listing {
	if "" == ipfsHash {
		ipfsHash = DefaultIPFSHash
	}
	if "" == category {
		category = DefaultCategory
	}
	return Listing{
		ID:          merkle.NewRandomDigest(),
		Seller:      seller,
		Title:       title,
		Description: description,
		Price:       price,
		IPFSHash:    ipfsHash,
		Category:    category,
		Active:      true,
		ChannelID:   channelID,
		CreatedAt:   createdAt,
	}
}
