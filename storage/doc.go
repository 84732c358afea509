// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the node's LevelDB store
//
// one database holds every pool; a pool is the key range sharing a
// single prefix byte, taken from the prefix tag on its field in Pool.
// Records are JSON. Recent writes are also held in an expiring cache
// in front of the database.
//
// Key layout (++ is concatenation, id is a 32 byte BLAKE2b-256
// digest, key is a 32 byte Ed25519 public key):
//
// Channels:
//
//   C ++ channel id            - channel record including state and history
//   U ++ channel id            - partially signed update waiting for signatures
//
// Marketplace:
//
//   L ++ listing id            - global listing
//   O ++ order id              - global order
//   P ++ public key            - user profile
//   E ++ escrow id             - escrow record
//
// Layer one:
//
//   K ++ channel id            - locked collateral
//   H ++ channel id            - checkpoints, oldest first
//
// Wallets:
//
//   W ++ address hex           - wallet file name index
//
// Testing:
//   Z ++ key                   - testing data
package storage
