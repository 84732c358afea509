// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package channel - off-chain state channels between marketplace participants
//
// A channel holds a state (nonce, balances, listings and orders) that
// advances only by updates carrying a valid signature from every
// participant.  Each update is a packed record:
//
//   Varint64(tag) followed by its fields, each variable length field
//   prefixed by Varint64(length)
//
// The signed message of an update is the packed record followed by
// the new nonce as 8 byte little endian.  The state root is the
// BLAKE2b-256 digest of the packed state.
package channel
