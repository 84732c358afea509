// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package marketplace - listings, orders and seller/buyer profiles
//
// records are kept in the storage pools Listings, Orders and Profiles
// as JSON.  The same Listing and Order types are carried inside a
// channel state when a listing or order is bound to a channel.
package marketplace
