// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package discovery - find peers from DNS TXT seed records
//
// a seed domain carries one TXT record per peer:
//
//   tari-l2=/ip4/198.51.100.7/tcp/9000/p2p/<peer id>
//
// records are re-fetched at the SOA TTL of the domain, clamped to
// between one minute and one hour
package discovery
