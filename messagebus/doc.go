// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - a queuing system for outbound message packets
//
// subsystems queue commands here and the p2p background drains the
// queue onto the gossip topics
package messagebus
