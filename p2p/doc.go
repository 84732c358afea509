// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package p2p - gossip transport for channel state updates
//
// every message is a protobuf Envelope carrying the chain name, a
// command and a list of binary parameters.  Two GossipSub topics are
// used:
//
//   tari-l2-channel-announcements  announce, open, open-rsp
//   tari-l2-state-updates          proposal, ack, info, info-rsp, ping, pong
//
// outbound traffic is queued on messagebus.Bus.P2P by the channel
// manager and published from the node background process
package p2p
