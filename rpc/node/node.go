// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/counter"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/p2p"
	"github.com/tari-l2/tari-l2-node/rpc/ratelimit"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// L1 - base layer connection summary
type L1 interface {
	Status() l1client.Status
}

// Peers - source of the connected peer list
type Peers interface {
	Peers() []p2p.Connected
}

// Node - type for RPC calls
type Node struct {
	Log       *logger.L
	Limiter   *rate.Limiter
	Start     time.Time
	Version   string
	PublicKey account.PublicKey
	PeerID    string
	l1        L1
	peers     Peers
	counter   *counter.Counter
}

// New - create the node service
func New(log *logger.L, start time.Time, version string, publicKey account.PublicKey, peerID string, l1 L1, peers Peers, counter *counter.Counter) *Node {
	return &Node{
		Log:       log,
		Limiter:   rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:     start,
		Version:   version,
		PublicKey: publicKey,
		PeerID:    peerID,
		l1:        l1,
		peers:     peers,
		counter:   counter,
	}
}

// ---

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	PublicKey      account.PublicKey `json:"public_key"`
	PeerID         string            `json:"peer_id"`
	Version        string            `json:"version"`
	Network        string            `json:"network"`
	Uptime         string            `json:"uptime"`
	RPCConnections uint64            `json:"rpc_connections"`
}

// Info - identity and state of this node
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	reply.PublicKey = node.PublicKey
	reply.PeerID = node.PeerID
	reply.Version = node.Version
	reply.Network = node.l1.Status().Network
	reply.Uptime = time.Since(node.Start).Truncate(time.Second).String()
	reply.RPCConnections = node.counter.Uint64()
	return nil
}

// ---

// L1StatusArguments - empty arguments for the base layer status
type L1StatusArguments struct{}

// L1Status - base layer connection status
func (node *Node) L1Status(_ *L1StatusArguments, reply *l1client.Status) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	*reply = node.l1.Status()
	return nil
}

// ---

// PeersArguments - empty arguments for the peer list
type PeersArguments struct{}

// PeerEntry - one connected peer
type PeerEntry struct {
	ID        string   `json:"id"`
	Addresses []string `json:"addresses"`
}

// Peers - connected p2p peers
func (node *Node) Peers(_ *PeersArguments, reply *[]PeerEntry) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	entries := make([]PeerEntry, 0)
	if nil != node.peers {
		for _, p := range node.peers.Peers() {
			entries = append(entries, PeerEntry{
				ID:        p.ID,
				Addresses: p.Addresses,
			})
		}
	}
	*reply = entries
	return nil
}
