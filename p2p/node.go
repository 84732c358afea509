// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	libp2p "github.com/libp2p/go-libp2p"
	connmgr "github.com/libp2p/go-libp2p-connmgr"
	crypto "github.com/libp2p/go-libp2p-core/crypto"
	"github.com/libp2p/go-libp2p-core/host"
	peerlib "github.com/libp2p/go-libp2p-core/peer"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	tls "github.com/libp2p/go-libp2p-tls"
	ma "github.com/multiformats/go-multiaddr"
	madns "github.com/multiformats/go-multiaddr-dns"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/configuration"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/messagebus"
)

// gossip topics
const (
	TopicStateUpdates  = "tari-l2-state-updates"
	TopicAnnouncements = "tari-l2-channel-announcements"
)

const (
	connGraceTime  = 30 * time.Second
	connectTimeout = 10 * time.Second
	pingInitial    = 5 * time.Second
	pingInterval   = 2 * time.Minute
)

// DomainUpdater - receives changed DNS seed domains
type DomainUpdater interface {
	SetDomains([]string)
}

// Connected - a connected peer (for RPC)
type Connected struct {
	ID        string   `json:"peer_id"`
	Addresses []string `json:"addresses"`
}

// Node - libp2p host with gossip subscriptions
type Node struct {
	sync.RWMutex
	log     *logger.L
	chain   string
	host    host.Host
	pubsub  *pubsub.PubSub
	handler *Handler
	subs    []*pubsub.Subscription
	ctx     context.Context
	cancel  context.CancelFunc
	domains DomainUpdater
}

// New - create the host, join the topics and dial bootstrap peers
func New(log *logger.L, config configuration.NetworkType, chain string, identity crypto.PrivKey, channels ChannelHandler) (*Node, error) {
	log.Info("starting…")

	ctx, cancel := context.WithCancel(context.Background())

	high := config.MaxPeers
	low := high / 2
	cm := connmgr.NewConnManager(low, high, connGraceTime)

	h, err := libp2p.New(ctx,
		libp2p.Identity(identity),
		libp2p.Security(tls.ID, tls.New),
		libp2p.ConnectionManager(cm),
		libp2p.ListenAddrStrings(config.ListenAddress),
	)
	if nil != err {
		cancel()
		return nil, err
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if nil != err {
		h.Close()
		cancel()
		return nil, err
	}

	n := &Node{
		log:     log,
		chain:   chain,
		host:    h,
		pubsub:  ps,
		handler: NewHandler(log, chain, channels),
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, topic := range []string{TopicStateUpdates, TopicAnnouncements} {
		sub, err := ps.Subscribe(topic)
		if nil != err {
			n.close()
			return nil, err
		}
		n.subs = append(n.subs, sub)
		go n.subscription(sub)
	}

	for _, a := range n.Addresses() {
		log.Infof("host address: %s", a)
	}

	if len(config.BootstrapPeers) > 0 {
		go n.ConnectStrings(config.BootstrapPeers)
	}

	return n, nil
}

// SetDomainUpdater - where changed DNS seeds are sent
func (n *Node) SetDomainUpdater(d DomainUpdater) {
	n.Lock()
	n.domains = d
	n.Unlock()
}

// ID - this host
func (n *Node) ID() peerlib.ID {
	return n.host.ID()
}

// Addresses - full multiaddresses including the peer id
func (n *Node) Addresses() []string {
	suffix := "/" + ma.ProtocolWithCode(ma.P_P2P).Name + "/" + n.host.ID().Pretty()
	addrs := make([]string, 0, len(n.host.Addrs()))
	for _, a := range n.host.Addrs() {
		addrs = append(addrs, a.String()+suffix)
	}
	return addrs
}

// Peers - connected peers ordered by id
func (n *Node) Peers() []Connected {
	ids := n.host.Network().Peers()
	peers := make([]Connected, 0, len(ids))
	for _, id := range ids {
		addrs := []string{}
		for _, a := range n.host.Peerstore().Addrs(id) {
			addrs = append(addrs, a.String())
		}
		peers = append(peers, Connected{
			ID:        id.Pretty(),
			Addresses: addrs,
		})
	}
	sort.Slice(peers, func(i, j int) bool {
		return peers[i].ID < peers[j].ID
	})
	return peers
}

// RemoteInfo - channel info gossiped by peers
func (n *Node) RemoteInfo(id merkle.Digest) (*channel.Info, bool) {
	return n.handler.RemoteInfo(id)
}

// RequestInfo - ask peers for a channel
func (n *Node) RequestInfo(id merkle.Digest) {
	messagebus.Bus.P2P.Send(messagebus.InfoRequest, id[:])
}

// RequestOpen - invite the nodes holding the other participant keys
func (n *Node) RequestOpen(initiator account.PublicKey, participants []account.PublicKey) {
	r := &OpenRequest{
		Initiator:    initiator,
		Participants: participants,
	}
	messagebus.Bus.P2P.Send(messagebus.OpenRequest, r.Pack()...)
}

// UpdatePeers - dial new bootstrap peers and refresh DNS seeds
func (n *Node) UpdatePeers(bootstrapPeers []string, dnsSeeds []string) {
	n.ConnectStrings(bootstrapPeers)

	n.RLock()
	d := n.domains
	n.RUnlock()
	if nil != d {
		d.SetDomains(dnsSeeds)
	}
}

// ConnectStrings - parse and dial, invalid entries are logged
func (n *Node) ConnectStrings(addresses []string) int {
	addrs := make([]ma.Multiaddr, 0, len(addresses))
	for _, s := range addresses {
		a, err := ma.NewMultiaddr(s)
		if nil != err {
			n.log.Warnf("invalid peer address: %q  error: %s", s, err)
			continue
		}
		addrs = append(addrs, a)
	}
	return n.Connect(addrs)
}

// Connect - dial peers, /dns4 and /dns6 forms are resolved first;
// returns the number of successful connections
func (n *Node) Connect(addrs []ma.Multiaddr) int {
	log := n.log
	count := 0

	for _, a := range addrs {
		resolved := []ma.Multiaddr{a}
		if madns.Matches(a) {
			ctx, cancel := context.WithTimeout(n.ctx, connectTimeout)
			r, err := madns.Resolve(ctx, a)
			cancel()
			if nil != err || 0 == len(r) {
				log.Warnf("resolve: %s  error: %v", a, err)
				continue
			}
			resolved = r
		}

		for _, r := range resolved {
			info, err := peerlib.AddrInfoFromP2pAddr(r)
			if nil != err {
				log.Warnf("peer address: %s  error: %s", r, err)
				continue
			}
			if info.ID == n.host.ID() {
				continue
			}
			ctx, cancel := context.WithTimeout(n.ctx, connectTimeout)
			err = n.host.Connect(ctx, *info)
			cancel()
			if nil != err {
				log.Warnf("connect: %s  error: %s", r, err)
				continue
			}
			log.Infof("connected: %s", info.ID.Pretty())
			count += 1
			break
		}
	}
	return count
}

func topicFor(command string) string {
	switch command {
	case messagebus.Announce, messagebus.OpenRequest, messagebus.OpenResponse:
		return TopicAnnouncements
	default:
		return TopicStateUpdates
	}
}

func (n *Node) publish(command string, parameters [][]byte) error {
	packed, err := PackMessage(n.chain, command, parameters)
	if nil != err {
		return err
	}
	return n.pubsub.Publish(topicFor(command), packed)
}

func (n *Node) subscription(sub *pubsub.Subscription) {
	log := n.log
	for {
		msg, err := sub.Next(n.ctx)
		if nil != err {
			if nil != n.ctx.Err() {
				return
			}
			log.Warnf("subscription: %s  error: %s", sub.Topic(), err)
			continue
		}
		if msg.GetFrom() == n.host.ID() {
			continue
		}

		e, err := UnpackMessage(msg.Data)
		if nil != err {
			log.Debugf("from: %s  error: %s", msg.GetFrom().Pretty(), err)
			continue
		}
		replies, err := n.handler.Handle(e)
		if nil != err {
			log.Debugf("from: %s  command: %s  error: %s", msg.GetFrom().Pretty(), e.Command, err)
			continue
		}
		for _, r := range replies {
			if err := n.publish(r.Command, r.Parameters); nil != err {
				log.Warnf("reply: %s  error: %s", r.Command, err)
			}
		}
	}
}

// Run - publish queued outbound messages until shutdown
func (n *Node) Run(args interface{}, shutdown <-chan struct{}) {
	log := n.log
	queue := messagebus.Bus.P2P.Chan()
	ping := time.After(pingInitial)

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case item := <-queue:
			if err := n.publish(item.Command, item.Parameters); nil != err {
				log.Warnf("publish: %s  error: %s", item.Command, err)
				continue loop
			}
			log.Debugf("published: %s  parameters: %d", item.Command, len(item.Parameters))

		case <-ping:
			ping = time.After(pingInterval)
			if len(n.host.Network().Peers()) > 0 {
				t := packTimestamp(uint64(time.Now().UnixNano()))
				if err := n.publish(messagebus.Ping, [][]byte{t}); nil != err {
					log.Debugf("ping error: %s", err)
				}
			}
		}
	}

	log.Info("shutting down…")
	n.close()
	log.Flush()
}

func (n *Node) close() {
	for _, sub := range n.subs {
		sub.Cancel()
	}
	n.cancel()
	if err := n.host.Close(); nil != err {
		n.log.Errorf("host close error: %s", err)
	}
}
