// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/counter"
	escrowmanager "github.com/tari-l2/tari-l2-node/escrow"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/rpc/channels"
	"github.com/tari-l2/tari-l2-node/rpc/codec"
	"github.com/tari-l2/tari-l2-node/rpc/escrow"
	"github.com/tari-l2/tari-l2-node/rpc/market"
	"github.com/tari-l2/tari-l2-node/rpc/node"
	"github.com/tari-l2/tari-l2-node/rpc/profile"
	"github.com/tari-l2/tari-l2-node/rpc/wallet"
	walletstore "github.com/tari-l2/tari-l2-node/wallet"
)

// Methods - JSON-RPC method names and the services that serve them
var Methods = codec.Methods{
	"get_node_info": "Node.Info",
	"get_l1_status": "Node.L1Status",
	"get_peers":     "Node.Peers",

	"list_channels":       "Channels.List",
	"create_channel":      "Channels.Create",
	"get_channel_info":    "Channels.Info",
	"transfer_in_channel": "Channels.Transfer",
	"transfer":            "Channels.Transfer",
	"close_channel":       "Channels.Close",
	"get_balance":         "Channels.Balance",
	"get_channel_history": "Channels.History",
	"get_pending_update":  "Channels.Pending",
	"get_channel_l1":      "Channels.Collateral",
	"sign_state_update":   "Channels.Sign",
	"dispute_channel":     "Channels.Dispute",

	"create_listing":      "Market.CreateListing",
	"get_listings":        "Market.Listings",
	"update_listing":      "Market.UpdateListing",
	"create_order":        "Market.CreateOrder",
	"get_orders":          "Market.Orders",
	"update_order_status": "Market.UpdateOrderStatus",

	"create_profile": "Profile.Create",
	"get_profile":    "Profile.Get",
	"update_profile": "Profile.Update",

	"create_escrow":    "Escrow.Create",
	"fund_escrow":      "Escrow.Fund",
	"ship_order":       "Escrow.Ship",
	"confirm_delivery": "Escrow.ConfirmDelivery",
	"request_refund":   "Escrow.RequestRefund",
	"approve_refund":   "Escrow.ApproveRefund",
	"raise_dispute":    "Escrow.RaiseDispute",
	"cancel_escrow":    "Escrow.Cancel",
	"get_escrow":       "Escrow.Get",
	"list_escrows":     "Escrow.List",

	"wallet_create":      "Wallet.Create",
	"wallet_import_seed": "Wallet.ImportSeed",
	"wallet_import_key":  "Wallet.ImportKey",
	"wallet_export":      "Wallet.Export",
	"wallet_list":        "Wallet.List",
	"wallet_sign":        "Wallet.Sign",
	"get_l1_balance":     "Wallet.L1Balance",
}

// Handles - the subsystems behind the RPC services
//
// Peers and Network are nil when running without p2p
type Handles struct {
	NodeKey  account.PublicKey
	PeerID   string
	L1       *l1client.Client
	Peers    node.Peers
	Network  channels.Network
	Channels *channel.Manager
	Market   *marketplace.Manager
	Escrows  *escrowmanager.Manager
	Wallets  *walletstore.Store
}

// Create - a net/rpc server with every service registered
func Create(log *logger.L, version string, rpcCount *counter.Counter, handles Handles) *rpc.Server {

	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.Register(node.New(log, start, version, handles.NodeKey, handles.PeerID, handles.L1, handles.Peers, rpcCount))
	_ = server.Register(channels.New(log, handles.Channels, handles.NodeKey, handles.L1, handles.Network))
	_ = server.Register(market.New(log, handles.Market, handles.Channels, handles.NodeKey))
	_ = server.Register(profile.New(log, handles.Market))
	_ = server.Register(escrow.New(log, handles.Escrows))
	_ = server.Register(wallet.New(log, handles.Wallets, handles.L1.Network(), handles.L1))

	return server
}
