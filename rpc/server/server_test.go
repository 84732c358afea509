// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/counter"
	"github.com/tari-l2/tari-l2-node/escrow"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/messagebus"
	"github.com/tari-l2/tari-l2-node/rpc/channels"
	"github.com/tari-l2/tari-l2-node/rpc/codec"
	"github.com/tari-l2/tari-l2-node/rpc/fixtures"
	"github.com/tari-l2/tari-l2-node/rpc/handler"
	"github.com/tari-l2/tari-l2-node/rpc/server"
	"github.com/tari-l2/tari-l2-node/wallet"
)

type testNode struct {
	h       *handler.Handler
	nodeKey *account.PrivateKey
	peerKey *account.PrivateKey
}

type response struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *codec.Error    `json:"error"`
}

func setup(t *testing.T) *testNode {
	if err := fixtures.SetupTestStorage(); nil != err {
		t.Fatalf("storage setup error: %s", err)
	}
	messagebus.Bus.P2P.Drain()

	log := logger.New(fixtures.LogCategory)

	nodeKey, err := account.NewPrivateKey()
	if nil != err {
		t.Fatalf("node key error: %s", err)
	}
	peerKey, err := account.NewPrivateKey()
	if nil != err {
		t.Fatalf("peer key error: %s", err)
	}

	l1 := l1client.New(log, l1client.Esmeralda, "")

	walletDirectory := filepath.Join(fixtures.Directory(), "wallets")
	_ = os.MkdirAll(walletDirectory, 0700)
	wallets, err := wallet.NewStore(log, walletDirectory, l1.Network())
	if nil != err {
		t.Fatalf("wallet store error: %s", err)
	}

	channels, err := channel.NewManager(log, l1, channel.Keys{nodeKey, peerKey}, wallets)
	if nil != err {
		t.Fatalf("channel manager error: %s", err)
	}

	count := counter.Counter(0)
	s := server.Create(log, "0.1.0", &count, server.Handles{
		NodeKey:  nodeKey.PublicKey(),
		PeerID:   "12D3KooWtest",
		L1:       l1,
		Channels: channels,
		Market:   marketplace.NewManager(log),
		Escrows:  escrow.NewManager(log, l1, 86400),
		Wallets:  wallets,
	})

	return &testNode{
		h:       handler.New(log, s, server.Methods, &count, 10),
		nodeKey: nodeKey,
		peerKey: peerKey,
	}
}

func teardown() {
	messagebus.Bus.P2P.Drain()
	fixtures.TeardownTestStorage()
}

func (n *testNode) call(t *testing.T, method string, params interface{}, result interface{}) *codec.Error {
	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}
	body, err := json.Marshal(request)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}

	req := httptest.NewRequest(http.MethodPost, "http://localhost/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	n.h.ServeHTTP(w, req)

	resp := w.Result()
	if http.StatusOK != resp.StatusCode {
		t.Fatalf("%s: http status: %d", method, resp.StatusCode)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); nil != err {
		t.Fatalf("%s: decode error: %s", method, err)
	}
	if nil != r.Error {
		return r.Error
	}
	if nil != result {
		if err := json.Unmarshal(r.Result, result); nil != err {
			t.Fatalf("%s: result decode error: %s", method, err)
		}
	}
	return nil
}

func TestEveryMethodIsRegistered(t *testing.T) {
	n := setup(t)
	defer teardown()

	// a bad id reaches the handler, only an unregistered method gives
	// an unknown method error
	for name := range server.Methods {
		rpcErr := n.call(t, name, map[string]interface{}{}, nil)
		if nil != rpcErr {
			assert.NotEqual(t, "Unknown method: "+name, rpcErr.Message, "method not registered: %s", name)
			assert.NotContains(t, rpcErr.Message, "can't find", "method not registered: %s", name)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	n := setup(t)
	defer teardown()

	rpcErr := n.call(t, "no_such_method", nil, nil)
	if assert.NotNil(t, rpcErr, "missing error") {
		assert.Equal(t, codec.ServerError, rpcErr.Code, "wrong code")
		assert.Equal(t, "Unknown method: no_such_method", rpcErr.Message, "wrong message")
	}
}

func TestNodeInfo(t *testing.T) {
	n := setup(t)
	defer teardown()

	var reply struct {
		PublicKey string `json:"public_key"`
		PeerID    string `json:"peer_id"`
		Version   string `json:"version"`
		Network   string `json:"network"`
	}
	rpcErr := n.call(t, "get_node_info", nil, &reply)
	assert.Nil(t, rpcErr, "unexpected error")
	assert.Equal(t, n.nodeKey.PublicKey().String(), reply.PublicKey, "wrong public key")
	assert.Equal(t, "12D3KooWtest", reply.PeerID, "wrong peer id")
	assert.Equal(t, "0.1.0", reply.Version, "wrong version")
	assert.Equal(t, "esmeralda", reply.Network, "wrong network")

	var status l1client.Status
	rpcErr = n.call(t, "get_l1_status", nil, &status)
	assert.Nil(t, rpcErr, "unexpected error")
	assert.Equal(t, "esmeralda", status.Network, "wrong network")

	var peers []json.RawMessage
	rpcErr = n.call(t, "get_peers", nil, &peers)
	assert.Nil(t, rpcErr, "unexpected error")
	assert.Equal(t, 0, len(peers), "unexpected peers")
}

func TestChannelLifecycle(t *testing.T) {
	n := setup(t)
	defer teardown()

	node := n.nodeKey.PublicKey()
	peer := n.peerKey.PublicKey()

	var created struct {
		ChannelID  string `json:"channel_id"`
		Status     string `json:"status"`
		Collateral uint64 `json:"collateral"`
		L1TxID     string `json:"l1_tx_id"`
	}
	rpcErr := n.call(t, "create_channel", map[string]interface{}{
		"participant1": node.String(),
		"participant2": peer.String(),
		"collateral":   1001,
	}, &created)
	if !assert.Nil(t, rpcErr, "create error") {
		t.FailNow()
	}
	assert.Equal(t, "active", created.Status, "wrong status")
	assert.Equal(t, uint64(1001), created.Collateral, "wrong collateral")
	assert.NotEqual(t, "", created.L1TxID, "missing lock tx")

	var info channel.Info
	rpcErr = n.call(t, "get_channel_info", map[string]string{"channel_id": created.ChannelID}, &info)
	assert.Nil(t, rpcErr, "info error")
	assert.Equal(t, created.ChannelID, info.ChannelID.String(), "wrong channel id")
	assert.Equal(t, uint64(501), info.Balances[node], "odd unit not with participant1")
	assert.Equal(t, uint64(500), info.Balances[peer], "wrong participant2 balance")

	var list []*channel.Info
	rpcErr = n.call(t, "list_channels", nil, &list)
	assert.Nil(t, rpcErr, "list error")
	assert.Equal(t, 1, len(list), "wrong channel count")

	var proposal channel.ProposalResult
	rpcErr = n.call(t, "transfer_in_channel", map[string]interface{}{
		"channel_id": created.ChannelID,
		"amount":     100,
	}, &proposal)
	assert.Nil(t, rpcErr, "transfer error")
	assert.True(t, proposal.Applied, "transfer not applied")
	assert.Equal(t, uint64(1), proposal.Nonce, "wrong nonce")

	var balance uint64
	rpcErr = n.call(t, "get_balance", map[string]string{
		"channel_id":  created.ChannelID,
		"participant": peer.String(),
	}, &balance)
	assert.Nil(t, rpcErr, "balance error")
	assert.Equal(t, uint64(600), balance, "wrong balance after transfer")

	rpcErr = n.call(t, "transfer", map[string]interface{}{
		"channel_id": created.ChannelID,
		"amount":     10000,
	}, nil)
	assert.NotNil(t, rpcErr, "overdraft accepted")

	var history []json.RawMessage
	rpcErr = n.call(t, "get_channel_history", map[string]string{"channel_id": created.ChannelID}, &history)
	assert.Nil(t, rpcErr, "history error")
	assert.Equal(t, 1, len(history), "wrong history length")
}

func TestMissingChannel(t *testing.T) {
	n := setup(t)
	defer teardown()

	rpcErr := n.call(t, "get_channel_info", map[string]string{
		"channel_id": "0101010101010101010101010101010101010101010101010101010101010101",
	}, nil)
	if assert.NotNil(t, rpcErr, "missing error") {
		assert.Equal(t, codec.ServerError, rpcErr.Code, "wrong code")
	}
}

func TestMarketplace(t *testing.T) {
	n := setup(t)
	defer teardown()

	var listing marketplace.Listing
	rpcErr := n.call(t, "create_listing", map[string]interface{}{
		"title":       "Vintage Camera",
		"description": "Fully working",
		"price":       250,
		"category":    "electronics",
	}, &listing)
	if !assert.Nil(t, rpcErr, "create listing error") {
		t.FailNow()
	}
	assert.Equal(t, n.nodeKey.PublicKey(), listing.Seller, "seller not the node key")
	assert.True(t, listing.Active, "listing not active")

	var listings []marketplace.Listing
	rpcErr = n.call(t, "get_listings", nil, &listings)
	assert.Nil(t, rpcErr, "get listings error")
	found := false
	for _, l := range listings {
		if l.ID == listing.ID {
			found = true
		}
	}
	assert.True(t, found, "listing missing from get_listings")

	rpcErr = n.call(t, "create_listing", map[string]interface{}{"title": "", "price": 1}, nil)
	assert.NotNil(t, rpcErr, "empty title accepted")

	var order marketplace.Order
	rpcErr = n.call(t, "create_order", map[string]interface{}{
		"listing_id":   listing.ID.String(),
		"buyer_pubkey": n.peerKey.PublicKey().String(),
	}, &order)
	if !assert.Nil(t, rpcErr, "create order error") {
		t.FailNow()
	}
	assert.Equal(t, marketplace.OrderPending, order.Status, "order not pending")
	assert.Equal(t, uint64(250), order.Amount, "wrong amount")

	var updated marketplace.Order
	rpcErr = n.call(t, "update_order_status", map[string]string{
		"order_id": order.ID.String(),
		"status":   "confirmed",
	}, &updated)
	assert.Nil(t, rpcErr, "update order error")
	assert.Equal(t, marketplace.OrderConfirmed, updated.Status, "wrong updated status")

	var orders []marketplace.Order
	rpcErr = n.call(t, "get_orders", nil, &orders)
	assert.Nil(t, rpcErr, "get orders error")
	if assert.Equal(t, 1, len(orders), "wrong order count") {
		assert.Equal(t, marketplace.OrderConfirmed, orders[0].Status, "status change not reflected")
	}

	rpcErr = n.call(t, "update_order_status", map[string]string{
		"order_id": order.ID.String(),
		"status":   "not-a-status",
	}, nil)
	assert.NotNil(t, rpcErr, "bad status accepted")
}

func TestChannelListing(t *testing.T) {
	n := setup(t)
	defer teardown()

	var created struct {
		ChannelID string `json:"channel_id"`
	}
	rpcErr := n.call(t, "create_channel", map[string]interface{}{
		"participant1": n.nodeKey.PublicKey().String(),
		"participant2": n.peerKey.PublicKey().String(),
		"collateral":   1000,
	}, &created)
	if !assert.Nil(t, rpcErr, "create error") {
		t.FailNow()
	}

	var listing marketplace.Listing
	rpcErr = n.call(t, "create_listing", map[string]interface{}{
		"title":      "Book",
		"price":      20,
		"channel_id": created.ChannelID,
	}, &listing)
	assert.Nil(t, rpcErr, "create listing error")

	var info channel.Info
	rpcErr = n.call(t, "get_channel_info", map[string]string{"channel_id": created.ChannelID}, &info)
	assert.Nil(t, rpcErr, "info error")
	assert.Equal(t, 1, info.NumListings, "listing not proposed in channel")
	assert.Equal(t, uint64(1), info.Nonce, "wrong nonce")
}

func (n *testNode) openChannel(t *testing.T, other account.PublicKey, collateral uint64) string {
	var created struct {
		ChannelID string `json:"channel_id"`
	}
	rpcErr := n.call(t, "create_channel", map[string]interface{}{
		"participant1": n.nodeKey.PublicKey().String(),
		"participant2": other.String(),
		"collateral":   collateral,
	}, &created)
	if nil != rpcErr {
		t.Fatalf("create channel error: %s", rpcErr.Message)
	}
	return created.ChannelID
}

// sign the pending update of a channel as a participant on another node
func (n *testNode) cosign(t *testing.T, channelID string, key *account.PrivateKey) {
	var pending channels.PendingReply
	rpcErr := n.call(t, "get_pending_update", map[string]string{"channel_id": channelID}, &pending)
	if nil != rpcErr {
		t.Fatalf("pending update error: %s", rpcErr.Message)
	}
	if !pending.Pending {
		t.Fatalf("channel: %s  no pending update", channelID)
	}
	message, err := hex.DecodeString(pending.Message)
	if nil != err {
		t.Fatalf("message hex error: %s", err)
	}

	var result channel.ProposalResult
	rpcErr = n.call(t, "sign_state_update", map[string]interface{}{
		"channel_id": channelID,
		"nonce":      pending.Nonce,
		"signer":     key.PublicKey(),
		"signature":  key.Sign(message),
	}, &result)
	if nil != rpcErr {
		t.Fatalf("sign error: %s", rpcErr.Message)
	}
	if !result.Applied {
		t.Fatalf("channel: %s  nonce: %d  not applied", channelID, pending.Nonce)
	}
}

func TestChannelRejectionStoresNothing(t *testing.T) {
	n := setup(t)
	defer teardown()

	channelID := n.openChannel(t, n.peerKey.PublicKey(), 10)

	var listing marketplace.Listing
	rpcErr := n.call(t, "create_listing", map[string]interface{}{
		"title":      "Lamp",
		"price":      20,
		"channel_id": channelID,
	}, &listing)
	if !assert.Nil(t, rpcErr, "create listing error") {
		t.FailNow()
	}

	rpcErr = n.call(t, "create_order", map[string]interface{}{
		"listing_id": listing.ID.String(),
		"channel_id": channelID,
	}, nil)
	if assert.NotNil(t, rpcErr, "order beyond the channel balance accepted") {
		assert.Equal(t, "Insufficient balance: required 20, available 5", rpcErr.Message, "wrong message")
	}

	var orders []marketplace.Order
	rpcErr = n.call(t, "get_orders", nil, &orders)
	assert.Nil(t, rpcErr, "get orders error")
	assert.Equal(t, 0, len(orders), "rejected order stored")

	var closed channel.CloseResult
	rpcErr = n.call(t, "close_channel", map[string]string{"channel_id": channelID}, &closed)
	assert.Nil(t, rpcErr, "close error")

	rpcErr = n.call(t, "create_listing", map[string]interface{}{
		"title":      "Chair",
		"price":      5,
		"channel_id": channelID,
	}, nil)
	assert.NotNil(t, rpcErr, "listing in a closed channel accepted")

	var listings []marketplace.Listing
	rpcErr = n.call(t, "get_listings", nil, &listings)
	assert.Nil(t, rpcErr, "get listings error")
	assert.Equal(t, 1, len(listings), "rejected listing stored")
}

func TestRemoteCosignedOrderStatus(t *testing.T) {
	n := setup(t)
	defer teardown()

	// the other participant is held by another node
	remote, err := account.NewPrivateKey()
	if nil != err {
		t.Fatalf("key error: %s", err)
	}
	channelID := n.openChannel(t, remote.PublicKey(), 1000)

	var listing marketplace.Listing
	rpcErr := n.call(t, "create_listing", map[string]interface{}{
		"title":      "Kettle",
		"price":      20,
		"channel_id": channelID,
	}, &listing)
	if !assert.Nil(t, rpcErr, "create listing error") {
		t.FailNow()
	}
	n.cosign(t, channelID, remote)

	var order marketplace.Order
	rpcErr = n.call(t, "create_order", map[string]interface{}{
		"listing_id": listing.ID.String(),
		"channel_id": channelID,
	}, &order)
	if !assert.Nil(t, rpcErr, "create order error") {
		t.FailNow()
	}
	n.cosign(t, channelID, remote)

	status := func() marketplace.OrderStatus {
		var orders []marketplace.Order
		rpcErr := n.call(t, "get_orders", nil, &orders)
		if nil != rpcErr || 1 != len(orders) {
			t.Fatalf("get orders: %d  error: %v", len(orders), rpcErr)
		}
		return orders[0].Status
	}

	var updated marketplace.Order
	rpcErr = n.call(t, "update_order_status", map[string]string{
		"order_id": order.ID.String(),
		"status":   "confirmed",
	}, &updated)
	assert.Nil(t, rpcErr, "confirm error")
	assert.Equal(t, marketplace.OrderPending, updated.Status, "status changed before co-signing")
	assert.Equal(t, marketplace.OrderPending, status(), "stored status changed before co-signing")

	rpcErr = n.call(t, "update_order_status", map[string]string{
		"order_id": order.ID.String(),
		"status":   "cancelled",
	}, nil)
	assert.NotNil(t, rpcErr, "second update while one awaits signatures")

	n.cosign(t, channelID, remote)
	assert.Equal(t, marketplace.OrderConfirmed, status(), "co-signed status not stored")

	rpcErr = n.call(t, "update_order_status", map[string]string{
		"order_id": order.ID.String(),
		"status":   "shipped",
	}, nil)
	assert.Nil(t, rpcErr, "ship error")

	n.cosign(t, channelID, remote)
	assert.Equal(t, marketplace.OrderShipped, status(), "co-signed status not stored")

	var pending channels.PendingReply
	rpcErr = n.call(t, "get_pending_update", map[string]string{"channel_id": channelID}, &pending)
	assert.Nil(t, rpcErr, "pending update error")
	assert.False(t, pending.Pending, "pending update after the last co-sign")

	var records channels.CollateralReply
	rpcErr = n.call(t, "get_channel_l1", map[string]string{"channel_id": channelID}, &records)
	assert.Nil(t, rpcErr, "channel l1 error")
	assert.True(t, records.Locked, "collateral not locked")
}

func TestEscrow(t *testing.T) {
	n := setup(t)
	defer teardown()

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	rpcErr := n.call(t, "create_escrow", map[string]interface{}{
		"listing_id": "0202020202020202020202020202020202020202020202020202020202020202",
		"buyer":      n.peerKey.PublicKey().String(),
		"seller":     n.nodeKey.PublicKey().String(),
		"amount":     500,
	}, &created)
	if !assert.Nil(t, rpcErr, "create escrow error") {
		t.FailNow()
	}
	assert.Equal(t, "created", created.Status, "wrong status")

	var shipped struct {
		Status string `json:"status"`
	}
	rpcErr = n.call(t, "ship_order", map[string]string{"escrow_id": created.ID}, &shipped)
	assert.NotNil(t, rpcErr, "unfunded escrow shipped")

	var cancelled struct {
		Status string `json:"status"`
	}
	rpcErr = n.call(t, "cancel_escrow", map[string]string{"escrow_id": created.ID}, &cancelled)
	assert.Nil(t, rpcErr, "cancel escrow error")
	assert.Equal(t, "cancelled", cancelled.Status, "wrong status after cancel")

	rpcErr = n.call(t, "fund_escrow", map[string]string{"escrow_id": created.ID, "l1_tx_id": "mock_tx_1"}, nil)
	assert.NotNil(t, rpcErr, "cancelled escrow funded")

	var escrows []json.RawMessage
	rpcErr = n.call(t, "list_escrows", nil, &escrows)
	assert.Nil(t, rpcErr, "list escrows error")
	assert.Equal(t, 1, len(escrows), "wrong escrow count")
}

func TestWalletImportSeed(t *testing.T) {
	n := setup(t)
	defer teardown()

	var created struct {
		AddressHex string `json:"address_hex"`
		SeedPhrase string `json:"seed_phrase"`
		Source     string `json:"source"`
	}
	rpcErr := n.call(t, "wallet_create", map[string]string{}, &created)
	if !assert.Nil(t, rpcErr, "wallet create error") {
		t.FailNow()
	}
	assert.Equal(t, "embedded_wallet", created.Source, "wrong source")

	var imported struct {
		AddressHex string `json:"address_hex"`
	}
	rpcErr = n.call(t, "wallet_import_seed", map[string]string{"seed_phrase": created.SeedPhrase}, &imported)
	assert.Nil(t, rpcErr, "wallet import error")
	assert.Equal(t, created.AddressHex, imported.AddressHex, "import gave a different wallet")

	rpcErr = n.call(t, "wallet_import_seed", map[string]string{"seed_phrase": "too short"}, nil)
	assert.NotNil(t, rpcErr, "short seed accepted")

	var listed []wallet.Summary
	rpcErr = n.call(t, "wallet_list", nil, &listed)
	assert.Nil(t, rpcErr, "wallet list error")
	if assert.Equal(t, 1, len(listed), "wrong wallet count") {
		assert.Equal(t, created.AddressHex, listed[0].AddressHex, "wrong listed wallet")
	}
}
