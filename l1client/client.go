// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package l1client

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/storage"
)

// timing and simulated chain values
const (
	connectTimeout     = 5 * time.Second
	initialBlockHeight = 1000
	simulatedBalance   = 1000000
	mockPrefix         = "mock_"
)

// Status - connection summary
type Status struct {
	Connected   bool   `json:"connected"`
	Network     string `json:"network"`
	Endpoint    string `json:"endpoint"`
	BlockHeight uint64 `json:"block_height"`
}

// Collateral - funds locked on L1 for a channel
type Collateral struct {
	ChannelID    merkle.Digest       `json:"channel_id"`
	Amount       uint64              `json:"amount"`
	Participants []account.PublicKey `json:"participants"`
	BlockHeight  uint64              `json:"block_height"`
	TxID         string              `json:"tx_id"`
}

// Checkpoint - a channel state root anchored on L1
type Checkpoint struct {
	ChannelID   merkle.Digest `json:"channel_id"`
	StateRoot   merkle.Digest `json:"state_root"`
	Signatures  int           `json:"signatures"`
	BlockHeight uint64        `json:"block_height"`
	TxID        string        `json:"tx_id"`
}

// Client - base layer client
//
// the base node is only probed for reachability; collateral,
// checkpoint and dispute operations are simulated and recorded in the
// local database
type Client struct {
	sync.Mutex
	log         *logger.L
	network     Network
	endpoint    string
	connected   bool
	blockHeight uint64
	collateral  storage.Handle
	checkpoints storage.Handle
}

// New - create a client, an empty endpoint selects the network default
func New(log *logger.L, network Network, endpoint string) *Client {
	if "" == endpoint {
		endpoint = network.DefaultEndpoint()
	}
	return &Client{
		log:         log,
		network:     network,
		endpoint:    endpoint,
		blockHeight: initialBlockHeight,
		collateral:  storage.Pool.Collateral,
		checkpoints: storage.Pool.Checkpoints,
	}
}

// Connect - probe the base node with a TCP dial
//
// on failure the client stays offline
func (c *Client) Connect(ctx context.Context) error {
	host := c.endpoint
	if u, err := url.Parse(c.endpoint); nil == err && "" != u.Host {
		host = u.Host
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if nil != err {
		c.log.Warnf("base node: %s  unreachable: %s", host, err)
		c.setConnected(false)
		return fault.ErrNetwork
	}
	conn.Close()

	c.setConnected(true)
	c.log.Infof("base node: %s  network: %s  connected", host, c.network)
	return nil
}

func (c *Client) setConnected(connected bool) {
	c.Lock()
	c.connected = connected
	c.Unlock()
}

// IsConnected - result of the last probe
func (c *Client) IsConnected() bool {
	c.Lock()
	defer c.Unlock()
	return c.connected
}

// Network - the configured network
func (c *Client) Network() Network {
	return c.network
}

// Status - connection summary
func (c *Client) Status() Status {
	c.Lock()
	defer c.Unlock()
	return Status{
		Connected:   c.connected,
		Network:     c.network.Name(),
		Endpoint:    c.endpoint,
		BlockHeight: c.nextHeight(),
	}
}

// BlockHeight - simulated chain height, advances on every read
func (c *Client) BlockHeight() uint64 {
	c.Lock()
	defer c.Unlock()
	return c.nextHeight()
}

func (c *Client) nextHeight() uint64 {
	h := c.blockHeight
	c.blockHeight += 1
	return h
}

func mockTxID(kind string, parts ...[]byte) string {
	data := make([]byte, 0, 64)
	for _, p := range parts {
		data = append(data, p...)
	}
	d := merkle.NewDigest(data)
	return mockPrefix + kind + hex.EncodeToString(d[:8])
}

// LockCollateral - lock channel funds
func (c *Client) LockCollateral(channelID merkle.Digest, amount uint64, participants []account.PublicKey) (string, error) {
	c.Lock()
	defer c.Unlock()

	record := Collateral{
		ChannelID:    channelID,
		Amount:       amount,
		Participants: participants,
		BlockHeight:  c.nextHeight(),
		TxID:         mockTxID("tx_", channelID[:]),
	}
	if err := c.collateral.PutJSON(channelID[:], record); nil != err {
		return "", err
	}
	c.log.Infof("lock: %s  amount: %d  tx: %s", channelID, amount, record.TxID)
	return record.TxID, nil
}

// LockedCollateral - the lock record for a channel
func (c *Client) LockedCollateral(channelID merkle.Digest) (*Collateral, error) {
	c.Lock()
	defer c.Unlock()

	var record Collateral
	found, err := c.collateral.GetJSON(channelID[:], &record)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrCollateralNotFound
	}
	return &record, nil
}

// UnlockCollateral - release channel funds by final balances
func (c *Client) UnlockCollateral(channelID merkle.Digest, finalBalances map[account.PublicKey]uint64) (string, error) {
	c.Lock()
	defer c.Unlock()

	if !c.collateral.Has(channelID[:]) {
		return "", fault.NotFoundError(fmt.Sprintf("No locked collateral found for channel %s", channelID))
	}
	c.collateral.Delete(channelID[:])

	txID := mockTxID("unlock_tx_", channelID[:], []byte("unlock"))
	c.log.Infof("unlock: %s  outputs: %d  tx: %s", channelID, len(finalBalances), txID)
	return txID, nil
}

// CheckpointState - anchor a state root
func (c *Client) CheckpointState(channelID merkle.Digest, stateRoot merkle.Digest, signatures []account.Signature) (string, error) {
	c.Lock()
	defer c.Unlock()

	checkpoints, err := c.getCheckpoints(channelID)
	if nil != err {
		return "", err
	}

	height := c.nextHeight()
	record := Checkpoint{
		ChannelID:   channelID,
		StateRoot:   stateRoot,
		Signatures:  len(signatures),
		BlockHeight: height,
		TxID:        mockTxID("checkpoint_tx_", channelID[:], stateRoot[:]),
	}
	checkpoints = append(checkpoints, record)
	if err := c.checkpoints.PutJSON(channelID[:], checkpoints); nil != err {
		return "", err
	}
	c.log.Infof("checkpoint: %s  root: %s  tx: %s", channelID, stateRoot, record.TxID)
	return record.TxID, nil
}

// Checkpoints - all checkpoints of a channel, oldest first
func (c *Client) Checkpoints(channelID merkle.Digest) ([]Checkpoint, error) {
	c.Lock()
	defer c.Unlock()
	return c.getCheckpoints(channelID)
}

func (c *Client) getCheckpoints(channelID merkle.Digest) ([]Checkpoint, error) {
	checkpoints := make([]Checkpoint, 0)
	if _, err := c.checkpoints.GetJSON(channelID[:], &checkpoints); nil != err {
		return nil, err
	}
	return checkpoints, nil
}

// SubmitDispute - publish a dispute, needs a live base node
func (c *Client) SubmitDispute(channelID merkle.Digest, stateRoot merkle.Digest, signatures []account.Signature) (string, error) {
	c.Lock()
	defer c.Unlock()

	if !c.connected {
		return "", fault.ErrL1ConnectionRequired
	}
	txID := mockTxID("dispute_tx_", channelID[:], stateRoot[:])
	c.log.Warnf("dispute: %s  root: %s  signatures: %d  tx: %s", channelID, stateRoot, len(signatures), txID)
	return txID, nil
}

// VerifyTransaction - check a transaction id is known
func (c *Client) VerifyTransaction(txID string) bool {
	return strings.HasPrefix(txID, mockPrefix)
}

// Balance - spendable balance for an address
func (c *Client) Balance(address string) (uint64, error) {
	if "" == address {
		return 0, fault.ErrInvalidAddress
	}
	return simulatedBalance, nil
}
