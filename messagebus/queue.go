// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"sync/atomic"
)

// internal constants
const (
	queueSize = 1000
)

// outbound commands
const (
	Announce       = "announce" // parameters: channel info JSON
	Proposal       = "proposal" // parameters: channel id, packed signed update
	Ack            = "ack"      // parameters: channel id, nonce, signer, signature
	OpenRequest    = "open"     // parameters: initiator, packed participants
	InfoRequest    = "info"     // parameters: channel id
	InfoResponse   = "info-rsp" // parameters: channel id, channel info JSON (absent if unknown)
	OpenResponse   = "open-rsp" // parameters: channel id, accepted flag
	Ping           = "ping"
	Pong           = "pong"
	TestingCommand = "test"
)

// Message - a command with its parameters
type Message struct {
	Command    string
	Parameters [][]byte
}

// Queue - a bounded FIFO of messages
type Queue struct {
	dropped uint64 // first for 64 bit alignment
	c       chan Message
}

// BusType - the set of queues
type BusType struct {
	P2P       *Queue // to be published on gossip
	TestQueue *Queue // for testing use
}

// Bus - all available message queues
var Bus = BusType{
	P2P:       newQueue(),
	TestQueue: newQueue(),
}

func newQueue() *Queue {
	return &Queue{
		c: make(chan Message, queueSize),
	}
}

// Send - queue a command
//
// never blocks: when the queue is full the message is discarded
func (queue *Queue) Send(command string, parameters ...[]byte) {
	select {
	case queue.c <- Message{Command: command, Parameters: parameters}:
	default:
		atomic.AddUint64(&queue.dropped, 1)
	}
}

// Chan - channel to read from
func (queue *Queue) Chan() <-chan Message {
	return queue.c
}

// Dropped - count of messages discarded on a full queue
func (queue *Queue) Dropped() uint64 {
	return atomic.LoadUint64(&queue.dropped)
}

// Drain - discard everything queued, returns the count
func (queue *Queue) Drain() int {
	n := 0
	for {
		select {
		case <-queue.c:
			n += 1
		default:
			return n
		}
	}
}
