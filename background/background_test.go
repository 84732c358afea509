// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/background"
)

// a periodic worker in the shape of the settlement and sweeper loops
type sweeper struct {
	interval time.Duration
	sweeps   int32
	finished int32
	args     interface{}
}

func (s *sweeper) Run(args interface{}, shutdown <-chan struct{}) {
	s.args = args
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			atomic.AddInt32(&s.sweeps, 1)
		}
	}
	atomic.StoreInt32(&s.finished, 1)
}

func TestStartStop(t *testing.T) {
	fast := &sweeper{interval: time.Millisecond}
	slow := &sweeper{interval: time.Hour}

	p := background.Start(background.Processes{fast, slow}, "node")
	time.Sleep(30 * time.Millisecond)
	p.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fast.finished), "fast worker did not finish")
	assert.Equal(t, int32(1), atomic.LoadInt32(&slow.finished), "slow worker did not finish")
	assert.True(t, atomic.LoadInt32(&fast.sweeps) > 0, "fast worker never ticked")
	assert.Equal(t, int32(0), atomic.LoadInt32(&slow.sweeps), "slow worker ticked")
	assert.Equal(t, "node", fast.args, "arguments not passed")
}

type once struct {
	runs int32
}

func (o *once) Run(_ interface{}, shutdown <-chan struct{}) {
	atomic.AddInt32(&o.runs, 1)
	<-shutdown
}

func TestStopTwice(t *testing.T) {
	o := &once{}
	p := background.Start(background.Processes{o}, nil)
	p.Stop()
	p.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&o.runs), "wrong run count")

	var empty *background.T
	assert.NotPanics(t, empty.Stop, "nil stop panicked")
}
