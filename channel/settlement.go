// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"time"

	"github.com/bitmark-inc/logger"
)

// Settlement - background process that finalises closing channels
// once their challenge period has passed
type Settlement struct {
	log      *logger.L
	manager  *Manager
	interval time.Duration
}

// NewSettlement - create the process, interval is the polling period
func NewSettlement(log *logger.L, manager *Manager, interval time.Duration) *Settlement {
	return &Settlement{
		log:      log,
		manager:  manager,
		interval: interval,
	}
}

// Run - background loop
func (s *Settlement) Run(args interface{}, shutdown <-chan struct{}) {
	s.log.Info("starting…")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case now := <-ticker.C:
			if n := s.manager.Settle(now); n > 0 {
				s.log.Infof("settled channels: %d", n)
			}
		}
	}

	s.log.Info("shutting down…")
	s.log.Flush()
}
