// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"time"

	"github.com/bitmark-inc/logger"
)

// Sweeper - background process releasing timed out escrows
type Sweeper struct {
	log      *logger.L
	manager  *Manager
	interval time.Duration
}

// NewSweeper - create the process
func NewSweeper(log *logger.L, manager *Manager, interval time.Duration) *Sweeper {
	return &Sweeper{
		log:      log,
		manager:  manager,
		interval: interval,
	}
}

// Run - background loop
func (s *Sweeper) Run(args interface{}, shutdown <-chan struct{}) {
	s.log.Info("starting…")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case now := <-ticker.C:
			n, err := s.manager.Sweep(now)
			if nil != err {
				s.log.Errorf("sweep error: %s", err)
			} else if n > 0 {
				s.log.Infof("released: %d", n)
			}
		}
	}

	s.log.Info("shutting down…")
	s.log.Flush()
}
