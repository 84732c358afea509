// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import (
	"github.com/bitmark-inc/logger"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/tari-l2/tari-l2-node/fault"
)

// Lookuper - interface to lookup DNS record
type Lookuper interface {
	Lookup(string) ([]ma.Multiaddr, error)
}

type lookuper struct {
	log *logger.L
	f   func(string) ([]string, error)
}

// NewLookuper - lookup with a TXT resolver such as net.LookupTXT
func NewLookuper(log *logger.L, f func(string) ([]string, error)) Lookuper {
	return &lookuper{
		log: log,
		f:   f,
	}
}

// Lookup - query the TXT records, records without the tag are skipped
func (l *lookuper) Lookup(domainName string) ([]ma.Multiaddr, error) {
	log := l.log
	if "" == domainName {
		return nil, fault.ErrInvalidNodeDomain
	}

	txts, err := l.f(domainName)
	if nil != err {
		log.Errorf("lookup TXT record: %s  error: %s", domainName, err)
		return nil, err
	}

	result := make([]ma.Multiaddr, 0, len(txts))
	for i, t := range txts {
		a, err := Parse(t)
		if nil != err {
			log.Debugf("ignore TXT[%d]: %q  error: %s", i, t, err)
			continue
		}
		log.Infof("TXT[%d]: peer: %s", i, a)
		result = append(result, a)
	}
	return result, nil
}
