// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import (
	"strings"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/tari-l2/tari-l2-node/fault"
)

const txtTag = "tari-l2="

// Parse - decode one TXT record
func Parse(s string) (ma.Multiaddr, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, txtTag) {
		return nil, fault.ErrInvalidDNSTXTRecord
	}
	a, err := ma.NewMultiaddr(strings.TrimSpace(s[len(txtTag):]))
	if nil != err {
		return nil, fault.ErrInvalidDNSTXTRecord
	}
	return a, nil
}
