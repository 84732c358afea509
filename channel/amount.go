// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"github.com/tari-l2/tari-l2-node/fault"
)

func addAmount(a uint64, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fault.ErrAmountOverflow
	}
	return sum, nil
}

func subAmount(a uint64, b uint64) (uint64, error) {
	if b > a {
		return 0, fault.ErrAmountUnderflow
	}
	return a - b, nil
}
