// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
)

// error codes
var (
	ErrAmountIsZero         = errors.New("amount is zero")
	ErrInvalidID            = errors.New("id must be 64 hex characters")
	ErrInvalidPublicKey     = errors.New("public key must be 64 hex characters")
	ErrRequiredChannel      = errors.New("channel id is required")
	ErrRequiredConnect      = errors.New("connect is required")
	ErrRequiredListing      = errors.New("listing id is required")
	ErrRequiredOrder        = errors.New("order id is required")
	ErrRequiredParticipants = errors.New("both participants are required")
	ErrRequiredSeedOrKey    = errors.New("exactly one of seed or key is required")
	ErrRequiredStatus       = errors.New("status is required")
	ErrRequiredTitle        = errors.New("title is required")
)
