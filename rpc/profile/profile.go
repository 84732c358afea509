// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package profile

import (
	"strings"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/rpc/ratelimit"
)

const (
	rateLimitProfile = 100
	rateBurstProfile = 50
)

// Profile - type for RPC calls
type Profile struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Manager *marketplace.Manager
}

// New - create the profile service
func New(log *logger.L, manager *marketplace.Manager) *Profile {
	return &Profile{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitProfile, rateBurstProfile),
		Manager: manager,
	}
}

// ---

// CreateArguments - a new profile
type CreateArguments struct {
	PublicKey account.PublicKey `json:"public_key"`
	Name      string            `json:"name"`
}

// Create - register a profile for a key
func (p *Profile) Create(arguments *CreateArguments, reply *marketplace.Profile) error {
	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}
	if arguments.PublicKey.IsZero() || "" == strings.TrimSpace(arguments.Name) {
		return fault.MissingParameters
	}

	profile, err := p.Manager.CreateProfile(arguments.PublicKey, arguments.Name)
	if nil != err {
		return err
	}
	*reply = *profile
	return nil
}

// ---

// GetArguments - one profile
type GetArguments struct {
	PublicKey account.PublicKey `json:"public_key"`
}

// Get - fetch a profile
func (p *Profile) Get(arguments *GetArguments, reply *marketplace.Profile) error {
	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}
	if arguments.PublicKey.IsZero() {
		return fault.MissingParameters
	}

	profile, err := p.Manager.Profile(arguments.PublicKey)
	if nil != err {
		return err
	}
	*reply = *profile
	return nil
}

// ---

// UpdateArguments - a change signed by the profile owner
type UpdateArguments struct {
	Action *marketplace.SignedAction `json:"action"`
}

// Update - apply a signed profile change
func (p *Profile) Update(arguments *UpdateArguments, reply *marketplace.Profile) error {
	if err := ratelimit.Limit(p.Limiter); nil != err {
		return err
	}
	if nil == arguments.Action {
		return fault.MissingParameters
	}

	profile, err := p.Manager.UpdateProfile(arguments.Action)
	if nil != err {
		p.Log.Warnf("profile: %s  update rejected: %s", arguments.Action.PublicKey, err)
		return err
	}
	*reply = *profile
	return nil
}
