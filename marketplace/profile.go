// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marketplace

import (
	"github.com/tari-l2/tari-l2-node/account"
)

// Profile - public details of a marketplace user
type Profile struct {
	PublicKey             account.PublicKey `json:"public_key"`
	Name                  string            `json:"name"`
	Location              string            `json:"location,omitempty"`
	Bio                   string            `json:"bio,omitempty"`
	Email                 string            `json:"email,omitempty"`
	Avatar                string            `json:"avatar,omitempty"`
	Rating                float64           `json:"rating"`
	TransactionsCompleted uint64            `json:"transactions_completed"`
	CreatedAt             uint64            `json:"created_at"`
}

// ProfileUpdate - the payload of a signed profile change
//
// absent fields are left unchanged
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Bio      *string `json:"bio"`
	Email    *string `json:"email"`
	Avatar   *string `json:"avatar"`
}

// Address - hex form of the profile key
func (p *Profile) Address() string {
	return p.PublicKey.String()
}

func (p *Profile) apply(u *ProfileUpdate) {
	if nil != u.Name {
		p.Name = *u.Name
	}
	if nil != u.Location {
		p.Location = *u.Location
	}
	if nil != u.Bio {
		p.Bio = *u.Bio
	}
	if nil != u.Email {
		p.Email = *u.Email
	}
	if nil != u.Avatar {
		p.Avatar = *u.Avatar
	}
}
