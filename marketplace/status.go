// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marketplace

import (
	"strings"

	"github.com/tari-l2/tari-l2-node/fault"
)

// OrderStatus - position of an order in its lifecycle
type OrderStatus uint8

// order states
const (
	OrderPending OrderStatus = iota
	OrderConfirmed
	OrderShipped
	OrderDelivered
	OrderCompleted
	OrderDisputed
	OrderCancelled
)

var statusNames = map[OrderStatus]string{
	OrderPending:   "pending",
	OrderConfirmed: "confirmed",
	OrderShipped:   "shipped",
	OrderDelivered: "delivered",
	OrderCompleted: "completed",
	OrderDisputed:  "disputed",
	OrderCancelled: "cancelled",
}

// allowed moves out of each status
var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled, OrderDisputed},
	OrderConfirmed: {OrderShipped, OrderCancelled, OrderDisputed},
	OrderShipped:   {OrderDelivered, OrderDisputed},
	OrderDelivered: {OrderCompleted, OrderDisputed},
	OrderDisputed:  {OrderCompleted, OrderCancelled},
}

// ParseOrderStatus - convert a name to a status
//
// "shipping" is accepted for shipped
func ParseOrderStatus(s string) (OrderStatus, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if "shipping" == name {
		return OrderShipped, nil
	}
	for status, n := range statusNames {
		if n == name {
			return status, nil
		}
	}
	return OrderPending, fault.ErrInvalidOrderStatus
}

// String - lower case name
func (status OrderStatus) String() string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal - no further transitions possible
func (status OrderStatus) IsTerminal() bool {
	return 0 == len(transitions[status])
}

// CanTransition - true if the move is in the status graph
func (status OrderStatus) CanTransition(to OrderStatus) bool {
	for _, s := range transitions[status] {
		if s == to {
			return true
		}
	}
	return false
}

// MarshalText - status as its name
func (status OrderStatus) MarshalText() ([]byte, error) {
	if _, ok := statusNames[status]; !ok {
		return nil, fault.ErrInvalidOrderStatus
	}
	return []byte(status.String()), nil
}

// UnmarshalText - status from its name
func (status *OrderStatus) UnmarshalText(s []byte) error {
	st, err := ParseOrderStatus(string(s))
	if nil != err {
		return err
	}
	*status = st
	return nil
}
