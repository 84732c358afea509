// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package varint - the length and nonce prefix used by packed channel
// updates and peer messages
//
// seven bits per byte, least significant group first, high bit set
// while more bytes follow; the ninth byte carries a full eight bits so
// no value needs more than MaximumBytes
package varint

// MaximumBytes - longest possible encoding of a uint64
const MaximumBytes = 9

// Encode - the varint bytes of a value
func Encode(value uint64) []byte {
	buffer := make([]byte, 0, MaximumBytes)
	for n := 1; n < MaximumBytes; n += 1 {
		if value < 0x80 {
			return append(buffer, byte(value))
		}
		buffer = append(buffer, byte(value)|0x80)
		value >>= 7
	}
	return append(buffer, byte(value))
}

// Decode - the value at the start of buffer and the number of bytes it
// used, a truncated buffer gives 0, 0
func Decode(buffer []byte) (uint64, int) {
	value := uint64(0)
	for i, b := range buffer {
		if MaximumBytes-1 == i {
			return value | uint64(b)<<(7*uint(i)), MaximumBytes
		}
		value |= uint64(b&0x7f) << (7 * uint(i))
		if 0 == b&0x80 {
			return value, i + 1
		}
	}
	return 0, 0
}

// DecodeClipped - decode a value that must lie in minimum..maximum
//
// a value out of range is reported the same as a truncated buffer
func DecodeClipped(buffer []byte, minimum int, maximum int) (int, int) {
	if minimum < 0 || minimum >= maximum {
		return 0, 0
	}

	value, count := Decode(buffer)
	if 0 == count || value > uint64(maximum) || value < uint64(minimum) {
		return 0, 0
	}
	return int(value), count
}
