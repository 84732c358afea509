// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"github.com/gogo/protobuf/proto"

	"github.com/tari-l2/tari-l2-node/fault"
)

// Envelope - protobuf wire message
//
//   message Envelope {
//     string chain = 1;
//     string command = 2;
//     repeated bytes parameters = 3;
//   }
type Envelope struct {
	Chain      string   `protobuf:"bytes,1,opt,name=chain,proto3" json:"chain,omitempty"`
	Command    string   `protobuf:"bytes,2,opt,name=command,proto3" json:"command,omitempty"`
	Parameters [][]byte `protobuf:"bytes,3,rep,name=parameters,proto3" json:"parameters,omitempty"`
}

func (m *Envelope) Reset()         { *m = Envelope{} }
func (m *Envelope) String() string { return proto.CompactTextString(m) }
func (*Envelope) ProtoMessage()    {}

// PackMessage - encode chain, command and parameters
func PackMessage(chain string, command string, parameters [][]byte) ([]byte, error) {
	return proto.Marshal(&Envelope{
		Chain:      chain,
		Command:    command,
		Parameters: parameters,
	})
}

// UnpackMessage - decode an envelope, an empty command is an error
func UnpackMessage(packed []byte) (*Envelope, error) {
	e := &Envelope{}
	if err := proto.Unmarshal(packed, e); nil != err {
		return nil, fault.ErrInvalidMessage
	}
	if "" == e.Command {
		return nil, fault.ErrInvalidMessage
	}
	return e, nil
}
