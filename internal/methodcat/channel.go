// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package methodcat

import (
	"bytes"
	"io"

	"github.com/rabbitgo/amqp091/internal/wire"
)

// ChannelOpen is channel.open (20,10): a single reserved short string.
type ChannelOpen struct{}

func (ChannelOpen) Encode(w io.Writer) error { return wire.EncodeShortString(w, "") }

func DecodeChannelOpen(r *bytes.Reader) (ChannelOpen, error) {
	_, err := wire.DecodeShortString(r)
	return ChannelOpen{}, err
}

// ChannelOpenOk is channel.open-ok (20,11): a reserved long string,
// historically the channel id before it was folded into the frame
// header.
type ChannelOpenOk struct{}

func (ChannelOpenOk) Encode(w io.Writer) error { return wire.EncodeLongString(w, "") }

func DecodeChannelOpenOk(r *bytes.Reader) (ChannelOpenOk, error) {
	_, err := wire.DecodeLongString(r)
	return ChannelOpenOk{}, err
}

// ChannelFlow / ChannelFlowOk are channel.flow(-ok) (20,20/21): active.
type ChannelFlow struct {
	Active bool
}

func (m ChannelFlow) Encode(w io.Writer) error {
	return writeOctet(w, packBits(m.Active))
}

func DecodeChannelFlow(r *bytes.Reader) (ChannelFlow, error) {
	b, err := readOctet(r)
	if err != nil {
		return ChannelFlow{}, err
	}
	return ChannelFlow{Active: unpackBit(b, 0)}, nil
}

type ChannelFlowOk = ChannelFlow

func DecodeChannelFlowOk(r *bytes.Reader) (ChannelFlowOk, error) { return DecodeChannelFlow(r) }

// ChannelClose is channel.close (20,40): reply-code, reply-text,
// class-id, method-id.
type ChannelClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (m ChannelClose) Encode(w io.Writer) error {
	if err := writeShort(w, m.ReplyCode); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.ReplyText); err != nil {
		return err
	}
	if err := writeShort(w, m.ClassID); err != nil {
		return err
	}
	return writeShort(w, m.MethodID)
}

func DecodeChannelClose(r *bytes.Reader) (ChannelClose, error) {
	var m ChannelClose
	var err error
	if m.ReplyCode, err = readShort(r); err != nil {
		return m, err
	}
	if m.ReplyText, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.ClassID, err = readShort(r); err != nil {
		return m, err
	}
	if m.MethodID, err = readShort(r); err != nil {
		return m, err
	}
	return m, nil
}

// ChannelCloseOk is channel.close-ok (20,41): no arguments.
type ChannelCloseOk struct{}

func (ChannelCloseOk) Encode(io.Writer) error { return nil }

func DecodeChannelCloseOk(*bytes.Reader) (ChannelCloseOk, error) { return ChannelCloseOk{}, nil }
