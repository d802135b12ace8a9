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

// ExchangeDeclare is exchange.declare (40,10): exchange, type, passive,
// durable, auto-delete, internal, no-wait, arguments.
type ExchangeDeclare struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  wire.Table
}

func (m ExchangeDeclare) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.Type); err != nil {
		return err
	}
	if err := writeOctet(w, packBits(m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait)); err != nil {
		return err
	}
	return wire.EncodeTable(w, m.Arguments)
}

func DecodeExchangeDeclare(r *bytes.Reader) (ExchangeDeclare, error) {
	var m ExchangeDeclare
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
	if m.Exchange, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.Type, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait =
		unpackBit(flags, 0), unpackBit(flags, 1), unpackBit(flags, 2), unpackBit(flags, 3), unpackBit(flags, 4)
	if m.Arguments, err = wire.DecodeTable(r); err != nil {
		return m, err
	}
	return m, nil
}

// ExchangeDeclareOk is exchange.declare-ok (40,11): no arguments.
type ExchangeDeclareOk struct{}

func (ExchangeDeclareOk) Encode(io.Writer) error { return nil }

func DecodeExchangeDeclareOk(*bytes.Reader) (ExchangeDeclareOk, error) {
	return ExchangeDeclareOk{}, nil
}

// ExchangeDelete is exchange.delete (40,20): exchange, if-unused,
// no-wait.
type ExchangeDelete struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

func (m ExchangeDelete) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Exchange); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.IfUnused, m.NoWait))
}

func DecodeExchangeDelete(r *bytes.Reader) (ExchangeDelete, error) {
	var m ExchangeDelete
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
	if m.Exchange, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.IfUnused, m.NoWait = unpackBit(flags, 0), unpackBit(flags, 1)
	return m, nil
}

// ExchangeDeleteOk is exchange.delete-ok (40,21): no arguments.
type ExchangeDeleteOk struct{}

func (ExchangeDeleteOk) Encode(io.Writer) error { return nil }

func DecodeExchangeDeleteOk(*bytes.Reader) (ExchangeDeleteOk, error) {
	return ExchangeDeleteOk{}, nil
}
