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

// QueueDeclare is queue.declare (50,10): queue, passive, durable,
// exclusive, auto-delete, no-wait, arguments.
type QueueDeclare struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  wire.Table
}

func (m QueueDeclare) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Queue); err != nil {
		return err
	}
	if err := writeOctet(w, packBits(m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait)); err != nil {
		return err
	}
	return wire.EncodeTable(w, m.Arguments)
}

func DecodeQueueDeclare(r *bytes.Reader) (QueueDeclare, error) {
	var m QueueDeclare
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
	if m.Queue, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait =
		unpackBit(flags, 0), unpackBit(flags, 1), unpackBit(flags, 2), unpackBit(flags, 3), unpackBit(flags, 4)
	if m.Arguments, err = wire.DecodeTable(r); err != nil {
		return m, err
	}
	return m, nil
}

// QueueDeclareOk is queue.declare-ok (50,11): queue, message-count,
// consumer-count.
type QueueDeclareOk struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (m QueueDeclareOk) Encode(w io.Writer) error {
	if err := wire.EncodeShortString(w, m.Queue); err != nil {
		return err
	}
	if err := writeLong(w, m.MessageCount); err != nil {
		return err
	}
	return writeLong(w, m.ConsumerCount)
}

func DecodeQueueDeclareOk(r *bytes.Reader) (QueueDeclareOk, error) {
	var m QueueDeclareOk
	var err error
	if m.Queue, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.MessageCount, err = readLong(r); err != nil {
		return m, err
	}
	if m.ConsumerCount, err = readLong(r); err != nil {
		return m, err
	}
	return m, nil
}

// QueueBind is queue.bind (50,20): queue, exchange, routing-key,
// no-wait, arguments.
type QueueBind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  wire.Table
}

func (m QueueBind) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Queue); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.RoutingKey); err != nil {
		return err
	}
	if err := writeOctet(w, packBits(m.NoWait)); err != nil {
		return err
	}
	return wire.EncodeTable(w, m.Arguments)
}

func DecodeQueueBind(r *bytes.Reader) (QueueBind, error) {
	var m QueueBind
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
	if m.Queue, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.Exchange, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.RoutingKey, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.NoWait = unpackBit(flags, 0)
	if m.Arguments, err = wire.DecodeTable(r); err != nil {
		return m, err
	}
	return m, nil
}

// QueueBindOk is queue.bind-ok (50,21): no arguments.
type QueueBindOk struct{}

func (QueueBindOk) Encode(io.Writer) error { return nil }

func DecodeQueueBindOk(*bytes.Reader) (QueueBindOk, error) { return QueueBindOk{}, nil }

// QueueUnbind is queue.unbind (50,50): queue, exchange, routing-key,
// arguments (no no-wait — the real broker always replies synchronously).
type QueueUnbind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  wire.Table
}

func (m QueueUnbind) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Queue); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.RoutingKey); err != nil {
		return err
	}
	return wire.EncodeTable(w, m.Arguments)
}

func DecodeQueueUnbind(r *bytes.Reader) (QueueUnbind, error) {
	var m QueueUnbind
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
	if m.Queue, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.Exchange, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.RoutingKey, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.Arguments, err = wire.DecodeTable(r); err != nil {
		return m, err
	}
	return m, nil
}

// QueueUnbindOk is queue.unbind-ok (50,51): no arguments.
type QueueUnbindOk struct{}

func (QueueUnbindOk) Encode(io.Writer) error { return nil }

func DecodeQueueUnbindOk(*bytes.Reader) (QueueUnbindOk, error) { return QueueUnbindOk{}, nil }

// QueuePurge is queue.purge (50,30): queue, no-wait.
type QueuePurge struct {
	Queue  string
	NoWait bool
}

func (m QueuePurge) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Queue); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.NoWait))
}

func DecodeQueuePurge(r *bytes.Reader) (QueuePurge, error) {
	var m QueuePurge
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
	if m.Queue, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.NoWait = unpackBit(flags, 0)
	return m, nil
}

// QueuePurgeOk is queue.purge-ok (50,31): message-count.
type QueuePurgeOk struct {
	MessageCount uint32
}

func (m QueuePurgeOk) Encode(w io.Writer) error { return writeLong(w, m.MessageCount) }

func DecodeQueuePurgeOk(r *bytes.Reader) (QueuePurgeOk, error) {
	n, err := readLong(r)
	return QueuePurgeOk{MessageCount: n}, err
}

// QueueDelete is queue.delete (50,40): queue, if-unused, if-empty,
// no-wait.
type QueueDelete struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (m QueueDelete) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Queue); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.IfUnused, m.IfEmpty, m.NoWait))
}

func DecodeQueueDelete(r *bytes.Reader) (QueueDelete, error) {
	var m QueueDelete
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
	if m.Queue, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.IfUnused, m.IfEmpty, m.NoWait = unpackBit(flags, 0), unpackBit(flags, 1), unpackBit(flags, 2)
	return m, nil
}

// QueueDeleteOk is queue.delete-ok (50,41): message-count.
type QueueDeleteOk struct {
	MessageCount uint32
}

func (m QueueDeleteOk) Encode(w io.Writer) error { return writeLong(w, m.MessageCount) }

func DecodeQueueDeleteOk(r *bytes.Reader) (QueueDeleteOk, error) {
	n, err := readLong(r)
	return QueueDeleteOk{MessageCount: n}, err
}
