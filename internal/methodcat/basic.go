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

// BasicQos is basic.qos (60,10): prefetch-size, prefetch-count,
// global.
type BasicQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (m BasicQos) Encode(w io.Writer) error {
	if err := writeLong(w, m.PrefetchSize); err != nil {
		return err
	}
	if err := writeShort(w, m.PrefetchCount); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.Global))
}

func DecodeBasicQos(r *bytes.Reader) (BasicQos, error) {
	var m BasicQos
	var err error
	if m.PrefetchSize, err = readLong(r); err != nil {
		return m, err
	}
	if m.PrefetchCount, err = readShort(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.Global = unpackBit(flags, 0)
	return m, nil
}

// BasicQosOk is basic.qos-ok (60,11): no arguments.
type BasicQosOk struct{}

func (BasicQosOk) Encode(io.Writer) error { return nil }

func DecodeBasicQosOk(*bytes.Reader) (BasicQosOk, error) { return BasicQosOk{}, nil }

// BasicConsume is basic.consume (60,20): queue, consumer-tag, no-local,
// no-ack, exclusive, no-wait, arguments.
type BasicConsume struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   wire.Table
}

func (m BasicConsume) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Queue); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	if err := writeOctet(w, packBits(m.NoLocal, m.NoAck, m.Exclusive, m.NoWait)); err != nil {
		return err
	}
	return wire.EncodeTable(w, m.Arguments)
}

func DecodeBasicConsume(r *bytes.Reader) (BasicConsume, error) {
	var m BasicConsume
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
	if m.Queue, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.ConsumerTag, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.NoLocal, m.NoAck, m.Exclusive, m.NoWait =
		unpackBit(flags, 0), unpackBit(flags, 1), unpackBit(flags, 2), unpackBit(flags, 3)
	if m.Arguments, err = wire.DecodeTable(r); err != nil {
		return m, err
	}
	return m, nil
}

// BasicConsumeOk is basic.consume-ok (60,21): consumer-tag.
type BasicConsumeOk struct {
	ConsumerTag string
}

func (m BasicConsumeOk) Encode(w io.Writer) error { return wire.EncodeShortString(w, m.ConsumerTag) }

func DecodeBasicConsumeOk(r *bytes.Reader) (BasicConsumeOk, error) {
	tag, err := wire.DecodeShortString(r)
	return BasicConsumeOk{ConsumerTag: tag}, err
}

// BasicCancel is basic.cancel (60,30): consumer-tag, no-wait.
type BasicCancel struct {
	ConsumerTag string
	NoWait      bool
}

func (m BasicCancel) Encode(w io.Writer) error {
	if err := wire.EncodeShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.NoWait))
}

func DecodeBasicCancel(r *bytes.Reader) (BasicCancel, error) {
	var m BasicCancel
	var err error
	if m.ConsumerTag, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.NoWait = unpackBit(flags, 0)
	return m, nil
}

// BasicCancelOk is basic.cancel-ok (60,31): consumer-tag.
type BasicCancelOk struct {
	ConsumerTag string
}

func (m BasicCancelOk) Encode(w io.Writer) error { return wire.EncodeShortString(w, m.ConsumerTag) }

func DecodeBasicCancelOk(r *bytes.Reader) (BasicCancelOk, error) {
	tag, err := wire.DecodeShortString(r)
	return BasicCancelOk{ConsumerTag: tag}, err
}

// BasicPublish is basic.publish (60,40): exchange, routing-key,
// mandatory, immediate. Always followed by a content header + body.
type BasicPublish struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func (m BasicPublish) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.RoutingKey); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.Mandatory, m.Immediate))
}

func DecodeBasicPublish(r *bytes.Reader) (BasicPublish, error) {
	var m BasicPublish
	if _, err := readShort(r); err != nil {
		return m, err
	}
	var err error
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
	m.Mandatory, m.Immediate = unpackBit(flags, 0), unpackBit(flags, 1)
	return m, nil
}

// BasicReturn is basic.return (60,50): reply-code, reply-text,
// exchange, routing-key. Always followed by a content header + body.
type BasicReturn struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (m BasicReturn) Encode(w io.Writer) error {
	if err := writeShort(w, m.ReplyCode); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.ReplyText); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.Exchange); err != nil {
		return err
	}
	return wire.EncodeShortString(w, m.RoutingKey)
}

func DecodeBasicReturn(r *bytes.Reader) (BasicReturn, error) {
	var m BasicReturn
	var err error
	if m.ReplyCode, err = readShort(r); err != nil {
		return m, err
	}
	if m.ReplyText, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.Exchange, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.RoutingKey, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	return m, nil
}

// BasicDeliver is basic.deliver (60,60): consumer-tag, delivery-tag,
// redelivered, exchange, routing-key. Always followed by a content
// header + body.
type BasicDeliver struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (m BasicDeliver) Encode(w io.Writer) error {
	if err := wire.EncodeShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	if err := writeLongLong(w, m.DeliveryTag); err != nil {
		return err
	}
	if err := writeOctet(w, packBits(m.Redelivered)); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.Exchange); err != nil {
		return err
	}
	return wire.EncodeShortString(w, m.RoutingKey)
}

func DecodeBasicDeliver(r *bytes.Reader) (BasicDeliver, error) {
	var m BasicDeliver
	var err error
	if m.ConsumerTag, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.DeliveryTag, err = readLongLong(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.Redelivered = unpackBit(flags, 0)
	if m.Exchange, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.RoutingKey, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	return m, nil
}

// BasicGet is basic.get (60,70): queue, no-ack.
type BasicGet struct {
	Queue string
	NoAck bool
}

func (m BasicGet) Encode(w io.Writer) error {
	if err := writeShort(w, 0); err != nil { // reserved-1
		return err
	}
	if err := wire.EncodeShortString(w, m.Queue); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.NoAck))
}

func DecodeBasicGet(r *bytes.Reader) (BasicGet, error) {
	var m BasicGet
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
	m.NoAck = unpackBit(flags, 0)
	return m, nil
}

// BasicGetOk is basic.get-ok (60,71): delivery-tag, redelivered,
// exchange, routing-key, message-count. Always followed by a content
// header + body.
type BasicGetOk struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func (m BasicGetOk) Encode(w io.Writer) error {
	if err := writeLongLong(w, m.DeliveryTag); err != nil {
		return err
	}
	if err := writeOctet(w, packBits(m.Redelivered)); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.RoutingKey); err != nil {
		return err
	}
	return writeLong(w, m.MessageCount)
}

func DecodeBasicGetOk(r *bytes.Reader) (BasicGetOk, error) {
	var m BasicGetOk
	var err error
	if m.DeliveryTag, err = readLongLong(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.Redelivered = unpackBit(flags, 0)
	if m.Exchange, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.RoutingKey, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.MessageCount, err = readLong(r); err != nil {
		return m, err
	}
	return m, nil
}

// BasicGetEmpty is basic.get-empty (60,72): a single reserved short
// string.
type BasicGetEmpty struct{}

func (BasicGetEmpty) Encode(w io.Writer) error { return wire.EncodeShortString(w, "") }

func DecodeBasicGetEmpty(r *bytes.Reader) (BasicGetEmpty, error) {
	_, err := wire.DecodeShortString(r)
	return BasicGetEmpty{}, err
}

// BasicAck is basic.ack (60,80): delivery-tag, multiple.
type BasicAck struct {
	DeliveryTag uint64
	Multiple    bool
}

func (m BasicAck) Encode(w io.Writer) error {
	if err := writeLongLong(w, m.DeliveryTag); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.Multiple))
}

func DecodeBasicAck(r *bytes.Reader) (BasicAck, error) {
	var m BasicAck
	var err error
	if m.DeliveryTag, err = readLongLong(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.Multiple = unpackBit(flags, 0)
	return m, nil
}

// BasicNack is basic.nack (60,120): delivery-tag, multiple, requeue.
type BasicNack struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (m BasicNack) Encode(w io.Writer) error {
	if err := writeLongLong(w, m.DeliveryTag); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.Multiple, m.Requeue))
}

func DecodeBasicNack(r *bytes.Reader) (BasicNack, error) {
	var m BasicNack
	var err error
	if m.DeliveryTag, err = readLongLong(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.Multiple, m.Requeue = unpackBit(flags, 0), unpackBit(flags, 1)
	return m, nil
}

// BasicReject is basic.reject (60,90): delivery-tag, requeue.
type BasicReject struct {
	DeliveryTag uint64
	Requeue     bool
}

func (m BasicReject) Encode(w io.Writer) error {
	if err := writeLongLong(w, m.DeliveryTag); err != nil {
		return err
	}
	return writeOctet(w, packBits(m.Requeue))
}

func DecodeBasicReject(r *bytes.Reader) (BasicReject, error) {
	var m BasicReject
	var err error
	if m.DeliveryTag, err = readLongLong(r); err != nil {
		return m, err
	}
	flags, err := readOctet(r)
	if err != nil {
		return m, err
	}
	m.Requeue = unpackBit(flags, 0)
	return m, nil
}

// BasicRecover is basic.recover (60,110): requeue.
type BasicRecover struct {
	Requeue bool
}

func (m BasicRecover) Encode(w io.Writer) error { return writeOctet(w, packBits(m.Requeue)) }

func DecodeBasicRecover(r *bytes.Reader) (BasicRecover, error) {
	flags, err := readOctet(r)
	if err != nil {
		return BasicRecover{}, err
	}
	return BasicRecover{Requeue: unpackBit(flags, 0)}, nil
}

// BasicRecoverOk is basic.recover-ok (60,111): no arguments.
type BasicRecoverOk struct{}

func (BasicRecoverOk) Encode(io.Writer) error { return nil }

func DecodeBasicRecoverOk(*bytes.Reader) (BasicRecoverOk, error) { return BasicRecoverOk{}, nil }
