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

package amqp091

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"github.com/rabbitgo/amqp091/amqperr"
	"github.com/rabbitgo/amqp091/internal/frame"
	"github.com/rabbitgo/amqp091/internal/metrics"
	"github.com/rabbitgo/amqp091/internal/methodcat"
	"github.com/rabbitgo/amqp091/internal/wire"
)

// Table is a re-export of the wire table type used in method
// arguments (field-table values, AMQP's FieldValue grammar).
type Table = wire.Table

// RegisterCallback installs cb to receive this channel's server-
// initiated events (flow, cancel, return, ack/nack, close). Passing nil
// reverts to a no-op callback.
func (ch *Channel) RegisterCallback(cb ChannelCallback) {
	if cb == nil {
		cb = DefaultChannelCallback{}
	}
	ch.sendCommand(cmdSetCallback{cb: cb})
}

// QueueDeclareArgs mirrors methodcat.QueueDeclare's fields, spelled out
// here so callers don't need to reach into internal/methodcat.
type QueueDeclareArgs struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

// QueueDeclareInfo is the declare-ok reply payload.
type QueueDeclareInfo struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

// QueueDeclare issues queue.declare and waits for queue.declare-ok,
// unless NoWait is set in which case it returns immediately with a
// zero QueueDeclareInfo.
func (ch *Channel) QueueDeclare(ctx context.Context, a QueueDeclareArgs) (QueueDeclareInfo, error) {
	req := methodcat.QueueDeclare{
		Queue: a.Queue, Passive: a.Passive, Durable: a.Durable,
		Exclusive: a.Exclusive, AutoDelete: a.AutoDelete, NoWait: a.NoWait,
		Arguments: a.Arguments,
	}
	h := hdr(methodcat.ClassQueue, methodcat.QueueDeclareID)
	if a.NoWait {
		return QueueDeclareInfo{}, ch.sendNoWait(h, req)
	}
	r, err := ch.call(ctx, h, req)
	if err != nil {
		return QueueDeclareInfo{}, err
	}
	ok, err := methodcat.DecodeQueueDeclareOk(r)
	if err != nil {
		return QueueDeclareInfo{}, err
	}
	return QueueDeclareInfo{Queue: ok.Queue, MessageCount: ok.MessageCount, ConsumerCount: ok.ConsumerCount}, nil
}

// QueueBind issues queue.bind.
func (ch *Channel) QueueBind(ctx context.Context, queue, exchange, routingKey string, noWait bool, args Table) error {
	req := methodcat.QueueBind{Queue: queue, Exchange: exchange, RoutingKey: routingKey, NoWait: noWait, Arguments: args}
	h := hdr(methodcat.ClassQueue, methodcat.QueueBindID)
	if noWait {
		return ch.sendNoWait(h, req)
	}
	_, err := ch.call(ctx, h, req)
	return err
}

// QueueUnbind issues queue.unbind (always synchronous: the method has
// no NoWait field).
func (ch *Channel) QueueUnbind(ctx context.Context, queue, exchange, routingKey string, args Table) error {
	req := methodcat.QueueUnbind{Queue: queue, Exchange: exchange, RoutingKey: routingKey, Arguments: args}
	_, err := ch.call(ctx, hdr(methodcat.ClassQueue, methodcat.QueueUnbindID), req)
	return err
}

// QueuePurge issues queue.purge and returns the purged message count.
func (ch *Channel) QueuePurge(ctx context.Context, queue string, noWait bool) (uint32, error) {
	req := methodcat.QueuePurge{Queue: queue, NoWait: noWait}
	h := hdr(methodcat.ClassQueue, methodcat.QueuePurgeID)
	if noWait {
		return 0, ch.sendNoWait(h, req)
	}
	r, err := ch.call(ctx, h, req)
	if err != nil {
		return 0, err
	}
	ok, err := methodcat.DecodeQueuePurgeOk(r)
	return ok.MessageCount, err
}

// QueueDelete issues queue.delete and returns the deleted message count.
func (ch *Channel) QueueDelete(ctx context.Context, queue string, ifUnused, ifEmpty, noWait bool) (uint32, error) {
	req := methodcat.QueueDelete{Queue: queue, IfUnused: ifUnused, IfEmpty: ifEmpty, NoWait: noWait}
	h := hdr(methodcat.ClassQueue, methodcat.QueueDeleteID)
	if noWait {
		return 0, ch.sendNoWait(h, req)
	}
	r, err := ch.call(ctx, h, req)
	if err != nil {
		return 0, err
	}
	ok, err := methodcat.DecodeQueueDeleteOk(r)
	return ok.MessageCount, err
}

// ExchangeDeclareArgs mirrors methodcat.ExchangeDeclare's fields.
type ExchangeDeclareArgs struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  Table
}

// ExchangeDeclare issues exchange.declare.
func (ch *Channel) ExchangeDeclare(ctx context.Context, a ExchangeDeclareArgs) error {
	req := methodcat.ExchangeDeclare{
		Exchange: a.Exchange, Type: a.Type, Passive: a.Passive, Durable: a.Durable,
		AutoDelete: a.AutoDelete, Internal: a.Internal, NoWait: a.NoWait, Arguments: a.Arguments,
	}
	h := hdr(methodcat.ClassExchange, methodcat.ExchangeDeclareID)
	if a.NoWait {
		return ch.sendNoWait(h, req)
	}
	_, err := ch.call(ctx, h, req)
	return err
}

// ExchangeDelete issues exchange.delete.
func (ch *Channel) ExchangeDelete(ctx context.Context, exchange string, ifUnused, noWait bool) error {
	req := methodcat.ExchangeDelete{Exchange: exchange, IfUnused: ifUnused, NoWait: noWait}
	h := hdr(methodcat.ClassExchange, methodcat.ExchangeDeleteID)
	if noWait {
		return ch.sendNoWait(h, req)
	}
	_, err := ch.call(ctx, h, req)
	return err
}

// BasicQos issues basic.qos (prefetch control).
func (ch *Channel) BasicQos(ctx context.Context, prefetchCount uint16, prefetchSize uint32, global bool) error {
	req := methodcat.BasicQos{PrefetchSize: prefetchSize, PrefetchCount: prefetchCount, Global: global}
	_, err := ch.call(ctx, hdr(methodcat.ClassBasic, methodcat.BasicQosID), req)
	return err
}

// ConsumeArgs mirrors methodcat.BasicConsume's fields.
type ConsumeArgs struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

// BasicConsume registers a new consumer and returns the channel its
// deliveries will arrive on, buffered to consumerSinkBuffer deliveries.
// Deliveries that arrive before this call returns are buffered
// dispatcher-side in FIFO order and flushed into the sink in order as
// soon as registration completes.
func (ch *Channel) BasicConsume(ctx context.Context, a ConsumeArgs) (string, <-chan Delivery, error) {
	req := methodcat.BasicConsume{
		Queue: a.Queue, ConsumerTag: a.ConsumerTag, NoLocal: a.NoLocal, NoAck: a.NoAck,
		Exclusive: a.Exclusive, NoWait: a.NoWait, Arguments: a.Arguments,
	}
	h := hdr(methodcat.ClassBasic, methodcat.BasicConsumeID)
	tag := a.ConsumerTag

	if a.NoWait {
		if tag == "" {
			tag = "ctag-" + uuid.New().String()
			req.ConsumerTag = tag
		}
		if err := ch.sendNoWait(h, req); err != nil {
			return "", nil, err
		}
	} else {
		r, err := ch.call(ctx, h, req)
		if err != nil {
			return "", nil, err
		}
		ok, err := methodcat.DecodeBasicConsumeOk(r)
		if err != nil {
			return "", nil, err
		}
		tag = ok.ConsumerTag
	}

	sink := make(chan Delivery, consumerSinkBuffer)
	if !ch.sendCommand(cmdRegisterConsumer{tag: tag, sink: sink}) {
		return tag, nil, amqperr.ErrClosed
	}
	return tag, sink, nil
}

const consumerSinkBuffer = 64

// BasicCancel stops a consumer. The sink channel is closed once the
// dispatcher processes the cancellation.
func (ch *Channel) BasicCancel(ctx context.Context, consumerTag string, noWait bool) error {
	req := methodcat.BasicCancel{ConsumerTag: consumerTag, NoWait: noWait}
	h := hdr(methodcat.ClassBasic, methodcat.BasicCancelID)
	if noWait {
		if err := ch.sendNoWait(h, req); err != nil {
			return err
		}
	} else {
		if _, err := ch.call(ctx, h, req); err != nil {
			return err
		}
	}
	ch.sendCommand(cmdUnregisterConsumer{tag: consumerTag})
	return nil
}

// BasicPublish sends a message, splitting the body across as many
// content-body frames as frame-max requires and writing method +
// header + body as a single batch so nothing else can interleave on
// the wire between them.
func (ch *Channel) BasicPublish(ctx context.Context, exchange, routingKey string, mandatory, immediate bool, props Properties, body []byte) error {
	req := methodcat.BasicPublish{Exchange: exchange, RoutingKey: routingKey, Mandatory: mandatory, Immediate: immediate}

	mf, err := buildMethodFrame(ch.id, hdr(methodcat.ClassBasic, methodcat.BasicPublishID), req)
	if err != nil {
		return err
	}

	var hbuf bytes.Buffer
	if err := methodcat.EncodeContentHeader(&hbuf, methodcat.ClassBasic, uint64(len(body)), props); err != nil {
		return err
	}
	frames := []frame.Frame{mf, {Type: frame.ContentHeader, Channel: ch.id, Payload: hbuf.Bytes()}}

	maxBody := frame.MaxBodyPayload(ch.conn.frameMax)
	for off := 0; off < len(body) || (len(body) == 0 && off == 0); {
		end := off + maxBody
		if end > len(body) {
			end = len(body)
		}
		frames = append(frames, frame.Frame{Type: frame.ContentBody, Channel: ch.id, Payload: body[off:end]})
		if len(body) == 0 {
			break
		}
		off = end
	}

	if err := ch.conn.transport.WriteFrames(frames); err != nil {
		return err
	}
	metrics.ObserveFrame("method", "out")
	for range frames[1:] {
		metrics.ObserveFrame("content", "out")
	}
	return nil
}

// BasicGet issues basic.get for a single message, returning ok=false
// if the queue was empty (basic.get-empty).
func (ch *Channel) BasicGet(ctx context.Context, queue string, noAck bool) (Delivery, bool, error) {
	sink := make(chan getResult, 1)
	if !ch.sendCommand(cmdRegisterGetSink{sink: sink}) {
		return Delivery{}, false, amqperr.ErrClosed
	}

	req := methodcat.BasicGet{Queue: queue, NoAck: noAck}
	f, err := buildMethodFrame(ch.id, hdr(methodcat.ClassBasic, methodcat.BasicGetID), req)
	if err != nil {
		return Delivery{}, false, err
	}
	if err := ch.conn.transport.WriteFrame(f); err != nil {
		return Delivery{}, false, err
	}
	metrics.ObserveFrame("method", "out")

	select {
	case res, ok := <-sink:
		if !ok {
			return Delivery{}, false, ch.closeErr
		}
		return res.d, res.ok, nil
	case <-ctx.Done():
		return Delivery{}, false, amqperr.ErrTimeout
	case <-ch.closeCh:
		return Delivery{}, false, amqperr.ErrClosed
	}
}

// BasicAck acknowledges one or more deliveries.
func (ch *Channel) BasicAck(deliveryTag uint64, multiple bool) error {
	return ch.sendNoWait(hdr(methodcat.ClassBasic, methodcat.BasicAckID), methodcat.BasicAck{DeliveryTag: deliveryTag, Multiple: multiple})
}

// BasicNack negatively acknowledges one or more deliveries.
func (ch *Channel) BasicNack(deliveryTag uint64, multiple, requeue bool) error {
	return ch.sendNoWait(hdr(methodcat.ClassBasic, methodcat.BasicNackID), methodcat.BasicNack{DeliveryTag: deliveryTag, Multiple: multiple, Requeue: requeue})
}

// BasicReject rejects a single delivery.
func (ch *Channel) BasicReject(deliveryTag uint64, requeue bool) error {
	return ch.sendNoWait(hdr(methodcat.ClassBasic, methodcat.BasicRejectID), methodcat.BasicReject{DeliveryTag: deliveryTag, Requeue: requeue})
}

// BasicRecover asks the broker to redeliver unacknowledged messages.
func (ch *Channel) BasicRecover(ctx context.Context, requeue bool) error {
	_, err := ch.call(ctx, hdr(methodcat.ClassBasic, methodcat.BasicRecoverID), methodcat.BasicRecover{Requeue: requeue})
	return err
}

// ConfirmSelect puts the channel into publisher-confirm mode; Ack/Nack
// callbacks then fire for each subsequent publish.
func (ch *Channel) ConfirmSelect(ctx context.Context, noWait bool) error {
	req := methodcat.ConfirmSelect{NoWait: noWait}
	h := hdr(methodcat.ClassConfirm, methodcat.ConfirmSelectID)
	if noWait {
		return ch.sendNoWait(h, req)
	}
	_, err := ch.call(ctx, h, req)
	return err
}

// TxSelect puts the channel into transactional mode.
func (ch *Channel) TxSelect(ctx context.Context) error {
	_, err := ch.call(ctx, hdr(methodcat.ClassTx, methodcat.TxSelectID), methodcat.TxSelect{})
	return err
}

// TxCommit commits the current transaction.
func (ch *Channel) TxCommit(ctx context.Context) error {
	_, err := ch.call(ctx, hdr(methodcat.ClassTx, methodcat.TxCommitID), methodcat.TxCommit{})
	return err
}

// TxRollback rolls back the current transaction.
func (ch *Channel) TxRollback(ctx context.Context) error {
	_, err := ch.call(ctx, hdr(methodcat.ClassTx, methodcat.TxRollbackID), methodcat.TxRollback{})
	return err
}

// Close issues channel.close and waits for the dispatcher to exit.
// Idempotent: calling Close more than once is a no-op after the first.
func (ch *Channel) Close(ctx context.Context) error {
	var rpcErr error
	ch.once.Do(func() {
		req := methodcat.ChannelClose{ReplyCode: 200, ReplyText: "normal shutdown"}
		_, rpcErr = ch.call(ctx, hdr(methodcat.ClassChannel, methodcat.ChannelCloseID), req)
	})
	<-ch.closeCh
	if rpcErr != nil && rpcErr != amqperr.ErrClosed {
		return rpcErr
	}
	return nil
}
