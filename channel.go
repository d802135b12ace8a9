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

// Package amqp091 is a client for AMQP 0-9-1, the RabbitMQ wire
// dialect. Channel is the per-channel dispatcher: a single goroutine
// owns all per-channel mutable state and is the only thing that ever
// touches it, communicating with callers purely through bounded
// command/reply channels — no field of dispatcherState is ever
// locked.
//
// Grounded on original_source/amqprs/src/api/channel/dispatcher.rs,
// whose tokio::select! { biased; ... } loop this reproduces with Go's
// idiomatic two-select priority trick (see runDispatcher), and on the
// teacher's single-goroutine-owns-its-state style used throughout
// sniffer/ and pipeline/.
package amqp091

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rabbitgo/amqp091/amqperr"
	"github.com/rabbitgo/amqp091/internal/defaults"
	"github.com/rabbitgo/amqp091/internal/frame"
	"github.com/rabbitgo/amqp091/internal/metrics"
	"github.com/rabbitgo/amqp091/internal/methodcat"
	"github.com/rabbitgo/amqp091/internal/rescue"
	"github.com/rabbitgo/amqp091/logger"
)

var tracer = otel.Tracer("github.com/rabbitgo/amqp091")

func itoa(id uint16) string { return strconv.Itoa(int(id)) }

// dispState is the channel dispatcher's state register, tracking
// whether an inbound content header/body is being assembled against a
// pending deliver, get-ok or return (get-empty carries no content and
// leaves the register at stateInitial).
type dispState int

const (
	stateInitial dispState = iota
	stateDeliver
	stateGetOk
	stateReturn
)

// rpcResult is what a registered waiter receives: either the matched
// reply frame or a terminal error (ChannelClosed, Canceled, ...).
type rpcResult struct {
	frame frame.Frame
	err   error
}

// getResult is what the basic.get response sink receives.
type getResult struct {
	ok bool // false for GetEmpty
	d  Delivery
}

// Management commands the public API sends to the dispatcher goroutine.
// Processed ahead of inbound frames every iteration — see runDispatcher.
type (
	cmdRegisterWaiter struct {
		header methodcat.MethodHeader
		reply  chan rpcResult
	}
	cmdUnregisterWaiter struct {
		header methodcat.MethodHeader
	}
	cmdRegisterConsumer struct {
		tag  string
		sink chan Delivery
	}
	cmdUnregisterConsumer struct {
		tag string
	}
	cmdRegisterGetSink struct {
		sink chan getResult
	}
	cmdSetCallback struct {
		cb ChannelCallback
	}
	// cmdConnectionFailed is sent by the connection's teardown path
	// (Connection.fail) to every still-open channel; there is no
	// socket left to reply on, so it skips straight to teardown.
	cmdConnectionFailed struct {
		err error
	}
)

type consumerState struct {
	tag  string
	fifo []Delivery
	sink chan Delivery
}

// dispatcherState holds everything the dispatcher goroutine owns.
// Never touched from any other goroutine.
type dispatcherState struct {
	open      bool
	state     dispState
	asm       assembly
	consumers map[string]*consumerState
	getSink   chan getResult
	waiters   map[methodcat.MethodHeader]chan rpcResult
	callback  ChannelCallback
}

// Channel is one logical AMQP channel multiplexed over a Connection's
// single TCP socket.
type Channel struct {
	id   uint16
	conn *Connection
	log  logger.Logger

	cmdCh   chan any
	frameCh chan frame.Frame

	closeCh  chan struct{}
	closeErr error
	once     sync.Once
}

func newChannel(conn *Connection, id uint16) *Channel {
	return &Channel{
		id:      id,
		conn:    conn,
		log:     conn.log.Named("chan." + itoa(id)),
		cmdCh:   make(chan any, defaults.QueueSize),
		frameCh: make(chan frame.Frame, defaults.QueueSize),
		closeCh: make(chan struct{}),
	}
}

// ID returns the channel's numeric id.
func (ch *Channel) ID() uint16 { return ch.id }

// dispatch delivers an inbound frame from the connection's reader
// goroutine. Never called concurrently with itself.
func (ch *Channel) dispatch(f frame.Frame) {
	select {
	case ch.frameCh <- f:
	case <-ch.closeCh:
	}
}

// run is the dispatcher goroutine's entry point, started by
// Connection.openChannel.
func (ch *Channel) run() {
	st := &dispatcherState{
		open:      true,
		consumers: make(map[string]*consumerState),
		waiters:   make(map[methodcat.MethodHeader]chan rpcResult),
	}
	defer func() {
		ch.conn.forgetChannel(ch.id)
		close(ch.closeCh)
	}()

	for st.open {
		// Biased select: always drain a pending management command
		// before looking at the next inbound frame, so a
		// register-consumer issued concurrently with an in-flight
		// deliver is observed before the dispatcher would otherwise
		// buffer past it. This is Go's idiomatic two-select priority
		// trick (tokio::select!{biased;...} has no direct Go
		// equivalent): a non-blocking drain first, then a fair select.
		select {
		case cmd := <-ch.cmdCh:
			ch.handleCommand(st, cmd)
			continue
		default:
		}

		metrics.SetDispatcherQueueDepth(itoa(ch.id), len(ch.cmdCh))

		select {
		case cmd := <-ch.cmdCh:
			ch.handleCommand(st, cmd)
		case f, ok := <-ch.frameCh:
			if !ok {
				return
			}
			ch.handleFrame(st, f)
		}
	}
}

func (ch *Channel) handleCommand(st *dispatcherState, cmd any) {
	switch c := cmd.(type) {
	case cmdRegisterWaiter:
		if _, exists := st.waiters[c.header]; exists {
			c.reply <- rpcResult{err: amqperr.ErrRPCInFlight}
			return
		}
		st.waiters[c.header] = c.reply

	case cmdUnregisterWaiter:
		delete(st.waiters, c.header)

	case cmdRegisterConsumer:
		cs, ok := st.consumers[c.tag]
		if !ok {
			cs = &consumerState{tag: c.tag}
			st.consumers[c.tag] = cs
		}
		cs.sink = c.sink
		// Drain any buffered deliveries in arrival order before
		// returning to frame processing.
		for _, d := range cs.fifo {
			cs.sink <- d
		}
		cs.fifo = nil
		metrics.SetConsumerBuffered(c.tag, 0)

	case cmdUnregisterConsumer:
		if cs, ok := st.consumers[c.tag]; ok {
			if cs.sink != nil {
				close(cs.sink)
			}
			delete(st.consumers, c.tag)
		}

	case cmdRegisterGetSink:
		st.getSink = c.sink

	case cmdSetCallback:
		st.callback = c.cb

	case cmdConnectionFailed:
		code, text := uint16(0), ""
		if cc, ok := amqperr.AsConnectionClosed(c.err); ok {
			code, text = uint16(cc.Code), cc.Text
		}
		ch.teardown(st, c.err, code, text)
	}
}

func (ch *Channel) handleFrame(st *dispatcherState, f frame.Frame) {
	switch f.Type {
	case frame.Method:
		ch.handleMethodFrame(st, f)
	case frame.ContentHeader:
		ch.handleContentHeader(st, f)
	case frame.ContentBody:
		ch.handleContentBody(st, f)
	default:
		ch.log.Warnf("channel %d: unexpected %s frame, dropping", ch.id, f.Type)
	}
}

func (ch *Channel) handleMethodFrame(st *dispatcherState, f frame.Frame) {
	h, r, err := methodcat.SplitMethod(f.Payload)
	if err != nil {
		ch.log.Errorf("channel %d: malformed method frame: %v", ch.id, err)
		return
	}
	metrics.ObserveFrame("method", "in")

	switch h {
	case hdr(methodcat.ClassBasic, methodcat.BasicDeliverID):
		m, err := methodcat.DecodeBasicDeliver(r)
		if err != nil {
			ch.log.Errorf("channel %d: malformed basic.deliver: %v", ch.id, err)
			return
		}
		st.state = stateDeliver
		st.asm.reset()
		st.asm.deliver = &m

	case hdr(methodcat.ClassBasic, methodcat.BasicGetOkID):
		m, err := methodcat.DecodeBasicGetOk(r)
		if err != nil {
			ch.log.Errorf("channel %d: malformed basic.get-ok: %v", ch.id, err)
			return
		}
		st.state = stateGetOk
		st.asm.reset()
		st.asm.getOk = &m

	case hdr(methodcat.ClassBasic, methodcat.BasicGetEmptyID):
		if st.getSink != nil {
			st.getSink <- getResult{ok: false}
			st.getSink = nil
		}
		st.state = stateInitial

	case hdr(methodcat.ClassBasic, methodcat.BasicReturnID):
		m, err := methodcat.DecodeBasicReturn(r)
		if err != nil {
			ch.log.Errorf("channel %d: malformed basic.return: %v", ch.id, err)
			return
		}
		st.state = stateReturn
		st.asm.reset()
		st.asm.ret = &m

	case hdr(methodcat.ClassChannel, methodcat.ChannelCloseID):
		m, err := methodcat.DecodeChannelClose(r)
		if err != nil {
			ch.log.Errorf("channel %d: malformed channel.close: %v", ch.id, err)
			return
		}
		ch.onServerClose(st, m.ReplyCode, m.ReplyText)

	case hdr(methodcat.ClassChannel, methodcat.ChannelFlowID):
		m, err := methodcat.DecodeChannelFlow(r)
		if err != nil {
			ch.log.Errorf("channel %d: malformed channel.flow: %v", ch.id, err)
			return
		}
		ch.invokeCallback(st, func(cb ChannelCallback) { cb.Flow(m.Active) })
		ch.sendNoWait(methodcat.MethodHeader{ClassID: methodcat.ClassChannel, MethodID: methodcat.ChannelFlowOkID}, methodcat.ChannelFlowOk{Active: m.Active})

	case hdr(methodcat.ClassBasic, methodcat.BasicCancelID):
		m, err := methodcat.DecodeBasicCancel(r)
		if err != nil {
			ch.log.Errorf("channel %d: malformed basic.cancel: %v", ch.id, err)
			return
		}
		if cs, ok := st.consumers[m.ConsumerTag]; ok {
			if cs.sink != nil {
				close(cs.sink)
			}
			delete(st.consumers, m.ConsumerTag)
		}
		ch.invokeCallback(st, func(cb ChannelCallback) { cb.Cancel(m.ConsumerTag) })

	case hdr(methodcat.ClassBasic, methodcat.BasicAckID):
		m, err := methodcat.DecodeBasicAck(r)
		if err != nil {
			ch.log.Errorf("channel %d: malformed basic.ack: %v", ch.id, err)
			return
		}
		ch.invokeCallback(st, func(cb ChannelCallback) { cb.Ack(m.DeliveryTag, m.Multiple) })

	case hdr(methodcat.ClassBasic, methodcat.BasicNackID):
		m, err := methodcat.DecodeBasicNack(r)
		if err != nil {
			ch.log.Errorf("channel %d: malformed basic.nack: %v", ch.id, err)
			return
		}
		ch.invokeCallback(st, func(cb ChannelCallback) { cb.Nack(m.DeliveryTag, m.Multiple) })

	default:
		w, ok := st.waiters[h]
		if !ok {
			ch.log.Warnf("channel %d: unexpected reply %s, dropping", ch.id, methodcat.Name(h))
			return
		}
		delete(st.waiters, h)
		w <- rpcResult{frame: f}
		if h == (methodcat.MethodHeader{ClassID: methodcat.ClassChannel, MethodID: methodcat.ChannelCloseOkID}) {
			st.open = false
		}
	}
}

func (ch *Channel) handleContentHeader(st *dispatcherState, f frame.Frame) {
	_, bodySize, props, err := methodcat.DecodeContentHeader(f.Payload)
	if err != nil {
		ch.log.Errorf("channel %d: malformed content header: %v", ch.id, err)
		return
	}
	st.asm.props = props
	st.asm.bodySize = bodySize
	st.asm.body = make([]byte, 0, bodySize)
}

func (ch *Channel) handleContentBody(st *dispatcherState, f frame.Frame) {
	st.asm.body = append(st.asm.body, f.Payload...)
	if !st.asm.bodyComplete() {
		return
	}

	switch st.state {
	case stateDeliver:
		d := Delivery{
			ConsumerTag: st.asm.deliver.ConsumerTag,
			DeliveryTag: st.asm.deliver.DeliveryTag,
			Redelivered: st.asm.deliver.Redelivered,
			Exchange:    st.asm.deliver.Exchange,
			RoutingKey:  st.asm.deliver.RoutingKey,
			Properties:  st.asm.props,
			Body:        st.asm.body,
		}
		ch.deliverToConsumer(st, d)

	case stateGetOk:
		d := Delivery{
			DeliveryTag: st.asm.getOk.DeliveryTag,
			Redelivered: st.asm.getOk.Redelivered,
			Exchange:    st.asm.getOk.Exchange,
			RoutingKey:  st.asm.getOk.RoutingKey,
			Properties:  st.asm.props,
			Body:        st.asm.body,
		}
		if st.getSink != nil {
			st.getSink <- getResult{ok: true, d: d}
			st.getSink = nil
		}

	case stateReturn:
		r := Return{
			ReplyCode:  st.asm.ret.ReplyCode,
			ReplyText:  st.asm.ret.ReplyText,
			Exchange:   st.asm.ret.Exchange,
			RoutingKey: st.asm.ret.RoutingKey,
			Properties: st.asm.props,
			Body:       st.asm.body,
		}
		ch.invokeCallback(st, func(cb ChannelCallback) { cb.Return(r) })
	}

	st.state = stateInitial
	st.asm.reset()
}

// deliverToConsumer applies the consumer delivery policy: if a sink is
// registered, send with backpressure (this blocks the dispatcher
// goroutine until the sink accepts — intentional; a slow consumer
// stalls only its own channel). Otherwise append to the tag's FIFO; a
// concurrently-issued register-consumer command will drain it in order
// on the very next loop iteration thanks to the biased select, with no
// probabilistic yield needed.
func (ch *Channel) deliverToConsumer(st *dispatcherState, d Delivery) {
	cs, ok := st.consumers[d.ConsumerTag]
	if !ok {
		cs = &consumerState{tag: d.ConsumerTag}
		st.consumers[d.ConsumerTag] = cs
	}
	if cs.sink != nil {
		cs.sink <- d
		return
	}
	cs.fifo = append(cs.fifo, d)
	metrics.SetConsumerBuffered(d.ConsumerTag, len(cs.fifo))
}

func (ch *Channel) onServerClose(st *dispatcherState, code uint16, text string) {
	ch.sendNoWait(methodcat.MethodHeader{ClassID: methodcat.ClassChannel, MethodID: methodcat.ChannelCloseOkID}, methodcat.ChannelCloseOk{})
	ch.teardown(st, &amqperr.ChannelClosed{Code: int(code), Text: text}, code, text)
}

// teardown fails every outstanding waiter/consumer/get-sink and
// invokes the close callback, without touching the wire. Shared by
// onServerClose (which replies close-ok first) and the connection
// failure path (where there is no socket left to reply on).
func (ch *Channel) teardown(st *dispatcherState, closedErr error, code uint16, text string) {
	st.open = false
	ch.closeErr = closedErr

	for h, w := range st.waiters {
		w <- rpcResult{err: closedErr}
		delete(st.waiters, h)
	}
	for tag, cs := range st.consumers {
		if cs.sink != nil {
			close(cs.sink)
		}
		delete(st.consumers, tag)
	}
	if st.getSink != nil {
		close(st.getSink)
		st.getSink = nil
	}
	ch.invokeCallback(st, func(cb ChannelCallback) { cb.Close(code, text) })
}

func (ch *Channel) invokeCallback(st *dispatcherState, fn func(ChannelCallback)) {
	if st.callback == nil {
		return
	}
	cb := st.callback
	if err := rescue.Call(func() { fn(cb) }); err != nil {
		ch.log.Errorf("channel %d: callback panicked: %v", ch.id, err)
	}
}

func hdr(classID, methodID uint16) methodcat.MethodHeader {
	return methodcat.MethodHeader{ClassID: classID, MethodID: methodID}
}

// sendCommand enqueues a management command, unblocking early if the
// channel is already closed.
func (ch *Channel) sendCommand(cmd any) bool {
	select {
	case ch.cmdCh <- cmd:
		return true
	case <-ch.closeCh:
		return false
	}
}

// sendNoWait writes a method frame directly to the transport without
// registering a waiter — used for replies the dispatcher itself issues
// (close-ok, flow-ok) and for no-wait requests.
func (ch *Channel) sendNoWait(h methodcat.MethodHeader, body methodcat.Body) error {
	f, err := buildMethodFrame(ch.id, h, body)
	if err != nil {
		return err
	}
	metrics.ObserveFrame("method", "out")
	return ch.conn.transport.WriteFrame(f)
}

// call performs a synchronous request/reply round trip: register a
// waiter for h's reply header (per methodcat.ReplyOf), send the
// request, wait for the match or ctx/close. Cancellation-safe: the
// deferred unregister guarantees no dangling waiter survives a timeout
// or cancellation.
func (ch *Channel) call(ctx context.Context, h methodcat.MethodHeader, body methodcat.Body) (r *bytes.Reader, err error) {
	replyHeader, ok := methodcat.ReplyOf(h)
	if !ok {
		return nil, amqperr.Errorf("amqp: %s has no registered reply method", methodcat.Name(h))
	}

	ctx, span := tracer.Start(ctx, methodcat.Name(h), trace.WithAttributes(
		attribute.Int("amqp.channel", int(ch.id)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	reply := make(chan rpcResult, 1)
	if !ch.sendCommand(cmdRegisterWaiter{header: replyHeader, reply: reply}) {
		return nil, amqperr.ErrClosed
	}

	settled := false
	defer func() {
		if !settled {
			ch.sendCommand(cmdUnregisterWaiter{header: replyHeader})
		}
	}()

	f, err := buildMethodFrame(ch.id, h, body)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := ch.conn.transport.WriteFrame(f); err != nil {
		return nil, err
	}
	metrics.ObserveFrame("method", "out")

	select {
	case res := <-reply:
		settled = true
		metrics.ObserveRPCDuration(methodcat.Name(h), time.Since(start).Seconds())
		if res.err != nil {
			return nil, res.err
		}
		_, r, err := methodcat.SplitMethod(res.frame.Payload)
		return r, err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, amqperr.ErrTimeout
		}
		return nil, amqperr.ErrCanceled
	case <-ch.closeCh:
		if ch.closeErr != nil {
			return nil, ch.closeErr
		}
		return nil, amqperr.ErrClosed
	}
}

// buildMethodFrame serializes a complete method frame: class-id,
// method-id, then body's own arguments.
func buildMethodFrame(channel uint16, h methodcat.MethodHeader, body methodcat.Body) (frame.Frame, error) {
	var buf bytes.Buffer
	if err := methodcat.EncodeMethod(&buf, h, body); err != nil {
		return frame.Frame{}, err
	}
	return frame.Frame{Type: frame.Method, Channel: channel, Payload: buf.Bytes()}, nil
}
