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
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rabbitgo/amqp091/internal/frame"
	"github.com/rabbitgo/amqp091/internal/methodcat"
)

func openTestChannel(t *testing.T, addr string) *Channel {
	t.Helper()
	conn := dialTestConn(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ch, err := conn.OpenChannel(ctx)
	require.NoError(t, err)
	return ch
}

// TestBasicPublishFraming covers the publish framing scenario: method,
// content header and content body arrive as one uninterrupted batch and
// reassemble into the original exchange/routing-key/properties/body.
func TestBasicPublishFraming(t *testing.T) {
	received := make(chan struct {
		exchange, routingKey string
		contentType          string
		body                 []byte
	}, 1)

	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		fakeBrokerOpenChannel(t, tr)

		mf, err := tr.ReadFrame()
		require.NoError(t, err)
		h, r, err := methodcat.SplitMethod(mf.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassBasic, methodcat.BasicPublishID), h)
		pub, err := methodcat.DecodeBasicPublish(r)
		require.NoError(t, err)

		hf, err := tr.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, frame.ContentHeader, hf.Type)
		_, bodySize, props, err := methodcat.DecodeContentHeader(hf.Payload)
		require.NoError(t, err)

		var body []byte
		for uint64(len(body)) < bodySize {
			bf, err := tr.ReadFrame()
			require.NoError(t, err)
			require.Equal(t, frame.ContentBody, bf.Type)
			body = append(body, bf.Payload...)
		}

		received <- struct {
			exchange, routingKey string
			contentType          string
			body                 []byte
		}{pub.Exchange, pub.RoutingKey, props.ContentType, body}

		_, _ = io.Copy(io.Discard, conn) // block until the client closes the socket
	})

	ch := openTestChannel(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	body := []byte("hello rabbitgo")
	err := ch.BasicPublish(ctx, "events", "jobs.created", false, false, Properties{ContentType: "text/plain"}, body)
	require.NoError(t, err)

	select {
	case got := <-received:
		require.Equal(t, "events", got.exchange)
		require.Equal(t, "jobs.created", got.routingKey)
		require.Equal(t, "text/plain", got.contentType)
		require.Equal(t, body, got.body)
	case <-time.After(time.Second):
		t.Fatal("broker never received the published message")
	}
}

// TestBasicGetEmptyThenMessage covers both basic.get-empty and a
// basic.get-ok carrying a reassembled delivery.
func TestBasicGetEmptyThenMessage(t *testing.T) {
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		fakeBrokerOpenChannel(t, tr)

		// First get: empty queue.
		f, err := tr.ReadFrame()
		require.NoError(t, err)
		h, _, err := methodcat.SplitMethod(f.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassBasic, methodcat.BasicGetID), h)
		emptyFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassBasic, methodcat.BasicGetEmptyID), methodcat.BasicGetEmpty{})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(emptyFrame))

		// Second get: one message.
		f, err = tr.ReadFrame()
		require.NoError(t, err)
		h, _, err = methodcat.SplitMethod(f.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassBasic, methodcat.BasicGetID), h)

		okFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassBasic, methodcat.BasicGetOkID), methodcat.BasicGetOk{
			DeliveryTag: 1, Exchange: "events", RoutingKey: "jobs.created", MessageCount: 0,
		})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(okFrame))
		writeTestContent(t, tr, f.Channel, []byte("payload"))

		_, _ = io.Copy(io.Discard, conn) // block until the client closes the socket
	})

	ch := openTestChannel(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, ok, err := ch.BasicGet(ctx, "jobs", false)
	require.NoError(t, err)
	require.False(t, ok)

	d, ok, err := ch.BasicGet(ctx, "jobs", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1, d.DeliveryTag)
	require.Equal(t, "jobs.created", d.RoutingKey)
	require.Equal(t, []byte("payload"), d.Body)
}

// TestBasicConsumeBuffersDeliveryBeforeRegistration covers the consumer
// race scenario: the broker delivers a message for a consumer tag
// before the client has processed that consumer's own consume-ok, so
// the dispatcher must buffer the delivery in FIFO order and flush it
// into the sink as soon as registration completes, rather than drop or
// reorder it.
func TestBasicConsumeBuffersDeliveryBeforeRegistration(t *testing.T) {
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		fakeBrokerOpenChannel(t, tr)

		f, err := tr.ReadFrame()
		require.NoError(t, err)
		h, r, err := methodcat.SplitMethod(f.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassBasic, methodcat.BasicConsumeID), h)
		req, err := methodcat.DecodeBasicConsume(r)
		require.NoError(t, err)
		require.Equal(t, "ctag1", req.ConsumerTag)

		// Deliver before replying consume-ok: the client cannot possibly
		// have registered a sink for "ctag1" yet.
		deliverFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassBasic, methodcat.BasicDeliverID), methodcat.BasicDeliver{
			ConsumerTag: "ctag1", DeliveryTag: 1, Exchange: "events", RoutingKey: "jobs.created",
		})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(deliverFrame))
		writeTestContent(t, tr, f.Channel, []byte("buffered"))

		okFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassBasic, methodcat.BasicConsumeOkID), methodcat.BasicConsumeOk{ConsumerTag: "ctag1"})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(okFrame))

		_, _ = io.Copy(io.Discard, conn) // block until the client closes the socket
	})

	ch := openTestChannel(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	tag, deliveries, err := ch.BasicConsume(ctx, ConsumeArgs{Queue: "jobs", ConsumerTag: "ctag1"})
	require.NoError(t, err)
	require.Equal(t, "ctag1", tag)

	select {
	case d := <-deliveries:
		require.EqualValues(t, 1, d.DeliveryTag)
		require.Equal(t, []byte("buffered"), d.Body)
	case <-time.After(time.Second):
		t.Fatal("buffered delivery never flushed to the consumer sink")
	}
}

// TestServerChannelCloseFailsInFlightRPC covers a server-initiated
// channel.close arriving while a synchronous RPC is outstanding: the
// in-flight call must return an error rather than hang until its
// context deadline.
func TestServerChannelCloseFailsInFlightRPC(t *testing.T) {
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		fakeBrokerOpenChannel(t, tr)

		f, err := tr.ReadFrame()
		require.NoError(t, err)
		h, _, err := methodcat.SplitMethod(f.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassQueue, methodcat.QueueDeclareID), h)

		closeFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassChannel, methodcat.ChannelCloseID), methodcat.ChannelClose{
			ReplyCode: 404, ReplyText: "NOT_FOUND",
		})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(closeFrame))

		_, err = tr.ReadFrame() // channel.close-ok the client must send back
		require.NoError(t, err)

		_, _ = io.Copy(io.Discard, conn) // block until the client closes the socket
	})

	conn := dialTestConn(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ch, err := conn.OpenChannel(ctx)
	require.NoError(t, err)

	qctx, qcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer qcancel()
	_, err = ch.QueueDeclare(qctx, QueueDeclareArgs{Queue: "jobs"})
	require.Error(t, err)
}

// TestLargeBodyFragmentsAcrossMultipleFrames covers the large-body
// scenario: a negotiated frame_max small enough to force a single
// publish into several content-body frames, which the broker side
// reassembles, and the reverse direction where the client reassembles
// a multi-frame delivery back into one Delivery.Body.
func TestLargeBodyFragmentsAcrossMultipleFrames(t *testing.T) {
	const negotiatedFrameMax = 4096
	body := bytes.Repeat([]byte("x"), 10000)

	var gotFrameCount int
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		fakeBrokerOpenChannel(t, tr)

		mf, err := tr.ReadFrame()
		require.NoError(t, err)
		h, _, err := methodcat.SplitMethod(mf.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassBasic, methodcat.BasicPublishID), h)

		hf, err := tr.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, frame.ContentHeader, hf.Type)
		_, bodySize, _, err := methodcat.DecodeContentHeader(hf.Payload)
		require.NoError(t, err)

		var got []byte
		for uint64(len(got)) < bodySize {
			bf, err := tr.ReadFrame()
			require.NoError(t, err)
			require.Equal(t, frame.ContentBody, bf.Type)
			require.LessOrEqual(t, len(bf.Payload), frame.MaxBodyPayload(negotiatedFrameMax))
			got = append(got, bf.Payload...)
			gotFrameCount++
		}
		require.Equal(t, body, got)
		require.Greater(t, gotFrameCount, 1, "body should have split across more than one content-body frame")

		// Reflect the same body back as a delivery, split the same way,
		// to exercise client-side reassembly too.
		f, err := tr.ReadFrame() // basic.consume
		require.NoError(t, err)
		h, r, err := methodcat.SplitMethod(f.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassBasic, methodcat.BasicConsumeID), h)
		req, err := methodcat.DecodeBasicConsume(r)
		require.NoError(t, err)

		okFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassBasic, methodcat.BasicConsumeOkID), methodcat.BasicConsumeOk{ConsumerTag: req.ConsumerTag})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(okFrame))

		deliverFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassBasic, methodcat.BasicDeliverID), methodcat.BasicDeliver{
			ConsumerTag: req.ConsumerTag, DeliveryTag: 1, Exchange: "events", RoutingKey: "jobs.created",
		})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(deliverFrame))
		writeTestContentFragmented(t, tr, f.Channel, body, frame.MaxBodyPayload(negotiatedFrameMax))

		_, _ = io.Copy(io.Discard, conn) // block until the client closes the socket
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := Dial(ctx, addr, DialOptions{
		VirtualHost: "/", Username: "guest", Password: "guest",
		FrameMax: negotiatedFrameMax,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.fail(nil) })

	ch, err := conn.OpenChannel(ctx)
	require.NoError(t, err)

	require.NoError(t, ch.BasicPublish(ctx, "events", "jobs.created", false, false, Properties{}, body))

	_, deliveries, err := ch.BasicConsume(ctx, ConsumeArgs{Queue: "jobs"})
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		require.Equal(t, body, d.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("fragmented delivery never reassembled")
	}
}

func writeTestContentFragmented(t *testing.T, tr *frame.Transport, channel uint16, body []byte, maxBody int) {
	t.Helper()
	var hbuf bytes.Buffer
	require.NoError(t, methodcat.EncodeContentHeader(&hbuf, methodcat.ClassBasic, uint64(len(body)), Properties{}))
	require.NoError(t, tr.WriteFrame(frame.Frame{Type: frame.ContentHeader, Channel: channel, Payload: hbuf.Bytes()}))
	for off := 0; off < len(body); off += maxBody {
		end := off + maxBody
		if end > len(body) {
			end = len(body)
		}
		require.NoError(t, tr.WriteFrame(frame.Frame{Type: frame.ContentBody, Channel: channel, Payload: body[off:end]}))
	}
}

func writeTestContent(t *testing.T, tr *frame.Transport, channel uint16, body []byte) {
	t.Helper()
	var hbuf bytes.Buffer
	require.NoError(t, methodcat.EncodeContentHeader(&hbuf, methodcat.ClassBasic, uint64(len(body)), Properties{}))
	require.NoError(t, tr.WriteFrame(frame.Frame{Type: frame.ContentHeader, Channel: channel, Payload: hbuf.Bytes()}))
	require.NoError(t, tr.WriteFrame(frame.Frame{Type: frame.ContentBody, Channel: channel, Payload: body}))
}
