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
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rabbitgo/amqp091/amqperr"
	"github.com/rabbitgo/amqp091/internal/frame"
	"github.com/rabbitgo/amqp091/internal/methodcat"
)

func dialTestConn(t *testing.T, addr string) *Connection {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := Dial(ctx, addr, DialOptions{VirtualHost: "/", Username: "guest", Password: "guest"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.fail(nil) })
	return conn
}

// TestDialHandshake covers the handshake scenario: protocol header,
// start/start-ok, tune/tune-ok, open/open-ok, and that the decoded
// server-properties surface on ServerInfo.
func TestDialHandshake(t *testing.T) {
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		_, _ = io.Copy(io.Discard, conn) // block until the client closes the socket
	})

	conn := dialTestConn(t, addr)
	require.Equal(t, "fakebroker", conn.ServerInfo().Product)
	require.NoError(t, conn.Err())
}

// TestOpenChannelAndQueueDeclare covers declaring a queue over a freshly
// opened channel and reading back the broker's message/consumer counts.
func TestOpenChannelAndQueueDeclare(t *testing.T) {
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		fakeBrokerOpenChannel(t, tr)

		f, err := tr.ReadFrame()
		require.NoError(t, err)
		h, r, err := methodcat.SplitMethod(f.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassQueue, methodcat.QueueDeclareID), h)
		decl, err := methodcat.DecodeQueueDeclare(r)
		require.NoError(t, err)
		require.Equal(t, "jobs", decl.Queue)

		okFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassQueue, methodcat.QueueDeclareOkID), methodcat.QueueDeclareOk{
			Queue: "jobs", MessageCount: 3, ConsumerCount: 1,
		})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(okFrame))

		_, _ = io.Copy(io.Discard, conn) // block until the client closes the socket
	})

	conn := dialTestConn(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ch, err := conn.OpenChannel(ctx)
	require.NoError(t, err)

	info, err := ch.QueueDeclare(ctx, QueueDeclareArgs{Queue: "jobs", Durable: true})
	require.NoError(t, err)
	require.Equal(t, "jobs", info.Queue)
	require.EqualValues(t, 3, info.MessageCount)
	require.EqualValues(t, 1, info.ConsumerCount)
}

// TestConnectionCloseGraceful covers a client-initiated connection.close
// completing its round trip and Connection.Done() firing afterward.
func TestConnectionCloseGraceful(t *testing.T) {
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		f, err := tr.ReadFrame()
		require.NoError(t, err)
		h, _, err := methodcat.SplitMethod(f.Payload)
		require.NoError(t, err)
		require.Equal(t, hdr(methodcat.ClassConnection, methodcat.ConnectionCloseID), h)

		okFrame, err := buildMethodFrame(0, hdr(methodcat.ClassConnection, methodcat.ConnectionCloseOkID), methodcat.ConnectionCloseOk{})
		require.NoError(t, err)
		require.NoError(t, tr.WriteFrame(okFrame))
	})

	conn := dialTestConn(t, addr)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, conn.Close(ctx))
	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("connection did not report Done() after Close")
	}
}

// TestConnectionFailPropagatesToChannels covers the connection-level
// teardown path: when the transport fails, an RPC on an open channel
// returns an error (the connection's failure reason or ErrClosed)
// rather than hanging.
func TestConnectionFailPropagatesToChannels(t *testing.T) {
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		fakeBrokerOpenChannel(t, tr)
		conn.Close() // sever the connection from the broker side right after channel.open-ok
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

// TestHeartbeatLossFailsConnection covers the heartbeat-loss scenario:
// the client asks for a one-second heartbeat (the fake broker proposes
// none, so the client's value is negotiated) and the broker then goes
// silent, and the client must detect the missed deadline itself and
// fail the connection rather than hang forever.
func TestHeartbeatLossFailsConnection(t *testing.T) {
	addr := startFakeBroker(t, func(t *testing.T, tr *frame.Transport, conn net.Conn) {
		// Stay silent after the handshake: never write again, only
		// read and discard whatever the client sends.
		_, _ = io.Copy(io.Discard, conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := Dial(ctx, addr, DialOptions{
		VirtualHost: "/", Username: "guest", Password: "guest",
		Heartbeat: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.fail(nil) })

	select {
	case <-conn.Done():
		require.ErrorIs(t, conn.Err(), amqperr.ErrHeartbeatLost)
	case <-time.After(5 * time.Second):
		t.Fatal("connection never failed after heartbeats were lost")
	}
}
