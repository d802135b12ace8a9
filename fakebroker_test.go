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
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rabbitgo/amqp091/internal/frame"
	"github.com/rabbitgo/amqp091/internal/methodcat"
)

// fakeBroker is a minimal server-side AMQP 0-9-1 peer for exercising
// Dial/Connection/Channel against, built the same way the client
// itself is: framed method/content I/O over a real net.Conn via
// internal/frame.Transport. It performs the handshake every test needs
// and then hands the live transport to a per-test scripted handler.
type fakeBroker struct {
	ln net.Listener
}

// startFakeBroker listens on an ephemeral local port and runs handle
// once per accepted connection, after completing the connection
// handshake server-side. It returns the dial address.
func startFakeBroker(t *testing.T, handle func(t *testing.T, tr *frame.Transport, conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tr := frame.NewTransport(conn, 0)
		if err := fakeBrokerHandshake(conn, tr); err != nil {
			return
		}
		handle(t, tr, conn)
	}()

	return ln.Addr().String()
}

func fakeBrokerHandshake(conn net.Conn, tr *frame.Transport) error {
	proto := make([]byte, 8)
	if _, err := io.ReadFull(conn, proto); err != nil {
		return err
	}

	startFrame, err := buildMethodFrame(0, hdr(methodcat.ClassConnection, methodcat.ConnectionStartID), methodcat.ConnectionStart{
		VersionMajor:     0,
		VersionMinor:     9,
		ServerProperties: Table{"product": "fakebroker"},
		Mechanisms:       "PLAIN",
		Locales:          "en_US",
	})
	if err != nil {
		return err
	}
	if err := tr.WriteFrame(startFrame); err != nil {
		return err
	}

	if _, err := tr.ReadFrame(); err != nil { // connection.start-ok
		return err
	}

	tuneFrame, err := buildMethodFrame(0, hdr(methodcat.ClassConnection, methodcat.ConnectionTuneID), methodcat.ConnectionTune{
		ChannelMax: 2047,
		FrameMax:   131072,
		Heartbeat:  0, // propose none: the client's own interval (60s unless a test sets one) is used, too long to fire mid-test
	})
	if err != nil {
		return err
	}
	if err := tr.WriteFrame(tuneFrame); err != nil {
		return err
	}

	if _, err := tr.ReadFrame(); err != nil { // connection.tune-ok
		return err
	}
	if _, err := tr.ReadFrame(); err != nil { // connection.open
		return err
	}

	openOkFrame, err := buildMethodFrame(0, hdr(methodcat.ClassConnection, methodcat.ConnectionOpenOkID), methodcat.ConnectionOpenOk{})
	if err != nil {
		return err
	}
	return tr.WriteFrame(openOkFrame)
}

// fakeBrokerOpenChannel reads a channel.open on channel id and replies
// channel.open-ok, the prelude every per-channel test scenario needs.
func fakeBrokerOpenChannel(t *testing.T, tr *frame.Transport) uint16 {
	t.Helper()
	f, err := tr.ReadFrame()
	require.NoError(t, err)
	h, _, err := methodcat.SplitMethod(f.Payload)
	require.NoError(t, err)
	require.Equal(t, hdr(methodcat.ClassChannel, methodcat.ChannelOpenID), h)

	okFrame, err := buildMethodFrame(f.Channel, hdr(methodcat.ClassChannel, methodcat.ChannelOpenOkID), methodcat.ChannelOpenOk{})
	require.NoError(t, err)
	require.NoError(t, tr.WriteFrame(okFrame))
	return f.Channel
}
