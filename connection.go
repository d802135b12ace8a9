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
	"net"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/rabbitgo/amqp091/amqperr"
	"github.com/rabbitgo/amqp091/internal/defaults"
	"github.com/rabbitgo/amqp091/internal/frame"
	"github.com/rabbitgo/amqp091/internal/metrics"
	"github.com/rabbitgo/amqp091/internal/methodcat"
	"github.com/rabbitgo/amqp091/internal/rescue"
	"github.com/rabbitgo/amqp091/logger"
)

// DialOptions configures the handshake.
type DialOptions struct {
	VirtualHost      string
	Username         string
	Password         string
	Locale           string
	ChannelMax       uint16
	FrameMax         uint32
	Heartbeat        time.Duration
	HandshakeTimeout time.Duration
	ClientProperties Table
	Callback         ConnectionCallback
	Logger           logger.Logger
}

func (o *DialOptions) setDefaults() {
	if o.Locale == "" {
		o.Locale = "en_US"
	}
	if o.ChannelMax == 0 {
		o.ChannelMax = defaults.ChannelMax
	}
	if o.FrameMax == 0 {
		o.FrameMax = defaults.FrameMax
	}
	if o.Heartbeat == 0 {
		o.Heartbeat = defaults.Heartbeat * time.Second
	}
	if o.HandshakeTimeout == 0 {
		o.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if o.Callback == nil {
		o.Callback = DefaultConnectionCallback{}
	}
}

// Connection is one AMQP connection multiplexing many Channels over a
// single net.Conn: the connection owns the socket, and every channel
// is a logical stream atop it.
type Connection struct {
	netConn   net.Conn
	transport *frame.Transport
	log       logger.Logger

	channelMax uint16
	frameMax   uint32
	heartbeat  time.Duration
	serverInfo ServerProperties

	mu       sync.Mutex
	channels map[uint16]*Channel
	nextFree uint16

	callback ConnectionCallback

	waitersMu sync.Mutex
	waiters   map[methodcat.MethodHeader]chan rpcResult

	watcher *frame.DeadlineWatcher

	ctx    context.Context
	cancel context.CancelFunc

	closeCh  chan struct{}
	closeErr error
	once     sync.Once
}

// Dial connects to addr, performs the AMQP 0-9-1 handshake (protocol
// header, connection.start/start-ok, tune/tune-ok, open/open-ok — spec
// §4.4) and starts the reader, heartbeat-sender and (when a heartbeat
// was negotiated) heartbeat-watcher goroutines. Writes go straight to
// the mutex-guarded transport; there is no writer goroutine.
func Dial(ctx context.Context, addr string, opts DialOptions) (*Connection, error) {
	opts.setDefaults()
	log := opts.Logger
	if (logger.Logger{}) == log {
		log = logger.New(logger.Options{Stdout: true, Level: string(logger.LevelInfo)})
	}
	log = log.Named("conn")

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, amqperr.Wrap(err, "dial")
	}

	cctx, cancel := context.WithCancel(context.Background())
	conn := &Connection{
		netConn:  nc,
		log:      log,
		channels: make(map[uint16]*Channel),
		nextFree: 1,
		callback: opts.Callback,
		waiters:  make(map[methodcat.MethodHeader]chan rpcResult),
		ctx:      cctx,
		cancel:   cancel,
		closeCh:  make(chan struct{}),
	}
	conn.transport = frame.NewTransport(nc, 0)

	hctx, hcancel := context.WithTimeout(ctx, opts.HandshakeTimeout)
	defer hcancel()
	if err := conn.handshake(hctx, opts); err != nil {
		nc.Close()
		cancel()
		return nil, err
	}

	go conn.readLoop()
	go func() {
		if err := conn.transport.RunHeartbeatSender(conn.ctx, conn.heartbeat); err != nil && conn.ctx.Err() == nil {
			conn.fail(amqperr.Wrapf(err, "heartbeat sender"))
		}
	}()
	if conn.heartbeat > 0 {
		watcher := frame.NewDeadlineWatcher(conn.heartbeat, defaults.MissedHeartbeatsLimit)
		conn.watcher = watcher
		go func() {
			if err := watcher.Run(conn.ctx); err != nil && conn.ctx.Err() == nil {
				metrics.IncHeartbeatMiss()
				conn.fail(err)
			}
		}()
	}

	return conn, nil
}

func (conn *Connection) handshake(ctx context.Context, opts DialOptions) error {
	if _, err := conn.netConn.Write([]byte(defaults.ProtocolHeader)); err != nil {
		return amqperr.Wrap(err, "write protocol header")
	}

	startFrame, err := conn.transport.ReadFrame()
	if err != nil {
		return amqperr.NewHandshakeFailed("reading connection.start: %v", err)
	}
	h, r, err := methodcat.SplitMethod(startFrame.Payload)
	if err != nil || h != (methodcat.MethodHeader{ClassID: methodcat.ClassConnection, MethodID: methodcat.ConnectionStartID}) {
		return amqperr.NewHandshakeFailed("expected connection.start, got %s", methodcat.Name(h))
	}
	start, err := methodcat.DecodeConnectionStart(r)
	if err != nil {
		return amqperr.NewHandshakeFailed("decoding connection.start: %v", err)
	}
	if sp, err := decodeServerProperties(Table(start.ServerProperties)); err == nil {
		conn.serverInfo = sp
	} else {
		conn.log.Warnf("decoding server-properties: %v", err)
	}

	clientProps := opts.ClientProperties
	if clientProps == nil {
		clientProps = Table{}
	}
	clientProps["product"] = defaults.App
	clientProps["version"] = defaults.Version
	clientProps["capabilities"] = Table{
		"consumer_cancel_notify": true,
		"connection.blocked":     true,
		"publisher_confirms":     true,
	}
	startOk := methodcat.ConnectionStartOk{
		ClientProperties: clientProps,
		Mechanism:        "PLAIN",
		Response:         "\x00" + opts.Username + "\x00" + opts.Password,
		Locale:           opts.Locale,
	}
	if err := conn.writeMethod0(methodcat.ConnectionStartOkID, startOk); err != nil {
		return amqperr.NewHandshakeFailed("writing connection.start-ok: %v", err)
	}

	tuneFrame, err := conn.transport.ReadFrame()
	if err != nil {
		return amqperr.NewHandshakeFailed("reading connection.tune: %v", err)
	}
	h, r, err = methodcat.SplitMethod(tuneFrame.Payload)
	if err != nil || h != (methodcat.MethodHeader{ClassID: methodcat.ClassConnection, MethodID: methodcat.ConnectionTuneID}) {
		return amqperr.NewHandshakeFailed("expected connection.tune, got %s", methodcat.Name(h))
	}
	tune, err := methodcat.DecodeConnectionTune(r)
	if err != nil {
		return amqperr.NewHandshakeFailed("decoding connection.tune: %v", err)
	}

	conn.channelMax = minNonZero16(tune.ChannelMax, opts.ChannelMax)
	conn.frameMax = minNonZero32(tune.FrameMax, opts.FrameMax)
	heartbeatSecs := minNonZero16(tune.Heartbeat, uint16(opts.Heartbeat/time.Second))
	conn.heartbeat = time.Duration(heartbeatSecs) * time.Second
	conn.transport.SetMaxPayload(conn.frameMax)

	tuneOk := methodcat.ConnectionTuneOk{ChannelMax: conn.channelMax, FrameMax: conn.frameMax, Heartbeat: heartbeatSecs}
	if err := conn.writeMethod0(methodcat.ConnectionTuneOkID, tuneOk); err != nil {
		return amqperr.NewHandshakeFailed("writing connection.tune-ok: %v", err)
	}

	if err := conn.writeMethod0(methodcat.ConnectionOpenID, methodcat.ConnectionOpen{VirtualHost: opts.VirtualHost}); err != nil {
		return amqperr.NewHandshakeFailed("writing connection.open: %v", err)
	}
	openOkFrame, err := conn.transport.ReadFrame()
	if err != nil {
		return amqperr.NewHandshakeFailed("reading connection.open-ok: %v", err)
	}
	h, r, err = methodcat.SplitMethod(openOkFrame.Payload)
	if err != nil || h != (methodcat.MethodHeader{ClassID: methodcat.ClassConnection, MethodID: methodcat.ConnectionOpenOkID}) {
		return amqperr.NewHandshakeFailed("expected connection.open-ok, got %s", methodcat.Name(h))
	}
	if _, err := methodcat.DecodeConnectionOpenOk(r); err != nil {
		return amqperr.NewHandshakeFailed("decoding connection.open-ok: %v", err)
	}
	return nil
}

func (conn *Connection) writeMethod0(methodID uint16, body methodcat.Body) error {
	f, err := buildMethodFrame(0, methodcat.MethodHeader{ClassID: methodcat.ClassConnection, MethodID: methodID}, body)
	if err != nil {
		return err
	}
	metrics.ObserveFrame("method", "out")
	return conn.transport.WriteFrame(f)
}

func minNonZero16(proposed, configured uint16) uint16 {
	if proposed == 0 {
		return configured
	}
	if configured == 0 || configured > proposed {
		return proposed
	}
	return configured
}

func minNonZero32(proposed, configured uint32) uint32 {
	if proposed == 0 {
		return configured
	}
	if configured == 0 || configured > proposed {
		return proposed
	}
	return configured
}

// readLoop is the connection's single reader goroutine: demultiplexes
// every inbound frame by channel id, handling channel-0 traffic itself
// and forwarding anything else to the owning Channel.
func (conn *Connection) readLoop() {
	defer conn.fail(nil)
	for {
		f, err := conn.transport.ReadFrame()
		if err != nil {
			conn.fail(amqperr.Wrap(err, "read loop"))
			return
		}
		if conn.watcher != nil {
			conn.watcher.Touch()
		}
		if f.Type == frame.Heartbeat {
			continue
		}
		metrics.ObserveFrame(f.Type.String(), "in")

		if f.Channel == 0 {
			conn.handleChannel0(f)
			continue
		}

		conn.mu.Lock()
		ch, ok := conn.channels[f.Channel]
		conn.mu.Unlock()
		if !ok {
			conn.log.Warnf("frame for unknown channel %d, dropping", f.Channel)
			continue
		}
		ch.dispatch(f)
	}
}

func (conn *Connection) handleChannel0(f frame.Frame) {
	if f.Type != frame.Method {
		conn.log.Warnf("unexpected %s frame on channel 0, dropping", f.Type)
		return
	}
	h, r, err := methodcat.SplitMethod(f.Payload)
	if err != nil {
		conn.log.Errorf("malformed channel-0 method: %v", err)
		return
	}

	switch h {
	case (methodcat.MethodHeader{ClassID: methodcat.ClassConnection, MethodID: methodcat.ConnectionCloseID}):
		m, err := methodcat.DecodeConnectionClose(r)
		if err != nil {
			conn.log.Errorf("malformed connection.close: %v", err)
			return
		}
		conn.writeMethod0(methodcat.ConnectionCloseOkID, methodcat.ConnectionCloseOk{})
		conn.fail(&amqperr.ConnectionClosed{Code: int(m.ReplyCode), Text: m.ReplyText})

	case (methodcat.MethodHeader{ClassID: methodcat.ClassConnection, MethodID: methodcat.ConnectionBlockedID}):
		m, err := methodcat.DecodeConnectionBlocked(r)
		if err != nil {
			conn.log.Errorf("malformed connection.blocked: %v", err)
			return
		}
		if cb := conn.callback; cb != nil {
			rescue.Call(func() { cb.Blocked(m.Reason) })
		}

	case (methodcat.MethodHeader{ClassID: methodcat.ClassConnection, MethodID: methodcat.ConnectionUnblockedID}):
		if cb := conn.callback; cb != nil {
			rescue.Call(func() { cb.Unblocked() })
		}

	default:
		conn.waitersMu.Lock()
		w, ok := conn.waiters[h]
		if ok {
			delete(conn.waiters, h)
		}
		conn.waitersMu.Unlock()
		if !ok {
			conn.log.Warnf("unexpected channel-0 reply %s, dropping", methodcat.Name(h))
			return
		}
		w <- rpcResult{frame: f}
	}
}

// fail tears the connection down exactly once: closes the socket,
// fails every outstanding channel and channel-0 waiter, and invokes
// the connection callback. err may be nil for a clean local Close.
func (conn *Connection) fail(err error) {
	conn.once.Do(func() {
		conn.closeErr = err
		conn.cancel()
		conn.netConn.Close()

		conn.mu.Lock()
		chans := make([]*Channel, 0, len(conn.channels))
		for _, ch := range conn.channels {
			chans = append(chans, ch)
		}
		conn.mu.Unlock()
		connErr := err
		if connErr == nil {
			connErr = amqperr.ErrClosed
		}
		for _, ch := range chans {
			ch.sendCommand(cmdConnectionFailed{err: connErr})
		}

		conn.waitersMu.Lock()
		for h, w := range conn.waiters {
			w <- rpcResult{err: amqperr.ErrClosed}
			delete(conn.waiters, h)
		}
		conn.waitersMu.Unlock()

		code, text := uint16(0), ""
		if cc, ok := amqperr.AsConnectionClosed(err); ok {
			code, text = uint16(cc.Code), cc.Text
		}
		cb := conn.callback
		if cb != nil {
			rescue.Call(func() { cb.Close(code, text) })
		}
		close(conn.closeCh)
	})
}

// OpenChannel allocates a fresh channel id, issues channel.open and
// starts its dispatcher goroutine once channel.open-ok is received.
func (conn *Connection) OpenChannel(ctx context.Context) (*Channel, error) {
	conn.mu.Lock()
	id, err := conn.allocateChannelID()
	if err != nil {
		conn.mu.Unlock()
		return nil, err
	}
	ch := newChannel(conn, id)
	conn.channels[id] = ch
	conn.mu.Unlock()

	go ch.run()

	if _, err := ch.call(ctx, hdr(methodcat.ClassChannel, methodcat.ChannelOpenID), methodcat.ChannelOpen{}); err != nil {
		conn.forgetChannel(id)
		return nil, err
	}
	return ch, nil
}

func (conn *Connection) allocateChannelID() (uint16, error) {
	for i := uint16(0); i < conn.channelMax; i++ {
		id := conn.nextFree
		conn.nextFree++
		if conn.nextFree > conn.channelMax {
			conn.nextFree = 1
		}
		if id == 0 {
			continue
		}
		if _, taken := conn.channels[id]; !taken {
			return id, nil
		}
	}
	return 0, amqperr.ErrNoFreeChannel
}

func (conn *Connection) forgetChannel(id uint16) {
	conn.mu.Lock()
	delete(conn.channels, id)
	conn.mu.Unlock()
}

// Close performs a graceful connection shutdown: connection.close,
// await close-ok, then tear down every channel and the transport.
func (conn *Connection) Close(ctx context.Context) error {
	f, err := buildMethodFrame(0, hdr(methodcat.ClassConnection, methodcat.ConnectionCloseID), methodcat.ConnectionClose{ReplyCode: 200, ReplyText: "normal shutdown"})
	if err != nil {
		return err
	}
	reply := make(chan rpcResult, 1)
	conn.waitersMu.Lock()
	conn.waiters[hdr(methodcat.ClassConnection, methodcat.ConnectionCloseOkID)] = reply
	conn.waitersMu.Unlock()

	var result *multierror.Error
	if err := conn.transport.WriteFrame(f); err != nil {
		result = multierror.Append(result, err)
	} else {
		select {
		case <-reply:
		case <-ctx.Done():
			result = multierror.Append(result, ctx.Err())
		case <-conn.closeCh:
		}
	}
	conn.fail(nil)
	return result.ErrorOrNil()
}

// Done returns a channel closed once the connection has fully torn
// down, whether by local Close or a server/transport failure.
func (conn *Connection) Done() <-chan struct{} { return conn.closeCh }

// Err returns the reason the connection closed, or nil for a clean
// local Close.
func (conn *Connection) Err() error { return conn.closeErr }

// ServerInfo returns the broker's server-properties from the handshake.
func (conn *Connection) ServerInfo() ServerProperties { return conn.serverInfo }
