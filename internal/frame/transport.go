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

package frame

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/rabbitgo/amqp091/amqperr"
)

// Transport owns one network connection. Reads are made by the
// connection's single reader goroutine; writes may come from any
// goroutine and are serialized by a mutex (there is no dedicated writer
// goroutine), so frames never interleave on the socket.
//
// Generalized from passive multi-segment TCP reassembly (tail/lackN
// bookkeeping across pcap segments) into a single buffered
// io.Reader over a live net.Conn — a live socket never hands back a
// short read the way a capture replay can, so the resync bookkeeping
// collapses into bufio.Reader's own buffering.
type Transport struct {
	r io.Reader
	w io.Writer

	maxPayload uint32

	writeMu sync.Mutex
	sentAt  atomicTime
}

// NewTransport wraps rw (typically a net.Conn) for framed I/O.
// maxPayload bounds inbound frame length (0 = unbounded, used before a
// frame_max is negotiated).
func NewTransport(rw io.ReadWriter, maxPayload uint32) *Transport {
	return &Transport{
		r:          bufio.NewReaderSize(rw, 64*1024),
		w:          rw,
		maxPayload: maxPayload,
	}
}

// SetMaxPayload tightens the inbound frame length bound once frame_max
// has been negotiated during the connection handshake.
func (tr *Transport) SetMaxPayload(n uint32) {
	tr.maxPayload = n
}

// ReadFrame reads the next frame off the wire.
func (tr *Transport) ReadFrame() (Frame, error) {
	return ReadFrame(tr.r, tr.maxPayload)
}

// WriteFrame writes a single frame, serialized against concurrent
// writers (the heartbeat ticker and the connection's outgoing-frame
// sender both call through this one entry point).
func (tr *Transport) WriteFrame(f Frame) error {
	tr.writeMu.Lock()
	defer tr.writeMu.Unlock()
	if err := WriteFrame(tr.w, f); err != nil {
		return err
	}
	tr.sentAt.store(now())
	return nil
}

// WriteFrames writes a batch of frames back-to-back under a single
// lock acquisition, guaranteeing a method frame and its content-header
// and content-body frames are never interleaved with another writer's
// frames.
func (tr *Transport) WriteFrames(frames []Frame) error {
	tr.writeMu.Lock()
	defer tr.writeMu.Unlock()
	for _, f := range frames {
		if err := WriteFrame(tr.w, f); err != nil {
			return err
		}
	}
	tr.sentAt.store(now())
	return nil
}

// RunHeartbeatSender emits a heartbeat frame once per interval whenever
// nothing else has been written since the last tick, until ctx is
// canceled. interval <= 0 disables heartbeats entirely (heartbeat
// negotiated to 0).
func (tr *Transport) RunHeartbeatSender(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if now().Sub(tr.sentAt.load()) >= interval {
				if err := tr.WriteFrame(NewHeartbeat()); err != nil {
					return err
				}
			}
		}
	}
}

// DeadlineWatcher returns ErrHeartbeatLost if no frame of any kind is
// observed (via Touch) within limit*interval. Callers invoke Touch from
// the reader loop on every successfully read frame, including
// heartbeats.
type DeadlineWatcher struct {
	mu       sync.Mutex
	lastSeen time.Time
	interval time.Duration
	limit    int
}

// NewDeadlineWatcher starts a watcher with the clock running from now.
func NewDeadlineWatcher(interval time.Duration, limit int) *DeadlineWatcher {
	return &DeadlineWatcher{lastSeen: now(), interval: interval, limit: limit}
}

// Touch records that a frame was just received.
func (d *DeadlineWatcher) Touch() {
	d.mu.Lock()
	d.lastSeen = now()
	d.mu.Unlock()
}

// Run blocks, polling at interval/2 resolution, until ctx is canceled
// or the deadline (limit consecutive missed intervals) is exceeded.
func (d *DeadlineWatcher) Run(ctx context.Context) error {
	if d.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(d.interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.mu.Lock()
			elapsed := now().Sub(d.lastSeen)
			d.mu.Unlock()
			if elapsed >= time.Duration(d.limit)*d.interval {
				return amqperr.ErrHeartbeatLost
			}
		}
	}
}

// atomicTime is a minimal mutex-guarded clock value; the standard
// library has no atomic.Value ergonomics for time.Time that avoid an
// allocation on every store, and this type is only ever stored by
// writers (already holding writeMu) and loaded by the heartbeat ticker,
// so a plain mutex is simpler than sync/atomic.Pointer gymnastics.
type atomicTime struct {
	mu sync.Mutex
	t  time.Time
}

func (a *atomicTime) store(t time.Time) {
	a.mu.Lock()
	a.t = t
	a.mu.Unlock()
}

func (a *atomicTime) load() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.t
}

// now is the package's sole time source, isolated behind a var so
// tests can't need it swapped (no wall-clock assertions in this
// package's own tests) but so the dependency is visible at a glance.
var now = time.Now
