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

// Package frame implements the AMQP 0-9-1 frame codec and the
// reader/writer transport loop that splits a byte stream into frames
// and serializes outgoing ones.
//
// Frame layout: type(1) + channel(2) + length(4) + payload(length) +
// end(1, always 0xCE).
package frame

import (
	"encoding/binary"
	"io"

	"github.com/rabbitgo/amqp091/amqperr"
	"github.com/rabbitgo/amqp091/internal/defaults"
)

// Type identifies one of the four AMQP frame kinds.
type Type uint8

const (
	Method        Type = 1
	ContentHeader Type = 2
	ContentBody   Type = 3
	Heartbeat     Type = 8
)

func (t Type) String() string {
	switch t {
	case Method:
		return "Method"
	case ContentHeader:
		return "ContentHeader"
	case ContentBody:
		return "ContentBody"
	case Heartbeat:
		return "Heartbeat"
	default:
		return "Unknown"
	}
}

func validType(t Type) bool {
	switch t {
	case Method, ContentHeader, ContentBody, Heartbeat:
		return true
	default:
		return false
	}
}

// Frame is one decoded AMQP frame: its type, channel id and raw payload
// (method payload, content-header payload, content-body bytes, or empty
// for a heartbeat).
type Frame struct {
	Type    Type
	Channel uint16
	Payload []byte
}

// NewHeartbeat returns an empty heartbeat frame on channel 0.
func NewHeartbeat() Frame {
	return Frame{Type: Heartbeat, Channel: 0}
}

// WriteFrame serializes f to w: header, payload, 0xCE sentinel. It
// performs no size check against the negotiated frame_max — splitting
// a large content body into frames that each fit is the caller's
// responsibility, via MaxBodyPayload.
func WriteFrame(w io.Writer, f Frame) error {
	var header [defaults.FrameHeaderSize]byte
	header[0] = byte(f.Type)
	binary.BigEndian.PutUint16(header[1:3], f.Channel)
	binary.BigEndian.PutUint32(header[3:7], uint32(len(f.Payload)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(f.Payload) > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{defaults.FrameEnd})
	return err
}

// MaxBodyPayload returns the largest content-body payload that fits in
// one frame given the negotiated frameMax (total on-wire frame size,
// header+payload+end).
func MaxBodyPayload(frameMax uint32) int {
	const overhead = defaults.FrameHeaderSize + 1 // header + end byte
	if frameMax <= overhead {
		return 0
	}
	return int(frameMax) - overhead
}

// ReadFrame reads exactly one frame from r, validating the type byte
// and trailing 0xCE sentinel. maxPayload bounds the declared length to
// guard against a desynchronized stream running away with a
// multi-gigabyte "allocation"; pass 0 to accept any length up to the
// codec's own uint32 ceiling.
func ReadFrame(r io.Reader, maxPayload uint32) (Frame, error) {
	var header [defaults.FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, err
	}

	typ := Type(header[0])
	if !validType(typ) {
		return Frame{}, amqperr.Wrap(amqperr.ErrMalformedFrame, "unknown frame type")
	}

	channel := binary.BigEndian.Uint16(header[1:3])
	length := binary.BigEndian.Uint32(header[3:7])
	if maxPayload > 0 && length > maxPayload {
		return Frame{}, amqperr.Wrap(amqperr.ErrMalformedFrame, "frame payload exceeds negotiated frame_max")
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, err
		}
	}

	var end [1]byte
	if _, err := io.ReadFull(r, end[:]); err != nil {
		return Frame{}, err
	}
	if end[0] != defaults.FrameEnd {
		return Frame{}, amqperr.Wrap(amqperr.ErrMalformedFrame, "missing frame end sentinel")
	}

	return Frame{Type: typ, Channel: channel, Payload: payload}, nil
}
