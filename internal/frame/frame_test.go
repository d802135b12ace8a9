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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbitgo/amqp091/amqperr"
	"github.com/rabbitgo/amqp091/internal/defaults"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		f    Frame
	}{
		{"method", Frame{Type: Method, Channel: 1, Payload: []byte{0x00, 0x0A, 0x00, 0x0B}}},
		{"content-header", Frame{Type: ContentHeader, Channel: 1, Payload: []byte{0x00, 0x3C, 0x00, 0x00}}},
		{"content-body", Frame{Type: ContentBody, Channel: 1, Payload: []byte("payload bytes")}},
		{"empty-body", Frame{Type: ContentBody, Channel: 1, Payload: nil}},
		{"heartbeat", NewHeartbeat()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteFrame(&buf, tt.f))

			got, err := ReadFrame(&buf, 0)
			require.NoError(t, err)
			if len(tt.f.Payload) == 0 {
				assert.Empty(t, got.Payload)
			} else {
				assert.Equal(t, tt.f.Payload, got.Payload)
			}
			assert.Equal(t, tt.f.Type, got.Type)
			assert.Equal(t, tt.f.Channel, got.Channel)
		})
	}
}

func TestWriteFrameLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Frame{Type: Method, Channel: 7, Payload: []byte{0xAA, 0xBB}}))

	b := buf.Bytes()
	require.Len(t, b, defaults.FrameHeaderSize+2+1)
	assert.Equal(t, byte(Method), b[0])
	assert.Equal(t, []byte{0x00, 0x07}, b[1:3])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x02}, b[3:7])
	assert.Equal(t, []byte{0xAA, 0xBB}, b[7:9])
	assert.Equal(t, byte(defaults.FrameEnd), b[9])
}

func TestReadFrameMissingEndSentinel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Frame{Type: Method, Channel: 0, Payload: []byte{0x01}}))
	corrupt := buf.Bytes()
	corrupt[len(corrupt)-1] = 0x00 // stomp the 0xCE sentinel

	_, err := ReadFrame(bytes.NewReader(corrupt), 0)
	require.ErrorIs(t, err, amqperr.ErrMalformedFrame)
}

func TestReadFrameUnknownType(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Frame{Type: Method, Channel: 0, Payload: nil}))
	corrupt := buf.Bytes()
	corrupt[0] = 0x09 // not one of Method/ContentHeader/ContentBody/Heartbeat

	_, err := ReadFrame(bytes.NewReader(corrupt), 0)
	require.ErrorIs(t, err, amqperr.ErrMalformedFrame)
}

func TestReadFrameExceedsMaxPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Frame{Type: ContentBody, Channel: 1, Payload: make([]byte, 100)}))

	_, err := ReadFrame(bytes.NewReader(buf.Bytes()), 50)
	require.ErrorIs(t, err, amqperr.ErrMalformedFrame)
}

func TestMaxBodyPayload(t *testing.T) {
	assert.Equal(t, 131072-8, MaxBodyPayload(131072))
	assert.Equal(t, 0, MaxBodyPayload(4))
}

// TestContentBodySplitAtFrameMaxBoundary mirrors the scenario from the
// public API tests: a body larger than one frame's capacity splits into
// frames of exactly MaxBodyPayload(frameMax) bytes (the last one
// shorter), and concatenating the decoded payloads back reproduces the
// original body exactly.
func TestContentBodySplitAtFrameMaxBoundary(t *testing.T) {
	const frameMax = 256
	chunk := MaxBodyPayload(frameMax)
	body := bytes.Repeat([]byte{0x42}, chunk*2+17)

	var buf bytes.Buffer
	var frames int
	for off := 0; off < len(body); off += chunk {
		end := off + chunk
		if end > len(body) {
			end = len(body)
		}
		require.NoError(t, WriteFrame(&buf, Frame{Type: ContentBody, Channel: 1, Payload: body[off:end]}))
		frames++
	}
	assert.Equal(t, 3, frames)

	var reassembled []byte
	r := bytes.NewReader(buf.Bytes())
	for i := 0; i < frames; i++ {
		f, err := ReadFrame(r, frameMax)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(f.Payload), chunk)
		reassembled = append(reassembled, f.Payload...)
	}
	assert.Equal(t, body, reassembled)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "Method", Method.String())
	assert.Equal(t, "ContentHeader", ContentHeader.String())
	assert.Equal(t, "ContentBody", ContentBody.String())
	assert.Equal(t, "Heartbeat", Heartbeat.String())
	assert.Equal(t, "Unknown", Type(99).String())
}
