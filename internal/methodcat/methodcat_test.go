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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbitgo/amqp091/internal/wire"
)

func TestNameAndReplyOf(t *testing.T) {
	assert.Equal(t, "queue.declare", Name(MethodHeader{ClassID: ClassQueue, MethodID: QueueDeclareID}))
	assert.Equal(t, "basic.publish", Name(MethodHeader{ClassID: ClassBasic, MethodID: BasicPublishID}))
	assert.Equal(t, "", Name(MethodHeader{ClassID: 9999, MethodID: 1}))

	reply, ok := ReplyOf(MethodHeader{ClassID: ClassQueue, MethodID: QueueDeclareID})
	require.True(t, ok)
	assert.Equal(t, MethodHeader{ClassID: ClassQueue, MethodID: QueueDeclareOkID}, reply)

	_, ok = ReplyOf(MethodHeader{ClassID: ClassBasic, MethodID: BasicPublishID})
	assert.False(t, ok, "publish has no synchronous reply")
}

func TestQueueDeclareRoundTrip(t *testing.T) {
	m := QueueDeclare{
		Queue:      "orders",
		Durable:    true,
		AutoDelete: false,
		Arguments:  wire.Table{"x-max-length": int32(1000)},
	}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeQueueDeclare(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestBasicPublishRoundTrip(t *testing.T) {
	m := BasicPublish{Exchange: "orders.x", RoutingKey: "orders.created", Mandatory: true}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeBasicPublish(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestBasicDeliverRoundTrip(t *testing.T) {
	m := BasicDeliver{
		ConsumerTag: "ctag-1",
		DeliveryTag: 42,
		Redelivered: true,
		Exchange:    "orders.x",
		RoutingKey:  "orders.created",
	}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeBasicDeliver(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestBasicGetOkRoundTrip(t *testing.T) {
	m := BasicGetOk{
		DeliveryTag:  7,
		Redelivered:  false,
		Exchange:     "",
		RoutingKey:   "q",
		MessageCount: 3,
	}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeBasicGetOk(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestConnectionTuneRoundTrip(t *testing.T) {
	m := ConnectionTune{ChannelMax: 2047, FrameMax: 131072, Heartbeat: 60}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeConnectionTune(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestConnectionCloseRoundTrip(t *testing.T) {
	m := ConnectionClose{ReplyCode: 320, ReplyText: "CONNECTION_FORCED", ClassID: 10, MethodID: 50}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeConnectionClose(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestChannelFlowRoundTrip(t *testing.T) {
	m := ChannelFlow{Active: false}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeChannelFlow(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestBasicNackRoundTrip(t *testing.T) {
	m := BasicNack{DeliveryTag: 99, Multiple: true, Requeue: false}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeBasicNack(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestConfirmSelectRoundTrip(t *testing.T) {
	m := ConfirmSelect{NoWait: true}
	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	got, err := DecodeConfirmSelect(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m, got)
}
