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

func TestContentHeaderRoundTrip(t *testing.T) {
	in := Properties{
		ContentType:   "application/json",
		DeliveryMode:  2,
		Priority:      5,
		CorrelationID: "req-1",
		ReplyTo:       "amq.rabbitmq.reply-to",
		Headers:       wire.Table{"x-retry": int32(3)},
		Timestamp:     1700000000,
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeContentHeader(&buf, ClassBasic, 12345, in))

	classID, bodySize, out, err := DecodeContentHeader(buf.Bytes())
	require.NoError(t, err)
	assert.EqualValues(t, ClassBasic, classID)
	assert.EqualValues(t, 12345, bodySize)
	assert.Equal(t, in, out)
}

func TestContentHeaderAbsentFieldsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeContentHeader(&buf, ClassBasic, 0, Properties{}))

	_, bodySize, out, err := DecodeContentHeader(buf.Bytes())
	require.NoError(t, err)
	assert.EqualValues(t, 0, bodySize)
	assert.Equal(t, Properties{}, out)
}

func TestMethodEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	h := MethodHeader{ClassID: ClassQueue, MethodID: QueueDeclareID}
	body := QueueDeclare{Queue: "q", Durable: true}
	require.NoError(t, EncodeMethod(&buf, h, body))

	gotHeader, r, err := SplitMethod(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, h, gotHeader)

	gotBody, err := DecodeQueueDeclare(r)
	require.NoError(t, err)
	assert.Equal(t, body, gotBody)
}
