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

// ConnectionCallback receives connection-scoped server-initiated events:
// connection.blocked/unblocked and close notifications. Every method is
// invoked wrapped in rescue.Call, so a panicking callback cannot take
// the connection down with it. Blocked/Unblocked run on the reader
// goroutine; Close runs on whichever goroutine tears the connection
// down.
type ConnectionCallback interface {
	// Close is invoked once when the broker closes the connection or
	// the transport fails; code/text are zero/empty for a local
	// transport failure (e.g. heartbeat loss).
	Close(code uint16, text string)
	// Blocked is invoked when the broker throttles publishers
	// (connection.blocked) and Unblocked when it lifts the throttle.
	Blocked(reason string)
	Unblocked()
}

// ChannelCallback receives channel-scoped server-initiated events:
// flow, cancel, return and close notifications.
type ChannelCallback interface {
	// Close is invoked once when the broker closes the channel; code/
	// text carry the reply-code/reply-text from the server's
	// channel.close method.
	Close(code uint16, text string)
	// Flow is invoked on a server channel.flow request; active==false
	// asks the client to stop publishing until a later Flow(true).
	Flow(active bool)
	// Cancel is invoked when the broker cancels a consumer
	// server-side (e.g. the queue was deleted).
	Cancel(consumerTag string)
	// Return is invoked for each unroutable message bounced back by
	// the broker for a mandatory/immediate publish.
	Return(r Return)
	// Ack and Nack deliver asynchronous publisher confirms once the
	// channel has called Channel.ConfirmSelect.
	Ack(deliveryTag uint64, multiple bool)
	Nack(deliveryTag uint64, multiple bool)
}

// DefaultConnectionCallback is a no-op ConnectionCallback callers can
// embed and selectively override.
type DefaultConnectionCallback struct{}

func (DefaultConnectionCallback) Close(uint16, string) {}
func (DefaultConnectionCallback) Blocked(string)       {}
func (DefaultConnectionCallback) Unblocked()           {}

// DefaultChannelCallback is a no-op ChannelCallback callers can embed
// and selectively override.
type DefaultChannelCallback struct{}

func (DefaultChannelCallback) Close(uint16, string)          {}
func (DefaultChannelCallback) Flow(bool)                     {}
func (DefaultChannelCallback) Cancel(string)                 {}
func (DefaultChannelCallback) Return(Return)                 {}
func (DefaultChannelCallback) Ack(uint64, bool)              {}
func (DefaultChannelCallback) Nack(uint64, bool)             {}
