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
	"github.com/rabbitgo/amqp091/internal/methodcat"
)

// Properties is the basic class's content-header properties, exposed
// directly to callers instead of being re-wrapped.
type Properties = methodcat.Properties

// Delivery is one assembled message handed to a consumer sink or
// returned by Channel.BasicGet: the reassembled (Deliver method,
// properties, body) triple.
type Delivery struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
	Properties  Properties
	Body        []byte
}

// Return is an unroutable message the broker bounced back because the
// publish was marked mandatory or immediate and could not be delivered.
// Reassembled the same way as Deliver, routed to a channel-level
// return callback instead of a consumer tag.
type Return struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
	Properties Properties
	Body       []byte
}

// delivery assembly buffer shared by Deliver/GetOk/Return reassembly:
// holds the current (deliver?, properties?, body bytes?) in progress.
type assembly struct {
	deliver  *methodcat.BasicDeliver
	getOk    *methodcat.BasicGetOk
	ret      *methodcat.BasicReturn
	props    Properties
	bodySize uint64
	body     []byte
}

func (a *assembly) reset() {
	*a = assembly{}
}

func (a *assembly) bodyComplete() bool {
	return uint64(len(a.body)) >= a.bodySize
}
