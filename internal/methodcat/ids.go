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

// Package methodcat is the static catalog of AMQP 0-9-1 method frames:
// a (class-id, method-id) -> name table, the request -> reply pairing
// used to key synchronous RPC waiters, and thin argument
// marshal/unmarshal helpers for each method the connection and channel
// packages issue or accept. Which methods carry a trailing content
// header + body is decided by the channel dispatcher, not by a table
// here.
//
// Keys the same tables off an unexported classMethod{ClassID,MethodID}
// pair for a passive decoder's benefit; this package exports the key
// type as MethodHeader and inverts the tables' purpose from "name this
// frame for a human" to "what do I send next and what do I expect
// back".
package methodcat

// MethodHeader identifies an AMQP method frame by its class and
// method id, exactly as it appears on the wire immediately after the
// frame header: method payload is class-id, method-id, arguments...
type MethodHeader struct {
	ClassID  uint16
	MethodID uint16
}

const (
	ClassConnection = 10
	ClassChannel    = 20
	ClassExchange   = 40
	ClassQueue      = 50
	ClassBasic      = 60
	ClassConfirm    = 85 // RabbitMQ extension, not in the strict 0-9-1 core
	ClassTx         = 90
)

var classNames = map[uint16]string{
	ClassConnection: "connection",
	ClassChannel:    "channel",
	ClassExchange:   "exchange",
	ClassQueue:      "queue",
	ClassBasic:      "basic",
	ClassConfirm:    "confirm",
	ClassTx:         "tx",
}

// Method ids carry an "ID" suffix throughout this file so they never
// collide with the identically-named argument struct in the matching
// class file (e.g. QueueDeclareID the int vs. QueueDeclare the struct
// in queue.go) — both live in this one package.

// Connection method ids.
const (
	ConnectionStartID   = 10
	ConnectionStartOkID = 11
	ConnectionTuneID    = 30
	ConnectionTuneOkID  = 31
	ConnectionOpenID    = 40
	ConnectionOpenOkID  = 41
	ConnectionCloseID   = 50
	ConnectionCloseOkID = 51
	ConnectionBlockedID   = 60
	ConnectionUnblockedID = 61
)

// Channel method ids.
const (
	ChannelOpenID    = 10
	ChannelOpenOkID  = 11
	ChannelFlowID    = 20
	ChannelFlowOkID  = 21
	ChannelCloseID   = 40
	ChannelCloseOkID = 41
)

// Exchange method ids.
const (
	ExchangeDeclareID   = 10
	ExchangeDeclareOkID = 11
	ExchangeDeleteID    = 20
	ExchangeDeleteOkID  = 21
)

// Queue method ids.
const (
	QueueDeclareID   = 10
	QueueDeclareOkID = 11
	QueueBindID      = 20
	QueueBindOkID    = 21
	QueuePurgeID     = 30
	QueuePurgeOkID   = 31
	QueueDeleteID    = 40
	QueueDeleteOkID  = 41
	QueueUnbindID    = 50
	QueueUnbindOkID  = 51
)

// Basic method ids. Recover/RecoverOk use the 0-9-1 values 110/111;
// these ids go on the wire, and a broker reads 100 as
// basic.recover-async, which has no reply.
const (
	BasicQosID       = 10
	BasicQosOkID     = 11
	BasicConsumeID   = 20
	BasicConsumeOkID = 21
	BasicCancelID    = 30
	BasicCancelOkID  = 31
	BasicPublishID   = 40
	BasicReturnID    = 50
	BasicDeliverID   = 60
	BasicGetID       = 70
	BasicGetOkID     = 71
	BasicGetEmptyID  = 72
	BasicAckID       = 80
	BasicRejectID    = 90
	BasicRecoverID   = 110
	BasicRecoverOkID = 111
	BasicNackID      = 120
)

// Confirm method ids (RabbitMQ extension).
const (
	ConfirmSelectID   = 10
	ConfirmSelectOkID = 11
)

// Tx method ids.
const (
	TxSelectID     = 10
	TxSelectOkID   = 11
	TxCommitID     = 20
	TxCommitOkID   = 21
	TxRollbackID   = 30
	TxRollbackOkID = 31
)

// Name returns the "class.method" dotted name for h, or "" if h is not
// in the catalog.
func Name(h MethodHeader) string {
	n, ok := classMethods[h]
	if !ok {
		return ""
	}
	return classNames[h.ClassID] + "." + n
}
