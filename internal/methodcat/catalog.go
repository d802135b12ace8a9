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

var classMethods = map[MethodHeader]string{
	// connection (10)
	{ClassID: ClassConnection, MethodID: ConnectionStartID}:   "start",
	{ClassID: ClassConnection, MethodID: ConnectionStartOkID}: "start-ok",
	{ClassID: ClassConnection, MethodID: ConnectionTuneID}:    "tune",
	{ClassID: ClassConnection, MethodID: ConnectionTuneOkID}:  "tune-ok",
	{ClassID: ClassConnection, MethodID: ConnectionOpenID}:    "open",
	{ClassID: ClassConnection, MethodID: ConnectionOpenOkID}:  "open-ok",
	{ClassID: ClassConnection, MethodID: ConnectionCloseID}:     "close",
	{ClassID: ClassConnection, MethodID: ConnectionCloseOkID}:   "close-ok",
	{ClassID: ClassConnection, MethodID: ConnectionBlockedID}:   "blocked",
	{ClassID: ClassConnection, MethodID: ConnectionUnblockedID}: "unblocked",

	// channel (20)
	{ClassID: ClassChannel, MethodID: ChannelOpenID}:    "open",
	{ClassID: ClassChannel, MethodID: ChannelOpenOkID}:  "open-ok",
	{ClassID: ClassChannel, MethodID: ChannelFlowID}:    "flow",
	{ClassID: ClassChannel, MethodID: ChannelFlowOkID}:  "flow-ok",
	{ClassID: ClassChannel, MethodID: ChannelCloseID}:   "close",
	{ClassID: ClassChannel, MethodID: ChannelCloseOkID}: "close-ok",

	// exchange (40)
	{ClassID: ClassExchange, MethodID: ExchangeDeclareID}:   "declare",
	{ClassID: ClassExchange, MethodID: ExchangeDeclareOkID}: "declare-ok",
	{ClassID: ClassExchange, MethodID: ExchangeDeleteID}:    "delete",
	{ClassID: ClassExchange, MethodID: ExchangeDeleteOkID}:  "delete-ok",

	// queue (50)
	{ClassID: ClassQueue, MethodID: QueueDeclareID}:   "declare",
	{ClassID: ClassQueue, MethodID: QueueDeclareOkID}: "declare-ok",
	{ClassID: ClassQueue, MethodID: QueueBindID}:       "bind",
	{ClassID: ClassQueue, MethodID: QueueBindOkID}:     "bind-ok",
	{ClassID: ClassQueue, MethodID: QueuePurgeID}:      "purge",
	{ClassID: ClassQueue, MethodID: QueuePurgeOkID}:    "purge-ok",
	{ClassID: ClassQueue, MethodID: QueueDeleteID}:     "delete",
	{ClassID: ClassQueue, MethodID: QueueDeleteOkID}:   "delete-ok",
	{ClassID: ClassQueue, MethodID: QueueUnbindID}:     "unbind",
	{ClassID: ClassQueue, MethodID: QueueUnbindOkID}:   "unbind-ok",

	// basic (60)
	{ClassID: ClassBasic, MethodID: BasicQosID}:        "qos",
	{ClassID: ClassBasic, MethodID: BasicQosOkID}:      "qos-ok",
	{ClassID: ClassBasic, MethodID: BasicConsumeID}:    "consume",
	{ClassID: ClassBasic, MethodID: BasicConsumeOkID}:  "consume-ok",
	{ClassID: ClassBasic, MethodID: BasicCancelID}:     "cancel",
	{ClassID: ClassBasic, MethodID: BasicCancelOkID}:   "cancel-ok",
	{ClassID: ClassBasic, MethodID: BasicPublishID}:    "publish",
	{ClassID: ClassBasic, MethodID: BasicReturnID}:     "return",
	{ClassID: ClassBasic, MethodID: BasicDeliverID}:    "deliver",
	{ClassID: ClassBasic, MethodID: BasicGetID}:        "get",
	{ClassID: ClassBasic, MethodID: BasicGetOkID}:      "get-ok",
	{ClassID: ClassBasic, MethodID: BasicGetEmptyID}:   "get-empty",
	{ClassID: ClassBasic, MethodID: BasicAckID}:        "ack",
	{ClassID: ClassBasic, MethodID: BasicRejectID}:     "reject",
	{ClassID: ClassBasic, MethodID: BasicRecoverID}:    "recover",
	{ClassID: ClassBasic, MethodID: BasicRecoverOkID}:  "recover-ok",
	{ClassID: ClassBasic, MethodID: BasicNackID}:       "nack",

	// confirm (85)
	{ClassID: ClassConfirm, MethodID: ConfirmSelectID}:   "select",
	{ClassID: ClassConfirm, MethodID: ConfirmSelectOkID}: "select-ok",

	// tx (90)
	{ClassID: ClassTx, MethodID: TxSelectID}:     "select",
	{ClassID: ClassTx, MethodID: TxSelectOkID}:   "select-ok",
	{ClassID: ClassTx, MethodID: TxCommitID}:     "commit",
	{ClassID: ClassTx, MethodID: TxCommitOkID}:   "commit-ok",
	{ClassID: ClassTx, MethodID: TxRollbackID}:   "rollback",
	{ClassID: ClassTx, MethodID: TxRollbackOkID}: "rollback-ok",
}

// replyOf maps a request method header to the reply header the
// dispatcher should key a waiter on (request -> "Name-Ok"), keyed on
// the concrete (class-id, method-id) pair instead of a bare name, since
// several classes share method names ("declare", "close", ...).
var replyOf = map[MethodHeader]MethodHeader{
	{ClassID: ClassConnection, MethodID: ConnectionStartID}: {ClassID: ClassConnection, MethodID: ConnectionStartOkID},
	{ClassID: ClassConnection, MethodID: ConnectionTuneID}:  {ClassID: ClassConnection, MethodID: ConnectionTuneOkID},
	{ClassID: ClassConnection, MethodID: ConnectionOpenID}:  {ClassID: ClassConnection, MethodID: ConnectionOpenOkID},
	{ClassID: ClassConnection, MethodID: ConnectionCloseID}: {ClassID: ClassConnection, MethodID: ConnectionCloseOkID},

	{ClassID: ClassChannel, MethodID: ChannelOpenID}:  {ClassID: ClassChannel, MethodID: ChannelOpenOkID},
	{ClassID: ClassChannel, MethodID: ChannelFlowID}:  {ClassID: ClassChannel, MethodID: ChannelFlowOkID},
	{ClassID: ClassChannel, MethodID: ChannelCloseID}: {ClassID: ClassChannel, MethodID: ChannelCloseOkID},

	{ClassID: ClassExchange, MethodID: ExchangeDeclareID}: {ClassID: ClassExchange, MethodID: ExchangeDeclareOkID},
	{ClassID: ClassExchange, MethodID: ExchangeDeleteID}:  {ClassID: ClassExchange, MethodID: ExchangeDeleteOkID},

	{ClassID: ClassQueue, MethodID: QueueDeclareID}: {ClassID: ClassQueue, MethodID: QueueDeclareOkID},
	{ClassID: ClassQueue, MethodID: QueueBindID}:    {ClassID: ClassQueue, MethodID: QueueBindOkID},
	{ClassID: ClassQueue, MethodID: QueuePurgeID}:   {ClassID: ClassQueue, MethodID: QueuePurgeOkID},
	{ClassID: ClassQueue, MethodID: QueueDeleteID}:  {ClassID: ClassQueue, MethodID: QueueDeleteOkID},
	{ClassID: ClassQueue, MethodID: QueueUnbindID}:  {ClassID: ClassQueue, MethodID: QueueUnbindOkID},

	{ClassID: ClassBasic, MethodID: BasicQosID}:     {ClassID: ClassBasic, MethodID: BasicQosOkID},
	{ClassID: ClassBasic, MethodID: BasicConsumeID}: {ClassID: ClassBasic, MethodID: BasicConsumeOkID},
	{ClassID: ClassBasic, MethodID: BasicCancelID}:  {ClassID: ClassBasic, MethodID: BasicCancelOkID},
	{ClassID: ClassBasic, MethodID: BasicGetID}:     {ClassID: ClassBasic, MethodID: BasicGetOkID},
	{ClassID: ClassBasic, MethodID: BasicRecoverID}: {ClassID: ClassBasic, MethodID: BasicRecoverOkID},

	{ClassID: ClassConfirm, MethodID: ConfirmSelectID}: {ClassID: ClassConfirm, MethodID: ConfirmSelectOkID},

	{ClassID: ClassTx, MethodID: TxSelectID}:   {ClassID: ClassTx, MethodID: TxSelectOkID},
	{ClassID: ClassTx, MethodID: TxCommitID}:   {ClassID: ClassTx, MethodID: TxCommitOkID},
	{ClassID: ClassTx, MethodID: TxRollbackID}: {ClassID: ClassTx, MethodID: TxRollbackOkID},
}

// ReplyOf returns the expected reply header for a synchronous request
// method, and whether one is registered.
func ReplyOf(h MethodHeader) (MethodHeader, bool) {
	r, ok := replyOf[h]
	return r, ok
}

