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

// Package defaults holds the client-wide constants shared by the wire
// codec, transport and public API packages.
package defaults

import "time"

const (
	// App 客户端库名称 用于 client-properties / 日志前缀
	App = "amqp091"

	// Version 客户端库版本
	Version = "v0.1.0"

	// ProtocolHeader AMQP 0-9-1 协议头 握手时客户端发送的第一段字节
	ProtocolHeader = "AMQP\x00\x00\x09\x01"

	// FrameEnd 帧结束哨兵字节
	FrameEnd = 0xCE

	// FrameHeaderSize 帧头长度: type(1) + channel(2) + length(4)
	FrameHeaderSize = 7

	// ChannelMax 未协商时客户端提议的最大 channel 数
	ChannelMax = 2047

	// FrameMax 未协商时客户端提议的最大帧长度 (含 header+end)
	FrameMax = 131072

	// Heartbeat 未协商时客户端提议的心跳间隔(秒)
	Heartbeat = 60

	// QueueSize 内部有界队列的默认容量 (inbound frame queue / mgmt queue / consumer FIFO)
	QueueSize = 128

	// RPCTimeout 同步 RPC 调用的默认超时时间
	RPCTimeout = 30 * time.Second

	// HandshakeTimeout 握手阶段单步等待超时
	HandshakeTimeout = 20 * time.Second

	// MissedHeartbeatsLimit 连续错过多少次心跳后判定为 HeartbeatLost
	MissedHeartbeatsLimit = 2
)
