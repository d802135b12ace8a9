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

// Package amqperr defines the error taxonomy shared by the codec,
// transport, connection and channel layers.
//
// Codec errors at a frame boundary are unrecoverable for the stream
// (MalformedFrame, UnknownTag, ShortStringOverflow, TableLengthOverflow)
// and fail the whole connection. Broker-scoped errors (ChannelClosed,
// ConnectionClosed) only fail the affected scope. Timeout/Canceled never
// touch the dispatcher — they only unblock the waiting caller.
package amqperr

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors matching spec taxonomy members with no payload.
var (
	// ErrMalformedFrame 帧/表/字符串的二进制内容不符合协议约定
	ErrMalformedFrame = errors.New("amqp: malformed frame")

	// ErrUnknownTag 解码时遇到未知的 FieldValue tag
	ErrUnknownTag = errors.New("amqp: unknown field value tag")

	// ErrShortStringOverflow ShortString 编码长度超过 255 字节
	ErrShortStringOverflow = errors.New("amqp: short string exceeds 255 bytes")

	// ErrTableLengthOverflow FieldTable/FieldArray 负载长度超过 u32 上限
	ErrTableLengthOverflow = errors.New("amqp: table or array payload exceeds uint32 length")

	// ErrHeartbeatLost 连续错过心跳 连接判定为丢失
	ErrHeartbeatLost = errors.New("amqp: heartbeat lost")

	// ErrRPCInFlight 同一 channel 上已有相同 reply-header 的 RPC 在途
	ErrRPCInFlight = errors.New("amqp: rpc with same reply header already in flight")

	// ErrNoFreeChannel channel id 空间已耗尽
	ErrNoFreeChannel = errors.New("amqp: no free channel id available")

	// ErrCanceled 调用方主动取消了等待中的请求
	ErrCanceled = errors.New("amqp: request canceled")

	// ErrTimeout 等待同步回复超时
	ErrTimeout = errors.New("amqp: request timed out")

	// ErrClosed 在已关闭的 Connection/Channel 上发起操作
	ErrClosed = errors.New("amqp: use of closed connection or channel")
)

// HandshakeFailed 表示握手阶段的任何偏差 (reason 描述具体原因)
type HandshakeFailed struct {
	Reason string
}

func (e *HandshakeFailed) Error() string {
	return fmt.Sprintf("amqp: handshake failed: %s", e.Reason)
}

// NewHandshakeFailed 构造 HandshakeFailed 错误 format 遵循 fmt.Errorf 规则
func NewHandshakeFailed(format string, args ...any) error {
	return &HandshakeFailed{Reason: fmt.Sprintf(format, args...)}
}

// ChannelClosed 表示 broker 主动关闭了某条 channel
type ChannelClosed struct {
	Code int
	Text string
}

func (e *ChannelClosed) Error() string {
	return fmt.Sprintf("amqp: channel closed: code=%d text=%q", e.Code, e.Text)
}

// ConnectionClosed 表示 broker 主动关闭了整条连接 或本地判定连接不可用
type ConnectionClosed struct {
	Code int
	Text string
}

func (e *ConnectionClosed) Error() string {
	return fmt.Sprintf("amqp: connection closed: code=%d text=%q", e.Code, e.Text)
}

// Callback 包裹调用方回调 panic 恢复后的值 回调 panic 不会杀死 dispatcher
type Callback struct {
	Inner any
}

func (e *Callback) Error() string {
	return fmt.Sprintf("amqp: callback panicked: %v", e.Inner)
}

// Wrap 为底层错误附加上下文 与 errors.Wrap 语义一致 供上层统一引用
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf 是 Wrap 的格式化版本
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

// Errorf 构造一个带有上下文的新错误 与 errors.Errorf 语义一致
func Errorf(format string, args ...any) error {
	return errors.Errorf(format, args...)
}

// AsChannelClosed 尝试将 err 解析为 *ChannelClosed
func AsChannelClosed(err error) (*ChannelClosed, bool) {
	var cc *ChannelClosed
	if stderrors.As(err, &cc) {
		return cc, true
	}
	return nil, false
}

// AsConnectionClosed 尝试将 err 解析为 *ConnectionClosed
func AsConnectionClosed(err error) (*ConnectionClosed, bool) {
	var cc *ConnectionClosed
	if stderrors.As(err, &cc) {
		return cc, true
	}
	return nil, false
}
