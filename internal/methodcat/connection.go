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
	"io"

	"github.com/rabbitgo/amqp091/internal/wire"
)

// ConnectionStart is connection.start (10,10): version-major,
// version-minor, server-properties, mechanisms, locales.
type ConnectionStart struct {
	VersionMajor    uint8
	VersionMinor    uint8
	ServerProperties wire.Table
	Mechanisms      string
	Locales         string
}

func (m ConnectionStart) Encode(w io.Writer) error {
	if err := writeOctet(w, m.VersionMajor); err != nil {
		return err
	}
	if err := writeOctet(w, m.VersionMinor); err != nil {
		return err
	}
	if err := wire.EncodeTable(w, m.ServerProperties); err != nil {
		return err
	}
	if err := wire.EncodeLongString(w, m.Mechanisms); err != nil {
		return err
	}
	return wire.EncodeLongString(w, m.Locales)
}

func DecodeConnectionStart(r *bytes.Reader) (ConnectionStart, error) {
	var m ConnectionStart
	var err error
	if m.VersionMajor, err = readOctet(r); err != nil {
		return m, err
	}
	if m.VersionMinor, err = readOctet(r); err != nil {
		return m, err
	}
	if m.ServerProperties, err = wire.DecodeTable(r); err != nil {
		return m, err
	}
	if m.Mechanisms, err = wire.DecodeLongString(r); err != nil {
		return m, err
	}
	if m.Locales, err = wire.DecodeLongString(r); err != nil {
		return m, err
	}
	return m, nil
}

// ConnectionStartOk is connection.start-ok (10,11): client-properties,
// mechanism, response, locale.
type ConnectionStartOk struct {
	ClientProperties wire.Table
	Mechanism        string
	Response         string
	Locale           string
}

func (m ConnectionStartOk) Encode(w io.Writer) error {
	if err := wire.EncodeTable(w, m.ClientProperties); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.Mechanism); err != nil {
		return err
	}
	if err := wire.EncodeLongString(w, m.Response); err != nil {
		return err
	}
	return wire.EncodeShortString(w, m.Locale)
}

func DecodeConnectionStartOk(r *bytes.Reader) (ConnectionStartOk, error) {
	var m ConnectionStartOk
	var err error
	if m.ClientProperties, err = wire.DecodeTable(r); err != nil {
		return m, err
	}
	if m.Mechanism, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.Response, err = wire.DecodeLongString(r); err != nil {
		return m, err
	}
	if m.Locale, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	return m, nil
}

// ConnectionTune / ConnectionTuneOk are connection.tune(-ok) (10,30/31):
// channel-max, frame-max, heartbeat.
type ConnectionTune struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (m ConnectionTune) Encode(w io.Writer) error {
	if err := writeShort(w, m.ChannelMax); err != nil {
		return err
	}
	if err := writeLong(w, m.FrameMax); err != nil {
		return err
	}
	return writeShort(w, m.Heartbeat)
}

func DecodeConnectionTune(r *bytes.Reader) (ConnectionTune, error) {
	var m ConnectionTune
	var err error
	if m.ChannelMax, err = readShort(r); err != nil {
		return m, err
	}
	if m.FrameMax, err = readLong(r); err != nil {
		return m, err
	}
	if m.Heartbeat, err = readShort(r); err != nil {
		return m, err
	}
	return m, nil
}

type ConnectionTuneOk = ConnectionTune

func EncodeConnectionTuneOk(w io.Writer, m ConnectionTuneOk) error { return m.Encode(w) }
func DecodeConnectionTuneOk(r *bytes.Reader) (ConnectionTuneOk, error) {
	return DecodeConnectionTune(r)
}

// ConnectionOpen is connection.open (10,40): virtual-host. The
// reserved capabilities/insist fields the real broker never uses have
// no struct fields; Encode writes them as an empty short string and a
// zero bit octet.
type ConnectionOpen struct {
	VirtualHost string
}

func (m ConnectionOpen) Encode(w io.Writer) error {
	if err := wire.EncodeShortString(w, m.VirtualHost); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, ""); err != nil { // reserved-1
		return err
	}
	return writeOctet(w, 0) // reserved-2 (bit, packed alone)
}

func DecodeConnectionOpen(r *bytes.Reader) (ConnectionOpen, error) {
	var m ConnectionOpen
	var err error
	if m.VirtualHost, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if _, err = wire.DecodeShortString(r); err != nil { // reserved-1
		return m, err
	}
	if _, err = readOctet(r); err != nil { // reserved-2
		return m, err
	}
	return m, nil
}

// ConnectionOpenOk is connection.open-ok (10,41): a single reserved
// short string the client never inspects.
type ConnectionOpenOk struct{}

func (ConnectionOpenOk) Encode(w io.Writer) error {
	return wire.EncodeShortString(w, "")
}

func DecodeConnectionOpenOk(r *bytes.Reader) (ConnectionOpenOk, error) {
	_, err := wire.DecodeShortString(r)
	return ConnectionOpenOk{}, err
}

// ConnectionClose is connection.close (10,50): reply-code, reply-text,
// class-id, method-id (the method that caused the close, 0/0 if none).
type ConnectionClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func (m ConnectionClose) Encode(w io.Writer) error {
	if err := writeShort(w, m.ReplyCode); err != nil {
		return err
	}
	if err := wire.EncodeShortString(w, m.ReplyText); err != nil {
		return err
	}
	if err := writeShort(w, m.ClassID); err != nil {
		return err
	}
	return writeShort(w, m.MethodID)
}

func DecodeConnectionClose(r *bytes.Reader) (ConnectionClose, error) {
	var m ConnectionClose
	var err error
	if m.ReplyCode, err = readShort(r); err != nil {
		return m, err
	}
	if m.ReplyText, err = wire.DecodeShortString(r); err != nil {
		return m, err
	}
	if m.ClassID, err = readShort(r); err != nil {
		return m, err
	}
	if m.MethodID, err = readShort(r); err != nil {
		return m, err
	}
	return m, nil
}

// ConnectionCloseOk is connection.close-ok (10,51): no arguments.
type ConnectionCloseOk struct{}

func (ConnectionCloseOk) Encode(io.Writer) error { return nil }

func DecodeConnectionCloseOk(*bytes.Reader) (ConnectionCloseOk, error) {
	return ConnectionCloseOk{}, nil
}

// ConnectionBlocked is connection.blocked (10,60): the broker is
// throttling this connection under a resource alarm; reason is a
// short human-readable description ("low on memory", ...).
type ConnectionBlocked struct {
	Reason string
}

func (m ConnectionBlocked) Encode(w io.Writer) error {
	return wire.EncodeShortString(w, m.Reason)
}

func DecodeConnectionBlocked(r *bytes.Reader) (ConnectionBlocked, error) {
	reason, err := wire.DecodeShortString(r)
	return ConnectionBlocked{Reason: reason}, err
}

// ConnectionUnblocked is connection.unblocked (10,61): no arguments.
type ConnectionUnblocked struct{}

func (ConnectionUnblocked) Encode(io.Writer) error { return nil }

func DecodeConnectionUnblocked(*bytes.Reader) (ConnectionUnblocked, error) {
	return ConnectionUnblocked{}, nil
}
