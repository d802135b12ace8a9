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

	"github.com/rabbitgo/amqp091/amqperr"
	"github.com/rabbitgo/amqp091/internal/wire"
)

// Property flag bits, high bit first, per the basic class's content
// header: content-header payload is class-id, weight, body-size,
// property-flags, properties...
const (
	flagContentType     = 1 << 15
	flagContentEncoding = 1 << 14
	flagHeaders         = 1 << 13
	flagDeliveryMode    = 1 << 12
	flagPriority        = 1 << 11
	flagCorrelationID   = 1 << 10
	flagReplyTo         = 1 << 9
	flagExpiration      = 1 << 8
	flagMessageID       = 1 << 7
	flagTimestamp       = 1 << 6
	flagType            = 1 << 5
	flagUserID          = 1 << 4
	flagAppID           = 1 << 3
	flagClusterID       = 1 << 2
)

// Properties holds the basic class's content-header properties. Every
// field is optional; a zero value for a string/table field means
// "absent", not "empty but present" — EncodeContentHeader only sets the
// field's flag bit (and writes its bytes) when the field is non-zero.
type Properties struct {
	ContentType     string
	ContentEncoding string
	Headers         wire.Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       uint64
	Type            string
	UserID          string
	AppID           string
	ClusterID       string
}

func (p Properties) flags() uint16 {
	var f uint16
	if p.ContentType != "" {
		f |= flagContentType
	}
	if p.ContentEncoding != "" {
		f |= flagContentEncoding
	}
	if len(p.Headers) > 0 {
		f |= flagHeaders
	}
	if p.DeliveryMode != 0 {
		f |= flagDeliveryMode
	}
	if p.Priority != 0 {
		f |= flagPriority
	}
	if p.CorrelationID != "" {
		f |= flagCorrelationID
	}
	if p.ReplyTo != "" {
		f |= flagReplyTo
	}
	if p.Expiration != "" {
		f |= flagExpiration
	}
	if p.MessageID != "" {
		f |= flagMessageID
	}
	if p.Timestamp != 0 {
		f |= flagTimestamp
	}
	if p.Type != "" {
		f |= flagType
	}
	if p.UserID != "" {
		f |= flagUserID
	}
	if p.AppID != "" {
		f |= flagAppID
	}
	if p.ClusterID != "" {
		f |= flagClusterID
	}
	return f
}

// EncodeContentHeader writes a complete content-header frame payload
// for the basic class: class-id, weight (always 0, no class uses
// weighted content), body-size, property-flags, then each present
// property in flag order.
func EncodeContentHeader(w io.Writer, classID uint16, bodySize uint64, p Properties) error {
	if err := writeShort(w, classID); err != nil {
		return err
	}
	if err := writeShort(w, 0); err != nil { // weight
		return err
	}
	if err := writeLongLong(w, bodySize); err != nil {
		return err
	}
	flags := p.flags()
	if err := writeShort(w, flags); err != nil {
		return err
	}

	if flags&flagContentType != 0 {
		if err := wire.EncodeShortString(w, p.ContentType); err != nil {
			return err
		}
	}
	if flags&flagContentEncoding != 0 {
		if err := wire.EncodeShortString(w, p.ContentEncoding); err != nil {
			return err
		}
	}
	if flags&flagHeaders != 0 {
		if err := wire.EncodeTable(w, p.Headers); err != nil {
			return err
		}
	}
	if flags&flagDeliveryMode != 0 {
		if err := writeOctet(w, p.DeliveryMode); err != nil {
			return err
		}
	}
	if flags&flagPriority != 0 {
		if err := writeOctet(w, p.Priority); err != nil {
			return err
		}
	}
	if flags&flagCorrelationID != 0 {
		if err := wire.EncodeShortString(w, p.CorrelationID); err != nil {
			return err
		}
	}
	if flags&flagReplyTo != 0 {
		if err := wire.EncodeShortString(w, p.ReplyTo); err != nil {
			return err
		}
	}
	if flags&flagExpiration != 0 {
		if err := wire.EncodeShortString(w, p.Expiration); err != nil {
			return err
		}
	}
	if flags&flagMessageID != 0 {
		if err := wire.EncodeShortString(w, p.MessageID); err != nil {
			return err
		}
	}
	if flags&flagTimestamp != 0 {
		if err := writeLongLong(w, p.Timestamp); err != nil {
			return err
		}
	}
	if flags&flagType != 0 {
		if err := wire.EncodeShortString(w, p.Type); err != nil {
			return err
		}
	}
	if flags&flagUserID != 0 {
		if err := wire.EncodeShortString(w, p.UserID); err != nil {
			return err
		}
	}
	if flags&flagAppID != 0 {
		if err := wire.EncodeShortString(w, p.AppID); err != nil {
			return err
		}
	}
	if flags&flagClusterID != 0 {
		if err := wire.EncodeShortString(w, p.ClusterID); err != nil {
			return err
		}
	}
	return nil
}

// DecodeContentHeader reads a content-header frame payload back into
// its class id, declared body size and Properties.
func DecodeContentHeader(payload []byte) (classID uint16, bodySize uint64, p Properties, err error) {
	r := bytes.NewReader(payload)
	classID, err = readShort(r)
	if err != nil {
		return 0, 0, Properties{}, err
	}
	if _, err = readShort(r); err != nil { // weight, unused
		return 0, 0, Properties{}, err
	}
	bodySize, err = readLongLong(r)
	if err != nil {
		return 0, 0, Properties{}, err
	}
	flags, err := readShort(r)
	if err != nil {
		return 0, 0, Properties{}, err
	}

	if flags&flagContentType != 0 {
		if p.ContentType, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagContentEncoding != 0 {
		if p.ContentEncoding, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagHeaders != 0 {
		if p.Headers, err = wire.DecodeTable(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagDeliveryMode != 0 {
		if p.DeliveryMode, err = readOctet(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagPriority != 0 {
		if p.Priority, err = readOctet(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagCorrelationID != 0 {
		if p.CorrelationID, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagReplyTo != 0 {
		if p.ReplyTo, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagExpiration != 0 {
		if p.Expiration, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagMessageID != 0 {
		if p.MessageID, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagTimestamp != 0 {
		if p.Timestamp, err = readLongLong(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagType != 0 {
		if p.Type, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagUserID != 0 {
		if p.UserID, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagAppID != 0 {
		if p.AppID, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if flags&flagClusterID != 0 {
		if p.ClusterID, err = wire.DecodeShortString(r); err != nil {
			return 0, 0, Properties{}, err
		}
	}
	if r.Len() != 0 {
		return 0, 0, Properties{}, amqperr.Wrap(amqperr.ErrMalformedFrame, "content header trailing bytes")
	}
	return classID, bodySize, p, nil
}
